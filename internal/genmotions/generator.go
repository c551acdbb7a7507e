// Package genmotions writes synthetic motion bundles for exercising the
// conversion pipeline: smooth well-formed sequences plus a set of
// deliberately broken ones covering the known failure and warning kinds.
package genmotions

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/retargetlab/mocap/internal/adapters/bundle"
	"github.com/retargetlab/mocap/internal/domain/model"
	"github.com/retargetlab/mocap/pkg/logger"
)

// Config controls a generation run.
type Config struct {
	OutputDir string
	Count     int     // well-formed bundles
	Frames    int     // frames per sequence
	FPS       float64 // recorded frame rate
	Seed      int64
	Malformed bool // also emit the broken set
}

// Default generation constants.
const (
	DefaultCount  = 10
	DefaultFrames = 300
	DefaultFPS    = 120.0

	walkStep = 0.05 // radians of per-frame joint drift
)

// Run generates the configured bundles under cfg.OutputDir.
func Run(ctx context.Context, cfg *Config) error {
	if cfg.OutputDir == "" {
		return fmt.Errorf("output dir is required")
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	log := logger.Get().Named("gen-motions")
	rng := rand.New(rand.NewSource(cfg.Seed))

	for i := 0; i < cfg.Count; i++ {
		name := fmt.Sprintf("motion_%03d.npz", i)
		b := wellFormed(rng, cfg.Frames, cfg.FPS)
		if err := write(cfg.OutputDir, name, b); err != nil {
			return err
		}
	}
	log.Info(ctx, "generated well-formed bundles",
		logger.Int("count", cfg.Count),
		logger.String("dir", cfg.OutputDir),
	)

	if !cfg.Malformed {
		return nil
	}
	for name, b := range malformedSet(rng, cfg.Frames, cfg.FPS) {
		if err := write(cfg.OutputDir, name, b); err != nil {
			return err
		}
	}
	log.Info(ctx, "generated malformed bundles", logger.String("dir", cfg.OutputDir))
	return nil
}

func write(dir, name string, b bundle.Bundle) error {
	path := filepath.Join(dir, name)
	if err := bundle.Write(path, b, true); err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}
	return nil
}

// wellFormed builds a flat 72-wide sequence: a slow sinusoidal drift per
// joint channel so decimation and splitting have realistic input.
func wellFormed(rng *rand.Rand, frames int, fps float64) bundle.Bundle {
	poses := make([]float64, frames*model.SMPLPoseWidth)
	phase := make([]float64, model.SMPLPoseWidth)
	for c := range phase {
		phase[c] = rng.Float64() * 2 * math.Pi
	}
	for f := 0; f < frames; f++ {
		for c := 0; c < model.SMPLPoseWidth; c++ {
			poses[f*model.SMPLPoseWidth+c] = 0.3 * math.Sin(phase[c]+walkStep*float64(f))
		}
	}

	trans := make([]float64, frames*3)
	for f := 0; f < frames; f++ {
		trans[f*3] = walkStep * float64(f) // forward drift
		trans[f*3+2] = 0.9 + 0.02*math.Sin(walkStep*float64(f))
	}

	betas := make([]float64, model.SMPLBetasLen)
	for i := range betas {
		betas[i] = rng.NormFloat64() * 0.5
	}

	return bundle.Bundle{
		model.FieldPoses:  bundle.ArrayValue(model.MustArray([]int{frames, model.SMPLPoseWidth}, poses)),
		model.FieldTrans:  bundle.ArrayValue(model.MustArray([]int{frames, 3}, trans)),
		model.FieldBetas:  bundle.ArrayValue(model.MustArray([]int{model.SMPLBetasLen}, betas)),
		model.FieldFPS:    bundle.ArrayValue(model.Scalar(fps)),
		model.FieldGender: bundle.StringValue(string(model.GenderNeutral)),
	}
}

// malformedSet covers one bundle per failure or warning kind the pipeline
// is expected to classify.
func malformedSet(rng *rand.Rand, frames int, fps float64) map[string]bundle.Bundle {
	out := map[string]bundle.Bundle{}

	// Missing the required poses key entirely.
	b := wellFormed(rng, frames, fps)
	delete(b, model.FieldPoses)
	out["bad_missing_poses.npz"] = b

	// Zero frames.
	b = wellFormed(rng, frames, fps)
	b[model.FieldPoses] = bundle.ArrayValue(model.MustArray([]int{0, model.SMPLPoseWidth}, nil))
	b[model.FieldTrans] = bundle.ArrayValue(model.MustArray([]int{0, 3}, nil))
	out["bad_empty_poses.npz"] = b

	// Rank-3 poses, repairable by flattening.
	b = wellFormed(rng, frames, fps)
	flat := b[model.FieldPoses].Array
	b[model.FieldPoses] = bundle.ArrayValue(model.MustArray(
		[]int{frames, model.SMPLPoseWidth / model.JointCols, model.JointCols},
		append([]float64(nil), flat.Data()...),
	))
	out["warn_rank3_poses.npz"] = b

	// NaN holes in the pose track.
	b = wellFormed(rng, frames, fps)
	data := b[model.FieldPoses].Array.Data()
	for i := 0; i < 5 && i < len(data); i++ {
		data[rng.Intn(len(data))] = math.NaN()
	}
	out["warn_nan_poses.npz"] = b

	// Legacy frame-rate key and short betas.
	b = wellFormed(rng, frames, fps)
	delete(b, model.FieldFPS)
	b[model.FieldMocapFramerateLegacy] = bundle.ArrayValue(model.Scalar(fps))
	b[model.FieldBetas] = bundle.ArrayValue(model.Vector([]float64{0.1, -0.2, 0.3}))
	out["warn_legacy_keys.npz"] = b

	return out
}
