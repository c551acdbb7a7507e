package genmotions

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/retargetlab/mocap/internal/adapters/bundle"
	"github.com/retargetlab/mocap/internal/adapters/ingest"
	"github.com/retargetlab/mocap/internal/domain/model"
	"github.com/retargetlab/mocap/internal/domain/translate"
)

func TestRun_WellFormedBundlesConvert(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{OutputDir: dir, Count: 3, Frames: 60, FPS: 120, Seed: 7}
	if err := Run(context.Background(), cfg); err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, name := range []string{"motion_000.npz", "motion_001.npz", "motion_002.npz"} {
		b, err := bundle.Read(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("reading %s: %v", name, err)
		}
		rec, err := ingest.New().FromBundle(b)
		if err != nil {
			t.Fatalf("ingesting %s: %v", name, err)
		}
		out, err := translate.SMPLToSMPLX(rec)
		if err != nil {
			t.Fatalf("translating %s: %v", name, err)
		}
		if out.RootOrient.Rows() != 60 || out.PoseBody.Cols() != model.PoseBodyCols {
			t.Errorf("%s: unexpected split %v / %v", name, out.RootOrient.Shape(), out.PoseBody.Shape())
		}
	}
}

func TestRun_MalformedBundlesMisbehave(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{OutputDir: dir, Count: 1, Frames: 30, FPS: 120, Seed: 1, Malformed: true}
	if err := Run(context.Background(), cfg); err != nil {
		t.Fatalf("Run: %v", err)
	}

	read := func(name string) bundle.Bundle {
		b, err := bundle.Read(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("reading %s: %v", name, err)
		}
		return b
	}

	if _, err := ingest.New().FromBundle(read("bad_missing_poses.npz")); err == nil {
		t.Error("missing poses should fail ingestion")
	}

	rec, err := ingest.New().FromBundle(read("warn_rank3_poses.npz"))
	if err != nil {
		t.Fatalf("rank-3 bundle should ingest: %v", err)
	}
	out, err := translate.PhysToSMPL(rec)
	if err != nil {
		t.Fatalf("rank-3 bundle should translate: %v", err)
	}
	if !out.Log.Has(model.WarnRankRepaired) {
		t.Error("expected a rank repair warning")
	}

	rec, err = ingest.New().FromBundle(read("warn_legacy_keys.npz"))
	if err != nil {
		t.Fatalf("legacy bundle should ingest: %v", err)
	}
	if !rec.Log.Has(model.WarnLegacyFrameKey) {
		t.Error("expected a legacy frame-rate key warning")
	}
}
