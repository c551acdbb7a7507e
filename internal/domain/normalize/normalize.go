// Package normalize repairs the shape of an ingested motion record so the
// downstream translators can rely on a canonical layout: flat rank-2 poses,
// matching frame counts and a betas vector of the target schema's length.
package normalize

import (
	"fmt"

	"github.com/retargetlab/mocap/internal/domain/model"
)

// Normalizer applies rank repair, betas reconciliation and finiteness
// accounting. The zero value is not usable; construct with New.
type Normalizer struct {
	targetBetas int
}

// Option applies a configuration option to the Normalizer.
type Option func(*Normalizer)

// WithTargetBetasLen sets the shape-parameter length of the target schema.
func WithTargetBetasLen(n int) Option {
	return func(nz *Normalizer) {
		if n > 0 {
			nz.targetBetas = n
		}
	}
}

// New creates a Normalizer targeting the SMPL betas length by default.
func New(opts ...Option) *Normalizer {
	nz := &Normalizer{targetBetas: model.SMPLBetasLen}
	for _, opt := range opts {
		opt(nz)
	}
	return nz
}

// Normalize validates and repairs a record, returning a new record. The input
// is never mutated.
//
// Error-class conditions: missing or empty poses, an unresolvable pose rank,
// and a frame-count mismatch between poses and trans. Everything else the
// normalizer can repair is recorded as a warning on the returned record.
// Normalize is idempotent: applying it to its own output is a no-op.
func (nz *Normalizer) Normalize(rec *model.Record) (*model.Record, error) {
	if rec.Poses == nil || rec.Poses.Len() == 0 {
		return nil, fmt.Errorf("%w: field %q is empty, nothing to convert", ErrEmptyPoses, model.FieldPoses)
	}

	out := rec.Clone()

	poses, err := repairPoseRank(out.Poses, &out.Log)
	if err != nil {
		return nil, err
	}
	out.Poses = poses

	if out.Trans != nil && out.Trans.Len() > 0 {
		if got, want := out.Trans.Rows(), out.Poses.Rows(); got != want {
			return nil, fmt.Errorf("%w: field %q has %d frames, field %q has %d",
				ErrFrameMismatch, model.FieldTrans, got, model.FieldPoses, want)
		}
	}

	if out.Betas != nil {
		out.Betas = reconcileBetas(out.Betas, nz.targetBetas, &out.Log)
	}

	// Counted once per record so renormalizing stays a no-op.
	if !out.Log.Has(model.WarnNonFinite) {
		countNonFinite(model.FieldPoses, out.Poses, &out.Log)
		countNonFinite(model.FieldTrans, out.Trans, &out.Log)
	}

	return out, nil
}

// repairPoseRank flattens the legacy (frames, joints, 3) layout into the flat
// (frames, joints*3) layout and rejects ranks the pipeline cannot interpret.
func repairPoseRank(poses *model.Array, log *model.Log) (*model.Array, error) {
	switch poses.Rank() {
	case 1, 2:
		return poses, nil
	case 3:
		shape := poses.Shape()
		if shape[2] != model.JointCols {
			return nil, fmt.Errorf("%w: field %q has shape %v, trailing dimension must be %d for per-joint axis-angle",
				ErrBadRank, model.FieldPoses, shape, model.JointCols)
		}
		flat, err := poses.FlattenTrailing()
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %v", ErrBadRank, model.FieldPoses, err)
		}
		log.Add(model.WarnRankRepaired, "reshaped %q from %v to %v", model.FieldPoses, shape, flat.Shape())
		return flat, nil
	default:
		return nil, fmt.Errorf("%w: field %q has rank %d with shape %v, want 1, 2 or 3",
			ErrBadRank, model.FieldPoses, poses.Rank(), poses.Shape())
	}
}

// reconcileBetas pads with zeros or truncates so the output length exactly
// equals the target schema's declared length. Extra parameters are assumed
// uninformative and missing ones neutral.
func reconcileBetas(betas *model.Array, target int, log *model.Log) *model.Array {
	if betas.Rank() > 1 {
		shape := betas.Shape()
		row := make([]float64, betas.Cols())
		copy(row, betas.Data()[:betas.Cols()])
		betas = model.Vector(row)
		log.Add(model.WarnBetasCollapsed, "collapsed %q from shape %v to first row of length %d",
			model.FieldBetas, shape, betas.Len())
	}

	switch n := betas.Len(); {
	case n == target:
		return betas
	case n < target:
		padded := make([]float64, target)
		copy(padded, betas.Data())
		log.Add(model.WarnBetasPadded, "padded %q from %d to %d entries with zeros", model.FieldBetas, n, target)
		return model.Vector(padded)
	default:
		truncated := make([]float64, target)
		copy(truncated, betas.Data()[:target])
		log.Add(model.WarnBetasTruncated, "truncated %q from %d to %d entries", model.FieldBetas, n, target)
		return model.Vector(truncated)
	}
}

// countNonFinite reports NaN and Inf counts per field. Numeric corruption is
// surfaced, never silently dropped, and never fatal on its own.
func countNonFinite(field string, a *model.Array, log *model.Log) {
	if a == nil || a.Len() == 0 {
		return
	}
	nan, inf := a.CountNonFinite()
	if nan > 0 || inf > 0 {
		log.Add(model.WarnNonFinite, "field %q contains %d NaN and %d Inf values", field, nan, inf)
	}
}
