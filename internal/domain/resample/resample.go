// Package resample reconciles a source frame rate against a target rate by
// integer decimation. Downsampling is lossy but deterministic: identical
// inputs always select identical frames, and frames are never interpolated.
package resample

import (
	"fmt"
	"math"

	"github.com/retargetlab/mocap/internal/domain/model"
)

// Skip computes the integer frame-skip factor for a source and target rate.
// The factor is never below 1, so a target rate above the source keeps every
// frame.
func Skip(sourceFPS, targetFPS float64) (int, error) {
	if targetFPS <= 0 || math.IsNaN(targetFPS) || math.IsInf(targetFPS, 0) {
		return 0, fmt.Errorf("%w: target fps %v", ErrBadTargetFPS, targetFPS)
	}
	if sourceFPS <= 0 || math.IsNaN(sourceFPS) || math.IsInf(sourceFPS, 0) {
		sourceFPS = model.DefaultFPS
	}
	skip := int(math.Round(sourceFPS / targetFPS))
	if skip < 1 {
		skip = 1
	}
	return skip, nil
}

// Resample decimates a record from its source rate down to targetFPS,
// keeping every skip-th frame starting with the first. The last frame
// survives whenever its index is a multiple of the skip factor. The output
// row count is ceil(rows/skip). The input record is not mutated.
//
// A missing or invalid source rate is imputed as the documented default and
// noted on the record rather than aborting the file.
func Resample(rec *model.Record, targetFPS float64) (*model.Record, error) {
	out := rec.Clone()

	sourceFPS := out.FPS
	if sourceFPS <= 0 || math.IsNaN(sourceFPS) || math.IsInf(sourceFPS, 0) {
		out.Log.Add(model.WarnImputedFPS, "invalid source fps %v, using default %v", sourceFPS, model.DefaultFPS)
		sourceFPS = model.DefaultFPS
	}

	skip, err := Skip(sourceFPS, targetFPS)
	if err != nil {
		return nil, err
	}

	if skip > 1 {
		if out.Poses != nil {
			decimated, err := decimate(out.Poses, skip)
			if err != nil {
				return nil, fmt.Errorf("resampling %q: %w", model.FieldPoses, err)
			}
			out.Poses = decimated
		}
		if out.Trans != nil && out.Trans.Len() > 0 {
			decimated, err := decimate(out.Trans, skip)
			if err != nil {
				return nil, fmt.Errorf("resampling %q: %w", model.FieldTrans, err)
			}
			out.Trans = decimated
		}
	}

	out.FPS = targetFPS
	return out, nil
}

// decimate keeps every skip-th row of a rank-1 or rank-2 array. A rank-1
// array is a single frame and passes through unchanged.
func decimate(a *model.Array, skip int) (*model.Array, error) {
	switch a.Rank() {
	case 1:
		return a, nil
	case 2:
		shape := a.Shape()
		rows, cols := shape[0], shape[1]
		kept := (rows + skip - 1) / skip
		data := make([]float64, 0, kept*cols)
		src := a.Data()
		for r := 0; r < rows; r += skip {
			data = append(data, src[r*cols:(r+1)*cols]...)
		}
		return model.NewArray([]int{kept, cols}, data)
	default:
		return nil, fmt.Errorf("%w: rank %d", ErrBadRank, a.Rank())
	}
}
