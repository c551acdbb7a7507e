// Package translate remaps motion records between schemas: physics-sim
// trajectories into the SMPL layout, and SMPL into SMPLX. Each translation
// runs the shape normalizer at its boundary so it only ever sees canonical
// flat pose vectors.
package translate

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/retargetlab/mocap/internal/domain/model"
	"github.com/retargetlab/mocap/internal/domain/normalize"
	"github.com/retargetlab/mocap/internal/domain/project"
	"github.com/retargetlab/mocap/internal/domain/retarget"
)

// SMPLToSMPLX converts a flat SMPL record into the SMPLX field layout:
// the first three pose columns become root_orient, columns 3..65 become
// pose_body, and the flat poses field is dropped. Trans, fps and gender are
// carried over with documented defaults when absent.
func SMPLToSMPLX(rec *model.Record) (*model.Record, error) {
	nz := normalize.New(normalize.WithTargetBetasLen(model.SMPLXBetasLen))
	out, err := nz.Normalize(rec)
	if err != nil {
		return nil, err
	}

	width := out.Poses.Cols()
	if width < model.RootOrientCols {
		return nil, fmt.Errorf("%w: field %q has only %d columns, cannot split off %d-column root orientation",
			ErrPoseTooShort, model.FieldPoses, width, model.RootOrientCols)
	}
	if width > model.SMPLPoseWidth {
		out.Log.Add(model.WarnPoseTruncated, "truncated %q from %d to %d columns for the SMPL layout",
			model.FieldPoses, width, model.SMPLPoseWidth)
		trimmed, err := trimColumns(out.Poses, model.SMPLPoseWidth)
		if err != nil {
			return nil, err
		}
		out.Poses = trimmed
		width = model.SMPLPoseWidth
	}
	if width < model.SMPLBodyWidth {
		out.Log.Add(model.WarnShortPoseVector, "field %q has %d columns, expected at least %d for a full SMPL body",
			model.FieldPoses, width, model.SMPLBodyWidth)
	}

	bodyEnd := model.SMPLBodyWidth
	if width < bodyEnd {
		bodyEnd = width
	}
	rootOrient, err := sliceColumns(out.Poses, 0, model.RootOrientCols)
	if err != nil {
		return nil, err
	}
	// A root-orientation-only vector leaves no body columns to carry over.
	poseBody := model.MustArray([]int{out.Poses.Rows(), 0}, nil)
	if bodyEnd > model.RootOrientCols {
		poseBody, err = sliceColumns(out.Poses, model.RootOrientCols, bodyEnd)
		if err != nil {
			return nil, err
		}
	}

	out.RootOrient = rootOrient
	out.PoseBody = poseBody
	out.Poses = nil

	if out.FPS <= 0 {
		out.Log.Add(model.WarnImputedFPS, "no usable frame rate, using default %v", model.DefaultFPS)
		out.FPS = model.DefaultFPS
	}
	if out.Gender == "" {
		out.Gender = model.GenderNeutral
	}

	return out, nil
}

// PhysToSMPL converts a physics-sim trajectory record into the flat 72-wide
// SMPL layout. A 156-wide SMPLX pose vector is reduced to the 24 SMPL joints
// first; an already-flat 72-wide vector passes through. Other widths are kept
// with a warning, matching the tolerant upstream policy.
func PhysToSMPL(rec *model.Record) (*model.Record, error) {
	nz := normalize.New(normalize.WithTargetBetasLen(model.SMPLBetasLen))
	out, err := nz.Normalize(rec)
	if err != nil {
		return nil, err
	}

	switch width := out.Poses.Cols(); {
	case width >= retarget.SMPLXFullPoseWidth:
		projected, err := project.Columns(out, retarget.SMPLColumnsFromSMPLX())
		if err != nil {
			return nil, err
		}
		out = projected
	case width == model.SMPLPoseWidth:
		// Already in the SMPL layout.
	default:
		out.Log.Add(model.WarnUnexpectedWidth, "field %q has unexpected width %d, keeping as is",
			model.FieldPoses, width)
	}

	if out.FPS <= 0 {
		out.Log.Add(model.WarnImputedFPS, "no usable frame rate, using default %v", model.DefaultFPS)
		out.FPS = model.DefaultFPS
	}
	if out.Gender == "" {
		out.Gender = model.GenderNeutral
	}

	return out, nil
}

// sliceColumns copies the half-open column range [from, to) of a rank-1 or
// rank-2 pose array into a fresh rank-matching array.
func sliceColumns(poses *model.Array, from, to int) (*model.Array, error) {
	if to <= from {
		return nil, fmt.Errorf("%w: empty column range [%d, %d)", ErrPoseTooShort, from, to)
	}
	src, err := poses.AsMatrix()
	if err != nil {
		return nil, fmt.Errorf("splitting %q: %w", model.FieldPoses, err)
	}
	rows, _ := src.Dims()
	var dst mat.Dense
	dst.CloneFrom(src.Slice(0, rows, from, to))

	out := model.FromMatrix(&dst)
	if poses.Rank() == 1 {
		return model.Vector(out.Data()), nil
	}
	return out, nil
}

func trimColumns(poses *model.Array, width int) (*model.Array, error) {
	return sliceColumns(poses, 0, width)
}
