// Package project extracts a subset of joints from a motion record. It backs
// both the lightweight "simple projection" inspection path and the column
// selection feeding the robot retargeter.
package project

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/retargetlab/mocap/internal/domain/model"
)

// Joints returns a new record whose poses are restricted to the requested
// joints, preserving frame order. Each joint occupies three consecutive
// axis-angle columns. The source record is never mutated.
//
// An index at or beyond the record's joint count is error-class and names the
// offending index together with the actual dimension.
func Joints(rec *model.Record, jointIndices []int) (*model.Record, error) {
	if rec.Poses == nil || rec.Poses.Len() == 0 {
		return nil, fmt.Errorf("%w: field %q is empty", ErrNoPoses, model.FieldPoses)
	}
	if rec.Poses.Rank() > 2 {
		return nil, fmt.Errorf("%w: field %q has rank %d, normalize first",
			ErrNoPoses, model.FieldPoses, rec.Poses.Rank())
	}

	jointCount := rec.Poses.Cols() / model.JointCols
	for _, idx := range jointIndices {
		if idx < 0 || idx >= jointCount {
			return nil, fmt.Errorf("%w: joint index %d out of range for %d joints (pose width %d)",
				ErrIndexOutOfRange, idx, jointCount, rec.Poses.Cols())
		}
	}

	src, err := rec.Poses.AsMatrix()
	if err != nil {
		return nil, fmt.Errorf("projecting %q: %w", model.FieldPoses, err)
	}

	rows, _ := src.Dims()
	dst := mat.NewDense(rows, len(jointIndices)*model.JointCols, nil)
	for j, idx := range jointIndices {
		for c := 0; c < model.JointCols; c++ {
			dstCol := j*model.JointCols + c
			srcCol := idx*model.JointCols + c
			dst.SetCol(dstCol, mat.Col(nil, srcCol, src))
		}
	}

	out := rec.Clone()
	out.Poses = model.FromMatrix(dst)
	return out, nil
}

// Columns extracts raw pose columns rather than joint triples. Used where the
// caller has already expanded joint indices into parameter indices.
func Columns(rec *model.Record, cols []int) (*model.Record, error) {
	if rec.Poses == nil || rec.Poses.Len() == 0 {
		return nil, fmt.Errorf("%w: field %q is empty", ErrNoPoses, model.FieldPoses)
	}
	width := rec.Poses.Cols()
	for _, c := range cols {
		if c < 0 || c >= width {
			return nil, fmt.Errorf("%w: column index %d out of range for pose width %d",
				ErrIndexOutOfRange, c, width)
		}
	}

	src, err := rec.Poses.AsMatrix()
	if err != nil {
		return nil, fmt.Errorf("projecting %q: %w", model.FieldPoses, err)
	}

	rows, _ := src.Dims()
	dst := mat.NewDense(rows, len(cols), nil)
	for i, c := range cols {
		dst.SetCol(i, mat.Col(nil, c, src))
	}

	out := rec.Clone()
	out.Poses = model.FromMatrix(dst)
	return out, nil
}
