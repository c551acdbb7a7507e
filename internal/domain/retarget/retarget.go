// Package retarget holds the joint-topology tables and the hand-off contract
// into the robot-specific retargeting stage. The kinematic solve itself lives
// outside this module; everything here is the validated data contract feeding
// it.
package retarget

import (
	"fmt"

	"github.com/retargetlab/mocap/internal/domain/model"
)

// RobotTarget identifies a supported retargeting skeleton.
type RobotTarget string

const (
	RobotUnitreeG1 RobotTarget = "unitree_g1"
)

// SMPLXFullPoseWidth is the flat axis-angle width of a full 52-joint SMPLX
// pose vector (body, jaw, eyes and both hands).
const SMPLXFullPoseWidth = 156

// SMPLXToSMPLJoints lists the 24 SMPL joints inside the 55-joint SMPLX
// layout: the shared body joints plus the two index fingers standing in for
// the SMPL hands.
var SMPLXToSMPLJoints = []int{
	0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11,
	12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 25, 40,
}

// SMPLColumnsFromSMPLX expands SMPLXToSMPLJoints into the 72 axis-angle
// column indices of a 156-wide SMPLX pose vector.
func SMPLColumnsFromSMPLX() []int {
	cols := make([]int, 0, len(SMPLXToSMPLJoints)*model.JointCols)
	for _, j := range SMPLXToSMPLJoints {
		for c := 0; c < model.JointCols; c++ {
			cols = append(cols, j*model.JointCols+c)
		}
	}
	return cols
}

// PhysToSMPLJointNames maps physics-humanoid node names onto SMPL joint
// names. Keys are the exact source skeleton node names.
var PhysToSMPLJointNames = map[string]string{
	"pelvis":          "Pelvis",
	"torso":           "Spine",
	"head":            "Head",
	"right_upper_arm": "R_Shoulder",
	"right_lower_arm": "R_Elbow",
	"right_hand":      "R_Wrist",
	"left_upper_arm":  "L_Shoulder",
	"left_lower_arm":  "L_Elbow",
	"left_hand":       "L_Wrist",
	"right_thigh":     "R_Hip",
	"right_shin":      "R_Knee",
	"right_foot":      "R_Ankle",
	"left_thigh":      "L_Hip",
	"left_shin":       "L_Knee",
	"left_foot":       "L_Ankle",
}

// Handoff is the validated input handed to a robot retargeter.
type Handoff struct {
	Robot      RobotTarget
	RootOrient *model.Array
	PoseBody   *model.Array
	Trans      *model.Array
	Betas      *model.Array
	FPS        float64
	Gender     model.Gender
}

// BuildHandoff checks that a translated SMPLX record satisfies the
// retargeter's shape contract and packages it for hand-off. The record is not
// mutated.
func BuildHandoff(rec *model.Record, robot RobotTarget) (*Handoff, error) {
	if rec.RootOrient == nil || rec.PoseBody == nil {
		return nil, fmt.Errorf("%w: record is missing %q or %q, translate to SMPLX first",
			ErrIncomplete, model.FieldRootOrient, model.FieldPoseBody)
	}
	if got := rec.RootOrient.Cols(); got != model.RootOrientCols {
		return nil, fmt.Errorf("%w: field %q has width %d, want %d",
			ErrIncomplete, model.FieldRootOrient, got, model.RootOrientCols)
	}
	if got := rec.PoseBody.Cols(); got != model.PoseBodyCols {
		return nil, fmt.Errorf("%w: field %q has width %d, want %d",
			ErrIncomplete, model.FieldPoseBody, got, model.PoseBodyCols)
	}
	if got, want := rec.PoseBody.Rows(), rec.RootOrient.Rows(); got != want {
		return nil, fmt.Errorf("%w: field %q has %d frames, field %q has %d",
			ErrIncomplete, model.FieldPoseBody, got, model.FieldRootOrient, want)
	}
	if rec.Trans != nil && rec.Trans.Len() > 0 && rec.Trans.Rows() != rec.RootOrient.Rows() {
		return nil, fmt.Errorf("%w: field %q has %d frames, field %q has %d",
			ErrIncomplete, model.FieldTrans, rec.Trans.Rows(), model.FieldRootOrient, rec.RootOrient.Rows())
	}
	if rec.FPS <= 0 {
		return nil, fmt.Errorf("%w: frame rate %v is not positive", ErrIncomplete, rec.FPS)
	}

	return &Handoff{
		Robot:      robot,
		RootOrient: rec.RootOrient,
		PoseBody:   rec.PoseBody,
		Trans:      rec.Trans,
		Betas:      rec.Betas,
		FPS:        rec.FPS,
		Gender:     rec.Gender,
	}, nil
}
