package model

// Canonical bundle field names shared by every stage. Upstream datasets spell
// some of these differently; the ingestion adapter converges on these keys.
const (
	FieldPoses          = "poses"
	FieldTrans          = "trans"
	FieldBetas          = "betas"
	FieldFPS            = "fps"
	FieldGender         = "gender"
	FieldRootOrient     = "root_orient"
	FieldPoseBody       = "pose_body"
	FieldMocapFrameRate = "mocap_frame_rate"

	// FieldMocapFramerateLegacy is the historical spelling still present in
	// older captures. It is renamed to FieldMocapFrameRate on ingestion.
	FieldMocapFramerateLegacy = "mocap_framerate"
)

// Schema identifies the pose-parameter layout a record conforms to.
type Schema string

const (
	SchemaPhys  Schema = "phys"
	SchemaSMPL  Schema = "smpl"
	SchemaSMPLX Schema = "smplx"
)

// Pose layout constants for the supported schemas.
const (
	SMPLPoseWidth  = 72 // 24 joints x 3 axis-angle components
	SMPLBodyWidth  = 66 // root + 21 body joints, hands excluded
	SMPLBetasLen   = 10
	SMPLXBetasLen  = 16
	RootOrientCols = 3
	PoseBodyCols   = 63
	JointCols      = 3 // axis-angle components per joint
)

// BetasLen returns the declared shape-parameter length of the schema.
func (s Schema) BetasLen() int {
	if s == SchemaSMPLX {
		return SMPLXBetasLen
	}
	return SMPLBetasLen
}

// Gender is the body-model gender tag.
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderNeutral Gender = "neutral"
)

// ParseGender maps an upstream gender string onto the known set, defaulting
// to neutral for anything unrecognized or empty.
func ParseGender(s string) Gender {
	switch Gender(s) {
	case GenderMale, GenderFemale, GenderNeutral:
		return Gender(s)
	default:
		return GenderNeutral
	}
}

// DefaultFPS is the documented fallback used whenever a source frame rate is
// missing, non-numeric or non-positive.
const DefaultFPS = 30.0

// Record is the motion sequence flowing through the pipeline: numeric arrays
// plus scalar metadata. A record is created fresh at ingestion and each stage
// returns a new, validated record rather than mutating its input.
type Record struct {
	Poses *Array // flat pose parameters, rank 1 or 2 after normalization
	Trans *Array // per-frame root translation
	Betas *Array // shape parameters, rank 1

	// SMPLX-side fields produced by the SMPL -> SMPLX translation.
	RootOrient *Array
	PoseBody   *Array

	FPS    float64
	Gender Gender

	// Log accumulates warning-class conditions observed while processing.
	Log Log
}

// Clone deep-copies the record, including its processing log.
func (r *Record) Clone() *Record {
	out := &Record{FPS: r.FPS, Gender: r.Gender}
	if r.Poses != nil {
		out.Poses = r.Poses.Clone()
	}
	if r.Trans != nil {
		out.Trans = r.Trans.Clone()
	}
	if r.Betas != nil {
		out.Betas = r.Betas.Clone()
	}
	if r.RootOrient != nil {
		out.RootOrient = r.RootOrient.Clone()
	}
	if r.PoseBody != nil {
		out.PoseBody = r.PoseBody.Clone()
	}
	out.Log = append(Log(nil), r.Log...)
	return out
}

// Frames returns the number of pose frames, zero when no poses are present.
func (r *Record) Frames() int {
	switch {
	case r.Poses != nil && r.Poses.Len() > 0:
		return r.Poses.Rows()
	case r.RootOrient != nil && r.RootOrient.Len() > 0:
		return r.RootOrient.Rows()
	default:
		return 0
	}
}
