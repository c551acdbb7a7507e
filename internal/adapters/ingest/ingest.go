// Package ingest converts a raw on-disk array bundle, whatever its dataset's
// schema quirks, into a motion record. It is the only place that knows the
// upstream field-name conventions; everything downstream sees canonical keys.
package ingest

import (
	"fmt"
	"math"

	"github.com/retargetlab/mocap/internal/adapters/bundle"
	"github.com/retargetlab/mocap/internal/domain/model"
)

// Adapter turns raw bundles into motion records.
type Adapter struct {
	requireTrans bool
	defaultFPS   float64
}

// Option applies a configuration option to the Adapter.
type Option func(*Adapter)

// WithRequireTrans makes a missing trans field error-class. Physics-sim
// trajectories always carry translations; plain SMPL parameter files may not.
func WithRequireTrans(require bool) Option {
	return func(a *Adapter) {
		a.requireTrans = require
	}
}

// WithDefaultFPS overrides the fallback frame rate used when the source rate
// is missing or invalid.
func WithDefaultFPS(fps float64) Option {
	return func(a *Adapter) {
		if fps > 0 {
			a.defaultFPS = fps
		}
	}
}

// New creates an Adapter with the documented defaults.
func New(opts ...Option) *Adapter {
	a := &Adapter{defaultFPS: model.DefaultFPS}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// FromBundle builds a fresh record from a raw bundle. A missing required key
// is error-class: the failure enumerates the keys that were present and hints
// at the likely cause instead of guessing silently.
func (a *Adapter) FromBundle(b bundle.Bundle) (*model.Record, error) {
	rec := &model.Record{}

	poses, ok := b[model.FieldPoses]
	if !ok || poses.IsString() {
		return nil, fmt.Errorf("%w: no %q field; available keys: %v (hint: this may not be an SMPL parameter file; check that the right sibling file was selected)",
			ErrMissingKey, model.FieldPoses, b.Keys())
	}
	rec.Poses = poses.Array

	if trans, ok := b[model.FieldTrans]; ok && !trans.IsString() {
		rec.Trans = trans.Array
	} else if a.requireTrans {
		return nil, fmt.Errorf("%w: no %q field; available keys: %v (hint: this may not be an SMPL parameter file; check that the right sibling file was selected)",
			ErrMissingKey, model.FieldTrans, b.Keys())
	}

	if betas, ok := b[model.FieldBetas]; ok && !betas.IsString() {
		rec.Betas = betas.Array
	}

	rec.FPS = a.frameRate(b, &rec.Log)
	rec.Gender = genderOf(b)

	return rec, nil
}

// frameRate resolves the source frame rate across the naming generations:
// "fps", then "mocap_frame_rate", then the legacy "mocap_framerate" spelling.
// Anything missing or non-positive is imputed as the default, with a warning,
// rather than failing the file.
func (a *Adapter) frameRate(b bundle.Bundle, log *model.Log) float64 {
	for _, key := range []string{model.FieldFPS, model.FieldMocapFrameRate, model.FieldMocapFramerateLegacy} {
		v, ok := b[key]
		if !ok {
			continue
		}
		if key == model.FieldMocapFramerateLegacy {
			log.Add(model.WarnLegacyFrameKey, "renamed legacy %q to %q", key, model.FieldMocapFrameRate)
		}
		fps, ok := v.Scalar()
		if !ok || fps <= 0 || math.IsNaN(fps) || math.IsInf(fps, 0) {
			log.Add(model.WarnImputedFPS, "field %q holds invalid frame rate, using default %v", key, a.defaultFPS)
			return a.defaultFPS
		}
		return fps
	}
	log.Add(model.WarnImputedFPS, "no frame rate field, using default %v", a.defaultFPS)
	return a.defaultFPS
}

func genderOf(b bundle.Bundle) model.Gender {
	if v, ok := b[model.FieldGender]; ok && v.IsString() {
		return model.ParseGender(v.Str)
	}
	return model.GenderNeutral
}

// ToSMPLBundle serializes a flat SMPL record for persistence.
func ToSMPLBundle(rec *model.Record) bundle.Bundle {
	b := bundle.Bundle{
		model.FieldPoses: bundle.ArrayValue(rec.Poses),
		model.FieldFPS:   bundle.ArrayValue(model.Scalar(rec.FPS)),
	}
	if rec.Trans != nil {
		b[model.FieldTrans] = bundle.ArrayValue(rec.Trans)
	}
	if rec.Betas != nil {
		b[model.FieldBetas] = bundle.ArrayValue(rec.Betas)
	}
	return b
}

// ToSMPLXBundle serializes a translated SMPLX record for persistence. The
// flat poses field is intentionally absent; root_orient and pose_body replace
// it.
func ToSMPLXBundle(rec *model.Record) bundle.Bundle {
	b := bundle.Bundle{
		model.FieldRootOrient:     bundle.ArrayValue(rec.RootOrient),
		model.FieldPoseBody:       bundle.ArrayValue(rec.PoseBody),
		model.FieldMocapFrameRate: bundle.ArrayValue(model.Scalar(rec.FPS)),
		model.FieldGender:         bundle.StringValue(string(rec.Gender)),
	}
	if rec.Trans != nil {
		b[model.FieldTrans] = bundle.ArrayValue(rec.Trans)
	}
	if rec.Betas != nil {
		b[model.FieldBetas] = bundle.ArrayValue(rec.Betas)
	}
	return b
}
