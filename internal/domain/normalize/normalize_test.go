package normalize_test

import (
	"math"
	"testing"

	"github.com/retargetlab/mocap/internal/domain/model"
	"github.com/retargetlab/mocap/internal/domain/normalize"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalizer_Normalize(t *testing.T) {
	Convey("Given a normalizer with the default betas length", t, func() {
		nz := normalize.New()

		Convey("When poses arrive in the per-joint rank-3 layout", func() {
			frames := 331
			data := make([]float64, frames*24*3)
			for i := range data {
				data[i] = float64(i % 7)
			}
			rec := &model.Record{
				Poses: model.MustArray([]int{frames, 24, 3}, data),
				Trans: model.MustArray([]int{frames, 3}, make([]float64, frames*3)),
			}

			out, err := nz.Normalize(rec)

			Convey("Then they are flattened row-major to (frames, 72)", func() {
				So(err, ShouldBeNil)
				So(out.Poses.Shape(), ShouldResemble, []int{331, 72})
				So(out.Poses.Data()[72], ShouldEqual, data[72])
				So(out.Log.Has(model.WarnRankRepaired), ShouldBeTrue)
			})

			Convey("And the input record is untouched", func() {
				So(err, ShouldBeNil)
				So(rec.Poses.Rank(), ShouldEqual, 3)
				So(rec.Log, ShouldBeEmpty)
			})
		})

		Convey("When poses are missing or empty", func() {
			_, errNil := nz.Normalize(&model.Record{})
			_, errEmpty := nz.Normalize(&model.Record{
				Poses: model.MustArray([]int{0, 72}, nil),
			})

			Convey("Then both fail naming the poses field", func() {
				So(errNil, ShouldNotBeNil)
				So(errNil.Error(), ShouldContainSubstring, `"poses"`)
				So(errEmpty, ShouldNotBeNil)
				So(errEmpty.Error(), ShouldContainSubstring, `"poses"`)
			})
		})

		Convey("When the pose rank is unusable", func() {
			rec := &model.Record{
				Poses: model.MustArray([]int{2, 3, 4, 3}, make([]float64, 72)),
			}
			_, err := nz.Normalize(rec)

			Convey("Then normalization fails with a rank error", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "rank 4")
			})
		})

		Convey("When the rank-3 trailing dimension is not 3", func() {
			rec := &model.Record{
				Poses: model.MustArray([]int{2, 18, 4}, make([]float64, 144)),
			}
			_, err := nz.Normalize(rec)

			Convey("Then normalization refuses to flatten", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When trans disagrees with poses on frame count", func() {
			rec := &model.Record{
				Poses: model.MustArray([]int{10, 72}, make([]float64, 720)),
				Trans: model.MustArray([]int{9, 3}, make([]float64, 27)),
			}
			_, err := nz.Normalize(rec)

			Convey("Then normalization fails naming both fields", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, `"trans"`)
				So(err.Error(), ShouldContainSubstring, `"poses"`)
			})
		})

		Convey("When poses and trans contain non-finite values", func() {
			poses := make([]float64, 2*72)
			poses[0] = math.NaN()
			poses[1] = math.Inf(1)
			rec := &model.Record{
				Poses: model.MustArray([]int{2, 72}, poses),
			}

			out, err := nz.Normalize(rec)

			Convey("Then the counts are warnings, not errors", func() {
				So(err, ShouldBeNil)
				So(out.Log.Has(model.WarnNonFinite), ShouldBeTrue)
				So(out.Log.Messages()[0], ShouldContainSubstring, "1 NaN and 1 Inf")
			})
		})

		Convey("When normalizing twice", func() {
			poses := make([]float64, 3*24*3)
			poses[5] = math.NaN()
			rec := &model.Record{
				Poses: model.MustArray([]int{3, 24, 3}, poses),
				Betas: model.Vector([]float64{0.5}),
			}

			once, err1 := nz.Normalize(rec)
			twice, err2 := nz.Normalize(once)

			Convey("Then the second pass is a no-op", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(twice.Poses.Equal(once.Poses), ShouldBeTrue)
				So(twice.Betas.Equal(once.Betas), ShouldBeTrue)
				So(len(twice.Log), ShouldEqual, len(once.Log))
			})
		})
	})
}

func TestNormalizer_Betas(t *testing.T) {
	Convey("Given a normalizer targeting the SMPLX betas length", t, func() {
		nz := normalize.New(normalize.WithTargetBetasLen(model.SMPLXBetasLen))
		poses := model.MustArray([]int{2, 72}, make([]float64, 144))

		Convey("When betas are shorter than the target", func() {
			rec := &model.Record{
				Poses: poses,
				Betas: model.Vector([]float64{1, 2, 3, 4, 5}),
			}
			out, err := nz.Normalize(rec)

			Convey("Then they are padded with zeros to 16", func() {
				So(err, ShouldBeNil)
				So(out.Betas.Len(), ShouldEqual, 16)
				So(out.Betas.Data()[:5], ShouldResemble, []float64{1, 2, 3, 4, 5})
				So(out.Betas.Data()[5:], ShouldResemble, make([]float64, 11))
				So(out.Log.Has(model.WarnBetasPadded), ShouldBeTrue)
			})
		})

		Convey("When betas are longer than the target", func() {
			long := make([]float64, 20)
			for i := range long {
				long[i] = float64(i)
			}
			rec := &model.Record{Poses: poses, Betas: model.Vector(long)}
			out, err := nz.Normalize(rec)

			Convey("Then they are truncated to 16", func() {
				So(err, ShouldBeNil)
				So(out.Betas.Len(), ShouldEqual, 16)
				So(out.Betas.Data()[15], ShouldEqual, 15.0)
				So(out.Log.Has(model.WarnBetasTruncated), ShouldBeTrue)
			})
		})

		Convey("When betas arrive per-frame as a matrix", func() {
			rec := &model.Record{
				Poses: poses,
				Betas: model.MustArray([]int{2, 16}, make([]float64, 32)),
			}
			rec.Betas.Data()[0] = 7

			out, err := nz.Normalize(rec)

			Convey("Then only the first row is kept", func() {
				So(err, ShouldBeNil)
				So(out.Betas.Rank(), ShouldEqual, 1)
				So(out.Betas.Len(), ShouldEqual, 16)
				So(out.Betas.Data()[0], ShouldEqual, 7.0)
				So(out.Log.Has(model.WarnBetasCollapsed), ShouldBeTrue)
			})
		})

		Convey("When betas already match the target", func() {
			rec := &model.Record{
				Poses: poses,
				Betas: model.Vector(make([]float64, 16)),
			}
			out, err := nz.Normalize(rec)

			Convey("Then nothing is recorded", func() {
				So(err, ShouldBeNil)
				So(out.Log, ShouldBeEmpty)
			})
		})
	})
}
