package resample_test

import (
	"errors"
	"testing"

	"github.com/retargetlab/mocap/internal/domain/model"
	"github.com/retargetlab/mocap/internal/domain/resample"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSkip(t *testing.T) {
	Convey("Given source and target frame rates", t, func() {
		cases := []struct {
			source, target float64
			want           int
		}{
			{120, 30, 4},
			{100, 30, 3},
			{60, 30, 2},
			{30, 30, 1},
			{15, 30, 1},  // never upsample
			{50, 30, 2},  // 1.67 rounds to 2
			{40, 30, 1},  // 1.33 rounds to 1
			{0, 30, 1},   // invalid source assumes the default 30
			{-25, 30, 1}, // invalid source assumes the default 30
		}

		Convey("Then the skip factor is round(source/target), floored at 1", func() {
			for _, tc := range cases {
				got, err := resample.Skip(tc.source, tc.target)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, tc.want)
			}
		})

		Convey("And an unusable target rate is an error", func() {
			for _, target := range []float64{0, -30} {
				_, err := resample.Skip(120, target)
				So(errors.Is(err, resample.ErrBadTargetFPS), ShouldBeTrue)
			}
		})
	})
}

func TestResample(t *testing.T) {
	Convey("Given a 120fps record with 10 frames", t, func() {
		frames, cols := 10, 72
		data := make([]float64, frames*cols)
		for i := range data {
			data[i] = float64(i)
		}
		rec := &model.Record{
			Poses: model.MustArray([]int{frames, cols}, data),
			Trans: model.MustArray([]int{frames, 3}, make([]float64, frames*3)),
			FPS:   120,
		}

		Convey("When decimated to 30fps", func() {
			out, err := resample.Resample(rec, 30)

			Convey("Then ceil(10/4) = 3 frames survive, anchored at frame 0", func() {
				So(err, ShouldBeNil)
				So(out.Poses.Shape(), ShouldResemble, []int{3, 72})
				So(out.Trans.Shape(), ShouldResemble, []int{3, 3})
				So(out.FPS, ShouldEqual, 30.0)

				// Kept frames are 0, 4, 8.
				So(out.Poses.Data()[0], ShouldEqual, 0.0)
				So(out.Poses.Data()[72], ShouldEqual, float64(4*72))
				So(out.Poses.Data()[144], ShouldEqual, float64(8*72))
			})

			Convey("And the input record keeps its frames", func() {
				So(err, ShouldBeNil)
				So(rec.Poses.Rows(), ShouldEqual, 10)
				So(rec.FPS, ShouldEqual, 120.0)
			})
		})

		Convey("When the target rate matches the source", func() {
			out, err := resample.Resample(rec, 120)

			Convey("Then every frame survives", func() {
				So(err, ShouldBeNil)
				So(out.Poses.Equal(rec.Poses), ShouldBeTrue)
				So(out.FPS, ShouldEqual, 120.0)
			})
		})

		Convey("When the target rate is above the source", func() {
			out, err := resample.Resample(rec, 240)

			Convey("Then frames are kept, never interpolated", func() {
				So(err, ShouldBeNil)
				So(out.Poses.Rows(), ShouldEqual, 10)
				So(out.FPS, ShouldEqual, 240.0)
			})
		})

		Convey("When the target rate is unusable", func() {
			_, err := resample.Resample(rec, 0)

			Convey("Then resampling fails", func() {
				So(errors.Is(err, resample.ErrBadTargetFPS), ShouldBeTrue)
			})
		})
	})

	Convey("Given a record without a usable source rate", t, func() {
		rec := &model.Record{
			Poses: model.MustArray([]int{9, 72}, make([]float64, 9*72)),
			FPS:   0,
		}

		Convey("When decimated to 15fps", func() {
			out, err := resample.Resample(rec, 15)

			Convey("Then the default 30 is imputed with a warning, skip = 2", func() {
				So(err, ShouldBeNil)
				So(out.Log.Has(model.WarnImputedFPS), ShouldBeTrue)
				So(out.Poses.Rows(), ShouldEqual, 5) // ceil(9/2)
			})
		})
	})
}
