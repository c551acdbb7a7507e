package retarget_test

import (
	"errors"
	"testing"

	"github.com/retargetlab/mocap/internal/domain/model"
	"github.com/retargetlab/mocap/internal/domain/retarget"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSMPLColumnsFromSMPLX(t *testing.T) {
	Convey("Given the SMPLX joint subset", t, func() {
		cols := retarget.SMPLColumnsFromSMPLX()

		Convey("Then it expands to the full 72 SMPL columns", func() {
			So(len(cols), ShouldEqual, model.SMPLPoseWidth)

			// The shared body joints map straight through.
			So(cols[:6], ShouldResemble, []int{0, 1, 2, 3, 4, 5})
			So(cols[65], ShouldEqual, 65)

			// The SMPL hands come from SMPLX joints 25 and 40.
			So(cols[66:69], ShouldResemble, []int{75, 76, 77})
			So(cols[69:72], ShouldResemble, []int{120, 121, 122})
		})

		Convey("And every column fits inside a full SMPLX pose vector", func() {
			for _, c := range cols {
				So(c, ShouldBeLessThan, retarget.SMPLXFullPoseWidth)
			}
		})
	})
}

func TestPhysToSMPLJointNames(t *testing.T) {
	Convey("Given the physics-humanoid joint mapping", t, func() {
		Convey("Then it covers the 15-node humanoid symmetrically", func() {
			So(len(retarget.PhysToSMPLJointNames), ShouldEqual, 15)
			So(retarget.PhysToSMPLJointNames["pelvis"], ShouldEqual, "Pelvis")
			So(retarget.PhysToSMPLJointNames["left_foot"], ShouldEqual, "L_Ankle")
			So(retarget.PhysToSMPLJointNames["right_foot"], ShouldEqual, "R_Ankle")
		})
	})
}

func TestBuildHandoff(t *testing.T) {
	Convey("Given a fully translated SMPLX record", t, func() {
		frames := 12
		rec := &model.Record{
			RootOrient: model.MustArray([]int{frames, 3}, make([]float64, frames*3)),
			PoseBody:   model.MustArray([]int{frames, 63}, make([]float64, frames*63)),
			Trans:      model.MustArray([]int{frames, 3}, make([]float64, frames*3)),
			Betas:      model.Vector(make([]float64, model.SMPLXBetasLen)),
			FPS:        30,
			Gender:     model.GenderNeutral,
		}

		Convey("When building the hand-off", func() {
			h, err := retarget.BuildHandoff(rec, retarget.RobotUnitreeG1)

			Convey("Then the package carries every field", func() {
				So(err, ShouldBeNil)
				So(h.Robot, ShouldEqual, retarget.RobotUnitreeG1)
				So(h.RootOrient.Rows(), ShouldEqual, frames)
				So(h.PoseBody.Cols(), ShouldEqual, model.PoseBodyCols)
				So(h.FPS, ShouldEqual, 30.0)
			})
		})

		Convey("When the record was never split", func() {
			_, err := retarget.BuildHandoff(&model.Record{FPS: 30}, retarget.RobotUnitreeG1)

			Convey("Then the hand-off is refused", func() {
				So(errors.Is(err, retarget.ErrIncomplete), ShouldBeTrue)
			})
		})

		Convey("When the body width is wrong", func() {
			bad := rec.Clone()
			bad.PoseBody = model.MustArray([]int{frames, 27}, make([]float64, frames*27))
			_, err := retarget.BuildHandoff(bad, retarget.RobotUnitreeG1)

			Convey("Then the failure names the width", func() {
				So(errors.Is(err, retarget.ErrIncomplete), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "27")
			})
		})

		Convey("When trans disagrees on frame count", func() {
			bad := rec.Clone()
			bad.Trans = model.MustArray([]int{frames - 1, 3}, make([]float64, (frames-1)*3))
			_, err := retarget.BuildHandoff(bad, retarget.RobotUnitreeG1)

			Convey("Then the hand-off is refused", func() {
				So(errors.Is(err, retarget.ErrIncomplete), ShouldBeTrue)
			})
		})

		Convey("When the frame rate is missing", func() {
			bad := rec.Clone()
			bad.FPS = 0
			_, err := retarget.BuildHandoff(bad, retarget.RobotUnitreeG1)

			Convey("Then the hand-off is refused", func() {
				So(errors.Is(err, retarget.ErrIncomplete), ShouldBeTrue)
			})
		})
	})
}
