package service_test

import (
	"os"
	"path/filepath"
	"testing"

	service "github.com/retargetlab/mocap/internal/app"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMotionNames(t *testing.T) {
	Convey("Given nested capture paths", t, func() {
		cases := []struct {
			rel  string
			name string
		}{
			{"walk.npz", "walk"},
			{filepath.Join("subject01", "walk_fast.npz"), "subject01+__+walk_fast"},
			{filepath.Join("s01", "take2", "jump.npz"), "s01+__+take2+__+jump"},
		}

		Convey("Then flattening and expansion are inverses", func() {
			for _, tc := range cases {
				So(service.MotionName(tc.rel), ShouldEqual, tc.name)
				So(service.MotionPath(tc.name), ShouldEqual, tc.rel)
			}
		})
	})
}

func TestManifest_SaveLoad(t *testing.T) {
	Convey("Given a manifest of motions", t, func() {
		path := filepath.Join(t.TempDir(), "dataset.yaml")
		m := &service.Manifest{Motions: []string{
			"subject01+__+walk",
			"subject01+__+run",
			"subject02+__+jump",
		}}

		Convey("When saved and loaded back", func() {
			So(m.Save(path), ShouldBeNil)
			got, err := service.LoadManifest(path)

			Convey("Then the motion list survives", func() {
				So(err, ShouldBeNil)
				So(got.Motions, ShouldResemble, m.Motions)
			})
		})

		Convey("When the manifest lists nothing", func() {
			So(os.WriteFile(path, []byte("motions: []\n"), 0o644), ShouldBeNil)
			_, err := service.LoadManifest(path)

			Convey("Then loading fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestBuildJobs(t *testing.T) {
	Convey("Given a capture tree", t, func() {
		srcDir := t.TempDir()
		dstDir := t.TempDir()
		So(os.MkdirAll(filepath.Join(srcDir, "subject01"), 0o755), ShouldBeNil)
		writeMotion(t, srcDir, filepath.Join("subject01", "walk.npz"), 8, true)
		writeMotion(t, srcDir, filepath.Join("subject01", "run.npz"), 8, true)
		writeMotion(t, srcDir, "solo.npz", 8, true)

		Convey("When jobs are built from the whole tree", func() {
			jobs, err := service.BuildJobs(srcDir, dstDir, "")

			Convey("Then every bundle gets a flattened destination", func() {
				So(err, ShouldBeNil)
				So(jobs, ShouldHaveLength, 3)
				So(jobs[0].DstPath, ShouldEqual, filepath.Join(dstDir, "solo.npz"))
				So(jobs[1].DstPath, ShouldEqual, filepath.Join(dstDir, "subject01+__+run.npz"))
				So(jobs[2].DstPath, ShouldEqual, filepath.Join(dstDir, "subject01+__+walk.npz"))
				So(jobs[0].ID, ShouldNotBeEmpty)
			})
		})

		Convey("When a manifest restricts the batch", func() {
			manifest := filepath.Join(t.TempDir(), "m.yaml")
			m := &service.Manifest{Motions: []string{"subject01+__+walk"}}
			So(m.Save(manifest), ShouldBeNil)

			jobs, err := service.BuildJobs(srcDir, dstDir, manifest)

			Convey("Then only the named motion is queued", func() {
				So(err, ShouldBeNil)
				So(jobs, ShouldHaveLength, 1)
				So(jobs[0].SrcPath, ShouldEqual, filepath.Join(srcDir, "subject01", "walk.npz"))
			})
		})

		Convey("When the source is a single file", func() {
			jobs, err := service.BuildJobs(filepath.Join(srcDir, "solo.npz"), filepath.Join(dstDir, "converted.npz"), "")

			Convey("Then one job targets the exact destination", func() {
				So(err, ShouldBeNil)
				So(jobs, ShouldHaveLength, 1)
				So(jobs[0].DstPath, ShouldEqual, filepath.Join(dstDir, "converted.npz"))
			})
		})

		Convey("When the source is a single file and the destination a directory", func() {
			jobs, err := service.BuildJobs(filepath.Join(srcDir, "solo.npz"), dstDir, "")

			Convey("Then the flattened name lands inside it", func() {
				So(err, ShouldBeNil)
				So(jobs[0].DstPath, ShouldEqual, filepath.Join(dstDir, "solo.npz"))
			})
		})

		Convey("When the source does not exist", func() {
			_, err := service.BuildJobs(filepath.Join(srcDir, "absent"), dstDir, "")

			Convey("Then job building fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
