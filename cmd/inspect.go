package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"github.com/retargetlab/mocap/internal/adapters/bundle"
	"github.com/retargetlab/mocap/internal/adapters/ingest"
	"github.com/retargetlab/mocap/internal/domain/model"
	"github.com/retargetlab/mocap/internal/domain/normalize"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Show a bundle's keys, shapes and value statistics",
	Long: `Inspect prints every array in a bundle with its shape and value range,
then validates the bundle as a motion record. The command exits non-zero
when the bundle does not pass validation.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	path := args[0]
	out := cmd.OutOrStdout()

	b, err := bundle.Read(path)
	if err != nil {
		return fmt.Errorf("read %q: %w", path, err)
	}

	fmt.Fprintf(out, "%s: %d keys\n", path, len(b))
	for _, key := range b.Keys() {
		fmt.Fprintf(out, "  %-18s %s\n", key, describeValue(b[key]))
	}

	// A translated bundle carries root_orient/pose_body instead of poses.
	if _, split := b[model.FieldRootOrient]; split {
		if ro := b[model.FieldRootOrient].Array; ro != nil {
			fmt.Fprintf(out, "verdict: valid smplx layout (%d frames)\n", ro.Rows())
			return nil
		}
	}

	rec, err := ingest.New().FromBundle(b)
	if err == nil {
		rec, err = normalize.New().Normalize(rec)
	}
	if err != nil {
		fmt.Fprintf(out, "verdict: INVALID: %v\n", err)
		return fmt.Errorf("%q failed validation", path)
	}
	fmt.Fprintf(out, "verdict: valid (%d frames)\n", rec.Frames())
	for _, msg := range rec.Log.Messages() {
		fmt.Fprintf(out, "  warn %s\n", msg)
	}
	return nil
}

// describeValue renders one bundle entry: strings verbatim, arrays as
// shape plus a min/max/mean summary of the payload.
func describeValue(v bundle.Value) string {
	if v.IsString() {
		return fmt.Sprintf("str %q", v.Str)
	}
	a := v.Array
	data := a.Data()
	if len(data) == 0 {
		return fmt.Sprintf("f64 %v empty", a.Shape())
	}
	mean := floats.Sum(data) / float64(len(data))
	return fmt.Sprintf("f64 %v min=%.4g max=%.4g mean=%.4g",
		a.Shape(), floats.Min(data), floats.Max(data), mean)
}
