package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/retargetlab/mocap/internal/genmotions"
	"github.com/retargetlab/mocap/pkg/logger"
)

const defaultRunTimeout = 5 * time.Minute

func main() {
	var (
		outputDir = flag.String("out", "testdata/motions", "Output directory for generated bundles")
		count     = flag.Int("count", genmotions.DefaultCount, "Number of well-formed bundles to generate")
		frames    = flag.Int("frames", genmotions.DefaultFrames, "Frames per sequence")
		fps       = flag.Float64("fps", genmotions.DefaultFPS, "Recorded frame rate")
		seed      = flag.Int64("seed", 1, "Random seed")
		malformed = flag.Bool("malformed", true, "Also emit deliberately broken bundles")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &genmotions.Config{
		OutputDir: *outputDir,
		Count:     *count,
		Frames:    *frames,
		FPS:       *fps,
		Seed:      *seed,
		Malformed: *malformed,
	}
	if err := genmotions.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("generation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
