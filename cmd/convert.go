package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	service "github.com/retargetlab/mocap/internal/app"
	"github.com/retargetlab/mocap/internal/domain/model"
	"github.com/retargetlab/mocap/pkg/logger"
	"github.com/retargetlab/mocap/pkg/metrics"
)

// Metrics listener timeout constants.
const (
	metricsReadTimeout       = 10 * time.Second
	metricsWriteTimeout      = 10 * time.Second
	metricsReadHeaderTimeout = 5 * time.Second
)

var (
	convertSrc      string
	convertDst      string
	convertSchema   string
	convertFPS      float64
	convertWorkers  int
	convertManifest string
	convertJoints   []int
	convertForce    bool
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a bundle or a directory of bundles",
	Long: `Convert runs the full pipeline over one bundle or a capture tree:
read, ingest, normalize, translate, resample, optional joint projection,
write. Files fail independently; the command exits non-zero only when at
least one file failed.`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVar(&convertSrc, "src", "", "source bundle or directory (required)")
	convertCmd.Flags().StringVar(&convertDst, "dst", "", "destination file or directory (required)")
	convertCmd.Flags().StringVar(&convertSchema, "schema", "", "output schema: smpl or smplx (default from config)")
	convertCmd.Flags().Float64Var(&convertFPS, "fps", 0, "target frame rate (default from config)")
	convertCmd.Flags().IntVar(&convertWorkers, "workers", 0, "worker count, 0 = auto")
	convertCmd.Flags().StringVar(&convertManifest, "manifest", "", "YAML manifest restricting the batch to named motions")
	convertCmd.Flags().IntSliceVar(&convertJoints, "joints", nil, "joint indices to keep in the output pose matrix")
	convertCmd.Flags().BoolVar(&convertForce, "overwrite", false, "replace existing output files")
	_ = convertCmd.MarkFlagRequired("src")
	_ = convertCmd.MarkFlagRequired("dst")
}

func runConvert(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := logger.Get().Named("convert")

	schema := cfg.TargetSchema
	if convertSchema != "" {
		schema = convertSchema
	}
	if schema != string(model.SchemaSMPL) && schema != string(model.SchemaSMPLX) {
		return fmt.Errorf("schema %q: want smpl or smplx", schema)
	}
	fps := cfg.TargetFPS
	if convertFPS > 0 {
		fps = convertFPS
	}
	workers := cfg.WorkerCount
	if convertWorkers > 0 {
		workers = convertWorkers
	}
	joints := cfg.JointIndices
	if len(convertJoints) > 0 {
		joints = convertJoints
	}

	if cfg.MetricsAddr != "" {
		startMetricsListener(cmd, cfg.MetricsAddr)
	}

	jobs, err := service.BuildJobs(convertSrc, convertDst, convertManifest)
	if err != nil {
		return err
	}

	svc := service.New(
		service.WithLogger(log),
		service.WithTargetSchema(model.Schema(schema)),
		service.WithTargetFPS(fps),
		service.WithFallbackFPS(cfg.FallbackFPS),
		service.WithWorkerCount(workers),
		service.WithQueueSize(cfg.QueueSize),
		service.WithJointIndices(joints),
		service.WithAllowOverwrite(convertForce || cfg.AllowOverwrite),
	)

	report, err := svc.Run(ctx, jobs)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), report.Summary())
	if report.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", report.Failed, len(report.Files))
	}
	return nil
}

// startMetricsListener exposes /metrics for the lifetime of the batch.
func startMetricsListener(cmd *cobra.Command, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       metricsReadTimeout,
		WriteTimeout:      metricsWriteTimeout,
		ReadHeaderTimeout: metricsReadHeaderTimeout,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Get().Warn(cmd.Context(), "metrics listener failed",
				logger.String("addr", addr), logger.Error(err))
		}
	}()
}
