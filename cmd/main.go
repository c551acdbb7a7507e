package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/retargetlab/mocap/internal/config"
	"github.com/retargetlab/mocap/pkg/logger"
)

// version is stamped at build time via -ldflags.
var version = "dev"

var cfg *config.Config

// rootCmd is the base command for the converter toolchain.
var rootCmd = &cobra.Command{
	Use:   "mocap",
	Short: "Motion-capture bundle converter",
	Long: `mocap converts motion-capture parameter bundles between physics-sim,
SMPL and SMPLX layouts: shape normalization, frame-rate decimation,
pose splitting and joint projection, run as a concurrent batch.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Init(); err != nil {
			return fmt.Errorf("init logging: %w", err)
		}

		var err error
		cfg, err = config.Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		if err := logger.SetLevelString(cfg.LogLevel); err != nil {
			logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info",
				logger.String("log_level", cfg.LogLevel), logger.Error(err))
			_ = logger.SetLevelString("info")
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the tool version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "mocap", version)
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "mocap:", err)
		os.Exit(1)
	}
}
