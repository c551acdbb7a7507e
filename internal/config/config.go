// Package config defines pipeline configuration structures and loading hooks.
//
// Conventions:
// - Fallback policies (frame rate, worker count) are named defaults here,
//   not inline literals at call sites.
// - Provide New() to build a Config with defaults, Load(ctx) to layer in
//   file and environment overrides.
// - External errors are wrapped via this package's error helpers.
package config

// Default policy values for the conversion pipeline.
const (
	DefaultTargetFPS    = 30.0
	DefaultFallbackFPS  = 30.0
	DefaultQueueSize    = 1024
	DefaultTargetSchema = "smplx"
)

// Config contains process configuration for the batch converter.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// TargetSchema selects the output layout: smpl or smplx.
	TargetSchema string `koanf:"target_schema"`

	// TargetFPS is the frame rate sequences are decimated to.
	TargetFPS float64 `koanf:"target_fps"`

	// FallbackFPS substitutes a missing or invalid source frame rate.
	FallbackFPS float64 `koanf:"fallback_fps"`

	// WorkerCount sets the number of conversion workers; zero auto-computes
	// min(NumCPU/2, file count).
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the in-memory conversion job queue.
	QueueSize int `koanf:"queue_size"`

	// JointIndices restricts output poses to the listed joints when
	// non-empty (simple projection).
	JointIndices []int `koanf:"joint_indices"`

	// AllowOverwrite permits replacing existing output bundles.
	AllowOverwrite bool `koanf:"allow_overwrite"`

	// MetricsAddr exposes /metrics on this address when non-empty, e.g.
	// ":9100". Empty disables the listener.
	MetricsAddr string `koanf:"metrics_addr"`
}

// New creates a Config populated with the documented defaults.
func New() *Config {
	return &Config{
		LogLevel:     "info",
		TargetSchema: DefaultTargetSchema,
		TargetFPS:    DefaultTargetFPS,
		FallbackFPS:  DefaultFallbackFPS,
		QueueSize:    DefaultQueueSize,
	}
}
