package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if MOCAP_CONFIG is set
//  3. env (prefix MOCAP_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("MOCAP_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: MOCAP_TARGET_FPS, MOCAP_WORKER_COUNT, ...
	// Underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("MOCAP_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "mocap_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.TargetSchema {
	case "smpl", "smplx":
	default:
		return fmt.Errorf("%w: target_schema %q, want smpl or smplx", ErrInvalidConfig, c.TargetSchema)
	}
	if c.TargetFPS <= 0 {
		return fmt.Errorf("%w: target_fps %v must be positive", ErrInvalidConfig, c.TargetFPS)
	}
	if c.FallbackFPS <= 0 {
		return fmt.Errorf("%w: fallback_fps %v must be positive", ErrInvalidConfig, c.FallbackFPS)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("%w: queue_size %d must be positive", ErrInvalidConfig, c.QueueSize)
	}
	for _, idx := range c.JointIndices {
		if idx < 0 {
			return fmt.Errorf("%w: joint index %d must not be negative", ErrInvalidConfig, idx)
		}
	}
	return nil
}
