package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/chrisf-bit/agency-simulator-sub000/internal/engine"
)

type APIConfig struct {
	Addr        string
	DatabaseURL string

	// LevelFile optionally points at a YAML file of extra level
	// definitions, layered over the built-in ones.
	LevelFile string

	DefaultQuarterDuration time.Duration
}

type WorkerConfig struct {
	DatabaseURL string
	SweepEvery  time.Duration
	RunOnce     bool
}

type CLIConfig struct {
	APIBaseURL string
}

func LoadAPIFromEnv() (APIConfig, error) {
	addr := os.Getenv("PORT")
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("AGENCYSIM_API_ADDR", ":8080")
	}

	cfg := APIConfig{
		Addr:                   addr,
		DatabaseURL:            strings.TrimSpace(os.Getenv("DATABASE_URL")),
		LevelFile:              strings.TrimSpace(os.Getenv("AGENCYSIM_LEVEL_FILE")),
		DefaultQuarterDuration: envDurationDefault("AGENCYSIM_QUARTER_DURATION", 15*time.Minute),
	}
	// DATABASE_URL is optional here: without it the API runs on the
	// in-memory store, which is how one-off facilitated sessions run.
	return cfg, nil
}

func LoadWorkerFromEnv() (WorkerConfig, error) {
	cfg := WorkerConfig{
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SweepEvery:  envDurationDefault("AGENCYSIM_SWEEP_EVERY", 30*time.Second),
		RunOnce:     envBoolDefault("AGENCYSIM_RUN_ONCE", false),
	}
	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}

func LoadCLIFromEnv() CLIConfig {
	return CLIConfig{
		APIBaseURL: strings.TrimRight(envDefault("AGENCYSIM_API_BASE_URL", "http://localhost:8080"), "/"),
	}
}

// LoadLevels parses a YAML file of level definitions. Every level is
// validated here so a malformed file fails at startup, never mid-game.
func LoadLevels(path string) (map[string]engine.LevelConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read level file: %w", err)
	}
	var doc struct {
		Levels []engine.LevelConfig `yaml:"levels"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse level file: %w", err)
	}
	out := make(map[string]engine.LevelConfig, len(doc.Levels))
	for _, lvl := range doc.Levels {
		if err := lvl.Validate(); err != nil {
			return nil, fmt.Errorf("level file %s: %w", path, err)
		}
		if _, dup := out[lvl.Level]; dup {
			return nil, fmt.Errorf("level file %s: duplicate level %q", path, lvl.Level)
		}
		out[lvl.Level] = lvl
	}
	return out, nil
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDurationDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envBoolDefault(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
