// Package config loads runtime settings from the environment, an optional
// .env file and an optional JSON tuning file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ironsheep/equip-scan-mcp/internal/detection"
	"github.com/ironsheep/equip-scan-mcp/internal/equipment"
	"github.com/ironsheep/equip-scan-mcp/internal/features"
)

type Config struct {
	LogLevel string

	MatcherURL         string
	MatcherTimeoutMs   int
	MatcherMaxAttempts int
	MatcherBackoffMs   int

	RecognizeTimeoutMs int
	ExtractWorkers     int

	TuningFile string
	Tuning     Tuning
}

// Tuning holds the empirically tuned constants that are kept as data. Any
// entry left out keeps its built-in default.
type Tuning struct {
	Detection map[equipment.Category]detection.Params `json:"detection,omitempty"`
	Sizes     equipment.SizeTable                      `json:"sizes,omitempty"`
	Budgets   features.BudgetTable                     `json:"budgets,omitempty"`
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		LogLevel: strings.ToLower(getEnv("EQUIP_SCAN_LOG_LEVEL", "info")),

		MatcherURL:         getEnv("EQUIP_SCAN_MATCHER_URL", "http://localhost:8080"),
		MatcherTimeoutMs:   getEnvInt("EQUIP_SCAN_MATCHER_TIMEOUT_MS", 10000),
		MatcherMaxAttempts: getEnvInt("EQUIP_SCAN_MATCHER_MAX_ATTEMPTS", 3),
		MatcherBackoffMs:   getEnvInt("EQUIP_SCAN_MATCHER_BACKOFF_MS", 250),

		RecognizeTimeoutMs: getEnvInt("EQUIP_SCAN_RECOGNIZE_TIMEOUT_MS", 30000),
		ExtractWorkers:     getEnvInt("EQUIP_SCAN_EXTRACT_WORKERS", runtime.NumCPU()),

		TuningFile: getEnv("EQUIP_SCAN_TUNING_FILE", ""),
	}

	if cfg.MatcherMaxAttempts < 1 {
		cfg.MatcherMaxAttempts = 1
	}
	if cfg.ExtractWorkers < 1 {
		cfg.ExtractWorkers = 1
	}

	if cfg.TuningFile != "" {
		tuning, err := LoadTuning(cfg.TuningFile)
		if err != nil {
			return Config{}, err
		}
		cfg.Tuning = tuning
	}

	return cfg, nil
}

// LoadTuning reads and validates a tuning file.
func LoadTuning(path string) (Tuning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tuning{}, fmt.Errorf("failed to read tuning file: %w", err)
	}

	var t Tuning
	if err := json.Unmarshal(data, &t); err != nil {
		return Tuning{}, fmt.Errorf("failed to parse tuning file %s: %w", path, err)
	}

	for c, p := range t.Detection {
		if _, err := equipment.ParseCategory(string(c)); err != nil {
			return Tuning{}, fmt.Errorf("tuning file %s: %w", path, err)
		}
		if err := p.Validate(); err != nil {
			return Tuning{}, fmt.Errorf("tuning file %s: %s params: %w", path, c, err)
		}
	}
	known := make(map[equipment.DetectionType]bool)
	for _, dt := range equipment.DetectionTypes() {
		known[dt] = true
	}
	for dt, s := range t.Sizes {
		if !known[dt] || s.Width <= 0 || s.Height <= 0 {
			return Tuning{}, fmt.Errorf("tuning file %s: invalid size for %q", path, dt)
		}
	}
	for dt, b := range t.Budgets {
		if !known[dt] || b <= 0 {
			return Tuning{}, fmt.Errorf("tuning file %s: invalid budget for %q", path, dt)
		}
	}

	return t, nil
}

func (c Config) Debug() bool {
	return c.LogLevel == "debug"
}

func (c Config) MatcherTimeout() time.Duration {
	return time.Duration(c.MatcherTimeoutMs) * time.Millisecond
}

func (c Config) MatcherBackoff() time.Duration {
	return time.Duration(c.MatcherBackoffMs) * time.Millisecond
}

func (c Config) RecognizeTimeout() time.Duration {
	return time.Duration(c.RecognizeTimeoutMs) * time.Millisecond
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
