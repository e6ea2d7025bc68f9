// Package config reads tally settings from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/alexanderramin/tally/internal/domain"
)

// Config holds process-wide settings.
type Config struct {
	DBPath      string
	WeightBasis domain.WeightBasis
	LogUseCases bool

	// Today pins the current date for reports and new measurements.
	// Nil means the wall clock.
	Today *time.Time
}

// DefaultConfig returns settings with the database under the user's home.
func DefaultConfig(home string) Config {
	return Config{
		DBPath:      filepath.Join(home, ".tally", "tally.db"),
		WeightBasis: domain.WeightHours,
	}
}

// Load reads configuration from environment variables, falling back to
// defaults for any unset values.
func Load() (Config, error) {
	return load(os.Getenv, os.UserHomeDir)
}

func load(getenv func(string) string, homeDir func() (string, error)) (Config, error) {
	var cfg Config
	if v := getenv("TALLY_DB"); v != "" {
		cfg = DefaultConfig("")
		cfg.DBPath = v
	} else {
		home, err := homeDir()
		if err != nil {
			return Config{}, fmt.Errorf("finding home directory: %w", err)
		}
		cfg = DefaultConfig(home)
	}

	if v := getenv("TALLY_WEIGHT_BASIS"); v != "" {
		if !domain.ValidWeightBases[v] {
			return Config{}, fmt.Errorf("TALLY_WEIGHT_BASIS %q must be hours or budget", v)
		}
		cfg.WeightBasis = domain.WeightBasis(v)
	}
	if v := getenv("TALLY_LOG_USE_CASES"); v != "" {
		cfg.LogUseCases, _ = strconv.ParseBool(v)
	}
	if v := getenv("TALLY_TODAY"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return Config{}, fmt.Errorf("TALLY_TODAY %q is not a YYYY-MM-DD date", v)
		}
		cfg.Today = &d
	}
	return cfg, nil
}

// Clock returns the pinned date when set, otherwise time.Now.
func (c Config) Clock() func() time.Time {
	if c.Today == nil {
		return time.Now
	}
	today := *c.Today
	return func() time.Time { return today }
}
