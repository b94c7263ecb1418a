// Package config loads and stores gocalc settings in the XDG config dir.
// Environment variables override values from the file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/njchilds90/gocalc/calc"
	"github.com/njchilds90/gocalc/internal/xdg"
)

// Config holds gocalc settings.
type Config struct {
	LogLevel  string       `json:"log_level"`
	LogFormat string       `json:"log_format"`
	Server    ServerConfig `json:"server"`
	Batch     BatchConfig  `json:"batch"`
}

// ServerConfig holds HTTP tool endpoint settings.
type ServerConfig struct {
	Addr                string `json:"addr"`
	ReadTimeoutSeconds  int    `json:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `json:"write_timeout_seconds"`
	MaxBodyBytes        int64  `json:"max_body_bytes"`
}

// ReadTimeout returns the read timeout as a duration.
func (s ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the write timeout as a duration.
func (s ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSeconds) * time.Second
}

// BatchConfig holds defaults for calculate-all runs.
type BatchConfig struct {
	// Operations is the batch order; empty means every operation.
	Operations     []string `json:"operations"`
	LimitApproach  string   `json:"limit_approach"`
	LimitDirection string   `json:"limit_direction"`
}

// ParsedOperations converts Operations to calc operations.
func (b BatchConfig) ParsedOperations() ([]calc.Operation, error) {
	ops := make([]calc.Operation, 0, len(b.Operations))
	for _, name := range b.Operations {
		op, ok := calc.ParseOperation(strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("unknown operation %q", name)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// Direction converts LimitDirection to a calc direction.
func (b BatchConfig) Direction() (calc.Direction, error) {
	d, ok := calc.ParseDirection(b.LimitDirection)
	if !ok {
		return "", fmt.Errorf("unknown limit direction %q", b.LimitDirection)
	}
	return d, nil
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "text",
		Server: ServerConfig{
			Addr:                ":8080",
			ReadTimeoutSeconds:  15,
			WriteTimeoutSeconds: 15,
			MaxBodyBytes:        1 << 20, // 1 MiB
		},
		Batch: BatchConfig{
			LimitApproach:  "0",
			LimitDirection: string(calc.TwoSided),
		},
	}
}

// Path returns the path to the config file.
func Path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration; a missing file yields defaults. Environment
// overrides are applied last.
func Load() (Config, error) {
	c := Default()
	p, err := Path()
	if err != nil {
		return c, err
	}
	data, err := os.ReadFile(p)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return c, err
	default:
		if err := json.Unmarshal(data, &c); err != nil {
			return c, fmt.Errorf("parse %s: %w", p, err)
		}
	}
	if err := applyEnv(&c); err != nil {
		return c, err
	}
	return c, nil
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := Path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}

func applyEnv(c *Config) error {
	c.LogLevel = getEnv("GOCALC_LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("GOCALC_LOG_FORMAT", c.LogFormat)
	c.Server.Addr = getEnv("GOCALC_ADDR", c.Server.Addr)
	c.Batch.LimitApproach = getEnv("GOCALC_LIMIT_APPROACH", c.Batch.LimitApproach)
	c.Batch.LimitDirection = getEnv("GOCALC_LIMIT_DIRECTION", c.Batch.LimitDirection)
	if v := os.Getenv("GOCALC_OPERATIONS"); v != "" {
		c.Batch.Operations = nil
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				c.Batch.Operations = append(c.Batch.Operations, name)
			}
		}
	}
	if v := os.Getenv("GOCALC_MAX_BODY_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return fmt.Errorf("GOCALC_MAX_BODY_BYTES: invalid value %q", v)
		}
		c.Server.MaxBodyBytes = n
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
