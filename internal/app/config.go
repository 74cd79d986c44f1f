package app

import (
	"errors"
	"fmt"

	"github.com/vk/taskflow/internal/render"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	GraphPath string   // hcl file or directory
	Inputs    []string // JSON documents, one run each

	LogFormat       string
	LogLevel        string
	Workers         int
	Trace           bool
	Render          string
	HealthcheckPort int
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.GraphPath == "" {
		return nil, errors.New("GraphPath is a required configuration field and cannot be empty")
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("invalid workers %d: must not be negative", cfg.Workers)
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck port %d", cfg.HealthcheckPort)
	}
	format, err := render.ParseFormat(cfg.Render)
	if err != nil {
		return nil, err
	}
	cfg.Render = string(format)

	return &cfg, nil
}
