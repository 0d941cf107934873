package app

import (
	"errors"
	"math"

	"github.com/specialistvlad/gppgo/internal/nav"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPath string // .hcl, .yaml or .yml file, or a directory of them
	Name       string // pipeline namespace inside the configuration; empty selects the document root

	Start nav.Pose
	Goal  nav.Pose
	// Tolerance overrides the configured tolerance when it is not negative.
	Tolerance float64
	// Bounds is the map handed to the plugins. Nil means an unbounded map in
	// Frame.
	Bounds *nav.Bounds
	Frame  string

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.ConfigPath == "" {
		return nil, errors.New("ConfigPath is a required configuration field and cannot be empty")
	}
	if cfg.Bounds != nil && (cfg.Bounds.MinX > cfg.Bounds.MaxX || cfg.Bounds.MinY > cfg.Bounds.MaxY) {
		return nil, errors.New("Bounds minimum must not exceed maximum")
	}
	return &cfg, nil
}

// Map returns the map handle described by the configuration.
func (c *Config) Map() nav.Map {
	if c.Bounds != nil {
		b := *c.Bounds
		if b.FrameID == "" {
			b.FrameID = c.Frame
		}
		return b
	}
	return nav.Bounds{
		FrameID: c.Frame,
		MinX:    math.Inf(-1),
		MinY:    math.Inf(-1),
		MaxX:    math.Inf(1),
		MaxY:    math.Inf(1),
	}
}
