// Package config reads scene and query descriptions from JSON.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/taigrr/ratracer/pkg/radio"
)

// Defaults applied by Parse.
const (
	DefaultFrequency      = 1e9
	DefaultMaxReflections = 2
	DefaultSweepSteps     = 200
	DefaultPlanarityRMS   = 1e-3
)

// ErrInvalidConfig is returned for configurations that fail validation.
var ErrInvalidConfig = errors.New("invalid config")

// FieldError names the offending configuration field.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%v: %s: %s", ErrInvalidConfig, e.Field, e.Reason)
}

// Unwrap returns ErrInvalidConfig.
func (e *FieldError) Unwrap() error {
	return ErrInvalidConfig
}

// Vec is a point or direction written as [x, y, z].
type Vec [3]float64

// Config is the top-level JSON document.
type Config struct {
	Frequency      float64       `json:"frequency,omitempty"`
	MaxReflections *int          `json:"maxReflections,omitempty"`
	Model          string        `json:"model,omitempty"`        // glTF/GLB file, relative to the config
	PlanarityRMS   float64       `json:"planarityRms,omitempty"` // max mean distance of mesh vertices to the fitted plane
	Surfaces       []SurfaceCfg  `json:"surfaces,omitempty"`
	Tx             DeviceCfg     `json:"tx"`
	Rx             DeviceCfg     `json:"rx"`
	Sweep          *SweepCfg     `json:"sweep,omitempty"`
	Materials      []MaterialCfg `json:"materials,omitempty"` // materials for model meshes, by mesh name

	dir string
}

// SurfaceCfg is one infinite reflecting plane.
type SurfaceCfg struct {
	Name     string             `json:"name,omitempty"`
	Point    Vec                `json:"point"`
	Normal   Vec                `json:"normal"`
	Material radio.MaterialSpec `json:"material"`
}

// MaterialCfg overrides the material of a model mesh.
type MaterialCfg struct {
	Mesh     string             `json:"mesh"`
	Material radio.MaterialSpec `json:"material"`
}

// DeviceCfg places an antenna.
type DeviceCfg struct {
	Position Vec               `json:"position"`
	Axis     Vec               `json:"axis"`
	Up       Vec               `json:"up"`
	Pattern  radio.PatternSpec `json:"pattern"`
}

// SweepCfg moves the receiver along one axis.
type SweepCfg struct {
	Axis  string  `json:"axis"` // "x", "y" or "z"
	From  float64 `json:"from"`
	To    float64 `json:"to"`
	Steps int     `json:"steps,omitempty"`
}

// Load reads the configuration at path and applies defaults. It does not
// validate, so callers can override fields first and then call Validate. A
// relative model path is resolved against the directory of path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// Decode decodes a JSON configuration and applies defaults.
func Decode(data []byte) (*Config, error) {
	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Parse decodes, defaults and validates a JSON configuration.
func Parse(data []byte) (*Config, error) {
	cfg, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Frequency == 0 {
		c.Frequency = DefaultFrequency
	}
	if c.MaxReflections == nil {
		k := DefaultMaxReflections
		c.MaxReflections = &k
	}
	if c.PlanarityRMS == 0 {
		c.PlanarityRMS = DefaultPlanarityRMS
	}
	if c.Sweep != nil && c.Sweep.Steps == 0 {
		c.Sweep.Steps = DefaultSweepSteps
	}
}

// Validate checks field ranges. It does not open the model file.
func (c *Config) Validate() error {
	if !(c.Frequency > 0) || math.IsInf(c.Frequency, 0) {
		return &FieldError{Field: "frequency", Reason: fmt.Sprintf("must be positive, got %v", c.Frequency)}
	}
	if c.MaxReflections != nil && *c.MaxReflections < 0 {
		return &FieldError{Field: "maxReflections", Reason: fmt.Sprintf("must not be negative, got %d", *c.MaxReflections)}
	}
	if c.PlanarityRMS < 0 {
		return &FieldError{Field: "planarityRms", Reason: "must not be negative"}
	}
	for i, s := range c.Surfaces {
		field := fmt.Sprintf("surfaces[%d]", i)
		if !s.Point.finite() || !s.Normal.finite() {
			return &FieldError{Field: field, Reason: "non-finite coordinates"}
		}
		if s.Normal == (Vec{}) {
			return &FieldError{Field: field + ".normal", Reason: "zero normal"}
		}
	}
	for _, d := range []struct {
		name string
		cfg  DeviceCfg
	}{{"tx", c.Tx}, {"rx", c.Rx}} {
		if !d.cfg.Position.finite() || !d.cfg.Axis.finite() || !d.cfg.Up.finite() {
			return &FieldError{Field: d.name, Reason: "non-finite coordinates"}
		}
	}
	if c.Tx.Position == c.Rx.Position && c.Sweep == nil {
		return &FieldError{Field: "rx.position", Reason: "coincides with tx"}
	}
	if s := c.Sweep; s != nil {
		if _, ok := axes[s.Axis]; !ok {
			return &FieldError{Field: "sweep.axis", Reason: fmt.Sprintf("want x, y or z, got %q", s.Axis)}
		}
		if s.Steps < 1 {
			return &FieldError{Field: "sweep.steps", Reason: "must be positive"}
		}
		if s.To < s.From {
			return &FieldError{Field: "sweep.to", Reason: "less than sweep.from"}
		}
	}
	return nil
}

// ModelPath returns the model file resolved against the config directory.
func (c *Config) ModelPath() string {
	if c.Model == "" || filepath.IsAbs(c.Model) || c.dir == "" {
		return c.Model
	}
	return filepath.Join(c.dir, c.Model)
}

var axes = map[string]Vec{
	"x": {1, 0, 0},
	"y": {0, 1, 0},
	"z": {0, 0, 1},
}

func (v Vec) finite() bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
