package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cjeanneret/PhCalc/internal/formats"
	"github.com/cjeanneret/PhCalc/internal/logic/calc"
)

// MaxCurveSamples bounds the points sampled for each vignetting chart.
const MaxCurveSamples = 10000

// PinholeConfig describes the pinhole itself.
type PinholeConfig struct {
	DiameterMm  float64 `yaml:"diameter_mm"`  // e.g., 0.3
	ThicknessMm float64 `yaml:"thickness_mm"` // plate thickness, e.g., 0.04 for brass shim
}

// CameraConfig describes the camera body.
// Format, when set, replaces ProjectionDiameterMm with the preset's diameter.
type CameraConfig struct {
	FocalLengthMm        float64 `yaml:"focal_length_mm"`
	ProjectionDiameterMm float64 `yaml:"projection_diameter_mm"` // desired image circle Ø
	Format               string  `yaml:"format,omitempty"`       // e.g., "6x9"
}

// OptimalConfig holds the parameters of the optimal-diameter formula.
type OptimalConfig struct {
	WavelengthNm     float64 `yaml:"wavelength_nm"`
	RayleighFactor   float64 `yaml:"rayleigh_factor"`
	SubjectDistanceM float64 `yaml:"subject_distance_m"` // .inf or omitted = infinity
}

// DefaultsConfig contains generic parameters.
type DefaultsConfig struct {
	ReferenceFStop float64 `yaml:"reference_fstop"` // stops are reported from this f-stop
	CurveSamples   int     `yaml:"curve_samples"`   // points on the vignetting chart
	DebugLevel     int     `yaml:"debug_level"`     // debug level 0-4 (0=off, 1=info, 2=live, 3=verbose, 4=trace)
}

// Config aggregates all application configuration.
type Config struct {
	Pinhole  PinholeConfig  `yaml:"pinhole"`
	Camera   CameraConfig   `yaml:"camera"`
	Optimal  OptimalConfig  `yaml:"optimal"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// ValidateConfigPath accepts only .yaml files located directly in a
// directory named "configs".
func ValidateConfigPath(path string) error {
	if path == "" {
		return fmt.Errorf("config path is empty")
	}
	clean := filepath.Clean(path)
	if filepath.Ext(clean) != ".yaml" {
		return fmt.Errorf("config file must have .yaml extension: %s", path)
	}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return fmt.Errorf("config path must not contain '..': %s", path)
		}
	}
	abs, err := filepath.Abs(clean)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}
	if filepath.Base(filepath.Dir(abs)) != "configs" {
		return fmt.Errorf("config file must be in a configs/ directory: %s", path)
	}
	return nil
}

// Load reads a YAML file and returns the configuration.
func Load(path string) (*Config, error) {
	if err := ValidateConfigPath(path); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Camera.Format != "" {
		f, ok := formats.ByName(cfg.Camera.Format)
		if !ok {
			return nil, fmt.Errorf("camera.format: unknown format %q", cfg.Camera.Format)
		}
		cfg.Camera.ProjectionDiameterMm = f.ProjectionDiameter()
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// validate rejects values no default can repair. Zero means "use default".
func (c *Config) validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"pinhole.diameter_mm", c.Pinhole.DiameterMm},
		{"pinhole.thickness_mm", c.Pinhole.ThicknessMm},
		{"camera.focal_length_mm", c.Camera.FocalLengthMm},
		{"camera.projection_diameter_mm", c.Camera.ProjectionDiameterMm},
		{"optimal.wavelength_nm", c.Optimal.WavelengthNm},
		{"optimal.rayleigh_factor", c.Optimal.RayleighFactor},
		{"defaults.reference_fstop", c.Defaults.ReferenceFStop},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v < 0 {
			return fmt.Errorf("%s must be a finite value >= 0, got %g", f.name, f.v)
		}
	}
	// Infinity is a valid subject distance.
	if math.IsNaN(c.Optimal.SubjectDistanceM) || c.Optimal.SubjectDistanceM < 0 {
		return fmt.Errorf("optimal.subject_distance_m must be > 0 or .inf, got %g", c.Optimal.SubjectDistanceM)
	}
	if c.Defaults.CurveSamples < 0 || c.Defaults.CurveSamples > MaxCurveSamples {
		return fmt.Errorf("defaults.curve_samples must be between 0 and %d, got %d", MaxCurveSamples, c.Defaults.CurveSamples)
	}
	if c.Defaults.DebugLevel < 0 || c.Defaults.DebugLevel > 4 {
		return fmt.Errorf("defaults.debug_level must be between 0 and 4, got %d", c.Defaults.DebugLevel)
	}
	return nil
}

func (c *Config) applyDefaults() {
	d := calc.DefaultInputs()
	if c.Pinhole.DiameterMm == 0 {
		c.Pinhole.DiameterMm = d.DiameterMm
	}
	if c.Pinhole.ThicknessMm == 0 {
		c.Pinhole.ThicknessMm = d.ThicknessMm
	}
	if c.Camera.FocalLengthMm == 0 {
		c.Camera.FocalLengthMm = d.FocalLengthMm
	}
	if c.Camera.ProjectionDiameterMm == 0 {
		c.Camera.ProjectionDiameterMm = d.ProjectionDiameterMm
	}
	if c.Optimal.WavelengthNm == 0 {
		c.Optimal.WavelengthNm = d.WavelengthNm // green, middle of the visible range
	}
	if c.Optimal.RayleighFactor == 0 {
		c.Optimal.RayleighFactor = d.RayleighFactor
	}
	if c.Optimal.SubjectDistanceM == 0 {
		c.Optimal.SubjectDistanceM = d.SubjectDistanceM
	}
	if c.Defaults.ReferenceFStop == 0 {
		c.Defaults.ReferenceFStop = d.ReferenceFStop
	}
	if c.Defaults.CurveSamples == 0 {
		c.Defaults.CurveSamples = 50
	}
}

// Inputs converts the configuration to calculator inputs.
func (c *Config) Inputs() calc.Inputs {
	return calc.Inputs{
		DiameterMm:           c.Pinhole.DiameterMm,
		ThicknessMm:          c.Pinhole.ThicknessMm,
		FocalLengthMm:        c.Camera.FocalLengthMm,
		ProjectionDiameterMm: c.Camera.ProjectionDiameterMm,
		WavelengthNm:         c.Optimal.WavelengthNm,
		RayleighFactor:       c.Optimal.RayleighFactor,
		SubjectDistanceM:     c.Optimal.SubjectDistanceM,
		ReferenceFStop:       c.Defaults.ReferenceFStop,
	}
}
