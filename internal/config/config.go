package config

import (
	"fmt"
	"math"
	"os"
	"strings"

	koanfyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/rotorsim/internal/dynamo"
	"github.com/san-kum/rotorsim/internal/integrators"
)

// EnvPrefix marks environment overrides, e.g. ROTORSIM_DRIVE__KP=0.01.
const EnvPrefix = "ROTORSIM_"

const (
	ModeClosedLoop = "closed_loop"
	ModeOpenLoop   = "open_loop"
)

const (
	DefaultTotalTime      = 1000.0
	DefaultSampleTime     = 0.1
	DefaultIntegrator     = "euler"
	DefaultInertia        = 1.2
	DefaultBrakingMoment  = 0.2
	DefaultLoadMoment     = 5.0
	DefaultTorqueConstant = 0.4
	DefaultReferenceRPM   = 3000.0
	DefaultKp             = 0.007
	DefaultKi             = 0.00015
	DefaultKd             = 0.0015
	DefaultUMin           = 0.0
	DefaultUMax           = 24.0
)

type Config struct {
	Simulation SimulationConfig `yaml:"simulation" json:"simulation"`
	Shaft      ShaftConfig      `yaml:"shaft" json:"shaft"`
	Drive      DriveConfig      `yaml:"drive" json:"drive"`
	Load       LoadConfig       `yaml:"load" json:"load"`
}

type SimulationConfig struct {
	TotalTime  float64 `yaml:"total_time" json:"total_time"`
	SampleTime float64 `yaml:"sample_time" json:"sample_time"`
	Integrator string  `yaml:"integrator" json:"integrator"`
}

type ShaftConfig struct {
	Inertia       float64 `yaml:"inertia" json:"inertia"`
	BrakingMoment float64 `yaml:"braking_moment" json:"braking_moment"`
	InitialRPM    float64 `yaml:"initial_rpm" json:"initial_rpm"`
}

// DriveConfig describes the DC drive. In open_loop mode the regulator is
// bypassed and Voltage is applied at every sample. Lagged applies each
// regulator voltage one sample late, starting from 0 V.
type DriveConfig struct {
	Mode           string  `yaml:"mode" json:"mode"`
	TorqueConstant float64 `yaml:"torque_constant" json:"torque_constant"`
	ReferenceRPM   float64 `yaml:"reference_rpm" json:"reference_rpm"`
	Voltage        float64 `yaml:"voltage" json:"voltage"`
	UMin           float64 `yaml:"umin" json:"umin"`
	UMax           float64 `yaml:"umax" json:"umax"`
	Kp             float64 `yaml:"kp" json:"kp"`
	Ki             float64 `yaml:"ki" json:"ki"`
	Kd             float64 `yaml:"kd" json:"kd"`
	Lagged         bool    `yaml:"lagged" json:"lagged"`
}

// LoadConfig is a constant load moment, optionally switching to
// StepMoment at StepTime when StepTime > 0.
type LoadConfig struct {
	Moment     float64 `yaml:"moment" json:"moment"`
	StepTime   float64 `yaml:"step_time" json:"step_time"`
	StepMoment float64 `yaml:"step_moment" json:"step_moment"`
}

func DefaultConfig() *Config {
	return &Config{
		Simulation: SimulationConfig{
			TotalTime:  DefaultTotalTime,
			SampleTime: DefaultSampleTime,
			Integrator: DefaultIntegrator,
		},
		Shaft: ShaftConfig{
			Inertia:       DefaultInertia,
			BrakingMoment: DefaultBrakingMoment,
		},
		Drive: DriveConfig{
			Mode:           ModeClosedLoop,
			TorqueConstant: DefaultTorqueConstant,
			ReferenceRPM:   DefaultReferenceRPM,
			UMin:           DefaultUMin,
			UMax:           DefaultUMax,
			Kp:             DefaultKp,
			Ki:             DefaultKi,
			Kd:             DefaultKd,
		},
		Load: LoadConfig{
			Moment: DefaultLoadMoment,
		},
	}
}

// Load reads a YAML file over the defaults and applies ROTORSIM_
// environment overrides. An empty path loads defaults plus environment.
func Load(path string) (*Config, error) {
	return LoadOver(DefaultConfig(), path)
}

// LoadOver is Load with base in place of the defaults. base is not
// modified.
func LoadOver(base *Config, path string) (*Config, error) {
	if base == nil {
		return nil, invalid("nil base config")
	}
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), koanfyaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := base.Clone()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Timing returns the simulation timing as a dynamo configuration.
func (c *Config) Timing() dynamo.Config {
	return dynamo.Config{
		TotalTime:     c.Simulation.TotalTime,
		SampleTime:    c.Simulation.SampleTime,
		ValidateState: true,
	}
}

func (c *Config) Validate() error {
	if err := c.Timing().Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	if _, err := integrators.Get(c.Simulation.Integrator); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}

	if !finite(c.Shaft.Inertia) || c.Shaft.Inertia <= 0 {
		return invalid("shaft: inertia must be positive, got %g", c.Shaft.Inertia)
	}
	if !finite(c.Shaft.BrakingMoment) || !finite(c.Shaft.InitialRPM) {
		return invalid("shaft: braking moment and initial rpm must be finite")
	}

	switch c.Drive.Mode {
	case ModeClosedLoop, ModeOpenLoop:
	default:
		return invalid("drive: unknown mode %q", c.Drive.Mode)
	}
	for name, v := range map[string]float64{
		"torque_constant": c.Drive.TorqueConstant,
		"reference_rpm":   c.Drive.ReferenceRPM,
		"voltage":         c.Drive.Voltage,
		"kp":              c.Drive.Kp,
		"ki":              c.Drive.Ki,
		"kd":              c.Drive.Kd,
	} {
		if !finite(v) {
			return invalid("drive: %s must be finite", name)
		}
	}
	if math.IsNaN(c.Drive.UMin) || math.IsNaN(c.Drive.UMax) || c.Drive.UMin > c.Drive.UMax {
		return invalid("drive: umin %g must not exceed umax %g", c.Drive.UMin, c.Drive.UMax)
	}

	if !finite(c.Load.Moment) || !finite(c.Load.StepMoment) || !finite(c.Load.StepTime) || c.Load.StepTime < 0 {
		return invalid("load: moments must be finite and step_time non-negative")
	}
	return nil
}

// Clone returns a deep copy; Config holds no reference types.
func (c *Config) Clone() *Config {
	out := *c
	return &out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", dynamo.ErrInvalidArgument, fmt.Sprintf(format, args...))
}
