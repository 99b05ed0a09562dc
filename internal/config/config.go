package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/pidsim/internal/dynamo"
	"github.com/san-kum/pidsim/internal/series"
	"github.com/san-kum/pidsim/internal/signal"
	"github.com/san-kum/pidsim/internal/sim"
)

const (
	DefaultDuration   = 30.0
	DefaultIntegrator = "midpoint"
	DefaultController = "pid"
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "console"
)

type Config struct {
	Sim         SimConfig         `yaml:"sim"`
	Controller  ControllerConfig  `yaml:"controller"`
	Environment EnvironmentConfig `yaml:"environment"`
	Log         LogConfig         `yaml:"log"`
}

type SimConfig struct {
	FPS           int     `yaml:"fps"`
	Horizon       float64 `yaml:"horizon"`
	Duration      float64 `yaml:"duration"`
	Seed          int64   `yaml:"seed"`
	StartPosition float64 `yaml:"start_position"`
	Integrator    string  `yaml:"integrator"`
}

type ControllerConfig struct {
	Type string  `yaml:"type"`
	Kp   float64 `yaml:"kp"`
	Ki   float64 `yaml:"ki"`
	Kd   float64 `yaml:"kd"`
}

type EnvironmentConfig struct {
	Bias      float64 `yaml:"bias"`
	Amplitude float64 `yaml:"amplitude"`
	Period    float64 `yaml:"period"`
}

// LogConfig selects the zap encoder and the optional rotated log file.
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
	Compress   bool   `yaml:"compress"`
}

func DefaultConfig() *Config {
	return &Config{
		Sim: SimConfig{
			FPS:        sim.DefaultFPS,
			Horizon:    series.DefaultHorizon,
			Duration:   DefaultDuration,
			Integrator: DefaultIntegrator,
		},
		Controller: ControllerConfig{
			Type: DefaultController,
			Kp:   sim.DefaultKp,
			Ki:   sim.DefaultKi,
			Kd:   sim.DefaultKd,
		},
		Environment: EnvironmentConfig{
			Bias:      sim.DefaultBias,
			Amplitude: signal.DefaultAmplitude,
			Period:    signal.DefaultPeriod,
		},
		Log: LogConfig{
			Level:      DefaultLogLevel,
			Format:     DefaultLogFormat,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     7,
		},
	}
}

// Load reads a YAML file over the defaults, so partial files are fine.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
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

func (c *Config) Validate() error {
	if c.Sim.FPS <= 0 {
		return dynamo.Bounds("sim.fps", float64(c.Sim.FPS), "must be positive")
	}
	if !(c.Sim.Duration > 0) {
		return dynamo.Bounds("sim.duration", c.Sim.Duration, "must be positive")
	}
	switch c.Controller.Type {
	case "pid", "none":
	default:
		return fmt.Errorf("controller.type %q: %w", c.Controller.Type, dynamo.ErrUnknownParam)
	}
	return c.Tunables().Validate()
}

// Tunables is the live-adjustable part of the configuration.
func (c *Config) Tunables() sim.Tunables {
	return sim.Tunables{
		Kp:        c.Controller.Kp,
		Ki:        c.Controller.Ki,
		Kd:        c.Controller.Kd,
		Bias:      c.Environment.Bias,
		Amplitude: c.Environment.Amplitude,
		Period:    c.Environment.Period,
		Horizon:   c.Sim.Horizon,
	}
}

// Set assigns a tunable by name, the way command-line overrides do.
func (c *Config) Set(name string, v float64) error {
	tun := c.Tunables()
	if err := tun.Set(name, v); err != nil {
		return err
	}
	c.Controller.Kp, c.Controller.Ki, c.Controller.Kd = tun.Kp, tun.Ki, tun.Kd
	c.Environment.Bias, c.Environment.Amplitude, c.Environment.Period = tun.Bias, tun.Amplitude, tun.Period
	c.Sim.Horizon = tun.Horizon
	return nil
}

// Clone returns an independent copy.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
