package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/mpcsim/internal/scene"
	"gopkg.in/yaml.v3"
)

const (
	DefaultScene        = "scenes/simple.toml"
	DefaultOut          = "scenes/simple_done.toml"
	DefaultDt           = 0.01
	DefaultEps          = 0.1
	DefaultControlIters = 10000
	DefaultRolloutIters = 10
	DefaultWorkers      = 1
	DefaultStore        = "file"
)

// ErrInvalidParams indicates run constants the loop cannot work with.
var ErrInvalidParams = errors.New("config: invalid run parameters")

type Config struct {
	Scene        string  `yaml:"scene"`
	Out          string  `yaml:"out"`
	Dt           float64 `yaml:"dt"`
	Eps          float64 `yaml:"eps"`
	ControlIters int     `yaml:"control_iters"`
	RolloutIters int     `yaml:"rollout_iters"`
	Workers      int     `yaml:"workers"`
	Seed         int64   `yaml:"seed"`
	// MaxSteps caps the run; 0 runs until an agent arrives.
	MaxSteps int    `yaml:"max_steps"`
	Store    string `yaml:"store"`
}

func DefaultConfig() *Config {
	return &Config{
		Scene:        DefaultScene,
		Out:          DefaultOut,
		Dt:           DefaultDt,
		Eps:          DefaultEps,
		ControlIters: DefaultControlIters,
		RolloutIters: DefaultRolloutIters,
		Workers:      DefaultWorkers,
		Store:        DefaultStore,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
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

func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidParams, c.Dt)
	}
	if c.Eps < 0 {
		return fmt.Errorf("%w: eps must not be negative, got %f", ErrInvalidParams, c.Eps)
	}
	if c.ControlIters < 0 {
		return fmt.Errorf("%w: control_iters must not be negative, got %d", ErrInvalidParams, c.ControlIters)
	}
	if c.RolloutIters < 0 {
		return fmt.Errorf("%w: rollout_iters must not be negative, got %d", ErrInvalidParams, c.RolloutIters)
	}
	if c.MaxSteps < 0 {
		return fmt.Errorf("%w: max_steps must not be negative, got %d", ErrInvalidParams, c.MaxSteps)
	}
	return nil
}

func (c *Config) Params() scene.Params {
	workers := c.Workers
	if workers < 1 {
		workers = 1
	}
	return scene.Params{
		Dt:           c.Dt,
		Eps:          c.Eps,
		ControlIters: c.ControlIters,
		RolloutIters: c.RolloutIters,
		Workers:      workers,
		Seed:         c.Seed,
	}
}
