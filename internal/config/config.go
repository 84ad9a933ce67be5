// Package config loads the YAML configuration shared by the CLI commands.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"anomdet/pkg/bench"
	"anomdet/pkg/detectors/iforest"
)

// Model configures the isolation forest. Height limit and seed are
// pointers so "unset" stays distinguishable from zero: an unset height
// limit is derived from the subsample size at fit time, an unset seed
// leaves the forest on a time-seeded generator.
type Model struct {
	NumTrees      int     `yaml:"num_trees"`
	SubsampleSize float64 `yaml:"subsample_size"`
	HeightLimit   *int    `yaml:"height_limit"`
	Seed          *int64  `yaml:"seed"`
	Workers       int     `yaml:"workers"`
	Threshold     float64 `yaml:"threshold"`
}

// ForestOptions translates the model section into forest options.
func (m Model) ForestOptions() []iforest.Option {
	opts := []iforest.Option{
		iforest.WithTrees(m.NumTrees),
		iforest.WithSubsampleSize(m.SubsampleSize),
	}
	if m.HeightLimit != nil {
		opts = append(opts, iforest.WithHeightLimit(*m.HeightLimit))
	}
	if m.Seed != nil {
		opts = append(opts, iforest.WithSeed(*m.Seed))
	}
	if m.Workers > 1 {
		opts = append(opts, iforest.WithWorkers(m.Workers))
	}
	return opts
}

// Bench configures the benchmark protocol.
type Bench struct {
	Iterations   int     `yaml:"iterations"`
	TrainSamples int     `yaml:"train_samples"`
	TestSamples  int     `yaml:"test_samples"`
	AnomalyRatio float64 `yaml:"anomaly_ratio"`
	Seed         int64   `yaml:"seed"`
}

// BenchConfig translates the bench section into a runner config.
func (b Bench) BenchConfig() bench.Config {
	return bench.Config{
		Iterations:   b.Iterations,
		TrainSamples: b.TrainSamples,
		TestSamples:  b.TestSamples,
		AnomalyRatio: b.AnomalyRatio,
		Seed:         b.Seed,
	}
}

// Log configures logging output and rotation.
type Log struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// Config is the root configuration document.
type Config struct {
	Model    Model `yaml:"model"`
	Bench    Bench `yaml:"bench"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Log Log `yaml:"log"`
}

// Default returns the built-in configuration: the standard forest defaults
// and the historical digits benchmark settings.
func Default() *Config {
	cfg := &Config{
		Model: Model{
			NumTrees:      20,
			SubsampleSize: 0.25,
			Workers:       1,
			Threshold:     0.6,
		},
		Bench: Bench{
			Iterations:   1,
			TrainSamples: 1000,
			TestSamples:  1000,
			AnomalyRatio: 0.05,
			Seed:         1,
		},
		Log: Log{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
		},
	}
	cfg.Database.Path = "anomdet.db"
	return cfg
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := Default()
	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
