/*
Package config provides the configuration to grow trees and forests, and
its parsing from YAML documents.
*/
package config

import (
	"fmt"
	"os"

	"github.com/pbanos/thicket"
	"github.com/pbanos/thicket/loss"
	"github.com/pbanos/thicket/metrics"
	"github.com/rs/zerolog"
	yaml "gopkg.in/yaml.v2"
)

/*
Config holds the configuration to grow trees and forests. A YAML document
for it looks like:

	loss: gini
	samples: 10
	limiting-factor: leaves
	limit: 6
	continuous-ints: true
	use-greater-than: false
	minimum-gain: 0
	workers: 4
	forest:
	  size: 10
	  hidden-fields: 1
	  seed: 42
*/
type Config struct {
	Loss           string       `yaml:"loss"`
	Samples        int          `yaml:"samples"`
	LimitingFactor string       `yaml:"limiting-factor"`
	Limit          int          `yaml:"limit"`
	ContinuousInts bool         `yaml:"continuous-ints"`
	UseGreaterThan bool         `yaml:"use-greater-than"`
	MinimumGain    float64      `yaml:"minimum-gain"`
	Workers        int          `yaml:"workers"`
	Forest         ForestConfig `yaml:"forest"`
}

// ForestConfig holds the configuration specific to forests
type ForestConfig struct {
	Size         int `yaml:"size"`
	HiddenFields int `yaml:"hidden-fields"`
	// Seed for the field subsets. Nil means a random one.
	Seed *uint64 `yaml:"seed"`
}

/*
Default returns the configuration used for anything a document does not
specify: entropy, 10 samples, 6 leaves and continuous ints, and forests of
10 trees with 1 hidden field.
*/
func Default() *Config {
	return &Config{
		Loss:           "entropy",
		Samples:        10,
		LimitingFactor: thicket.Leaves.String(),
		Limit:          6,
		ContinuousInts: true,
		Forest: ForestConfig{
			Size:         10,
			HiddenFields: 1,
		},
	}
}

/*
Read takes a slice of bytes with a YAML configuration and returns the
configuration parsed from it, with defaults for unspecified properties, or
an error. Unknown properties are errors.
*/
func Read(doc []byte) (*Config, error) {
	c := Default()
	err := yaml.UnmarshalStrict(doc, c)
	if err != nil {
		return nil, fmt.Errorf("parsing yml config: %w", err)
	}
	err = c.Validate()
	if err != nil {
		return nil, err
	}
	return c, nil
}

/*
ReadFile takes a filepath string, reads its contents and uses Read to parse
it and return a configuration or an error.
*/
func ReadFile(filepath string) (*Config, error) {
	doc, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("reading config yml file %s: %w", filepath, err)
	}
	c, err := Read(doc)
	if err != nil {
		return nil, fmt.Errorf("parsing config yml file %s: %w", filepath, err)
	}
	return c, nil
}

/*
Validate returns an error if the configuration cannot be used to grow
trees and forests.
*/
func (c *Config) Validate() error {
	ts, err := c.Strategy(zerolog.Nop(), nil)
	if err != nil {
		return err
	}
	err = ts.Validate()
	if err != nil {
		return err
	}
	if c.Forest.Size < 1 {
		return fmt.Errorf("forest size %d must be positive", c.Forest.Size)
	}
	if c.Forest.HiddenFields < 0 {
		return fmt.Errorf("forest hidden fields %d must not be negative", c.Forest.HiddenFields)
	}
	return nil
}

/*
Strategy takes a logger and a metrics collector (that may be nil) and
returns the training strategy for the configuration, or an error if its
loss or limiting factor are unknown.
*/
func (c *Config) Strategy(logger zerolog.Logger, m *metrics.Collector) (*thicket.TrainingStrategy, error) {
	l, err := loss.ByName(c.Loss)
	if err != nil {
		return nil, err
	}
	lf, err := thicket.ParseLimitingFactor(c.LimitingFactor)
	if err != nil {
		return nil, err
	}
	return &thicket.TrainingStrategy{
		Loss:           l,
		Samples:        c.Samples,
		Policy:         thicket.StoppingPolicy{Factor: lf, Limit: c.Limit},
		ContinuousInts: c.ContinuousInts,
		UseGreaterThan: c.UseGreaterThan,
		MinimumGain:    c.MinimumGain,
		Workers:        c.Workers,
		Logger:         logger,
		Metrics:        m,
	}, nil
}
