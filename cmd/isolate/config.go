package main

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/fwojciec/isolate"
	"gopkg.in/yaml.v3"
)

// Config holds defaults read from a YAML file. Explicit flags win over it.
type Config struct {
	Width         float64       `yaml:"width"`
	Height        float64       `yaml:"height"`
	MediaType     string        `yaml:"media_type"`
	ColorScheme   string        `yaml:"color_scheme"`
	MaxIterations int           `yaml:"max_iterations"`
	Timeout       time.Duration `yaml:"timeout"`
	Stealth       bool          `yaml:"stealth"`
	Render        bool          `yaml:"render"`
	Format        string        `yaml:"format"`
}

// DefaultConfig returns the settings used when neither a flag nor the
// config file sets a value.
func DefaultConfig() Config {
	return Config{
		Width:         1280,
		Height:        800,
		MediaType:     "screen",
		ColorScheme:   "light",
		MaxIterations: 100,
		Timeout:       30 * time.Second,
		Format:        "html",
	}
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, isolate.Errorf(isolate.ENOTFOUND, "config file %s does not exist", path)
	} else if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, isolate.Errorf(isolate.EINVALID, "parse config %s: %v", path, err)
	}
	return cfg, nil
}

// Apply fills every unset field of cli from c.
func (c Config) Apply(cli *CLI) {
	if cli.Width == 0 {
		cli.Width = c.Width
	}
	if cli.Height == 0 {
		cli.Height = c.Height
	}
	if cli.MediaType == "" {
		cli.MediaType = c.MediaType
	}
	if cli.ColorScheme == "" {
		cli.ColorScheme = c.ColorScheme
	}
	if cli.MaxIterations == 0 {
		cli.MaxIterations = c.MaxIterations
	}
	if cli.Timeout == 0 {
		cli.Timeout = c.Timeout
	}
	if cli.Format == "" {
		cli.Format = c.Format
	}
	cli.Stealth = cli.Stealth || c.Stealth
	cli.Render = cli.Render || c.Render
}
