// Package config loads the settings of a batch run.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Formats are the export formats supported.
var Formats = []string{"json", "csv", "xlsx", "openmetrics"}

type Ember struct {
	Enabled bool     `yaml:"enabled"`
	Pages   []string `yaml:"pages"`
	Feeds   []string `yaml:"feeds"`
}

type StatCan struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
}

type EIA struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

type Demo struct {
	Enabled   bool   `yaml:"enabled"`
	Seed      uint64 `yaml:"seed"`
	Countries int    `yaml:"countries"`
}

type Sources struct {
	Ember   Ember   `yaml:"ember"`
	StatCan StatCan `yaml:"statcan"`
	EIA     EIA     `yaml:"eia"`
	Demo    Demo    `yaml:"demo"`
}

// Publish lists the destinations of the finished export.
type Publish struct {
	// Destinations are gs://bucket/prefix or s3://bucket/prefix URLs
	Destinations []string `yaml:"destinations"`
	AWSRegion    string   `yaml:"aws_region"`
	AWSRoleArn   string   `yaml:"aws_role_arn"`
	AWSEndpoint  string   `yaml:"aws_endpoint"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Config struct {
	MinYear     int      `yaml:"min_year"`
	MaxYear     int      `yaml:"max_year"`
	Output      string   `yaml:"output"`
	Formats     []string `yaml:"formats"`
	ImpactsFile string   `yaml:"impacts_file"`
	Sources     Sources  `yaml:"sources"`
	Publish     Publish  `yaml:"publish"`
	Log         Log      `yaml:"log"`
}

// Default returns the settings used without a configuration file: every
// real source enabled, exporting all formats to ./export.
func Default() Config {
	return Config{
		MinYear: 2019,
		Output:  "export",
		Formats: []string{"json", "csv", "xlsx"},
		Sources: Sources{
			Ember:   Ember{Enabled: true},
			StatCan: StatCan{Enabled: true},
			EIA:     EIA{Enabled: true},
			Demo:    Demo{Seed: 2922, Countries: 20},
		},
		Publish: Publish{
			AWSRegion: "us-east-1",
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path returns
// the defaults. The EIA_API_KEY environment variable is used when the file
// sets no key.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}

		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if cfg.Sources.EIA.APIKey == "" {
		cfg.Sources.EIA.APIKey = os.Getenv("EIA_API_KEY")
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.MinYear <= 0 {
		return fmt.Errorf("invalid min year %d", c.MinYear)
	}
	if c.MaxYear != 0 && c.MaxYear < c.MinYear {
		return fmt.Errorf("max year %d is before min year %d", c.MaxYear, c.MinYear)
	}
	if c.Output == "" {
		return errors.New("output directory is not set")
	}
	if len(c.Formats) == 0 {
		return errors.New("no export format set")
	}
	for _, format := range c.Formats {
		if !slices.Contains(Formats, format) {
			return fmt.Errorf("unsupported export format %q", format)
		}
	}
	return nil
}
