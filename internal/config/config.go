// internal/config/config.go
// Package config loads and validates YAML job definitions for the
// ingestion pipeline.
package config

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/verakocha/veriflow/pkg/types"
)

// SourceKind identifies where a job's data comes from.
type SourceKind string

const (
	SourceFile   SourceKind = "file"
	SourceScrape SourceKind = "scrape"
	SourceAPI    SourceKind = "api"
)

// JobConfig is one ingestion job: a source, optional validation rules
// and cleaning options, and an optional export target.
type JobConfig struct {
	Name   string     `yaml:"name" json:"name"`
	Source SourceSpec `yaml:"source" json:"source"`

	Rules    []types.ValidationRule `yaml:"rules,omitempty" json:"rules,omitempty"`
	Cleaning *types.CleaningOptions `yaml:"cleaning,omitempty" json:"cleaning,omitempty"`

	Export *ExportSpec `yaml:"export,omitempty" json:"export,omitempty"`
}

// SourceSpec selects and configures exactly one source kind.
type SourceSpec struct {
	Kind   SourceKind              `yaml:"kind" json:"kind"`
	File   *FileSource             `yaml:"file,omitempty" json:"file,omitempty"`
	Scrape *types.ScrapingConfig   `yaml:"scrape,omitempty" json:"scrape,omitempty"`
	API    *types.APIRequestConfig `yaml:"api,omitempty" json:"api,omitempty"`
}

// FileSource configures a file ingestion source.
type FileSource struct {
	Path      string   `yaml:"path" json:"path"`
	Encoding  string   `yaml:"encoding,omitempty" json:"encoding,omitempty"`
	Delimiter string   `yaml:"delimiter,omitempty" json:"delimiter,omitempty"`
	HasHeader *bool    `yaml:"has_header,omitempty" json:"has_header,omitempty"`
	SkipRows  int      `yaml:"skip_rows,omitempty" json:"skip_rows,omitempty"`
	MaxRows   int      `yaml:"max_rows,omitempty" json:"max_rows,omitempty"`
	SheetName string   `yaml:"sheet_name,omitempty" json:"sheet_name,omitempty"`
	Formats   []string `yaml:"date_formats,omitempty" json:"date_formats,omitempty"`
}

// ExportSpec configures where the cleaned dataset is written.
type ExportSpec struct {
	Format string `yaml:"format" json:"format"`
	Path   string `yaml:"path" json:"path"`
}

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// LoadFromFile loads a job definition from a YAML file.
func LoadFromFile(filename string) (*JobConfig, error) {
	if filename == "" {
		return nil, fmt.Errorf("configuration filename cannot be empty")
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read configuration file: %w", err)
	}
	return LoadFromBytes(data)
}

// LoadFromReader loads a job definition from an io.Reader.
func LoadFromReader(reader io.Reader) (*JobConfig, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read configuration: %w", err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses, defaults and validates a YAML job definition.
// ${VAR} references are expanded from the environment before parsing.
func LoadFromBytes(data []byte) (*JobConfig, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("configuration data cannot be empty")
	}

	expanded := envVarPattern.ReplaceAllStringFunc(string(data), func(match string) string {
		name := envVarPattern.FindStringSubmatch(match)[1]
		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		return match
	})

	var cfg JobConfig
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse YAML configuration: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *JobConfig) applyDefaults() {
	switch c.Source.Kind {
	case SourceScrape:
		if c.Source.Scrape != nil {
			if c.Source.Scrape.Engine == "" {
				c.Source.Scrape.Engine = types.EngineStatic
			}
			if c.Source.Scrape.Timeout == 0 {
				c.Source.Scrape.Timeout = 30 * time.Second
			}
		}
	case SourceAPI:
		if c.Source.API != nil {
			if c.Source.API.Method == "" {
				c.Source.API.Method = types.MethodGet
			}
			if c.Source.API.Timeout == 0 {
				c.Source.API.Timeout = 30 * time.Second
			}
		}
	}

	if c.Export != nil && c.Export.Format == "" {
		c.Export.Format = "csv"
	}
}

// Validate checks the job definition for structural problems.
func (c *JobConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("job name is required")
	}

	switch c.Source.Kind {
	case SourceFile:
		if c.Source.File == nil || c.Source.File.Path == "" {
			return fmt.Errorf("file source requires a path")
		}
	case SourceScrape:
		if c.Source.Scrape == nil || c.Source.Scrape.URL == "" {
			return fmt.Errorf("scrape source requires a URL")
		}
		if len(c.Source.Scrape.Selectors) == 0 {
			return fmt.Errorf("scrape source requires selectors")
		}
	case SourceAPI:
		if c.Source.API == nil || c.Source.API.URL == "" {
			return fmt.Errorf("api source requires a URL")
		}
	default:
		return fmt.Errorf("unknown source kind: %q", c.Source.Kind)
	}

	for _, rule := range c.Rules {
		if !rule.Type.IsValid() {
			return fmt.Errorf("rule for column %q: unknown rule type %q", rule.Column, rule.Type)
		}
	}

	if c.Export != nil && c.Export.Path == "" {
		return fmt.Errorf("export requires a path")
	}
	return nil
}
