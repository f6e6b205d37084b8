package main

import (
	"errors"
	"fmt"
	"go/token"
	"os"

	"github.com/saylorsolutions/xorlit/internal/gen"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath = ".xorlit.yaml"
)

// Config holds generation defaults that can be checked in next to a manifest.
// Flags given on the command line take precedence.
type Config struct {
	Strategy     string `yaml:"strategy"`
	Decode       string `yaml:"decode"`
	Strict       bool   `yaml:"strict"`
	Exposed      bool   `yaml:"exposed"`
	Compressed   bool   `yaml:"compressed"`
	Embed        bool   `yaml:"embed"`
	Package      string `yaml:"package"`
	OutputSuffix string `yaml:"output_suffix"`
}

func DefaultConfig() *Config {
	return &Config{
		Strategy:     string(gen.StrategyTime),
		Decode:       string(gen.DecodeInPlace),
		OutputSuffix: gen.DefaultOutputSuffix,
	}
}

// LoadConfig reads the config at path over the defaults.
// A missing file is only an error if required is true.
func LoadConfig(path string, required bool) (*Config, error) {
	config := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return config, nil
}

// Validate checks that every value is usable, so mistakes are reported before anything is generated.
func (c *Config) Validate() error {
	if _, err := gen.ParseStrategy(c.Strategy); err != nil {
		return err
	}
	if _, err := gen.ParseDecodeMode(c.Decode); err != nil {
		return err
	}
	if c.OutputSuffix == "" {
		return errors.New("output_suffix cannot be empty")
	}
	if c.Package != "" && !token.IsIdentifier(c.Package) {
		return fmt.Errorf("package '%s' must be a valid Go identifier", c.Package)
	}
	return nil
}

// Options translates the config to generation options.
func (c *Config) Options() []gen.ParamOpt {
	return []gen.ParamOpt{
		gen.KeyStrategy(gen.Strategy(c.Strategy)),
		gen.DecodeWith(gen.DecodeMode(c.Decode)),
		gen.StrictKeys(c.Strict),
		gen.ExposeFunctions(c.Exposed),
		gen.CompressData(c.Compressed),
		gen.EmbedTable(c.Embed),
		gen.PackageName(c.Package),
		gen.OutputSuffix(c.OutputSuffix),
	}
}
