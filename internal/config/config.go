// Package config loads the exporter settings: built-in defaults, then an
// optional YAML file named by RATHAUS_CONFIG, then environment variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables.
const (
	EnvConfig      = "RATHAUS_CONFIG"
	EnvLogLevel    = "RATHAUS_LOG_LEVEL"
	EnvOCR         = "RATHAUS_OCR"
	EnvOCRLanguage = "RATHAUS_OCR_LANG"
	EnvTessdata    = "RATHAUS_TESSDATA"
	EnvCorrections = "RATHAUS_CORRECTIONS"
	EnvOutput      = "RATHAUS_OUTPUT"
)

// DefaultOutputDir is where crops are written when no directory is given.
const DefaultOutputDir = "export_rathaeuser"

// OCR configures the Tesseract engine.
type OCR struct {
	Enabled  bool   `yaml:"enabled"`
	Language string `yaml:"language"`
	Tessdata string `yaml:"tessdata"`
}

// Config holds all settings.
type Config struct {
	LogLevel string `yaml:"log_level"`
	OCR      OCR    `yaml:"ocr"`

	// Corrections is a YAML correction table replacing the built-in one.
	Corrections string `yaml:"corrections"`

	OutputDir string `yaml:"output_dir"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel: "info",
		OCR: OCR{
			Enabled:  true,
			Language: "deu",
		},
		OutputDir: DefaultOutputDir,
	}
}

// Load returns the defaults overlaid with the YAML file at path.
func Load(path string) (Config, error) {
	cfg := Default()
	if err := cfg.merge(path); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) merge(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// FromEnv builds the configuration from the process environment.
func FromEnv() (Config, error) {
	return FromLookup(os.LookupEnv)
}

// FromLookup builds the configuration reading variables through lookup.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if path, ok := lookup(EnvConfig); ok && path != "" {
		if err := cfg.merge(path); err != nil {
			return Config{}, err
		}
	}

	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := lookup(EnvOCR); ok && v != "" {
		enabled, err := parseSwitch(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", EnvOCR, err)
		}
		cfg.OCR.Enabled = enabled
	}
	if v, ok := lookup(EnvOCRLanguage); ok && v != "" {
		cfg.OCR.Language = v
	}
	if v, ok := lookup(EnvTessdata); ok && v != "" {
		cfg.OCR.Tessdata = v
	}
	if v, ok := lookup(EnvCorrections); ok && v != "" {
		cfg.Corrections = v
	}
	if v, ok := lookup(EnvOutput); ok && v != "" {
		cfg.OutputDir = v
	}
	return cfg, nil
}

func parseSwitch(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true, nil
	case "off", "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("%q is not on or off", v)
}
