// Package config resolves the environment variables named in spec.md §6,
// with an optional YAML file providing overrides, the way
// cmd/spectrometer/internal/config's Loader/Saver resolve configuration for
// the rest of the corpus.
package config

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds every environment-sourced setting the gateway needs.
type Config struct {
	Host                        string `yaml:"host"`
	Port                        int    `yaml:"port"`
	Debug                       bool   `yaml:"debug"`
	NCoreDelegateLibrary        string `yaml:"ncore"`
	DeleteModelsAfterConversion bool   `yaml:"delete_models_after_conversion"`
	ModelDir                    string `yaml:"model_dir"`
}

// Default returns the documented defaults (spec.md §6): HOST=0.0.0.0,
// PORT=5000, everything else off/empty.
func Default() Config {
	return Config{
		Host: "0.0.0.0",
		Port: 5000,
	}
}

// FromEnv builds a Config from the process environment, falling back to
// Default for anything unset.
func FromEnv() Config {
	cfg := Default()

	if v := os.Getenv("HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	cfg.Debug = truthy(os.Getenv("DEBUG"))
	cfg.NCoreDelegateLibrary = os.Getenv("NCORE")
	cfg.DeleteModelsAfterConversion = truthy(os.Getenv("DELETE_MODELS_AFTER_CONVERSION"))
	cfg.ModelDir = os.Getenv("MODEL_DIR")

	return cfg
}

// truthy mirrors "any truthy value" from spec.md §6: unset/empty, "0",
// "false"/"False"/"FALSE", "no" and "off" are falsy, anything else is truthy.
func truthy(v string) bool {
	switch v {
	case "", "0", "false", "False", "FALSE", "no", "off":
		return false
	default:
		return true
	}
}

// Load reads path as YAML, whatever its extension, and overlays it onto cfg.
func (cfg *Config) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}
	defer f.Close()
	return cfg.LoadFromReader(f)
}

// LoadFromReader overlays YAML-encoded overrides from r onto cfg.
func (cfg *Config) LoadFromReader(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return fmt.Errorf("config.LoadFromReader: %w", err)
	}
	return nil
}

// Save writes cfg to path as YAML.
func (cfg Config) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config.Save: %w", err)
	}
	defer f.Close()
	return cfg.SaveToWriter(f)
}

// SaveToWriter writes cfg to w as YAML.
func (cfg Config) SaveToWriter(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("config.SaveToWriter: %w", err)
	}
	return nil
}

// Addr returns the host:port pair net/http servers expect.
func (cfg Config) Addr() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}
