// Package config loads the odootable configuration file and defines the
// document-global connection defaults that per-block options are merged
// against.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the odootable configuration file.
type Config struct {
	// Columns is the line width assumed when serializing structured
	// tables; zero means the built-in default.
	Columns int `yaml:"columns,omitempty"`

	// Defaults are connection and rendering defaults applied beneath any
	// `odootable` metadata found in the document itself.
	Defaults Globals `yaml:"odootable,omitempty"`
}

// Globals is the document-global option fallback: the same connection and
// render-mode fields a fenced block may carry, applied when a block omits
// them.
type Globals struct {
	URL      string   `yaml:"url,omitempty"`
	Port     int      `yaml:"port,omitempty"`
	Database string   `yaml:"database,omitempty"`
	Login    string   `yaml:"login,omitempty"`
	Password string   `yaml:"password,omitempty"`
	Model    string   `yaml:"model,omitempty"`
	Fields   []string `yaml:"fields,omitempty"`
	Domain   []any    `yaml:"domain,omitempty"`

	PipeTables *bool `yaml:"pipe_tables,omitempty"`
	GridTables *bool `yaml:"grid_tables,omitempty"`
}

// Merge returns g with every non-zero field of over taking precedence.
func (g Globals) Merge(over Globals) Globals {
	out := g
	if over.URL != "" {
		out.URL = over.URL
	}
	if over.Port != 0 {
		out.Port = over.Port
	}
	if over.Database != "" {
		out.Database = over.Database
	}
	if over.Login != "" {
		out.Login = over.Login
	}
	if over.Password != "" {
		out.Password = over.Password
	}
	if over.Model != "" {
		out.Model = over.Model
	}
	if len(over.Fields) > 0 {
		out.Fields = over.Fields
	}
	if len(over.Domain) > 0 {
		out.Domain = over.Domain
	}
	if over.PipeTables != nil {
		out.PipeTables = over.PipeTables
	}
	if over.GridTables != nil {
		out.GridTables = over.GridTables
	}
	return out
}

// configPathFunc is the function used to get the default config path.
// It can be overridden for testing.
var configPathFunc = defaultConfigPath

// SetConfigPathFunc sets the config path function for testing. It returns
// the original function so it can be restored.
func SetConfigPathFunc(fn func() (string, error)) func() (string, error) {
	orig := configPathFunc
	configPathFunc = fn
	return orig
}

// defaultConfigPath returns ~/.config/odootable/config.yaml.
func defaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "odootable", "config.yaml"), nil
}

// DefaultConfigPath returns the default config file location.
func DefaultConfigPath() (string, error) {
	return configPathFunc()
}

// Load loads config from the default path, returning an empty config when
// the file does not exist.
func Load() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return &Config{}, nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}
	return &cfg, nil
}
