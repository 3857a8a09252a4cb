// Package config loads the compile service's runtime configuration: which
// artifact-store backend to use, the distributed cache address, the
// tracing exporter, and the server port.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPort is the default port for the diagnostics dashboard server.
const DefaultPort = 8420

// StoreDriver selects the ArtifactStore backend.
type StoreDriver string

const (
	StorePostgres StoreDriver = "postgres"
	StoreMySQL    StoreDriver = "mysql"
)

// TracingExporter selects how spans are exported.
type TracingExporter string

const (
	TracingStdout TracingExporter = "stdout"
	TracingOTLP   TracingExporter = "otlp"
)

// Config is the compile service's full runtime configuration.
type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Store struct {
		Driver StoreDriver `yaml:"driver"`
		DSN    string      `yaml:"dsn"`
	} `yaml:"store"`

	ASTStore struct {
		URI      string `yaml:"uri"`
		Database string `yaml:"database"`
	} `yaml:"ast_store"`

	Cache struct {
		Address string `yaml:"address"`
		TTL     string `yaml:"ttl"`
	} `yaml:"cache"`

	SymbolTable struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"symbol_table"`

	Tracing struct {
		Exporter     TracingExporter `yaml:"exporter"`
		OTLPEndpoint string          `yaml:"otlp_endpoint"`
	} `yaml:"tracing"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

// Default returns a Config suitable for running everything locally: no
// store DSN or URI, no SQLite symbol-table path, no distributed cache,
// stdout tracing.
func Default() *Config {
	c := &Config{}
	c.Server.Port = DefaultPort
	c.Store.Driver = StorePostgres
	c.Tracing.Exporter = TracingStdout
	c.Logging.Level = "info"
	c.Logging.Format = "text"
	return c
}

// Load reads a YAML config file at path, falling back to Default for any
// field the file leaves zero-valued.
func Load(path string) (*Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return c, nil
}
