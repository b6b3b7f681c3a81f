// Package config loads the service configuration from a YAML file with
// environment-variable overrides for the values that differ per deployment.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level bokforing.yaml configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Company CompanyConfig `yaml:"company"`
	Ledger  LedgerConfig  `yaml:"ledger"`
	Storage StorageConfig `yaml:"storage"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig controls slog output.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // json|text
}

// CompanyConfig identifies the bookkeeping entity on SIE export.
type CompanyConfig struct {
	Name      string `yaml:"name"`
	OrgNumber string `yaml:"org_number"`
}

// LedgerConfig holds bookkeeping policy.
type LedgerConfig struct {
	// ResultAccount is the equity account the year result is booked against
	// when a fiscal year is closed.
	ResultAccount string `yaml:"result_account"`
	// SeedBAS seeds the curated BAS chart into an empty store on startup.
	SeedBAS bool `yaml:"seed_bas"`
}

// StorageConfig selects the backend. An empty DSN means the in-memory store.
type StorageConfig struct {
	DatabaseURL string `yaml:"database_url"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server:  ServerConfig{Addr: ":8080"},
		Log:     LogConfig{Level: "info", Format: "json"},
		Company: CompanyConfig{Name: "Bokföring"},
		Ledger:  LedgerConfig{ResultAccount: "2099", SeedBAS: true},
	}
}

// Load reads a YAML file and applies env overrides. A missing file is fine;
// defaults plus environment win in that case.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}
	cfg.applyEnv()
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Ledger.ResultAccount == "" {
		cfg.Ledger.ResultAccount = "2099"
	}
	return cfg, nil
}

// applyEnv lets the usual deployment knobs override the file.
func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("ADDR")); v != "" {
		c.Server.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		c.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_FORMAT")); v != "" {
		c.Log.Format = v
	}
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		c.Storage.DatabaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("COMPANY_NAME")); v != "" {
		c.Company.Name = v
	}
	if v := strings.TrimSpace(os.Getenv("COMPANY_ORGNR")); v != "" {
		c.Company.OrgNumber = v
	}
	if v := strings.TrimSpace(os.Getenv("RESULT_ACCOUNT")); v != "" {
		c.Ledger.ResultAccount = v
	}
	if v := strings.ToLower(strings.TrimSpace(os.Getenv("SEED_BAS"))); v != "" {
		c.Ledger.SeedBAS = v == "1" || v == "true" || v == "yes"
	}
}
