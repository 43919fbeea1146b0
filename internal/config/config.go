package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"importlens/internal/index"
	"importlens/internal/interp"
	"importlens/internal/probe"
	"importlens/internal/reconstruct"
	"importlens/internal/verify"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "importlens.yaml"

const (
	ResolverStatic = "static"
	ResolverProbe  = "probe"
)

type Config struct {
	Python       string            `yaml:"python"`
	MaxObj       int               `yaml:"max_obj"`
	Ignore       []string          `yaml:"ignore"`
	Mapping      map[string]string `yaml:"mapping"`       // Extra module name replacements
	Timeout      time.Duration     `yaml:"timeout"`       // Verification deadline
	ProbeTimeout time.Duration     `yaml:"probe_timeout"` // Runtime probe deadline
	Resolver     string            `yaml:"resolver"`
	Symtab       []string          `yaml:"symtab"` // Extra symbol tables layered over the built-in one
	Database     string            `yaml:"database"`
	CacheTTL     time.Duration     `yaml:"cache_ttl"` // Lifetime of cached verification outcomes; 0 keeps them
	Workers      int               `yaml:"workers"`
}

// DefaultCacheTTL bounds how long a statement known to import cleanly is
// trusted without asking the interpreter again.
const DefaultCacheTTL = 24 * time.Hour

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Python:       interp.DefaultPython,
		MaxObj:       reconstruct.DefaultMaxObj,
		Timeout:      verify.DefaultTimeout,
		ProbeTimeout: probe.DefaultTimeout,
		Resolver:     ResolverStatic,
		Database:     "importlens.db",
		CacheTTL:     DefaultCacheTTL,
		Workers:      index.DefaultWorkers,
	}
}

// LoadConfig reads the YAML file at path over the defaults, then applies
// IMPORTLENS_* environment variables. A missing file is an error only when
// required is set.
func LoadConfig(path string, required bool) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config
	file, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !required:
	default:
		return nil, err
	}

	// 3. Override with Environment Variables if present
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if python := os.Getenv("IMPORTLENS_PYTHON"); python != "" {
		c.Python = python
	}
	if db := os.Getenv("IMPORTLENS_DB"); db != "" {
		c.Database = db
	}
	if v := os.Getenv("IMPORTLENS_MAX_OBJ"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("IMPORTLENS_MAX_OBJ: %w", err)
		}
		c.MaxObj = n
	}
	if v := os.Getenv("IMPORTLENS_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("IMPORTLENS_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	return nil
}

// Validate rejects settings no command can run with.
func (c *Config) Validate() error {
	var errs []error
	if c.MaxObj < 0 {
		errs = append(errs, fmt.Errorf("max_obj must not be negative, got %d", c.MaxObj))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative, got %s", c.Timeout))
	}
	if c.ProbeTimeout < 0 {
		errs = append(errs, fmt.Errorf("probe_timeout must not be negative, got %s", c.ProbeTimeout))
	}
	if c.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("cache_ttl must not be negative, got %s", c.CacheTTL))
	}
	if c.Workers <= 0 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", c.Workers))
	}
	if c.Resolver != ResolverStatic && c.Resolver != ResolverProbe {
		errs = append(errs, fmt.Errorf("unknown resolver %q", c.Resolver))
	}
	if c.Python == "" {
		errs = append(errs, errors.New("python must not be empty"))
	}
	return errors.Join(errs...)
}

// Reconstruct returns the reconstructor settings.
func (c *Config) Reconstruct() reconstruct.Config {
	rc := reconstruct.DefaultConfig()
	rc.MaxObj = c.MaxObj
	rc.Ignore = append([]string(nil), c.Ignore...)
	for module, public := range c.Mapping {
		rc.Mapping[module] = public
	}
	return rc
}
