package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultTTL           = 10_000
	DefaultMaxAllocBytes = 64 << 20
	DefaultMaxCallDepth  = 200
	DefaultLogLevel      = "none"
	DefaultOutputFormat  = "json"
)

var (
	outputFormats = []string{"json", "yaml", "text"}
	storeDrivers  = []string{"sqlite3", "mysql", "postgres"}
)

// Configuration holds CLI settings. Flags override values loaded from file.
type Configuration struct {
	Version   string `toml:"-"`
	BuildDate string `toml:"-"`
	Commit    string `toml:"-"`

	TTL           int64 `toml:"ttl"`
	MaxAllocBytes int64 `toml:"max_alloc_bytes"`
	MaxCallDepth  int   `toml:"max_call_depth"`

	Log    LogConfig    `toml:"log"`
	Output OutputConfig `toml:"output"`
	Store  StoreConfig  `toml:"store"`
}

type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

type OutputConfig struct {
	Format string `toml:"format"`
}

// StoreConfig selects where runs are recorded. An empty driver disables it.
type StoreConfig struct {
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
}

func Default() Configuration {
	return Configuration{
		TTL:           DefaultTTL,
		MaxAllocBytes: DefaultMaxAllocBytes,
		MaxCallDepth:  DefaultMaxCallDepth,
		Log:           LogConfig{Level: DefaultLogLevel},
		Output:        OutputConfig{Format: DefaultOutputFormat},
	}
}

// Load reads a TOML file over the defaults. Unknown keys are rejected.
func Load(path string) (Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Configuration{}, fmt.Errorf("config: %w", err)
	}
	return Parse(string(data))
}

func Parse(data string) (Configuration, error) {
	cfg := Default()
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return Configuration{}, fmt.Errorf("config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Configuration{}, fmt.Errorf("config: unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Configuration{}, err
	}
	return cfg, nil
}

func (c Configuration) Validate() error {
	var errs []error
	if c.TTL < 0 {
		errs = append(errs, fmt.Errorf("ttl must not be negative, got %d", c.TTL))
	}
	if c.MaxAllocBytes < 0 {
		errs = append(errs, fmt.Errorf("max_alloc_bytes must not be negative, got %d", c.MaxAllocBytes))
	}
	if c.MaxCallDepth < 0 {
		errs = append(errs, fmt.Errorf("max_call_depth must not be negative, got %d", c.MaxCallDepth))
	}
	if !oneOf(c.Output.Format, outputFormats) {
		errs = append(errs, fmt.Errorf("output.format must be one of %s, got %q", strings.Join(outputFormats, ", "), c.Output.Format))
	}
	if c.Store.Driver != "" {
		if !oneOf(c.Store.Driver, storeDrivers) {
			errs = append(errs, fmt.Errorf("store.driver must be one of %s, got %q", strings.Join(storeDrivers, ", "), c.Store.Driver))
		}
		if c.Store.DSN == "" {
			errs = append(errs, errors.New("store.dsn is required when store.driver is set"))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

func oneOf(s string, options []string) bool {
	for _, o := range options {
		if s == o {
			return true
		}
	}
	return false
}
