package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the capability configuration of a memory engine.
//
// It is supplied by the owning agent at construction and is immutable for the
// engine's lifetime: NewEngine keeps its own copy.
//
// Example:
//
//	config := &core.Config{
//	    ShortTermCapacity: 100,
//	    LongTermCapacity:  1000,
//	    SupportedKinds:    []core.Kind{core.KindEpisodic, core.KindSemantic},
//	    CanForget:         true,
//	}
type Config struct {
	// ShortTermCapacity is the maximum number of records in short-term storage.
	ShortTermCapacity int `json:"short_term_capacity" yaml:"short_term_capacity"`

	// LongTermCapacity is the maximum number of records in long-term storage.
	LongTermCapacity int `json:"long_term_capacity" yaml:"long_term_capacity"`

	// SupportedKinds is the closed set of memory kinds the engine accepts.
	SupportedKinds []Kind `json:"supported_kinds" yaml:"supported_kinds"`

	// CanForget allows automatic eviction from long-term storage.
	// When false, long-term storage is a hard ceiling: inserts into a full
	// long-term tier fail with ErrCapacityExceeded.
	CanForget bool `json:"can_forget" yaml:"can_forget"`
}

// DefaultConfig returns a default capability configuration.
func DefaultConfig() *Config {
	return &Config{
		ShortTermCapacity: 100,
		LongTermCapacity:  1000,
		SupportedKinds:    append([]Kind(nil), DefaultKinds...),
		CanForget:         true,
	}
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.SupportedKinds = append([]Kind(nil), c.SupportedKinds...)
	return &clone
}

// Supports reports whether kind is in the supported set.
func (c *Config) Supports(kind Kind) bool {
	for _, k := range c.SupportedKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Validate validates the configuration.
//
// Checks that:
//   - Both capacities are at least 1
//   - At least one kind is supported
//   - Kinds are non-empty and unique
//
// Returns an error if validation fails, nil otherwise.
func (c *Config) Validate() error {
	if c.ShortTermCapacity < 1 {
		return NewMemoryError("Validate", fmt.Errorf("%w: short-term capacity must be positive, got %d", ErrInvalidConfig, c.ShortTermCapacity))
	}
	if c.LongTermCapacity < 1 {
		return NewMemoryError("Validate", fmt.Errorf("%w: long-term capacity must be positive, got %d", ErrInvalidConfig, c.LongTermCapacity))
	}
	if len(c.SupportedKinds) == 0 {
		return NewMemoryError("Validate", fmt.Errorf("%w: no supported kinds", ErrInvalidConfig))
	}
	seen := make(map[Kind]bool, len(c.SupportedKinds))
	for _, k := range c.SupportedKinds {
		if strings.TrimSpace(string(k)) == "" {
			return NewMemoryError("Validate", fmt.Errorf("%w: empty kind", ErrInvalidConfig))
		}
		if seen[k] {
			return NewMemoryError("Validate", fmt.Errorf("%w: duplicate kind %q", ErrInvalidConfig, k))
		}
		seen[k] = true
	}
	return nil
}

// LoadConfigFromEnv loads configuration from environment variables.
//
// The function:
//  1. Searches for .env or .env.example files (up to 5 directory levels up)
//  2. Loads environment variables from the found file
//  3. Parses environment variables into a Config struct, starting from DefaultConfig
//
// Supported environment variables:
//   - TIERMEM_SHORT_TERM_CAPACITY
//   - TIERMEM_LONG_TERM_CAPACITY
//   - TIERMEM_SUPPORTED_KINDS (comma-separated)
//   - TIERMEM_CAN_FORGET (true/false)
//
// Returns a Config instance, or an error if a variable cannot be parsed.
func LoadConfigFromEnv() (*Config, error) {
	envPath, found := FindEnvFile()
	if found {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	config := DefaultConfig()

	if v := os.Getenv("TIERMEM_SHORT_TERM_CAPACITY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, NewMemoryError("LoadConfigFromEnv", fmt.Errorf("%w: TIERMEM_SHORT_TERM_CAPACITY: %v", ErrInvalidConfig, err))
		}
		config.ShortTermCapacity = n
	}
	if v := os.Getenv("TIERMEM_LONG_TERM_CAPACITY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, NewMemoryError("LoadConfigFromEnv", fmt.Errorf("%w: TIERMEM_LONG_TERM_CAPACITY: %v", ErrInvalidConfig, err))
		}
		config.LongTermCapacity = n
	}
	if v := os.Getenv("TIERMEM_SUPPORTED_KINDS"); v != "" {
		config.SupportedKinds = parseKinds(v)
	}
	if v := os.Getenv("TIERMEM_CAN_FORGET"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, NewMemoryError("LoadConfigFromEnv", fmt.Errorf("%w: TIERMEM_CAN_FORGET: %v", ErrInvalidConfig, err))
		}
		config.CanForget = b
	}

	return config, nil
}

// LoadConfigFromEnvFile loads configuration from a specific .env file.
//
// Parameters:
//   - envPath: Path to the .env file
//
// Returns a Config instance, or an error if loading fails.
func LoadConfigFromEnvFile(envPath string) (*Config, error) {
	if err := godotenv.Load(envPath); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return LoadConfigFromEnv()
}

// LoadConfigFromJSON loads configuration from a JSON file.
//
// Parameters:
//   - path: Path to the JSON configuration file
//
// Returns a Config instance, or an error if loading or parsing fails.
func LoadConfigFromJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewMemoryError("LoadConfigFromJSON", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, NewMemoryError("LoadConfigFromJSON", err)
	}

	return &config, nil
}

// LoadConfigFromYAML loads configuration from a YAML file.
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns a Config instance, or an error if loading or parsing fails.
func LoadConfigFromYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewMemoryError("LoadConfigFromYAML", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, NewMemoryError("LoadConfigFromYAML", err)
	}

	return &config, nil
}

// parseKinds splits a comma-separated kind list, dropping blanks.
func parseKinds(v string) []Kind {
	var kinds []Kind
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			kinds = append(kinds, Kind(part))
		}
	}
	return kinds
}

// envFileNames lists the env files FindEnvFile looks for, in precedence order.
var envFileNames = []string{".env", ".env.example"}

// FindEnvFile locates the env file LoadConfigFromEnv reads. It checks the
// working directory first, returning a relative name, then up to five parent
// directories, returning an absolute path.
func FindEnvFile() (string, bool) {
	if name, ok := firstExisting(""); ok {
		return name, true
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}
	for i := 0; i < 5; i++ {
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
		if path, ok := firstExisting(dir); ok {
			return path, true
		}
	}
	return "", false
}

func firstExisting(dir string) (string, bool) {
	for _, name := range envFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}
