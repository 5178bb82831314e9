package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/daefinder/internal/domain/geo"
)

// Config holds the daefinder configuration.
type Config struct {
	Database    DatabaseConfig    `yaml:"database"`
	Storage     StorageConfig     `yaml:"storage"`
	Geolocation GeolocationConfig `yaml:"geolocation"`
	Seed        SeedConfig        `yaml:"seed"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// DatabaseConfig holds Redis connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StorageConfig holds key layout and read paging settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
	PageSize  int    `yaml:"page_size"`
}

// Geolocation providers.
const (
	ProviderStatic = "static"
	ProviderGeoIP  = "geoip"
)

// GeolocationConfig selects how the user's position is resolved.
type GeolocationConfig struct {
	Provider  string  `yaml:"provider"` // static (default) | geoip
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	GeoIPDB   string  `yaml:"geoip_db"` // path to a MaxMind City .mmdb
	IP        string  `yaml:"ip"`
}

// SeedConfig holds dataset loading settings.
type SeedConfig struct {
	BatchSize   int `yaml:"batch_size"`
	Concurrency int `yaml:"concurrency"`
}

// MaxPageSize bounds storage.page_size.
const MaxPageSize = 10000

// Load reads configuration from a YAML file by environment name (local, dev, prod, test).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "dae:"
	}
	if c.Storage.PageSize <= 0 {
		c.Storage.PageSize = 500
	}
	if c.Geolocation.Provider == "" {
		c.Geolocation.Provider = ProviderStatic
	}
	if c.Seed.BatchSize <= 0 {
		c.Seed.BatchSize = 200
	}
	if c.Seed.Concurrency <= 0 {
		c.Seed.Concurrency = 4
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Storage.PageSize > MaxPageSize {
		return fmt.Errorf("storage.page_size must be at most %d, got %d", MaxPageSize, c.Storage.PageSize)
	}
	switch c.Geolocation.Provider {
	case ProviderStatic:
		if !geo.ValidateCoordinates(c.Geolocation.Latitude, c.Geolocation.Longitude) {
			return fmt.Errorf("geolocation latitude/longitude out of range: (%g, %g)",
				c.Geolocation.Latitude, c.Geolocation.Longitude)
		}
	case ProviderGeoIP:
		if c.Geolocation.GeoIPDB == "" {
			return fmt.Errorf("geolocation.geoip_db is required for provider %q", ProviderGeoIP)
		}
	default:
		return fmt.Errorf("geolocation.provider must be %q or %q, got %q",
			ProviderStatic, ProviderGeoIP, c.Geolocation.Provider)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
