// Package config handles configuration loading for pdlmetrix.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pdlmetrix/pdlmetrix/internal/canvas"
	"github.com/pdlmetrix/pdlmetrix/internal/charts"
	"github.com/pdlmetrix/pdlmetrix/internal/render"
	"github.com/pdlmetrix/pdlmetrix/pkg/utils"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PDLMETRIX"

// Store drivers.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

// Config represents the complete application configuration.
type Config struct {
	Store   StoreConfig   `mapstructure:"store"   yaml:"store"`
	League  LeagueConfig  `mapstructure:"league"  yaml:"league"`
	Render  RenderConfig  `mapstructure:"render"  yaml:"render"`
	API     APIConfig     `mapstructure:"api"     yaml:"api"`
	Admin   AdminConfig   `mapstructure:"admin"   yaml:"admin"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// StoreConfig selects where players and games are kept.
type StoreConfig struct {
	Driver string      `mapstructure:"driver" yaml:"driver"` // "memory" or "redis"
	Redis  RedisConfig `mapstructure:"redis"  yaml:"redis"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr      string `mapstructure:"addr"       yaml:"addr"`
	Password  string `mapstructure:"password"   yaml:"password"`
	DB        int    `mapstructure:"db"         yaml:"db"`
	KeyPrefix string `mapstructure:"key_prefix" yaml:"key_prefix"`
}

// LeagueConfig holds league presentation settings.
type LeagueConfig struct {
	Title    string `mapstructure:"title"    yaml:"title"`
	Timezone string `mapstructure:"timezone" yaml:"timezone"` // IANA name or "Local"
}

// RenderConfig holds dashboard rendering settings.
type RenderConfig struct {
	Format      string            `mapstructure:"format"      yaml:"format"`  // "png" or "svg"
	Backend     string            `mapstructure:"backend"     yaml:"backend"` // "native", "gochart", "gonum"
	Concurrency int               `mapstructure:"concurrency" yaml:"concurrency"`
	CacheTTL    int               `mapstructure:"cache_ttl"   yaml:"cache_ttl"` // seconds
	Surfaces    render.SurfaceIDs `mapstructure:"surfaces"    yaml:"surfaces"`
}

// APIConfig holds HTTP server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// AdminConfig holds the credentials guarding league changes.
type AdminConfig struct {
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.pdlmetrix/config.yaml (home directory)
//  3. /etc/pdlmetrix/config.yaml (system)
//
// Environment variables override config file values.
// Format: PDLMETRIX_<SECTION>_<KEY>, e.g., PDLMETRIX_STORE_REDIS_ADDR
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".pdlmetrix"))
	v.AddConfigPath("/etc/pdlmetrix")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return unmarshal(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Store defaults
	v.SetDefault("store.driver", DriverMemory)
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.key_prefix", "pdlmetrix:")

	// League defaults
	v.SetDefault("league.title", "pdlmetrix")
	v.SetDefault("league.timezone", "Local")

	// Render defaults
	ids := render.DefaultSurfaceIDs()
	v.SetDefault("render.format", string(canvas.KindPNG))
	v.SetDefault("render.backend", charts.Native)
	v.SetDefault("render.concurrency", 4)
	v.SetDefault("render.cache_ttl", 300) // 5 minutes
	v.SetDefault("render.surfaces.match_gauge", ids.MatchGauge)
	v.SetDefault("render.surfaces.points_gauge", ids.PointsGauge)
	v.SetDefault("render.surfaces.rating_chart", ids.RatingChart)

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"*"})

	// Admin defaults
	v.SetDefault("admin.username", "admin")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
func overrideFromEnv(cfg *Config) {
	if pw := os.Getenv(EnvPrefix + "_ADMIN_PASSWORD"); pw != "" {
		cfg.Admin.Password = pw
	}
	if pw := os.Getenv(EnvPrefix + "_STORE_REDIS_PASSWORD"); pw != "" {
		cfg.Store.Redis.Password = pw
	}
}

// Validate rejects settings the application cannot run with.
func (c *Config) Validate() error {
	if c.Store.Driver != DriverMemory && c.Store.Driver != DriverRedis {
		return fmt.Errorf("store.driver: unknown driver %q", c.Store.Driver)
	}
	if _, err := canvas.ParseKind(c.Render.Format); err != nil {
		return fmt.Errorf("render.format: %w", err)
	}
	if c.Render.Backend != "" && !slices.Contains(charts.Names(), strings.ToLower(c.Render.Backend)) {
		return fmt.Errorf("render.backend: %w: %q", charts.ErrUnknownBackend, c.Render.Backend)
	}
	if c.API.Port < 0 || c.API.Port > 65535 {
		return fmt.Errorf("api.port: %d out of range", c.API.Port)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("league.timezone: %w", err)
	}
	return nil
}

// Location resolves the league timezone.
func (c *Config) Location() (*time.Location, error) {
	return utils.LoadLocation(c.League.Timezone)
}

// CacheTTL returns the rendered surface cache lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Render.CacheTTL) * time.Second
}

// Addr returns the listen address of the API server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
