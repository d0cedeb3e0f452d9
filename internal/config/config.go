package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Sonarr     ArrConfig        `mapstructure:"sonarr"`
	Radarr     ArrConfig        `mapstructure:"radarr"`
	TMDB       TMDBConfig       `mapstructure:"tmdb"`
	Generator  GeneratorConfig  `mapstructure:"generator"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Enrichment EnrichmentConfig `mapstructure:"enrichment"`
	Exclusions ExclusionsConfig `mapstructure:"exclusions"`
	History    HistoryConfig    `mapstructure:"history"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ArrConfig holds connection settings for a Sonarr or Radarr instance.
type ArrConfig struct {
	URL               string `mapstructure:"url"`
	APIKey            string `mapstructure:"api_key"`
	Timeout           int    `mapstructure:"timeout"` // seconds
	RootFolder        string `mapstructure:"root_folder"`
	QualityProfileID  int    `mapstructure:"quality_profile_id"`
	LanguageProfileID int    `mapstructure:"language_profile_id"` // Sonarr only
}

// TMDBConfig holds TMDB API configuration.
type TMDBConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"` // seconds
}

// GeneratorConfig holds the OpenAI-compatible completion endpoint settings.
type GeneratorConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Timeout     int     `mapstructure:"timeout"` // seconds
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

// CacheConfig holds library snapshot cache settings.
type CacheConfig struct {
	TTLMinutes int `mapstructure:"ttl_minutes"`
	SampleSize int `mapstructure:"sample_size"`
}

// TTL returns the snapshot age limit as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// EnrichmentConfig holds lookup fan-out settings.
type EnrichmentConfig struct {
	Workers        int `mapstructure:"workers"`
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// Timeout returns the per-lookup deadline as a duration.
func (c EnrichmentConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ExclusionsConfig points at the denylist files. When a path is empty the
// built-in list for that call site is used.
type ExclusionsConfig struct {
	FilterFile  string `mapstructure:"filter_file"`
	CreditsFile string `mapstructure:"credits_file"`
}

// HistoryConfig holds request history retention settings.
type HistoryConfig struct {
	RetentionDays int `mapstructure:"retention_days"`
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > config file > defaults
func Load(configPath string) (*Config, error) {
	// Optional .env for local development; ignore absence.
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.recomarr")
	}

	v.SetEnvPrefix("RECOMARR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults + env vars
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5050)

	v.SetDefault("database.path", "./data/recomarr.db")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.path", "")

	v.SetDefault("sonarr.url", "http://sonarr:8989")
	v.SetDefault("sonarr.api_key", "")
	v.SetDefault("sonarr.timeout", 30)
	v.SetDefault("sonarr.root_folder", "")
	v.SetDefault("sonarr.quality_profile_id", 0)
	v.SetDefault("sonarr.language_profile_id", 0)

	v.SetDefault("radarr.url", "http://radarr:7878")
	v.SetDefault("radarr.api_key", "")
	v.SetDefault("radarr.timeout", 30)
	v.SetDefault("radarr.root_folder", "")
	v.SetDefault("radarr.quality_profile_id", 0)

	v.SetDefault("tmdb.api_key", EmbeddedTMDBKey)
	v.SetDefault("tmdb.base_url", "https://api.themoviedb.org/3")
	v.SetDefault("tmdb.timeout", 15)

	v.SetDefault("generator.base_url", "https://api.openai.com/v1")
	v.SetDefault("generator.api_key", "")
	v.SetDefault("generator.model", "gpt-4.1-mini")
	v.SetDefault("generator.timeout", 120)
	v.SetDefault("generator.max_tokens", 800)
	v.SetDefault("generator.temperature", 0.65)

	v.SetDefault("cache.ttl_minutes", 15)
	v.SetDefault("cache.sample_size", 120)

	v.SetDefault("enrichment.workers", 5)
	v.SetDefault("enrichment.timeout_seconds", 60)

	v.SetDefault("exclusions.filter_file", "")
	v.SetDefault("exclusions.credits_file", "")

	v.SetDefault("history.retention_days", 90)
}

// Validate checks configuration consistency. It is called by Load but is
// exported so hand-built configs in tests go through the same checks.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Enrichment.Workers < 1 {
		return fmt.Errorf("enrichment.workers must be at least 1, got %d", c.Enrichment.Workers)
	}
	if c.Enrichment.TimeoutSeconds < 1 {
		return fmt.Errorf("enrichment.timeout_seconds must be at least 1, got %d", c.Enrichment.TimeoutSeconds)
	}
	if c.Cache.TTLMinutes < 1 {
		return fmt.Errorf("cache.ttl_minutes must be at least 1, got %d", c.Cache.TTLMinutes)
	}
	if c.Cache.SampleSize < 0 {
		return fmt.Errorf("cache.sample_size must not be negative, got %d", c.Cache.SampleSize)
	}
	if c.History.RetentionDays < 0 {
		return fmt.Errorf("history.retention_days must not be negative, got %d", c.History.RetentionDays)
	}
	return nil
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
