package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Log       LogConfig
	CORS      CORSConfig
	Generator GeneratorConfig
	Archive   ArchiveConfig
	Batch     BatchConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// GeneratorProviderConfig holds settings for a single generation-service provider.
type GeneratorProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// GeneratorConfig holds generation-service settings with multi-provider support.
type GeneratorConfig struct {
	Primary   GeneratorProviderConfig `mapstructure:"primary"`
	Secondary GeneratorProviderConfig `mapstructure:"secondary"`
	Tertiary  GeneratorProviderConfig `mapstructure:"tertiary"`
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (g *GeneratorConfig) SecondaryConfig() *GeneratorProviderConfig {
	if g.Secondary.Provider != "" {
		return &g.Secondary
	}
	return nil
}

// TertiaryConfig returns the tertiary provider config, or nil if not configured.
func (g *GeneratorConfig) TertiaryConfig() *GeneratorProviderConfig {
	if g.Tertiary.Provider != "" {
		return &g.Tertiary
	}
	return nil
}

// ArchiveConfig holds S3 settings for archiving uploaded source documents.
// An empty bucket disables archival.
type ArchiveConfig struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// Enabled reports whether upload archival is configured.
func (a *ArchiveConfig) Enabled() bool {
	return a.Bucket != ""
}

// BatchConfig holds per-batch upload limits.
type BatchConfig struct {
	MaxFiles      int   `mapstructure:"max_files"`
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
}

// Load reads configuration from environment variables with the FISCOS_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FISCOS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "fiscos")
	v.SetDefault("db.password", "fiscos_secret")
	v.SetDefault("db.name", "fiscos_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Generator provider defaults. The primary mirrors the deployment this
	// service replaced: OpenAI with gpt-4o-mini.
	v.SetDefault("generator.primary.provider", "openai")
	v.SetDefault("generator.primary.api_key", "")
	v.SetDefault("generator.primary.default_model", "gpt-4o-mini")
	v.SetDefault("generator.primary.timeout_secs", 120)
	v.SetDefault("generator.secondary.provider", "")
	v.SetDefault("generator.secondary.api_key", "")
	v.SetDefault("generator.secondary.default_model", "")
	v.SetDefault("generator.secondary.timeout_secs", 120)
	v.SetDefault("generator.tertiary.provider", "")
	v.SetDefault("generator.tertiary.api_key", "")
	v.SetDefault("generator.tertiary.default_model", "")
	v.SetDefault("generator.tertiary.timeout_secs", 120)

	// Archive defaults (disabled unless a bucket is set)
	v.SetDefault("archive.region", "us-east-1")
	v.SetDefault("archive.bucket", "")
	v.SetDefault("archive.endpoint", "")
	v.SetDefault("archive.access_key", "")
	v.SetDefault("archive.secret_key", "")

	// Batch defaults
	v.SetDefault("batch.max_files", 50)
	v.SetDefault("batch.max_file_size_mb", 20)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                       "FISCOS_SERVER_PORT",
		"server.read_timeout":               "FISCOS_SERVER_READ_TIMEOUT",
		"server.write_timeout":              "FISCOS_SERVER_WRITE_TIMEOUT",
		"server.environment":                "FISCOS_SERVER_ENVIRONMENT",
		"db.host":                           "FISCOS_DB_HOST",
		"db.port":                           "FISCOS_DB_PORT",
		"db.user":                           "FISCOS_DB_USER",
		"db.password":                       "FISCOS_DB_PASSWORD",
		"db.name":                           "FISCOS_DB_NAME",
		"db.sslmode":                        "FISCOS_DB_SSLMODE",
		"db.max_open":                       "FISCOS_DB_MAX_OPEN",
		"db.max_idle":                       "FISCOS_DB_MAX_IDLE",
		"log.level":                         "FISCOS_LOG_LEVEL",
		"log.format":                        "FISCOS_LOG_FORMAT",
		"cors.allowed_origins":              "FISCOS_CORS_ALLOWED_ORIGINS",
		"generator.primary.provider":        "FISCOS_GENERATOR_PRIMARY_PROVIDER",
		"generator.primary.api_key":         "FISCOS_GENERATOR_PRIMARY_API_KEY",
		"generator.primary.default_model":   "FISCOS_GENERATOR_PRIMARY_DEFAULT_MODEL",
		"generator.primary.timeout_secs":    "FISCOS_GENERATOR_PRIMARY_TIMEOUT_SECS",
		"generator.secondary.provider":      "FISCOS_GENERATOR_SECONDARY_PROVIDER",
		"generator.secondary.api_key":       "FISCOS_GENERATOR_SECONDARY_API_KEY",
		"generator.secondary.default_model": "FISCOS_GENERATOR_SECONDARY_DEFAULT_MODEL",
		"generator.secondary.timeout_secs":  "FISCOS_GENERATOR_SECONDARY_TIMEOUT_SECS",
		"generator.tertiary.provider":       "FISCOS_GENERATOR_TERTIARY_PROVIDER",
		"generator.tertiary.api_key":        "FISCOS_GENERATOR_TERTIARY_API_KEY",
		"generator.tertiary.default_model":  "FISCOS_GENERATOR_TERTIARY_DEFAULT_MODEL",
		"generator.tertiary.timeout_secs":   "FISCOS_GENERATOR_TERTIARY_TIMEOUT_SECS",
		"archive.region":                    "FISCOS_ARCHIVE_REGION",
		"archive.bucket":                    "FISCOS_ARCHIVE_BUCKET",
		"archive.endpoint":                  "FISCOS_ARCHIVE_ENDPOINT",
		"archive.access_key":                "FISCOS_ARCHIVE_ACCESS_KEY",
		"archive.secret_key":                "FISCOS_ARCHIVE_SECRET_KEY",
		"batch.max_files":                   "FISCOS_BATCH_MAX_FILES",
		"batch.max_file_size_mb":            "FISCOS_BATCH_MAX_FILE_SIZE_MB",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if FISCOS_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("FISCOS_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Generator = GeneratorConfig{
		Primary: GeneratorProviderConfig{
			Provider:     v.GetString("generator.primary.provider"),
			APIKey:       v.GetString("generator.primary.api_key"),
			DefaultModel: v.GetString("generator.primary.default_model"),
			TimeoutSecs:  v.GetInt("generator.primary.timeout_secs"),
		},
		Secondary: GeneratorProviderConfig{
			Provider:     v.GetString("generator.secondary.provider"),
			APIKey:       v.GetString("generator.secondary.api_key"),
			DefaultModel: v.GetString("generator.secondary.default_model"),
			TimeoutSecs:  v.GetInt("generator.secondary.timeout_secs"),
		},
		Tertiary: GeneratorProviderConfig{
			Provider:     v.GetString("generator.tertiary.provider"),
			APIKey:       v.GetString("generator.tertiary.api_key"),
			DefaultModel: v.GetString("generator.tertiary.default_model"),
			TimeoutSecs:  v.GetInt("generator.tertiary.timeout_secs"),
		},
	}

	cfg.Archive = ArchiveConfig{
		Region:    v.GetString("archive.region"),
		Bucket:    v.GetString("archive.bucket"),
		Endpoint:  v.GetString("archive.endpoint"),
		AccessKey: v.GetString("archive.access_key"),
		SecretKey: v.GetString("archive.secret_key"),
	}

	cfg.Batch = BatchConfig{
		MaxFiles:      v.GetInt("batch.max_files"),
		MaxFileSizeMB: v.GetInt64("batch.max_file_size_mb"),
	}

	return cfg, nil
}
