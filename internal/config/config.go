package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

// DatabaseSchema is the Postgres schema that owns every DataHub table.
const DatabaseSchema = "neurastate"

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Map      MapConfig
	Import   ImportConfig
	CORS     CORSConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds PostgreSQL connection configuration.
// URL, when set, takes precedence over the discrete fields.
type DatabaseConfig struct {
	URL      string
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Schema   string
	PoolMin  int
	PoolMax  int
}

// MapConfig holds tuning for the spatial query service.
type MapConfig struct {
	MinZoom int
}

// ImportConfig holds bulk import configuration.
// SourceURL is an optional override; when empty the importer falls back to
// the persisted setting, then to its default constant.
type ImportConfig struct {
	SourceURL string
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// Load reads configuration from environment variables.
// It uses viper to read values and provides sensible defaults for development.
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults for development
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "require")
	v.SetDefault("DB_POOL_MIN", 2)
	v.SetDefault("DB_POOL_MAX", 10)
	v.SetDefault("MAP_MIN_ZOOM", 13)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:3001")

	// Bind environment variables
	v.AutomaticEnv()

	// Build configuration
	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
			Env:  v.GetString("ENV"),
		},
		Database: DatabaseConfig{
			URL:      v.GetString("DATABASE_URL"),
			Host:     v.GetString("DB_INSTANCE_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASS"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			Schema:   DatabaseSchema,
			PoolMin:  v.GetInt("DB_POOL_MIN"),
			PoolMax:  v.GetInt("DB_POOL_MAX"),
		},
		Map: MapConfig{
			MinZoom: v.GetInt("MAP_MIN_ZOOM"),
		},
		Import: ImportConfig{
			SourceURL: v.GetString("IMPORT_URL"),
		},
		CORS: CORSConfig{
			Origins: parseOrigins(v.GetString("CORS_ORIGINS")),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present and valid.
// The discrete DB_* variables are only required when DATABASE_URL is unset.
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	// Validate database config
	if c.Database.URL == "" {
		if c.Database.Host == "" {
			return fmt.Errorf("DB_INSTANCE_HOST is required")
		}
		if c.Database.Port == "" {
			return fmt.Errorf("DB_PORT is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("DB_NAME is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("DB_USER is required")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASS is required")
		}
	}
	if c.Database.PoolMin < 0 {
		return fmt.Errorf("DB_POOL_MIN must be non-negative")
	}
	if c.Database.PoolMax < 1 {
		return fmt.Errorf("DB_POOL_MAX must be at least 1")
	}
	if c.Database.PoolMin > c.Database.PoolMax {
		return fmt.Errorf("DB_POOL_MIN must be less than or equal to DB_POOL_MAX")
	}

	// Validate map config
	if c.Map.MinZoom < 0 {
		return fmt.Errorf("MAP_MIN_ZOOM must be non-negative")
	}

	// Validate CORS config
	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}

	return nil
}

// DSN renders the connection string for this database configuration.
// User and password are URL-escaped so credentials with special characters
// survive the round trip through the URL form.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}

	params := url.Values{}
	params.Set("sslmode", c.SSLMode)
	if c.Schema != "" {
		params.Set("search_path", c.Schema)
	}

	return fmt.Sprintf(
		"postgres://%s@%s:%s/%s?%s",
		url.UserPassword(c.User, c.Password).String(),
		c.Host,
		c.Port,
		c.Name,
		params.Encode(),
	)
}

// parseOrigins splits a comma-separated string of origins into a slice.
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
