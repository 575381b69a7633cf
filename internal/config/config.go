// Package config provides configuration management for the BBL Multi Builder service.
package config

import (
	"fmt"
	"time"

	"github.com/yourusername/bbl-multi-builder/internal/models"
)

// Config represents the complete application configuration
type Config struct {
	App      AppConfig       `mapstructure:"app" validate:"required"`
	Server   ServerConfig    `mapstructure:"server" validate:"required"`
	Data     DataConfig      `mapstructure:"data" validate:"required"`
	Teams    []string        `mapstructure:"teams" validate:"required,min=2,dive,required"`
	Markets  MarketsConfig   `mapstructure:"markets" validate:"required"`
	Fixtures []FixtureConfig `mapstructure:"fixtures" validate:"dive"`
	Engine   EngineConfig    `mapstructure:"engine" validate:"required"`
	Metrics  MetricsConfig   `mapstructure:"metrics"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Version     string `mapstructure:"version" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// ServerConfig represents the HTTP API configuration
type ServerConfig struct {
	Port                   int      `mapstructure:"port" validate:"required,min=1,max=65535"`
	CORSOrigins            []string `mapstructure:"cors_origins"`
	CORSAllowCredentials   bool     `mapstructure:"cors_allow_credentials"`
	RateLimitPerSecond     float64  `mapstructure:"rate_limit_per_second" validate:"gte=0"`
	RateLimitBurst         int      `mapstructure:"rate_limit_burst" validate:"gte=0"`
	ReadTimeoutSeconds     int      `mapstructure:"read_timeout_seconds" validate:"required,gt=0"`
	WriteTimeoutSeconds    int      `mapstructure:"write_timeout_seconds" validate:"required,gt=0"`
	ShutdownTimeoutSeconds int      `mapstructure:"shutdown_timeout_seconds" validate:"required,gt=0"`
}

// DataConfig describes where the batting and bowling tables are loaded from
type DataConfig struct {
	Batters        SourceConfig  `mapstructure:"batters" validate:"required"`
	Bowlers        SourceConfig  `mapstructure:"bowlers" validate:"required"`
	BatterColumns  ColumnsConfig `mapstructure:"batter_columns" validate:"required"`
	BowlerColumns  ColumnsConfig `mapstructure:"bowler_columns" validate:"required"`
	TimeoutSeconds int           `mapstructure:"timeout_seconds" validate:"required,gt=0"`

	// RefreshSchedule reloads both tables while serving; empty disables reloading.
	RefreshSchedule string `mapstructure:"refresh_schedule" validate:"omitempty,cronspec"`
}

// SourceConfig locates one CSV table
type SourceConfig struct {
	Type      string  `mapstructure:"type" validate:"required,source"`
	Path      string  `mapstructure:"path"`
	URL       string  `mapstructure:"url" validate:"omitempty,url"`
	Bucket    string  `mapstructure:"bucket"`
	Key       string  `mapstructure:"key"`
	Region    string  `mapstructure:"region"`
	Endpoint  string  `mapstructure:"endpoint"`
	PathStyle bool    `mapstructure:"path_style"`
	RateLimit float64 `mapstructure:"rate_limit" validate:"gte=0"`
}

// ColumnsConfig names the identity columns of a table
type ColumnsConfig struct {
	Team    string `mapstructure:"team" validate:"required"`
	Player  string `mapstructure:"player" validate:"required"`
	Innings string `mapstructure:"innings"`
	Total   string `mapstructure:"total"`
}

// MarketsConfig holds the market definitions per role
type MarketsConfig struct {
	Batting []MarketConfig `mapstructure:"batting" validate:"required,min=1,dive"`
	Bowling []MarketConfig `mapstructure:"bowling" validate:"required,min=1,dive"`
}

// MarketConfig defines one market and its source column
type MarketConfig struct {
	Key       string `mapstructure:"key" validate:"required"`
	Name      string `mapstructure:"name" validate:"required"`
	CSVColumn string `mapstructure:"csv_column" validate:"required"`
	TopTeam   bool   `mapstructure:"top_team"`
}

// FixtureConfig is one configured match
type FixtureConfig struct {
	Home string `mapstructure:"home" validate:"required"`
	Away string `mapstructure:"away" validate:"required,nefield=Home"`
}

// EngineConfig represents recommendation engine configuration
type EngineConfig struct {
	MatchRecommendationLimit int  `mapstructure:"match_recommendation_limit" validate:"required,gt=0"`
	CacheEnabled             bool `mapstructure:"cache_enabled"`
	CacheTTLSeconds          int  `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
}

// MetricsConfig represents metrics configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required_if=Enabled true"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Catalog builds the closed set of teams and markets from configuration
func (c *Config) Catalog() (*models.Catalog, error) {
	markets := make([]models.Market, 0, len(c.Markets.Batting)+len(c.Markets.Bowling))
	for _, m := range c.Markets.Batting {
		markets = append(markets, m.toMarket(models.RoleBatter))
	}
	for _, m := range c.Markets.Bowling {
		markets = append(markets, m.toMarket(models.RoleBowler))
	}

	catalog, err := models.NewCatalog(c.Teams, markets)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return catalog, nil
}

// FixtureList returns the configured fixtures in order
func (c *Config) FixtureList() []models.Fixture {
	fixtures := make([]models.Fixture, 0, len(c.Fixtures))
	for _, f := range c.Fixtures {
		fixtures = append(fixtures, models.NewFixture(f.Home, f.Away))
	}
	return fixtures
}

// CacheTTL returns the recommendation cache TTL
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Engine.CacheTTLSeconds) * time.Second
}

// DataTimeout returns the time budget for fetching one source table
func (c *Config) DataTimeout() time.Duration {
	return time.Duration(c.Data.TimeoutSeconds) * time.Second
}

func (m MarketConfig) toMarket(role models.Role) models.Market {
	return models.Market{
		Key:       m.Key,
		Name:      m.Name,
		Role:      role,
		CSVColumn: m.CSVColumn,
		TopTeam:   m.TopTeam,
	}
}
