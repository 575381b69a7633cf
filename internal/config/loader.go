package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables that override config keys
const EnvPrefix = "MULTI_BUILDER"

// DefaultConfigPath is used when no path is supplied
const DefaultConfigPath = "config/config.yaml"

// Load reads and parses the configuration from file and environment variables.
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	if err := readExpanded(v, data); err != nil {
		return nil, err
	}

	return unmarshal(v)
}

// LoadWithDefaults loads configuration on top of the built-in BBL defaults.
// A missing config file is not an error.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		if err := readExpanded(v, data); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return unmarshal(v)
}

func newViper() *viper.Viper {
	// A missing .env file is fine
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func readExpanded(v *viper.Viper, data []byte) error {
	expanded := os.ExpandEnv(string(data))
	if err := v.MergeConfig(bytes.NewBufferString(expanded)); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "bbl-multi-builder")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("server.port", 8000)
	v.SetDefault("server.cors_origins", []string{
		"http://localhost:3000",
		"http://localhost:3001",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:3001",
		"http://localhost:8080",
		"http://127.0.0.1:8080",
	})
	v.SetDefault("server.cors_allow_credentials", true)
	v.SetDefault("server.rate_limit_per_second", 20)
	v.SetDefault("server.rate_limit_burst", 40)
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 30)
	v.SetDefault("server.shutdown_timeout_seconds", 10)

	v.SetDefault("data.timeout_seconds", 30)
	v.SetDefault("data.refresh_schedule", "")
	v.SetDefault("data.batters", map[string]interface{}{"type": "file", "path": "data/BBL_batters.csv"})
	v.SetDefault("data.bowlers", map[string]interface{}{"type": "file", "path": "data/BBL_bowlers.csv"})
	v.SetDefault("data.batter_columns", map[string]interface{}{
		"team": "Team", "player": "BatsmanName", "innings": "Total.Innings", "total": "Total.Runs",
	})
	v.SetDefault("data.bowler_columns", map[string]interface{}{
		"team": "bowling_team", "player": "BowlerName", "innings": "Innings.by.Bowler", "total": "Total.Wickets",
	})

	v.SetDefault("teams", []string{
		"Adelaide Strikers",
		"Brisbane Heat",
		"Hobart Hurricanes",
		"Melbourne Renegades",
		"Melbourne Stars",
		"Perth Scorchers",
		"Sydney Sixers",
		"Sydney Thunder",
	})

	v.SetDefault("markets.batting", []map[string]interface{}{
		{"key": "runs_10_plus", "name": "10+ Runs", "csv_column": "Percentage.of.No.of.times.BatsmanName.scored.more.than.10.runs"},
		{"key": "runs_20_plus", "name": "20+ Runs", "csv_column": "Percentage.of.No.of.times.BatsmanName.scored.more.than.20.runs"},
		{"key": "hit_six", "name": "To Hit a Six", "csv_column": "Percentage.of.No.of.Times.BatsmanName.Hit.Atleast.One.Six"},
		{"key": "top_team_scorer", "name": "Top Team Run Scorer (TTRS)", "csv_column": "Percentage.of.Top.Team.Runs.Scorer", "top_team": true},
	})
	v.SetDefault("markets.bowling", []map[string]interface{}{
		{"key": "wicket_1_plus", "name": "1+ Wickets", "csv_column": "Percentage.of.No.of.times.BowlerName.Took.Atleast.1.Wicket"},
		{"key": "wicket_2_plus", "name": "2+ Wickets", "csv_column": "Percentage.of.No.of.times.BowlerName.Took.Atleast.2.Wicket"},
		{"key": "top_team_wickets", "name": "Top Team Wicket Taker", "csv_column": "Percentage.of.Top.Wicket.Taker.for.Team", "top_team": true},
	})

	v.SetDefault("fixtures", []map[string]interface{}{
		{"home": "Melbourne Stars", "away": "Brisbane Heat"},
		{"home": "Adelaide Strikers", "away": "Sydney Sixers"},
		{"home": "Perth Scorchers", "away": "Hobart Hurricanes"},
		{"home": "Sydney Thunder", "away": "Melbourne Renegades"},
	})

	v.SetDefault("engine.match_recommendation_limit", 7)
	v.SetDefault("engine.cache_enabled", true)
	v.SetDefault("engine.cache_ttl_seconds", 300)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}
