package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	// Registration only fails for empty tags or nil funcs
	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("source", validateSourceType)
	_ = v.RegisterValidation("cronspec", validateCronSpec)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	if err := validateCrossField(cfg); err != nil {
		return err
	}

	return nil
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func validateSourceType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "file", "http", "s3":
		return true
	default:
		return false
	}
}

// validateCronSpec accepts standard five-field expressions and descriptors such as "@every 6h"
func validateCronSpec(fl validator.FieldLevel) bool {
	_, err := cron.ParseStandard(fl.Field().String())
	return err == nil
}

// validateCrossField performs checks that span several fields
func validateCrossField(cfg *Config) error {
	if err := validateSource("batters", cfg.Data.Batters); err != nil {
		return err
	}
	if err := validateSource("bowlers", cfg.Data.Bowlers); err != nil {
		return err
	}

	catalog, err := cfg.Catalog()
	if err != nil {
		return err
	}

	columns := make(map[string]string)
	for _, m := range append(append([]MarketConfig{}, cfg.Markets.Batting...), cfg.Markets.Bowling...) {
		if prev, dup := columns[m.CSVColumn]; dup {
			return fmt.Errorf("markets %s and %s share csv_column %q", prev, m.Key, m.CSVColumn)
		}
		columns[m.CSVColumn] = m.Key
	}

	seen := make(map[string]bool)
	for _, f := range cfg.Fixtures {
		if !catalog.HasTeam(f.Home) {
			return fmt.Errorf("fixture references unknown team %q", f.Home)
		}
		if !catalog.HasTeam(f.Away) {
			return fmt.Errorf("fixture references unknown team %q", f.Away)
		}
		id := f.Home + "_vs_" + f.Away
		if seen[id] {
			return fmt.Errorf("duplicate fixture %s", id)
		}
		seen[id] = true
	}

	if cfg.IsProduction() {
		for _, origin := range cfg.Server.CORSOrigins {
			if origin == "*" && cfg.Server.CORSAllowCredentials {
				return fmt.Errorf("production environment cannot allow credentials for wildcard CORS origin")
			}
		}
	}

	if cfg.Engine.CacheEnabled && cfg.Engine.CacheTTLSeconds <= 0 {
		return fmt.Errorf("cache_ttl_seconds must be positive when the cache is enabled")
	}

	return nil
}

func validateSource(name string, src SourceConfig) error {
	switch src.Type {
	case "file":
		if src.Path == "" {
			return fmt.Errorf("data.%s: path is required for file sources", name)
		}
	case "http":
		if src.URL == "" {
			return fmt.Errorf("data.%s: url is required for http sources", name)
		}
	case "s3":
		if src.Bucket == "" || src.Key == "" {
			return fmt.Errorf("data.%s: bucket and key are required for s3 sources", name)
		}
	}
	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var b strings.Builder
	for _, fieldError := range validationErrors {
		field := fieldError.Namespace()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required", "required_if":
			fmt.Fprintf(&b, "- Field '%s' is required\n", field)
		case "url":
			fmt.Fprintf(&b, "- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "min", "max":
			fmt.Fprintf(&b, "- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			fmt.Fprintf(&b, "- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			fmt.Fprintf(&b, "- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			fmt.Fprintf(&b, "- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "source":
			fmt.Fprintf(&b, "- Field '%s' must be one of: file, http, s3\n", field)
		case "cronspec":
			fmt.Fprintf(&b, "- Field '%s' must be a cron expression or descriptor, got '%v'\n", field, value)
		case "nefield":
			fmt.Fprintf(&b, "- Field '%s' must differ from %s\n", field, fieldError.Param())
		default:
			fmt.Fprintf(&b, "- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", b.String())
}
