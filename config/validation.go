package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConfigRequirements lists the settings that must be non-empty in an environment.
type ConfigRequirements struct {
	Required []string
	// Secrets must not fall back to built-in development values.
	Secrets []string
}

var requirements = map[Environment]ConfigRequirements{
	Development: {Required: []string{"JWT_SECRET", "HASHID_SALT"}},
	Test:        {Required: []string{"JWT_SECRET", "HASHID_SALT"}},
	CI: {
		Required: []string{"JWT_SECRET", "HASHID_SALT"},
	},
	Production: {
		Required: []string{"DB_HOST", "DB_NAME", "JWT_SECRET", "HASHID_SALT"},
		Secrets:  []string{"db_user", "db_password", "jwt_secret", "hashid_salt"},
	},
}

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	env := GetEnvironment()
	reqs := requirements[env]

	var errs []ValidationError

	values := map[string]string{
		"DB_HOST":     cfg.DBHost,
		"DB_NAME":     cfg.DBName,
		"JWT_SECRET":  cfg.JWTSecret,
		"HASHID_SALT": cfg.HashIDSalt,
	}

	for _, name := range reqs.Required {
		if cfg.UsesSQLite() && strings.HasPrefix(name, "DB_") {
			continue
		}
		if values[name] == "" {
			errs = append(errs, ValidationError{Field: name, Message: "is required"})
		}
	}

	for _, secret := range reqs.Secrets {
		if cfg.UsesSQLite() && strings.HasPrefix(secret, "db_") {
			continue
		}
		if readSecret(secret) == "" {
			errs = append(errs, ValidationError{Field: secret, Message: "secret is required"})
		}
	}

	switch cfg.DBDriver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, ValidationError{Field: "DB_DRIVER", Message: "must be postgres or sqlite"})
	}

	if cfg.HashIDMinLength < 0 {
		errs = append(errs, ValidationError{Field: "HASHID_MIN_LENGTH", Message: "must not be negative"})
	}
	if cfg.RecipeCreateLimit < 0 {
		errs = append(errs, ValidationError{Field: "RECIPE_CREATE_LIMIT", Message: "must not be negative"})
	}

	switch cfg.LogFormat {
	case "json", "console":
	default:
		errs = append(errs, ValidationError{Field: "LOG_FORMAT", Message: "must be json or console"})
	}

	if len(errs) > 0 {
		lines := make([]string, len(errs))
		for i, e := range errs {
			lines[i] = e.Error()
		}
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(lines, "\n"))
	}

	return nil
}
