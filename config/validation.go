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

// ValidationErrors collects every problem found in one pass.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}

// ValidateConfig checks if the configuration meets the requirements for its environment
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors

	if cfg.JWTSecret == "" {
		errs = append(errs, ValidationError{"JWT_SECRET", "is required"})
	}
	if cfg.TokenTTL <= 0 {
		errs = append(errs, ValidationError{"TOKEN_TTL", "must be positive"})
	}
	if cfg.OTPTTL <= 0 {
		errs = append(errs, ValidationError{"OTP_TTL", "must be positive"})
	}

	switch cfg.TokenTransport {
	case TokenTransportCookie, TokenTransportHeader:
	default:
		errs = append(errs, ValidationError{"TOKEN_TRANSPORT", fmt.Sprintf("unsupported value %q", cfg.TokenTransport)})
	}

	switch cfg.DatabaseDriver {
	case "postgres":
		if cfg.DBHost == "" || cfg.DBName == "" {
			errs = append(errs, ValidationError{"DB_HOST", "host and name are required for postgres"})
		}
	case "sqlite":
		if cfg.Environment == Production {
			errs = append(errs, ValidationError{"DB_DRIVER", "sqlite is not allowed in production"})
		}
	default:
		errs = append(errs, ValidationError{"DB_DRIVER", fmt.Sprintf("unsupported driver %q", cfg.DatabaseDriver)})
	}

	if cfg.Environment == Production {
		if cfg.DBPassword == "" {
			errs = append(errs, ValidationError{"DB_PASSWORD", "is required in production"})
		}
		if !cfg.SMTPConfigured() {
			errs = append(errs, ValidationError{"SMTP_HOST", "is required in production"})
		}
		if cfg.LLMAPIKey == "" {
			errs = append(errs, ValidationError{"LLM_API_KEY", "is required in production"})
		}
	}

	if cfg.GenerateRateLimit < 0 {
		errs = append(errs, ValidationError{"GENERATE_RATE_LIMIT", "must not be negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
