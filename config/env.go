package config

import (
	"os"
	"strings"
)

// Environment represents the current runtime environment
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment determines the current environment. CI=true wins over ENV.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}

	switch Environment(strings.ToLower(os.Getenv("ENV"))) {
	case Production:
		return Production
	case Test:
		return Test
	default:
		return Development
	}
}

// IsProduction reports whether cookies and validation should use production rules.
func (e Environment) IsProduction() bool {
	return e == Production
}

// readsDotEnv reports whether a local .env file is consulted.
func (e Environment) readsDotEnv() bool {
	return e == Development || e == Test
}
