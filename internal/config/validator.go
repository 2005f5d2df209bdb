package config

import (
	"fmt"
	"strings"
)

const defaultJWTSecret = "dev-srportal-secret-change-me"

// SecretValidator checks that production deployments do not run with the
// development secrets shipped in default.yaml.
type SecretValidator struct {
	config   *Config
	errors   []string
	warnings []string
}

func NewSecretValidator(cfg *Config) *SecretValidator {
	return &SecretValidator{
		config:   cfg,
		errors:   []string{},
		warnings: []string{},
	}
}

// Validate returns an error listing every problem. In development the same
// problems are only reported by Warnings.
func (v *SecretValidator) Validate() error {
	isProduction := v.config.App.IsProduction()

	v.validateJWTSecret(isProduction)
	v.validateDatabasePassword(isProduction)
	v.validateRedisPassword()

	if len(v.errors) > 0 {
		return fmt.Errorf("secret validation failed:\n%s", strings.Join(v.errors, "\n"))
	}
	return nil
}

func (v *SecretValidator) Warnings() []string {
	return v.warnings
}

func (v *SecretValidator) validateJWTSecret(isProduction bool) {
	secret := v.config.Auth.JWT.Secret

	if secret == "" {
		v.addError("auth.jwt.secret is not set", true)
		return
	}

	if secret == defaultJWTSecret {
		v.addError("auth.jwt.secret is using the default development value", isProduction)
		return
	}

	if !isProduction && (strings.HasPrefix(secret, "dev-") || strings.HasPrefix(secret, "test-")) {
		return
	}

	if len(secret) < 32 {
		v.addError("auth.jwt.secret must be at least 32 characters long", isProduction)
	}
}

func (v *SecretValidator) validateDatabasePassword(isProduction bool) {
	db := v.config.Database
	if db.Driver != "postgres" {
		return
	}

	if db.Password == "" {
		v.addError("database.password is not set", isProduction)
		return
	}

	if len(db.Password) < 12 {
		v.addWarning("database.password should be at least 12 characters long")
	}
}

func (v *SecretValidator) validateRedisPassword() {
	if v.config.Redis.Enabled && v.config.Redis.Password == "" {
		v.addWarning("redis.password is not set")
	}
}

func (v *SecretValidator) addError(message string, isProduction bool) {
	if isProduction {
		v.errors = append(v.errors, "   - "+message)
	} else {
		v.warnings = append(v.warnings, "   - "+message)
	}
}

func (v *SecretValidator) addWarning(message string) {
	v.warnings = append(v.warnings, "   - "+message)
}

func ValidateSecrets(cfg *Config) error {
	return NewSecretValidator(cfg).Validate()
}
