package config

import (
	"os"
	"strings"
	"time"
)

func envBool(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// SkipMigrations disables AutoMigrate on server startup (run `parishctl migrate` as a job instead).
//
// Set via env:
// - SKIP_MIGRATIONS=true
func SkipMigrations() bool {
	return envBool("SKIP_MIGRATIONS")
}

// RequireSession rejects anonymous requests on every API route.
//
// Set via env:
// - REQUIRE_SESSION=true
func RequireSession() bool {
	return envBool("REQUIRE_SESSION")
}

// IsProduction reports GO_ENV=production.
func IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production")
}

// PhoneCountryCode is the default region for member phone numbers (PHONE_COUNTRY_CODE, default PE).
func PhoneCountryCode() string {
	code := strings.ToUpper(strings.TrimSpace(os.Getenv("PHONE_COUNTRY_CODE")))
	if code == "" {
		return "PE"
	}
	return code
}

// SessionLifespan is how long a login token stays valid (SESSION_HOUR_LIFESPAN, default 12).
func SessionLifespan() time.Duration {
	return time.Duration(intFromEnv("SESSION_HOUR_LIFESPAN", 12)) * time.Hour
}
