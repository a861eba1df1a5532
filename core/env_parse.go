package core

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// lookupEnv returns the trimmed value of key. Unset and blank variables are
// reported as missing.
func lookupEnv(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

// GetEnvOrDefault returns the value of an environment variable or a default value.
func GetEnvOrDefault(key, defaultValue string) string {
	if value, ok := lookupEnv(key); ok {
		return value
	}
	return defaultValue
}

// ParseIntEnv parses an environment variable as an integer.
// Returns the default value if the variable is not set, and an
// INVALID_VALUE ConfigError if it is set but not an integer.
func ParseIntEnv(key string, defaultValue int) (int, error) {
	value, ok := lookupEnv(key)
	if !ok {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue, ErrInvalidValue(key, value, "must be an integer")
	}
	return n, nil
}

// ParseFloat64Env parses an environment variable as a float64.
func ParseFloat64Env(key string, defaultValue float64) (float64, error) {
	value, ok := lookupEnv(key)
	if !ok {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue, ErrInvalidValue(key, value, "must be a number")
	}
	return f, nil
}

// ParseBoolEnv parses an environment variable as a boolean.
// Accepts case-insensitive: "true", "1", "yes", "on" as true values.
// Accepts case-insensitive: "false", "0", "no", "off" as false values.
func ParseBoolEnv(key string, defaultValue bool) (bool, error) {
	value, ok := lookupEnv(key)
	if !ok {
		return defaultValue, nil
	}

	switch strings.ToLower(value) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	default:
		return defaultValue, ErrInvalidValue(key, value, "must be true or false")
	}
}

// ParseDurationEnv parses an environment variable as a duration. A bare
// integer is taken as seconds; anything else must be a Go duration ("90s",
// "2m").
func ParseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value, ok := lookupEnv(key)
	if !ok {
		return defaultValue, nil
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue, ErrInvalidValue(key, value, "must be seconds or a duration such as 90s")
	}
	return d, nil
}
