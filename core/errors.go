package core

import (
	"errors"
	"fmt"
)

// ConfigError represents a configuration-related error with actionable instructions.
type ConfigError struct {
	Code    string // Error code for programmatic handling
	Message string // Human-readable error message
	Action  string // Actionable instruction for resolution
	Err     error  // Underlying cause, if any
}

func (e *ConfigError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s. %s", e.Message, e.Action)
	}
	return e.Message
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Error codes for configuration errors
const (
	ErrCodeEnvFileMissing    = "ENV_FILE_MISSING"
	ErrCodeEnvFileInvalid    = "ENV_FILE_INVALID"
	ErrCodeConfigFileMissing = "CONFIG_FILE_MISSING"
	ErrCodeConfigFileInvalid = "CONFIG_FILE_INVALID"
	ErrCodeMissingAuth       = "MISSING_AUTH"
	ErrCodeInvalidValue      = "INVALID_VALUE"
	ErrCodeMissingConfig     = "MISSING_CONFIG"
)

// ErrEnvFileMissing returns an error for missing .env file
func ErrEnvFileMissing(path string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeEnvFileMissing,
		Message: fmt.Sprintf("Environment file not found: %s", path),
		Action:  "Copy example.env to .env or pass -env with an existing file",
	}
}

// ErrEnvFileInvalid returns an error for a .env file that cannot be parsed
func ErrEnvFileInvalid(path string, err error) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeEnvFileInvalid,
		Message: fmt.Sprintf("Cannot read environment file %s: %v", path, err),
		Action:  "Use KEY=value lines in the .env file",
		Err:     err,
	}
}

// ErrConfigFileMissing returns an error for a missing YAML config file
func ErrConfigFileMissing(path string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeConfigFileMissing,
		Message: fmt.Sprintf("Configuration file not found: %s", path),
		Action:  "Check the -config path",
	}
}

// ErrConfigFileInvalid returns an error for a YAML config file that cannot be decoded
func ErrConfigFileInvalid(path string, err error) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeConfigFileInvalid,
		Message: fmt.Sprintf("Invalid configuration file %s: %v", path, err),
		Action:  "See config.example.yaml for the supported keys",
		Err:     err,
	}
}

// ErrMissingAuth returns an error for missing authentication credentials
func ErrMissingAuth(service string) *ConfigError {
	var action string
	switch service {
	case "openai":
		action = "Set OPENAI_API_KEY in your environment or .env file"
	default:
		action = fmt.Sprintf("Set the required API key for %s in your .env file", service)
	}
	return &ConfigError{
		Code:    ErrCodeMissingAuth,
		Message: fmt.Sprintf("Missing authentication credentials for %s", service),
		Action:  action,
	}
}

// ErrInvalidValue returns an error for a setting that is present but unusable
func ErrInvalidValue(name string, value interface{}, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidValue,
		Message: fmt.Sprintf("Invalid value %v for %s: %s", value, name, reason),
		Action:  fmt.Sprintf("Fix %s in your environment, .env or config file", name),
	}
}

// ErrMissingConfig returns an error for missing required configuration
func ErrMissingConfig(name string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeMissingConfig,
		Message: fmt.Sprintf("Missing required configuration: %s", name),
		Action:  fmt.Sprintf("Provide %s", name),
	}
}

// IsConfigError checks if an error is a ConfigError and returns it if so
func IsConfigError(err error) (*ConfigError, bool) {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr, true
	}
	return nil, false
}

// GetErrorCode extracts the error code from an error if it's a ConfigError
func GetErrorCode(err error) string {
	if configErr, ok := IsConfigError(err); ok {
		return configErr.Code
	}
	return ""
}
