package core

import (
	"testing"
	"time"
)

func TestGetEnvOrDefault(t *testing.T) {
	const testKey = "TEST_GET_ENV_OR_DEFAULT"

	tests := []struct {
		name         string
		envValue     string
		defaultValue string
		want         string
	}{
		{name: "returns env value when set", envValue: "custom_value", defaultValue: "default", want: "custom_value"},
		{name: "returns default when empty", envValue: "", defaultValue: "default", want: "default"},
		{name: "returns default when blank", envValue: "   ", defaultValue: "default", want: "default"},
		{name: "trims surrounding whitespace", envValue: "  value \n", defaultValue: "default", want: "value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(testKey, tt.envValue)
			if got := GetEnvOrDefault(testKey, tt.defaultValue); got != tt.want {
				t.Errorf("GetEnvOrDefault() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetEnvOrDefault_Unset(t *testing.T) {
	if got := GetEnvOrDefault("TEST_GET_ENV_OR_DEFAULT_NEVER_SET", "fallback"); got != "fallback" {
		t.Errorf("GetEnvOrDefault() = %q, want %q", got, "fallback")
	}
}

func TestParseIntEnv(t *testing.T) {
	const testKey = "TEST_PARSE_INT_ENV"

	tests := []struct {
		name     string
		envValue string
		want     int
		wantErr  bool
	}{
		{name: "valid positive integer", envValue: "42", want: 42},
		{name: "valid negative integer", envValue: "-10", want: -10},
		{name: "zero", envValue: "0", want: 0},
		{name: "empty uses default", envValue: "", want: 100},
		{name: "padded integer", envValue: " 7 ", want: 7},
		{name: "invalid integer", envValue: "not_a_number", want: 100, wantErr: true},
		{name: "float is rejected", envValue: "3.14", want: 100, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(testKey, tt.envValue)
			got, err := ParseIntEnv(testKey, 100)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseIntEnv() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseIntEnv() = %d, want %d", got, tt.want)
			}
			if err != nil && GetErrorCode(err) != ErrCodeInvalidValue {
				t.Errorf("error code = %q, want %q", GetErrorCode(err), ErrCodeInvalidValue)
			}
		})
	}
}

func TestParseFloat64Env(t *testing.T) {
	const testKey = "TEST_PARSE_FLOAT_ENV"

	tests := []struct {
		name     string
		envValue string
		want     float64
		wantErr  bool
	}{
		{name: "decimal", envValue: "0.25", want: 0.25},
		{name: "integer", envValue: "1", want: 1},
		{name: "empty uses default", envValue: "", want: 0.5},
		{name: "invalid", envValue: "warm", want: 0.5, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(testKey, tt.envValue)
			got, err := ParseFloat64Env(testKey, 0.5)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFloat64Env() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFloat64Env() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseBoolEnv(t *testing.T) {
	const testKey = "TEST_PARSE_BOOL_ENV"

	tests := []struct {
		name     string
		envValue string
		def      bool
		want     bool
		wantErr  bool
	}{
		{name: "true", envValue: "true", want: true},
		{name: "TRUE uppercase", envValue: "TRUE", want: true},
		{name: "1", envValue: "1", want: true},
		{name: "yes", envValue: "yes", want: true},
		{name: "on", envValue: "on", want: true},
		{name: "false", envValue: "false", def: true, want: false},
		{name: "0", envValue: "0", def: true, want: false},
		{name: "off", envValue: "off", def: true, want: false},
		{name: "empty uses default", envValue: "", def: true, want: true},
		{name: "invalid", envValue: "maybe", def: true, want: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(testKey, tt.envValue)
			got, err := ParseBoolEnv(testKey, tt.def)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseBoolEnv() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseBoolEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseDurationEnv(t *testing.T) {
	const testKey = "TEST_PARSE_DURATION_ENV"

	tests := []struct {
		name     string
		envValue string
		want     time.Duration
		wantErr  bool
	}{
		{name: "bare seconds", envValue: "30", want: 30 * time.Second},
		{name: "go duration", envValue: "1m30s", want: 90 * time.Second},
		{name: "milliseconds", envValue: "250ms", want: 250 * time.Millisecond},
		{name: "zero", envValue: "0", want: 0},
		{name: "empty uses default", envValue: "", want: time.Minute},
		{name: "invalid", envValue: "soon", want: time.Minute, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(testKey, tt.envValue)
			got, err := ParseDurationEnv(testKey, time.Minute)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDurationEnv() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDurationEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}
