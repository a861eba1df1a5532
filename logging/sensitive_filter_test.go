package logging

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRedactSensitiveData(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "plain text", input: "summarized 12 chunks", want: "summarized 12 chunks"},
		{name: "legacy openai key", input: "key sk-abcdefghijklmnopqrstuvwx end", want: "key [REDACTED] end"},
		{name: "project key", input: "sk-proj-AbC_123-xyz987654321abcdef", want: "[REDACTED]"},
		{name: "masked key echoed by the API", input: "Incorrect API key provided: sk-abcd**********wxyz.", want: "Incorrect API key provided: [REDACTED]."},
		{name: "bearer token", input: "Bearer abcdefghijklmnopqrstuvwxyz", want: "[REDACTED]"},
		{name: "authorization header", input: "Authorization: Bearer abc", want: "[REDACTED]"},
		{name: "api_key assignment", input: "url?api_key=12345678abcd", want: "url?[REDACTED]"},
		{name: "password assignment", input: "password: hunter2hunter2", want: "[REDACTED]"},
		{name: "short sk prefix is kept", input: "task-list sk-1", want: "task-list sk-1"},
		{name: "token counts are kept", input: "max_tokens=300 tokens: 1200", want: "max_tokens=300 tokens: 1200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RedactSensitiveData(tt.input); got != tt.want {
				t.Errorf("RedactSensitiveData(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestContainsSensitiveData(t *testing.T) {
	if !ContainsSensitiveData("sk-abcdefghijklmnopqrstuvwx") {
		t.Error("expected key to be detected")
	}
	if ContainsSensitiveData("hello world") {
		t.Error("plain text should not be detected")
	}
	if ContainsSensitiveData("") {
		t.Error("empty string should not be detected")
	}
}

func TestIsSensitiveField(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"OPENAI_API_KEY", true},
		{"openai_api_key", true},
		{"api-key", true},
		{"apikey", true},
		{"Authorization", true},
		{"db_password", true},
		{"client_secret", true},
		{"access_token", true},
		{"max_tokens", false},
		{"estimated_tokens", false},
		{"model", false},
		{"run_id", false},
	}
	for _, tt := range tests {
		if got := IsSensitiveField(tt.name); got != tt.want {
			t.Errorf("IsSensitiveField(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRedactFields(t *testing.T) {
	fields := []zapcore.Field{
		zap.String("model", "gpt-3.5-turbo-instruct"),
		zap.String("api_key", "sk-whatever"),
		zap.Error(errors.New("401: sk-abcd****wxyz")),
		zap.Int("chunk", 2),
	}

	got := RedactFields(fields)

	if got[0].String != "gpt-3.5-turbo-instruct" {
		t.Errorf("model field changed: %+v", got[0])
	}
	if got[1].String != RedactedPlaceholder {
		t.Errorf("api_key field = %q, want %q", got[1].String, RedactedPlaceholder)
	}
	if got[2].Type != zapcore.StringType || strings.Contains(got[2].String, "sk-abcd") {
		t.Errorf("error field not redacted: %+v", got[2])
	}
	if got[3].Integer != 2 {
		t.Errorf("int field changed: %+v", got[3])
	}
	if fields[1].String != "sk-whatever" {
		t.Error("RedactFields must not modify its input")
	}
}

func TestRedactFields_Unchanged(t *testing.T) {
	fields := []zapcore.Field{zap.String("a", "b"), zap.Int("n", 1)}
	got := RedactFields(fields)
	if &got[0] != &fields[0] {
		t.Error("expected the original slice when nothing is redacted")
	}
}

func TestRedactingCore(t *testing.T) {
	inner, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(NewRedactingCore(inner))

	logger.With(zap.String("api_key", "sk-one")).Info("calling with sk-abcdefghijklmnopqrstuvwx", zap.String("k", "v"))
	logger.Debug("below level")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.Message != "calling with [REDACTED]" {
		t.Errorf("Message = %q", e.Message)
	}
	ctx := e.ContextMap()
	if ctx["api_key"] != RedactedPlaceholder {
		t.Errorf("api_key = %v", ctx["api_key"])
	}
	if ctx["k"] != "v" {
		t.Errorf("k = %v", ctx["k"])
	}
}
