package logging

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RedactedPlaceholder is the string used to replace sensitive data
const RedactedPlaceholder = "[REDACTED]"

// sensitivePatterns match credentials that can show up in messages, error
// strings and request dumps.
var sensitivePatterns = []*regexp.Regexp{
	// OpenAI API keys: sk-... (legacy) or sk-proj-... (project-scoped)
	regexp.MustCompile(`sk-[a-zA-Z0-9_-]{20,}`),
	// OpenAI echoes partially masked keys in 401 responses: sk-abc1***wxyz
	regexp.MustCompile(`sk-[a-zA-Z0-9_-]{2,}\*+[a-zA-Z0-9]*`),
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9._-]{20,}`),
	regexp.MustCompile(`(?i)authorization\s*[:=]\s*[^\s,;]+(\s+[^\s,;]+)?`),
	regexp.MustCompile(`(?i)(api_key|apikey|api-key)\s*[:=]\s*[^\s,;&]{8,}`),
	regexp.MustCompile(`(?i)(password|secret)\s*[:=]\s*[^\s,;&]{8,}`),
}

// sensitiveFieldSuffixes mark field names whose values are always redacted.
// Matching is on the normalized suffix so that "max_tokens" stays visible
// while "openai_api_key" and "access_token" do not.
var sensitiveFieldSuffixes = []string{
	"API_KEY",
	"APIKEY",
	"AUTHORIZATION",
	"PASSWORD",
	"SECRET",
	"ACCESS_TOKEN",
	"BEARER_TOKEN",
}

// RedactSensitiveData replaces every credential found in value with
// RedactedPlaceholder.
//
// Example:
//
//	RedactSensitiveData("Incorrect API key provided: sk-abc1***wxyz")
//	// "Incorrect API key provided: [REDACTED]"
func RedactSensitiveData(value string) string {
	if value == "" {
		return value
	}

	result := value
	for _, pattern := range sensitivePatterns {
		result = pattern.ReplaceAllString(result, RedactedPlaceholder)
	}
	return result
}

// ContainsSensitiveData returns true if the value contains any sensitive data patterns.
func ContainsSensitiveData(value string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}

// IsSensitiveField returns true if the field name indicates sensitive data.
//
//	IsSensitiveField("OPENAI_API_KEY")  // true
//	IsSensitiveField("max_tokens")      // false
func IsSensitiveField(fieldName string) bool {
	name := strings.ToUpper(strings.ReplaceAll(fieldName, "-", "_"))
	for _, suffix := range sensitiveFieldSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// RedactFields returns fields with sensitive values replaced. Fields are
// copied only when something changes.
func RedactFields(fields []zapcore.Field) []zapcore.Field {
	var out []zapcore.Field
	for i, field := range fields {
		redacted, changed := redactField(field)
		if !changed {
			continue
		}
		if out == nil {
			out = make([]zapcore.Field, len(fields))
			copy(out, fields)
		}
		out[i] = redacted
	}
	if out == nil {
		return fields
	}
	return out
}

func redactField(field zapcore.Field) (zapcore.Field, bool) {
	if IsSensitiveField(field.Key) {
		return zap.String(field.Key, RedactedPlaceholder), true
	}

	switch field.Type {
	case zapcore.StringType:
		if redacted := RedactSensitiveData(field.String); redacted != field.String {
			return zap.String(field.Key, redacted), true
		}
	case zapcore.ErrorType:
		if err, ok := field.Interface.(error); ok && err != nil {
			msg := err.Error()
			if redacted := RedactSensitiveData(msg); redacted != msg {
				return zap.String(field.Key, redacted), true
			}
		}
	}
	return field, false
}

// redactingCore scrubs messages and fields before they reach the wrapped core.
type redactingCore struct {
	zapcore.Core
}

// NewRedactingCore wraps core so that every entry written through it, and
// every field attached with With, is passed through RedactFields.
func NewRedactingCore(core zapcore.Core) zapcore.Core {
	return &redactingCore{Core: core}
}

func (c *redactingCore) With(fields []zapcore.Field) zapcore.Core {
	return &redactingCore{Core: c.Core.With(RedactFields(fields))}
}

func (c *redactingCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *redactingCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	ent.Message = RedactSensitiveData(ent.Message)
	return c.Core.Write(ent, RedactFields(fields))
}
