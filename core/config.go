package core

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"time"

	"pdfsummarizer/pdfprocessor"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration values for a summarization run.
//
// Values are resolved in increasing priority: built-in defaults, the
// optional YAML file, environment variables (including those loaded from
// .env), and finally command-line flags applied by the caller.
type Config struct {
	// OpenAI-compatible service. The API key is only read from the environment.
	OpenAIAPIKey  string `yaml:"-"`
	OpenAIBaseURL string `yaml:"base_url"`

	// Model parameters
	Model       string  `yaml:"model"`
	API         string  `yaml:"api"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`

	// Extraction and chunking
	ChunkSize     int    `yaml:"chunk_size"`
	PageSeparator string `yaml:"page_separator"`
	MaxPages      int    `yaml:"max_pages"`

	// Processing
	Concurrency       int           `yaml:"concurrency"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
	MaxRetries        int           `yaml:"max_retries"`
	RetryDelay        time.Duration `yaml:"retry_delay"`
	AITimeout         time.Duration `yaml:"ai_timeout"`
	ProcessingTimeout time.Duration `yaml:"processing_timeout"`

	// OutputPath receives the summary; empty prints it to stdout
	OutputPath string `yaml:"output"`

	// Logging
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
	DevMode  bool   `yaml:"dev_mode"`
}

// Environment variables read by LoadConfig.
const (
	EnvOpenAIAPIKey      = "OPENAI_API_KEY"
	EnvOpenAIKeyLegacy   = "OPENAI_KEY"
	EnvOpenAIBaseURL     = "OPENAI_BASE_URL"
	EnvModel             = "OPENAI_PDF_MODEL"
	EnvAPI               = "OPENAI_API"
	EnvMaxTokens         = "OPENAI_PDF_MAX_TOKENS"
	EnvTemperature       = "OPENAI_PDF_TEMPERATURE"
	EnvChunkSize         = "PDF_CHUNK_SIZE"
	EnvPageSeparator     = "PDF_PAGE_SEPARATOR"
	EnvMaxPages          = "PDF_MAX_PAGES"
	EnvConcurrency       = "MAX_CONCURRENT"
	EnvRequestsPerMinute = "REQUESTS_PER_MINUTE"
	EnvMaxRetries        = "MAX_RETRIES"
	EnvRetryDelay        = "RETRY_DELAY"
	EnvAITimeout         = "AI_TIMEOUT"
	EnvProcessingTimeout = "PROCESSING_TIMEOUT"
	EnvOutputPath        = "SUMMARY_OUTPUT"
	EnvLogLevel          = "LOG_LEVEL"
	EnvLogFile           = "LOG_FILE"
	EnvDevMode           = "DEV_MODE"
)

// configEnvVars lists every variable LoadConfig reads.
var configEnvVars = []string{
	EnvOpenAIAPIKey, EnvOpenAIKeyLegacy, EnvOpenAIBaseURL, EnvModel, EnvAPI,
	EnvMaxTokens, EnvTemperature, EnvChunkSize, EnvPageSeparator, EnvMaxPages,
	EnvConcurrency, EnvRequestsPerMinute, EnvMaxRetries, EnvRetryDelay,
	EnvAITimeout, EnvProcessingTimeout, EnvOutputPath, EnvLogLevel, EnvLogFile,
	EnvDevMode,
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Model:       pdfprocessor.DefaultModel,
		API:         string(pdfprocessor.APICompletions),
		MaxTokens:   pdfprocessor.DefaultMaxTokens,
		Temperature: pdfprocessor.DefaultTemperature,
		ChunkSize:   pdfprocessor.DefaultChunkSize,

		Concurrency: 1,
		RetryDelay:  time.Second,
		// 60s bounds a single completion call; the whole run is unbounded unless
		// PROCESSING_TIMEOUT is set
		AITimeout: 60 * time.Second,

		LogLevel: "info",
	}
}

// LoadEnvFile loads KEY=value pairs from path into the process environment.
// Variables that are already set are not overridden.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrEnvFileMissing(path)
		}
		return ErrEnvFileInvalid(path, err)
	}
	return nil
}

// LoadConfig resolves the configuration with ResolveConfig and validates it.
func LoadConfig(path string) (*Config, error) {
	cfg, err := ResolveConfig(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ResolveConfig resolves the configuration from defaults, the YAML file at
// path (skipped when path is empty) and the environment without validating
// it. Callers that layer further overrides on top call Validate last.
//
// An OpenAI API key is required; everything else has a default.
func ResolveConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if cfg.OpenAIAPIKey == "" {
		return nil, ErrMissingAuth("openai")
	}
	return cfg, nil
}

// loadFile decodes the YAML file at path over the current values.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrConfigFileMissing(path)
		}
		return ErrConfigFileInvalid(path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return ErrConfigFileInvalid(path, err)
	}
	return nil
}

// applyEnv overrides values with any environment variables that are set.
func (c *Config) applyEnv() error {
	var err error

	c.OpenAIAPIKey = GetEnvOrDefault(EnvOpenAIAPIKey, GetEnvOrDefault(EnvOpenAIKeyLegacy, c.OpenAIAPIKey))
	c.OpenAIBaseURL = GetEnvOrDefault(EnvOpenAIBaseURL, c.OpenAIBaseURL)
	c.Model = GetEnvOrDefault(EnvModel, c.Model)
	c.API = GetEnvOrDefault(EnvAPI, c.API)
	c.OutputPath = GetEnvOrDefault(EnvOutputPath, c.OutputPath)
	c.LogLevel = GetEnvOrDefault(EnvLogLevel, c.LogLevel)
	c.LogFile = GetEnvOrDefault(EnvLogFile, c.LogFile)

	// The separator is taken verbatim so that "\n" style values survive trimming.
	if sep, ok := os.LookupEnv(EnvPageSeparator); ok {
		c.PageSeparator = sep
	}

	ints := []struct {
		key string
		dst *int
	}{
		{EnvMaxTokens, &c.MaxTokens},
		{EnvChunkSize, &c.ChunkSize},
		{EnvMaxPages, &c.MaxPages},
		{EnvConcurrency, &c.Concurrency},
		{EnvRequestsPerMinute, &c.RequestsPerMinute},
		{EnvMaxRetries, &c.MaxRetries},
	}
	for _, v := range ints {
		if *v.dst, err = ParseIntEnv(v.key, *v.dst); err != nil {
			return err
		}
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{EnvRetryDelay, &c.RetryDelay},
		{EnvAITimeout, &c.AITimeout},
		{EnvProcessingTimeout, &c.ProcessingTimeout},
	}
	for _, v := range durations {
		if *v.dst, err = ParseDurationEnv(v.key, *v.dst); err != nil {
			return err
		}
	}

	if c.Temperature, err = ParseFloat64Env(EnvTemperature, c.Temperature); err != nil {
		return err
	}
	if c.DevMode, err = ParseBoolEnv(EnvDevMode, c.DevMode); err != nil {
		return err
	}
	return nil
}

// Validate checks every setting. Pipeline parameters are checked by
// pdfprocessor and reported as INVALID_VALUE ConfigErrors wrapping the
// original *pdfprocessor.ConfigurationError.
func (c *Config) Validate() error {
	if err := c.ProcessorConfig().Validate(); err != nil {
		var cfgErr *pdfprocessor.ConfigurationError
		if errors.As(err, &cfgErr) {
			invalid := ErrInvalidValue(cfgErr.Field, cfgErr.Value, cfgErr.Reason)
			invalid.Err = err
			return invalid
		}
		return err
	}

	if c.MaxPages < 0 {
		return ErrInvalidValue("max_pages", c.MaxPages, "must not be negative")
	}
	if c.MaxRetries < 0 {
		return ErrInvalidValue("max_retries", c.MaxRetries, "must not be negative")
	}
	if c.RetryDelay < 0 {
		return ErrInvalidValue("retry_delay", c.RetryDelay, "must not be negative")
	}
	if c.AITimeout < 0 {
		return ErrInvalidValue("ai_timeout", c.AITimeout, "must not be negative")
	}
	if c.ProcessingTimeout < 0 {
		return ErrInvalidValue("processing_timeout", c.ProcessingTimeout, "must not be negative")
	}
	return nil
}

// ProcessorConfig converts the settings into a pipeline configuration.
func (c *Config) ProcessorConfig() pdfprocessor.ProcessorConfig {
	return pdfprocessor.ProcessorConfig{
		ExtractorConfig: pdfprocessor.ExtractorConfig{
			PageSeparator: c.PageSeparator,
			MaxPages:      c.MaxPages,
		},
		ChunkerConfig: pdfprocessor.ChunkerConfig{
			ChunkSize: c.ChunkSize,
		},
		SummarizerConfig: pdfprocessor.SummarizerConfig{
			Model:             c.Model,
			MaxTokens:         c.MaxTokens,
			Temperature:       float32(c.Temperature),
			API:               pdfprocessor.API(c.API),
			RequestsPerMinute: c.RequestsPerMinute,
		},
		Concurrency: c.Concurrency,
		OutputPath:  c.OutputPath,
	}
}

// RetryConfig returns the retry policy for remote calls.
func (c *Config) RetryConfig() pdfprocessor.RetryConfig {
	return pdfprocessor.RetryConfig{
		MaxRetries: c.MaxRetries,
		BaseDelay:  c.RetryDelay,
	}
}
