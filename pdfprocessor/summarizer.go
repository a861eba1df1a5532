package pdfprocessor

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pdfsummarizer/logging"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// SummaryPrompt is the instruction placed before every chunk.
const SummaryPrompt = "Please summarize the following text, give me detailed points and ideas:"

// Default model parameters.
const (
	DefaultModel       = openai.GPT3Dot5TurboInstruct
	DefaultMaxTokens   = 300
	DefaultTemperature = 0.5
)

// API selects the completion endpoint used by OpenAISummarizer.
type API string

const (
	// APICompletions uses the text completions endpoint (/v1/completions).
	APICompletions API = "completions"

	// APIChat sends the prompt as a single user message to /v1/chat/completions.
	APIChat API = "chat"
)

// SummaryRequest is one unit of work for a ChunkSummarizer.
type SummaryRequest struct {
	ChunkIndex  int
	Text        string
	Model       string
	MaxTokens   int
	Temperature float32
}

// ChunkSummarizer turns one chunk of text into one summary.
type ChunkSummarizer interface {
	SummarizeChunk(ctx context.Context, req SummaryRequest) (string, error)
}

// SummarizerConfig holds the model parameters sent with every request.
type SummarizerConfig struct {
	// Model is the completion model identifier
	Model string

	// MaxTokens is the output token ceiling per chunk summary
	MaxTokens int

	// Temperature controls sampling randomness (0.0-1.0)
	Temperature float32

	// API selects the endpoint, APICompletions when empty
	API API

	// RequestsPerMinute paces remote calls; 0 disables pacing
	RequestsPerMinute int
}

// DefaultSummarizerConfig returns the default model parameters.
func DefaultSummarizerConfig() SummarizerConfig {
	return SummarizerConfig{
		Model:       DefaultModel,
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
		API:         APICompletions,
	}
}

// Validate checks the model parameters.
func (c SummarizerConfig) Validate() error {
	if strings.TrimSpace(c.Model) == "" {
		return &ConfigurationError{Field: "model", Value: c.Model, Reason: "must not be empty"}
	}
	if c.MaxTokens <= 0 {
		return &ConfigurationError{Field: "max_tokens", Value: c.MaxTokens, Reason: "must be positive"}
	}
	if c.Temperature < 0 || c.Temperature > 1 || math.IsNaN(float64(c.Temperature)) {
		return &ConfigurationError{Field: "temperature", Value: c.Temperature, Reason: "must be within [0, 1]"}
	}
	switch c.API {
	case "", APICompletions, APIChat:
	default:
		return &ConfigurationError{Field: "api", Value: c.API, Reason: "must be \"completions\" or \"chat\""}
	}
	if c.RequestsPerMinute < 0 {
		return &ConfigurationError{Field: "requests_per_minute", Value: c.RequestsPerMinute, Reason: "must not be negative"}
	}
	return nil
}

// Request builds the SummaryRequest for one chunk.
func (c SummarizerConfig) Request(chunkIndex int, text string) SummaryRequest {
	return SummaryRequest{
		ChunkIndex:  chunkIndex,
		Text:        text,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
	}
}

// BuildPrompt returns the prompt sent for a chunk.
func BuildPrompt(text string) string {
	return SummaryPrompt + "\n\n" + text + "\n"
}

// OpenAISummarizer summarizes chunks through an OpenAI-compatible API.
//
// Thread-Safety:
//   - OpenAISummarizer is safe for concurrent use
type OpenAISummarizer struct {
	client  *openai.Client
	api     API
	limiter *rate.Limiter
	logger  *zap.Logger
}

// SummarizerOption configures an OpenAISummarizer.
type SummarizerOption func(*OpenAISummarizer)

// WithSummarizerLogger logs token usage and latency of every completion at
// debug level.
func WithSummarizerLogger(logger *zap.Logger) SummarizerOption {
	return func(s *OpenAISummarizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewOpenAISummarizer creates a summarizer using the given client.
//
// Example:
//
//	client := openai.NewClient("api-key")
//	summarizer := NewOpenAISummarizer(client, DefaultSummarizerConfig())
//	summary, err := summarizer.SummarizeChunk(ctx, DefaultSummarizerConfig().Request(0, text))
func NewOpenAISummarizer(client *openai.Client, config SummarizerConfig, opts ...SummarizerOption) *OpenAISummarizer {
	s := &OpenAISummarizer{
		client: client,
		api:    config.API,
		logger: zap.NewNop(),
	}
	if s.api == "" {
		s.api = APICompletions
	}
	if config.RequestsPerMinute > 0 {
		s.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.RequestsPerMinute)), 1)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewOpenAIClient builds a go-openai client. An empty baseURL keeps the
// public OpenAI endpoint; a zero timeout leaves requests unbounded.
func NewOpenAIClient(apiKey, baseURL string, timeout time.Duration) *openai.Client {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: timeout}
	return openai.NewClientWithConfig(clientConfig)
}

// SummarizeChunk requests exactly one completion for the chunk and returns
// its text trimmed of surrounding whitespace. Every failure is returned as
// a *SummarizationError tagged with req.ChunkIndex.
func (s *OpenAISummarizer) SummarizeChunk(ctx context.Context, req SummaryRequest) (string, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", &SummarizationError{ChunkIndex: req.ChunkIndex, Kind: KindCanceled, Err: err}
		}
	}

	var (
		text    string
		choices int
		usage   openai.Usage
		err     error
	)
	start := time.Now()
	switch s.api {
	case APIChat:
		text, choices, usage, err = s.chatCompletion(ctx, req)
	default:
		text, choices, usage, err = s.textCompletion(ctx, req)
	}

	if err != nil {
		return "", &SummarizationError{ChunkIndex: req.ChunkIndex, Kind: classifyError(err), Err: err}
	}
	if choices == 0 {
		return "", &SummarizationError{ChunkIndex: req.ChunkIndex, Kind: KindEmpty, Err: ErrNoChoices}
	}

	s.logger.Debug("Chunk summary received", logging.CompletionFields(logging.NewCompletionMetrics(
		req.Model, req.ChunkIndex, usage.PromptTokens, usage.CompletionTokens, time.Since(start))))
	return strings.TrimSpace(text), nil
}

func (s *OpenAISummarizer) textCompletion(ctx context.Context, req SummaryRequest) (string, int, openai.Usage, error) {
	resp, err := s.client.CreateCompletion(ctx, openai.CompletionRequest{
		Model:       req.Model,
		Prompt:      BuildPrompt(req.Text),
		MaxTokens:   req.MaxTokens,
		N:           1,
		Temperature: temperatureParam(req.Temperature),
	})
	if err != nil {
		return "", 0, openai.Usage{}, err
	}
	if len(resp.Choices) == 0 {
		return "", 0, resp.Usage, nil
	}
	return resp.Choices[0].Text, len(resp.Choices), resp.Usage, nil
}

func (s *OpenAISummarizer) chatCompletion(ctx context.Context, req SummaryRequest) (string, int, openai.Usage, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: BuildPrompt(req.Text),
			},
		},
		MaxTokens:   req.MaxTokens,
		N:           1,
		Temperature: temperatureParam(req.Temperature),
	})
	if err != nil {
		return "", 0, openai.Usage{}, err
	}
	if len(resp.Choices) == 0 {
		return "", 0, resp.Usage, nil
	}
	return resp.Choices[0].Message.Content, len(resp.Choices), resp.Usage, nil
}

// temperatureParam maps 0 to the smallest positive float32; go-openai omits
// zero-valued temperatures and the server would apply its own default.
func temperatureParam(t float32) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}

// classifyError maps a go-openai or transport error onto an ErrorKind.
func classifyError(err error) ErrorKind {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCanceled
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return kindForStatus(apiErr.HTTPStatusCode)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return kindForStatus(reqErr.HTTPStatusCode)
	}

	if errors.Is(err, openai.ErrCompletionUnsupportedModel) ||
		errors.Is(err, openai.ErrChatCompletionInvalidModel) {
		return KindInvalidRequest
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return KindMalformed
	}

	var netErr net.Error
	var urlErr *url.Error
	if errors.As(err, &netErr) || errors.As(err, &urlErr) {
		return KindNetwork
	}

	return KindUnknown
}

func kindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusTooManyRequests:
		return KindRateLimit
	case status >= 500:
		return KindServer
	case status >= 400:
		return KindInvalidRequest
	default:
		return KindMalformed
	}
}
