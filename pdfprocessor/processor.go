package pdfprocessor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrProcessorNotConfigured is returned when the processor has no summarizer.
var ErrProcessorNotConfigured = errors.New("processor not properly configured")

// summaryPreviewLength caps the summary text shown in per-chunk debug logs.
const summaryPreviewLength = 80

// Stage is a step of a pipeline run.
type Stage int

const (
	StageIdle Stage = iota
	StageExtracting
	StageChunking
	StageSummarizing
	StageJoining
	StageDone
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageExtracting:
		return "extracting"
	case StageChunking:
		return "chunking"
	case StageSummarizing:
		return "summarizing"
	case StageJoining:
		return "joining"
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// ProcessorConfig holds configuration for the whole pipeline.
type ProcessorConfig struct {
	ExtractorConfig  ExtractorConfig
	ChunkerConfig    ChunkerConfig
	SummarizerConfig SummarizerConfig

	// Concurrency is the number of chunks summarized at once. 1 (the
	// default) submits chunks strictly one after another in chunk order.
	Concurrency int

	// OutputPath, when set, receives the final summary as a text file.
	OutputPath string
}

// DefaultProcessorConfig returns the default pipeline configuration.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		ExtractorConfig:  DefaultExtractorConfig(),
		ChunkerConfig:    DefaultChunkerConfig(),
		SummarizerConfig: DefaultSummarizerConfig(),
		Concurrency:      1,
	}
}

// Validate reports the first invalid parameter as a *ConfigurationError.
func (c ProcessorConfig) Validate() error {
	if err := c.ChunkerConfig.Validate(); err != nil {
		return err
	}
	if err := c.SummarizerConfig.Validate(); err != nil {
		return err
	}
	if c.Concurrency < 1 {
		return &ConfigurationError{Field: "concurrency", Value: c.Concurrency, Reason: "must be at least 1"}
	}
	return nil
}

// ChunkSummary is the summary of one chunk.
type ChunkSummary struct {
	Index int
	Text  string
}

// ProcessingStages contains timing information for each stage.
type ProcessingStages struct {
	ExtractionTime  time.Duration
	ChunkingTime    time.Duration
	SummarizingTime time.Duration
}

// ProcessResult contains the complete result of a pipeline run.
type ProcessResult struct {
	// RunID identifies the run in logs
	RunID string

	// Summary is the space-joined chunk summaries in chunk order
	Summary string

	// Stage is StageDone for a returned result
	Stage Stage

	// Extraction is nil when the run started from text
	Extraction *ExtractionResult

	Chunks         *ChunkerResult
	ChunkSummaries []ChunkSummary

	ProcessingTime time.Duration
	Stages         ProcessingStages
}

// ProgressCallback is called on every stage change and before every chunk.
// progress is 0.0-1.0 within the stage.
type ProgressCallback func(stage Stage, progress float64, message string)

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithLogger sets the logger used for run diagnostics.
func WithLogger(logger *zap.Logger) ProcessorOption {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithProgress sets the progress callback.
func WithProgress(progress ProgressCallback) ProcessorOption {
	return func(p *Processor) {
		p.progress = progress
	}
}

// Processor runs extract → chunk → summarize each chunk → join.
//
// A Processor keeps no per-run state, so independent runs may execute
// concurrently as long as the summarizer and progress callback allow it.
type Processor struct {
	config     ProcessorConfig
	extractor  *Extractor
	chunker    *Chunker
	summarizer ChunkSummarizer
	logger     *zap.Logger
	progress   ProgressCallback
}

// NewProcessor validates config and builds a Processor around summarizer.
//
// Example:
//
//	client := openai.NewClient("api-key")
//	summarizer := NewOpenAISummarizer(client, DefaultSummarizerConfig())
//	processor, err := NewProcessor(DefaultProcessorConfig(), summarizer)
//	result, err := processor.Process(ctx, "/path/to/document.pdf")
func NewProcessor(config ProcessorConfig, summarizer ChunkSummarizer, opts ...ProcessorOption) (*Processor, error) {
	if config.Concurrency == 0 {
		config.Concurrency = 1
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if summarizer == nil {
		return nil, ErrProcessorNotConfigured
	}

	p := &Processor{
		config:     config,
		extractor:  NewExtractor(config.ExtractorConfig),
		chunker:    NewChunker(config.ChunkerConfig),
		summarizer: summarizer,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// run tracks the state of one pipeline invocation.
type run struct {
	id     string
	start  time.Time
	stage  Stage
	logger *zap.Logger
	result *ProcessResult
}

func (p *Processor) newRun(fields ...zap.Field) *run {
	id := uuid.New().String()
	r := &run{
		id:     id,
		start:  time.Now(),
		stage:  StageIdle,
		logger: p.logger.With(append([]zap.Field{zap.String("run_id", id)}, fields...)...),
		result: &ProcessResult{RunID: id, Stage: StageIdle},
	}
	r.logger.Info("Pipeline run started")
	return r
}

func (p *Processor) enter(r *run, stage Stage, message string) {
	r.stage = stage
	r.result.Stage = stage
	r.logger.Debug("Pipeline stage", zap.Stringer("stage", stage), zap.String("detail", message))
	p.reportProgress(stage, 0.0, message)
}

func (p *Processor) fail(r *run, err error) error {
	failedAt := r.stage
	r.stage = StageFailed
	r.result.Stage = StageFailed
	r.logger.Error("Pipeline run failed",
		zap.Stringer("stage", failedAt),
		zap.Duration("elapsed", time.Since(r.start)),
		zap.Error(err),
	)
	p.reportProgress(StageFailed, 1.0, err.Error())
	return err
}

// Process extracts text from the PDF at pdfPath, chunks it, summarizes
// every chunk and joins the summaries with single spaces.
//
// Any failure aborts the run: no further chunk is submitted and the
// originating typed error (*ExtractionError, *SummarizationError,
// *IOError) is returned without a partial summary.
//
// Example:
//
//	result, err := processor.Process(ctx, "/path/to/document.pdf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Summary)
func (p *Processor) Process(ctx context.Context, pdfPath string) (*ProcessResult, error) {
	if p == nil || p.summarizer == nil {
		return nil, ErrProcessorNotConfigured
	}

	r := p.newRun(zap.String("pdf", pdfPath))

	p.enter(r, StageExtracting, "Extracting text from PDF...")
	extractStart := time.Now()

	extraction, err := p.extractor.Extract(pdfPath)
	if err != nil {
		return nil, p.fail(r, err)
	}
	r.result.Extraction = extraction
	r.result.Stages.ExtractionTime = time.Since(extractStart)

	for _, page := range extraction.Pages {
		if page.Error != nil {
			r.logger.Warn("Page yielded no text", zap.Int("page", page.PageNumber), zap.Error(page.Error))
		}
	}
	p.reportProgress(StageExtracting, 1.0, fmt.Sprintf("Extracted %d of %d pages, ~%d tokens",
		extraction.ExtractedPages, extraction.TotalPages, extraction.EstimatedTokens))

	return p.summarizeText(ctx, r, extraction.Text)
}

// ProcessText runs the pipeline on already extracted text.
func (p *Processor) ProcessText(ctx context.Context, text string) (*ProcessResult, error) {
	if p == nil || p.summarizer == nil {
		return nil, ErrProcessorNotConfigured
	}
	return p.summarizeText(ctx, p.newRun(), text)
}

// summarizeText runs the Chunking, Summarizing and Joining stages.
func (p *Processor) summarizeText(ctx context.Context, r *run, text string) (*ProcessResult, error) {
	p.enter(r, StageChunking, "Splitting text into chunks...")
	chunkStart := time.Now()

	chunks := p.chunker.SplitIntoChunks(text)
	r.result.Chunks = chunks
	r.result.Stages.ChunkingTime = time.Since(chunkStart)

	if chunks.TotalChunks == 0 {
		r.logger.Warn("Document has no extractable text")
	}
	p.reportProgress(StageChunking, 1.0, fmt.Sprintf("Created %d chunks", chunks.TotalChunks))

	p.enter(r, StageSummarizing, fmt.Sprintf("Summarizing %d chunks...", chunks.TotalChunks))
	summaryStart := time.Now()

	var (
		summaries []ChunkSummary
		err       error
	)
	if p.config.Concurrency > 1 && chunks.TotalChunks > 1 {
		summaries, err = p.summarizeConcurrently(ctx, r, chunks.Chunks)
	} else {
		summaries, err = p.summarizeSequentially(ctx, r, chunks.Chunks)
	}
	if err != nil {
		return nil, p.fail(r, err)
	}
	r.result.ChunkSummaries = summaries
	r.result.Stages.SummarizingTime = time.Since(summaryStart)

	p.enter(r, StageJoining, "Joining chunk summaries...")
	r.result.Summary = JoinSummaries(summaries)

	if p.config.OutputPath != "" {
		if err := SaveSummary(r.result.Summary, p.config.OutputPath); err != nil {
			return nil, p.fail(r, err)
		}
		r.logger.Info("Summary saved", zap.String("path", p.config.OutputPath))
	}

	r.stage = StageDone
	r.result.Stage = StageDone
	r.result.ProcessingTime = time.Since(r.start)
	p.reportProgress(StageDone, 1.0, "Summary complete")

	r.logger.Info("Pipeline run complete",
		zap.Int("chunks", chunks.TotalChunks),
		zap.Int("summary_length", TextLength(r.result.Summary)),
		zap.Duration("duration", r.result.ProcessingTime),
	)
	return r.result, nil
}

// summarizeSequentially summarizes chunks 0..N-1 one at a time. The context
// is checked before each chunk is submitted.
func (p *Processor) summarizeSequentially(ctx context.Context, r *run, chunks []ChunkResult) ([]ChunkSummary, error) {
	summaries := make([]ChunkSummary, 0, len(chunks))
	total := len(chunks)

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, &SummarizationError{ChunkIndex: i, Kind: KindCanceled, Err: err}
		}
		p.reportProgress(StageSummarizing, float64(i)/float64(total),
			fmt.Sprintf("Summarizing chunk %d of %d", i+1, total))

		text, err := p.summarizeChunk(ctx, r, i, chunk)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, ChunkSummary{Index: i, Text: text})
	}
	return summaries, nil
}

// summarizeConcurrently summarizes up to Concurrency chunks at once. Results
// are placed by chunk index; the lowest failing index is reported.
func (p *Processor) summarizeConcurrently(ctx context.Context, r *run, chunks []ChunkResult) ([]ChunkSummary, error) {
	texts := make([]string, len(chunks))
	errs := make([]error, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.Concurrency)

	for i, chunk := range chunks {
		if err := gctx.Err(); err != nil {
			errs[i] = &SummarizationError{ChunkIndex: i, Kind: KindCanceled, Err: err}
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				errs[i] = &SummarizationError{ChunkIndex: i, Kind: KindCanceled, Err: err}
				return errs[i]
			}
			text, err := p.summarizeChunk(gctx, r, i, chunk)
			if err != nil {
				errs[i] = err
				return err
			}
			texts[i] = text
			return nil
		})
	}
	groupErr := g.Wait()

	if groupErr != nil {
		// Cancellations caused by a sibling's failure are not the cause.
		for _, err := range errs {
			if err == nil {
				continue
			}
			if sErr, ok := AsSummarizationError(err); ok && sErr.Kind == KindCanceled && ctx.Err() == nil {
				continue
			}
			return nil, err
		}
		return nil, groupErr
	}

	summaries := make([]ChunkSummary, len(chunks))
	for i, text := range texts {
		summaries[i] = ChunkSummary{Index: i, Text: text}
	}
	return summaries, nil
}

// summarizeChunk calls the summarizer for one chunk and tags any failure
// with the chunk index.
func (p *Processor) summarizeChunk(ctx context.Context, r *run, index int, chunk ChunkResult) (string, error) {
	req := p.config.SummarizerConfig.Request(index, chunk.Text)
	callStart := time.Now()

	text, err := p.summarizer.SummarizeChunk(ctx, req)
	if err != nil {
		if _, ok := AsSummarizationError(err); !ok {
			err = &SummarizationError{ChunkIndex: index, Kind: classifyError(err), Err: err}
		}
		return "", err
	}

	r.logger.Debug("Chunk summarized",
		zap.Int("chunk", index),
		zap.Int("chunk_length", chunk.Length),
		zap.Int("summary_length", TextLength(text)),
		zap.String("preview", TruncateTextWithEllipsis(text, summaryPreviewLength)),
		zap.Duration("duration", time.Since(callStart)),
	)
	return text, nil
}

// JoinSummaries joins chunk summaries with single spaces in slice order.
func JoinSummaries(summaries []ChunkSummary) string {
	texts := make([]string, len(summaries))
	for i, s := range summaries {
		texts[i] = s.Text
	}
	return strings.Join(texts, " ")
}

// reportProgress calls the progress callback if set.
func (p *Processor) reportProgress(stage Stage, progress float64, message string) {
	if p.progress != nil {
		p.progress(stage, progress, message)
	}
}

// ProcessPDF summarizes a PDF with default configuration.
//
// Example:
//
//	client := openai.NewClient("api-key")
//	result, err := ProcessPDF(ctx, client, "/path/to/document.pdf")
func ProcessPDF(ctx context.Context, client *openai.Client, pdfPath string) (*ProcessResult, error) {
	config := DefaultProcessorConfig()
	processor, err := NewProcessor(config, NewOpenAISummarizer(client, config.SummarizerConfig))
	if err != nil {
		return nil, err
	}
	return processor.Process(ctx, pdfPath)
}
