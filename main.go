package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"pdfsummarizer/core"
	"pdfsummarizer/logging"
	"pdfsummarizer/pdfprocessor"
	"pdfsummarizer/shutdown"

	"github.com/fatih/color"
	"go.uber.org/zap"
)

// exit is replaced in tests so a forced shutdown does not end the test binary.
var exit = os.Exit

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// cliFlags holds the parsed command line.
type cliFlags struct {
	pdfPath    string
	configPath string
	envPath    string
	version    bool

	out         string
	model       string
	maxTokens   int
	temperature float64
	chunkSize   int
	concurrency int

	// set records which flags were given explicitly
	set map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*cliFlags, error) {
	f := &cliFlags{set: make(map[string]bool)}

	fs := flag.NewFlagSet("pdfsummarizer", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: pdfsummarizer [flags] [file.pdf]")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Summarizes a PDF by summarizing each chunk of its text with an OpenAI model.")
		fmt.Fprintln(stderr)
		fs.PrintDefaults()
	}

	fs.StringVar(&f.pdfPath, "pdf", "", "PDF file to summarize (or pass it as the first argument)")
	fs.StringVar(&f.configPath, "config", "", "optional YAML configuration file")
	fs.StringVar(&f.envPath, "env", ".env", "environment file to load")
	fs.BoolVar(&f.version, "version", false, "print version information and exit")
	fs.StringVar(&f.out, "out", "", "write the summary to this file instead of stdout")
	fs.StringVar(&f.model, "model", "", "completion model")
	fs.IntVar(&f.maxTokens, "max-tokens", 0, "maximum tokens per chunk summary")
	fs.Float64Var(&f.temperature, "temperature", 0, "sampling temperature")
	fs.IntVar(&f.chunkSize, "chunk-size", 0, "chunk size in characters")
	fs.IntVar(&f.concurrency, "concurrency", 0, "chunks summarized at once")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })

	if f.pdfPath == "" && fs.NArg() > 0 {
		f.pdfPath = fs.Arg(0)
	}
	if fs.NArg() > 1 || (f.set["pdf"] && fs.NArg() > 0) {
		fs.Usage()
		return nil, errors.New("only one PDF can be summarized per run")
	}
	return f, nil
}

// apply overrides cfg with every flag given on the command line.
func (f *cliFlags) apply(cfg *core.Config) {
	if f.set["out"] {
		cfg.OutputPath = f.out
	}
	if f.set["model"] {
		cfg.Model = f.model
	}
	if f.set["max-tokens"] {
		cfg.MaxTokens = f.maxTokens
	}
	if f.set["temperature"] {
		cfg.Temperature = f.temperature
	}
	if f.set["chunk-size"] {
		cfg.ChunkSize = f.chunkSize
	}
	if f.set["concurrency"] {
		cfg.Concurrency = f.concurrency
	}
}

// statusPrinter writes colored status lines to the terminal.
type statusPrinter struct {
	w       io.Writer
	success *color.Color
	failure *color.Color
	detail  *color.Color
	warn    *color.Color
}

func newStatusPrinter(w io.Writer) *statusPrinter {
	return &statusPrinter{
		w:       w,
		success: color.New(color.FgGreen),
		failure: color.New(color.FgRed),
		detail:  color.New(color.FgHiBlack),
		warn:    color.New(color.FgYellow),
	}
}

func (s *statusPrinter) Success(format string, args ...interface{}) {
	s.success.Fprintf(s.w, "✓ "+format+"\n", args...)
}

func (s *statusPrinter) Failure(format string, args ...interface{}) {
	s.failure.Fprintf(s.w, "✗ "+format+"\n", args...)
}

func (s *statusPrinter) Warn(format string, args ...interface{}) {
	s.warn.Fprintf(s.w, "! "+format+"\n", args...)
}

func (s *statusPrinter) Detail(format string, args ...interface{}) {
	s.detail.Fprintf(s.w, "  "+format+"\n", args...)
}

// Progress renders pipeline progress callbacks.
func (s *statusPrinter) Progress(stage pdfprocessor.Stage, progress float64, message string) {
	if stage == pdfprocessor.StageFailed {
		return
	}
	s.Detail("[%-11s %3.0f%%] %s", stage, progress*100, message)
}

// run executes one summarization and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	status := newStatusPrinter(stderr)

	flags, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return core.ExitCodeSuccess
		}
		status.Failure("%v", err)
		return core.ExitCodeUsage
	}

	if flags.version {
		fmt.Fprintf(stdout, "pdfsummarizer %s\n", core.GetVersionInfo())
		return core.ExitCodeSuccess
	}

	cfg, err := loadConfiguration(flags, status)
	if err != nil {
		status.Failure("Configuration error: %v", err)
		return core.ExitCodeUsage
	}

	if flags.pdfPath == "" {
		status.Failure("No PDF selected. Pass -pdf or a file argument.")
		return core.ExitCodeUsage
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		status.Failure("Configuration error: %v", err)
		return core.ExitCodeUsage
	}
	logger, err := logging.NewLogger(logging.Options{
		Level:       level,
		Development: cfg.DevMode,
		Color:       !color.NoColor,
		Console:     stderr,
		File:        logging.FileConfig{Path: cfg.LogFile},
	})
	if err != nil {
		status.Failure("Failed to initialize logger: %v", err)
		return core.ExitCodeError
	}
	defer func() {
		_ = logger.Close()
	}()

	logger.Info("Configuration loaded",
		zap.String("version", core.Version),
		zap.String("model", cfg.Model),
		zap.String("api", cfg.API),
		zap.Int("max_tokens", cfg.MaxTokens),
		zap.Float64("temperature", cfg.Temperature),
		zap.Int("chunk_size", cfg.ChunkSize),
		zap.Int("concurrency", cfg.Concurrency),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("ai_timeout", cfg.AITimeout),
		zap.Duration("processing_timeout", cfg.ProcessingTimeout),
		zap.String("output", cfg.OutputPath),
		zap.Bool("dev_mode", cfg.DevMode),
	)

	processor, err := newProcessor(cfg, logger, status)
	if err != nil {
		status.Failure("Configuration error: %v", err)
		return core.ExitCodeUsage
	}

	watcher := shutdown.NewWatcher(ctx, logger.Zap(), func(sig os.Signal) {
		_ = logger.Sync()
		exit(core.ExitCodeForSignal(sig))
	})
	watcher.Start()
	defer watcher.Stop()

	runCtx := watcher.Context()
	if cfg.ProcessingTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, cfg.ProcessingTimeout)
		defer cancel()
	}

	result, err := summarize(runCtx, processor, flags.pdfPath)
	if err != nil {
		status.Failure("Summarization failed: %v", err)
		if sig := watcher.Signal(); sig != nil {
			return core.ExitCodeForSignal(sig)
		}
		return core.ExitCodeError
	}

	if cfg.OutputPath == "" {
		if err := (pdfprocessor.WriterSink{W: stdout}).Save(result.Summary + "\n"); err != nil {
			status.Failure("Failed to write summary: %v", err)
			return core.ExitCodeError
		}
	} else {
		status.Success("Summary saved to %s", cfg.OutputPath)
	}
	status.Detail("%d chunks summarized in %s", result.Chunks.TotalChunks, result.ProcessingTime.Round(time.Millisecond))
	return core.ExitCodeSuccess
}

// loadConfiguration resolves the configuration from the env file, the
// optional YAML file, the environment and the flags.
func loadConfiguration(flags *cliFlags, status *statusPrinter) (*core.Config, error) {
	if err := core.LoadEnvFile(flags.envPath); err != nil {
		// The default .env is optional; an explicit -env must exist.
		if core.GetErrorCode(err) != core.ErrCodeEnvFileMissing || flags.set["env"] {
			return nil, err
		}
		status.Warn("No %s file found, using the process environment", flags.envPath)
	}

	cfg, err := core.ResolveConfig(flags.configPath)
	if err != nil {
		return nil, err
	}

	// Flags may repair an invalid file or environment value.
	flags.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newProcessor wires the OpenAI client, retries and progress output into a
// pipeline processor.
func newProcessor(cfg *core.Config, logger *logging.Logger, status *statusPrinter) (*pdfprocessor.Processor, error) {
	client := pdfprocessor.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.AITimeout)
	procCfg := cfg.ProcessorConfig()

	var summarizer pdfprocessor.ChunkSummarizer = pdfprocessor.NewOpenAISummarizer(client, procCfg.SummarizerConfig,
		pdfprocessor.WithSummarizerLogger(logger.Zap()))
	if cfg.MaxRetries > 0 {
		summarizer = pdfprocessor.NewRetryingSummarizer(summarizer, cfg.RetryConfig(), logger.Zap())
	}

	return pdfprocessor.NewProcessor(procCfg, summarizer,
		pdfprocessor.WithLogger(logger.Zap()),
		pdfprocessor.WithProgress(status.Progress),
	)
}

type outcome struct {
	result *pdfprocessor.ProcessResult
	err    error
}

// summarize runs the pipeline on its own goroutine and waits for it. The
// caller's goroutine stays free for signal handling.
func summarize(ctx context.Context, processor *pdfprocessor.Processor, pdfPath string) (*pdfprocessor.ProcessResult, error) {
	done := make(chan outcome, 1)
	go func() {
		result, err := processor.Process(ctx, pdfPath)
		done <- outcome{result: result, err: err}
	}()
	out := <-done
	return out.result, out.err
}
