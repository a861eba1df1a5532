package pdfprocessor

import (
	"strings"
)

// DefaultChunkSize is the default chunk budget in characters.
//
// The budget counts word units plus one separator per word, the same way
// the chunk text is joined. It approximates prompt size and is NOT a count
// of language-model tokens; callers must not assume token-exact sizing.
const DefaultChunkSize = 2048

// ChunkerConfig holds configuration for text chunking.
type ChunkerConfig struct {
	// ChunkSize is the target maximum length of a chunk in characters.
	// A single word longer than ChunkSize still gets its own chunk.
	ChunkSize int
}

// DefaultChunkerConfig returns the default chunking configuration.
func DefaultChunkerConfig() ChunkerConfig {
	return ChunkerConfig{
		ChunkSize: DefaultChunkSize,
	}
}

// Validate checks the chunk budget.
func (c ChunkerConfig) Validate() error {
	if c.ChunkSize <= 0 {
		return &ConfigurationError{Field: "chunk_size", Value: c.ChunkSize, Reason: "must be positive"}
	}
	return nil
}

// ChunkResult represents a single chunk with metadata.
type ChunkResult struct {
	// Text is the chunk's words joined with single spaces
	Text string

	// Index is the 0-based chunk index
	Index int

	// WordCount is the number of word units in the chunk
	WordCount int

	// Length is the length of Text in characters
	Length int

	// EstimatedTokens is a rough token estimate for logging
	EstimatedTokens int

	// Oversized is true when the chunk is a single word longer than the budget
	Oversized bool
}

// ChunkerResult contains all chunks and metadata from a chunking operation.
type ChunkerResult struct {
	Chunks      []ChunkResult
	TotalChunks int
	TotalWords  int
}

// Chunker splits text into ordered, size-bounded chunks of whole words.
//
// Thread-Safety:
//   - Chunker is safe for concurrent use (stateless)
type Chunker struct {
	config ChunkerConfig
}

// NewChunker creates a Chunker. A non-positive ChunkSize falls back to
// DefaultChunkSize; use ChunkText or ChunkerConfig.Validate to reject it.
func NewChunker(config ChunkerConfig) *Chunker {
	if config.ChunkSize <= 0 {
		config.ChunkSize = DefaultChunkSize
	}
	return &Chunker{config: config}
}

// ChunkSize returns the effective chunk budget.
func (c *Chunker) ChunkSize() int {
	return c.config.ChunkSize
}

// SplitIntoChunks splits text on whitespace and greedily packs words into
// chunks. Before a word is appended to a non-empty chunk, the chunk is
// closed if currentLength + len(word) + 1 would exceed the budget. The
// trailing chunk is always emitted. Empty input yields no chunks.
//
// Concatenating the words of all chunks in order reproduces the input's
// word sequence exactly.
func (c *Chunker) SplitIntoChunks(text string) *ChunkerResult {
	result := &ChunkerResult{
		Chunks: make([]ChunkResult, 0),
	}

	words := SplitWords(text)
	result.TotalWords = len(words)
	if len(words) == 0 {
		return result
	}

	var current []string
	currentLength := 0

	flush := func() {
		chunkText := strings.Join(current, " ")
		result.Chunks = append(result.Chunks, ChunkResult{
			Text:            chunkText,
			Index:           len(result.Chunks),
			WordCount:       len(current),
			Length:          currentLength,
			EstimatedTokens: EstimateTokenCount(chunkText),
			Oversized:       len(current) == 1 && currentLength > c.config.ChunkSize,
		})
		current = nil
		currentLength = 0
	}

	for _, word := range words {
		wordLength := TextLength(word)
		if len(current) > 0 && currentLength+wordLength+1 > c.config.ChunkSize {
			flush()
		}
		if len(current) > 0 {
			currentLength++
		}
		current = append(current, word)
		currentLength += wordLength
	}
	if len(current) > 0 {
		flush()
	}

	result.TotalChunks = len(result.Chunks)
	return result
}

// ChunkText splits text into chunk strings under chunkSize.
//
// Example:
//
//	chunks, _ := ChunkText("one two three four", 8)
//	// chunks: ["one two", "three", "four"]
func ChunkText(text string, chunkSize int) ([]string, error) {
	config := ChunkerConfig{ChunkSize: chunkSize}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return ChunksToStrings(NewChunker(config).SplitIntoChunks(text)), nil
}

// ChunksToStrings extracts just the text content from a ChunkerResult.
func ChunksToStrings(result *ChunkerResult) []string {
	if result == nil || len(result.Chunks) == 0 {
		return nil
	}

	texts := make([]string, len(result.Chunks))
	for i, chunk := range result.Chunks {
		texts[i] = chunk.Text
	}
	return texts
}
