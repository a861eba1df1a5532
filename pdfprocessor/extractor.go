package pdfprocessor

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PageResult represents extracted text from a single PDF page.
type PageResult struct {
	// PageNumber is the 1-indexed page number
	PageNumber int

	// Text is the extracted text content, empty if the page has no text layer
	Text string

	// Error is non-nil if the page could not be decoded. The page then
	// contributes no text but extraction continues.
	Error error
}

// ExtractionResult contains the complete result of PDF text extraction.
type ExtractionResult struct {
	// Text is the concatenated text of all pages in document order
	Text string

	// TotalPages is the number of pages in the PDF
	TotalPages int

	// ExtractedPages is the number of pages that yielded text
	ExtractedPages int

	// SkippedPages is the number of pages that were empty or failed to decode
	SkippedPages int

	// EstimatedTokens is a rough token estimate of Text
	EstimatedTokens int

	// Pages contains per-page extraction results
	Pages []PageResult
}

// ExtractorConfig holds configuration for PDF text extraction.
type ExtractorConfig struct {
	// PageSeparator is inserted between page texts. Empty by default, so
	// page boundaries are not preserved in the output.
	PageSeparator string

	// MaxPages limits extraction to the first N pages (0 for all pages)
	MaxPages int
}

// DefaultExtractorConfig returns the default extraction configuration.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{}
}

// Extractor extracts text from PDF files.
type Extractor struct {
	config ExtractorConfig
}

// NewExtractor creates a new Extractor with the given configuration.
func NewExtractor(config ExtractorConfig) *Extractor {
	if config.MaxPages < 0 {
		config.MaxPages = 0
	}
	return &Extractor{config: config}
}

// NewDefaultExtractor creates an Extractor with default configuration.
func NewDefaultExtractor() *Extractor {
	return NewExtractor(DefaultExtractorConfig())
}

// Extract extracts text from the PDF file at pdfPath.
//
// It fails with *ExtractionError when the path is empty, the file does not
// exist or is not a readable PDF. Pages without a text layer contribute an
// empty string. The file is closed before Extract returns.
//
// Example:
//
//	result, err := NewDefaultExtractor().Extract("/path/to/document.pdf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Text)
func (e *Extractor) Extract(pdfPath string) (result *ExtractionResult, err error) {
	if pdfPath == "" {
		return nil, &ExtractionError{Path: pdfPath, Err: ErrEmptyPath}
	}

	// ledongthuc/pdf panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &ExtractionError{Path: pdfPath, Err: fmt.Errorf("malformed PDF: %v", r)}
		}
	}()

	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return nil, &ExtractionError{Path: pdfPath, Err: err}
	}
	defer f.Close()

	return e.extractFromReader(r), nil
}

// ExtractReader extracts text from an in-memory or otherwise seekable PDF.
// name is only used in error messages.
func (e *Extractor) ExtractReader(name string, ra io.ReaderAt, size int64) (result *ExtractionResult, err error) {
	if ra == nil {
		return nil, &ExtractionError{Path: name, Err: errors.New("nil reader provided")}
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &ExtractionError{Path: name, Err: fmt.Errorf("malformed PDF: %v", r)}
		}
	}()

	r, err := pdf.NewReader(ra, size)
	if err != nil {
		return nil, &ExtractionError{Path: name, Err: err}
	}
	return e.extractFromReader(r), nil
}

// extractFromReader walks the pages of r in order.
func (e *Extractor) extractFromReader(r *pdf.Reader) *ExtractionResult {
	totalPages := r.NumPage()

	result := &ExtractionResult{
		TotalPages: totalPages,
		Pages:      make([]PageResult, 0, totalPages),
	}

	pagesToProcess := totalPages
	if e.config.MaxPages > 0 && e.config.MaxPages < totalPages {
		pagesToProcess = e.config.MaxPages
	}

	var textBuilder strings.Builder

	// Pages are 1-indexed in ledongthuc/pdf
	for pageIndex := 1; pageIndex <= pagesToProcess; pageIndex++ {
		pageResult := extractPage(r, pageIndex)
		result.Pages = append(result.Pages, pageResult)

		if pageResult.Text == "" {
			result.SkippedPages++
			continue
		}
		result.ExtractedPages++

		if textBuilder.Len() > 0 {
			textBuilder.WriteString(e.config.PageSeparator)
		}
		textBuilder.WriteString(pageResult.Text)
	}

	result.Text = textBuilder.String()
	result.EstimatedTokens = EstimateTokenCount(result.Text)
	return result
}

// extractPage extracts text from a single page. Decoding failures, including
// panics inside the PDF library, leave the page empty.
func extractPage(r *pdf.Reader, pageIndex int) (result PageResult) {
	result.PageNumber = pageIndex

	defer func() {
		if rec := recover(); rec != nil {
			result.Text = ""
			result.Error = fmt.Errorf("decode page: %v", rec)
		}
	}()

	p := r.Page(pageIndex)
	if p.V.IsNull() {
		return result
	}

	text, err := p.GetPlainText(nil)
	if err != nil {
		result.Error = fmt.Errorf("decode page: %w", err)
		return result
	}
	result.Text = text
	return result
}

// ExtractText extracts the text of the PDF at pdfPath using default configuration.
func ExtractText(pdfPath string) (string, error) {
	result, err := NewDefaultExtractor().Extract(pdfPath)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}
