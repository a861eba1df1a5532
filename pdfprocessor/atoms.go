// Package pdfprocessor turns a PDF into a single summary: it extracts the
// page text, splits it into word-bounded chunks, asks a completion service
// to summarize each chunk in order and joins the results.
package pdfprocessor

import (
	"strings"
	"unicode/utf8"
)

// SplitWords splits text into word units: maximal runs of non-whitespace
// characters. Empty or all-whitespace text yields nil.
func SplitWords(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	return words
}

// TextLength returns the length of text in characters (runes), the unit
// used by the chunk size budget.
func TextLength(text string) int {
	return utf8.RuneCountInString(text)
}

// EstimateTokenCount provides a rough estimate of tokens in a text.
// It assumes an average of 4 characters per token, which is good enough
// for log output and progress messages. It is not used for chunk sizing.
//
// Example:
//
//	tokens := EstimateTokenCount("Hello, world!") // Returns 3
//	tokens := EstimateTokenCount("")              // Returns 0
func EstimateTokenCount(text string) int {
	if len(text) == 0 {
		return 0
	}
	return TextLength(text) / 4
}

// TruncateTextWithEllipsis shortens text to at most maxLen characters,
// ending in "..." when something was cut. Used for log previews.
//
// Example:
//
//	result := TruncateTextWithEllipsis("Hello, world!", 8)  // Returns "Hello..."
//	result := TruncateTextWithEllipsis("Hi", 10)            // Returns "Hi"
func TruncateTextWithEllipsis(text string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	if maxLen < 4 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
