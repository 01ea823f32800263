// Package tokenizer provides token-count estimation strategies for text
// content. Counters are constructed once at the top of the call chain and
// passed down explicitly.
package tokenizer

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Counter estimates token counts for text content.
type Counter interface {
	Name() string
	CountString(input string) (int, error)
}

const (
	defaultModel        = "gpt-4o"
	defaultEncodingName = "cl100k_base"
)

// NewCounter returns a Counter implementation for the requested model along
// with the effective model or encoding name. An empty model selects the
// default. When no tiktoken encoding can be initialized, the whitespace
// counter substitutes as an interchangeable fallback strategy rather than
// failing the run.
func NewCounter(model string) (Counter, string) {
	trimmedModel := strings.TrimSpace(model)
	if trimmedModel == "" {
		trimmedModel = defaultModel
	}
	lowerModel := strings.ToLower(trimmedModel)

	encoding, encodingError := tiktoken.EncodingForModel(lowerModel)
	if encodingError == nil && encoding != nil {
		return openAICounter{encoding: encoding, name: lowerModel}, lowerModel
	}
	fallbackEncoding, fallbackError := tiktoken.GetEncoding(defaultEncodingName)
	if fallbackError == nil && fallbackEncoding != nil {
		return openAICounter{encoding: fallbackEncoding, name: defaultEncodingName}, defaultEncodingName
	}
	whitespace := NewWhitespaceCounter()
	return whitespace, whitespace.Name()
}
