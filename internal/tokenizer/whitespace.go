package tokenizer

import "strings"

// whitespaceCounterName identifies the whitespace-split estimation strategy.
const whitespaceCounterName = "whitespace"

// WhitespaceCounter approximates token counts by counting whitespace-separated
// fields. It is the fallback strategy used when no tiktoken encoding is
// available.
type WhitespaceCounter struct{}

// NewWhitespaceCounter returns the whitespace-split counting strategy.
func NewWhitespaceCounter() WhitespaceCounter {
	return WhitespaceCounter{}
}

// Name identifies the strategy.
func (WhitespaceCounter) Name() string {
	return whitespaceCounterName
}

// CountString returns the number of whitespace-separated fields in input.
func (WhitespaceCounter) CountString(input string) (int, error) {
	return len(strings.Fields(input)), nil
}
