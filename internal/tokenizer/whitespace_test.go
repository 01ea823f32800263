package tokenizer_test

import (
	"testing"

	"github.com/temirov/ingest/internal/tokenizer"
)

// TestWhitespaceCounter verifies the whitespace-split estimation strategy.
func TestWhitespaceCounter(testingHandle *testing.T) {
	counter := tokenizer.NewWhitespaceCounter()
	if counter.Name() != "whitespace" {
		testingHandle.Fatalf("unexpected counter name %q", counter.Name())
	}
	testCases := []struct {
		input    string
		expected int
	}{
		{"", 0},
		{"   \n\t", 0},
		{"one", 1},
		{"one two\nthree\tfour", 4},
	}
	for _, testCase := range testCases {
		tokens, countError := counter.CountString(testCase.input)
		if countError != nil {
			testingHandle.Fatalf("CountString(%q): %v", testCase.input, countError)
		}
		if tokens != testCase.expected {
			testingHandle.Fatalf("CountString(%q) = %d, expected %d", testCase.input, tokens, testCase.expected)
		}
	}
}
