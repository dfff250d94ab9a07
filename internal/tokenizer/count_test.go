package tokenizer_test

import (
	"strings"
	"testing"

	"github.com/jefffleurima/treesnap/internal/tokenizer"
)

// wordCounter is a deterministic Counter used to avoid loading tiktoken
// encodings in tests.
type wordCounter struct{}

func (wordCounter) Name() string {
	return "words"
}

func (wordCounter) CountString(input string) (int, error) {
	return len(strings.Fields(input)), nil
}

// TestCountBytesCountsText verifies token counting for plain text.
func TestCountBytesCountsText(testingHandle *testing.T) {
	countResult, countError := tokenizer.CountBytes(wordCounter{}, []byte("src/ main.py manage.py"))
	if countError != nil {
		testingHandle.Fatalf("CountBytes failed: %v", countError)
	}
	if !countResult.Counted {
		testingHandle.Fatalf("expected text to be counted")
	}
	if countResult.Tokens != 3 {
		testingHandle.Fatalf("expected 3 tokens, got %d", countResult.Tokens)
	}
}

// TestCountBytesRefusesBinary verifies binary data is never counted.
func TestCountBytesRefusesBinary(testingHandle *testing.T) {
	countResult, countError := tokenizer.CountBytes(wordCounter{}, []byte{0x00, 0xff, 0x01})
	if countError != nil {
		testingHandle.Fatalf("CountBytes failed: %v", countError)
	}
	if countResult.Counted {
		testingHandle.Fatalf("expected binary data to be refused")
	}
}

// TestCountBytesEmptyInput verifies empty input counts as zero tokens.
func TestCountBytesEmptyInput(testingHandle *testing.T) {
	countResult, countError := tokenizer.CountBytes(wordCounter{}, nil)
	if countError != nil {
		testingHandle.Fatalf("CountBytes failed: %v", countError)
	}
	if !countResult.Counted || countResult.Tokens != 0 {
		testingHandle.Fatalf("unexpected result for empty input: %+v", countResult)
	}
}

// TestCountBytesNilCounter verifies the nil counter guard.
func TestCountBytesNilCounter(testingHandle *testing.T) {
	if _, countError := tokenizer.CountBytes(nil, []byte("text")); countError == nil {
		testingHandle.Fatalf("expected error for nil counter")
	}
}
