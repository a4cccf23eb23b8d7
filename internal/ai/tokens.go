package ai

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter measures prompt sizes so the continuation context can be
// trimmed to a budget instead of growing without bound.
type TokenCounter struct {
	encoding *tiktoken.Tiktoken
}

// NewTokenCounter builds a counter for the given model, falling back to the
// cl100k_base encoding for models tiktoken does not know.
func NewTokenCounter(modelName string) (*TokenCounter, error) {
	encoding, err := tiktoken.EncodingForModel(modelName)
	if err != nil {
		encoding, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("failed to load token encoding: %w", err)
		}
	}
	return &TokenCounter{encoding: encoding}, nil
}

// Count returns the number of tokens in the text.
func (tc *TokenCounter) Count(text string) int {
	return len(tc.encoding.Encode(text, nil, nil))
}
