package gemini

import (
	"context"
	"fmt"

	"github.com/isaacchacko/den"
	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

// FallbackTokenizerModel is loaded when the local tokenizer does not know
// the configured model. Gemini models share one vocabulary, so counts stay
// close enough for prompt budgeting.
const FallbackTokenizerModel = "gemini-2.0-flash"

var _ den.TokenCounter = (*TokenCounter)(nil)

// TokenCounter counts prompt tokens locally, without an API round trip.
type TokenCounter struct {
	tok   *tokenizer.LocalTokenizer
	model string
}

// NewTokenCounter loads the tokenizer for model, or for
// FallbackTokenizerModel when model has none.
func NewTokenCounter(model string) (*TokenCounter, error) {
	tok, err := tokenizer.NewLocalTokenizer(model)
	if err == nil {
		return &TokenCounter{tok: tok, model: model}, nil
	}
	if model == FallbackTokenizerModel {
		return nil, fmt.Errorf("load tokenizer for %s: %w", model, err)
	}

	tok, fallbackErr := tokenizer.NewLocalTokenizer(FallbackTokenizerModel)
	if fallbackErr != nil {
		return nil, fmt.Errorf("load tokenizer for %s: %w", model, err)
	}
	return &TokenCounter{tok: tok, model: FallbackTokenizerModel}, nil
}

// Model returns the model whose vocabulary is used for counting.
func (tc *TokenCounter) Model() string { return tc.model }

// CountTokens returns the number of tokens text occupies in a user turn.
func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if text == "" {
		return 0, nil
	}

	result, err := tc.tok.CountTokens([]*genai.Content{genai.NewContentFromText(text, "user")}, nil)
	if err != nil {
		return 0, fmt.Errorf("count tokens: %w", err)
	}
	return int(result.TotalTokens), nil
}
