package llm

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when a model answers without any usable text,
// typically because the prompt or the answer was blocked.
var ErrEmptyResponse = errors.New("empty model response")

// Client generates text from a single prompt.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
