package ai

import (
	"context"
	"errors"
)

// ErrModelUnavailable is returned when no model client is configured.
var ErrModelUnavailable = errors.New("ai model unavailable")

// Request is one text generation call.
type Request struct {
	Model          string
	Prompt         string
	Temperature    float32
	ThinkingBudget int32
}

// Model generates free text for a prompt. Replies are untrusted.
type Model interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Unavailable is a Model that always fails. It stands in when no API key is set.
type Unavailable struct{}

func (Unavailable) Generate(context.Context, Request) (string, error) {
	return "", ErrModelUnavailable
}
