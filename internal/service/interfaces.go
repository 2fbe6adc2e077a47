package service

import "context"

// GenerationService turns a prompt into model text.
type GenerationService interface {
	// Configured reports whether the upstream credential is available.
	Configured() bool
	GenerateText(ctx context.Context, prompt string) (string, error)
}

var _ GenerationService = (*GeminiService)(nil)
