package port

import "context"

// GenerateInput carries one stateless generation-service round trip: a task
// description and a short description of the expected output shape. No
// conversational memory is assumed between calls.
type GenerateInput struct {
	Task           string
	ExpectedOutput string
}

// GenerateOutput contains the free-text result from a generation provider.
type GenerateOutput struct {
	Text      string
	ModelUsed string
}

// TextGenerator abstracts the external text-generation service. Its output is
// non-deterministic and structurally unreliable; callers must never trust it
// beyond feeding it into the next pipeline stage.
type TextGenerator interface {
	Generate(ctx context.Context, input GenerateInput) (*GenerateOutput, error)
}
