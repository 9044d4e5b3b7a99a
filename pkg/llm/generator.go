package llm

import (
	"context"
	"errors"
)

// ErrGeneration is returned when the language model collaborator fails to
// produce a reply.
var ErrGeneration = errors.New("generation failed")

// Reply is the structured output of one generation call.
type Reply struct {
	// Response is the assistant's reply text. May be empty; callers decide
	// what to substitute.
	Response string

	// SaveMemory signals that the exchange contains information worth
	// persisting. Anything the model returns that is not a strict JSON true
	// is treated as false.
	SaveMemory bool
}

// Generator produces a reply for the current question given the prior
// transcript and the memories retrieved for it.
type Generator interface {
	// Generate delegates to the language model. The transcript excludes the
	// current question; memories are pre-formatted memory texts, most
	// relevant first.
	Generate(ctx context.Context, transcript []Message, memories []string, question string) (*Reply, error)

	// Close releases any resources held by the generator.
	Close() error
}

// CallFunc is a single prompt-in, text-out call into a language model.
// Used by collaborators that need raw structured-output calls outside the
// conversational Generate schema (e.g. memory extraction).
type CallFunc func(ctx context.Context, prompt string) (string, error)
