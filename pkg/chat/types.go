// Package chat implements the retrieval-augmented chat pipeline: command
// detection, bounded per-user memory retrieval, generation, and the
// conditional save step, composed by [Orchestrator].
package chat

import (
	"errors"
	"fmt"

	"github.com/novalabs/nova/pkg/llm"
)

// DefaultUserID is used when a request does not carry a user id.
const DefaultUserID int64 = 1

// ErrInvalidRequest marks request-shape violations. These are the only
// errors ProcessTurn returns to the transport; everything downstream is
// absorbed into a safe fallback reply.
var ErrInvalidRequest = errors.New("invalid chat request")

// Request is the body of a /chat call. Messages is the full transcript in
// chronological order; the last entry is the current question.
type Request struct {
	Messages []llm.Message `json:"messages"`
	UserID   int64         `json:"user_id"`
}

// Response is one assistant turn.
type Response struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Validate checks request shape: a non-empty transcript whose current
// message is non-blank after trimming.
func (r *Request) Validate() error {
	if len(r.Messages) == 0 {
		return fmt.Errorf("%w: no messages provided", ErrInvalidRequest)
	}
	if r.Messages[len(r.Messages)-1].IsBlank() {
		return fmt.Errorf("%w: empty message content", ErrInvalidRequest)
	}
	return nil
}

// EffectiveUserID returns the request's user id, defaulting to
// DefaultUserID when unset.
func (r *Request) EffectiveUserID() int64 {
	if r.UserID == 0 {
		return DefaultUserID
	}
	return r.UserID
}
