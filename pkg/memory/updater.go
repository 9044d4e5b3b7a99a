package memory

import (
	"context"

	"github.com/novalabs/nova/pkg/llm"
)

// Updater is the memory-update collaborator: it inspects the trailing window
// of a finished exchange and decides whether to persist a new memory.
//
// Implementations may decline to write (nothing worth keeping, duplicate of
// an existing memory). The returned bool reflects the actual write outcome,
// not intent.
type Updater interface {
	Update(ctx context.Context, userID int64, window []llm.Message) (bool, error)
}
