// Package memory provides the per-user semantic memory layer for the nova
// backend.
//
// A Memory is a distilled, durable piece of knowledge about one user, not a
// raw message. Memories are created once, never edited; the only mutations
// are deletions (forget/clear). Every operation is scoped by user: no call
// returns or acts on another user's records.
//
// The [Store] interface is the only place that knows how a memory is
// represented on the wire. Implementations: qdrant (production), inmemory
// (tests and dependency-free local runs).
package memory

import "context"

// Memory is one persisted record in the vector collection.
type Memory struct {
	// ID is the point identifier in the vector index.
	ID string `json:"-"`

	// UserID scopes the memory to its owner.
	UserID int64 `json:"user_id"`

	// Text is the distilled memory content.
	Text string `json:"memory_text"`

	// Categories are free-form labels assigned at extraction time.
	Categories []string `json:"categories"`

	// Date is the creation date in YYYY-MM-DD form.
	Date string `json:"date"`

	// Embedding is the vector attached at insert time.
	Embedding []float32 `json:"-"`
}

// Retrieved annotates a Memory with its similarity score for one retrieval.
// Retrieved values are ephemeral; they live for a single turn and are never
// persisted.
type Retrieved struct {
	Memory
	Score float32 `json:"score"`
}

// Store handles persistence and similarity search over per-user memories.
type Store interface {
	// EnsureCollection creates the backing collection if it does not exist.
	// Idempotent: a second call performs no duplicate setup and no error.
	EnsureCollection(ctx context.Context) error

	// Insert writes memories with their embeddings already attached.
	Insert(ctx context.Context, memories []Memory) error

	// Search returns up to limit memories owned by userID ranked by
	// descending similarity to the query vector. An empty result is not an
	// error.
	Search(ctx context.Context, vector []float32, userID int64, limit int) ([]Retrieved, error)

	// List returns all memories owned by userID.
	List(ctx context.Context, userID int64) ([]Memory, error)

	// Count returns the number of memories owned by userID.
	Count(ctx context.Context, userID int64) (uint64, error)

	// Delete removes the identified memories, restricted to userID.
	Delete(ctx context.Context, userID int64, ids []string) error

	// Clear removes every memory owned by userID and returns how many were
	// removed.
	Clear(ctx context.Context, userID int64) (uint64, error)

	// Close releases store resources.
	Close() error
}
