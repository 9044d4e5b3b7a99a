// Package inmemory implements pkg/memory's Store using in-memory maps.
// Used by tests and by local runs that have no Qdrant instance available.
package inmemory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/novalabs/nova/pkg/memory"
)

// Store implements memory.Store with a per-user slice of records.
type Store struct {
	// mu guards records across concurrent turns.
	mu sync.RWMutex

	// records maps user ID to that user's memories in insertion order.
	records map[int64][]memory.Memory

	// ensured tracks collection initialization; a second EnsureCollection
	// call is a no-op.
	ensured bool
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		records: make(map[int64][]memory.Memory),
	}
}

// EnsureCollection marks the collection as initialized. Idempotent.
func (s *Store) EnsureCollection(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensured = true
	return nil
}

// Insert appends memories to their owners' collections.
func (s *Store) Insert(_ context.Context, memories []memory.Memory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range memories {
		s.records[m.UserID] = append(s.records[m.UserID], m)
	}
	return nil
}

// Search ranks the user's memories by cosine similarity to the query vector,
// descending. The sort is stable so equal scores keep insertion order.
func (s *Store) Search(_ context.Context, vector []float32, userID int64, limit int) ([]memory.Retrieved, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owned := s.records[userID]
	results := make([]memory.Retrieved, 0, len(owned))
	for _, m := range owned {
		results = append(results, memory.Retrieved{
			Memory: m,
			Score:  cosine(vector, m.Embedding),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit >= 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// List returns all memories owned by userID.
func (s *Store) List(_ context.Context, userID int64) ([]memory.Memory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owned := s.records[userID]
	out := make([]memory.Memory, len(owned))
	copy(out, owned)
	return out, nil
}

// Count returns the number of memories owned by userID.
func (s *Store) Count(_ context.Context, userID int64) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.records[userID])), nil
}

// Delete removes the identified memories belonging to userID.
func (s *Store) Delete(_ context.Context, userID int64, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doomed := make(map[string]bool, len(ids))
	for _, id := range ids {
		doomed[id] = true
	}

	kept := s.records[userID][:0]
	for _, m := range s.records[userID] {
		if !doomed[m.ID] {
			kept = append(kept, m)
		}
	}
	s.records[userID] = kept
	return nil
}

// Clear removes every memory owned by userID.
func (s *Store) Clear(_ context.Context, userID int64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := uint64(len(s.records[userID]))
	delete(s.records, userID)
	return removed, nil
}

// Close releases nothing; the store is process-local.
func (s *Store) Close() error {
	return nil
}

func cosine(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// Ensure Store implements memory.Store
var _ memory.Store = (*Store)(nil)
