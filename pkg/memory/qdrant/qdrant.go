// Package qdrant implements pkg/memory's Store against a Qdrant collection
// over gRPC. One collection holds every user's memories; all reads and
// deletes carry a user_id payload filter so operations never cross user
// boundaries.
package qdrant

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"

	"github.com/novalabs/nova/pkg/memory"
)

const (
	// DefaultCollection is the default collection name.
	DefaultCollection = "nova_memories"

	// DefaultHost is the default Qdrant gRPC host.
	DefaultHost = "localhost"

	// DefaultPort is the default Qdrant gRPC port.
	DefaultPort = 6334

	// listPageSize bounds a single scroll page when listing memories.
	listPageSize = 256
)

// Store is a Qdrant-backed memory store.
type Store struct {
	client     *qdrant.Client
	collection string
	dimensions uint64
}

// Config holds configuration for the Qdrant store.
type Config struct {
	// Host is the Qdrant gRPC host. Defaults to DefaultHost if empty.
	Host string

	// Port is the Qdrant gRPC port. Defaults to DefaultPort if zero.
	Port int

	// Collection is the collection name. Defaults to DefaultCollection if empty.
	Collection string

	// Dimensions is the embedding vector size the collection is created with.
	Dimensions uint64
}

// NewStore connects to Qdrant and returns a memory store.
func NewStore(cfg Config) (*Store, error) {
	host := cfg.Host
	if host == "" {
		host = DefaultHost
	}
	port := cfg.Port
	if port == 0 {
		port = DefaultPort
	}
	collection := cfg.Collection
	if collection == "" {
		collection = DefaultCollection
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to qdrant: %v", memory.ErrUnavailable, err)
	}

	return &Store{
		client:     client,
		collection: collection,
		dimensions: cfg.Dimensions,
	}, nil
}

// EnsureCollection creates the memory collection if it does not already
// exist. Safe to call repeatedly.
func (s *Store) EnsureCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("%w: checking collection: %v", memory.ErrUnavailable, err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.dimensions,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("%w: creating collection: %v", memory.ErrUnavailable, err)
	}
	return nil
}

// Insert writes memories with their embeddings attached.
func (s *Store) Insert(ctx context.Context, memories []memory.Memory) error {
	if len(memories) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(memories))
	for _, m := range memories {
		categories := make([]any, 0, len(m.Categories))
		for _, c := range m.Categories {
			categories = append(categories, c)
		}

		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(m.ID),
			Vectors: qdrant.NewVectors(m.Embedding...),
			Payload: qdrant.NewValueMap(map[string]any{
				"user_id":     m.UserID,
				"memory_text": m.Text,
				"categories":  categories,
				"date":        m.Date,
			}),
		})
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("%w: upserting points: %v", memory.ErrUnavailable, err)
	}
	return nil
}

// Search returns up to limit memories for userID ranked by descending
// similarity, as scored by Qdrant. Ties keep Qdrant's own order.
func (s *Store) Search(ctx context.Context, vector []float32, userID int64, limit int) ([]memory.Retrieved, error) {
	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Filter:         userFilter(userID),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: querying points: %v", memory.ErrUnavailable, err)
	}

	results := make([]memory.Retrieved, 0, len(points))
	for _, p := range points {
		results = append(results, memory.Retrieved{
			Memory: payloadToMemory(p.GetId(), p.GetPayload()),
			Score:  p.GetScore(),
		})
	}
	return results, nil
}

// List returns all memories owned by userID.
func (s *Store) List(ctx context.Context, userID int64) ([]memory.Memory, error) {
	var (
		memories []memory.Memory
		offset   *qdrant.PointId
	)

	for {
		page, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: s.collection,
			Filter:         userFilter(userID),
			Limit:          qdrant.PtrOf(uint32(listPageSize)),
			Offset:         offset,
			WithPayload:    qdrant.NewWithPayload(true),
		})
		if err != nil {
			return nil, fmt.Errorf("%w: scrolling points: %v", memory.ErrUnavailable, err)
		}
		for _, p := range page {
			memories = append(memories, payloadToMemory(p.GetId(), p.GetPayload()))
		}
		if len(page) < listPageSize {
			return memories, nil
		}
		offset = page[len(page)-1].GetId()
	}
}

// Count returns the number of memories owned by userID.
func (s *Store) Count(ctx context.Context, userID int64) (uint64, error) {
	count, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collection,
		Filter:         userFilter(userID),
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("%w: counting points: %v", memory.ErrUnavailable, err)
	}
	return count, nil
}

// Delete removes the identified memories. The selector combines the point
// IDs with the user_id filter so a stale or hostile ID can never delete
// another user's memory.
func (s *Store) Delete(ctx context.Context, userID int64, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	pointIDs := make([]*qdrant.PointId, 0, len(ids))
	for _, id := range ids {
		pointIDs = append(pointIDs, qdrant.NewID(id))
	}

	filter := userFilter(userID)
	filter.Must = append(filter.Must, qdrant.NewHasID(pointIDs...))

	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points:         qdrant.NewPointsSelectorFilter(filter),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("%w: deleting points: %v", memory.ErrUnavailable, err)
	}
	return nil
}

// Clear removes every memory owned by userID and returns how many were
// removed.
func (s *Store) Clear(ctx context.Context, userID int64) (uint64, error) {
	count, err := s.Count(ctx, userID)
	if err != nil {
		return 0, err
	}

	_, err = s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points:         qdrant.NewPointsSelectorFilter(userFilter(userID)),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("%w: clearing points: %v", memory.ErrUnavailable, err)
	}
	return count, nil
}

// Close releases the gRPC connection.
func (s *Store) Close() error {
	return s.client.Close()
}

func userFilter(userID int64) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatchInt("user_id", userID),
		},
	}
}

func payloadToMemory(id *qdrant.PointId, payload map[string]*qdrant.Value) memory.Memory {
	m := memory.Memory{
		ID: id.GetUuid(),
	}
	if v, ok := payload["user_id"]; ok {
		m.UserID = v.GetIntegerValue()
	}
	if v, ok := payload["memory_text"]; ok {
		m.Text = v.GetStringValue()
	}
	if v, ok := payload["date"]; ok {
		m.Date = v.GetStringValue()
	}
	if v, ok := payload["categories"]; ok {
		for _, c := range v.GetListValue().GetValues() {
			m.Categories = append(m.Categories, c.GetStringValue())
		}
	}
	return m
}

// Ensure Store implements memory.Store
var _ memory.Store = (*Store)(nil)
