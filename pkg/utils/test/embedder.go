package testutils

import (
	"context"
	"fmt"
)

// MockEmbedder is a test embedder that returns predictable embeddings
type MockEmbedder struct {
	Embeddings map[string][]float32

	// FailOn causes Embed to return an error when any input text matches
	FailOn string

	// Calls accumulates every batch passed to Embed.
	Calls [][]string
}

func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{
		Embeddings: make(map[string][]float32),
	}
}

func (m *MockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	m.Calls = append(m.Calls, texts)

	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		if m.FailOn != "" && text == m.FailOn {
			return nil, fmt.Errorf("mock embedding failure for: %s", text)
		}
		if emb, ok := m.Embeddings[text]; ok {
			vectors = append(vectors, emb)
			continue
		}
		// Default embedding for any text
		vectors = append(vectors, []float32{0.1, 0.2, 0.3})
	}
	return vectors, nil
}

func (m *MockEmbedder) Close() error {
	return nil
}
