package testutils

import (
	"context"

	"github.com/novalabs/nova/pkg/llm"
)

// MockGenerator is a test generator that records calls and returns
// configurable results.
type MockGenerator struct {
	// Reply is returned by Generate when Err is nil.
	Reply llm.Reply

	// Err causes Generate to fail.
	Err error

	// Calls counts Generate invocations.
	Calls int

	// LastTranscript, LastMemories, and LastQuestion record the most recent
	// Generate inputs.
	LastTranscript []llm.Message
	LastMemories   []string
	LastQuestion   string
}

func (m *MockGenerator) Generate(_ context.Context, transcript []llm.Message, memories []string, question string) (*llm.Reply, error) {
	m.Calls++
	m.LastTranscript = transcript
	m.LastMemories = memories
	m.LastQuestion = question

	if m.Err != nil {
		return nil, m.Err
	}
	reply := m.Reply
	return &reply, nil
}

func (m *MockGenerator) Close() error {
	return nil
}
