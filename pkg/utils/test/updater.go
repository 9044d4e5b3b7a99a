package testutils

import (
	"context"

	"github.com/novalabs/nova/pkg/llm"
)

// UpdateCall records one memory-update invocation.
type UpdateCall struct {
	UserID int64
	Window []llm.Message
}

// MockUpdater is a test memory updater that records calls and returns
// configurable results.
type MockUpdater struct {
	// Result is the write outcome Update reports when Err is nil.
	Result bool

	// Err causes Update to fail.
	Err error

	// Calls accumulates every invocation.
	Calls []UpdateCall
}

func (m *MockUpdater) Update(_ context.Context, userID int64, window []llm.Message) (bool, error) {
	m.Calls = append(m.Calls, UpdateCall{UserID: userID, Window: window})
	if m.Err != nil {
		return false, m.Err
	}
	return m.Result, nil
}
