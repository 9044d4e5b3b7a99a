package testutils

import "context"

// MockTranscriber is a test transcriber
type MockTranscriber struct {
	Text string
	Err  error
}

func (m *MockTranscriber) Transcribe(_ context.Context, _ []byte) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return m.Text, nil
}

func (m *MockTranscriber) Close() error {
	return nil
}

// MockSpeaker is a test speaker that records what it was asked to say.
type MockSpeaker struct {
	Err    error
	Spoken []string
}

func (m *MockSpeaker) Speak(_ context.Context, text string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Spoken = append(m.Spoken, text)
	return nil
}

func (m *MockSpeaker) Close() error {
	return nil
}
