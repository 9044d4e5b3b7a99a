// Package voice defines the speech collaborators: transcription (STT) and
// synthesis (TTS). Both are standalone utilities outside the chat pipeline;
// their failures are reported to the caller as typed errors rather than
// absorbed into a chat fallback.
package voice

import (
	"context"
	"errors"
)

// ErrSpeech marks transcription or synthesis failures.
var ErrSpeech = errors.New("speech io failed")

// Transcriber converts recorded audio into text.
type Transcriber interface {
	// Transcribe returns the recognized text for the audio bytes.
	Transcribe(ctx context.Context, audio []byte) (string, error)

	// Close releases transcriber resources.
	Close() error
}

// Speaker synthesizes text into audible speech.
type Speaker interface {
	// Speak synthesizes and plays the given text.
	Speak(ctx context.Context, text string) error

	// Close releases speaker resources.
	Close() error
}
