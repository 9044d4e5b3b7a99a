// Package whisper implements pkg/voice's Transcriber against a whisper.cpp
// server's inference endpoint.
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/novalabs/nova/pkg/voice"
)

// DefaultBaseURL is the default whisper.cpp server URL.
const DefaultBaseURL = "http://localhost:8178"

// Transcriber wraps a whisper.cpp server.
type Transcriber struct {
	baseURL    string
	httpClient *http.Client
}

// Config holds configuration for the whisper transcriber.
type Config struct {
	// BaseURL is the whisper.cpp server URL. Defaults to DefaultBaseURL if
	// empty.
	BaseURL string
}

// inferenceResponse is the whisper.cpp server's response body.
type inferenceResponse struct {
	Text  string `json:"text"`
	Error string `json:"error"`
}

// NewTranscriber creates a transcriber backed by a whisper.cpp server.
func NewTranscriber(cfg Config) (*Transcriber, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Transcriber{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}, nil
}

// Transcribe uploads the audio bytes and returns the recognized text.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", fmt.Errorf("%w: building form: %v", voice.ErrSpeech, err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("%w: writing form: %v", voice.ErrSpeech, err)
	}
	if err := writer.WriteField("response_format", "json"); err != nil {
		return "", fmt.Errorf("%w: writing form: %v", voice.ErrSpeech, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("%w: closing form: %v", voice.ErrSpeech, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/inference", &body)
	if err != nil {
		return "", fmt.Errorf("%w: creating request: %v", voice.ErrSpeech, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: sending request: %v", voice.ErrSpeech, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: whisper returned status %d: %s", voice.ErrSpeech, resp.StatusCode, string(payload))
	}

	var out inferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", voice.ErrSpeech, err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("%w: whisper error: %s", voice.ErrSpeech, out.Error)
	}

	return strings.TrimSpace(out.Text), nil
}

// Close releases resources held by the transcriber.
func (t *Transcriber) Close() error {
	// HTTP client doesn't require explicit cleanup
	return nil
}

// Ensure Transcriber implements voice.Transcriber
var _ voice.Transcriber = (*Transcriber)(nil)
