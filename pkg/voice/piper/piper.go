// Package piper implements pkg/voice's Speaker against a piper HTTP TTS
// server: synthesized audio is written to a temp file and handed to a
// platform audio player.
package piper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/novalabs/nova/pkg/voice"
)

// DefaultBaseURL is the default piper HTTP server URL.
const DefaultBaseURL = "http://localhost:5000"

// Speaker wraps a piper TTS server plus a local audio player.
type Speaker struct {
	baseURL    string
	player     string
	httpClient *http.Client
}

// Config holds configuration for the piper speaker.
type Config struct {
	// BaseURL is the piper server URL. Defaults to DefaultBaseURL if empty.
	BaseURL string

	// Player is the audio player binary invoked with the synthesized wav
	// file. Defaults to a per-platform player when empty.
	Player string
}

type synthesizeRequest struct {
	Text string `json:"text"`
}

// NewSpeaker creates a speaker backed by a piper server.
func NewSpeaker(cfg Config) (*Speaker, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	player := cfg.Player
	if player == "" {
		player = defaultPlayer()
	}

	return &Speaker{
		baseURL: strings.TrimRight(baseURL, "/"),
		player:  player,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}, nil
}

// Speak synthesizes the text and plays the resulting audio.
func (s *Speaker) Speak(ctx context.Context, text string) error {
	audio, err := s.synthesize(ctx, text)
	if err != nil {
		return err
	}

	path := filepath.Join(os.TempDir(), "nova-response.wav")
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return fmt.Errorf("%w: writing audio file: %v", voice.ErrSpeech, err)
	}

	cmd := exec.CommandContext(ctx, s.player, path)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: playing audio: %v: %s", voice.ErrSpeech, err, string(out))
	}
	return nil
}

// Close releases resources held by the speaker.
func (s *Speaker) Close() error {
	// HTTP client doesn't require explicit cleanup
	return nil
}

func (s *Speaker) synthesize(ctx context.Context, text string) ([]byte, error) {
	payload, err := json.Marshal(synthesizeRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("%w: marshaling request: %v", voice.ErrSpeech, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", voice.ErrSpeech, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: sending request: %v", voice.ErrSpeech, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: piper returned status %d: %s", voice.ErrSpeech, resp.StatusCode, string(body))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading audio: %v", voice.ErrSpeech, err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("%w: piper returned no audio", voice.ErrSpeech)
	}
	return audio, nil
}

func defaultPlayer() string {
	switch runtime.GOOS {
	case "darwin":
		return "afplay"
	case "windows":
		return "wmplayer"
	default:
		return "aplay"
	}
}

// Ensure Speaker implements voice.Speaker
var _ voice.Speaker = (*Speaker)(nil)
