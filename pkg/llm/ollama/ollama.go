// Package ollama implements pkg/llm's Generator against Ollama's chat API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/novalabs/nova/pkg/llm"
)

const (
	// DefaultModel is the default chat model.
	DefaultModel = "dolphin3"

	// DefaultBaseURL is the default Ollama API URL.
	DefaultBaseURL = "http://localhost:11434"
)

// systemPrompt is the fixed instruction schema for conversational turns.
// The model must answer with a JSON object carrying the reply text and a
// save-intent flag.
const systemPrompt = `You are Nova, a helpful assistant with long-term memory.
Use the provided memories about the user when they are relevant, but never
mention the memory mechanism itself.

Respond with a JSON object of exactly this shape:
{"response": "<your reply to the user>", "save_memory": <true or false>}

Set save_memory to true only when the user's latest message contains a durable
personal fact, preference, or decision worth remembering across conversations.`

// Generator wraps Ollama's chat API.
type Generator struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// GeneratorConfig holds configuration for the Ollama generator.
type GeneratorConfig struct {
	// BaseURL is the Ollama API URL (e.g., "http://localhost:11434").
	// Defaults to DefaultBaseURL if empty.
	BaseURL string

	// Model is the chat model to use. Defaults to DefaultModel if empty.
	Model string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Format   string        `json:"format,omitempty"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
	Error   string      `json:"error"`
}

// generationOutput mirrors the JSON object the system prompt asks for.
// SaveMemory stays raw so that anything other than a literal true coerces
// to false.
type generationOutput struct {
	Response   string          `json:"response"`
	SaveMemory json.RawMessage `json:"save_memory"`
}

// NewGenerator creates a generator backed by Ollama's chat API.
func NewGenerator(cfg GeneratorConfig) (*Generator, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Generator{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}, nil
}

// Generate produces a reply and save-intent flag for the current question.
func (g *Generator) Generate(ctx context.Context, transcript []llm.Message, memories []string, question string) (*llm.Reply, error) {
	messages := make([]chatMessage, 0, len(transcript)+2)
	messages = append(messages, chatMessage{Role: llm.RoleSystem, Content: buildSystemPrompt(memories)})
	for _, m := range transcript {
		messages = append(messages, chatMessage{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, chatMessage{Role: llm.RoleUser, Content: question})

	raw, err := g.chat(ctx, chatRequest{
		Model:    g.model,
		Messages: messages,
		Stream:   false,
		Format:   "json",
	})
	if err != nil {
		return nil, err
	}

	var out generationOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		// Model ignored the schema; treat the raw text as the reply.
		return &llm.Reply{Response: raw, SaveMemory: false}, nil
	}

	return &llm.Reply{
		Response:   out.Response,
		SaveMemory: coerceBool(out.SaveMemory),
	}, nil
}

// Close releases resources held by the generator.
func (g *Generator) Close() error {
	// HTTP client doesn't require explicit cleanup
	return nil
}

func (g *Generator) chat(ctx context.Context, request chatRequest) (string, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", llm.ErrGeneration, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: create request: %v", llm.ErrGeneration, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: send request: %v", llm.ErrGeneration, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: ollama status %d: %s", llm.ErrGeneration, resp.StatusCode, string(body))
	}

	var response chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", llm.ErrGeneration, err)
	}
	if response.Error != "" {
		return "", fmt.Errorf("%w: ollama error: %s", llm.ErrGeneration, response.Error)
	}

	return response.Message.Content, nil
}

// buildSystemPrompt injects the retrieved memories into the instruction
// schema, most relevant first.
func buildSystemPrompt(memories []string) string {
	if len(memories) == 0 {
		return systemPrompt
	}

	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\n\nWhat you remember about this user:\n")
	for _, m := range memories {
		b.WriteString("- ")
		b.WriteString(m)
		b.WriteString("\n")
	}
	return b.String()
}

// coerceBool treats only a literal JSON true as true. Missing values,
// strings, numbers, and anything else default to false.
func coerceBool(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "true"
}

// NewCallFunc returns a raw prompt-in, text-out call against Ollama's chat
// API with JSON-constrained output.
func NewCallFunc(baseURL, model string) llm.CallFunc {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	g := &Generator{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}

	return func(ctx context.Context, prompt string) (string, error) {
		return g.chat(ctx, chatRequest{
			Model: g.model,
			Messages: []chatMessage{
				{Role: llm.RoleUser, Content: prompt},
			},
			Stream: false,
			Format: "json",
		})
	}
}

// Ensure Generator implements llm.Generator
var _ llm.Generator = (*Generator)(nil)
