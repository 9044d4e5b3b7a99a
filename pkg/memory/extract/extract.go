// Package extract implements the memory-update collaborator: it distills a
// durable fact from the trailing window of a conversation and writes it to
// the memory store unless an equivalent memory already exists.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/novalabs/nova/pkg/embeddings"
	"github.com/novalabs/nova/pkg/llm"
	"github.com/novalabs/nova/pkg/memory"
)

// DefaultDuplicateThreshold is the similarity score at or above which a
// candidate fact counts as already known and is not written.
const DefaultDuplicateThreshold = 0.90

// extractPrompt is the instruction schema for fact extraction. The model
// answers with a JSON object; a null memory means nothing is worth keeping.
const extractPrompt = `You extract long-term memories from conversations.
Read the exchange below and decide whether it contains one durable fact,
preference, or decision about the user worth remembering across conversations.

Respond with a JSON object of exactly this shape:
{"memory": "<one short third-person sentence>" or null, "categories": ["<label>", ...]}

Only extract information about the user. Do not extract small talk,
questions, or anything transient.

Conversation:
%s`

// Extractor implements memory.Updater using a language-model call for
// distillation and the store's own search for duplicate detection.
type Extractor struct {
	store     memory.Store
	embedder  embeddings.Embedder
	call      llm.CallFunc
	logger    *zap.Logger
	threshold float32
}

// Config holds configuration for the extractor.
type Config struct {
	// DuplicateThreshold overrides DefaultDuplicateThreshold when > 0.
	DuplicateThreshold float32
}

// extractOutput mirrors the JSON object extractPrompt asks for.
type extractOutput struct {
	Memory     *string  `json:"memory"`
	Categories []string `json:"categories"`
}

// NewExtractor creates a memory extractor.
func NewExtractor(cfg Config, store memory.Store, embedder embeddings.Embedder, call llm.CallFunc, logger *zap.Logger) *Extractor {
	threshold := cfg.DuplicateThreshold
	if threshold <= 0 {
		threshold = DefaultDuplicateThreshold
	}

	return &Extractor{
		store:     store,
		embedder:  embedder,
		call:      call,
		logger:    logger,
		threshold: threshold,
	}
}

// Update distills a fact from the window and writes it for userID. Returns
// true only when a memory was actually written.
func (e *Extractor) Update(ctx context.Context, userID int64, window []llm.Message) (bool, error) {
	if len(window) == 0 {
		return false, nil
	}

	raw, err := e.call(ctx, fmt.Sprintf(extractPrompt, formatWindow(window)))
	if err != nil {
		return false, fmt.Errorf("extraction call: %w", err)
	}

	var out extractOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return false, fmt.Errorf("parsing extraction output: %w", err)
	}

	if out.Memory == nil || strings.TrimSpace(*out.Memory) == "" {
		e.logger.Debug("no memory extracted", zap.Int64("user_id", userID))
		return false, nil
	}
	text := strings.TrimSpace(*out.Memory)

	vectors, err := e.embedder.Embed(ctx, []string{text})
	if err != nil {
		return false, fmt.Errorf("embedding memory: %w", err)
	}

	known, err := e.isDuplicate(ctx, vectors[0], userID)
	if err != nil {
		return false, err
	}
	if known {
		e.logger.Debug("duplicate memory skipped",
			zap.Int64("user_id", userID),
			zap.String("memory", text),
		)
		return false, nil
	}

	categories := out.Categories
	if len(categories) == 0 {
		categories = []string{"general"}
	}

	err = e.store.Insert(ctx, []memory.Memory{{
		ID:         uuid.NewString(),
		UserID:     userID,
		Text:       text,
		Categories: categories,
		Date:       time.Now().Format("2006-01-02"),
		Embedding:  vectors[0],
	}})
	if err != nil {
		return false, fmt.Errorf("inserting memory: %w", err)
	}

	e.logger.Debug("memory saved",
		zap.Int64("user_id", userID),
		zap.String("memory", text),
	)
	return true, nil
}

func (e *Extractor) isDuplicate(ctx context.Context, vector []float32, userID int64) (bool, error) {
	existing, err := e.store.Search(ctx, vector, userID, 1)
	if err != nil {
		return false, fmt.Errorf("duplicate check: %w", err)
	}
	return len(existing) > 0 && existing[0].Score >= e.threshold, nil
}

func formatWindow(window []llm.Message) string {
	var b strings.Builder
	for _, m := range window {
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	return b.String()
}

// Ensure Extractor implements memory.Updater
var _ memory.Updater = (*Extractor)(nil)
