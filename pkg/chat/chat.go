package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/novalabs/nova/pkg/embeddings"
	"github.com/novalabs/nova/pkg/llm"
	"github.com/novalabs/nova/pkg/memory"
	"github.com/novalabs/nova/pkg/utils"
)

// Fixed fallback replies. A turn never surfaces blank content or a raw
// internal error; request-shape violations are the one exception and are
// returned as errors instead.
const (
	// emptyReplyFallback substitutes for a blank generation result.
	emptyReplyFallback = "I'm having trouble formulating a response right now. Could you rephrase that?"

	// turnErrorFallback substitutes for any collaborator failure mid-turn.
	turnErrorFallback = "I encountered an error while processing your message. " +
		"Please check that Ollama is running with the configured model loaded."
)

// Config holds orchestrator policy knobs.
type Config struct {
	// RetrievalLimit bounds how many memories one turn retrieves.
	// Defaults to 3.
	RetrievalLimit int

	// SaveWindow is how many trailing messages (including the new reply)
	// the save step hands to the memory updater. Defaults to 6.
	SaveWindow int
}

// Orchestrator composes command detection, retrieval, generation, and the
// save gate into the end-to-end turn pipeline. Collaborators are injected
// once at startup; the orchestrator owns only policy, not their lifecycles.
type Orchestrator struct {
	config      Config
	store       memory.Store
	embedder    embeddings.Embedder
	generator   llm.Generator
	updater     memory.Updater
	interpreter *Interpreter
	logger      *zap.Logger
}

// NewOrchestrator creates the turn pipeline.
func NewOrchestrator(
	config Config,
	store memory.Store,
	embedder embeddings.Embedder,
	generator llm.Generator,
	updater memory.Updater,
	logger *zap.Logger,
) *Orchestrator {
	if config.RetrievalLimit <= 0 {
		config.RetrievalLimit = 3
	}
	if config.SaveWindow <= 0 {
		config.SaveWindow = 6
	}

	return &Orchestrator{
		config:      config,
		store:       store,
		embedder:    embedder,
		generator:   generator,
		updater:     updater,
		interpreter: NewInterpreter(store, embedder),
		logger:      logger,
	}
}

// ProcessTurn runs one chat turn: validate, command check, retrieve,
// generate, save, assemble. The returned error is non-nil only for
// ErrInvalidRequest; collaborator failures degrade to a fixed fallback
// reply so conversational continuity survives operational trouble.
func (o *Orchestrator) ProcessTurn(ctx context.Context, req *Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	userID := req.EffectiveUserID()
	question := strings.TrimSpace(req.Messages[len(req.Messages)-1].Content)

	o.logger.Debug("processing turn",
		zap.Int64("user_id", userID),
		zap.String("question", utils.Truncate(question, 120)),
	)

	// Memory commands short-circuit the conversational path entirely: no
	// retrieval, no generation, no save.
	reply, isCommand, err := o.interpreter.Detect(ctx, question, userID)
	if isCommand {
		if err != nil {
			o.logger.Error("memory command failed", zap.Int64("user_id", userID), zap.Error(err))
			return fallback(), nil
		}
		o.logger.Debug("memory command handled", zap.Int64("user_id", userID))
		return assistant(reply), nil
	}

	retrieved, err := o.retrieve(ctx, question, userID)
	if err != nil {
		o.logger.Error("memory retrieval failed", zap.Int64("user_id", userID), zap.Error(err))
		return fallback(), nil
	}
	o.logger.Debug("memories retrieved",
		zap.Int64("user_id", userID),
		zap.Int("count", len(retrieved)),
	)

	text, saveIntent, err := o.generate(ctx, req.Messages[:len(req.Messages)-1], retrieved, question)
	if err != nil {
		o.logger.Error("generation failed", zap.Int64("user_id", userID), zap.Error(err))
		return fallback(), nil
	}

	if saveIntent {
		o.save(ctx, req.Messages, text, userID)
	}

	return assistant(o.assemble(text, retrieved)), nil
}

// retrieve embeds the question and fetches the user's nearest memories.
func (o *Orchestrator) retrieve(ctx context.Context, question string, userID int64) ([]memory.Retrieved, error) {
	vectors, err := o.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}

	results, err := o.store.Search(ctx, vectors[0], userID, o.config.RetrievalLimit)
	if err != nil {
		return nil, fmt.Errorf("searching memories: %w", err)
	}
	return results, nil
}

// generate calls the language model and applies the blank-reply fallback and
// strict save-flag coercion.
func (o *Orchestrator) generate(ctx context.Context, transcript []llm.Message, retrieved []memory.Retrieved, question string) (string, bool, error) {
	texts := make([]string, 0, len(retrieved))
	for _, r := range retrieved {
		texts = append(texts, r.Text)
	}

	reply, err := o.generator.Generate(ctx, transcript, texts, question)
	if err != nil {
		return "", false, err
	}

	text := strings.TrimSpace(reply.Response)
	if text == "" {
		return emptyReplyFallback, false, nil
	}
	return text, reply.SaveMemory, nil
}

// save appends the new reply to the history and hands the trailing window to
// the memory updater. Best effort: failures are logged, never surfaced.
func (o *Orchestrator) save(ctx context.Context, history []llm.Message, replyText string, userID int64) {
	full := make([]llm.Message, 0, len(history)+1)
	full = append(full, history...)
	full = append(full, llm.NewMessage(llm.RoleAssistant, replyText))

	window := full
	if len(window) > o.config.SaveWindow {
		window = window[len(window)-o.config.SaveWindow:]
	}

	saved, err := o.updater.Update(ctx, userID, window)
	switch {
	case err != nil:
		o.logger.Warn("memory save failed", zap.Int64("user_id", userID), zap.Error(err))
	case saved:
		o.logger.Debug("memory saved", zap.Int64("user_id", userID))
	default:
		o.logger.Debug("no memory saved", zap.Int64("user_id", userID))
	}
}

// assemble appends a machine-parsable rendering of the top retrieved memory
// for client-side display. The primary reply text always comes first.
func (o *Orchestrator) assemble(text string, retrieved []memory.Retrieved) string {
	if len(retrieved) == 0 {
		return text
	}

	fragment, err := json.Marshal(retrieved[0])
	if err != nil {
		return text
	}
	return text + "\n" + string(fragment)
}

func assistant(content string) *Response {
	return &Response{Role: llm.RoleAssistant, Content: content}
}

func fallback() *Response {
	return assistant(turnErrorFallback)
}
