package chat

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/novalabs/nova/pkg/embeddings"
	"github.com/novalabs/nova/pkg/memory"
)

// Intent is one of the closed set of memory-management commands a raw
// utterance can classify as.
type Intent int

const (
	IntentNone Intent = iota
	IntentForget
	IntentList
	IntentSearch
	IntentCount
	IntentClear
)

// forgetScoreFloor is the minimum similarity for a "forget <reference>" to
// resolve to an existing memory. Below it the interpreter reports no match
// instead of deleting a guess.
const forgetScoreFloor = 0.30

// searchResultLimit bounds replies to an explicit memory search.
const searchResultLimit = 5

// intentPattern couples a compiled matcher with the intent it produces.
// Patterns with a capture group yield the command argument.
type intentPattern struct {
	intent Intent
	re     *regexp.Regexp
}

// Patterns are tried in order. Clear outranks forget so "forget everything"
// never resolves a reference, and the exact list forms outrank the
// argument-capturing search forms.
var intentPatterns = []intentPattern{
	{IntentClear, regexp.MustCompile(`^forget everything$`)},
	{IntentClear, regexp.MustCompile(`^(?:please )?(?:clear|delete|erase|wipe) (?:all )?(?:of )?(?:my |your )?memor(?:y|ies)$`)},
	{IntentCount, regexp.MustCompile(`^how many memories do (?:i|you) have$`)},
	{IntentCount, regexp.MustCompile(`^count (?:my |your )?memories$`)},
	{IntentCount, regexp.MustCompile(`^memory count$`)},
	{IntentList, regexp.MustCompile(`^list (?:all )?(?:my |your )?memories$`)},
	{IntentList, regexp.MustCompile(`^show (?:me )?(?:all )?(?:my |your )?memories$`)},
	{IntentList, regexp.MustCompile(`^what do you remember(?: about me)?$`)},
	{IntentSearch, regexp.MustCompile(`^search (?:my |your )?memor(?:y|ies) for (.+)$`)},
	{IntentSearch, regexp.MustCompile(`^find (?:a )?memor(?:y|ies) about (.+)$`)},
	{IntentSearch, regexp.MustCompile(`^do you remember (.+)$`)},
	{IntentSearch, regexp.MustCompile(`^what do you remember about (.+)$`)},
	{IntentForget, regexp.MustCompile(`^forget (?:about )?(.+)$`)},
	{IntentForget, regexp.MustCompile(`^(?:delete|remove) (?:the |your )?memor(?:y|ies) (?:about|of) (.+)$`)},
}

// Classify maps a raw utterance onto the intent set. It is pure pattern
// matching: deterministic, no model call. The second return value is the
// command argument (forget reference or search query), empty for intents
// that take none.
func Classify(utterance string) (Intent, string) {
	normalized := strings.ToLower(strings.TrimSpace(utterance))
	normalized = strings.TrimRight(normalized, ".!?")
	normalized = strings.Join(strings.Fields(normalized), " ")

	for _, p := range intentPatterns {
		m := p.re.FindStringSubmatch(normalized)
		if m == nil {
			continue
		}
		arg := ""
		if len(m) > 1 {
			arg = strings.TrimSpace(m[1])
		}
		return p.intent, arg
	}
	return IntentNone, ""
}

// Interpreter executes classified memory commands against the store. It
// never calls the generation collaborator and never creates memories;
// command-path side effects are deletion and enumeration only.
type Interpreter struct {
	store    memory.Store
	embedder embeddings.Embedder
}

// NewInterpreter creates a command interpreter.
func NewInterpreter(store memory.Store, embedder embeddings.Embedder) *Interpreter {
	return &Interpreter{
		store:    store,
		embedder: embedder,
	}
}

// Detect classifies the utterance and, when it is a command, executes it
// scoped to userID. The bool reports whether the utterance was a command;
// when it is and execution fails, the error is returned with the bool still
// true so callers keep the short-circuit.
func (i *Interpreter) Detect(ctx context.Context, utterance string, userID int64) (string, bool, error) {
	intent, arg := Classify(utterance)
	if intent == IntentNone {
		return "", false, nil
	}

	reply, err := i.run(ctx, intent, arg, userID)
	if err != nil {
		return "", true, err
	}
	return reply, true, nil
}

func (i *Interpreter) run(ctx context.Context, intent Intent, arg string, userID int64) (string, error) {
	switch intent {
	case IntentClear:
		return i.clear(ctx, userID)
	case IntentCount:
		return i.count(ctx, userID)
	case IntentList:
		return i.list(ctx, userID)
	case IntentSearch:
		return i.search(ctx, arg, userID)
	case IntentForget:
		return i.forget(ctx, arg, userID)
	default:
		return "", fmt.Errorf("unhandled intent %d", intent)
	}
}

func (i *Interpreter) clear(ctx context.Context, userID int64) (string, error) {
	removed, err := i.store.Clear(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("clearing memories: %w", err)
	}
	if removed == 0 {
		return "You don't have any memories stored yet.", nil
	}
	return fmt.Sprintf("Done. I've cleared %s.", pluralize(removed)), nil
}

func (i *Interpreter) count(ctx context.Context, userID int64) (string, error) {
	count, err := i.store.Count(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("counting memories: %w", err)
	}
	if count == 0 {
		return "You don't have any memories stored yet.", nil
	}
	return fmt.Sprintf("You have %s stored.", pluralize(count)), nil
}

func (i *Interpreter) list(ctx context.Context, userID int64) (string, error) {
	memories, err := i.store.List(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("listing memories: %w", err)
	}
	if len(memories) == 0 {
		return "You don't have any memories stored yet.", nil
	}

	var b strings.Builder
	b.WriteString("Here's everything I remember:")
	for _, m := range memories {
		b.WriteString("\n- ")
		b.WriteString(m.Text)
		if m.Date != "" {
			b.WriteString(" (")
			b.WriteString(m.Date)
			b.WriteString(")")
		}
	}
	return b.String(), nil
}

func (i *Interpreter) search(ctx context.Context, query string, userID int64) (string, error) {
	results, err := i.semanticLookup(ctx, query, userID, searchResultLimit)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return fmt.Sprintf("I couldn't find any memories matching %q.", query), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Here's what I found for %q:", query)
	for _, r := range results {
		b.WriteString("\n- ")
		b.WriteString(r.Text)
	}
	return b.String(), nil
}

func (i *Interpreter) forget(ctx context.Context, reference string, userID int64) (string, error) {
	results, err := i.semanticLookup(ctx, reference, userID, 1)
	if err != nil {
		return "", err
	}
	if len(results) == 0 || results[0].Score < forgetScoreFloor {
		return fmt.Sprintf("I couldn't find a memory matching %q.", reference), nil
	}

	if err := i.store.Delete(ctx, userID, []string{results[0].ID}); err != nil {
		return "", fmt.Errorf("deleting memory: %w", err)
	}
	return fmt.Sprintf("Done. I've forgotten: %q.", results[0].Text), nil
}

func (i *Interpreter) semanticLookup(ctx context.Context, query string, userID int64, limit int) ([]memory.Retrieved, error) {
	vectors, err := i.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	results, err := i.store.Search(ctx, vectors[0], userID, limit)
	if err != nil {
		return nil, fmt.Errorf("searching memories: %w", err)
	}
	return results, nil
}

func pluralize(n uint64) string {
	if n == 1 {
		return "1 memory"
	}
	return fmt.Sprintf("%d memories", n)
}
