package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/thirdwheel/companion-backend/pkg/domain"
)

// retrievalWidth is how many passages ground every answer. Fixed, not
// request-configurable.
const retrievalWidth = 5

type LLMClient interface {
	StreamCompletion(ctx context.Context, messages []domain.Message) (<-chan domain.StreamEvent, error)
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type ContextStore interface {
	Count(ctx context.Context) (int, error)
	Search(ctx context.Context, embedding []float32, topK int) ([]domain.Passage, error)
	Close() error
}

// Engine answers a user turn by retrieving the most similar stored passages
// and streaming a persona-grounded completion over them.
type Engine struct {
	llm      LLMClient
	embedder Embedder
	store    ContextStore
	persona  string
}

// New composes an engine over an already-opened store. An empty store is a
// configuration error: the engine never queries it and the operator has to
// run the offline build step.
func New(ctx context.Context, llm LLMClient, embedder Embedder, store ContextStore, persona string) (*Engine, error) {
	count, err := store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting store documents: %w", err)
	}
	if count == 0 {
		return nil, domain.ErrStoreNotInitialized
	}
	if persona == "" {
		persona = DefaultSystemPrompt
	}
	return &Engine{
		llm:      llm,
		embedder: embedder,
		store:    store,
		persona:  persona,
	}, nil
}

// ChatStream answers the current turn grounded in retrieved context. The
// first event on the returned channel carries the retrieved passages; the
// rest are text deltas from the model.
func (e *Engine) ChatStream(ctx context.Context, current domain.MessageContent, history []domain.Message) (<-chan domain.StreamEvent, error) {
	embedding, err := e.embedder.Embed(ctx, current.PlainText())
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	passages, err := e.store.Search(ctx, embedding, retrievalWidth)
	if err != nil {
		return nil, fmt.Errorf("searching context store: %w", err)
	}

	messages := make([]domain.Message, 0, len(history)+2)
	messages = append(messages, domain.Message{
		Role:    domain.RoleSystem,
		Content: domain.TextContent(e.systemMessage(passages)),
	})
	messages = append(messages, lo.Filter(history, func(m domain.Message, _ int) bool {
		return m.Role != domain.RoleSystem
	})...)
	messages = append(messages, domain.Message{Role: domain.RoleUser, Content: current})

	completion, err := e.llm.StreamCompletion(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("starting completion: %w", err)
	}

	events := make(chan domain.StreamEvent)
	go func() {
		defer close(events)

		select {
		case events <- domain.StreamEvent{Passages: passages}:
		case <-ctx.Done():
			return
		}
		for ev := range completion {
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, nil
}

// Close releases the underlying store.
func (e *Engine) Close() error {
	return e.store.Close()
}

func (e *Engine) systemMessage(passages []domain.Passage) string {
	if len(passages) == 0 {
		return e.persona
	}

	var sb strings.Builder
	sb.WriteString(e.persona)
	sb.WriteString("\n\nContext information is below.\n---------------------\n")
	for _, p := range passages {
		sb.WriteString(p.Text)
		sb.WriteString("\n\n")
	}
	sb.WriteString("---------------------")
	return sb.String()
}
