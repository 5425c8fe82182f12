package chatgpt

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sashabaranov/go-openai"

	"github.com/thirdwheel/companion-backend/pkg/domain"
)

const (
	completionModel = openai.GPT4
	embeddingModel  = openai.AdaEmbeddingV2
)

type client struct {
	api *openai.Client
}

func NewClient(token string) (*client, error) {
	if token == "" {
		return nil, fmt.Errorf("token is empty")
	}
	return &client{api: openai.NewClient(token)}, nil
}

// StreamCompletion starts a streamed chat completion and forwards its text
// deltas on the returned channel. The channel closes when the model is done;
// a mid-stream failure is delivered as a final event with Err set.
// Cancelling ctx stops generation.
func (c *client) StreamCompletion(ctx context.Context, messages []domain.Message) (<-chan domain.StreamEvent, error) {
	req := openai.ChatCompletionRequest{
		Model:    completionModel,
		Messages: toCompletionMessages(messages),
		Stream:   true,
	}

	stream, err := c.api.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("creating chat completion stream: %w", err)
	}

	events := make(chan domain.StreamEvent)
	go func() {
		defer close(events)
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				select {
				case events <- domain.StreamEvent{Err: fmt.Errorf("receiving completion chunk: %w", err)}:
				case <-ctx.Done():
				}
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			select {
			case events <- domain.StreamEvent{Delta: resp.Choices[0].Delta.Content}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, nil
}

// Embed computes the embedding vector for a single text.
func (c *client) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: embeddingModel,
	})
	if err != nil {
		return nil, fmt.Errorf("creating embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding data in response")
	}
	return resp.Data[0].Embedding, nil
}

func toCompletionMessages(messages []domain.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, toCompletionMessage(m))
	}
	return out
}

func toCompletionMessage(m domain.Message) openai.ChatCompletionMessage {
	if !m.Content.IsMultimodal() {
		return openai.ChatCompletionMessage{Role: m.Role, Content: m.Content.Text}
	}

	parts := make([]openai.ChatMessagePart, 0, len(m.Content.Parts))
	for _, p := range m.Content.Parts {
		switch p.Type {
		case domain.ContentPartTypeImageURL:
			if p.ImageURL != nil {
				parts = append(parts, openai.ChatMessagePart{
					Type:     openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{URL: p.ImageURL.URL},
				})
			}
		default:
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeText,
				Text: p.Text,
			})
		}
	}
	return openai.ChatCompletionMessage{Role: m.Role, MultiContent: parts}
}
