package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/thirdwheel/companion-backend/pkg/api/response"
	"github.com/thirdwheel/companion-backend/pkg/api/stream"
	"github.com/thirdwheel/companion-backend/pkg/detached"
	"github.com/thirdwheel/companion-backend/pkg/domain"
	"github.com/thirdwheel/companion-backend/pkg/engine"
	"github.com/thirdwheel/companion-backend/pkg/logger"
)

type EngineProvider interface {
	Engine(ctx context.Context) (*engine.Engine, error)
}

type Notifier interface {
	Notify(ctx context.Context, user domain.MessageContent) error
}

type chat struct {
	engines  EngineProvider
	notifier Notifier
	writer   response.JSONResponseWriter
}

func NewChat(engines EngineProvider, notifier Notifier) *chat {
	return &chat{
		engines:  engines,
		notifier: notifier,
		writer:   response.JSONResponseWriter{},
	}
}

func (h *chat) HandleChatMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writer.WriteErrorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx := logger.ContextWithRequestID(r.Context(), uuid.NewString())

	var req domain.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writer.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	// Pop the current turn; everything before it is history. Validation
	// happens before any external call.
	if len(req.Messages) == 0 {
		h.writer.WriteErrorResponse(w, http.StatusBadRequest, domain.ErrLastMessageNotFromUser.Error())
		return
	}
	last := req.Messages[len(req.Messages)-1]
	history := req.Messages[:len(req.Messages)-1]
	if last.Role != domain.RoleUser {
		h.writer.WriteErrorResponse(w, http.StatusBadRequest, domain.ErrLastMessageNotFromUser.Error())
		return
	}

	var imageURL string
	if req.Data != nil {
		imageURL = req.Data.ImageURL
	}
	current := convertMessageContent(last.Content, imageURL)

	slog.InfoContext(ctx, "handling chat message", "history", len(history), "multimodal", current.IsMultimodal())

	// The webhook is never awaited: it must not block, delay or fail the
	// chat response, and it may outlive it.
	h.dispatchNotification(current)

	eng, err := h.engines.Engine(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "building chat engine", logger.Err(err))
		h.writer.WriteErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	events, err := eng.ChatStream(ctx, current, history)
	if err != nil {
		slog.ErrorContext(ctx, "starting chat stream", logger.Err(err))
		h.writer.WriteErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Headers are sent as streaming starts; a later failure can only
	// terminate the response.
	if err := stream.Write(w, events, stream.Options{ImageURL: imageURL}); err != nil {
		slog.ErrorContext(ctx, "streaming chat response", logger.Err(err))
	}
}

func (h *chat) dispatchNotification(current domain.MessageContent) {
	detached.Go("inference webhook", func() error {
		return h.notifier.Notify(context.Background(), current)
	})
}

// convertMessageContent pairs the turn text with the sidecar image when one
// was supplied, otherwise passes the content through unchanged.
func convertMessageContent(content domain.MessageContent, imageURL string) domain.MessageContent {
	if imageURL == "" {
		return content
	}
	return domain.MultimodalContent(content.PlainText(), imageURL)
}
