// Package sidecar relays each user turn to the external inference webhook.
// Best effort: callers dispatch it detached, the response is discarded and
// failures never reach the chat path.
package sidecar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/thirdwheel/companion-backend/pkg/domain"
)

// DefaultURL is the hosted inference endpoint the exchange is relayed to.
const DefaultURL = "https://third-wheels--third-wheels-modal-app-thirdwheels-web-inference.modal.run"

const botGreeting = "Heyhey, Jill! How is your day going so far? Anything fun or exciting?"

type notifier struct {
	url string
	hc  *http.Client
	now func() time.Time
}

func NewNotifier(url string) *notifier {
	if url == "" {
		url = DefaultURL
	}
	return &notifier{
		url: url,
		hc:  &http.Client{},
		now: time.Now,
	}
}

// Notify posts the exchange once. No retries, no timeout of its own; the
// caller runs it detached so a hung webhook cannot hang a request.
func (n *notifier) Notify(ctx context.Context, user domain.MessageContent) error {
	body, err := n.prepareRequest(user)
	if err != nil {
		return fmt.Errorf("preparing notification: %w", err)
	}

	if err := n.sendRequest(ctx, body); err != nil {
		return fmt.Errorf("sending notification to %s: %w", n.url, err)
	}
	return nil
}

func (n *notifier) prepareRequest(user domain.MessageContent) ([]byte, error) {
	notification := domain.Notification{
		Data: domain.NotificationData{
			Conversation: domain.Conversation{
				Bot:  botGreeting,
				User: user,
			},
			FacialExpression: "neutral",
			TimeOfDay:        n.now().Format("15:04"),
			Tone:             "neutral",
		},
	}
	return json.Marshal(notification)
}

func (n *notifier) sendRequest(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.hc.Do(req)
	if err != nil {
		return fmt.Errorf("executing HTTP request: %w", err)
	}
	defer resp.Body.Close()

	// The response payload is of no interest, only the status.
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return nil
}
