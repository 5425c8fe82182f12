// Package stream reframes engine events into the data stream protocol the
// web client consumes: text deltas as `0:` frames, one `8:` message
// annotation frame carrying the sidecar metadata.
package stream

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/samber/lo"

	"github.com/thirdwheel/companion-backend/pkg/domain"
)

type Options struct {
	// ImageURL is echoed back to the client in the annotation frame.
	ImageURL string
}

// Annotation is the sidecar object attached to the streamed message.
type Annotation struct {
	ImageURL  string     `json:"imageUrl,omitempty"`
	Citations []Citation `json:"citations"`
}

type Citation struct {
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}

// Write adapts the engine's event stream to the HTTP response, flushing each
// frame as it is produced. Once streaming has started, an upstream failure
// terminates the response without a structured error frame.
func Write(w http.ResponseWriter, events <-chan domain.StreamEvent, opts Options) error {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Vercel-AI-Data-Stream", "v1")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	return Copy(w, flusher, events, opts)
}

// Copy is the pure transform behind Write: single pass, no retries.
func Copy(w io.Writer, flusher http.Flusher, events <-chan domain.StreamEvent, opts Options) error {
	annotated := false
	for ev := range events {
		if ev.Err != nil {
			return ev.Err
		}

		if !annotated {
			frame, err := annotationFrame(opts.ImageURL, ev.Passages)
			if err != nil {
				return err
			}
			if _, err := io.WriteString(w, frame); err != nil {
				return fmt.Errorf("writing annotation frame: %w", err)
			}
			annotated = true
		}

		if ev.Delta != "" {
			frame, err := textFrame(ev.Delta)
			if err != nil {
				return err
			}
			if _, err := io.WriteString(w, frame); err != nil {
				return fmt.Errorf("writing text frame: %w", err)
			}
		}

		if flusher != nil {
			flusher.Flush()
		}
	}
	return nil
}

func textFrame(delta string) (string, error) {
	encoded, err := json.Marshal(delta)
	if err != nil {
		return "", fmt.Errorf("encoding text delta: %w", err)
	}
	return "0:" + string(encoded) + "\n", nil
}

func annotationFrame(imageURL string, passages []domain.Passage) (string, error) {
	annotation := Annotation{
		ImageURL: imageURL,
		Citations: lo.Map(passages, func(p domain.Passage, _ int) Citation {
			return Citation{Source: p.Source, Score: p.Score}
		}),
	}
	encoded, err := json.Marshal([]Annotation{annotation})
	if err != nil {
		return "", fmt.Errorf("encoding annotation: %w", err)
	}
	return "8:" + string(encoded) + "\n", nil
}
