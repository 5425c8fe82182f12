package stream

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/thirdwheel/companion-backend/pkg/domain"
)

func stream(events ...domain.StreamEvent) <-chan domain.StreamEvent {
	ch := make(chan domain.StreamEvent, len(events))
	for _, ev := range events {
		ch <- ev
	}
	close(ch)
	return ch
}

func TestCopyFrames(t *testing.T) {
	events := stream(
		domain.StreamEvent{Passages: []domain.Passage{{Source: "a.txt", Score: 0.75}}},
		domain.StreamEvent{Delta: "hello"},
		domain.StreamEvent{Delta: ` "quoted"`},
	)

	var buf bytes.Buffer
	if err := Copy(&buf, nil, events, Options{ImageURL: "http://x/y.png"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d frames, want 3: %q", len(lines), buf.String())
	}
	if lines[0] != `8:[{"imageUrl":"http://x/y.png","citations":[{"source":"a.txt","score":0.75}]}]` {
		t.Errorf("unexpected annotation frame: %s", lines[0])
	}
	if lines[1] != `0:"hello"` {
		t.Errorf("unexpected text frame: %s", lines[1])
	}
	if lines[2] != `0:" \"quoted\""` {
		t.Errorf("text delta not JSON-escaped: %s", lines[2])
	}
}

func TestCopyEchoesImageURLWithoutPassages(t *testing.T) {
	events := stream(domain.StreamEvent{Delta: "hi"})

	var buf bytes.Buffer
	if err := Copy(&buf, nil, events, Options{ImageURL: "http://img"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), `"imageUrl":"http://img"`) {
		t.Errorf("imageUrl not echoed: %s", buf.String())
	}
	if !strings.Contains(buf.String(), `"citations":[]`) {
		t.Errorf("missing empty citation list: %s", buf.String())
	}
}

func TestCopyNoImageURL(t *testing.T) {
	events := stream(domain.StreamEvent{Passages: []domain.Passage{{Source: "a.txt"}}})

	var buf bytes.Buffer
	if err := Copy(&buf, nil, events, Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(buf.String(), "imageUrl") {
		t.Errorf("imageUrl must be omitted when absent: %s", buf.String())
	}
}

func TestCopyPropagatesStreamError(t *testing.T) {
	upstream := errors.New("model died")
	events := stream(
		domain.StreamEvent{Delta: "partial"},
		domain.StreamEvent{Err: upstream},
	)

	var buf bytes.Buffer
	err := Copy(&buf, nil, events, Options{})
	if !errors.Is(err, upstream) {
		t.Fatalf("got error %v, want the upstream error", err)
	}
	// What was already streamed stays on the wire; no structured error frame
	// follows it.
	if !strings.Contains(buf.String(), `0:"partial"`) {
		t.Errorf("partial output lost: %q", buf.String())
	}
	if strings.Contains(buf.String(), "model died") {
		t.Errorf("error leaked into the stream: %q", buf.String())
	}
}
