package domain

// Passage is a retrieved excerpt from the context store.
type Passage struct {
	Text   string
	Source string
	Score  float64
}

// StreamEvent is one emission from the chat engine. The first event of a
// stream carries the retrieved passages; later events carry text deltas.
// Err terminates the stream.
type StreamEvent struct {
	Delta    string
	Passages []Passage
	Err      error
}
