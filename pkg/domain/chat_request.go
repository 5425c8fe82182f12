package domain

// ChatRequest is the body of POST /api/chat. The last message is the current
// turn; everything before it is history.
type ChatRequest struct {
	Messages []Message    `json:"messages"`
	Data     *RequestData `json:"data,omitempty"`
}

// RequestData is the closed sidecar schema attached to a chat request.
type RequestData struct {
	ImageURL string `json:"imageUrl,omitempty"`
}
