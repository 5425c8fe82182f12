package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single conversation turn. Content is either a plain string or
// an ordered list of typed parts, matching the OpenAI chat wire format.
type Message struct {
	Role    string         `json:"role"`
	Content MessageContent `json:"content"`
}

type MessageContent struct {
	Text  string
	Parts []ContentPart
}

type ContentPart struct {
	Type     ContentPartType `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *ImageURL       `json:"image_url,omitempty"`
}

type ContentPartType string

const (
	ContentPartTypeText     ContentPartType = "text"
	ContentPartTypeImageURL ContentPartType = "image_url"
)

type ImageURL struct {
	URL string `json:"url"`
}

func TextContent(text string) MessageContent {
	return MessageContent{Text: text}
}

func MultimodalContent(text, imageURL string) MessageContent {
	return MessageContent{
		Parts: []ContentPart{
			{Type: ContentPartTypeText, Text: text},
			{Type: ContentPartTypeImageURL, ImageURL: &ImageURL{URL: imageURL}},
		},
	}
}

// IsMultimodal reports whether the content carries typed parts rather than a
// plain string.
func (c MessageContent) IsMultimodal() bool {
	return len(c.Parts) > 0
}

// PlainText returns the textual portion of the content regardless of shape.
func (c MessageContent) PlainText() string {
	if !c.IsMultimodal() {
		return c.Text
	}
	var parts []string
	for _, p := range c.Parts {
		if p.Type == ContentPartTypeText && p.Text != "" {
			parts = append(parts, p.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func (c MessageContent) MarshalJSON() ([]byte, error) {
	if c.IsMultimodal() {
		return json.Marshal(c.Parts)
	}
	return json.Marshal(c.Text)
}

func (c *MessageContent) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		c.Text = text
		c.Parts = nil
		return nil
	}
	var parts []ContentPart
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("content must be a string or a list of content parts: %w", err)
	}
	c.Text = ""
	c.Parts = parts
	return nil
}
