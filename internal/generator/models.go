package generator

import "encoding/json"

// Request carries everything the prompt is built from.
type Request struct {
	LibrarySummary json.RawMessage
	Prompt         string
	MediaType      string // "tv", "movie" or "both"
}

// Recommendation is one model-proposed title. Type is free text from the
// model and must be classified downstream.
type Recommendation struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Year   int    `json:"year"`
	Reason string `json:"reason"`
}

type recommendationsEnvelope struct {
	Recommendations []Recommendation `json:"recommendations"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}
