// Package history keeps the request activity log.
package history

import "time"

// EventType represents the type of history event.
type EventType string

const (
	EventTypeRecommendation EventType = "recommendation"
	EventTypeCredits        EventType = "credits"
	EventTypeAddition       EventType = "addition"
)

// Entry represents a history entry.
type Entry struct {
	ID        string         `json:"id"`
	EventType EventType      `json:"eventType"`
	Query     string         `json:"query,omitempty"`
	Results   int            `json:"results"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// CreateInput contains fields for creating a history entry.
type CreateInput struct {
	EventType EventType
	Query     string
	Results   int
	Data      map[string]any
}

// ListOptions contains options for listing history.
type ListOptions struct {
	EventType string
	Page      int
	PageSize  int
}

// ListResponse contains paginated history results.
type ListResponse struct {
	Items      []*Entry `json:"items"`
	TotalCount int64    `json:"totalCount"`
	Page       int      `json:"page"`
	PageSize   int      `json:"pageSize"`
}
