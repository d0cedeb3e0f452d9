package recommend

// WebSocket event types for recommendation operations.
const (
	EventRecommendStarted   = "recommend:started"
	EventRecommendCompleted = "recommend:completed"
	EventSnapshotRefreshed  = "snapshot:refreshed"
)

// RecommendStartedPayload is sent when a recommendation request begins.
type RecommendStartedPayload struct {
	Prompt    string `json:"prompt,omitempty"`
	MediaType string `json:"mediaType"`
}

// RecommendCompletedPayload is sent when a recommendation request finishes.
type RecommendCompletedPayload struct {
	MediaType string `json:"mediaType"`
	Generated int    `json:"generated"`
	Returned  int    `json:"returned"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// SnapshotRefreshedPayload is sent after a library snapshot refresh.
type SnapshotRefreshedPayload struct {
	Series int `json:"series"`
	Movies int `json:"movies"`
}
