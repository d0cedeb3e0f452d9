package credits

// WebSocket event types for credit aggregation.
const (
	EventCreditsStarted   = "credits:started"
	EventCreditsCompleted = "credits:completed"
)

// CreditsStartedPayload is sent when a credit search begins.
type CreditsStartedPayload struct {
	Person string `json:"person"`
	Limit  int    `json:"limit"`
}

// CreditsCompletedPayload is sent when a credit search finishes.
type CreditsCompletedPayload struct {
	Person    string `json:"person"`
	Results   int    `json:"results"`
	ElapsedMs int64  `json:"elapsedMs"`
}
