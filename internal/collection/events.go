package collection

// WebSocket event types for collection operations.
const (
	EventCollectionAdded = "collection:added"
)

// CollectionAddedPayload is sent after a successful addition.
type CollectionAddedPayload struct {
	Title         string `json:"title"`
	Service       string `json:"service"`
	Mode          string `json:"mode"`
	AlreadyExists bool   `json:"alreadyExists"`
}
