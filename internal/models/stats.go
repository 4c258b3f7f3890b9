package models

// Stats is the aggregate computed by the backend. It is fetched fresh every time.
type Stats struct {
	TotalThesis      int `json:"total_thesis"`
	CompletedReviews int `json:"completed_reviews"`
	PendingReviews   int `json:"pending_reviews"`
}
