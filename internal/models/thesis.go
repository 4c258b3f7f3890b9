package models

type ThesisStatus string

const (
	ThesisStatusPending   ThesisStatus = "pending"
	ThesisStatusCompleted ThesisStatus = "completed"
)

// StatusFilter is the status query parameter of the thesis list.
type StatusFilter string

const (
	StatusFilterAll       StatusFilter = "all"
	StatusFilterPending   StatusFilter = "pending"
	StatusFilterCompleted StatusFilter = "completed"
)

// ParseStatusFilter maps a raw filter value to a StatusFilter. Unknown or empty
// values fall back to StatusFilterAll.
func ParseStatusFilter(raw string) StatusFilter {
	switch StatusFilter(raw) {
	case StatusFilterPending:
		return StatusFilterPending
	case StatusFilterCompleted:
		return StatusFilterCompleted
	default:
		return StatusFilterAll
	}
}

// Thesis is the read-only copy of a backend thesis record. It is fetched per
// list request and never cached.
type Thesis struct {
	ID           uint         `json:"id"`
	Title        string       `json:"title"`
	Content      string       `json:"content"`
	Author       string       `json:"author"`
	CreatedAt    Timestamp    `json:"created_at"`
	FilePath     *string      `json:"file_path"`
	Status       ThesisStatus `json:"status"`
	AverageScore *float64     `json:"average_score"`

	// Reviews keeps the order the backend sent.
	Reviews []Review `json:"reviews"`
}

func (t Thesis) IsCompleted() bool {
	return t.Status == ThesisStatusCompleted
}

// HasFile reports whether a document was uploaded with the thesis.
func (t Thesis) HasFile() bool {
	return t.FilePath != nil && *t.FilePath != ""
}

// Scores returns the review scores as floats, in review order.
func (t Thesis) Scores() []float64 {
	scores := make([]float64, 0, len(t.Reviews))
	for _, r := range t.Reviews {
		scores = append(scores, float64(r.Score))
	}
	return scores
}

type Review struct {
	Reviewer  string    `json:"reviewer"`
	Score     int       `json:"score"`
	Comments  string    `json:"comments"`
	CreatedAt Timestamp `json:"created_at"`
}

// ListQuery is the search text and status filter the thesis list is loaded with.
type ListQuery struct {
	Search string       `form:"search"`
	Status StatusFilter `form:"status" validate:"omitempty,status_filter"`
}

// Normalized returns q with an unknown status replaced by StatusFilterAll.
func (q ListQuery) Normalized() ListQuery {
	q.Status = ParseStatusFilter(string(q.Status))
	return q
}
