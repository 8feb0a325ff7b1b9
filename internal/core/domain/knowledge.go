package domain

import "time"

type EntryStatus string

const (
	EntryStatusPending  EntryStatus = "pending"
	EntryStatusIndexing EntryStatus = "indexing"
	EntryStatusReady    EntryStatus = "ready"
	EntryStatusFailed   EntryStatus = "failed"
)

// KnowledgeEntry is a stored question/answer pair with indexing state.
type KnowledgeEntry struct {
	ID        string      `json:"id"`
	Question  string      `json:"question"`
	Answer    string      `json:"answer"`
	Status    EntryStatus `json:"status"`
	Error     string      `json:"error,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// RetrievedEntry is one ranked hit from the retrieval index. Score is only
// populated by similarity search; keyword and unrestricted fetches leave it
// at zero.
type RetrievedEntry struct {
	ID       string  `json:"id"`
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Score    float64 `json:"score,omitempty"`
}
