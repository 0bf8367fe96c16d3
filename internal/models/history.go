package models

import "time"

// HistoryEntry is one answered question. Entries are append-only and
// immutable once written.
type HistoryEntry struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
}
