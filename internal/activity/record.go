package activity

import "time"

// Record is one element of the JSON array served by the activity endpoint.
type Record struct {
	ID        string `json:"id,omitempty"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Entry is a Record prepared for display.
type Entry struct {
	ID      string    `json:"id,omitempty"`
	Kind    string    `json:"kind"` // folded type, used as the icon class
	Glyph   string    `json:"glyph"`
	Message string    `json:"message"`
	TimeAgo string    `json:"time_ago"`
	At      time.Time `json:"at"` // zero when the timestamp could not be parsed
}
