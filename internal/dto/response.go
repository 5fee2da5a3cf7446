package dto

import "time"

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SubmitMessageResponse represents an accepted chat message
type SubmitMessageResponse struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
}

// SubmitMessagesBulkResponse represents the result of a batch submission
type SubmitMessagesBulkResponse struct {
	Accepted   int      `json:"accepted"`
	Rejected   int      `json:"rejected"`
	MessageIDs []string `json:"message_ids,omitempty"`
	Errors     []string `json:"errors,omitempty"`
}

// ActivityResponse represents one stored activity. Deadline is a calendar
// date formatted as YYYY-MM-DD.
type ActivityResponse struct {
	HashKey   string    `json:"hash_key"`
	Link      string    `json:"link"`
	Topic     string    `json:"topic"`
	ImageURL  string    `json:"image_url"`
	Deadline  string    `json:"deadline,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListActivitiesResponse represents the activity listing response
type ListActivitiesResponse struct {
	Category   string             `json:"category"`
	Count      int                `json:"count"`
	Activities []ActivityResponse `json:"activities"`
}
