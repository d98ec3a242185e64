package models

import "time"

// SubmissionStatus is the outcome of forwarding answers to the backend
type SubmissionStatus string

const (
	SubmissionAccepted SubmissionStatus = "accepted"
	SubmissionFailed   SubmissionStatus = "failed"
)

// Submission is one entry of the submission log
type Submission struct {
	ID            string           `json:"id"`
	AttemptID     string           `json:"attempt_id"`
	UserID        string           `json:"user_id"`
	TestSlug      string           `json:"test_slug"`
	Answers       UserResponses    `json:"answers"`
	Status        SubmissionStatus `json:"status"`
	StatusMessage string           `json:"status_message,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// SubmissionFilters narrows a submission log listing
type SubmissionFilters struct {
	UserID   string
	TestSlug string
	Status   SubmissionStatus
	Limit    int
	Offset   int
}
