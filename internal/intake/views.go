package intake

import (
	"time"

	"greenroom/internal/content"
)

// RecordSummary is the list representation of a content record.
type RecordSummary struct {
	ID           int64  `json:"id"`
	Type         string `json:"type"`
	Title        string `json:"title"`
	Status       string `json:"status"`
	SubmissionID string `json:"submission_id,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
}

// RecordDetail is the full representation of a content record.
type RecordDetail struct {
	RecordSummary
	Body       string              `json:"body,omitempty"`
	Metadata   map[string][]string `json:"metadata,omitempty"`
	Terms      map[string][]string `json:"terms,omitempty"`
	SpeakerIDs []int64             `json:"speaker_ids,omitempty"`
}

// SubmissionResponse reports the outcome of an ingest request.
type SubmissionResponse struct {
	Status     string  `json:"status"`
	SessionID  int64   `json:"session_id"`
	SpeakerIDs []int64 `json:"speaker_ids,omitempty"`
}

// ConfirmationRequest carries a speaker's confirmation answers.
type ConfirmationRequest struct {
	Decision        string `json:"decision"`
	Technology      string `json:"technology,omitempty"`
	VideoRelease    string `json:"video_release,omitempty"`
	SpecialRequests string `json:"special_requests,omitempty"`
	Arrival         string `json:"arrival,omitempty"`
	Unavailability  string `json:"unavailability,omitempty"`
}

// ConfirmationResponse reports the applied confirmation.
type ConfirmationResponse struct {
	SpeakerID int64  `json:"speaker_id"`
	Status    string `json:"status"`
}

// StatusResponse summarizes the running service.
type StatusResponse struct {
	Running   bool                      `json:"running"`
	StorePath string                    `json:"store_path"`
	LockPath  string                    `json:"lock_path"`
	Records   map[string]map[string]int `json:"records"`
}

func summarize(record *content.Record) RecordSummary {
	summary := RecordSummary{
		ID:           record.ID,
		Type:         string(record.Type),
		Title:        record.Title,
		Status:       string(record.Status),
		SubmissionID: record.SubmissionID,
	}
	if !record.CreatedAt.IsZero() {
		summary.CreatedAt = record.CreatedAt.UTC().Format(time.RFC3339)
	}
	return summary
}
