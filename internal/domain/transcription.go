// Package domain holds the core transcription job model, repository and
// provider ports, and the typed errors the HTTP layer maps to status codes.
package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Status is the persisted lifecycle state of a transcription job.
type Status string

// Job statuses. A job starts processing and ends in exactly one of the
// terminal states.
const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// TimeoutMessage is the error text written when polling exhausts its ceiling
// before the provider reports a terminal state.
const TimeoutMessage = "Transcription timeout - processing took longer than expected"

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// ParseStatus validates a raw status string.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusProcessing, StatusCompleted, StatusError:
		return Status(raw), nil
	}
	return "", ErrValidation("invalid status %q", raw)
}

// ValidTransition reports whether a job may move from one status to another.
// Re-asserting the current status is always allowed; terminal states never
// change to anything else.
func ValidTransition(from, to Status) bool {
	if from == to {
		return true
	}
	return from == StatusProcessing && to.Terminal()
}

// Word is a single recognized word with millisecond timing.
type Word struct {
	Text       string  `json:"text"`
	StartMs    int     `json:"start"`
	EndMs      int     `json:"end"`
	Confidence float64 `json:"confidence"`
	Speaker    *string `json:"speaker,omitempty"`
}

// TranscriptionJob is a speech-to-text job owned by a single user. The
// result fields (Text, Confidence, AudioDuration, Words) are nil until the
// job completes; ErrorMessage is nil unless the job failed.
type TranscriptionJob struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	AudioURL      string    `json:"audioUrl"`
	FileName      string    `json:"fileName"`
	Status        Status    `json:"status"`
	Text          *string   `json:"text,omitempty"`
	Confidence    *float64  `json:"confidence,omitempty"`
	AudioDuration *float64  `json:"audioDuration,omitempty"` // seconds
	Words         []Word    `json:"words,omitempty"`
	ErrorMessage  *string   `json:"errorMessage,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// TranscriptionResult is the payload of a successful provider job, applied
// to the row by MarkCompleted.
type TranscriptionResult struct {
	Text          string
	Confidence    float64
	AudioDuration float64 // seconds
	Words         []Word
}

// WordCount returns the number of whitespace-separated words in the
// transcript text, 0 when no text is present.
func (j *TranscriptionJob) WordCount() int {
	if j.Text == nil {
		return 0
	}
	return len(strings.Fields(*j.Text))
}

// DurationDisplay renders the audio duration as whole minutes, rounding up,
// or "Unknown" when the duration is not known.
func (j *TranscriptionJob) DurationDisplay() string {
	if j.AudioDuration == nil || *j.AudioDuration <= 0 {
		return "Unknown"
	}
	return fmt.Sprintf("%d min", int(math.Ceil(*j.AudioDuration/60)))
}

// ConfidenceDisplay renders confidence as a whole percentage, or "N/A" when
// no confidence is recorded.
func (j *TranscriptionJob) ConfidenceDisplay() string {
	if j.Confidence == nil {
		return "N/A"
	}
	return fmt.Sprintf("%d%%", int(math.Round(*j.Confidence*100)))
}

// StatusDisplay capitalizes the status for presentation.
func (j *TranscriptionJob) StatusDisplay() string {
	s := string(j.Status)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
