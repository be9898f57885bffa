package domain

import (
	"context"
	"time"
)

// HistoryFilter narrows a history listing. Status and Search are optional.
type HistoryFilter struct {
	UserID string
	Status *Status
	Search *string
	Page   PageRequest
}

// StatusCounts is the per-status summary over a filtered history set.
type StatusCounts struct {
	Total      int64 `json:"totalTranscriptions"`
	Completed  int64 `json:"completedCount"`
	Processing int64 `json:"processingCount"`
	Error      int64 `json:"errorCount"`
}

// UsageStats aggregates a user's transcription activity.
type UsageStats struct {
	Total                int64
	Completed            int64
	Processing           int64
	Failed               int64
	TotalDurationSeconds float64
	ThisMonth            int64
}

// TranscriptionRepository persists transcription jobs.
//
// Terminal updates (MarkCompleted, MarkError) are monotonic and idempotent:
// they apply only when the row is still processing or already carries the
// same terminal status, and re-applying the same terminal write is a no-op.
type TranscriptionRepository interface {
	Create(ctx context.Context, job *TranscriptionJob) (*TranscriptionJob, error)
	GetByID(ctx context.Context, id string) (*TranscriptionJob, error)
	// GetForUser returns NotFoundError when the row exists but belongs to a
	// different user, so ownership is never leaked.
	GetForUser(ctx context.Context, id, userID string) (*TranscriptionJob, error)
	MarkCompleted(ctx context.Context, id string, result TranscriptionResult) error
	MarkError(ctx context.Context, id, message string) error
	List(ctx context.Context, filter HistoryFilter) ([]TranscriptionJob, int64, error)
	CountByStatus(ctx context.Context, filter HistoryFilter) (StatusCounts, error)
	Stats(ctx context.Context, userID string) (*UsageStats, error)
	// Delete removes the row and returns it for downstream blob cleanup.
	Delete(ctx context.Context, id, userID string) (*TranscriptionJob, error)
	// TimeOutStale flips processing rows not updated since cutoff to error
	// with TimeoutMessage, returning the affected ids.
	TimeOutStale(ctx context.Context, cutoff time.Time) ([]string, error)
}

// ProviderJobStatus is the lifecycle state reported by the provider.
type ProviderJobStatus string

// Provider-side statuses. Queued and Processing are both non-terminal and
// map to StatusProcessing in the store.
const (
	ProviderStatusQueued     ProviderJobStatus = "queued"
	ProviderStatusProcessing ProviderJobStatus = "processing"
	ProviderStatusCompleted  ProviderJobStatus = "completed"
	ProviderStatusError      ProviderJobStatus = "error"
)

// Terminal reports whether the provider job has finished.
func (s ProviderJobStatus) Terminal() bool {
	return s == ProviderStatusCompleted || s == ProviderStatusError
}

// ProviderOptions selects optional recognition features at job creation.
type ProviderOptions struct {
	SpeakerLabels     bool
	AutoHighlights    bool
	SentimentAnalysis bool
}

// ProviderJob is the provider's view of a transcription job.
type ProviderJob struct {
	ID            string
	Status        ProviderJobStatus
	Text          string
	Confidence    float64
	AudioDuration float64 // seconds
	Words         []Word
	Error         string
}

// Provider is the narrow boundary to the external speech-to-text vendor.
type Provider interface {
	CreateJob(ctx context.Context, audioURL string, opts ProviderOptions) (string, error)
	GetJob(ctx context.Context, id string) (*ProviderJob, error)
}

// AudioStore produces time-limited read URLs for stored audio blobs and
// deletes them best-effort when a job is removed.
type AudioStore interface {
	SignedURL(ctx context.Context, path string, expiry time.Duration) (string, error)
	Delete(ctx context.Context, path string) error
}

// ChangePublisher receives row mutations for fan-out to subscribers.
type ChangePublisher interface {
	Publish(ev ChangeEvent) ChangeEvent
}
