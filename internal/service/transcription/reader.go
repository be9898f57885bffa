package transcription

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"speechcraft/internal/domain"
	"speechcraft/internal/storage"
)

// StatusResult is a single job's state with presentation fields derived
// from the stored row.
type StatusResult struct {
	ID            string        `json:"id"`
	Status        string        `json:"status"`
	FileName      string        `json:"fileName"`
	AudioURL      string        `json:"audioUrl"`
	Text          *string       `json:"text,omitempty"`
	Confidence    *float64      `json:"confidence,omitempty"`
	AudioDuration *float64      `json:"audioDuration,omitempty"`
	Words         []domain.Word `json:"words,omitempty"`
	WordCount     int           `json:"wordCount"`
	Duration      string        `json:"duration"`
	ConfidenceFmt string        `json:"confidenceFormatted"`
	ErrorMessage  *string       `json:"errorMessage,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// StatusMessage is the human-readable progress line for a status response.
func StatusMessage(status domain.Status) string {
	switch status {
	case domain.StatusProcessing:
		return "Transcription is being processed"
	case domain.StatusCompleted:
		return "Transcription completed successfully"
	case domain.StatusError:
		return "Transcription failed"
	}
	return ""
}

// GetStatus returns one job scoped to its owner.
func (s *Service) GetStatus(ctx context.Context, id, userID string) (*StatusResult, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrValidation("userId is required")
	}

	job, err := s.store.GetForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	return statusResult(job), nil
}

func statusResult(job *domain.TranscriptionJob) *StatusResult {
	return &StatusResult{
		ID:            job.ID,
		Status:        string(job.Status),
		FileName:      job.FileName,
		AudioURL:      job.AudioURL,
		Text:          job.Text,
		Confidence:    job.Confidence,
		AudioDuration: job.AudioDuration,
		Words:         job.Words,
		WordCount:     job.WordCount(),
		Duration:      job.DurationDisplay(),
		ConfidenceFmt: job.ConfidenceDisplay(),
		ErrorMessage:  job.ErrorMessage,
		CreatedAt:     job.CreatedAt,
		UpdatedAt:     job.UpdatedAt,
	}
}

// HistoryRequest selects a page of a user's transcription history.
type HistoryRequest struct {
	UserID string
	Status string
	Search string
	Page   int
	Limit  int
}

// HistoryItem is one history row with derived display fields.
type HistoryItem struct {
	ID            string    `json:"id"`
	FileName      string    `json:"fileName"`
	Status        string    `json:"status"`
	StatusDisplay string    `json:"statusDisplay"`
	Text          *string   `json:"text,omitempty"`
	WordCount     int       `json:"wordCount"`
	Duration      string    `json:"duration"`
	ConfidenceFmt string    `json:"confidenceFormatted"`
	ErrorMessage  *string   `json:"errorMessage,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// HistoryFilters echoes the filters a history page was computed with.
type HistoryFilters struct {
	Status string `json:"status,omitempty"`
	Search string `json:"search,omitempty"`
}

// HistoryResult is one page of history plus pagination metadata and a
// per-status summary over the whole filtered set.
type HistoryResult struct {
	Transcriptions []HistoryItem       `json:"transcriptions"`
	Pagination     domain.Pagination   `json:"pagination"`
	Summary        domain.StatusCounts `json:"summary"`
	Filters        HistoryFilters      `json:"filters"`
}

// History lists a user's jobs newest first with optional status and search
// filters.
func (s *Service) History(ctx context.Context, req HistoryRequest) (*HistoryResult, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return nil, domain.ErrValidation("userId is required")
	}

	page := domain.PageRequest{Page: req.Page, Limit: req.Limit}.Normalize()
	if err := page.Validate(); err != nil {
		return nil, err
	}

	filter := domain.HistoryFilter{UserID: req.UserID, Page: page}
	if req.Status != "" {
		status, err := domain.ParseStatus(req.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = &status
	}
	if search := strings.TrimSpace(req.Search); search != "" {
		filter.Search = &search
	}

	jobs, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	summary, err := s.store.CountByStatus(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]HistoryItem, 0, len(jobs))
	for i := range jobs {
		job := &jobs[i]
		items = append(items, HistoryItem{
			ID:            job.ID,
			FileName:      job.FileName,
			Status:        string(job.Status),
			StatusDisplay: job.StatusDisplay(),
			Text:          job.Text,
			WordCount:     job.WordCount(),
			Duration:      job.DurationDisplay(),
			ConfidenceFmt: job.ConfidenceDisplay(),
			ErrorMessage:  job.ErrorMessage,
			CreatedAt:     job.CreatedAt,
		})
	}

	return &HistoryResult{
		Transcriptions: items,
		Pagination:     domain.NewPagination(page, total),
		Summary:        summary,
		Filters: HistoryFilters{
			Status: req.Status,
			Search: strings.TrimSpace(req.Search),
		},
	}, nil
}

// StatsResult aggregates a user's transcription activity for display.
type StatsResult struct {
	Total                  int64   `json:"totalTranscriptions"`
	Completed              int64   `json:"completedCount"`
	Processing             int64   `json:"processingCount"`
	Failed                 int64   `json:"failedCount"`
	TotalDurationSeconds   float64 `json:"totalDurationSeconds"`
	TotalDurationFormatted string  `json:"totalDurationFormatted"`
	ThisMonth              int64   `json:"thisMonth"`
	SuccessRate            string  `json:"successRate"`
}

// Stats returns usage aggregates for one user.
func (s *Service) Stats(ctx context.Context, userID string) (*StatsResult, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrValidation("userId is required")
	}

	stats, err := s.store.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}

	successRate := "0%"
	if stats.Total > 0 {
		successRate = fmt.Sprintf("%d%%", int(math.Round(float64(stats.Completed)/float64(stats.Total)*100)))
	}

	return &StatsResult{
		Total:                  stats.Total,
		Completed:              stats.Completed,
		Processing:             stats.Processing,
		Failed:                 stats.Failed,
		TotalDurationSeconds:   stats.TotalDurationSeconds,
		TotalDurationFormatted: formatDuration(stats.TotalDurationSeconds),
		ThisMonth:              stats.ThisMonth,
		SuccessRate:            successRate,
	}, nil
}

// DeleteResult acknowledges a removed job.
type DeleteResult struct {
	ID       string `json:"id"`
	FileName string `json:"fileName"`
}

// Delete removes a job scoped to its owner and cleans up the stored audio
// blob best-effort: a blob we cannot reach never blocks the row delete.
func (s *Service) Delete(ctx context.Context, id, userID string) (*DeleteResult, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrValidation("userId is required")
	}

	removed, err := s.store.Delete(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if s.audio != nil {
		if err := s.audio.Delete(ctx, removed.AudioURL); err != nil {
			if errors.Is(err, storage.ErrUnsupportedScheme) {
				s.logger.Debug("audio URL not managed by blob storage, skipping cleanup",
					"job_id", removed.ID)
			} else {
				s.logger.Warn("audio blob cleanup failed",
					"job_id", removed.ID, "error", err)
			}
		}
	}

	s.logger.Info("transcription deleted", "job_id", removed.ID, "user_id", userID)
	return &DeleteResult{ID: removed.ID, FileName: removed.FileName}, nil
}

func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return "0 min"
	}
	return fmt.Sprintf("%d min", int(math.Ceil(seconds/60)))
}
