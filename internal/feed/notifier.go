package feed

import (
	"context"
	"log/slog"
	"time"

	"speechcraft/internal/domain"
)

var _ domain.TranscriptionRepository = (*NotifyingStore)(nil)

// NotifyingStore decorates a TranscriptionRepository, publishing a change
// event after every successful row mutation. Reads pass through untouched.
//
// Terminal updates that the store silently declines (the row already holds
// the other terminal status) still publish the row as it stands, which is
// harmless: consumers treat events as idempotent overwrites.
type NotifyingStore struct {
	domain.TranscriptionRepository

	publisher domain.ChangePublisher
	logger    *slog.Logger
}

// NewNotifyingStore wraps repo so that mutations are announced on publisher.
func NewNotifyingStore(repo domain.TranscriptionRepository, publisher domain.ChangePublisher, logger *slog.Logger) *NotifyingStore {
	return &NotifyingStore{
		TranscriptionRepository: repo,
		publisher:               publisher,
		logger:                  logger.With("component", "feed_store"),
	}
}

// Create inserts the job and publishes an insert event.
func (s *NotifyingStore) Create(ctx context.Context, job *domain.TranscriptionJob) (*domain.TranscriptionJob, error) {
	created, err := s.TranscriptionRepository.Create(ctx, job)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(domain.ChangeEvent{
		Type:   domain.ChangeInsert,
		UserID: created.UserID,
		JobID:  created.ID,
		Job:    created,
	})
	return created, nil
}

// MarkCompleted applies the result and publishes the updated row.
func (s *NotifyingStore) MarkCompleted(ctx context.Context, id string, result domain.TranscriptionResult) error {
	if err := s.TranscriptionRepository.MarkCompleted(ctx, id, result); err != nil {
		return err
	}
	s.publishUpdate(ctx, id)
	return nil
}

// MarkError marks the job failed and publishes the updated row.
func (s *NotifyingStore) MarkError(ctx context.Context, id, message string) error {
	if err := s.TranscriptionRepository.MarkError(ctx, id, message); err != nil {
		return err
	}
	s.publishUpdate(ctx, id)
	return nil
}

// Delete removes the row and publishes a delete event.
func (s *NotifyingStore) Delete(ctx context.Context, id, userID string) (*domain.TranscriptionJob, error) {
	removed, err := s.TranscriptionRepository.Delete(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(domain.ChangeEvent{
		Type:   domain.ChangeDelete,
		UserID: removed.UserID,
		JobID:  removed.ID,
	})
	return removed, nil
}

// TimeOutStale times out stale rows and publishes each updated row.
func (s *NotifyingStore) TimeOutStale(ctx context.Context, cutoff time.Time) ([]string, error) {
	ids, err := s.TranscriptionRepository.TimeOutStale(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		s.publishUpdate(ctx, id)
	}
	return ids, nil
}

func (s *NotifyingStore) publishUpdate(ctx context.Context, id string) {
	job, err := s.TranscriptionRepository.GetByID(ctx, id)
	if err != nil {
		s.logger.Warn("fetch updated row for feed", "job_id", id, "error", err)
		return
	}
	s.publisher.Publish(domain.ChangeEvent{
		Type:   domain.ChangeUpdate,
		UserID: job.UserID,
		JobID:  job.ID,
		Job:    job,
	})
}
