package transcription

import (
	"context"

	"speechcraft/internal/domain"
)

// pollJob checks the provider on a fixed schedule until the job reaches a
// terminal state or the attempt ceiling is exhausted. The first check only
// happens after one full interval; a job is never terminal at submission.
//
// Terminal writes run on a detached context so a canceled poll cannot lose
// a result that already arrived.
func (s *Service) pollJob(ctx context.Context, id string) {
	logger := s.logger.With("job_id", id)

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			// The row stays processing; the stale reaper will time it out
			// if the process never comes back for it.
			logger.Info("poll interrupted by shutdown", "attempt", attempt)
			return
		case <-s.clock.After(s.pollInterval):
		}

		job, err := s.provider.GetJob(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("poll interrupted by shutdown", "attempt", attempt)
				return
			}
			// One failed provider exchange fails the job; the transition is
			// terminal so a racing success cannot overwrite it.
			logger.Error("provider poll failed", "attempt", attempt, "error", err)
			s.markError(id, err.Error())
			return
		}

		switch job.Status {
		case domain.ProviderStatusCompleted:
			s.markCompleted(id, domain.TranscriptionResult{
				Text:          job.Text,
				Confidence:    job.Confidence,
				AudioDuration: job.AudioDuration,
				Words:         job.Words,
			})
			logger.Info("transcription completed", "attempts", attempt)
			return
		case domain.ProviderStatusError:
			message := job.Error
			if message == "" {
				message = "transcription failed"
			}
			s.markError(id, message)
			logger.Info("transcription failed at provider", "attempts", attempt)
			return
		}
		// queued or processing: keep waiting
	}

	s.markError(id, domain.TimeoutMessage)
	logger.Warn("transcription timed out", "attempts", s.maxAttempts)
}

func (s *Service) markCompleted(id string, result domain.TranscriptionResult) {
	if err := s.store.MarkCompleted(context.Background(), id, result); err != nil {
		s.logger.Error("mark completed", "job_id", id, "error", err)
	}
}

func (s *Service) markError(id, message string) {
	if err := s.store.MarkError(context.Background(), id, message); err != nil {
		s.logger.Error("mark error", "job_id", id, "error", err)
	}
}

// ReapStale times out processing rows whose last update is older than the
// polling ceiling, covering jobs orphaned by a crash or shutdown mid-poll.
func (s *Service) ReapStale(ctx context.Context) error {
	cutoff := s.clock.Now().Add(-s.PollCeiling())
	ids, err := s.store.TimeOutStale(ctx, cutoff)
	if err != nil {
		return err
	}
	if len(ids) > 0 {
		s.logger.Warn("timed out stale transcriptions", "count", len(ids))
	}
	return nil
}
