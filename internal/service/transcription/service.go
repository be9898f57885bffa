// Package transcription orchestrates speech-to-text jobs: submission to the
// provider, background polling until a terminal state, and the read side of
// status, history, stats, and deletion.
package transcription

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"speechcraft/internal/domain"
)

const (
	// DefaultPollInterval is how long the poller waits between provider
	// checks.
	DefaultPollInterval = 5 * time.Second

	// DefaultMaxPollAttempts bounds polling at 60 checks, a five minute
	// ceiling at the default interval.
	DefaultMaxPollAttempts = 60

	defaultWorkers   = 4
	defaultQueueSize = 256

	// signedURLExpiry covers the provider's fetch window for audio stored
	// in a private bucket.
	signedURLExpiry = 2 * time.Hour
)

// Clock abstracts time for the poller so tests can step through the polling
// schedule without sleeping.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Service coordinates transcription job lifecycle against the store and the
// speech-to-text provider.
type Service struct {
	store    domain.TranscriptionRepository
	provider domain.Provider
	audio    domain.AudioStore
	logger   *slog.Logger
	clock    Clock

	pollInterval time.Duration
	maxAttempts  int
	workers      int
	queue        chan string
}

// Option customizes a Service.
type Option func(*Service)

// WithAudioStore wires blob storage for signed provider URLs and delete-time
// cleanup.
func WithAudioStore(audio domain.AudioStore) Option {
	return func(s *Service) { s.audio = audio }
}

// WithClock replaces the wall clock, used by tests.
func WithClock(clock Clock) Option {
	return func(s *Service) { s.clock = clock }
}

// WithPollInterval sets the wait between provider polls.
func WithPollInterval(d time.Duration) Option {
	return func(s *Service) { s.pollInterval = d }
}

// WithMaxPollAttempts sets the polling ceiling.
func WithMaxPollAttempts(n int) Option {
	return func(s *Service) { s.maxAttempts = n }
}

// WithWorkers sets the number of concurrent polling workers.
func WithWorkers(n int) Option {
	return func(s *Service) { s.workers = n }
}

// NewService creates a transcription Service. provider may be nil when no
// API key is configured; submissions then fail with a provider config error
// while the read side keeps working.
func NewService(store domain.TranscriptionRepository, provider domain.Provider, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:        store,
		provider:     provider,
		logger:       logger.With("component", "transcription"),
		clock:        realClock{},
		pollInterval: DefaultPollInterval,
		maxAttempts:  DefaultMaxPollAttempts,
		workers:      defaultWorkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.queue = make(chan string, defaultQueueSize)
	return s
}

// Start runs the polling worker pool until ctx is canceled. Jobs already
// accepted keep draining; terminal writes run detached so a shutdown
// mid-poll cannot lose a result that already arrived.
func (s *Service) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < s.workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case id := <-s.queue:
					s.pollJob(ctx, id)
				}
			}
		})
	}
	return g.Wait()
}

// PollCeiling is the longest a job may stay in processing before the stale
// reaper times it out.
func (s *Service) PollCeiling() time.Duration {
	return time.Duration(s.maxAttempts) * s.pollInterval
}

func (s *Service) enqueue(id string) {
	select {
	case s.queue <- id:
	default:
		// A full queue degrades to reaper-driven timeout rather than
		// blocking submission.
		s.logger.Warn("poll queue full, job left to the stale reaper", "job_id", id)
	}
}
