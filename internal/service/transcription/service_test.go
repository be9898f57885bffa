package transcription

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"speechcraft/internal/domain"
	"speechcraft/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// fakeClock fires every After immediately and counts the waits.
type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	waits int
	fired chan time.Time
}

func newFakeClock() *fakeClock {
	ch := make(chan time.Time)
	close(ch)
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), fired: ch}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.waits++
	return c.fired
}

func (c *fakeClock) waitCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.waits
}

// fakeProvider scripts a sequence of GetJob responses.
type fakeProvider struct {
	mu        sync.Mutex
	createID  string
	createErr error
	gotURL    string
	gotOpts   domain.ProviderOptions
	responses []pollResponse
	getCalls  int
}

type pollResponse struct {
	job *domain.ProviderJob
	err error
}

func (p *fakeProvider) CreateJob(_ context.Context, audioURL string, opts domain.ProviderOptions) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gotURL = audioURL
	p.gotOpts = opts
	if p.createErr != nil {
		return "", p.createErr
	}
	return p.createID, nil
}

func (p *fakeProvider) GetJob(context.Context, string) (*domain.ProviderJob, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.getCalls++
	i := p.getCalls - 1
	if i >= len(p.responses) {
		i = len(p.responses) - 1
	}
	r := p.responses[i]
	return r.job, r.err
}

func (p *fakeProvider) getCallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.getCalls
}

// memStore is an in-memory TranscriptionRepository.
type memStore struct {
	mu   sync.Mutex
	jobs map[string]*domain.TranscriptionJob
	seq  int
}

func newMemStore() *memStore {
	return &memStore{jobs: make(map[string]*domain.TranscriptionJob)}
}

func (m *memStore) Create(_ context.Context, job *domain.TranscriptionJob) (*domain.TranscriptionJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job.ID == "" {
		job.ID = domain.NewID()
	}
	if _, exists := m.jobs[job.ID]; exists {
		return nil, domain.ErrConflict("transcription %q already exists", job.ID)
	}
	m.seq++
	cp := *job
	cp.Status = domain.StatusProcessing
	cp.CreatedAt = time.Date(2026, 3, 1, 0, 0, m.seq, 0, time.UTC)
	cp.UpdatedAt = cp.CreatedAt
	m.jobs[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memStore) GetByID(_ context.Context, id string) (*domain.TranscriptionJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound("transcription %q not found", id)
	}
	cp := *job
	return &cp, nil
}

func (m *memStore) GetForUser(ctx context.Context, id, userID string) (*domain.TranscriptionJob, error) {
	job, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.UserID != userID {
		return nil, domain.ErrNotFound("transcription %q not found", id)
	}
	return job, nil
}

func (m *memStore) MarkCompleted(_ context.Context, id string, result domain.TranscriptionResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return domain.ErrNotFound("transcription %q not found", id)
	}
	if job.Status == domain.StatusError {
		return nil
	}
	job.Status = domain.StatusCompleted
	job.Text = &result.Text
	job.Confidence = &result.Confidence
	job.AudioDuration = &result.AudioDuration
	job.Words = result.Words
	job.ErrorMessage = nil
	return nil
}

func (m *memStore) MarkError(_ context.Context, id, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return domain.ErrNotFound("transcription %q not found", id)
	}
	if job.Status == domain.StatusCompleted {
		return nil
	}
	job.Status = domain.StatusError
	job.ErrorMessage = &message
	return nil
}

func (m *memStore) List(_ context.Context, filter domain.HistoryFilter) ([]domain.TranscriptionJob, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []domain.TranscriptionJob
	for _, job := range m.jobs {
		if job.UserID != filter.UserID {
			continue
		}
		if filter.Status != nil && job.Status != *filter.Status {
			continue
		}
		all = append(all, *job)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := int64(len(all))
	page := filter.Page.Normalize()
	start := page.Offset()
	if start > len(all) {
		return nil, total, nil
	}
	end := start + page.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (m *memStore) CountByStatus(ctx context.Context, filter domain.HistoryFilter) (domain.StatusCounts, error) {
	jobs, _, err := m.List(ctx, domain.HistoryFilter{UserID: filter.UserID, Status: filter.Status,
		Page: domain.PageRequest{Page: 1, Limit: domain.MaxPageSize}})
	if err != nil {
		return domain.StatusCounts{}, err
	}
	var counts domain.StatusCounts
	for _, job := range jobs {
		counts.Total++
		switch job.Status {
		case domain.StatusCompleted:
			counts.Completed++
		case domain.StatusProcessing:
			counts.Processing++
		case domain.StatusError:
			counts.Error++
		}
	}
	return counts, nil
}

func (m *memStore) Stats(_ context.Context, userID string) (*domain.UsageStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &domain.UsageStats{}
	for _, job := range m.jobs {
		if job.UserID != userID {
			continue
		}
		stats.Total++
		stats.ThisMonth++
		switch job.Status {
		case domain.StatusCompleted:
			stats.Completed++
			if job.AudioDuration != nil {
				stats.TotalDurationSeconds += *job.AudioDuration
			}
		case domain.StatusProcessing:
			stats.Processing++
		case domain.StatusError:
			stats.Failed++
		}
	}
	return stats, nil
}

func (m *memStore) Delete(ctx context.Context, id, userID string) (*domain.TranscriptionJob, error) {
	job, err := m.GetForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.jobs, id)
	return job, nil
}

func (m *memStore) TimeOutStale(ctx context.Context, cutoff time.Time) ([]string, error) {
	m.mu.Lock()
	var ids []string
	for id, job := range m.jobs {
		if job.Status == domain.StatusProcessing && job.UpdatedAt.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	m.mu.Unlock()
	for _, id := range ids {
		if err := m.MarkError(ctx, id, domain.TimeoutMessage); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

func newTestService(store domain.TranscriptionRepository, provider domain.Provider, opts ...Option) *Service {
	base := []Option{WithClock(newFakeClock()), WithPollInterval(time.Millisecond)}
	return NewService(store, provider, testLogger(), append(base, opts...)...)
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	provider := &fakeProvider{createID: "tr-1"}
	svc := newTestService(store, provider)

	result, err := svc.Submit(ctx, SubmitRequest{
		UserID:   "user-1",
		AudioURL: "https://cdn.example.com/meeting.mp3",
		FileName: "meeting.mp3",
	})
	require.NoError(t, err)

	assert.Equal(t, "tr-1", result.TranscriptionID)
	assert.Equal(t, "processing", result.Status)
	assert.Equal(t, "meeting.mp3", result.FileName)
	assert.Equal(t, "https://cdn.example.com/meeting.mp3", result.AudioURL)
	assert.Equal(t, "2-5 minutes", result.EstimatedTime)
	assert.True(t, result.Features.SpeakerLabels)
	assert.True(t, result.Features.AutoHighlights)
	assert.True(t, result.Features.SentimentAnalysis)

	// The provider saw the URL and all features enabled.
	assert.Equal(t, "https://cdn.example.com/meeting.mp3", provider.gotURL)
	assert.True(t, provider.gotOpts.SpeakerLabels)

	// The row is persisted in processing state under the provider's id.
	job, err := store.GetByID(ctx, "tr-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, job.Status)
	assert.Equal(t, "user-1", job.UserID)
}

func TestSubmit_Validation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemStore(), &fakeProvider{createID: "tr-1"})

	var validation *domain.ValidationError

	_, err := svc.Submit(ctx, SubmitRequest{AudioURL: "https://x/a.mp3"})
	assert.ErrorAs(t, err, &validation)

	_, err = svc.Submit(ctx, SubmitRequest{UserID: "user-1"})
	assert.ErrorAs(t, err, &validation)

	_, err = svc.Submit(ctx, SubmitRequest{UserID: "user-1", AudioURL: "not a url at all%%"})
	assert.ErrorAs(t, err, &validation)

	_, err = svc.Submit(ctx, SubmitRequest{UserID: "user-1", AudioURL: "ftp://host/a.mp3"})
	assert.ErrorAs(t, err, &validation)

	long := make([]byte, maxFileNameLength+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err = svc.Submit(ctx, SubmitRequest{UserID: "user-1", AudioURL: "https://x/a.mp3", FileName: string(long)})
	assert.ErrorAs(t, err, &validation)

	t.Run("default_file_name", func(t *testing.T) {
		result, err := svc.Submit(ctx, SubmitRequest{UserID: "user-1", AudioURL: "https://x/a.mp3"})
		require.NoError(t, err)
		assert.Equal(t, "Untitled", result.FileName)
	})
}

func TestSubmit_NoProviderConfigured(t *testing.T) {
	svc := newTestService(newMemStore(), nil)

	_, err := svc.Submit(context.Background(), SubmitRequest{
		UserID:   "user-1",
		AudioURL: "https://x/a.mp3",
	})
	var configErr *domain.ProviderConfigError
	assert.ErrorAs(t, err, &configErr)
}

type fakeAudioStore struct {
	deleted   []string
	deleteErr error
}

func (f *fakeAudioStore) SignedURL(_ context.Context, path string, _ time.Duration) (string, error) {
	return "https://signed.example.com/" + path, nil
}

func (f *fakeAudioStore) Delete(_ context.Context, path string) error {
	f.deleted = append(f.deleted, path)
	return f.deleteErr
}

func TestSubmit_BucketURLIsSigned(t *testing.T) {
	provider := &fakeProvider{createID: "tr-1"}
	audio := &fakeAudioStore{}
	svc := newTestService(newMemStore(), provider, WithAudioStore(audio))

	result, err := svc.Submit(context.Background(), SubmitRequest{
		UserID:   "user-1",
		AudioURL: "s3://uploads/audio/a.mp3",
	})
	require.NoError(t, err)

	// The provider fetches through the signed URL; the row keeps the
	// original bucket URI.
	assert.Equal(t, "https://signed.example.com/s3://uploads/audio/a.mp3", provider.gotURL)
	assert.Equal(t, "s3://uploads/audio/a.mp3", result.AudioURL)

	t.Run("bucket_url_without_store", func(t *testing.T) {
		svc := newTestService(newMemStore(), provider)
		_, err := svc.Submit(context.Background(), SubmitRequest{
			UserID:   "user-1",
			AudioURL: "s3://uploads/audio/a.mp3",
		})
		var validation *domain.ValidationError
		assert.ErrorAs(t, err, &validation)
	})
}

func TestPollJob_Completes(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	clock := newFakeClock()
	provider := &fakeProvider{
		createID: "tr-1",
		responses: []pollResponse{
			{job: &domain.ProviderJob{ID: "tr-1", Status: domain.ProviderStatusQueued}},
			{job: &domain.ProviderJob{ID: "tr-1", Status: domain.ProviderStatusProcessing}},
			{job: &domain.ProviderJob{ID: "tr-1", Status: domain.ProviderStatusCompleted,
				Text: "hello world", Confidence: 0.9, AudioDuration: 61}},
		},
	}
	svc := NewService(store, provider, testLogger(), WithClock(clock))

	_, err := svc.Submit(ctx, SubmitRequest{UserID: "user-1", AudioURL: "https://x/a.mp3"})
	require.NoError(t, err)

	svc.pollJob(ctx, "tr-1")

	job, err := store.GetByID(ctx, "tr-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, job.Status)
	require.NotNil(t, job.Text)
	assert.Equal(t, "hello world", *job.Text)

	// Each provider check waits one interval first.
	assert.Equal(t, 3, provider.getCallCount())
	assert.Equal(t, 3, clock.waitCount())
}

func TestPollJob_ProviderReportsError(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	provider := &fakeProvider{
		createID: "tr-1",
		responses: []pollResponse{
			{job: &domain.ProviderJob{ID: "tr-1", Status: domain.ProviderStatusError, Error: "unsupported codec"}},
		},
	}
	svc := newTestService(store, provider)

	_, err := svc.Submit(ctx, SubmitRequest{UserID: "user-1", AudioURL: "https://x/a.mp3"})
	require.NoError(t, err)

	svc.pollJob(ctx, "tr-1")

	job, err := store.GetByID(ctx, "tr-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusError, job.Status)
	require.NotNil(t, job.ErrorMessage)
	assert.Equal(t, "unsupported codec", *job.ErrorMessage)
}

func TestPollJob_TransportErrorIsFatal(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	provider := &fakeProvider{
		createID: "tr-1",
		responses: []pollResponse{
			{err: fmt.Errorf("connection refused")},
		},
	}
	svc := newTestService(store, provider)

	_, err := svc.Submit(ctx, SubmitRequest{UserID: "user-1", AudioURL: "https://x/a.mp3"})
	require.NoError(t, err)

	svc.pollJob(ctx, "tr-1")

	job, err := store.GetByID(ctx, "tr-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusError, job.Status)
	require.NotNil(t, job.ErrorMessage)
	assert.Equal(t, "connection refused", *job.ErrorMessage)
	assert.Equal(t, 1, provider.getCallCount())
}

func TestPollJob_TimesOutAtCeiling(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	clock := newFakeClock()
	provider := &fakeProvider{
		createID: "tr-1",
		responses: []pollResponse{
			{job: &domain.ProviderJob{ID: "tr-1", Status: domain.ProviderStatusProcessing}},
		},
	}
	svc := NewService(store, provider, testLogger(), WithClock(clock), WithMaxPollAttempts(7))

	_, err := svc.Submit(ctx, SubmitRequest{UserID: "user-1", AudioURL: "https://x/a.mp3"})
	require.NoError(t, err)

	svc.pollJob(ctx, "tr-1")

	job, err := store.GetByID(ctx, "tr-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusError, job.Status)
	require.NotNil(t, job.ErrorMessage)
	assert.Equal(t, domain.TimeoutMessage, *job.ErrorMessage)
	assert.Equal(t, 7, provider.getCallCount())
}

func TestGetStatus(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestService(store, &fakeProvider{createID: "tr-1"})

	_, err := svc.Submit(ctx, SubmitRequest{UserID: "user-1", AudioURL: "https://x/a.mp3", FileName: "a.mp3"})
	require.NoError(t, err)

	result, err := svc.GetStatus(ctx, "tr-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "processing", result.Status)
	assert.Equal(t, "a.mp3", result.FileName)
	assert.Equal(t, 0, result.WordCount)
	assert.Equal(t, "Unknown", result.Duration)
	assert.Equal(t, "N/A", result.ConfidenceFmt)

	t.Run("derived_fields_after_completion", func(t *testing.T) {
		require.NoError(t, store.MarkCompleted(ctx, "tr-1", domain.TranscriptionResult{
			Text:          "one two three",
			Confidence:    0.874,
			AudioDuration: 90,
		}))
		result, err := svc.GetStatus(ctx, "tr-1", "user-1")
		require.NoError(t, err)
		assert.Equal(t, 3, result.WordCount)
		assert.Equal(t, "2 min", result.Duration)
		assert.Equal(t, "87%", result.ConfidenceFmt)
	})

	t.Run("foreign_user_reads_not_found", func(t *testing.T) {
		_, err := svc.GetStatus(ctx, "tr-1", "intruder")
		var notFound *domain.NotFoundError
		assert.ErrorAs(t, err, &notFound)
	})
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	provider := &fakeProvider{createID: "tr-1"}
	svc := newTestService(store, provider)

	for i := 1; i <= 12; i++ {
		provider.createID = fmt.Sprintf("tr-%d", i)
		_, err := svc.Submit(ctx, SubmitRequest{
			UserID:   "user-1",
			AudioURL: fmt.Sprintf("https://x/%d.mp3", i),
			FileName: fmt.Sprintf("%d.mp3", i),
		})
		require.NoError(t, err)
	}
	require.NoError(t, store.MarkError(ctx, "tr-3", "boom"))

	result, err := svc.History(ctx, HistoryRequest{UserID: "user-1"})
	require.NoError(t, err)
	assert.Len(t, result.Transcriptions, domain.DefaultPageSize)
	assert.Equal(t, 1, result.Pagination.CurrentPage)
	assert.Equal(t, 2, result.Pagination.TotalPages)
	assert.EqualValues(t, 12, result.Pagination.TotalItems)
	assert.True(t, result.Pagination.HasNextPage)
	assert.False(t, result.Pagination.HasPreviousPage)
	assert.EqualValues(t, 12, result.Summary.Total)
	assert.EqualValues(t, 1, result.Summary.Error)

	// Newest first.
	assert.Equal(t, "12.mp3", result.Transcriptions[0].FileName)

	t.Run("status_filter_echoed", func(t *testing.T) {
		result, err := svc.History(ctx, HistoryRequest{UserID: "user-1", Status: "error"})
		require.NoError(t, err)
		require.Len(t, result.Transcriptions, 1)
		assert.Equal(t, "Error", result.Transcriptions[0].StatusDisplay)
		assert.Equal(t, "error", result.Filters.Status)
		assert.EqualValues(t, 1, result.Summary.Total)
	})

	t.Run("invalid_status", func(t *testing.T) {
		_, err := svc.History(ctx, HistoryRequest{UserID: "user-1", Status: "bogus"})
		var validation *domain.ValidationError
		assert.ErrorAs(t, err, &validation)
	})

	t.Run("invalid_pagination", func(t *testing.T) {
		_, err := svc.History(ctx, HistoryRequest{UserID: "user-1", Page: -1})
		var validation *domain.ValidationError
		assert.ErrorAs(t, err, &validation)

		_, err = svc.History(ctx, HistoryRequest{UserID: "user-1", Limit: domain.MaxPageSize + 1})
		assert.ErrorAs(t, err, &validation)
	})
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	provider := &fakeProvider{}
	svc := newTestService(store, provider)

	for i := 1; i <= 4; i++ {
		provider.createID = fmt.Sprintf("tr-%d", i)
		_, err := svc.Submit(ctx, SubmitRequest{UserID: "user-1", AudioURL: "https://x/a.mp3"})
		require.NoError(t, err)
	}
	require.NoError(t, store.MarkCompleted(ctx, "tr-1", domain.TranscriptionResult{Text: "a", AudioDuration: 60}))
	require.NoError(t, store.MarkCompleted(ctx, "tr-2", domain.TranscriptionResult{Text: "b", AudioDuration: 65}))
	require.NoError(t, store.MarkError(ctx, "tr-3", "boom"))

	result, err := svc.Stats(ctx, "user-1")
	require.NoError(t, err)
	assert.EqualValues(t, 4, result.Total)
	assert.EqualValues(t, 2, result.Completed)
	assert.EqualValues(t, 1, result.Processing)
	assert.EqualValues(t, 1, result.Failed)
	assert.InDelta(t, 125, result.TotalDurationSeconds, 1e-9)
	assert.Equal(t, "3 min", result.TotalDurationFormatted)
	assert.Equal(t, "50%", result.SuccessRate)

	t.Run("empty_user", func(t *testing.T) {
		result, err := svc.Stats(ctx, "nobody")
		require.NoError(t, err)
		assert.EqualValues(t, 0, result.Total)
		assert.Equal(t, "0%", result.SuccessRate)
		assert.Equal(t, "0 min", result.TotalDurationFormatted)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	audio := &fakeAudioStore{}
	svc := newTestService(store, &fakeProvider{createID: "tr-1"}, WithAudioStore(audio))

	_, err := svc.Submit(ctx, SubmitRequest{UserID: "user-1", AudioURL: "https://x/a.mp3", FileName: "a.mp3"})
	require.NoError(t, err)

	result, err := svc.Delete(ctx, "tr-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "tr-1", result.ID)
	assert.Equal(t, "a.mp3", result.FileName)
	assert.Equal(t, []string{"https://x/a.mp3"}, audio.deleted)

	_, err = store.GetByID(ctx, "tr-1")
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)

	t.Run("blob_failure_does_not_block_delete", func(t *testing.T) {
		provider := &fakeProvider{createID: "tr-2"}
		failing := &fakeAudioStore{deleteErr: storage.ErrUnsupportedScheme}
		svc := newTestService(store, provider, WithAudioStore(failing))

		_, err := svc.Submit(ctx, SubmitRequest{UserID: "user-1", AudioURL: "https://x/b.mp3"})
		require.NoError(t, err)

		_, err = svc.Delete(ctx, "tr-2", "user-1")
		require.NoError(t, err)
	})
}

func TestReapStale(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	clock := newFakeClock()
	svc := NewService(store, &fakeProvider{createID: "tr-1"}, testLogger(),
		WithClock(clock), WithPollInterval(5*time.Second), WithMaxPollAttempts(60))

	assert.Equal(t, 5*time.Minute, svc.PollCeiling())

	_, err := svc.Submit(ctx, SubmitRequest{UserID: "user-1", AudioURL: "https://x/a.mp3"})
	require.NoError(t, err)

	// The row was just written, so it is not yet stale.
	require.NoError(t, svc.ReapStale(ctx))
	job, err := store.GetByID(ctx, "tr-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, job.Status)

	// Move the clock past the ceiling.
	clock.mu.Lock()
	clock.now = clock.now.Add(time.Hour)
	clock.mu.Unlock()

	require.NoError(t, svc.ReapStale(ctx))
	job, err = store.GetByID(ctx, "tr-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusError, job.Status)
	require.NotNil(t, job.ErrorMessage)
	assert.Equal(t, domain.TimeoutMessage, *job.ErrorMessage)
}
