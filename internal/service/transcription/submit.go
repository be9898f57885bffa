package transcription

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"speechcraft/internal/domain"
)

const maxFileNameLength = 255

// SubmitRequest is a new transcription submission.
type SubmitRequest struct {
	UserID   string
	AudioURL string
	FileName string
}

// Features lists the recognition features enabled for a submission.
type Features struct {
	SpeakerLabels     bool `json:"speakerLabels"`
	AutoHighlights    bool `json:"autoHighlights"`
	SentimentAnalysis bool `json:"sentimentAnalysis"`
}

// SubmitResult acknowledges an accepted submission.
type SubmitResult struct {
	TranscriptionID string   `json:"transcriptionId"`
	Status          string   `json:"status"`
	FileName        string   `json:"fileName"`
	AudioURL        string   `json:"audioUrl"`
	EstimatedTime   string   `json:"estimatedTime"`
	Features        Features `json:"features"`
}

// Submit validates the request, creates the provider job, persists the row
// in processing state, and hands the job to the polling workers.
//
// The persisted row shares the provider's job id, so polling needs no
// separate mapping.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return nil, domain.ErrValidation("userId is required")
	}
	if strings.TrimSpace(req.AudioURL) == "" {
		return nil, domain.ErrValidation("audioUrl is required")
	}
	if len(req.FileName) > maxFileNameLength {
		return nil, domain.ErrValidation("fileName must be at most %d characters", maxFileNameLength)
	}
	if s.provider == nil {
		return nil, domain.ErrProviderConfig("transcription provider is not configured")
	}

	fetchURL, err := s.resolveFetchURL(ctx, req.AudioURL)
	if err != nil {
		return nil, err
	}

	fileName := strings.TrimSpace(req.FileName)
	if fileName == "" {
		fileName = "Untitled"
	}

	opts := domain.ProviderOptions{
		SpeakerLabels:     true,
		AutoHighlights:    true,
		SentimentAnalysis: true,
	}
	providerID, err := s.provider.CreateJob(ctx, fetchURL, opts)
	if err != nil {
		return nil, fmt.Errorf("create provider job: %w", err)
	}

	job, err := s.store.Create(ctx, &domain.TranscriptionJob{
		ID:       providerID,
		UserID:   req.UserID,
		AudioURL: req.AudioURL,
		FileName: fileName,
		Status:   domain.StatusProcessing,
	})
	if err != nil {
		return nil, fmt.Errorf("persist transcription job: %w", err)
	}

	s.enqueue(job.ID)
	s.logger.Info("transcription submitted",
		"job_id", job.ID, "user_id", job.UserID, "file_name", job.FileName)

	return &SubmitResult{
		TranscriptionID: job.ID,
		Status:          string(job.Status),
		FileName:        job.FileName,
		AudioURL:        job.AudioURL,
		EstimatedTime:   "2-5 minutes",
		Features: Features{
			SpeakerLabels:     opts.SpeakerLabels,
			AutoHighlights:    opts.AutoHighlights,
			SentimentAnalysis: opts.SentimentAnalysis,
		},
	}, nil
}

// resolveFetchURL turns the submitted audio URL into one the provider can
// fetch. Public http(s) URLs pass through; bucket URIs are presigned.
func (s *Service) resolveFetchURL(ctx context.Context, audioURL string) (string, error) {
	u, err := url.Parse(audioURL)
	if err != nil {
		return "", domain.ErrValidation("audioUrl is not a valid URL")
	}

	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return "", domain.ErrValidation("audioUrl is not a valid URL")
		}
		return audioURL, nil
	case "s3", "az", "abfss", "gs":
		if s.audio == nil {
			return "", domain.ErrValidation("audioUrl scheme %q requires configured blob storage", u.Scheme)
		}
		signed, err := s.audio.SignedURL(ctx, audioURL, signedURLExpiry)
		if err != nil {
			return "", fmt.Errorf("sign audio URL: %w", err)
		}
		return signed, nil
	}
	return "", domain.ErrValidation("audioUrl must be an http(s) URL or a bucket URI")
}
