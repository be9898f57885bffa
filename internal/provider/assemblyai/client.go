// Package assemblyai is a minimal AssemblyAI v2 transcript API client
// covering job creation and polling.
package assemblyai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"speechcraft/internal/domain"
)

const defaultBaseURL = "https://api.assemblyai.com"

var _ domain.Provider = (*Client)(nil)

// Client talks to the AssemblyAI transcript API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates an AssemblyAI client authenticated with the given key.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type createRequest struct {
	AudioURL          string `json:"audio_url"`
	SpeechModel       string `json:"speech_model"`
	SpeakerLabels     bool   `json:"speaker_labels"`
	AutoHighlights    bool   `json:"auto_highlights"`
	SentimentAnalysis bool   `json:"sentiment_analysis"`
}

type transcriptResponse struct {
	ID            string   `json:"id"`
	Status        string   `json:"status"`
	Text          *string  `json:"text"`
	Confidence    *float64 `json:"confidence"`
	AudioDuration *float64 `json:"audio_duration"`
	Words         []struct {
		Text       string  `json:"text"`
		Start      int     `json:"start"`
		End        int     `json:"end"`
		Confidence float64 `json:"confidence"`
		Speaker    *string `json:"speaker"`
	} `json:"words"`
	Error *string `json:"error"`
}

// CreateJob submits an audio URL for transcription and returns the provider
// job id.
func (c *Client) CreateJob(ctx context.Context, audioURL string, opts domain.ProviderOptions) (string, error) {
	payload := createRequest{
		AudioURL:          audioURL,
		SpeechModel:       "universal",
		SpeakerLabels:     opts.SpeakerLabels,
		AutoHighlights:    opts.AutoHighlights,
		SentimentAnalysis: opts.SentimentAnalysis,
	}

	var resp transcriptResponse
	if err := c.do(ctx, http.MethodPost, "/v2/transcript", payload, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("assemblyai: create transcript returned no id")
	}

	return resp.ID, nil
}

// GetJob fetches the current state of a transcription job.
func (c *Client) GetJob(ctx context.Context, id string) (*domain.ProviderJob, error) {
	var resp transcriptResponse
	if err := c.do(ctx, http.MethodGet, "/v2/transcript/"+id, nil, &resp); err != nil {
		return nil, err
	}

	job := &domain.ProviderJob{
		ID:     resp.ID,
		Status: mapStatus(resp.Status),
	}
	if resp.Text != nil {
		job.Text = *resp.Text
	}
	if resp.Confidence != nil {
		job.Confidence = *resp.Confidence
	}
	if resp.AudioDuration != nil {
		job.AudioDuration = *resp.AudioDuration
	}
	if resp.Error != nil {
		job.Error = *resp.Error
	}
	for _, w := range resp.Words {
		job.Words = append(job.Words, domain.Word{
			Text:       w.Text,
			StartMs:    w.Start,
			EndMs:      w.End,
			Confidence: w.Confidence,
			Speaker:    w.Speaker,
		})
	}

	return job, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("assemblyai %s %s: %w", method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("assemblyai %s %s: status %d: %s", method, path, resp.StatusCode, string(raw))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func mapStatus(raw string) domain.ProviderJobStatus {
	switch raw {
	case "queued":
		return domain.ProviderStatusQueued
	case "processing":
		return domain.ProviderStatusProcessing
	case "completed":
		return domain.ProviderStatusCompleted
	case "error":
		return domain.ProviderStatusError
	}
	// Unknown states keep the poller waiting rather than failing the job.
	return domain.ProviderStatusProcessing
}
