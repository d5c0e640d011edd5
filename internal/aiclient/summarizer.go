package aiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultSummarizerURL     = "http://localhost:8388"
	defaultSummarizerModel   = "facebook/bart-large-cnn"
	defaultSummarizerTimeout = 120 * time.Second
)

// SummarizerConfig holds configuration for the summarization client.
type SummarizerConfig struct {
	URL     string
	Model   string
	Timeout time.Duration
}

// SummarizerClient talks to an abstractive-summarization HTTP sidecar. The
// sidecar wraps a transformers summarization pipeline and honors the
// max_length/min_length target bounds.
type SummarizerClient struct {
	cfg    SummarizerConfig
	client *http.Client
	logger *logrus.Logger
}

// NewSummarizerClient creates a summarization client, filling in defaults for
// unset config fields.
func NewSummarizerClient(cfg SummarizerConfig, logger *logrus.Logger) *SummarizerClient {
	if cfg.URL == "" {
		cfg.URL = defaultSummarizerURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultSummarizerModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultSummarizerTimeout
	}
	return &SummarizerClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type summarizeRequest struct {
	Model     string `json:"model"`
	Text      string `json:"text"`
	MaxLength int    `json:"max_length"`
	MinLength int    `json:"min_length"`
	DoSample  bool   `json:"do_sample"`
}

type summarizeResponse struct {
	SummaryText string `json:"summary_text"`
}

// Summarize sends the transcript to the summarization engine and returns the
// flat summary string.
func (s *SummarizerClient) Summarize(ctx context.Context, text string, maxLength, minLength int) (string, error) {
	payload, err := json.Marshal(summarizeRequest{
		Model:     s.cfg.Model,
		Text:      text,
		MaxLength: maxLength,
		MinLength: minLength,
	})
	if err != nil {
		return "", fmt.Errorf("encode summarize request: %w", err)
	}

	url := s.cfg.URL + "/summarize"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build summarize request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	s.logger.Debugf("Sending summarize request (max_length=%d, min_length=%d)", maxLength, minLength)
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("summarize request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("summarization engine returned %d: %s", resp.StatusCode, string(snippet))
	}

	var parsed summarizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode summarize response: %w", err)
	}
	return parsed.SummaryText, nil
}
