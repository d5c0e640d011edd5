package aiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"voicenotes/models"
)

const (
	defaultWhisperURL     = "http://localhost:8387"
	defaultWhisperModel   = "base"
	defaultWhisperTimeout = 120 * time.Second
)

// WhisperConfig holds configuration for the Whisper transcription client.
type WhisperConfig struct {
	URL     string
	Model   string
	Timeout time.Duration
}

// WhisperClient talks to a faster-whisper HTTP sidecar exposing an
// OpenAI-compatible transcription endpoint with verbose JSON output.
type WhisperClient struct {
	cfg    WhisperConfig
	client *http.Client
	logger *logrus.Logger
}

// NewWhisperClient creates a transcription client, filling in defaults for
// unset config fields.
func NewWhisperClient(cfg WhisperConfig, logger *logrus.Logger) *WhisperClient {
	if cfg.URL == "" {
		cfg.URL = defaultWhisperURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultWhisperModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultWhisperTimeout
	}
	return &WhisperClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type whisperResponse struct {
	Text     string `json:"text"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// Transcribe uploads the audio file and returns the transcription with its
// time-aligned segments. Silence yields an empty result, not an error.
func (w *WhisperClient) Transcribe(ctx context.Context, audioPath string) (*models.TranscriptionData, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, fmt.Errorf("build multipart payload: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("copy audio into payload: %w", err)
	}
	_ = mw.WriteField("model", w.cfg.Model)
	_ = mw.WriteField("response_format", "verbose_json")
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart payload: %w", err)
	}

	url := w.cfg.URL + "/v1/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, fmt.Errorf("build transcription request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	w.logger.Debugf("Sending transcription request for %s to %s", filepath.Base(audioPath), url)
	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("transcription engine returned %d: %s", resp.StatusCode, string(snippet))
	}

	var parsed whisperResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode transcription response: %w", err)
	}

	data := &models.TranscriptionData{Text: parsed.Text}
	for _, seg := range parsed.Segments {
		data.Segments = append(data.Segments, models.TranscriptSegment{
			Text:      seg.Text,
			StartTime: seg.Start,
			EndTime:   seg.End,
		})
	}
	w.logger.Debugf("Transcription returned %d segments", len(data.Segments))
	return data, nil
}
