package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"voicenotes/internal/aiclient"
	"voicenotes/internal/media"
	"voicenotes/internal/notestore"
	"voicenotes/internal/summary"
	"voicenotes/models"
)

// Stage failure sentinels. Each aborts the remaining stages and surfaces to
// the caller with a descriptive message; no retries are attempted.
var (
	ErrMissingAudio        = errors.New("no audio received")
	ErrNoSpeechDetected    = errors.New("no speech detected in recording")
	ErrSummarizationFailed = errors.New("summarizer returned empty output")
)

// Pipeline runs a single note request end to end: persist audio, transcribe,
// summarize, align, persist artifacts. Each stage depends on the previous
// one's output, so a pipeline run is strictly sequential; concurrency comes
// from running multiple requests on separate workers.
type Pipeline struct {
	transcriber  aiclient.Transcriber
	summarizer   aiclient.Summarizer
	store        *notestore.Store
	logger       *logrus.Logger
	convertAudio bool
}

// New constructs a Pipeline with explicitly injected collaborators. When
// convertAudio is set, uploads are re-encoded to WAV before transcription.
func New(transcriber aiclient.Transcriber, summarizer aiclient.Summarizer, store *notestore.Store, logger *logrus.Logger, convertAudio bool) *Pipeline {
	return &Pipeline{
		transcriber:  transcriber,
		summarizer:   summarizer,
		store:        store,
		logger:       logger,
		convertAudio: convertAudio,
	}
}

// Process runs the full pipeline for one audio upload. Once the audio blob is
// persisted, a downstream failure leaves it on disk without transcript or
// summary artifacts; orphans are not rolled back.
func (p *Pipeline) Process(ctx context.Context, audio []byte, ext, requestedName string) (*models.ProcessResult, error) {
	if len(audio) == 0 {
		return nil, ErrMissingAudio
	}

	dateBucket := time.Now().Format("2006-01-02")
	folderName, err := p.store.ReserveFolder(requestedName, dateBucket)
	if err != nil {
		return nil, fmt.Errorf("reserve note folder: %w", err)
	}
	logger := p.logger.WithFields(logrus.Fields{"date": dateBucket, "note": folderName})

	audioPath, err := p.store.SaveAudio(dateBucket, folderName, ext, audio)
	if err != nil {
		return nil, fmt.Errorf("persist audio: %w", err)
	}
	logger.Infof("Audio persisted to %s", audioPath)

	asrInput := audioPath
	if p.convertAudio {
		wavPath, convErr := media.ExtractWAV(ctx, audioPath, "")
		if convErr != nil {
			logger.Warnf("Audio conversion failed, sending original to ASR: %v", convErr)
		} else {
			asrInput = wavPath
			defer os.Remove(wavPath)
		}
	}

	transcription, err := p.transcriber.Transcribe(ctx, asrInput)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}
	transcript := transcription.FullText()
	if transcript == "" {
		return nil, ErrNoSpeechDetected
	}
	logger.Infof("Transcribed %d segments, %d characters", len(transcription.Segments), len(transcript))

	wordCount := len(strings.Fields(transcript))
	maxLen, minLen := summary.LengthBounds(wordCount)
	summaryText, err := p.summarizer.Summarize(ctx, transcript, maxLen, minLen)
	if err != nil {
		return nil, fmt.Errorf("summarization failed: %w", err)
	}
	if strings.TrimSpace(summaryText) == "" {
		return nil, ErrSummarizationFailed
	}

	bullets, err := summary.Align(summaryText, transcription.Duration())
	if err != nil {
		return nil, err
	}
	logger.Infof("Aligned summary into %d bullets", len(bullets))

	if err := p.store.SaveTranscript(dateBucket, folderName, transcript); err != nil {
		return nil, fmt.Errorf("persist transcript: %w", err)
	}
	if err := p.store.SaveSummary(dateBucket, folderName, bullets); err != nil {
		return nil, fmt.Errorf("persist summary: %w", err)
	}

	return &models.ProcessResult{
		Filename:   folderName,
		Transcript: transcript,
		Summary:    bullets,
	}, nil
}
