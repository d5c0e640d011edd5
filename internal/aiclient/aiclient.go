package aiclient

import (
	"context"

	"voicenotes/models"
)

// Transcriber converts persisted audio into text plus time-aligned segments.
// Returning zero segments is a valid outcome for silent audio, not an error.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*models.TranscriptionData, error)
}

// Summarizer condenses a transcript into a short abstract. maxLength and
// minLength are target bounds in the engine's own units and must satisfy
// minLength <= maxLength.
type Summarizer interface {
	Summarize(ctx context.Context, text string, maxLength, minLength int) (string, error)
}
