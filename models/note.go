package models

import "strings"

// TranscriptionData represents the structure of transcription data returned
// by the speech-to-text engine.
type TranscriptionData struct {
	Text     string              `json:"text"`
	Segments []TranscriptSegment `json:"segments"`
}

// TranscriptSegment represents a single time-aligned segment of a transcription.
type TranscriptSegment struct {
	Text      string  `json:"text"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

// FullText returns the transcript text assembled from the individual segments,
// joined with single spaces and trimmed. When the engine returned no segments
// the top-level text field is used instead.
func (t TranscriptionData) FullText() string {
	if len(t.Segments) == 0 {
		return strings.TrimSpace(t.Text)
	}
	parts := make([]string, 0, len(t.Segments))
	for _, seg := range t.Segments {
		if s := strings.TrimSpace(seg.Text); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Duration returns the end time of the last segment in seconds, or 0 when no
// segments were produced.
func (t TranscriptionData) Duration() float64 {
	if len(t.Segments) == 0 {
		return 0
	}
	return t.Segments[len(t.Segments)-1].EndTime
}

// SummaryBullet is a single timestamped summary line shown to the user.
type SummaryBullet struct {
	Time string `json:"time"`
	Text string `json:"text"`
}

// NoteInfo identifies a stored note within the recordings tree.
type NoteInfo struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

// ProcessResult is the outcome of a successful note processing run.
type ProcessResult struct {
	Filename   string          `json:"filename"`
	Transcript string          `json:"transcript"`
	Summary    []SummaryBullet `json:"summary"`
}
