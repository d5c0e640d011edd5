package models

import "testing"

func TestFullTextJoinsSegments(t *testing.T) {
	data := TranscriptionData{
		Text: "ignored when segments exist",
		Segments: []TranscriptSegment{
			{Text: "  hello there ", StartTime: 0, EndTime: 2},
			{Text: "general kenobi", StartTime: 2, EndTime: 4},
			{Text: "   ", StartTime: 4, EndTime: 5},
		},
	}
	if got := data.FullText(); got != "hello there general kenobi" {
		t.Errorf("FullText = %q", got)
	}
}

func TestFullTextFallsBackToText(t *testing.T) {
	data := TranscriptionData{Text: "  raw engine text  "}
	if got := data.FullText(); got != "raw engine text" {
		t.Errorf("FullText = %q", got)
	}
}

func TestDuration(t *testing.T) {
	data := TranscriptionData{
		Segments: []TranscriptSegment{
			{StartTime: 0, EndTime: 30},
			{StartTime: 30, EndTime: 92.5},
		},
	}
	if got := data.Duration(); got != 92.5 {
		t.Errorf("Duration = %v, want 92.5", got)
	}
	if got := (TranscriptionData{}).Duration(); got != 0 {
		t.Errorf("Duration of empty transcription = %v, want 0", got)
	}
}
