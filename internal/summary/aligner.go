package summary

import (
	"errors"
	"fmt"
	"strings"

	"voicenotes/models"
)

// ErrEmptySummary is returned when the summarizer output contains no
// sentence-like fragments to align.
var ErrEmptySummary = errors.New("summary contains no sentences")

const sentenceTerminator = "."

// Align converts a flat summary string into timestamped bullets. Per-sentence
// timing is not available from the summarizer, so the recording duration is
// prorated uniformly: fragment i of n is anchored at (i+1)*duration/n seconds,
// ending at the recording's end rather than its start. A zero duration
// anchors every bullet at 00:00.
func Align(summaryText string, totalDuration float64) ([]models.SummaryBullet, error) {
	fragments := splitSentences(summaryText)
	n := len(fragments)
	if n == 0 {
		return nil, ErrEmptySummary
	}

	bullets := make([]models.SummaryBullet, 0, n)
	for i, fragment := range fragments {
		timestamp := float64(i+1) * totalDuration / float64(n)
		bullets = append(bullets, models.SummaryBullet{
			Time: FormatTime(timestamp),
			Text: fragment + sentenceTerminator,
		})
	}
	return bullets, nil
}

// splitSentences breaks text on the sentence terminator and drops empty or
// whitespace-only fragments. The terminator is stripped here and re-appended
// by Align.
func splitSentences(text string) []string {
	var fragments []string
	for _, part := range strings.Split(text, sentenceTerminator) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			fragments = append(fragments, trimmed)
		}
	}
	return fragments
}

// FormatTime renders seconds as zero-padded MM:SS. Fractional seconds are
// truncated, not rounded, so 59.9 formats as "00:59".
func FormatTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// LengthBounds derives the summarizer's target length bounds from the
// transcript word count: maxLen = clamp(words/2, 30, 150) and
// minLen = max(10, words/8), capped at maxLen so the engine's
// min <= max contract always holds.
func LengthBounds(wordCount int) (maxLen, minLen int) {
	maxLen = wordCount / 2
	if maxLen < 30 {
		maxLen = 30
	}
	if maxLen > 150 {
		maxLen = 150
	}

	minLen = wordCount / 8
	if minLen < 10 {
		minLen = 10
	}
	if minLen > maxLen {
		minLen = maxLen
	}
	return maxLen, minLen
}
