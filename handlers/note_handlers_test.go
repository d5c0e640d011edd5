package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"voicenotes/internal/notestore"
	"voicenotes/internal/pipeline"
	"voicenotes/internal/worker"
	"voicenotes/models"
)

type stubTranscriber struct {
	data *models.TranscriptionData
	err  error
}

func (s *stubTranscriber) Transcribe(_ context.Context, _ string) (*models.TranscriptionData, error) {
	return s.data, s.err
}

type stubSummarizer struct {
	summary string
	err     error
}

func (s *stubSummarizer) Summarize(_ context.Context, _ string, _, _ int) (string, error) {
	return s.summary, s.err
}

type testEnv struct {
	app   *fiber.App
	store *notestore.Store
}

func newTestEnv(t *testing.T, transcriber *stubTranscriber, summarizer *stubSummarizer) *testEnv {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := notestore.New(t.TempDir())
	p := pipeline.New(transcriber, summarizer, store, logger, false)

	dispatcher := worker.NewDispatcher(2, 8, logger)
	dispatcher.Run()
	t.Cleanup(dispatcher.Stop)

	h := NewApplicationHandler(p, dispatcher, store, logger)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")
	apiV1.Post("/notes/process", h.ProcessAudio)
	apiV1.Get("/notes", h.ListNotes)
	apiV1.Delete("/notes/:date/:name", h.DeleteNote)

	return &testEnv{app: app, store: store}
}

func multipartAudioRequest(t *testing.T, filename string, includeAudio bool) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if includeAudio {
		part, err := mw.CreateFormFile("audio_data", "capture.webm")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte("not-really-webm")); err != nil {
			t.Fatalf("write audio: %v", err)
		}
	}
	if filename != "" {
		if err := mw.WriteField("filename", filename); err != nil {
			t.Fatalf("write filename field: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notes/process", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestProcessAudioSuccess(t *testing.T) {
	transcriber := &stubTranscriber{data: &models.TranscriptionData{
		Segments: []models.TranscriptSegment{
			{Text: "hello world", StartTime: 0, EndTime: 45},
			{Text: "more words", StartTime: 45, EndTime: 90},
		},
	}}
	env := newTestEnv(t, transcriber, &stubSummarizer{summary: "First point. Second point. Third point."})

	resp, err := env.app.Test(multipartAudioRequest(t, "Meeting", true), -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var result models.ProcessResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Filename != "Meeting" {
		t.Errorf("filename = %q, want %q", result.Filename, "Meeting")
	}
	if result.Transcript != "hello world more words" {
		t.Errorf("transcript = %q", result.Transcript)
	}
	if len(result.Summary) != 3 {
		t.Fatalf("got %d bullets, want 3", len(result.Summary))
	}
	if result.Summary[0].Time != "00:30" || result.Summary[2].Time != "01:30" {
		t.Errorf("bullet times = %q..%q, want 00:30..01:30",
			result.Summary[0].Time, result.Summary[2].Time)
	}
}

func TestProcessAudioMissingPayload(t *testing.T) {
	env := newTestEnv(t, &stubTranscriber{}, &stubSummarizer{})

	resp, err := env.app.Test(multipartAudioRequest(t, "Meeting", false), -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestProcessAudioNoSpeech(t *testing.T) {
	env := newTestEnv(t, &stubTranscriber{data: &models.TranscriptionData{}}, &stubSummarizer{})

	resp, err := env.app.Test(multipartAudioRequest(t, "Silent", true), -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", resp.StatusCode)
	}

	var payload map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["status"] != "error" || payload["message"] == "" {
		t.Errorf("unexpected error payload: %v", payload)
	}
}

func TestListNotesReturnsStoredNotes(t *testing.T) {
	env := newTestEnv(t, &stubTranscriber{}, &stubSummarizer{})

	if _, err := env.store.ReserveFolder("Alpha", "2024-06-01"); err != nil {
		t.Fatalf("ReserveFolder: %v", err)
	}
	if _, err := env.store.ReserveFolder("Beta", "2024-06-02"); err != nil {
		t.Fatalf("ReserveFolder: %v", err)
	}

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/notes", nil), -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var notes []models.NoteInfo
	if err := json.NewDecoder(resp.Body).Decode(&notes); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	want := []models.NoteInfo{
		{Date: "2024-06-02", Name: "Beta"},
		{Date: "2024-06-01", Name: "Alpha"},
	}
	if len(notes) != len(want) {
		t.Fatalf("got %d notes, want %d", len(notes), len(want))
	}
	for i := range want {
		if notes[i] != want[i] {
			t.Errorf("notes[%d] = %v, want %v", i, notes[i], want[i])
		}
	}
}

func TestDeleteNote(t *testing.T) {
	env := newTestEnv(t, &stubTranscriber{}, &stubSummarizer{})

	if _, err := env.store.ReserveFolder("Victim", "2024-06-01"); err != nil {
		t.Fatalf("ReserveFolder: %v", err)
	}

	resp, err := env.app.Test(httptest.NewRequest(http.MethodDelete, "/api/v1/notes/2024-06-01/Victim", nil), -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	notes, err := env.store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(notes) != 0 {
		t.Errorf("note still listed after delete: %v", notes)
	}
}

func TestDeleteNoteWithEscapedSpace(t *testing.T) {
	env := newTestEnv(t, &stubTranscriber{}, &stubSummarizer{})

	if _, err := env.store.ReserveFolder("My Meeting", "2024-06-01"); err != nil {
		t.Fatalf("ReserveFolder: %v", err)
	}

	resp, err := env.app.Test(httptest.NewRequest(http.MethodDelete, "/api/v1/notes/2024-06-01/My%20Meeting", nil), -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	notes, err := env.store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(notes) != 0 {
		t.Errorf("note still listed after delete: %v", notes)
	}
}

func TestDeleteNotePrefersLiteralNameOverDecoded(t *testing.T) {
	env := newTestEnv(t, &stubTranscriber{}, &stubSummarizer{})

	// Two distinct notes whose names collide after percent-decoding.
	if _, err := env.store.ReserveFolder("Note%20Backup", "2024-06-01"); err != nil {
		t.Fatalf("ReserveFolder: %v", err)
	}
	if _, err := env.store.ReserveFolder("Note Backup", "2024-06-01"); err != nil {
		t.Fatalf("ReserveFolder: %v", err)
	}

	resp, err := env.app.Test(httptest.NewRequest(http.MethodDelete, "/api/v1/notes/2024-06-01/Note%20Backup", nil), -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	notes, err := env.store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(notes) != 1 || notes[0].Name != "Note Backup" {
		t.Errorf("remaining notes = %v, want only %q", notes, "Note Backup")
	}
}

func TestDeleteNoteNotFound(t *testing.T) {
	env := newTestEnv(t, &stubTranscriber{}, &stubSummarizer{})

	resp, err := env.app.Test(httptest.NewRequest(http.MethodDelete, "/api/v1/notes/2024-06-01/Missing", nil), -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestDeleteNoteRejectsBadDate(t *testing.T) {
	env := newTestEnv(t, &stubTranscriber{}, &stubSummarizer{})

	resp, err := env.app.Test(httptest.NewRequest(http.MethodDelete, "/api/v1/notes/not-a-date/Name", nil), -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestProcessAudioDefaultsNoteName(t *testing.T) {
	transcriber := &stubTranscriber{data: &models.TranscriptionData{
		Segments: []models.TranscriptSegment{{Text: "quick note", StartTime: 0, EndTime: 10}},
	}}
	env := newTestEnv(t, transcriber, &stubSummarizer{summary: "A note."})

	resp, err := env.app.Test(multipartAudioRequest(t, "", true), -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var result models.ProcessResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.HasPrefix(result.Filename, "note_") {
		t.Errorf("filename = %q, want generated note_* name", result.Filename)
	}
}
