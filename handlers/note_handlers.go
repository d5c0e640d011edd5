package handlers

import (
	"errors"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"voicenotes/internal/jobs"
	"voicenotes/internal/notestore"
	"voicenotes/internal/pipeline"
	"voicenotes/internal/summary"
	"voicenotes/utils"
)

var validate = validator.New()

// ProcessAudio godoc
// @Summary Process a recorded note
// @Description Accepts an audio upload, transcribes and summarizes it, and persists the note.
// @Tags notes
// @Accept mpfd
// @Produce json
// @Param audio_data formData file true "Recorded audio"
// @Param filename formData string false "Requested note name"
// @Router /notes/process [post]
func (h *ApplicationHandler) ProcessAudio(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("audio_data")
	if err != nil {
		h.Logger.Warnf("Process request without audio payload: %v", err)
		return utils.RespondWithError(c, fiber.StatusBadRequest, "No audio received")
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.Logger.Errorf("Error opening uploaded audio: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not read uploaded audio")
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		h.Logger.Errorf("Error reading uploaded audio: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not read uploaded audio")
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext == "" {
		ext = ".webm"
	}
	requestedName := c.FormValue("filename")

	job := jobs.NewProcessNoteJob(c.UserContext(), h.Pipeline, audio, ext, requestedName)
	if err := h.Dispatcher.Submit(job); err != nil {
		h.Logger.Warnf("Rejecting process request, queue saturated: %v", err)
		return utils.RespondWithError(c, fiber.StatusServiceUnavailable, "Server is busy, try again shortly")
	}

	outcome := job.Wait()
	if outcome.Err != nil {
		h.Logger.Errorf("Note pipeline failed: %v", outcome.Err)
		return utils.RespondWithError(c, statusForPipelineError(outcome.Err), outcome.Err.Error())
	}

	return c.Status(fiber.StatusOK).JSON(outcome.Result)
}

// ListNotes godoc
// @Summary List stored notes
// @Description Returns stored notes, newest date first.
// @Tags notes
// @Produce json
// @Router /notes [get]
func (h *ApplicationHandler) ListNotes(c *fiber.Ctx) error {
	notes, err := h.Store.List()
	if err != nil {
		h.Logger.Errorf("Error listing notes: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not list notes")
	}
	return c.Status(fiber.StatusOK).JSON(notes)
}

// deleteNoteParams is validated before touching the store.
type deleteNoteParams struct {
	Date string `validate:"required,datetime=2006-01-02"`
	Name string `validate:"required"`
}

// DeleteNote godoc
// @Summary Delete a stored note
// @Description Removes a note's artifacts, its folder, and its date bucket when empty.
// @Tags notes
// @Produce json
// @Param date path string true "Date bucket (YYYY-MM-DD)"
// @Param name path string true "Note folder name"
// @Router /notes/{date}/{name} [delete]
func (h *ApplicationHandler) DeleteNote(c *fiber.Ctx) error {
	params := deleteNoteParams{
		Date: c.Params("date"),
		Name: c.Params("name"),
	}
	if err := validate.Struct(params); err != nil {
		h.Logger.Warnf("Invalid delete request: %v", err)
		return utils.RespondWithError(c, fiber.StatusBadRequest,
			strings.Join(utils.FormatValidationErrors(err), "; "))
	}

	// Routing leaves percent-escapes in the name intact. A folder name may
	// itself contain a literal escape sequence, so the raw name wins; the
	// decoded form is tried only when the literal one does not exist.
	name := params.Name
	err := h.Store.Delete(params.Date, name)
	if errors.Is(err, notestore.ErrNotFound) {
		if decoded, derr := url.PathUnescape(params.Name); derr == nil && decoded != params.Name {
			name = decoded
			err = h.Store.Delete(params.Date, name)
		}
	}
	if err != nil {
		if errors.Is(err, notestore.ErrNotFound) || errors.Is(err, notestore.ErrInvalidName) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Note not found")
		}
		h.Logger.Errorf("Error deleting note %s/%s: %v", params.Date, name, err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not delete note")
	}

	h.Logger.Infof("Deleted note %s/%s", params.Date, name)
	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{"deleted": name})
}

// statusForPipelineError maps pipeline stage failures onto HTTP statuses.
func statusForPipelineError(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrMissingAudio):
		return fiber.StatusBadRequest
	case errors.Is(err, pipeline.ErrNoSpeechDetected):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, pipeline.ErrSummarizationFailed), errors.Is(err, summary.ErrEmptySummary):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
