package jobs

import (
	"context"

	"github.com/google/uuid"

	"voicenotes/internal/pipeline"
	"voicenotes/models"
)

// ProcessNoteResult carries the pipeline outcome back to the submitting
// handler.
type ProcessNoteResult struct {
	Result *models.ProcessResult
	Err    error
}

// ProcessNoteJob wraps one note pipeline run for execution on the worker
// pool. The submitting handler blocks on Wait until the run completes.
type ProcessNoteJob struct {
	jobID         string
	ctx           context.Context
	pipeline      *pipeline.Pipeline
	audio         []byte
	ext           string
	requestedName string
	done          chan ProcessNoteResult
}

// NewProcessNoteJob creates a job for one audio upload.
func NewProcessNoteJob(ctx context.Context, p *pipeline.Pipeline, audio []byte, ext, requestedName string) *ProcessNoteJob {
	return &ProcessNoteJob{
		jobID:         uuid.NewString(),
		ctx:           ctx,
		pipeline:      p,
		audio:         audio,
		ext:           ext,
		requestedName: requestedName,
		done:          make(chan ProcessNoteResult, 1),
	}
}

// ID returns the unique identifier of the job.
func (j *ProcessNoteJob) ID() string {
	return j.jobID
}

// Execute runs the pipeline and delivers the outcome to the waiter.
func (j *ProcessNoteJob) Execute() error {
	result, err := j.pipeline.Process(j.ctx, j.audio, j.ext, j.requestedName)
	j.done <- ProcessNoteResult{Result: result, Err: err}
	return err
}

// Wait blocks until the job has executed and returns its outcome.
func (j *ProcessNoteJob) Wait() ProcessNoteResult {
	return <-j.done
}
