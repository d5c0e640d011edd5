package handlers

import (
	"github.com/sirupsen/logrus"

	"voicenotes/internal/notestore"
	"voicenotes/internal/pipeline"
	"voicenotes/internal/worker"
)

// ApplicationHandler holds shared dependencies for handlers.
type ApplicationHandler struct {
	Pipeline   *pipeline.Pipeline
	Dispatcher *worker.Dispatcher
	Store      *notestore.Store
	Logger     *logrus.Logger
}

// NewApplicationHandler creates a new ApplicationHandler with the given
// dependencies.
func NewApplicationHandler(p *pipeline.Pipeline, d *worker.Dispatcher, s *notestore.Store, logger *logrus.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		Pipeline:   p,
		Dispatcher: d,
		Store:      s,
		Logger:     logger,
	}
}
