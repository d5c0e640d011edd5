package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"voicenotes/config"
	"voicenotes/handlers"
	"voicenotes/internal/aiclient"
	"voicenotes/internal/notestore"
	"voicenotes/internal/pipeline"
	"voicenotes/internal/worker"
	"voicenotes/middleware"
)

func main() {
	cfg := config.Load()
	logger := config.NewLogger()

	transcriber := aiclient.NewWhisperClient(aiclient.WhisperConfig{
		URL:     cfg.WhisperURL,
		Model:   cfg.WhisperModel,
		Timeout: cfg.WhisperTimeout,
	}, logger)
	summarizer := aiclient.NewSummarizerClient(aiclient.SummarizerConfig{
		URL:     cfg.SummarizerURL,
		Model:   cfg.SummarizerModel,
		Timeout: cfg.SummarizerTimeout,
	}, logger)

	store := notestore.New(cfg.RecordingsDir)
	notePipeline := pipeline.New(transcriber, summarizer, store, logger, cfg.ConvertAudio)

	dispatcher := worker.NewDispatcher(cfg.MaxWorkers, cfg.JobQueueSize, logger)
	dispatcher.Run()

	h := handlers.NewApplicationHandler(notePipeline, dispatcher, store, logger)

	app := fiber.New(fiber.Config{
		BodyLimit: 64 * 1024 * 1024, // browser captures of long recordings
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	app.Use(middleware.RequestLogger(logger))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "ok",
			"message": "Voice notes service is healthy",
		})
	})

	apiV1 := app.Group("/api/v1")
	apiV1.Post("/notes/process", h.ProcessAudio)
	apiV1.Get("/notes", h.ListNotes)
	apiV1.Delete("/notes/:date/:name", h.DeleteNote)

	// Graceful shutdown: drain in-flight pipelines before exiting.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		logger.Info("Shutdown signal received")
		if err := app.Shutdown(); err != nil {
			logger.Errorf("Error shutting down server: %v", err)
		}
		dispatcher.Stop()
	}()

	logger.Infof("Starting voice notes service on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatalf("Server stopped: %v", err)
	}
}
