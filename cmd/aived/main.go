package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AndrewPopesku/aive/internal/api"
	"github.com/AndrewPopesku/aive/internal/config"
	"github.com/AndrewPopesku/aive/internal/format"
	"github.com/AndrewPopesku/aive/internal/logging"
	"github.com/AndrewPopesku/aive/internal/render"
	"github.com/AndrewPopesku/aive/internal/store"
	"github.com/AndrewPopesku/aive/internal/template"
	"github.com/AndrewPopesku/aive/internal/transcribe"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	startTime := time.Now()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	if err := os.MkdirAll(cfg.OutputDir(), 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting aive service", "version", config.Version, "data_dir", cfg.DataDir())

	mode, err := render.ParseMode(cfg.QueueMode())
	if err != nil {
		return fmt.Errorf("invalid queue mode: %w", err)
	}

	journal, err := store.Open(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize job journal: %w", err)
	}
	defer journal.Close()

	// Jobs left pending or running by a previous process can never finish.
	if n, err := journal.MarkInterrupted(context.Background()); err != nil {
		logger.Warn("failed to mark interrupted jobs", "error", err)
	} else if n > 0 {
		logger.Info("marked interrupted jobs from previous run", "count", n)
	}

	var renderer render.Renderer
	if ffmpeg, err := render.NewFFmpegRenderer(render.FFmpegConfig{
		BinaryPath: cfg.FFmpegPath(),
		Timeout:    cfg.RenderTimeout(),
		Logger:     logger,
	}); err != nil {
		logger.Warn("ffmpeg unavailable, render submissions will be rejected", "error", err)
	} else {
		renderer = ffmpeg
	}

	queue := render.NewQueue(render.QueueConfig{
		DefaultRenderer: renderer,
		Journal:         journal,
		Logger:          logger,
		Progress: func(snap render.Snapshot) {
			logger.Info("job progress",
				"job_id", snap.ID,
				"status", snap.Status,
				"progress", snap.Progress,
			)
		},
	})

	library, err := template.LoadDir(cfg.TemplatesDir())
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}
	if library.Len() == 0 {
		// Ship at least one usable template on a fresh install.
		if intro, err := template.SimpleText("simple_text", "title", 5.0, 1920, 1080); err == nil {
			library.Add(intro, "general")
		}
	}
	logger.Info("templates loaded", "count", library.Len(), "dir", cfg.TemplatesDir())

	if cfg.TranscribeURL() != "" {
		whisper := transcribe.NewWhisperClient(transcribe.WhisperConfig{
			BaseURL: cfg.TranscribeURL(),
			APIKey:  cfg.TranscribeAPIKey(),
			Logger:  logger,
		})
		logger.Info("transcription configured",
			"service", whisper.Name(),
			"available", whisper.Available(),
		)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go dispatch(ctx, queue, mode, cfg.Workers(), logger)

	apiServer := api.NewServer(api.ServerConfig{
		Port:      cfg.Port(),
		Queue:     queue,
		Templates: library,
		Formats:   format.DefaultRegistry(),
		History:   journal,
		OutputDir: cfg.OutputDir(),
		Logger:    logger,
		StartTime: startTime,
		Version:   config.Version,
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("received shutdown signal", "signal", sig)

	queue.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// dispatch runs the queue whenever pending jobs appear. Run returns once the
// queue drains, so the loop polls for newly submitted work.
func dispatch(ctx context.Context, queue *render.Queue, mode render.Mode, workers int, logger *slog.Logger) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if queue.Stats().Pending == 0 {
				continue
			}
			if err := queue.Run(ctx, mode, workers); err != nil && err != render.ErrQueueRunning {
				logger.Error("queue run failed", "error", err)
			}
		}
	}
}
