// Package config provides configuration management for the aive service.
// Configuration is loaded from environment variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	// Default values
	DefaultPort          = 8787
	DefaultLogLevel      = "info"
	DefaultDataDir       = ".aive"
	DefaultTemplatesDir  = "templates"
	DefaultWorkers       = 2
	DefaultQueueMode     = "parallel_thread"
	DefaultRenderTimeout = 1800 // seconds, 30 minutes

	// Environment variable names
	EnvPort          = "AIVE_PORT"
	EnvLogLevel      = "AIVE_LOG_LEVEL"
	EnvDataDir       = "AIVE_DATA_DIR"
	EnvTemplatesDir  = "AIVE_TEMPLATES_DIR"
	EnvFFmpegPath    = "AIVE_FFMPEG_PATH"
	EnvWorkers       = "AIVE_WORKERS"
	EnvQueueMode     = "AIVE_QUEUE_MODE"
	EnvRenderTimeout = "AIVE_RENDER_TIMEOUT"
	EnvTranscribeURL = "AIVE_TRANSCRIBE_URL"
	EnvTranscribeKey = "AIVE_TRANSCRIBE_API_KEY"

	// Database filename
	DBFilename = "aive.db"
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	OutputDir() string
	TemplatesDir() string
	FFmpegPath() string
	Workers() int
	QueueMode() string
	RenderTimeout() time.Duration
	TranscribeURL() string
	TranscribeAPIKey() string
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port          int
	logLevel      string
	dataDir       string
	templatesDir  string
	ffmpegPath    string
	workers       int
	queueMode     string
	renderTimeout time.Duration

	transcribeURL string
	transcribeKey string
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:          DefaultPort,
		logLevel:      DefaultLogLevel,
		dataDir:       defaultDataDir(),
		queueMode:     DefaultQueueMode,
		workers:       DefaultWorkers,
		renderTimeout: DefaultRenderTimeout * time.Second,
	}

	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	if td := os.Getenv(EnvTemplatesDir); td != "" {
		cfg.templatesDir = td
	}

	cfg.ffmpegPath = os.Getenv(EnvFFmpegPath)

	if w := os.Getenv(EnvWorkers); w != "" {
		workers, err := strconv.Atoi(w)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvWorkers, err)
		}
		if workers < 1 {
			return nil, fmt.Errorf("invalid %s: workers must be at least 1", EnvWorkers)
		}
		cfg.workers = workers
	}

	if m := os.Getenv(EnvQueueMode); m != "" {
		cfg.queueMode = m
	}

	if rt := os.Getenv(EnvRenderTimeout); rt != "" {
		secs, err := strconv.Atoi(rt)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvRenderTimeout, err)
		}
		if secs < 0 {
			return nil, fmt.Errorf("invalid %s: timeout must not be negative", EnvRenderTimeout)
		}
		cfg.renderTimeout = time.Duration(secs) * time.Second
	}

	cfg.transcribeURL = os.Getenv(EnvTranscribeURL)
	cfg.transcribeKey = os.Getenv(EnvTranscribeKey)

	return cfg, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// OutputDir returns the directory rendered files are written to
func (c *EnvConfig) OutputDir() string {
	return filepath.Join(c.dataDir, "output")
}

// TemplatesDir returns the directory template definitions are loaded from
func (c *EnvConfig) TemplatesDir() string {
	if c.templatesDir != "" {
		return c.templatesDir
	}
	return filepath.Join(c.dataDir, DefaultTemplatesDir)
}

// FFmpegPath returns an explicit ffmpeg binary path, empty for PATH lookup
func (c *EnvConfig) FFmpegPath() string {
	return c.ffmpegPath
}

// Workers returns the render queue worker count
func (c *EnvConfig) Workers() int {
	return c.workers
}

// QueueMode returns the render queue processing mode
func (c *EnvConfig) QueueMode() string {
	return c.queueMode
}

// RenderTimeout returns the per-job render timeout, zero disables it
func (c *EnvConfig) RenderTimeout() time.Duration {
	return c.renderTimeout
}

func (c *EnvConfig) TranscribeURL() string {
	return c.transcribeURL
}

func (c *EnvConfig) TranscribeAPIKey() string {
	return c.transcribeKey
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
