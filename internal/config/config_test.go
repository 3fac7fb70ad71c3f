package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port())
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel())
	assert.Equal(t, DefaultWorkers, cfg.Workers())
	assert.Equal(t, DefaultQueueMode, cfg.QueueMode())
	assert.Equal(t, DefaultRenderTimeout*time.Second, cfg.RenderTimeout())
	assert.Empty(t, cfg.FFmpegPath())
	assert.Empty(t, cfg.TranscribeURL())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvPort, "9000")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvDataDir, "/var/lib/aive")
	t.Setenv(EnvTemplatesDir, "/etc/aive/templates")
	t.Setenv(EnvFFmpegPath, "/opt/ffmpeg/bin/ffmpeg")
	t.Setenv(EnvWorkers, "8")
	t.Setenv(EnvQueueMode, "sequential")
	t.Setenv(EnvRenderTimeout, "60")
	t.Setenv(EnvTranscribeURL, "https://whisper.example.com/v1")
	t.Setenv(EnvTranscribeKey, "sk-test")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port())
	assert.Equal(t, "debug", cfg.LogLevel())
	assert.Equal(t, "/var/lib/aive", cfg.DataDir())
	assert.Equal(t, filepath.Join("/var/lib/aive", DBFilename), cfg.DBPath())
	assert.Equal(t, filepath.Join("/var/lib/aive", "output"), cfg.OutputDir())
	assert.Equal(t, "/etc/aive/templates", cfg.TemplatesDir())
	assert.Equal(t, "/opt/ffmpeg/bin/ffmpeg", cfg.FFmpegPath())
	assert.Equal(t, 8, cfg.Workers())
	assert.Equal(t, "sequential", cfg.QueueMode())
	assert.Equal(t, time.Minute, cfg.RenderTimeout())
	assert.Equal(t, "https://whisper.example.com/v1", cfg.TranscribeURL())
	assert.Equal(t, "sk-test", cfg.TranscribeAPIKey())
}

func TestTemplatesDirDefaultsUnderDataDir(t *testing.T) {
	t.Setenv(EnvDataDir, "/var/lib/aive")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/var/lib/aive", DefaultTemplatesDir), cfg.TemplatesDir())
}

func TestInvalidValues(t *testing.T) {
	cases := []struct {
		name  string
		env   string
		value string
	}{
		{"port not a number", EnvPort, "eight"},
		{"port out of range", EnvPort, "70000"},
		{"port zero", EnvPort, "0"},
		{"workers not a number", EnvWorkers, "many"},
		{"workers zero", EnvWorkers, "0"},
		{"timeout not a number", EnvRenderTimeout, "soon"},
		{"timeout negative", EnvRenderTimeout, "-5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.env, tc.value)
			_, err := New()
			assert.Error(t, err)
		})
	}
}
