package transcribe

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const defaultWhisperModel = "whisper-large-v3"

// WhisperConfig holds the HTTP adapter's configuration.
type WhisperConfig struct {
	BaseURL    string // e.g. https://api.groq.com/openai/v1
	APIKey     string
	Model      string // default whisper-large-v3
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// WhisperClient talks to a whisper-compatible transcription endpoint
// (OpenAI/Groq style: multipart POST to /audio/transcriptions).
type WhisperClient struct {
	cfg        WhisperConfig
	httpClient *http.Client
}

func NewWhisperClient(cfg WhisperConfig) *WhisperClient {
	if cfg.Model == "" {
		cfg.Model = defaultWhisperModel
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Minute}
	}
	return &WhisperClient{cfg: cfg, httpClient: httpClient}
}

func (c *WhisperClient) Name() string { return "whisper" }

func (c *WhisperClient) Available() bool {
	return c.cfg.BaseURL != "" && c.cfg.APIKey != ""
}

func (c *WhisperClient) SupportedFormats() []string {
	return []string{".mp3", ".mp4", ".m4a", ".wav", ".webm", ".flac", ".ogg"}
}

// verbose_json response shape shared by OpenAI and Groq.
type whisperResponse struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

func (c *WhisperClient) Transcribe(ctx context.Context, audioPath string, opts Options) (*Result, error) {
	if !c.Available() {
		return nil, fmt.Errorf("whisper service not configured")
	}
	ext := strings.ToLower(filepath.Ext(audioPath))
	supported := false
	for _, f := range c.SupportedFormats() {
		if ext == f {
			supported = true
			break
		}
	}
	if !supported {
		return nil, fmt.Errorf("unsupported audio format %q", ext)
	}

	f, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	model := opts.Model
	if model == "" {
		model = c.cfg.Model
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, fmt.Errorf("build multipart request: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("read audio file: %w", err)
	}
	_ = mw.WriteField("model", model)
	_ = mw.WriteField("response_format", "verbose_json")
	_ = mw.WriteField("temperature", strconv.FormatFloat(opts.Temperature, 'f', -1, 64))
	if opts.Language != "" && opts.Language != "auto" {
		_ = mw.WriteField("language", opts.Language)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build multipart request: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("X-Request-Id", generateRequestID())

	c.cfg.Logger.Info("transcribing audio",
		"url", url,
		"model", model,
		"file", filepath.Base(audioPath),
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var wr whisperResponse
	if err := json.Unmarshal(respBody, &wr); err != nil {
		return nil, fmt.Errorf("parse transcription response: %w", err)
	}

	result := &Result{
		Language:       wr.Language,
		Duration:       wr.Duration,
		Model:          model,
		ProcessingTime: time.Since(start).Seconds(),
	}
	for _, s := range wr.Segments {
		result.Segments = append(result.Segments, Segment{
			Text:     strings.TrimSpace(s.Text),
			Start:    s.Start,
			End:      s.End,
			Language: wr.Language,
		})
	}

	c.cfg.Logger.Info("transcription complete",
		"segments", len(result.Segments),
		"language", result.Language,
		"duration_s", result.Duration,
	)
	return result, nil
}

func generateRequestID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:])
}

var _ Service = (*WhisperClient)(nil)
