package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndrewPopesku/aive/internal/format"
	"github.com/AndrewPopesku/aive/internal/render"
	"github.com/AndrewPopesku/aive/internal/template"
	"github.com/AndrewPopesku/aive/internal/timeline"
)

type nullRenderer struct{}

func (nullRenderer) Render(ctx context.Context, tl *timeline.Timeline, outputPath string, opts render.Options) error {
	return nil
}
func (nullRenderer) CanRender(tl *timeline.Timeline) bool { return true }
func (nullRenderer) SupportedFormats() []string           { return []string{"mp4"} }
func (nullRenderer) EstimateRenderTime(tl *timeline.Timeline, opts render.Options) float64 {
	return 0
}
func (nullRenderer) Name() string { return "null" }

func testRouter(t *testing.T) (http.Handler, ServerConfig) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	queue := render.NewQueue(render.QueueConfig{
		DefaultRenderer: nullRenderer{},
		Logger:          logger,
	})

	lib := template.NewLibrary()
	tmpl, err := template.SimpleText("intro", "title", 5.0, 1920, 1080)
	require.NoError(t, err)
	lib.Add(tmpl, "basic")

	cfg := ServerConfig{
		Queue:     queue,
		Templates: lib,
		Formats:   format.DefaultRegistry(),
		OutputDir: t.TempDir(),
		Logger:    logger,
		StartTime: time.Now(),
		Version:   "test",
	}
	return NewRouter(cfg), cfg
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	h, _ := testRouter(t)
	rec := doJSON(t, h, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[HealthResponse](t, rec)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "test", resp.Version)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestListTemplates(t *testing.T) {
	h, _ := testRouter(t)

	rec := doJSON(t, h, http.MethodGet, "/templates", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"intro"}, decode[TemplatesResponse](t, rec).Templates)

	rec = doJSON(t, h, http.MethodGet, "/templates?category=basic", nil)
	assert.Equal(t, []string{"intro"}, decode[TemplatesResponse](t, rec).Templates)

	rec = doJSON(t, h, http.MethodGet, "/templates?category=nope", nil)
	assert.Empty(t, decode[TemplatesResponse](t, rec).Templates)
}

func TestGetTemplate(t *testing.T) {
	h, _ := testRouter(t)

	rec := doJSON(t, h, http.MethodGet, "/templates/intro", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[TemplateResponse](t, rec)
	assert.Equal(t, "intro", resp.Name)
	assert.Equal(t, "basic", resp.Category)
	assert.Equal(t, []string{"title"}, resp.RequiredKeys)

	rec = doJSON(t, h, http.MethodGet, "/templates/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRenderTemplateAccepted(t *testing.T) {
	h, cfg := testRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/templates/intro/render", RenderRequest{
		Data:   map[string]any{"title": "Hello"},
		Preset: "fast_preview",
	})
	require.Equal(t, http.StatusAccepted, rec.Code)
	resp := decode[RenderResponse](t, rec)
	assert.NotEmpty(t, resp.JobID)

	snap, ok := cfg.Queue.Get(resp.JobID)
	require.True(t, ok)
	assert.Equal(t, render.StatusPending, snap.Status)
	assert.Equal(t, "intro", snap.Metadata["template_name"])
}

func TestRenderTemplateValidationProblems(t *testing.T) {
	h, cfg := testRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/templates/intro/render", RenderRequest{
		Data: map[string]any{},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "VALIDATION_FAILED", resp.Code)
	assert.Equal(t, []string{"missing required placeholder: title"}, resp.Problems)
	assert.Zero(t, cfg.Queue.Len())
}

func TestRenderTemplateUnknownPreset(t *testing.T) {
	h, _ := testRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/templates/intro/render", RenderRequest{
		Data:   map[string]any{"title": "Hello"},
		Preset: "quantum",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportTemplate(t *testing.T) {
	h, cfg := testRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/templates/intro/export", ExportRequest{
		Data:   map[string]any{"title": "Hello"},
		Format: "otio",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[ExportResponse](t, rec)
	assert.Equal(t, "otio_json", resp.Format)
	assert.Equal(t, filepath.Join(cfg.OutputDir, "intro.otio"), resp.OutputPath)

	raw, err := os.ReadFile(resp.OutputPath)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), "Hello"))
}

func TestExportTemplateUnknownFormat(t *testing.T) {
	h, _ := testRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/templates/intro/export", ExportRequest{
		Data:   map[string]any{"title": "Hello"},
		Format: "fcpxml",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJobLifecycleEndpoints(t *testing.T) {
	h, cfg := testRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/templates/intro/render", RenderRequest{
		Data: map[string]any{"title": "Hello"},
	})
	require.Equal(t, http.StatusAccepted, rec.Code)
	jobID := decode[RenderResponse](t, rec).JobID

	rec = doJSON(t, h, http.MethodGet, "/jobs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[JobsResponse](t, rec).Jobs, 1)

	rec = doJSON(t, h, http.MethodGet, "/jobs?status=completed", nil)
	assert.Empty(t, decode[JobsResponse](t, rec).Jobs)

	rec = doJSON(t, h, http.MethodGet, "/jobs?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/jobs/"+jobID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, render.StatusPending, decode[render.Snapshot](t, rec).Status)

	require.NoError(t, cfg.Queue.Run(context.Background(), render.ModeSequential, 1))

	rec = doJSON(t, h, http.MethodGet, "/stats", nil)
	stats := decode[render.Stats](t, rec)
	assert.Equal(t, 1, stats.Completed)

	rec = doJSON(t, h, http.MethodPost, "/jobs/clear_completed", nil)
	assert.Equal(t, 1, decode[ClearCompletedResponse](t, rec).Removed)

	rec = doJSON(t, h, http.MethodGet, "/jobs/"+jobID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteJob(t *testing.T) {
	h, _ := testRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/templates/intro/render", RenderRequest{
		Data: map[string]any{"title": "Hello"},
	})
	jobID := decode[RenderResponse](t, rec).JobID

	rec = doJSON(t, h, http.MethodDelete, "/jobs/"+jobID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/jobs/"+jobID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStopQueue(t *testing.T) {
	h, _ := testRouter(t)
	rec := doJSON(t, h, http.MethodPost, "/queue/stop", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHistoryWithoutStore(t *testing.T) {
	h, _ := testRouter(t)
	rec := doJSON(t, h, http.MethodGet, "/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[JobsResponse](t, rec).Jobs)
}
