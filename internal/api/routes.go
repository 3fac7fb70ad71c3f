package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/AndrewPopesku/aive/internal/format"
	"github.com/AndrewPopesku/aive/internal/render"
	"github.com/AndrewPopesku/aive/internal/template"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))
	r.Get("/stats", statsHandler(cfg))

	r.Get("/jobs", listJobsHandler(cfg))
	r.Get("/jobs/{id}", getJobHandler(cfg))
	r.Delete("/jobs/{id}", deleteJobHandler(cfg))
	r.Post("/jobs/clear_completed", clearCompletedHandler(cfg))
	r.Get("/history", historyHandler(cfg))

	r.Get("/templates", listTemplatesHandler(cfg))
	r.Get("/templates/{name}", getTemplateHandler(cfg))
	r.Post("/templates/{name}/render", renderTemplateHandler(cfg))
	r.Post("/templates/{name}/export", exportTemplateHandler(cfg))

	r.Post("/queue/stop", stopQueueHandler(cfg))

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: cfg.Version,
			UptimeS: uptime,
		})
	}
}

func statsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, cfg.Queue.Stats())
	}
}

func listJobsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := render.Status(r.URL.Query().Get("status"))
		if status != "" && !status.Valid() {
			WriteError(w, http.StatusBadRequest, "unknown status "+string(status), "BAD_REQUEST")
			return
		}
		WriteJSON(w, http.StatusOK, JobsResponse{Jobs: cfg.Queue.List(status)})
	}
}

func getJobHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if snap, ok := cfg.Queue.Get(id); ok {
			WriteJSON(w, http.StatusOK, snap)
			return
		}

		// Cleared jobs survive in the journal.
		if cfg.History != nil {
			snap, ok, err := cfg.History.GetJob(r.Context(), id)
			if err != nil {
				WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
				return
			}
			if ok {
				WriteJSON(w, http.StatusOK, snap)
				return
			}
		}

		WriteError(w, http.StatusNotFound, "job not found", "NOT_FOUND")
	}
}

func deleteJobHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if !cfg.Queue.Remove(id) {
			WriteError(w, http.StatusNotFound, "job not found", "NOT_FOUND")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func clearCompletedHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		removed := cfg.Queue.ClearCompleted()
		WriteJSON(w, http.StatusOK, ClearCompletedResponse{Removed: removed})
	}
}

func historyHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.History == nil {
			WriteJSON(w, http.StatusOK, JobsResponse{Jobs: []render.Snapshot{}})
			return
		}
		jobs, err := cfg.History.ListJobs(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list job history", "INTERNAL_ERROR")
			return
		}
		WriteJSON(w, http.StatusOK, JobsResponse{Jobs: jobs})
	}
}

func listTemplatesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var names []string
		switch {
		case r.URL.Query().Get("q") != "":
			names = cfg.Templates.Search(r.URL.Query().Get("q"))
		case r.URL.Query().Get("category") != "":
			names = cfg.Templates.NamesInCategory(r.URL.Query().Get("category"))
		default:
			names = cfg.Templates.Names()
		}
		if names == nil {
			names = []string{}
		}
		WriteJSON(w, http.StatusOK, TemplatesResponse{Templates: names})
	}
}

func getTemplateHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		tmpl, ok := cfg.Templates.Get(name)
		if !ok {
			WriteError(w, http.StatusNotFound, "template not found", "NOT_FOUND")
			return
		}

		resp := TemplateResponse{Details: tmpl.Describe()}
		if category, ok := cfg.Templates.CategoryOf(name); ok {
			resp.Category = category
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func renderTemplateHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		tmpl, ok := cfg.Templates.Get(name)
		if !ok {
			WriteError(w, http.StatusNotFound, "template not found", "NOT_FOUND")
			return
		}

		var req RenderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		opts, err := render.PresetOptions(req.Preset)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		outputName := sanitizeName(req.OutputName, 120)
		if outputName == "" {
			outputName = sanitizeName(name, 120)
		}
		container := opts.OutputFormat
		if container == "" {
			container = "mp4"
		}
		outputPath := filepath.Join(cfg.OutputDir, outputName+"."+container)

		jobID, err := cfg.Queue.AddTemplate(tmpl, req.Data, render.Submission{
			OutputPath: outputPath,
			Options:    opts,
			JobID:      req.JobID,
			Metadata:   req.Metadata,
		})
		if err != nil {
			var verr *template.ValidationError
			if errors.As(err, &verr) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(ErrorResponse{
					Error:    "template validation failed",
					Code:     "VALIDATION_FAILED",
					Problems: verr.Problems,
				})
				return
			}
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		WriteJSON(w, http.StatusAccepted, RenderResponse{JobID: jobID})
	}
}

func exportTemplateHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		tmpl, ok := cfg.Templates.Get(name)
		if !ok {
			WriteError(w, http.StatusNotFound, "template not found", "NOT_FOUND")
			return
		}

		var req ExportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		if req.Format == "" {
			WriteError(w, http.StatusBadRequest, "format is required", "BAD_REQUEST")
			return
		}
		ext := "." + strings.TrimPrefix(strings.ToLower(req.Format), ".")

		tl, err := tmpl.Fill(req.Data)
		if err != nil {
			var verr *template.ValidationError
			if errors.As(err, &verr) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(ErrorResponse{
					Error:    "template validation failed",
					Code:     "VALIDATION_FAILED",
					Problems: verr.Problems,
				})
				return
			}
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		outputName := sanitizeName(req.OutputName, 120)
		if outputName == "" {
			outputName = sanitizeName(name, 120)
		}
		outputPath := filepath.Join(cfg.OutputDir, outputName+ext)

		adapter, err := cfg.Formats.ForPath(outputPath)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}
		if err := adapter.Write(tl, outputPath, format.ExportOptions{Title: req.Title}); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}

		WriteJSON(w, http.StatusOK, ExportResponse{
			Status:     "ok",
			Format:     adapter.Name(),
			OutputPath: outputPath,
		})
	}
}

func stopQueueHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg.Queue.Stop()
		w.WriteHeader(http.StatusNoContent)
	}
}

// sanitizeName keeps a filename-safe subset of the input, capped at max runes.
func sanitizeName(s string, max int) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
		if b.Len() >= max {
			break
		}
	}
	return strings.Trim(b.String(), "._")
}
