package api

import (
	"github.com/AndrewPopesku/aive/internal/render"
	"github.com/AndrewPopesku/aive/internal/template"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

type JobsResponse struct {
	Jobs []render.Snapshot `json:"jobs"`
}

type ClearCompletedResponse struct {
	Removed int `json:"removed"`
}

type TemplatesResponse struct {
	Templates []string `json:"templates"`
}

type TemplateResponse struct {
	template.Details

	Category string `json:"category,omitempty"`
}

type RenderRequest struct {
	Data       map[string]any `json:"data"`
	OutputName string         `json:"output_name,omitempty"`
	Preset     string         `json:"preset,omitempty"`
	JobID      string         `json:"job_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

type RenderResponse struct {
	JobID string `json:"job_id"`
}

type ExportRequest struct {
	Data       map[string]any `json:"data"`
	Format     string         `json:"format"`
	OutputName string         `json:"output_name,omitempty"`
	Title      string         `json:"title,omitempty"`
}

type ExportResponse struct {
	Status     string `json:"status"`
	Format     string `json:"format"`
	OutputPath string `json:"output_path"`
}

type ErrorResponse struct {
	Error    string   `json:"error"`
	Code     string   `json:"code,omitempty"`
	Problems []string `json:"problems,omitempty"`
}
