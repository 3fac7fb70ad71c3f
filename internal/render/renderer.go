package render

import (
	"context"

	"github.com/AndrewPopesku/aive/internal/timeline"
)

// Renderer is the contract a rendering engine adapter must satisfy. It keeps
// the domain independent of any specific encoder.
type Renderer interface {
	// Render writes the timeline to outputPath. Cancellation via ctx must
	// abort the render.
	Render(ctx context.Context, tl *timeline.Timeline, outputPath string, opts Options) error

	// CanRender reports whether this renderer supports the timeline's
	// features.
	CanRender(tl *timeline.Timeline) bool

	// SupportedFormats returns the output extensions this renderer accepts.
	SupportedFormats() []string

	// EstimateRenderTime returns a rough render duration estimate in
	// seconds.
	EstimateRenderTime(tl *timeline.Timeline, opts Options) float64

	// Name identifies the renderer in logs and job metadata.
	Name() string
}

// RenderError is returned when an engine fails, carrying engine-specific
// diagnostics.
type RenderError struct {
	Message string
	Details map[string]any
}

func (e *RenderError) Error() string {
	return e.Message
}
