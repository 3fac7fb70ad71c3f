// Package format implements timeline interchange with external editing
// tools: a CMX3600-style EDL writer and an OTIO-style JSON format.
package format

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/AndrewPopesku/aive/internal/timeline"
)

// Capability describes what a format can represent.
type Capability struct {
	SupportsVideo       bool
	SupportsAudio       bool
	SupportsText        bool
	SupportsTransitions bool
	SupportsMetadata    bool
	WriteOnly           bool
}

// ImportOptions configures reading.
type ImportOptions struct {
	DefaultFramerate float64 // applied when the file specifies none
}

// ExportOptions configures writing.
type ExportOptions struct {
	IncludeDisabledTracks bool
	Title                 string // falls back to the timeline name
}

// TimelineFormat is the contract a format adapter must satisfy.
type TimelineFormat interface {
	// Read parses the file into a timeline.
	Read(path string, opts ImportOptions) (*timeline.Timeline, error)
	// Write serializes the timeline to the file.
	Write(tl *timeline.Timeline, path string, opts ExportOptions) error
	// Extensions returns the file extensions this adapter handles.
	Extensions() []string
	// Capability describes what the format can represent.
	Capability() Capability
	// Name identifies the adapter.
	Name() string
}

// FormatError is raised when a file cannot be represented or parsed.
type FormatError struct {
	Message string
	Details map[string]any
}

func (e *FormatError) Error() string {
	return e.Message
}

// Registry maps file extensions to format adapters.
type Registry struct {
	byExt map[string]TimelineFormat
}

func NewRegistry(formats ...TimelineFormat) *Registry {
	r := &Registry{byExt: make(map[string]TimelineFormat)}
	for _, f := range formats {
		for _, ext := range f.Extensions() {
			r.byExt[strings.ToLower(ext)] = f
		}
	}
	return r
}

// DefaultRegistry returns a registry with every built-in format.
func DefaultRegistry() *Registry {
	return NewRegistry(NewEDL(), NewOTIO())
}

// ForPath returns the adapter for the path's extension. A missing adapter is
// a configuration error.
func (r *Registry) ForPath(path string) (TimelineFormat, error) {
	ext := strings.ToLower(filepath.Ext(path))
	f, ok := r.byExt[ext]
	if !ok {
		return nil, fmt.Errorf("no timeline format registered for extension %q", ext)
	}
	return f, nil
}

// Read parses the file with the adapter matching its extension.
func (r *Registry) Read(path string, opts ImportOptions) (*timeline.Timeline, error) {
	f, err := r.ForPath(path)
	if err != nil {
		return nil, err
	}
	return f.Read(path, opts)
}

// Write serializes the timeline with the adapter matching the extension.
func (r *Registry) Write(tl *timeline.Timeline, path string, opts ExportOptions) error {
	f, err := r.ForPath(path)
	if err != nil {
		return err
	}
	return f.Write(tl, path, opts)
}
