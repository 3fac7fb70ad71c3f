package template

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AndrewPopesku/aive/internal/timeline"
)

// Definition is the JSON form of a template, loadable from a templates
// directory so the service can build its library at startup.
type Definition struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Version     string   `json:"version,omitempty"`
	Author      string   `json:"author,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Category    string   `json:"category,omitempty"`

	Timeline     TimelineDef      `json:"timeline"`
	Tracks       []TrackDef       `json:"tracks"`
	Placeholders []PlaceholderDef `json:"placeholders"`
}

// TimelineDef describes the base timeline of a definition.
type TimelineDef struct {
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Framerate float64 `json:"framerate"`
}

// TrackDef describes one track of the base timeline.
type TrackDef struct {
	Type string `json:"type"` // video, audio, text, composite
	Name string `json:"name,omitempty"`
}

// PlaceholderDef describes one placeholder slot. Kind selects the variant;
// fields that do not apply to the kind are ignored.
type PlaceholderDef struct {
	Kind        string  `json:"kind"` // video, audio, image, text
	Key         string  `json:"key"`
	Description string  `json:"description,omitempty"`
	Track       int     `json:"track"`
	StartTime   float64 `json:"start_time,omitempty"`

	Duration         *float64 `json:"duration,omitempty"`
	Scale            *float64 `json:"scale,omitempty"`
	Position         *posDef  `json:"position,omitempty"`
	RequiredDuration *float64 `json:"required_duration,omitempty"`
	MaxDuration      *float64 `json:"max_duration,omitempty"`
	AllowedFormats   []string `json:"allowed_formats,omitempty"`
	Volume           *float64 `json:"volume,omitempty"`
	FontSize         *int     `json:"font_size,omitempty"`
	FontFamily       string   `json:"font_family,omitempty"`
	MaxLength        int      `json:"max_length,omitempty"`
	Optional         bool     `json:"optional,omitempty"`
}

type posDef struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

var trackTypes = map[string]timeline.TrackType{
	"video":     timeline.TrackVideo,
	"audio":     timeline.TrackAudio,
	"text":      timeline.TrackText,
	"composite": timeline.TrackComposite,
}

// Build materializes the definition into a template.
func (d *Definition) Build() (*VideoTemplate, error) {
	fr := d.Timeline.Framerate
	if fr == 0 {
		fr = 30.0
	}
	tl, err := timeline.New(d.Timeline.Width, d.Timeline.Height, fr)
	if err != nil {
		return nil, fmt.Errorf("template %q: %w", d.Name, err)
	}
	tl.Name = d.Name

	for i, td := range d.Tracks {
		tt, ok := trackTypes[td.Type]
		if !ok {
			return nil, fmt.Errorf("template %q track %d: unknown type %q", d.Name, i, td.Type)
		}
		tl.AddTrack(tt).Name = td.Name
	}

	t := New(tl, Info{
		Name:        d.Name,
		Description: d.Description,
		Version:     d.Version,
		Author:      d.Author,
		Tags:        d.Tags,
	})

	for _, pd := range d.Placeholders {
		p, err := pd.build()
		if err != nil {
			return nil, fmt.Errorf("template %q: %w", d.Name, err)
		}
		if err := t.AddPlaceholder(p, pd.Track); err != nil {
			return nil, fmt.Errorf("template %q: %w", d.Name, err)
		}
	}
	return t, nil
}

func (pd *PlaceholderDef) build() (Placeholder, error) {
	if pd.Key == "" {
		return nil, fmt.Errorf("placeholder of kind %q has no key", pd.Kind)
	}
	pos := timeline.Position{}
	if pd.Position != nil {
		pos = timeline.Position{X: pd.Position.X, Y: pd.Position.Y}
	}

	switch pd.Kind {
	case "video":
		p := NewVideoPlaceholder(pd.Key, pd.Description)
		p.StartTime = pd.StartTime
		p.Duration = pd.Duration
		p.Position = pos
		p.RequiredDuration = pd.RequiredDuration
		p.MaxDuration = pd.MaxDuration
		if pd.Scale != nil {
			p.Scale = *pd.Scale
		}
		if len(pd.AllowedFormats) > 0 {
			p.AllowedFormats = pd.AllowedFormats
		}
		return p, nil

	case "audio":
		p := NewAudioPlaceholder(pd.Key, pd.Description)
		p.StartTime = pd.StartTime
		p.Duration = pd.Duration
		if pd.Volume != nil {
			p.Volume = *pd.Volume
		}
		return p, nil

	case "image":
		if pd.Duration == nil {
			return nil, fmt.Errorf("image placeholder %q requires a duration", pd.Key)
		}
		p := NewImagePlaceholder(pd.Key, pd.Description, *pd.Duration)
		p.StartTime = pd.StartTime
		p.Position = pos
		if pd.Scale != nil {
			p.Scale = *pd.Scale
		}
		return p, nil

	case "text":
		if pd.Duration == nil {
			return nil, fmt.Errorf("text placeholder %q requires a duration", pd.Key)
		}
		p := NewTextPlaceholder(pd.Key, pd.Description, *pd.Duration)
		p.StartTime = pd.StartTime
		p.Position = pos
		p.MaxLength = pd.MaxLength
		p.Optional = pd.Optional
		if pd.FontSize != nil {
			p.FontSize = *pd.FontSize
		}
		if pd.FontFamily != "" {
			p.FontFamily = pd.FontFamily
		}
		return p, nil

	default:
		return nil, fmt.Errorf("placeholder %q: unknown kind %q", pd.Key, pd.Kind)
	}
}

// LoadFile parses one JSON definition file and builds its template. The
// second return value is the definition's category.
func LoadFile(path string) (*VideoTemplate, string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read template definition: %w", err)
	}
	var def Definition
	if err := json.Unmarshal(raw, &def); err != nil {
		return nil, "", fmt.Errorf("parse template definition %s: %w", filepath.Base(path), err)
	}
	if def.Name == "" {
		return nil, "", fmt.Errorf("template definition %s has no name", filepath.Base(path))
	}
	t, err := def.Build()
	if err != nil {
		return nil, "", err
	}
	return t, def.Category, nil
}

// LoadDir loads every *.json definition under dir into a new library. A
// missing directory yields an empty library rather than an error.
func LoadDir(dir string) (*Library, error) {
	lib := NewLibrary()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return lib, nil
		}
		return nil, fmt.Errorf("read templates dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		t, category, err := LoadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		lib.Add(t, category)
	}
	return lib, nil
}
