// Package template implements reusable video templates: a base timeline with
// placeholder slots that are validated and replaced with concrete clips when
// the template is filled.
package template

import (
	"fmt"
	"strings"

	"github.com/AndrewPopesku/aive/internal/timeline"
)

// Placeholder is a dynamic slot in a video template. A placeholder knows how
// to validate the caller-supplied value for its key and how to turn that
// value into a concrete clip.
type Placeholder interface {
	// Key identifies the placeholder within a template and in fill data.
	Key() string
	// Description is a human-readable summary of what the slot expects.
	Description() string
	// Required reports whether fill data must contain the key.
	Required() bool
	// Stub returns the clip inserted into the template's base timeline to
	// materialize the placeholder's position.
	Stub() timeline.Clip
	// CreateClip builds the concrete clip from fill data. Callers are
	// expected to run ValidateData first.
	CreateClip(data map[string]any) (timeline.Clip, error)
	// ValidateData returns every problem with the fill data for this slot,
	// or nil when the data is acceptable.
	ValidateData(data map[string]any) []string
}

type slot struct {
	key         string
	description string
}

func (s slot) Key() string         { return s.key }
func (s slot) Description() string { return s.description }

func errMissing(key string) error {
	return fmt.Errorf("missing required placeholder data: %s", key)
}

// asString unwraps a fill value expected to be a plain string.
func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// asFloat unwraps a numeric fill value. JSON decoding produces float64, but
// programmatic callers may pass int.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

// VideoPlaceholder is a slot filled with a video source. The value may be a
// plain path string or a map with "path" (or "file") plus optional
// "duration", "start_time" and "scale" overrides.
type VideoPlaceholder struct {
	slot

	StartTime        float64
	Duration         *float64 // nil means "use source length"
	Scale            float64
	Position         timeline.Position
	RequiredDuration *float64
	MaxDuration      *float64
	AllowedFormats   []string // lowercase extensions, with leading dot
}

// NewVideoPlaceholder creates a video slot with the default format whitelist.
func NewVideoPlaceholder(key, description string) *VideoPlaceholder {
	return &VideoPlaceholder{
		slot:           slot{key: key, description: description},
		Scale:          1.0,
		AllowedFormats: []string{".mp4", ".mov", ".avi", ".mkv"},
	}
}

func (p *VideoPlaceholder) Required() bool { return true }

func (p *VideoPlaceholder) Stub() timeline.Clip {
	c := timeline.NewVideoClip("", p.StartTime, p.Duration)
	c.Scale = p.Scale
	c.Position = p.Position
	c.Name = p.key + "_placeholder"
	return c
}

// unpack splits a fill value into its path and optional overrides.
func (p *VideoPlaceholder) unpack(v any) (path string, duration *float64, startTime, scale float64) {
	duration = p.Duration
	startTime = p.StartTime
	scale = p.Scale
	if m, ok := v.(map[string]any); ok {
		if s, ok := asString(m["path"]); ok && s != "" {
			path = s
		} else if s, ok := asString(m["file"]); ok {
			path = s
		}
		if d, ok := asFloat(m["duration"]); ok {
			duration = &d
		}
		if st, ok := asFloat(m["start_time"]); ok {
			startTime = st
		}
		if sc, ok := asFloat(m["scale"]); ok {
			scale = sc
		}
		return path, duration, startTime, scale
	}
	path, _ = asString(v)
	return path, duration, startTime, scale
}

func (p *VideoPlaceholder) CreateClip(data map[string]any) (timeline.Clip, error) {
	v, ok := data[p.key]
	if !ok {
		return nil, errMissing(p.key)
	}
	path, duration, startTime, scale := p.unpack(v)
	c := timeline.NewVideoClip(path, startTime, duration)
	c.Scale = scale
	c.Position = p.Position
	c.Name = p.key + "_video"
	return c, nil
}

func (p *VideoPlaceholder) ValidateData(data map[string]any) []string {
	v, ok := data[p.key]
	if !ok {
		return []string{fmt.Sprintf("missing required placeholder: %s", p.key)}
	}

	var errs []string
	path, duration, _, _ := p.unpack(v)
	if path == "" {
		errs = append(errs, fmt.Sprintf("missing path for placeholder: %s", p.key))
	} else {
		lower := strings.ToLower(path)
		allowed := false
		for _, ext := range p.AllowedFormats {
			if strings.HasSuffix(lower, ext) {
				allowed = true
				break
			}
		}
		if !allowed {
			errs = append(errs, fmt.Sprintf("invalid format for %s, allowed: %s",
				p.key, strings.Join(p.AllowedFormats, ", ")))
		}
	}

	if p.RequiredDuration != nil && (duration == nil || *duration != *p.RequiredDuration) {
		errs = append(errs, fmt.Sprintf("video %s must have duration %gs", p.key, *p.RequiredDuration))
	}
	if p.MaxDuration != nil && duration != nil && *duration > *p.MaxDuration {
		errs = append(errs, fmt.Sprintf("video %s duration exceeds maximum %gs", p.key, *p.MaxDuration))
	}
	return errs
}

// AudioPlaceholder is a slot filled with a path to an audio source.
type AudioPlaceholder struct {
	slot

	StartTime float64
	Duration  *float64
	Volume    float64
}

func NewAudioPlaceholder(key, description string) *AudioPlaceholder {
	return &AudioPlaceholder{
		slot:   slot{key: key, description: description},
		Volume: 1.0,
	}
}

func (p *AudioPlaceholder) Required() bool { return true }

func (p *AudioPlaceholder) Stub() timeline.Clip {
	c := timeline.NewAudioClip("", p.StartTime, p.Duration)
	c.Name = p.key + "_placeholder"
	return c
}

func (p *AudioPlaceholder) CreateClip(data map[string]any) (timeline.Clip, error) {
	v, ok := data[p.key]
	if !ok {
		return nil, errMissing(p.key)
	}
	path, ok := asString(v)
	if !ok {
		return nil, fmt.Errorf("placeholder %s expects a path string", p.key)
	}
	c := timeline.NewAudioClip(path, p.StartTime, p.Duration)
	c.SetVolume(p.Volume)
	c.Name = p.key + "_audio"
	return c, nil
}

func (p *AudioPlaceholder) ValidateData(data map[string]any) []string {
	v, ok := data[p.key]
	if !ok {
		return []string{fmt.Sprintf("missing required placeholder: %s", p.key)}
	}
	if _, ok := asString(v); !ok {
		return []string{fmt.Sprintf("placeholder %s expects a path string", p.key)}
	}
	return nil
}

// ImagePlaceholder is a slot filled with a path to a still image. Images
// always carry an explicit duration.
type ImagePlaceholder struct {
	slot

	Duration  float64
	StartTime float64
	Scale     float64
	Position  timeline.Position
}

func NewImagePlaceholder(key, description string, duration float64) *ImagePlaceholder {
	return &ImagePlaceholder{
		slot:     slot{key: key, description: description},
		Duration: duration,
		Scale:    1.0,
	}
}

func (p *ImagePlaceholder) Required() bool { return true }

func (p *ImagePlaceholder) Stub() timeline.Clip {
	c := timeline.NewImageClip("", p.StartTime, p.Duration)
	c.Scale = p.Scale
	c.Position = p.Position
	c.Name = p.key + "_placeholder"
	return c
}

func (p *ImagePlaceholder) CreateClip(data map[string]any) (timeline.Clip, error) {
	v, ok := data[p.key]
	if !ok {
		return nil, errMissing(p.key)
	}
	path, ok := asString(v)
	if !ok {
		return nil, fmt.Errorf("placeholder %s expects a path string", p.key)
	}
	c := timeline.NewImageClip(path, p.StartTime, p.Duration)
	c.Scale = p.Scale
	c.Position = p.Position
	c.Name = p.key + "_image"
	return c, nil
}

func (p *ImagePlaceholder) ValidateData(data map[string]any) []string {
	v, ok := data[p.key]
	if !ok {
		return []string{fmt.Sprintf("missing required placeholder: %s", p.key)}
	}
	if _, ok := asString(v); !ok {
		return []string{fmt.Sprintf("placeholder %s expects a path string", p.key)}
	}
	return nil
}

// TextPlaceholder is a slot filled with display text. The value may be a
// plain string or a map with "text" plus optional "font_size", "font_family"
// and "color" ({"r":…,"g":…,"b":…}) overrides. Optional text slots left
// unfilled produce an empty text clip.
type TextPlaceholder struct {
	slot

	Duration   float64
	StartTime  float64
	FontSize   int
	FontFamily string
	Color      timeline.Color
	Position   timeline.Position
	MaxLength  int // 0 means unlimited
	Optional   bool
}

func NewTextPlaceholder(key, description string, duration float64) *TextPlaceholder {
	return &TextPlaceholder{
		slot:       slot{key: key, description: description},
		Duration:   duration,
		FontSize:   24,
		FontFamily: "Arial",
		Color:      timeline.RGB(255, 255, 255),
	}
}

func (p *TextPlaceholder) Required() bool { return !p.Optional }

func (p *TextPlaceholder) Stub() timeline.Clip {
	c := timeline.NewTextClip("", p.StartTime, p.Duration)
	p.style(c, p.FontSize, p.FontFamily, p.Color)
	c.Name = p.key + "_placeholder"
	return c
}

func (p *TextPlaceholder) style(c *timeline.TextClip, size int, family string, color timeline.Color) {
	c.FontSize = size
	c.FontFamily = family
	c.Color = color
	c.Position = p.Position
}

// text extracts the display text from a fill value.
func (p *TextPlaceholder) text(v any) string {
	if m, ok := v.(map[string]any); ok {
		s, _ := asString(m["text"])
		return s
	}
	s, _ := asString(v)
	return s
}

func (p *TextPlaceholder) CreateClip(data map[string]any) (timeline.Clip, error) {
	v, ok := data[p.key]
	if !ok {
		if !p.Optional {
			return nil, errMissing(p.key)
		}
		v = ""
	}

	text := p.text(v)
	size := p.FontSize
	family := p.FontFamily
	color := p.Color
	if m, ok := v.(map[string]any); ok {
		if fs, ok := asFloat(m["font_size"]); ok {
			size = int(fs)
		}
		if ff, ok := asString(m["font_family"]); ok {
			family = ff
		}
		if cm, ok := m["color"].(map[string]any); ok {
			r, _ := asFloat(cm["r"])
			g, _ := asFloat(cm["g"])
			b, _ := asFloat(cm["b"])
			color = timeline.RGB(uint8(r), uint8(g), uint8(b))
		}
	}

	c := timeline.NewTextClip(text, p.StartTime, p.Duration)
	p.style(c, size, family, color)
	c.Name = p.key + "_text"
	return c, nil
}

func (p *TextPlaceholder) ValidateData(data map[string]any) []string {
	v, ok := data[p.key]
	if !ok {
		if p.Optional {
			return nil
		}
		return []string{fmt.Sprintf("missing required placeholder: %s", p.key)}
	}
	if p.MaxLength > 0 && len(p.text(v)) > p.MaxLength {
		return []string{fmt.Sprintf("text for %s exceeds maximum length %d", p.key, p.MaxLength)}
	}
	return nil
}
