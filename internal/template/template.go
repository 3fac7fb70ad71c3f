package template

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/AndrewPopesku/aive/internal/timeline"
)

// Info is template metadata, surfaced by the library and the HTTP API.
type Info struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Version     string   `json:"version"`
	Author      string   `json:"author,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Details is the full description of a template including derived values.
type Details struct {
	Info

	Duration     float64  `json:"duration"`
	Width        int      `json:"width"`
	Height       int      `json:"height"`
	Placeholders int      `json:"placeholders"`
	RequiredKeys []string `json:"required_keys"`
}

// ValidationError aggregates every problem found while validating fill data.
// Fill never partially applies: when this error is returned, no timeline was
// produced and the template's base timeline is untouched.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "template validation failed: " + strings.Join(e.Problems, "; ")
}

// ErrStalePlaceholder means a placeholder's bound timeline position no longer
// exists, which indicates the base timeline was mutated after the placeholder
// was added.
var ErrStalePlaceholder = errors.New("placeholder position no longer exists")

type position struct {
	track int
	clip  int
}

// VideoTemplate is a base timeline with named placeholder slots. Adding a
// placeholder inserts its stub clip into the base timeline, so every bound
// position is backed by a real clip until Fill replaces it.
type VideoTemplate struct {
	Timeline *timeline.Timeline
	Info     Info

	placeholders map[string]Placeholder
	positions    map[string]position
}

// New creates a template over the given base timeline.
func New(tl *timeline.Timeline, info Info) *VideoTemplate {
	if info.Name == "" {
		info.Name = "Untitled Template"
	}
	if info.Version == "" {
		info.Version = "1.0"
	}
	return &VideoTemplate{
		Timeline:     tl,
		Info:         info,
		placeholders: make(map[string]Placeholder),
		positions:    make(map[string]position),
	}
}

// AddPlaceholder appends the placeholder's stub clip to the track at
// trackIndex and binds the key to that position. Keys must be unique within
// a template.
func (t *VideoTemplate) AddPlaceholder(p Placeholder, trackIndex int) error {
	if _, exists := t.placeholders[p.Key()]; exists {
		return fmt.Errorf("duplicate placeholder key %q", p.Key())
	}
	track, ok := t.Timeline.TrackAt(trackIndex)
	if !ok {
		return fmt.Errorf("track index %d out of range [0, %d)", trackIndex, t.Timeline.TrackCount())
	}
	if err := track.AddClip(p.Stub()); err != nil {
		return fmt.Errorf("placeholder %q: %w", p.Key(), err)
	}
	t.placeholders[p.Key()] = p
	t.positions[p.Key()] = position{track: trackIndex, clip: track.Len() - 1}
	return nil
}

// RemovePlaceholder removes the placeholder and its stub clip, reporting
// whether the key existed. Positions of later placeholders on the same track
// shift down with the removed clip.
func (t *VideoTemplate) RemovePlaceholder(key string) bool {
	pos, ok := t.positions[key]
	if !ok {
		return false
	}
	delete(t.placeholders, key)
	delete(t.positions, key)

	if track, ok := t.Timeline.TrackAt(pos.track); ok {
		track.RemoveClip(pos.clip)
	}
	for k, p := range t.positions {
		if p.track == pos.track && p.clip > pos.clip {
			p.clip--
			t.positions[k] = p
		}
	}
	return true
}

// Placeholder returns the placeholder bound to key.
func (t *VideoTemplate) Placeholder(key string) (Placeholder, bool) {
	p, ok := t.placeholders[key]
	return p, ok
}

// Keys returns every placeholder key in sorted order.
func (t *VideoTemplate) Keys() []string {
	keys := make([]string, 0, len(t.placeholders))
	for k := range t.placeholders {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RequiredKeys returns the keys that fill data must provide, sorted.
func (t *VideoTemplate) RequiredKeys() []string {
	keys := make([]string, 0, len(t.placeholders))
	for k, p := range t.placeholders {
		if p.Required() {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// ValidateData runs every placeholder's validation in sorted key order and
// returns the combined problem list, or nil when the data fills cleanly.
func (t *VideoTemplate) ValidateData(data map[string]any) []string {
	var problems []string
	for _, key := range t.Keys() {
		problems = append(problems, t.placeholders[key].ValidateData(data)...)
	}
	return problems
}

// Fill produces a new timeline with every placeholder replaced by a clip
// built from data. The base timeline is never mutated. All validation
// problems are collected before anything is built; any problem aborts the
// fill with a *ValidationError.
func (t *VideoTemplate) Fill(data map[string]any) (*timeline.Timeline, error) {
	if problems := t.ValidateData(data); len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	filled := t.Timeline.Clone()
	for _, key := range t.Keys() {
		p := t.placeholders[key]
		pos := t.positions[key]

		clip, err := p.CreateClip(data)
		if err != nil {
			return nil, fmt.Errorf("placeholder %q: %w", key, err)
		}
		track, ok := filled.TrackAt(pos.track)
		if !ok {
			return nil, fmt.Errorf("placeholder %q bound to track %d: %w", key, pos.track, ErrStalePlaceholder)
		}
		if err := track.ReplaceClip(pos.clip, clip); err != nil {
			return nil, fmt.Errorf("placeholder %q bound to track %d clip %d: %w: %v",
				key, pos.track, pos.clip, ErrStalePlaceholder, err)
		}
	}
	return filled, nil
}

// Describe returns the template's metadata with derived duration, resolution
// and required keys.
func (t *VideoTemplate) Describe() Details {
	w, h := t.Timeline.Resolution()
	return Details{
		Info:         t.Info,
		Duration:     t.Timeline.Duration(),
		Width:        w,
		Height:       h,
		Placeholders: len(t.placeholders),
		RequiredKeys: t.RequiredKeys(),
	}
}

// SimpleText creates a template with a single text placeholder, useful as a
// starting point and in tests.
func SimpleText(name, textKey string, duration float64, width, height int) (*VideoTemplate, error) {
	tl, err := timeline.New(width, height, 30.0)
	if err != nil {
		return nil, err
	}
	tl.AddTrack(timeline.TrackText)

	t := New(tl, Info{
		Name:        name,
		Description: fmt.Sprintf("Simple text template with %s placeholder", textKey),
	})

	p := NewTextPlaceholder(textKey, "", duration)
	p.FontSize = 48
	p.Position = timeline.Position{X: float64(width) / 4, Y: float64(height) / 2}
	if err := t.AddPlaceholder(p, 0); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *VideoTemplate) String() string {
	return fmt.Sprintf("VideoTemplate(%q, %d placeholders, %.2fs)",
		t.Info.Name, len(t.placeholders), t.Timeline.Duration())
}
