package format

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/AndrewPopesku/aive/internal/timeline"
)

// OTIO reads and writes an OpenTimelineIO-style JSON interchange document.
// The document is structural: tracks own clips in order, transitions are
// keyed to the clip they follow.
type OTIO struct{}

func NewOTIO() *OTIO { return &OTIO{} }

func (o *OTIO) Name() string         { return "otio_json" }
func (o *OTIO) Extensions() []string { return []string{".otio"} }

func (o *OTIO) Capability() Capability {
	return Capability{
		SupportsVideo:       true,
		SupportsAudio:       true,
		SupportsText:        true,
		SupportsTransitions: true,
		SupportsMetadata:    true,
	}
}

type otioDoc struct {
	Schema    string      `json:"OTIO_SCHEMA"`
	Name      string      `json:"name,omitempty"`
	Width     int         `json:"width"`
	Height    int         `json:"height"`
	Framerate float64     `json:"framerate"`
	Tracks    []otioTrack `json:"tracks"`
}

type otioTrack struct {
	Schema      string           `json:"OTIO_SCHEMA"`
	Kind        string           `json:"kind"`
	Name        string           `json:"name,omitempty"`
	Enabled     bool             `json:"enabled"`
	Opacity     float64          `json:"opacity"`
	Muted       bool             `json:"muted,omitempty"`
	Children    []otioClip       `json:"children"`
	Transitions []otioTransition `json:"transitions,omitempty"`
}

type otioClip struct {
	Schema    string   `json:"OTIO_SCHEMA"`
	Type      string   `json:"type"`
	Name      string   `json:"name,omitempty"`
	StartTime float64  `json:"start_time"`
	Duration  *float64 `json:"duration"`
	TargetURL string   `json:"target_url,omitempty"`

	// Text clip fields.
	Text       string `json:"text,omitempty"`
	FontSize   int    `json:"font_size,omitempty"`
	FontFamily string `json:"font_family,omitempty"`
	Color      string `json:"color,omitempty"` // "#rrggbb"
}

type otioTransition struct {
	Schema     string         `json:"OTIO_SCHEMA"`
	AfterClip  int            `json:"after_clip"`
	Type       string         `json:"type"`
	Parameters map[string]any `json:"parameters"`
}

var trackKinds = map[timeline.TrackType]string{
	timeline.TrackVideo:     "Video",
	timeline.TrackAudio:     "Audio",
	timeline.TrackText:      "Text",
	timeline.TrackComposite: "Composite",
}

func kindToTrackType(kind string) (timeline.TrackType, bool) {
	for tt, k := range trackKinds {
		if k == kind {
			return tt, true
		}
	}
	return "", false
}

func (o *OTIO) Write(tl *timeline.Timeline, path string, opts ExportOptions) error {
	doc := otioDoc{
		Schema:    "Timeline.1",
		Name:      tl.Name,
		Framerate: tl.Framerate,
	}
	doc.Width, doc.Height = tl.Resolution()

	for _, track := range tl.Tracks() {
		if !track.Enabled && !opts.IncludeDisabledTracks {
			continue
		}
		ot := otioTrack{
			Schema:  "Track.1",
			Kind:    trackKinds[track.Type],
			Name:    track.Name,
			Enabled: track.Enabled,
			Opacity: track.Opacity,
			Muted:   track.Muted,
		}
		for _, clip := range track.Clips() {
			ot.Children = append(ot.Children, encodeClip(clip))
		}
		for idx, tr := range track.Transitions() {
			ot.Transitions = append(ot.Transitions, otioTransition{
				Schema:     "Transition.1",
				AfterClip:  idx,
				Type:       string(tr.Type()),
				Parameters: tr.Parameters(),
			})
		}
		doc.Tracks = append(doc.Tracks, ot)
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode OTIO document: %w", err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("write OTIO file: %w", err)
	}
	return nil
}

func encodeClip(clip timeline.Clip) otioClip {
	base := clip.Base()
	oc := otioClip{
		Schema:    "Clip.1",
		Type:      string(clip.Type()),
		Name:      base.Name,
		StartTime: base.StartTime,
		Duration:  base.Duration,
	}
	switch c := clip.(type) {
	case *timeline.VideoClip:
		oc.TargetURL = c.SourcePath
	case *timeline.AudioClip:
		oc.TargetURL = c.SourcePath
	case *timeline.ImageClip:
		oc.TargetURL = c.SourcePath
	case *timeline.TextClip:
		oc.Text = c.Text
		oc.FontSize = c.FontSize
		oc.FontFamily = c.FontFamily
		oc.Color = c.Color.Hex()
	}
	return oc
}

func (o *OTIO) Read(path string, opts ImportOptions) (*timeline.Timeline, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read OTIO file: %w", err)
	}

	var doc otioDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &FormatError{Message: fmt.Sprintf("invalid OTIO document: %v", err)}
	}

	fr := doc.Framerate
	if fr == 0 {
		fr = opts.DefaultFramerate
	}
	if fr == 0 {
		fr = 30.0
	}
	tl, err := timeline.New(doc.Width, doc.Height, fr)
	if err != nil {
		return nil, &FormatError{Message: fmt.Sprintf("invalid OTIO timeline: %v", err)}
	}
	tl.Name = doc.Name

	for ti, ot := range doc.Tracks {
		tt, ok := kindToTrackType(ot.Kind)
		if !ok {
			return nil, &FormatError{Message: fmt.Sprintf("track %d: unknown kind %q", ti, ot.Kind)}
		}
		track := tl.AddTrack(tt)
		track.Name = ot.Name
		track.SetEnabled(ot.Enabled)
		track.SetOpacity(ot.Opacity)
		track.SetMuted(ot.Muted)

		for ci, oc := range ot.Children {
			clip, err := decodeClip(oc)
			if err != nil {
				return nil, &FormatError{Message: fmt.Sprintf("track %d clip %d: %v", ti, ci, err)}
			}
			if err := track.AddClip(clip); err != nil {
				return nil, &FormatError{Message: fmt.Sprintf("track %d clip %d: %v", ti, ci, err)}
			}
		}
		for _, otr := range ot.Transitions {
			tr, err := decodeTransition(otr)
			if err != nil {
				return nil, &FormatError{Message: fmt.Sprintf("track %d: %v", ti, err)}
			}
			if err := track.AddTransition(otr.AfterClip, tr); err != nil {
				return nil, &FormatError{Message: fmt.Sprintf("track %d: %v", ti, err)}
			}
		}
	}
	return tl, nil
}

func decodeClip(oc otioClip) (timeline.Clip, error) {
	switch timeline.ClipType(oc.Type) {
	case timeline.ClipVideo:
		c := timeline.NewVideoClip(oc.TargetURL, oc.StartTime, oc.Duration)
		c.Name = oc.Name
		return c, nil
	case timeline.ClipAudio:
		c := timeline.NewAudioClip(oc.TargetURL, oc.StartTime, oc.Duration)
		c.Name = oc.Name
		return c, nil
	case timeline.ClipImage:
		if oc.Duration == nil {
			return nil, fmt.Errorf("image clip %q has no duration", oc.Name)
		}
		c := timeline.NewImageClip(oc.TargetURL, oc.StartTime, *oc.Duration)
		c.Name = oc.Name
		return c, nil
	case timeline.ClipText:
		if oc.Duration == nil {
			return nil, fmt.Errorf("text clip %q has no duration", oc.Name)
		}
		c := timeline.NewTextClip(oc.Text, oc.StartTime, *oc.Duration)
		c.Name = oc.Name
		if oc.FontSize > 0 {
			c.FontSize = oc.FontSize
		}
		if oc.FontFamily != "" {
			c.FontFamily = oc.FontFamily
		}
		if r, g, b, err := parseHexColor(oc.Color); err == nil {
			c.Color = timeline.RGB(r, g, b)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown clip type %q", oc.Type)
	}
}

func decodeTransition(otr otioTransition) (timeline.Transition, error) {
	params := otr.Parameters
	duration, _ := params["duration"].(float64)

	switch timeline.TransitionType(otr.Type) {
	case timeline.TransitionCrossfade:
		tr := timeline.NewCrossfadeTransition(duration)
		if curve, ok := params["curve"].(string); ok {
			if err := tr.SetCurve(curve); err != nil {
				return nil, err
			}
		}
		return tr, nil
	case timeline.TransitionWipe:
		direction, _ := params["direction"].(string)
		feather, _ := params["feather"].(float64)
		return timeline.NewWipeTransition(duration, timeline.WipeDirection(direction), feather), nil
	case timeline.TransitionFade:
		tr := timeline.NewFadeTransition(duration)
		if hex, ok := params["fade_color"].(string); ok {
			if r, g, b, err := parseHexColor(hex); err == nil {
				tr.SetFadeColor(r, g, b)
			}
		}
		return tr, nil
	case timeline.TransitionSlide:
		direction, _ := params["direction"].(string)
		return timeline.NewSlideTransition(duration, timeline.WipeDirection(direction)), nil
	default:
		return nil, fmt.Errorf("unknown transition type %q", otr.Type)
	}
}

func parseHexColor(s string) (r, g, b uint8, err error) {
	if len(s) != 7 || s[0] != '#' {
		return 0, 0, 0, fmt.Errorf("invalid color %q", s)
	}
	_, err = fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b)
	return r, g, b, err
}

var _ TimelineFormat = (*OTIO)(nil)
