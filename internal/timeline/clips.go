package timeline

import (
	"errors"
	"math"
)

// ClipType tags the concrete variant carried by a Clip.
type ClipType string

const (
	ClipVideo ClipType = "video"
	ClipAudio ClipType = "audio"
	ClipImage ClipType = "image"
	ClipText  ClipType = "text"
)

// ErrNoDuration is returned when a derived time is requested from a clip
// whose duration is unset (meaning "use source length").
var ErrNoDuration = errors.New("clip has no duration")

// Clip is a timed unit of media content placed on a track.
type Clip interface {
	// Type returns the variant tag used for track compatibility checks.
	Type() ClipType
	// Base exposes the timing and labeling shared by every variant.
	Base() *ClipBase
	// Clone returns an independent deep copy of the clip.
	Clone() Clip
}

// Seconds returns a pointer to v, for use as an optional clip duration.
func Seconds(v float64) *float64 {
	return &v
}

// ClipBase carries the attributes common to all clip variants.
type ClipBase struct {
	StartTime float64  // seconds from the start of the timeline
	Duration  *float64 // nil means "use source length"
	Name      string

	props map[string]any
}

// EndTime returns StartTime + Duration, or ErrNoDuration when the clip has
// no explicit duration.
func (b *ClipBase) EndTime() (float64, error) {
	if b.Duration == nil {
		return 0, ErrNoDuration
	}
	return b.StartTime + *b.Duration, nil
}

// HasDuration reports whether the clip carries an explicit duration.
func (b *ClipBase) HasDuration() bool {
	return b.Duration != nil
}

// SetProperty stores an arbitrary side property on the clip.
func (b *ClipBase) SetProperty(key string, value any) {
	if b.props == nil {
		b.props = make(map[string]any)
	}
	b.props[key] = value
}

// Property returns a previously stored side property.
func (b *ClipBase) Property(key string) (any, bool) {
	v, ok := b.props[key]
	return v, ok
}

func (b *ClipBase) cloneBase() ClipBase {
	cp := ClipBase{StartTime: b.StartTime, Name: b.Name}
	if b.Duration != nil {
		d := *b.Duration
		cp.Duration = &d
	}
	if b.props != nil {
		cp.props = make(map[string]any, len(b.props))
		for k, v := range b.props {
			cp.props[k] = v
		}
	}
	return cp
}

func normalizeDegrees(deg float64) float64 {
	m := math.Mod(deg, 360)
	if m < 0 {
		m += 360
	}
	return m
}

// CropBox is a pixel-space crop rectangle applied to a video clip.
type CropBox struct {
	X      int
	Y      int
	Width  int
	Height int
}

// VideoClip is a file-backed video source placed on the timeline.
type VideoClip struct {
	ClipBase

	SourcePath string
	TrimStart  float64  // offset into the source, seconds
	TrimEnd    *float64 // nil means "to the end of the source"
	Scale      float64
	Position   Position
	Opacity    float64 // clip-level; track opacity applies on top
	Rotation   float64 // degrees, normalized to [0, 360)
	Crop       *CropBox
}

// NewVideoClip creates a video clip. A nil duration means the source length
// is used at render time.
func NewVideoClip(sourcePath string, startTime float64, duration *float64) *VideoClip {
	c := &VideoClip{
		ClipBase:   ClipBase{StartTime: startTime},
		SourcePath: sourcePath,
		Scale:      1.0,
		Opacity:    1.0,
	}
	if duration != nil {
		d := *duration
		c.Duration = &d
	}
	return c
}

func (c *VideoClip) Type() ClipType  { return ClipVideo }
func (c *VideoClip) Base() *ClipBase { return &c.ClipBase }

// SetOpacity clamps to [0, 1].
func (c *VideoClip) SetOpacity(opacity float64) *VideoClip {
	c.Opacity = clamp01(opacity)
	return c
}

func (c *VideoClip) SetRotation(degrees float64) *VideoClip {
	c.Rotation = normalizeDegrees(degrees)
	return c
}

func (c *VideoClip) SetCrop(x, y, width, height int) *VideoClip {
	c.Crop = &CropBox{X: x, Y: y, Width: width, Height: height}
	return c
}

func (c *VideoClip) Clone() Clip {
	cp := *c
	cp.ClipBase = c.cloneBase()
	if c.TrimEnd != nil {
		t := *c.TrimEnd
		cp.TrimEnd = &t
	}
	if c.Crop != nil {
		box := *c.Crop
		cp.Crop = &box
	}
	return &cp
}

// AudioClip is a file-backed audio source placed on the timeline.
type AudioClip struct {
	ClipBase

	SourcePath string
	TrimStart  float64
	TrimEnd    *float64
	Volume     float64 // 1.0 = source volume
	FadeIn     float64 // seconds
	FadeOut    float64 // seconds
	Muted      bool    // clip-level; track mute applies on top
}

// NewAudioClip creates an audio clip. A nil duration means the source length
// is used at render time.
func NewAudioClip(sourcePath string, startTime float64, duration *float64) *AudioClip {
	c := &AudioClip{
		ClipBase:   ClipBase{StartTime: startTime},
		SourcePath: sourcePath,
		Volume:     1.0,
	}
	if duration != nil {
		d := *duration
		c.Duration = &d
	}
	return c
}

func (c *AudioClip) Type() ClipType  { return ClipAudio }
func (c *AudioClip) Base() *ClipBase { return &c.ClipBase }

// SetVolume floors at 0.
func (c *AudioClip) SetVolume(volume float64) *AudioClip {
	c.Volume = math.Max(0, volume)
	return c
}

func (c *AudioClip) SetFadeIn(seconds float64) *AudioClip {
	c.FadeIn = math.Max(0, seconds)
	return c
}

func (c *AudioClip) SetFadeOut(seconds float64) *AudioClip {
	c.FadeOut = math.Max(0, seconds)
	return c
}

func (c *AudioClip) Mute(muted bool) *AudioClip {
	c.Muted = muted
	return c
}

func (c *AudioClip) Clone() Clip {
	cp := *c
	cp.ClipBase = c.cloneBase()
	if c.TrimEnd != nil {
		t := *c.TrimEnd
		cp.TrimEnd = &t
	}
	return &cp
}

// ImageClip is a still image shown for a fixed duration.
type ImageClip struct {
	ClipBase

	SourcePath string
	Scale      float64
	Position   Position
	Opacity    float64
	Rotation   float64
}

// NewImageClip creates an image clip. Images always carry a duration.
func NewImageClip(sourcePath string, startTime, duration float64) *ImageClip {
	return &ImageClip{
		ClipBase:   ClipBase{StartTime: startTime, Duration: &duration},
		SourcePath: sourcePath,
		Scale:      1.0,
		Opacity:    1.0,
	}
}

func (c *ImageClip) Type() ClipType  { return ClipImage }
func (c *ImageClip) Base() *ClipBase { return &c.ClipBase }

func (c *ImageClip) SetOpacity(opacity float64) *ImageClip {
	c.Opacity = clamp01(opacity)
	return c
}

func (c *ImageClip) SetRotation(degrees float64) *ImageClip {
	c.Rotation = normalizeDegrees(degrees)
	return c
}

func (c *ImageClip) Clone() Clip {
	cp := *c
	cp.ClipBase = c.cloneBase()
	return &cp
}

// Text alignment values accepted by TextClip.SetAlignment.
const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"
)

// ErrAlignment is returned for alignment values outside left/center/right.
var ErrAlignment = errors.New("alignment must be left, center or right")

// TextClip is a text overlay shown for a fixed duration.
type TextClip struct {
	ClipBase

	Text            string
	FontSize        int
	FontFamily      string
	Color           Color
	Position        Position
	Size            *Size
	Bold            bool
	Italic          bool
	Underline       bool
	Alignment       string
	BackgroundColor *Color
	Opacity         float64
}

// NewTextClip creates a text clip. Text always carries a duration.
func NewTextClip(text string, startTime, duration float64) *TextClip {
	return &TextClip{
		ClipBase:   ClipBase{StartTime: startTime, Duration: &duration},
		Text:       text,
		FontSize:   24,
		FontFamily: "Arial",
		Color:      RGB(255, 255, 255),
		Alignment:  AlignLeft,
		Opacity:    1.0,
	}
}

func (c *TextClip) Type() ClipType  { return ClipText }
func (c *TextClip) Base() *ClipBase { return &c.ClipBase }

func (c *TextClip) SetBold(bold bool) *TextClip {
	c.Bold = bold
	return c
}

func (c *TextClip) SetItalic(italic bool) *TextClip {
	c.Italic = italic
	return c
}

func (c *TextClip) SetAlignment(alignment string) error {
	switch alignment {
	case AlignLeft, AlignCenter, AlignRight:
		c.Alignment = alignment
		return nil
	default:
		return ErrAlignment
	}
}

func (c *TextClip) SetBackground(color Color) *TextClip {
	c.BackgroundColor = &color
	return c
}

func (c *TextClip) Clone() Clip {
	cp := *c
	cp.ClipBase = c.cloneBase()
	if c.Size != nil {
		s := *c.Size
		cp.Size = &s
	}
	if c.BackgroundColor != nil {
		bg := *c.BackgroundColor
		cp.BackgroundColor = &bg
	}
	return &cp
}
