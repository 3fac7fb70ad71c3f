package timeline

import (
	"errors"
	"fmt"
)

// TransitionType tags the concrete variant carried by a Transition.
type TransitionType string

const (
	TransitionCrossfade TransitionType = "crossfade"
	TransitionWipe      TransitionType = "wipe"
	TransitionFade      TransitionType = "fade"
	TransitionSlide     TransitionType = "slide"
)

// WipeDirection is the screen direction of a wipe or slide.
type WipeDirection string

const (
	WipeLeftToRight WipeDirection = "left_to_right"
	WipeRightToLeft WipeDirection = "right_to_left"
	WipeTopToBottom WipeDirection = "top_to_bottom"
	WipeBottomToTop WipeDirection = "bottom_to_top"
)

// Transition is a timed blend between two adjacent clips on a track.
// It never owns a clip; a track keys it by the index of the outgoing clip.
type Transition interface {
	Type() TransitionType
	Base() *TransitionBase
	// Parameters returns the variant-specific settings plus the duration.
	Parameters() map[string]any
	Clone() Transition
}

// TransitionBase carries the attributes common to all transition variants.
type TransitionBase struct {
	Duration float64 // seconds, > 0
	Name     string

	props map[string]any
}

// SetProperty stores an arbitrary side property on the transition.
func (b *TransitionBase) SetProperty(key string, value any) {
	if b.props == nil {
		b.props = make(map[string]any)
	}
	b.props[key] = value
}

// Property returns a previously stored side property.
func (b *TransitionBase) Property(key string) (any, bool) {
	v, ok := b.props[key]
	return v, ok
}

func (b *TransitionBase) cloneBase() TransitionBase {
	cp := TransitionBase{Duration: b.Duration, Name: b.Name}
	if b.props != nil {
		cp.props = make(map[string]any, len(b.props))
		for k, v := range b.props {
			cp.props[k] = v
		}
	}
	return cp
}

// Crossfade curve names accepted by SetCurve.
var validCurves = []string{"linear", "ease_in", "ease_out", "ease_in_out"}

// ErrCurve is returned for curve names outside the accepted set.
var ErrCurve = errors.New("invalid crossfade curve")

// CrossfadeTransition blends the outgoing clip out while the incoming clip
// fades in simultaneously.
type CrossfadeTransition struct {
	TransitionBase
	Curve string
}

// NewCrossfadeTransition creates a linear crossfade.
func NewCrossfadeTransition(duration float64) *CrossfadeTransition {
	return &CrossfadeTransition{
		TransitionBase: TransitionBase{Duration: duration},
		Curve:          "linear",
	}
}

func (t *CrossfadeTransition) Type() TransitionType  { return TransitionCrossfade }
func (t *CrossfadeTransition) Base() *TransitionBase { return &t.TransitionBase }

func (t *CrossfadeTransition) SetCurve(curve string) error {
	for _, c := range validCurves {
		if curve == c {
			t.Curve = curve
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrCurve, curve)
}

func (t *CrossfadeTransition) Parameters() map[string]any {
	return map[string]any{"curve": t.Curve, "duration": t.Duration}
}

func (t *CrossfadeTransition) Clone() Transition {
	cp := *t
	cp.TransitionBase = t.cloneBase()
	return &cp
}

// WipeTransition reveals the incoming clip by wiping across the screen.
type WipeTransition struct {
	TransitionBase
	Direction WipeDirection
	Feather   float64 // edge softness, clamped to [0, 1]
}

// NewWipeTransition creates a wipe. Feather is clamped, not rejected.
func NewWipeTransition(duration float64, direction WipeDirection, feather float64) *WipeTransition {
	return &WipeTransition{
		TransitionBase: TransitionBase{Duration: duration},
		Direction:      direction,
		Feather:        clamp01(feather),
	}
}

func (t *WipeTransition) Type() TransitionType  { return TransitionWipe }
func (t *WipeTransition) Base() *TransitionBase { return &t.TransitionBase }

func (t *WipeTransition) SetDirection(direction WipeDirection) *WipeTransition {
	t.Direction = direction
	return t
}

// SetFeather clamps to [0, 1].
func (t *WipeTransition) SetFeather(feather float64) *WipeTransition {
	t.Feather = clamp01(feather)
	return t
}

func (t *WipeTransition) Parameters() map[string]any {
	return map[string]any{
		"direction": string(t.Direction),
		"feather":   t.Feather,
		"duration":  t.Duration,
	}
}

func (t *WipeTransition) Clone() Transition {
	cp := *t
	cp.TransitionBase = t.cloneBase()
	return &cp
}

// FadeTransition fades the outgoing clip to a solid color before the
// incoming clip begins.
type FadeTransition struct {
	TransitionBase
	FadeColor Color
}

// NewFadeTransition creates a fade to black.
func NewFadeTransition(duration float64) *FadeTransition {
	return &FadeTransition{
		TransitionBase: TransitionBase{Duration: duration},
		FadeColor:      RGB(0, 0, 0),
	}
}

func (t *FadeTransition) Type() TransitionType  { return TransitionFade }
func (t *FadeTransition) Base() *TransitionBase { return &t.TransitionBase }

func (t *FadeTransition) SetFadeColor(r, g, b uint8) *FadeTransition {
	t.FadeColor = RGB(r, g, b)
	return t
}

func (t *FadeTransition) Parameters() map[string]any {
	return map[string]any{
		"fade_color": t.FadeColor.Hex(),
		"duration":   t.Duration,
	}
}

func (t *FadeTransition) Clone() Transition {
	cp := *t
	cp.TransitionBase = t.cloneBase()
	return &cp
}

// SlideTransition slides the incoming clip over the outgoing clip.
type SlideTransition struct {
	TransitionBase
	Direction WipeDirection
}

func NewSlideTransition(duration float64, direction WipeDirection) *SlideTransition {
	return &SlideTransition{
		TransitionBase: TransitionBase{Duration: duration},
		Direction:      direction,
	}
}

func (t *SlideTransition) Type() TransitionType  { return TransitionSlide }
func (t *SlideTransition) Base() *TransitionBase { return &t.TransitionBase }

func (t *SlideTransition) SetDirection(direction WipeDirection) *SlideTransition {
	t.Direction = direction
	return t
}

func (t *SlideTransition) Parameters() map[string]any {
	return map[string]any{
		"direction": string(t.Direction),
		"duration":  t.Duration,
	}
}

func (t *SlideTransition) Clone() Transition {
	cp := *t
	cp.TransitionBase = t.cloneBase()
	return &cp
}
