package timeline

import (
	"errors"
	"fmt"
	"sort"
)

// TrackType constrains which clip variants a track accepts.
type TrackType string

const (
	TrackVideo     TrackType = "video"
	TrackAudio     TrackType = "audio"
	TrackText      TrackType = "text"
	TrackComposite TrackType = "composite" // accepts every clip variant
)

// Allowed clip variants per constrained track type. Composite tracks are
// handled separately and accept everything.
var allowedClipTypes = map[TrackType]map[ClipType]bool{
	TrackVideo: {ClipVideo: true, ClipImage: true},
	TrackAudio: {ClipAudio: true},
	TrackText:  {ClipText: true},
}

var (
	// ErrClipType is returned when a clip variant is not allowed on a track.
	ErrClipType = errors.New("clip type not allowed on track")
	// ErrTransitionIndex is returned when a transition references a clip
	// position that does not exist or is the last clip on the track.
	ErrTransitionIndex = errors.New("invalid transition index")
)

// Track is an ordered layer of clips plus transitions keyed by clip index.
// The transition at index i is the blend after clip i; it is never placed
// after the final clip.
type Track struct {
	Type    TrackType
	Name    string
	Enabled bool
	Opacity float64 // track-level, applied after clip-level opacity
	Muted   bool    // track-level, independent of clip-level mute
	Locked  bool

	clips       []Clip
	transitions map[int]Transition
	props       map[string]any
}

// NewTrack creates an enabled track of the given type.
func NewTrack(trackType TrackType) *Track {
	return &Track{
		Type:        trackType,
		Enabled:     true,
		Opacity:     1.0,
		transitions: make(map[int]Transition),
	}
}

// AddClip appends a clip, enforcing the track's allowed variant set.
func (t *Track) AddClip(clip Clip) error {
	if err := t.validateClipType(clip); err != nil {
		return err
	}
	t.clips = append(t.clips, clip)
	return nil
}

// InsertClip inserts a clip at index, enforcing the allowed variant set.
// Transitions are keyed by position, not clip identity, so existing keys
// are left untouched; callers reordering clips must re-key transitions.
func (t *Track) InsertClip(clip Clip, index int) error {
	if err := t.validateClipType(clip); err != nil {
		return err
	}
	if index < 0 || index > len(t.clips) {
		return fmt.Errorf("clip index %d out of range [0, %d]", index, len(t.clips))
	}
	t.clips = append(t.clips, nil)
	copy(t.clips[index+1:], t.clips[index:])
	t.clips[index] = clip
	return nil
}

// RemoveClip removes the clip at index along with any transition keyed to
// that index. It reports whether a clip was removed.
func (t *Track) RemoveClip(index int) bool {
	if index < 0 || index >= len(t.clips) {
		return false
	}
	delete(t.transitions, index)
	t.clips = append(t.clips[:index], t.clips[index+1:]...)
	return true
}

// ClipAt returns the clip at index.
func (t *Track) ClipAt(index int) (Clip, bool) {
	if index < 0 || index >= len(t.clips) {
		return nil, false
	}
	return t.clips[index], true
}

// Clips returns a copy of the clip list. Structural mutation goes through
// the track's own methods so type validation cannot be bypassed.
func (t *Track) Clips() []Clip {
	out := make([]Clip, len(t.clips))
	copy(out, t.clips)
	return out
}

// Len returns the number of clips on the track.
func (t *Track) Len() int {
	return len(t.clips)
}

// Duration returns the maximum end time over clips with a defined duration,
// or 0 for an empty track.
func (t *Track) Duration() float64 {
	var max float64
	for _, c := range t.clips {
		end, err := c.Base().EndTime()
		if err != nil {
			continue
		}
		if end > max {
			max = end
		}
	}
	return max
}

// FindClipsAtTime returns the clips active at the given time, using
// half-open interval semantics: start <= at < end. Clips without a duration
// are excluded.
func (t *Track) FindClipsAtTime(at float64) []Clip {
	var active []Clip
	for _, c := range t.clips {
		end, err := c.Base().EndTime()
		if err != nil {
			continue
		}
		if c.Base().StartTime <= at && at < end {
			active = append(active, c)
		}
	}
	return active
}

// ClipsByType returns the clips whose variant tag matches ct.
func (t *Track) ClipsByType(ct ClipType) []Clip {
	var out []Clip
	for _, c := range t.clips {
		if c.Type() == ct {
			out = append(out, c)
		}
	}
	return out
}

// AddTransition places a transition after the clip at clipIndex. The index
// must reference an existing clip that is not the last on the track.
func (t *Track) AddTransition(clipIndex int, tr Transition) error {
	if clipIndex < 0 || clipIndex >= len(t.clips)-1 {
		return fmt.Errorf("%w: %d (track has %d clips)", ErrTransitionIndex, clipIndex, len(t.clips))
	}
	t.transitions[clipIndex] = tr
	return nil
}

// RemoveTransition removes the transition after clipIndex, reporting whether
// one existed.
func (t *Track) RemoveTransition(clipIndex int) bool {
	if _, ok := t.transitions[clipIndex]; !ok {
		return false
	}
	delete(t.transitions, clipIndex)
	return true
}

// TransitionAt returns the transition after clipIndex.
func (t *Track) TransitionAt(clipIndex int) (Transition, bool) {
	tr, ok := t.transitions[clipIndex]
	return tr, ok
}

// Transitions returns a copy of the index->transition mapping.
func (t *Track) Transitions() map[int]Transition {
	out := make(map[int]Transition, len(t.transitions))
	for i, tr := range t.transitions {
		out[i] = tr
	}
	return out
}

// Clear removes all clips and transitions.
func (t *Track) Clear() {
	t.clips = nil
	t.transitions = make(map[int]Transition)
}

// SetOpacity clamps to [0, 1].
func (t *Track) SetOpacity(opacity float64) *Track {
	t.Opacity = clamp01(opacity)
	return t
}

func (t *Track) SetMuted(muted bool) *Track {
	t.Muted = muted
	return t
}

func (t *Track) SetLocked(locked bool) *Track {
	t.Locked = locked
	return t
}

func (t *Track) SetEnabled(enabled bool) *Track {
	t.Enabled = enabled
	return t
}

// SortClipsByTime orders clips by start time. Transitions are keyed by
// position and are NOT re-keyed; callers must fix them up after reordering.
func (t *Track) SortClipsByTime() *Track {
	sort.SliceStable(t.clips, func(i, j int) bool {
		return t.clips[i].Base().StartTime < t.clips[j].Base().StartTime
	})
	return t
}

// SetProperty stores an arbitrary side property on the track.
func (t *Track) SetProperty(key string, value any) {
	if t.props == nil {
		t.props = make(map[string]any)
	}
	t.props[key] = value
}

// Property returns a previously stored side property.
func (t *Track) Property(key string) (any, bool) {
	v, ok := t.props[key]
	return v, ok
}

// Clone returns a deep copy sharing no mutable state with the original.
func (t *Track) Clone() *Track {
	cp := &Track{
		Type:        t.Type,
		Name:        t.Name,
		Enabled:     t.Enabled,
		Opacity:     t.Opacity,
		Muted:       t.Muted,
		Locked:      t.Locked,
		clips:       make([]Clip, len(t.clips)),
		transitions: make(map[int]Transition, len(t.transitions)),
	}
	for i, c := range t.clips {
		cp.clips[i] = c.Clone()
	}
	for i, tr := range t.transitions {
		cp.transitions[i] = tr.Clone()
	}
	if t.props != nil {
		cp.props = make(map[string]any, len(t.props))
		for k, v := range t.props {
			cp.props[k] = v
		}
	}
	return cp
}

// ReplaceClip swaps the clip at index for another, enforcing the track's
// allowed variant set. Transitions keyed to the index are kept: the position
// still refers to the same slot.
func (t *Track) ReplaceClip(index int, clip Clip) error {
	if index < 0 || index >= len(t.clips) {
		return fmt.Errorf("clip index %d out of range [0, %d)", index, len(t.clips))
	}
	if err := t.validateClipType(clip); err != nil {
		return err
	}
	t.clips[index] = clip
	return nil
}

func (t *Track) validateClipType(clip Clip) error {
	if t.Type == TrackComposite {
		return nil
	}
	allowed, ok := allowedClipTypes[t.Type]
	if !ok || !allowed[clip.Type()] {
		return fmt.Errorf("%w: %s track cannot contain %s clip", ErrClipType, t.Type, clip.Type())
	}
	return nil
}
