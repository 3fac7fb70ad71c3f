package timeline

import (
	"fmt"
)

// Timeline is the top-level container of tracks. It defines the overall
// resolution, framerate and audio settings of a composition.
type Timeline struct {
	Width           int     // pixels, > 0
	Height          int     // pixels, > 0
	Framerate       float64 // fps, > 0
	Name            string
	BackgroundColor Color
	AudioSampleRate int
	AudioChannels   int

	tracks []*Track
	props  map[string]any
}

// New creates a timeline, rejecting non-positive dimensions or framerate.
func New(width, height int, framerate float64) (*Timeline, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid resolution %dx%d: dimensions must be positive", width, height)
	}
	if framerate <= 0 {
		return nil, fmt.Errorf("invalid framerate %g: must be positive", framerate)
	}
	return &Timeline{
		Width:           width,
		Height:          height,
		Framerate:       framerate,
		BackgroundColor: RGB(0, 0, 0),
		AudioSampleRate: 44100,
		AudioChannels:   2,
	}, nil
}

func mustNew(width, height int, framerate float64) *Timeline {
	tl, err := New(width, height, framerate)
	if err != nil {
		panic(err) // preset dimensions are constants
	}
	return tl
}

// StandardHD returns a 1920x1080 @ 30fps timeline.
func StandardHD() *Timeline { return mustNew(1920, 1080, 30.0) }

// Standard4K returns a 3840x2160 @ 30fps timeline.
func Standard4K() *Timeline { return mustNew(3840, 2160, 30.0) }

// Square returns a size x size @ 30fps timeline for social formats.
func Square(size int) *Timeline { return mustNew(size, size, 30.0) }

// Vertical returns a 1080x1920 @ 30fps timeline for mobile formats.
func Vertical() *Timeline { return mustNew(1080, 1920, 30.0) }

// Resolution returns (width, height).
func (tl *Timeline) Resolution() (int, int) {
	return tl.Width, tl.Height
}

// AddTrack creates a track of the given type, appends it and returns it.
func (tl *Timeline) AddTrack(trackType TrackType) *Track {
	t := NewTrack(trackType)
	tl.tracks = append(tl.tracks, t)
	return t
}

// AppendTrack appends an existing track.
func (tl *Timeline) AppendTrack(t *Track) {
	tl.tracks = append(tl.tracks, t)
}

// InsertTrack inserts a track at index, clamping to the valid range.
func (tl *Timeline) InsertTrack(t *Track, index int) {
	if index < 0 {
		index = 0
	}
	if index > len(tl.tracks) {
		index = len(tl.tracks)
	}
	tl.tracks = append(tl.tracks, nil)
	copy(tl.tracks[index+1:], tl.tracks[index:])
	tl.tracks[index] = t
}

// MoveTrack moves a track between indices, reporting whether both were valid.
func (tl *Timeline) MoveTrack(from, to int) bool {
	if from < 0 || from >= len(tl.tracks) || to < 0 || to >= len(tl.tracks) {
		return false
	}
	t := tl.tracks[from]
	tl.tracks = append(tl.tracks[:from], tl.tracks[from+1:]...)
	rest := append(tl.tracks[:to:to], t)
	tl.tracks = append(rest, tl.tracks[to:]...)
	return true
}

// RemoveTrack removes the track at index, reporting whether one existed.
func (tl *Timeline) RemoveTrack(index int) bool {
	if index < 0 || index >= len(tl.tracks) {
		return false
	}
	tl.tracks = append(tl.tracks[:index], tl.tracks[index+1:]...)
	return true
}

// TrackAt returns the track at index.
func (tl *Timeline) TrackAt(index int) (*Track, bool) {
	if index < 0 || index >= len(tl.tracks) {
		return nil, false
	}
	return tl.tracks[index], true
}

// Tracks returns a copy of the track list. Structural mutation goes through
// the timeline's own methods.
func (tl *Timeline) Tracks() []*Track {
	out := make([]*Track, len(tl.tracks))
	copy(out, tl.tracks)
	return out
}

// TrackCount returns the number of tracks.
func (tl *Timeline) TrackCount() int {
	return len(tl.tracks)
}

// Duration returns the maximum track duration over enabled tracks, or 0 when
// there are no tracks or all are disabled.
func (tl *Timeline) Duration() float64 {
	var max float64
	for _, t := range tl.tracks {
		if !t.Enabled {
			continue
		}
		if d := t.Duration(); d > max {
			max = d
		}
	}
	return max
}

// AddClip appends the clip to a newly created track whose type matches the
// clip variant, and returns that track.
func (tl *Timeline) AddClip(clip Clip) *Track {
	var trackType TrackType
	switch clip.Type() {
	case ClipVideo, ClipImage:
		trackType = TrackVideo
	case ClipAudio:
		trackType = TrackAudio
	case ClipText:
		trackType = TrackText
	default:
		trackType = TrackComposite
	}
	t := tl.AddTrack(trackType)
	// The track type was derived from the clip, so AddClip cannot fail.
	_ = t.AddClip(clip)
	return t
}

// AddClipAt appends the clip to the track at trackIndex.
func (tl *Timeline) AddClipAt(clip Clip, trackIndex int) error {
	t, ok := tl.TrackAt(trackIndex)
	if !ok {
		return fmt.Errorf("track index %d out of range [0, %d)", trackIndex, len(tl.tracks))
	}
	return t.AddClip(clip)
}

// FindClipsAtTime returns, per track index, the clips active at the given
// time on enabled tracks. Track indices with no active clips are omitted.
func (tl *Timeline) FindClipsAtTime(at float64) map[int][]Clip {
	result := make(map[int][]Clip)
	for i, t := range tl.tracks {
		if !t.Enabled {
			continue
		}
		if clips := t.FindClipsAtTime(at); len(clips) > 0 {
			result[i] = clips
		}
	}
	return result
}

// AllClips returns every clip from every track in track order.
func (tl *Timeline) AllClips() []Clip {
	var out []Clip
	for _, t := range tl.tracks {
		out = append(out, t.Clips()...)
	}
	return out
}

// ClipsByType returns every clip matching the variant tag across all tracks.
func (tl *Timeline) ClipsByType(ct ClipType) []Clip {
	var out []Clip
	for _, t := range tl.tracks {
		out = append(out, t.ClipsByType(ct)...)
	}
	return out
}

// ClearAllTracks removes all clips and transitions but keeps the tracks.
func (tl *Timeline) ClearAllTracks() {
	for _, t := range tl.tracks {
		t.Clear()
	}
}

// RemoveAllTracks removes every track.
func (tl *Timeline) RemoveAllTracks() {
	tl.tracks = nil
}

// SetResolution changes the timeline resolution, rejecting non-positive
// dimensions.
func (tl *Timeline) SetResolution(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid resolution %dx%d: dimensions must be positive", width, height)
	}
	tl.Width = width
	tl.Height = height
	return nil
}

// SetFramerate changes the framerate, rejecting non-positive values.
func (tl *Timeline) SetFramerate(framerate float64) error {
	if framerate <= 0 {
		return fmt.Errorf("invalid framerate %g: must be positive", framerate)
	}
	tl.Framerate = framerate
	return nil
}

func (tl *Timeline) SetBackgroundColor(c Color) *Timeline {
	tl.BackgroundColor = c
	return tl
}

func (tl *Timeline) SetAudioSettings(sampleRate, channels int) *Timeline {
	tl.AudioSampleRate = sampleRate
	tl.AudioChannels = channels
	return tl
}

// SetProperty stores an arbitrary side property on the timeline.
func (tl *Timeline) SetProperty(key string, value any) {
	if tl.props == nil {
		tl.props = make(map[string]any)
	}
	tl.props[key] = value
}

// Property returns a previously stored side property.
func (tl *Timeline) Property(key string) (any, bool) {
	v, ok := tl.props[key]
	return v, ok
}

// Clone returns a structural deep copy: every owned track, clip and
// transition is copied, so the clone shares no mutable state with the
// original. Template filling relies on this.
func (tl *Timeline) Clone() *Timeline {
	cp := &Timeline{
		Width:           tl.Width,
		Height:          tl.Height,
		Framerate:       tl.Framerate,
		Name:            tl.Name,
		BackgroundColor: tl.BackgroundColor,
		AudioSampleRate: tl.AudioSampleRate,
		AudioChannels:   tl.AudioChannels,
		tracks:          make([]*Track, len(tl.tracks)),
	}
	for i, t := range tl.tracks {
		cp.tracks[i] = t.Clone()
	}
	if tl.props != nil {
		cp.props = make(map[string]any, len(tl.props))
		for k, v := range tl.props {
			cp.props[k] = v
		}
	}
	return cp
}

func (tl *Timeline) String() string {
	return fmt.Sprintf("Timeline(%dx%d@%gfps, %d tracks, %.2fs)",
		tl.Width, tl.Height, tl.Framerate, len(tl.tracks), tl.Duration())
}
