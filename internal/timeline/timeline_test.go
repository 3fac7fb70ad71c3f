package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name      string
		w, h      int
		framerate float64
		wantErr   bool
	}{
		{name: "valid", w: 1920, h: 1080, framerate: 30, wantErr: false},
		{name: "zero width", w: 0, h: 1080, framerate: 30, wantErr: true},
		{name: "negative height", w: 1920, h: -1, framerate: 30, wantErr: true},
		{name: "zero framerate", w: 1920, h: 1080, framerate: 0, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.w, tc.h, tc.framerate)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPresets(t *testing.T) {
	hd := StandardHD()
	assert.Equal(t, 1920, hd.Width)
	assert.Equal(t, 1080, hd.Height)

	v := Vertical()
	assert.Equal(t, 1080, v.Width)
	assert.Equal(t, 1920, v.Height)

	sq := Square(720)
	w, h := sq.Resolution()
	assert.Equal(t, w, h)
}

func TestTimelineDuration(t *testing.T) {
	tl := StandardHD()
	assert.Equal(t, 0.0, tl.Duration(), "no tracks")

	video := tl.AddTrack(TrackVideo)
	require.NoError(t, video.AddClip(NewVideoClip("/a.mp4", 0, Seconds(10))))

	audio := tl.AddTrack(TrackAudio)
	require.NoError(t, audio.AddClip(NewAudioClip("/a.wav", 0, Seconds(14))))

	assert.Equal(t, 14.0, tl.Duration())

	audio.SetEnabled(false)
	assert.Equal(t, 10.0, tl.Duration(), "disabled tracks are excluded")

	video.SetEnabled(false)
	assert.Equal(t, 0.0, tl.Duration(), "all tracks disabled")
}

func TestAddClipCreatesTypedTrack(t *testing.T) {
	tl := StandardHD()

	vt := tl.AddClip(NewVideoClip("/a.mp4", 0, nil))
	assert.Equal(t, TrackVideo, vt.Type)

	at := tl.AddClip(NewAudioClip("/a.wav", 0, nil))
	assert.Equal(t, TrackAudio, at.Type)

	tt := tl.AddClip(NewTextClip("hi", 0, 3))
	assert.Equal(t, TrackText, tt.Type)

	assert.Equal(t, 3, tl.TrackCount())
}

func TestAddClipAt(t *testing.T) {
	tl := StandardHD()
	tl.AddTrack(TrackVideo)

	require.NoError(t, tl.AddClipAt(NewVideoClip("/a.mp4", 0, nil), 0))
	assert.Error(t, tl.AddClipAt(NewVideoClip("/b.mp4", 0, nil), 5), "out of range")
	assert.ErrorIs(t, tl.AddClipAt(NewTextClip("x", 0, 1), 0), ErrClipType)
}

func TestTimelineFindClipsAtTime(t *testing.T) {
	tl := StandardHD()
	v := tl.AddTrack(TrackVideo)
	require.NoError(t, v.AddClip(NewVideoClip("/a.mp4", 0, Seconds(5))))
	a := tl.AddTrack(TrackAudio)
	require.NoError(t, a.AddClip(NewAudioClip("/a.wav", 3, Seconds(5))))
	a.SetEnabled(false)

	got := tl.FindClipsAtTime(4)
	require.Len(t, got, 1)
	assert.Len(t, got[0], 1, "disabled track excluded")
}

func TestMoveTrack(t *testing.T) {
	tl := StandardHD()
	first := tl.AddTrack(TrackVideo)
	second := tl.AddTrack(TrackAudio)
	third := tl.AddTrack(TrackText)

	require.True(t, tl.MoveTrack(0, 2))
	got := tl.Tracks()
	assert.Equal(t, []*Track{second, third, first}, got)

	assert.False(t, tl.MoveTrack(0, 9))
}

func TestTracksReturnsCopy(t *testing.T) {
	tl := StandardHD()
	tl.AddTrack(TrackVideo)

	tracks := tl.Tracks()
	tracks[0] = NewTrack(TrackAudio)

	got, ok := tl.TrackAt(0)
	require.True(t, ok)
	assert.Equal(t, TrackVideo, got.Type)
}

func TestTimelineClone(t *testing.T) {
	tl := StandardHD()
	tl.Name = "base"
	track := tl.AddTrack(TrackText)
	clip := NewTextClip("original", 0, 5)
	require.NoError(t, track.AddClip(clip))
	tl.SetProperty("campaign", "q3")

	cp := tl.Clone()
	cpTrack, ok := cp.TrackAt(0)
	require.True(t, ok)
	cpClip, ok := cpTrack.ClipAt(0)
	require.True(t, ok)
	cpClip.(*TextClip).Text = "mutated"
	cpTrack.SetEnabled(false)
	cp.SetProperty("campaign", "q4")

	assert.Equal(t, "original", clip.Text)
	assert.True(t, track.Enabled)
	v, _ := tl.Property("campaign")
	assert.Equal(t, "q3", v)
}
