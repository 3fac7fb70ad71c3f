package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackTypeValidation(t *testing.T) {
	t.Run("video track accepts video and image clips", func(t *testing.T) {
		track := NewTrack(TrackVideo)
		require.NoError(t, track.AddClip(NewVideoClip("/media/a.mp4", 0, Seconds(5))))
		require.NoError(t, track.AddClip(NewImageClip("/media/logo.png", 5, 2)))
		assert.Equal(t, 2, track.Len())
	})

	t.Run("video track rejects audio and text clips", func(t *testing.T) {
		track := NewTrack(TrackVideo)
		err := track.AddClip(NewAudioClip("/media/a.wav", 0, Seconds(5)))
		assert.ErrorIs(t, err, ErrClipType)
		err = track.AddClip(NewTextClip("hi", 0, 5))
		assert.ErrorIs(t, err, ErrClipType)
		assert.Equal(t, 0, track.Len())
	})

	t.Run("audio track accepts only audio clips", func(t *testing.T) {
		track := NewTrack(TrackAudio)
		require.NoError(t, track.AddClip(NewAudioClip("/media/a.wav", 0, Seconds(5))))
		assert.ErrorIs(t, track.AddClip(NewVideoClip("/media/a.mp4", 0, nil)), ErrClipType)
	})

	t.Run("composite track accepts everything", func(t *testing.T) {
		track := NewTrack(TrackComposite)
		require.NoError(t, track.AddClip(NewVideoClip("/media/a.mp4", 0, nil)))
		require.NoError(t, track.AddClip(NewAudioClip("/media/a.wav", 0, nil)))
		require.NoError(t, track.AddClip(NewTextClip("hi", 0, 5)))
		require.NoError(t, track.AddClip(NewImageClip("/media/logo.png", 0, 1)))
	})
}

func TestTrackDuration(t *testing.T) {
	track := NewTrack(TrackComposite)
	assert.Equal(t, 0.0, track.Duration(), "empty track")

	require.NoError(t, track.AddClip(NewVideoClip("/a.mp4", 0, Seconds(5))))
	require.NoError(t, track.AddClip(NewVideoClip("/b.mp4", 4, Seconds(3))))
	// No duration: excluded from the span.
	require.NoError(t, track.AddClip(NewVideoClip("/c.mp4", 100, nil)))

	assert.Equal(t, 7.0, track.Duration())
}

func TestFindClipsAtTime(t *testing.T) {
	track := NewTrack(TrackVideo)
	a := NewVideoClip("/a.mp4", 0, Seconds(5)) // [0, 5)
	b := NewVideoClip("/b.mp4", 4, Seconds(3)) // [4, 7)
	c := NewVideoClip("/c.mp4", 8, Seconds(2)) // [8, 10)
	require.NoError(t, track.AddClip(a))
	require.NoError(t, track.AddClip(b))
	require.NoError(t, track.AddClip(c))

	tests := []struct {
		name string
		at   float64
		want []Clip
	}{
		{name: "overlap region", at: 4.5, want: []Clip{a, b}},
		{name: "start is inclusive", at: 0.0, want: []Clip{a}},
		{name: "past all clips", at: 15.0, want: nil},
		{name: "end is exclusive", at: 5.0, want: []Clip{b}},
		{name: "second clip end exclusive", at: 7.0, want: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, track.FindClipsAtTime(tc.at))
		})
	}
}

func TestTransitionIndexing(t *testing.T) {
	track := NewTrack(TrackVideo)
	require.NoError(t, track.AddClip(NewVideoClip("/a.mp4", 0, Seconds(2))))
	require.NoError(t, track.AddClip(NewVideoClip("/b.mp4", 2, Seconds(2))))

	t.Run("after last clip rejected", func(t *testing.T) {
		err := track.AddTransition(1, NewCrossfadeTransition(0.5))
		assert.ErrorIs(t, err, ErrTransitionIndex)
	})

	t.Run("negative index rejected", func(t *testing.T) {
		err := track.AddTransition(-1, NewCrossfadeTransition(0.5))
		assert.ErrorIs(t, err, ErrTransitionIndex)
	})

	t.Run("valid index accepted", func(t *testing.T) {
		require.NoError(t, track.AddTransition(0, NewCrossfadeTransition(0.5)))
		tr, ok := track.TransitionAt(0)
		require.True(t, ok)
		assert.Equal(t, TransitionCrossfade, tr.Type())
	})

	t.Run("removing a clip drops its transition", func(t *testing.T) {
		require.True(t, track.RemoveClip(0))
		_, ok := track.TransitionAt(0)
		assert.False(t, ok)
	})
}

func TestClipsReturnsCopy(t *testing.T) {
	track := NewTrack(TrackVideo)
	require.NoError(t, track.AddClip(NewVideoClip("/a.mp4", 0, Seconds(1))))

	clips := track.Clips()
	clips[0] = NewVideoClip("/other.mp4", 0, Seconds(1))

	got, ok := track.ClipAt(0)
	require.True(t, ok)
	assert.Equal(t, "/a.mp4", got.(*VideoClip).SourcePath, "mutating the returned slice must not affect the track")
}

func TestTrackClone(t *testing.T) {
	track := NewTrack(TrackComposite)
	clip := NewTextClip("hello", 0, 5)
	require.NoError(t, track.AddClip(clip))
	require.NoError(t, track.AddClip(NewTextClip("next", 5, 5)))
	require.NoError(t, track.AddTransition(0, NewFadeTransition(1)))

	cp := track.Clone()
	got, ok := cp.ClipAt(0)
	require.True(t, ok)
	got.(*TextClip).Text = "mutated"

	assert.Equal(t, "hello", clip.Text, "clone must not share clip state")
	assert.Equal(t, 2, cp.Len())
	_, ok = cp.TransitionAt(0)
	assert.True(t, ok)
}

func TestTrackOpacityClamp(t *testing.T) {
	track := NewTrack(TrackVideo)
	assert.Equal(t, 1.0, track.SetOpacity(3.0).Opacity)
	assert.Equal(t, 0.0, track.SetOpacity(-1.0).Opacity)
}
