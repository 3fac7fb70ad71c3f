package transcribe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndrewPopesku/aive/internal/timeline"
)

func TestAddSubtitleTrack(t *testing.T) {
	tl := timeline.StandardHD()
	result := &Result{Segments: []Segment{
		{Text: "First line", Start: 0.0, End: 2.0},
		{Text: "Second line", Start: 2.0, End: 5.5},
	}}

	track := AddSubtitleTrack(tl, result, DefaultSubtitleStyle(tl))

	assert.Equal(t, timeline.TrackText, track.Type)
	assert.Equal(t, "subtitles", track.Name)
	require.Equal(t, 2, track.Len())

	clip, ok := track.ClipAt(1)
	require.True(t, ok)
	text := clip.(*timeline.TextClip)
	assert.Equal(t, "Second line", text.Text)
	assert.Equal(t, 2.0, text.StartTime)
	end, err := text.EndTime()
	require.NoError(t, err)
	assert.Equal(t, 5.5, end)
	assert.Equal(t, timeline.AlignCenter, text.Alignment)
}

func TestDefaultSubtitleStylePlacement(t *testing.T) {
	tl := timeline.StandardHD()
	style := DefaultSubtitleStyle(tl)

	assert.Equal(t, 960.0, style.Position.X)
	assert.Equal(t, 972.0, style.Position.Y)
	assert.Equal(t, 43, style.FontSize)
}
