package format

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndrewPopesku/aive/internal/timeline"
)

func TestRegistryForPath(t *testing.T) {
	reg := DefaultRegistry()

	edl, err := reg.ForPath("/exports/cut.edl")
	require.NoError(t, err)
	assert.Equal(t, "edl", edl.Name())

	otio, err := reg.ForPath("/exports/cut.otio")
	require.NoError(t, err)
	assert.Equal(t, "otio_json", otio.Name())

	_, err = reg.ForPath("/exports/cut.fcpxml")
	assert.ErrorContains(t, err, "no timeline format registered")
}

func TestEDLWrite(t *testing.T) {
	tl := timeline.StandardHD()
	tl.Name = "Rough Cut"
	track := tl.AddTrack(timeline.TrackVideo)

	a := timeline.NewVideoClip("/media/a.mp4", 0, timeline.Seconds(2))
	a.Name = "opening"
	require.NoError(t, track.AddClip(a))

	b := timeline.NewVideoClip("/media/b.mp4", 2, timeline.Seconds(1))
	b.Name = "closing"
	b.TrimStart = 5
	require.NoError(t, track.AddClip(b))

	path := filepath.Join(t.TempDir(), "cut.edl")
	require.NoError(t, NewEDL().Write(tl, path, ExportOptions{}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	got := string(raw)

	want := strings.Join([]string{
		"TITLE: Rough Cut",
		"FCM: NON-DROP FRAME",
		"",
		"001  AX       V     C        00:00:00:00 00:00:02:00 00:00:00:00 00:00:02:00",
		"* FROM CLIP NAME:  opening",
		"* MEDIA PATH:  /media/a.mp4",
		"002  AX       V     C        00:00:05:00 00:00:06:00 00:00:02:00 00:00:03:00",
		"* FROM CLIP NAME:  closing",
		"* MEDIA PATH:  /media/b.mp4",
		"",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestEDLDropFrameHeader(t *testing.T) {
	tl, err := timeline.New(1920, 1080, 29.97)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "cut.edl")
	require.NoError(t, NewEDL().Write(tl, path, ExportOptions{Title: "DF"}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "FCM: DROP FRAME")
}

func TestEDLRequiresClipDurations(t *testing.T) {
	tl := timeline.StandardHD()
	track := tl.AddTrack(timeline.TrackVideo)
	require.NoError(t, track.AddClip(timeline.NewVideoClip("/media/a.mp4", 0, nil)))

	err := NewEDL().Write(tl, filepath.Join(t.TempDir(), "cut.edl"), ExportOptions{})
	var ferr *FormatError
	require.ErrorAs(t, err, &ferr)
}

func TestEDLSkipsDisabledTracks(t *testing.T) {
	tl := timeline.StandardHD()
	track := tl.AddTrack(timeline.TrackVideo)
	require.NoError(t, track.AddClip(timeline.NewVideoClip("/media/a.mp4", 0, timeline.Seconds(2))))
	track.SetEnabled(false)

	path := filepath.Join(t.TempDir(), "cut.edl")
	require.NoError(t, NewEDL().Write(tl, path, ExportOptions{}))
	raw, _ := os.ReadFile(path)
	assert.NotContains(t, string(raw), "MEDIA PATH")

	require.NoError(t, NewEDL().Write(tl, path, ExportOptions{IncludeDisabledTracks: true}))
	raw, _ = os.ReadFile(path)
	assert.Contains(t, string(raw), "/media/a.mp4")
}

func TestEDLReadUnsupported(t *testing.T) {
	_, err := NewEDL().Read("/exports/cut.edl", ImportOptions{})
	var ferr *FormatError
	require.ErrorAs(t, err, &ferr)
	assert.True(t, NewEDL().Capability().WriteOnly)
}

func TestOTIORoundTrip(t *testing.T) {
	tl := timeline.Vertical()
	tl.Name = "shorts"

	video := tl.AddTrack(timeline.TrackVideo)
	video.Name = "main"
	a := timeline.NewVideoClip("/media/a.mp4", 0, timeline.Seconds(4))
	a.Name = "a"
	require.NoError(t, video.AddClip(a))
	b := timeline.NewVideoClip("/media/b.mp4", 4, timeline.Seconds(4))
	require.NoError(t, video.AddClip(b))
	require.NoError(t, video.AddTransition(0, timeline.NewWipeTransition(0.5, timeline.WipeLeftToRight, 0.25)))

	text := tl.AddTrack(timeline.TrackText)
	caption := timeline.NewTextClip("hello", 1, 2)
	caption.FontSize = 36
	require.NoError(t, text.AddClip(caption))

	path := filepath.Join(t.TempDir(), "cut.otio")
	require.NoError(t, NewOTIO().Write(tl, path, ExportOptions{}))

	got, err := NewOTIO().Read(path, ImportOptions{})
	require.NoError(t, err)

	assert.Equal(t, "shorts", got.Name)
	w, h := got.Resolution()
	assert.Equal(t, 1080, w)
	assert.Equal(t, 1920, h)
	require.Equal(t, 2, got.TrackCount())

	gotVideo, _ := got.TrackAt(0)
	assert.Equal(t, timeline.TrackVideo, gotVideo.Type)
	assert.Equal(t, "main", gotVideo.Name)
	require.Equal(t, 2, gotVideo.Len())

	gotClip, _ := gotVideo.ClipAt(0)
	gv := gotClip.(*timeline.VideoClip)
	assert.Equal(t, "/media/a.mp4", gv.SourcePath)
	end, err := gv.EndTime()
	require.NoError(t, err)
	assert.Equal(t, 4.0, end)

	tr, ok := gotVideo.TransitionAt(0)
	require.True(t, ok)
	wipe := tr.(*timeline.WipeTransition)
	assert.Equal(t, timeline.WipeLeftToRight, wipe.Direction)
	assert.Equal(t, 0.25, wipe.Feather)

	gotText, _ := got.TrackAt(1)
	gotCaption, _ := gotText.ClipAt(0)
	tc := gotCaption.(*timeline.TextClip)
	assert.Equal(t, "hello", tc.Text)
	assert.Equal(t, 36, tc.FontSize)
}

func TestOTIOReadInvalidDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.otio")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewOTIO().Read(path, ImportOptions{})
	var ferr *FormatError
	require.ErrorAs(t, err, &ferr)
}

func TestOTIOReadUnknownClipType(t *testing.T) {
	doc := `{
		"OTIO_SCHEMA": "Timeline.1",
		"width": 100, "height": 100, "framerate": 30,
		"tracks": [{
			"OTIO_SCHEMA": "Track.1", "kind": "Composite", "enabled": true, "opacity": 1,
			"children": [{"OTIO_SCHEMA": "Clip.1", "type": "hologram", "start_time": 0}]
		}]
	}`
	path := filepath.Join(t.TempDir(), "bad.otio")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	_, err := NewOTIO().Read(path, ImportOptions{})
	assert.ErrorContains(t, err, "unknown clip type")
}
