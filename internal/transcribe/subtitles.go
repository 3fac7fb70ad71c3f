package transcribe

import (
	"github.com/AndrewPopesku/aive/internal/timeline"
)

// SubtitleStyle controls the appearance of generated subtitle clips.
type SubtitleStyle struct {
	FontSize   int
	FontFamily string
	Color      timeline.Color
	Position   timeline.Position
}

// DefaultSubtitleStyle places white text centered near the bottom of the
// frame.
func DefaultSubtitleStyle(tl *timeline.Timeline) SubtitleStyle {
	w, h := tl.Resolution()
	return SubtitleStyle{
		FontSize:   int(float64(h) * 0.04),
		FontFamily: "Arial",
		Color:      timeline.RGB(255, 255, 255),
		Position:   timeline.Position{X: float64(w) / 2, Y: float64(h) * 0.9},
	}
}

// AddSubtitleTrack appends a text track to the timeline with one clip per
// transcription segment, and returns that track.
func AddSubtitleTrack(tl *timeline.Timeline, result *Result, style SubtitleStyle) *timeline.Track {
	track := tl.AddTrack(timeline.TrackText)
	track.Name = "subtitles"

	for _, seg := range result.Segments {
		clip := timeline.NewTextClip(seg.Text, seg.Start, seg.Duration())
		clip.FontSize = style.FontSize
		clip.FontFamily = style.FontFamily
		clip.Color = style.Color
		clip.Position = style.Position
		// Segment text is always a text clip on a text track.
		_ = clip.SetAlignment(timeline.AlignCenter)
		_ = track.AddClip(clip)
	}
	return track
}
