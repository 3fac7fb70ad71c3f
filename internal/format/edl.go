package format

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/AndrewPopesku/aive/internal/timeline"
)

// EDL is a write-only CMX3600-style Edit Decision List adapter. Video-track
// clips become sequential events; audio and text cannot be represented.
type EDL struct{}

func NewEDL() *EDL { return &EDL{} }

func (e *EDL) Name() string         { return "edl" }
func (e *EDL) Extensions() []string { return []string{".edl"} }

func (e *EDL) Capability() Capability {
	return Capability{
		SupportsVideo:    true,
		SupportsMetadata: true,
		WriteOnly:        true,
	}
}

func (e *EDL) Read(path string, opts ImportOptions) (*timeline.Timeline, error) {
	return nil, &FormatError{Message: "reading EDL files is not supported"}
}

func (e *EDL) Write(tl *timeline.Timeline, path string, opts ExportOptions) error {
	title := opts.Title
	if title == "" {
		title = tl.Name
	}
	if title == "" {
		title = "Untitled"
	}

	content, err := e.render(tl, title, opts.IncludeDisabledTracks)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write EDL: %w", err)
	}
	return nil
}

type edlEvent struct {
	name     string
	path     string
	srcInMs  int
	srcOutMs int
}

func (e *EDL) render(tl *timeline.Timeline, title string, includeDisabled bool) (string, error) {
	fps := int(math.Round(tl.Framerate))
	if fps <= 0 {
		fps = 30
	}
	isDropFrame := math.Abs(tl.Framerate-29.97) < 0.01 || math.Abs(tl.Framerate-59.94) < 0.01

	var events []edlEvent
	for _, track := range tl.Tracks() {
		if !track.Enabled && !includeDisabled {
			continue
		}
		if track.Type != timeline.TrackVideo && track.Type != timeline.TrackComposite {
			continue
		}
		for _, clip := range track.Clips() {
			v, ok := clip.(*timeline.VideoClip)
			if !ok {
				continue
			}
			end, err := v.EndTime()
			if err != nil {
				return "", &FormatError{
					Message: fmt.Sprintf("clip %q has no duration; EDL events need fixed lengths", v.Name),
				}
			}
			srcIn := v.TrimStart
			srcOut := srcIn + (end - v.StartTime)
			events = append(events, edlEvent{
				name:     v.Name,
				path:     v.SourcePath,
				srcInMs:  int(srcIn * 1000),
				srcOutMs: int(srcOut * 1000),
			})
		}
	}

	lines := []string{fmt.Sprintf("TITLE: %s", title)}
	if isDropFrame {
		lines = append(lines, "FCM: DROP FRAME")
	} else {
		lines = append(lines, "FCM: NON-DROP FRAME")
	}
	lines = append(lines, "")

	recordOffsetMs := 0
	for i, ev := range events {
		durationMs := ev.srcOutMs - ev.srcInMs
		lines = append(lines,
			fmt.Sprintf("%03d  %-8s %-5s C        %s %s %s %s", i+1, "AX", "V",
				msToTimecode(ev.srcInMs, fps), msToTimecode(ev.srcOutMs, fps),
				msToTimecode(recordOffsetMs, fps), msToTimecode(recordOffsetMs+durationMs, fps)),
			fmt.Sprintf("* FROM CLIP NAME:  %s", ev.name),
			fmt.Sprintf("* MEDIA PATH:  %s", ev.path),
		)
		recordOffsetMs += durationMs
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n"), nil
}

func msToTimecode(ms int, fps int) string {
	totalFrames := int(math.Round(float64(ms) * float64(fps) / 1000.0))
	frames := totalFrames % fps
	totalSeconds := totalFrames / fps
	seconds := totalSeconds % 60
	totalMinutes := totalSeconds / 60
	minutes := totalMinutes % 60
	hours := totalMinutes / 60
	return fmt.Sprintf("%02d:%02d:%02d:%02d", hours, minutes, seconds, frames)
}

var _ TimelineFormat = (*EDL)(nil)
