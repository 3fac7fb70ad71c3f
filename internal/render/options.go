// Package render defines the rendering port, render options, and a job queue
// that processes timelines sequentially or with a bounded worker pool.
package render

import "fmt"

// Options configures a single render.
type Options struct {
	Codec        string `json:"codec"`
	Bitrate      string `json:"bitrate,omitempty"` // e.g. "2000k", "5M"
	Quality      string `json:"quality,omitempty"` // low, medium, high
	Preset       string `json:"preset"`
	AudioCodec   string `json:"audio_codec"`
	AudioBitrate string `json:"audio_bitrate"`
	OutputFormat string `json:"output_format,omitempty"` // inferred from extension when empty
	Threads      int    `json:"threads,omitempty"`
	Verbose      bool   `json:"verbose,omitempty"`
}

// Encoding preset ladder, fastest first.
var validPresets = []string{
	"ultrafast", "superfast", "veryfast", "faster", "fast",
	"medium", "slow", "slower", "veryslow",
}

// DefaultOptions returns the baseline encode settings.
func DefaultOptions() Options {
	return Options{
		Codec:        "libx264",
		Preset:       "medium",
		AudioCodec:   "aac",
		AudioBitrate: "128k",
	}
}

// Validate rejects presets outside the known ladder.
func (o Options) Validate() error {
	for _, p := range validPresets {
		if o.Preset == p {
			return nil
		}
	}
	return fmt.Errorf("unknown encoding preset %q", o.Preset)
}

// FastPreview trades quality for speed.
func FastPreview() Options {
	return Options{
		Codec:        "libx264",
		Preset:       "veryfast",
		Bitrate:      "1000k",
		Quality:      "low",
		AudioCodec:   "aac",
		AudioBitrate: "128k",
	}
}

// WebOptimized targets streaming delivery.
func WebOptimized() Options {
	return Options{
		Codec:        "libx264",
		Preset:       "medium",
		Bitrate:      "2000k",
		Quality:      "medium",
		AudioCodec:   "aac",
		AudioBitrate: "128k",
	}
}

// HighQuality targets archival output.
func HighQuality() Options {
	return Options{
		Codec:        "libx264",
		Preset:       "slow",
		Bitrate:      "8000k",
		Quality:      "high",
		AudioCodec:   "aac",
		AudioBitrate: "192k",
	}
}

// PresetOptions maps a named preset to its options. Empty name yields the
// defaults.
func PresetOptions(name string) (Options, error) {
	switch name {
	case "":
		return DefaultOptions(), nil
	case "fast_preview":
		return FastPreview(), nil
	case "web_optimized":
		return WebOptimized(), nil
	case "high_quality":
		return HighQuality(), nil
	default:
		return Options{}, fmt.Errorf("unknown options preset %q", name)
	}
}
