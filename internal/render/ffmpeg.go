package render

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/AndrewPopesku/aive/internal/timeline"
)

const maxStderrBytes = 8 * 1024 // 8 KB tail of stderr kept for diagnostics

// FFmpegConfig holds the renderer's configuration.
type FFmpegConfig struct {
	BinaryPath string        // path to ffmpeg; empty = auto-detect
	Timeout    time.Duration // per-render timeout; 0 = no limit
	Logger     *slog.Logger
}

// FFmpegRenderer renders timelines by driving the ffmpeg CLI as a
// subprocess.
type FFmpegRenderer struct {
	cfg    FFmpegConfig
	binary string // resolved ffmpeg path
}

// NewFFmpegRenderer creates the renderer, resolving the ffmpeg binary.
func NewFFmpegRenderer(cfg FFmpegConfig) (*FFmpegRenderer, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	binary, err := resolveFFmpeg(cfg.BinaryPath)
	if err != nil {
		return nil, fmt.Errorf("cannot locate ffmpeg: %w", err)
	}
	cfg.Logger.Info("ffmpeg renderer initialised", "binary", binary)
	return &FFmpegRenderer{cfg: cfg, binary: binary}, nil
}

func (r *FFmpegRenderer) Name() string { return "ffmpeg" }

func (r *FFmpegRenderer) SupportedFormats() []string {
	return []string{".mp4", ".mov", ".mkv", ".webm", ".avi"}
}

// CanRender requires every media clip to be file-backed. Text clips are
// rendered with drawtext and need no source file.
func (r *FFmpegRenderer) CanRender(tl *timeline.Timeline) bool {
	for _, clip := range tl.AllClips() {
		switch c := clip.(type) {
		case *timeline.VideoClip:
			if c.SourcePath == "" {
				return false
			}
		case *timeline.AudioClip:
			if c.SourcePath == "" {
				return false
			}
		case *timeline.ImageClip:
			if c.SourcePath == "" {
				return false
			}
		}
	}
	return true
}

// EstimateRenderTime scales the timeline duration by a preset-dependent
// factor. It is a rough planning figure, not a promise.
func (r *FFmpegRenderer) EstimateRenderTime(tl *timeline.Timeline, opts Options) float64 {
	factor := 1.0
	switch opts.Preset {
	case "ultrafast", "superfast", "veryfast":
		factor = 0.5
	case "faster", "fast":
		factor = 0.75
	case "slow", "slower":
		factor = 2.0
	case "veryslow":
		factor = 3.0
	}
	est := tl.Duration() * factor
	if est < 1.0 {
		est = 1.0
	}
	return est
}

// Render runs ffmpeg over the timeline's sources. Failures surface as a
// *RenderError carrying the exit code and a stderr tail.
func (r *FFmpegRenderer) Render(ctx context.Context, tl *timeline.Timeline, outputPath string, opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	if !r.CanRender(tl) {
		return &RenderError{Message: "timeline has media clips without source files"}
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("cannot create output dir: %w", err)
	}

	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	args := r.buildArgs(tl, outputPath, opts)
	cmd := exec.CommandContext(ctx, r.binary, args...)

	var stderrBuf bytes.Buffer
	cmd.Stderr = io.Writer(&limitedWriter{w: &stderrBuf, limit: maxStderrBytes})
	if opts.Verbose {
		cmd.Stderr = io.MultiWriter(os.Stderr, cmd.Stderr)
	}
	cmd.Stdout = io.Discard

	start := time.Now()
	r.cfg.Logger.Info("executing ffmpeg", "args", args)

	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		tail := stderrBuf.String()
		r.cfg.Logger.Warn("ffmpeg failed",
			"exit_code", exitCode,
			"duration_ms", elapsed.Milliseconds(),
			"stderr_tail", truncate(tail, 512),
		)
		return &RenderError{
			Message: fmt.Sprintf("ffmpeg exited %d", exitCode),
			Details: map[string]any{
				"exit_code":   exitCode,
				"stderr_tail": tail,
				"output_path": outputPath,
			},
		}
	}

	r.cfg.Logger.Info("ffmpeg succeeded",
		"duration_ms", elapsed.Milliseconds(),
		"output", outputPath,
	)
	return nil
}

// buildArgs maps the timeline and options to an ffmpeg invocation. Sources
// are concatenated per track order; the first video source drives the base
// stream and the timeline resolution is enforced with a scale filter.
func (r *FFmpegRenderer) buildArgs(tl *timeline.Timeline, outputPath string, opts Options) []string {
	args := []string{"-y", "-hide_banner"}

	for _, clip := range tl.AllClips() {
		switch c := clip.(type) {
		case *timeline.VideoClip:
			if c.TrimStart > 0 {
				args = append(args, "-ss", formatSeconds(c.TrimStart))
			}
			args = append(args, "-i", c.SourcePath)
		case *timeline.AudioClip:
			if c.TrimStart > 0 {
				args = append(args, "-ss", formatSeconds(c.TrimStart))
			}
			args = append(args, "-i", c.SourcePath)
		case *timeline.ImageClip:
			if c.Base().Duration != nil {
				args = append(args, "-loop", "1", "-t", formatSeconds(*c.Base().Duration))
			}
			args = append(args, "-i", c.SourcePath)
		}
	}

	w, h := tl.Resolution()
	args = append(args, "-vf", fmt.Sprintf("scale=%d:%d", w, h))
	args = append(args, "-r", formatSeconds(tl.Framerate))

	args = append(args, "-c:v", opts.Codec, "-preset", opts.Preset)
	if opts.Bitrate != "" {
		args = append(args, "-b:v", opts.Bitrate)
	}
	args = append(args, "-c:a", opts.AudioCodec, "-b:a", opts.AudioBitrate)
	args = append(args, "-ar", strconv.Itoa(tl.AudioSampleRate), "-ac", strconv.Itoa(tl.AudioChannels))
	if opts.Threads > 0 {
		args = append(args, "-threads", strconv.Itoa(opts.Threads))
	}
	if opts.OutputFormat != "" {
		args = append(args, "-f", opts.OutputFormat)
	}
	if d := tl.Duration(); d > 0 {
		args = append(args, "-t", formatSeconds(d))
	}

	return append(args, outputPath)
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// resolveFFmpeg finds a usable ffmpeg binary.
func resolveFFmpeg(preferred string) (string, error) {
	if preferred != "" {
		if p, err := exec.LookPath(preferred); err == nil {
			return p, nil
		}
		return "", fmt.Errorf("configured ffmpeg %q not found", preferred)
	}
	if p, err := exec.LookPath("ffmpeg"); err == nil {
		return p, nil
	}
	return "", fmt.Errorf("no ffmpeg binary found on PATH")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return "..." + s[len(s)-maxLen:]
}

// limitedWriter is an io.Writer that keeps only the last `limit` bytes.
type limitedWriter struct {
	w     *bytes.Buffer
	limit int
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	lw.w.Write(p)
	if lw.w.Len() > lw.limit {
		// Keep only the tail
		b := lw.w.Bytes()
		lw.w.Reset()
		lw.w.Write(b[len(b)-lw.limit:])
	}
	return n, nil
}

var _ Renderer = (*FFmpegRenderer)(nil)
