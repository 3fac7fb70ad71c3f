// Package transcribe defines the speech-to-text port, subtitle data types
// and SRT/WebVTT serialization.
package transcribe

import (
	"fmt"
	"strings"
)

// Segment is a single timed span of transcribed speech.
type Segment struct {
	Text       string   `json:"text"`
	Start      float64  `json:"start"` // seconds
	End        float64  `json:"end"`   // seconds
	Confidence *float64 `json:"confidence,omitempty"`
	Speaker    string   `json:"speaker,omitempty"`
	Language   string   `json:"language,omitempty"`
}

func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// Result is a complete transcription with metadata.
type Result struct {
	Segments       []Segment `json:"segments"`
	Language       string    `json:"language"`
	Duration       float64   `json:"duration"`
	Model          string    `json:"model,omitempty"`
	ProcessingTime float64   `json:"processing_time,omitempty"` // seconds
}

// FullText joins every segment's text with single spaces.
func (r *Result) FullText() string {
	parts := make([]string, len(r.Segments))
	for i, s := range r.Segments {
		parts[i] = s.Text
	}
	return strings.Join(parts, " ")
}

// FilterByConfidence drops segments below the threshold. Segments without a
// confidence value are kept.
func (r *Result) FilterByConfidence(min float64) *Result {
	out := *r
	out.Segments = nil
	for _, s := range r.Segments {
		if s.Confidence == nil || *s.Confidence >= min {
			out.Segments = append(out.Segments, s)
		}
	}
	return &out
}

// MergeShortSegments folds segments shorter than minDuration into their
// successor so subtitles do not flash by.
func (r *Result) MergeShortSegments(minDuration float64) *Result {
	if len(r.Segments) == 0 {
		return r
	}

	out := *r
	out.Segments = nil
	current := r.Segments[0]
	for _, s := range r.Segments[1:] {
		if current.Duration() < minDuration {
			current = Segment{
				Text:     current.Text + " " + s.Text,
				Start:    current.Start,
				End:      s.End,
				Speaker:  current.Speaker,
				Language: current.Language,
			}
			if current.Confidence != nil && s.Confidence != nil {
				c := *s.Confidence
				if *current.Confidence < c {
					c = *current.Confidence
				}
				current.Confidence = &c
			} else {
				current.Confidence = nil
			}
			continue
		}
		out.Segments = append(out.Segments, current)
		current = s
	}
	out.Segments = append(out.Segments, current)
	return &out
}

// clock splits seconds into hour/minute/second/millisecond components,
// truncating sub-millisecond precision.
func clock(seconds float64) (h, m, s, ms int) {
	whole := int(seconds)
	h = whole / 3600
	m = (whole % 3600) / 60
	s = whole % 60
	ms = int((seconds - float64(whole)) * 1000)
	return
}

func srtTimestamp(seconds float64) string {
	h, m, s, ms := clock(seconds)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

func vttTimestamp(seconds float64) string {
	h, m, s, ms := clock(seconds)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

// SRT renders the result as a SubRip subtitle file.
func (r *Result) SRT() string {
	var b strings.Builder
	for i, s := range r.Segments {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", i+1, srtTimestamp(s.Start), srtTimestamp(s.End), s.Text)
	}
	return b.String()
}

// VTT renders the result as a WebVTT subtitle file.
func (r *Result) VTT() string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for _, s := range r.Segments {
		fmt.Fprintf(&b, "%s --> %s\n%s\n\n", vttTimestamp(s.Start), vttTimestamp(s.End), s.Text)
	}
	return b.String()
}
