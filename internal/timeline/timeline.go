// Package timeline computes the per-image schedule shared by the audio mixer
// and the frame renderer. Both consume the same Entry values so narration and
// pictures cannot drift apart.
package timeline

import (
	"fmt"

	"github.com/bilgisen/picreel/internal/models"
)

// Options controls gap and transition placement. All values are milliseconds.
type Options struct {
	// GapMs of silence is placed before and after every narration clip.
	GapMs int
	// TransitionMs is the cross-fade length at each boundary between two images.
	TransitionMs int
	// MinHoldMs is the minimum fully visible time of any image. The hold is
	// never shorter than the entry's own clip either.
	MinHoldMs int
}

// Entry is one image slot on the timeline.
type Entry struct {
	Index  int
	Image  *models.ImageRecord
	ClipMs int

	// Offset is where the slot starts; Slot is its full length.
	Offset int
	Slot   int
	// NarrationOffset is where the clip starts playing. The clip is centred
	// in the hold, which puts it at Offset+gap unless a floor raised the hold.
	NarrationOffset int

	// FadeIn is the tail half of the previous transition, FadeOut the head half
	// of the next one. The first entry fades in from black and the last fades
	// out to black, so every entry carries both halves and equal clips give
	// equal holds. Hold is the fully visible part of the slot.
	FadeIn  int
	FadeOut int
	Hold    int
}

// End returns the millisecond at which the slot ends.
func (e Entry) End() int {
	return e.Offset + e.Slot
}

type Timeline struct {
	Entries      []Entry
	TotalMs      int
	GapMs        int
	TransitionMs int
}

// Build lays out images with their clip durations in order.
func Build(images []*models.ImageRecord, clipMs []int, opts Options) (*Timeline, error) {
	if len(images) != len(clipMs) {
		return nil, fmt.Errorf("timeline: %d images but %d clips", len(images), len(clipMs))
	}
	if opts.GapMs < 0 || opts.TransitionMs < 0 || opts.MinHoldMs < 0 {
		return nil, fmt.Errorf("timeline: negative option %+v", opts)
	}

	tl := &Timeline{
		Entries:      make([]Entry, len(images)),
		GapMs:        opts.GapMs,
		TransitionMs: opts.TransitionMs,
	}

	offset := 0
	fadeIn := opts.TransitionMs / 2
	fadeOut := opts.TransitionMs - fadeIn
	for i, img := range images {
		if clipMs[i] < 0 {
			return nil, fmt.Errorf("timeline: clip %d has negative duration", i)
		}

		e := Entry{Index: i, Image: img, ClipMs: clipMs[i], Offset: offset, FadeIn: fadeIn, FadeOut: fadeOut}
		e.Hold = max(opts.GapMs+clipMs[i]+opts.GapMs-opts.TransitionMs, clipMs[i], opts.MinHoldMs)
		e.Slot = e.FadeIn + e.Hold + e.FadeOut
		e.NarrationOffset = offset + e.FadeIn + (e.Hold-clipMs[i])/2

		tl.Entries[i] = e
		offset += e.Slot
	}
	tl.TotalMs = offset
	return tl, nil
}

// FramesFor converts a millisecond position to a frame index, rounding to nearest.
func FramesFor(ms, fps int) int {
	if ms <= 0 || fps <= 0 {
		return 0
	}
	return (ms*fps + 500) / 1000
}

// FrameSpan returns the number of frames for the interval [fromMs, toMs).
// Spans are computed from absolute positions so rounding never accumulates.
func FrameSpan(fromMs, toMs, fps int) int {
	return FramesFor(toMs, fps) - FramesFor(fromMs, fps)
}

// TotalFrames is the frame count of the whole timeline at fps.
func (t *Timeline) TotalFrames(fps int) int {
	return FramesFor(t.TotalMs, fps)
}
