package audio

import (
	"fmt"

	"github.com/bilgisen/picreel/internal/timeline"
)

// DefaultBackgroundGain is the amplitude applied to the looping background track.
const DefaultBackgroundGain = 0.15

// Mixer merges narration clips and an optional background loop into one
// interleaved-stereo buffer laid out by a timeline.
type Mixer struct {
	SampleRate     int
	BackgroundGain float32
}

func NewMixer(rate int, gain float64) *Mixer {
	return &Mixer{SampleRate: rate, BackgroundGain: float32(gain)}
}

// Mix places clips[i] at tl.Entries[i].NarrationOffset. clips must line up
// with the timeline entries; background may be nil.
func (m *Mixer) Mix(tl *timeline.Timeline, clips []*Buffer, background *Buffer) (*Buffer, error) {
	if m.SampleRate <= 0 {
		return nil, fmt.Errorf("mixer sample rate %d", m.SampleRate)
	}
	if len(clips) != len(tl.Entries) {
		return nil, fmt.Errorf("mixer: %d clips for %d timeline entries", len(clips), len(tl.Entries))
	}

	out := NewBuffer(m.SampleRate, 2, FramesForMs(tl.TotalMs, m.SampleRate))
	frames := out.Frames()

	if bg := background; bg != nil && bg.Frames() > 0 {
		bgFrames := bg.Frames()
		for f := 0; f < frames; f++ {
			src := resampleIndex(f, m.SampleRate, bg.SampleRate) % bgFrames
			for ch := 0; ch < 2; ch++ {
				out.Samples[f*2+ch] = bg.At(src, ch) * m.BackgroundGain
			}
		}
	}

	for i, e := range tl.Entries {
		clip := clips[i]
		if clip == nil || clip.Frames() == 0 {
			continue
		}
		start := FramesForMs(e.NarrationOffset, m.SampleRate)
		clipFrames := clip.Frames()
		n := int(int64(clipFrames) * int64(m.SampleRate) / int64(clip.SampleRate))
		for k := 0; k < n; k++ {
			dst := start + k
			if dst < 0 || dst >= frames {
				break
			}
			src := resampleIndex(k, m.SampleRate, clip.SampleRate)
			if src >= clipFrames {
				break
			}
			for ch := 0; ch < 2; ch++ {
				out.Samples[dst*2+ch] = clamp(out.Samples[dst*2+ch] + clip.At(src, ch))
			}
		}
	}
	return out, nil
}

// resampleIndex maps an output frame at rate dst to the nearest source frame at rate src.
func resampleIndex(frame, dst, src int) int {
	if dst == src || src <= 0 {
		return frame
	}
	return int((int64(frame)*int64(src) + int64(dst)/2) / int64(dst))
}
