// Package audio holds PCM buffers, the narration mixer and the playable track.
package audio

// Buffer is interleaved float32 PCM in [-1, 1].
type Buffer struct {
	SampleRate int
	Channels   int
	Samples    []float32
}

// NewBuffer allocates a zeroed buffer of frames sample frames.
func NewBuffer(rate, channels, frames int) *Buffer {
	if frames < 0 {
		frames = 0
	}
	return &Buffer{SampleRate: rate, Channels: channels, Samples: make([]float32, frames*channels)}
}

// Silence returns a mono buffer of ms milliseconds.
func Silence(ms, rate int) *Buffer {
	return NewBuffer(rate, 1, FramesForMs(ms, rate))
}

// FramesForMs converts a duration to a sample frame count.
func FramesForMs(ms, rate int) int {
	if ms <= 0 || rate <= 0 {
		return 0
	}
	return int(int64(ms) * int64(rate) / 1000)
}

// Frames returns the number of sample frames.
func (b *Buffer) Frames() int {
	if b == nil || b.Channels == 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

// DurationMs returns the length in milliseconds, truncated.
func (b *Buffer) DurationMs() int {
	if b == nil || b.SampleRate == 0 {
		return 0
	}
	return int(int64(b.Frames()) * 1000 / int64(b.SampleRate))
}

// At returns the sample at frame for channel ch. Channels beyond the buffer's
// own count read the first channel, so mono broadcasts to stereo.
func (b *Buffer) At(frame, ch int) float32 {
	if ch >= b.Channels {
		ch = 0
	}
	return b.Samples[frame*b.Channels+ch]
}

func clamp(v float32) float32 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	}
	return v
}
