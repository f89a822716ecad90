package audio

import (
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ReadWAV decodes an integer PCM WAV stream.
func ReadWAV(r io.ReadSeeker) (*Buffer, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.New("not a valid wav file")
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decoding wav: %w", err)
	}
	if pcm.Format == nil || pcm.Format.NumChannels == 0 {
		return nil, errors.New("wav has no channels")
	}

	depth := int(dec.BitDepth)
	if depth == 0 {
		depth = 16
	}
	scale := float32(int64(1) << (depth - 1))

	buf := &Buffer{
		SampleRate: pcm.Format.SampleRate,
		Channels:   pcm.Format.NumChannels,
		Samples:    make([]float32, len(pcm.Data)),
	}
	for i, v := range pcm.Data {
		if depth == 8 {
			// 8-bit wav is unsigned
			v -= 128
		}
		buf.Samples[i] = clamp(float32(v) / scale)
	}
	return buf, nil
}

// WriteWAV encodes b as 16-bit PCM WAV.
func WriteWAV(w io.WriteSeeker, b *Buffer) error {
	enc := wav.NewEncoder(w, b.SampleRate, 16, b.Channels, 1)

	data := make([]int, len(b.Samples))
	for i, v := range b.Samples {
		data[i] = int(toInt16(v))
	}
	ib := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: b.Channels, SampleRate: b.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(ib); err != nil {
		return fmt.Errorf("writing wav: %w", err)
	}
	return enc.Close()
}
