package audio

import (
	"encoding/binary"
	"fmt"
)

// DecodePCM16LE turns raw signed 16-bit little-endian mono PCM into a Buffer.
func DecodePCM16LE(data []byte, rate int) (*Buffer, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", rate)
	}
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("pcm payload has odd length %d", len(data))
	}

	buf := NewBuffer(rate, 1, len(data)/2)
	for i := range buf.Samples {
		s := int16(binary.LittleEndian.Uint16(data[i*2:]))
		buf.Samples[i] = float32(s) / 32768
	}
	return buf, nil
}

// EncodePCM16LE is the inverse of DecodePCM16LE for mono buffers.
func EncodePCM16LE(b *Buffer) []byte {
	out := make([]byte, b.Frames()*2)
	for i := 0; i < b.Frames(); i++ {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(toInt16(b.At(i, 0))))
	}
	return out
}

func toInt16(v float32) int16 {
	x := clamp(v) * 32768
	if x > 32767 {
		x = 32767
	}
	return int16(x)
}
