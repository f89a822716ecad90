package encode

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"

	"github.com/icza/mjpeg"
)

// MJPEGBackend writes Motion JPEG AVI files in-process. It needs no external
// tools, so it is always available, but it carries no audio.
type MJPEGBackend struct {
	tempDir string
	quality int
}

func NewMJPEG(tempDir string) *MJPEGBackend {
	return &MJPEGBackend{tempDir: tempDir, quality: 85}
}

func (b *MJPEGBackend) Name() string {
	return "mjpeg"
}

func (b *MJPEGBackend) Supports(f Format) bool {
	return f.Container == "avi" && f.VideoCodec == "mjpeg"
}

func (b *MJPEGBackend) Open(ctx context.Context, s Session) (Stream, error) {
	if !b.Supports(s.Format) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, s.Format.Name)
	}

	dir, err := os.MkdirTemp(b.tempDir, "picreel-avi-*")
	if err != nil {
		return nil, fmt.Errorf("creating avi temp dir: %w", err)
	}
	path := filepath.Join(dir, "out.avi")

	w, err := mjpeg.New(path, int32(s.Profile.Width), int32(s.Profile.Height), int32(s.Profile.FPS))
	if err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to create video writer: %w", err)
	}
	return &mjpegStream{writer: w, dir: dir, path: path, quality: b.quality, onChunk: s.OnChunk}, nil
}

type mjpegStream struct {
	writer  mjpeg.AviWriter
	dir     string
	path    string
	quality int
	onChunk func([]byte)
	buf     bytes.Buffer
	done    bool
}

func (s *mjpegStream) WriteFrame(img *image.RGBA, repeat int) error {
	s.buf.Reset()
	if err := jpeg.Encode(&s.buf, img, &jpeg.Options{Quality: s.quality}); err != nil {
		return fmt.Errorf("failed to encode frame as JPEG: %w", err)
	}
	for i := 0; i < repeat; i++ {
		if err := s.writer.AddFrame(s.buf.Bytes()); err != nil {
			return fmt.Errorf("failed to add frame: %w", err)
		}
	}
	return nil
}

// Close finalizes the AVI index and emits the file in chunks.
func (s *mjpegStream) Close() error {
	if s.done {
		return nil
	}
	s.done = true
	defer os.RemoveAll(s.dir)

	if err := s.writer.Close(); err != nil {
		return fmt.Errorf("finalizing avi: %w", err)
	}

	f, err := os.Open(s.path)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := make([]byte, chunkSize)
	for {
		n, err := f.Read(buf)
		if n > 0 && s.onChunk != nil {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			s.onChunk(chunk)
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading avi: %w", err)
		}
	}
}

func (s *mjpegStream) Abort() {
	if s.done {
		return
	}
	s.done = true
	s.writer.Close()
	os.RemoveAll(s.dir)
}
