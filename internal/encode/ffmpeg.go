package encode

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/bilgisen/picreel/internal/logger"
)

const chunkSize = 64 << 10

// encoderNames lists acceptable ffmpeg encoders per codec, best first.
var encoderNames = map[string][]string{
	"h264":   {"libx264", "h264_videotoolbox", "h264_nvenc", "libopenh264"},
	"aac":    {"aac", "libfdk_aac"},
	"vp9":    {"libvpx-vp9"},
	"opus":   {"libopus", "opus"},
	"vp8":    {"libvpx"},
	"vorbis": {"libvorbis", "vorbis"},
}

// FFmpegBackend pipes raw RGBA frames into an ffmpeg subprocess.
type FFmpegBackend struct {
	path string

	once     sync.Once
	encoders map[string]bool
	probeErr error
	log      zerolog.Logger
}

func NewFFmpeg(path string) *FFmpegBackend {
	if path == "" {
		path = "ffmpeg"
	}
	return &FFmpegBackend{path: path, log: logger.For("ffmpeg")}
}

func (b *FFmpegBackend) Name() string {
	return "ffmpeg"
}

// Probe lists the encoders the installed ffmpeg provides. The result is cached.
func (b *FFmpegBackend) Probe(ctx context.Context) (map[string]bool, error) {
	b.once.Do(func() {
		out, err := exec.CommandContext(ctx, b.path, "-hide_banner", "-encoders").Output()
		if err != nil {
			b.probeErr = fmt.Errorf("probing ffmpeg encoders: %w", err)
			b.log.Warn().Err(err).Str("path", b.path).Msg("ffmpeg not available")
			return
		}
		b.encoders = parseEncoders(out)
		b.log.Debug().Int("encoders", len(b.encoders)).Msg("ffmpeg probed")
	})
	return b.encoders, b.probeErr
}

// parseEncoders reads `ffmpeg -encoders` output. Encoder lines start with a
// six character flag column such as " V....D libx264 ...".
func parseEncoders(out []byte) map[string]bool {
	found := make(map[string]bool)
	listing := false
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "------") {
			listing = true
			continue
		}
		if !listing {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || len(fields[0]) != 6 {
			continue
		}
		found[fields[1]] = true
	}
	return found
}

func (b *FFmpegBackend) encoderFor(codec string) string {
	for _, name := range encoderNames[codec] {
		if b.encoders[name] {
			return name
		}
	}
	return ""
}

func (b *FFmpegBackend) Supports(f Format) bool {
	if f.Container != "mp4" && f.Container != "webm" {
		return false
	}
	if _, err := b.Probe(context.Background()); err != nil {
		return false
	}
	if b.encoderFor(f.VideoCodec) == "" {
		return false
	}
	return !f.HasAudio() || b.encoderFor(f.AudioCodec) != ""
}

// args builds the ffmpeg command line for s.
func (b *FFmpegBackend) args(s Session) []string {
	p := s.Profile
	args := []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-f", "rawvideo", "-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", p.Width, p.Height),
		"-r", strconv.Itoa(p.FPS),
		"-i", "pipe:0",
	}
	if s.Format.HasAudio() && s.AudioPath != "" {
		args = append(args, "-i", s.AudioPath, "-map", "0:v", "-map", "1:a")
	}

	args = append(args,
		"-c:v", b.encoderFor(s.Format.VideoCodec),
		"-b:v", strconv.Itoa(p.BitRate),
		"-pix_fmt", "yuv420p",
	)
	if s.Format.HasAudio() && s.AudioPath != "" {
		args = append(args, "-c:a", b.encoderFor(s.Format.AudioCodec), "-b:a", "128k")
	}

	switch s.Format.Container {
	case "mp4":
		// fragmented so the muxer never needs to seek the pipe
		args = append(args, "-movflags", "frag_keyframe+empty_moov", "-f", "mp4")
	default:
		args = append(args, "-f", s.Format.Container)
	}
	return append(args, "pipe:1")
}

func (b *FFmpegBackend) Open(ctx context.Context, s Session) (Stream, error) {
	if !b.Supports(s.Format) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, s.Format.Name)
	}

	cmd := exec.CommandContext(ctx, b.path, b.args(s)...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdout: %w", err)
	}
	st := &ffmpegStream{cmd: cmd, stdin: stdin, width: s.Profile.Width, height: s.Profile.Height}
	cmd.Stderr = &st.stderr

	b.log.Debug().Strs("args", cmd.Args).Msg("starting ffmpeg")
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	st.group.Go(func() error {
		buf := make([]byte, chunkSize)
		for {
			n, err := stdout.Read(buf)
			if n > 0 && s.OnChunk != nil {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				s.OnChunk(chunk)
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("reading ffmpeg output: %w", err)
			}
		}
	})
	return st, nil
}

type ffmpegStream struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr bytes.Buffer
	group  errgroup.Group
	width  int
	height int
	closed bool
}

func (s *ffmpegStream) WriteFrame(img *image.RGBA, repeat int) error {
	b := img.Bounds()
	if b.Dx() != s.width || b.Dy() != s.height {
		return fmt.Errorf("frame is %dx%d, encoder expects %dx%d", b.Dx(), b.Dy(), s.width, s.height)
	}

	pix := img.Pix
	if img.Stride != 4*s.width {
		pix = make([]byte, 0, 4*s.width*s.height)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			off := img.PixOffset(b.Min.X, y)
			pix = append(pix, img.Pix[off:off+4*s.width]...)
		}
	}
	for i := 0; i < repeat; i++ {
		if _, err := s.stdin.Write(pix); err != nil {
			return fmt.Errorf("writing frame to ffmpeg: %w (%s)", err, strings.TrimSpace(s.stderr.String()))
		}
	}
	return nil
}

// Close ends the input, drains the output and waits for ffmpeg to exit.
func (s *ffmpegStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	closeErr := s.stdin.Close()
	readErr := s.group.Wait()
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg encoding failed: %w: %s", err, strings.TrimSpace(s.stderr.String()))
	}
	if readErr != nil {
		return readErr
	}
	return closeErr
}

func (s *ffmpegStream) Abort() {
	if s.closed {
		return
	}
	s.closed = true
	s.stdin.Close()
	if s.cmd.Process != nil {
		s.cmd.Process.Kill()
	}
	_ = s.group.Wait()
	_ = s.cmd.Wait()
}
