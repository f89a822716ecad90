package render

import (
	"context"
	"errors"
	"image"
	"image/color"

	"github.com/rs/zerolog"
	"golang.org/x/image/draw"

	"github.com/bilgisen/picreel/internal/logger"
	"github.com/bilgisen/picreel/internal/timeline"
)

// Renderer plays a timeline onto a Surface.
type Renderer struct {
	// OnProgress is called after each emitted segment with frames done and total.
	OnProgress func(done, total int)
	// OnComplete is called once after the last frame.
	OnComplete func()
	// OnDecodeError is called for every image replaced by a placeholder.
	OnDecodeError func(err *ImageDecodeError)

	log zerolog.Logger
}

func NewRenderer() *Renderer {
	return &Renderer{log: logger.For("render")}
}

type slide struct {
	img image.Image
}

// prepare decodes and letterboxes an entry into a full canvas picture.
func (r *Renderer) prepare(e timeline.Entry, w, h int) slide {
	id := ""
	var data []byte
	if e.Image != nil {
		id, data = e.Image.ID, e.Image.ImageData
	}

	src, err := Decode(id, data)
	if err != nil {
		var decodeErr *ImageDecodeError
		if errors.As(err, &decodeErr) {
			r.log.Warn().Err(err).Int("index", e.Index).Msg("using placeholder frame")
			if r.OnDecodeError != nil {
				r.OnDecodeError(decodeErr)
			}
		}
		return slide{img: Placeholder(w, h, "Image could not be loaded: "+err.Error())}
	}

	b := src.Bounds()
	fit := FitRect(b.Dx(), b.Dy(), w, h)
	scaled := Scale(src, fit.Dx(), fit.Dy())

	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	// Over flattens transparent pixels onto the black background
	draw.Draw(canvas, fit, scaled, image.Point{}, draw.Over)
	return slide{img: canvas}
}

// RenderSequence emits every entry of tl in order. Frame counts are derived
// from absolute timeline positions, so the video length equals tl.TotalMs at
// the surface frame rate.
func (r *Renderer) RenderSequence(ctx context.Context, tl *timeline.Timeline, surface Surface) error {
	if len(tl.Entries) == 0 {
		return nil
	}

	w, h := surface.Size()
	fps := surface.FrameRate()
	total := tl.TotalFrames(fps)
	full := image.Rect(0, 0, w, h)
	done := 0

	emit := func(n int) error {
		if err := surface.Emit(n); err != nil {
			return err
		}
		done += n
		if r.OnProgress != nil {
			r.OnProgress(done, total)
		}
		return nil
	}

	// fade emits n single frames; paint draws frame k of n
	fade := func(n int, paint func(k int)) error {
		for k := 0; k < n; k++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			surface.Fill(color.Black)
			paint(k)
			if err := emit(1); err != nil {
				return err
			}
		}
		return nil
	}
	ramp := func(k, n int) float64 {
		return float64(k+1) / float64(n)
	}

	first := tl.Entries[0]
	cur := r.prepare(first, w, h)
	in := timeline.FrameSpan(first.Offset, first.Offset+first.FadeIn, fps)
	if err := fade(in, func(k int) { surface.Draw(cur.img, full, ramp(k, in)) }); err != nil {
		return err
	}

	last := len(tl.Entries) - 1
	for i, e := range tl.Entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		// hold: fully visible part after the incoming fade
		holdStart := e.Offset + e.FadeIn
		holdEnd := e.End() - e.FadeOut
		surface.Fill(color.Black)
		surface.Draw(cur.img, full, 1)
		if err := emit(timeline.FrameSpan(holdStart, holdEnd, fps)); err != nil {
			return err
		}

		if i == last {
			n := timeline.FrameSpan(holdEnd, e.End(), fps)
			if err := fade(n, func(k int) { surface.Draw(cur.img, full, 1-ramp(k, n)) }); err != nil {
				return err
			}
			break
		}

		next := r.prepare(tl.Entries[i+1], w, h)
		fadeEnd := tl.Entries[i+1].Offset + tl.Entries[i+1].FadeIn
		n := timeline.FrameSpan(holdEnd, fadeEnd, fps)
		err := fade(n, func(k int) {
			surface.Draw(cur.img, full, 1)
			surface.Draw(next.img, full, ramp(k, n))
		})
		if err != nil {
			return err
		}
		cur = next
	}

	if r.OnComplete != nil {
		r.OnComplete()
	}
	return nil
}
