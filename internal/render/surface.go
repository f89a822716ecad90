// Package render draws a timeline of images onto a frame surface.
package render

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Surface is the drawing target owned by one generation run.
type Surface interface {
	Size() (width, height int)
	FrameRate() int
	Fill(c color.Color)
	// Draw composites img into r with a uniform opacity in [0, 1].
	Draw(img image.Image, r image.Rectangle, alpha float64)
	// Emit publishes the current picture as n consecutive frames.
	Emit(n int) error
}

// FrameSink receives captured frames. repeat is the number of consecutive
// identical frames the picture stands for.
type FrameSink interface {
	WriteFrame(img *image.RGBA, repeat int) error
}

// CanvasSurface is a Surface backed by an in-memory RGBA image.
type CanvasSurface struct {
	canvas  *image.RGBA
	fps     int
	sink    FrameSink
	emitted int
}

func NewCanvas(width, height, fps int) *CanvasSurface {
	return &CanvasSurface{
		canvas: image.NewRGBA(image.Rect(0, 0, width, height)),
		fps:    fps,
	}
}

// CaptureStream routes emitted frames to sink.
func (c *CanvasSurface) CaptureStream(sink FrameSink) {
	c.sink = sink
}

func (c *CanvasSurface) Size() (int, int) {
	b := c.canvas.Bounds()
	return b.Dx(), b.Dy()
}

func (c *CanvasSurface) FrameRate() int {
	return c.fps
}

func (c *CanvasSurface) Fill(col color.Color) {
	draw.Draw(c.canvas, c.canvas.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
}

func (c *CanvasSurface) Draw(img image.Image, r image.Rectangle, alpha float64) {
	switch {
	case alpha <= 0:
		return
	case alpha >= 1:
		draw.Draw(c.canvas, r, img, img.Bounds().Min, draw.Over)
	default:
		mask := image.NewUniform(color.Alpha{A: uint8(alpha*255 + 0.5)})
		draw.DrawMask(c.canvas, r, img, img.Bounds().Min, mask, image.Point{}, draw.Over)
	}
}

func (c *CanvasSurface) Emit(n int) error {
	if n <= 0 {
		return nil
	}
	c.emitted += n
	if c.sink == nil {
		return nil
	}
	return c.sink.WriteFrame(c.canvas, n)
}

// Frames returns how many frames have been emitted so far.
func (c *CanvasSurface) Frames() int {
	return c.emitted
}

// Image exposes the canvas for inspection.
func (c *CanvasSurface) Image() *image.RGBA {
	return c.canvas
}
