package render

import (
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	placeholderBackground = color.RGBA{R: 0x5a, G: 0x10, B: 0x10, A: 0xff}
	placeholderText       = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// Placeholder renders the frame shown instead of an image that failed to decode.
func Placeholder(width, height int, message string) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(placeholderBackground), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	lines := wrap(message, max(1, (width-40)/face.Advance))
	lineHeight := face.Height + 4
	y := (height-len(lines)*lineHeight)/2 + face.Ascent

	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(placeholderText),
		Face: face,
	}
	for _, line := range lines {
		w := drawer.MeasureString(line).Ceil()
		drawer.Dot = fixed.P((width-w)/2, y)
		drawer.DrawString(line)
		y += lineHeight
	}
	return dst
}

func wrap(s string, width int) []string {
	var lines []string
	var cur strings.Builder
	for _, word := range strings.Fields(s) {
		if cur.Len() > 0 && cur.Len()+1+len(word) > width {
			lines = append(lines, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(word)
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}
