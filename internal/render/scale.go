package render

import (
	"image"

	"golang.org/x/image/draw"
)

// FitRect returns the largest rectangle with the source aspect ratio that fits
// inside a dstW x dstH canvas, centered.
func FitRect(srcW, srcH, dstW, dstH int) image.Rectangle {
	if srcW <= 0 || srcH <= 0 {
		return image.Rect(0, 0, dstW, dstH)
	}

	w, h := dstW, srcH*dstW/srcW
	if h > dstH {
		w, h = srcW*dstH/srcH, dstH
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	x := (dstW - w) / 2
	y := (dstH - h) / 2
	return image.Rect(x, y, x+w, y+h)
}

// Scale resizes src to w x h. Large reductions halve the image repeatedly
// with a cheap filter before one Catmull-Rom pass so detail is not aliased away.
func Scale(src image.Image, w, h int) *image.RGBA {
	cur := src
	for {
		b := cur.Bounds()
		if b.Dx() <= 2*w || b.Dy() <= 2*h {
			break
		}
		half := image.NewRGBA(image.Rect(0, 0, b.Dx()/2, b.Dy()/2))
		draw.ApproxBiLinear.Scale(half, half.Bounds(), cur, b, draw.Src, nil)
		cur = half
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), cur, cur.Bounds(), draw.Src, nil)
	return dst
}
