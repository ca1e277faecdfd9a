package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// NewCanvas returns an opaque white canvas of the given size.
func NewCanvas(width, height int) *image.NRGBA {
	return Fill(width, height, color.White)
}

// Fill returns an image of the given size filled with c.
func Fill(width, height int, c color.Color) *image.NRGBA {
	return imaging.New(width, height, c)
}

// Scale resizes an image by a linear factor using Lanczos resampling.
func Scale(img image.Image, factor float64) (*image.NRGBA, error) {
	if factor <= 0 {
		return nil, fmt.Errorf("invalid scale factor %.2f", factor)
	}
	b := img.Bounds()
	w := int(math.Round(float64(b.Dx()) * factor))
	h := int(math.Round(float64(b.Dy()) * factor))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("scaled size %dx%d is empty", w, h)
	}
	return imaging.Resize(img, w, h, imaging.Lanczos), nil
}

// FitWidth downscales an image proportionally so it is at most maxWidth pixels
// wide. Narrower images are returned unchanged.
func FitWidth(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	if b.Dx() <= maxWidth {
		return img
	}
	h := int(float64(b.Dy()) * float64(maxWidth) / float64(b.Dx()))
	return imaging.Resize(img, maxWidth, h, imaging.Lanczos)
}

// Place draws src stretched onto the destination rectangle dst of canvas.
// The part of dst outside the canvas is clipped. When blend is true, src is
// alpha-composited over the canvas; otherwise it replaces the covered pixels.
func Place(canvas *image.NRGBA, src image.Image, dst image.Rectangle, blend bool) *image.NRGBA {
	if dst.Dx() <= 0 || dst.Dy() <= 0 {
		return canvas
	}
	if !dst.Overlaps(canvas.Bounds()) {
		return canvas
	}

	resized := imaging.Resize(src, dst.Dx(), dst.Dy(), imaging.Lanczos)
	if blend {
		return imaging.Overlay(canvas, resized, dst.Min, 1.0)
	}
	return imaging.Paste(canvas, resized, dst.Min)
}

// Crop extracts a rectangular region from an image. The region is clipped to
// the image bounds.
func Crop(img image.Image, x0, y0, x1, y1 int) (*image.NRGBA, error) {
	if x0 >= x1 || y0 >= y1 {
		return nil, fmt.Errorf("invalid crop region: x0 must be < x1, y0 must be < y1")
	}
	r := image.Rect(x0, y0, x1, y1).Intersect(img.Bounds())
	if r.Empty() {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds", x0, y0, x1, y1)
	}
	return imaging.Crop(img, r), nil
}
