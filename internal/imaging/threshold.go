package imaging

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/histogram"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
)

// Grayscale converts an image to BT.601 luminance. The result keeps equal
// R, G and B channels.
func Grayscale(img image.Image) *image.NRGBA {
	return imaging.Grayscale(img)
}

// MeanIntensity returns the mean 8-bit luminance of a grayscale image (the red
// channel is read; Grayscale output has R == G == B).
func MeanIntensity(gray image.Image) float64 {
	h := histogram.NewRGBAHistogram(gray)

	var sum, count float64
	for v, n := range h.R.Bins {
		sum += float64(v) * float64(n)
		count += float64(n)
	}
	if count == 0 {
		return 0
	}
	return sum / count
}

// Threshold returns a binary image where pixels strictly brighter than level
// are white and all others black.
func Threshold(gray image.Image, level float64) *image.Gray {
	// segment.Threshold keeps values >= its level; the smallest integer above
	// level gives a strict comparison.
	return segment.Threshold(gray, clampLevel(math.Floor(level)+1))
}

// InverseThreshold returns a binary image where pixels strictly darker than
// level are white and all others black.
func InverseThreshold(gray image.Image, level float64) *image.RGBA {
	return effect.Invert(segment.Threshold(gray, clampLevel(math.Ceil(level))))
}

func clampLevel(l float64) uint8 {
	if l < 0 {
		return 0
	}
	if l > 255 {
		return 255
	}
	return uint8(l)
}
