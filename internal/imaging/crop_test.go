package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// filledImage creates an in-memory image filled with a solid color.
func filledImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// grayRamp creates a grayscale image whose left half has value lo and right half hi.
func grayRamp(width, height int, lo, hi uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := lo
			if x >= width/2 {
				v = hi
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

func TestNewCanvas(t *testing.T) {
	c := NewCanvas(30, 20)
	assert.Equal(t, 30, c.Bounds().Dx())
	assert.Equal(t, 20, c.Bounds().Dy())

	r, g, b, a := c.At(10, 10).RGBA()
	assert.Equal(t, []uint32{0xffff, 0xffff, 0xffff, 0xffff}, []uint32{r, g, b, a})
}

func TestScale(t *testing.T) {
	img := filledImage(100, 50, color.RGBA{255, 0, 0, 255})

	tests := []struct {
		factor        float64
		width, height int
	}{
		{2.0, 200, 100},
		{4.0, 400, 200},
		{0.5, 50, 25},
		{1.0, 100, 50},
	}

	for _, tt := range tests {
		out, err := Scale(img, tt.factor)
		require.NoError(t, err)
		assert.Equal(t, tt.width, out.Bounds().Dx(), "factor %.1f", tt.factor)
		assert.Equal(t, tt.height, out.Bounds().Dy(), "factor %.1f", tt.factor)
	}
}

func TestScale_Invalid(t *testing.T) {
	img := filledImage(10, 10, color.Black)

	_, err := Scale(img, 0)
	assert.Error(t, err)
	_, err = Scale(img, -1)
	assert.Error(t, err)
	_, err = Scale(img, 0.01)
	assert.Error(t, err, "scaling to zero pixels")
}

func TestFitWidth(t *testing.T) {
	wide := filledImage(3840, 1000, color.White)
	out := FitWidth(wide, 1920)
	assert.Equal(t, 1920, out.Bounds().Dx())
	assert.Equal(t, 500, out.Bounds().Dy())

	narrow := filledImage(800, 600, color.White)
	assert.Same(t, narrow, FitWidth(narrow, 1920).(*image.RGBA))
}

func TestPlace(t *testing.T) {
	canvas := NewCanvas(100, 100)
	red := filledImage(10, 10, color.RGBA{255, 0, 0, 255})

	out := Place(canvas, red, image.Rect(20, 20, 60, 40), false)

	r, g, b, _ := out.At(30, 30).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0), g)
	assert.Equal(t, uint32(0), b)

	// Outside the destination stays white.
	r, g, b, _ = out.At(70, 70).RGBA()
	assert.Equal(t, []uint32{0xffff, 0xffff, 0xffff}, []uint32{r, g, b})
}

func TestPlace_BlendKeepsBackgroundUnderTransparency(t *testing.T) {
	canvas := NewCanvas(50, 50)
	clear := image.NewNRGBA(image.Rect(0, 0, 10, 10))

	out := Place(canvas, clear, image.Rect(0, 0, 50, 50), true)

	r, g, b, _ := out.At(25, 25).RGBA()
	assert.Equal(t, []uint32{0xffff, 0xffff, 0xffff}, []uint32{r, g, b})
}

func TestPlace_OutsideCanvas(t *testing.T) {
	canvas := NewCanvas(50, 50)
	red := filledImage(10, 10, color.RGBA{255, 0, 0, 255})

	out := Place(canvas, red, image.Rect(100, 100, 120, 120), false)
	assert.Same(t, canvas, out)

	out = Place(canvas, red, image.Rect(10, 10, 10, 30), false)
	assert.Same(t, canvas, out)
}

func TestCrop(t *testing.T) {
	img := filledImage(100, 100, color.Black)

	out, err := Crop(img, 10, 10, 60, 40)
	require.NoError(t, err)
	assert.Equal(t, 50, out.Bounds().Dx())
	assert.Equal(t, 30, out.Bounds().Dy())

	// Clipped to bounds.
	out, err = Crop(img, 80, 80, 150, 150)
	require.NoError(t, err)
	assert.Equal(t, 20, out.Bounds().Dx())
}

func TestCrop_Invalid(t *testing.T) {
	img := filledImage(100, 100, color.Black)

	_, err := Crop(img, 50, 50, 10, 10)
	assert.Error(t, err)

	_, err = Crop(img, 200, 200, 300, 300)
	assert.Error(t, err)
}

func TestFill(t *testing.T) {
	img := Fill(3, 2, color.NRGBA{R: 0xd0, G: 0xd0, B: 0xd0, A: 0xff})
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
	assert.Equal(t, color.NRGBA{R: 0xd0, G: 0xd0, B: 0xd0, A: 0xff}, img.NRGBAAt(2, 1))
}
