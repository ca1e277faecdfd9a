package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// JPEGQuality is the quality used for JPEG output.
const JPEGQuality = 85

// Save writes img to path, choosing the encoder from the file extension
// (.png, .jpg/.jpeg, .gif, .tif/.tiff, .bmp). JPEG output uses JPEGQuality.
func Save(img image.Image, path string) error {
	if _, err := imaging.FormatFromFilename(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	if err := imaging.Save(img, path, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// EncodePNG encodes img as PNG bytes, the hand-over format for Tesseract.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}
