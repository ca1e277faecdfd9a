//go:build ocr

package ocr

import (
	"fmt"
	"image"

	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/rathaus-crops/internal/imaging"
)

const backend = "gosseract"

// Tesseract recognizes text with a fresh gosseract client per call, so one
// value can serve concurrent passes.
type Tesseract struct {
	// TessdataPrefix overrides the tessdata directory when non-empty.
	TessdataPrefix string
}

// NewTesseract returns a Tesseract engine. tessdataPrefix may be empty to use
// the system installation.
func NewTesseract(tessdataPrefix string) (*Tesseract, error) {
	return &Tesseract{TessdataPrefix: tessdataPrefix}, nil
}

// Recognize runs Tesseract over img and returns the raw text.
func (t *Tesseract) Recognize(img image.Image, opts Options) (string, error) {
	data, err := imaging.EncodePNG(img)
	if err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if t.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(t.TessdataPrefix); err != nil {
			return "", fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}
	if opts.Language != "" {
		if err := client.SetLanguage(opts.Language); err != nil {
			return "", fmt.Errorf("failed to set language: %w", err)
		}
	}
	if opts.Whitelist != "" {
		if err := client.SetWhitelist(opts.Whitelist); err != nil {
			return "", fmt.Errorf("failed to set whitelist: %w", err)
		}
	}
	if opts.PageSegMode != 0 {
		if err := client.SetPageSegMode(gosseract.PageSegMode(opts.PageSegMode)); err != nil {
			return "", fmt.Errorf("failed to set page segmentation mode: %w", err)
		}
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return text, nil
}

// Version returns the linked Tesseract version.
func (t *Tesseract) Version() string {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version()
}

// GetInfo reports OCR availability for the given tessdata prefix and language.
func GetInfo(tessdataPrefix, language string) Info {
	if language == "" {
		language = DefaultLanguage
	}
	info := Info{
		Backend:      backend,
		Language:     language,
		TessdataPath: tessdataPrefix,
	}

	t, _ := NewTesseract(tessdataPrefix)
	info.Version = t.Version()
	if info.Version == "" {
		info.Error = "tesseract did not report a version"
		return info
	}

	// A one-pixel probe fails when the language data is missing.
	probe := imaging.NewCanvas(1, 1)
	if _, err := t.Recognize(probe, Options{Language: language}); err != nil {
		info.Error = err.Error()
		return info
	}

	info.Available = true
	return info
}
