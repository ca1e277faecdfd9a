//go:build !ocr

package ocr

import "image"

const backend = "none"

// Tesseract is the stub engine used when the "ocr" build tag is not set.
type Tesseract struct {
	TessdataPrefix string
}

// NewTesseract returns ErrOCRNotEnabled.
// To enable OCR, rebuild with: go build -tags ocr
func NewTesseract(tessdataPrefix string) (*Tesseract, error) {
	return nil, ErrOCRNotEnabled
}

// Recognize returns ErrOCRNotEnabled.
func (t *Tesseract) Recognize(img image.Image, opts Options) (string, error) {
	return "", ErrOCRNotEnabled
}

// Version returns an empty string.
func (t *Tesseract) Version() string {
	return ""
}

// GetInfo reports that OCR is not compiled in.
func GetInfo(tessdataPrefix, language string) Info {
	if language == "" {
		language = DefaultLanguage
	}
	return Info{
		Available:    false,
		Error:        ErrOCRNotEnabled.Error(),
		Backend:      backend,
		Language:     language,
		TessdataPath: tessdataPrefix,
	}
}
