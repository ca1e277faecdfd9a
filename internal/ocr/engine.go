package ocr

import (
	"errors"
	"image"
)

// ErrOCRNotEnabled is returned by NewTesseract when OCR support was not
// compiled in. Rebuild with -tags ocr to enable it.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Whitelist is the character set labels are recognized from.
const Whitelist = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyzÄÖÜäöüß0123456789.- "

// DefaultLanguage is the Tesseract language used for labels.
const DefaultLanguage = "deu"

// PageSegMode mirrors Tesseract's page segmentation modes.
type PageSegMode int

// Page segmentation modes used by the locator.
const (
	PSMSingleBlock PageSegMode = 6 // Single uniform block of text
	PSMSingleLine  PageSegMode = 7 // Single text line
)

// Options configures one recognition call.
type Options struct {
	Language    string
	Whitelist   string
	PageSegMode PageSegMode
}

// DefaultOptions returns the label recognition settings for a language. An
// empty language selects DefaultLanguage.
func DefaultOptions(language string) Options {
	if language == "" {
		language = DefaultLanguage
	}
	return Options{
		Language:    language,
		Whitelist:   Whitelist,
		PageSegMode: PSMSingleBlock,
	}
}

// Engine turns a raster into text. Implementations must be safe for
// concurrent use.
type Engine interface {
	Recognize(img image.Image, opts Options) (string, error)
}

// Info describes the OCR subsystem.
type Info struct {
	Available    bool   `json:"available"`
	Version      string `json:"version,omitempty"`
	Error        string `json:"error,omitempty"`
	Backend      string `json:"backend"`
	Language     string `json:"language"`
	TessdataPath string `json:"tessdata_path,omitempty"`
}
