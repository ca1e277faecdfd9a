// Package ocr reads municipality labels printed to the left of an image.
//
// The Engine interface abstracts the recognizer. Tesseract, wrapped through
// gosseract/v2, is compiled in with the "ocr" build tag:
//
//	go build -tags ocr ./cmd/rathaus-export
//
// Tesseract and the German language data must be installed:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-deu
//   - macOS: brew install tesseract tesseract-lang
//
// Without the tag NewTesseract returns ErrOCRNotEnabled and callers run
// without OCR.
//
// # Locator
//
// Locator derives a clip left of the image, renders it at 4x, converts it to
// grayscale and runs three recognition passes (plain, thresholded at 0.7 of the
// mean intensity, inverse thresholded). The shortest plausible line across all
// passes is the label. Engine errors are absorbed and yield an empty label;
// only render errors are returned.
package ocr
