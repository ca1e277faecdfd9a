package ocr

import (
	"fmt"
	"image"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/rathaus-crops/internal/document"
	"github.com/ironsheep/rathaus-crops/internal/geometry"
	"github.com/ironsheep/rathaus-crops/internal/imaging"
	"github.com/ironsheep/rathaus-crops/internal/logging"
)

// Clip geometry, in page units.
const (
	ClipGap   = 8.0   // space kept between clip and image
	ClipReach = 360.0 // how far left of the image the clip extends
	ClipPad   = 6.0   // vertical padding above and below the image
	ClipZoom  = 4.0   // render magnification

	// ThresholdFactor scales the mean intensity into the binarization level.
	ThresholdFactor = 0.7

	// MinLineLength is the shortest line, in characters, accepted as a label.
	MinLineLength = 3
)

// Pass names, in evaluation order.
var passNames = [...]string{"plain", "threshold", "inverse"}

// LeftClip returns the region left of an image where its label is printed.
// ok is false when the region is degenerate.
func LeftClip(img geometry.Rect) (clip geometry.Rect, ok bool) {
	clip = geometry.Rect{
		X0: math.Max(0, img.X0-ClipReach),
		Y0: img.Y0 - ClipPad,
		X1: img.X0 - ClipGap,
		Y1: img.Y1 + ClipPad,
	}
	if clip.X1 <= clip.X0 || clip.Y1 <= clip.Y0 {
		return geometry.Rect{}, false
	}
	return clip, true
}

// Locator reads the label left of an image with an OCR engine.
type Locator struct {
	engine  Engine
	options Options
	log     logrus.FieldLogger
}

// NewLocator returns a Locator. A nil engine disables OCR: Label then always
// returns an empty string.
func NewLocator(engine Engine, opts Options, log logrus.FieldLogger) *Locator {
	return &Locator{
		engine:  engine,
		options: opts,
		log:     logging.OrDiscard(log),
	}
}

// Enabled reports whether an engine is attached.
func (l *Locator) Enabled() bool {
	return l != nil && l.engine != nil
}

// Label returns the best OCR line left of imgRect, or "" when OCR is disabled,
// the clip is degenerate or nothing plausible was recognized. Only a render
// failure is returned as an error.
func (l *Locator) Label(page document.Renderer, imgRect geometry.Rect) (string, error) {
	if !l.Enabled() {
		return "", nil
	}
	clip, ok := LeftClip(imgRect)
	if !ok {
		l.log.WithField("image", imgRect.String()).Debug("OCR clip is degenerate")
		return "", nil
	}

	raster, err := page.Render(clip, ClipZoom)
	if err != nil {
		return "", fmt.Errorf("failed to render OCR clip %s: %w", clip, err)
	}

	texts := l.recognizeVariants(Variants(raster))
	best := BestLine(texts)

	l.log.WithFields(logrus.Fields{
		"clip":  clip.String(),
		"label": best,
	}).Debug("OCR result")
	return best, nil
}

// Variants returns the three preprocessed rasters recognized for a clip:
// grayscale, thresholded and inverse thresholded.
func Variants(raster image.Image) []image.Image {
	gray := imaging.Grayscale(raster)
	level := ThresholdFactor * imaging.MeanIntensity(gray)
	return []image.Image{
		gray,
		imaging.Threshold(gray, level),
		imaging.InverseThreshold(gray, level),
	}
}

// recognizeVariants runs one pass per variant concurrently. Results keep the
// variant order; failed passes leave an empty slot.
func (l *Locator) recognizeVariants(variants []image.Image) []string {
	texts := make([]string, len(variants))

	var g errgroup.Group
	for i, v := range variants {
		g.Go(func() error {
			texts[i] = l.recognize(i, v)
			return nil
		})
	}
	_ = g.Wait()

	return texts
}

func (l *Locator) recognize(pass int, img image.Image) (text string) {
	name := "pass"
	if pass < len(passNames) {
		name = passNames[pass]
	}
	defer func() {
		if r := recover(); r != nil {
			l.log.WithField("pass", name).Warnf("OCR engine panicked: %v", r)
			text = ""
		}
	}()

	text, err := l.engine.Recognize(img, l.options)
	if err != nil {
		l.log.WithField("pass", name).WithError(err).Debug("OCR pass failed")
		return ""
	}
	return strings.TrimSpace(text)
}

// BestLine picks the shortest plausible line across pass outputs. A line is
// plausible when it has at least MinLineLength characters, is not all digits
// and does not start with a digit. The first of equally short lines wins.
func BestLine(texts []string) string {
	best := ""
	bestLen := 0
	for _, text := range texts {
		for _, line := range strings.Split(text, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || !plausible(line) {
				continue
			}
			n := utf8.RuneCountInString(line)
			if best == "" || n < bestLen {
				best, bestLen = line, n
			}
		}
	}
	return best
}

func plausible(line string) bool {
	if utf8.RuneCountInString(line) < MinLineLength {
		return false
	}
	if line[0] >= '0' && line[0] <= '9' {
		return false
	}
	for _, r := range line {
		if !unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
