// Package extract picks the label and image candidates out of a page's blocks.
package extract

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/rathaus-crops/internal/document"
	"github.com/ironsheep/rathaus-crops/internal/geometry"
	"github.com/ironsheep/rathaus-crops/internal/logging"
)

const (
	// MinImageSize is the size both image dimensions must exceed. Smaller
	// images are logos or decoration.
	MinImageSize = 200.0

	// MaxSpanLength is the longest span text, in characters, still considered
	// a label. Longer runs are body text.
	MaxSpanLength = 30

	// MinFontSize is the smallest font size considered a label.
	MinFontSize = 6.0
)

// ImageCandidate is an image block large enough to export.
type ImageCandidate struct {
	Rect geometry.Rect `json:"bbox"`
	XRef int           `json:"xref"`
}

// PageItems walks the page's blocks in order and returns the qualifying image
// candidates and label spans, both in document order. Span text is trimmed.
func PageItems(page document.Page, log logrus.FieldLogger) ([]ImageCandidate, []document.Span, error) {
	log = logging.OrDiscard(log).WithField("page", page.Index()+1)

	blocks, err := page.Blocks()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read blocks of page %d: %w", page.Index()+1, err)
	}

	var images []ImageCandidate
	var spans []document.Span

	for _, b := range blocks {
		switch b.Type {
		case document.BlockImage:
			if !LargeEnough(b.Rect) {
				continue
			}
			images = append(images, ImageCandidate{Rect: b.Rect, XRef: b.XRef})
			log.WithFields(logrus.Fields{
				"width":  fmt.Sprintf("%.1f", b.Rect.Width()),
				"height": fmt.Sprintf("%.1f", b.Rect.Height()),
				"xref":   b.XRef,
			}).Debug("image candidate")

		case document.BlockText:
			for _, line := range b.Lines {
				for _, s := range line.Spans {
					text := strings.TrimSpace(s.Text)
					if text == "" {
						continue
					}
					log.WithFields(logrus.Fields{
						"text": text,
						"size": s.Size,
						"bbox": s.Rect.String(),
					}).Debug("text span")

					if !LabelLike(text, s.Size) {
						continue
					}
					s.Text = text
					spans = append(spans, s)
				}
			}
		}
	}

	return images, spans, nil
}

// LargeEnough reports whether an image block is big enough to be exported.
func LargeEnough(r geometry.Rect) bool {
	return r.Width() > MinImageSize && r.Height() > MinImageSize
}

// LabelLike reports whether trimmed span text of the given font size may be a
// label.
func LabelLike(text string, size float64) bool {
	return text != "" && utf8.RuneCountInString(text) <= MaxSpanLength && size >= MinFontSize
}
