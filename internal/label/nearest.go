package label

import (
	"math"

	"github.com/ironsheep/rathaus-crops/internal/document"
	"github.com/ironsheep/rathaus-crops/internal/geometry"
)

// Unnamed is returned by FindNearest when no span lies left of the image.
const Unnamed = "Unbenannt"

const (
	// RowTolerance is the vertical center offset below which a span counts as
	// sitting on the same table row as the image.
	RowTolerance = 50.0

	// RowBias scales the distance of same-row spans.
	RowBias = 0.3
)

// Match describes the winning span of a nearest-label search.
type Match struct {
	Found    bool
	Index    int     // Position of the span in the input slice
	Text     string  // Raw span text
	Distance float64 // Row-adjusted center distance
}

// Nearest scores every span whose center lies strictly left of the image
// center by center-to-center distance, scaled by RowBias when the vertical
// offset is below RowTolerance. The lowest score wins; on ties the earliest
// span wins, so spans must be passed in document order.
func Nearest(img geometry.Rect, spans []document.Span) Match {
	c := img.Center()
	best := Match{Index: -1, Distance: math.Inf(1)}

	for i, span := range spans {
		sc := span.Rect.Center()
		if sc.X >= c.X {
			continue
		}

		d := geometry.Distance(c, sc)
		if math.Abs(sc.Y-c.Y) < RowTolerance {
			d *= RowBias
		}
		if d < best.Distance {
			best = Match{Found: true, Index: i, Text: span.Text, Distance: d}
		}
	}

	return best
}

// FindNearest returns the normalized text of the span Nearest selects, or
// Unnamed when no span qualifies.
func FindNearest(img geometry.Rect, spans []document.Span) string {
	m := Nearest(img, spans)
	if !m.Found || m.Text == "" {
		return Unnamed
	}
	return Normalize(m.Text)
}
