package pdf

import (
	"math"
	"strings"

	lpdf "github.com/ledongthuc/pdf"

	"github.com/ironsheep/rathaus-crops/internal/document"
	"github.com/ironsheep/rathaus-crops/internal/geometry"
)

// Glyph layout, as fractions of the font size.
const (
	ascent            = 0.8  // baseline to top of the glyph box
	descent           = 0.2  // baseline to bottom of the glyph box
	baselineTolerance = 0.3  // baselines closer than this share a line
	spaceGap          = 0.2  // a wider gap inside a span becomes a space
	columnGap         = 2.0  // a wider gap starts a new line
	blockGap          = 1.5  // lines closer than this share a block
	backtrack         = 0.5  // glyphs may overlap the previous one by this much
	sizeEpsilon       = 0.01 // font sizes closer than this are equal
)

type spanBuilder struct {
	text     strings.Builder
	rect     geometry.Rect
	size     float64
	font     string
	baseline float64
}

func (b *spanBuilder) span() document.Span {
	return document.Span{
		Text: b.text.String(),
		Rect: b.rect,
		Size: b.size,
		Font: b.font,
	}
}

// sameLine reports whether a glyph at (x, baseline) of the given size continues
// the line the builder ends.
func (b *spanBuilder) sameLine(x, baseline, size float64) bool {
	tol := baselineTolerance * math.Max(size, b.size)
	if math.Abs(baseline-b.baseline) > tol {
		return false
	}
	gap := x - b.rect.X1
	return gap >= -backtrack*b.size && gap <= columnGap*math.Max(size, b.size)
}

// groupLines turns ledongthuc glyphs into lines of spans. origin is the
// MediaBox top-left corner in user space.
func groupLines(glyphs []lpdf.Text, origin geometry.Point) []document.Line {
	var lines []document.Line
	var line *document.Line
	var cur *spanBuilder

	flushSpan := func() {
		if cur == nil {
			return
		}
		s := cur.span()
		line.Spans = append(line.Spans, s)
		line.Rect = line.Rect.Union(s.Rect)
		cur = nil
	}
	flushLine := func() {
		flushSpan()
		if line != nil && len(line.Spans) > 0 {
			lines = append(lines, *line)
		}
		line = nil
	}

	for _, g := range glyphs {
		if g.S == "" || g.FontSize <= 0 {
			continue
		}
		x := g.X - origin.X
		baseline := origin.Y - g.Y
		rect := geometry.Rect{
			X0: x,
			Y0: baseline - ascent*g.FontSize,
			X1: x + math.Max(g.W, 0),
			Y1: baseline + descent*g.FontSize,
		}

		if cur != nil && cur.sameLine(x, baseline, g.FontSize) {
			if cur.font == g.Font && math.Abs(cur.size-g.FontSize) < sizeEpsilon {
				if x-cur.rect.X1 > spaceGap*g.FontSize && !strings.HasSuffix(cur.text.String(), " ") && g.S != " " {
					cur.text.WriteByte(' ')
				}
				cur.text.WriteString(g.S)
				cur.rect = cur.rect.Union(rect)
				continue
			}
			flushSpan()
		} else {
			flushLine()
			line = &document.Line{Rect: rect}
		}

		cur = &spanBuilder{rect: rect, size: g.FontSize, font: g.Font, baseline: baseline}
		cur.text.WriteString(g.S)
	}
	flushLine()
	return lines
}

// groupBlocks gathers consecutive lines into text blocks. A line joins the
// current block when it starts below it within blockGap font sizes and
// overlaps it horizontally.
func groupBlocks(lines []document.Line) []document.Block {
	var blocks []document.Block
	for _, l := range lines {
		if n := len(blocks); n > 0 {
			b := &blocks[n-1]
			size := lineSize(l)
			gap := l.Rect.Y0 - b.Rect.Y1
			overlaps := l.Rect.X0 < b.Rect.X1 && b.Rect.X0 < l.Rect.X1
			if gap >= -baselineTolerance*size && gap <= blockGap*size && overlaps {
				b.Lines = append(b.Lines, l)
				b.Rect = b.Rect.Union(l.Rect)
				continue
			}
		}
		blocks = append(blocks, document.Block{
			Type:  document.BlockText,
			Rect:  l.Rect,
			Lines: []document.Line{l},
		})
	}
	return blocks
}

func lineSize(l document.Line) float64 {
	size := 0.0
	for _, s := range l.Spans {
		size = math.Max(size, s.Size)
	}
	return size
}
