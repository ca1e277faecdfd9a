package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/rathaus-crops/internal/document"
	"github.com/ironsheep/rathaus-crops/internal/geometry"
	"github.com/ironsheep/rathaus-crops/internal/imaging"
	"github.com/ironsheep/rathaus-crops/internal/label"
	"github.com/ironsheep/rathaus-crops/internal/ocr"
	"github.com/ironsheep/rathaus-crops/internal/pdf"
	"github.com/ironsheep/rathaus-crops/internal/pdf/pdftest"
)

type fakePage struct {
	index     int
	blocks    []document.Block
	embedded  []document.EmbeddedImage
	renderErr error
	renders   []geometry.Rect
}

func (p *fakePage) Index() int                        { return p.index }
func (p *fakePage) Bounds() geometry.Rect             { return geometry.R(0, 0, 595, 842) }
func (p *fakePage) Blocks() ([]document.Block, error) { return p.blocks, nil }

func (p *fakePage) Render(clip geometry.Rect, zoom float64) (image.Image, error) {
	p.renders = append(p.renders, clip)
	if p.renderErr != nil {
		return nil, p.renderErr
	}
	w := int(clip.Width() * zoom)
	h := int(clip.Height() * zoom)
	return imaging.Fill(w, h, color.Gray{Y: 200}), nil
}

func (p *fakePage) EmbeddedImages() ([]document.EmbeddedImage, error) {
	return p.embedded, nil
}

type fakeDocument struct {
	pages  []*fakePage
	closed bool
}

func (d *fakeDocument) PageCount() int { return len(d.pages) }
func (d *fakeDocument) Page(i int) (document.Page, error) {
	if i < 0 || i >= len(d.pages) {
		return nil, fmt.Errorf("page %d out of range", i)
	}
	return d.pages[i], nil
}
func (d *fakeDocument) Close() error {
	d.closed = true
	return nil
}

func newDocument(pages ...*fakePage) *fakeDocument {
	for i, p := range pages {
		p.index = i
	}
	return &fakeDocument{pages: pages}
}

func opener(doc document.Document) document.Opener {
	return func(string) (document.Document, error) { return doc, nil }
}

func imageAt(x0, y0 float64) document.Block {
	return document.Block{Type: document.BlockImage, Rect: geometry.R(x0, y0, x0+300, y0+300), XRef: 10}
}

func textAt(text string, x0, y0 float64) document.Block {
	s := document.Span{Text: text, Size: 10, Rect: geometry.R(x0, y0, x0+60, y0+12)}
	return document.Block{Type: document.BlockText, Rect: s.Rect, Lines: []document.Line{{Rect: s.Rect, Spans: []document.Span{s}}}}
}

// fixedEngine answers every OCR pass with the same text.
type fixedEngine struct {
	text string
}

func (e fixedEngine) Recognize(image.Image, ocr.Options) (string, error) {
	return e.text, nil
}

func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestExport_PageFallback(t *testing.T) {
	doc := newDocument(
		&fakePage{blocks: []document.Block{imageAt(100, 100)}},
		&fakePage{},
	)
	out := filepath.Join(t.TempDir(), "export_rathaeuser")

	res, err := New(opener(doc)).Export(context.Background(), "Material.pdf", out)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Count)
	assert.False(t, res.CapReached)
	assert.Equal(t, []string{"001_Rathaus_Seite_1.png"}, listFiles(t, out))
	assert.Equal(t, Record{
		Seq:       1,
		Label:     "Rathaus_Seite_1",
		Source:    label.SourceFallback,
		Filename:  "001_Rathaus_Seite_1.png",
		PageIndex: 0,
	}, res.Records[0])
	assert.True(t, doc.closed)

	data, err := os.ReadFile(filepath.Join(out, "001_Rathaus_Seite_1.png"))
	require.NoError(t, err)
	img, err := imaging.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 608, 608), img.Bounds(), "padded by 2 and rendered at 2x")
}

func TestExport_CropGeometry(t *testing.T) {
	page := &fakePage{blocks: []document.Block{imageAt(100, 100)}}

	_, err := New(opener(newDocument(page))).Export(context.Background(), "x.pdf", t.TempDir())
	require.NoError(t, err)

	require.Len(t, page.renders, 1, "no OCR render without an engine")
	assert.Equal(t, geometry.R(98, 98, 402, 402), page.renders[0])
}

func TestExport_VectorTextLabel(t *testing.T) {
	doc := newDocument(&fakePage{blocks: []document.Block{
		textAt("Bad  Godesberg", 20, 240),
		imageAt(200, 100),
	}})
	out := t.TempDir()

	res, err := New(opener(doc)).Export(context.Background(), "x.pdf", out)
	require.NoError(t, err)

	require.Len(t, res.Records, 1)
	assert.Equal(t, label.SourceVectorText, res.Records[0].Source)
	assert.Equal(t, "Bad Godesberg", res.Records[0].Label)
	assert.Equal(t, []string{"001_Bad_Godesberg.png"}, listFiles(t, out))
}

func TestExport_OCRLabelWins(t *testing.T) {
	doc := newDocument(&fakePage{blocks: []document.Block{
		textAt("Bonn", 20, 240),
		imageAt(400, 100),
	}})
	out := t.TempDir()

	loc := ocr.NewLocator(fixedEngine{text: "Stadt K6ln-\n2024"}, ocr.DefaultOptions(""), nil)
	res, err := New(opener(doc), WithOCR(loc)).Export(context.Background(), "x.pdf", out)
	require.NoError(t, err)

	require.Len(t, res.Records, 1)
	assert.Equal(t, label.SourceOCR, res.Records[0].Source)
	assert.Equal(t, "Köln", res.Records[0].Label)
	assert.Equal(t, []string{"001_Köln.png"}, listFiles(t, out))
}

func TestExport_OCRNoiseFallsThrough(t *testing.T) {
	doc := newDocument(&fakePage{blocks: []document.Block{
		textAt("Bonn", 20, 240),
		imageAt(400, 100),
	}})

	// Only digits: no plausible OCR line.
	loc := ocr.NewLocator(fixedEngine{text: "2024\n17"}, ocr.DefaultOptions(""), nil)
	res, err := New(opener(doc), WithOCR(loc)).Export(context.Background(), "x.pdf", t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "Bonn", res.Records[0].Label)
	assert.Equal(t, label.SourceVectorText, res.Records[0].Source)
}

func TestExport_CustomCleaner(t *testing.T) {
	doc := newDocument(&fakePage{blocks: []document.Block{imageAt(400, 100)}})

	loc := ocr.NewLocator(fixedEngine{text: "Kolon"}, ocr.DefaultOptions(""), nil)
	cleaner := label.NewCleaner(label.Corrections{{Wrong: "Kolon", Correct: "Köln"}})
	res, err := New(opener(doc), WithOCR(loc), WithCleaner(cleaner)).Export(context.Background(), "x.pdf", t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "Köln", res.Records[0].Label)
}

func TestExport_Cap(t *testing.T) {
	var pages []*fakePage
	for p := 0; p < 3; p++ {
		page := &fakePage{}
		for i := 0; i < 40; i++ {
			page.blocks = append(page.blocks, imageAt(100, 100))
		}
		pages = append(pages, page)
	}
	out := t.TempDir()

	res, err := New(opener(newDocument(pages...))).Export(context.Background(), "x.pdf", out)
	require.NoError(t, err)

	assert.Equal(t, MaxImages, res.Count)
	assert.True(t, res.CapReached)
	assert.Len(t, listFiles(t, out), MaxImages)
	assert.Equal(t, 2, res.Records[MaxImages-1].PageIndex, "stops mid-page")
	assert.Len(t, pages[2].renders, 10)
}

func TestExport_SequenceUnique(t *testing.T) {
	page := &fakePage{blocks: []document.Block{
		textAt("Bonn", 20, 140),
		imageAt(200, 20),
		imageAt(200, 400),
		imageAt(200, 700),
	}}

	res, err := New(opener(newDocument(page)), WithLimit(2)).Export(context.Background(), "x.pdf", t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 2, res.Count)
	assert.True(t, res.CapReached)
	assert.Equal(t, "001_Bonn.png", res.Records[0].Filename)
	assert.Equal(t, "002_Bonn.png", res.Records[1].Filename)
}

func TestExport_SequenceMonotonic(t *testing.T) {
	var pages []*fakePage
	for p := 0; p < 4; p++ {
		pages = append(pages, &fakePage{blocks: []document.Block{imageAt(100, 100), imageAt(100, 450)}})
	}

	res, err := New(opener(newDocument(pages...))).Export(context.Background(), "x.pdf", t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8, res.Count)
	for i, rec := range res.Records {
		assert.Equal(t, i+1, rec.Seq)
		assert.Equal(t, fmt.Sprintf("%03d_Rathaus_Seite_%d.png", i+1, rec.PageIndex+1), rec.Filename)
	}
}

func TestExport_EmptySanitizedLabel(t *testing.T) {
	page := &fakePage{blocks: []document.Block{
		textAt("Bonn", 20, 140),
		imageAt(200, 20),
		textAt("!!!", 20, 540),
		imageAt(200, 420),
	}}
	out := t.TempDir()

	_, err := New(opener(newDocument(page))).Export(context.Background(), "x.pdf", out)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_Bonn.png", "002_Rathaus_1.png"}, listFiles(t, out))
}

func TestExport_RenderErrorIsFatal(t *testing.T) {
	renderErr := errors.New("pixmap failed")
	doc := newDocument(
		&fakePage{blocks: []document.Block{imageAt(100, 100)}},
		&fakePage{blocks: []document.Block{imageAt(100, 100)}, renderErr: renderErr},
	)
	out := t.TempDir()

	res, err := New(opener(doc)).Export(context.Background(), "x.pdf", out)
	assert.ErrorIs(t, err, renderErr)
	assert.Equal(t, 1, res.Count, "files written before the failure are reported")
	assert.Len(t, listFiles(t, out), 1)
}

func TestExport_OpenError(t *testing.T) {
	open := func(string) (document.Document, error) {
		return nil, fmt.Errorf("failed to open missing.pdf: %w", document.ErrNotFound)
	}
	res, err := New(open).Export(context.Background(), "missing.pdf", t.TempDir())
	assert.ErrorIs(t, err, document.ErrNotFound)
	assert.Equal(t, 0, res.Count)
}

func TestExport_Cancelled(t *testing.T) {
	doc := newDocument(&fakePage{blocks: []document.Block{imageAt(100, 100)}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := New(opener(doc)).Export(ctx, "x.pdf", t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, res.Count)
}

func TestExport_CreatesOutputDir(t *testing.T) {
	out := filepath.Join(t.TempDir(), "a", "b")
	_, err := New(opener(newDocument(&fakePage{}))).Export(context.Background(), "x.pdf", out)
	require.NoError(t, err)

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestExport_PDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Material.pdf")
	require.NoError(t, pdftest.Write(path,
		pdftest.Page{
			Images: []pdftest.Image{{Rect: [4]float64{250, 400, 300, 300}, Color: color.RGBA{R: 200, G: 40, B: 40, A: 255}}},
			Texts: []pdftest.Text{
				{X: 60, Y: 545, Size: 12, Content: "Bonn"},
				{X: 60, Y: 100, Size: 8, Content: "Seite 1"},
			},
		},
		pdftest.Page{},
	))
	out := t.TempDir()

	res, err := New(pdf.Open).Export(context.Background(), path, out)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Count)
	assert.Equal(t, []string{"001_Bonn.png"}, listFiles(t, out))
}
