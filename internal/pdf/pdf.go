package pdf

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"

	lpdf "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/rathaus-crops/internal/document"
	"github.com/ironsheep/rathaus-crops/internal/geometry"
	"github.com/ironsheep/rathaus-crops/internal/imaging"
	"github.com/ironsheep/rathaus-crops/internal/logging"
)

var configOnce sync.Once

// Document is an opened PDF file.
type Document struct {
	path   string
	ctx    *model.Context
	file   io.Closer
	text   *lpdf.Reader
	images *imaging.ImageCache
	log    logrus.FieldLogger

	mu    sync.Mutex
	pages map[int]*Page
}

// Open opens a PDF without logging. It satisfies document.Opener.
func Open(path string) (document.Document, error) {
	return OpenWithLogger(path, nil)
}

// OpenWithLogger opens a PDF. A missing path wraps document.ErrNotFound; a
// file either parser rejects wraps document.ErrFormat.
func OpenWithLogger(path string, log logrus.FieldLogger) (*Document, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to open %s: %w", path, document.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	configOnce.Do(api.DisableConfigDir)

	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context %s: %w: %w", path, document.ErrFormat, err)
	}

	file, reader, err := openText(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF text layer %s: %w: %w", path, document.ErrFormat, err)
	}

	return &Document{
		path:   path,
		ctx:    ctx,
		file:   file,
		text:   reader,
		images: imaging.NewImageCache(),
		log:    logging.OrDiscard(log),
		pages:  make(map[int]*Page),
	}, nil
}

// openText opens the ledongthuc reader, turning parser panics into errors.
func openText(path string) (f io.Closer, r *lpdf.Reader, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("parser panic: %v", p)
		}
	}()
	file, reader, err := lpdf.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return file, reader, nil
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return d.ctx.PageCount
}

// Page returns the page at a 0-based index.
func (d *Document) Page(index int) (document.Page, error) {
	return d.page(index)
}

func (d *Document) page(index int) (*Page, error) {
	if index < 0 || index >= d.PageCount() {
		return nil, fmt.Errorf("page index %d out of range [0, %d)", index, d.PageCount())
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if p, ok := d.pages[index]; ok {
		return p, nil
	}

	pageDict, _, attrs, err := d.ctx.PageDict(index+1, true)
	if err != nil {
		return nil, fmt.Errorf("failed to get page dict %d: %w", index+1, err)
	}
	if pageDict == nil {
		return nil, fmt.Errorf("page %d: %w", index+1, document.ErrFormat)
	}

	// Default US Letter
	mediaBox := types.NewRectangle(0, 0, 612, 792)
	resources := pageDict.DictEntry("Resources")
	if attrs != nil {
		if attrs.MediaBox != nil {
			mediaBox = attrs.MediaBox
		}
		if attrs.Resources != nil {
			resources = attrs.Resources
		}
	}

	p := &Page{
		doc:       d,
		index:     index,
		dict:      pageDict,
		resources: resources,
		origin:    geometry.Point{X: mediaBox.LL.X, Y: mediaBox.UR.Y},
		bounds:    geometry.R(0, 0, mediaBox.Width(), mediaBox.Height()),
	}
	d.pages[index] = p
	return p, nil
}

// Close releases the text layer file and drops cached images.
func (d *Document) Close() error {
	d.images.Clear()
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}

// Page is one page of a Document. Content is parsed on first use and cached.
type Page struct {
	doc       *Document
	index     int
	dict      types.Dict
	resources types.Dict

	// origin is the MediaBox top-left corner in PDF user space.
	origin geometry.Point
	bounds geometry.Rect

	once       sync.Once
	placements []placement
	spans      []document.Span
	lines      []document.Line
	parseErr   error
}

// Index returns the 0-based page index.
func (p *Page) Index() int {
	return p.index
}

// Bounds returns the page rectangle, anchored at the origin.
func (p *Page) Bounds() geometry.Rect {
	return p.bounds
}

// toPage converts a user-space rectangle to page coordinates.
func (p *Page) toPage(r geometry.Rect) geometry.Rect {
	return geometry.Rect{
		X0: r.X0 - p.origin.X,
		Y0: p.origin.Y - r.Y1,
		X1: r.X1 - p.origin.X,
		Y1: p.origin.Y - r.Y0,
	}
}

func (p *Page) parse() error {
	p.once.Do(func() {
		content, err := p.content()
		if err != nil {
			p.parseErr = err
			return
		}
		w := &walker{ctx: p.doc.ctx, log: p.doc.log.WithField("page", p.index+1)}
		if err := w.run(content, p.resources); err != nil {
			p.parseErr = fmt.Errorf("failed to walk content of page %d: %w", p.index+1, err)
			return
		}
		for _, pl := range w.placements {
			pl.rect = p.toPage(pl.rect)
			p.placements = append(p.placements, pl)
		}

		glyphs, err := p.glyphs()
		if err != nil {
			p.parseErr = err
			return
		}
		p.lines = groupLines(glyphs, p.origin)
		for _, l := range p.lines {
			p.spans = append(p.spans, l.Spans...)
		}
	})
	return p.parseErr
}

// Blocks returns the image blocks in paint order followed by the text blocks
// in content order.
func (p *Page) Blocks() ([]document.Block, error) {
	if err := p.parse(); err != nil {
		return nil, err
	}

	blocks := make([]document.Block, 0, len(p.placements)+len(p.lines))
	for _, pl := range p.placements {
		blocks = append(blocks, document.Block{
			Type: document.BlockImage,
			Rect: pl.rect,
			XRef: pl.ref.ObjectNumber.Value(),
		})
	}
	blocks = append(blocks, groupBlocks(p.lines)...)
	return blocks, nil
}

// content returns the page's concatenated content streams.
func (p *Page) content() ([]byte, error) {
	obj, found := p.dict.Find("Contents")
	if !found || obj == nil {
		return nil, nil
	}

	var refs []types.Object
	switch v := obj.(type) {
	case types.Array:
		refs = v
	default:
		o, err := p.doc.ctx.Dereference(v)
		if err != nil {
			return nil, fmt.Errorf("failed to dereference contents of page %d: %w", p.index+1, err)
		}
		if arr, ok := o.(types.Array); ok {
			refs = arr
		} else {
			refs = []types.Object{v}
		}
	}

	var buf []byte
	for _, ref := range refs {
		data, err := streamContent(p.doc.ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("failed to decode contents of page %d: %w", p.index+1, err)
		}
		buf = append(buf, data...)
		buf = append(buf, '\n')
	}
	return buf, nil
}

// glyphs reads the positioned text of the page, turning parser panics into
// ErrFormat.
func (p *Page) glyphs() (text []lpdf.Text, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to read text of page %d: %w: %v", p.index+1, document.ErrFormat, r)
		}
	}()
	if p.index+1 > p.doc.text.NumPage() {
		return nil, nil
	}
	page := p.doc.text.Page(p.index + 1)
	if page.V.IsNull() {
		return nil, nil
	}
	return page.Content().Text, nil
}

// streamContent dereferences a stream object and returns its decoded bytes.
func streamContent(ctx *model.Context, obj types.Object) ([]byte, error) {
	sd, _, err := ctx.DereferenceStreamDict(obj)
	if err != nil {
		return nil, err
	}
	if sd == nil {
		return nil, nil
	}
	if err := sd.Decode(); err != nil {
		return nil, err
	}
	return sd.Content, nil
}
