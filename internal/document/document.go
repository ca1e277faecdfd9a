package document

import (
	"errors"
	"image"

	"github.com/ironsheep/rathaus-crops/internal/geometry"
)

var (
	// ErrNotFound is wrapped by open errors when the document path does not resolve.
	ErrNotFound = errors.New("document not found")

	// ErrFormat is wrapped by open errors when the document cannot be parsed.
	ErrFormat = errors.New("unsupported or corrupt document")
)

// BlockType distinguishes image blocks from text blocks.
type BlockType int

const (
	// BlockText is a block of text lines.
	BlockText BlockType = iota
	// BlockImage is a placed image.
	BlockImage
)

func (t BlockType) String() string {
	switch t {
	case BlockText:
		return "text"
	case BlockImage:
		return "image"
	default:
		return "unknown"
	}
}

// Span is a run of text sharing one font and size.
type Span struct {
	Text string        `json:"text"`
	Rect geometry.Rect `json:"bbox"`
	Size float64       `json:"size"`
	Font string        `json:"font,omitempty"`
}

// Line is a sequence of spans on one baseline.
type Line struct {
	Rect  geometry.Rect `json:"bbox"`
	Spans []Span        `json:"spans"`
}

// Block is one structural unit of a page.
type Block struct {
	Type BlockType     `json:"type"`
	Rect geometry.Rect `json:"bbox"`

	// Lines is set for text blocks.
	Lines []Line `json:"lines,omitempty"`

	// XRef is the cross-reference id of an image block's pixel data.
	XRef int `json:"xref,omitempty"`
}

// Renderer renders a page region to a raster.
type Renderer interface {
	// Render rasterizes the clip region at the given linear magnification on an
	// opaque white background.
	Render(clip geometry.Rect, zoom float64) (image.Image, error)
}

// Page is one page of a document.
type Page interface {
	Renderer

	// Index returns the 0-based page index.
	Index() int

	// Bounds returns the page rectangle.
	Bounds() geometry.Rect

	// Blocks returns the page's blocks in document order.
	Blocks() ([]Block, error)
}

// EmbeddedImage is the decoded pixel data of an image referenced by a page.
type EmbeddedImage struct {
	XRef  int
	Image image.Image
}

// ImageSource is implemented by pages that can hand out their raw images.
type ImageSource interface {
	EmbeddedImages() ([]EmbeddedImage, error)
}

// Document is an opened multi-page document.
type Document interface {
	// PageCount returns the number of pages.
	PageCount() int

	// Page returns the page at a 0-based index.
	Page(index int) (Page, error)

	// Close releases the underlying resources.
	Close() error
}

// Opener opens a document by path.
type Opener func(path string) (Document, error)
