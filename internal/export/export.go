package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/rathaus-crops/internal/document"
	"github.com/ironsheep/rathaus-crops/internal/extract"
	"github.com/ironsheep/rathaus-crops/internal/imaging"
	"github.com/ironsheep/rathaus-crops/internal/label"
	"github.com/ironsheep/rathaus-crops/internal/logging"
	"github.com/ironsheep/rathaus-crops/internal/ocr"
)

const (
	// MaxImages caps the number of files one run writes.
	MaxImages = 90

	// CropPad is added on every side of an image before rendering it.
	CropPad = 2.0

	// CropZoom is the render magnification of exported crops.
	CropZoom = 2.0

	// Extension is the file extension, and so the format, of exported crops.
	Extension = ".png"
)

// Record describes one exported crop.
type Record struct {
	Seq       int          `json:"seq"`
	Label     string       `json:"label"`
	Source    label.Source `json:"source"`
	Filename  string       `json:"filename"`
	PageIndex int          `json:"page_index"`
}

// Result summarizes a run.
type Result struct {
	Count      int      `json:"count"`
	Records    []Record `json:"records"`
	CapReached bool     `json:"cap_reached"`
}

// Exporter crops and labels the images of a document.
type Exporter struct {
	open    document.Opener
	ocr     *ocr.Locator
	cleaner *label.Cleaner
	log     logrus.FieldLogger
	max     int
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithOCR sets the OCR locator. Without it the OCR strategy never answers.
func WithOCR(l *ocr.Locator) Option {
	return func(e *Exporter) { e.ocr = l }
}

// WithCleaner sets the cleaner applied to OCR labels.
func WithCleaner(c *label.Cleaner) Option {
	return func(e *Exporter) { e.cleaner = c }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Exporter) { e.log = l }
}

// WithLimit overrides MaxImages. Values below 1 are ignored.
func WithLimit(n int) Option {
	return func(e *Exporter) {
		if n > 0 {
			e.max = n
		}
	}
}

// New returns an Exporter that opens documents with open.
func New(open document.Opener, opts ...Option) *Exporter {
	e := &Exporter{
		open:    open,
		cleaner: label.NewCleaner(label.DefaultCorrections()),
		max:     MaxImages,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = logging.OrDiscard(e.log)
	return e
}

// Export opens the document at path and writes its labeled crops to outDir,
// creating the directory if needed. On error the result still reports the
// files written so far.
func (e *Exporter) Export(ctx context.Context, path, outDir string) (*Result, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return &Result{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	doc, err := e.open(path)
	if err != nil {
		return &Result{}, err
	}
	defer doc.Close()

	return e.ExportDocument(ctx, doc, outDir)
}

// run is the state of one export: the counter and the records written.
type run struct {
	outDir string
	result Result
}

// ExportDocument writes the labeled crops of an opened document to outDir,
// which must exist.
func (e *Exporter) ExportDocument(ctx context.Context, doc document.Document, outDir string) (*Result, error) {
	r := &run{outDir: outDir}

	err := e.exportPages(ctx, doc, r)
	if r.result.Count >= e.max {
		r.result.CapReached = true
		e.log.WithField("limit", e.max).Info("export limit reached")
	}
	if err != nil {
		return &r.result, err
	}

	e.log.WithFields(logrus.Fields{
		"count":  r.result.Count,
		"output": outDir,
	}).Info("export finished")
	return &r.result, nil
}

func (e *Exporter) exportPages(ctx context.Context, doc document.Document, r *run) error {
	for i := 0; i < doc.PageCount(); i++ {
		if r.result.Count >= e.max {
			return nil
		}

		page, err := doc.Page(i)
		if err != nil {
			return fmt.Errorf("failed to open page %d: %w", i+1, err)
		}
		images, spans, err := extract.PageItems(page, e.log)
		if err != nil {
			return err
		}

		for _, img := range images {
			if r.result.Count >= e.max {
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			rec, err := e.exportImage(page, img, spans, r)
			if err != nil {
				return err
			}
			r.result.Records = append(r.result.Records, rec)
			r.result.Count++
		}
	}
	return nil
}

func (e *Exporter) exportImage(page document.Page, img extract.ImageCandidate, spans []document.Span, r *run) (Record, error) {
	raster, err := page.Render(img.Rect.Pad(CropPad), CropZoom)
	if err != nil {
		return Record{}, fmt.Errorf("failed to render image on page %d: %w", page.Index()+1, err)
	}

	cand, err := label.Resolve(e.strategies(page, img, spans))
	if err != nil {
		return Record{}, fmt.Errorf("failed to label image on page %d: %w", page.Index()+1, err)
	}

	seq := r.result.Count + 1
	name := label.Filename(seq, label.Sanitize(cand.Text, r.result.Count), Extension)
	if err := imaging.Save(raster, filepath.Join(r.outDir, name)); err != nil {
		return Record{}, err
	}

	e.log.WithFields(logrus.Fields{
		"page":   page.Index() + 1,
		"label":  cand.Text,
		"source": cand.Source.String(),
		"file":   name,
	}).Debug("exported image")

	return Record{
		Seq:       seq,
		Label:     cand.Text,
		Source:    cand.Source,
		Filename:  name,
		PageIndex: page.Index(),
	}, nil
}

// strategies lists the labeling chain for one image, highest priority first.
func (e *Exporter) strategies(page document.Page, img extract.ImageCandidate, spans []document.Span) []label.Strategy {
	return []label.Strategy{
		{
			Source: label.SourceOCR,
			Label: func() (string, error) {
				text, err := e.ocr.Label(page, img.Rect)
				if err != nil {
					return "", err
				}
				return e.cleaner.Clean(text), nil
			},
		},
		{
			Source: label.SourceVectorText,
			Label: func() (string, error) {
				return label.FindNearest(img.Rect, spans), nil
			},
		},
		{
			Source: label.SourceFallback,
			Label: func() (string, error) {
				return label.PageFallback(page.Index()), nil
			},
		},
	}
}
