package export

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/rathaus-crops/internal/document"
	"github.com/ironsheep/rathaus-crops/internal/imaging"
)

const (
	// DumpMinPixels is the pixel size both dimensions of a dumped image must
	// reach.
	DumpMinPixels = 200

	// DumpMaxWidth is the width wider images are scaled down to.
	DumpMaxWidth = 1920

	// DefaultDumpDir is the default output directory of Dump.
	DefaultDumpDir = "extracted_images"
)

// Dump writes every embedded page image of at least DumpMinPixels in both
// dimensions as JPEG to outDir, named "<n>_Rathaus_Seite_<n>.jpg". CMYK
// images are skipped. It returns the number of files written.
func (e *Exporter) Dump(ctx context.Context, path, outDir string) (int, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	doc, err := e.open(path)
	if err != nil {
		return 0, err
	}
	defer doc.Close()

	return e.DumpDocument(ctx, doc, outDir)
}

// DumpDocument is Dump for an opened document.
func (e *Exporter) DumpDocument(ctx context.Context, doc document.Document, outDir string) (int, error) {
	count := 0
	for i := 0; i < doc.PageCount(); i++ {
		page, err := doc.Page(i)
		if err != nil {
			return count, fmt.Errorf("failed to open page %d: %w", i+1, err)
		}
		src, ok := page.(document.ImageSource)
		if !ok {
			continue
		}
		images, err := src.EmbeddedImages()
		if err != nil {
			return count, err
		}
		e.log.WithFields(logrus.Fields{"page": i + 1, "images": len(images)}).Debug("embedded images")

		for _, emb := range images {
			if err := ctx.Err(); err != nil {
				return count, err
			}
			if !dumpable(emb.Image) {
				continue
			}

			count++
			name := fmt.Sprintf("%03d_Rathaus_Seite_%d.jpg", count, count)
			out := imaging.FitWidth(emb.Image, DumpMaxWidth)
			if err := imaging.Save(out, filepath.Join(outDir, name)); err != nil {
				return count - 1, err
			}
			e.log.WithFields(logrus.Fields{
				"file":   name,
				"width":  out.Bounds().Dx(),
				"height": out.Bounds().Dy(),
			}).Debug("saved image")
		}
	}

	e.log.WithFields(logrus.Fields{"count": count, "output": outDir}).Info("image dump finished")
	return count, nil
}

func dumpable(img image.Image) bool {
	b := img.Bounds()
	if b.Dx() < DumpMinPixels || b.Dy() < DumpMinPixels {
		return false
	}
	return img.ColorModel() != color.CMYKModel
}
