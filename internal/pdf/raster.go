package pdf

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/rathaus-crops/internal/geometry"
	"github.com/ironsheep/rathaus-crops/internal/imaging"
)

// placeholderColor fills images that cannot be decoded.
var placeholderColor = color.NRGBA{R: 0xd0, G: 0xd0, B: 0xd0, A: 0xff}

// Render rasterizes clip at zoom pixels per page unit. Decoded images are
// pasted in paint order, then text spans are drawn over them.
func (p *Page) Render(clip geometry.Rect, zoom float64) (image.Image, error) {
	if zoom <= 0 {
		return nil, fmt.Errorf("invalid zoom %.2f", zoom)
	}
	if clip.Empty() {
		return nil, fmt.Errorf("empty clip %s", clip)
	}
	if err := p.parse(); err != nil {
		return nil, err
	}

	w := int(math.Ceil(clip.Width() * zoom))
	h := int(math.Ceil(clip.Height() * zoom))
	canvas := imaging.NewCanvas(w, h)

	toPixels := func(r geometry.Rect) image.Rectangle {
		return image.Rect(
			int(math.Round((r.X0-clip.X0)*zoom)),
			int(math.Round((r.Y0-clip.Y0)*zoom)),
			int(math.Round((r.X1-clip.X0)*zoom)),
			int(math.Round((r.Y1-clip.Y0)*zoom)),
		)
	}

	for _, pl := range p.placements {
		if !pl.rect.Intersects(clip) {
			continue
		}
		img, err := p.doc.decodeImage(pl.ref)
		if err != nil {
			p.doc.log.WithFields(logrus.Fields{
				"page":    p.index + 1,
				"xobject": pl.name,
			}).WithError(err).Warn("painting placeholder for undecodable image")
			img = imaging.Fill(1, 1, placeholderColor)
		}
		canvas = imaging.Place(canvas, img, toPixels(pl.rect), false)
	}

	for _, s := range p.spans {
		if !s.Rect.Intersects(clip) {
			continue
		}
		glyphs := textImage(s.Text)
		if glyphs == nil {
			continue
		}
		canvas = imaging.Place(canvas, glyphs, toPixels(s.Rect), true)
	}

	return canvas, nil
}

// textImage draws text in black on a transparent background with the
// 7x13 bitmap face, one cell per rune.
func textImage(text string) *image.NRGBA {
	face := basicfont.Face7x13
	n := len([]rune(text))
	if n == 0 {
		return nil
	}
	img := image.NewNRGBA(image.Rect(0, 0, n*face.Advance, face.Height))
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(text)
	return img
}
