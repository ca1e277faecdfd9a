// Package pdftest writes small, uncompressed PDF files for tests: solid-color
// image XObjects placed with a cm matrix, optionally wrapped in a Form
// XObject, and Helvetica text runs.
package pdftest

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"strings"
)

// Image is a solid-color image XObject drawn at Rect = [x, y, width, height]
// in PDF user space (origin bottom-left).
type Image struct {
	Rect   [4]float64
	Pixels int // pixel width and height; 2 when zero
	Color  color.RGBA
	InForm bool // paint through a Form XObject
	Broken bool // declare more pixels than the stream holds
}

// Text is a Helvetica run with its baseline starting at (X, Y).
type Text struct {
	X, Y, Size float64
	Content    string
}

// Page describes one page. Width and Height default to A4.
type Page struct {
	Width, Height float64
	Images        []Image
	Texts         []Text
}

// Write writes the PDF to path.
func Write(path string, pages ...Page) error {
	return os.WriteFile(path, Bytes(pages...), 0644)
}

type writer struct {
	buf     bytes.Buffer
	offsets []int
}

// reserve returns the next object number.
func (w *writer) reserve() int {
	w.offsets = append(w.offsets, 0)
	return len(w.offsets)
}

func (w *writer) object(num int, body string) {
	w.offsets[num-1] = w.buf.Len()
	fmt.Fprintf(&w.buf, "%d 0 obj\n%s\nendobj\n", num, body)
}

func (w *writer) stream(num int, dict string, data []byte) {
	w.offsets[num-1] = w.buf.Len()
	fmt.Fprintf(&w.buf, "%d 0 obj\n<< %s /Length %d >>\nstream\n", num, dict, len(data))
	w.buf.Write(data)
	w.buf.WriteString("\nendstream\nendobj\n")
}

// Bytes renders the PDF.
func Bytes(pages ...Page) []byte {
	w := &writer{}
	w.buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

	catalog := w.reserve()
	pagesObj := w.reserve()
	font := w.reserve()

	widths := strings.TrimSpace(strings.Repeat("556 ", 126-32+1))
	w.object(font, fmt.Sprintf(
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 126 /Widths [%s] >>",
		widths))

	var kids []string
	for _, pg := range pages {
		kids = append(kids, fmt.Sprintf("%d 0 R", w.page(pagesObj, font, pg)))
	}

	w.object(pagesObj, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(kids)))
	w.object(catalog, fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", pagesObj))

	xref := w.buf.Len()
	fmt.Fprintf(&w.buf, "xref\n0 %d\n0000000000 65535 f \n", len(w.offsets)+1)
	for _, off := range w.offsets {
		fmt.Fprintf(&w.buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&w.buf, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(w.offsets)+1, catalog, xref)
	return w.buf.Bytes()
}

func (w *writer) page(parent, font int, pg Page) int {
	width, height := pg.Width, pg.Height
	if width == 0 || height == 0 {
		width, height = 595, 842
	}

	pageObj := w.reserve()
	contentObj := w.reserve()

	var content strings.Builder
	var xobjects []string
	for i, img := range pg.Images {
		name := fmt.Sprintf("Im%d", i+1)
		imgObj := w.image(img)
		place := fmt.Sprintf("q %s 0 0 %s %s %s cm /%s Do Q\n",
			num(img.Rect[2]), num(img.Rect[3]), num(img.Rect[0]), num(img.Rect[1]), name)

		if !img.InForm {
			xobjects = append(xobjects, fmt.Sprintf("/%s %d 0 R", name, imgObj))
			content.WriteString(place)
			continue
		}

		formName := fmt.Sprintf("Fm%d", i+1)
		formObj := w.reserve()
		w.stream(formObj, fmt.Sprintf(
			"/Type /XObject /Subtype /Form /BBox [0 0 %s %s] /Matrix [1 0 0 1 0 0] /Resources << /XObject << /%s %d 0 R >> >>",
			num(width), num(height), name, imgObj), []byte(place))
		xobjects = append(xobjects, fmt.Sprintf("/%s %d 0 R", formName, formObj))
		fmt.Fprintf(&content, "q /%s Do Q\n", formName)
	}

	for _, t := range pg.Texts {
		fmt.Fprintf(&content, "BT /F1 %s Tf %s %s Td (%s) Tj ET\n", num(t.Size), num(t.X), num(t.Y), escape(t.Content))
	}

	w.stream(contentObj, "", []byte(content.String()))

	resources := fmt.Sprintf("/Font << /F1 %d 0 R >>", font)
	if len(xobjects) > 0 {
		resources += fmt.Sprintf(" /XObject << %s >>", strings.Join(xobjects, " "))
	}
	w.object(pageObj, fmt.Sprintf(
		"<< /Type /Page /Parent %d 0 R /MediaBox [0 0 %s %s] /Resources << %s >> /Contents %d 0 R >>",
		parent, num(width), num(height), resources, contentObj))
	return pageObj
}

func (w *writer) image(img Image) int {
	px := img.Pixels
	if px <= 0 {
		px = 2
	}
	data := make([]byte, 0, px*px*3)
	for i := 0; i < px*px; i++ {
		data = append(data, img.Color.R, img.Color.G, img.Color.B)
	}

	obj := w.reserve()
	width := px
	if img.Broken {
		width = px * 4
	}
	dict := fmt.Sprintf("/Type /XObject /Subtype /Image /Width %d /Height %d /ColorSpace /DeviceRGB /BitsPerComponent 8", width, px)
	w.stream(obj, dict, data)
	return obj
}

func num(f float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.4f", f), "0"), ".")
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
