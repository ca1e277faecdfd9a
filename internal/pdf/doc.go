// Package pdf is the PDF backend behind document.Document.
//
// Two parsers cooperate. pdfcpu supplies the object model: page dictionaries,
// the MediaBox, content streams and image XObjects. Image placements come from
// walking each page's content stream (q, Q, cm and Do, recursing into Form
// XObjects) and mapping the unit square through the current transformation
// matrix. ledongthuc/pdf supplies positioned glyphs with their font and size;
// glyphs are grouped into spans, lines and blocks.
//
// All rectangles are reported in page units with a top-left origin, y growing
// downward, relative to the MediaBox.
//
// Page.Render composes a raster of a page region from the decoded images and
// the text spans, on a white background. It is not a full PDF rasterizer:
// vector graphics are not painted and text is drawn with a fixed bitmap face
// scaled to each span's box.
package pdf
