// Package document defines the capabilities the extraction core consumes from a
// fixed-layout document source.
//
// A Document is a sequence of pages. A Page exposes its structural blocks in
// document order and can render any region of itself to a raster at a given
// magnification. Blocks are either image blocks (a rectangle plus the
// cross-reference id of the image) or text blocks (lines of spans, each span a
// string with its rectangle and font size).
//
// Concrete sources live elsewhere (see package pdf). Tests use in-memory fakes.
//
// # Errors
//
// Opening a document fails with an error wrapping ErrNotFound when the path does
// not resolve and ErrFormat when the content cannot be parsed. Match them with
// errors.Is.
package document
