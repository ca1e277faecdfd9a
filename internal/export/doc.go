// Package export runs the crop-and-label pipeline over a document.
//
// For each page in order, Exporter extracts the image candidates and label
// spans, renders every image padded by CropPad at CropZoom, and names it by the
// first label strategy that answers: OCR left of the image (cleaned), then the
// nearest vector text span, then the page fallback "Rathaus_Seite_<n>". Files
// are written as "<seq>_<label>.png" with a 3-digit sequence starting at 001.
// The run stops as soon as MaxImages files have been written, even mid-page.
//
// Dump writes the page images themselves, without labels, as JPEG files.
package export
