// Package imaging provides the raster operations used to render page regions,
// prepare them for OCR and write exported crops.
//
// All operations work with standard Go image.Image values and use a coordinate
// system where (0,0) is at the top-left corner, X increases rightward, and Y
// increases downward. For regions, (x0,y0) is inclusive and (x1,y1) exclusive.
//
// # OCR Preprocessing
//
// The OCR locator feeds Tesseract three variants of the same region:
//
//  1. Grayscale: ITU-R BT.601 luminance (0.299*R + 0.587*G + 0.114*B)
//  2. Threshold: pixels brighter than a level become white, the rest black
//  3. InverseThreshold: pixels darker than the level become white, the rest black
//
// The level is derived from MeanIntensity of the grayscale variant.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. All other functions are
// stateless and return new images; inputs are never modified.
//
// # Error Handling
//
// Functions return errors for:
//   - Invalid target sizes (zero or negative dimensions)
//   - Unknown output formats (by file extension)
//   - File I/O and encoding errors
package imaging
