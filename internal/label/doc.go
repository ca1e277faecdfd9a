// Package label turns raw text found near an illustration into a usable
// municipality name.
//
// It holds the pure parts of the labeling pipeline:
//
//   - FindNearest: picks the vector text span left of an image, favoring spans on
//     the same row
//   - Cleaner: strips ordinals, municipal prefixes and noise characters, applies
//     the OCR correction table and truncates
//   - Sanitize: reduces a label to a filesystem-safe token
//   - Resolve: evaluates an ordered chain of labeling strategies
//
// # Correction Table
//
// Known OCR misreadings live in corrections.yaml, embedded into the binary. The
// table is an ordered list of substring replacements; each entry is consulted
// once, in file order. A replacement table can be loaded from disk with
// LoadCorrections.
package label
