// Package geometry provides the page-space primitives used by the label heuristics.
//
// # Coordinate System
//
// Coordinates are page-space units (PDF points) with the origin at the top-left
// corner of the page:
//   - X increases rightward
//   - Y increases downward
//   - A Rect is given by its top-left (X0, Y0) and bottom-right (X1, Y1) corners
//
// Rect values are immutable: every operation returns a new Rect.
package geometry
