// Package model provides the shared data types for equation dataset
// preparation.
//
// This package defines the geometric primitives and record types that the
// detection, transformation, and tiling packages agree on. All coordinates
// flow through these types, making them the primary API for consuming
// pipeline output.
//
// # Coordinate spaces
//
// Two coordinate spaces appear throughout the pipeline:
//
//   - Point space: a document's native coordinate system, in units of
//     1/72 inch, origin at the bottom-left of the page.
//   - Pixel space: a rasterized image's coordinate system, origin at the
//     top-left, units of pixels at a given DPI.
//
// Both use the same [Rect] corner form; which space a value lives in is
// determined by where it came from. The transform package converts between
// the two.
//
// # Geometry
//
//   - [Rect] - axis-aligned rectangle in corner form (x0<x1, y0<y1)
//   - [Point] - 2D point with distance calculation
//
// # Records
//
//   - [Span] - a word-level text fragment with a point-space bounding box
//   - [Candidate] - a heuristically scored line group hypothesized to be a
//     displayed equation
package model
