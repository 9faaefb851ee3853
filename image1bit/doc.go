// Package image1bit provides a 1-bit monochrome image format matching the
// e-paper panel's memory layout.
//
// Pixels are packed horizontally, 8 pixels per byte, most-significant bit
// first: bit 7 of each byte is the leftmost of its 8 pixels. A set bit is
// black ink, a cleared bit is blank paper. This is the same byte order the
// panel's partial-update window expects, so a Horizontal image can be
// cropped and shipped to the hardware without per-pixel reshuffling.
//
// Horizontal implements image.Image and draw.Image, so the standard library
// and golang.org/x/image drawing primitives work on it directly.
package image1bit
