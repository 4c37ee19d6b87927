// Package transform decodes uploaded images, resizes them to a target size and
// encodes the result as WebP.
package transform

import "fmt"

// SizeSpec is the target size of one derivative. It is either FitCanvas or
// ProportionalWidth; no other implementations exist.
type SizeSpec interface {
	fmt.Stringer
	sizeSpec()
}

// FitCanvas scales the source to fit inside Width×Height, keeping its aspect
// ratio, and centres it on a transparent canvas of exactly that size.
type FitCanvas struct {
	Width  int
	Height int
}

// ProportionalWidth scales the source to exactly Width; the height follows
// the source aspect ratio.
type ProportionalWidth struct {
	Width int
}

func (FitCanvas) sizeSpec()         {}
func (ProportionalWidth) sizeSpec() {}

func (s FitCanvas) String() string         { return fmt.Sprintf("fit(%dx%d)", s.Width, s.Height) }
func (s ProportionalWidth) String() string { return fmt.Sprintf("width(%d)", s.Width) }

// Fit is shorthand for FitCanvas{w, h}.
func Fit(w, h int) SizeSpec { return FitCanvas{Width: w, Height: h} }

// Width is shorthand for ProportionalWidth{w}.
func Width(w int) SizeSpec { return ProportionalWidth{Width: w} }
