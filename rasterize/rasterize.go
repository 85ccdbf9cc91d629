// Package rasterize turns a rendered HTML document into a page image.
//
// An Engine stages the document on an isolated, exclusively owned Node.
// The Node is captured at N× density and must be detached by its owner on every path.
package rasterize

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	_ "image/png"
	"math"
)

// CSSPxPerMM is the browser's fixed 96dpi reference
const CSSPxPerMM = 96 / 25.4

var ErrEmptyCapture = errors.New("capture returned no image")

type Options struct {
	WidthMM  float64
	HeightMM float64
	Scale    float64 // device pixels per CSS pixel
}

func DefaultOptions() Options {
	return Options{WidthMM: 210, HeightMM: 297, Scale: 2}
}

// withDefaults fills zero fields from DefaultOptions
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.WidthMM <= 0 {
		o.WidthMM = d.WidthMM
	}
	if o.HeightMM <= 0 {
		o.HeightMM = d.HeightMM
	}
	if o.Scale <= 0 {
		o.Scale = d.Scale
	}
	return o
}

// Viewport returns the CSS pixel size of the page box. A4 is 794 x 1123
func (o Options) Viewport() (width int, height int) {
	o = o.withDefaults()
	return int(math.Round(o.WidthMM * CSSPxPerMM)), int(math.Round(o.HeightMM * CSSPxPerMM))
}

func (o Options) DeviceScale() float64 {
	return o.withDefaults().Scale
}

type Engine interface {
	// Stage loads a complete HTML document into a fresh node
	Stage(ctx context.Context, html string) (Node, error)
}

type Node interface {
	// Capture returns a PNG of the page box taken from the document origin
	Capture(ctx context.Context, opts Options) ([]byte, error)
	Detach() error
}

// Flatten composites the capture onto opaque white and encodes it as JPEG
func Flatten(pngData []byte, quality int) ([]byte, error) {
	if len(pngData) == 0 {
		return nil, ErrEmptyCapture
	}
	src, _, err := image.Decode(bytes.NewReader(pngData))
	if err != nil {
		return nil, fmt.Errorf("decode capture: %w", err)
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)

	var buf bytes.Buffer
	if err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
