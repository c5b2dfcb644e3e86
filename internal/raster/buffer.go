// Package raster provides the floating-point pixel buffer consumed and produced
// by the convolution engine.
//
// A Buffer stores samples channel-planar: all of channel 0, then channel 1, and
// so on. Within a plane samples are row-major. Samples are nominally in [0,1]
// but nothing enforces that range; convolution output routinely leaves it until
// a visualization mode is applied.
package raster

import (
	"image"
	"image/color"
	"math"
)

// Buffer is a dense, channel-planar float64 image.
//
// A Buffer is owned by whoever holds it. It is not safe for concurrent
// mutation.
type Buffer struct {
	Width    int
	Height   int
	Channels int

	// Pix holds Width*Height*Channels samples, index c*Width*Height + y*Width + x.
	Pix []float64
}

// New allocates a zeroed buffer. A channel count below 1 is raised to 1 and
// negative dimensions are treated as 0.
func New(width, height, channels int) *Buffer {
	width = max(width, 0)
	height = max(height, 0)
	channels = max(channels, 1)
	return &Buffer{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]float64, width*height*channels),
	}
}

// Empty reports whether the buffer holds no pixels.
func (b *Buffer) Empty() bool {
	return b == nil || b.Width == 0 || b.Height == 0 || b.Channels < 1
}

// At returns the sample at (x, y) in channel c. Coordinates must be in bounds.
func (b *Buffer) At(x, y, c int) float64 {
	return b.Pix[c*b.Width*b.Height+y*b.Width+x]
}

// Set stores v at (x, y) in channel c. Coordinates must be in bounds.
func (b *Buffer) Set(x, y, c int, v float64) {
	b.Pix[c*b.Width*b.Height+y*b.Width+x] = v
}

// Plane returns the samples of channel c. The slice aliases the buffer.
func (b *Buffer) Plane(c int) []float64 {
	n := b.Width * b.Height
	return b.Pix[c*n : (c+1)*n]
}

// Row returns row y of channel c. The slice aliases the buffer.
func (b *Buffer) Row(y, c int) []float64 {
	off := c*b.Width*b.Height + y*b.Width
	return b.Pix[off : off+b.Width]
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	out := &Buffer{
		Width:    b.Width,
		Height:   b.Height,
		Channels: b.Channels,
		Pix:      make([]float64, len(b.Pix)),
	}
	copy(out.Pix, b.Pix)
	return out
}

// FromImage converts a decoded image into a Buffer with samples in [0,1].
//
// Grayscale images (*image.Gray, *image.Gray16) yield one channel. Everything
// else yields three channels (R, G, B); alpha is dropped.
func FromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	switch src := img.(type) {
	case *image.Gray:
		buf := New(w, h, 1)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				buf.Set(x, y, 0, float64(src.GrayAt(x+bounds.Min.X, y+bounds.Min.Y).Y)/255.0)
			}
		}
		return buf
	case *image.Gray16:
		buf := New(w, h, 1)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				buf.Set(x, y, 0, float64(src.Gray16At(x+bounds.Min.X, y+bounds.Min.Y).Y)/0xffff)
			}
		}
		return buf
	}

	buf := New(w, h, 3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// NRGBA64 keeps color values independent of alpha premultiplication.
			c := color.NRGBA64Model.Convert(img.At(x+bounds.Min.X, y+bounds.Min.Y)).(color.NRGBA64)
			buf.Set(x, y, 0, float64(c.R)/0xffff)
			buf.Set(x, y, 1, float64(c.G)/0xffff)
			buf.Set(x, y, 2, float64(c.B)/0xffff)
		}
	}
	return buf
}

// Image converts the buffer into an 8-bit image for encoding.
//
// One- and two-channel buffers become *image.Gray built from channel 0; buffers
// with three or more channels become opaque *image.NRGBA from channels 0..2.
// Samples are clamped to [0,1] before quantization.
func (b *Buffer) Image() image.Image {
	rect := image.Rect(0, 0, b.Width, b.Height)

	if b.Channels < 3 {
		out := image.NewGray(rect)
		for y := 0; y < b.Height; y++ {
			for x := 0; x < b.Width; x++ {
				out.SetGray(x, y, color.Gray{Y: Quantize(b.At(x, y, 0))})
			}
		}
		return out
	}

	out := image.NewNRGBA(rect)
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			out.SetNRGBA(x, y, color.NRGBA{
				R: Quantize(b.At(x, y, 0)),
				G: Quantize(b.At(x, y, 1)),
				B: Quantize(b.At(x, y, 2)),
				A: 255,
			})
		}
	}
	return out
}

// Quantize maps a sample to 8 bits, clamping to [0,1] first. NaN maps to 0.
// Image uses it for every channel.
func Quantize(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255.0 + 0.5)
}
