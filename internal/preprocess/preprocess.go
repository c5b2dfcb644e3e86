// Package preprocess implements the optional pixel-wise and windowed
// transforms run on a decoded image before it is convolved.
//
// The operations work on 8-bit image.Image values, the same representation the
// decoders produce, and are applied by Apply in a fixed order: denoise,
// binarize, grayscale.
package preprocess

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"math"

	"github.com/anthonynsimon/bild/channel"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/parallel"
)

// ErrInvalidWindow is returned by Binarize for a window size below 1.
var ErrInvalidWindow = errors.New("preprocess: invalid window size")

// ITU-R BT.601 luma weights.
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// sauvolaR is the dynamic range of the standard deviation for samples
// normalised to [0,1] (128 of 255 in the 8-bit formulation).
const sauvolaR = 0.5

// Options selects the preprocessing steps and their parameters.
type Options struct {
	Denoise   bool
	Binarize  bool
	Grayscale bool

	// SauvolaK is the Sauvola sensitivity k. Typical values are 0.2 to 0.5.
	SauvolaK float64

	// WindowSize is the side of the square Sauvola window in pixels.
	WindowSize int
}

// DefaultOptions returns no enabled steps with k = 0.2 and a 15 pixel window.
func DefaultOptions() Options {
	return Options{SauvolaK: 0.2, WindowSize: 15}
}

// Enabled reports whether any step is selected.
func (o Options) Enabled() bool {
	return o.Denoise || o.Binarize || o.Grayscale
}

// Apply runs the selected steps in order: denoise, binarize, grayscale.
// With no step selected the input is returned unchanged.
func Apply(img image.Image, opts Options) (image.Image, error) {
	out := img
	if opts.Denoise {
		out = Denoise(out)
	}
	if opts.Binarize {
		bin, err := Binarize(out, opts.SauvolaK, opts.WindowSize)
		if err != nil {
			return nil, err
		}
		out = bin
	}
	if opts.Grayscale {
		out = Grayscale(out)
	}
	return out, nil
}

// Grayscale converts img to a single-channel luminance image using BT.601
// weights (0.299 R + 0.587 G + 0.114 B).
func Grayscale(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	rgba := effect.GrayscaleWithWeights(img, lumaR, lumaG, lumaB)
	bounds := rgba.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	// R == G == B after the weighting, so the gray model keeps the value.
	draw.Draw(gray, gray.Bounds(), rgba, bounds.Min, draw.Src)
	return gray
}

// Denoise replaces every sample with the median of its 3x3 neighbourhood,
// taken separately for each channel. Border pixels use edge-extended
// neighbours.
//
// Gray input stays single-channel and is returned as *image.Gray; anything
// else comes back as an opaque *image.RGBA.
func Denoise(img image.Image) image.Image {
	if img.Bounds().Empty() {
		return img
	}
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return medianPlane(channel.Extract(img, channel.Red))
	}

	r := medianPlane(channel.Extract(img, channel.Red))
	g := medianPlane(channel.Extract(img, channel.Green))
	b := medianPlane(channel.Extract(img, channel.Blue))

	bounds := r.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := image.NewRGBA(bounds)
	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				pos := y*out.Stride + x*4
				out.Pix[pos+0] = r.Pix[y*r.Stride+x]
				out.Pix[pos+1] = g.Pix[y*g.Stride+x]
				out.Pix[pos+2] = b.Pix[y*b.Stride+x]
				out.Pix[pos+3] = 0xff
			}
		}
	})
	return out
}

// medianPlane runs the 3x3 median over a single channel. Gray pixels expand
// to R == G == B, so bild's pixel ranking orders them by value and the pick
// is the scalar median.
func medianPlane(plane *image.Gray) *image.Gray {
	return channel.Extract(effect.Median(plane, 1), channel.Red)
}

// Binarize applies Sauvola adaptive thresholding and returns a black and
// white image.
//
// Parameters:
//   - img: Source image. Color input is reduced to BT.601 luminance first.
//   - k: Sauvola sensitivity. Larger values push the threshold below the
//     local mean in low-contrast areas.
//   - window: Side of the square neighbourhood. Even sizes are widened by one
//     so the window is centred. Windows are clipped at the image border.
//
// For each pixel with local mean m and standard deviation s over the window,
// the threshold is
//
//	T = m * (1 + k*(s/R - 1)),  R = 0.5
//
// on samples normalised to [0,1]. Pixels strictly above T become white (255),
// all others black (0).
//
// Returns ErrInvalidWindow when window < 1.
func Binarize(img image.Image, k float64, window int) (*image.Gray, error) {
	if window < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWindow, window)
	}
	if window%2 == 0 {
		window++
	}
	half := window / 2

	gray := Grayscale(img)
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return out, nil
	}

	sum, sq := integralImages(gray)
	stride := w + 1

	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			y0, y1 := max(y-half, 0), min(y+half+1, h)
			for x := 0; x < w; x++ {
				x0, x1 := max(x-half, 0), min(x+half+1, w)
				n := float64((x1 - x0) * (y1 - y0))

				s := sum[y1*stride+x1] - sum[y0*stride+x1] - sum[y1*stride+x0] + sum[y0*stride+x0]
				s2 := sq[y1*stride+x1] - sq[y0*stride+x1] - sq[y1*stride+x0] + sq[y0*stride+x0]
				mean := s / n
				std := math.Sqrt(max(s2/n-mean*mean, 0))
				threshold := mean * (1 + k*(std/sauvolaR-1))

				v := float64(gray.Pix[y*gray.Stride+x]) / 255.0
				if v > threshold {
					out.Pix[y*out.Stride+x] = 255
				}
			}
		}
	})
	return out, nil
}

// integralImages returns (w+1)x(h+1) summed-area tables of the normalised
// samples and of their squares. Row and column 0 are zero.
func integralImages(gray *image.Gray) ([]float64, []float64) {
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	stride := w + 1
	sum := make([]float64, stride*(h+1))
	sq := make([]float64, stride*(h+1))

	for y := 0; y < h; y++ {
		var rowSum, rowSq float64
		for x := 0; x < w; x++ {
			v := float64(gray.Pix[y*gray.Stride+x]) / 255.0
			rowSum += v
			rowSq += v * v
			sum[(y+1)*stride+x+1] = sum[y*stride+x+1] + rowSum
			sq[(y+1)*stride+x+1] = sq[y*stride+x+1] + rowSq
		}
	}
	return sum, sq
}
