package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/ironsheep/image-convolve-mcp/internal/convolve"
	"github.com/ironsheep/image-convolve-mcp/internal/kernel"
	"github.com/ironsheep/image-convolve-mcp/internal/preprocess"
	"github.com/ironsheep/image-convolve-mcp/internal/raster"
)

// EdgeDetect runs Canny edge detection and returns the edge map as base64
// PNG. See EdgeMap for the algorithm and the meaning of the thresholds.
func EdgeDetect(img image.Image, thresholdLow, thresholdHigh int) (*EncodedImage, error) {
	edges, err := EdgeMap(img, thresholdLow, thresholdHigh)
	if err != nil {
		return nil, err
	}
	return EncodePNG(edges)
}

// EdgeMap returns a binary edge image: 255 on edges, 0 elsewhere.
//
// Parameters:
//   - img: Source image, color or gray.
//   - thresholdLow: Gradient magnitude (0-255 scale) below which a pixel is
//     never an edge. Typical value: 50.
//   - thresholdHigh: Magnitude at or above which a pixel is a strong edge.
//     Typical value: 150.
//
// # Algorithm
//
//  1. BT.601 luminance.
//  2. Smoothing with the gauss5 preset, edge padding.
//  3. Gradients with the sobel_x and sobel_y presets, edge padding, no
//     visualization, so signed responses survive.
//  4. Non-maximum suppression along the quantised gradient direction.
//  5. Hysteresis: weak pixels (between the thresholds) are kept only when one
//     of their 8 neighbours is strong.
//
// Every convolution runs on the same engine as the image_convolve tool.
func EdgeMap(img image.Image, thresholdLow, thresholdHigh int) (*image.Gray, error) {
	if thresholdLow > thresholdHigh {
		return nil, fmt.Errorf("invalid thresholds: low %d exceeds high %d", thresholdLow, thresholdHigh)
	}

	gray := raster.FromImage(preprocess.Grayscale(img))
	if gray.Empty() {
		return nil, fmt.Errorf("failed to detect edges: empty image")
	}
	params := convolve.Params{Stride: 1, Padding: convolve.PadEdge, Viz: convolve.VizNone}

	blurred, err := convolveWith(gray, "gauss5", params)
	if err != nil {
		return nil, err
	}
	gx, err := convolveWith(blurred, "sobel_x", params)
	if err != nil {
		return nil, err
	}
	gy, err := convolveWith(blurred, "sobel_y", params)
	if err != nil {
		return nil, err
	}

	w, h := gray.Width, gray.Height
	magnitude := make([]float64, w*h)
	direction := make([]float64, w*h)
	for i := range magnitude {
		magnitude[i] = math.Hypot(gx.Pix[i], gy.Pix[i])
		direction[i] = math.Atan2(gy.Pix[i], gx.Pix[i])
	}

	suppressed := suppressNonMaxima(magnitude, direction, w, h)
	return hysteresis(suppressed, w, h,
		float64(thresholdLow)/255.0, float64(thresholdHigh)/255.0), nil
}

func convolveWith(buf *raster.Buffer, preset string, p convolve.Params) (*raster.Buffer, error) {
	k, err := kernel.Builtin(preset)
	if err != nil {
		return nil, err
	}
	out, err := convolve.Convolve(buf, k, p)
	if err != nil {
		return nil, fmt.Errorf("failed to apply %s: %w", preset, err)
	}
	return out, nil
}

// suppressNonMaxima keeps a magnitude only when it is not smaller than both
// neighbours along the gradient direction. The one pixel border is zeroed.
func suppressNonMaxima(magnitude, direction []float64, w, h int) []float64 {
	out := make([]float64, w*h)
	at := func(x, y int) float64 { return magnitude[y*w+x] }

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			angle := direction[i]

			var n1, n2 float64
			switch a := math.Abs(angle); {
			case a < math.Pi/8 || a >= 7*math.Pi/8:
				n1, n2 = at(x-1, y), at(x+1, y)
			case angle >= math.Pi/8 && angle < 3*math.Pi/8,
				angle >= -7*math.Pi/8 && angle < -5*math.Pi/8:
				n1, n2 = at(x+1, y-1), at(x-1, y+1)
			case a >= 3*math.Pi/8 && a < 5*math.Pi/8:
				n1, n2 = at(x, y-1), at(x, y+1)
			default:
				n1, n2 = at(x-1, y-1), at(x+1, y+1)
			}

			if magnitude[i] >= n1 && magnitude[i] >= n2 {
				out[i] = magnitude[i]
			}
		}
	}
	return out
}

func hysteresis(suppressed []float64, w, h int, low, high float64) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := suppressed[y*w+x]
			switch {
			case v == 0:
			case v >= high:
				out.Pix[y*out.Stride+x] = 255
			case v >= low && strongNeighbour(suppressed, w, h, x, y, high):
				out.Pix[y*out.Stride+x] = 255
			}
		}
	}
	return out
}

func strongNeighbour(suppressed []float64, w, h, x, y int, high float64) bool {
	for ny := max(y-1, 0); ny <= min(y+1, h-1); ny++ {
		for nx := max(x-1, 0); nx <= min(x+1, w-1); nx++ {
			if suppressed[ny*w+nx] >= high {
				return true
			}
		}
	}
	return false
}
