package imaging

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/image-convolve-mcp/internal/raster"
)

// LabeledPoint is an output pixel coordinate with an optional label.
type LabeledPoint struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Label string `json:"label,omitempty"`
}

// HSLColor is a color in HSL space. H is in degrees [0,360), S and L are
// percentages.
type HSLColor struct {
	H int `json:"h"`
	S int `json:"s"`
	L int `json:"l"`
}

// ProbeSample reports one output pixel before and after visualization.
type ProbeSample struct {
	Label string `json:"label,omitempty"`
	X     int    `json:"x"`
	Y     int    `json:"y"`

	// Raw holds the accumulated value of every channel before visualization.
	// Negative and >1 responses are kept as is.
	Raw []float64 `json:"raw"`

	// Display holds the 8-bit values written to the output image.
	Display []uint8 `json:"display"`

	Hex string   `json:"hex"`
	HSL HSLColor `json:"hsl"`
}

// ProbeResult holds probe samples in input order.
type ProbeResult struct {
	Samples []ProbeSample `json:"samples"`
}

// Probe reads each point from raw, the unvisualized convolution output, and
// from display, the same output after visualization. Both buffers must have
// the same geometry.
//
// Single-channel outputs are reported as gray for Hex and HSL.
func Probe(raw, display *raster.Buffer, points []LabeledPoint) (*ProbeResult, error) {
	if raw.Empty() || display.Empty() {
		return nil, fmt.Errorf("probe on an empty buffer")
	}
	if raw.Width != display.Width || raw.Height != display.Height || raw.Channels != display.Channels {
		return nil, fmt.Errorf("probe buffers differ: %dx%dx%d vs %dx%dx%d",
			raw.Width, raw.Height, raw.Channels, display.Width, display.Height, display.Channels)
	}

	samples := make([]ProbeSample, 0, len(points))
	for _, p := range points {
		if p.X < 0 || p.X >= raw.Width || p.Y < 0 || p.Y >= raw.Height {
			return nil, fmt.Errorf("failed to sample point (%d,%d): outside output bounds %dx%d",
				p.X, p.Y, raw.Width, raw.Height)
		}

		s := ProbeSample{
			Label:   p.Label,
			X:       p.X,
			Y:       p.Y,
			Raw:     make([]float64, raw.Channels),
			Display: make([]uint8, raw.Channels),
		}
		for c := 0; c < raw.Channels; c++ {
			s.Raw[c] = raw.At(p.X, p.Y, c)
			s.Display[c] = raster.Quantize(display.At(p.X, p.Y, c))
		}

		col := displayColor(display, p.X, p.Y)
		h, sat, l := col.Hsl()
		s.Hex = col.Hex()
		s.HSL = HSLColor{
			H: int(math.Round(h)) % 360,
			S: int(math.Round(sat * 100)),
			L: int(math.Round(l * 100)),
		}
		samples = append(samples, s)
	}

	return &ProbeResult{Samples: samples}, nil
}

// displayColor returns the clamped color of (x, y). Channel 0 is used for all
// three components when the buffer has fewer than three channels.
func displayColor(buf *raster.Buffer, x, y int) colorful.Color {
	var col colorful.Color
	if buf.Channels < 3 {
		v := buf.At(x, y, 0)
		col = colorful.Color{R: v, G: v, B: v}
	} else {
		col = colorful.Color{R: buf.At(x, y, 0), G: buf.At(x, y, 1), B: buf.At(x, y, 2)}
	}
	if math.IsNaN(col.R) || math.IsNaN(col.G) || math.IsNaN(col.B) {
		return colorful.Color{}
	}
	return col.Clamped()
}
