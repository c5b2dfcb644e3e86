package convolve

import (
	"github.com/anthonynsimon/bild/parallel"

	"github.com/ironsheep/image-convolve-mcp/internal/raster"
)

// Visualize rescales buf in place according to mode.
//
// VizNormalize is two-phase: the min/max reduction covers every sample of
// every channel before the first sample is rewritten. A uniform buffer becomes
// 0.5 everywhere.
func Visualize(buf *raster.Buffer, mode VizMode) {
	if buf == nil || len(buf.Pix) == 0 {
		return
	}

	switch mode {
	case VizClamp:
		apply(buf.Pix, func(v float64) float64 {
			return min(max(v, 0), 1)
		})
	case VizNormalize:
		lo, hi := buf.Pix[0], buf.Pix[0]
		for _, v := range buf.Pix[1:] {
			lo = min(lo, v)
			hi = max(hi, v)
		}
		if hi == lo {
			apply(buf.Pix, func(float64) float64 { return 0.5 })
			return
		}
		span := hi - lo
		apply(buf.Pix, func(v float64) float64 {
			return (v - lo) / span
		})
	}
}

// apply rewrites every sample with fn, splitting the slice across goroutines.
func apply(pix []float64, fn func(float64) float64) {
	parallel.Line(len(pix), func(start, end int) {
		for i := start; i < end; i++ {
			pix[i] = fn(pix[i])
		}
	})
}
