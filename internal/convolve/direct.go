package convolve

import (
	"github.com/anthonynsimon/bild/parallel"
	"github.com/cwbudde/algo-vecmath"

	"github.com/ironsheep/image-convolve-mcp/internal/kernel"
	"github.com/ironsheep/image-convolve-mcp/internal/raster"
)

// direct accumulates the full kw x kh window for every output pixel.
//
// Each channel is first copied into a padded plane of
// (W + 2*padX) x (H + 2*padY) samples so the inner loop is a dot product of a
// kernel row against a contiguous slice.
func direct(img *raster.Buffer, k *kernel.Kernel, p Params) *raster.Buffer {
	kw, kh := k.Width(), k.Height()
	padX, padY := kw/2, kh/2
	s := p.EffectiveStride()

	outW := OutputSize(img.Width, kw, s)
	outH := OutputSize(img.Height, kh, s)
	out := raster.New(outW, outH, img.Channels)

	weights := k.Weights()
	kernelRows := make([][]float64, kh)
	for i := range kernelRows {
		kernelRows[i] = weights[i*kw : (i+1)*kw]
	}

	pw := img.Width + 2*padX
	planes := make([][]float64, img.Channels)
	for c := range planes {
		planes[c] = padPlane(img, c, padX, padY, p.Padding)
	}

	rows := outH * img.Channels
	parallel.Line(rows, func(start, end int) {
		for r := start; r < end; r++ {
			c, oy := r/outH, r%outH
			plane := planes[c]
			iy := oy * s
			dst := out.Row(oy, c)
			for ox := range dst {
				ix := ox * s
				var sum float64
				for ky, kr := range kernelRows {
					off := (iy+ky)*pw + ix
					sum += vecmath.DotProduct(plane[off:off+kw], kr)
				}
				dst[ox] = sum
			}
		}
	})
	return out
}

// padPlane returns channel c surrounded by padX columns and padY rows of
// samples chosen by mode.
func padPlane(img *raster.Buffer, c, padX, padY int, mode Padding) []float64 {
	pw := img.Width + 2*padX
	ph := img.Height + 2*padY
	plane := make([]float64, pw*ph)

	for r := 0; r < ph; r++ {
		y, ok := source(r-padY, img.Height, mode)
		if !ok {
			continue
		}
		padLine(plane[r*pw:(r+1)*pw], img.Row(y, c), padX, mode)
	}
	return plane
}
