package convolve

import (
	"github.com/anthonynsimon/bild/parallel"
	"github.com/cwbudde/algo-vecmath"

	"github.com/ironsheep/image-convolve-mcp/internal/kernel"
	"github.com/ironsheep/image-convolve-mcp/internal/raster"
)

// separable runs the horizontal pass with f.Row and then the vertical pass
// with f.Column on the intermediate buffer.
func separable(img *raster.Buffer, f kernel.Factors, p Params) *raster.Buffer {
	s := p.EffectiveStride()
	tmp := horizontal(img, f.Row, p.Padding, s)
	return vertical(tmp, f.Column, p.Padding, s)
}

// horizontal convolves every row with kx. Only the x axis is strided; the
// output keeps the input height.
func horizontal(img *raster.Buffer, kx []float64, pad Padding, stride int) *raster.Buffer {
	kw := len(kx)
	padX := kw / 2
	outW := OutputSize(img.Width, kw, stride)
	out := raster.New(outW, img.Height, img.Channels)

	rows := img.Height * img.Channels
	parallel.Line(rows, func(start, end int) {
		line := make([]float64, img.Width+2*padX)
		for r := start; r < end; r++ {
			c, y := r/img.Height, r%img.Height
			padLine(line, img.Row(y, c), padX, pad)
			dst := out.Row(y, c)
			for ox := range dst {
				ix := ox * stride
				dst[ox] = vecmath.DotProduct(line[ix:ix+kw], kx)
			}
		}
	})
	return out
}

// vertical convolves every column with ky. Only the y axis is strided; the
// output keeps the input width.
func vertical(img *raster.Buffer, ky []float64, pad Padding, stride int) *raster.Buffer {
	kh := len(ky)
	padY := kh / 2
	outH := OutputSize(img.Height, kh, stride)
	out := raster.New(img.Width, outH, img.Channels)

	cols := img.Width * img.Channels
	parallel.Line(cols, func(start, end int) {
		column := make([]float64, img.Height)
		line := make([]float64, img.Height+2*padY)
		for r := start; r < end; r++ {
			c, x := r/img.Width, r%img.Width
			for y := range column {
				column[y] = img.At(x, y, c)
			}
			padLine(line, column, padY, pad)
			for oy := 0; oy < outH; oy++ {
				iy := oy * stride
				out.Set(x, oy, c, vecmath.DotProduct(line[iy:iy+kh], ky))
			}
		}
	})
	return out
}
