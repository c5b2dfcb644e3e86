package convolve

import (
	"fmt"
	"log/slog"

	"github.com/ironsheep/image-convolve-mcp/internal/kernel"
	"github.com/ironsheep/image-convolve-mcp/internal/raster"
)

// SeparableTolerance is the tolerance handed to Kernel.Separable when choosing
// a strategy. It rejects near-rank-one kernels such as sharpen while
// accepting round-off in the binomial and box presets.
const SeparableTolerance = 1e-6

// Strategy names the accumulation path taken for a kernel.
type Strategy string

const (
	StrategySeparable Strategy = "separable"
	StrategyDirect    Strategy = "direct"
)

// StrategyFor reports the path Convolve takes for k.
func StrategyFor(k *kernel.Kernel) Strategy {
	if _, ok := k.Separable(SeparableTolerance); ok {
		return StrategySeparable
	}
	return StrategyDirect
}

// Convolve applies k to img and returns a new buffer post-processed by
// p.Viz.
//
// Parameters:
//   - img: Source buffer. Must have non-zero width and height.
//   - k: Kernel to apply. Must not be nil.
//   - p: Stride, padding and visualization mode.
//
// Returns:
//   - *raster.Buffer: Output of OutputSize(W, kw, s) x OutputSize(H, kh, s)
//     pixels with the same channel count as img.
//   - error: kernel.ErrDimension for an empty image or a nil kernel.
//
// Separable kernels run as two 1D passes; all others run the direct 2D
// accumulation. The visualization step is identical for both.
func Convolve(img *raster.Buffer, k *kernel.Kernel, p Params) (*raster.Buffer, error) {
	if err := validate(img, k); err != nil {
		return nil, err
	}

	log := Logger()
	var out *raster.Buffer
	if f, ok := k.Separable(SeparableTolerance); ok {
		log.Debug("convolve: separable strategy",
			slog.Int("kw", k.Width()), slog.Int("kh", k.Height()),
			slog.Int("stride", p.EffectiveStride()), slog.String("padding", p.Padding.String()))
		out = separable(img, f, p)
	} else {
		log.Debug("convolve: direct strategy",
			slog.Int("kw", k.Width()), slog.Int("kh", k.Height()),
			slog.Int("stride", p.EffectiveStride()), slog.String("padding", p.Padding.String()))
		out = direct(img, k, p)
	}

	Visualize(out, p.Viz)
	log.Debug("convolve: done",
		slog.Int("width", out.Width), slog.Int("height", out.Height),
		slog.Int("channels", out.Channels), slog.String("viz", p.Viz.String()))
	return out, nil
}

// ConvolveSeparable runs the two-pass strategy with explicit factors and
// returns the raw accumulated values. Row is applied horizontally and Column
// vertically.
func ConvolveSeparable(img *raster.Buffer, f kernel.Factors, p Params) (*raster.Buffer, error) {
	if img.Empty() {
		return nil, fmt.Errorf("%w: empty image", kernel.ErrDimension)
	}
	if len(f.Row) == 0 || len(f.Column) == 0 {
		return nil, fmt.Errorf("%w: empty kernel factors", kernel.ErrDimension)
	}
	return separable(img, f, p), nil
}

// ConvolveDirect runs the direct 2D strategy regardless of separability and
// returns the raw accumulated values.
func ConvolveDirect(img *raster.Buffer, k *kernel.Kernel, p Params) (*raster.Buffer, error) {
	if err := validate(img, k); err != nil {
		return nil, err
	}
	return direct(img, k, p), nil
}

// Sample reads channel c at (x, y), applying the padding policy when the
// coordinate lies outside the image. Both strategies pad through the same
// rule, so Sample is the value every tap sees.
func Sample(img *raster.Buffer, x, y, c int, pad Padding) float64 {
	sx, okX := source(x, img.Width, pad)
	sy, okY := source(y, img.Height, pad)
	if !okX || !okY {
		return 0
	}
	return img.At(sx, sy, c)
}

// source maps coordinate i on an axis of length n to the in-bounds index it
// reads under mode. ok is false when the tap is a zero pad.
func source(i, n int, mode Padding) (int, bool) {
	switch {
	case i >= 0 && i < n:
		return i, true
	case mode == PadZero:
		return 0, false
	}
	return clamp(i, 0, n-1), true
}

func validate(img *raster.Buffer, k *kernel.Kernel) error {
	if img.Empty() {
		if img == nil {
			return fmt.Errorf("%w: nil image", kernel.ErrDimension)
		}
		return fmt.Errorf("%w: empty image %dx%dx%d", kernel.ErrDimension, img.Width, img.Height, img.Channels)
	}
	if len(img.Pix) != img.Width*img.Height*img.Channels {
		return fmt.Errorf("%w: %d samples for a %dx%dx%d image",
			kernel.ErrDimension, len(img.Pix), img.Width, img.Height, img.Channels)
	}
	if k == nil {
		return fmt.Errorf("%w: nil kernel", kernel.ErrDimension)
	}
	return nil
}

// padLine writes src into dst shifted right by pad samples. Positions that fall
// outside src are filled according to mode.
func padLine(dst, src []float64, pad int, mode Padding) {
	for i := range dst {
		if x, ok := source(i-pad, len(src), mode); ok {
			dst[i] = src[x]
		} else {
			dst[i] = 0
		}
	}
}

// clamp constrains an integer value to the range [lo, hi].
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
