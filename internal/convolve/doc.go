// Package convolve applies a 2D kernel to a raster.Buffer.
//
// Convolve is the single entry point. It is a pure function of its inputs:
// nothing is cached between calls and the input buffer is never modified.
//
// # Output Size
//
// With pad = k/2 (integer division) and an effective stride s = max(1, stride),
// every axis is sized as
//
//	out = ceil((in + 2*pad - k + 1) / s)
//
// Odd kernels are centred exactly. Even kernels get the same integer padding
// on both sides, which shifts the window by half a pixel; this is a known
// limitation rather than a symmetric-padding scheme.
//
// # Boundary Handling
//
// Samples outside the image are 0 under PadZero. Under PadEdge each coordinate
// is clamped into [0, dim-1] independently.
//
// # Strategies
//
// Before accumulating, the kernel is tested for separability with
// SeparableTolerance. A separable kernel runs as a horizontal 1D pass (stride
// on x) followed by a vertical 1D pass (stride on y), costing O(kw+kh) per
// pixel. Any other kernel runs the direct 2D accumulation, O(kw*kh) per pixel.
// Both produce the same values up to floating-point round-off.
//
// Rows of every pass are split across goroutines with bild's parallel.Line;
// each goroutine owns its scratch line and writes disjoint output samples.
//
// # Visualization
//
// The complete output of either strategy is post-processed by Visualize:
//   - VizClamp: samples clamped into [0,1]
//   - VizNormalize: (v-min)/(max-min) over all channels, or 0.5 everywhere if
//     the output is uniform
//   - VizNone: raw accumulated values
//
// Normalization reduces min and max over the finished buffer before any
// sample is rescaled.
//
// # Errors
//
// An empty image or a nil kernel fails with kernel.ErrDimension. Unknown
// padding or visualization names fail with ErrInvalidParam. A kernel that is
// not separable is not an error.
package convolve
