package convolve

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidParam is returned when a padding or visualization name is not
// recognised.
var ErrInvalidParam = errors.New("convolve: invalid parameter")

// Padding selects how samples outside the image are read.
type Padding int

const (
	// PadZero reads 0 outside the image.
	PadZero Padding = iota
	// PadEdge clamps coordinates to the nearest valid pixel.
	PadEdge
)

func (p Padding) String() string {
	switch p {
	case PadZero:
		return "zero"
	case PadEdge:
		return "edge"
	}
	return fmt.Sprintf("Padding(%d)", int(p))
}

// ParsePadding maps "zero" or "edge" (any case) to a Padding.
func ParsePadding(s string) (Padding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "zero":
		return PadZero, nil
	case "edge":
		return PadEdge, nil
	}
	return 0, fmt.Errorf("%w: padding %q (want zero or edge)", ErrInvalidParam, s)
}

// VizMode is the post-processing applied to a finished output buffer.
type VizMode int

const (
	// VizClamp clamps every sample into [0,1].
	VizClamp VizMode = iota
	// VizNormalize rescales the global range of the output onto [0,1].
	VizNormalize
	// VizNone leaves raw accumulated values.
	VizNone
)

func (v VizMode) String() string {
	switch v {
	case VizClamp:
		return "clamp"
	case VizNormalize:
		return "normalize"
	case VizNone:
		return "none"
	}
	return fmt.Sprintf("VizMode(%d)", int(v))
}

// ParseVizMode maps "clamp", "normalize" or "none" (any case) to a VizMode.
func ParseVizMode(s string) (VizMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "clamp":
		return VizClamp, nil
	case "normalize":
		return VizNormalize, nil
	case "none":
		return VizNone, nil
	}
	return 0, fmt.Errorf("%w: viz mode %q (want clamp, normalize or none)", ErrInvalidParam, s)
}

// Params configures a convolution.
type Params struct {
	// Stride is the step between sampled output positions on both axes.
	// Values below 1 are treated as 1.
	Stride  int
	Padding Padding
	Viz     VizMode
}

// DefaultParams returns stride 1, zero padding and clamped output.
func DefaultParams() Params {
	return Params{Stride: 1, Padding: PadZero, Viz: VizClamp}
}

// EffectiveStride returns max(1, p.Stride).
func (p Params) EffectiveStride() int {
	return max(1, p.Stride)
}

// OutputSize returns the number of output samples along an axis of length in
// for a kernel extent k: ceil((in + 2*(k/2) - k + 1) / stride), with stride
// raised to at least 1.
func OutputSize(in, k, stride int) int {
	stride = max(1, stride)
	n := in + 2*(k/2) - k + 1
	if n <= 0 {
		return 0
	}
	return (n + stride - 1) / stride
}
