package convolve

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ironsheep/image-convolve-mcp/internal/raster"
)

func TestVisualize(t *testing.T) {
	tests := []struct {
		name string
		mode VizMode
		in   []float64
		want []float64
	}{
		{"normalize symmetric", VizNormalize, []float64{-2, 0, 2}, []float64{0, 0.5, 1}},
		{"normalize uniform", VizNormalize, []float64{3, 3, 3}, []float64{0.5, 0.5, 0.5}},
		{"normalize single", VizNormalize, []float64{-7}, []float64{0.5}},
		{"clamp", VizClamp, []float64{-0.5, 0.25, 1.5}, []float64{0, 0.25, 1}},
		{"none", VizNone, []float64{-2, 0.25, 9}, []float64{-2, 0.25, 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := raster.New(len(tt.in), 1, 1)
			copy(buf.Pix, tt.in)
			Visualize(buf, tt.mode)
			if d := cmp.Diff(tt.want, buf.Pix); d != "" {
				t.Errorf("mismatch (-want +got):\n%s", d)
			}
		})
	}
}

func TestVisualize_NormalizeAcrossChannels(t *testing.T) {
	// The range is global: channel 1 alone spans [10, 20] but channel 0 sets
	// the minimum.
	buf := raster.New(2, 1, 2)
	buf.Pix = []float64{0, 5, 10, 20}

	Visualize(buf, VizNormalize)
	if d := cmp.Diff([]float64{0, 0.25, 0.5, 1}, buf.Pix); d != "" {
		t.Errorf("mismatch (-want +got):\n%s", d)
	}
}

func TestVisualize_BoundaryLaw(t *testing.T) {
	buf := randomBuffer(17, 9, 3, 42)
	for i := range buf.Pix {
		buf.Pix[i] = buf.Pix[i]*40 - 13
	}

	Visualize(buf, VizNormalize)
	lo, hi := minMax(buf.Pix)
	if lo != 0 {
		t.Errorf("min: got %v, want 0", lo)
	}
	if hi != 1 {
		t.Errorf("max: got %v, want 1", hi)
	}
}

func TestVisualize_Empty(t *testing.T) {
	Visualize(nil, VizNormalize)
	Visualize(raster.New(0, 0, 1), VizNormalize)
}

func TestParsePadding(t *testing.T) {
	tests := []struct {
		in   string
		want Padding
	}{
		{"zero", PadZero},
		{"EDGE", PadEdge},
		{" edge ", PadEdge},
	}
	for _, tt := range tests {
		got, err := ParsePadding(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParsePadding(%q): got %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}

	if _, err := ParsePadding("reflect"); !errors.Is(err, ErrInvalidParam) {
		t.Errorf("expected ErrInvalidParam, got %v", err)
	}
}

func TestParseVizMode(t *testing.T) {
	tests := []struct {
		in   string
		want VizMode
	}{
		{"clamp", VizClamp},
		{"Normalize", VizNormalize},
		{"none", VizNone},
	}
	for _, tt := range tests {
		got, err := ParseVizMode(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseVizMode(%q): got %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}

	if _, err := ParseVizMode("log"); !errors.Is(err, ErrInvalidParam) {
		t.Errorf("expected ErrInvalidParam, got %v", err)
	}
}

func TestParams(t *testing.T) {
	p := DefaultParams()
	if p.Stride != 1 || p.Padding != PadZero || p.Viz != VizClamp {
		t.Errorf("DefaultParams: got %+v", p)
	}

	for _, tt := range []struct{ stride, want int }{{-3, 1}, {0, 1}, {1, 1}, {4, 4}} {
		if got := (Params{Stride: tt.stride}).EffectiveStride(); got != tt.want {
			t.Errorf("EffectiveStride(%d): got %d, want %d", tt.stride, got, tt.want)
		}
	}

	if PadEdge.String() != "edge" || VizNormalize.String() != "normalize" {
		t.Error("String() does not round-trip through the parsers")
	}
}
