package convolve

import (
	"fmt"
	"testing"

	"github.com/ironsheep/image-convolve-mcp/internal/kernel"
)

func BenchmarkConvolve(b *testing.B) {
	img := randomBuffer(256, 256, 3, 1)

	for _, name := range []string{"box5", "gauss5", "sharpen"} {
		k, _ := kernel.Builtin(name)
		b.Run(name, func(b *testing.B) {
			p := Params{Stride: 1, Padding: PadEdge, Viz: VizNone}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := Convolve(img, k, p); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkStrategies(b *testing.B) {
	img := randomBuffer(256, 256, 1, 2)
	k, _ := kernel.Builtin("gauss5")
	f, _ := k.Separable(SeparableTolerance)

	for _, stride := range []int{1, 2} {
		p := Params{Stride: stride, Padding: PadZero, Viz: VizNone}
		b.Run(fmt.Sprintf("separable/stride%d", stride), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_, _ = ConvolveSeparable(img, f, p)
			}
		})
		b.Run(fmt.Sprintf("direct/stride%d", stride), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_, _ = ConvolveDirect(img, k, p)
			}
		})
	}
}
