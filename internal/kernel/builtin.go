package kernel

import (
	"fmt"
	"sort"
	"strings"
)

var builtins = map[string]func() *Kernel{
	"identity": func() *Kernel {
		return mustNew(3, 3, []float64{0, 0, 0, 0, 1, 0, 0, 0, 0})
	},
	"box3": func() *Kernel { return box(3) },
	"box5": func() *Kernel { return box(5) },
	"sharpen": func() *Kernel {
		return mustNew(3, 3, []float64{0, -1, 0, -1, 5, -1, 0, -1, 0})
	},
	"sobel_x": func() *Kernel {
		return mustNew(3, 3, []float64{-1, 0, 1, -2, 0, 2, -1, 0, 1})
	},
	"sobel_y": func() *Kernel {
		return mustNew(3, 3, []float64{-1, -2, -1, 0, 0, 0, 1, 2, 1})
	},
	"gauss5": gauss5,
}

// Builtin returns the named preset kernel. The lookup is case-insensitive.
//
// Presets:
//   - identity: 3x3, center 1
//   - box3, box5: uniform average
//   - sharpen: 3x3 Laplacian-style sharpen
//   - sobel_x, sobel_y: 3x3 gradient operators
//   - gauss5: 5x5 binomial approximation of a Gaussian (sigma ~1)
//
// Unknown names fail with ErrUnknownKernel.
func Builtin(name string) (*Kernel, error) {
	build, ok := builtins[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKernel, name)
	}
	return build(), nil
}

// BuiltinNames returns the preset names in sorted order.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func box(k int) *Kernel {
	w := make([]float64, k*k)
	for i := range w {
		w[i] = 1.0 / float64(k*k)
	}
	return mustNew(k, k, w)
}

// gauss5 is the outer product of the binomial row [1 4 6 4 1]/16 with itself.
func gauss5() *Kernel {
	row := []float64{1, 4, 6, 4, 1}
	for i := range row {
		row[i] /= 16
	}
	w := make([]float64, 25)
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			w[y*5+x] = row[y] * row[x]
		}
	}
	return mustNew(5, 5, w)
}

func mustNew(w, h int, weights []float64) *Kernel {
	k, err := New(w, h, weights)
	if err != nil {
		panic(err)
	}
	return k
}
