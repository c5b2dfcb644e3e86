// Package kernel provides the immutable weight matrix applied by the
// convolution engine.
//
// Kernels are built from explicit weights (New), from a named preset
// (Builtin) or from a textual matrix (Parse). Separability is analysed on
// request and never stored.
package kernel

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-vecmath"
)

// Errors returned by kernel construction and by the convolution engine.
var (
	ErrDimension     = errors.New("kernel: dimension mismatch")
	ErrUnknownKernel = errors.New("kernel: unknown builtin kernel")
	ErrParse         = errors.New("kernel: malformed kernel spec")
)

// Kernel is a width x height weight matrix stored row-major (row index is the
// height axis). A Kernel is read-only after construction.
type Kernel struct {
	width   int
	height  int
	weights []float64
}

// New builds a kernel from explicit weights. The weights are copied.
// It fails with ErrDimension if either dimension is below 1 or
// len(weights) != width*height.
func New(width, height int, weights []float64) (*Kernel, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: kernel size %dx%d", ErrDimension, width, height)
	}
	if len(weights) != width*height {
		return nil, fmt.Errorf("%w: %d weights for a %dx%d kernel", ErrDimension, len(weights), width, height)
	}
	w := make([]float64, len(weights))
	copy(w, weights)
	return &Kernel{width: width, height: height, weights: w}, nil
}

// Width returns the number of columns.
func (k *Kernel) Width() int { return k.width }

// Height returns the number of rows.
func (k *Kernel) Height() int { return k.height }

// Weights returns a copy of the row-major weights.
func (k *Kernel) Weights() []float64 {
	w := make([]float64, len(k.weights))
	copy(w, k.weights)
	return w
}

// At returns the weight at the given row and column.
func (k *Kernel) At(row, col int) float64 {
	return k.weights[row*k.width+col]
}

// Sum returns the sum of all weights. Averaging kernels sum to 1.
func (k *Kernel) Sum() float64 {
	return vecmath.Sum(k.weights)
}

// String renders the kernel in the grammar accepted by Parse.
func (k *Kernel) String() string {
	var sb strings.Builder
	for i := 0; i < k.height; i++ {
		if i > 0 {
			sb.WriteString("; ")
		}
		for j := 0; j < k.width; j++ {
			if j > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(strconv.FormatFloat(k.At(i, j), 'g', -1, 64))
		}
	}
	return sb.String()
}

// Parse builds a kernel from a textual matrix.
//
// Rows are separated by ';'. Within a row, values are separated by whitespace,
// commas, or both. Blank rows are ignored.
//
//	"1 2 1; 2 4 2; 1 2 1"
//	"-1, 0, 1; -2, 0, 2; -1, 0, 1"
//
// Parse fails with ErrParse when the spec has no rows, when a row's width
// differs from the first row's, or when a token is not a finite number.
func Parse(spec string) (*Kernel, error) {
	var rows [][]float64
	for _, line := range strings.Split(spec, ";") {
		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
		})
		if len(fields) == 0 {
			continue
		}
		row := make([]float64, 0, len(fields))
		for _, tok := range fields {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
				return nil, fmt.Errorf("%w: invalid value %q", ErrParse, tok)
			}
			row = append(row, v)
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty kernel spec", ErrParse)
	}

	width := len(rows[0])
	weights := make([]float64, 0, width*len(rows))
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrParse, i, len(row), width)
		}
		weights = append(weights, row...)
	}

	return New(width, len(rows), weights)
}

// Resolve interprets arg as a builtin name first and as a textual spec
// otherwise. When neither applies the parse error is returned.
func Resolve(arg string) (*Kernel, error) {
	if k, err := Builtin(arg); err == nil {
		return k, nil
	}
	return Parse(arg)
}
