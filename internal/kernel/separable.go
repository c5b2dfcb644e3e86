package kernel

import "math"

// Factors is the outer-product decomposition K[i][j] = Column[i] * Row[j] of a
// separable kernel. Column has Height entries (the vertical pass) and Row has
// Width entries (the horizontal pass).
type Factors struct {
	Column []float64 `json:"column"`
	Row    []float64 `json:"row"`
}

// Separable reports whether the kernel factors as an outer product within
// tolerance, and returns the factors when it does.
//
// The pivot is the entry of largest magnitude. Row is the pivot's row and
// Column is the pivot's column divided by the pivot, so Column is 1 at the
// pivot row. Every entry must then satisfy
//
//	|K[i][j] - Column[i]*Row[j]| <= tolerance * (1 + |K[i][j]|)
//
// A kernel whose entries are all within tolerance of zero is reported as
// separable with Row all zeros and Column all ones, which yields an all-zero
// result under any padding.
func (k *Kernel) Separable(tolerance float64) (Factors, bool) {
	pr, pc := -1, -1
	best := 0.0
	for i := 0; i < k.height; i++ {
		for j := 0; j < k.width; j++ {
			if a := math.Abs(k.At(i, j)); a > best {
				best, pr, pc = a, i, j
			}
		}
	}

	if pr < 0 || best <= tolerance {
		f := Factors{
			Column: make([]float64, k.height),
			Row:    make([]float64, k.width),
		}
		for i := range f.Column {
			f.Column[i] = 1
		}
		return f, true
	}

	f := Factors{
		Column: make([]float64, k.height),
		Row:    make([]float64, k.width),
	}
	for j := 0; j < k.width; j++ {
		f.Row[j] = k.At(pr, j)
	}
	pivot := k.At(pr, pc)
	for i := 0; i < k.height; i++ {
		f.Column[i] = k.At(i, pc) / pivot
	}

	for i := 0; i < k.height; i++ {
		for j := 0; j < k.width; j++ {
			a := k.At(i, j)
			if math.Abs(a-f.Column[i]*f.Row[j]) > tolerance*(1+math.Abs(a)) {
				return Factors{}, false
			}
		}
	}
	return f, true
}
