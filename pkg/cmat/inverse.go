package cmat

import (
	"fmt"

	"github.com/edp1096/sparse"
)

// Inverse computes the inverse of a square complex matrix: one complex LU
// factorization, then one solve per unit vector to assemble the result
// column by column. Singular input surfaces as a factorization error.
func Inverse(a *Dense) (*Dense, error) {
	if a.Rows != a.Cols {
		return nil, fmt.Errorf("cmat: cannot invert %dx%d matrix", a.Rows, a.Cols)
	}
	n := a.Rows

	config := &sparse.Configuration{
		Real:                    true,
		Complex:                 true,
		SeparatedComplexVectors: true,
		Expandable:              true,
		Translate:               false,
		ModifiedNodal:           true,
		TiesMultiplier:          5,
		PrinterWidth:            140,
	}
	m, err := sparse.Create(int64(n), config)
	if err != nil {
		return nil, fmt.Errorf("cmat: creating factorization workspace: %w", err)
	}
	defer m.Destroy()

	// The factorization library indexes from 1.
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := a.At(i, j)
			e := m.GetElement(int64(i+1), int64(j+1))
			e.Real = real(v)
			e.Imag = imag(v)
		}
	}
	if err := m.Factor(); err != nil {
		return nil, fmt.Errorf("cmat: factoring %dx%d matrix: %w", n, n, err)
	}

	inv := NewDense(n, n)
	rhs := make([]float64, n+1)
	irhs := make([]float64, n+1)
	for col := 0; col < n; col++ {
		for i := range rhs {
			rhs[i], irhs[i] = 0, 0
		}
		rhs[col+1] = 1
		solRe, solIm, err := m.SolveComplex(rhs, irhs)
		if err != nil {
			return nil, fmt.Errorf("cmat: solving for inverse column %d: %w", col, err)
		}
		for row := 0; row < n; row++ {
			inv.Set(row, col, complex(solRe[row+1], solIm[row+1]))
		}
	}
	return inv, nil
}
