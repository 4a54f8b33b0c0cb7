package cmat

import (
	"fmt"
	"math"
)

// TriangularDim solves n(n+1)/2 = k for the dimension n of a symmetric
// matrix stored as a packed triangle of k values. It fails when k does not
// correspond to any positive integer dimension.
func TriangularDim(k int) (int, error) {
	if k < 1 {
		return 0, fmt.Errorf("cmat: %d values cannot fill a matrix triangle", k)
	}
	n := int(math.Round((math.Sqrt(float64(8*k+1)) - 1) / 2))
	if n < 1 || n*(n+1)/2 != k {
		return 0, fmt.Errorf("cmat: %d values do not fill the triangle of any square matrix", k)
	}
	return n, nil
}

// SymmetricFromUpper builds a symmetric n x n matrix from its upper triangle
// (diagonal included) given in row-major order, mirroring the values into
// the strict lower triangle.
func SymmetricFromUpper(vals []complex128, n int) (*Dense, error) {
	if err := checkTriangleCount(len(vals), n); err != nil {
		return nil, err
	}
	m := NewDense(n, n)
	idx := 0
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			m.Set(i, j, vals[idx])
			if i != j {
				m.Set(j, i, vals[idx])
			}
			idx++
		}
	}
	return m, nil
}

// SymmetricFromLower builds a symmetric n x n matrix from its lower triangle
// (diagonal included) given in row-major order, mirroring the values into
// the strict upper triangle.
func SymmetricFromLower(vals []complex128, n int) (*Dense, error) {
	if err := checkTriangleCount(len(vals), n); err != nil {
		return nil, err
	}
	m := NewDense(n, n)
	idx := 0
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			m.Set(i, j, vals[idx])
			if i != j {
				m.Set(j, i, vals[idx])
			}
			idx++
		}
	}
	return m, nil
}

func checkTriangleCount(k, n int) error {
	if n < 1 {
		return fmt.Errorf("cmat: invalid matrix dimension %d", n)
	}
	if want := n * (n + 1) / 2; k != want {
		return fmt.Errorf("cmat: got %d values, need %d for the triangle of a %dx%d matrix", k, want, n, n)
	}
	return nil
}
