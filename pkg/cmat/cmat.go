// Package cmat provides the small dense complex-matrix kernel used by the
// output-file parsers: storage, products, packed-triangular reconstruction,
// eigendecomposition, and inversion.
package cmat

import "fmt"

// Dense is a dense complex matrix in row-major order.
type Dense struct {
	Rows int
	Cols int
	data []complex128
}

// NewDense creates a zeroed r x c matrix.
func NewDense(r, c int) *Dense {
	if r < 1 || c < 1 {
		panic(fmt.Sprintf("cmat: invalid dimensions %dx%d", r, c))
	}
	return &Dense{Rows: r, Cols: c, data: make([]complex128, r*c)}
}

// Identity creates the n x n identity matrix.
func Identity(n int) *Dense {
	m := NewDense(n, n)
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1
	}
	return m
}

// Diag creates a square matrix with v on the diagonal and zeros elsewhere.
func Diag(v []complex128) *Dense {
	m := NewDense(len(v), len(v))
	for i, x := range v {
		m.data[i*len(v)+i] = x
	}
	return m
}

// At returns the element at row i, column j.
func (m *Dense) At(i, j int) complex128 {
	if i < 0 || i >= m.Rows || j < 0 || j >= m.Cols {
		panic(fmt.Sprintf("cmat: index (%d,%d) out of range for %dx%d matrix", i, j, m.Rows, m.Cols))
	}
	return m.data[i*m.Cols+j]
}

// Set assigns the element at row i, column j.
func (m *Dense) Set(i, j int, v complex128) {
	if i < 0 || i >= m.Rows || j < 0 || j >= m.Cols {
		panic(fmt.Sprintf("cmat: index (%d,%d) out of range for %dx%d matrix", i, j, m.Rows, m.Cols))
	}
	m.data[i*m.Cols+j] = v
}

// T returns the transpose as a new matrix.
func (m *Dense) T() *Dense {
	t := NewDense(m.Cols, m.Rows)
	for i := 0; i < m.Rows; i++ {
		for j := 0; j < m.Cols; j++ {
			t.data[j*t.Cols+i] = m.data[i*m.Cols+j]
		}
	}
	return t
}

// Clone returns a deep copy.
func (m *Dense) Clone() *Dense {
	c := NewDense(m.Rows, m.Cols)
	copy(c.data, m.data)
	return c
}

// Col returns a copy of column j.
func (m *Dense) Col(j int) []complex128 {
	col := make([]complex128, m.Rows)
	for i := 0; i < m.Rows; i++ {
		col[i] = m.data[i*m.Cols+j]
	}
	return col
}

// SetCol assigns column j from v.
func (m *Dense) SetCol(j int, v []complex128) {
	if len(v) != m.Rows {
		panic(fmt.Sprintf("cmat: column length %d does not match %d rows", len(v), m.Rows))
	}
	for i := 0; i < m.Rows; i++ {
		m.data[i*m.Cols+j] = v[i]
	}
}

// Mul returns the matrix product a*b.
func Mul(a, b *Dense) *Dense {
	if a.Cols != b.Rows {
		panic(fmt.Sprintf("cmat: cannot multiply %dx%d by %dx%d", a.Rows, a.Cols, b.Rows, b.Cols))
	}
	p := NewDense(a.Rows, b.Cols)
	for i := 0; i < a.Rows; i++ {
		for k := 0; k < a.Cols; k++ {
			aik := a.data[i*a.Cols+k]
			if aik == 0 {
				continue
			}
			for j := 0; j < b.Cols; j++ {
				p.data[i*p.Cols+j] += aik * b.data[k*b.Cols+j]
			}
		}
	}
	return p
}
