package cmat

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Eig computes the eigenvalues and right eigenvectors of a square complex
// matrix. The decomposition runs on the real 2n x 2n embedding
// [[Re -Im],[Im Re]], whose spectrum is the original spectrum together with
// its conjugate: an embedded eigenvector [p; q] recovers an original
// eigenvector u = p + iq, and u vanishes exactly on the conjugate copies.
// Eigenvectors are returned as unit-norm columns; pairs are unsorted.
func Eig(a *Dense) ([]complex128, *Dense, error) {
	if a.Rows != a.Cols {
		return nil, nil, fmt.Errorf("cmat: eigendecomposition needs a square matrix, have %dx%d", a.Rows, a.Cols)
	}
	n := a.Rows

	embedded := mat.NewDense(2*n, 2*n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := a.At(i, j)
			embedded.Set(i, j, real(v))
			embedded.Set(i, j+n, -imag(v))
			embedded.Set(i+n, j, imag(v))
			embedded.Set(i+n, j+n, real(v))
		}
	}

	var eig mat.Eigen
	if ok := eig.Factorize(embedded, mat.EigenRight); !ok {
		return nil, nil, fmt.Errorf("cmat: eigendecomposition of %dx%d matrix did not converge", n, n)
	}
	values := eig.Values(nil)
	var vecs mat.CDense
	eig.VectorsTo(&vecs)

	type candidate struct {
		value complex128
		vec   []complex128
		norm  float64
	}
	cands := make([]candidate, 2*n)
	for k := 0; k < 2*n; k++ {
		u := make([]complex128, n)
		var sum float64
		for i := 0; i < n; i++ {
			u[i] = vecs.At(i, k) + 1i*vecs.At(i+n, k)
			sum += real(u[i])*real(u[i]) + imag(u[i])*imag(u[i])
		}
		cands[k] = candidate{value: values[k], vec: u, norm: math.Sqrt(sum)}
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].norm > cands[j].norm })

	// Keep the n strongest recoveries, skipping pairs that duplicate an
	// already-kept one. Duplicates appear when a real eigenvalue lands in
	// both halves of the embedded spectrum.
	kept := make([]int, 0, n)
	taken := make([]bool, len(cands))
	for idx, c := range cands {
		if len(kept) == n {
			break
		}
		if c.norm == 0 {
			continue
		}
		dup := false
		for _, ki := range kept {
			k := cands[ki]
			if sameEigenvalue(k.value, c.value) && parallelVectors(k.vec, c.vec, k.norm, c.norm) {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, idx)
			taken[idx] = true
		}
	}
	// Degenerate spectra can leave fewer than n distinct directions; fill
	// with the strongest remaining candidates.
	for idx, c := range cands {
		if len(kept) == n {
			break
		}
		if taken[idx] || c.norm == 0 {
			continue
		}
		kept = append(kept, idx)
	}
	if len(kept) != n {
		return nil, nil, fmt.Errorf("cmat: recovered %d of %d eigenpairs", len(kept), n)
	}

	outVals := make([]complex128, n)
	outVecs := NewDense(n, n)
	for col, ki := range kept {
		c := cands[ki]
		outVals[col] = c.value
		for i := 0; i < n; i++ {
			outVecs.Set(i, col, c.vec[i]/complex(c.norm, 0))
		}
	}
	return outVals, outVecs, nil
}

// SortEigen reorders eigenpairs in place into ascending order by real part,
// ties broken by imaginary part. Consumers rely on this total order to keep
// the mode index stable across a frequency sweep.
func SortEigen(values []complex128, vectors *Dense) {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		va, vb := values[idx[a]], values[idx[b]]
		if real(va) != real(vb) {
			return real(va) < real(vb)
		}
		return imag(va) < imag(vb)
	})

	sortedVals := make([]complex128, len(values))
	for i, j := range idx {
		sortedVals[i] = values[j]
	}
	copy(values, sortedVals)

	if vectors == nil {
		return
	}
	cols := make([][]complex128, len(idx))
	for i, j := range idx {
		cols[i] = vectors.Col(j)
	}
	for i, col := range cols {
		vectors.SetCol(i, col)
	}
}

func sameEigenvalue(a, b complex128) bool {
	return cmplx.Abs(a-b) <= 1e-8*(1+cmplx.Abs(a)+cmplx.Abs(b))
}

func parallelVectors(a, b []complex128, normA, normB float64) bool {
	var dot complex128
	for i := range a {
		dot += cmplx.Conj(a[i]) * b[i]
	}
	return cmplx.Abs(dot) >= 0.999*normA*normB
}
