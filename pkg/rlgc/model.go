// Package rlgc reads coupled transmission-line parameter files (per-unit-
// length R, L, G, C matrices over frequency) written by electromagnetic
// simulators and derives the propagation modes: complex propagation
// constants, characteristic impedances and effective relative permittivity.
package rlgc

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/emtrace/emtrace/internal/consts"
	"github.com/emtrace/emtrace/pkg/cmat"
)

var (
	// ErrFormat reports a malformed or structurally invalid input file.
	ErrFormat = errors.New("rlgc: invalid file format")
	// ErrNotImplemented reports a recognized dialect that has no decoder.
	ErrNotImplemented = errors.New("rlgc: dialect not implemented")
)

// Dialect identifies the on-disk flavor of a coupled-line parameter file.
type Dialect int

const (
	DialectSpectre Dialect = iota
	DialectHSPICE
)

var dialectNames = map[Dialect]string{
	DialectSpectre: "spectre",
	DialectHSPICE:  "hspice",
}

func (d Dialect) String() string {
	if name, ok := dialectNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Dialect(%d)", int(d))
}

// ParseDialect maps a dialect name such as "spectre" to its Dialect value.
// Matching is case-insensitive.
func ParseDialect(name string) (Dialect, error) {
	lower := strings.ToLower(name)
	for d, n := range dialectNames {
		if n == lower {
			return d, nil
		}
	}
	names := make([]string, 0, len(dialectNames))
	for _, n := range dialectNames {
		names = append(names, n)
	}
	sort.Strings(names)
	return 0, fmt.Errorf("%w: unknown dialect %q (use one of %s)", ErrFormat, name, strings.Join(names, ", "))
}

// Model holds the per-unit-length line parameters of N coupled transmission
// lines together with the quantities derived from them. All slices have one
// entry per frequency point. Treat it as read-only after construction.
type Model struct {
	Frequencies []float64 // Hz
	Lines       int       // number of coupled conductors

	Inductance  []*mat.SymDense // L, H/m
	Resistance  []*mat.SymDense // R, Ohm/m
	Capacitance []*mat.SymDense // C, F/m
	Conductance []*mat.SymDense // G, S/m

	Impedance  []*cmat.Dense // Z = R + jwL
	Admittance []*cmat.Dense // Y = G + jwC

	// PropagationConstant holds the modal gamma values, the principal
	// square roots of the eigenvalues of Y*Z, sorted ascending by real
	// part with the imaginary part as tie-break. PropagationBasis holds
	// the matching eigenvectors as columns.
	PropagationConstant [][]complex128
	PropagationBasis    []*cmat.Dense

	// CharacteristicImpedanceMatrix is Z * T * diag(1/gamma) * T^-1 with T
	// the propagation basis. CharacteristicImpedance and ImpedanceBasis
	// are its eigenvalues and eigenvectors, sorted the same way.
	CharacteristicImpedanceMatrix []*cmat.Dense
	CharacteristicImpedance       [][]complex128
	ImpedanceBasis                []*cmat.Dense

	// EffectiveRelativePermittivity per mode, (gamma / (2j*pi*f*sqrt(e0*u0)))^2.
	EffectiveRelativePermittivity [][]complex128
}

// Points returns the number of frequency points.
func (m *Model) Points() int {
	return len(m.Frequencies)
}

// NewModel derives the modal quantities from raw per-unit-length matrices.
// All four slices must hold one symmetric matrix of the same order per
// frequency.
func NewModel(frequencies []float64, inductance, resistance, capacitance, conductance []*mat.SymDense) (*Model, error) {
	points := len(frequencies)
	if len(inductance) != points || len(resistance) != points ||
		len(capacitance) != points || len(conductance) != points {
		return nil, fmt.Errorf("rlgc: parameter matrix counts do not match %d frequency points", points)
	}

	m := &Model{
		Frequencies: frequencies,
		Inductance:  inductance,
		Resistance:  resistance,
		Capacitance: capacitance,
		Conductance: conductance,
	}
	if points == 0 {
		return m, nil
	}
	m.Lines, _ = inductance[0].Dims()

	for p := 0; p < points; p++ {
		if err := m.derivePoint(p); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// derivePoint computes all frequency-dependent quantities at point p.
func (m *Model) derivePoint(p int) error {
	n := m.Lines
	f := m.Frequencies[p]
	omega := 2 * math.Pi * f

	for _, sym := range []*mat.SymDense{m.Inductance[p], m.Resistance[p], m.Capacitance[p], m.Conductance[p]} {
		if r, _ := sym.Dims(); r != n {
			return fmt.Errorf("rlgc: matrix order %d at %g Hz does not match %d lines", r, f, n)
		}
	}

	z := cmat.NewDense(n, n)
	y := cmat.NewDense(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			z.Set(i, j, complex(m.Resistance[p].At(i, j), omega*m.Inductance[p].At(i, j)))
			y.Set(i, j, complex(m.Conductance[p].At(i, j), omega*m.Capacitance[p].At(i, j)))
		}
	}
	m.Impedance = append(m.Impedance, z)
	m.Admittance = append(m.Admittance, y)

	// Modal decomposition of Y*Z gives gamma^2 and the voltage basis.
	gammaSq, basis, err := cmat.Eig(cmat.Mul(y, z))
	if err != nil {
		return fmt.Errorf("rlgc: propagation eigenvalues at %g Hz: %w", f, err)
	}
	cmat.SortEigen(gammaSq, basis)

	gamma := make([]complex128, n)
	invGamma := make([]complex128, n)
	for k := 0; k < n; k++ {
		gamma[k] = cmplx.Sqrt(gammaSq[k])
		invGamma[k] = 1 / gamma[k]
	}
	m.PropagationConstant = append(m.PropagationConstant, gamma)
	m.PropagationBasis = append(m.PropagationBasis, basis)

	basisInv, err := cmat.Inverse(basis)
	if err != nil {
		return fmt.Errorf("rlgc: propagation basis at %g Hz: %w", f, err)
	}
	zc := cmat.Mul(cmat.Mul(cmat.Mul(z, basis), cmat.Diag(invGamma)), basisInv)
	m.CharacteristicImpedanceMatrix = append(m.CharacteristicImpedanceMatrix, zc)

	zcValues, zcBasis, err := cmat.Eig(zc)
	if err != nil {
		return fmt.Errorf("rlgc: characteristic impedance eigenvalues at %g Hz: %w", f, err)
	}
	cmat.SortEigen(zcValues, zcBasis)
	m.CharacteristicImpedance = append(m.CharacteristicImpedance, zcValues)
	m.ImpedanceBasis = append(m.ImpedanceBasis, zcBasis)

	// gamma = 2j*pi*f*sqrt(eps_eff)/c0 rearranged for eps_eff.
	denom := complex(0, 2*math.Pi*f*math.Sqrt(consts.Epsilon0*consts.Mu0))
	eps := make([]complex128, n)
	for k := 0; k < n; k++ {
		ratio := gamma[k] / denom
		eps[k] = ratio * ratio
	}
	m.EffectiveRelativePermittivity = append(m.EffectiveRelativePermittivity, eps)
	return nil
}
