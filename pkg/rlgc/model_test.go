package rlgc_test

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/emtrace/emtrace/internal/consts"
	"github.com/emtrace/emtrace/pkg/rlgc"
)

// assertComplexClose checks both parts of a complex value within tol.
func assertComplexClose(t *testing.T, want, got complex128, tol float64, msg string) {
	t.Helper()
	assert.InDelta(t, real(want), real(got), tol, "%s: real part", msg)
	assert.InDelta(t, imag(want), imag(got), tol, "%s: imaginary part", msg)
}

// symPair builds the symmetric 2x2 matrix [[d, o], [o, d]].
func symPair(d, o float64) *mat.SymDense {
	m := mat.NewSymDense(2, nil)
	m.SetSym(0, 0, d)
	m.SetSym(0, 1, o)
	m.SetSym(1, 1, d)
	return m
}

// TestModel_SymmetricLosslessPair checks the full modal pipeline against the
// closed-form even/odd results for a symmetric lossless pair:
//
//	gamma_e/o = jw*sqrt((L0 +/- Lm)(C0 +/- Cm))
//	Zc_e/o    = sqrt((L0 +/- Lm)/(C0 +/- Cm))
//	eps_e/o   = c^2 (L0 +/- Lm)(C0 +/- Cm)
func TestModel_SymmetricLosslessPair(t *testing.T) {
	t.Parallel()

	const (
		l0 = 3.0e-7  // H/m self inductance
		lm = 1.0e-7  // H/m mutual inductance
		c0 = 1.0e-10 // F/m self capacitance
		cm = -2.0e-11
		f  = 1.0e9
	)
	frequencies := []float64{f, 2 * f}
	l := []*mat.SymDense{symPair(l0, lm), symPair(l0, lm)}
	r := []*mat.SymDense{symPair(0, 0), symPair(0, 0)}
	c := []*mat.SymDense{symPair(c0, cm), symPair(c0, cm)}
	g := []*mat.SymDense{symPair(0, 0), symPair(0, 0)}

	m, err := rlgc.NewModel(frequencies, l, r, c, g)
	require.NoError(t, err, "lossless symmetric pair must be solvable")
	assert.Equal(t, 2, m.Lines, "two conductors")
	require.Equal(t, 2, m.Points(), "two frequency points")

	omega := 2 * math.Pi * f
	even := (l0 + lm) * (c0 + cm) // LC product of the even mode
	odd := (l0 - lm) * (c0 - cm)

	// Impedance and admittance are elementwise R + jwL and G + jwC.
	assertComplexClose(t, complex(0, omega*l0), m.Impedance[0].At(0, 0), 1e-6, "Z11")
	assertComplexClose(t, complex(0, omega*cm), m.Admittance[0].At(0, 1), 1e-16, "Y12")

	// Eigenvalues of Y*Z are -w^2*LC; the even product is larger, so the
	// even mode sorts first and its gamma is the principal square root.
	gamma := m.PropagationConstant[0]
	require.Len(t, gamma, 2, "one gamma per mode")
	assertComplexClose(t, complex(0, omega*math.Sqrt(even)), gamma[0], 1e-6, "even-mode gamma")
	assertComplexClose(t, complex(0, omega*math.Sqrt(odd)), gamma[1], 1e-6, "odd-mode gamma")
	assert.Greater(t, imag(gamma[0]), 0.0, "principal branch keeps gamma in the upper half plane")

	// The even mode pumps both lines in phase, the odd mode out of phase.
	basis := m.PropagationBasis[0]
	assertComplexClose(t, 1, basis.At(0, 0)/basis.At(1, 0), 1e-6, "even-mode vector is parallel to [1, 1]")
	assertComplexClose(t, -1, basis.At(0, 1)/basis.At(1, 1), 1e-6, "odd-mode vector is parallel to [1, -1]")

	// Zc = Z*T*diag(1/gamma)*T^-1 has the modal impedances as eigenvalues.
	zEven := math.Sqrt((l0 + lm) / (c0 + cm))
	zOdd := math.Sqrt((l0 - lm) / (c0 - cm))
	zc := m.CharacteristicImpedanceMatrix[0]
	assertComplexClose(t, complex((zEven+zOdd)/2, 0), zc.At(0, 0), 1e-6, "Zc diagonal")
	assertComplexClose(t, complex((zEven-zOdd)/2, 0), zc.At(0, 1), 1e-6, "Zc coupling term")

	// Impedance eigenvalues are sorted independently of gamma, so the
	// smaller odd-mode impedance comes first.
	zcModes := m.CharacteristicImpedance[0]
	require.Len(t, zcModes, 2, "one impedance per mode")
	assertComplexClose(t, complex(zOdd, 0), zcModes[0], 1e-6, "odd-mode impedance sorts first")
	assertComplexClose(t, complex(zEven, 0), zcModes[1], 1e-6, "even-mode impedance")

	// eps_eff follows the gamma ordering and is frequency independent for
	// an ideal TEM pair.
	c2 := 1 / (consts.Epsilon0 * consts.Mu0) // c^2
	eps := m.EffectiveRelativePermittivity[0]
	assertComplexClose(t, complex(c2*even, 0), eps[0], 1e-6, "even-mode permittivity")
	assertComplexClose(t, complex(c2*odd, 0), eps[1], 1e-6, "odd-mode permittivity")
	assertComplexClose(t, eps[0], m.EffectiveRelativePermittivity[1][0], 1e-6, "permittivity does not change with frequency")

	// gamma scales linearly with frequency for fixed L and C.
	assertComplexClose(t, 2*gamma[0], m.PropagationConstant[1][0], 1e-5, "gamma doubles with frequency")
}

// TestModel_SingleLossyLine checks a one-conductor line against direct
// scalar arithmetic, exercising the complex branch of every step.
func TestModel_SingleLossyLine(t *testing.T) {
	t.Parallel()

	const (
		rr = 2.0     // Ohm/m
		ll = 2.5e-7  // H/m
		cc = 1.0e-10 // F/m
		gg = 5.0e-4  // S/m
		f  = 5.0e8
	)
	sym := func(v float64) *mat.SymDense {
		m := mat.NewSymDense(1, nil)
		m.SetSym(0, 0, v)
		return m
	}

	m, err := rlgc.NewModel(
		[]float64{f},
		[]*mat.SymDense{sym(ll)},
		[]*mat.SymDense{sym(rr)},
		[]*mat.SymDense{sym(cc)},
		[]*mat.SymDense{sym(gg)},
	)
	require.NoError(t, err, "single line must be solvable")

	omega := 2 * math.Pi * f
	z := complex(rr, omega*ll)
	y := complex(gg, omega*cc)
	gamma := cmplx.Sqrt(y * z)
	zc := z / gamma

	assertComplexClose(t, gamma, m.PropagationConstant[0][0], 1e-9, "scalar gamma")
	assertComplexClose(t, zc, m.CharacteristicImpedance[0][0], 1e-9, "scalar characteristic impedance")
	assertComplexClose(t, zc, m.CharacteristicImpedanceMatrix[0].At(0, 0), 1e-9, "1x1 impedance matrix")

	ratio := gamma / complex(0, omega*math.Sqrt(consts.Epsilon0*consts.Mu0))
	assertComplexClose(t, ratio*ratio, m.EffectiveRelativePermittivity[0][0], 1e-9, "scalar permittivity")
}

func TestNewModel_CountMismatch(t *testing.T) {
	t.Parallel()

	one := []*mat.SymDense{mat.NewSymDense(1, nil)}
	_, err := rlgc.NewModel([]float64{1e9, 2e9}, one, one, one, one)
	require.Error(t, err, "matrix count must match the frequency count")
}

func TestNewModel_EmptySweep(t *testing.T) {
	t.Parallel()

	m, err := rlgc.NewModel(nil, nil, nil, nil, nil)
	require.NoError(t, err, "an empty sweep is valid")
	assert.Equal(t, 0, m.Points(), "no frequency points")
	assert.Equal(t, 0, m.Lines, "no conductors known")
}

func TestNewModel_OrderMismatch(t *testing.T) {
	t.Parallel()

	two := mat.NewSymDense(2, nil)
	one := mat.NewSymDense(1, nil)
	_, err := rlgc.NewModel(
		[]float64{1e9},
		[]*mat.SymDense{two},
		[]*mat.SymDense{one},
		[]*mat.SymDense{two},
		[]*mat.SymDense{two},
	)
	require.Error(t, err, "all matrices at a point must share one order")
}
