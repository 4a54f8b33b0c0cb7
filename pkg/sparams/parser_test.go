// Package sparams_test exercises the Touchstone parser against small
// hand-checked fixtures covering both file versions, every value format and
// matrix format, and the documented failure modes.
package sparams_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emtrace/emtrace/pkg/sparams"
)

// assertComplexClose checks both parts of a complex value within tol.
func assertComplexClose(t *testing.T, want, got complex128, tol float64, msg string) {
	t.Helper()
	assert.InDelta(t, real(want), real(got), tol, "%s: real part", msg)
	assert.InDelta(t, imag(want), imag(got), tol, "%s: imaginary part", msg)
}

const version1TwoPort = `! Example version 1 two-port file
# ghz s ma r 50
1.0  0.5 0.0   0.9 90.0   0.8 -90.0   0.4 180.0
2.0  0.6 0.0   0.95 90.0  0.85 -90.0  0.45 180.0
`

func TestParseTouchstone_Version1TwoPort(t *testing.T) {
	t.Parallel()

	n, err := sparams.ParseTouchstone(strings.NewReader(version1TwoPort), ".s2p")
	require.NoError(t, err, "well-formed version 1 file must parse")

	assert.Equal(t, 2, n.Ports, "port count comes from the extension")
	assert.Equal(t, sparams.KindS, n.Kind, "option line declares S parameters")
	assert.InDelta(t, 1.0, n.Version, 1e-12, "undeclared version defaults to 1")
	assert.InDelta(t, 50.0, n.RefImpedance, 1e-12, "reference impedance from option line")
	require.Equal(t, 2, n.Points(), "two frequency points")
	assert.InDelta(t, 1.0, n.Frequencies[0], 1e-12, "frequency already in GHz")
	assert.InDelta(t, 2.0, n.Frequencies[1], 1e-12, "second frequency")

	// Version 1 two-port data is stored S11 S21 S12 S22, so the matrix is
	// transposed relative to the on-disk pair order.
	m := n.Matrices[0]
	assertComplexClose(t, 0.5, m.At(0, 0), 1e-9, "S11")
	assertComplexClose(t, complex(0, -0.8), m.At(0, 1), 1e-9, "S12 is the third pair on disk")
	assertComplexClose(t, complex(0, 0.9), m.At(1, 0), 1e-9, "S21 is the second pair on disk")
	assertComplexClose(t, -0.4, m.At(1, 1), 1e-9, "S22")
}

const version2RealImag = `[Version] 2.0
# hz s ri r 50
[Number of Ports] 2
[Two-Port Data Order] 12_21
[Number of Frequencies] 2
[Matrix Format] Full
[Network Data]
1.0e9   0.1 0.2   0.3 0.4   0.5 0.6   0.7 0.8
2.0e9   0.11 0.21   0.31 0.41   0.51 0.61   0.71 0.81
[End]
`

func TestParseTouchstone_Version2FullMatrix(t *testing.T) {
	t.Parallel()

	n, err := sparams.ParseTouchstone(strings.NewReader(version2RealImag), ".ts")
	require.NoError(t, err, "well-formed version 2 file must parse")

	assert.InDelta(t, 2.0, n.Version, 1e-12, "declared version")
	assert.Equal(t, 2, n.Ports, "port count from [Number of Ports]")
	require.Equal(t, 2, n.Points(), "two frequency points")
	assert.InDelta(t, 1.0, n.Frequencies[0], 1e-12, "1e9 Hz normalizes to 1 GHz")

	// 12_21 is the natural order: pairs land row-major without a transpose.
	m := n.Matrices[0]
	assertComplexClose(t, complex(0.1, 0.2), m.At(0, 0), 1e-12, "S11")
	assertComplexClose(t, complex(0.3, 0.4), m.At(0, 1), 1e-12, "S12")
	assertComplexClose(t, complex(0.5, 0.6), m.At(1, 0), 1e-12, "S21")
	assertComplexClose(t, complex(0.7, 0.8), m.At(1, 1), 1e-12, "S22")

	last := n.Matrices[1]
	assertComplexClose(t, complex(0.71, 0.81), last.At(1, 1), 1e-12, "last point S22")
}

const version2Upper = `[Version] 2.0
[Number of Ports] 2
[Two-Port Data Order] 21_12
[Matrix Format] Upper
# ghz s ri
[Network Data]
1.0  1.0 0.0  2.0 1.0  3.0 0.0
[End]
`

func TestParseTouchstone_UpperTriangle(t *testing.T) {
	t.Parallel()

	n, err := sparams.ParseTouchstone(strings.NewReader(version2Upper), ".ts")
	require.NoError(t, err, "upper-triangle file must parse")
	require.Equal(t, 1, n.Points(), "single frequency point")

	// Rows hold f then the upper triangle S11 S12 S22; the matrix comes
	// back symmetric, so the 21_12 transpose changes nothing.
	m := n.Matrices[0]
	assertComplexClose(t, 1.0, m.At(0, 0), 1e-12, "S11")
	assertComplexClose(t, complex(2, 1), m.At(0, 1), 1e-12, "S12 from triangle")
	assertComplexClose(t, complex(2, 1), m.At(1, 0), 1e-12, "S21 mirrored")
	assertComplexClose(t, 3.0, m.At(1, 1), 1e-12, "S22")
}

const version2Lower = `[Version] 2.0
[Number of Ports] 3
[Matrix Format] lower
# ghz y ri
[Network Data]
2.0  1 0  2 0  3 0  4 0  5 0  6 0
[End]
`

func TestParseTouchstone_LowerTriangle(t *testing.T) {
	t.Parallel()

	n, err := sparams.ParseTouchstone(strings.NewReader(version2Lower), ".ts")
	require.NoError(t, err, "lower-triangle file must parse")
	assert.Equal(t, sparams.KindY, n.Kind, "option line declares Y parameters")
	require.Equal(t, 1, n.Points(), "single frequency point")

	// Lower triangle order is (0,0) (1,0) (1,1) (2,0) (2,1) (2,2).
	m := n.Matrices[0]
	assertComplexClose(t, 1, m.At(0, 0), 1e-12, "Y11")
	assertComplexClose(t, 2, m.At(1, 0), 1e-12, "Y21")
	assertComplexClose(t, 3, m.At(1, 1), 1e-12, "Y22")
	assertComplexClose(t, 4, m.At(2, 0), 1e-12, "Y31")
	assertComplexClose(t, 5, m.At(2, 1), 1e-12, "Y32")
	assertComplexClose(t, 6, m.At(2, 2), 1e-12, "Y33")
	assertComplexClose(t, 2, m.At(0, 1), 1e-12, "Y12 mirrored from Y21")
	assertComplexClose(t, 4, m.At(0, 2), 1e-12, "Y13 mirrored from Y31")
}

func TestParseTouchstone_DecibelFormat(t *testing.T) {
	t.Parallel()

	const file = `# MHz Z DB R 75
100  6.0205999132796239  90.0
`
	n, err := sparams.ParseTouchstone(strings.NewReader(file), ".s1p")
	require.NoError(t, err, "dB format file must parse")

	assert.Equal(t, sparams.KindZ, n.Kind, "option line declares Z parameters")
	assert.InDelta(t, 75.0, n.RefImpedance, 1e-12, "override impedance")
	require.Equal(t, 1, n.Points(), "single point")
	assert.InDelta(t, 0.1, n.Frequencies[0], 1e-12, "100 MHz is 0.1 GHz")

	// 20*log10(2) dB at 90 degrees is 2i.
	assertComplexClose(t, complex(0, 2), n.Matrices[0].At(0, 0), 1e-9, "dB magnitude and angle")
}

func TestParseTouchstone_NoiseSuffixDropped(t *testing.T) {
	t.Parallel()

	// Two frequency resets: network data, a stale block, then the real
	// final sweep. Only the run after the last decrease survives.
	const file = `# ghz s ri
1.0  0.1 0.0
2.0  0.2 0.0
1.0  9.0 9.0
1.5  9.5 9.5
0.5  0.3 0.0
0.7  0.4 0.0
`
	n, err := sparams.ParseTouchstone(strings.NewReader(file), ".s1p")
	require.NoError(t, err, "file with trailing blocks must parse")

	require.Equal(t, 2, n.Points(), "only the final monotonic run remains")
	assert.InDelta(t, 0.5, n.Frequencies[0], 1e-12, "first kept frequency")
	assert.InDelta(t, 0.7, n.Frequencies[1], 1e-12, "second kept frequency")
	assertComplexClose(t, 0.3, n.Matrices[0].At(0, 0), 1e-12, "first kept value")
	assertComplexClose(t, 0.4, n.Matrices[1].At(0, 0), 1e-12, "second kept value")
}

func TestParseTouchstone_DefaultsWithoutOptionLine(t *testing.T) {
	t.Parallel()

	// No # line at all: ghz s ma r 50 apply.
	const file = `1.0  1.0 0.0
`
	n, err := sparams.ParseTouchstone(strings.NewReader(file), ".s1p")
	require.NoError(t, err, "option line is optional")
	assert.Equal(t, sparams.KindS, n.Kind, "default parameter type")
	assert.InDelta(t, 50.0, n.RefImpedance, 1e-12, "default impedance")
	assertComplexClose(t, 1.0, n.Matrices[0].At(0, 0), 1e-12, "magnitude-angle default")
}

func TestParseTouchstone_LastOptionLineWins(t *testing.T) {
	t.Parallel()

	const file = `# ghz s ma
# mhz s ri
1000  0.25 0.5
`
	n, err := sparams.ParseTouchstone(strings.NewReader(file), ".s1p")
	require.NoError(t, err, "repeated option lines are allowed")
	assert.InDelta(t, 1.0, n.Frequencies[0], 1e-12, "unit from the last option line")
	assertComplexClose(t, complex(0.25, 0.5), n.Matrices[0].At(0, 0), 1e-12, "format from the last option line")
}

func TestParseTouchstone_CaseInsensitive(t *testing.T) {
	t.Parallel()

	const file = `[VERSION] 2.0
[NUMBER OF PORTS] 1
# GHZ S RI R 50
[NETWORK DATA]
1.0  0.5 0.5
[END]
`
	n, err := sparams.ParseTouchstone(strings.NewReader(file), ".TS")
	require.NoError(t, err, "keywords and extension match case-insensitively")
	assert.Equal(t, 1, n.Ports, "port count from uppercase directive")
	assertComplexClose(t, complex(0.5, 0.5), n.Matrices[0].At(0, 0), 1e-12, "data parsed")
}

func TestParseTouchstone_EmptyDataIsValid(t *testing.T) {
	t.Parallel()

	const file = `! nothing but commentary
# ghz s ma r 50
`
	n, err := sparams.ParseTouchstone(strings.NewReader(file), ".s2p")
	require.NoError(t, err, "a file with no data rows parses to an empty sweep")
	assert.Equal(t, 0, n.Points(), "no frequency points")
}

func TestParseTouchstone_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		file string
		ext  string
	}{
		{"BadExtension", "# ghz s ma\n", ".txt"},
		{"ZeroPortExtension", "# ghz s ma\n", ".s0p"},
		{"UndeclaredPortCount", "# ghz s ma\n1.0 0.5 0.0\n", ".ts"},
		{"RaggedValues", "# ghz s ri\n1.0 0.5 0.0\n2.0 0.1\n", ".s1p"},
		{"NonNumericValue", "# ghz s ri\n1.0 бум 0.0\n", ".s1p"},
		{"UnknownDirective", "[Reference] 50\n# ghz s ri\n1.0 0.5 0.0\n", ".s1p"},
		{"UnknownMatrixFormat", "[Version] 2.0\n[Number of Ports] 1\n[Matrix Format] banded\n", ".ts"},
		{"UnknownUnit", "# thz s ri\n1.0 0.5 0.0\n", ".s1p"},
		{"UnknownParameterType", "# ghz g ri\n1.0 0.5 0.0\n", ".s1p"},
		{"UnknownValueFormat", "# ghz s complex\n1.0 0.5 0.0\n", ".s1p"},
		{"BadVersionArgument", "[Version] two\n", ".s1p"},
		{"BadPortArgument", "[Number of Ports] many\n", ".ts"},
		{"BadImpedance", "# ghz s ri r fifty\n1.0 0.5 0.0\n", ".s1p"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := sparams.ParseTouchstone(strings.NewReader(tc.file), tc.ext)
			require.ErrorIs(t, err, sparams.ErrFormat, "malformed input must report ErrFormat")
		})
	}
}

func TestParseTouchstone_MixedModeUnsupported(t *testing.T) {
	t.Parallel()

	const file = `[Version] 2.0
[Number of Ports] 2
[Mixed-Mode Order] D1,2 C1,2
`
	_, err := sparams.ParseTouchstone(strings.NewReader(file), ".ts")
	require.ErrorIs(t, err, sparams.ErrUnsupported, "mixed-mode data is rejected")
	require.ErrorIs(t, err, sparams.ErrFormat, "ErrUnsupported also matches ErrFormat")
}

func TestLoadTouchstone_FromDisk(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "example.s2p")
	require.NoError(t, os.WriteFile(path, []byte(version1TwoPort), 0o644), "writing fixture")

	n, err := sparams.LoadTouchstone(path)
	require.NoError(t, err, "loading from disk")
	assert.Equal(t, 2, n.Ports, "port count from the file name")

	viaDispatch, err := sparams.Load(path, sparams.DialectTouchstone)
	require.NoError(t, err, "dialect dispatch to the Touchstone decoder")
	assert.Equal(t, n.Points(), viaDispatch.Points(), "both paths parse the same file")
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := sparams.LoadTouchstone(filepath.Join(t.TempDir(), "missing.s2p"))
	require.Error(t, err, "missing file reports the open error")
	require.ErrorIs(t, err, os.ErrNotExist, "open error is preserved in the chain")
}

func TestLoad_UnimplementedDialects(t *testing.T) {
	t.Parallel()

	dialects := []sparams.Dialect{
		sparams.DialectDatabank,
		sparams.DialectCadence,
		sparams.DialectSpreadsheet,
		sparams.DialectMDIFS2P,
		sparams.DialectMDIFEBridge,
	}
	for _, d := range dialects {
		_, err := sparams.Load("ignored.dat", d)
		require.ErrorIs(t, err, sparams.ErrNotImplemented, "dialect %s has no decoder yet", d)
	}
}

func TestDialect_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "touchstone", sparams.DialectTouchstone.String(), "known dialect name")
	assert.Equal(t, "mdif-ebridge", sparams.DialectMDIFEBridge.String(), "hyphenated dialect name")
	assert.Equal(t, "S", sparams.KindS.String(), "parameter kind name")
}

func TestParseDialect(t *testing.T) {
	t.Parallel()

	d, err := sparams.ParseDialect("touchstone")
	require.NoError(t, err, "known dialect name")
	assert.Equal(t, sparams.DialectTouchstone, d, "name maps to its dialect")

	d, err = sparams.ParseDialect("MDIF-EBridge")
	require.NoError(t, err, "matching ignores case")
	assert.Equal(t, sparams.DialectMDIFEBridge, d, "mixed-case name maps to its dialect")

	_, err = sparams.ParseDialect("citi")
	require.ErrorIs(t, err, sparams.ErrFormat, "unknown dialect name")
	assert.Contains(t, err.Error(), "touchstone", "error lists the valid names")
}
