package rlgc

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"gonum.org/v1/gonum/mat"

	"github.com/emtrace/emtrace/internal/lexline"
	"github.com/emtrace/emtrace/pkg/cmat"
)

// Load reads a coupled-line parameter file in the given dialect. Only the
// Spectre dialect has a decoder.
func Load(path string, d Dialect) (*Model, error) {
	switch d {
	case DialectSpectre:
		return LoadSpectre(path)
	case DialectHSPICE:
		return nil, fmt.Errorf("%w: %s", ErrNotImplemented, d)
	default:
		return nil, fmt.Errorf("%w: unknown dialect %d", ErrFormat, int(d))
	}
}

// LoadSpectre reads a Spectre n-coupled-lines model file from disk.
func LoadSpectre(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rlgc: opening file: %w", err)
	}
	defer f.Close()
	return parseSpectre(f, filepath.Base(path))
}

// ParseSpectre reads Spectre n-coupled-lines model data from r.
//
// The file starts with a format line naming one column per upper-triangle
// entry, followed by three more header lines. Each record then spans four
// physical lines holding the upper triangles of L, R, C and G at one
// frequency. A trailing record cut short by the end of the file is dropped.
func ParseSpectre(r io.Reader) (*Model, error) {
	return parseSpectre(r, "spectre")
}

func parseSpectre(r io.Reader, name string) (*Model, error) {
	lines, err := lexline.Physical(spectreLexer, name, r, spEOL, spComment, spSpace)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	var (
		dim         int
		triangle    int
		frequencies []float64
		inductance  []*mat.SymDense
		resistance  []*mat.SymDense
		capacitance []*mat.SymDense
		conductance []*mat.SymDense
	)

	i := 0
	for i < len(lines) {
		line := lines[i]
		if len(line) == 0 {
			i++
			continue
		}

		if line[0].Type == spWord && strings.EqualFold(line[0].Value, "format") {
			columns := 0
			for _, tok := range line {
				if tok.Type == spColon {
					columns++
				}
			}
			// One colon follows the format keyword; the rest separate
			// the value columns, one per upper-triangle entry.
			d, err := cmat.TriangularDim(columns - 1)
			if err != nil {
				return nil, fmt.Errorf("%w: format line at %s: %v", ErrFormat, line[0].Pos, err)
			}
			dim = d
			triangle = dim * (dim + 1) / 2
			i += 4 // the format line and the three header lines after it
			continue
		}

		if dim == 0 {
			return nil, fmt.Errorf("%w: data at %s before the format line", ErrFormat, line[0].Pos)
		}
		if i+3 >= len(lines) {
			break // incomplete trailing record
		}

		freq, lVals, err := recordHead(line, triangle)
		if err != nil {
			return nil, err
		}
		rVals, err := recordValues(lines[i+1], triangle)
		if err != nil {
			return nil, err
		}
		cVals, err := recordValues(lines[i+2], triangle)
		if err != nil {
			return nil, err
		}
		gVals, err := recordValues(lines[i+3], triangle)
		if err != nil {
			return nil, err
		}

		frequencies = append(frequencies, freq)
		inductance = append(inductance, symFromUpper(lVals, dim))
		resistance = append(resistance, symFromUpper(rVals, dim))
		capacitance = append(capacitance, symFromUpper(cVals, dim))
		conductance = append(conductance, symFromUpper(gVals, dim))
		i += 4
	}

	if dim == 0 {
		return nil, fmt.Errorf("%w: missing format line", ErrFormat)
	}
	return NewModel(frequencies, inductance, resistance, capacitance, conductance)
}

// recordHead parses the first line of a record: a frequency, a colon, and
// the upper triangle of the inductance matrix.
func recordHead(line []lexer.Token, triangle int) (float64, []float64, error) {
	if len(line) < 2 || line[0].Type != spWord || line[1].Type != spColon {
		return 0, nil, fmt.Errorf("%w: expected 'frequency : values' at %s", ErrFormat, line[0].Pos)
	}
	freq, err := strconv.ParseFloat(line[0].Value, 64)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: failed to parse frequency %q at %s", ErrFormat, line[0].Value, line[0].Pos)
	}
	vals, err := recordValues(line[2:], triangle)
	if err != nil {
		return 0, nil, err
	}
	return freq, vals, nil
}

// recordValues parses one line of a record body: exactly triangle numeric
// values and nothing else.
func recordValues(line []lexer.Token, triangle int) ([]float64, error) {
	if len(line) == 0 {
		return nil, fmt.Errorf("%w: record is missing a parameter line", ErrFormat)
	}
	if len(line) != triangle {
		return nil, fmt.Errorf("%w: expected %d matrix values, got %d at %s", ErrFormat, triangle, len(line), line[0].Pos)
	}
	vals := make([]float64, triangle)
	for k, tok := range line {
		if tok.Type != spWord {
			return nil, fmt.Errorf("%w: expected a numeric value, got %q at %s", ErrFormat, tok.Value, tok.Pos)
		}
		v, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to parse matrix value %q at %s", ErrFormat, tok.Value, tok.Pos)
		}
		vals[k] = v
	}
	return vals, nil
}

// symFromUpper builds a symmetric matrix from row-major upper-triangle
// values.
func symFromUpper(vals []float64, n int) *mat.SymDense {
	m := mat.NewSymDense(n, nil)
	idx := 0
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			m.SetSym(i, j, vals[idx])
			idx++
		}
	}
	return m
}
