package sparams

import (
	"fmt"
	"io"
	"math"
	"math/cmplx"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/emtrace/emtrace/internal/lexline"
	"github.com/emtrace/emtrace/pkg/cmat"
)

// snpExtension matches version 1 extensions of the form .sNp, which encode
// the port count in the file name.
var snpExtension = regexp.MustCompile(`^\.s([0-9]+)p$`)

// frequencyScale converts an option-line unit into Hz.
var frequencyScale = map[string]float64{
	"hz":  1.0,
	"khz": 1e3,
	"mhz": 1e6,
	"ghz": 1e9,
}

type valueFormat int

const (
	formatMA valueFormat = iota // magnitude and angle in degrees
	formatDB                    // dB magnitude and angle in degrees
	formatRI                    // real and imaginary parts
)

type matrixFormat int

const (
	matrixFull matrixFormat = iota
	matrixUpper
	matrixLower
)

// touchstoneState accumulates directives, options and raw values while
// scanning the file. Later directives and option lines overwrite earlier
// ones; everything is applied once the whole file has been read.
type touchstoneState struct {
	ports        int // 0 until declared by the extension or a directive
	version      float64
	flip         bool
	freqScale    float64
	kind         ParameterKind
	valueFormat  valueFormat
	matrixFormat matrixFormat
	refImpedance float64
	values       []float64
}

// LoadTouchstone reads a Touchstone file (.sNp or .ts) from disk.
func LoadTouchstone(path string) (*Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sparams: opening file: %w", err)
	}
	defer f.Close()
	return parseTouchstone(f, filepath.Ext(path), filepath.Base(path))
}

// ParseTouchstone reads Touchstone data from r. The file extension is passed
// separately because version 1 files encode the port count there; use ".ts"
// for version 2 files that declare [Number of Ports] inline.
func ParseTouchstone(r io.Reader, ext string) (*Network, error) {
	return parseTouchstone(r, ext, "touchstone")
}

func parseTouchstone(r io.Reader, ext, name string) (*Network, error) {
	ports, err := portsFromExtension(ext)
	if err != nil {
		return nil, err
	}

	st := &touchstoneState{
		ports:        ports,
		version:      1.0,
		freqScale:    frequencyScale["ghz"],
		kind:         KindS,
		valueFormat:  formatMA,
		matrixFormat: matrixFull,
		refImpedance: 50.0,
	}

	lines, err := lexline.Lines(touchstoneLexer, name, r, tsEOL, tsComment, tsSpace)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	for _, line := range lines {
		first := line[0]
		switch first.Type {
		case tsDirective:
			if err := st.directive(first, line[1:]); err != nil {
				return nil, err
			}
		case tsHash:
			if err := st.options(line[1:]); err != nil {
				return nil, err
			}
		default:
			for _, tok := range line {
				v, err := strconv.ParseFloat(tok.Value, 64)
				if err != nil {
					return nil, fmt.Errorf("%w: expected a numeric value, got %q at %s", ErrFormat, tok.Value, tok.Pos)
				}
				st.values = append(st.values, v)
			}
		}
	}

	return st.build()
}

// portsFromExtension decodes the port count from a .sNp extension. A .ts
// extension returns 0: version 2 files declare the count in a directive.
func portsFromExtension(ext string) (int, error) {
	ext = strings.ToLower(ext)
	if ext == ".ts" {
		return 0, nil
	}
	m := snpExtension.FindStringSubmatch(ext)
	if m == nil {
		return 0, fmt.Errorf("%w: file extension %q is not a Touchstone extension (.sNp or .ts)", ErrFormat, ext)
	}
	ports, err := strconv.Atoi(m[1])
	if err != nil || ports < 1 {
		return 0, fmt.Errorf("%w: file extension %q does not encode a valid port count", ErrFormat, ext)
	}
	return ports, nil
}

// directive applies one bracketed keyword line.
func (st *touchstoneState) directive(tok lexer.Token, rest []lexer.Token) error {
	keyword := strings.ToLower(tok.Value[1 : len(tok.Value)-1])
	args := make([]string, len(rest))
	for i, t := range rest {
		args[i] = strings.ToLower(t.Value)
	}
	arg := strings.Join(args, " ")

	switch keyword {
	case "version":
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return fmt.Errorf("%w: failed to parse [Version] argument %q at %s", ErrFormat, arg, tok.Pos)
		}
		st.version = v
	case "number of ports":
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 {
			return fmt.Errorf("%w: failed to parse [Number of Ports] argument %q at %s", ErrFormat, arg, tok.Pos)
		}
		st.ports = n
	case "two-port data order":
		// Only the swapped order needs action; 12_21 is the natural order.
		if arg == "21_12" {
			st.flip = true
		}
	case "number of frequencies":
		// Informational; the row count is derived from the data itself.
	case "matrix format":
		switch arg {
		case "full":
			st.matrixFormat = matrixFull
		case "upper":
			st.matrixFormat = matrixUpper
		case "lower":
			st.matrixFormat = matrixLower
		default:
			return fmt.Errorf("%w: unknown [Matrix Format] %q at %s", ErrFormat, arg, tok.Pos)
		}
	case "mixed-mode order":
		return fmt.Errorf("%w: mixed-mode order data at %s", ErrUnsupported, tok.Pos)
	case "network data", "end":
		// Markers only.
	default:
		return fmt.Errorf("%w: unknown directive %q at %s", ErrFormat, tok.Value, tok.Pos)
	}
	return nil
}

// options applies a # option line. Missing fields take the Touchstone
// defaults, so "# mhz" and a bare "#" are both valid.
func (st *touchstoneState) options(rest []lexer.Token) error {
	fields := []string{"ghz", "s", "ma", "r", "50"}
	for i, t := range rest {
		if i >= len(fields) {
			break // trailing fields are ignored
		}
		fields[i] = strings.ToLower(t.Value)
	}

	scale, ok := frequencyScale[fields[0]]
	if !ok {
		return fmt.Errorf("%w: unknown frequency unit %q in option line", ErrFormat, fields[0])
	}
	st.freqScale = scale

	switch fields[1] {
	case "s":
		st.kind = KindS
	case "y":
		st.kind = KindY
	case "z":
		st.kind = KindZ
	default:
		return fmt.Errorf("%w: unknown parameter type %q in option line", ErrFormat, fields[1])
	}

	switch fields[2] {
	case "ma":
		st.valueFormat = formatMA
	case "db":
		st.valueFormat = formatDB
	case "ri":
		st.valueFormat = formatRI
	default:
		return fmt.Errorf("%w: unknown value format %q in option line", ErrFormat, fields[2])
	}

	// fields[3] is the literal "r" marker; the impedance that follows is
	// recorded but plays no further role in parsing.
	z, err := strconv.ParseFloat(fields[4], 64)
	if err != nil {
		return fmt.Errorf("%w: failed to parse reference impedance %q in option line", ErrFormat, fields[4])
	}
	st.refImpedance = z
	return nil
}

// build turns the accumulated raw values into a Network.
func (st *touchstoneState) build() (*Network, error) {
	if st.ports == 0 {
		return nil, fmt.Errorf("%w: port count was not declared by the extension or [Number of Ports]", ErrFormat)
	}

	// Version 1 two-port files store S21 before S12.
	if st.version < 2 && st.ports == 2 {
		st.flip = true
	}

	width := 2*st.ports*st.ports + 1
	if st.matrixFormat != matrixFull {
		width = st.ports*st.ports + st.ports + 1
	}
	if len(st.values)%width != 0 {
		return nil, fmt.Errorf("%w: %d values do not divide into rows of %d", ErrFormat, len(st.values), width)
	}
	rows := st.values
	points := len(rows) / width

	// A frequency decrease marks the start of another block, typically
	// noise parameters appended after the network data. Only the final
	// monotonic run is the network data.
	start := 0
	for i := 1; i < points; i++ {
		if rows[i*width] < rows[(i-1)*width] {
			start = i
		}
	}

	n := &Network{
		Kind:         st.kind,
		Ports:        st.ports,
		Version:      st.version,
		RefImpedance: st.refImpedance,
	}
	pairs := (width - 1) / 2
	z := make([]complex128, pairs)
	for p := start; p < points; p++ {
		row := rows[p*width : (p+1)*width]
		n.Frequencies = append(n.Frequencies, row[0]*st.freqScale/1e9)
		for k := 0; k < pairs; k++ {
			z[k] = st.complexValue(row[1+2*k], row[2+2*k])
		}

		var m *cmat.Dense
		var err error
		switch st.matrixFormat {
		case matrixFull:
			m = cmat.NewDense(st.ports, st.ports)
			for i := 0; i < st.ports; i++ {
				for j := 0; j < st.ports; j++ {
					m.Set(i, j, z[i*st.ports+j])
				}
			}
		case matrixUpper:
			m, err = cmat.SymmetricFromUpper(z, st.ports)
		case matrixLower:
			m, err = cmat.SymmetricFromLower(z, st.ports)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFormat, err)
		}
		if st.flip {
			m = m.T()
		}
		n.Matrices = append(n.Matrices, m)
	}
	return n, nil
}

// complexValue converts one stored value pair according to the option-line
// format. Angles are in degrees.
func (st *touchstoneState) complexValue(a, b float64) complex128 {
	switch st.valueFormat {
	case formatRI:
		return complex(a, b)
	case formatDB:
		return cmplx.Rect(math.Pow(10, a/20), b*math.Pi/180)
	default: // formatMA
		return cmplx.Rect(a, b*math.Pi/180)
	}
}
