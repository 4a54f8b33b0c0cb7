// Package sparams reads frequency-domain network-parameter files (S, Y, or
// Z parameters) written by electromagnetic simulators. The Touchstone
// dialect (.sNp and .ts, versions 1.x and 2.x) is fully supported; the other
// historical dialects are recognized but not implemented.
package sparams

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/emtrace/emtrace/pkg/cmat"
)

var (
	// ErrFormat reports a malformed or structurally invalid input file.
	ErrFormat = errors.New("sparams: invalid file format")
	// ErrUnsupported reports a declared format feature the parser does not
	// handle. It wraps ErrFormat so either sentinel matches.
	ErrUnsupported = fmt.Errorf("%w: unsupported feature", ErrFormat)
	// ErrNotImplemented reports a recognized dialect that has no decoder.
	ErrNotImplemented = errors.New("sparams: dialect not implemented")
)

// ParameterKind identifies which network parameter a file stores.
type ParameterKind int

const (
	KindS ParameterKind = iota
	KindY
	KindZ
)

var kindNames = map[ParameterKind]string{
	KindS: "S",
	KindY: "Y",
	KindZ: "Z",
}

func (k ParameterKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ParameterKind(%d)", int(k))
}

// Dialect identifies the on-disk flavor of a network-parameter file.
type Dialect int

const (
	DialectTouchstone Dialect = iota
	DialectDatabank
	DialectCadence
	DialectSpreadsheet
	DialectMDIFS2P
	DialectMDIFEBridge
)

var dialectNames = map[Dialect]string{
	DialectTouchstone:  "touchstone",
	DialectDatabank:    "databank",
	DialectCadence:     "cadence",
	DialectSpreadsheet: "spreadsheet",
	DialectMDIFS2P:     "mdif-s2p",
	DialectMDIFEBridge: "mdif-ebridge",
}

func (d Dialect) String() string {
	if name, ok := dialectNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Dialect(%d)", int(d))
}

// ParseDialect maps a dialect name to its constant.
func ParseDialect(name string) (Dialect, error) {
	want := strings.ToLower(name)
	for d, n := range dialectNames {
		if n == want {
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

// Network holds a parsed network-parameter sweep: one square Ports x Ports
// complex matrix per frequency point. Treat it as read-only after parsing.
type Network struct {
	Frequencies  []float64     // GHz, non-decreasing
	Matrices     []*cmat.Dense // one per frequency, Ports x Ports
	Kind         ParameterKind
	Ports        int
	Version      float64 // Touchstone file version, 1.0 when undeclared
	RefImpedance float64 // option-line reference impedance, unused downstream
}

// Points returns the number of frequency points.
func (n *Network) Points() int {
	return len(n.Frequencies)
}

// Load reads a network-parameter file in the given dialect. Every dialect
// except Touchstone currently fails with ErrNotImplemented.
func Load(path string, d Dialect) (*Network, error) {
	switch d {
	case DialectTouchstone:
		return LoadTouchstone(path)
	case DialectDatabank, DialectCadence, DialectSpreadsheet, DialectMDIFS2P, DialectMDIFEBridge:
		return nil, fmt.Errorf("%w: %s", ErrNotImplemented, d)
	default:
		return nil, fmt.Errorf("%w: unknown dialect %d", ErrFormat, int(d))
	}
}
