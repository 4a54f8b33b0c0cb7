// Package current reads current-density maps exported as CSV by
// electromagnetic simulators: a nine-row preamble describing the simulation
// followed by a labeled grid of RMS current-density samples.
package current

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

var (
	// ErrFormat reports a malformed or structurally invalid input file.
	ErrFormat = errors.New("current: invalid file format")
	// ErrUnknownPort reports a port number absent from the header.
	ErrUnknownPort = errors.New("current: unknown port")
	// ErrNoBounds reports a trim request that leaves every side unbounded.
	ErrNoBounds = errors.New("current: no trim bounds")
)

// headerRows is the fixed preamble length of the export format.
const headerRows = 9

// Density provides access to one current-density export. The header and the
// grid load lazily on first use and are cached independently, so reading a
// few header fields never parses the full map.
type Density struct {
	path   string
	header *Header
	grid   *Grid
}

// Open prepares a reader for the file at path. No IO happens until a
// header or grid accessor is called.
func Open(path string) *Density {
	return &Density{path: path}
}

// Path returns the file the density is read from.
func (d *Density) Path() string {
	return d.path
}

// Load forces both the header and the grid to load now.
func (d *Density) Load() error {
	if _, err := d.Header(); err != nil {
		return err
	}
	_, err := d.Grid()
	return err
}

// Clone returns an independent copy sharing no state, useful before a Trim.
func (d *Density) Clone() *Density {
	c := &Density{path: d.path}
	if d.header != nil {
		h := *d.header
		h.Ports = append([]PortDrive(nil), d.header.Ports...)
		c.header = &h
	}
	if d.grid != nil {
		c.grid = d.grid.clone()
	}
	return c
}

// Header returns the parsed preamble, reading it on first call.
func (d *Density) Header() (*Header, error) {
	if d.header != nil {
		return d.header, nil
	}
	f, err := os.Open(d.path)
	if err != nil {
		return nil, fmt.Errorf("current: opening file: %w", err)
	}
	defer f.Close()

	r := newReader(f)
	rows := make([][]string, 0, headerRows)
	for len(rows) < headerRows {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: file ends inside the %d header rows", ErrFormat, headerRows)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFormat, err)
		}
		rows = append(rows, row)
	}

	h, err := parseHeader(rows)
	if err != nil {
		return nil, err
	}
	d.header = h
	return h, nil
}

// Grid returns the density map, reading it on first call.
func (d *Density) Grid() (*Grid, error) {
	if d.grid != nil {
		return d.grid, nil
	}
	f, err := os.Open(d.path)
	if err != nil {
		return nil, fmt.Errorf("current: opening file: %w", err)
	}
	defer f.Close()

	r := newReader(f)
	for skip := 0; skip < headerRows; skip++ {
		if _, err := r.Read(); errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: file ends inside the %d header rows", ErrFormat, headerRows)
		} else if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFormat, err)
		}
	}
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	g, err := parseGrid(rows)
	if err != nil {
		return nil, err
	}
	d.grid = g
	return g, nil
}

// newReader configures CSV parsing for the export format: rows vary in
// width and quoting is not strict.
func newReader(f *os.File) *csv.Reader {
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r
}

// Values returns the raw current-density matrix indexed (y, x).
func (d *Density) Values() ([][]float64, error) {
	g, err := d.Grid()
	if err != nil {
		return nil, err
	}
	return g.Values, nil
}

// ScaledValues returns the density rescaled to a drive power of powerDBm
// into the given impedance. The file stores values for the drive voltages
// in the header; the result is scaled by sqrt of the power ratio, using the
// largest drive voltage to derive the simulated power.
func (d *Density) ScaledValues(powerDBm, impedance float64) ([][]float64, error) {
	h, err := d.Header()
	if err != nil {
		return nil, err
	}
	g, err := d.Grid()
	if err != nil {
		return nil, err
	}
	if len(h.Ports) == 0 {
		return nil, fmt.Errorf("%w: header names no ports to derive the drive power from", ErrFormat)
	}

	vmax := h.Ports[0].Voltage
	for _, p := range h.Ports[1:] {
		if p.Voltage > vmax {
			vmax = p.Voltage
		}
	}
	simulated := vmax * vmax / impedance / 2
	watts := 1e-3 * math.Pow(10, powerDBm/10)
	scale := math.Sqrt(watts / simulated)

	out := make([][]float64, len(g.Values))
	for i, row := range g.Values {
		scaled := make([]float64, len(row))
		for j, v := range row {
			scaled[j] = v * scale
		}
		out[i] = scaled
	}
	return out, nil
}

// Trim permanently restricts the grid to the inclusive window. Pass
// math.Inf values to leave sides unbounded; at least one side must be
// bounded.
func (d *Density) Trim(xMin, xMax, yMin, yMax float64) error {
	if math.IsInf(xMin, -1) && math.IsInf(xMax, 1) && math.IsInf(yMin, -1) && math.IsInf(yMax, 1) {
		return ErrNoBounds
	}
	g, err := d.Grid()
	if err != nil {
		return err
	}
	g.trim(xMin, xMax, yMin, yMax)
	return nil
}

// At evaluates the density at a position by bilinear interpolation.
func (d *Density) At(x, y float64) (float64, error) {
	g, err := d.Grid()
	if err != nil {
		return 0, err
	}
	return g.interpolate(x, y)
}
