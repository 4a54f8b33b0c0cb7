package current

import (
	"fmt"
	"strconv"
	"strings"
)

// PortDrive describes the sine drive applied to one port during the
// simulation that produced the current-density map.
type PortDrive struct {
	Port    int
	Voltage float64 // V
	Phase   float64 // degrees
}

// Header holds the nine-row preamble of a current-density export. Cell
// positions are fixed by the file format.
type Header struct {
	Version          string
	SourcePath       string // project file the density was exported from
	SonnetVersion    string
	SourceFile       string
	Frequency        float64 // Hz
	Ports            []PortDrive
	LevelString      string // e.g. "1" or "2a" for thick-metal sublevels
	Level            int
	PositionUnitName string
	PositionUnit     float64 // meters per position unit
	DX               float64 // x grid step, in position units
	DY               float64 // y grid step, in position units
	Area             float64 // metal area
	AreaUnitName     string
	CurrentUnitName  string
}

// DriveVoltage returns the drive voltage applied to the given port.
func (h *Header) DriveVoltage(port int) (float64, error) {
	for _, p := range h.Ports {
		if p.Port == port {
			return p.Voltage, nil
		}
	}
	return 0, fmt.Errorf("%w: %d is not a valid port number, use one of %v", ErrUnknownPort, port, h.portNumbers())
}

// DrivePhase returns the drive phase applied to the given port.
func (h *Header) DrivePhase(port int) (float64, error) {
	for _, p := range h.Ports {
		if p.Port == port {
			return p.Phase, nil
		}
	}
	return 0, fmt.Errorf("%w: %d is not a valid port number, use one of %v", ErrUnknownPort, port, h.portNumbers())
}

func (h *Header) portNumbers() []int {
	nums := make([]int, len(h.Ports))
	for i, p := range h.Ports {
		nums[i] = p.Port
	}
	return nums
}

// parseHeader decodes the nine preamble rows.
func parseHeader(rows [][]string) (*Header, error) {
	cell := func(r, c int) (string, error) {
		if r >= len(rows) || c >= len(rows[r]) {
			return "", fmt.Errorf("%w: header row %d has no column %d", ErrFormat, r, c)
		}
		return rows[r][c], nil
	}
	number := func(r, c int) (float64, error) {
		s, err := cell(r, c)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: header row %d column %d: failed to parse number %q", ErrFormat, r, c, s)
		}
		return v, nil
	}

	h := &Header{}
	var err error
	if h.Version, err = cell(0, 0); err != nil {
		return nil, err
	}
	if h.SourcePath, err = cell(0, 2); err != nil {
		return nil, err
	}
	if h.SonnetVersion, err = cell(1, 1); err != nil {
		return nil, err
	}
	if h.SourceFile, err = cell(1, 3); err != nil {
		return nil, err
	}
	if h.Frequency, err = number(2, 1); err != nil {
		return nil, err
	}
	if err = h.parsePorts(rows[3]); err != nil {
		return nil, err
	}
	if h.LevelString, err = cell(4, 1); err != nil {
		return nil, err
	}
	levelCell, err := cell(4, 2)
	if err != nil {
		return nil, err
	}
	if h.Level, err = strconv.Atoi(strings.TrimSpace(levelCell)); err != nil {
		return nil, fmt.Errorf("%w: failed to parse level %q", ErrFormat, levelCell)
	}
	if h.PositionUnitName, err = cell(5, 1); err != nil {
		return nil, err
	}
	if h.PositionUnit, err = number(5, 2); err != nil {
		return nil, err
	}
	if h.DX, err = number(6, 1); err != nil {
		return nil, err
	}
	if h.DY, err = number(6, 4); err != nil {
		return nil, err
	}
	if h.Area, err = number(6, 9); err != nil {
		return nil, err
	}
	if h.AreaUnitName, err = cell(6, 10); err != nil {
		return nil, err
	}
	if h.CurrentUnitName, err = cell(7, 2); err != nil {
		return nil, err
	}

	// Normalize the unit spellings the exporter uses.
	if h.PositionUnitName == "UM" {
		h.PositionUnitName = "µm"
	}
	if h.CurrentUnitName == "Amps/Meter" {
		h.CurrentUnitName = "A/m"
	}
	return h, nil
}

// parsePorts scans the port row. Each drive occupies five cells starting at
// a "Port N" label, with the voltage two cells and the phase four cells
// after it.
func (h *Header) parsePorts(row []string) error {
	for i, c := range row {
		if !strings.HasPrefix(c, "Port ") {
			continue
		}
		port, err := strconv.Atoi(strings.TrimSpace(c[5:]))
		if err != nil {
			continue
		}
		if i+4 >= len(row) {
			return fmt.Errorf("%w: port row is truncated after %q", ErrFormat, c)
		}
		voltage, err := strconv.ParseFloat(strings.TrimSpace(row[i+2]), 64)
		if err != nil {
			return fmt.Errorf("%w: failed to parse voltage %q for %q", ErrFormat, row[i+2], c)
		}
		phase, err := strconv.ParseFloat(strings.TrimSpace(row[i+4]), 64)
		if err != nil {
			return fmt.Errorf("%w: failed to parse phase %q for %q", ErrFormat, row[i+4], c)
		}
		h.Ports = append(h.Ports, PortDrive{Port: port, Voltage: voltage, Phase: phase})
	}
	return nil
}
