package current

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Grid holds the sampled current-density map. X runs along the columns of
// Values and Y along the rows, in the header's position units. Positions may
// run in either direction but must be monotonic for interpolation.
type Grid struct {
	X      []float64
	Y      []float64
	Values [][]float64 // Values[iy][ix]
}

// parseGrid decodes the rows after the preamble. The first row carries a
// label cell followed by the x positions; later rows carry a y position and
// one value per x. Every row ends with an empty cell from the terminal
// comma, which is dropped. Cells that fail to parse become NaN, matching
// how absent metal is exported.
func parseGrid(rows [][]string) (*Grid, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no grid rows after the header", ErrFormat)
	}
	width := len(rows[0])
	if width < 2 {
		return nil, fmt.Errorf("%w: grid rows need a label column and data", ErrFormat)
	}
	g := &Grid{}
	for r, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: grid row %d has %d columns, want %d", ErrFormat, r, len(row), width)
		}
		row = row[:width-1] // drop the empty cell after the last comma
		if r == 0 {
			for _, c := range row[1:] {
				g.X = append(g.X, gridValue(c))
			}
			continue
		}
		g.Y = append(g.Y, gridValue(row[0]))
		vals := make([]float64, len(row)-1)
		for i, c := range row[1:] {
			vals[i] = gridValue(c)
		}
		g.Values = append(g.Values, vals)
	}
	return g, nil
}

// gridValue parses one data cell, mapping blanks and labels to NaN.
func gridValue(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// clone returns an independent copy of the grid.
func (g *Grid) clone() *Grid {
	c := &Grid{
		X: append([]float64(nil), g.X...),
		Y: append([]float64(nil), g.Y...),
	}
	c.Values = make([][]float64, len(g.Values))
	for i, row := range g.Values {
		c.Values[i] = append([]float64(nil), row...)
	}
	return c
}

// trim restricts the grid to the inclusive coordinate window.
func (g *Grid) trim(xMin, xMax, yMin, yMax float64) {
	keepX := keepIndices(g.X, xMin, xMax)
	keepY := keepIndices(g.Y, yMin, yMax)

	g.X = pick(g.X, keepX)
	g.Y = pick(g.Y, keepY)

	values := make([][]float64, len(keepY))
	for i, iy := range keepY {
		values[i] = pick(g.Values[iy], keepX)
	}
	g.Values = values
}

func keepIndices(coords []float64, min, max float64) []int {
	var keep []int
	for i, v := range coords {
		if v >= min && v <= max {
			keep = append(keep, i)
		}
	}
	return keep
}

func pick(vals []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = vals[j]
	}
	return out
}

// interpolate evaluates the grid at (x, y) bilinearly.
func (g *Grid) interpolate(x, y float64) (float64, error) {
	ix, tx, ok := bracket(g.X, x)
	if !ok {
		return 0, fmt.Errorf("current: x position %g is outside the grid", x)
	}
	iy, ty, ok := bracket(g.Y, y)
	if !ok {
		return 0, fmt.Errorf("current: y position %g is outside the grid", y)
	}
	ix2, iy2 := ix, iy
	if ix+1 < len(g.X) {
		ix2 = ix + 1
	}
	if iy+1 < len(g.Y) {
		iy2 = iy + 1
	}
	top := g.Values[iy][ix]*(1-tx) + g.Values[iy][ix2]*tx
	bottom := g.Values[iy2][ix]*(1-tx) + g.Values[iy2][ix2]*tx
	return top*(1-ty) + bottom*ty, nil
}

// bracket finds the interval of coords containing v and the fractional
// position within it. Coordinates may run in either direction.
func bracket(coords []float64, v float64) (int, float64, bool) {
	if len(coords) == 1 && coords[0] == v {
		return 0, 0, true
	}
	for i := 0; i+1 < len(coords); i++ {
		a, b := coords[i], coords[i+1]
		inside := (v >= a && v <= b) || (v <= a && v >= b)
		if !inside {
			continue
		}
		span := b - a
		if span == 0 {
			return i, 0, true
		}
		return i, (v - a) / span, true
	}
	return 0, 0, false
}
