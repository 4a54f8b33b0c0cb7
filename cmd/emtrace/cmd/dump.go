package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"github.com/emtrace/emtrace/pkg/cmat"
)

// writeDump marshals v to stdout in the requested format.
func writeDump(v any, format string) error {
	switch format {
	case "yaml", "yml":
		out, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		_, err = os.Stdout.Write(out)
		return err
	case "json":
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		out = append(out, '\n')
		_, err = os.Stdout.Write(out)
		return err
	default:
		return fmt.Errorf("unknown output format: %s (supported: yaml, json)", format)
	}
}

// formatComplex renders a complex value as Go literal text, e.g. "(0.9+0.1i)".
// complex128 has no JSON or YAML encoding, so dumps carry these strings.
func formatComplex(v complex128) string {
	return strconv.FormatComplex(v, 'g', -1, 128)
}

func complexSlice(vals []complex128) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = formatComplex(v)
	}
	return out
}

func complexMatrix(m *cmat.Dense) [][]string {
	out := make([][]string, m.Rows)
	for i := 0; i < m.Rows; i++ {
		row := make([]string, m.Cols)
		for j := 0; j < m.Cols; j++ {
			row[j] = formatComplex(m.At(i, j))
		}
		out[i] = row
	}
	return out
}

func realMatrix(m *mat.SymDense) [][]float64 {
	n, _ := m.Dims()
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, n)
		for j := 0; j < n; j++ {
			row[j] = m.At(i, j)
		}
		out[i] = row
	}
	return out
}

func printComplexMatrix(m *cmat.Dense) {
	for i := 0; i < m.Rows; i++ {
		fmt.Printf(" ")
		for j := 0; j < m.Cols; j++ {
			fmt.Printf(" %24s", formatComplex(m.At(i, j)))
		}
		fmt.Println()
	}
}

// formatFrequency picks an engineering unit for a frequency in Hz.
func formatFrequency(hz float64) string {
	switch {
	case hz >= 1e9:
		return fmt.Sprintf("%g GHz", hz/1e9)
	case hz >= 1e6:
		return fmt.Sprintf("%g MHz", hz/1e6)
	case hz >= 1e3:
		return fmt.Sprintf("%g kHz", hz/1e3)
	}
	return fmt.Sprintf("%g Hz", hz)
}
