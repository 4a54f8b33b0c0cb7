package cmd

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/emtrace/emtrace/pkg/current"
)

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Surface current density operations",
	Long:  `Commands for working with exported surface current density maps`,
}

var (
	peakPower     float64
	peakImpedance float64
	peakXMin      float64
	peakXMax      float64
	peakYMin      float64
	peakYMax      float64
)

var currentInfoCmd = &cobra.Command{
	Use:   "info <csv-file>",
	Short: "Summarize a current density export",
	Long: `Load a current density export and print the simulation metadata: source
project, frequency, drive levels, grid geometry, and units.

Examples:
  emtrace current info run1_level1_jxy.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runCurrentInfo,
}

var currentPeakCmd = &cobra.Command{
	Use:   "peak <csv-file>",
	Short: "Find the peak current density",
	Long: `Scan a current density map for its highest sample, optionally after
rescaling the drives to a given input power and windowing the grid.

Examples:
  emtrace current peak run1_jxy.csv
  emtrace current peak --power -10 run1_jxy.csv
  emtrace current peak --xmin 100 --xmax 400 run1_jxy.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runCurrentPeak,
}

func init() {
	rootCmd.AddCommand(currentCmd)
	currentCmd.AddCommand(currentInfoCmd)
	currentCmd.AddCommand(currentPeakCmd)

	currentPeakCmd.Flags().Float64Var(&peakPower, "power", 0,
		"rescale drives to this input power in dBm before searching")
	currentPeakCmd.Flags().Float64Var(&peakImpedance, "impedance", 50,
		"source impedance in Ohm used with --power")
	currentPeakCmd.Flags().Float64Var(&peakXMin, "xmin", math.Inf(-1),
		"left edge of the search window, in position units")
	currentPeakCmd.Flags().Float64Var(&peakXMax, "xmax", math.Inf(1),
		"right edge of the search window, in position units")
	currentPeakCmd.Flags().Float64Var(&peakYMin, "ymin", math.Inf(-1),
		"bottom edge of the search window, in position units")
	currentPeakCmd.Flags().Float64Var(&peakYMax, "ymax", math.Inf(1),
		"top edge of the search window, in position units")
}

func runCurrentInfo(cmd *cobra.Command, args []string) error {
	filename := args[0]

	if verbose {
		fmt.Printf("Loading current density: %s\n", filename)
	}

	density := current.Open(filename)
	if err := density.Load(); err != nil {
		return fmt.Errorf("failed to parse current density file: %w", err)
	}
	header, err := density.Header()
	if err != nil {
		return err
	}
	grid, err := density.Grid()
	if err != nil {
		return err
	}

	fmt.Printf("✓ Loaded current density successfully\n")
	fmt.Printf("  Export version: %s\n", header.Version)
	fmt.Printf("  Project: %s\n", header.SourcePath)
	fmt.Printf("  Sonnet version: %s\n", header.SonnetVersion)
	fmt.Printf("  Frequency: %s\n", formatFrequency(header.Frequency))
	fmt.Printf("  Level: %s\n", header.LevelString)
	fmt.Printf("  Grid: %d x %d cells, %g x %g %s each\n",
		len(grid.X), len(grid.Y), header.DX, header.DY, header.PositionUnitName)
	fmt.Printf("  Metal area: %g %s\n", header.Area, header.AreaUnitName)
	fmt.Printf("  Current unit: %s\n", header.CurrentUnitName)
	fmt.Printf("  Ports: %d\n", len(header.Ports))
	for _, p := range header.Ports {
		fmt.Printf("    Port %d: %g V at %g deg\n", p.Port, p.Voltage, p.Phase)
	}

	mean, metal := meanDensity(grid.Values)
	fmt.Printf("  Metal cells: %d of %d\n", metal, len(grid.X)*len(grid.Y))
	if metal > 0 {
		fmt.Printf("  Mean density: %g %s\n", mean, header.CurrentUnitName)
	}
	return nil
}

func runCurrentPeak(cmd *cobra.Command, args []string) error {
	filename := args[0]

	if verbose {
		fmt.Printf("Loading current density: %s\n", filename)
	}

	density := current.Open(filename)
	if err := density.Load(); err != nil {
		return fmt.Errorf("failed to parse current density file: %w", err)
	}
	header, err := density.Header()
	if err != nil {
		return err
	}

	windowed := cmd.Flags().Changed("xmin") || cmd.Flags().Changed("xmax") ||
		cmd.Flags().Changed("ymin") || cmd.Flags().Changed("ymax")
	if windowed {
		if err := density.Trim(peakXMin, peakXMax, peakYMin, peakYMax); err != nil {
			return fmt.Errorf("failed to trim grid: %w", err)
		}
	}

	var values [][]float64
	if cmd.Flags().Changed("power") {
		values, err = density.ScaledValues(peakPower, peakImpedance)
		if err != nil {
			return fmt.Errorf("failed to rescale values: %w", err)
		}
		if verbose {
			fmt.Printf("Rescaled drives to %g dBm into %g Ohm\n", peakPower, peakImpedance)
		}
	} else {
		values, err = density.Values()
		if err != nil {
			return fmt.Errorf("failed to read grid: %w", err)
		}
	}

	grid, err := density.Grid()
	if err != nil {
		return err
	}

	peak := math.Inf(-1)
	peakIX, peakIY := -1, -1
	for iy, row := range values {
		for ix, v := range row {
			if math.IsNaN(v) {
				continue
			}
			if v > peak {
				peak, peakIX, peakIY = v, ix, iy
			}
		}
	}
	if peakIX < 0 {
		return fmt.Errorf("no metal cells in the search window")
	}

	mean, _ := meanDensity(values)
	fmt.Printf("✓ Peak current density: %g %s\n", peak, header.CurrentUnitName)
	fmt.Printf("  Position: (%g, %g) %s\n", grid.X[peakIX], grid.Y[peakIY], header.PositionUnitName)
	fmt.Printf("  Cell: column %d, row %d\n", peakIX, peakIY)
	fmt.Printf("  Mean: %g %s\n", mean, header.CurrentUnitName)
	return nil
}

// meanDensity averages the non-NaN cells and reports how many there were.
func meanDensity(values [][]float64) (float64, int) {
	sum, n := 0.0, 0
	for _, row := range values {
		for _, v := range row {
			if math.IsNaN(v) {
				continue
			}
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), n
}
