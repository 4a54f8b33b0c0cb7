package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emtrace/emtrace/pkg/rlgc"
)

var linesCmd = &cobra.Command{
	Use:   "lines",
	Short: "Coupled transmission line operations",
	Long:  `Commands for working with coupled transmission line RLGC sweeps`,
}

var (
	lineDialectName string
	lineDumpFormat  string
)

var linesModesCmd = &cobra.Command{
	Use:   "modes <rlgc-file>",
	Short: "Show per-mode propagation data",
	Long: `Load an RLGC sweep and print the propagation constant, characteristic
impedance, and effective permittivity of every mode at every frequency.

Examples:
  emtrace lines modes coupled.out
  emtrace lines modes -v coupled.out      # all frequency points`,
	Args: cobra.ExactArgs(1),
	RunE: runLinesModes,
}

var linesDumpCmd = &cobra.Command{
	Use:   "dump <rlgc-file>",
	Short: "Dump an RLGC sweep as YAML or JSON",
	Long: `Load an RLGC sweep and write every frequency point with its line
parameter matrices and derived mode quantities to stdout.

Examples:
  emtrace lines dump coupled.out
  emtrace lines dump --format json coupled.out > coupled.json`,
	Args: cobra.ExactArgs(1),
	RunE: runLinesDump,
}

func init() {
	rootCmd.AddCommand(linesCmd)
	linesCmd.AddCommand(linesModesCmd)
	linesCmd.AddCommand(linesDumpCmd)

	linesCmd.PersistentFlags().StringVarP(&lineDialectName, "dialect", "d", "spectre",
		"input dialect (spectre, hspice)")
	linesDumpCmd.Flags().StringVarP(&lineDumpFormat, "format", "f", "yaml",
		"output format (yaml, json)")
}

func loadLineModel(filename string) (*rlgc.Model, error) {
	dialect, err := rlgc.ParseDialect(lineDialectName)
	if err != nil {
		return nil, err
	}

	if verbose {
		fmt.Printf("Loading line model: %s (%s)\n", filename, dialect)
	}

	model, err := rlgc.Load(filename, dialect)
	if err != nil {
		return nil, fmt.Errorf("failed to parse line parameter file: %w", err)
	}
	return model, nil
}

func runLinesModes(cmd *cobra.Command, args []string) error {
	model, err := loadLineModel(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("✓ Loaded line model successfully\n")
	fmt.Printf("  Lines: %d\n", model.Lines)
	fmt.Printf("  Points: %d\n", model.Points())
	if model.Points() > 0 {
		fmt.Printf("  Frequency range: %s - %s\n",
			formatFrequency(model.Frequencies[0]),
			formatFrequency(model.Frequencies[model.Points()-1]))
	}
	fmt.Println()

	limit := model.Points()
	if !verbose && limit > 5 {
		limit = 5
	}
	for p := 0; p < limit; p++ {
		fmt.Printf("%s:\n", formatFrequency(model.Frequencies[p]))
		for m := 0; m < model.Lines; m++ {
			gamma := model.PropagationConstant[p][m]
			fmt.Printf("  Mode %d: alpha=%.4g Np/m  beta=%.4g rad/m  Zc=%s Ohm  eps_eff=%.4g\n",
				m+1,
				real(gamma), imag(gamma),
				formatComplex(model.CharacteristicImpedance[p][m]),
				real(model.EffectiveRelativePermittivity[p][m]))
		}
	}
	if limit < model.Points() {
		fmt.Printf("... and %d more points (use -v to show all)\n", model.Points()-limit)
	}
	return nil
}

type lineDumpPoint struct {
	Frequency               float64     `json:"frequency_hz" yaml:"frequency_hz"`
	Resistance              [][]float64 `json:"resistance" yaml:"resistance"`
	Inductance              [][]float64 `json:"inductance" yaml:"inductance"`
	Capacitance             [][]float64 `json:"capacitance" yaml:"capacitance"`
	Conductance             [][]float64 `json:"conductance" yaml:"conductance"`
	PropagationConstant     []string    `json:"propagation_constant" yaml:"propagation_constant"`
	CharacteristicImpedance []string    `json:"characteristic_impedance" yaml:"characteristic_impedance"`
	ImpedanceMatrix         [][]string  `json:"characteristic_impedance_matrix" yaml:"characteristic_impedance_matrix"`
	EffectivePermittivity   []string    `json:"effective_permittivity" yaml:"effective_permittivity"`
}

type lineDump struct {
	Lines  int             `json:"lines" yaml:"lines"`
	Points []lineDumpPoint `json:"points" yaml:"points"`
}

func runLinesDump(cmd *cobra.Command, args []string) error {
	model, err := loadLineModel(args[0])
	if err != nil {
		return err
	}

	dump := lineDump{
		Lines:  model.Lines,
		Points: make([]lineDumpPoint, model.Points()),
	}
	for p := 0; p < model.Points(); p++ {
		dump.Points[p] = lineDumpPoint{
			Frequency:               model.Frequencies[p],
			Resistance:              realMatrix(model.Resistance[p]),
			Inductance:              realMatrix(model.Inductance[p]),
			Capacitance:             realMatrix(model.Capacitance[p]),
			Conductance:             realMatrix(model.Conductance[p]),
			PropagationConstant:     complexSlice(model.PropagationConstant[p]),
			CharacteristicImpedance: complexSlice(model.CharacteristicImpedance[p]),
			ImpedanceMatrix:         complexMatrix(model.CharacteristicImpedanceMatrix[p]),
			EffectivePermittivity:   complexSlice(model.EffectiveRelativePermittivity[p]),
		}
	}
	return writeDump(dump, lineDumpFormat)
}
