package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emtrace/emtrace/pkg/sparams"
)

var snpCmd = &cobra.Command{
	Use:   "snp",
	Short: "Touchstone network parameter operations",
	Long:  `Commands for working with Touchstone / SnP network parameter files`,
}

var (
	snpDialectName string
	snpDumpFormat  string
)

var snpInfoCmd = &cobra.Command{
	Use:   "info <snp-file>",
	Short: "Summarize a network parameter file",
	Long: `Load a network parameter file and print the sweep summary: port count,
parameter kind, frequency range, and file metadata.

Examples:
  emtrace snp info filter.s2p
  emtrace snp info -v coupler.s4p`,
	Args: cobra.ExactArgs(1),
	RunE: runSnpInfo,
}

var snpDumpCmd = &cobra.Command{
	Use:   "dump <snp-file>",
	Short: "Dump a network parameter sweep as YAML or JSON",
	Long: `Load a network parameter file and write every frequency point with its
full matrix to stdout.

Examples:
  emtrace snp dump filter.s2p
  emtrace snp dump --format json filter.s2p > filter.json`,
	Args: cobra.ExactArgs(1),
	RunE: runSnpDump,
}

func init() {
	rootCmd.AddCommand(snpCmd)
	snpCmd.AddCommand(snpInfoCmd)
	snpCmd.AddCommand(snpDumpCmd)

	snpCmd.PersistentFlags().StringVarP(&snpDialectName, "dialect", "d", "touchstone",
		"input dialect (touchstone, databank, cadence, spreadsheet, mdif-s2p, mdif-ebridge)")
	snpDumpCmd.Flags().StringVarP(&snpDumpFormat, "format", "f", "yaml",
		"output format (yaml, json)")
}

func loadNetwork(filename string) (*sparams.Network, error) {
	dialect, err := sparams.ParseDialect(snpDialectName)
	if err != nil {
		return nil, err
	}

	if verbose {
		fmt.Printf("Loading network: %s (%s)\n", filename, dialect)
	}

	network, err := sparams.Load(filename, dialect)
	if err != nil {
		return nil, fmt.Errorf("failed to parse network file: %w", err)
	}
	return network, nil
}

func runSnpInfo(cmd *cobra.Command, args []string) error {
	network, err := loadNetwork(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("✓ Loaded network successfully\n")
	fmt.Printf("  Ports: %d\n", network.Ports)
	fmt.Printf("  Parameter: %s\n", network.Kind)
	fmt.Printf("  Version: %g\n", network.Version)
	fmt.Printf("  Reference: %g Ohm\n", network.RefImpedance)
	fmt.Printf("  Points: %d\n", network.Points())
	if network.Points() > 0 {
		fmt.Printf("  Frequency range: %g - %g GHz\n",
			network.Frequencies[0], network.Frequencies[network.Points()-1])
	}

	if verbose && network.Points() > 0 {
		fmt.Printf("\nFirst point (%g GHz):\n", network.Frequencies[0])
		printComplexMatrix(network.Matrices[0])
	}
	return nil
}

type snpDumpPoint struct {
	Frequency float64    `json:"frequency_ghz" yaml:"frequency_ghz"`
	Matrix    [][]string `json:"matrix" yaml:"matrix"`
}

type snpDump struct {
	Ports        int            `json:"ports" yaml:"ports"`
	Parameter    string         `json:"parameter" yaml:"parameter"`
	Version      float64        `json:"version" yaml:"version"`
	RefImpedance float64        `json:"reference_impedance" yaml:"reference_impedance"`
	Points       []snpDumpPoint `json:"points" yaml:"points"`
}

func runSnpDump(cmd *cobra.Command, args []string) error {
	network, err := loadNetwork(args[0])
	if err != nil {
		return err
	}

	dump := snpDump{
		Ports:        network.Ports,
		Parameter:    network.Kind.String(),
		Version:      network.Version,
		RefImpedance: network.RefImpedance,
		Points:       make([]snpDumpPoint, network.Points()),
	}
	for p := 0; p < network.Points(); p++ {
		dump.Points[p] = snpDumpPoint{
			Frequency: network.Frequencies[p],
			Matrix:    complexMatrix(network.Matrices[p]),
		}
	}
	return writeDump(dump, snpDumpFormat)
}
