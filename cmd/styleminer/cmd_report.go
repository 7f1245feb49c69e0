package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/style-miner/analyzer/internal/results"
)

var reportMasterFlag string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize a master CSV from a previous run",
	Long: `Reads an existing master CSV and reports record counts per analysis
type, average word volumes, and the grade coverage of the sampled essays
across iterations.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportMasterFlag, "master", "", "master CSV path (default from settings)")
}

func runReport(cmd *cobra.Command, args []string) error {
	_, settings, err := loadRuntime()
	if err != nil {
		return err
	}

	master := reportMasterFlag
	if master == "" {
		master = settings.MasterCSV
	}

	report, err := results.BuildReport(master)
	if err != nil {
		return err
	}
	fmt.Print(report.Render())
	return nil
}
