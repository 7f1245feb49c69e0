package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/style-miner/analyzer/internal/dataset"
)

var statsModulesFlag []int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the essay dataset",
	Long: `Prints grade distribution statistics for the dataset: totals, mean,
min/max, high/mid/low bands, per-module counts, and the average grade of
short essays (a known deduction trigger in this grading style).`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().IntSliceVar(&statsModulesFlag, "modules", nil, "restrict statistics to these modules")
}

func runStats(cmd *cobra.Command, args []string) error {
	_, settings, err := loadRuntime()
	if err != nil {
		return err
	}

	essays, err := dataset.LoadEssays(settings.DatasetPath)
	if err != nil {
		return err
	}
	essays = dataset.FilterModules(essays, statsModulesFlag)
	if len(essays) == 0 {
		return fmt.Errorf("no essays found for modules %v", statsModulesFlag)
	}

	fmt.Print(dataset.Summarize(essays).Render())
	return nil
}
