package main

import (
	"fmt"
	"log"
	"sort"

	"github.com/spf13/cobra"

	"github.com/style-miner/analyzer/internal/dataset"
	"github.com/style-miner/analyzer/internal/training"
)

var (
	examplesModulesFlag []int
	examplesOutFlag     string
)

var examplesCmd = &cobra.Command{
	Use:   "examples",
	Short: "Curate a golden examples CSV for prompt few-shotting",
	Long: `Selects a small, grade-diverse set of essays per module: three
high-grade essays at spread rank positions and two low-grade essays, each
row carrying the module context, grade category, and a coarse stratum
label. The resulting CSV feeds few-shot examples into emulation prompts.`,
	RunE: runExamples,
}

func init() {
	examplesCmd.Flags().IntSliceVar(&examplesModulesFlag, "modules", nil, "modules to draw examples from (default: all)")
	examplesCmd.Flags().StringVar(&examplesOutFlag, "out", "output/training_examples.csv", "output CSV path")
}

func runExamples(cmd *cobra.Command, args []string) error {
	_, settings, err := loadRuntime()
	if err != nil {
		return err
	}

	essays, err := dataset.LoadEssays(settings.DatasetPath)
	if err != nil {
		return err
	}
	modules, err := dataset.LoadModules(settings.ModulesPath)
	if err != nil {
		return err
	}

	moduleNums := examplesModulesFlag
	if len(moduleNums) == 0 {
		seen := make(map[int]bool)
		for _, e := range essays {
			if !seen[e.Module] {
				seen[e.Module] = true
				moduleNums = append(moduleNums, e.Module)
			}
		}
		sort.Ints(moduleNums)
	}

	examples := training.BuildExamples(essays, moduleNums, modules, settings.Threshold)
	if len(examples) == 0 {
		return fmt.Errorf("no examples selected for modules %v", moduleNums)
	}

	if err := training.WriteExamples(examplesOutFlag, examples); err != nil {
		return err
	}

	log.Printf("Wrote %d examples to %s", len(examples), examplesOutFlag)
	high, low := 0, 0
	for _, ex := range examples {
		if ex.GradeCategory == "High" {
			high++
		} else {
			low++
		}
		fmt.Printf("  %s: grade %g (%s) - %s\n", ex.ExampleID, ex.Grade, ex.GradeCategory, ex.Stratum)
	}
	fmt.Printf("High-grade examples: %d, low-grade examples: %d\n", high, low)
	return nil
}
