package main

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/style-miner/analyzer/internal/analysis"
	"github.com/style-miner/analyzer/internal/config"
	"github.com/style-miner/analyzer/internal/dataset"
	"github.com/style-miner/analyzer/internal/results"
	"github.com/style-miner/analyzer/internal/sampler"
)

var (
	iterationsFlag       int
	modulesFlag          []int
	moduleIterationsFlag string
	compareFlag          bool
	thresholdFlag        float64
	toleranceFlag        float64
	delayMSFlag          int
	outputDirFlag        string
	masterFlag           string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the multi-iteration grading style analysis",
	Long: `Runs repeated stratified-sampling iterations over the essay dataset.
Each iteration selects five essays (minimum, q1_25th, median, q3_75th,
maximum), sends them with the rubric and assignment instructions to the
LLM, and parses the response into grading/feedback deconstructions and
emulation prompts. Results land in per-iteration CSVs plus a master CSV.

With --modules the pool is restricted to the given modules, each module
gets its own iteration budget, and a final cross-module comparison is
produced.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().IntVar(&iterationsFlag, "iterations", 0, "iteration count (default from settings: 15)")
	analyzeCmd.Flags().IntSliceVar(&modulesFlag, "modules", nil, "restrict the analysis to these modules (e.g. 2,3)")
	analyzeCmd.Flags().StringVar(&moduleIterationsFlag, "module-iterations", "", "per-module budgets, e.g. 2=5,3=3")
	analyzeCmd.Flags().BoolVar(&compareFlag, "compare", true, "run the cross-module comparison after module analysis")
	analyzeCmd.Flags().Float64Var(&thresholdFlag, "threshold", 0, "common/rare grade threshold (default from settings: 85)")
	analyzeCmd.Flags().Float64Var(&toleranceFlag, "tolerance", 0, "target-match tolerance in grade points (default from settings: 3)")
	analyzeCmd.Flags().IntVar(&delayMSFlag, "delay-ms", -1, "delay between iterations in milliseconds (default from settings: 500)")
	analyzeCmd.Flags().StringVar(&outputDirFlag, "output-dir", "", "directory for per-iteration artifacts")
	analyzeCmd.Flags().StringVar(&masterFlag, "master", "", "path of the aggregated master CSV")
	analyzeCmd.Flags().StringVar(&providerFlag, "provider", "", "LLM provider: gemini, anthropic, cli, mock")
	analyzeCmd.Flags().StringVar(&modelFlag, "model", "", "model name override")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, settings, err := loadRuntime()
	if err != nil {
		return err
	}
	applyAnalyzeOverrides(&settings)

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	essays, modules, rubric, instructions, err := loadCorpus(settings)
	if err != nil {
		return err
	}
	log.Printf("Loaded %d essays, %d modules", len(essays), len(modules))

	llm, err := analysis.NewClient(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	writer, err := results.NewWriter(settings.OutputDir, settings.MasterCSV)
	if err != nil {
		return err
	}
	log.Printf("Run %s writing to %s", writer.RunID, settings.OutputDir)

	s := sampler.New()
	s.Threshold = settings.Threshold
	s.Tolerance = settings.Tolerance

	runner := &analysis.Runner{
		LLM:          llm,
		Sampler:      s,
		Writer:       writer,
		Modules:      modules,
		Rubric:       rubric,
		Instructions: instructions,
		Iterations:   settings.Iterations,
		Delay:        time.Duration(settings.DelayMS) * time.Millisecond,
	}

	if len(modulesFlag) > 0 {
		budgets, err := parseModuleBudgets(moduleIterationsFlag, modulesFlag, settings.Iterations)
		if err != nil {
			return err
		}
		pool := dataset.FilterModules(essays, modulesFlag)
		if len(pool) == 0 {
			return fmt.Errorf("no essays found for modules %v", modulesFlag)
		}
		_, err = runner.RunModules(cmd.Context(), pool, modulesFlag, budgets, compareFlag)
		return err
	}

	_, err = runner.Run(cmd.Context(), essays)
	return err
}

func applyAnalyzeOverrides(settings *config.Settings) {
	if iterationsFlag > 0 {
		settings.Iterations = iterationsFlag
	}
	if thresholdFlag > 0 {
		settings.Threshold = thresholdFlag
	}
	if toleranceFlag > 0 {
		settings.Tolerance = toleranceFlag
	}
	if delayMSFlag >= 0 {
		settings.DelayMS = delayMSFlag
	}
	if outputDirFlag != "" {
		settings.OutputDir = outputDirFlag
	}
	if masterFlag != "" {
		settings.MasterCSV = masterFlag
	}
}

// parseModuleBudgets reads "2=5,3=3" into per-module iteration counts.
// Modules without an explicit budget share the default count.
func parseModuleBudgets(spec string, moduleNums []int, fallback int) (map[int]int, error) {
	budgets := make(map[int]int, len(moduleNums))
	for _, m := range moduleNums {
		budgets[m] = fallback
	}
	if spec == "" {
		return budgets, nil
	}

	for _, pair := range strings.Split(spec, ",") {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid module budget %q (want module=count)", pair)
		}
		module, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid module in budget %q: %w", pair, err)
		}
		count, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil || count < 1 {
			return nil, fmt.Errorf("invalid count in budget %q", pair)
		}
		if _, ok := budgets[module]; !ok {
			return nil, fmt.Errorf("budget for module %d not in --modules list", module)
		}
		budgets[module] = count
	}
	return budgets, nil
}
