package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/style-miner/analyzer/internal/config"
	"github.com/style-miner/analyzer/internal/dataset"
	"github.com/style-miner/analyzer/internal/models"
)

var (
	// Persistent flags
	envFile      string
	settingsFile string

	// Shared run overrides
	providerFlag string
	modelFlag    string
)

var rootCmd = &cobra.Command{
	Use:   "styleminer",
	Short: "Reverse-engineer a grader's style from a graded essay dataset",
	Long: `styleminer mines a teacher's grading and feedback style from a CSV of
graded essays. It stratified-samples essays across the grade spectrum,
asks an LLM to deconstruct the patterns over repeated iterations, and
aggregates the findings into reusable emulation prompts.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "path to a .env file (default: ./.env if present)")
	rootCmd.PersistentFlags().StringVar(&settingsFile, "settings", "", "path to a YAML settings file")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(examplesCmd)
	rootCmd.AddCommand(reportCmd)
}

// loadRuntime resolves environment config and settings, applying the
// shared provider/model overrides.
func loadRuntime() (*config.Config, config.Settings, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, config.Settings{}, err
	}
	if providerFlag != "" {
		cfg.Provider = config.Provider(providerFlag)
	}
	if modelFlag != "" {
		cfg.Model = modelFlag
	}

	settings, err := config.LoadSettings(settingsFile)
	if err != nil {
		return nil, config.Settings{}, err
	}
	return cfg, settings, nil
}

// loadCorpus reads the essays, module details, rubric, and instructions
// named in the settings.
func loadCorpus(settings config.Settings) ([]models.Essay, map[int]models.ModuleInfo, string, string, error) {
	essays, err := dataset.LoadEssays(settings.DatasetPath)
	if err != nil {
		return nil, nil, "", "", fmt.Errorf("load essays: %w", err)
	}
	modules, err := dataset.LoadModules(settings.ModulesPath)
	if err != nil {
		return nil, nil, "", "", fmt.Errorf("load module details: %w", err)
	}
	rubric, err := dataset.LoadText(settings.RubricPath)
	if err != nil {
		return nil, nil, "", "", fmt.Errorf("load rubric: %w", err)
	}
	instructions, err := dataset.LoadText(settings.GuidelinePath)
	if err != nil {
		return nil, nil, "", "", fmt.Errorf("load instructions: %w", err)
	}
	return essays, modules, rubric, instructions, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
