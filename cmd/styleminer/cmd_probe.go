package main

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/style-miner/analyzer/internal/analysis"
	"github.com/style-miner/analyzer/internal/dataset"
)

var probeEssayIDFlag int

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Grade one essay with the rubric prompt and compare to the teacher",
	Long: `Picks a random graded essay (or a specific one via --essay-id), grades
it with the rubric-based emulation prompt, and prints the model's grade
and feedback next to the teacher's actual grade and feedback. Useful for
eyeballing how close the current emulation prompt gets.`,
	RunE: runProbe,
}

func init() {
	probeCmd.Flags().IntVar(&probeEssayIDFlag, "essay-id", -1, "probe a specific essay id instead of a random one")
	probeCmd.Flags().StringVar(&providerFlag, "provider", "", "LLM provider: gemini, anthropic, cli, mock")
	probeCmd.Flags().StringVar(&modelFlag, "model", "", "model name override")
}

func runProbe(cmd *cobra.Command, args []string) error {
	cfg, settings, err := loadRuntime()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	essays, err := dataset.LoadEssays(settings.DatasetPath)
	if err != nil {
		return err
	}
	rubric, err := dataset.LoadText(settings.RubricPath)
	if err != nil {
		return err
	}

	essay := essays[rand.Intn(len(essays))]
	if probeEssayIDFlag >= 0 {
		found := false
		for _, e := range essays {
			if e.ID == probeEssayIDFlag {
				essay = e
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("essay id %d not found (dataset has %d essays)", probeEssayIDFlag, len(essays))
		}
	}

	llm, err := analysis.NewClient(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	log.Printf("Probing essay %d (module %d, teacher grade %g)", essay.ID, essay.Module, essay.Grade)
	resp, err := llm.Generate(cmd.Context(), analysis.GradingSystemPrompt(rubric), analysis.BuildGradePrompt(essay.Text))
	if err != nil {
		return fmt.Errorf("probe grading call: %w", err)
	}

	preview := essay.Text
	if len(preview) > 500 {
		preview = preview[:500] + "..."
	}

	fmt.Println("--- Student essay ---")
	fmt.Println(preview)
	fmt.Println()
	fmt.Println("--- Teacher ---")
	fmt.Printf("Grade: %g\n", essay.Grade)
	fmt.Printf("Feedback: %s\n", essay.Feedback)
	fmt.Println()
	fmt.Println("--- Model ---")
	fmt.Println(resp.Content)
	return nil
}
