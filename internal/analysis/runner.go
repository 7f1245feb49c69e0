package analysis

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/style-miner/analyzer/internal/dataset"
	"github.com/style-miner/analyzer/internal/models"
	"github.com/style-miner/analyzer/internal/results"
	"github.com/style-miner/analyzer/internal/sampler"
)

// Runner drives the iteration loop: sample, prompt, call, parse, persist.
type Runner struct {
	LLM     LLMClient
	Sampler *sampler.Sampler
	Writer  *results.Writer

	Modules      map[int]models.ModuleInfo
	Rubric       string
	Instructions string

	Iterations int
	Delay      time.Duration
}

// Run performs the whole-dataset analysis. A failed LLM call logs and
// skips that iteration; the run continues. Returns all persisted records.
func (r *Runner) Run(ctx context.Context, essays []models.Essay) ([]models.AnalysisRecord, error) {
	usedCommon := sampler.UsageSet{}
	usedRare := sampler.UsageSet{}
	var records []models.AnalysisRecord

	bar := progressbar.NewOptions(r.Iterations,
		progressbar.OptionSetDescription("analyzing"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
	)

	for iteration := 1; iteration <= r.Iterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return records, err
		}

		samples, newCommon, newRare, err := r.Sampler.Sample(essays, usedCommon, usedRare)
		if err != nil {
			return records, fmt.Errorf("sample iteration %d: %w", iteration, err)
		}
		usedCommon, usedRare = newCommon, newRare

		contexts := BuildSampleContexts(samples, r.Modules)
		prompt := BuildIterationPrompt(contexts, r.Rubric, r.Instructions, iteration, r.Iterations)

		iterationRecords, err := r.runIteration(ctx, iteration, 0, prompt, samples)
		if err != nil {
			log.Printf("Iteration %d failed, skipping: %v", iteration, err)
		} else {
			records = append(records, iterationRecords...)
		}

		bar.Add(1)
		if iteration < r.Iterations {
			time.Sleep(r.Delay)
		}
	}

	if err := r.Writer.WriteMaster(records); err != nil {
		return records, err
	}
	log.Printf("Analysis complete: %d iterations, %d records, %d unique common + %d unique rare essays sampled",
		r.Iterations, len(records), len(usedCommon), len(usedRare))
	return records, nil
}

// RunModules performs module-focused analysis with per-module iteration
// budgets, then an optional cross-module comparison call.
func (r *Runner) RunModules(ctx context.Context, essays []models.Essay, moduleNums []int, budgets map[int]int, compare bool) ([]models.AnalysisRecord, error) {
	usedCommon := sampler.UsageSet{}
	usedRare := sampler.UsageSet{}
	var records []models.AnalysisRecord

	total := 0
	for _, m := range moduleNums {
		total += budgets[m]
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription("analyzing modules"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
	)

	done := 0
	for _, module := range moduleNums {
		pool := dataset.ModuleEssays(essays, module)
		if len(pool) == 0 {
			log.Printf("Module %d has no gradable essays, skipping", module)
			continue
		}
		info := r.Modules[module]
		log.Printf("Module %d (%s): %d essays, %d iterations", module, info.Movie, len(pool), budgets[module])

		for iteration := 1; iteration <= budgets[module]; iteration++ {
			if err := ctx.Err(); err != nil {
				return records, err
			}

			samples, newCommon, newRare, err := r.Sampler.Sample(pool, usedCommon, usedRare)
			if err != nil {
				return records, fmt.Errorf("sample module %d iteration %d: %w", module, iteration, err)
			}
			usedCommon, usedRare = newCommon, newRare

			contexts := BuildSampleContexts(samples, r.Modules)
			prompt := BuildModulePrompt(contexts, r.Rubric, r.Instructions, iteration, module, info)

			iterationRecords, err := r.runIteration(ctx, iteration, module, prompt, samples)
			if err != nil {
				log.Printf("Module %d iteration %d failed, skipping: %v", module, iteration, err)
			} else {
				records = append(records, iterationRecords...)
			}

			done++
			bar.Add(1)
			if done < total {
				time.Sleep(r.Delay)
			}
		}
	}

	if compare && len(records) > 0 {
		record, err := r.runComparison(ctx, records, moduleNums)
		if err != nil {
			log.Printf("Comparison analysis failed: %v", err)
		} else {
			records = append(records, *record)
		}
	}

	if err := r.Writer.WriteMaster(records); err != nil {
		return records, err
	}
	log.Printf("Module analysis complete: %d records across %d modules", len(records), len(moduleNums))
	return records, nil
}

// runIteration issues one LLM call and persists its artifacts. The four
// parsed sections become four records sharing the sample metadata.
func (r *Runner) runIteration(ctx context.Context, iteration, module int, prompt string, samples map[models.Stratum]models.Essay) ([]models.AnalysisRecord, error) {
	resp, err := r.LLM.Generate(ctx, AnalysisSystemPrompt(), prompt)
	if err != nil {
		return nil, err
	}

	if _, err := r.Writer.SaveRawResponse(iteration, module, resp.Content); err != nil {
		return nil, err
	}

	sections := ParseSections(resp.Content)
	info, err := results.EncodeSamples(samples)
	if err != nil {
		return nil, err
	}

	timestamp := time.Now().Format(time.RFC3339)
	if _, err := r.Writer.SaveIteration(iteration, module, sections, info, timestamp); err != nil {
		return nil, err
	}

	records := make([]models.AnalysisRecord, 0, len(models.AnalysisSections))
	for _, section := range models.AnalysisSections {
		records = append(records, models.AnalysisRecord{
			Iteration:      iteration,
			Module:         module,
			AnalysisType:   section,
			Content:        sections[section],
			SamplesGrades:  info.Grades,
			SamplesIDs:     info.IDs,
			SamplesModules: info.Modules,
			Timestamp:      timestamp,
		})
	}
	return records, nil
}

func (r *Runner) runComparison(ctx context.Context, records []models.AnalysisRecord, moduleNums []int) (*models.AnalysisRecord, error) {
	prompt := BuildComparisonPrompt(records, moduleNums, r.Modules)
	if err := r.Writer.SaveComparison(prompt, ""); err != nil {
		return nil, err
	}

	log.Println("Running cross-module comparison analysis")
	resp, err := r.LLM.Generate(ctx, ComparisonSystemPrompt(), prompt)
	if err != nil {
		return nil, err
	}
	if err := r.Writer.SaveComparison(prompt, resp.Content); err != nil {
		return nil, err
	}

	return &models.AnalysisRecord{
		AnalysisType:   models.SectionModuleComparison,
		Content:        resp.Content,
		SamplesGrades:  "N/A",
		SamplesIDs:     "N/A",
		SamplesModules: "N/A",
		Timestamp:      time.Now().Format(time.RFC3339),
	}, nil
}
