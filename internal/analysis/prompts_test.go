package analysis

import (
	"strings"
	"testing"

	"github.com/style-miner/analyzer/internal/models"
)

func testSamples() map[models.Stratum]models.Essay {
	longEssay := strings.Repeat("An essay sentence about the film. ", 100)
	return map[models.Stratum]models.Essay{
		models.StratumMaximum: {ID: 4, Module: 1, Grade: 100, Text: "Top essay.", Feedback: "Excellent"},
		models.StratumQ3:      {ID: 3, Module: 2, Grade: 95, Text: longEssay, Feedback: "Strong"},
		models.StratumMedian:  {ID: 2, Module: 2, Grade: 85, Text: "Mid essay.", Feedback: "Solid"},
		models.StratumQ1:      {ID: 1, Module: 3, Grade: 80, Text: "Weak essay.", Feedback: "Close"},
		models.StratumMinimum: {ID: 0, Module: 3, Grade: 60, Text: "Poor essay.", Feedback: "Needs work"},
	}
}

func testModules() map[int]models.ModuleInfo {
	return map[int]models.ModuleInfo{
		1: {Movie: "The Arrival", Question: "Discuss language and time.", Details: "A film about linguists."},
		2: {Movie: "Perfect Secret", Question: "Discuss the role of secrecy.", Details: "A drama about friends."},
	}
}

func TestBuildSampleContextsOrderAndFallbacks(t *testing.T) {
	contexts := BuildSampleContexts(testSamples(), testModules())

	if len(contexts) != 5 {
		t.Fatalf("expected 5 contexts, got %d", len(contexts))
	}
	for i, stratum := range models.SampleOrder {
		if contexts[i].Stratum != stratum {
			t.Errorf("context %d stratum = %s, want %s", i, contexts[i].Stratum, stratum)
		}
	}

	// Module 3 has no details row; movie and question fall back to Unknown.
	last := contexts[len(contexts)-1]
	if last.Movie != "Unknown" || last.Question != "Unknown" {
		t.Errorf("missing module info not defaulted: movie=%q question=%q", last.Movie, last.Question)
	}
}

func TestBuildIterationPrompt(t *testing.T) {
	contexts := BuildSampleContexts(testSamples(), testModules())
	prompt := BuildIterationPrompt(contexts, "RUBRIC TEXT", "INSTRUCTION TEXT", 3, 15)

	for _, want := range []string{
		"## ITERATION 3 of 15",
		"RUBRIC TEXT",
		"INSTRUCTION TEXT",
		"--- SAMPLE 1: GRADE 100/100 (MAXIMUM) ---",
		"--- SAMPLE 5: GRADE 60/100 (MINIMUM) ---",
		"MODULE: 2 - Perfect Secret",
		"### 4. SYSTEM PROMPT FOR FEEDBACK EMULATION",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildIterationPromptTruncatesEssays(t *testing.T) {
	contexts := BuildSampleContexts(testSamples(), testModules())
	prompt := BuildIterationPrompt(contexts, "r", "i", 1, 15)

	// The q3 essay is well over the excerpt limit; its full text must not
	// appear in the prompt.
	full := contexts[1].Essay
	if len(full) <= essayExcerptLimit {
		t.Fatalf("test essay too short to exercise truncation: %d", len(full))
	}
	if strings.Contains(prompt, full) {
		t.Error("essay was not truncated")
	}
	if !strings.Contains(prompt, full[:essayExcerptLimit]+"...") {
		t.Error("truncated excerpt with ellipsis not found")
	}
}

func TestBuildModulePrompt(t *testing.T) {
	contexts := BuildSampleContexts(testSamples(), testModules())
	info := testModules()[2]
	prompt := BuildModulePrompt(contexts, "RUBRIC", "INSTRUCTIONS", 2, 2, info)

	for _, want := range []string{
		"## ITERATION 2 - MODULE 2 FOCUSED ANALYSIS",
		"Module 2: Perfect Secret",
		"## FILM INFORMATION\nA drama about friends.",
		"## ESSAY QUESTION FOR MODULE 2\nDiscuss the role of secrecy.",
		"Module-specific grading nuances",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("module prompt missing %q", want)
		}
	}

	// Per-sample blocks in the module prompt carry no module line; the
	// module context is stated once up front.
	if strings.Contains(prompt, "MODULE: 2 - ") {
		t.Error("module prompt repeats module context per sample")
	}
}

func TestBuildComparisonPrompt(t *testing.T) {
	results := []models.AnalysisRecord{
		{Module: 2, Iteration: 1, AnalysisType: models.SectionGradingDeconstruction, Content: "Module two grading notes."},
		{Module: 2, Iteration: 1, AnalysisType: models.SectionGradingSystemPrompt, Content: "Module two grading prompt."},
		{Module: 2, Iteration: 1, AnalysisType: models.SectionFeedbackDeconstruction, Content: "Module two feedback notes."},
		{Module: 2, Iteration: 1, AnalysisType: models.SectionFeedbackSystemPrompt, Content: "Module two feedback prompt."},
		{Module: 3, Iteration: 1, AnalysisType: models.SectionGradingDeconstruction, Content: "Module three grading notes."},
	}
	modules := map[int]models.ModuleInfo{
		2: {Movie: "Perfect Secret", Details: "A drama about friends."},
		3: {Movie: "Another Round", Details: "A film about teachers."},
	}

	prompt := BuildComparisonPrompt(results, []int{2, 3}, modules)

	for _, want := range []string{
		"### Module 2: Perfect Secret",
		"### Module 3: Another Round",
		"GRADING_DECONSTRUCTION:\nModule two grading notes.",
		"Module three grading notes.",
		"### 5. RECOMMENDATIONS FOR GRADING ASSISTANT",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("comparison prompt missing %q", want)
		}
	}
}

func TestGradingSystemPrompt(t *testing.T) {
	prompt := GradingSystemPrompt("THE RUBRIC")
	if !strings.Contains(prompt, "THE RUBRIC") {
		t.Error("rubric not embedded in grading prompt")
	}
	if !strings.Contains(prompt, "Grade: [Score]") {
		t.Error("output format instructions missing")
	}
}
