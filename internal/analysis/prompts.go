package analysis

import (
	"fmt"
	"strings"

	"github.com/style-miner/analyzer/internal/models"
)

// essayExcerptLimit caps how much of each essay goes into a prompt so five
// samples plus the rubric fit comfortably in one request.
const essayExcerptLimit = 1500

// SampleContext is one sampled essay plus its module context, ready for
// prompt assembly.
type SampleContext struct {
	Stratum  models.Stratum
	Grade    float64
	Module   int
	Movie    string
	Question string
	Essay    string
	Feedback string
	ID       int
}

// BuildSampleContexts joins sampled essays with module details, preserving
// the sampling order.
func BuildSampleContexts(samples map[models.Stratum]models.Essay, modules map[int]models.ModuleInfo) []SampleContext {
	out := make([]SampleContext, 0, len(samples))
	for _, stratum := range models.SampleOrder {
		essay, ok := samples[stratum]
		if !ok {
			continue
		}
		info := modules[essay.Module]
		movie := info.Movie
		if movie == "" {
			movie = "Unknown"
		}
		question := info.Question
		if question == "" {
			question = "Unknown"
		}
		out = append(out, SampleContext{
			Stratum:  stratum,
			Grade:    essay.Grade,
			Module:   essay.Module,
			Movie:    movie,
			Question: question,
			Essay:    essay.Text,
			Feedback: essay.Feedback,
			ID:       essay.ID,
		})
	}
	return out
}

// AnalysisSystemPrompt frames the model as a style analyst. The detailed
// task lives in the user prompt alongside the samples.
func AnalysisSystemPrompt() string {
	return "You are an expert educational analyst tasked with reverse-engineering a teacher's grading and feedback style."
}

// BuildIterationPrompt assembles the cross-module analysis prompt for one
// iteration.
func BuildIterationPrompt(samples []SampleContext, rubric, instructions string, iteration, totalIterations int) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`## ITERATION %d of %d
This is iteration %d of a multi-iteration analysis. Each iteration samples different essays across the grade spectrum to build a comprehensive understanding.

## CONTEXT
You are analyzing %d student essays across the full grade spectrum (from minimum to maximum grades) from the same teacher.

## ASSIGNMENT INSTRUCTIONS
%s

## GRADING RUBRIC
%s

IMPORTANT: The teacher appears to give grades intuitively first, then uses the rubric to justify the grade afterward (grades don't perfectly align with rubric criteria).

## ESSAYS TO ANALYZE FOR ITERATION %d

`, iteration, totalIterations, iteration, len(samples), instructions, rubric, iteration))

	for i, s := range samples {
		sb.WriteString(fmt.Sprintf(`--- SAMPLE %d: GRADE %v/100 (%s) ---
MODULE: %d - %s
ESSAY QUESTION:
%s

STUDENT ESSAY:
%s...

TEACHER FEEDBACK:
%s

`, i+1, s.Grade, strings.ToUpper(string(s.Stratum)), s.Module, s.Movie, s.Question, truncate(s.Essay, essayExcerptLimit), s.Feedback))
	}

	sb.WriteString(analysisTaskBlock)
	return sb.String()
}

// BuildModulePrompt assembles a single-module analysis prompt. All samples
// come from the same module, so the film context is stated once up front.
func BuildModulePrompt(samples []SampleContext, rubric, instructions string, iteration, module int, info models.ModuleInfo) string {
	var sb strings.Builder

	movie := info.Movie
	if movie == "" {
		movie = "Unknown"
	}
	details := info.Details
	if details == "" {
		details = "No details available"
	}
	question := info.Question
	if question == "" {
		question = "Unknown"
	}

	sb.WriteString(fmt.Sprintf(`## ITERATION %d - MODULE %d FOCUSED ANALYSIS
This is iteration %d analyzing essays from Module %d: %s
All %d samples below are from the same module and respond to the same essay question about the same film.

## FILM INFORMATION
%s

## ASSIGNMENT INSTRUCTIONS
%s

## GRADING RUBRIC
%s

IMPORTANT: The teacher appears to give grades intuitively first, then uses the rubric to justify the grade afterward (grades don't perfectly align with rubric criteria).

## ESSAY QUESTION FOR MODULE %d
%s

## ESSAYS TO ANALYZE FOR MODULE %d - ITERATION %d

`, iteration, module, iteration, module, movie, len(samples), details, instructions, rubric, module, question, module, iteration))

	for i, s := range samples {
		sb.WriteString(fmt.Sprintf(`--- SAMPLE %d: GRADE %v/100 (%s) ---
ESSAY:
%s...

TEACHER FEEDBACK:
%s

`, i+1, s.Grade, strings.ToUpper(string(s.Stratum)), truncate(s.Essay, essayExcerptLimit), s.Feedback))
	}

	sb.WriteString(moduleTaskBlock)
	return sb.String()
}

// BuildComparisonPrompt assembles the cross-module synthesis prompt from
// accumulated per-module results.
func BuildComparisonPrompt(results []models.AnalysisRecord, moduleNums []int, modules map[int]models.ModuleInfo) string {
	var sb strings.Builder

	sb.WriteString(`## CONTEXT
You have analyzed teacher grading and feedback patterns for several modules separately. Now you need to compare them to identify:
1. Consistent patterns across modules (teacher's general style)
2. Module-specific variations (how expectations differ by film/question)
3. Universal principles that apply to all modules

## MODULE INFORMATION

`)

	for _, m := range moduleNums {
		info := modules[m]
		sb.WriteString(fmt.Sprintf("### Module %d: %s\n%s...\n\n", m, info.Movie, truncate(info.Details, 500)))
	}

	sb.WriteString("## SUMMARY OF PREVIOUS ANALYSES\n\n")
	for _, m := range moduleNums {
		var moduleResults []models.AnalysisRecord
		for _, r := range results {
			if r.Module == m {
				moduleResults = append(moduleResults, r)
			}
		}
		sb.WriteString(fmt.Sprintf("### Module %d Key Findings (%d iterations analyzed):\n",
			m, len(moduleResults)/len(models.AnalysisSections)))
		// First iteration of each section type is enough context.
		limit := len(models.AnalysisSections)
		if limit > len(moduleResults) {
			limit = len(moduleResults)
		}
		for _, r := range moduleResults[:limit] {
			sb.WriteString(fmt.Sprintf("\n%s:\n%s...\n",
				strings.ToUpper(string(r.AnalysisType)), truncate(r.Content, 300)))
		}
		sb.WriteString("\n\n")
	}

	sb.WriteString(comparisonTaskBlock)
	return sb.String()
}

// ComparisonSystemPrompt frames the final cross-module synthesis call.
func ComparisonSystemPrompt() string {
	return "You are an expert educational analyst tasked with comparing grading patterns between different modules."
}

// GradingSystemPrompt builds the emulation prompt used by the probe command
// to grade an essay the way the analyzed teacher would.
func GradingSystemPrompt(rubric string) string {
	return fmt.Sprintf(`You are an expert Teaching Assistant for a Linguistics and Film course.
Your goal is to grade student essays with a rigorous but empathetic style.
You are known for catching small details like typos and timestamps, but also appreciating deep insights.

RUBRIC:
%s

INSTRUCTIONS:
1. Read the essay carefully.
2. Assign a grade out of 100.
3. Write feedback. Start with "Hi [Student Name],".
4. Be specific. Mention 1 thing they did well and 1 thing to improve.
5. Watch out for:
   - Missing timestamps (Major deduction)
   - Typos (Point them out gently)
   - Word count (Too short = deduction)
   - Tone: Encouraging but firm on standards.

OUTPUT FORMAT:
Grade: [Score]
Feedback: [Your feedback here]
`, rubric)
}

// BuildGradePrompt wraps an essay for the probe grading call.
func BuildGradePrompt(essay string) string {
	return fmt.Sprintf("Grade the essay below:\n\n%s", essay)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

const analysisTaskBlock = `## YOUR TASK

Based on these samples spanning the full grade range, provide the following analysis:

### 1. GRADING STYLE DECONSTRUCTION (max 300 words)
Analyze HOW this teacher grades. Consider:
- What patterns do you see in what earns high vs low grades?
- What aspects of the essay does the teacher prioritize?
- How strictly does the teacher follow the rubric vs. intuitive judgment?
- What are the teacher's "pet peeves" or consistently commented issues?
- What earns praise and what earns criticism?

### 2. SYSTEM PROMPT FOR GRADING EMULATION
Provide a concise system prompt (2-3 paragraphs) that would instruct an AI to grade exactly like this teacher. Include specific guidance on:
- How to evaluate content quality
- What weight to give different aspects
- The teacher's apparent priorities and preferences

### 3. FEEDBACK STYLE DECONSTRUCTION (max 300 words)
Analyze the teacher's feedback patterns:
- What is the tone? (encouraging, critical, balanced, etc.)
- What types of comments are consistently made?
- How does feedback vary by grade level?
- What suggestions are typically offered?
- What is the balance between praise and critique?

### 4. SYSTEM PROMPT FOR FEEDBACK EMULATION
Provide a concise system prompt (2-3 paragraphs) that would instruct an AI to write feedback exactly like this teacher. Include:
- Tone and voice characteristics
- Structure of feedback (what comes first, what follows)
- Types of comments to always include or avoid
- How to balance encouragement with constructive criticism

Format your response clearly with headers for each section numbered 1-4.`

const moduleTaskBlock = `## YOUR TASK

Based on these Module-specific samples spanning the full grade range, provide the following analysis:

### 1. GRADING STYLE DECONSTRUCTION (max 300 words)
Analyze HOW this teacher grades for Module-specific essays. Consider:
- What patterns do you see in what earns high vs low grades?
- What aspects of the essay does the teacher prioritize?
- How strictly does the teacher follow the rubric vs. intuitive judgment?
- What are the teacher's "pet peeves" or consistently commented issues?
- What earns praise and what earns criticism?
- Are there module-specific grading patterns (e.g., particular expectations for this film/question)?

### 2. SYSTEM PROMPT FOR GRADING EMULATION
Provide a concise system prompt (2-3 paragraphs) that would instruct an AI to grade exactly like this teacher for Module-specific essays. Include:
- How to evaluate content quality for this specific module
- What weight to give different aspects
- The teacher's apparent priorities and preferences
- Module-specific grading nuances

### 3. FEEDBACK STYLE DECONSTRUCTION (max 300 words)
Analyze the teacher's feedback patterns for Module-specific essays:
- What is the tone? (encouraging, critical, balanced, etc.)
- What types of comments are consistently made?
- How does feedback vary by grade level?
- What suggestions are typically offered?
- What is the balance between praise and critique?
- Are there module-specific feedback patterns?

### 4. SYSTEM PROMPT FOR FEEDBACK EMULATION
Provide a concise system prompt (2-3 paragraphs) that would instruct an AI to write feedback exactly like this teacher for Module-specific essays. Include:
- Tone and voice characteristics
- Structure of feedback
- Types of comments to include or avoid
- How to balance encouragement with constructive criticism
- Module-specific feedback nuances

Format your response clearly with headers for each section numbered 1-4.`

const comparisonTaskBlock = `## YOUR TASK

Provide a comprehensive comparison analysis:

### 1. CONSISTENT PATTERNS (Teacher's Core Style)
What grading and feedback patterns remain consistent across all modules? This represents the teacher's fundamental approach regardless of the specific film or question.

### 2. MODULE-SPECIFIC VARIATIONS
How do grading expectations and feedback styles differ between the modules? Consider:
- Do different films/questions have different "ideal" responses?
- Are there topic-specific feedback patterns?
- Does the teacher weight criteria differently for different types of content?

### 3. UNIVERSAL GRADING SYSTEM PROMPT
Synthesize a master system prompt that captures the teacher's consistent style while accounting for module variations. This should be adaptable to any module.

### 4. UNIVERSAL FEEDBACK SYSTEM PROMPT
Synthesize a master feedback prompt that captures the teacher's consistent voice while being adaptable to different modules.

### 5. RECOMMENDATIONS FOR GRADING ASSISTANT
Based on these patterns, what are the key principles for building a grading assistant that emulates this teacher? What should be prioritized?

Format clearly with numbered headers.`
