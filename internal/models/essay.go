package models

// Stratum identifies one of the five grade-distribution landmarks used as
// sampling targets.
type Stratum string

const (
	StratumMinimum Stratum = "minimum"
	StratumQ1      Stratum = "q1_25th"
	StratumMedian  Stratum = "median"
	StratumQ3      Stratum = "q3_75th"
	StratumMaximum Stratum = "maximum"
)

// SampleOrder is the order strata are filled in a sampling pass, highest
// target first.
var SampleOrder = []Stratum{
	StratumMaximum,
	StratumQ3,
	StratumMedian,
	StratumQ1,
	StratumMinimum,
}

var ValidStrata = map[Stratum]bool{
	StratumMinimum: true,
	StratumQ1:      true,
	StratumMedian:  true,
	StratumQ3:      true,
	StratumMaximum: true,
}

// AnalysisSection labels one parsed section of an analysis response.
type AnalysisSection string

const (
	SectionGradingDeconstruction  AnalysisSection = "grading_deconstruction"
	SectionGradingSystemPrompt    AnalysisSection = "grading_system_prompt"
	SectionFeedbackDeconstruction AnalysisSection = "feedback_deconstruction"
	SectionFeedbackSystemPrompt   AnalysisSection = "feedback_system_prompt"

	// SectionModuleComparison labels the final cross-module synthesis
	// record; it is not part of the per-iteration section set.
	SectionModuleComparison AnalysisSection = "module_comparison"
)

// AnalysisSections lists the sections in response order.
var AnalysisSections = []AnalysisSection{
	SectionGradingDeconstruction,
	SectionGradingSystemPrompt,
	SectionFeedbackDeconstruction,
	SectionFeedbackSystemPrompt,
}

// Essay is one graded essay row from the dataset. Created once at load time,
// never mutated.
type Essay struct {
	ID       int
	Module   int
	Text     string
	Grade    float64
	Feedback string
}

// ModuleInfo describes the film and essay question for one course module.
type ModuleInfo struct {
	Movie    string
	Question string
	Details  string
}

// AnalysisRecord is one row of the master CSV.
type AnalysisRecord struct {
	Iteration      int
	Module         int // 0 for whole-dataset runs
	AnalysisType   AnalysisSection
	Content        string
	SamplesGrades  string // JSON: stratum -> grade
	SamplesIDs     string // JSON: stratum -> essay id
	SamplesModules string // JSON: stratum -> module
	Timestamp      string
}
