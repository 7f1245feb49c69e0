package results

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/style-miner/analyzer/internal/models"
)

// TypeSummary aggregates the records of one analysis type.
type TypeSummary struct {
	Records    int
	TotalWords int
}

// Report summarizes an existing master CSV: how many records of each
// analysis type, their word volume, and which grades the iterations
// actually sampled.
type Report struct {
	TotalRecords  int
	Iterations    int
	ByType        map[models.AnalysisSection]TypeSummary
	SampledGrades []float64 // distinct, ascending
}

// BuildReport reads a master CSV produced by a prior run.
func BuildReport(masterPath string) (*Report, error) {
	f, err := os.Open(masterPath)
	if err != nil {
		return nil, fmt.Errorf("open master CSV %s: %w", masterPath, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read master header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"iteration", "analysis_type", "content", "samples_grades"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("master CSV missing column %q", required)
		}
	}

	report := &Report{ByType: make(map[models.AnalysisSection]TypeSummary)}
	iterations := make(map[string]bool)
	grades := make(map[float64]bool)

	for {
		row, err := reader.Read()
		if err != nil {
			break
		}

		report.TotalRecords++
		iterations[row[col["iteration"]]] = true

		section := models.AnalysisSection(row[col["analysis_type"]])
		summary := report.ByType[section]
		summary.Records++
		summary.TotalWords += len(strings.Fields(row[col["content"]]))
		report.ByType[section] = summary

		// samples_grades is a JSON object keyed by stratum.
		gjson.Parse(row[col["samples_grades"]]).ForEach(func(_, value gjson.Result) bool {
			grades[value.Float()] = true
			return true
		})
	}

	report.Iterations = len(iterations)
	for g := range grades {
		report.SampledGrades = append(report.SampledGrades, g)
	}
	sort.Float64s(report.SampledGrades)

	return report, nil
}

// Render formats the report for terminal output.
func (r *Report) Render() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Master CSV report\n")
	fmt.Fprintf(&sb, "  Records:    %d\n", r.TotalRecords)
	fmt.Fprintf(&sb, "  Iterations: %d\n", r.Iterations)

	sections := make([]models.AnalysisSection, 0, len(r.ByType))
	for s := range r.ByType {
		sections = append(sections, s)
	}
	sort.Slice(sections, func(i, j int) bool { return sections[i] < sections[j] })

	sb.WriteString("  By analysis type:\n")
	for _, s := range sections {
		summary := r.ByType[s]
		avg := 0
		if summary.Records > 0 {
			avg = summary.TotalWords / summary.Records
		}
		fmt.Fprintf(&sb, "    %-24s %d records, avg %d words\n", s, summary.Records, avg)
	}

	if len(r.SampledGrades) > 0 {
		parts := make([]string, len(r.SampledGrades))
		for i, g := range r.SampledGrades {
			parts[i] = fmt.Sprintf("%g", g)
		}
		fmt.Fprintf(&sb, "  Sampled grades: %s\n", strings.Join(parts, ", "))
	}

	return sb.String()
}
