package analysis

import (
	"strings"

	"github.com/style-miner/analyzer/internal/models"
)

// sectionMarkers maps each analysis section to the header fragments that
// open it. A line starts a section when it contains any fragment AND the
// section's required keyword, so "1. GRADING STYLE DECONSTRUCTION" and a
// bare "GRADING DECONSTRUCTION" both match.
var sectionMarkers = []struct {
	section  models.AnalysisSection
	any      []string
	required string
}{
	{models.SectionGradingDeconstruction, []string{"1.", "GRADING STYLE", "GRADING DECONSTRUCTION"}, "GRADING"},
	{models.SectionGradingSystemPrompt, []string{"2.", "SYSTEM PROMPT FOR GRADING", "GRADING EMULATION"}, "GRADING"},
	{models.SectionFeedbackDeconstruction, []string{"3.", "FEEDBACK STYLE", "FEEDBACK DECONSTRUCTION"}, "FEEDBACK"},
	{models.SectionFeedbackSystemPrompt, []string{"4.", "SYSTEM PROMPT FOR FEEDBACK", "FEEDBACK EMULATION"}, "FEEDBACK"},
}

// ParseSections splits a raw model response into the four analysis
// sections. Markdown header lines are treated as separators, not content;
// text before the first recognized header is discarded.
func ParseSections(response string) map[models.AnalysisSection]string {
	sections := make(map[models.AnalysisSection]string, len(models.AnalysisSections))
	for _, s := range models.AnalysisSections {
		sections[s] = ""
	}

	var current models.AnalysisSection
	var content []string

	flush := func() {
		if current != "" && len(content) > 0 {
			sections[current] = strings.TrimSpace(strings.Join(content, "\n"))
		}
	}

	for _, line := range strings.Split(response, "\n") {
		if section, ok := matchHeader(line); ok {
			flush()
			current = section
			content = nil
			continue
		}
		if current != "" && !strings.HasPrefix(line, "#") && strings.TrimSpace(line) != "" {
			content = append(content, line)
		}
	}
	flush()

	return sections
}

func matchHeader(line string) (models.AnalysisSection, bool) {
	upper := strings.ToUpper(strings.TrimSpace(line))
	for _, m := range sectionMarkers {
		if !strings.Contains(upper, m.required) {
			continue
		}
		for _, frag := range m.any {
			if strings.Contains(upper, frag) {
				return m.section, true
			}
		}
	}
	return "", false
}
