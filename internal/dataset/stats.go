package dataset

import (
	"fmt"
	"sort"
	"strings"

	"github.com/style-miner/analyzer/internal/models"
)

// shortEssayWords is the word count below which an essay counts as short.
// The grading style penalizes brevity, so short essays get their own band.
const shortEssayWords = 250

// Stats summarizes the grade distribution of a loaded pool.
type Stats struct {
	TotalEssays int
	MeanGrade   float64
	MinGrade    float64
	MaxGrade    float64

	HighCount int // grade >= 95
	MidCount  int // 85 <= grade < 95
	LowCount  int // grade < 85

	ShortCount     int
	ShortMeanGrade float64

	PerModule map[int]int
}

// Summarize computes dataset statistics over the loaded essays.
func Summarize(essays []models.Essay) Stats {
	stats := Stats{PerModule: make(map[int]int)}
	if len(essays) == 0 {
		return stats
	}

	stats.TotalEssays = len(essays)
	stats.MinGrade = essays[0].Grade
	stats.MaxGrade = essays[0].Grade

	var sum, shortSum float64
	for _, e := range essays {
		sum += e.Grade
		if e.Grade < stats.MinGrade {
			stats.MinGrade = e.Grade
		}
		if e.Grade > stats.MaxGrade {
			stats.MaxGrade = e.Grade
		}

		switch {
		case e.Grade >= 95:
			stats.HighCount++
		case e.Grade >= 85:
			stats.MidCount++
		default:
			stats.LowCount++
		}

		if len(strings.Fields(e.Text)) < shortEssayWords {
			stats.ShortCount++
			shortSum += e.Grade
		}

		stats.PerModule[e.Module]++
	}

	stats.MeanGrade = sum / float64(len(essays))
	if stats.ShortCount > 0 {
		stats.ShortMeanGrade = shortSum / float64(stats.ShortCount)
	}
	return stats
}

// Render formats the statistics for terminal output.
func (s Stats) Render() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Dataset summary\n")
	fmt.Fprintf(&sb, "  Total essays:  %d\n", s.TotalEssays)
	fmt.Fprintf(&sb, "  Average grade: %.2f\n", s.MeanGrade)
	fmt.Fprintf(&sb, "  Min grade:     %g\n", s.MinGrade)
	fmt.Fprintf(&sb, "  Max grade:     %g\n", s.MaxGrade)
	fmt.Fprintf(&sb, "  Grade bands:   %d high (>=95), %d mid (85-94), %d low (<85)\n",
		s.HighCount, s.MidCount, s.LowCount)

	if s.ShortCount > 0 {
		fmt.Fprintf(&sb, "  Short essays (<%d words): %d, average grade %.2f\n",
			shortEssayWords, s.ShortCount, s.ShortMeanGrade)
	}

	if len(s.PerModule) > 0 {
		sb.WriteString("  Essays per module:\n")
		for _, module := range sortedKeys(s.PerModule) {
			fmt.Fprintf(&sb, "    Module %d: %d\n", module, s.PerModule[module])
		}
	}
	return sb.String()
}

func sortedKeys(m map[int]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
