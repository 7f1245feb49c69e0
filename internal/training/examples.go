package training

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/style-miner/analyzer/internal/dataset"
	"github.com/style-miner/analyzer/internal/models"
)

// DefaultThreshold splits high-grade from low-grade examples.
const DefaultThreshold = 85.0

// Example is one curated row of the golden examples CSV.
type Example struct {
	ExampleID     string
	Module        int
	Movie         string
	EssayQuestion string
	MovieDetails  string
	StudentEssay  string
	Grade         float64
	Feedback      string
	GradeCategory string
	Stratum       string
}

var exampleHeader = []string{
	"example_id",
	"module",
	"movie",
	"essay_question",
	"movie_details",
	"student_essay",
	"grade",
	"teacher_feedback",
	"grade_category",
	"stratum",
}

// SelectExamples picks up to five essays per module: three high-grade
// essays at spread rank positions (top, middle, lowest-high) and two
// low-grade essays (just below threshold, near minimum). Modules with
// fewer essays contribute what they have.
func SelectExamples(essays []models.Essay, module int, threshold float64) []models.Essay {
	pool := dataset.ModuleEssays(essays, module)

	var high, low []models.Essay
	for _, e := range pool {
		if e.Grade >= threshold {
			high = append(high, e)
		} else {
			low = append(low, e)
		}
	}

	var selected []models.Essay

	if len(high) >= 3 {
		sorted := make([]models.Essay, len(high))
		copy(sorted, high)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Grade > sorted[j].Grade })
		selected = append(selected, sorted[0], sorted[len(sorted)/2], sorted[len(sorted)-1])
	} else {
		selected = append(selected, high...)
	}

	if len(low) >= 2 {
		sorted := make([]models.Essay, len(low))
		copy(sorted, low)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Grade < sorted[j].Grade })
		selected = append(selected, sorted[len(sorted)-1], sorted[0])
	} else {
		selected = append(selected, low...)
	}

	if len(selected) > 5 {
		selected = selected[:5]
	}
	return selected
}

// GradeCategory labels a grade High or Low relative to the threshold.
func GradeCategory(grade, threshold float64) string {
	if grade >= threshold {
		return "High"
	}
	return "Low"
}

// CoarseStratum assigns a coarse stratum label by the grade's position in
// the module's range. Unlike the sampler's quantile targets, these bands
// are fixed cut-offs meant for human-readable labels.
func CoarseStratum(grade float64, pool []models.Essay, threshold float64) string {
	maxGrade := pool[0].Grade
	for _, e := range pool[1:] {
		if e.Grade > maxGrade {
			maxGrade = e.Grade
		}
	}

	switch {
	case grade >= maxGrade-3:
		return "maximum"
	case grade >= 90:
		return "q3_75th"
	case grade >= threshold:
		return "median_high"
	case grade >= 70:
		return "q1_25th"
	default:
		return "minimum"
	}
}

// BuildExamples curates the golden example rows for the given modules.
func BuildExamples(essays []models.Essay, moduleNums []int, modules map[int]models.ModuleInfo, threshold float64) []Example {
	var out []Example
	for _, module := range moduleNums {
		info := modules[module]
		pool := dataset.ModuleEssays(essays, module)
		if len(pool) == 0 {
			continue
		}
		for i, e := range SelectExamples(essays, module, threshold) {
			out = append(out, Example{
				ExampleID:     fmt.Sprintf("M%d_%03d", module, i+1),
				Module:        module,
				Movie:         info.Movie,
				EssayQuestion: info.Question,
				MovieDetails:  info.Details,
				StudentEssay:  e.Text,
				Grade:         e.Grade,
				Feedback:      e.Feedback,
				GradeCategory: GradeCategory(e.Grade, threshold),
				Stratum:       CoarseStratum(e.Grade, pool, threshold),
			})
		}
	}
	return out
}

// WriteExamples saves the golden examples CSV.
func WriteExamples(path string, examples []Example) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create examples dir %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create examples CSV: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(exampleHeader); err != nil {
		return fmt.Errorf("write examples header: %w", err)
	}
	for _, ex := range examples {
		row := []string{
			ex.ExampleID,
			strconv.Itoa(ex.Module),
			ex.Movie,
			ex.EssayQuestion,
			ex.MovieDetails,
			ex.StudentEssay,
			strconv.FormatFloat(ex.Grade, 'f', -1, 64),
			ex.Feedback,
			ex.GradeCategory,
			ex.Stratum,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write example row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush examples CSV: %w", err)
	}
	return nil
}
