package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/style-miner/analyzer/internal/models"
)

// Column names in the grading dataset and module details CSVs.
const (
	ColModule   = "Module"
	ColEssay    = "Student Essay"
	ColGrade    = "Grade out of 100"
	ColFeedback = "Teacher Feedback"

	ColMovie        = "Movie"
	ColQuestion     = "Essay Question"
	ColMovieDetails = "Movie-details"
)

// DecodeFile reads path and probes encodings in order: utf-8, latin-1,
// cp1252, iso-8859-1. The first clean decode wins. Returns the decoded
// text and the encoding name that succeeded.
func DecodeFile(path string) (string, string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("read %s: %w", path, err)
	}

	if utf8.Valid(raw) {
		return string(raw), "utf-8", nil
	}

	fallbacks := []struct {
		name string
		cm   *charmap.Charmap
	}{
		{"latin-1", charmap.ISO8859_1},
		{"cp1252", charmap.Windows1252},
		{"iso-8859-1", charmap.ISO8859_1},
	}
	for _, fb := range fallbacks {
		decoded, err := fb.cm.NewDecoder().Bytes(raw)
		if err != nil {
			continue
		}
		return string(decoded), fb.name, nil
	}

	return "", "", fmt.Errorf("no supported encoding could decode %s", path)
}

// LoadEssays parses the grading dataset. Rows with a missing or malformed
// grade or module are silently skipped; surviving rows get sequential IDs.
func LoadEssays(path string) ([]models.Essay, error) {
	text, encName, err := DecodeFile(path)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	cols := indexColumns(header)

	var essays []models.Essay
	for {
		row, err := reader.Read()
		if err != nil {
			break
		}

		gradeText := strings.TrimSpace(field(row, cols, ColGrade))
		if gradeText == "" {
			continue
		}
		grade, err := strconv.ParseFloat(gradeText, 64)
		if err != nil {
			continue
		}
		module, err := strconv.Atoi(strings.TrimSpace(field(row, cols, ColModule)))
		if err != nil {
			continue
		}

		essays = append(essays, models.Essay{
			ID:       len(essays),
			Module:   module,
			Text:     field(row, cols, ColEssay),
			Grade:    grade,
			Feedback: field(row, cols, ColFeedback),
		})
	}

	if len(essays) == 0 {
		return nil, fmt.Errorf("no gradable essays in %s (decoded as %s)", path, encName)
	}
	return essays, nil
}

// LoadModules parses the module details CSV into a module-number map.
func LoadModules(path string) (map[int]models.ModuleInfo, error) {
	text, _, err := DecodeFile(path)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	cols := indexColumns(header)

	modules := make(map[int]models.ModuleInfo)
	for {
		row, err := reader.Read()
		if err != nil {
			break
		}
		num, err := strconv.Atoi(strings.TrimSpace(field(row, cols, ColModule)))
		if err != nil {
			continue
		}
		modules[num] = models.ModuleInfo{
			Movie:    field(row, cols, ColMovie),
			Question: field(row, cols, ColQuestion),
			Details:  field(row, cols, ColMovieDetails),
		}
	}
	return modules, nil
}

// LoadText reads a rubric or instructions file with the same encoding probe.
func LoadText(path string) (string, error) {
	text, _, err := DecodeFile(path)
	return text, err
}

// FilterModules keeps only essays from the given modules, re-numbering IDs
// so the filtered slice is a self-contained pool. An empty filter returns
// the input unchanged.
func FilterModules(essays []models.Essay, modules []int) []models.Essay {
	if len(modules) == 0 {
		return essays
	}
	want := make(map[int]bool, len(modules))
	for _, m := range modules {
		want[m] = true
	}
	var out []models.Essay
	for _, e := range essays {
		if want[e.Module] {
			e.ID = len(out)
			out = append(out, e)
		}
	}
	return out
}

// ModuleEssays returns the essays belonging to a single module, IDs intact.
func ModuleEssays(essays []models.Essay, module int) []models.Essay {
	var out []models.Essay
	for _, e := range essays {
		if e.Module == module {
			out = append(out, e)
		}
	}
	return out
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	return cols
}

func field(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}
