package training

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/style-miner/analyzer/internal/models"
)

func testEssays() []models.Essay {
	return []models.Essay{
		{ID: 0, Module: 2, Grade: 98, Text: "top", Feedback: "excellent"},
		{ID: 1, Module: 2, Grade: 92, Text: "upper", Feedback: "strong"},
		{ID: 2, Module: 2, Grade: 88, Text: "mid-high", Feedback: "good"},
		{ID: 3, Module: 2, Grade: 86, Text: "low-high", Feedback: "fine"},
		{ID: 4, Module: 2, Grade: 82, Text: "near-threshold", Feedback: "close"},
		{ID: 5, Module: 2, Grade: 74, Text: "mid-low", Feedback: "work needed"},
		{ID: 6, Module: 2, Grade: 58, Text: "bottom", Feedback: "poor"},
		{ID: 7, Module: 3, Grade: 95, Text: "only high", Feedback: "great"},
		{ID: 8, Module: 3, Grade: 67, Text: "only low", Feedback: "weak"},
	}
}

func TestSelectExamplesRankPositions(t *testing.T) {
	selected := SelectExamples(testEssays(), 2, DefaultThreshold)

	if len(selected) != 5 {
		t.Fatalf("expected 5 examples, got %d", len(selected))
	}

	// High picks: top of range, middle rank, lowest high-grade.
	if selected[0].Grade != 98 {
		t.Errorf("first high pick grade = %v, want 98", selected[0].Grade)
	}
	if selected[1].Grade != 88 {
		t.Errorf("middle high pick grade = %v, want 88", selected[1].Grade)
	}
	if selected[2].Grade != 86 {
		t.Errorf("lowest high pick grade = %v, want 86", selected[2].Grade)
	}

	// Low picks: just below threshold first, then near minimum.
	if selected[3].Grade != 82 {
		t.Errorf("near-threshold low pick grade = %v, want 82", selected[3].Grade)
	}
	if selected[4].Grade != 58 {
		t.Errorf("minimum low pick grade = %v, want 58", selected[4].Grade)
	}
}

func TestSelectExamplesSparseModule(t *testing.T) {
	selected := SelectExamples(testEssays(), 3, DefaultThreshold)

	// One high and one low essay: both kept, nothing invented.
	if len(selected) != 2 {
		t.Fatalf("expected 2 examples, got %d", len(selected))
	}
}

func TestCoarseStratum(t *testing.T) {
	pool := testEssays()[:7] // module 2, max grade 98

	tests := []struct {
		grade float64
		want  string
	}{
		{98, "maximum"},
		{96, "maximum"}, // within 3 of max
		{92, "q3_75th"},
		{87, "median_high"},
		{74, "q1_25th"},
		{58, "minimum"},
	}
	for _, tt := range tests {
		if got := CoarseStratum(tt.grade, pool, DefaultThreshold); got != tt.want {
			t.Errorf("CoarseStratum(%v) = %q, want %q", tt.grade, got, tt.want)
		}
	}
}

func TestBuildExamplesIDsAndCategories(t *testing.T) {
	modules := map[int]models.ModuleInfo{
		2: {Movie: "Perfect Secret", Question: "Q2", Details: "D2"},
		3: {Movie: "Another Round", Question: "Q3", Details: "D3"},
	}

	examples := BuildExamples(testEssays(), []int{2, 3}, modules, DefaultThreshold)

	if len(examples) != 7 {
		t.Fatalf("expected 7 examples, got %d", len(examples))
	}
	if examples[0].ExampleID != "M2_001" {
		t.Errorf("first id = %q, want M2_001", examples[0].ExampleID)
	}
	if examples[5].ExampleID != "M3_001" {
		t.Errorf("first module-3 id = %q, want M3_001", examples[5].ExampleID)
	}
	if examples[0].GradeCategory != "High" || examples[4].GradeCategory != "Low" {
		t.Errorf("grade categories wrong: %q, %q", examples[0].GradeCategory, examples[4].GradeCategory)
	}
	if examples[0].Movie != "Perfect Secret" {
		t.Errorf("module info not joined: %q", examples[0].Movie)
	}
}

func TestWriteExamples(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "training_examples.csv")

	modules := map[int]models.ModuleInfo{2: {Movie: "Perfect Secret"}}
	examples := BuildExamples(testEssays(), []int{2}, modules, DefaultThreshold)

	if err := WriteExamples(path, examples); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open examples CSV: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parse examples CSV: %v", err)
	}
	if len(rows) != 6 {
		t.Fatalf("expected header + 5 rows, got %d", len(rows))
	}
	if rows[0][0] != "example_id" || rows[0][9] != "stratum" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][0] != "M2_001" || rows[1][6] != "98" {
		t.Errorf("first row = %v", rows[1])
	}
}
