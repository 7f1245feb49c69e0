package results

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/style-miner/analyzer/internal/models"
)

// Master CSV column order.
var masterHeader = []string{
	"iteration",
	"analysis_type",
	"content",
	"samples_grades",
	"samples_ids",
	"samples_modules",
	"timestamp",
}

// Writer persists per-iteration artifacts and the aggregated master CSV.
// Every run gets a fresh UUID recorded in run_info.json.
type Writer struct {
	OutputDir  string
	MasterPath string
	RunID      string
}

// NewWriter prepares the output directories and stamps run_info.json.
func NewWriter(outputDir, masterPath string) (*Writer, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", outputDir, err)
	}
	if dir := filepath.Dir(masterPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create master dir %s: %w", dir, err)
		}
	}

	w := &Writer{
		OutputDir:  outputDir,
		MasterPath: masterPath,
		RunID:      uuid.NewString(),
	}
	if err := w.writeRunInfo(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Writer) writeRunInfo() error {
	info := map[string]string{
		"run_id":     w.RunID,
		"started_at": time.Now().Format(time.RFC3339),
		"output_dir": w.OutputDir,
		"master_csv": w.MasterPath,
	}
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run info: %w", err)
	}
	path := filepath.Join(w.OutputDir, "run_info.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write run info: %w", err)
	}
	return nil
}

// SampleInfo is the JSON rendering of one iteration's sample metadata.
type SampleInfo struct {
	Grades   string // stratum -> grade
	IDs      string // stratum -> essay id
	Modules  string // stratum -> module
	Combined string // stratum -> {grade, id, module}
}

// EncodeSamples serializes sampled essays for the CSV metadata columns.
func EncodeSamples(samples map[models.Stratum]models.Essay) (SampleInfo, error) {
	grades := make(map[models.Stratum]float64, len(samples))
	ids := make(map[models.Stratum]int, len(samples))
	modules := make(map[models.Stratum]int, len(samples))
	combined := make(map[models.Stratum]map[string]any, len(samples))

	for stratum, e := range samples {
		grades[stratum] = e.Grade
		ids[stratum] = e.ID
		modules[stratum] = e.Module
		combined[stratum] = map[string]any{
			"grade":  e.Grade,
			"id":     e.ID,
			"module": e.Module,
		}
	}

	var info SampleInfo
	for _, enc := range []struct {
		dst *string
		src any
	}{
		{&info.Grades, grades},
		{&info.IDs, ids},
		{&info.Modules, modules},
		{&info.Combined, combined},
	} {
		data, err := json.Marshal(enc.src)
		if err != nil {
			return SampleInfo{}, fmt.Errorf("encode sample metadata: %w", err)
		}
		*enc.dst = string(data)
	}
	return info, nil
}

// IterationFileName names the per-iteration CSV; module-scoped runs carry
// a module prefix.
func IterationFileName(iteration, module int) string {
	if module > 0 {
		return fmt.Sprintf("module%d_iteration_%02d.csv", module, iteration)
	}
	return fmt.Sprintf("iteration_%02d.csv", iteration)
}

// SaveIteration writes one iteration's parsed sections to its own CSV.
func (w *Writer) SaveIteration(iteration, module int, sections map[models.AnalysisSection]string, info SampleInfo, timestamp string) (string, error) {
	path := filepath.Join(w.OutputDir, IterationFileName(iteration, module))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create iteration file: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"iteration", "analysis_type", "content", "samples_used", "timestamp"}); err != nil {
		return "", fmt.Errorf("write iteration header: %w", err)
	}
	for _, section := range models.AnalysisSections {
		row := []string{
			strconv.Itoa(iteration),
			string(section),
			sections[section],
			info.Combined,
			timestamp,
		}
		if err := cw.Write(row); err != nil {
			return "", fmt.Errorf("write iteration row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("flush iteration file: %w", err)
	}
	return path, nil
}

// SaveRawResponse keeps the unparsed model output next to the iteration CSV.
func (w *Writer) SaveRawResponse(iteration, module int, response string) (string, error) {
	name := fmt.Sprintf("iteration_%02d_response.txt", iteration)
	if module > 0 {
		name = fmt.Sprintf("module%d_iteration_%02d_response.txt", module, iteration)
	}
	path := filepath.Join(w.OutputDir, name)
	if err := os.WriteFile(path, []byte(response), 0o644); err != nil {
		return "", fmt.Errorf("write raw response: %w", err)
	}
	return path, nil
}

// SaveComparison stores the cross-module synthesis prompt and response.
func (w *Writer) SaveComparison(prompt, response string) error {
	promptPath := filepath.Join(w.OutputDir, "comparison_prompt.txt")
	if err := os.WriteFile(promptPath, []byte(prompt), 0o644); err != nil {
		return fmt.Errorf("write comparison prompt: %w", err)
	}
	if response == "" {
		return nil
	}
	responsePath := filepath.Join(w.OutputDir, "comparison_response.txt")
	if err := os.WriteFile(responsePath, []byte(response), 0o644); err != nil {
		return fmt.Errorf("write comparison response: %w", err)
	}
	return nil
}

// WriteMaster rewrites the master CSV from all accumulated records.
func (w *Writer) WriteMaster(records []models.AnalysisRecord) error {
	f, err := os.Create(w.MasterPath)
	if err != nil {
		return fmt.Errorf("create master CSV: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(masterHeader); err != nil {
		return fmt.Errorf("write master header: %w", err)
	}
	for _, r := range records {
		row := []string{
			strconv.Itoa(r.Iteration),
			string(r.AnalysisType),
			r.Content,
			r.SamplesGrades,
			r.SamplesIDs,
			r.SamplesModules,
			r.Timestamp,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write master row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush master CSV: %w", err)
	}
	return nil
}
