package json

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/davidmanzanoai/github-analytics/internal/usecase/analysis"
)

// Writer persists repository reports as indented JSON files.
type Writer struct {
	now func() string
}

// NewWriter creates a new JSON writer.
func NewWriter(now func() string) *Writer {
	return &Writer{now: now}
}

// Render marshals the report with indentation.
func (w *Writer) Render(report *analysis.Report) ([]byte, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return append(data, '\n'), nil
}

// Save writes the report under outputDir with a timestamped filename and
// returns the written path.
func (w *Writer) Save(report *analysis.Report, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := w.Render(report)
	if err != nil {
		return "", err
	}

	filename := fmt.Sprintf("%s_report_%s.json", sanitise(report.Repository), w.now())
	path := filepath.Join(outputDir, filename)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write json file: %w", err)
	}

	return path, nil
}

func sanitise(value string) string {
	if value == "" {
		return "unknown"
	}
	value = strings.ToLower(value)
	value = strings.ReplaceAll(value, string(filepath.Separator), "-")
	value = strings.ReplaceAll(value, " ", "-")
	return value
}
