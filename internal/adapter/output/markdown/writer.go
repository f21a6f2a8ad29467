package markdown

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/davidmanzanoai/github-analytics/internal/usecase/analysis"
)

type clock func() string

// Writer renders repository reports into Markdown.
type Writer struct {
	now clock
}

// NewWriter constructs a Markdown writer with a timestamp supplier. The
// supplier feeds saved filenames; pass DefaultClock outside tests.
func NewWriter(now clock) *Writer {
	return &Writer{now: now}
}

// DefaultClock formats the current UTC time for filenames.
func DefaultClock() string {
	return time.Now().UTC().Format("20060102T150405Z")
}

// Render produces the Markdown document for a report.
func (w *Writer) Render(report *analysis.Report) string {
	var builder strings.Builder
	caser := cases.Title(language.English)
	printer := message.NewPrinter(language.English)

	builder.WriteString(fmt.Sprintf("# Repository Report: %s\n\n", report.Repository))
	builder.WriteString(fmt.Sprintf("Generated: %s\n\n", report.GeneratedAt.Format(time.RFC3339)))

	writeSummary(&builder, printer, report.Summary)

	if top := report.TopContributor; top != nil {
		builder.WriteString("## Top Contributor\n\n")
		builder.WriteString(fmt.Sprintf("- Login: %s\n", top.Login))
		builder.WriteString(printer.Sprintf("- Contributions: %d (%.1f%% of recorded activity)\n", top.Contributions, top.Percent))
		builder.WriteString(printer.Sprintf("- Contributors counted: %d\n\n", top.TotalContributors))
	}

	if v := report.Velocity; v != nil {
		builder.WriteString("## Development Velocity\n\n")
		builder.WriteString(printer.Sprintf("- Commits in window: %d\n", v.Commits))
		builder.WriteString(fmt.Sprintf("- First commit: %s\n", v.FirstCommit.Format("2006-01-02")))
		builder.WriteString(fmt.Sprintf("- Last commit: %s\n", v.LastCommit.Format("2006-01-02")))
		builder.WriteString(printer.Sprintf("- Span: %d days\n", v.SpanDays))
		if v.SpanDays > 0 {
			builder.WriteString(fmt.Sprintf("- Pace: %.2f commits/day (%.1f/week)\n", v.CommitsPerDay, v.CommitsPerWeek))
		}
		builder.WriteString(printer.Sprintf("- Active authors: %d\n\n", v.ActiveAuthors))
	}

	if len(report.Directories) > 0 {
		builder.WriteString("## Code Structure\n\n")
		if most := report.MostComplex(); most != nil {
			builder.WriteString(printer.Sprintf("Largest area: `%s` (%d files, %d bytes)\n\n", most.Name, most.Files, most.TotalBytes))
		}
		builder.WriteString("| Directory | Files | Bytes | Main Extensions |\n")
		builder.WriteString("|-----------|------:|------:|-----------------|\n")
		for _, dir := range report.Directories {
			builder.WriteString(printer.Sprintf("| %s | %d | %d | %s |\n", dir.Name, dir.Files, dir.TotalBytes, extensionList(dir.Extensions)))
		}
		builder.WriteString("\n")
	}

	writeDocumentation(&builder, caser, report.Documentation)

	return builder.String()
}

// Save renders the report and writes it under outputDir with a timestamped
// filename. Returns the written path.
func (w *Writer) Save(report *analysis.Report, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	filename := fmt.Sprintf("%s_report_%s.md", sanitise(report.Repository), w.now())
	path := filepath.Join(outputDir, filename)

	if err := os.WriteFile(path, []byte(w.Render(report)), 0o644); err != nil {
		return "", fmt.Errorf("write markdown: %w", err)
	}

	return path, nil
}

func writeSummary(builder *strings.Builder, printer *message.Printer, s analysis.Summary) {
	builder.WriteString("## Summary\n\n")
	if s.Description != "" {
		builder.WriteString(s.Description)
		builder.WriteString("\n\n")
	}
	builder.WriteString(printer.Sprintf("- Stars: %d\n", s.Stars))
	builder.WriteString(printer.Sprintf("- Forks: %d\n", s.Forks))
	builder.WriteString(printer.Sprintf("- Watchers: %d\n", s.Watchers))
	builder.WriteString(printer.Sprintf("- Open issues: %d\n", s.OpenIssues))
	builder.WriteString(fmt.Sprintf("- Size: %.1f MB\n", s.SizeMB))
	builder.WriteString(printer.Sprintf("- Contributors: %d\n", s.Contributors))
	if len(s.TopContributors) > 0 {
		builder.WriteString(fmt.Sprintf("- Leading contributors: %s\n", strings.Join(s.TopContributors, ", ")))
	}
	if len(s.Languages) > 0 {
		parts := make([]string, 0, len(s.Languages))
		for _, lang := range s.Languages {
			parts = append(parts, fmt.Sprintf("%s %.1f%%", lang.Name, lang.Percent))
		}
		builder.WriteString(fmt.Sprintf("- Languages: %s\n", strings.Join(parts, ", ")))
	}
	if s.HTMLURL != "" {
		builder.WriteString(fmt.Sprintf("- URL: %s\n", s.HTMLURL))
	}
	builder.WriteString("\n")
}

func writeDocumentation(builder *strings.Builder, caser cases.Caser, doc analysis.Documentation) {
	builder.WriteString("## Documentation\n\n")
	builder.WriteString(fmt.Sprintf("Score: %d/%d\n\n", doc.Score, doc.MaxScore))

	sections := []struct {
		name  string
		files []string
	}{
		{"readme", doc.Readme},
		{"contributing", doc.Contributing},
		{"license", doc.License},
		{"changelog", doc.Changelog},
		{"technical docs", doc.TechnicalDocs},
		{"other", doc.Other},
	}
	for _, section := range sections {
		if len(section.files) == 0 {
			continue
		}
		builder.WriteString(fmt.Sprintf("- %s: %s\n", caser.String(section.name), strings.Join(section.files, ", ")))
	}
	builder.WriteString("\n")
}

func extensionList(extensions []analysis.ExtensionCount) string {
	if len(extensions) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		parts = append(parts, fmt.Sprintf("%s (%d)", ext.Name, ext.Count))
	}
	return strings.Join(parts, ", ")
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
