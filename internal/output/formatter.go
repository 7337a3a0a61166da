package output

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rpgo/portfolio-survival/internal/calculation"
)

// Formatter defines a pluggable output formatter that returns a byte slice.
// Implementations should be pure (no side effects besides deterministic formatting).
type Formatter interface {
	Format(report *calculation.PlanReport) ([]byte, error)
	// Name returns a short identifier for logging / debugging.
	Name() string
}

// FormatterFunc adapter to allow ordinary functions to act as a Formatter.
type FormatterFunc struct {
	ID string
	F  func(*calculation.PlanReport) ([]byte, error)
}

func (ff FormatterFunc) Format(r *calculation.PlanReport) ([]byte, error) { return ff.F(r) }
func (ff FormatterFunc) Name() string                                     { return ff.ID }

// WriteFormatted runs a formatter and writes output to a timestamped file in
// dir named after the formatter.
func WriteFormatted(f Formatter, report *calculation.PlanReport, dir, ext string) (string, error) {
	data, err := f.Format(report)
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	filename := filepath.Join(dir, fmt.Sprintf("survival_%s_%s.%s", f.Name(), time.Now().Format("20060102_150405"), ext))
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", err
	}
	return filename, nil
}

// builtInFormatters stores available formatters.
var builtInFormatters = []Formatter{
	ConsoleFormatter{},
	ConsoleLiteFormatter{},
	CSVCheckpointExporter{},
	CSVDetailedExporter{},
	PathsCSVExporter{},
	HTMLFormatter{},
	JSONFormatter{},
	MarkdownFormatter{},
	PDFFormatter{},
}

// GetFormatterByName fetches a registered formatter.
func GetFormatterByName(name string) Formatter {
	n := NormalizeFormatName(name)
	for _, f := range builtInFormatters {
		if f.Name() == name {
			return f
		}
	}
	// try normalized name
	for _, f := range builtInFormatters {
		if f.Name() == n {
			return f
		}
	}
	return nil
}

// aliasMap provides user-friendly synonyms for format names.
var aliasMap = map[string]string{
	"verbose":      "console",
	"text":         "console",
	"summary":      "console-lite",
	"csv-detailed": "detailed-csv",
	"csv-paths":    "paths-csv",
	"checkpoints":  "csv",
	"html-report":  "html",
	"json-pretty":  "json",
	"md":           "markdown",
}

// NormalizeFormatName lowers and resolves aliases.
func NormalizeFormatName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if mapped, ok := aliasMap[n]; ok {
		return mapped
	}
	return n
}

// AvailableFormatterNames returns the canonical formatter names.
func AvailableFormatterNames() []string {
	names := make([]string, 0, len(builtInFormatters))
	for _, f := range builtInFormatters {
		names = append(names, f.Name())
	}
	sort.Strings(names)
	return names
}

// AvailableFormatAliases returns the supported alias keys.
func AvailableFormatAliases() []string {
	keys := make([]string, 0, len(aliasMap))
	for k := range aliasMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Extension returns the file extension used when a format is written to disk.
func Extension(format string) string {
	switch n := NormalizeFormatName(format); {
	case strings.Contains(n, "csv"):
		return "csv"
	case n == "console" || n == "console-lite":
		return "txt"
	case n == "markdown":
		return "md"
	default:
		return n
	}
}

// ContentType returns the MIME type served for a format.
func ContentType(format string) string {
	switch Extension(format) {
	case "csv":
		return "text/csv; charset=utf-8"
	case "json":
		return "application/json; charset=utf-8"
	case "html":
		return "text/html; charset=utf-8"
	case "md":
		return "text/markdown; charset=utf-8"
	case "pdf":
		return "application/pdf"
	default:
		return "text/plain; charset=utf-8"
	}
}
