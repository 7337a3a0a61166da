package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rpgo/portfolio-survival/internal/calculation"
)

func TestConsoleLiteFormatter(t *testing.T) {
	out, err := ConsoleLiteFormatter{}.Format(buildTestReport(t, false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	content := string(out)
	for _, want := range []string{"PORTFOLIO SURVIVAL SUMMARY", "Plan: Test plan", "Model=two_asset", "Survival=33.3%", "P50=$3,400"} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %q in output, got: %s", want, content)
		}
	}
}

func TestConsoleFormatter(t *testing.T) {
	out, err := ConsoleFormatter{}.Format(buildTestReport(t, true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	content := string(out)
	for _, want := range []string{
		"PORTFOLIO SURVIVAL ANALYSIS",
		"KEY ASSUMPTIONS:",
		"Survival probability:   33.3% (1 of 3 paths failed)",
		"ANNUAL CHECKPOINTS",
		"MEAN NET WITHDRAWALS BY BUCKET",
		"DATA QUALITY:",
		"HIGHLIGHTS:",
	} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %q in verbose output", want)
		}
	}

	out, err = ConsoleFormatter{}.Format(buildTestReport(t, false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(string(out), "MEAN NET WITHDRAWALS") {
		t.Fatalf("withdrawal table should only appear for the taxed model")
	}
}

func TestFormatters_RejectMissingSummary(t *testing.T) {
	report := buildTestReport(t, false)
	report.Summary = nil
	for _, f := range []Formatter{ConsoleFormatter{}, ConsoleLiteFormatter{}, CSVCheckpointExporter{}, CSVDetailedExporter{}, MarkdownFormatter{}, HTMLFormatter{}, PDFFormatter{}} {
		if _, err := f.Format(report); err == nil {
			t.Errorf("%s: expected error for report without summary", f.Name())
		}
	}
}

func TestCSVCheckpointExporter(t *testing.T) {
	out, err := CSVCheckpointExporter{}.Format(buildTestReport(t, false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 checkpoints, got %d lines", len(lines))
	}
	if lines[0] != "Year,Month,P10,P50,P90,SurvivalProbability" {
		t.Fatalf("unexpected header: %s", lines[0])
	}
	if lines[1] != "0,0,280.00,1000.00,1800.00,0.3333" {
		t.Fatalf("unexpected first row: %s", lines[1])
	}
	if !strings.HasPrefix(lines[3], "2,24,568.00,3400.00,4200.00,") {
		t.Fatalf("unexpected last row: %s", lines[3])
	}
}

func TestCSVDetailedExporter(t *testing.T) {
	out, err := CSVDetailedExporter{}.Format(buildTestReport(t, true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) != 26 {
		t.Fatalf("expected header + 25 months, got %d lines", len(lines))
	}
	if !strings.HasSuffix(lines[0], ",WithdrawTaxable,WithdrawTraditional,WithdrawRoth") {
		t.Fatalf("expected withdrawal columns, got header %s", lines[0])
	}
	if lines[1] != "0,0,280.00,1000.00,1800.00,150.00,50.00,100.00,0.00,100.00,50.00,0.00" {
		t.Fatalf("unexpected first row: %s", lines[1])
	}
	if !strings.HasPrefix(lines[25], "24,2,") {
		t.Fatalf("unexpected last row: %s", lines[25])
	}

	out, err = CSVDetailedExporter{}.Format(buildTestReport(t, false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(string(out), "Withdraw") {
		t.Fatalf("untaxed report should not carry withdrawal columns")
	}
}

func TestPathsCSVExporter(t *testing.T) {
	out, err := PathsCSVExporter{}.Format(buildTestReport(t, false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 paths, got %d lines", len(lines))
	}
	if got := len(strings.Split(lines[0], ",")); got != 29 {
		t.Fatalf("expected 29 columns, got %d", got)
	}
	if !strings.HasPrefix(lines[1], "0,false,10,0.004000,100.00,90.00,") {
		t.Fatalf("unexpected failed path row: %s", lines[1])
	}
	if !strings.HasPrefix(lines[2], "1,true,-1,0.005000,1000.00,") {
		t.Fatalf("unexpected surviving path row: %s", lines[2])
	}

	report := buildTestReport(t, false)
	report.Result = nil
	if _, err := (PathsCSVExporter{}).Format(report); err == nil {
		t.Fatalf("expected error without simulated paths")
	}
}

func TestJSONFormatter(t *testing.T) {
	out, err := JSONFormatter{}.Format(buildTestReport(t, false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if doc["name"] != "Test plan" || doc["variant"] != "two_asset" {
		t.Fatalf("unexpected identity fields: %v %v", doc["name"], doc["variant"])
	}
	summary, ok := doc["summary"].(map[string]any)
	if !ok {
		t.Fatalf("missing summary")
	}
	if summary["failed_paths"] != float64(1) {
		t.Fatalf("failed_paths = %v", summary["failed_paths"])
	}
	if a, ok := doc["assumptions"].([]any); !ok || len(a) == 0 {
		t.Fatalf("expected assumptions in JSON output")
	}
	if _, ok := doc["balances"]; ok {
		t.Fatalf("raw balances must not be serialised")
	}
}

func TestQuery(t *testing.T) {
	report := buildTestReport(t, false)

	v, err := Query(report, "$.summary.failed_paths")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != float64(1) {
		t.Fatalf("failed_paths = %v", v)
	}

	v, err = Query(report, "$.summary.ending_balance.p50")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != float64(3400) {
		t.Fatalf("median ending = %v", v)
	}

	out, err := QueryJSON(report, "$.name")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != `"Test plan"` {
		t.Fatalf("QueryJSON = %s", out)
	}

	if _, err := Query(report, "$.no_such_field"); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestMarkdownFormatter(t *testing.T) {
	out, err := MarkdownFormatter{}.Format(buildTestReport(t, true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	content := string(out)
	for _, want := range []string{
		"# Portfolio survival: Test plan",
		"**Survival probability: 33.3%**",
		"| Median | $3,400 |",
		"| 2 | 24 | $568 | $3,400 | $4,200 |",
		"## Mean net withdrawals",
		"## Data quality",
	} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %q in markdown, got:\n%s", want, content)
		}
	}
}

func TestHTMLFormatter(t *testing.T) {
	out, err := HTMLFormatter{}.Format(buildTestReport(t, false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	content := string(out)
	for _, want := range []string{
		"<!DOCTYPE html>",
		"<h1>Portfolio survival: Test plan</h1>",
		"<table>",
		"summary-card danger",
		`"p50":[1000,2200,3400]`,
	} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %q in HTML output", want)
		}
	}
}

func TestHTMLFormatter_EscapesPlanName(t *testing.T) {
	report := buildTestReport(t, false)
	report.Name = "<script>alert(1)</script>"
	out, err := HTMLFormatter{}.Format(report)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(string(out), "<script>alert(1)") {
		t.Fatalf("plan name was rendered unescaped")
	}
}

func TestPDFFormatter(t *testing.T) {
	out, err := PDFFormatter{}.Format(buildTestReport(t, true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF document")
	}
}

func TestGetFormatterByName(t *testing.T) {
	cases := map[string]string{
		"console":     "console",
		"verbose":     "console",
		"summary":     "console-lite",
		"csv":         "csv",
		"checkpoints": "csv",
		"csv-paths":   "paths-csv",
		" MD ":        "markdown",
		"pdf":         "pdf",
	}
	for in, want := range cases {
		f := GetFormatterByName(in)
		if f == nil {
			t.Fatalf("no formatter for %q", in)
		}
		if f.Name() != want {
			t.Errorf("GetFormatterByName(%q) = %s, want %s", in, f.Name(), want)
		}
	}
	if GetFormatterByName("docx") != nil {
		t.Fatalf("expected nil for unknown format")
	}
}

func TestLookup_UnknownFormat(t *testing.T) {
	_, err := Lookup("docx")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if !strings.Contains(err.Error(), "paths-csv") {
		t.Fatalf("error should list available formats: %v", err)
	}
}

func TestExtensionAndContentType(t *testing.T) {
	cases := []struct{ format, ext, ct string }{
		{"console", "txt", "text/plain; charset=utf-8"},
		{"summary", "txt", "text/plain; charset=utf-8"},
		{"detailed-csv", "csv", "text/csv; charset=utf-8"},
		{"json", "json", "application/json; charset=utf-8"},
		{"html", "html", "text/html; charset=utf-8"},
		{"md", "md", "text/markdown; charset=utf-8"},
		{"pdf", "pdf", "application/pdf"},
	}
	for _, c := range cases {
		if got := Extension(c.format); got != c.ext {
			t.Errorf("Extension(%q) = %q, want %q", c.format, got, c.ext)
		}
		if got := ContentType(c.format); got != c.ct {
			t.Errorf("ContentType(%q) = %q, want %q", c.format, got, c.ct)
		}
	}
}

func TestFormatterFunc(t *testing.T) {
	f := FormatterFunc{ID: "name-only", F: func(r *calculation.PlanReport) ([]byte, error) { return []byte(r.Name), nil }}
	out, err := f.Format(buildTestReport(t, false))
	if err != nil || string(out) != "Test plan" || f.Name() != "name-only" {
		t.Fatalf("FormatterFunc = %q, %v", out, err)
	}
}

func TestGenerateReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	report := buildTestReport(t, false)

	files, err := GenerateReport(report, "all", dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("expected 3 files, got %v", files)
	}
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil || info.Size() == 0 {
			t.Fatalf("expected non-empty file %s: %v", f, err)
		}
	}

	files, err = GenerateReport(report, "md", dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 1 || filepath.Ext(files[0]) != ".md" {
		t.Fatalf("unexpected markdown output: %v", files)
	}

	if _, err := GenerateReport(report, "docx", dir); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestGenerateAllCSVReports(t *testing.T) {
	dir := t.TempDir()
	files, err := GenerateAllCSVReports(buildTestReport(t, true), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"survival_checkpoints.csv", "survival_monthly.csv", "survival_paths.csv"}
	if len(files) != len(want) {
		t.Fatalf("expected %d files, got %v", len(want), files)
	}
	for i, f := range files {
		if filepath.Base(f) != want[i] {
			t.Errorf("file %d = %s, want %s", i, filepath.Base(f), want[i])
		}
	}
}
