package output

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/rpgo/portfolio-survival/internal/calculation"
)

const (
	pageWidth    = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 20.0
	contentWidth = pageWidth - marginLeft - marginRight
	chartHeight  = 70.0
)

// PDFFormatter renders a printable report: summary, fan chart and tables.
type PDFFormatter struct{}

func (p PDFFormatter) Name() string { return "pdf" }

type pdfReport struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	report *calculation.PlanReport
}

func (p PDFFormatter) Format(report *calculation.PlanReport) ([]byte, error) {
	if report == nil || report.Summary == nil {
		return nil, fmt.Errorf("report has no simulation summary")
	}
	r := &pdfReport{pdf: fpdf.New("P", "mm", "A4", ""), report: report}
	r.tr = r.pdf.UnicodeTranslatorFromDescriptor("")
	r.pdf.SetMargins(marginLeft, marginTop, marginRight)
	r.pdf.SetAutoPageBreak(true, marginBottom)
	r.pdf.SetTitle("Portfolio Survival Report", true)

	r.pdf.AddPage()
	r.addSummary()
	r.addFanChart()
	r.addCheckpointTable()
	r.addWithdrawalTable()
	r.addAssumptions()

	var buf bytes.Buffer
	if err := r.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// text converts to the code page of the core fonts.
func (r *pdfReport) text(s string) string {
	return r.tr(strings.ReplaceAll(s, "→", ">"))
}

func (r *pdfReport) addSummary() {
	s := r.report.Summary
	title := "Portfolio Survival Report"
	if r.report.Name != "" {
		title = r.report.Name
	}
	r.pdf.SetFont("Arial", "B", 22)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 12, r.text(title), "", 1, "C", false, 0, "")
	if !r.report.GeneratedAt.IsZero() {
		r.pdf.SetFont("Arial", "I", 10)
		r.pdf.SetTextColor(80, 80, 80)
		r.pdf.CellFormat(contentWidth, 6, fmt.Sprintf("Generated: %s", r.report.GeneratedAt.Format("2 January 2006")), "", 1, "C", false, 0, "")
	}
	r.pdf.Ln(6)

	r.pdf.SetFillColor(245, 247, 250)
	r.pdf.SetDrawColor(200, 200, 200)
	r.pdf.SetFont("Arial", "B", 12)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 8, fmt.Sprintf("Survival probability: %s", FormatPercentage(s.SurvivalProbability)), "1", 1, "C", true, 0, "")
	r.pdf.SetFont("Arial", "", 10)
	r.pdf.SetTextColor(50, 50, 50)
	lines := []string{
		fmt.Sprintf("%d paths over %d months, %s model, seed %d", s.Paths, s.HorizonMonths, r.report.Variant, r.report.Seed),
		fmt.Sprintf("Median ending balance %s (10th %s, 90th %s)", FormatCurrency(s.EndingBalance.P50), FormatCurrency(s.EndingBalance.P10), FormatCurrency(s.EndingBalance.P90)),
	}
	for i, l := range lines {
		border := "LR"
		if i == len(lines)-1 {
			border = "LRB"
		}
		r.pdf.CellFormat(contentWidth, 7, r.text(l), border, 1, "C", true, 0, "")
	}
	r.pdf.Ln(5)

	r.pdf.SetFont("Arial", "", 10)
	for _, h := range Highlights(r.report) {
		r.pdf.MultiCell(contentWidth, 5, r.text("- "+h), "", "L", false)
	}
	r.pdf.Ln(4)
}

func (r *pdfReport) drawSectionHeader(title string) {
	r.pdf.SetFont("Arial", "B", 14)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 9, title, "", 1, "L", false, 0, "")
	r.pdf.SetDrawColor(0, 51, 102)
	r.pdf.Line(marginLeft, r.pdf.GetY(), marginLeft+contentWidth, r.pdf.GetY())
	r.pdf.Ln(3)
}

// addFanChart plots the 10th, 50th and 90th percentile at each annual checkpoint.
func (r *pdfReport) addFanChart() {
	cps := r.report.Summary.AnnualCheckpoints
	if len(cps) < 2 {
		return
	}
	r.drawSectionHeader("Balance percentiles")

	lo, hi := 0.0, 0.0
	for _, cp := range cps {
		lo = math.Min(lo, cp.P10)
		hi = math.Max(hi, cp.P90)
	}
	if hi <= lo {
		hi = lo + 1
	}
	x0, y0 := marginLeft+20, r.pdf.GetY()
	w, h := contentWidth-25, chartHeight
	xAt := func(i int) float64 { return x0 + w*float64(i)/float64(len(cps)-1) }
	yAt := func(v float64) float64 { return y0 + h - h*(v-lo)/(hi-lo) }

	r.pdf.SetDrawColor(180, 180, 180)
	r.pdf.SetLineWidth(0.2)
	r.pdf.Rect(x0, y0, w, h, "D")
	r.pdf.SetFont("Arial", "", 7)
	r.pdf.SetTextColor(80, 80, 80)
	for _, v := range []float64{lo, (lo + hi) / 2, hi} {
		r.pdf.SetXY(marginLeft, yAt(v)-2)
		r.pdf.CellFormat(19, 4, FormatCurrency(v), "", 0, "R", false, 0, "")
	}
	if lo < 0 {
		r.pdf.SetDrawColor(120, 120, 120)
		r.pdf.Line(x0, yAt(0), x0+w, yAt(0))
	}

	series := []struct {
		pick    func(calculation.AnnualCheckpoint) float64
		r, g, b int
	}{
		{func(c calculation.AnnualCheckpoint) float64 { return c.P90 }, 39, 174, 96},
		{func(c calculation.AnnualCheckpoint) float64 { return c.P50 }, 52, 152, 219},
		{func(c calculation.AnnualCheckpoint) float64 { return c.P10 }, 231, 76, 60},
	}
	r.pdf.SetLineWidth(0.6)
	for _, s := range series {
		r.pdf.SetDrawColor(s.r, s.g, s.b)
		for i := 1; i < len(cps); i++ {
			r.pdf.Line(xAt(i-1), yAt(s.pick(cps[i-1])), xAt(i), yAt(s.pick(cps[i])))
		}
	}
	r.pdf.SetLineWidth(0.2)

	r.pdf.SetXY(x0, y0+h+1)
	r.pdf.CellFormat(w/2, 4, "Year 0", "", 0, "L", false, 0, "")
	r.pdf.CellFormat(w/2, 4, fmt.Sprintf("Year %d", cps[len(cps)-1].Year), "", 1, "R", false, 0, "")
	r.pdf.SetX(x0)
	r.pdf.CellFormat(w, 4, "green: 90th percentile   blue: median   red: 10th percentile", "", 1, "C", false, 0, "")
	r.pdf.Ln(4)
}

func (r *pdfReport) drawTableHeader(headers []string, widths []float64) {
	r.pdf.SetFillColor(0, 51, 102)
	r.pdf.SetTextColor(255, 255, 255)
	r.pdf.SetFont("Arial", "B", 9)
	for i, header := range headers {
		align := "L"
		if i > 0 {
			align = "R"
		}
		r.pdf.CellFormat(widths[i], 6, header, "1", 0, align, true, 0, "")
	}
	r.pdf.Ln(-1)
}

func (r *pdfReport) drawTableRow(cells []string, widths []float64) {
	r.pdf.SetFillColor(250, 250, 250)
	r.pdf.SetTextColor(50, 50, 50)
	r.pdf.SetFont("Arial", "", 9)
	for i, cell := range cells {
		align := "L"
		if i > 0 {
			align = "R"
		}
		r.pdf.CellFormat(widths[i], 5, cell, "1", 0, align, true, 0, "")
	}
	r.pdf.Ln(-1)
}

func (r *pdfReport) addCheckpointTable() {
	r.drawSectionHeader("Annual checkpoints")
	widths := []float64{30, 30, 40, 40, 40}
	r.drawTableHeader([]string{"Year", "Month", "10th", "Median", "90th"}, widths)
	for _, cp := range r.report.Summary.AnnualCheckpoints {
		r.drawTableRow([]string{
			intToString(cp.Year), intToString(cp.Month),
			FormatCurrency(cp.P10), FormatCurrency(cp.P50), FormatCurrency(cp.P90),
		}, widths)
	}
	r.pdf.Ln(5)
}

func (r *pdfReport) addWithdrawalTable() {
	ws := r.report.Summary.AnnualWithdrawals
	if len(ws) == 0 {
		return
	}
	r.drawSectionHeader("Mean net withdrawals")
	widths := []float64{20, 40, 40, 40, 40}
	r.drawTableHeader([]string{"Year", "Taxable", "Traditional", "Roth", "Total"}, widths)
	for _, w := range ws {
		r.drawTableRow([]string{
			intToString(w.Year),
			FormatCurrency(w.Taxable), FormatCurrency(w.Traditional), FormatCurrency(w.Roth), FormatCurrency(w.Total()),
		}, widths)
	}
	r.pdf.Ln(5)
}

func (r *pdfReport) addAssumptions() {
	r.drawSectionHeader("Assumptions")
	r.pdf.SetFont("Arial", "", 9)
	r.pdf.SetTextColor(50, 50, 50)
	for _, a := range append(GenerateAssumptions(r.report), DefaultAssumptions...) {
		r.pdf.MultiCell(contentWidth, 4.5, r.text("- "+a), "", "L", false)
	}
	r.pdf.Ln(6)
	r.pdf.SetFont("Arial", "I", 8)
	r.pdf.SetTextColor(120, 120, 120)
	r.pdf.MultiCell(contentWidth, 4,
		"Results are simulated from historical returns and are not a forecast. "+
			"This document is for informational purposes only and does not constitute financial advice.", "", "C", false)
}
