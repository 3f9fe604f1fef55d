package render

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"weekly-planner/internal/service"
)

const (
	pageMargin = 15.0
	cardGap    = 6.0
	cardHeight = 24.0
)

type rgb struct{ r, g, b int }

type statCard struct {
	value string
	label string
	fill  rgb
	ink   rgb
}

// PDF writes the report as a single A4 page.
func PDF(w io.Writer, report *service.Report) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, 25)
	pdf.SetTitle("Weekly Task Report "+report.Meta.WeekStart, false)
	pdf.SetCreator("weekly-planner", false)
	pdf.SetCreationDate(report.Meta.GeneratedAt)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 2*pageMargin

	pdf.SetFooterFunc(func() {
		pdf.SetY(-20)
		pdf.SetDrawColor(238, 238, 238)
		pdf.Line(pageMargin, pdf.GetY(), pageW-pageMargin, pdf.GetY())
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(136, 136, 136)
		footer := fmt.Sprintf("Generated on %s | Weekly Task App", report.Meta.GeneratedAt.Format("2006-01-02 15:04 MST"))
		pdf.CellFormat(0, 5, tr(footer), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetTextColor(17, 17, 17)
	pdf.CellFormat(contentW, 10, tr("Weekly Task Report"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(102, 102, 102)
	pdf.CellFormat(contentW, 7, tr("Week of "+report.Meta.WeekStart), "", 1, "L", false, 0, "")
	pdf.SetDrawColor(17, 17, 17)
	pdf.Line(pageMargin, pdf.GetY()+2, pageW-pageMargin, pdf.GetY()+2)
	pdf.Ln(8)

	cards := []statCard{
		{fmt.Sprintf("%d%%", report.Stats.CompletionRate), "COMPLETION RATE", rgb{240, 253, 244}, rgb{21, 128, 61}},
		{fmt.Sprintf("%d", report.Stats.Completed), "COMPLETED", rgb{239, 246, 255}, rgb{29, 78, 216}},
		{fmt.Sprintf("%d", report.Stats.Pending), "PENDING", rgb{255, 247, 237}, rgb{194, 65, 12}},
	}
	cardW := (contentW - cardGap*float64(len(cards)-1)) / float64(len(cards))
	top := pdf.GetY()
	for i, card := range cards {
		x := pageMargin + float64(i)*(cardW+cardGap)
		pdf.SetFillColor(card.fill.r, card.fill.g, card.fill.b)
		pdf.SetDrawColor(221, 221, 221)
		pdf.Rect(x, top, cardW, cardHeight, "FD")

		pdf.SetXY(x, top+4)
		pdf.SetFont("Helvetica", "B", 18)
		pdf.SetTextColor(card.ink.r, card.ink.g, card.ink.b)
		pdf.CellFormat(cardW, 9, card.value, "", 0, "C", false, 0, "")

		pdf.SetXY(x, top+15)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(85, 85, 85)
		pdf.CellFormat(cardW, 5, card.label, "", 0, "C", false, 0, "")
	}
	pdf.SetXY(pageMargin, top+cardHeight+10)

	section := func(title, empty string, items []service.ReportItem) {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.SetFillColor(240, 240, 240)
		pdf.SetTextColor(17, 17, 17)
		pdf.CellFormat(contentW, 8, tr(title), "", 1, "L", true, 0, "")
		pdf.Ln(2)

		if len(items) == 0 {
			pdf.SetFont("Helvetica", "I", 11)
			pdf.SetTextColor(102, 102, 102)
			pdf.CellFormat(contentW, 6, tr(empty), "", 1, "L", false, 0, "")
		}
		pdf.SetFont("Helvetica", "", 11)
		pdf.SetTextColor(17, 17, 17)
		for _, item := range items {
			pdf.CellFormat(5, 6, tr("•"), "", 0, "L", false, 0, "")
			pdf.MultiCell(contentW-5, 6, tr(fmt.Sprintf("%s  [%s]", item.Title, item.Priority)), "", "L", false)
		}
		pdf.Ln(6)
	}
	section("Highlights", "No completed tasks yet.", report.Highlights)
	section("Action Items / Pending", "All tasks completed!", report.ActionItems)

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("build pdf: %w", err)
	}
	return pdf.Output(w)
}
