package report

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/okian/punchclock/pkg/logger"
	"github.com/okian/punchclock/pkg/metrics"
)

const (
	marginLeft   = 72.0
	marginTop    = 72.0
	marginRight  = 72.0
	marginBottom = 18.0

	fontFamily      = "Helvetica"
	titleFontSize   = 18.0
	headingFontSize = 14.0
	cellFontSize    = 9.0

	titleLineHeight   = 26.0
	headingLineHeight = 20.0
	cellHeight        = 18.0
	labelColumnWidth  = 110.0
	tableSpacing      = 8.0

	generatedLayout = "2006-01-02 15:04"
)

// PDFRenderer lays out reports on landscape letter pages.
type PDFRenderer struct {
	logger logger.Logger
}

// NewPDFRenderer creates a PDF renderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{logger: logger.Get().Named("report")}
}

// ContentType implements Renderer.
func (r *PDFRenderer) ContentType() string { return "application/pdf" }

// Render implements Renderer. The output is a title, a generation line, and
// for every candidate user a heading followed by one grid table per group of
// DatesPerTable dates. Users with no dates get the heading only.
func (r *PDFRenderer) Render(ctx context.Context, doc Document) ([]byte, error) {
	start := time.Now()
	out, err := r.render(ctx, doc)
	metrics.RecordReportRender(float64(time.Since(start).Milliseconds()), err != nil)
	if err != nil {
		r.logger.Error(ctx, "pdf render failed", logger.Error(err))
		return nil, err
	}
	return out, nil
}

func (r *PDFRenderer) render(ctx context.Context, doc Document) ([]byte, error) {
	pdf := fpdf.New("L", "pt", "Letter", "")
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(true, marginBottom)
	pdf.SetCreationDate(doc.GeneratedAt)
	pdf.SetModificationDate(doc.GeneratedAt)
	pdf.SetTitle("Attendance Report - "+doc.Title, true)
	pdf.AddPage()

	// Core fonts are cp1252; usernames come from the terminal as UTF-8.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageWidth, _ := pdf.GetPageSize()
	contentWidth := pageWidth - marginLeft - marginRight

	pdf.SetFont(fontFamily, "B", titleFontSize)
	pdf.CellFormat(contentWidth, titleLineHeight, tr("Attendance Report - "+doc.Title), "", 1, "C", false, 0, "")
	pdf.CellFormat(contentWidth, titleLineHeight,
		"Attendance Report - Generated on "+doc.GeneratedAt.Format(generatedLayout), "", 1, "C", false, 0, "")
	pdf.Ln(tableSpacing)

	chunks := ChunkDates(doc.Table.Dates, DatesPerTable)
	for _, id := range doc.Table.UserIDs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRender, err)
		}

		pdf.SetFont(fontFamily, "B", headingFontSize)
		pdf.MultiCell(contentWidth, headingLineHeight, tr(Heading(id, doc.Users, doc.Totals)), "", "L", false)

		for _, dates := range chunks {
			r.table(pdf, contentWidth, dates, id, doc)
			pdf.Ln(tableSpacing)
		}
	}

	if pdf.Err() {
		return nil, fmt.Errorf("%w: %w", ErrRender, pdf.Error())
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	return buf.Bytes(), nil
}

// table writes a two-row grid: dates with a grey background, then cells.
func (r *PDFRenderer) table(pdf *fpdf.Fpdf, width float64, dates []string, userID string, doc Document) {
	colWidth := (width - labelColumnWidth) / float64(DatesPerTable)

	pdf.SetFont(fontFamily, "B", cellFontSize)
	pdf.SetFillColor(211, 211, 211)
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(1)
	pdf.CellFormat(labelColumnWidth, cellHeight, "Date", "1", 0, "C", true, 0, "")
	for _, d := range dates {
		pdf.CellFormat(colWidth, cellHeight, d, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(fontFamily, "", cellFontSize)
	pdf.CellFormat(labelColumnWidth, cellHeight, "Check-in/Check-out", "1", 0, "C", false, 0, "")
	for _, d := range dates {
		pdf.CellFormat(colWidth, cellHeight, Cell(doc.Table.Bucket(userID, d)), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
}
