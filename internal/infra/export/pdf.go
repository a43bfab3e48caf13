package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/boddenberg/store-portal-bfa-go/internal/domain"
)

// A fixed creation date keeps identical input producing identical bytes.
var pdfCreationDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

const (
	pdfMargin    = 14.0
	pdfTitleY    = 20.0
	pdfTableY    = 25.0
	pdfRowHeight = 8.0
)

// Column widths in mm; they add up to the A4 width minus both margins.
var pdfColumnWidths = []float64{18, 40, 56, 30, 38}

// PDF renders records as a paginated table titled for the store.
// The header row repeats on every page.
func PDF(storeName string, records []domain.CustomerRecord) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(pdfCreationDate)
	pdf.SetCatalogSort(true)
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	_, pageHeight := pdf.GetPageSize()

	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 16)
	pdf.Text(pdfMargin, pdfTitleY, tr(Title(storeName)))
	pdf.SetXY(pdfMargin, pdfTableY)
	writePDFHeader(pdf, tr)

	pdf.SetFont("Helvetica", "", 10)
	for _, row := range Rows(records) {
		if pdf.GetY()+pdfRowHeight > pageHeight-pdfMargin {
			pdf.AddPage()
			writePDFHeader(pdf, tr)
			pdf.SetFont("Helvetica", "", 10)
		}
		pdf.SetTextColor(0, 0, 0)
		pdf.SetDrawColor(180, 180, 180)
		for i, value := range row {
			w := pdfColumnWidths[i]
			pdf.CellFormat(w, pdfRowHeight, fit(pdf, tr(value), w-2), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writePDFHeader(pdf *fpdf.Fpdf, tr func(string) string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetFillColor(52, 58, 64)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetDrawColor(180, 180, 180)
	for i, title := range pdfHeader {
		pdf.CellFormat(pdfColumnWidths[i], pdfRowHeight, tr(title), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
}

// fit trims s until it fits in width mm at the current font.
func fit(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}
