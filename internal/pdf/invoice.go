// Package pdf renders invoices into byte-exact PDF documents. Layout is a
// fixed A4 grid; the only variable-height parts are wrapped text blocks, and
// every subsequent offset is computed from the cumulative wrapped heights so
// rows never overlap.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/scopedno/energidesk/internal/i18n"
	"github.com/scopedno/energidesk/internal/models"
)

// Layout constants, mm. Column widths: description, quantity, unit price,
// line total.
const (
	pageMarginLeft = 20.0
	lineHeight     = 5.0
	tableTop       = 100.0
	minRowHeight   = 10.0
)

var colWidths = [4]float64{80, 30, 30, 30}

// VATRate is the fixed Norwegian MVA rate shown on every invoice.
const VATRate = 0.25

type renderer struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

// RenderInvoice produces the invoice document. Identical input yields
// identical bytes: layout is a pure function of the invoice, and the
// document creation date is pinned so metadata does not vary between runs.
func RenderInvoice(inv *models.Invoice) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetCreationDate(inv.CreatedAt.UTC())
	doc.SetAutoPageBreak(true, 15)
	doc.AddPage()
	r := &renderer{pdf: doc, tr: doc.UnicodeTranslatorFromDescriptor("")}

	r.header(inv)
	r.parties(inv)
	r.dates(inv)
	bottom := r.itemTable(inv)
	bottom = r.totals(inv, bottom)
	r.note(inv, bottom)
	r.footer()

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *renderer) header(inv *models.Invoice) {
	r.pdf.SetFont("Helvetica", "", 24)
	r.pdf.SetTextColor(44, 62, 80)
	r.pdf.Text(pageMarginLeft, 20, r.tr(inv.InvoiceName))

	r.pdf.SetFont("Helvetica", "", 12)
	r.pdf.SetTextColor(52, 73, 94)
	r.pdf.Text(pageMarginLeft, 30, r.tr(fmt.Sprintf("Fakturanummer: #%d", inv.InvoiceNumber)))
}

// parties renders the two-column Fra:/Til: block.
func (r *renderer) parties(inv *models.Invoice) {
	r.pdf.SetFont("Helvetica", "", 14)
	r.pdf.SetTextColor(44, 62, 80)
	r.pdf.Text(pageMarginLeft, 45, "Fra:")
	r.pdf.Text(120, 45, "Til:")

	r.pdf.SetFont("Helvetica", "", 10)
	r.pdf.SetTextColor(52, 73, 94)
	y := 50.0
	y += r.wrappedText(inv.FromCompany, pageMarginLeft, y, 80)
	y += r.wrappedText(inv.FromName, pageMarginLeft, y, 80)
	y += r.wrappedText(inv.FromEmail, pageMarginLeft, y, 80)
	y += r.wrappedText(inv.FromAddress, pageMarginLeft, y, 80)
	r.wrappedText("Kontonummer: "+inv.FromAccountNumber, pageMarginLeft, y, 80)

	y = 50.0
	y += r.wrappedText(inv.ClientName, 120, y, 70)
	y += r.wrappedText(inv.ClientEmail, 120, y, 70)
	r.wrappedText(inv.ClientAddress, 120, y, 70)
}

func (r *renderer) dates(inv *models.Invoice) {
	r.pdf.SetFont("Helvetica", "", 10)
	r.pdf.SetTextColor(52, 73, 94)
	r.pdf.Text(120, 80, r.tr("Dato: "+i18n.FormatDate(inv.Date, i18n.StyleLong)))
	r.pdf.Text(120, 85, r.tr("Forfallsdato: "+i18n.FormatDate(inv.DueDate, i18n.StyleLong)))
}

// itemTable renders the header bar and one row per item. Each row's top
// offset is the previous row's top plus its wrapped height, so long
// descriptions push later rows down instead of overlapping them. Returns the
// y coordinate just below the last row.
func (r *renderer) itemTable(inv *models.Invoice) float64 {
	pageW, _ := r.pdf.GetPageSize()

	r.pdf.SetFillColor(44, 62, 80)
	r.pdf.Rect(pageMarginLeft, tableTop, pageW-2*pageMarginLeft, 10, "F")
	r.pdf.SetTextColor(255, 255, 255)
	r.pdf.SetFont("Helvetica", "", 10)
	x := pageMarginLeft
	for i, label := range [4]string{"Beskrivelse", "Antall", "Pris", "Total"} {
		r.pdf.Text(x+2, tableTop+6, r.tr(label))
		x += colWidths[i]
	}

	r.pdf.SetTextColor(52, 73, 94)
	y := tableTop + 10
	for _, it := range inv.Items {
		h := r.wrappedText(it.Description, pageMarginLeft+2, y+5, colWidths[0]-4)
		r.pdf.Text(pageMarginLeft+colWidths[0]+2, y+5, fmt.Sprintf("%d", it.Quantity))
		r.pdf.Text(pageMarginLeft+colWidths[0]+colWidths[1]+2, y+5, r.tr(i18n.FormatCurrency(it.Rate, inv.Currency)))
		r.pdf.Text(pageMarginLeft+colWidths[0]+colWidths[1]+colWidths[2]+2, y+5, r.tr(i18n.FormatCurrency(it.Amount(), inv.Currency)))
		y += rowHeight(h)
	}
	return y
}

func (r *renderer) totals(inv *models.Invoice, tableBottom float64) float64 {
	pageW, _ := r.pdf.GetPageSize()
	labelX := pageMarginLeft + colWidths[0] + colWidths[1]
	amountX := labelX + colWidths[2] + 2

	y := tableBottom + 10
	r.pdf.Line(pageMarginLeft, y, pageW-pageMarginLeft, y)
	r.pdf.SetFont("Helvetica", "", 10)
	r.pdf.Text(labelX, y+10, "Subtotal:")
	r.pdf.Text(amountX, y+10, r.tr(i18n.FormatCurrency(inv.Total, inv.Currency)))
	r.pdf.Text(labelX, y+20, "MVA (25%):")
	r.pdf.Text(amountX, y+20, r.tr(i18n.FormatCurrency(inv.Vat, inv.Currency)))

	r.pdf.SetTextColor(44, 62, 80)
	r.pdf.SetFont("Helvetica", "", 12)
	r.pdf.Text(labelX, y+30, "Total inkl. MVA:")
	r.pdf.Text(amountX, y+30, r.tr(i18n.FormatCurrency(inv.TotalInclVat, inv.Currency)))
	return y + 30
}

func (r *renderer) note(inv *models.Invoice, totalsBottom float64) {
	if inv.Note == "" {
		return
	}
	pageW, _ := r.pdf.GetPageSize()
	r.pdf.SetFont("Helvetica", "", 10)
	r.pdf.SetTextColor(52, 73, 94)
	r.pdf.Text(pageMarginLeft, totalsBottom+20, "Notat:")
	r.wrappedText(inv.Note, pageMarginLeft, totalsBottom+25, pageW-2*pageMarginLeft)
}

func (r *renderer) footer() {
	pageW, pageH := r.pdf.GetPageSize()
	r.pdf.SetFont("Helvetica", "", 8)
	r.pdf.SetTextColor(149, 165, 166)
	msg := "Takk for din forretning!"
	r.pdf.Text((pageW-r.pdf.GetStringWidth(msg))/2, pageH-10, msg)
}

// wrappedText measures text against maxWidth, re-flows it onto additional
// lines, and returns the consumed height.
func (r *renderer) wrappedText(text string, x, y, maxWidth float64) float64 {
	lines := r.pdf.SplitText(r.tr(text), maxWidth)
	for i, line := range lines {
		r.pdf.Text(x, y+float64(i)*lineHeight, line)
	}
	return float64(len(lines)) * lineHeight
}

// rowHeight converts a wrapped description height into the row's vertical
// footprint, keeping a minimum so single-line rows match the fixed grid.
func rowHeight(wrappedHeight float64) float64 {
	h := wrappedHeight + lineHeight
	if h < minRowHeight {
		return minRowHeight
	}
	return h
}
