package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
)

// InvoiceDocument carries the already-formatted fields of one invoice
// for PDF rendering.
type InvoiceDocument struct {
	Number   string
	Date     string
	Customer string
	Employee string
	Status   string
	Notes    string
	Subtotal string
	Tax      string
	Total    string
	Lines    []InvoiceDocumentLine
}

// InvoiceDocumentLine is one rendered line item.
type InvoiceDocumentLine struct {
	Product   string
	Quantity  string
	UnitPrice string
	Subtotal  string
}

// WriteInvoicePDF renders a single invoice document at path, creating
// parent directories as needed.
func WriteInvoicePDF(path string, doc InvoiceDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+doc.Number, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, "INVOICE "+doc.Number, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	meta := [][2]string{
		{"Date", doc.Date},
		{"Customer", doc.Customer},
		{"Employee", doc.Employee},
		{"Status", doc.Status},
	}
	for _, kv := range meta {
		pdf.CellFormat(35, 7, kv[0]+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, kv[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	if len(doc.Lines) > 0 {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetFillColor(230, 230, 230)
		pdf.CellFormat(80, 8, "Product", "1", 0, "L", true, 0, "")
		pdf.CellFormat(25, 8, "Qty", "1", 0, "R", true, 0, "")
		pdf.CellFormat(40, 8, "Unit Price", "1", 0, "R", true, 0, "")
		pdf.CellFormat(40, 8, "Subtotal", "1", 1, "R", true, 0, "")

		pdf.SetFont("Helvetica", "", 11)
		for _, line := range doc.Lines {
			pdf.CellFormat(80, 8, line.Product, "1", 0, "L", false, 0, "")
			pdf.CellFormat(25, 8, line.Quantity, "1", 0, "R", false, 0, "")
			pdf.CellFormat(40, 8, line.UnitPrice, "1", 0, "R", false, 0, "")
			pdf.CellFormat(40, 8, line.Subtotal, "1", 1, "R", false, 0, "")
		}
		pdf.Ln(4)
	}

	pdf.SetFont("Helvetica", "", 11)
	totals := [][2]string{
		{"Subtotal", doc.Subtotal},
		{"Tax", doc.Tax},
	}
	for _, kv := range totals {
		pdf.CellFormat(145, 7, kv[0], "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, kv[1], "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(145, 8, "Total", "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, doc.Total, "", 1, "R", false, 0, "")

	if doc.Notes != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 6, "Notes: "+doc.Notes, "", "L", false)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}
