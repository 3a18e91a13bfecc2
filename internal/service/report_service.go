package service

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"pos-service/config"
	"pos-service/internal/export"
	"pos-service/internal/store"
	"pos-service/internal/util"
)

var invoiceReportHeaders = []string{
	"Number", "Date", "Customer", "Employee", "Subtotal", "Tax", "Total", "Status", "Notes",
}

// ReportService exports invoice listings and single-invoice documents
// to files under the configured export directory.
type ReportService struct {
	store      store.Store
	formatter  export.Formatter
	exportPath string
	withBOM    bool
	logger     *zap.Logger
}

// NewReportService creates a new report service
func NewReportService(st store.Store, cfg *config.Config) *ReportService {
	return &ReportService{
		store: st,
		formatter: export.Formatter{
			Symbol:        cfg.Currency.Symbol,
			DecimalPlaces: cfg.Currency.DecimalPlaces,
			ThousandsSep:  cfg.Currency.ThousandsSep,
			DecimalSep:    cfg.Currency.DecimalSep,
			DateFormat:    cfg.Reports.DateFormat,
		},
		exportPath: cfg.Reports.ExportPath,
		withBOM:    cfg.Reports.UTF8BOM,
		logger:     util.GetLogger(),
	}
}

// ExportInvoiceReportCSV writes the invoices matching the filter to a
// timestamped semicolon-separated CSV file and returns its path.
func (s *ReportService) ExportInvoiceReportCSV(ctx context.Context, f store.InvoiceFilter) (string, error) {
	ctx, span := util.StartSpan(ctx, "ReportService.ExportInvoiceReportCSV")
	defer span.End()
	timer := util.NewExportTimer("csv")
	defer timer.Done()

	rows, err := s.invoiceReportRows(ctx, f)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.exportPath, reportFilename("invoice_report", "csv"))
	if err := export.WriteCSV(path, invoiceReportHeaders, rows, s.withBOM); err != nil {
		return "", fmt.Errorf("failed to export csv report: %w", err)
	}

	s.logger.Info("Invoice report exported",
		zap.String("format", "csv"),
		zap.String("path", path),
		zap.Int("rows", len(rows)))
	return path, nil
}

// ExportInvoiceReportXLSX writes the invoices matching the filter to a
// timestamped single-sheet workbook and returns its path.
func (s *ReportService) ExportInvoiceReportXLSX(ctx context.Context, f store.InvoiceFilter) (string, error) {
	ctx, span := util.StartSpan(ctx, "ReportService.ExportInvoiceReportXLSX")
	defer span.End()
	timer := util.NewExportTimer("xlsx")
	defer timer.Done()

	rows, err := s.invoiceReportRows(ctx, f)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.exportPath, reportFilename("invoice_report", "xlsx"))
	if err := export.WriteXLSX(path, "Invoices", invoiceReportHeaders, rows); err != nil {
		return "", fmt.Errorf("failed to export xlsx report: %w", err)
	}

	s.logger.Info("Invoice report exported",
		zap.String("format", "xlsx"),
		zap.String("path", path),
		zap.Int("rows", len(rows)))
	return path, nil
}

// ExportInvoicePDF renders one invoice with its lines as a PDF document
// and returns its path.
func (s *ReportService) ExportInvoicePDF(ctx context.Context, invoiceID int64) (string, error) {
	ctx, span := util.StartSpan(ctx, "ReportService.ExportInvoicePDF")
	defer span.End()
	timer := util.NewExportTimer("pdf")
	defer timer.Done()

	doc, err := s.invoiceDocument(ctx, invoiceID)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.exportPath, fmt.Sprintf("invoice_%s.pdf", doc.Number))
	if err := export.WriteInvoicePDF(path, *doc); err != nil {
		return "", fmt.Errorf("failed to export invoice pdf: %w", err)
	}

	s.logger.Info("Invoice exported",
		zap.String("format", "pdf"),
		zap.String("path", path))
	return path, nil
}

// ExportInvoiceXLSX writes one invoice's lines to a workbook and
// returns its path.
func (s *ReportService) ExportInvoiceXLSX(ctx context.Context, invoiceID int64) (string, error) {
	ctx, span := util.StartSpan(ctx, "ReportService.ExportInvoiceXLSX")
	defer span.End()
	timer := util.NewExportTimer("xlsx")
	defer timer.Done()

	doc, err := s.invoiceDocument(ctx, invoiceID)
	if err != nil {
		return "", err
	}

	headers := []string{"Product", "Quantity", "Unit Price", "Subtotal"}
	rows := make([][]string, 0, len(doc.Lines)+3)
	for _, line := range doc.Lines {
		rows = append(rows, []string{line.Product, line.Quantity, line.UnitPrice, line.Subtotal})
	}
	rows = append(rows,
		[]string{"", "", "Subtotal", doc.Subtotal},
		[]string{"", "", "Tax", doc.Tax},
		[]string{"", "", "Total", doc.Total})

	path := filepath.Join(s.exportPath, fmt.Sprintf("invoice_%s.xlsx", doc.Number))
	if err := export.WriteXLSX(path, "Invoice "+doc.Number, headers, rows); err != nil {
		return "", fmt.Errorf("failed to export invoice xlsx: %w", err)
	}

	s.logger.Info("Invoice exported",
		zap.String("format", "xlsx"),
		zap.String("path", path))
	return path, nil
}

func (s *ReportService) invoiceReportRows(ctx context.Context, f store.InvoiceFilter) ([][]string, error) {
	invoices, err := s.store.ListInvoices(ctx, f)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(invoices))
	for _, inv := range invoices {
		rows = append(rows, []string{
			inv.Number,
			s.formatter.FormatDate(inv.Date),
			inv.CustomerName,
			inv.EmployeeName,
			s.formatter.FormatAmount(inv.Subtotal),
			s.formatter.FormatAmount(inv.Tax),
			s.formatter.FormatAmount(inv.Total),
			inv.Status,
			inv.Notes,
		})
	}
	return rows, nil
}

func (s *ReportService) invoiceDocument(ctx context.Context, invoiceID int64) (*export.InvoiceDocument, error) {
	inv, err := s.store.GetInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	lines, err := s.store.GetInvoiceLines(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	docLines := make([]export.InvoiceDocumentLine, 0, len(lines))
	for _, line := range lines {
		docLines = append(docLines, export.InvoiceDocumentLine{
			Product:   line.ProductName,
			Quantity:  fmt.Sprintf("%d", line.Quantity),
			UnitPrice: s.formatter.FormatAmount(line.UnitPrice),
			Subtotal:  s.formatter.FormatAmount(line.Subtotal),
		})
	}

	return &export.InvoiceDocument{
		Number:   inv.Number,
		Date:     s.formatter.FormatDate(inv.Date),
		Customer: inv.CustomerName,
		Employee: inv.EmployeeName,
		Status:   inv.Status,
		Notes:    inv.Notes,
		Subtotal: s.formatter.FormatAmount(inv.Subtotal),
		Tax:      s.formatter.FormatAmount(inv.Tax),
		Total:    s.formatter.FormatAmount(inv.Total),
		Lines:    docLines,
	}, nil
}

func reportFilename(prefix, ext string) string {
	return fmt.Sprintf("%s_%s.%s", prefix, time.Now().Format("20060102_150405"), ext)
}
