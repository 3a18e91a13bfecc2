package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"pos-service/internal/models"
	"pos-service/internal/store"
)

const invoiceViewQuery = `
	SELECT i.id, i.number, i.date, i.subtotal, i.tax, i.total, i.status, i.notes,
	       i.sale_id, i.customer_id, i.employee_id, i.created_at,
	       COALESCE(c.name, '') AS customer_name,
	       COALESCE(e.name, '') AS employee_name
	FROM invoices i
	LEFT JOIN customers c ON i.customer_id = c.id
	LEFT JOIN employees e ON i.employee_id = e.id`

// CreateInvoice inserts a new invoice and sets its ID
func (s *Store) CreateInvoice(ctx context.Context, inv *models.Invoice) error {
	id, err := s.insert(ctx, s.db,
		"INSERT INTO invoices (number, date, subtotal, tax, total, status, notes, sale_id, customer_id, employee_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)",
		inv.Number, inv.Date, inv.Subtotal, inv.Tax, inv.Total, inv.Status,
		inv.Notes, inv.SaleID, inv.CustomerID, inv.EmployeeID)
	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	inv.ID = id
	return nil
}

// UpdateInvoice updates all mutable fields of an invoice
func (s *Store) UpdateInvoice(ctx context.Context, inv *models.Invoice) error {
	res, err := s.db.ExecContext(ctx, s.rebind(
		"UPDATE invoices SET number = ?, date = ?, subtotal = ?, tax = ?, total = ?, status = ?, notes = ?, sale_id = ?, customer_id = ?, employee_id = ? WHERE id = ?"),
		inv.Number, inv.Date, inv.Subtotal, inv.Tax, inv.Total, inv.Status,
		inv.Notes, inv.SaleID, inv.CustomerID, inv.EmployeeID, inv.ID)
	if err != nil {
		return err
	}
	return requireRowAffected(res, "invoice", inv.ID)
}

// UpdateInvoiceTotals persists recomputed subtotal, tax and total
func (s *Store) UpdateInvoiceTotals(ctx context.Context, id int64, subtotal, tax, total decimal.Decimal) error {
	res, err := s.db.ExecContext(ctx, s.rebind(
		"UPDATE invoices SET subtotal = ?, tax = ?, total = ? WHERE id = ?"),
		subtotal, tax, total, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res, "invoice", id)
}

// UpdateInvoiceStatus updates invoice status
func (s *Store) UpdateInvoiceStatus(ctx context.Context, id int64, status string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(
		"UPDATE invoices SET status = ? WHERE id = ?"), status, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res, "invoice", id)
}

// DeleteInvoice removes an invoice and its lines in one transaction
func (s *Store) DeleteInvoice(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.rebind("DELETE FROM invoice_lines WHERE invoice_id = ?"), id); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, s.rebind("DELETE FROM invoices WHERE id = ?"), id)
	if err != nil {
		return err
	}
	if err := requireRowAffected(res, "invoice", id); err != nil {
		return err
	}

	return tx.Commit()
}

// GetInvoiceByID retrieves an invoice with joined names
func (s *Store) GetInvoiceByID(ctx context.Context, id int64) (*models.InvoiceView, error) {
	var inv models.InvoiceView
	err := s.db.GetContext(ctx, &inv, s.rebind(invoiceViewQuery+" WHERE i.id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("invoice %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// GetInvoiceByNumber retrieves an invoice by its number
func (s *Store) GetInvoiceByNumber(ctx context.Context, number string) (*models.InvoiceView, error) {
	var inv models.InvoiceView
	err := s.db.GetContext(ctx, &inv, s.rebind(invoiceViewQuery+" WHERE i.number = ?"), number)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("invoice %s: %w", number, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// ListInvoices retrieves invoices matching the filter, newest first
func (s *Store) ListInvoices(ctx context.Context, f store.InvoiceFilter) ([]models.InvoiceView, error) {
	var conds []string
	var args []interface{}

	if f.Status != "" {
		conds = append(conds, "i.status = ?")
		args = append(args, f.Status)
	}
	if f.CustomerID != 0 {
		conds = append(conds, "i.customer_id = ?")
		args = append(args, f.CustomerID)
	}
	if f.From != nil {
		conds = append(conds, "i.date >= ?")
		args = append(args, *f.From)
	}
	if f.To != nil {
		conds = append(conds, "i.date <= ?")
		args = append(args, *f.To)
	}

	query := invoiceViewQuery + whereClause(conds) + " ORDER BY i.date DESC, i.id DESC"

	var invoices []models.InvoiceView
	err := s.db.SelectContext(ctx, &invoices, s.rebind(query), args...)
	return invoices, err
}

// MaxInvoiceNumberSuffix returns the highest numeric suffix among
// sequential FAC- numbers, or 0 when none exist. Parsing happens in Go
// so the query stays portable across sqlite and postgres.
func (s *Store) MaxInvoiceNumberSuffix(ctx context.Context) (int64, error) {
	var numbers []string
	err := s.db.SelectContext(ctx, &numbers,
		"SELECT number FROM invoices WHERE number LIKE 'FAC-%'")
	if err != nil {
		return 0, err
	}

	var max int64
	for _, number := range numbers {
		if n, ok := store.InvoiceNumberSuffix(number); ok && n > max {
			max = n
		}
	}
	return max, nil
}

// CreateInvoiceLine inserts a new invoice line and sets its ID
func (s *Store) CreateInvoiceLine(ctx context.Context, line *models.InvoiceLine) error {
	id, err := s.insert(ctx, s.db,
		"INSERT INTO invoice_lines (invoice_id, product_id, quantity, unit_price, subtotal) VALUES (?, ?, ?, ?, ?)",
		line.InvoiceID, line.ProductID, line.Quantity, line.UnitPrice, line.Subtotal)
	if err != nil {
		return fmt.Errorf("failed to create invoice line: %w", err)
	}
	line.ID = id
	return nil
}

// DeleteInvoiceLine removes an invoice line and returns the id of the
// invoice it belonged to, so callers can recompute its totals.
func (s *Store) DeleteInvoiceLine(ctx context.Context, lineID int64) (int64, error) {
	var invoiceID int64
	err := s.db.GetContext(ctx, &invoiceID, s.rebind(
		"SELECT invoice_id FROM invoice_lines WHERE id = ?"), lineID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("invoice line %d: %w", lineID, models.ErrNotFound)
	}
	if err != nil {
		return 0, err
	}

	if _, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM invoice_lines WHERE id = ?"), lineID); err != nil {
		return 0, err
	}
	return invoiceID, nil
}

// GetInvoiceLines retrieves the lines of an invoice with product names
func (s *Store) GetInvoiceLines(ctx context.Context, invoiceID int64) ([]models.InvoiceLineView, error) {
	var lines []models.InvoiceLineView
	err := s.db.SelectContext(ctx, &lines, s.rebind(`
		SELECT l.id, l.invoice_id, l.product_id, l.quantity, l.unit_price, l.subtotal,
		       p.name AS product_name
		FROM invoice_lines l
		JOIN products p ON l.product_id = p.id
		WHERE l.invoice_id = ?
		ORDER BY l.id`), invoiceID)
	return lines, err
}

// InvoiceStatistics aggregates invoice counts and amounts per status
func (s *Store) InvoiceStatistics(ctx context.Context) (*models.InvoiceStatistics, error) {
	var stats models.InvoiceStatistics
	err := s.db.GetContext(ctx, &stats, `
		SELECT COUNT(*) AS total_invoices,
		       COALESCE(SUM(CASE WHEN status = 'Pending' THEN 1 ELSE 0 END), 0) AS pending,
		       COALESCE(SUM(CASE WHEN status = 'Paid' THEN 1 ELSE 0 END), 0) AS paid,
		       COALESCE(SUM(CASE WHEN status = 'Cancelled' THEN 1 ELSE 0 END), 0) AS cancelled,
		       COALESCE(SUM(CASE WHEN status = 'Overdue' THEN 1 ELSE 0 END), 0) AS overdue,
		       COALESCE(SUM(total), 0) AS total_amount,
		       COALESCE(AVG(total), 0) AS average_amount
		FROM invoices`)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
