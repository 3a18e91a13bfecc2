package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pos-service/internal/models"
	"pos-service/internal/store"
)

const saleViewQuery = `
	SELECT s.id, s.date, s.total, s.customer_id, s.employee_id, s.idempotency_key, s.created_at,
	       COALESCE(c.name, '') AS customer_name,
	       COALESCE(e.name, '') AS employee_name
	FROM sales s
	LEFT JOIN customers c ON s.customer_id = c.id
	LEFT JOIN employees e ON s.employee_id = e.id`

// CreateSaleWithLines persists a sale, its lines and the stock decrements
// in one transaction. Stock is guarded inside the UPDATE so a concurrent
// sale cannot drive it negative; any failure rolls the whole sale back.
func (s *Store) CreateSaleWithLines(ctx context.Context, sale *models.Sale, lines []models.SaleLine) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, line := range lines {
		res, err := tx.ExecContext(ctx, s.rebind(
			"UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?"),
			line.Quantity, line.ProductID, line.Quantity)
		if err != nil {
			return fmt.Errorf("failed to decrement stock: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			var stock int
			err := tx.GetContext(ctx, &stock, s.rebind(
				"SELECT stock FROM products WHERE id = ?"), line.ProductID)
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("product %d: %w", line.ProductID, models.ErrNotFound)
			}
			if err != nil {
				return err
			}
			return fmt.Errorf("product %d: available=%d, requested=%d: %w",
				line.ProductID, stock, line.Quantity, models.ErrInsufficientStock)
		}
	}

	saleID, err := s.insert(ctx, tx,
		"INSERT INTO sales (date, total, customer_id, employee_id, idempotency_key, created_at) VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)",
		sale.Date, sale.Total, sale.CustomerID, sale.EmployeeID, sale.IdempotencyKey)
	if err != nil {
		return fmt.Errorf("failed to create sale: %w", err)
	}
	sale.ID = saleID

	for i := range lines {
		lines[i].SaleID = saleID
		lineID, err := s.insert(ctx, tx,
			"INSERT INTO sale_lines (sale_id, product_id, quantity, unit_price, subtotal) VALUES (?, ?, ?, ?, ?)",
			lines[i].SaleID, lines[i].ProductID, lines[i].Quantity, lines[i].UnitPrice, lines[i].Subtotal)
		if err != nil {
			return fmt.Errorf("failed to create sale line: %w", err)
		}
		lines[i].ID = lineID
	}

	return tx.Commit()
}

// GetSaleByID retrieves a sale with joined customer and employee names
func (s *Store) GetSaleByID(ctx context.Context, id int64) (*models.SaleView, error) {
	var sale models.SaleView
	err := s.db.GetContext(ctx, &sale, s.rebind(saleViewQuery+" WHERE s.id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sale %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// GetSaleByIdempotencyKey retrieves a sale by idempotency key, or nil
// when none exists.
func (s *Store) GetSaleByIdempotencyKey(ctx context.Context, key string) (*models.Sale, error) {
	var sale models.Sale
	err := s.db.GetContext(ctx, &sale, s.rebind(
		"SELECT * FROM sales WHERE idempotency_key = ?"), key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// ListSales retrieves sales matching the filter, newest first
func (s *Store) ListSales(ctx context.Context, f store.SaleFilter) ([]models.SaleView, error) {
	var conds []string
	var args []interface{}

	if f.CustomerID != 0 {
		conds = append(conds, "s.customer_id = ?")
		args = append(args, f.CustomerID)
	}
	if f.From != nil {
		conds = append(conds, "s.date >= ?")
		args = append(args, *f.From)
	}
	if f.To != nil {
		conds = append(conds, "s.date <= ?")
		args = append(args, *f.To)
	}

	query := saleViewQuery + whereClause(conds) + " ORDER BY s.date DESC, s.id DESC"

	var sales []models.SaleView
	err := s.db.SelectContext(ctx, &sales, s.rebind(query), args...)
	return sales, err
}

// GetSaleLines retrieves the lines of a sale with product names
func (s *Store) GetSaleLines(ctx context.Context, saleID int64) ([]models.SaleLineView, error) {
	var lines []models.SaleLineView
	err := s.db.SelectContext(ctx, &lines, s.rebind(`
		SELECT l.id, l.sale_id, l.product_id, l.quantity, l.unit_price, l.subtotal,
		       p.name AS product_name
		FROM sale_lines l
		JOIN products p ON l.product_id = p.id
		WHERE l.sale_id = ?
		ORDER BY l.id`), saleID)
	return lines, err
}

// DeleteSale removes a sale and its lines in one transaction
func (s *Store) DeleteSale(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.rebind("DELETE FROM sale_lines WHERE sale_id = ?"), id); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, s.rebind("DELETE FROM sales WHERE id = ?"), id)
	if err != nil {
		return err
	}
	if err := requireRowAffected(res, "sale", id); err != nil {
		return err
	}

	return tx.Commit()
}

// CountInvoicesForSale counts invoices referencing a sale
func (s *Store) CountInvoicesForSale(ctx context.Context, saleID int64) (int64, error) {
	var count int64
	err := s.db.GetContext(ctx, &count, s.rebind(
		"SELECT COUNT(*) FROM invoices WHERE sale_id = ?"), saleID)
	return count, err
}
