package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"pos-service/internal/models"
)

// CreateCategory inserts a new category and sets its ID
func (s *Store) CreateCategory(ctx context.Context, c *models.Category) error {
	id, err := s.insert(ctx, s.db,
		"INSERT INTO categories (name, description) VALUES (?, ?)",
		c.Name, c.Description)
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

// UpdateCategory updates an existing category
func (s *Store) UpdateCategory(ctx context.Context, c *models.Category) error {
	res, err := s.db.ExecContext(ctx, s.rebind(
		"UPDATE categories SET name = ?, description = ? WHERE id = ?"),
		c.Name, c.Description, c.ID)
	if err != nil {
		return err
	}
	return requireRowAffected(res, "category", c.ID)
}

// DeleteCategory removes a category
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM categories WHERE id = ?"), id)
	if err != nil {
		return err
	}
	return requireRowAffected(res, "category", id)
}

// GetCategoryByID retrieves a category by ID
func (s *Store) GetCategoryByID(ctx context.Context, id int64) (*models.Category, error) {
	var c models.Category
	err := s.db.GetContext(ctx, &c, s.rebind("SELECT * FROM categories WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCategories retrieves all categories ordered by name
func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.SelectContext(ctx, &categories, "SELECT * FROM categories ORDER BY name")
	return categories, err
}

// CreateProduct inserts a new product and sets its ID
func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	id, err := s.insert(ctx, s.db,
		"INSERT INTO products (name, price, stock, category_id, created_at) VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)",
		p.Name, p.Price, p.Stock, p.CategoryID)
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

// UpdateProduct updates an existing product
func (s *Store) UpdateProduct(ctx context.Context, p *models.Product) error {
	res, err := s.db.ExecContext(ctx, s.rebind(
		"UPDATE products SET name = ?, price = ?, stock = ?, category_id = ? WHERE id = ?"),
		p.Name, p.Price, p.Stock, p.CategoryID, p.ID)
	if err != nil {
		return err
	}
	return requireRowAffected(res, "product", p.ID)
}

// DeleteProduct removes a product
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM products WHERE id = ?"), id)
	if err != nil {
		return err
	}
	return requireRowAffected(res, "product", id)
}

// GetProductByID retrieves a product by ID
func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var p models.Product
	err := s.db.GetContext(ctx, &p, s.rebind("SELECT * FROM products WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProductsByIDs retrieves multiple products by IDs
func (s *Store) GetProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	query, args, err := sqlx.In("SELECT * FROM products WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var products []models.Product
	err = s.db.SelectContext(ctx, &products, query, args...)
	return products, err
}

// ListProducts retrieves all products ordered by name
func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products, "SELECT * FROM products ORDER BY name")
	return products, err
}

// ListProductsByCategory retrieves products in a category
func (s *Store) ListProductsByCategory(ctx context.Context, categoryID int64) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products, s.rebind(
		"SELECT * FROM products WHERE category_id = ? ORDER BY name"), categoryID)
	return products, err
}

// ListLowStockProducts retrieves products at or below the alert threshold
func (s *Store) ListLowStockProducts(ctx context.Context, threshold int) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products, s.rebind(
		"SELECT * FROM products WHERE stock <= ? ORDER BY stock, name"), threshold)
	return products, err
}

// CountProductReferences counts sale and invoice lines referencing a product
func (s *Store) CountProductReferences(ctx context.Context, productID int64) (int64, error) {
	var count int64
	err := s.db.GetContext(ctx, &count, s.rebind(`
		SELECT (SELECT COUNT(*) FROM sale_lines WHERE product_id = ?)
		     + (SELECT COUNT(*) FROM invoice_lines WHERE product_id = ?)`),
		productID, productID)
	return count, err
}

// CreateCustomer inserts a new customer and sets its ID
func (s *Store) CreateCustomer(ctx context.Context, c *models.Customer) error {
	id, err := s.insert(ctx, s.db,
		"INSERT INTO customers (name, phone, tax_id, address) VALUES (?, ?, ?, ?)",
		c.Name, c.Phone, c.TaxID, c.Address)
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

// UpdateCustomer updates an existing customer
func (s *Store) UpdateCustomer(ctx context.Context, c *models.Customer) error {
	res, err := s.db.ExecContext(ctx, s.rebind(
		"UPDATE customers SET name = ?, phone = ?, tax_id = ?, address = ? WHERE id = ?"),
		c.Name, c.Phone, c.TaxID, c.Address, c.ID)
	if err != nil {
		return err
	}
	return requireRowAffected(res, "customer", c.ID)
}

// DeleteCustomer removes a customer
func (s *Store) DeleteCustomer(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM customers WHERE id = ?"), id)
	if err != nil {
		return err
	}
	return requireRowAffected(res, "customer", id)
}

// GetCustomerByID retrieves a customer by ID
func (s *Store) GetCustomerByID(ctx context.Context, id int64) (*models.Customer, error) {
	var c models.Customer
	err := s.db.GetContext(ctx, &c, s.rebind("SELECT * FROM customers WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("customer %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCustomers retrieves all customers ordered by name
func (s *Store) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	err := s.db.SelectContext(ctx, &customers, "SELECT * FROM customers ORDER BY name")
	return customers, err
}

// CreateEmployee inserts a new employee and sets its ID
func (s *Store) CreateEmployee(ctx context.Context, e *models.Employee) error {
	id, err := s.insert(ctx, s.db,
		"INSERT INTO employees (name, email, phone, address) VALUES (?, ?, ?, ?)",
		e.Name, e.Email, e.Phone, e.Address)
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

// UpdateEmployee updates an existing employee
func (s *Store) UpdateEmployee(ctx context.Context, e *models.Employee) error {
	res, err := s.db.ExecContext(ctx, s.rebind(
		"UPDATE employees SET name = ?, email = ?, phone = ?, address = ? WHERE id = ?"),
		e.Name, e.Email, e.Phone, e.Address, e.ID)
	if err != nil {
		return err
	}
	return requireRowAffected(res, "employee", e.ID)
}

// DeleteEmployee removes an employee
func (s *Store) DeleteEmployee(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM employees WHERE id = ?"), id)
	if err != nil {
		return err
	}
	return requireRowAffected(res, "employee", id)
}

// GetEmployeeByID retrieves an employee by ID
func (s *Store) GetEmployeeByID(ctx context.Context, id int64) (*models.Employee, error) {
	var e models.Employee
	err := s.db.GetContext(ctx, &e, s.rebind("SELECT * FROM employees WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("employee %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListEmployees retrieves all employees ordered by name
func (s *Store) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	var employees []models.Employee
	err := s.db.SelectContext(ctx, &employees, "SELECT * FROM employees ORDER BY name")
	return employees, err
}

// requireRowAffected maps a zero-row update or delete to ErrNotFound.
func requireRowAffected(res sql.Result, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", entity, id, models.ErrNotFound)
	}
	return nil
}
