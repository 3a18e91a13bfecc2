package sqlstore

import (
	"context"

	"github.com/shopspring/decimal"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		price NUMERIC NOT NULL,
		stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
		category_id INTEGER REFERENCES categories(id),
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS customers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		tax_id TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS employees (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date DATETIME NOT NULL,
		total NUMERIC NOT NULL,
		customer_id INTEGER NOT NULL REFERENCES customers(id),
		employee_id INTEGER NOT NULL REFERENCES employees(id),
		idempotency_key TEXT NOT NULL UNIQUE,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS sale_lines (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sale_id INTEGER NOT NULL REFERENCES sales(id),
		product_id INTEGER NOT NULL REFERENCES products(id),
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		unit_price NUMERIC NOT NULL,
		subtotal NUMERIC NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS invoices (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		number TEXT NOT NULL UNIQUE,
		date DATETIME NOT NULL,
		subtotal NUMERIC NOT NULL,
		tax NUMERIC NOT NULL,
		total NUMERIC NOT NULL,
		status TEXT NOT NULL DEFAULT 'Pending',
		notes TEXT NOT NULL DEFAULT '',
		sale_id INTEGER REFERENCES sales(id),
		customer_id INTEGER REFERENCES customers(id),
		employee_id INTEGER REFERENCES employees(id),
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS invoice_lines (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		invoice_id INTEGER NOT NULL REFERENCES invoices(id),
		product_id INTEGER NOT NULL REFERENCES products(id),
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		unit_price NUMERIC NOT NULL,
		subtotal NUMERIC NOT NULL
	)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		price NUMERIC(12,2) NOT NULL,
		stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
		category_id BIGINT REFERENCES categories(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS customers (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		tax_id TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS employees (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id BIGSERIAL PRIMARY KEY,
		date TIMESTAMPTZ NOT NULL,
		total NUMERIC(12,2) NOT NULL,
		customer_id BIGINT NOT NULL REFERENCES customers(id),
		employee_id BIGINT NOT NULL REFERENCES employees(id),
		idempotency_key TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS sale_lines (
		id BIGSERIAL PRIMARY KEY,
		sale_id BIGINT NOT NULL REFERENCES sales(id),
		product_id BIGINT NOT NULL REFERENCES products(id),
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		unit_price NUMERIC(12,2) NOT NULL,
		subtotal NUMERIC(12,2) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS invoices (
		id BIGSERIAL PRIMARY KEY,
		number TEXT NOT NULL UNIQUE,
		date TIMESTAMPTZ NOT NULL,
		subtotal NUMERIC(12,2) NOT NULL,
		tax NUMERIC(12,2) NOT NULL,
		total NUMERIC(12,2) NOT NULL,
		status TEXT NOT NULL DEFAULT 'Pending',
		notes TEXT NOT NULL DEFAULT '',
		sale_id BIGINT REFERENCES sales(id),
		customer_id BIGINT REFERENCES customers(id),
		employee_id BIGINT REFERENCES employees(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS invoice_lines (
		id BIGSERIAL PRIMARY KEY,
		invoice_id BIGINT NOT NULL REFERENCES invoices(id),
		product_id BIGINT NOT NULL REFERENCES products(id),
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		unit_price NUMERIC(12,2) NOT NULL,
		subtotal NUMERIC(12,2) NOT NULL
	)`,
}

func (s *Store) migrate(ctx context.Context) error {
	schema := sqliteSchema
	if s.driver == "postgres" {
		schema = postgresSchema
	}
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Seed inserts sample catalog data when the database is empty. Used by
// dev deployments; a populated database is left untouched.
func (s *Store) Seed(ctx context.Context) error {
	var count int64
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM categories"); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	categories := []struct{ name, desc string }{
		{"Electronics", "Electronic products and gadgets"},
		{"Clothing", "Garments and accessories"},
		{"Home", "Household goods"},
		{"Food", "Food products"},
		{"Office", "Office supplies"},
	}
	catIDs := make([]int64, 0, len(categories))
	for _, c := range categories {
		id, err := s.insert(ctx, s.db,
			"INSERT INTO categories (name, description) VALUES (?, ?)", c.name, c.desc)
		if err != nil {
			return err
		}
		catIDs = append(catIDs, id)
	}

	products := []struct {
		name  string
		price string
		stock int
		cat   int
	}{
		{"HP Laptop", "899.99", 10, 0},
		{"Samsung Smartphone", "499.99", 15, 0},
		{"Basic T-Shirt", "19.99", 50, 1},
		{"Denim Jeans", "39.99", 30, 1},
		{"LED Lamp", "29.99", 20, 2},
		{"Bed Sheet Set", "49.99", 15, 2},
		{"Gourmet Coffee", "12.99", 40, 3},
		{"Premium Chocolate", "5.99", 100, 3},
		{"Executive Notebook", "8.99", 60, 4},
		{"Pen Set", "4.99", 80, 4},
	}
	for _, p := range products {
		price, err := decimal.NewFromString(p.price)
		if err != nil {
			return err
		}
		if _, err := s.insert(ctx, s.db,
			"INSERT INTO products (name, price, stock, category_id, created_at) VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)",
			p.name, price, p.stock, catIDs[p.cat]); err != nil {
			return err
		}
	}
	return nil
}
