// Package memstore is an in-memory Store used when no database is
// configured (dev/demo mode) and by the service tests.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"pos-service/internal/models"
	"pos-service/internal/store"
)

type Store struct {
	mu sync.RWMutex

	nextCategoryID    int64
	nextProductID     int64
	nextCustomerID    int64
	nextEmployeeID    int64
	nextSaleID        int64
	nextSaleLineID    int64
	nextInvoiceID     int64
	nextInvoiceLineID int64

	categories   map[int64]models.Category
	products     map[int64]models.Product
	customers    map[int64]models.Customer
	employees    map[int64]models.Employee
	sales        map[int64]models.Sale
	saleLines    map[int64]models.SaleLine
	invoices     map[int64]models.Invoice
	invoiceLines map[int64]models.InvoiceLine
	salesByIdem  map[string]int64
}

func New() *Store {
	return &Store{
		categories:   map[int64]models.Category{},
		products:     map[int64]models.Product{},
		customers:    map[int64]models.Customer{},
		employees:    map[int64]models.Employee{},
		sales:        map[int64]models.Sale{},
		saleLines:    map[int64]models.SaleLine{},
		invoices:     map[int64]models.Invoice{},
		invoiceLines: map[int64]models.InvoiceLine{},
		salesByIdem:  map[string]int64{},
	}
}

func (s *Store) Close() error { return nil }

// Categories

func (s *Store) CreateCategory(_ context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextCategoryID++
	c.ID = s.nextCategoryID
	s.categories[c.ID] = *c
	return nil
}

func (s *Store) UpdateCategory(_ context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[c.ID]; !ok {
		return fmt.Errorf("category %d: %w", c.ID, models.ErrNotFound)
	}
	s.categories[c.ID] = *c
	return nil
}

func (s *Store) DeleteCategory(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return fmt.Errorf("category %d: %w", id, models.ErrNotFound)
	}
	delete(s.categories, id)
	return nil
}

func (s *Store) GetCategoryByID(_ context.Context, id int64) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, fmt.Errorf("category %d: %w", id, models.ErrNotFound)
	}
	return &c, nil
}

func (s *Store) ListCategories(_ context.Context) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Products

func (s *Store) CreateProduct(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextProductID++
	p.ID = s.nextProductID
	s.products[p.ID] = *p
	return nil
}

func (s *Store) UpdateProduct(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; !ok {
		return fmt.Errorf("product %d: %w", p.ID, models.ErrNotFound)
	}
	s.products[p.ID] = *p
	return nil
}

func (s *Store) DeleteProduct(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return fmt.Errorf("product %d: %w", id, models.ErrNotFound)
	}
	delete(s.products, id)
	return nil
}

func (s *Store) GetProductByID(_ context.Context, id int64) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, models.ErrNotFound)
	}
	return &p, nil
}

func (s *Store) GetProductsByIDs(_ context.Context, ids []int64) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) ListProducts(_ context.Context) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) ListProductsByCategory(_ context.Context, categoryID int64) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Product
	for _, p := range s.products {
		if p.CategoryID != nil && *p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) ListLowStockProducts(_ context.Context, threshold int) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Product
	for _, p := range s.products {
		if p.Stock <= threshold {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Stock != out[j].Stock {
			return out[i].Stock < out[j].Stock
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) CountProductReferences(_ context.Context, productID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, l := range s.saleLines {
		if l.ProductID == productID {
			count++
		}
	}
	for _, l := range s.invoiceLines {
		if l.ProductID == productID {
			count++
		}
	}
	return count, nil
}

// Customers

func (s *Store) CreateCustomer(_ context.Context, c *models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextCustomerID++
	c.ID = s.nextCustomerID
	s.customers[c.ID] = *c
	return nil
}

func (s *Store) UpdateCustomer(_ context.Context, c *models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[c.ID]; !ok {
		return fmt.Errorf("customer %d: %w", c.ID, models.ErrNotFound)
	}
	s.customers[c.ID] = *c
	return nil
}

func (s *Store) DeleteCustomer(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[id]; !ok {
		return fmt.Errorf("customer %d: %w", id, models.ErrNotFound)
	}
	delete(s.customers, id)
	return nil
}

func (s *Store) GetCustomerByID(_ context.Context, id int64) (*models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers[id]
	if !ok {
		return nil, fmt.Errorf("customer %d: %w", id, models.ErrNotFound)
	}
	return &c, nil
}

func (s *Store) ListCustomers(_ context.Context) ([]models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Employees

func (s *Store) CreateEmployee(_ context.Context, e *models.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextEmployeeID++
	e.ID = s.nextEmployeeID
	s.employees[e.ID] = *e
	return nil
}

func (s *Store) UpdateEmployee(_ context.Context, e *models.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.employees[e.ID]; !ok {
		return fmt.Errorf("employee %d: %w", e.ID, models.ErrNotFound)
	}
	s.employees[e.ID] = *e
	return nil
}

func (s *Store) DeleteEmployee(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.employees[id]; !ok {
		return fmt.Errorf("employee %d: %w", id, models.ErrNotFound)
	}
	delete(s.employees, id)
	return nil
}

func (s *Store) GetEmployeeByID(_ context.Context, id int64) (*models.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.employees[id]
	if !ok {
		return nil, fmt.Errorf("employee %d: %w", id, models.ErrNotFound)
	}
	return &e, nil
}

func (s *Store) ListEmployees(_ context.Context) ([]models.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Employee, 0, len(s.employees))
	for _, e := range s.employees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Sales

func (s *Store) CreateSaleWithLines(_ context.Context, sale *models.Sale, lines []models.SaleLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Stage the stock decrements so a failure touches nothing.
	staged := map[int64]int{}
	for _, line := range lines {
		p, ok := s.products[line.ProductID]
		if !ok {
			return fmt.Errorf("product %d: %w", line.ProductID, models.ErrNotFound)
		}
		remaining := p.Stock - staged[line.ProductID] - line.Quantity
		if remaining < 0 {
			return fmt.Errorf("product %d: available=%d, requested=%d: %w",
				line.ProductID, p.Stock-staged[line.ProductID], line.Quantity, models.ErrInsufficientStock)
		}
		staged[line.ProductID] += line.Quantity
	}

	for productID, qty := range staged {
		p := s.products[productID]
		p.Stock -= qty
		s.products[productID] = p
	}

	s.nextSaleID++
	sale.ID = s.nextSaleID
	s.sales[sale.ID] = *sale
	if sale.IdempotencyKey != "" {
		s.salesByIdem[sale.IdempotencyKey] = sale.ID
	}

	for i := range lines {
		s.nextSaleLineID++
		lines[i].ID = s.nextSaleLineID
		lines[i].SaleID = sale.ID
		s.saleLines[lines[i].ID] = lines[i]
	}
	return nil
}

func (s *Store) GetSaleByID(_ context.Context, id int64) (*models.SaleView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sale, ok := s.sales[id]
	if !ok {
		return nil, fmt.Errorf("sale %d: %w", id, models.ErrNotFound)
	}
	view := s.saleView(sale)
	return &view, nil
}

func (s *Store) GetSaleByIdempotencyKey(_ context.Context, key string) (*models.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.salesByIdem[key]
	if !ok {
		return nil, nil
	}
	sale := s.sales[id]
	return &sale, nil
}

func (s *Store) ListSales(_ context.Context, f store.SaleFilter) ([]models.SaleView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.SaleView, 0, len(s.sales))
	for _, sale := range s.sales {
		if f.CustomerID != 0 && sale.CustomerID != f.CustomerID {
			continue
		}
		if f.From != nil && sale.Date.Before(*f.From) {
			continue
		}
		if f.To != nil && sale.Date.After(*f.To) {
			continue
		}
		out = append(out, s.saleView(sale))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) GetSaleLines(_ context.Context, saleID int64) ([]models.SaleLineView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.SaleLineView
	for _, l := range s.saleLines {
		if l.SaleID != saleID {
			continue
		}
		v := models.SaleLineView{SaleLine: l}
		if p, ok := s.products[l.ProductID]; ok {
			v.ProductName = p.Name
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) DeleteSale(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sale, ok := s.sales[id]
	if !ok {
		return fmt.Errorf("sale %d: %w", id, models.ErrNotFound)
	}
	for lineID, l := range s.saleLines {
		if l.SaleID == id {
			delete(s.saleLines, lineID)
		}
	}
	delete(s.sales, id)
	delete(s.salesByIdem, sale.IdempotencyKey)
	return nil
}

func (s *Store) CountInvoicesForSale(_ context.Context, saleID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, inv := range s.invoices {
		if inv.SaleID != nil && *inv.SaleID == saleID {
			count++
		}
	}
	return count, nil
}

func (s *Store) saleView(sale models.Sale) models.SaleView {
	view := models.SaleView{Sale: sale}
	if c, ok := s.customers[sale.CustomerID]; ok {
		view.CustomerName = c.Name
	}
	if e, ok := s.employees[sale.EmployeeID]; ok {
		view.EmployeeName = e.Name
	}
	return view
}

// Invoices

func (s *Store) CreateInvoice(_ context.Context, inv *models.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.invoices {
		if existing.Number == inv.Number {
			return fmt.Errorf("invoice number %s already exists", inv.Number)
		}
	}
	s.nextInvoiceID++
	inv.ID = s.nextInvoiceID
	s.invoices[inv.ID] = *inv
	return nil
}

func (s *Store) UpdateInvoice(_ context.Context, inv *models.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invoices[inv.ID]; !ok {
		return fmt.Errorf("invoice %d: %w", inv.ID, models.ErrNotFound)
	}
	s.invoices[inv.ID] = *inv
	return nil
}

func (s *Store) UpdateInvoiceTotals(_ context.Context, id int64, subtotal, tax, total decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[id]
	if !ok {
		return fmt.Errorf("invoice %d: %w", id, models.ErrNotFound)
	}
	inv.Subtotal = subtotal
	inv.Tax = tax
	inv.Total = total
	s.invoices[id] = inv
	return nil
}

func (s *Store) UpdateInvoiceStatus(_ context.Context, id int64, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[id]
	if !ok {
		return fmt.Errorf("invoice %d: %w", id, models.ErrNotFound)
	}
	inv.Status = status
	s.invoices[id] = inv
	return nil
}

func (s *Store) DeleteInvoice(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invoices[id]; !ok {
		return fmt.Errorf("invoice %d: %w", id, models.ErrNotFound)
	}
	for lineID, l := range s.invoiceLines {
		if l.InvoiceID == id {
			delete(s.invoiceLines, lineID)
		}
	}
	delete(s.invoices, id)
	return nil
}

func (s *Store) GetInvoiceByID(_ context.Context, id int64) (*models.InvoiceView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invoices[id]
	if !ok {
		return nil, fmt.Errorf("invoice %d: %w", id, models.ErrNotFound)
	}
	view := s.invoiceView(inv)
	return &view, nil
}

func (s *Store) GetInvoiceByNumber(_ context.Context, number string) (*models.InvoiceView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, inv := range s.invoices {
		if inv.Number == number {
			view := s.invoiceView(inv)
			return &view, nil
		}
	}
	return nil, fmt.Errorf("invoice %s: %w", number, models.ErrNotFound)
}

func (s *Store) ListInvoices(_ context.Context, f store.InvoiceFilter) ([]models.InvoiceView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.InvoiceView, 0, len(s.invoices))
	for _, inv := range s.invoices {
		if f.Status != "" && inv.Status != f.Status {
			continue
		}
		if f.CustomerID != 0 && (inv.CustomerID == nil || *inv.CustomerID != f.CustomerID) {
			continue
		}
		if f.From != nil && inv.Date.Before(*f.From) {
			continue
		}
		if f.To != nil && inv.Date.After(*f.To) {
			continue
		}
		out = append(out, s.invoiceView(inv))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) MaxInvoiceNumberSuffix(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var max int64
	for _, inv := range s.invoices {
		if n, ok := store.InvoiceNumberSuffix(inv.Number); ok && n > max {
			max = n
		}
	}
	return max, nil
}

func (s *Store) CreateInvoiceLine(_ context.Context, line *models.InvoiceLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invoices[line.InvoiceID]; !ok {
		return fmt.Errorf("invoice %d: %w", line.InvoiceID, models.ErrNotFound)
	}
	s.nextInvoiceLineID++
	line.ID = s.nextInvoiceLineID
	s.invoiceLines[line.ID] = *line
	return nil
}

func (s *Store) DeleteInvoiceLine(_ context.Context, lineID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.invoiceLines[lineID]
	if !ok {
		return 0, fmt.Errorf("invoice line %d: %w", lineID, models.ErrNotFound)
	}
	delete(s.invoiceLines, lineID)
	return l.InvoiceID, nil
}

func (s *Store) GetInvoiceLines(_ context.Context, invoiceID int64) ([]models.InvoiceLineView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.InvoiceLineView
	for _, l := range s.invoiceLines {
		if l.InvoiceID != invoiceID {
			continue
		}
		v := models.InvoiceLineView{InvoiceLine: l}
		if p, ok := s.products[l.ProductID]; ok {
			v.ProductName = p.Name
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) InvoiceStatistics(_ context.Context) (*models.InvoiceStatistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := &models.InvoiceStatistics{
		TotalAmount:   decimal.Zero,
		AverageAmount: decimal.Zero,
	}
	for _, inv := range s.invoices {
		stats.TotalInvoices++
		stats.TotalAmount = stats.TotalAmount.Add(inv.Total)
		switch inv.Status {
		case models.InvoiceStatusPending:
			stats.Pending++
		case models.InvoiceStatusPaid:
			stats.Paid++
		case models.InvoiceStatusCancelled:
			stats.Cancelled++
		case models.InvoiceStatusOverdue:
			stats.Overdue++
		}
	}
	if stats.TotalInvoices > 0 {
		stats.AverageAmount = stats.TotalAmount.Div(decimal.NewFromInt(stats.TotalInvoices)).Round(2)
	}
	return stats, nil
}

func (s *Store) invoiceView(inv models.Invoice) models.InvoiceView {
	view := models.InvoiceView{Invoice: inv}
	if inv.CustomerID != nil {
		if c, ok := s.customers[*inv.CustomerID]; ok {
			view.CustomerName = c.Name
		}
	}
	if inv.EmployeeID != nil {
		if e, ok := s.employees[*inv.EmployeeID]; ok {
			view.EmployeeName = e.Name
		}
	}
	return view
}
