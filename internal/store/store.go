package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"pos-service/internal/models"
)

// SaleFilter narrows sale listings. Zero values mean "any".
type SaleFilter struct {
	CustomerID int64
	From       *time.Time
	To         *time.Time
}

// InvoiceFilter narrows invoice listings. Zero values mean "any".
type InvoiceFilter struct {
	Status     string
	CustomerID int64
	From       *time.Time
	To         *time.Time
}

// Store is the persistence gateway. Implementations: sqlstore (sqlite or
// postgres via sqlx) and memstore (mutex-guarded maps for dev mode and
// tests). Multi-statement operations are atomic: a failure leaves no
// partial state behind.
type Store interface {
	// Categories
	CreateCategory(ctx context.Context, c *models.Category) error
	UpdateCategory(ctx context.Context, c *models.Category) error
	DeleteCategory(ctx context.Context, id int64) error
	GetCategoryByID(ctx context.Context, id int64) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)

	// Products
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id int64) error
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	GetProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	ListProductsByCategory(ctx context.Context, categoryID int64) ([]models.Product, error)
	ListLowStockProducts(ctx context.Context, threshold int) ([]models.Product, error)
	CountProductReferences(ctx context.Context, productID int64) (int64, error)

	// Customers
	CreateCustomer(ctx context.Context, c *models.Customer) error
	UpdateCustomer(ctx context.Context, c *models.Customer) error
	DeleteCustomer(ctx context.Context, id int64) error
	GetCustomerByID(ctx context.Context, id int64) (*models.Customer, error)
	ListCustomers(ctx context.Context) ([]models.Customer, error)

	// Employees
	CreateEmployee(ctx context.Context, e *models.Employee) error
	UpdateEmployee(ctx context.Context, e *models.Employee) error
	DeleteEmployee(ctx context.Context, id int64) error
	GetEmployeeByID(ctx context.Context, id int64) (*models.Employee, error)
	ListEmployees(ctx context.Context) ([]models.Employee, error)

	// Sales. CreateSaleWithLines persists the sale, its lines and the
	// stock decrements in one transaction; it fails with
	// models.ErrInsufficientStock when any product cannot cover its
	// quantity, leaving stock untouched.
	CreateSaleWithLines(ctx context.Context, sale *models.Sale, lines []models.SaleLine) error
	GetSaleByID(ctx context.Context, id int64) (*models.SaleView, error)
	GetSaleByIdempotencyKey(ctx context.Context, key string) (*models.Sale, error)
	ListSales(ctx context.Context, f SaleFilter) ([]models.SaleView, error)
	GetSaleLines(ctx context.Context, saleID int64) ([]models.SaleLineView, error)
	DeleteSale(ctx context.Context, id int64) error
	CountInvoicesForSale(ctx context.Context, saleID int64) (int64, error)

	// Invoices
	CreateInvoice(ctx context.Context, inv *models.Invoice) error
	UpdateInvoice(ctx context.Context, inv *models.Invoice) error
	UpdateInvoiceTotals(ctx context.Context, id int64, subtotal, tax, total decimal.Decimal) error
	UpdateInvoiceStatus(ctx context.Context, id int64, status string) error
	DeleteInvoice(ctx context.Context, id int64) error
	GetInvoiceByID(ctx context.Context, id int64) (*models.InvoiceView, error)
	GetInvoiceByNumber(ctx context.Context, number string) (*models.InvoiceView, error)
	ListInvoices(ctx context.Context, f InvoiceFilter) ([]models.InvoiceView, error)
	MaxInvoiceNumberSuffix(ctx context.Context) (int64, error)
	CreateInvoiceLine(ctx context.Context, line *models.InvoiceLine) error
	DeleteInvoiceLine(ctx context.Context, lineID int64) (invoiceID int64, err error)
	GetInvoiceLines(ctx context.Context, invoiceID int64) ([]models.InvoiceLineView, error)
	InvoiceStatistics(ctx context.Context) (*models.InvoiceStatistics, error)

	Close() error
}
