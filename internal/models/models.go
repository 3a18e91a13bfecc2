package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category groups products in the catalog
type Category struct {
	ID          int64  `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description,omitempty"`
}

// Product represents a product in the catalog
type Product struct {
	ID         int64           `db:"id" json:"id"`
	Name       string          `db:"name" json:"name"`
	Price      decimal.Decimal `db:"price" json:"price"`
	Stock      int             `db:"stock" json:"stock"`
	CategoryID *int64          `db:"category_id" json:"category_id,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// Customer represents a buyer
type Customer struct {
	ID      int64  `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	Phone   string `db:"phone" json:"phone,omitempty"`
	TaxID   string `db:"tax_id" json:"tax_id,omitempty"`
	Address string `db:"address" json:"address,omitempty"`
}

// Employee represents a staff member who records sales
type Employee struct {
	ID      int64  `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	Email   string `db:"email" json:"email,omitempty"`
	Phone   string `db:"phone" json:"phone,omitempty"`
	Address string `db:"address" json:"address,omitempty"`
}

// Sale is a completed point-of-sale transaction. Its total is derived
// from its lines and stock is decremented when it is created.
type Sale struct {
	ID             int64           `db:"id" json:"id"`
	Date           time.Time       `db:"date" json:"date"`
	Total          decimal.Decimal `db:"total" json:"total"`
	CustomerID     int64           `db:"customer_id" json:"customer_id"`
	EmployeeID     int64           `db:"employee_id" json:"employee_id"`
	IdempotencyKey string          `db:"idempotency_key" json:"idempotency_key,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

// SaleLine is one line of a sale. UnitPrice is a snapshot of the product
// price at the time of the sale, not a live reference.
type SaleLine struct {
	ID        int64           `db:"id" json:"id"`
	SaleID    int64           `db:"sale_id" json:"sale_id"`
	ProductID int64           `db:"product_id" json:"product_id"`
	Quantity  int             `db:"quantity" json:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price" json:"unit_price"`
	Subtotal  decimal.Decimal `db:"subtotal" json:"subtotal"`
}

// Invoice statuses
const (
	InvoiceStatusPending   = "Pending"
	InvoiceStatusPaid      = "Paid"
	InvoiceStatusCancelled = "Cancelled"
	InvoiceStatusOverdue   = "Overdue"
)

// ValidInvoiceStatus reports whether s is one of the recognized labels.
func ValidInvoiceStatus(s string) bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPaid, InvoiceStatusCancelled, InvoiceStatusOverdue:
		return true
	}
	return false
}

// Invoice is a billing document, optionally derived from a sale. It owns
// its own lines, independent of the sale's lines.
type Invoice struct {
	ID         int64           `db:"id" json:"id"`
	Number     string          `db:"number" json:"number"`
	Date       time.Time       `db:"date" json:"date"`
	Subtotal   decimal.Decimal `db:"subtotal" json:"subtotal"`
	Tax        decimal.Decimal `db:"tax" json:"tax"`
	Total      decimal.Decimal `db:"total" json:"total"`
	Status     string          `db:"status" json:"status"`
	Notes      string          `db:"notes" json:"notes,omitempty"`
	SaleID     *int64          `db:"sale_id" json:"sale_id,omitempty"`
	CustomerID *int64          `db:"customer_id" json:"customer_id,omitempty"`
	EmployeeID *int64          `db:"employee_id" json:"employee_id,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// InvoiceLine is one line of an invoice with a unit price snapshot.
type InvoiceLine struct {
	ID        int64           `db:"id" json:"id"`
	InvoiceID int64           `db:"invoice_id" json:"invoice_id"`
	ProductID int64           `db:"product_id" json:"product_id"`
	Quantity  int             `db:"quantity" json:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price" json:"unit_price"`
	Subtotal  decimal.Decimal `db:"subtotal" json:"subtotal"`
}

// SaleView is a sale joined with customer and employee names for listings.
type SaleView struct {
	Sale
	CustomerName string `db:"customer_name" json:"customer_name"`
	EmployeeName string `db:"employee_name" json:"employee_name"`
}

// SaleLineView is a sale line joined with its product name.
type SaleLineView struct {
	SaleLine
	ProductName string `db:"product_name" json:"product_name"`
}

// InvoiceView is an invoice joined with customer and employee names.
// Names are empty when the reference is absent.
type InvoiceView struct {
	Invoice
	CustomerName string `db:"customer_name" json:"customer_name,omitempty"`
	EmployeeName string `db:"employee_name" json:"employee_name,omitempty"`
}

// InvoiceLineView is an invoice line joined with its product name.
type InvoiceLineView struct {
	InvoiceLine
	ProductName string `db:"product_name" json:"product_name"`
}

// InvoiceStatistics summarizes invoices per status.
type InvoiceStatistics struct {
	TotalInvoices int64           `db:"total_invoices" json:"total_invoices"`
	Pending       int64           `db:"pending" json:"pending"`
	Paid          int64           `db:"paid" json:"paid"`
	Cancelled     int64           `db:"cancelled" json:"cancelled"`
	Overdue       int64           `db:"overdue" json:"overdue"`
	TotalAmount   decimal.Decimal `db:"total_amount" json:"total_amount"`
	AverageAmount decimal.Decimal `db:"average_amount" json:"average_amount"`
}
