package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeSaleCompleted        = "SALE_COMPLETED"
	EventTypeInvoiceIssued        = "INVOICE_ISSUED"
	EventTypeInvoiceStatusChanged = "INVOICE_STATUS_CHANGED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// SaleLineData represents line data carried in events
type SaleLineData struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// SaleCompletedEvent published after a sale and its lines are persisted
type SaleCompletedEvent struct {
	BaseEvent
	SaleID     int64           `json:"sale_id"`
	CustomerID int64           `json:"customer_id"`
	EmployeeID int64           `json:"employee_id"`
	Total      decimal.Decimal `json:"total"`
	Lines      []SaleLineData  `json:"lines"`
}

// InvoiceIssuedEvent published when an invoice is created
type InvoiceIssuedEvent struct {
	BaseEvent
	InvoiceID int64           `json:"invoice_id"`
	Number    string          `json:"number"`
	SaleID    *int64          `json:"sale_id,omitempty"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
}

// InvoiceStatusChangedEvent published on every accepted status change
type InvoiceStatusChangedEvent struct {
	BaseEvent
	InvoiceID int64  `json:"invoice_id"`
	Number    string `json:"number"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}
