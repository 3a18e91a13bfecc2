package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pos-service/internal/broker"
	"pos-service/internal/models"
	"pos-service/internal/redisclient"
	"pos-service/internal/store"
	"pos-service/internal/util"
)

const statsCacheTTL = 30 * time.Second

// InvoiceService handles invoice numbering, derivation from sales, line
// management and status changes.
type InvoiceService struct {
	store          store.Store
	eventPublisher *broker.EventPublisher
	cache          *redisclient.Client
	logger         *zap.Logger
}

// NewInvoiceService creates a new invoice service. cache may be nil.
func NewInvoiceService(st store.Store, eventPublisher *broker.EventPublisher, cache *redisclient.Client) *InvoiceService {
	return &InvoiceService{
		store:          st,
		eventPublisher: eventPublisher,
		cache:          cache,
		logger:         util.GetLogger(),
	}
}

// CreateInvoiceRequest represents a request to create an invoice
type CreateInvoiceRequest struct {
	CustomerID *int64  `json:"customer_id,omitempty"`
	EmployeeID *int64  `json:"employee_id,omitempty"`
	Notes      string  `json:"notes,omitempty"`
	TaxPercent float64 `json:"tax_percent"`
}

// InvoiceItemRequest is one cart entry for invoice creation
type InvoiceItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,min=1"`
}

// CreateInvoiceWithProductsRequest creates an invoice and its lines in
// one call
type CreateInvoiceWithProductsRequest struct {
	CreateInvoiceRequest
	Items []InvoiceItemRequest `json:"items" binding:"required,min=1"`
}

// NextInvoiceNumber issues the next sequential number in the FAC-%06d
// series. If the current maximum cannot be read it falls back to a
// timestamp-based number, which sits outside the sequence and never
// advances it.
func (s *InvoiceService) NextInvoiceNumber(ctx context.Context) string {
	maxSuffix, err := s.store.MaxInvoiceNumberSuffix(ctx)
	if err != nil {
		util.InvoiceNumberFallbacksTotal.Inc()
		number := "FAC-" + time.Now().Format("20060102150405")
		s.logger.Warn("Falling back to timestamp invoice number",
			zap.String("number", number),
			zap.Error(err))
		return number
	}
	return fmt.Sprintf("FAC-%06d", maxSuffix+1)
}

// CreateInvoice creates an empty invoice with zero totals. Lines are
// added separately and totals follow from a recompute.
func (s *InvoiceService) CreateInvoice(ctx context.Context, req *CreateInvoiceRequest) (*models.Invoice, error) {
	ctx, span := util.StartSpan(ctx, "InvoiceService.CreateInvoice")
	defer span.End()

	if req.TaxPercent < 0 {
		util.InvoicesFailedTotal.WithLabelValues("invalid_tax").Inc()
		return nil, fmt.Errorf("tax percent must not be negative: %w", models.ErrValidation)
	}
	if req.CustomerID != nil {
		if _, err := s.store.GetCustomerByID(ctx, *req.CustomerID); err != nil {
			util.InvoicesFailedTotal.WithLabelValues("invalid_customer").Inc()
			return nil, err
		}
	}
	if req.EmployeeID != nil {
		if _, err := s.store.GetEmployeeByID(ctx, *req.EmployeeID); err != nil {
			util.InvoicesFailedTotal.WithLabelValues("invalid_employee").Inc()
			return nil, err
		}
	}

	inv := &models.Invoice{
		Number:     s.NextInvoiceNumber(ctx),
		Date:       time.Now(),
		Subtotal:   decimal.Zero,
		Tax:        decimal.Zero,
		Total:      decimal.Zero,
		Status:     models.InvoiceStatusPending,
		Notes:      req.Notes,
		CustomerID: req.CustomerID,
		EmployeeID: req.EmployeeID,
	}
	if err := s.store.CreateInvoice(ctx, inv); err != nil {
		util.InvoicesFailedTotal.WithLabelValues("store_error").Inc()
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	util.InvoicesCreatedTotal.Inc()
	s.invalidateStats(ctx)
	s.publishIssued(ctx, inv)
	s.logger.Info("Invoice created",
		zap.Int64("invoice_id", inv.ID),
		zap.String("number", inv.Number))
	return inv, nil
}

// CreateInvoiceFromSale derives an invoice from an existing sale. The
// sale total becomes the invoice subtotal; tax and total follow from
// taxPercent. The invoice carries no lines of its own until some are
// added explicitly.
func (s *InvoiceService) CreateInvoiceFromSale(ctx context.Context, saleID int64, taxPercent float64, notes string) (*models.Invoice, error) {
	ctx, span := util.StartSpan(ctx, "InvoiceService.CreateInvoiceFromSale")
	defer span.End()

	if taxPercent < 0 {
		util.InvoicesFailedTotal.WithLabelValues("invalid_tax").Inc()
		return nil, fmt.Errorf("tax percent must not be negative: %w", models.ErrValidation)
	}

	sale, err := s.store.GetSaleByID(ctx, saleID)
	if err != nil {
		util.InvoicesFailedTotal.WithLabelValues("sale_not_found").Inc()
		return nil, err
	}

	subtotal := sale.Total
	tax := applyTax(subtotal, taxPercent)
	inv := &models.Invoice{
		Number:     s.NextInvoiceNumber(ctx),
		Date:       time.Now(),
		Subtotal:   subtotal,
		Tax:        tax,
		Total:      subtotal.Add(tax),
		Status:     models.InvoiceStatusPending,
		Notes:      notes,
		SaleID:     &sale.ID,
		CustomerID: &sale.CustomerID,
		EmployeeID: &sale.EmployeeID,
	}
	if err := s.store.CreateInvoice(ctx, inv); err != nil {
		util.InvoicesFailedTotal.WithLabelValues("store_error").Inc()
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	util.InvoicesCreatedTotal.Inc()
	s.invalidateStats(ctx)
	s.publishIssued(ctx, inv)
	s.logger.Info("Invoice created from sale",
		zap.Int64("invoice_id", inv.ID),
		zap.String("number", inv.Number),
		zap.Int64("sale_id", saleID))
	return inv, nil
}

// CreateInvoiceWithProducts creates an invoice and adds a line per cart
// entry. If any line fails, the invoice and the lines added so far are
// removed before the error is reported, so a failed call leaves nothing
// behind.
func (s *InvoiceService) CreateInvoiceWithProducts(ctx context.Context, req *CreateInvoiceWithProductsRequest) (*models.InvoiceView, error) {
	ctx, span := util.StartSpan(ctx, "InvoiceService.CreateInvoiceWithProducts")
	defer span.End()

	inv, err := s.CreateInvoice(ctx, &req.CreateInvoiceRequest)
	if err != nil {
		return nil, err
	}

	for _, item := range req.Items {
		if _, err := s.AddLine(ctx, inv.ID, item.ProductID, item.Quantity, req.TaxPercent); err != nil {
			if delErr := s.store.DeleteInvoice(ctx, inv.ID); delErr != nil {
				s.logger.Error("Failed to roll back invoice",
					zap.Int64("invoice_id", inv.ID),
					zap.Error(delErr))
			}
			util.InvoicesFailedTotal.WithLabelValues("line_error").Inc()
			return nil, fmt.Errorf("failed to add product %d: %w", item.ProductID, err)
		}
	}

	return s.store.GetInvoiceByID(ctx, inv.ID)
}

// AddLine appends a line to an invoice with a snapshot of the product's
// current price, then recomputes the invoice totals.
func (s *InvoiceService) AddLine(ctx context.Context, invoiceID, productID int64, quantity int, taxPercent float64) (*models.InvoiceLine, error) {
	ctx, span := util.StartSpan(ctx, "InvoiceService.AddLine")
	defer span.End()

	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive: %w", models.ErrValidation)
	}
	if taxPercent < 0 {
		return nil, fmt.Errorf("tax percent must not be negative: %w", models.ErrValidation)
	}

	if _, err := s.store.GetInvoiceByID(ctx, invoiceID); err != nil {
		return nil, err
	}
	product, err := s.store.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	line := &models.InvoiceLine{
		InvoiceID: invoiceID,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: product.Price,
		Subtotal:  product.Price.Mul(decimal.NewFromInt(int64(quantity))),
	}
	if err := s.store.CreateInvoiceLine(ctx, line); err != nil {
		return nil, fmt.Errorf("failed to create invoice line: %w", err)
	}

	if err := s.Recompute(ctx, invoiceID, taxPercent); err != nil {
		return nil, err
	}
	return line, nil
}

// RemoveLine deletes an invoice line and recomputes the totals of the
// invoice it belonged to.
func (s *InvoiceService) RemoveLine(ctx context.Context, lineID int64, taxPercent float64) error {
	ctx, span := util.StartSpan(ctx, "InvoiceService.RemoveLine")
	defer span.End()

	if taxPercent < 0 {
		return fmt.Errorf("tax percent must not be negative: %w", models.ErrValidation)
	}

	invoiceID, err := s.store.DeleteInvoiceLine(ctx, lineID)
	if err != nil {
		return err
	}
	return s.Recompute(ctx, invoiceID, taxPercent)
}

// Recompute rederives an invoice's totals from its current lines. The
// subtotal is the sum of line subtotals, zero when there are none, and
// tax is rounded to two decimal places so repeated recomputes with the
// same rate are stable.
func (s *InvoiceService) Recompute(ctx context.Context, invoiceID int64, taxPercent float64) error {
	ctx, span := util.StartSpan(ctx, "InvoiceService.Recompute")
	defer span.End()

	if taxPercent < 0 {
		return fmt.Errorf("tax percent must not be negative: %w", models.ErrValidation)
	}

	lines, err := s.store.GetInvoiceLines(ctx, invoiceID)
	if err != nil {
		return err
	}

	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Subtotal)
	}
	tax := applyTax(subtotal, taxPercent)

	if err := s.store.UpdateInvoiceTotals(ctx, invoiceID, subtotal, tax, subtotal.Add(tax)); err != nil {
		return err
	}
	s.invalidateStats(ctx)
	return nil
}

// ChangeStatus moves an invoice to a new status label. Any recognized
// label can follow any other; unrecognized labels are rejected.
func (s *InvoiceService) ChangeStatus(ctx context.Context, invoiceID int64, newStatus string) error {
	ctx, span := util.StartSpan(ctx, "InvoiceService.ChangeStatus")
	defer span.End()

	if !models.ValidInvoiceStatus(newStatus) {
		return fmt.Errorf("unknown invoice status %q: %w", newStatus, models.ErrInvalidStatus)
	}

	inv, err := s.store.GetInvoiceByID(ctx, invoiceID)
	if err != nil {
		return err
	}

	if err := s.store.UpdateInvoiceStatus(ctx, invoiceID, newStatus); err != nil {
		return err
	}

	util.InvoiceStatusChangesTotal.WithLabelValues(newStatus).Inc()
	s.invalidateStats(ctx)
	s.logger.Info("Invoice status changed",
		zap.Int64("invoice_id", invoiceID),
		zap.String("old_status", inv.Status),
		zap.String("new_status", newStatus))

	event := &models.InvoiceStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeInvoiceStatusChanged,
			Timestamp: time.Now(),
		},
		InvoiceID: invoiceID,
		Number:    inv.Number,
		OldStatus: inv.Status,
		NewStatus: newStatus,
	}
	if err := s.eventPublisher.PublishInvoiceStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish InvoiceStatusChanged event", zap.Error(err))
	}
	return nil
}

// GetInvoice retrieves an invoice with its lines
func (s *InvoiceService) GetInvoice(ctx context.Context, invoiceID int64) (*models.InvoiceView, []models.InvoiceLineView, error) {
	inv, err := s.store.GetInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, nil, err
	}
	lines, err := s.store.GetInvoiceLines(ctx, invoiceID)
	if err != nil {
		return nil, nil, err
	}
	return inv, lines, nil
}

// GetInvoiceByNumber retrieves an invoice by its FAC number
func (s *InvoiceService) GetInvoiceByNumber(ctx context.Context, number string) (*models.InvoiceView, error) {
	return s.store.GetInvoiceByNumber(ctx, number)
}

// ListInvoices retrieves invoices matching the filter
func (s *InvoiceService) ListInvoices(ctx context.Context, f store.InvoiceFilter) ([]models.InvoiceView, error) {
	return s.store.ListInvoices(ctx, f)
}

// UpdateInvoice updates an invoice's mutable header fields
func (s *InvoiceService) UpdateInvoice(ctx context.Context, inv *models.Invoice) error {
	if !models.ValidInvoiceStatus(inv.Status) {
		return fmt.Errorf("unknown invoice status %q: %w", inv.Status, models.ErrInvalidStatus)
	}
	if err := s.store.UpdateInvoice(ctx, inv); err != nil {
		return err
	}
	s.invalidateStats(ctx)
	return nil
}

// DeleteInvoice removes an invoice and its lines
func (s *InvoiceService) DeleteInvoice(ctx context.Context, invoiceID int64) error {
	if err := s.store.DeleteInvoice(ctx, invoiceID); err != nil {
		return err
	}
	s.invalidateStats(ctx)
	return nil
}

// Statistics returns the per-status invoice summary, served from the
// cache when one is configured and fresh.
func (s *InvoiceService) Statistics(ctx context.Context) (*models.InvoiceStatistics, error) {
	if s.cache != nil {
		cached, err := s.cache.GetCachedInvoiceStatistics(ctx)
		if err != nil {
			s.logger.Warn("Failed to read cached statistics", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	stats, err := s.store.InvoiceStatistics(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.CacheInvoiceStatistics(ctx, stats, statsCacheTTL); err != nil {
			s.logger.Warn("Failed to cache statistics", zap.Error(err))
		}
	}
	return stats, nil
}

func (s *InvoiceService) invalidateStats(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateInvoiceStatistics(ctx); err != nil {
		s.logger.Warn("Failed to invalidate cached statistics", zap.Error(err))
	}
}

func (s *InvoiceService) publishIssued(ctx context.Context, inv *models.Invoice) {
	event := &models.InvoiceIssuedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeInvoiceIssued,
			Timestamp: time.Now(),
		},
		InvoiceID: inv.ID,
		Number:    inv.Number,
		SaleID:    inv.SaleID,
		Subtotal:  inv.Subtotal,
		Tax:       inv.Tax,
		Total:     inv.Total,
	}
	if err := s.eventPublisher.PublishInvoiceIssued(ctx, event); err != nil {
		s.logger.Error("Failed to publish InvoiceIssued event", zap.Error(err))
	}
}

// applyTax computes the tax amount for a subtotal at a percentage rate,
// rounded to two decimal places.
func applyTax(subtotal decimal.Decimal, taxPercent float64) decimal.Decimal {
	rate := decimal.NewFromFloat(taxPercent).Div(decimal.NewFromInt(100))
	return subtotal.Mul(rate).Round(2)
}
