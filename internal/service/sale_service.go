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
	"pos-service/internal/store"
	"pos-service/internal/util"
)

// SaleService handles sale assembly and queries.
type SaleService struct {
	store          store.Store
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewSaleService creates a new sale service
func NewSaleService(st store.Store, eventPublisher *broker.EventPublisher) *SaleService {
	return &SaleService{
		store:          st,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// SaleItemRequest is one cart entry. UnitPrice overrides the current
// catalog price when set; otherwise the product price is snapshotted.
type SaleItemRequest struct {
	ProductID int64            `json:"product_id" binding:"required"`
	Quantity  int              `json:"quantity" binding:"required,min=1"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// CreateSaleRequest represents a request to create a sale
type CreateSaleRequest struct {
	CustomerID     int64             `json:"customer_id" binding:"required"`
	EmployeeID     int64             `json:"employee_id" binding:"required"`
	Items          []SaleItemRequest `json:"items" binding:"required,min=1"`
	IdempotencyKey string            `json:"idempotency_key,omitempty"`
}

// CreateSaleResponse represents the response after creating a sale
type CreateSaleResponse struct {
	SaleID int64           `json:"sale_id"`
	Total  decimal.Decimal `json:"total"`
}

// CreateSale assembles a sale from a cart: it snapshots unit prices,
// derives line subtotals and the sale total, and persists the sale, its
// lines and the stock decrements in a single transaction. A repeated
// idempotency key returns the previously created sale.
func (s *SaleService) CreateSale(ctx context.Context, req *CreateSaleRequest) (*CreateSaleResponse, error) {
	ctx, span := util.StartSpan(ctx, "SaleService.CreateSale")
	defer span.End()

	if req.IdempotencyKey == "" {
		req.IdempotencyKey = uuid.New().String()
	}

	existing, err := s.store.GetSaleByIdempotencyKey(ctx, req.IdempotencyKey)
	if err != nil {
		return nil, fmt.Errorf("failed to check idempotency: %w", err)
	}
	if existing != nil {
		s.logger.Info("Duplicate sale request detected",
			zap.String("idempotency_key", req.IdempotencyKey),
			zap.Int64("sale_id", existing.ID))
		return &CreateSaleResponse{SaleID: existing.ID, Total: existing.Total}, nil
	}

	if _, err := s.store.GetCustomerByID(ctx, req.CustomerID); err != nil {
		util.SalesFailedTotal.WithLabelValues("invalid_customer").Inc()
		return nil, err
	}
	if _, err := s.store.GetEmployeeByID(ctx, req.EmployeeID); err != nil {
		util.SalesFailedTotal.WithLabelValues("invalid_employee").Inc()
		return nil, err
	}

	lines, total, err := s.buildLines(ctx, req.Items)
	if err != nil {
		util.SalesFailedTotal.WithLabelValues("invalid_items").Inc()
		return nil, err
	}

	sale := &models.Sale{
		Date:           time.Now(),
		Total:          total,
		CustomerID:     req.CustomerID,
		EmployeeID:     req.EmployeeID,
		IdempotencyKey: req.IdempotencyKey,
	}

	if err := s.store.CreateSaleWithLines(ctx, sale, lines); err != nil {
		util.SalesFailedTotal.WithLabelValues("store_error").Inc()
		return nil, fmt.Errorf("failed to create sale: %w", err)
	}

	util.SalesCreatedTotal.Inc()
	s.logger.Info("Sale created",
		zap.Int64("sale_id", sale.ID),
		zap.String("total", total.String()))

	eventLines := make([]models.SaleLineData, 0, len(lines))
	for _, line := range lines {
		eventLines = append(eventLines, models.SaleLineData{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}
	event := &models.SaleCompletedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeSaleCompleted,
			Timestamp: time.Now(),
		},
		SaleID:     sale.ID,
		CustomerID: sale.CustomerID,
		EmployeeID: sale.EmployeeID,
		Total:      sale.Total,
		Lines:      eventLines,
	}
	if err := s.eventPublisher.PublishSaleCompleted(ctx, event); err != nil {
		s.logger.Error("Failed to publish SaleCompleted event", zap.Error(err))
	}

	return &CreateSaleResponse{SaleID: sale.ID, Total: sale.Total}, nil
}

// buildLines validates cart entries and turns them into sale lines with
// unit price snapshots and derived subtotals.
func (s *SaleService) buildLines(ctx context.Context, items []SaleItemRequest) ([]models.SaleLine, decimal.Decimal, error) {
	productIDs := make([]int64, len(items))
	for i, item := range items {
		if item.Quantity <= 0 {
			return nil, decimal.Zero, fmt.Errorf("quantity must be positive for product %d: %w",
				item.ProductID, models.ErrValidation)
		}
		productIDs[i] = item.ProductID
	}

	products, err := s.store.GetProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, decimal.Zero, err
	}
	productMap := make(map[int64]*models.Product, len(products))
	for i := range products {
		productMap[products[i].ID] = &products[i]
	}

	lines := make([]models.SaleLine, 0, len(items))
	total := decimal.Zero
	for _, item := range items {
		product, ok := productMap[item.ProductID]
		if !ok {
			return nil, decimal.Zero, fmt.Errorf("product %d: %w", item.ProductID, models.ErrNotFound)
		}

		unitPrice := product.Price
		if item.UnitPrice != nil {
			if item.UnitPrice.IsNegative() {
				return nil, decimal.Zero, fmt.Errorf("unit price must not be negative for product %d: %w",
					item.ProductID, models.ErrValidation)
			}
			unitPrice = *item.UnitPrice
		}

		subtotal := unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		lines = append(lines, models.SaleLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: unitPrice,
			Subtotal:  subtotal,
		})
		total = total.Add(subtotal)
	}

	return lines, total, nil
}

// GetSale retrieves a sale with its lines
func (s *SaleService) GetSale(ctx context.Context, saleID int64) (*models.SaleView, []models.SaleLineView, error) {
	sale, err := s.store.GetSaleByID(ctx, saleID)
	if err != nil {
		return nil, nil, err
	}

	lines, err := s.store.GetSaleLines(ctx, saleID)
	if err != nil {
		return nil, nil, err
	}

	return sale, lines, nil
}

// ListSales retrieves sales matching the filter
func (s *SaleService) ListSales(ctx context.Context, f store.SaleFilter) ([]models.SaleView, error) {
	return s.store.ListSales(ctx, f)
}

// DeleteSale removes a sale and its lines. Sales referenced by an
// invoice cannot be deleted; the invoice would be orphaned.
func (s *SaleService) DeleteSale(ctx context.Context, saleID int64) error {
	ctx, span := util.StartSpan(ctx, "SaleService.DeleteSale")
	defer span.End()

	count, err := s.store.CountInvoicesForSale(ctx, saleID)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("sale %d is referenced by %d invoices: %w", saleID, count, models.ErrValidation)
	}

	return s.store.DeleteSale(ctx, saleID)
}
