package worker

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"pos-service/internal/broker"
	"pos-service/internal/models"
	"pos-service/internal/redisclient"
	"pos-service/internal/store"
	"pos-service/internal/util"
)

const lowStockFlagTTL = 24 * time.Hour

// StockWorker consumes SaleCompleted events and raises low stock
// alerts for the products that were sold.
type StockWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	store        store.Store
	cache        *redisclient.Client
	alertLevel   int
	logger       *zap.Logger
}

// NewStockWorker creates a new stock worker. cache may be nil.
func NewStockWorker(consumer *broker.Consumer, st store.Store, cache *redisclient.Client, alertLevel int) *StockWorker {
	w := &StockWorker{
		consumer:   consumer,
		store:      st,
		cache:      cache,
		alertLevel: alertLevel,
		logger:     util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnSaleCompleted(w.handleSaleCompleted)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *StockWorker) Start(ctx context.Context) error {
	log.Println("Starting stock worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *StockWorker) Stop() error {
	log.Println("Stopping stock worker...")
	return w.consumer.Close()
}

// handleSaleCompleted re-reads the sold products and flags those at or
// below the alert level. A failed read of one product does not skip
// the rest.
func (w *StockWorker) handleSaleCompleted(ctx context.Context, event *models.SaleCompletedEvent) error {
	ids := make([]int64, 0, len(event.Lines))
	for _, line := range event.Lines {
		ids = append(ids, line.ProductID)
	}
	if len(ids) == 0 {
		return nil
	}

	products, err := w.store.GetProductsByIDs(ctx, ids)
	if err != nil {
		return err
	}

	for _, product := range products {
		if product.Stock > w.alertLevel {
			if w.cache != nil {
				if err := w.cache.ClearLowStock(ctx, product.ID); err != nil {
					w.logger.Warn("Failed to clear low stock flag",
						zap.Int64("product_id", product.ID),
						zap.Error(err))
				}
			}
			continue
		}

		util.LowStockAlertsTotal.Inc()
		w.logger.Warn("Low stock alert",
			zap.Int64("product_id", product.ID),
			zap.String("product", product.Name),
			zap.Int("stock", product.Stock),
			zap.Int("alert_level", w.alertLevel))

		if w.cache != nil {
			if err := w.cache.FlagLowStock(ctx, product.ID, product.Stock, lowStockFlagTTL); err != nil {
				w.logger.Warn("Failed to flag low stock",
					zap.Int64("product_id", product.ID),
					zap.Error(err))
			}
		}
	}

	return nil
}
