package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-service/config"
	"pos-service/internal/broker"
	"pos-service/internal/models"
	"pos-service/internal/service"
	"pos-service/internal/store/memstore"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := memstore.New()
	ctx := context.Background()
	require.NoError(t, st.CreateCustomer(ctx, &models.Customer{Name: "Ana Torres"}))
	require.NoError(t, st.CreateEmployee(ctx, &models.Employee{Name: "Luis Perez"}))
	require.NoError(t, st.CreateProduct(ctx, &models.Product{
		Name: "Keyboard", Price: decimal.RequireFromString("100.00"), Stock: 5,
	}))

	publisher := broker.NewEventPublisher(nil)
	cfg := &config.Config{
		Currency: config.CurrencyConfig{Symbol: "S/", DecimalPlaces: 2, ThousandsSep: ",", DecimalSep: "."},
		Reports:  config.ReportsConfig{ExportPath: t.TempDir(), DateFormat: "02/01/2006", UTF8BOM: true},
		Stock:    config.StockConfig{AlertLevel: 10},
	}

	handler := NewHandler(
		service.NewCatalogService(st, cfg.Stock.AlertLevel),
		service.NewSaleService(st, publisher),
		service.NewInvoiceService(st, publisher, nil),
		service.NewReportService(st, cfg),
	)

	router := gin.New()
	handler.SetupRoutes(router)
	return router
}

func doJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateSaleEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/v1/sales", gin.H{
		"customer_id": 1,
		"employee_id": 1,
		"items":       []gin.H{{"product_id": 1, "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp service.CreateSaleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("200.00")))
}

func TestCreateSaleInsufficientStockReturnsConflict(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/v1/sales", gin.H{
		"customer_id": 1,
		"employee_id": 1,
		"items":       []gin.H{{"product_id": 1, "quantity": 6}},
	})
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
}

func TestGetUnknownInvoiceReturnsNotFound(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, http.MethodGet, "/api/v1/invoices/42", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvoiceLifecycleEndpoints(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/v1/invoices/with-products", gin.H{
		"tax_percent": 18,
		"items":       []gin.H{{"product_id": 1, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var inv models.InvoiceView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &inv))
	assert.Equal(t, "FAC-000001", inv.Number)
	assert.True(t, inv.Total.Equal(decimal.RequireFromString("118.00")))

	w = doJSON(router, http.MethodPatch, fmt.Sprintf("/api/v1/invoices/%d/status", inv.ID), gin.H{
		"status": "Paid",
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(router, http.MethodPatch, fmt.Sprintf("/api/v1/invoices/%d/status", inv.ID), gin.H{
		"status": "Archived",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

	w = doJSON(router, http.MethodGet, "/api/v1/invoices/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats models.InvoiceStatistics
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(1), stats.TotalInvoices)
	assert.Equal(t, int64(1), stats.Paid)
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
