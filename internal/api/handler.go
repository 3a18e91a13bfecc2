package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pos-service/internal/models"
	"pos-service/internal/service"
	"pos-service/internal/util"
)

// Handler contains HTTP handlers
type Handler struct {
	catalogService *service.CatalogService
	saleService    *service.SaleService
	invoiceService *service.InvoiceService
	reportService  *service.ReportService
}

// NewHandler creates a new HTTP handler
func NewHandler(
	catalogService *service.CatalogService,
	saleService *service.SaleService,
	invoiceService *service.InvoiceService,
	reportService *service.ReportService,
) *Handler {
	return &Handler{
		catalogService: catalogService,
		saleService:    saleService,
		invoiceService: invoiceService,
		reportService:  reportService,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/categories", h.createCategory)
		v1.GET("/categories", h.listCategories)
		v1.GET("/categories/:id", h.getCategory)
		v1.PUT("/categories/:id", h.updateCategory)
		v1.DELETE("/categories/:id", h.deleteCategory)

		v1.POST("/products", h.createProduct)
		v1.GET("/products", h.listProducts)
		v1.GET("/products/low-stock", h.listLowStockProducts)
		v1.GET("/products/:id", h.getProduct)
		v1.PUT("/products/:id", h.updateProduct)
		v1.DELETE("/products/:id", h.deleteProduct)

		v1.POST("/customers", h.createCustomer)
		v1.GET("/customers", h.listCustomers)
		v1.GET("/customers/:id", h.getCustomer)
		v1.PUT("/customers/:id", h.updateCustomer)
		v1.DELETE("/customers/:id", h.deleteCustomer)

		v1.POST("/employees", h.createEmployee)
		v1.GET("/employees", h.listEmployees)
		v1.GET("/employees/:id", h.getEmployee)
		v1.PUT("/employees/:id", h.updateEmployee)
		v1.DELETE("/employees/:id", h.deleteEmployee)

		v1.POST("/sales", h.createSale)
		v1.GET("/sales", h.listSales)
		v1.GET("/sales/:id", h.getSale)
		v1.DELETE("/sales/:id", h.deleteSale)

		v1.POST("/invoices", h.createInvoice)
		v1.POST("/invoices/from-sale", h.createInvoiceFromSale)
		v1.POST("/invoices/with-products", h.createInvoiceWithProducts)
		v1.GET("/invoices", h.listInvoices)
		v1.GET("/invoices/stats", h.invoiceStatistics)
		v1.GET("/invoices/:id", h.getInvoice)
		v1.DELETE("/invoices/:id", h.deleteInvoice)
		v1.PATCH("/invoices/:id/status", h.changeInvoiceStatus)
		v1.POST("/invoices/:id/recompute", h.recomputeInvoice)
		v1.POST("/invoices/:id/lines", h.addInvoiceLine)
		v1.DELETE("/invoices/lines/:lineID", h.removeInvoiceLine)
		v1.GET("/invoices/:id/export", h.exportInvoice)

		v1.GET("/reports/invoices", h.exportInvoiceReport)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// respondError maps domain errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrInvalidStatus):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// pathID parses the numeric :id (or other named) path parameter
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
