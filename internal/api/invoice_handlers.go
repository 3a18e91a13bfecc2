package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pos-service/internal/models"
	"pos-service/internal/service"
	"pos-service/internal/store"
)

type createInvoiceFromSaleRequest struct {
	SaleID     int64   `json:"sale_id" binding:"required"`
	TaxPercent float64 `json:"tax_percent"`
	Notes      string  `json:"notes,omitempty"`
}

type changeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type addLineRequest struct {
	ProductID  int64   `json:"product_id" binding:"required"`
	Quantity   int     `json:"quantity" binding:"required,min=1"`
	TaxPercent float64 `json:"tax_percent"`
}

type recomputeRequest struct {
	TaxPercent float64 `json:"tax_percent"`
}

func (h *Handler) createInvoice(c *gin.Context) {
	var req service.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	inv, err := h.invoiceService.CreateInvoice(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

func (h *Handler) createInvoiceFromSale(c *gin.Context) {
	var req createInvoiceFromSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	inv, err := h.invoiceService.CreateInvoiceFromSale(c.Request.Context(), req.SaleID, req.TaxPercent, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

func (h *Handler) createInvoiceWithProducts(c *gin.Context) {
	var req service.CreateInvoiceWithProductsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	inv, err := h.invoiceService.CreateInvoiceWithProducts(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

func (h *Handler) getInvoice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	inv, lines, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"invoice": inv,
		"lines":   lines,
	})
}

func (h *Handler) listInvoices(c *gin.Context) {
	filter, ok := invoiceFilterFromQuery(c)
	if !ok {
		return
	}

	if number := c.Query("number"); number != "" {
		inv, err := h.invoiceService.GetInvoiceByNumber(c.Request.Context(), number)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, []models.InvoiceView{*inv})
		return
	}

	invoices, err := h.invoiceService.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}

func (h *Handler) deleteInvoice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.invoiceService.DeleteInvoice(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) changeInvoiceStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req changeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.invoiceService.ChangeStatus(c.Request.Context(), id, req.Status); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}

func (h *Handler) recomputeInvoice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	// The body is optional; an absent one recomputes with a zero rate.
	var req recomputeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.invoiceService.Recompute(c.Request.Context(), id, req.TaxPercent); err != nil {
		respondError(c, err)
		return
	}

	invView, lines, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"invoice": invView,
		"lines":   lines,
	})
}

func (h *Handler) addInvoiceLine(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req addLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	line, err := h.invoiceService.AddLine(c.Request.Context(), id, req.ProductID, req.Quantity, req.TaxPercent)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, line)
}

func (h *Handler) removeInvoiceLine(c *gin.Context) {
	lineID, ok := pathID(c, "lineID")
	if !ok {
		return
	}

	taxPercent := 0.0
	if v := c.Query("tax_percent"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tax_percent"})
			return
		}
		taxPercent = parsed
	}

	if err := h.invoiceService.RemoveLine(c.Request.Context(), lineID, taxPercent); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) invoiceStatistics(c *gin.Context) {
	stats, err := h.invoiceService.Statistics(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) exportInvoice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var path string
	var err error
	switch format := c.DefaultQuery("format", "pdf"); format {
	case "pdf":
		path, err = h.reportService.ExportInvoicePDF(c.Request.Context(), id)
	case "xlsx":
		path, err = h.reportService.ExportInvoiceXLSX(c.Request.Context(), id)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported format: " + format})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": path})
}

func (h *Handler) exportInvoiceReport(c *gin.Context) {
	filter, ok := invoiceFilterFromQuery(c)
	if !ok {
		return
	}

	var path string
	var err error
	switch format := c.DefaultQuery("format", "csv"); format {
	case "csv":
		path, err = h.reportService.ExportInvoiceReportCSV(c.Request.Context(), filter)
	case "xlsx":
		path, err = h.reportService.ExportInvoiceReportXLSX(c.Request.Context(), filter)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported format: " + format})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": path})
}

func invoiceFilterFromQuery(c *gin.Context) (store.InvoiceFilter, bool) {
	var f store.InvoiceFilter

	f.Status = c.Query("status")
	if f.Status != "" && !models.ValidInvoiceStatus(f.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return f, false
	}

	if v := c.Query("customer_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid customer_id"})
			return f, false
		}
		f.CustomerID = id
	}

	from, ok := dateFromQuery(c, "from")
	if !ok {
		return f, false
	}
	to, ok := dateFromQuery(c, "to")
	if !ok {
		return f, false
	}
	f.From, f.To = from, to

	return f, true
}
