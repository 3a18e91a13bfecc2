package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"pos-service/internal/service"
	"pos-service/internal/store"
)

func (h *Handler) createSale(c *gin.Context) {
	var req service.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.GetHeader("Idempotency-Key")
	}

	resp, err := h.saleService.CreateSale(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) getSale(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	sale, lines, err := h.saleService.GetSale(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"sale":  sale,
		"lines": lines,
	})
}

func (h *Handler) listSales(c *gin.Context) {
	filter, ok := saleFilterFromQuery(c)
	if !ok {
		return
	}

	sales, err := h.saleService.ListSales(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sales)
}

func (h *Handler) deleteSale(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.saleService.DeleteSale(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func saleFilterFromQuery(c *gin.Context) (store.SaleFilter, bool) {
	var f store.SaleFilter

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

// dateFromQuery parses an RFC 3339 timestamp or plain date query value
func dateFromQuery(c *gin.Context, name string) (*time.Time, bool) {
	v := c.Query(name)
	if v == "" {
		return nil, true
	}

	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		t, err = time.Parse("2006-01-02", v)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + " date"})
		return nil, false
	}
	return &t, true
}
