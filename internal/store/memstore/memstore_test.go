package memstore

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-service/internal/models"
	"pos-service/internal/store"
)

func TestCreateSaleWithLinesStagesStockAcrossLines(t *testing.T) {
	st := New()
	ctx := context.Background()

	require.NoError(t, st.CreateProduct(ctx, &models.Product{
		Name: "Pen", Price: decimal.RequireFromString("2.00"), Stock: 5,
	}))

	// Two lines for the same product together exceed the stock even
	// though each would fit on its own.
	err := st.CreateSaleWithLines(ctx, &models.Sale{CustomerID: 1, EmployeeID: 1}, []models.SaleLine{
		{ProductID: 1, Quantity: 3, UnitPrice: decimal.RequireFromString("2.00")},
		{ProductID: 1, Quantity: 3, UnitPrice: decimal.RequireFromString("2.00")},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInsufficientStock)

	p, err := st.GetProductByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, p.Stock)

	sales, err := st.ListSales(ctx, store.SaleFilter{})
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestGetSaleByIdempotencyKeyMiss(t *testing.T) {
	st := New()

	sale, err := st.GetSaleByIdempotencyKey(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Nil(t, sale)
}
