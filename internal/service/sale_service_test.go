package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-service/internal/broker"
	"pos-service/internal/models"
	"pos-service/internal/store"
	"pos-service/internal/store/memstore"
)

func newSaleTestEnv(t *testing.T) (*memstore.Store, *SaleService) {
	t.Helper()
	st := memstore.New()
	ctx := context.Background()

	require.NoError(t, st.CreateCustomer(ctx, &models.Customer{Name: "Ana Torres"}))
	require.NoError(t, st.CreateEmployee(ctx, &models.Employee{Name: "Luis Perez"}))
	require.NoError(t, st.CreateProduct(ctx, &models.Product{
		Name: "USB Cable", Price: decimal.RequireFromString("10.00"), Stock: 10,
	}))
	require.NoError(t, st.CreateProduct(ctx, &models.Product{
		Name: "Mouse Pad", Price: decimal.RequireFromString("5.00"), Stock: 10,
	}))

	return st, NewSaleService(st, broker.NewEventPublisher(nil))
}

func TestCreateSaleComputesTotalFromLines(t *testing.T) {
	st, svc := newSaleTestEnv(t)
	ctx := context.Background()

	resp, err := svc.CreateSale(ctx, &CreateSaleRequest{
		CustomerID: 1,
		EmployeeID: 1,
		Items: []SaleItemRequest{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 3},
		},
	})
	require.NoError(t, err)
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("35.00")),
		"total = %s", resp.Total)

	sale, lines, err := svc.GetSale(ctx, resp.SaleID)
	require.NoError(t, err)
	assert.Len(t, lines, 2)
	assert.True(t, sale.Total.Equal(resp.Total))
	assert.True(t, lines[0].Subtotal.Equal(decimal.RequireFromString("20.00")))
	assert.True(t, lines[1].Subtotal.Equal(decimal.RequireFromString("15.00")))

	p1, err := st.GetProductByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 8, p1.Stock)
	p2, err := st.GetProductByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 7, p2.Stock)
}

func TestCreateSaleInsufficientStock(t *testing.T) {
	st, svc := newSaleTestEnv(t)
	ctx := context.Background()

	_, err := svc.CreateSale(ctx, &CreateSaleRequest{
		CustomerID: 1,
		EmployeeID: 1,
		Items:      []SaleItemRequest{{ProductID: 1, Quantity: 11}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInsufficientStock)

	// Nothing was persisted and stock is untouched.
	p1, err := st.GetProductByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 10, p1.Stock)

	sales, err := svc.ListSales(ctx, store.SaleFilter{})
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestCreateSaleUnknownProduct(t *testing.T) {
	_, svc := newSaleTestEnv(t)

	_, err := svc.CreateSale(context.Background(), &CreateSaleRequest{
		CustomerID: 1,
		EmployeeID: 1,
		Items:      []SaleItemRequest{{ProductID: 99, Quantity: 1}},
	})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCreateSaleRejectsNonPositiveQuantity(t *testing.T) {
	_, svc := newSaleTestEnv(t)

	_, err := svc.CreateSale(context.Background(), &CreateSaleRequest{
		CustomerID: 1,
		EmployeeID: 1,
		Items:      []SaleItemRequest{{ProductID: 1, Quantity: 0}},
	})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestCreateSaleIdempotency(t *testing.T) {
	st, svc := newSaleTestEnv(t)
	ctx := context.Background()

	req := &CreateSaleRequest{
		CustomerID:     1,
		EmployeeID:     1,
		Items:          []SaleItemRequest{{ProductID: 1, Quantity: 2}},
		IdempotencyKey: "retry-key-1",
	}

	first, err := svc.CreateSale(ctx, req)
	require.NoError(t, err)
	second, err := svc.CreateSale(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, first.SaleID, second.SaleID)
	assert.True(t, first.Total.Equal(second.Total))

	// Stock was only decremented once.
	p1, err := st.GetProductByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 8, p1.Stock)
}

func TestCreateSaleExplicitUnitPrice(t *testing.T) {
	_, svc := newSaleTestEnv(t)

	discount := decimal.RequireFromString("8.50")
	resp, err := svc.CreateSale(context.Background(), &CreateSaleRequest{
		CustomerID: 1,
		EmployeeID: 1,
		Items:      []SaleItemRequest{{ProductID: 1, Quantity: 2, UnitPrice: &discount}},
	})
	require.NoError(t, err)
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("17.00")),
		"total = %s", resp.Total)
}

func TestDeleteSaleReferencedByInvoice(t *testing.T) {
	st, svc := newSaleTestEnv(t)
	ctx := context.Background()

	resp, err := svc.CreateSale(ctx, &CreateSaleRequest{
		CustomerID: 1,
		EmployeeID: 1,
		Items:      []SaleItemRequest{{ProductID: 1, Quantity: 1}},
	})
	require.NoError(t, err)

	invoices := NewInvoiceService(st, broker.NewEventPublisher(nil), nil)
	_, err = invoices.CreateInvoiceFromSale(ctx, resp.SaleID, 18, "")
	require.NoError(t, err)

	err = svc.DeleteSale(ctx, resp.SaleID)
	assert.ErrorIs(t, err, models.ErrValidation)

	// Still retrievable after the refused delete.
	_, _, err = svc.GetSale(ctx, resp.SaleID)
	assert.NoError(t, err)
}

func TestDeleteSaleWithoutInvoice(t *testing.T) {
	_, svc := newSaleTestEnv(t)
	ctx := context.Background()

	resp, err := svc.CreateSale(ctx, &CreateSaleRequest{
		CustomerID: 1,
		EmployeeID: 1,
		Items:      []SaleItemRequest{{ProductID: 1, Quantity: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSale(ctx, resp.SaleID))
	_, _, err = svc.GetSale(ctx, resp.SaleID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
