package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-service/internal/broker"
	"pos-service/internal/models"
	"pos-service/internal/store"
	"pos-service/internal/store/memstore"
)

func newInvoiceTestEnv(t *testing.T) (*memstore.Store, *InvoiceService) {
	t.Helper()
	st := memstore.New()
	ctx := context.Background()

	require.NoError(t, st.CreateCustomer(ctx, &models.Customer{Name: "Ana Torres"}))
	require.NoError(t, st.CreateEmployee(ctx, &models.Employee{Name: "Luis Perez"}))
	require.NoError(t, st.CreateProduct(ctx, &models.Product{
		Name: "Keyboard", Price: decimal.RequireFromString("100.00"), Stock: 50,
	}))
	require.NoError(t, st.CreateProduct(ctx, &models.Product{
		Name: "Headset", Price: decimal.RequireFromString("25.50"), Stock: 50,
	}))

	return st, NewInvoiceService(st, broker.NewEventPublisher(nil), nil)
}

func TestInvoiceNumberSequence(t *testing.T) {
	_, svc := newInvoiceTestEnv(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		inv, err := svc.CreateInvoice(ctx, &CreateInvoiceRequest{})
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("FAC-%06d", i), inv.Number)
	}
}

// failingNumberStore simulates a store that cannot read the current
// maximum invoice number.
type failingNumberStore struct {
	*memstore.Store
}

func (f failingNumberStore) MaxInvoiceNumberSuffix(context.Context) (int64, error) {
	return 0, errors.New("connection reset")
}

func TestInvoiceNumberFallback(t *testing.T) {
	svc := NewInvoiceService(failingNumberStore{memstore.New()}, broker.NewEventPublisher(nil), nil)

	number := svc.NextInvoiceNumber(context.Background())
	assert.True(t, strings.HasPrefix(number, "FAC-"))
	assert.Len(t, number, len("FAC-")+14)

	// Timestamp numbers sit outside the sequential series.
	_, ok := store.InvoiceNumberSuffix(number)
	assert.False(t, ok)
}

func TestCreateInvoiceFromSale(t *testing.T) {
	st, svc := newInvoiceTestEnv(t)
	ctx := context.Background()

	sales := NewSaleService(st, broker.NewEventPublisher(nil))
	resp, err := sales.CreateSale(ctx, &CreateSaleRequest{
		CustomerID: 1,
		EmployeeID: 1,
		Items:      []SaleItemRequest{{ProductID: 1, Quantity: 1}},
	})
	require.NoError(t, err)

	inv, err := svc.CreateInvoiceFromSale(ctx, resp.SaleID, 18, "walk-in")
	require.NoError(t, err)

	assert.True(t, inv.Subtotal.Equal(decimal.RequireFromString("100.00")), "subtotal = %s", inv.Subtotal)
	assert.True(t, inv.Tax.Equal(decimal.RequireFromString("18.00")), "tax = %s", inv.Tax)
	assert.True(t, inv.Total.Equal(decimal.RequireFromString("118.00")), "total = %s", inv.Total)
	assert.Equal(t, models.InvoiceStatusPending, inv.Status)
	require.NotNil(t, inv.SaleID)
	assert.Equal(t, resp.SaleID, *inv.SaleID)

	view, err := st.GetInvoiceByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Torres", view.CustomerName)
	assert.Equal(t, "Luis Perez", view.EmployeeName)
}

func TestCreateInvoiceFromSaleUnknownSale(t *testing.T) {
	_, svc := newInvoiceTestEnv(t)

	_, err := svc.CreateInvoiceFromSale(context.Background(), 42, 18, "")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAddAndRemoveLineRecomputesTotals(t *testing.T) {
	st, svc := newInvoiceTestEnv(t)
	ctx := context.Background()

	inv, err := svc.CreateInvoice(ctx, &CreateInvoiceRequest{})
	require.NoError(t, err)

	line, err := svc.AddLine(ctx, inv.ID, 1, 2, 18)
	require.NoError(t, err)
	assert.True(t, line.Subtotal.Equal(decimal.RequireFromString("200.00")))

	_, err = svc.AddLine(ctx, inv.ID, 2, 1, 18)
	require.NoError(t, err)

	view, err := st.GetInvoiceByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, view.Subtotal.Equal(decimal.RequireFromString("225.50")), "subtotal = %s", view.Subtotal)
	assert.True(t, view.Tax.Equal(decimal.RequireFromString("40.59")), "tax = %s", view.Tax)
	assert.True(t, view.Total.Equal(decimal.RequireFromString("266.09")), "total = %s", view.Total)

	require.NoError(t, svc.RemoveLine(ctx, line.ID, 18))

	view, err = st.GetInvoiceByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, view.Subtotal.Equal(decimal.RequireFromString("25.50")), "subtotal = %s", view.Subtotal)
	assert.True(t, view.Tax.Equal(decimal.RequireFromString("4.59")), "tax = %s", view.Tax)
	assert.True(t, view.Total.Equal(decimal.RequireFromString("30.09")), "total = %s", view.Total)
}

func TestRecomputeIsIdempotent(t *testing.T) {
	st, svc := newInvoiceTestEnv(t)
	ctx := context.Background()

	inv, err := svc.CreateInvoice(ctx, &CreateInvoiceRequest{})
	require.NoError(t, err)
	_, err = svc.AddLine(ctx, inv.ID, 2, 3, 18)
	require.NoError(t, err)

	first, err := st.GetInvoiceByID(ctx, inv.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Recompute(ctx, inv.ID, 18))
	require.NoError(t, svc.Recompute(ctx, inv.ID, 18))

	again, err := st.GetInvoiceByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, again.Subtotal.Equal(first.Subtotal))
	assert.True(t, again.Tax.Equal(first.Tax))
	assert.True(t, again.Total.Equal(first.Total))
}

func TestRecomputeWithoutLinesZeroesTotals(t *testing.T) {
	st, svc := newInvoiceTestEnv(t)
	ctx := context.Background()

	inv, err := svc.CreateInvoice(ctx, &CreateInvoiceRequest{})
	require.NoError(t, err)
	line, err := svc.AddLine(ctx, inv.ID, 1, 1, 18)
	require.NoError(t, err)
	require.NoError(t, svc.RemoveLine(ctx, line.ID, 18))

	view, err := st.GetInvoiceByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, view.Subtotal.IsZero())
	assert.True(t, view.Tax.IsZero())
	assert.True(t, view.Total.IsZero())
}

func TestCreateInvoiceWithProducts(t *testing.T) {
	_, svc := newInvoiceTestEnv(t)

	view, err := svc.CreateInvoiceWithProducts(context.Background(), &CreateInvoiceWithProductsRequest{
		CreateInvoiceRequest: CreateInvoiceRequest{TaxPercent: 18},
		Items: []InvoiceItemRequest{
			{ProductID: 1, Quantity: 1},
			{ProductID: 2, Quantity: 2},
		},
	})
	require.NoError(t, err)

	assert.True(t, view.Subtotal.Equal(decimal.RequireFromString("151.00")), "subtotal = %s", view.Subtotal)
	assert.True(t, view.Tax.Equal(decimal.RequireFromString("27.18")), "tax = %s", view.Tax)
	assert.True(t, view.Total.Equal(decimal.RequireFromString("178.18")), "total = %s", view.Total)
}

func TestCreateInvoiceWithProductsRollsBackOnFailure(t *testing.T) {
	st, svc := newInvoiceTestEnv(t)
	ctx := context.Background()

	_, err := svc.CreateInvoiceWithProducts(ctx, &CreateInvoiceWithProductsRequest{
		CreateInvoiceRequest: CreateInvoiceRequest{TaxPercent: 18},
		Items: []InvoiceItemRequest{
			{ProductID: 1, Quantity: 1},
			{ProductID: 99, Quantity: 1},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrNotFound)

	// The invoice and the lines added before the failure are gone.
	invoices, err := st.ListInvoices(ctx, store.InvoiceFilter{})
	require.NoError(t, err)
	assert.Empty(t, invoices)
}

func TestChangeStatus(t *testing.T) {
	st, svc := newInvoiceTestEnv(t)
	ctx := context.Background()

	inv, err := svc.CreateInvoice(ctx, &CreateInvoiceRequest{})
	require.NoError(t, err)

	require.NoError(t, svc.ChangeStatus(ctx, inv.ID, models.InvoiceStatusPaid))
	view, err := st.GetInvoiceByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusPaid, view.Status)

	// Any recognized label can follow any other.
	require.NoError(t, svc.ChangeStatus(ctx, inv.ID, models.InvoiceStatusPending))
	require.NoError(t, svc.ChangeStatus(ctx, inv.ID, models.InvoiceStatusCancelled))
}

func TestChangeStatusRejectsUnknownLabel(t *testing.T) {
	st, svc := newInvoiceTestEnv(t)
	ctx := context.Background()

	inv, err := svc.CreateInvoice(ctx, &CreateInvoiceRequest{})
	require.NoError(t, err)

	err = svc.ChangeStatus(ctx, inv.ID, "Archived")
	assert.ErrorIs(t, err, models.ErrInvalidStatus)

	view, err := st.GetInvoiceByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusPending, view.Status)
}

func TestStatistics(t *testing.T) {
	_, svc := newInvoiceTestEnv(t)
	ctx := context.Background()

	first, err := svc.CreateInvoiceWithProducts(ctx, &CreateInvoiceWithProductsRequest{
		CreateInvoiceRequest: CreateInvoiceRequest{TaxPercent: 0},
		Items:                []InvoiceItemRequest{{ProductID: 1, Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = svc.CreateInvoiceWithProducts(ctx, &CreateInvoiceWithProductsRequest{
		CreateInvoiceRequest: CreateInvoiceRequest{TaxPercent: 0},
		Items:                []InvoiceItemRequest{{ProductID: 2, Quantity: 2}},
	})
	require.NoError(t, err)
	require.NoError(t, svc.ChangeStatus(ctx, first.ID, models.InvoiceStatusPaid))

	stats, err := svc.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalInvoices)
	assert.Equal(t, int64(1), stats.Paid)
	assert.Equal(t, int64(1), stats.Pending)
	assert.True(t, stats.TotalAmount.Equal(decimal.RequireFromString("151.00")), "total = %s", stats.TotalAmount)
	assert.True(t, stats.AverageAmount.Equal(decimal.RequireFromString("75.50")), "avg = %s", stats.AverageAmount)
}

func TestApplyTaxRounding(t *testing.T) {
	tax := applyTax(decimal.RequireFromString("33.33"), 18)
	assert.True(t, tax.Equal(decimal.RequireFromString("6.00")), "tax = %s", tax)

	assert.True(t, applyTax(decimal.Zero, 18).IsZero())
	assert.True(t, applyTax(decimal.RequireFromString("100.00"), 0).IsZero())
}
