package invoice

import (
	"context"
	"errors"
	"testing"

	"shop_reconcile/internal/erpnext"
	"shop_reconcile/internal/pricing"
	"shop_reconcile/internal/reconcile"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeConsolidationSource struct {
	open []erpnext.InvoiceRef
	err  error
}

func (f *fakeConsolidationSource) ListPaidUnconsolidated(_ context.Context, _ string) ([]erpnext.InvoiceRef, error) {
	return f.open, f.err
}

type fakeSubmitter struct {
	name     string
	err      error
	calls    int
	payloads []erpnext.POSInvoicePayload
}

func (f *fakeSubmitter) CreatePOSInvoice(_ context.Context, payload erpnext.POSInvoicePayload) (string, error) {
	f.calls++
	f.payloads = append(f.payloads, payload)
	return f.name, f.err
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func line(code, sold, unitPrice string) pricing.Line {
	soldQty := dec(sold)
	rate := dec(unitPrice)
	return pricing.Line{
		Item:      reconcile.Item{ItemCode: code, SoldQty: soldQty},
		UnitPrice: rate,
		LineTotal: rate.Mul(soldQty),
	}
}

func testProfile() Profile {
	return Profile{
		Company:     "Acme Enterprises",
		Customer:    "Walk-in Customer",
		POSProfile:  "Shop POS",
		Currency:    "USD",
		Warehouse:   "Stores - AE",
		PaymentMode: "Cash",
	}
}

func TestGuardNoOpenInvoices(t *testing.T) {
	guard := NewGuard(&fakeConsolidationSource{}, "Acme Enterprises", zap.NewNop())
	require.NoError(t, guard.Check(context.Background()))
}

func TestGuardPendingConsolidation(t *testing.T) {
	source := &fakeConsolidationSource{
		open: []erpnext.InvoiceRef{
			{Name: "ACC-PSINV-2026-00012", Status: "Paid"},
			{Name: "ACC-PSINV-2026-00013", Status: "Paid"},
		},
	}
	guard := NewGuard(source, "Acme Enterprises", zap.NewNop())

	err := guard.Check(context.Background())
	require.ErrorIs(t, err, ErrPendingConsolidation)
	assert.Contains(t, err.Error(), "ACC-PSINV-2026-00012")
	assert.Contains(t, err.Error(), "2 invoice(s)")
}

func TestGuardSourceError(t *testing.T) {
	guard := NewGuard(&fakeConsolidationSource{err: errors.New("boom")}, "Acme Enterprises", zap.NewNop())

	err := guard.Check(context.Background())
	require.ErrorContains(t, err, "boom")
	assert.NotErrorIs(t, err, ErrPendingConsolidation)
}

func TestPrepareFiltersToPositiveSold(t *testing.T) {
	preparer := NewPreparer(&fakeSubmitter{}, testProfile(), zap.NewNop())

	lines := []pricing.Line{
		line("A", "3", "2.50"),
		line("B", "0", "1.00"),
		line("C", "-2", "1.00"),
		line("D", "1", "0.25"),
	}

	payload, ok := preparer.Prepare(lines)
	require.True(t, ok)

	require.Len(t, payload.Items, 2)
	assert.Equal(t, "A", payload.Items[0].ItemCode)
	assert.Equal(t, "D", payload.Items[1].ItemCode)
	assert.Equal(t, "Stores - AE", payload.Items[0].Warehouse)
	assert.Equal(t, 1, payload.UpdateStock)

	require.Len(t, payload.Payments, 1)
	assert.Equal(t, "Cash", payload.Payments[0].ModeOfPayment)
	// 3 x 2.50 + 1 x 0.25; zero and negative movements contribute nothing.
	assert.True(t, payload.Payments[0].Amount.Equal(dec("7.75")), "got %s", payload.Payments[0].Amount)
}

func TestPrepareEmptyWhenNothingSold(t *testing.T) {
	preparer := NewPreparer(&fakeSubmitter{}, testProfile(), zap.NewNop())

	_, ok := preparer.Prepare([]pricing.Line{line("A", "0", "2.50")})
	assert.False(t, ok)

	_, ok = preparer.Prepare(nil)
	assert.False(t, ok)
}

func TestSubmit(t *testing.T) {
	submitter := &fakeSubmitter{name: "ACC-PSINV-2026-00042"}
	preparer := NewPreparer(submitter, testProfile(), zap.NewNop())

	name, skipped, err := preparer.Submit(context.Background(), []pricing.Line{line("A", "3", "2.50")})
	require.NoError(t, err)
	assert.False(t, skipped)
	assert.Equal(t, "ACC-PSINV-2026-00042", name)
	assert.Equal(t, 1, submitter.calls)

	payload := submitter.payloads[0]
	assert.Equal(t, "Acme Enterprises", payload.Company)
	assert.Equal(t, "Walk-in Customer", payload.Customer)
	assert.True(t, payload.Payments[0].Amount.Equal(dec("7.50")))
}

func TestSubmitSkippedWhenNothingSold(t *testing.T) {
	submitter := &fakeSubmitter{}
	preparer := NewPreparer(submitter, testProfile(), zap.NewNop())

	name, skipped, err := preparer.Submit(context.Background(), []pricing.Line{line("A", "-1", "2.50")})
	require.NoError(t, err)
	assert.True(t, skipped)
	assert.Empty(t, name)
	assert.Equal(t, 0, submitter.calls, "no call may reach the external system")
}

func TestSubmitFailureSurfaced(t *testing.T) {
	apiErr := &erpnext.APIError{StatusCode: 417, Status: "417 Expectation Failed", Body: `{"exc_type":"ValidationError"}`}
	submitter := &fakeSubmitter{err: apiErr}
	preparer := NewPreparer(submitter, testProfile(), zap.NewNop())

	_, _, err := preparer.Submit(context.Background(), []pricing.Line{line("A", "1", "2.50")})
	require.Error(t, err)

	var gotAPIErr *erpnext.APIError
	require.ErrorAs(t, err, &gotAPIErr)
	assert.Contains(t, err.Error(), "ValidationError")
	assert.Equal(t, 1, submitter.calls, "failed create must not be retried")
}
