package pricing

import (
	"context"
	"errors"
	"testing"

	"shop_reconcile/internal/erpnext"
	"shop_reconcile/internal/reconcile"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePriceSource struct {
	prices   []erpnext.ItemPrice
	err      error
	calls    int
	gotList  string
	gotCodes []string
}

func (f *fakePriceSource) ListItemPrices(_ context.Context, priceList string, itemCodes []string) ([]erpnext.ItemPrice, error) {
	f.calls++
	f.gotList = priceList
	f.gotCodes = itemCodes
	return f.prices, f.err
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func item(code, sold string) reconcile.Item {
	return reconcile.Item{ItemCode: code, SoldQty: dec(sold)}
}

func TestEnrich(t *testing.T) {
	source := &fakePriceSource{
		prices: []erpnext.ItemPrice{
			{ItemCode: "A", Rate: dec("2.50")},
		},
	}
	enricher := NewEnricher(source, "Standard Selling", zap.NewNop())

	lines, err := enricher.Enrich(context.Background(), []reconcile.Item{item("A", "3")})
	require.NoError(t, err)

	require.Len(t, lines, 1)
	assert.True(t, lines[0].UnitPrice.Equal(dec("2.50")))
	assert.True(t, lines[0].LineTotal.Equal(dec("7.50")), "got %s", lines[0].LineTotal)
	assert.Equal(t, "Standard Selling", source.gotList)
}

func TestEnrichSingleBatchQuery(t *testing.T) {
	source := &fakePriceSource{
		prices: []erpnext.ItemPrice{
			{ItemCode: "A", Rate: dec("1")},
			{ItemCode: "B", Rate: dec("2")},
		},
	}
	enricher := NewEnricher(source, "Standard Selling", zap.NewNop())

	items := []reconcile.Item{item("A", "1"), item("B", "2"), item("A", "3")}
	lines, err := enricher.Enrich(context.Background(), items)
	require.NoError(t, err)

	assert.Equal(t, 1, source.calls)
	assert.Equal(t, []string{"A", "B"}, source.gotCodes)
	assert.Len(t, lines, 3)
}

func TestEnrichMissingPriceFailsBatch(t *testing.T) {
	source := &fakePriceSource{
		prices: []erpnext.ItemPrice{{ItemCode: "A", Rate: dec("1")}},
	}
	enricher := NewEnricher(source, "Standard Selling", zap.NewNop())

	items := []reconcile.Item{item("A", "1"), item("B", "2"), item("C", "3")}
	lines, err := enricher.Enrich(context.Background(), items)

	require.Error(t, err)
	assert.Nil(t, lines, "no partial result on missing prices")

	var missing *MissingPriceError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"B", "C"}, missing.ItemCodes)
	assert.Equal(t, "Standard Selling", missing.PriceList)
}

func TestEnrichEmptyInput(t *testing.T) {
	source := &fakePriceSource{}
	enricher := NewEnricher(source, "Standard Selling", zap.NewNop())

	lines, err := enricher.Enrich(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, lines)
	assert.Equal(t, 0, source.calls)
}

func TestEnrichSourceError(t *testing.T) {
	source := &fakePriceSource{err: errors.New("boom")}
	enricher := NewEnricher(source, "Standard Selling", zap.NewNop())

	_, err := enricher.Enrich(context.Background(), []reconcile.Item{item("A", "1")})
	require.ErrorContains(t, err, "boom")
}

func TestEnrichDuplicatePriceRowsFirstWins(t *testing.T) {
	source := &fakePriceSource{
		prices: []erpnext.ItemPrice{
			{ItemCode: "A", Rate: dec("2.50")},
			{ItemCode: "A", Rate: dec("9.99")},
		},
	}
	enricher := NewEnricher(source, "Standard Selling", zap.NewNop())

	lines, err := enricher.Enrich(context.Background(), []reconcile.Item{item("A", "1")})
	require.NoError(t, err)
	assert.True(t, lines[0].UnitPrice.Equal(dec("2.50")))
}

func TestTotal(t *testing.T) {
	lines := []Line{
		{LineTotal: dec("7.50")},
		{LineTotal: dec("0.25")},
	}
	assert.True(t, Total(lines).Equal(dec("7.75")))
	assert.True(t, Total(nil).IsZero())
}
