// Package pricing values reconciled items from a named price list.
package pricing

import (
	"context"
	"fmt"
	"strings"

	"shop_reconcile/internal/erpnext"
	"shop_reconcile/internal/reconcile"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PriceSource fetches price-list rows for a set of item codes in one batch.
type PriceSource interface {
	ListItemPrices(ctx context.Context, priceList string, itemCodes []string) ([]erpnext.ItemPrice, error)
}

// Line is a reconciled item with its resolved unit price and line total.
type Line struct {
	reconcile.Item
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// MissingPriceError lists every item code the price list could not resolve.
// A single missing price fails the whole batch; a transaction with an
// incorrect amount is worse than no transaction.
type MissingPriceError struct {
	PriceList string
	ItemCodes []string
}

func (e *MissingPriceError) Error() string {
	return fmt.Sprintf("no %q price for item(s): %s", e.PriceList, strings.Join(e.ItemCodes, ", "))
}

type Enricher struct {
	source    PriceSource
	priceList string
	logger    *zap.Logger
}

func NewEnricher(source PriceSource, priceList string, logger *zap.Logger) *Enricher {
	return &Enricher{
		source:    source,
		priceList: priceList,
		logger:    logger.Named("pricing"),
	}
}

// Enrich resolves a unit price for every input item or fails the batch with a
// MissingPriceError. All arithmetic is decimal; line totals never round
// through floats.
func (e *Enricher) Enrich(ctx context.Context, items []reconcile.Item) ([]Line, error) {
	if len(items) == 0 {
		return nil, nil
	}

	codes := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if !seen[item.ItemCode] {
			seen[item.ItemCode] = true
			codes = append(codes, item.ItemCode)
		}
	}

	prices, err := e.source.ListItemPrices(ctx, e.priceList, codes)
	if err != nil {
		return nil, fmt.Errorf("fetching prices: %w", err)
	}

	rates := make(map[string]decimal.Decimal, len(prices))
	for _, price := range prices {
		if _, dup := rates[price.ItemCode]; dup {
			e.logger.Warn("duplicate price list entry; keeping the first",
				zap.String("item_code", price.ItemCode),
				zap.String("price_list", e.priceList),
			)
			continue
		}
		rates[price.ItemCode] = price.Rate
	}

	lines := make([]Line, 0, len(items))
	var missing []string
	for _, item := range items {
		rate, ok := rates[item.ItemCode]
		if !ok {
			missing = append(missing, item.ItemCode)
			continue
		}
		lines = append(lines, Line{
			Item:      item,
			UnitPrice: rate,
			LineTotal: rate.Mul(item.SoldQty),
		})
	}
	if len(missing) > 0 {
		return nil, &MissingPriceError{PriceList: e.priceList, ItemCodes: missing}
	}

	return lines, nil
}

// Total sums line totals.
func Total(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.LineTotal)
	}
	return total
}
