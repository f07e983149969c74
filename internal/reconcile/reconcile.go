// Package reconcile joins stock records to ledger records by item code and
// derives sold quantities.
package reconcile

import (
	"fmt"

	"shop_reconcile/internal/ledger"
	"shop_reconcile/internal/stock"

	"github.com/shopspring/decimal"
)

// Item is one reconciled line: period-start stock, period-end ledger count,
// and the derived sold quantity. Sold may be zero or negative when the count
// did not move or increased.
type Item struct {
	ItemCode string
	StartQty decimal.Decimal
	EndQty   decimal.Decimal
	SoldQty  decimal.Decimal
}

// Result partitions the join. Unmatched holds ledger records with no stock
// counterpart; they are the signal that an item was sold in the shop but never
// registered in the stock system, and are always surfaced. Warnings carry
// duplicate-code anomalies that the first-match join would otherwise mask.
type Result struct {
	Matched   []Item
	Unmatched []ledger.Record
	Warnings  []string
}

// Reconcile matches each ledger record against the stock set. Output order
// follows ledger input order, which the normalizer already sorted by item
// code. Stock records with no ledger counterpart are items with no shop
// activity and are intentionally excluded.
func Reconcile(stockRecords []stock.Record, ledgerRecords []ledger.Record) Result {
	result := Result{}

	index := make(map[string]stock.Record, len(stockRecords))
	for _, rec := range stockRecords {
		if _, dup := index[rec.ItemCode]; dup {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("duplicate item code %q in stock records; keeping the first occurrence", rec.ItemCode))
			continue
		}
		index[rec.ItemCode] = rec
	}

	seen := make(map[string]bool, len(ledgerRecords))
	for _, rec := range ledgerRecords {
		if seen[rec.ItemCode] {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("duplicate item code %q in ledger records; keeping the first occurrence", rec.ItemCode))
			continue
		}
		seen[rec.ItemCode] = true

		stockRec, ok := index[rec.ItemCode]
		if !ok {
			result.Unmatched = append(result.Unmatched, rec)
			continue
		}

		result.Matched = append(result.Matched, Item{
			ItemCode: rec.ItemCode,
			StartQty: stockRec.Qty,
			EndQty:   rec.EndQty,
			SoldQty:  stockRec.Qty.Sub(rec.EndQty),
		})
	}

	return result
}
