// Package stock normalizes raw warehouse stock exports into canonical records.
package stock

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"shop_reconcile/internal/erpnext"

	"github.com/shopspring/decimal"
)

// Record is one item's on-hand quantity at period start.
type Record struct {
	ItemCode string
	Qty      decimal.Decimal
}

// Fields names the export columns holding the item identifier and the
// on-hand quantity.
type Fields struct {
	ItemCode string
	Quantity string
}

// Layout describes where the header sits in the export: BannerRows lines
// precede it and MetaRows lines separate it from the first data row. The
// offsets are a property of the exporting system, not of this parser.
type Layout struct {
	BannerRows int
	MetaRows   int
}

// RowError reports a malformed cell or a missing column, naming the offending
// 1-based line and the column involved.
type RowError struct {
	Line   int
	Column string
	Reason string
}

func (e *RowError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("stock export: column %q %s", e.Column, e.Reason)
	}
	return fmt.Sprintf("stock export: line %d, column %q: %s", e.Line, e.Column, e.Reason)
}

// ParseCSV reads a delimited stock export and produces canonical records.
// Rows are mapped positionally against the header row; quantity cells must
// parse as decimals. Fully blank rows are skipped.
func ParseCSV(r io.Reader, layout Layout, fields Fields) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("stock export: %w", err)
	}

	headerIdx := layout.BannerRows
	if headerIdx >= len(rows) {
		return nil, &RowError{Line: headerIdx + 1, Column: fields.ItemCode, Reason: "header row missing"}
	}

	header := rows[headerIdx]
	itemIdx, qtyIdx := -1, -1
	for i, label := range header {
		switch strings.TrimSpace(label) {
		case fields.ItemCode:
			if itemIdx == -1 {
				itemIdx = i
			}
		case fields.Quantity:
			if qtyIdx == -1 {
				qtyIdx = i
			}
		}
	}
	if itemIdx == -1 {
		return nil, &RowError{Line: headerIdx + 1, Column: fields.ItemCode, Reason: "not found in header"}
	}
	if qtyIdx == -1 {
		return nil, &RowError{Line: headerIdx + 1, Column: fields.Quantity, Reason: "not found in header"}
	}

	dataStart := headerIdx + 1 + layout.MetaRows
	if dataStart > len(rows) {
		dataStart = len(rows)
	}

	records := make([]Record, 0, len(rows)-dataStart)
	for i := dataStart; i < len(rows); i++ {
		row := rows[i]
		if blankRow(row) {
			continue
		}
		line := i + 1

		item := cell(row, itemIdx)
		if item == "" {
			return nil, &RowError{Line: line, Column: fields.ItemCode, Reason: "empty item code"}
		}

		rawQty := cell(row, qtyIdx)
		if rawQty == "" {
			return nil, &RowError{Line: line, Column: fields.Quantity, Reason: "empty quantity"}
		}
		qty, err := decimal.NewFromString(rawQty)
		if err != nil {
			return nil, &RowError{Line: line, Column: fields.Quantity, Reason: fmt.Sprintf("not a number: %q", rawQty)}
		}

		records = append(records, Record{ItemCode: item, Qty: qty})
	}

	return records, nil
}

// FromBins projects API stock entries to canonical records. The non-zero
// quantity filter is applied in the Bin query itself.
func FromBins(bins []erpnext.Bin) []Record {
	records := make([]Record, 0, len(bins))
	for _, bin := range bins {
		records = append(records, Record{
			ItemCode: strings.TrimSpace(bin.ItemCode),
			Qty:      bin.ActualQty,
		})
	}
	return records
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
