// Package ledger normalizes day-end shop ledger sheets into canonical records.
package ledger

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Record is one item's ending quantity as counted in the shop ledger.
type Record struct {
	ItemCode string
	EndQty   decimal.Decimal
	Sheet    string
}

// Fields names the ledger columns. Header labels are matched after trimming,
// since hand-maintained sheets carry embedded whitespace in labels (the
// ending-quantity column is literally "end " in the source workbook).
type Fields struct {
	ItemCode  string
	Additions string
	Total     string
	EndQty    string
}

// Sheet is one already-parsed ledger grid. The normalizer never touches files.
type Sheet struct {
	Name string
	Rows [][]string
}

// RowError reports a malformed ledger row or a missing header column.
type RowError struct {
	Sheet  string
	Row    int
	Column string
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("ledger sheet %q: row %d, column %q: %s", e.Sheet, e.Row, e.Column, e.Reason)
}

// Normalize turns ledger grids into records. The header sits at headerRow
// (0-based) in every sheet; rows above it are titles. A row counts as data
// only when both the additions and total cells are populated, which separates
// item lines from blanks and subtotals. Multiple sheets concatenate without
// de-duplication; the result is sorted by item code, ordinal ascending.
func Normalize(sheets []Sheet, headerRow int, fields Fields) ([]Record, error) {
	var records []Record

	for _, sheet := range sheets {
		if headerRow >= len(sheet.Rows) {
			return nil, &RowError{Sheet: sheet.Name, Row: headerRow + 1, Column: fields.ItemCode, Reason: "header row missing"}
		}

		cols, err := headerIndex(sheet, headerRow, fields)
		if err != nil {
			return nil, err
		}

		for i := headerRow + 1; i < len(sheet.Rows); i++ {
			row := sheet.Rows[i]
			if cell(row, cols.add) == "" || cell(row, cols.total) == "" {
				continue
			}

			item := cell(row, cols.item)
			if item == "" {
				return nil, &RowError{Sheet: sheet.Name, Row: i + 1, Column: fields.ItemCode, Reason: "empty item code"}
			}

			rawEnd := cell(row, cols.end)
			if rawEnd == "" {
				return nil, &RowError{Sheet: sheet.Name, Row: i + 1, Column: fields.EndQty, Reason: "empty ending quantity"}
			}
			end, err := decimal.NewFromString(rawEnd)
			if err != nil {
				return nil, &RowError{Sheet: sheet.Name, Row: i + 1, Column: fields.EndQty, Reason: fmt.Sprintf("not a number: %q", rawEnd)}
			}

			records = append(records, Record{ItemCode: item, EndQty: end, Sheet: sheet.Name})
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ItemCode < records[j].ItemCode
	})

	return records, nil
}

// Duplicates lists item codes that appear more than once across the combined
// record set. The same item legitimately lives in exactly one department
// sheet, so any repeat is a data-quality signal for the operator.
func Duplicates(records []Record) []string {
	counts := make(map[string]int, len(records))
	for _, rec := range records {
		counts[rec.ItemCode]++
	}

	var dups []string
	for code, n := range counts {
		if n > 1 {
			dups = append(dups, code)
		}
	}
	sort.Strings(dups)
	return dups
}

type columns struct {
	item, add, total, end int
}

func headerIndex(sheet Sheet, headerRow int, fields Fields) (columns, error) {
	labels := make(map[string]int, len(sheet.Rows[headerRow]))
	for i, label := range sheet.Rows[headerRow] {
		trimmed := strings.TrimSpace(label)
		if _, seen := labels[trimmed]; !seen {
			labels[trimmed] = i
		}
	}

	cols := columns{}
	for _, want := range []struct {
		name string
		dst  *int
	}{
		{fields.ItemCode, &cols.item},
		{fields.Additions, &cols.add},
		{fields.Total, &cols.total},
		{fields.EndQty, &cols.end},
	} {
		idx, ok := labels[want.name]
		if !ok {
			return columns{}, &RowError{Sheet: sheet.Name, Row: headerRow + 1, Column: want.name, Reason: "not found in header"}
		}
		*want.dst = idx
	}

	return cols, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
