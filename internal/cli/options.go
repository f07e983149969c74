package cli

import "time"

type Options struct {
	ERPBaseURL string
	ERPToken   string

	Company     string
	Customer    string
	POSProfile  string
	Currency    string
	Warehouse   string
	PriceList   string
	PaymentMode string

	StockSource     string
	StockCSVPath    string
	StockBannerRows int
	StockMetaRows   int
	StockItemField  string
	StockQtyField   string

	LedgerPaths      []string
	LedgerSheet      string
	LedgerHeaderRow  int
	LedgerItemField  string
	LedgerAddField   string
	LedgerTotalField string
	LedgerEndField   string

	Timeout time.Duration
	LogFile string
	Debug   bool
	DryRun  bool
}
