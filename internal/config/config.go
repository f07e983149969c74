package config

import (
	"fmt"
	"time"

	coreconfig "github.com/go-core-fx/config"
)

type Config struct {
	ERPBaseURL string `koanf:"erp_base_url"`
	ERPToken   string `koanf:"erp_token"`

	Company     string `koanf:"company"`
	Customer    string `koanf:"customer"`
	POSProfile  string `koanf:"pos_profile"`
	Currency    string `koanf:"currency"`
	Warehouse   string `koanf:"warehouse"`
	PriceList   string `koanf:"price_list"`
	PaymentMode string `koanf:"payment_mode"`

	StockSource     string `koanf:"stock_source"`
	StockCSVPath    string `koanf:"stock_csv_path"`
	StockBannerRows int    `koanf:"stock_banner_rows"`
	StockMetaRows   int    `koanf:"stock_meta_rows"`
	StockItemField  string `koanf:"stock_item_field"`
	StockQtyField   string `koanf:"stock_qty_field"`

	LedgerPaths      string `koanf:"ledger_paths"`
	LedgerSheet      string `koanf:"ledger_sheet"`
	LedgerHeaderRow  int    `koanf:"ledger_header_row"`
	LedgerItemField  string `koanf:"ledger_item_field"`
	LedgerAddField   string `koanf:"ledger_add_field"`
	LedgerTotalField string `koanf:"ledger_total_field"`
	LedgerEndField   string `koanf:"ledger_end_field"`

	Timeout time.Duration `koanf:"timeout"`
	LogFile string        `koanf:"log_file"`
	Debug   bool          `koanf:"debug"`
	DryRun  bool          `koanf:"dry_run"`
}

func New() (Config, error) {
	cfg := Config{
		Currency:    "USD",
		PriceList:   "Standard Selling",
		PaymentMode: "Cash",

		StockSource:     "csv",
		StockBannerRows: 1,
		StockMetaRows:   5,
		StockItemField:  "Item Code",
		StockQtyField:   "Quantity",

		LedgerHeaderRow:  2,
		LedgerItemField:  "item",
		LedgerAddField:   "add",
		LedgerTotalField: "total",
		LedgerEndField:   "end",

		Timeout: 30 * time.Second,
		LogFile: "./shop-reconcile.log",
		Debug:   false,
	}

	if err := coreconfig.Load(&cfg); err != nil {
		return Config{}, fmt.Errorf("loading config: %w", err)
	}

	return cfg, nil
}
