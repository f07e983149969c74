package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"shop_reconcile/internal/config"
	"shop_reconcile/internal/erpnext"
	"shop_reconcile/internal/invoice"
	"shop_reconcile/internal/ledger"
	"shop_reconcile/internal/pricing"
	"shop_reconcile/internal/reconcile"
	"shop_reconcile/internal/stock"

	"go.uber.org/zap"
)

const (
	stockSourceCSV = "csv"
	stockSourceAPI = "api"
)

type Runner struct {
	options Options
	logger  *zap.Logger
	client  *erpnext.Client
}

func NewRunner(cfg config.Config, logger *zap.Logger, client *erpnext.Client) *Runner {
	logger = logger.Named("cli")
	opts := Options{
		ERPBaseURL:  cfg.ERPBaseURL,
		ERPToken:    cfg.ERPToken,
		Company:     cfg.Company,
		Customer:    cfg.Customer,
		POSProfile:  cfg.POSProfile,
		Currency:    cfg.Currency,
		Warehouse:   cfg.Warehouse,
		PriceList:   cfg.PriceList,
		PaymentMode: cfg.PaymentMode,

		StockSource:     cfg.StockSource,
		StockCSVPath:    cfg.StockCSVPath,
		StockBannerRows: cfg.StockBannerRows,
		StockMetaRows:   cfg.StockMetaRows,
		StockItemField:  cfg.StockItemField,
		StockQtyField:   cfg.StockQtyField,

		LedgerPaths:      splitPaths(cfg.LedgerPaths),
		LedgerSheet:      cfg.LedgerSheet,
		LedgerHeaderRow:  cfg.LedgerHeaderRow,
		LedgerItemField:  cfg.LedgerItemField,
		LedgerAddField:   cfg.LedgerAddField,
		LedgerTotalField: cfg.LedgerTotalField,
		LedgerEndField:   cfg.LedgerEndField,

		Timeout: cfg.Timeout,
		LogFile: cfg.LogFile,
		Debug:   cfg.Debug,
		DryRun:  cfg.DryRun,
	}

	return &Runner{
		options: opts,
		logger:  logger,
		client:  client,
	}
}

func (r *Runner) Execute() error {
	return runCLI(&r.options, r.logger)
}

func runCLI(opts *Options, logger *zap.Logger) error {
	var timeoutSeconds int
	var ledgerPaths string

	fs := flag.NewFlagSet("shop-reconcile", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n", fs.Name())
		fs.PrintDefaults()
	}

	fs.StringVar(&opts.ERPBaseURL, "erp-url", opts.ERPBaseURL, "ERPNext base URL (ERP_BASE_URL)")
	fs.StringVar(&opts.ERPToken, "erp-token", opts.ERPToken, "ERPNext API token key:secret (ERP_TOKEN)")
	fs.StringVar(&opts.Company, "company", opts.Company, "Company the invoice is entered for (COMPANY)")
	fs.StringVar(&opts.Customer, "customer", opts.Customer, "Customer on the invoice (CUSTOMER)")
	fs.StringVar(&opts.POSProfile, "pos-profile", opts.POSProfile, "POS profile name (POS_PROFILE)")
	fs.StringVar(&opts.Currency, "currency", opts.Currency, "Invoice currency (CURRENCY)")
	fs.StringVar(&opts.Warehouse, "warehouse", opts.Warehouse, "Warehouse holding the stock (WAREHOUSE)")
	fs.StringVar(&opts.PriceList, "price-list", opts.PriceList, "Selling price list (PRICE_LIST)")
	fs.StringVar(&opts.PaymentMode, "payment-mode", opts.PaymentMode, "Mode of payment (PAYMENT_MODE)")
	fs.StringVar(&opts.StockSource, "stock-source", opts.StockSource, "Stock source: csv or api (STOCK_SOURCE)")
	fs.StringVar(&opts.StockCSVPath, "stock-csv", opts.StockCSVPath, "Path to the warehouse CSV export (STOCK_CSV_PATH)")
	fs.IntVar(&opts.StockBannerRows, "stock-banner-rows", opts.StockBannerRows, "Banner lines before the CSV header")
	fs.IntVar(&opts.StockMetaRows, "stock-meta-rows", opts.StockMetaRows, "Metadata lines between the CSV header and data")
	fs.StringVar(&ledgerPaths, "ledger", strings.Join(opts.LedgerPaths, ","), "Ledger workbook path(s), comma-separated (LEDGER_PATHS)")
	fs.StringVar(&opts.LedgerSheet, "ledger-sheet", opts.LedgerSheet, "Ledger sheet name; empty picks the last sheet (LEDGER_SHEET)")
	fs.IntVar(&opts.LedgerHeaderRow, "ledger-header-row", opts.LedgerHeaderRow, "Zero-based header row index in the ledger sheet")
	fs.BoolVar(&opts.DryRun, "dry-run", opts.DryRun, "Reconcile and report without submitting an invoice")
	fs.BoolVar(&opts.Debug, "debug", opts.Debug, "Enable debug logging")
	fs.StringVar(&opts.LogFile, "log-file", opts.LogFile, "Log file path")
	fs.IntVar(&timeoutSeconds, "timeout", int(opts.Timeout.Seconds()), "Timeout in seconds")

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			fs.Usage()
			return nil
		}
		return err
	}

	if timeoutSeconds > 0 {
		opts.Timeout = time.Duration(timeoutSeconds) * time.Second
	}
	opts.LedgerPaths = splitPaths(ledgerPaths)

	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected argument: %s", fs.Args()[0])
	}
	if err := validateOptions(opts); err != nil {
		return err
	}

	client := newERPClientFromOptions(opts, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	return runPipeline(ctx, opts, logger, client)
}

func newERPClientFromOptions(opts *Options, logger *zap.Logger) *erpnext.Client {
	cfg := config.Config{
		ERPBaseURL: opts.ERPBaseURL,
		ERPToken:   opts.ERPToken,
		Timeout:    opts.Timeout,
	}
	return erpnext.NewClient(cfg, logger)
}

func validateOptions(opts *Options) error {
	if strings.TrimSpace(opts.ERPBaseURL) == "" {
		return errors.New("ERP base URL is required: set --erp-url or ERP_BASE_URL")
	}
	if strings.TrimSpace(opts.ERPToken) == "" {
		return errors.New("ERP token is required: set --erp-token or ERP_TOKEN")
	}
	if strings.TrimSpace(opts.Company) == "" {
		return errors.New("company is required: set --company or COMPANY")
	}
	if strings.TrimSpace(opts.Warehouse) == "" {
		return errors.New("warehouse is required: set --warehouse or WAREHOUSE")
	}
	switch opts.StockSource {
	case stockSourceCSV:
		if strings.TrimSpace(opts.StockCSVPath) == "" {
			return errors.New("stock CSV path is required: set --stock-csv or STOCK_CSV_PATH")
		}
	case stockSourceAPI:
	default:
		return fmt.Errorf("unknown stock source %q: want %q or %q", opts.StockSource, stockSourceCSV, stockSourceAPI)
	}
	if len(opts.LedgerPaths) == 0 {
		return errors.New("at least one ledger workbook is required: set --ledger or LEDGER_PATHS")
	}
	if !opts.DryRun {
		if strings.TrimSpace(opts.Customer) == "" {
			return errors.New("customer is required: set --customer or CUSTOMER")
		}
		if strings.TrimSpace(opts.POSProfile) == "" {
			return errors.New("POS profile is required: set --pos-profile or POS_PROFILE")
		}
	}
	return nil
}

// runPipeline is one day-end pass: guard, normalize both sources, reconcile,
// report, price, submit. Any fatal error aborts the remaining stages; the
// guard runs first so a halted run has no side effects at all.
func runPipeline(ctx context.Context, opts *Options, logger *zap.Logger, client *erpnext.Client) error {
	guard := invoice.NewGuard(client, opts.Company, logger)
	if err := guard.Check(ctx); err != nil {
		return err
	}

	stockRecords, err := loadStock(ctx, opts, client)
	if err != nil {
		return err
	}
	logger.Info("stock records normalized", zap.Int("count", len(stockRecords)))

	ledgerRecords, err := loadLedger(opts, logger)
	if err != nil {
		return err
	}
	logger.Info("ledger records normalized", zap.Int("count", len(ledgerRecords)))

	result := reconcile.Reconcile(stockRecords, ledgerRecords)
	printWarnings(result.Warnings)
	printReconciled(result.Matched)
	printUnmatched(result.Unmatched)

	if opts.DryRun {
		fmt.Fprintln(os.Stdout, "Dry run: no invoice submitted.")
		return nil
	}

	sold := make([]reconcile.Item, 0, len(result.Matched))
	for _, item := range result.Matched {
		if item.SoldQty.IsPositive() {
			sold = append(sold, item)
		}
	}

	enricher := pricing.NewEnricher(client, opts.PriceList, logger)
	lines, err := enricher.Enrich(ctx, sold)
	if err != nil {
		return err
	}
	printPriced(lines)

	preparer := invoice.NewPreparer(client, invoice.Profile{
		Company:     opts.Company,
		Customer:    opts.Customer,
		POSProfile:  opts.POSProfile,
		Currency:    opts.Currency,
		Warehouse:   opts.Warehouse,
		PaymentMode: opts.PaymentMode,
	}, logger)

	name, skipped, err := preparer.Submit(ctx, lines)
	if err != nil {
		return err
	}
	if skipped {
		fmt.Fprintln(os.Stdout, "No items sold this period; no invoice submitted.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "Draft POS invoice created: %s\n", name)
	return nil
}

func loadStock(ctx context.Context, opts *Options, client *erpnext.Client) ([]stock.Record, error) {
	if opts.StockSource == stockSourceAPI {
		bins, err := client.ListBins(ctx, opts.Warehouse)
		if err != nil {
			return nil, fmt.Errorf("fetching stock entries: %w", err)
		}
		return stock.FromBins(bins), nil
	}

	f, err := os.Open(opts.StockCSVPath)
	if err != nil {
		return nil, fmt.Errorf("opening stock export: %w", err)
	}
	defer func() { _ = f.Close() }()

	layout := stock.Layout{BannerRows: opts.StockBannerRows, MetaRows: opts.StockMetaRows}
	fields := stock.Fields{ItemCode: opts.StockItemField, Quantity: opts.StockQtyField}
	return stock.ParseCSV(f, layout, fields)
}

func loadLedger(opts *Options, logger *zap.Logger) ([]ledger.Record, error) {
	sheets := make([]ledger.Sheet, 0, len(opts.LedgerPaths))
	for _, path := range opts.LedgerPaths {
		sheet, err := ledger.LoadWorkbook(path, opts.LedgerSheet)
		if err != nil {
			return nil, err
		}
		logger.Info("ledger sheet loaded", zap.String("path", path), zap.String("sheet", sheet.Name))
		sheets = append(sheets, sheet)
	}

	fields := ledger.Fields{
		ItemCode:  opts.LedgerItemField,
		Additions: opts.LedgerAddField,
		Total:     opts.LedgerTotalField,
		EndQty:    opts.LedgerEndField,
	}
	records, err := ledger.Normalize(sheets, opts.LedgerHeaderRow, fields)
	if err != nil {
		return nil, err
	}

	if dups := ledger.Duplicates(records); len(dups) > 0 {
		logger.Warn("item codes repeated across ledger sheets", zap.Strings("item_codes", dups))
	}
	return records, nil
}

func splitPaths(raw string) []string {
	var paths []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			paths = append(paths, trimmed)
		}
	}
	return paths
}
