package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"shop_reconcile/internal/ledger"
	"shop_reconcile/internal/pricing"
	"shop_reconcile/internal/reconcile"
)

func printWarnings(warnings []string) {
	for _, w := range warnings {
		fmt.Fprintf(os.Stdout, "WARNING: %s\n", w)
	}
}

func printReconciled(items []reconcile.Item) {
	if len(items) == 0 {
		fmt.Fprintln(os.Stdout, "No items matched between stock and ledger.")
		return
	}

	fmt.Fprintf(os.Stdout, "Reconciled items (%d):\n", len(items))
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ITEM\tSTART\tEND\tSOLD")
	for _, item := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			item.ItemCode, item.StartQty.String(), item.EndQty.String(), item.SoldQty.String())
	}
	_ = w.Flush()
}

func printUnmatched(records []ledger.Record) {
	if len(records) == 0 {
		return
	}

	fmt.Fprintf(os.Stdout, "Ledger items with no stock record (%d) - register these before they sell again:\n", len(records))
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ITEM\tEND\tSHEET")
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\n", rec.ItemCode, rec.EndQty.String(), rec.Sheet)
	}
	_ = w.Flush()
}

func printPriced(lines []pricing.Line) {
	if len(lines) == 0 {
		return
	}

	fmt.Fprintf(os.Stdout, "Priced sales (%d):\n", len(lines))
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ITEM\tSOLD\tUNIT PRICE\tLINE TOTAL")
	for _, line := range lines {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			line.ItemCode, line.SoldQty.String(), line.UnitPrice.String(), line.LineTotal.String())
	}
	fmt.Fprintf(w, "TOTAL\t\t\t%s\n", pricing.Total(lines).String())
	_ = w.Flush()
}
