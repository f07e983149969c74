// Package invoice guards against double-submission and assembles the day-end
// sales invoice.
package invoice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shop_reconcile/internal/erpnext"

	"go.uber.org/zap"
)

// ErrPendingConsolidation means paid invoices from a prior run are still
// awaiting consolidation. Entering new sales over the same window would
// double-count revenue, so this is always a hard stop.
var ErrPendingConsolidation = errors.New("paid invoices are awaiting consolidation")

// ConsolidationSource lists paid-but-unconsolidated invoices for a company.
type ConsolidationSource interface {
	ListPaidUnconsolidated(ctx context.Context, company string) ([]erpnext.InvoiceRef, error)
}

type Guard struct {
	source  ConsolidationSource
	company string
	logger  *zap.Logger
}

func NewGuard(source ConsolidationSource, company string, logger *zap.Logger) *Guard {
	return &Guard{
		source:  source,
		company: company,
		logger:  logger.Named("guard"),
	}
}

// Check fails with ErrPendingConsolidation when any paid invoice is still
// open. It runs before any other pipeline work so a halted run has zero side
// effects.
func (g *Guard) Check(ctx context.Context) error {
	open, err := g.source.ListPaidUnconsolidated(ctx, g.company)
	if err != nil {
		return fmt.Errorf("checking for open consolidations: %w", err)
	}
	if len(open) == 0 {
		return nil
	}

	names := make([]string, 0, len(open))
	for _, ref := range open {
		names = append(names, ref.Name)
	}
	g.logger.Warn("pending consolidation found",
		zap.Int("count", len(open)),
		zap.Strings("invoices", names),
	)

	return fmt.Errorf("%w: %d invoice(s) open (%s); consolidate them before running again",
		ErrPendingConsolidation, len(open), strings.Join(names, ", "))
}
