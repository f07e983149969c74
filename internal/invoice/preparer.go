package invoice

import (
	"context"
	"fmt"

	"shop_reconcile/internal/erpnext"
	"shop_reconcile/internal/pricing"

	"go.uber.org/zap"
)

// Submitter creates one sales transaction in the external system.
type Submitter interface {
	CreatePOSInvoice(ctx context.Context, payload erpnext.POSInvoicePayload) (string, error)
}

// Profile holds the fixed document fields of the outbound invoice.
type Profile struct {
	Company     string
	Customer    string
	POSProfile  string
	Currency    string
	Warehouse   string
	PaymentMode string
}

type Preparer struct {
	submitter Submitter
	profile   Profile
	logger    *zap.Logger
}

func NewPreparer(submitter Submitter, profile Profile, logger *zap.Logger) *Preparer {
	return &Preparer{
		submitter: submitter,
		profile:   profile,
		logger:    logger.Named("invoice"),
	}
}

// Prepare assembles the invoice payload from the strictly-positive sold
// quantities. Zero and negative movements are reconciliation artifacts, not
// sales. ok is false when no line qualifies, in which case the payload must
// not be submitted.
func (p *Preparer) Prepare(lines []pricing.Line) (erpnext.POSInvoicePayload, bool) {
	var items []erpnext.POSInvoiceItem
	var sold []pricing.Line
	for _, line := range lines {
		if !line.SoldQty.IsPositive() {
			continue
		}
		sold = append(sold, line)
		items = append(items, erpnext.POSInvoiceItem{
			ItemCode:  line.ItemCode,
			Qty:       line.SoldQty,
			Warehouse: p.profile.Warehouse,
		})
	}
	if len(items) == 0 {
		return erpnext.POSInvoicePayload{}, false
	}

	return erpnext.POSInvoicePayload{
		Company:     p.profile.Company,
		Customer:    p.profile.Customer,
		POSProfile:  p.profile.POSProfile,
		Currency:    p.profile.Currency,
		UpdateStock: 1,
		Items:       items,
		Payments: []erpnext.POSInvoicePayment{
			{ModeOfPayment: p.profile.PaymentMode, Amount: pricing.Total(sold)},
		},
	}, true
}

// Submit prepares and sends the invoice at most once. skipped reports that no
// line had a positive sold quantity and no call was made. Failures surface
// the external system's error untouched; the create is not idempotent and is
// never retried.
func (p *Preparer) Submit(ctx context.Context, lines []pricing.Line) (name string, skipped bool, err error) {
	payload, ok := p.Prepare(lines)
	if !ok {
		p.logger.Info("no positive sold quantities; skipping invoice submission")
		return "", true, nil
	}

	p.logger.Info("submitting pos invoice",
		zap.Int("lines", len(payload.Items)),
		zap.String("amount", payload.Payments[0].Amount.String()),
	)

	name, err = p.submitter.CreatePOSInvoice(ctx, payload)
	if err != nil {
		return "", false, fmt.Errorf("creating pos invoice: %w", err)
	}
	return name, false, nil
}
