package erpnext

import "github.com/shopspring/decimal"

// Bin is one warehouse/item stock level row from the Bin doctype.
type Bin struct {
	Name      string          `json:"name"`
	ItemCode  string          `json:"item_code"`
	Warehouse string          `json:"warehouse"`
	ActualQty decimal.Decimal `json:"actual_qty"`
}

// ItemPrice is one row from a named price list.
type ItemPrice struct {
	Name      string          `json:"name"`
	ItemCode  string          `json:"item_code"`
	PriceList string          `json:"price_list"`
	Currency  string          `json:"currency"`
	UOM       string          `json:"uom,omitempty"`
	Rate      decimal.Decimal `json:"price_list_rate"`
}

// InvoiceRef identifies an existing POS Invoice document.
type InvoiceRef struct {
	Name   string `json:"name"`
	Status string `json:"status,omitempty"`
}

type POSInvoiceItem struct {
	ItemCode  string          `json:"item_code"`
	Qty       decimal.Decimal `json:"qty"`
	Warehouse string          `json:"warehouse"`
}

type POSInvoicePayment struct {
	ModeOfPayment string          `json:"mode_of_payment"`
	Amount        decimal.Decimal `json:"amount"`
}

// POSInvoicePayload is the body of a POS Invoice create request.
type POSInvoicePayload struct {
	Company     string              `json:"company"`
	Customer    string              `json:"customer"`
	POSProfile  string              `json:"pos_profile"`
	Currency    string              `json:"currency"`
	UpdateStock int                 `json:"update_stock"`
	Items       []POSInvoiceItem    `json:"items"`
	Payments    []POSInvoicePayment `json:"payments"`
}

type listResponse[T any] struct {
	Data []T `json:"data"`
}

type documentResponse[T any] struct {
	Data T `json:"data"`
}
