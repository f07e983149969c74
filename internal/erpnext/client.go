package erpnext

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"shop_reconcile/internal/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const documentAPIPrefix = "/api/v2/document"

var (
	ErrMissingBaseURL = errors.New("erpnext base url is required")
	ErrMissingToken   = errors.New("erpnext api token is required")
	ErrUnauthorized   = errors.New("erpnext unauthorized")
	ErrRateLimited    = errors.New("erpnext rate limited")
)

type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("erpnext api error: %s", e.Status)
	}
	return fmt.Sprintf("erpnext api error: %s: %s", e.Status, e.Body)
}

type Client struct {
	http    *resty.Client
	baseURL string
	token   string
	logger  *zap.Logger
}

func NewClient(cfg config.Config, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.ERPBaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout).
		SetRetryCount(1).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			// Invoice creation is not idempotent; only reads may retry.
			if resp == nil || resp.Request == nil || resp.Request.Method != http.MethodGet {
				return false
			}
			if err != nil {
				return true
			}
			return resp.StatusCode() == http.StatusTooManyRequests
		})

	token := strings.TrimSpace(cfg.ERPToken)
	if token != "" {
		httpClient.SetHeader("Authorization", "token "+token)
	}

	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(cfg.ERPBaseURL, "/"),
		token:   token,
		logger:  logger.Named("erpnext"),
	}
}

// ListBins returns current stock levels for one warehouse. Zero-quantity rows
// are filtered out server-side and limit_page_length=0 disables paging, so the
// result is the complete non-zero stock for the warehouse.
func (c *Client) ListBins(ctx context.Context, warehouse string) ([]Bin, error) {
	fields := []string{"name", "item_code", "warehouse", "actual_qty"}
	filters := [][]any{
		{"Bin", "warehouse", "=", warehouse},
		{"Bin", "actual_qty", "!=", 0},
	}

	var resp listResponse[Bin]
	if err := c.doList(ctx, "Bin", fields, filters, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// ListItemPrices fetches price rows for the given item codes from one price
// list in a single batched query.
func (c *Client) ListItemPrices(ctx context.Context, priceList string, itemCodes []string) ([]ItemPrice, error) {
	if len(itemCodes) == 0 {
		return nil, nil
	}

	fields := []string{"name", "item_code", "price_list", "currency", "uom", "price_list_rate"}
	filters := [][]any{
		{"Item Price", "price_list", "=", priceList},
		{"Item Price", "item_code", "in", itemCodes},
	}

	var resp listResponse[ItemPrice]
	if err := c.doList(ctx, "Item Price", fields, filters, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// ListPaidUnconsolidated returns submitted POS Invoices that are paid but not
// yet consolidated for the company.
func (c *Client) ListPaidUnconsolidated(ctx context.Context, company string) ([]InvoiceRef, error) {
	fields := []string{"name", "status"}
	filters := [][]any{
		{"POS Invoice", "docstatus", "=", 1},
		{"POS Invoice", "company", "=", company},
		{"POS Invoice", "status", "=", "Paid"},
	}

	var resp listResponse[InvoiceRef]
	if err := c.doList(ctx, "POS Invoice", fields, filters, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// CreatePOSInvoice submits one draft POS Invoice and returns its document name.
func (c *Client) CreatePOSInvoice(ctx context.Context, payload POSInvoicePayload) (string, error) {
	if err := c.checkConfigured(); err != nil {
		return "", err
	}

	var result documentResponse[InvoiceRef]
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&result).
		Post(documentAPIPrefix + "/POS Invoice")
	if err != nil {
		return "", fmt.Errorf("erpnext request: %w", err)
	}
	if resp.IsError() {
		return "", apiErrorFromResponse(resp)
	}
	if result.Data.Name == "" {
		return "", &APIError{
			StatusCode: resp.StatusCode(),
			Status:     resp.Status(),
			Body:       strings.TrimSpace(resp.String()),
		}
	}

	c.logger.Info("pos invoice created", zap.String("name", result.Data.Name))
	return result.Data.Name, nil
}

func (c *Client) doList(ctx context.Context, doctype string, fields []string, filters [][]any, result any) error {
	if err := c.checkConfigured(); err != nil {
		return err
	}

	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encoding fields: %w", err)
	}
	filtersJSON, err := json.Marshal(filters)
	if err != nil {
		return fmt.Errorf("encoding filters: %w", err)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"fields":            string(fieldsJSON),
			"filters":           string(filtersJSON),
			"limit_page_length": "0",
		}).
		SetResult(result).
		Get(documentAPIPrefix + "/" + doctype)
	if err != nil {
		return fmt.Errorf("erpnext request: %w", err)
	}
	if resp.IsError() {
		return apiErrorFromResponse(resp)
	}
	return nil
}

func (c *Client) checkConfigured() error {
	if c.baseURL == "" {
		return ErrMissingBaseURL
	}
	if c.token == "" {
		return ErrMissingToken
	}
	return nil
}

func apiErrorFromResponse(resp *resty.Response) error {
	body := strings.TrimSpace(resp.String())
	apiErr := &APIError{
		StatusCode: resp.StatusCode(),
		Status:     resp.Status(),
		Body:       body,
	}

	switch resp.StatusCode() {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, apiErr.Error())
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, apiErr.Error())
	default:
		return apiErr
	}
}
