// Package crm provides the HTTP client for the CRM, the system of record for
// warehouses and their activation codes. The activation flow consults it in
// two places: to confirm a warehouse exists before prompting for a code, and
// to resolve a submitted code back to the warehouse it belongs to.
//
// Semantics callers rely on:
//
//   - Verdicts and outages stay distinct. A 404 (or an empty result set) is a
//     definitive "no such warehouse / no such code" and surfaces as
//     ErrNotFound. Transport failures, timeouts, and 5xx responses surface as
//     ordinary errors so callers can refuse to guess instead of treating an
//     outage as a rejection.
//   - Retries apply to transport errors and 5xx responses only. A 4xx is a
//     verdict and is never retried.
//   - No logging in the package (callers decide how/what to log).
package crm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrNotFound reports a definitive CRM verdict: the warehouse or activation
// code does not exist. It is never returned for transport or server errors.
var ErrNotFound = errors.New("crm: not found")

// Validator is the verdict-level contract the activation engine consumes.
// A (false, nil) answer is definitive; a non-nil error means no verdict was
// reached and the caller must not treat it as a rejection.
type Validator interface {
	ValidateWarehouseExists(ctx context.Context, warehouseID string) (bool, error)
	ValidateActivationCode(ctx context.Context, warehouseID, code string) (bool, error)
}

// Warehouse is the CRM projection consumed by the activation flow.
type Warehouse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// The CRM wraps every payload in a data envelope. Lookups by id return a
// single object; lookups by code return a (possibly empty) list.
type warehouseEnvelope struct {
	Data *Warehouse `json:"data"`
}

type warehouseListEnvelope struct {
	Data []Warehouse `json:"data"`
}

// Options configures a Client. Zero values fall back to conservative
// defaults suitable for an interactive activation flow.
type Options struct {
	// BaseURL is the CRM API root, e.g. "https://crm.example.com/api".
	BaseURL string
	// APIToken is sent as a Bearer token when non-empty.
	APIToken string
	// Timeout bounds each attempt end to end.
	Timeout time.Duration
	// Retries is the number of additional attempts after the first.
	Retries int
	// RetryWait is the base delay between attempts.
	RetryWait time.Duration
}

// Client is a thin, concurrency-safe CRM API client.
type Client struct {
	http *resty.Client
}

// New builds a Client from Options.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.RetryWait <= 0 {
		opts.RetryWait = 500 * time.Millisecond
	}

	c := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.Retries).
		SetRetryWaitTime(opts.RetryWait).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "go-warehouse-backend/1.0").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			// Retry on transport errors and 5xx; a 4xx is a verdict.
			if err != nil {
				return true
			}
			return r.StatusCode() >= http.StatusInternalServerError
		})
	if opts.APIToken != "" {
		c.SetAuthToken(opts.APIToken)
	}
	return &Client{http: c}
}

// GetWarehouse fetches a warehouse by its CRM identifier.
// Returns ErrNotFound when the CRM definitively reports no such warehouse.
func (c *Client) GetWarehouse(ctx context.Context, id string) (*Warehouse, error) {
	var env warehouseEnvelope
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&env).
		SetPathParam("id", id).
		Get("/warehouses/{id}")
	if err != nil {
		return nil, fmt.Errorf("crm: get warehouse %q: %w", id, err)
	}
	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, ErrNotFound
	case !resp.IsSuccess():
		return nil, fmt.Errorf("crm: get warehouse %q: unexpected status %d", id, resp.StatusCode())
	case env.Data == nil || env.Data.ID == "":
		// 200 with an empty envelope is still a definitive miss.
		return nil, ErrNotFound
	}
	return env.Data, nil
}

// FindWarehouseByCode resolves an activation code to its warehouse.
// Returns ErrNotFound when no warehouse matches the code.
func (c *Client) FindWarehouseByCode(ctx context.Context, code string) (*Warehouse, error) {
	var env warehouseListEnvelope
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&env).
		SetPathParam("code", code).
		Get("/warehouses/by-code/{code}")
	if err != nil {
		return nil, fmt.Errorf("crm: find warehouse by code: %w", err)
	}
	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, ErrNotFound
	case !resp.IsSuccess():
		return nil, fmt.Errorf("crm: find warehouse by code: unexpected status %d", resp.StatusCode())
	case len(env.Data) == 0:
		return nil, ErrNotFound
	}
	w := env.Data[0]
	if w.ID == "" {
		return nil, ErrNotFound
	}
	return &w, nil
}

// ValidateWarehouseExists reports whether the warehouse exists in the CRM.
// (false, nil) is a definitive no; an error means the CRM gave no verdict.
func (c *Client) ValidateWarehouseExists(ctx context.Context, warehouseID string) (bool, error) {
	_, err := c.GetWarehouse(ctx, warehouseID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ValidateActivationCode reports whether code belongs to the given warehouse.
// A code that resolves to a different warehouse is definitively invalid.
func (c *Client) ValidateActivationCode(ctx context.Context, warehouseID, code string) (bool, error) {
	w, err := c.FindWarehouseByCode(ctx, code)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return w.ID == warehouseID, nil
}
