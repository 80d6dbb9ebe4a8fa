// Package remote implements the expense store as a client of the spendwise
// HTTP API. Every call is a single bounded request-response exchange: no
// client-side transactions, no automatic retries. Failures map onto the
// shared error taxonomy so callers can branch without parsing payloads.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"spendwise/internal/core"
	"spendwise/internal/store"
)

const defaultTimeout = 10 * time.Second

// listPageSize bounds a single listing request; List pages until the server
// reports no further pages.
const listPageSize = 200

// Client talks to one spendwise API server on behalf of one bearer
// credential. The server scopes every operation to the credential's owner.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

var _ store.Store = (*Client)(nil)

// New returns a client for baseURL authenticating with token. A
// non-positive timeout falls back to the default.
func New(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

type (
	listResponse struct {
		Expenses    []core.Expense `json:"expenses"`
		TotalPages  int            `json:"totalPages"`
		CurrentPage int            `json:"currentPage"`
		Total       int            `json:"total"`
	}

	expenseResponse struct {
		Message string       `json:"message"`
		Expense core.Expense `json:"expense"`
	}

	messageResponse struct {
		Message string `json:"message"`
	}

	createRequest struct {
		Amount      core.Money    `json:"amount"`
		Description string        `json:"description"`
		Category    core.Category `json:"category"`
		Date        time.Time     `json:"date"`
	}
)

// List fetches the full owner snapshot, paging through the server's
// paginated listing.
func (c *Client) List(ctx context.Context) ([]core.Expense, error) {
	var out []core.Expense
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("page", strconv.Itoa(page))
		q.Set("limit", strconv.Itoa(listPageSize))

		var resp listResponse
		if err := c.do(ctx, http.MethodGet, "/expenses?"+q.Encode(), nil, &resp); err != nil {
			return nil, err
		}
		out = append(out, resp.Expenses...)
		if page >= resp.TotalPages || len(resp.Expenses) == 0 {
			break
		}
	}
	return out, nil
}

// ListPage fetches a single filtered page as the server returns it.
func (c *Client) ListPage(ctx context.Context, category core.Category, start, end *time.Time, page, limit int) (listResponse, error) {
	q := url.Values{}
	if category != "" {
		q.Set("category", category.String())
	}
	if start != nil {
		q.Set("startDate", start.Format(time.RFC3339))
	}
	if end != nil {
		q.Set("endDate", end.Format(time.RFC3339))
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var resp listResponse
	err := c.do(ctx, http.MethodGet, "/expenses?"+q.Encode(), nil, &resp)
	return resp, err
}

// Add creates an expense server-side; the server assigns id, owner and
// bookkeeping timestamps.
func (c *Client) Add(ctx context.Context, draft core.Draft) (core.Expense, error) {
	if err := draft.Validate(); err != nil {
		return core.Expense{}, err
	}
	body := createRequest{
		Amount:      draft.Amount,
		Description: draft.Description,
		Category:    draft.Category,
		Date:        draft.Date,
	}
	var resp expenseResponse
	if err := c.do(ctx, http.MethodPost, "/expenses", body, &resp); err != nil {
		return core.Expense{}, err
	}
	return resp.Expense, nil
}

// Remove deletes one record in the caller's scope.
func (c *Client) Remove(ctx context.Context, id string) error {
	var resp messageResponse
	return c.do(ctx, http.MethodDelete, "/expenses/"+url.PathEscape(id), nil, &resp)
}

// Update sends only the patch's supplied fields.
func (c *Client) Update(ctx context.Context, id string, patch core.Patch) (core.Expense, error) {
	if patch.IsEmpty() {
		return core.Expense{}, core.ErrEmptyPatch
	}
	if err := patch.Validate(); err != nil {
		return core.Expense{}, err
	}

	body := map[string]any{}
	if patch.Amount != nil {
		body["amount"] = json.RawMessage(patch.Amount.String())
	}
	if patch.Description != nil {
		body["description"] = *patch.Description
	}
	if patch.Category != nil {
		body["category"] = *patch.Category
	}
	if patch.Date != nil {
		body["date"] = patch.Date.Format(time.RFC3339Nano)
	}

	var resp expenseResponse
	if err := c.do(ctx, http.MethodPut, "/expenses/"+url.PathEscape(id), body, &resp); err != nil {
		return core.Expense{}, err
	}
	return resp.Expense, nil
}

// Clear removes every record in the caller's scope.
func (c *Client) Clear(ctx context.Context) error {
	var resp messageResponse
	return c.do(ctx, http.MethodDelete, "/expenses", nil, &resp)
}

// Analytics fetches the server-computed aggregates for the caller's scope.
func (c *Client) Analytics(ctx context.Context) (core.Analytics, error) {
	var resp core.Analytics
	err := c.do(ctx, http.MethodGet, "/expenses/analytics", nil, &resp)
	return resp, err
}

// Categories fetches the category catalog.
func (c *Client) Categories(ctx context.Context) ([]core.CategoryInfo, error) {
	var resp []core.CategoryInfo
	err := c.do(ctx, http.MethodGet, "/categories", nil, &resp)
	return resp, err
}

// InitCategories idempotently seeds the default catalog.
func (c *Client) InitCategories(ctx context.Context) error {
	var resp struct {
		Message    string              `json:"message"`
		Categories []core.CategoryInfo `json:"categories"`
	}
	return c.do(ctx, http.MethodPost, "/categories/init", nil, &resp)
}

// do performs one request and decodes the response into out. Error mapping:
// network and 5xx failures become core.ErrTransport, 401 becomes
// core.ErrAuth, 404 becomes core.ErrNotFound and 400/422 become
// core.ErrValidation carrying the server's message.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", core.ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.mapError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decode response: %v", core.ErrTransport, err)
		}
	}
	return nil
}

func (c *Client) mapError(resp *http.Response) error {
	var payload messageResponse
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&payload)
	msg := payload.Message
	if msg == "" {
		msg = resp.Status
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", core.ErrAuth, msg)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", core.ErrNotFound, msg)
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", core.ErrValidation, msg)
	default:
		return fmt.Errorf("%w: %s", core.ErrTransport, msg)
	}
}
