package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/maintenance-service/internal/config"
)

// SheetClient implements RowStore against the hosted sheet HTTP API.
//
// Fault classification follows the remote contract: transport-level errors
// and 5xx/429 responses are transient, 404 on a lookup is ErrRowNotFound,
// every other non-2xx status is terminal.
type SheetClient struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *zap.Logger
}

// NewSheetClient builds a client from configuration.
func NewSheetClient(cfg config.SheetConfig, logger *zap.Logger) *SheetClient {
	timeout := cfg.RequestTimeout()
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &SheetClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type rowsResponse struct {
	Rows []Row `json:"rows"`
}

type appendRequest struct {
	Cells []string `json:"cells"`
}

type updateCellRequest struct {
	Value string `json:"value"`
}

// Rows fetches every data row of the table.
func (c *SheetClient) Rows(ctx context.Context, table string) ([]Row, error) {
	var out rowsResponse
	op := "sheet.rows"
	path := fmt.Sprintf("/tables/%s/rows", url.PathEscape(table))
	if err := c.do(ctx, op, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Rows, nil
}

// FindRow locates the row whose first column equals key exactly.
func (c *SheetClient) FindRow(ctx context.Context, table, key string) (Row, error) {
	var out Row
	op := "sheet.find_row"
	path := fmt.Sprintf("/tables/%s/rows/find?key=%s", url.PathEscape(table), url.QueryEscape(key))
	if err := c.do(ctx, op, http.MethodGet, path, nil, &out); err != nil {
		return Row{}, err
	}
	return out, nil
}

// AppendRow appends cells as a new row at the bottom of the table.
func (c *SheetClient) AppendRow(ctx context.Context, table string, cells []string) error {
	op := "sheet.append_row"
	path := fmt.Sprintf("/tables/%s/rows", url.PathEscape(table))
	return c.do(ctx, op, http.MethodPost, path, appendRequest{Cells: cells}, nil)
}

// UpdateCell writes a single cell. The remote API has no multi-cell write;
// callers composing several updates get no atomicity across them.
func (c *SheetClient) UpdateCell(ctx context.Context, table string, row, col int, value string) error {
	op := "sheet.update_cell"
	path := fmt.Sprintf("/tables/%s/rows/%d/cells/%d", url.PathEscape(table), row, col)
	return c.do(ctx, op, http.MethodPatch, path, updateCellRequest{Value: value}, nil)
}

// DeleteRow removes the row at the given 1-indexed position.
func (c *SheetClient) DeleteRow(ctx context.Context, table string, row int) error {
	op := "sheet.delete_row"
	path := fmt.Sprintf("/tables/%s/rows/%d", url.PathEscape(table), row)
	return c.do(ctx, op, http.MethodDelete, path, nil, nil)
}

// Ping verifies the remote API is reachable.
func (c *SheetClient) Ping(ctx context.Context) error {
	return c.do(ctx, "sheet.ping", http.MethodGet, "/ping", nil, nil)
}

func (c *SheetClient) do(ctx context.Context, op, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return NewTerminal(op, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return NewTerminal(op, err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return NewTransient(op, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return NewTerminal(op, ErrRowNotFound)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return NewTransient(op, fmt.Errorf("remote status %d", resp.StatusCode))
	case resp.StatusCode >= 400:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return NewTerminal(op, fmt.Errorf("remote status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail))))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return NewTerminal(op, fmt.Errorf("decode response: %w", err))
		}
	}
	return nil
}
