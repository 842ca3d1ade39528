// Package remote talks to the back-office API on behalf of a terminal.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/attar/internal/catalog"
	"github.com/MrJamesThe3rd/attar/internal/customer"
	"github.com/MrJamesThe3rd/attar/internal/transaction"
)

type tokenSource interface {
	Token(terminalID string) (string, error)
}

type Client struct {
	baseURL    string
	terminalID string
	tokens     tokenSource
	client     *http.Client
}

func NewClient(baseURL, terminalID string, tokens tokenSource) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		terminalID: terminalID,
		tokens:     tokens,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

// Ping checks that the back office answers its health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code %d from health check", resp.StatusCode)
	}

	return nil
}

// PushTransaction uploads one transaction. The back office ingests by ID, so
// a conflict means it already holds the record.
func (c *Client) PushTransaction(ctx context.Context, tx *transaction.Transaction) error {
	body, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("encoding transaction %s: %w", tx.ID, err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/v1/sync/transactions", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusConflict:
		return nil
	default:
		return statusError(resp)
	}
}

func (c *Client) FetchCatalog(ctx context.Context) ([]catalog.Item, error) {
	var items []catalog.Item
	if err := c.getJSON(ctx, "/api/v1/catalog", &items); err != nil {
		return nil, fmt.Errorf("fetching catalog: %w", err)
	}

	return items, nil
}

func (c *Client) FetchCustomers(ctx context.Context) ([]customer.Customer, error) {
	var customers []customer.Customer
	if err := c.getJSON(ctx, "/api/v1/customers", &customers); err != nil {
		return nil, fmt.Errorf("fetching customers: %w", err)
	}

	return customers, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.tokens != nil {
		token, err := c.tokens.Token(c.terminalID)
		if err != nil {
			return nil, fmt.Errorf("issuing token: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	return resp, nil
}

func statusError(resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
}
