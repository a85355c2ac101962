// Package plaid is a small JSON client for the Plaid API endpoints the sync pipeline uses.
package plaid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultTimeout          = 60 * time.Second
	itemPath                = "/item/get"
	accountsPath            = "/accounts/get"
	transactionsPath        = "/transactions/get"
	institutionPath         = "/institutions/get_by_id"
	exchangePublicTokenPath = "/item/public_token/exchange"
	createPublicTokenPath   = "/item/public_token/create"
	apiVersion              = "2020-09-14"

	// transactionsPageSize is the largest page /transactions/get accepts.
	transactionsPageSize = 500
)

// Config configures a Client.
type Config struct {
	BaseURL      string
	ClientID     string
	Secret       string
	CountryCodes []string
	Timeout      time.Duration
}

// Client handles communication with the Plaid API
type Client struct {
	httpClient   *http.Client
	baseURL      string
	clientID     string
	secret       string
	countryCodes []string
}

// Ensure Client implements ClientInterface
var _ ClientInterface = (*Client)(nil)

// NewClient creates a new Plaid API client. Outgoing requests are traced.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	countryCodes := cfg.CountryCodes
	if len(countryCodes) == 0 {
		countryCodes = []string{"US"}
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL:      cfg.BaseURL,
		clientID:     cfg.ClientID,
		secret:       cfg.Secret,
		countryCodes: countryCodes,
	}
}

type accessTokenRequest struct {
	AccessToken string `json:"access_token"`
}

type transactionsOptions struct {
	Count  int `json:"count"`
	Offset int `json:"offset"`
}

type transactionsRequest struct {
	AccessToken string              `json:"access_token"`
	StartDate   string              `json:"start_date"`
	EndDate     string              `json:"end_date"`
	Options     transactionsOptions `json:"options"`
}

type institutionRequest struct {
	InstitutionID string   `json:"institution_id"`
	CountryCodes  []string `json:"country_codes"`
}

type publicTokenRequest struct {
	PublicToken string `json:"public_token"`
}

// GetItem fetches the item envelope for an access token.
func (c *Client) GetItem(ctx context.Context, accessToken string) (*ItemResponse, error) {
	var resp ItemResponse
	if err := c.post(ctx, itemPath, accessTokenRequest{AccessToken: accessToken}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetAccounts fetches all accounts of the item behind an access token.
func (c *Client) GetAccounts(ctx context.Context, accessToken string) (*AccountsResponse, error) {
	var resp AccountsResponse
	if err := c.post(ctx, accountsPath, accessTokenRequest{AccessToken: accessToken}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetTransactions fetches every transaction in [startDate, endDate] (YYYY-MM-DD),
// following offset pagination until total_transactions is reached.
func (c *Client) GetTransactions(ctx context.Context, accessToken, startDate, endDate string) (*TransactionsResponse, error) {
	req := transactionsRequest{
		AccessToken: accessToken,
		StartDate:   startDate,
		EndDate:     endDate,
		Options:     transactionsOptions{Count: transactionsPageSize},
	}

	var all *TransactionsResponse
	for {
		var page TransactionsResponse
		if err := c.post(ctx, transactionsPath, req, &page); err != nil {
			return nil, err
		}

		if all == nil {
			all = &page
		} else {
			all.Transactions = append(all.Transactions, page.Transactions...)
			all.TotalTransactions = page.TotalTransactions
		}

		// An empty page guards against a total that never materializes.
		if len(page.Transactions) == 0 || len(all.Transactions) >= all.TotalTransactions {
			return all, nil
		}
		req.Options.Offset = len(all.Transactions)
	}
}

// GetInstitutionByID resolves an institution id to its details.
func (c *Client) GetInstitutionByID(ctx context.Context, institutionID string) (*InstitutionResponse, error) {
	var resp InstitutionResponse
	req := institutionRequest{InstitutionID: institutionID, CountryCodes: c.countryCodes}
	if err := c.post(ctx, institutionPath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ExchangePublicToken trades a Link public token for a permanent access token.
func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (*ExchangeResponse, error) {
	var resp ExchangeResponse
	if err := c.post(ctx, exchangePublicTokenPath, publicTokenRequest{PublicToken: publicToken}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreatePublicToken creates a short-lived public token for re-linking an item.
func (c *Client) CreatePublicToken(ctx context.Context, accessToken string) (*PublicTokenResponse, error) {
	var resp PublicTokenResponse
	if err := c.post(ctx, createPublicTokenPath, accessTokenRequest{AccessToken: accessToken}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// post sends a JSON request and decodes a 200 response into out. Non-200
// responses are decoded into *Error when the body allows it.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("PLAID-CLIENT-ID", c.clientID)
	req.Header.Set("PLAID-SECRET", c.secret)
	req.Header.Set("Plaid-Version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr Error
		if err := json.Unmarshal(respBody, &apiErr); err != nil || apiErr.ErrorCode == "" {
			return fmt.Errorf("%s failed with status %d: %s", path, resp.StatusCode, string(respBody))
		}
		apiErr.StatusCode = resp.StatusCode
		return &apiErr
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s response: %w", path, err)
	}
	return nil
}
