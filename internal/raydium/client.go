// Package raydium queries the Raydium v3 HTTP API for liquidity pools of a
// mint pair. The API is an external collaborator: responses are taken at
// face value and malformed payloads make the caller skip the pair.
package raydium

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"solana-pool-crawler/internal/domain"
)

// DefaultBaseURL is the public Raydium v3 API.
const DefaultBaseURL = "https://api-v3.raydium.io"

const poolSearchPath = "/pools/info/mint"

// Locked query parameters: deepest pools first, one page.
const (
	poolType      = "all"
	poolSortField = "liquidity"
	sortType      = "desc"
	pageSize      = 100
)

// Client queries Raydium pool metadata.
type Client struct {
	baseURL string
	client  *http.Client
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API base URL (used by tests).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a Raydium API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// poolsResponse mirrors the nested data.data list of the v3 API.
type poolsResponse struct {
	Data struct {
		Data []poolEntry `json:"data"`
	} `json:"data"`
}

type poolEntry struct {
	ID    string    `json:"id"`
	MintA mintEntry `json:"mintA"`
	MintB mintEntry `json:"mintB"`
}

type mintEntry struct {
	Address string `json:"address"`
	Symbol  string `json:"symbol"`
}

// FetchPools returns the pools trading the given mint pair, deepest first.
// An empty list is not an error; the caller decides whether to skip the pair.
func (c *Client) FetchPools(ctx context.Context, mint1, mint2 string) ([]*domain.Pool, error) {
	params := url.Values{}
	params.Set("mint1", mint1)
	params.Set("mint2", mint2)
	params.Set("poolType", poolType)
	params.Set("poolSortField", poolSortField)
	params.Set("sortType", sortType)
	params.Set("pageSize", strconv.Itoa(pageSize))
	params.Set("page", "1")

	reqURL := c.baseURL + poolSearchPath + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query raydium api: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var parsed poolsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	pools := make([]*domain.Pool, 0, len(parsed.Data.Data))
	for _, entry := range parsed.Data.Data {
		if entry.ID == "" || entry.MintA.Symbol == "" || entry.MintB.Symbol == "" {
			continue
		}
		pools = append(pools, &domain.Pool{
			PoolID:  entry.ID,
			MintA:   entry.MintA.Address,
			SymbolA: entry.MintA.Symbol,
			MintB:   entry.MintB.Address,
			SymbolB: entry.MintB.Symbol,
		})
	}

	return pools, nil
}
