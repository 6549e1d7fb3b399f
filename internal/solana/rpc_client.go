package solana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"solana-pool-crawler/internal/observability"
	"solana-pool-crawler/internal/retry"
)

// DefaultTimeout is the HTTP client timeout for one RPC attempt.
const DefaultTimeout = 30 * time.Second

// Slot-skipped JSON-RPC error codes (SlotSkippedMessage and
// LongTermStorageSlotSkippedMessage).
const (
	rpcErrSlotSkipped         = -32007
	rpcErrLongTermSlotSkipped = -32009
)

// HTTPClient implements RPCClient using HTTP JSON-RPC 2.0.
type HTTPClient struct {
	endpoint  string
	client    *http.Client
	policy    retry.Policy
	requestID atomic.Uint64
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithRetryPolicy sets the retry/backoff schedule for all calls.
func WithRetryPolicy(p retry.Policy) ClientOption {
	return func(c *HTTPClient) {
		c.policy = p
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// NewHTTPClient creates a new Solana RPC HTTP client.
func NewHTTPClient(endpoint string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: DefaultTimeout},
		policy:   retry.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the RPC endpoint address this client is bound to.
func (c *HTTPClient) Endpoint() string {
	return c.endpoint
}

// rpcRequest represents a JSON-RPC 2.0 request.
type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

// rpcResponse represents a JSON-RPC 2.0 response.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError represents a JSON-RPC 2.0 error.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// isSlotSkipped reports whether the RPC error means the slot has no block.
func (e *rpcError) isSlotSkipped() bool {
	if e.Code == rpcErrSlotSkipped || e.Code == rpcErrLongTermSlotSkipped {
		return true
	}
	return strings.Contains(e.Message, "skipped")
}

// call performs a JSON-RPC call under the client's retry policy. Transport
// failures, 429s and malformed bodies are retried; RPC-level errors are
// terminal (the node answered, retrying cannot change the answer).
func (c *HTTPClient) call(ctx context.Context, method string, params []interface{}, result *json.RawMessage) error {
	reqID := c.requestID.Add(1)
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	attempt := 0
	return c.policy.Do(ctx, func() error {
		attempt++
		if attempt > 1 {
			observability.DefaultMetrics.RPCRetries.WithLabelValues(method).Inc()
		}
		started := time.Now()
		defer func() {
			observability.RecordRPCLatency(method, time.Since(started).Seconds())
		}()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return retry.Terminal(fmt.Errorf("create request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("http request: %w", err)
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("rate limited (429)")
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
		}

		var rpcResp rpcResponse
		if err := json.Unmarshal(respBody, &rpcResp); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}

		if rpcResp.Error != nil {
			if rpcResp.Error.isSlotSkipped() {
				return retry.Terminal(fmt.Errorf("%w: %s", ErrSlotSkipped, rpcResp.Error.Message))
			}
			return retry.Terminal(rpcResp.Error)
		}

		if result != nil {
			*result = rpcResp.Result
		}
		return nil
	})
}

// callInto performs a JSON-RPC call and unmarshals the result.
func (c *HTTPClient) callInto(ctx context.Context, method string, params []interface{}, result interface{}) error {
	var raw json.RawMessage
	if err := c.call(ctx, method, params, &raw); err != nil {
		return err
	}
	if result != nil && raw != nil {
		if err := json.Unmarshal(raw, result); err != nil {
			return fmt.Errorf("unmarshal result: %w", err)
		}
	}
	return nil
}

// GetSlot retrieves the latest slot.
func (c *HTTPClient) GetSlot(ctx context.Context) (int64, error) {
	var result int64
	if err := c.callInto(ctx, "getSlot", nil, &result); err != nil {
		return 0, err
	}
	return result, nil
}

// GetBlockTime retrieves the estimated production time of a slot.
// Returns ErrSlotSkipped for slots without a block, and the same for a
// null result (block time not recorded).
func (c *HTTPClient) GetBlockTime(ctx context.Context, slot int64) (int64, error) {
	var raw json.RawMessage
	if err := c.call(ctx, "getBlockTime", []interface{}{slot}, &raw); err != nil {
		return 0, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return 0, fmt.Errorf("%w: no block time for slot %d", ErrSlotSkipped, slot)
	}
	var ts int64
	if err := json.Unmarshal(raw, &ts); err != nil {
		return 0, fmt.Errorf("unmarshal result: %w", err)
	}
	return ts, nil
}

// GetBlock retrieves a block by slot number. Only transaction signatures
// are requested; the crawler uses them to seed pagination cursors.
func (c *HTTPClient) GetBlock(ctx context.Context, slot int64) (*Block, error) {
	params := []interface{}{
		slot,
		map[string]interface{}{
			"encoding":                       "json",
			"transactionDetails":             "signatures",
			"rewards":                        false,
			"maxSupportedTransactionVersion": 0,
		},
	}

	var raw json.RawMessage
	if err := c.call(ctx, "getBlock", params, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("%w: no block at slot %d", ErrSlotSkipped, slot)
	}

	var result getBlockResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("unmarshal result: %w", err)
	}

	return &Block{
		Slot:       slot,
		BlockTime:  result.BlockTime,
		Signatures: result.Signatures,
	}, nil
}

// getBlockResult is the raw RPC response for getBlock with
// transactionDetails=signatures.
type getBlockResult struct {
	BlockTime  *int64   `json:"blockTime"`
	Signatures []string `json:"signatures"`
}

// GetSignaturesForAddress retrieves signatures for an address with pagination.
func (c *HTTPClient) GetSignaturesForAddress(ctx context.Context, address string, opts *SignaturesOpts) ([]SignatureInfo, error) {
	config := make(map[string]interface{})
	if opts != nil {
		if opts.Before != "" {
			config["before"] = opts.Before
		}
		if opts.Until != "" {
			config["until"] = opts.Until
		}
		if opts.Limit > 0 {
			config["limit"] = opts.Limit
		}
	}

	params := []interface{}{address}
	if len(config) > 0 {
		params = append(params, config)
	}

	var result []getSignaturesResult
	if err := c.callInto(ctx, "getSignaturesForAddress", params, &result); err != nil {
		return nil, err
	}

	sigs := make([]SignatureInfo, len(result))
	for i, r := range result {
		sigs[i] = SignatureInfo{
			Signature: r.Signature,
			Slot:      r.Slot,
			BlockTime: r.BlockTime,
			Err:       r.Err,
		}
	}

	return sigs, nil
}

// getSignaturesResult is the raw RPC response item for getSignaturesForAddress.
type getSignaturesResult struct {
	Signature string      `json:"signature"`
	Slot      int64       `json:"slot"`
	BlockTime *int64      `json:"blockTime"`
	Err       interface{} `json:"err"`
}

// GetTransaction retrieves a transaction by signature, including pre/post
// token balances. Returns ErrNotFound for a null result.
func (c *HTTPClient) GetTransaction(ctx context.Context, signature string) (*Transaction, error) {
	params := []interface{}{
		signature,
		map[string]interface{}{
			"encoding":                       "json",
			"maxSupportedTransactionVersion": 0,
		},
	}

	var raw json.RawMessage
	if err := c.call(ctx, "getTransaction", params, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("%w: transaction %s", ErrNotFound, signature)
	}

	var result getTransactionResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("unmarshal result: %w", err)
	}

	tx := &Transaction{
		Slot:      result.Slot,
		Signature: signature,
		BlockTime: result.BlockTime,
	}

	if result.Meta != nil {
		tx.Meta = &TransactionMeta{
			Err:               result.Meta.Err,
			PreTokenBalances:  convertTokenBalances(result.Meta.PreTokenBalances),
			PostTokenBalances: convertTokenBalances(result.Meta.PostTokenBalances),
		}
	}

	return tx, nil
}

func convertTokenBalances(raw []rawTokenBalance) []TokenBalance {
	if len(raw) == 0 {
		return nil
	}
	balances := make([]TokenBalance, len(raw))
	for i, b := range raw {
		balances[i] = TokenBalance{
			Mint:     b.Mint,
			Owner:    b.Owner,
			UIAmount: b.UITokenAmount.UIAmount,
		}
	}
	return balances
}

// getTransactionResult is the raw RPC response for getTransaction.
type getTransactionResult struct {
	Slot      int64               `json:"slot"`
	BlockTime *int64              `json:"blockTime"`
	Meta      *getTransactionMeta `json:"meta"`
}

type getTransactionMeta struct {
	Err               interface{}       `json:"err"`
	PreTokenBalances  []rawTokenBalance `json:"preTokenBalances"`
	PostTokenBalances []rawTokenBalance `json:"postTokenBalances"`
}

type rawTokenBalance struct {
	Mint          string `json:"mint"`
	Owner         string `json:"owner"`
	UITokenAmount struct {
		UIAmount *float64 `json:"uiAmount"`
	} `json:"uiTokenAmount"`
}

var _ RPCClient = (*HTTPClient)(nil)
