// internal/dex/jupiter/client.go
package jupiter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-swap-bot/internal/httpx"
)

// ErrEmptySwapTransaction is returned when /swap answers without a transaction.
var ErrEmptySwapTransaction = errors.New("jupiter returned an empty swap transaction")

// Client talks to the Jupiter v6 quote and swap endpoints.
type Client struct {
	http    *httpx.Client
	baseURL string
	logger  *zap.Logger
}

func NewClient(http *httpx.Client, baseURL string, logger *zap.Logger) *Client {
	return &Client{
		http:    http,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.Named("jupiter"),
	}
}

// Quote requests the best route for the given amount.
func (c *Client) Quote(ctx context.Context, p QuoteParams) (*QuoteResponse, error) {
	query := url.Values{
		"inputMint":   {p.InputMint},
		"outputMint":  {p.OutputMint},
		"amount":      {strconv.FormatUint(p.Amount, 10)},
		"slippageBps": {strconv.FormatUint(uint64(p.SlippageBps), 10)},
	}
	if p.RestrictIntermediateTokens {
		query.Set("restrictIntermediateTokens", "true")
	}
	if p.PlatformFeeBps > 0 {
		query.Set("platformFeeBps", strconv.FormatUint(uint64(p.PlatformFeeBps), 10))
	}

	var raw json.RawMessage
	if err := c.http.GetJSON(ctx, c.baseURL+"/quote", query, &raw); err != nil {
		return nil, fmt.Errorf("jupiter quote: %w", err)
	}
	var quote QuoteResponse
	if err := json.Unmarshal(raw, &quote); err != nil {
		return nil, fmt.Errorf("jupiter quote: decode: %w", err)
	}
	quote.raw = raw

	c.logger.Debug("quote received",
		zap.String("in_amount", quote.InAmount),
		zap.String("out_amount", quote.OutAmount),
		zap.String("route", quote.FirstLabel()),
		zap.Int("hops", len(quote.RoutePlan)))
	return &quote, nil
}

// SwapTransaction asks Jupiter to build a transaction for a previously fetched quote.
func (c *Client) SwapTransaction(ctx context.Context, p SwapParams) (*SwapResponse, error) {
	var resp SwapResponse
	if err := c.http.PostJSON(ctx, c.baseURL+"/swap", p, &resp); err != nil {
		return nil, fmt.Errorf("jupiter swap: %w", err)
	}
	if resp.SwapTransaction == "" {
		return nil, ErrEmptySwapTransaction
	}
	return &resp, nil
}
