// internal/dex/raydium/client.go
package raydium

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

// ErrAPIRejected is returned when the trade API answers with success=false.
var ErrAPIRejected = errors.New("raydium api rejected request")

// Client – клиент торгового API Raydium (transaction-v1).
type Client struct {
	http      *httpx.Client
	swapHost  string
	txVersion string
	logger    *zap.Logger
}

func NewClient(http *httpx.Client, swapHost, txVersion string, logger *zap.Logger) *Client {
	if txVersion == "" {
		txVersion = "V0"
	}
	return &Client{
		http:      http,
		swapHost:  strings.TrimRight(swapHost, "/"),
		txVersion: txVersion,
		logger:    logger.Named("raydium"),
	}
}

// TxVersion возвращает версию транзакций, запрашиваемую у API ("V0" или "LEGACY").
func (c *Client) TxVersion() string {
	return c.txVersion
}

// ComputeSwapBaseIn рассчитывает маршрут для точного входного количества.
func (c *Client) ComputeSwapBaseIn(ctx context.Context, inputMint, outputMint string, amount uint64, slippageBps uint16) (*ComputeResponse, error) {
	query := url.Values{
		"inputMint":   {inputMint},
		"outputMint":  {outputMint},
		"amount":      {strconv.FormatUint(amount, 10)},
		"slippageBps": {strconv.FormatUint(uint64(slippageBps), 10)},
		"txVersion":   {c.txVersion},
	}

	var raw json.RawMessage
	if err := c.http.GetJSON(ctx, c.swapHost+"/compute/swap-base-in", query, &raw); err != nil {
		return nil, fmt.Errorf("raydium compute: %w", err)
	}
	var resp ComputeResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("raydium compute: decode: %w", err)
	}
	resp.raw = raw
	if !resp.Success {
		return nil, fmt.Errorf("%w: compute: %s", ErrAPIRejected, resp.Msg)
	}

	if resp.Data != nil {
		c.logger.Debug("route computed",
			zap.String("input_amount", resp.Data.InputAmount),
			zap.String("output_amount", resp.Data.OutputAmount),
			zap.Float64("price_impact_pct", resp.Data.PriceImpactPct),
			zap.Int("hops", len(resp.Data.RoutePlan)))
	}
	return &resp, nil
}

// BuildSwapBaseIn запрашивает подписываемые транзакции для рассчитанного маршрута.
func (c *Client) BuildSwapBaseIn(ctx context.Context, req TransactionRequest) ([]string, error) {
	if req.TxVersion == "" {
		req.TxVersion = c.txVersion
	}
	var resp TransactionResponse
	if err := c.http.PostJSON(ctx, c.swapHost+"/transaction/swap-base-in", req, &resp); err != nil {
		return nil, fmt.Errorf("raydium transaction: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: transaction: %s", ErrAPIRejected, resp.Msg)
	}
	txs := make([]string, 0, len(resp.Data))
	for _, entry := range resp.Data {
		if entry.Transaction != "" {
			txs = append(txs, entry.Transaction)
		}
	}
	if len(txs) == 0 {
		return nil, fmt.Errorf("%w: no transactions returned", ErrAPIRejected)
	}
	return txs, nil
}
