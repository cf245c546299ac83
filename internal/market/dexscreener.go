// internal/market/dexscreener.go
package market

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-swap-bot/internal/httpx"
)

const solanaChain = "solana"

// DexScreenerResponse представляет основную структуру ответа
type DexScreenerResponse struct {
	SchemaVersion string     `json:"schemaVersion"`
	Pairs         []PairInfo `json:"pairs"`
}

// PairInfo содержит информацию о паре
type PairInfo struct {
	ChainID     string        `json:"chainId"`
	DexID       string        `json:"dexId"`
	PairAddress string        `json:"pairAddress"`
	BaseToken   TokenInfo     `json:"baseToken"`
	QuoteToken  TokenInfo     `json:"quoteToken"`
	PriceNative string        `json:"priceNative"`
	PriceUSD    string        `json:"priceUsd"`
	Liquidity   LiquidityInfo `json:"liquidity"`
}

type TokenInfo struct {
	Address string `json:"address"`
	Symbol  string `json:"symbol"`
}

type LiquidityInfo struct {
	USD   float64 `json:"usd"`
	Base  float64 `json:"base"`
	Quote float64 `json:"quote"`
}

// DexScreener получает рынки токена из DexScreener API.
type DexScreener struct {
	http    *httpx.Client
	baseURL string
	logger  *zap.Logger
}

func NewDexScreener(http *httpx.Client, baseURL string, logger *zap.Logger) *DexScreener {
	return &DexScreener{
		http:    http,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.Named("dexscreener"),
	}
}

func (s *DexScreener) Name() string { return "dexscreener" }

// Pairs возвращает только пары сети Solana.
func (s *DexScreener) Pairs(ctx context.Context, mint solana.PublicKey) ([]Pair, error) {
	var resp DexScreenerResponse
	if err := s.http.GetJSON(ctx, fmt.Sprintf("%s/latest/dex/tokens/%s", s.baseURL, mint), nil, &resp); err != nil {
		return nil, fmt.Errorf("dexscreener pairs: %w", err)
	}

	pairs := make([]Pair, 0, len(resp.Pairs))
	for _, p := range resp.Pairs {
		if p.ChainID != solanaChain {
			continue
		}
		price, err := strconv.ParseFloat(p.PriceUSD, 64)
		if err != nil {
			s.logger.Debug("skipping pair without usd price",
				zap.String("pair_address", p.PairAddress),
				zap.String("price_usd", p.PriceUSD))
			continue
		}
		pairs = append(pairs, Pair{
			Address:      p.PairAddress,
			Type:         p.DexID,
			BaseSymbol:   p.BaseToken.Symbol,
			QuoteSymbol:  p.QuoteToken.Symbol,
			PriceUSD:     price,
			LiquidityUSD: p.Liquidity.USD,
			Source:       s.Name(),
		})
	}
	s.logger.Debug("pairs fetched", zap.String("mint", mint.String()), zap.Int("count", len(pairs)))
	return pairs, nil
}
