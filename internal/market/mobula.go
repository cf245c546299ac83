// internal/market/mobula.go
package market

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-swap-bot/internal/httpx"
)

const mobulaPairsPath = "/api/1/market/pairs"

type mobulaResponse struct {
	Data struct {
		Pairs []mobulaPair `json:"pairs"`
	} `json:"data"`
}

type mobulaToken struct {
	Symbol  string `json:"symbol"`
	Address string `json:"address"`
}

type mobulaPair struct {
	Address   string      `json:"address"`
	Type      string      `json:"type"`
	Token0    mobulaToken `json:"token0"`
	Token1    mobulaToken `json:"token1"`
	Price     float64     `json:"price"`
	Liquidity float64     `json:"liquidity"`
}

// Mobula получает рынки токена из market/pairs API Mobula.
type Mobula struct {
	http    *httpx.Client
	baseURL string
	limit   int
	logger  *zap.Logger
}

func NewMobula(http *httpx.Client, baseURL string, limit int, logger *zap.Logger) *Mobula {
	if limit <= 0 {
		limit = 100
	}
	return &Mobula{
		http:    http,
		baseURL: strings.TrimRight(baseURL, "/"),
		limit:   limit,
		logger:  logger.Named("mobula"),
	}
}

func (m *Mobula) Name() string { return "mobula" }

func (m *Mobula) Pairs(ctx context.Context, mint solana.PublicKey) ([]Pair, error) {
	query := url.Values{
		"asset":      {mint.String()},
		"blockchain": {"solana"},
		"limit":      {strconv.Itoa(m.limit)},
	}
	var resp mobulaResponse
	if err := m.http.GetJSON(ctx, m.baseURL+mobulaPairsPath, query, &resp); err != nil {
		return nil, fmt.Errorf("mobula pairs: %w", err)
	}

	pairs := make([]Pair, 0, len(resp.Data.Pairs))
	for _, p := range resp.Data.Pairs {
		pairs = append(pairs, Pair{
			Address:      p.Address,
			Type:         p.Type,
			BaseSymbol:   p.Token0.Symbol,
			QuoteSymbol:  p.Token1.Symbol,
			PriceUSD:     p.Price,
			LiquidityUSD: p.Liquidity,
			Source:       m.Name(),
		})
	}
	m.logger.Debug("pairs fetched", zap.String("mint", mint.String()), zap.Int("count", len(pairs)))
	return pairs, nil
}
