// internal/market/types.go
package market

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
)

// ErrNoPairs is returned by FallbackProvider when no provider returned a pair.
var ErrNoPairs = errors.New("no market pairs found")

// Pair описывает один рынок (пул) токена.
type Pair struct {
	Address      string
	Type         string // тип рынка или DEX, например "Raydium" или "orca"
	BaseSymbol   string
	QuoteSymbol  string
	PriceUSD     float64
	LiquidityUSD float64
	Source       string
}

// Provider возвращает рынки токена.
type Provider interface {
	Name() string
	Pairs(ctx context.Context, mint solana.PublicKey) ([]Pair, error)
}
