// internal/market/fallback.go
package market

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// FallbackProvider опрашивает провайдеров по порядку; побеждает первый непустой ответ.
type FallbackProvider struct {
	providers []Provider
	logger    *zap.Logger
}

func NewFallbackProvider(logger *zap.Logger, providers ...Provider) *FallbackProvider {
	return &FallbackProvider{providers: providers, logger: logger.Named("market")}
}

func (f *FallbackProvider) Name() string { return "fallback" }

func (f *FallbackProvider) Pairs(ctx context.Context, mint solana.PublicKey) ([]Pair, error) {
	var errs error
	for _, p := range f.providers {
		pairs, err := p.Pairs(ctx, mint)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			f.logger.Warn("Market provider failed", zap.String("provider", p.Name()), zap.Error(err))
			errs = multierr.Append(errs, err)
			continue
		}
		if len(pairs) > 0 {
			return pairs, nil
		}
		f.logger.Info("Market provider returned no pairs", zap.String("provider", p.Name()))
	}
	if errs != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoPairs, errs)
	}
	return nil, ErrNoPairs
}
