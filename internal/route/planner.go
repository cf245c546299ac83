// internal/route/planner.go
package route

import (
	"context"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-swap-bot/internal/dex"
	"github.com/rovshanmuradov/solana-swap-bot/internal/dex/jupiter"
	"github.com/rovshanmuradov/solana-swap-bot/internal/market"
)

// Quoter запрашивает котировку маршрута.
type Quoter interface {
	Quote(ctx context.Context, p jupiter.QuoteParams) (*jupiter.QuoteResponse, error)
}

// Settings задаёт параметры предварительных котировок.
type Settings struct {
	SlippageBps                uint16
	PlatformFeeBps             uint16
	RestrictIntermediateTokens bool
}

// Plan содержит маршрут покупки SOL→токен и обратный маршрут продажи.
// Любой из маршрутов может отсутствовать.
type Plan struct {
	Buy  *jupiter.QuoteResponse
	Sell *jupiter.QuoteResponse
}

// Planner строит предварительные маршруты через Jupiter quote API.
type Planner struct {
	quoter   Quoter
	settings Settings
	logger   *zap.Logger
}

func NewPlanner(quoter Quoter, settings Settings, logger *zap.Logger) *Planner {
	return &Planner{quoter: quoter, settings: settings, logger: logger.Named("route")}
}

// Plan котирует покупку на amount лампортов и продажу полученного количества.
// Ошибка котировки не прерывает работу: соответствующий маршрут остаётся nil.
// Ошибка возвращается только при отмене контекста.
func (p *Planner) Plan(ctx context.Context, mint solana.PublicKey, amount uint64) (*Plan, error) {
	plan := &Plan{}

	buy, err := p.quote(ctx, dex.NativeMint, mint, amount)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		p.logger.Warn("Buy route unavailable", zap.String("mint", mint.String()), zap.Error(err))
		return plan, nil
	}
	plan.Buy = buy

	out, err := strconv.ParseUint(buy.OutAmount, 10, 64)
	if err != nil || out == 0 {
		p.logger.Warn("Buy route has no output amount, sell route skipped", zap.String("out_amount", buy.OutAmount))
		return plan, nil
	}

	sell, err := p.quote(ctx, mint, dex.NativeMint, out)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		p.logger.Warn("Sell route unavailable", zap.String("mint", mint.String()), zap.Error(err))
		return plan, nil
	}
	plan.Sell = sell
	return plan, nil
}

func (p *Planner) quote(ctx context.Context, in, out solana.PublicKey, amount uint64) (*jupiter.QuoteResponse, error) {
	return p.quoter.Quote(ctx, jupiter.QuoteParams{
		InputMint:                  in.String(),
		OutputMint:                 out.String(),
		Amount:                     amount,
		SlippageBps:                p.settings.SlippageBps,
		RestrictIntermediateTokens: p.settings.RestrictIntermediateTokens,
		PlatformFeeBps:             p.settings.PlatformFeeBps,
	})
}

// BuyLabel возвращает площадку первого шага маршрута покупки,
// иначе тип самого дешёвого рынка.
func (p *Plan) BuyLabel(a market.Analysis) string {
	if p != nil {
		if label := p.Buy.FirstLabel(); label != "" {
			return label
		}
	}
	if pair, ok := a.Cheapest(); ok {
		return pair.Type
	}
	return ""
}

// SellLabel возвращает площадку первого шага маршрута продажи,
// иначе тип самого дорогого рынка.
func (p *Plan) SellLabel(a market.Analysis) string {
	if p != nil {
		if label := p.Sell.FirstLabel(); label != "" {
			return label
		}
	}
	if pair, ok := a.Priciest(); ok {
		return pair.Type
	}
	return ""
}
