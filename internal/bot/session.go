// internal/bot/session.go
package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/solana-swap-bot/internal/blockchain/solbc"
	"github.com/rovshanmuradov/solana-swap-bot/internal/market"
	"github.com/rovshanmuradov/solana-swap-bot/internal/route"
	"github.com/rovshanmuradov/solana-swap-bot/internal/trade"
	"github.com/rovshanmuradov/solana-swap-bot/internal/ui"
)

// Prompter запрашивает ввод у пользователя.
type Prompter interface {
	Text(ctx context.Context, label, placeholder string, validate func(string) error) (string, error)
	Confirm(ctx context.Context, question string) (bool, error)
}

// Trader выполняет покупку и продажу.
type Trader interface {
	Buy(ctx context.Context, req trade.BuyRequest) (*trade.BuyReceipt, error)
	Sell(ctx context.Context, req trade.SellRequest) (*trade.SellReceipt, error)
}

// RoutePlanner строит предварительные маршруты покупки и продажи.
type RoutePlanner interface {
	Plan(ctx context.Context, mint solana.PublicKey, amount uint64) (*route.Plan, error)
}

// TokenMetadataSource возвращает десятичность и символ токена для вывода.
type TokenMetadataSource interface {
	GetTokenMetadata(ctx context.Context, mint solana.PublicKey) *solbc.TokenMetadata
}

// FundsReader возвращает баланс SOL кошелька в лампортах.
type FundsReader interface {
	ReadLamports(ctx context.Context) (uint64, error)
}

// SessionOptions приходят из флагов командной строки и конфигурации.
type SessionOptions struct {
	Mint            string
	AssumeYes       bool
	BuyAmount       uint64
	SlippageBps     uint16
	MinLiquidityUSD float64
}

// Session проводит один интерактивный сценарий: выбор токена, обзор рынков
// и маршрутов, покупка и продажа.
type Session struct {
	markets  market.Provider
	planner  RoutePlanner
	trader   Trader
	balances trade.BalanceReader
	prompter Prompter
	out      io.Writer
	logger   *zap.Logger
	opts     SessionOptions
	spinner  func(w io.Writer, suffix string) func()
	metadata TokenMetadataSource
	funds    FundsReader
}

func NewSession(
	markets market.Provider,
	planner RoutePlanner,
	trader Trader,
	balances trade.BalanceReader,
	prompter Prompter,
	out io.Writer,
	opts SessionOptions,
	logger *zap.Logger,
) *Session {
	return &Session{
		markets:  markets,
		planner:  planner,
		trader:   trader,
		balances: balances,
		prompter: prompter,
		out:      out,
		logger:   logger.Named("session"),
		opts:     opts,
		spinner:  ui.Spinner,
	}
}

// UseTokenMetadata включает вывод количеств в единицах токена.
func (s *Session) UseTokenMetadata(m TokenMetadataSource) {
	s.metadata = m
}

// UseFundsCheck включает проверку баланса SOL перед покупкой.
func (s *Session) UseFundsCheck(f FundsReader) {
	s.funds = f
}

func (s *Session) formatAmount(ctx context.Context, mint solana.PublicKey, amount uint64) string {
	if s.metadata == nil {
		return strconv.FormatUint(amount, 10)
	}
	meta := s.metadata.GetTokenMetadata(ctx, mint)
	if meta.Symbol != "" {
		return meta.Format(amount) + " " + meta.Symbol
	}
	return meta.Format(amount)
}

// Run возвращает ошибку только при отмене контекста или сбое ввода.
// Неудачная покупка или продажа печатается, и сценарий продолжается.
func (s *Session) Run(ctx context.Context) error {
	mint, err := s.resolveMint(ctx)
	if err != nil {
		return s.handlePromptErr(err)
	}

	analysis, plan, err := s.survey(ctx, mint)
	if err != nil {
		return err
	}
	s.render(analysis, plan)

	var target uint64
	ok, err := s.confirm(ctx, "Continue with the recommended automatic buy?")
	if err != nil {
		return s.handlePromptErr(err)
	}
	if ok {
		target, err = s.buy(ctx, mint, plan.BuyLabel(analysis))
		if err != nil {
			return err
		}
	} else {
		ui.Notice(s.out, "Buy cancelled")
	}

	ok, err = s.confirm(ctx, "Continue with the recommended automatic sell?")
	if err != nil {
		return s.handlePromptErr(err)
	}
	if !ok {
		ui.Notice(s.out, "Sell cancelled")
		return nil
	}
	return s.sell(ctx, mint, plan.SellLabel(analysis), target)
}

func (s *Session) resolveMint(ctx context.Context) (solana.PublicKey, error) {
	if s.opts.Mint != "" {
		mint, err := solana.PublicKeyFromBase58(s.opts.Mint)
		if err != nil {
			return solana.PublicKey{}, fmt.Errorf("invalid mint %q: %w", s.opts.Mint, err)
		}
		return mint, nil
	}
	value, err := s.prompter.Text(ctx, "Token mint", "base58 mint address", func(v string) error {
		_, err := solana.PublicKeyFromBase58(v)
		return err
	})
	if err != nil {
		return solana.PublicKey{}, err
	}
	return solana.PublicKeyFromBase58(value)
}

// survey запрашивает рынки и маршруты параллельно. Сбой любого источника
// даёт пустой результат, а не ошибку.
func (s *Session) survey(ctx context.Context, mint solana.PublicKey) (market.Analysis, *route.Plan, error) {
	stop := s.spinner(s.out, "Fetching markets and routes for "+mint.String())
	defer stop()

	var (
		pairs []market.Pair
		plan  *route.Plan
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pairs, err = s.markets.Pairs(gctx, mint)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warn("Market data unavailable", zap.Error(err))
			pairs = nil
		}
		return nil
	})
	g.Go(func() error {
		var err error
		plan, err = s.planner.Plan(gctx, mint, s.opts.BuyAmount)
		return err
	})
	if err := g.Wait(); err != nil {
		return market.Analysis{}, nil, err
	}
	if plan == nil {
		plan = &route.Plan{}
	}
	return market.Analyze(pairs, s.opts.MinLiquidityUSD), plan, nil
}

func (s *Session) render(analysis market.Analysis, plan *route.Plan) {
	if len(analysis.Pairs) == 0 {
		ui.Notice(s.out, "No markets above the liquidity floor")
	} else {
		ui.Print(s.out, ui.MarketTable(analysis.Pairs))
		if p, ok := analysis.Priciest(); ok {
			ui.Print(s.out, ui.PairLine("Highest price market", p))
		}
		if p, ok := analysis.Cheapest(); ok {
			ui.Print(s.out, ui.PairLine("Lowest price market", p))
		}
	}
	if plan.Buy != nil {
		ui.Print(s.out, ui.RouteTable("Recommended buy route", plan.Buy))
	}
	if plan.Sell != nil {
		ui.Print(s.out, ui.RouteTable("Recommended sell route", plan.Sell))
	}
}

// buy возвращает количество токена, полученное покупкой (по разнице балансов).
// Ноль означает, что покупки не было или прирост не удалось определить.
func (s *Session) buy(ctx context.Context, mint solana.PublicKey, label string) (uint64, error) {
	if !s.hasFunds(ctx) {
		return 0, nil
	}

	before, err := s.balances.ReadBalance(ctx, mint)
	if err != nil {
		before = 0
	}

	receipt, err := s.trader.Buy(ctx, trade.BuyRequest{
		VenueLabel:  label,
		Token:       mint,
		Amount:      s.opts.BuyAmount,
		SlippageBps: s.opts.SlippageBps,
	})
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		ui.Failure(s.out, "Buy failed: %v", err)
		return 0, nil
	}
	ui.Success(s.out, "Buy confirmed via %s after %d attempt(s)", receipt.Executor, receipt.Attempts)

	after, err := s.balances.ReadBalance(ctx, mint)
	if err != nil || after <= before {
		s.logger.Warn("Could not determine bought amount, sell will run without a target",
			zap.Uint64("before", before),
			zap.Uint64("after", after),
			zap.Error(err))
		return 0, nil
	}
	bought := after - before
	ui.Success(s.out, "Received %s", s.formatAmount(ctx, mint, bought))
	return bought, nil
}

func (s *Session) sell(ctx context.Context, mint solana.PublicKey, label string, target uint64) error {
	receipt, err := s.trader.Sell(ctx, trade.SellRequest{
		VenueLabel:  label,
		Token:       mint,
		Target:      target,
		SlippageBps: s.opts.SlippageBps,
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		ui.Failure(s.out, "Sell stopped: %v", err)
		return nil
	}
	ui.Success(s.out, "Sell finished via %s: %s sold in %d cycle(s)",
		receipt.Executor, s.formatAmount(ctx, mint, receipt.Sold), receipt.Cycles)
	return nil
}

// hasFunds сообщает, хватает ли SOL на покупку. Если баланс не читается,
// покупка всё равно запускается.
func (s *Session) hasFunds(ctx context.Context) bool {
	if s.funds == nil {
		return true
	}
	lamports, err := s.funds.ReadLamports(ctx)
	if err != nil {
		s.logger.Warn("Could not read SOL balance, buying anyway", zap.Error(err))
		return true
	}
	if lamports < s.opts.BuyAmount {
		ui.Failure(s.out, "Buy skipped: wallet holds %d lamports, buy needs %d", lamports, s.opts.BuyAmount)
		return false
	}
	return true
}

func (s *Session) confirm(ctx context.Context, question string) (bool, error) {
	if s.opts.AssumeYes {
		return true, nil
	}
	return s.prompter.Confirm(ctx, question)
}

func (s *Session) handlePromptErr(err error) error {
	if errors.Is(err, ui.ErrAborted) {
		ui.Notice(s.out, "Cancelled")
		return nil
	}
	return err
}
