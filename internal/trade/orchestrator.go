// internal/trade/orchestrator.go
package trade

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-swap-bot/internal/dex"
	"github.com/rovshanmuradov/solana-swap-bot/internal/logger"
)

// Orchestrator выполняет циклы покупки и продажи поверх двух исполнителей.
// Вызовы последовательны; один экземпляр не должен использоваться конкурентно.
type Orchestrator struct {
	selector *dex.Selector
	balances BalanceReader
	settings Settings
	logger   *zap.Logger
	recorder Recorder

	newBackOff func(delay time.Duration) backoff.BackOff
	sleep      func(ctx context.Context, d time.Duration) error
}

type Option func(*Orchestrator)

func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.recorder = r
		}
	}
}

func NewOrchestrator(selector *dex.Selector, balances BalanceReader, settings Settings, logger *zap.Logger, opts ...Option) *Orchestrator {
	defaults := DefaultSettings()
	if settings.MaxBuyAttempts == 0 {
		settings.MaxBuyAttempts = defaults.MaxBuyAttempts
	}
	if settings.MaxBalanceReads == 0 {
		settings.MaxBalanceReads = defaults.MaxBalanceReads
	}
	o := &Orchestrator{
		selector: selector,
		balances: balances,
		settings: settings,
		logger:   logger.Named("orchestrator"),
		recorder: nopRecorder{},
		newBackOff: func(d time.Duration) backoff.BackOff {
			return backoff.NewConstantBackOff(d)
		},
		sleep: sleepContext,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Buy вызывает исполнитель до MaxBuyAttempts раз с фиксированной паузой
// между попытками. Неуспех и ошибка исполнителя повторяются одинаково.
func (o *Orchestrator) Buy(ctx context.Context, req BuyRequest) (*BuyReceipt, error) {
	venue, executor := o.selector.Select(req.VenueLabel)
	log := logger.WithOperation(o.logger, directionBuy).With(
		zap.String("label", req.VenueLabel),
		zap.Stringer("venue", venue),
		zap.String("executor", executor.GetName()),
		zap.String("mint", req.Token.String()),
		zap.Uint64("amount", req.Amount),
		zap.Uint16("slippage_bps", req.SlippageBps))
	log.Info("Starting buy")

	swap := dex.SwapRequest{
		InputMint:   dex.NativeMint,
		OutputMint:  req.Token,
		Amount:      req.Amount,
		SlippageBps: req.SlippageBps,
	}

	var (
		attempts uint
		causes   error
	)
	operation := func() (struct{}, error) {
		if err := ctx.Err(); err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		attempts++
		outcome, err := o.execute(ctx, executor, venue, directionBuy, swap)
		if outcome == OutcomeSuccess {
			return struct{}{}, nil
		}
		if outcome == OutcomeFailure {
			err = ErrSwapRejected
		}
		cause := fmt.Errorf("attempt %d: %w", attempts, err)
		causes = multierr.Append(causes, cause)
		log.Warn("Buy attempt failed",
			zap.Uint("attempt", attempts),
			zap.Uint("max_attempts", o.settings.MaxBuyAttempts),
			zap.Stringer("outcome", outcome),
			zap.Error(err))
		return struct{}{}, cause
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(o.newBackOff(o.settings.RetryDelay)),
		backoff.WithMaxTries(o.settings.MaxBuyAttempts),
		backoff.WithMaxElapsedTime(0),
	)
	if err == nil {
		log.Info("Buy completed", zap.Uint("attempts", attempts))
		return &BuyReceipt{Venue: venue, Executor: executor.GetName(), Attempts: attempts}, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		log.Warn("Buy cancelled", zap.Uint("attempts", attempts))
		return nil, fmt.Errorf("buy cancelled after %d attempts: %w", attempts, ctxErr)
	}
	log.Error("Buy failed, attempts exhausted", zap.Uint("attempts", attempts), zap.Error(causes))
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrBuyAttemptsExhausted, attempts, causes)
}

// Sell продаёт весь текущий баланс токена, пока не будет продан Target
// (если задан) или пока баланс не станет нулевым (если Target не задан).
// После каждого незавершающего цикла выдерживается пауза RetryDelay.
func (o *Orchestrator) Sell(ctx context.Context, req SellRequest) (*SellReceipt, error) {
	venue, executor := o.selector.Select(req.VenueLabel)
	log := logger.WithOperation(o.logger, directionSell).With(
		zap.String("label", req.VenueLabel),
		zap.Stringer("venue", venue),
		zap.String("executor", executor.GetName()),
		zap.String("mint", req.Token.String()),
		zap.Uint64("target", req.Target),
		zap.Uint16("slippage_bps", req.SlippageBps))
	log.Info("Starting sell")

	receipt := &SellReceipt{Venue: venue, Executor: executor.GetName()}
	remaining := req.Target

	for {
		if err := ctx.Err(); err != nil {
			log.Warn("Sell cancelled", zap.Uint("cycles", receipt.Cycles))
			return receipt, err
		}
		if o.settings.MaxSellCycles > 0 && receipt.Cycles >= o.settings.MaxSellCycles {
			log.Error("Sell stopped, cycle limit reached", zap.Uint("cycles", receipt.Cycles))
			return receipt, fmt.Errorf("%w: %d cycles, %d sold", ErrSellCyclesExhausted, receipt.Cycles, receipt.Sold)
		}
		receipt.Cycles++
		o.recorder.RecordSellCycle()

		balance, err := o.readBalance(ctx, req, log)
		if err != nil {
			return receipt, err
		}

		if balance == 0 && req.Target == 0 {
			log.Info("Balance exhausted, sell finished",
				zap.Uint("cycles", receipt.Cycles),
				zap.Uint64("sold", receipt.Sold))
			return receipt, nil
		}

		receipt.Executions++
		outcome, err := o.execute(ctx, executor, venue, directionSell, dex.SwapRequest{
			InputMint:   req.Token,
			OutputMint:  dex.NativeMint,
			Amount:      balance,
			SlippageBps: req.SlippageBps,
		})
		switch outcome {
		case OutcomeSuccess:
			receipt.Sold += balance
			if req.Target > 0 {
				if balance >= remaining {
					log.Info("Sell target reached",
						zap.Uint("cycles", receipt.Cycles),
						zap.Uint64("sold", receipt.Sold))
					return receipt, nil
				}
				remaining -= balance
			}
			log.Info("Sell executed", zap.Uint64("amount", balance), zap.Uint64("remaining", remaining))
		case OutcomeFailure:
			log.Warn("Sell not confirmed", zap.Uint("cycle", receipt.Cycles), zap.Uint64("amount", balance))
		case OutcomeException:
			log.Error("Sell attempt error", zap.Uint("cycle", receipt.Cycles), zap.Error(err))
		}

		if err := o.sleep(ctx, o.settings.RetryDelay); err != nil {
			log.Warn("Sell cancelled", zap.Uint("cycles", receipt.Cycles))
			return receipt, err
		}
	}
}

// readBalance делает до MaxBalanceReads попыток чтения баланса.
func (o *Orchestrator) readBalance(ctx context.Context, req SellRequest, log *zap.Logger) (uint64, error) {
	var reads uint
	operation := func() (uint64, error) {
		if err := ctx.Err(); err != nil {
			return 0, backoff.Permanent(err)
		}
		reads++
		balance, err := o.balances.ReadBalance(ctx, req.Token)
		o.recorder.RecordBalanceRead(err == nil)
		if err != nil {
			log.Warn("Balance read failed, retrying",
				zap.Uint("read", reads),
				zap.Uint("max_reads", o.settings.MaxBalanceReads),
				zap.Error(err))
			return 0, err
		}
		log.Debug("Balance read", zap.Uint64("balance", balance))
		return balance, nil
	}

	balance, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(o.newBackOff(o.settings.RetryDelay)),
		backoff.WithMaxTries(o.settings.MaxBalanceReads),
		backoff.WithMaxElapsedTime(0),
	)
	if err == nil {
		return balance, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return 0, ctxErr
	}
	log.Error("Could not read balance, sell aborted", zap.Uint("reads", reads), zap.Error(err))
	return 0, fmt.Errorf("%w after %d reads: %w", ErrBalanceUnavailable, reads, err)
}

func (o *Orchestrator) execute(ctx context.Context, executor dex.Executor, venue dex.Venue, direction string, req dex.SwapRequest) (Outcome, error) {
	start := time.Now()
	ok, err := executor.Swap(ctx, req)
	outcome := Classify(ok, err)
	o.recorder.RecordSwap(direction, venue.String(), outcome.String(), time.Since(start))
	return outcome, err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
