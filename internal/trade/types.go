// internal/trade/types.go
package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/solana-swap-bot/internal/dex"
)

var (
	ErrBuyAttemptsExhausted = errors.New("buy attempts exhausted")
	ErrBalanceUnavailable   = errors.New("token balance unavailable")
	ErrSellCyclesExhausted  = errors.New("sell cycles exhausted")
	// ErrSwapRejected marks an attempt the executor reported as unsuccessful without an error.
	ErrSwapRejected = errors.New("swap not confirmed")
)

const (
	directionBuy  = "buy"
	directionSell = "sell"
)

// Outcome классифицирует результат одного вызова исполнителя.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeFailure
	OutcomeException
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	case OutcomeException:
		return "exception"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Classify maps an executor return to an outcome. An error always wins.
func Classify(ok bool, err error) Outcome {
	switch {
	case err != nil:
		return OutcomeException
	case ok:
		return OutcomeSuccess
	default:
		return OutcomeFailure
	}
}

// BuyRequest описывает покупку токена за Amount лампортов.
type BuyRequest struct {
	VenueLabel  string
	Token       solana.PublicKey
	Amount      uint64
	SlippageBps uint16
}

// SellRequest описывает продажу всего баланса токена.
// Target == 0 означает продажу до нулевого баланса.
type SellRequest struct {
	VenueLabel  string
	Token       solana.PublicKey
	Target      uint64
	SlippageBps uint16
}

type BuyReceipt struct {
	Venue dex.Venue
	// Executor is the display name of the executor that ran the swap.
	Executor string
	Attempts uint
}

type SellReceipt struct {
	Venue    dex.Venue
	Executor string
	// Cycles counts loop iterations, Executions counts executor invocations.
	Cycles     uint
	Executions uint
	Sold       uint64
}

// BalanceReader возвращает баланс токена кошелька в минимальных единицах.
type BalanceReader interface {
	ReadBalance(ctx context.Context, mint solana.PublicKey) (uint64, error)
}

// Recorder receives orchestrator metrics.
type Recorder interface {
	RecordSwap(direction, venue, outcome string, duration time.Duration)
	RecordBalanceRead(ok bool)
	RecordSellCycle()
}

type nopRecorder struct{}

func (nopRecorder) RecordSwap(string, string, string, time.Duration) {}
func (nopRecorder) RecordBalanceRead(bool)                           {}
func (nopRecorder) RecordSellCycle()                                 {}

// Settings задаёт лимиты повторов оркестратора.
type Settings struct {
	MaxBuyAttempts  uint
	MaxBalanceReads uint
	RetryDelay      time.Duration
	// MaxSellCycles == 0 не ограничивает число циклов продажи.
	MaxSellCycles uint
}

func DefaultSettings() Settings {
	return Settings{
		MaxBuyAttempts:  5,
		MaxBalanceReads: 5,
		RetryDelay:      time.Second,
	}
}
