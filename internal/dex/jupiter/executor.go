// internal/dex/jupiter/executor.go
package jupiter

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-swap-bot/internal/blockchain/solbc/transaction"
	"github.com/rovshanmuradov/solana-swap-bot/internal/dex"
)

// Executor выполняет свопы через агрегатор Jupiter.
type Executor struct {
	client            *Client
	submitter         dex.Submitter
	owner             solana.PublicKey
	prioritizationFee uint64
	logger            *zap.Logger
}

func NewExecutor(client *Client, submitter dex.Submitter, owner solana.PublicKey, prioritizationFeeLamports uint64, logger *zap.Logger) *Executor {
	return &Executor{
		client:            client,
		submitter:         submitter,
		owner:             owner,
		prioritizationFee: prioritizationFeeLamports,
		logger:            logger.Named("jupiter-executor"),
	}
}

func (e *Executor) GetName() string {
	return "Jupiter"
}

// Swap: quote -> /swap -> подпись, симуляция, отправка и подтверждение.
func (e *Executor) Swap(ctx context.Context, req dex.SwapRequest) (bool, error) {
	quote, err := e.client.Quote(ctx, QuoteParams{
		InputMint:   req.InputMint.String(),
		OutputMint:  req.OutputMint.String(),
		Amount:      req.Amount,
		SlippageBps: req.SlippageBps,
	})
	if err != nil {
		return false, err
	}

	swap, err := e.client.SwapTransaction(ctx, SwapParams{
		QuoteResponse:             quote.Raw(),
		UserPublicKey:             e.owner.String(),
		WrapAndUnwrapSol:          true,
		DynamicComputeUnitLimit:   true,
		PrioritizationFeeLamports: e.prioritizationFee,
	})
	if err != nil {
		return false, err
	}

	tx, err := dex.DecodeTransaction(swap.SwapTransaction)
	if err != nil {
		return false, err
	}

	status, err := e.submitter.SignAndSend(ctx, tx, transaction.SubmitOptions{})
	if ok, rerr := dex.SwapResult(err); !ok {
		return false, rerr
	}

	e.logger.Info("Jupiter swap confirmed",
		zap.String("signature", status.Signature.String()),
		zap.String("route", quote.FirstLabel()),
		zap.String("in_amount", quote.InAmount),
		zap.String("out_amount", quote.OutAmount))
	return true, nil
}

var _ dex.Executor = (*Executor)(nil)
