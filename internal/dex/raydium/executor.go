// internal/dex/raydium/executor.go
package raydium

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-swap-bot/internal/blockchain"
	"github.com/rovshanmuradov/solana-swap-bot/internal/blockchain/solbc"
	"github.com/rovshanmuradov/solana-swap-bot/internal/blockchain/solbc/transaction"
	"github.com/rovshanmuradov/solana-swap-bot/internal/dex"
)

// TokenAccountFinder ищет токен-аккаунт владельца для mint.
type TokenAccountFinder interface {
	FindTokenAccount(ctx context.Context, owner, mint solana.PublicKey) (*blockchain.TokenAccount, error)
}

// Executor выполняет свопы через торговое API Raydium.
type Executor struct {
	client           *Client
	accounts         TokenAccountFinder
	submitter        dex.Submitter
	owner            solana.PublicKey
	computeUnitPrice string
	logger           *zap.Logger
}

func NewExecutor(client *Client, accounts TokenAccountFinder, submitter dex.Submitter, owner solana.PublicKey, computeUnitPriceMicroLamports string, logger *zap.Logger) *Executor {
	return &Executor{
		client:           client,
		accounts:         accounts,
		submitter:        submitter,
		owner:            owner,
		computeUnitPrice: computeUnitPriceMicroLamports,
		logger:           logger.Named("raydium-executor"),
	}
}

func (e *Executor) GetName() string {
	return "Raydium"
}

// Swap рассчитывает маршрут, получает транзакции и проводит каждую по очереди.
// Успех только если подтверждены все транзакции.
func (e *Executor) Swap(ctx context.Context, req dex.SwapRequest) (bool, error) {
	wrapSol := req.InputMint.Equals(dex.NativeMint)
	unwrapSol := req.OutputMint.Equals(dex.NativeMint)

	var inputAccount, outputAccount string
	if !wrapSol {
		acc, err := e.accounts.FindTokenAccount(ctx, e.owner, req.InputMint)
		if errors.Is(err, solbc.ErrTokenAccountNotFound) {
			e.logger.Warn("No input token account, swap skipped", zap.String("mint", req.InputMint.String()))
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("find input token account: %w", err)
		}
		inputAccount = acc.Address.String()
	}
	if !unwrapSol {
		acc, err := e.accounts.FindTokenAccount(ctx, e.owner, req.OutputMint)
		switch {
		case err == nil:
			outputAccount = acc.Address.String()
		case errors.Is(err, solbc.ErrTokenAccountNotFound):
			// API создаст ATA сам.
		default:
			return false, fmt.Errorf("find output token account: %w", err)
		}
	}

	compute, err := e.client.ComputeSwapBaseIn(ctx, req.InputMint.String(), req.OutputMint.String(), req.Amount, req.SlippageBps)
	if err != nil {
		return false, err
	}

	encoded, err := e.client.BuildSwapBaseIn(ctx, TransactionRequest{
		ComputeUnitPriceMicroLamports: e.computeUnitPrice,
		SwapResponse:                  compute.Raw(),
		TxVersion:                     e.client.TxVersion(),
		Wallet:                        e.owner.String(),
		WrapSol:                       wrapSol,
		UnwrapSol:                     unwrapSol,
		InputAccount:                  inputAccount,
		OutputAccount:                 outputAccount,
	})
	if err != nil {
		return false, err
	}
	e.logger.Debug("Raydium transactions received", zap.Int("count", len(encoded)))

	// V0 транзакции получают свежий finalized blockhash перед подписью.
	opts := transaction.SubmitOptions{RefreshBlockhash: strings.EqualFold(e.client.TxVersion(), "V0")}
	for i, raw := range encoded {
		tx, err := dex.DecodeTransaction(raw)
		if err != nil {
			return false, err
		}
		status, err := e.submitter.SignAndSend(ctx, tx, opts)
		if ok, rerr := dex.SwapResult(err); !ok {
			e.logger.Warn("Raydium transaction not confirmed",
				zap.Int("index", i+1),
				zap.Int("total", len(encoded)),
				zap.Error(err))
			return false, rerr
		}
		e.logger.Info("Raydium transaction confirmed",
			zap.Int("index", i+1),
			zap.Int("total", len(encoded)),
			zap.String("signature", status.Signature.String()))
	}
	return true, nil
}

var _ dex.Executor = (*Executor)(nil)
