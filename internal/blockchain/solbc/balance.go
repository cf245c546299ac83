package solbc

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-swap-bot/internal/blockchain"
)

// BalanceReader читает баланс токена кошелька в минимальных единицах.
type BalanceReader struct {
	client blockchain.Client
	owner  solana.PublicKey
	logger *zap.Logger
}

func NewBalanceReader(client blockchain.Client, owner solana.PublicKey, logger *zap.Logger) *BalanceReader {
	return &BalanceReader{
		client: client,
		owner:  owner,
		logger: logger.Named("balance-reader"),
	}
}

// ReadBalance возвращает ErrTokenAccountNotFound, если у кошелька нет аккаунта
// для mint; нулевой баланс существующего аккаунта не является ошибкой.
func (r *BalanceReader) ReadBalance(ctx context.Context, mint solana.PublicKey) (uint64, error) {
	acc, err := r.client.FindTokenAccount(ctx, r.owner, mint)
	if err != nil {
		return 0, err
	}
	r.logger.Debug("token balance",
		zap.String("mint", mint.String()),
		zap.String("account", acc.Address.String()),
		zap.Uint64("amount", acc.Amount))
	return acc.Amount, nil
}

// ReadLamports возвращает баланс SOL кошелька в лампортах.
func (r *BalanceReader) ReadLamports(ctx context.Context) (uint64, error) {
	lamports, err := r.client.GetBalance(ctx, r.owner, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, err
	}
	r.logger.Debug("SOL balance", zap.Uint64("lamports", lamports))
	return lamports, nil
}
