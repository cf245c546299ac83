// internal/blockchain/solbc/client.go
package solbc

import (
	"context"
	"errors"
	"fmt"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-swap-bot/internal/blockchain"
)

// ErrTokenAccountNotFound: у владельца нет токен-аккаунта для данного mint.
var ErrTokenAccountNotFound = errors.New("token account not found")

// Client – тонкий адаптер для взаимодействия с блокчейном Solana через solana-go.
type Client struct {
	rpc            *rpc.Client
	logger         *zap.Logger
	pollInterval   time.Duration
	confirmTimeout time.Duration
}

// Option настраивает Client.
type Option func(*Client)

// WithConfirmation задаёт интервал опроса и таймаут ожидания подтверждения.
func WithConfirmation(pollInterval, timeout time.Duration) Option {
	return func(c *Client) {
		if pollInterval > 0 {
			c.pollInterval = pollInterval
		}
		if timeout > 0 {
			c.confirmTimeout = timeout
		}
	}
}

// NewClient создаёт новый клиент, принимая RPC URL и логгер через dependency injection.
func NewClient(rpcURL string, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		rpc:            rpc.New(rpcURL),
		logger:         logger.Named("solbc-client"),
		pollInterval:   500 * time.Millisecond,
		confirmTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetRecentBlockhash получает последний finalized blockhash.
func (c *Client) GetRecentBlockhash(ctx context.Context) (solana.Hash, error) {
	result, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		c.logger.Error("GetRecentBlockhash error", zap.Error(err))
		return solana.Hash{}, err
	}
	return result.Value.Blockhash, nil
}

// GetSignatureStatuses получает статусы транзакций.
func (c *Client) GetSignatureStatuses(ctx context.Context, signatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	result, err := c.rpc.GetSignatureStatuses(ctx, false, signatures...)
	if err != nil {
		c.logger.Error("GetSignatureStatuses error", zap.Error(err))
		return nil, err
	}
	return result, nil
}

// SendTransactionWithOpts отправляет транзакцию с заданными опциями.
func (c *Client) SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts blockchain.TransactionOptions) (solana.Signature, error) {
	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       opts.SkipPreflight,
		PreflightCommitment: opts.PreflightCommitment,
	})
	if err != nil {
		c.logger.Error("SendTransactionWithOpts error", zap.Error(err))
		return solana.Signature{}, err
	}
	return sig, nil
}

// SimulateTransaction симулирует транзакцию и возвращает результат симуляции.
func (c *Client) SimulateTransaction(ctx context.Context, tx *solana.Transaction) (*blockchain.SimulationResult, error) {
	result, err := c.rpc.SimulateTransaction(ctx, tx)
	if err != nil {
		c.logger.Error("SimulateTransaction error", zap.Error(err))
		return nil, err
	}
	units := uint64(0)
	if result.Value.UnitsConsumed != nil {
		units = *result.Value.UnitsConsumed
	}
	return &blockchain.SimulationResult{
		Err:           result.Value.Err,
		Logs:          result.Value.Logs,
		UnitsConsumed: units,
	}, nil
}

// GetBalance получает баланс аккаунта.
func (c *Client) GetBalance(ctx context.Context, pubkey solana.PublicKey, commitment rpc.CommitmentType) (uint64, error) {
	result, err := c.rpc.GetBalance(ctx, pubkey, commitment)
	if err != nil {
		c.logger.Error("GetBalance error", zap.Error(err))
		return 0, err
	}
	return result.Value, nil
}

// tokenPrograms перечисляет программы, под которыми ищутся токен-аккаунты.
var tokenPrograms = []solana.PublicKey{solana.TokenProgramID, solana.Token2022ProgramID}

// FindTokenAccount ищет токен-аккаунт owner для mint среди аккаунтов SPL Token
// и Token-2022 и возвращает первый найденный.
func (c *Client) FindTokenAccount(ctx context.Context, owner, mint solana.PublicKey) (*blockchain.TokenAccount, error) {
	for _, program := range tokenPrograms {
		acc, err := c.findTokenAccount(ctx, owner, mint, program)
		if err != nil {
			return nil, err
		}
		if acc != nil {
			return acc, nil
		}
	}
	return nil, fmt.Errorf("%w: mint %s", ErrTokenAccountNotFound, mint)
}

func (c *Client) findTokenAccount(ctx context.Context, owner, mint, program solana.PublicKey) (*blockchain.TokenAccount, error) {
	result, err := c.rpc.GetTokenAccountsByOwner(ctx, owner,
		&rpc.GetTokenAccountsConfig{ProgramId: &program},
		&rpc.GetTokenAccountsOpts{
			Commitment: rpc.CommitmentConfirmed,
			Encoding:   solana.EncodingBase64,
		},
	)
	if err != nil {
		c.logger.Debug("GetTokenAccountsByOwner error",
			zap.String("owner", owner.String()),
			zap.String("program", program.String()),
			zap.Error(err))
		return nil, err
	}
	if result == nil {
		return nil, nil
	}

	for _, keyed := range result.Value {
		if keyed == nil || keyed.Account.Data == nil {
			continue
		}
		acc, err := DecodeTokenAccount(keyed.Account.Data.GetBinary())
		if err != nil {
			c.logger.Debug("skip undecodable token account",
				zap.String("account", keyed.Pubkey.String()),
				zap.Error(err))
			continue
		}
		if !acc.Mint.Equals(mint) {
			continue
		}
		return &blockchain.TokenAccount{
			Address: keyed.Pubkey,
			Mint:    acc.Mint,
			Owner:   acc.Owner,
			Amount:  acc.Amount,
		}, nil
	}
	return nil, nil
}

// DecodeTokenAccount декодирует данные SPL token аккаунта.
func DecodeTokenAccount(data []byte) (*token.Account, error) {
	var acc token.Account
	if err := bin.NewBinDecoder(data).Decode(&acc); err != nil {
		return nil, fmt.Errorf("decode token account: %w", err)
	}
	return &acc, nil
}

// WaitForTransactionConfirmation ожидает подтверждения транзакции (с простым polling‑механизмом).
// Транзакция, попавшая в блок с ошибкой, возвращает blockchain.ErrTransactionFailed.
func (c *Client) WaitForTransactionConfirmation(ctx context.Context, signature solana.Signature, commitment rpc.CommitmentType) error {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()
	timeout := time.After(c.confirmTimeout)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout:
			return fmt.Errorf("confirmation timeout for %s", signature)
		case <-ticker.C:
			statuses, err := c.GetSignatureStatuses(ctx, signature)
			if err != nil {
				c.logger.Warn("Error getting signature statuses", zap.Error(err))
				continue
			}
			if statuses == nil || len(statuses.Value) == 0 || statuses.Value[0] == nil {
				continue
			}
			status := statuses.Value[0]
			if status.Err != nil {
				return fmt.Errorf("%w: %s: %v", blockchain.ErrTransactionFailed, signature, status.Err)
			}
			if reached(status.ConfirmationStatus, commitment) {
				return nil
			}
		}
	}
}

func reached(status rpc.ConfirmationStatusType, want rpc.CommitmentType) bool {
	switch want {
	case rpc.CommitmentProcessed:
		return status != ""
	case rpc.CommitmentFinalized:
		return status == rpc.ConfirmationStatusFinalized
	default:
		return status == rpc.ConfirmationStatusConfirmed || status == rpc.ConfirmationStatusFinalized
	}
}

// Гарантируем, что Client реализует интерфейс blockchain.Client.
var _ blockchain.Client = (*Client)(nil)
