// internal/blockchain/solbc/transaction/manager.go
package transaction

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-swap-bot/internal/blockchain"
	"github.com/rovshanmuradov/solana-swap-bot/internal/blockchain/solbc"
)

// Manager проводит транзакцию через подпись, симуляцию, отправку и подтверждение.
// Транзакция отправляется только если симуляция прошла без ошибки.
type Manager struct {
	client    blockchain.Client
	signer    Signer
	logger    *zap.Logger
	config    Config
	validator *Validator
	recorder  Recorder
}

type Option func(*Manager)

func WithRecorder(r Recorder) Option {
	return func(tm *Manager) {
		if r != nil {
			tm.recorder = r
		}
	}
}

func NewManager(client blockchain.Client, signer Signer, logger *zap.Logger, config Config, opts ...Option) *Manager {
	if config.SendAttempts == 0 {
		config.SendAttempts = 1
	}
	if config.Commitment == "" {
		config.Commitment = DefaultConfig().Commitment
	}
	tm := &Manager{
		client:    client,
		signer:    signer,
		logger:    logger.Named("tx-manager"),
		config:    config,
		validator: NewValidator(logger),
		recorder:  nopRecorder{},
	}
	for _, opt := range opts {
		opt(tm)
	}
	return tm
}

// SubmitOptions управляет подготовкой транзакции перед подписью.
type SubmitOptions struct {
	// RefreshBlockhash подставляет свежий finalized blockhash вместо полученного из API.
	RefreshBlockhash bool
}

// SignAndSend подписывает, симулирует, отправляет и дожидается подтверждения.
// Отклонённая симуляция возвращает ошибку, обёрнутую в ErrSimulationFailed.
func (tm *Manager) SignAndSend(ctx context.Context, tx *solana.Transaction, opts SubmitOptions) (*Status, error) {
	start := time.Now()

	if opts.RefreshBlockhash {
		hash, err := tm.client.GetRecentBlockhash(ctx)
		if err != nil {
			return nil, fmt.Errorf("get recent blockhash: %w", err)
		}
		tx.Message.RecentBlockhash = hash
	}

	if err := tm.signer.SignTransaction(tx); err != nil {
		return nil, err
	}
	if err := tm.validator.ValidateTransaction(tx); err != nil {
		tm.logger.Error("Transaction validation failed", zap.Error(err))
		return nil, err
	}

	units, err := tm.simulate(ctx, tx)
	if err != nil {
		return nil, err
	}

	signature, err := tm.sendWithRetry(ctx, tx)
	if err != nil {
		tm.logger.Error("Failed to send transaction", zap.Error(err))
		return nil, err
	}
	tm.logger.Info("Transaction sent", zap.String("signature", signature.String()))

	confirmStart := time.Now()
	err = tm.client.WaitForTransactionConfirmation(ctx, signature, tm.config.Commitment)
	tm.recorder.ObserveTxStage(StageConfirm, time.Since(confirmStart), err == nil)
	if err != nil {
		tm.logger.Error("Transaction confirmation failed",
			zap.String("signature", signature.String()),
			zap.Error(err))
		return nil, fmt.Errorf("confirm %s: %w", signature, err)
	}

	status := &Status{
		Signature:     signature,
		UnitsConsumed: units,
		Duration:      time.Since(start),
	}
	tm.logger.Info("Transaction confirmed",
		zap.String("signature", signature.String()),
		zap.Uint64("units_consumed", units),
		zap.Duration("duration", status.Duration))
	return status, nil
}

func (tm *Manager) simulate(ctx context.Context, tx *solana.Transaction) (uint64, error) {
	simStart := time.Now()
	result, err := tm.client.SimulateTransaction(ctx, tx)
	if err != nil {
		tm.recorder.ObserveTxStage(StageSimulate, time.Since(simStart), false)
		return 0, fmt.Errorf("simulate transaction: %w", err)
	}
	if result.Failed() {
		tm.recorder.ObserveTxStage(StageSimulate, time.Since(simStart), false)
		failure := solbc.AnalyzeSimulation(result)
		tm.logger.Warn("Simulation rejected transaction",
			zap.String("reason", failure.String()),
			zap.Strings("logs", failure.Logs))
		return 0, fmt.Errorf("%w: %s", ErrSimulationFailed, failure)
	}
	tm.recorder.ObserveTxStage(StageSimulate, time.Since(simStart), true)
	tm.logger.Debug("Simulation passed", zap.Uint64("units_consumed", result.UnitsConsumed))
	return result.UnitsConsumed, nil
}

func (tm *Manager) sendWithRetry(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	operation := func() (solana.Signature, error) {
		sendStart := time.Now()
		signature, err := tm.client.SendTransactionWithOpts(ctx, tx, blockchain.TransactionOptions{
			SkipPreflight:       tm.config.SkipPreflight,
			PreflightCommitment: tm.config.Commitment,
		})
		tm.recorder.ObserveTxStage(StageSend, time.Since(sendStart), err == nil)
		if err != nil {
			failure := solbc.AnalyzeRPCError(err)
			if strings.Contains(strings.ToLower(err.Error()), "simulation failed") {
				return solana.Signature{}, backoff.Permanent(fmt.Errorf("%w: preflight: %s", ErrSimulationFailed, failure))
			}
			tm.logger.Warn("Retrying transaction send", zap.String("reason", failure.String()))
			return solana.Signature{}, err
		}
		return signature, nil
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(tm.config.SendDelay)),
		backoff.WithMaxTries(tm.config.SendAttempts),
	)
}
