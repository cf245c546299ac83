// =============================
// File: internal/dex/dex.go
// =============================
package dex

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/solana-swap-bot/internal/blockchain/solbc/transaction"
)

// Executor выполняет один своп через конкретную площадку.
//
// Swap возвращает true, если транзакция подтверждена; false, если площадка
// или симуляция её отклонили; ошибку при сбое сети, API или подписи.
type Executor interface {
	// GetName возвращает название площадки.
	GetName() string
	Swap(ctx context.Context, req SwapRequest) (bool, error)
}

// Submitter подписывает, симулирует, отправляет и подтверждает транзакцию.
type Submitter interface {
	SignAndSend(ctx context.Context, tx *solana.Transaction, opts transaction.SubmitOptions) (*transaction.Status, error)
}
