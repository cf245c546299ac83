// internal/dex/utils.go
package dex

import (
	"encoding/base64"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/solana-swap-bot/internal/blockchain/solbc/transaction"
)

// DecodeTransaction разбирает base64 транзакцию (legacy или v0), полученную из API.
func DecodeTransaction(encoded string) (*solana.Transaction, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode base64 transaction: %w", err)
	}
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, fmt.Errorf("deserialize transaction: %w", err)
	}
	return tx, nil
}

// SwapResult переводит ошибку конвейера отправки в результат Executor.Swap:
// отказ симуляции означает неуспех без ошибки.
func SwapResult(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, transaction.ErrSimulationFailed):
		return false, nil
	default:
		return false, err
	}
}
