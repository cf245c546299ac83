// internal/blockchain/solbc/transaction/types.go
package transaction

import (
	"errors"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

var (
	ErrSimulationFailed   = errors.New("transaction simulation failed")
	ErrInvalidSignature   = errors.New("invalid transaction signature")
	ErrInvalidBlockhash   = errors.New("invalid blockhash")
	ErrInvalidInstruction = errors.New("invalid instruction")
)

type Config struct {
	SkipPreflight bool
	Commitment    rpc.CommitmentType
	// SendAttempts ограничивает повторную отправку уже подписанной транзакции.
	SendAttempts uint
	SendDelay    time.Duration
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Commitment:   rpc.CommitmentConfirmed,
		SendAttempts: 3,
		SendDelay:    500 * time.Millisecond,
	}
}

// Signer подписывает транзакцию ключом кошелька процесса.
type Signer interface {
	SignTransaction(tx *solana.Transaction) error
}

// Status describes a confirmed transaction.
type Status struct {
	Signature     solana.Signature
	UnitsConsumed uint64
	Duration      time.Duration
}
