// ==========================================
// File: internal/dex/types.go
// ==========================================
package dex

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// NativeMint is the wrapped SOL mint used as the SOL leg of every swap.
var NativeMint = solana.SolMint

// Venue identifies one of the two swap executors.
type Venue int

const (
	VenueJupiter Venue = iota
	VenueRaydium
)

func (v Venue) String() string {
	switch v {
	case VenueJupiter:
		return "jupiter"
	case VenueRaydium:
		return "raydium"
	default:
		return fmt.Sprintf("venue(%d)", int(v))
	}
}

// SwapRequest describes one swap. Amount is in the smallest unit of InputMint.
type SwapRequest struct {
	InputMint   solana.PublicKey
	OutputMint  solana.PublicKey
	Amount      uint64
	SlippageBps uint16
}
