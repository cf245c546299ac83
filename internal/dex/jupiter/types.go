// internal/dex/jupiter/types.go
package jupiter

import "encoding/json"

// QuoteParams contains the parameters for requesting a quote from Jupiter.
type QuoteParams struct {
	InputMint   string
	OutputMint  string
	Amount      uint64 // in smallest units (lamports/base units)
	SlippageBps uint16
	// RestrictIntermediateTokens limits routes to liquid intermediate tokens.
	RestrictIntermediateTokens bool
	// PlatformFeeBps is omitted from the request when zero.
	PlatformFeeBps uint16
}

// QuoteResponse contains the response from Jupiter's quote API.
type QuoteResponse struct {
	InputMint            string      `json:"inputMint"`
	InAmount             string      `json:"inAmount"`
	OutputMint           string      `json:"outputMint"`
	OutAmount            string      `json:"outAmount"`
	OtherAmountThreshold string      `json:"otherAmountThreshold"`
	SwapMode             string      `json:"swapMode"`
	SlippageBps          int         `json:"slippageBps"`
	PriceImpactPct       string      `json:"priceImpactPct"`
	RoutePlan            []RoutePlan `json:"routePlan"`
	ContextSlot          int64       `json:"contextSlot,omitempty"`
	TimeTaken            float64     `json:"timeTaken,omitempty"`

	// raw is the exact quote body; /swap expects it back unchanged.
	raw json.RawMessage
}

// Raw returns the quote exactly as received.
func (q *QuoteResponse) Raw() json.RawMessage {
	return q.raw
}

// FirstLabel returns the venue label of the first route hop, or "".
func (q *QuoteResponse) FirstLabel() string {
	if q == nil || len(q.RoutePlan) == 0 {
		return ""
	}
	return q.RoutePlan[0].SwapInfo.Label
}

// RoutePlan describes a single step in the swap route.
type RoutePlan struct {
	SwapInfo SwapInfo `json:"swapInfo"`
	Percent  int      `json:"percent"`
}

// SwapInfo contains details about a swap step.
type SwapInfo struct {
	AmmKey     string `json:"ammKey"`
	Label      string `json:"label"`
	InputMint  string `json:"inputMint"`
	OutputMint string `json:"outputMint"`
	InAmount   string `json:"inAmount"`
	OutAmount  string `json:"outAmount"`
	FeeAmount  string `json:"feeAmount"`
	FeeMint    string `json:"feeMint"`
}

// SwapParams contains the parameters for building a swap transaction.
type SwapParams struct {
	QuoteResponse             json.RawMessage `json:"quoteResponse"`
	UserPublicKey             string          `json:"userPublicKey"`
	WrapAndUnwrapSol          bool            `json:"wrapAndUnwrapSol"`
	DynamicComputeUnitLimit   bool            `json:"dynamicComputeUnitLimit"`
	PrioritizationFeeLamports uint64          `json:"prioritizationFeeLamports"`
}

// SwapResponse contains the response from Jupiter's swap API.
type SwapResponse struct {
	SwapTransaction           string `json:"swapTransaction"` // Base64-encoded versioned transaction
	LastValidBlockHeight      int64  `json:"lastValidBlockHeight"`
	PrioritizationFeeLamports int64  `json:"prioritizationFeeLamports,omitempty"`
	ComputeUnitLimit          int    `json:"computeUnitLimit,omitempty"`
}
