// internal/dex/raydium/types.go
package raydium

import "encoding/json"

// ComputeResponse is the /compute/swap-base-in answer. The whole body is sent
// back to /transaction/swap-base-in as swapResponse.
type ComputeResponse struct {
	ID      string       `json:"id"`
	Success bool         `json:"success"`
	Version string       `json:"version"`
	Msg     string       `json:"msg,omitempty"`
	Data    *ComputeData `json:"data,omitempty"`

	raw json.RawMessage
}

// Raw returns the compute body exactly as received.
func (r *ComputeResponse) Raw() json.RawMessage {
	return r.raw
}

// ComputeData содержит рассчитанный маршрут свопа.
type ComputeData struct {
	SwapType             string      `json:"swapType"`
	InputMint            string      `json:"inputMint"`
	InputAmount          string      `json:"inputAmount"`
	OutputMint           string      `json:"outputMint"`
	OutputAmount         string      `json:"outputAmount"`
	OtherAmountThreshold string      `json:"otherAmountThreshold"`
	SlippageBps          int         `json:"slippageBps"`
	PriceImpactPct       float64     `json:"priceImpactPct"`
	RoutePlan            []RouteStep `json:"routePlan"`
}

// RouteStep is one pool hop of a Raydium route.
type RouteStep struct {
	PoolID     string `json:"poolId"`
	InputMint  string `json:"inputMint"`
	OutputMint string `json:"outputMint"`
	FeeMint    string `json:"feeMint"`
	FeeRate    int    `json:"feeRate"`
	FeeAmount  string `json:"feeAmount"`
}

// TransactionRequest is the /transaction/swap-base-in body.
type TransactionRequest struct {
	ComputeUnitPriceMicroLamports string          `json:"computeUnitPriceMicroLamports"`
	SwapResponse                  json.RawMessage `json:"swapResponse"`
	TxVersion                     string          `json:"txVersion"`
	Wallet                        string          `json:"wallet"`
	WrapSol                       bool            `json:"wrapSol"`
	UnwrapSol                     bool            `json:"unwrapSol"`
	InputAccount                  string          `json:"inputAccount,omitempty"`
	OutputAccount                 string          `json:"outputAccount,omitempty"`
}

// TransactionResponse содержит одну или несколько base64 транзакций.
type TransactionResponse struct {
	ID      string             `json:"id"`
	Success bool               `json:"success"`
	Version string             `json:"version"`
	Msg     string             `json:"msg,omitempty"`
	Data    []TransactionEntry `json:"data"`
}

type TransactionEntry struct {
	Transaction string `json:"transaction"`
}
