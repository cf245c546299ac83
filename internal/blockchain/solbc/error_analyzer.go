package solbc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"

	"github.com/rovshanmuradov/solana-swap-bot/internal/blockchain"
)

// AnchorError represents an error from Anchor framework
type AnchorError struct {
	Code int
	Name string
	Msg  string
}

// Failure is a compact description of why a transaction was rejected.
type Failure struct {
	Reason string
	Anchor *AnchorError
	Logs   []string
}

func (f Failure) String() string {
	if f.Anchor != nil {
		return fmt.Sprintf("%s (anchor %s #%d: %s)", f.Reason, f.Anchor.Name, f.Anchor.Code, f.Anchor.Msg)
	}
	return f.Reason
}

// AnalyzeSimulation extracts the failure reason from a rejected simulation.
func AnalyzeSimulation(result *blockchain.SimulationResult) Failure {
	if result == nil {
		return Failure{Reason: "no simulation result"}
	}
	f := Failure{Reason: fmt.Sprintf("%v", result.Err), Logs: result.Logs}
	f.Anchor, f.Reason = scanLogs(result.Logs, f.Reason)
	return f
}

// AnalyzeRPCError extracts simulation details embedded in a preflight RPC error.
func AnalyzeRPCError(err error) Failure {
	if err == nil {
		return Failure{Reason: "no error"}
	}
	var rpcErr *jsonrpc.RPCError
	if !errors.As(err, &rpcErr) {
		return Failure{Reason: err.Error()}
	}

	f := Failure{Reason: rpcErr.Message}
	dataMap, ok := rpcErr.Data.(map[string]interface{})
	if !ok {
		return f
	}
	if logs, ok := dataMap["logs"].([]interface{}); ok {
		for _, entry := range logs {
			if s, ok := entry.(string); ok {
				f.Logs = append(f.Logs, s)
			}
		}
	}
	if instrErr, ok := dataMap["err"]; ok && instrErr != nil {
		f.Reason = fmt.Sprintf("%s: %v", rpcErr.Message, instrErr)
	}
	f.Anchor, f.Reason = scanLogs(f.Logs, f.Reason)
	return f
}

func scanLogs(logs []string, reason string) (*AnchorError, string) {
	for _, line := range logs {
		if strings.Contains(line, "AnchorError occurred") {
			a := parseAnchorErrorLog(line)
			return &a, reason
		}
	}
	// Программы без Anchor пишут "Program log: Error: ...".
	for _, line := range logs {
		if idx := strings.Index(line, "Program log: Error: "); idx >= 0 {
			return nil, strings.TrimSpace(line[idx+len("Program log: Error: "):])
		}
	}
	return nil, reason
}

// parseAnchorErrorLog parses an Anchor error log string
// Example: "Program log: AnchorError occurred. Error Code: SlippageExceeded. Error Number: 6001. Error Message: Slippage tolerance exceeded."
func parseAnchorErrorLog(logStr string) AnchorError {
	result := AnchorError{}
	if v, ok := fieldAfter(logStr, "Error Number:"); ok {
		fmt.Sscanf(v, "%d", &result.Code)
	}
	if v, ok := fieldAfter(logStr, "Error Code:"); ok {
		result.Name = v
	}
	if v, ok := fieldAfter(logStr, "Error Message:"); ok {
		result.Msg = v
	}
	return result
}

func fieldAfter(s, marker string) (string, bool) {
	_, rest, found := strings.Cut(s, marker)
	if !found {
		return "", false
	}
	value, _, _ := strings.Cut(rest, ".")
	return strings.TrimSpace(value), true
}
