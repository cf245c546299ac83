package solbc

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/solana-swap-bot/internal/blockchain"
)

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

// newRPCServer отвечает на JSON-RPC методы заранее заданными результатами.
func newRPCServer(t *testing.T, results map[string]func() interface{}) *httptest.Server {
	t.Helper()
	handlers := make(map[string]func([]json.RawMessage) interface{}, len(results))
	for method, fn := range results {
		handlers[method] = func([]json.RawMessage) interface{} { return fn() }
	}
	return newRPCServerWithParams(t, handlers)
}

// newRPCServerWithParams передаёт обработчику параметры запроса.
func newRPCServerWithParams(t *testing.T, handlers map[string]func(params []json.RawMessage) interface{}) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		fn, ok := handlers[req.Method]
		if !ok {
			t.Errorf("unexpected rpc method %s", req.Method)
			http.Error(w, "unexpected", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  fn(req.Params),
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func encodeTokenAccount(t *testing.T, mint, owner solana.PublicKey, amount uint64) string {
	t.Helper()
	acc := token.Account{
		Mint:   mint,
		Owner:  owner,
		Amount: amount,
		State:  token.Initialized,
	}
	buf := new(bytes.Buffer)
	require.NoError(t, bin.NewBinEncoder(buf).Encode(&acc))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func keyedAccount(address, program solana.PublicKey, data string) map[string]interface{} {
	return map[string]interface{}{
		"pubkey": address.String(),
		"account": map[string]interface{}{
			"data":       []string{data, "base64"},
			"executable": false,
			"lamports":   2039280,
			"owner":      program.String(),
			"rentEpoch":  0,
		},
	}
}

func tokenAccountsResult(accounts ...interface{}) map[string]interface{} {
	return map[string]interface{}{
		"context": map[string]interface{}{"slot": 1},
		"value":   append([]interface{}{}, accounts...),
	}
}

// programFilter достаёт programId из параметров getTokenAccountsByOwner.
func programFilter(t *testing.T, params []json.RawMessage) string {
	t.Helper()
	require.GreaterOrEqual(t, len(params), 2)
	var filter struct {
		ProgramID string `json:"programId"`
	}
	require.NoError(t, json.Unmarshal(params[1], &filter))
	return filter.ProgramID
}

func TestFindTokenAccount(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	other := solana.NewWallet().PublicKey()
	target := solana.NewWallet().PublicKey()

	srv := newRPCServer(t, map[string]func() interface{}{
		"getTokenAccountsByOwner": func() interface{} {
			return tokenAccountsResult(
				keyedAccount(solana.NewWallet().PublicKey(), solana.TokenProgramID, encodeTokenAccount(t, other, owner, 7)),
				keyedAccount(target, solana.TokenProgramID, encodeTokenAccount(t, mint, owner, 500)),
			)
		},
	})

	client := NewClient(srv.URL, zaptest.NewLogger(t))
	acc, err := client.FindTokenAccount(context.Background(), owner, mint)
	require.NoError(t, err)
	assert.Equal(t, target, acc.Address)
	assert.Equal(t, uint64(500), acc.Amount)
	assert.Equal(t, mint, acc.Mint)

	_, err = client.FindTokenAccount(context.Background(), owner, solana.NewWallet().PublicKey())
	assert.ErrorIs(t, err, ErrTokenAccountNotFound)
}

func TestFindTokenAccountToken2022(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	target := solana.NewWallet().PublicKey()

	var programs []string
	srv := newRPCServerWithParams(t, map[string]func([]json.RawMessage) interface{}{
		"getTokenAccountsByOwner": func(params []json.RawMessage) interface{} {
			program := programFilter(t, params)
			programs = append(programs, program)
			if program != solana.Token2022ProgramID.String() {
				return tokenAccountsResult()
			}
			// аккаунт Token-2022 длиннее 165 байт из-за расширений
			raw, err := base64.StdEncoding.DecodeString(encodeTokenAccount(t, mint, owner, 42))
			require.NoError(t, err)
			raw = append(raw, make([]byte, 17)...)
			return tokenAccountsResult(
				keyedAccount(target, solana.Token2022ProgramID, base64.StdEncoding.EncodeToString(raw)),
			)
		},
	})

	client := NewClient(srv.URL, zaptest.NewLogger(t))
	acc, err := client.FindTokenAccount(context.Background(), owner, mint)
	require.NoError(t, err)
	assert.Equal(t, target, acc.Address)
	assert.Equal(t, uint64(42), acc.Amount)
	assert.Equal(t, []string{solana.TokenProgramID.String(), solana.Token2022ProgramID.String()}, programs)
}

func TestGetBalance(t *testing.T) {
	srv := newRPCServer(t, map[string]func() interface{}{
		"getBalance": func() interface{} {
			return map[string]interface{}{
				"context": map[string]interface{}{"slot": 1},
				"value":   1500000,
			}
		},
	})
	client := NewClient(srv.URL, zaptest.NewLogger(t))

	lamports, err := client.GetBalance(context.Background(), solana.NewWallet().PublicKey(), rpc.CommitmentConfirmed)
	require.NoError(t, err)
	assert.Equal(t, uint64(1500000), lamports)
}

func statusResult(status interface{}) func() interface{} {
	return func() interface{} {
		return map[string]interface{}{
			"context": map[string]interface{}{"slot": 1},
			"value":   []interface{}{status},
		}
	}
}

func TestWaitForTransactionConfirmation(t *testing.T) {
	srv := newRPCServer(t, map[string]func() interface{}{
		"getSignatureStatuses": statusResult(map[string]interface{}{
			"slot":               10,
			"confirmations":      nil,
			"err":                nil,
			"confirmationStatus": "confirmed",
		}),
	})
	client := NewClient(srv.URL, zaptest.NewLogger(t), WithConfirmation(10*time.Millisecond, time.Second))

	err := client.WaitForTransactionConfirmation(context.Background(), solana.Signature{1}, rpc.CommitmentConfirmed)
	assert.NoError(t, err)
}

func TestWaitForTransactionConfirmationFailedOnChain(t *testing.T) {
	srv := newRPCServer(t, map[string]func() interface{}{
		"getSignatureStatuses": statusResult(map[string]interface{}{
			"slot":               10,
			"confirmations":      nil,
			"err":                map[string]interface{}{"InstructionError": []interface{}{0, "InvalidAccountData"}},
			"confirmationStatus": "confirmed",
		}),
	})
	client := NewClient(srv.URL, zaptest.NewLogger(t), WithConfirmation(10*time.Millisecond, time.Second))

	err := client.WaitForTransactionConfirmation(context.Background(), solana.Signature{2}, rpc.CommitmentConfirmed)
	assert.ErrorIs(t, err, blockchain.ErrTransactionFailed)
}

func TestWaitForTransactionConfirmationTimeout(t *testing.T) {
	srv := newRPCServer(t, map[string]func() interface{}{
		"getSignatureStatuses": statusResult(nil),
	})
	client := NewClient(srv.URL, zaptest.NewLogger(t), WithConfirmation(5*time.Millisecond, 40*time.Millisecond))

	err := client.WaitForTransactionConfirmation(context.Background(), solana.Signature{3}, rpc.CommitmentConfirmed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "confirmation timeout")
}

func TestReachedCommitment(t *testing.T) {
	assert.True(t, reached(rpc.ConfirmationStatusProcessed, rpc.CommitmentProcessed))
	assert.False(t, reached(rpc.ConfirmationStatusProcessed, rpc.CommitmentConfirmed))
	assert.True(t, reached(rpc.ConfirmationStatusFinalized, rpc.CommitmentConfirmed))
	assert.False(t, reached(rpc.ConfirmationStatusConfirmed, rpc.CommitmentFinalized))
}
