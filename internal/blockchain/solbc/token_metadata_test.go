package solbc

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type countingMintReader struct {
	decimals uint8
	err      error
	calls    int
}

func (r *countingMintReader) GetMintDecimals(context.Context, solana.PublicKey) (uint8, error) {
	r.calls++
	return r.decimals, r.err
}

func TestTokenMetadataCache(t *testing.T) {
	reader := &countingMintReader{decimals: 6}
	cache := NewTokenMetadataCache(reader, zaptest.NewLogger(t))
	mint := solana.NewWallet().PublicKey()

	first := cache.GetTokenMetadata(context.Background(), mint)
	second := cache.GetTokenMetadata(context.Background(), mint)
	assert.Equal(t, uint8(6), first.Decimals)
	assert.Same(t, first, second)
	assert.Equal(t, 1, reader.calls)
}

func TestTokenMetadataFallsBackToKnownTokens(t *testing.T) {
	reader := &countingMintReader{err: errors.New("rpc down")}
	cache := NewTokenMetadataCache(reader, zaptest.NewLogger(t))

	sol := cache.GetTokenMetadata(context.Background(), solana.SolMint)
	assert.Equal(t, "SOL", sol.Symbol)
	assert.Equal(t, uint8(9), sol.Decimals)
	assert.Equal(t, "known", sol.Source)

	unknown := cache.GetTokenMetadata(context.Background(), solana.NewWallet().PublicKey())
	assert.Zero(t, unknown.Decimals)
	assert.Equal(t, "default", unknown.Source)
}

func TestTokenMetadataFormat(t *testing.T) {
	six := &TokenMetadata{Decimals: 6}
	assert.Equal(t, "1.5", six.Format(1_500_000))
	assert.Equal(t, "0.000052", six.Format(52))
	assert.Equal(t, "3", six.Format(3_000_000))
	assert.Equal(t, "0", six.Format(0))

	var none *TokenMetadata
	assert.Equal(t, "520", none.Format(520))
}

func TestGetMintDecimals(t *testing.T) {
	data := make([]byte, 82)
	data[mintDecimalsOffset] = 9
	srv := newRPCServer(t, map[string]func() interface{}{
		"getAccountInfo": func() interface{} {
			return map[string]interface{}{
				"context": map[string]interface{}{"slot": 1},
				"value": map[string]interface{}{
					"data":       []string{base64.StdEncoding.EncodeToString(data), "base64"},
					"executable": false,
					"lamports":   1461600,
					"owner":      solana.TokenProgramID.String(),
					"rentEpoch":  0,
				},
			}
		},
	})

	c := NewClient(srv.URL, zaptest.NewLogger(t))
	decimals, err := c.GetMintDecimals(context.Background(), solana.NewWallet().PublicKey())
	require.NoError(t, err)
	assert.Equal(t, uint8(9), decimals)
}
