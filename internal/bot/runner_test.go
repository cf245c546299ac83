package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/solana-swap-bot/internal/config"
	"github.com/rovshanmuradov/solana-swap-bot/internal/wallet"
)

func validConfig() *config.Config {
	return &config.Config{
		RPCURL:     "https://api.mainnet-beta.solana.com",
		PrivateKey: solana.NewWallet().PrivateKey.String(),
		Trade: config.TradeConfig{
			BuyAmountLamports: config.DefaultBuyAmountLamports,
			SlippageBps:       config.DefaultSlippageBps,
			MaxBuyAttempts:    config.DefaultMaxBuyAttempts,
			MaxBalanceReads:   config.DefaultMaxBalanceReads,
			RetryDelay:        config.DefaultRetryDelay,
		},
		Tx: config.TxConfig{Commitment: "confirmed", ConfirmTimeout: time.Minute, PollInterval: time.Second},
		Routes: config.RouteConfig{
			SlippageBps: 2, PlatformFeeBps: 1, RestrictIntermediateTokens: true,
		},
		Jupiter: config.JupiterConfig{BaseURL: config.DefaultJupiterURL, PrioritizationFeeLamports: 10},
		Raydium: config.RaydiumConfig{SwapHost: config.DefaultRaydiumSwapHost, ComputeUnitPriceMicroLamports: "10", TxVersion: "V0"},
		Market: config.MarketConfig{
			Source: "mobula", MobulaURL: config.DefaultMobulaURL, DexScreenerURL: config.DefaultDexScreenerURL,
			MinLiquidityUSD: 1000, Limit: 100,
		},
		HTTP: config.HTTPConfig{Timeout: time.Second, RequestsPerMinute: 300},
	}
}

type stubLicense struct {
	err  error
	keys []string
}

func (s *stubLicense) ValidateLicense(_ context.Context, key string) error {
	s.keys = append(s.keys, key)
	return s.err
}

func TestInitializeWiresComponents(t *testing.T) {
	cfg := validConfig()
	r := NewRunner(cfg, zaptest.NewLogger(t))
	require.NoError(t, r.Initialize(context.Background()))

	expected, err := wallet.NewWallet(cfg.PrivateKey)
	require.NoError(t, err)
	assert.Equal(t, expected.PublicKey, r.wallet.PublicKey)
	assert.NotNil(t, r.trader)
	assert.NotNil(t, r.planner)
	assert.NotNil(t, r.markets)
	assert.NotNil(t, r.balances)
}

func TestInitializeFailsFast(t *testing.T) {
	t.Run("missing rpc and key", func(t *testing.T) {
		cfg := validConfig()
		cfg.RPCURL, cfg.PrivateKey = "", ""
		err := NewRunner(cfg, zap.NewNop()).Initialize(context.Background())
		assert.ErrorIs(t, err, config.ErrMissingRPCURL)
		assert.ErrorIs(t, err, config.ErrMissingPrivateKey)
	})

	t.Run("malformed key", func(t *testing.T) {
		cfg := validConfig()
		cfg.PrivateKey = "0OIl"
		err := NewRunner(cfg, zap.NewNop()).Initialize(context.Background())
		assert.ErrorIs(t, err, wallet.ErrInvalidKey)
	})
}

func TestInitializeLicense(t *testing.T) {
	t.Run("skipped without key", func(t *testing.T) {
		stub := &stubLicense{}
		r := NewRunner(validConfig(), zaptest.NewLogger(t))
		r.newLicenseValidator = func(config.LicenseConfig, *zap.Logger) LicenseValidator { return stub }
		require.NoError(t, r.Initialize(context.Background()))
		assert.Empty(t, stub.keys)
	})

	t.Run("rejected key stops startup", func(t *testing.T) {
		cfg := validConfig()
		cfg.License = config.LicenseConfig{Key: "KEY-1234-5678", AccountID: "acc", ProductID: "prod"}
		stub := &stubLicense{err: errors.New("license has expired")}
		r := NewRunner(cfg, zaptest.NewLogger(t))
		r.newLicenseValidator = func(config.LicenseConfig, *zap.Logger) LicenseValidator { return stub }

		err := r.Initialize(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "license validation failed")
		assert.Equal(t, []string{"KEY-1234-5678"}, stub.keys)
		assert.Nil(t, r.trader)
	})
}

func TestRunRequiresInitialize(t *testing.T) {
	err := NewRunner(validConfig(), zap.NewNop()).Run(context.Background(), SessionOptions{})
	assert.Error(t, err)
}
