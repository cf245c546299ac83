// internal/bot/runner.go
package bot

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-swap-bot/internal/blockchain/solbc"
	"github.com/rovshanmuradov/solana-swap-bot/internal/blockchain/solbc/transaction"
	"github.com/rovshanmuradov/solana-swap-bot/internal/config"
	"github.com/rovshanmuradov/solana-swap-bot/internal/dex"
	"github.com/rovshanmuradov/solana-swap-bot/internal/dex/jupiter"
	"github.com/rovshanmuradov/solana-swap-bot/internal/dex/raydium"
	"github.com/rovshanmuradov/solana-swap-bot/internal/httpx"
	"github.com/rovshanmuradov/solana-swap-bot/internal/license"
	"github.com/rovshanmuradov/solana-swap-bot/internal/logger"
	"github.com/rovshanmuradov/solana-swap-bot/internal/market"
	"github.com/rovshanmuradov/solana-swap-bot/internal/metrics"
	"github.com/rovshanmuradov/solana-swap-bot/internal/route"
	"github.com/rovshanmuradov/solana-swap-bot/internal/trade"
	"github.com/rovshanmuradov/solana-swap-bot/internal/ui"
	"github.com/rovshanmuradov/solana-swap-bot/internal/wallet"
)

// LicenseValidator проверяет лицензионный ключ при старте.
type LicenseValidator interface {
	ValidateLicense(ctx context.Context, licenseKey string) error
}

// Runner собирает компоненты один раз при старте и передаёт их в Session.
type Runner struct {
	cfg     *config.Config
	logger  *zap.Logger
	in      io.Reader
	out     io.Writer
	metrics *metrics.Collector

	wallet   *wallet.Wallet
	markets  market.Provider
	planner  *route.Planner
	trader   *trade.Orchestrator
	balances *solbc.BalanceReader
	tokens   *solbc.TokenMetadataCache

	newLicenseValidator func(config.LicenseConfig, *zap.Logger) LicenseValidator
}

func NewRunner(cfg *config.Config, logger *zap.Logger) *Runner {
	return &Runner{
		cfg:     cfg,
		logger:  logger,
		in:      os.Stdin,
		out:     os.Stdout,
		metrics: metrics.NewCollector(),
		newLicenseValidator: func(c config.LicenseConfig, l *zap.Logger) LicenseValidator {
			return license.NewKeygenValidator(license.Settings{
				AccountID:    c.AccountID,
				ProductID:    c.ProductID,
				ProductToken: c.ProductToken,
			}, l)
		},
	}
}

// Initialize проверяет конфигурацию, загружает кошелёк и собирает зависимости.
// Любая ошибка здесь завершает процесс до первого вопроса пользователю.
func (r *Runner) Initialize(ctx context.Context) error {
	if err := r.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	w, err := wallet.NewWallet(r.cfg.PrivateKey)
	if err != nil {
		return fmt.Errorf("load wallet: %w", err)
	}
	r.wallet = w
	r.logger.Info("Wallet loaded", zap.String("address", logger.ShortAddress(w.PublicKey.String())))

	if err := r.validateLicense(ctx); err != nil {
		return fmt.Errorf("license validation failed: %w", err)
	}

	chain := solbc.NewClient(r.cfg.RPCURL, r.logger,
		solbc.WithConfirmation(r.cfg.Tx.PollInterval, r.cfg.Tx.ConfirmTimeout))

	txConfig := transaction.DefaultConfig()
	txConfig.SkipPreflight = r.cfg.Tx.SkipPreflight
	txConfig.Commitment = rpc.CommitmentType(r.cfg.Tx.Commitment)
	submitter := transaction.NewManager(chain, w, r.logger, txConfig, transaction.WithRecorder(r.metrics))

	httpClient := httpx.New(r.cfg.HTTP.Timeout, r.cfg.HTTP.RequestsPerMinute, r.logger)

	jupClient := jupiter.NewClient(httpClient, r.cfg.Jupiter.BaseURL, r.logger)
	jupExecutor := jupiter.NewExecutor(jupClient, submitter, w.PublicKey, r.cfg.Jupiter.PrioritizationFeeLamports, r.logger)

	rayClient := raydium.NewClient(httpClient, r.cfg.Raydium.SwapHost, r.cfg.Raydium.TxVersion, r.logger)
	rayExecutor := raydium.NewExecutor(rayClient, chain, submitter, w.PublicKey, r.cfg.Raydium.ComputeUnitPriceMicroLamports, r.logger)

	selector, err := dex.NewSelector(jupExecutor, rayExecutor)
	if err != nil {
		return err
	}

	r.balances = solbc.NewBalanceReader(chain, w.PublicKey, r.logger)
	r.tokens = solbc.NewTokenMetadataCache(chain, r.logger)
	r.trader = trade.NewOrchestrator(selector, r.balances, trade.Settings{
		MaxBuyAttempts:  r.cfg.Trade.MaxBuyAttempts,
		MaxBalanceReads: r.cfg.Trade.MaxBalanceReads,
		RetryDelay:      r.cfg.Trade.RetryDelay,
		MaxSellCycles:   r.cfg.Trade.MaxSellCycles,
	}, r.logger, trade.WithRecorder(r.metrics))

	r.markets = newMarketProvider(r.cfg.Market, httpClient, r.logger)
	r.planner = route.NewPlanner(jupClient, route.Settings{
		SlippageBps:                r.cfg.Routes.SlippageBps,
		PlatformFeeBps:             r.cfg.Routes.PlatformFeeBps,
		RestrictIntermediateTokens: r.cfg.Routes.RestrictIntermediateTokens,
	}, r.logger)

	r.logger.Info("Bot initialized",
		zap.String("market_source", r.cfg.Market.Source),
		zap.Uint64("buy_amount_lamports", r.cfg.Trade.BuyAmountLamports),
		zap.Uint16("slippage_bps", r.cfg.Trade.SlippageBps))
	return nil
}

// newMarketProvider ставит выбранный источник первым, второй служит запасным.
func newMarketProvider(cfg config.MarketConfig, http *httpx.Client, logger *zap.Logger) market.Provider {
	mobula := market.NewMobula(http, cfg.MobulaURL, cfg.Limit, logger)
	dexScreener := market.NewDexScreener(http, cfg.DexScreenerURL, logger)
	if cfg.Source == "dexscreener" {
		return market.NewFallbackProvider(logger, dexScreener, mobula)
	}
	return market.NewFallbackProvider(logger, mobula, dexScreener)
}

// Run запускает сценарий Session; /metrics публикуется, пока идёт сценарий.
func (r *Runner) Run(ctx context.Context, opts SessionOptions) error {
	if r.trader == nil {
		return fmt.Errorf("runner is not initialized")
	}
	if opts.BuyAmount == 0 {
		opts.BuyAmount = r.cfg.Trade.BuyAmountLamports
	}
	if opts.SlippageBps == 0 {
		opts.SlippageBps = r.cfg.Trade.SlippageBps
	}
	if opts.MinLiquidityUSD == 0 {
		opts.MinLiquidityUSD = r.cfg.Market.MinLiquidityUSD
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if addr := r.cfg.Metrics.ListenAddr; addr != "" {
		go func() {
			if err := r.metrics.Serve(runCtx, addr, r.logger); err != nil {
				r.logger.Error("Metrics endpoint failed", zap.Error(err))
			}
		}()
	}

	session := NewSession(r.markets, r.planner, r.trader, r.balances,
		ui.NewTeaPrompter(r.in, r.out), r.out, opts, r.logger)
	session.UseTokenMetadata(r.tokens)
	session.UseFundsCheck(r.balances)
	return session.Run(runCtx)
}

func (r *Runner) Shutdown() {
	r.logger.Info("Bot shutting down")
	if err := logger.Sync(r.logger); err != nil {
		fmt.Fprintf(os.Stderr, "failed to sync logger during shutdown: %v\n", err)
	}
}

// validateLicense выполняет проверку Keygen.sh только если ключ задан.
func (r *Runner) validateLicense(ctx context.Context) error {
	if r.cfg.License.Key == "" {
		r.logger.Debug("License key not set, skipping validation")
		return nil
	}
	validator := r.newLicenseValidator(r.cfg.License, r.logger)
	if err := validator.ValidateLicense(ctx, r.cfg.License.Key); err != nil {
		return err
	}
	r.logger.Info("License validated")
	return nil
}
