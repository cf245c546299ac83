// cmd/bot/root.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-swap-bot/internal/bot"
	"github.com/rovshanmuradov/solana-swap-bot/internal/config"
	"github.com/rovshanmuradov/solana-swap-bot/internal/logger"
)

type rootOptions struct {
	configPath  string
	mint        string
	assumeYes   bool
	buyAmount   uint64
	slippageBps uint16
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "swapbot",
		Short: "Interactive Solana token buy/sell bot over Jupiter and Raydium",
		Long: `swapbot looks up the markets of a Solana token, previews Jupiter buy and
sell routes, then runs an automatic buy followed by an automatic sell.

The RPC endpoint and base58 private key come from SWAPBOT_RPC_URL and
SWAPBOT_PRIVATE_KEY (or RPC1 and PRIVATEKEY), optionally via a .env file.

Examples:
  swapbot
  swapbot --mint 4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R
  swapbot --mint <mint> --buy-amount 100000 --slippage-bps 100 --yes`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "Path to config file (default: ./config.* or ./configs/config.*)")
	flags.StringVar(&opts.mint, "mint", "", "Token mint; prompted when empty")
	flags.BoolVarP(&opts.assumeYes, "yes", "y", false, "Answer yes to the buy and sell confirmations")
	flags.Uint64Var(&opts.buyAmount, "buy-amount", 0, "Buy amount in lamports (overrides trade.buy_amount_lamports)")
	flags.Uint16Var(&opts.slippageBps, "slippage-bps", 0, "Slippage in basis points (overrides trade.slippage_bps)")
	return cmd
}

func run(parent context.Context, opts *rootOptions) error {
	// .env не обязателен.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{
		LogFile:     cfg.Logging.File,
		MaxSize:     cfg.Logging.MaxSizeMB,
		MaxAge:      cfg.Logging.MaxAgeDays,
		MaxBackups:  cfg.Logging.MaxBackups,
		Compress:    cfg.Logging.Compress,
		Development: cfg.Logging.Debug,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := bot.NewRunner(cfg, log)
	defer runner.Shutdown()

	if err := runner.Initialize(ctx); err != nil {
		log.Error("Failed to initialize bot", zap.Error(err))
		return err
	}

	err = runner.Run(ctx, bot.SessionOptions{
		Mint:        opts.mint,
		AssumeYes:   opts.assumeYes,
		BuyAmount:   opts.buyAmount,
		SlippageBps: opts.slippageBps,
	})
	if errors.Is(err, context.Canceled) {
		log.Info("Interrupted")
		return nil
	}
	return err
}
