// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

// EnvPrefix is the prefix for every environment override (SWAPBOT_TRADE_SLIPPAGE_BPS etc).
const EnvPrefix = "SWAPBOT"

// Config is the process configuration shared by every component.
type Config struct {
	RPCURL     string `mapstructure:"rpc_url"`
	PrivateKey string `mapstructure:"private_key"`

	Trade   TradeConfig   `mapstructure:"trade"`
	Tx      TxConfig      `mapstructure:"tx"`
	Routes  RouteConfig   `mapstructure:"routes"`
	Jupiter JupiterConfig `mapstructure:"jupiter"`
	Raydium RaydiumConfig `mapstructure:"raydium"`
	Market  MarketConfig  `mapstructure:"market"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	License LicenseConfig `mapstructure:"license"`
}

// TradeConfig задаёт параметры циклов покупки и продажи.
type TradeConfig struct {
	BuyAmountLamports uint64        `mapstructure:"buy_amount_lamports"`
	SlippageBps       uint16        `mapstructure:"slippage_bps"`
	MaxBuyAttempts    uint          `mapstructure:"max_buy_attempts"`
	MaxBalanceReads   uint          `mapstructure:"max_balance_reads"`
	RetryDelay        time.Duration `mapstructure:"retry_delay"`
	// MaxSellCycles == 0 означает бесконечный цикл продажи.
	MaxSellCycles uint `mapstructure:"max_sell_cycles"`
}

// TxConfig controls submission and confirmation of signed transactions.
type TxConfig struct {
	Commitment     string        `mapstructure:"commitment"`
	SkipPreflight  bool          `mapstructure:"skip_preflight"`
	ConfirmTimeout time.Duration `mapstructure:"confirm_timeout"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`
}

// RouteConfig задаёт параметры предварительного расчёта маршрутов.
type RouteConfig struct {
	SlippageBps                uint16 `mapstructure:"slippage_bps"`
	PlatformFeeBps             uint16 `mapstructure:"platform_fee_bps"`
	RestrictIntermediateTokens bool   `mapstructure:"restrict_intermediate_tokens"`
}

type JupiterConfig struct {
	BaseURL                   string `mapstructure:"base_url"`
	PrioritizationFeeLamports uint64 `mapstructure:"prioritization_fee_lamports"`
}

type RaydiumConfig struct {
	SwapHost                      string `mapstructure:"swap_host"`
	ComputeUnitPriceMicroLamports string `mapstructure:"compute_unit_price_micro_lamports"`
	TxVersion                     string `mapstructure:"tx_version"`
}

// MarketConfig selects the market data source. Source is "mobula" or
// "dexscreener"; the other one is used as a fallback.
type MarketConfig struct {
	Source          string  `mapstructure:"source"`
	MobulaURL       string  `mapstructure:"mobula_url"`
	DexScreenerURL  string  `mapstructure:"dexscreener_url"`
	MinLiquidityUSD float64 `mapstructure:"min_liquidity_usd"`
	Limit           int     `mapstructure:"limit"`
}

type HTTPConfig struct {
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

type LoggingConfig struct {
	Debug      bool   `mapstructure:"debug"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// MetricsConfig: пустой ListenAddr отключает HTTP эндпоинт /metrics.
type MetricsConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

// LicenseConfig: проверка лицензии выполняется только если задан Key.
type LicenseConfig struct {
	Key          string `mapstructure:"key"`
	AccountID    string `mapstructure:"account_id"`
	ProductID    string `mapstructure:"product_id"`
	ProductToken string `mapstructure:"product_token"`
}

const (
	DefaultBuyAmountLamports = 100000
	DefaultSlippageBps       = 100
	DefaultMaxBuyAttempts    = 5
	DefaultMaxBalanceReads   = 5
	DefaultRetryDelay        = time.Second
	DefaultJupiterURL        = "https://quote-api.jup.ag/v6"
	DefaultRaydiumSwapHost   = "https://transaction-v1.raydium.io"
	DefaultMobulaURL         = "https://production-api.mobula.io"
	DefaultDexScreenerURL    = "https://api.dexscreener.com"
)

var (
	ErrMissingRPCURL     = errors.New("rpc_url is required (SWAPBOT_RPC_URL or RPC1)")
	ErrMissingPrivateKey = errors.New("private_key is required (SWAPBOT_PRIVATE_KEY or PRIVATEKEY)")
)

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"trade.buy_amount_lamports":                 DefaultBuyAmountLamports,
		"trade.slippage_bps":                        DefaultSlippageBps,
		"trade.max_buy_attempts":                    DefaultMaxBuyAttempts,
		"trade.max_balance_reads":                   DefaultMaxBalanceReads,
		"trade.retry_delay":                         DefaultRetryDelay,
		"trade.max_sell_cycles":                     0,
		"tx.commitment":                             "confirmed",
		"tx.skip_preflight":                         false,
		"tx.confirm_timeout":                        60 * time.Second,
		"tx.poll_interval":                          500 * time.Millisecond,
		"routes.slippage_bps":                       2,
		"routes.platform_fee_bps":                   1,
		"routes.restrict_intermediate_tokens":       true,
		"jupiter.base_url":                          DefaultJupiterURL,
		"jupiter.prioritization_fee_lamports":       10,
		"raydium.swap_host":                         DefaultRaydiumSwapHost,
		"raydium.compute_unit_price_micro_lamports": "10",
		"raydium.tx_version":                        "V0",
		"market.source":                             "mobula",
		"market.mobula_url":                         DefaultMobulaURL,
		"market.dexscreener_url":                    DefaultDexScreenerURL,
		"market.min_liquidity_usd":                  1000.0,
		"market.limit":                              100,
		"http.timeout":                              15 * time.Second,
		"http.requests_per_minute":                  300,
		"logging.debug":                             false,
		"logging.file":                              "swapbot.log",
		"logging.max_size_mb":                       100,
		"logging.max_backups":                       3,
		"logging.max_age_days":                      7,
		"logging.compress":                          true,
		"metrics.listen_addr":                       "",
		"license.key":                               "",
		"license.account_id":                        "",
		"license.product_id":                        "",
		"license.product_token":                     "",
	}
}

// Load читает конфигурацию из файла (если он есть) и переменных окружения.
// Пустой path означает поиск config.{yaml,json,toml} в . и ./configs.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults() {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// RPC1 и PRIVATEKEY поддерживаются как альтернативные имена.
	_ = v.BindEnv("rpc_url", EnvPrefix+"_RPC_URL", "RPC1")
	_ = v.BindEnv("private_key", EnvPrefix+"_PRIVATE_KEY", "PRIVATEKEY")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("configs")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.RPCURL = strings.TrimSpace(cfg.RPCURL)
	cfg.PrivateKey = strings.TrimSpace(cfg.PrivateKey)
	cfg.Market.Source = strings.ToLower(strings.TrimSpace(cfg.Market.Source))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate возвращает все найденные ошибки сразу, объединённые через multierr.
func (c *Config) Validate() error {
	var err error
	if c.RPCURL == "" {
		err = multierr.Append(err, ErrMissingRPCURL)
	} else if e := validateURLWithCache(c.RPCURL, "http"); e != nil {
		err = multierr.Append(err, fmt.Errorf("rpc_url: %w", e))
	}
	if c.PrivateKey == "" {
		err = multierr.Append(err, ErrMissingPrivateKey)
	}

	if c.Trade.BuyAmountLamports == 0 {
		err = multierr.Append(err, errors.New("trade.buy_amount_lamports must be positive"))
	}
	if c.Trade.SlippageBps == 0 || c.Trade.SlippageBps > 10000 {
		err = multierr.Append(err, errors.New("trade.slippage_bps must be in 1..10000"))
	}
	if c.Trade.MaxBuyAttempts == 0 {
		err = multierr.Append(err, errors.New("trade.max_buy_attempts must be positive"))
	}
	if c.Trade.MaxBalanceReads == 0 {
		err = multierr.Append(err, errors.New("trade.max_balance_reads must be positive"))
	}
	if c.Trade.RetryDelay < 0 {
		err = multierr.Append(err, errors.New("trade.retry_delay must not be negative"))
	}

	if c.Tx.ConfirmTimeout <= 0 {
		err = multierr.Append(err, errors.New("tx.confirm_timeout must be positive"))
	}
	if c.Tx.PollInterval <= 0 {
		err = multierr.Append(err, errors.New("tx.poll_interval must be positive"))
	}
	switch c.Tx.Commitment {
	case "processed", "confirmed", "finalized":
	default:
		err = multierr.Append(err, fmt.Errorf("tx.commitment %q is not one of processed, confirmed, finalized", c.Tx.Commitment))
	}

	for name, raw := range map[string]string{
		"jupiter.base_url":       c.Jupiter.BaseURL,
		"raydium.swap_host":      c.Raydium.SwapHost,
		"market.mobula_url":      c.Market.MobulaURL,
		"market.dexscreener_url": c.Market.DexScreenerURL,
	} {
		if e := validateURLWithCache(raw, "http"); e != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", name, e))
		}
	}

	switch c.Market.Source {
	case "mobula", "dexscreener":
	default:
		err = multierr.Append(err, fmt.Errorf("market.source %q is not one of mobula, dexscreener", c.Market.Source))
	}
	if c.Market.Limit <= 0 {
		err = multierr.Append(err, errors.New("market.limit must be positive"))
	}

	if c.HTTP.Timeout <= 0 {
		err = multierr.Append(err, errors.New("http.timeout must be positive"))
	}
	if c.HTTP.RequestsPerMinute <= 0 {
		err = multierr.Append(err, errors.New("http.requests_per_minute must be positive"))
	}

	if c.License.Key != "" && (c.License.AccountID == "" || c.License.ProductID == "") {
		err = multierr.Append(err, errors.New("license.account_id and license.product_id are required when license.key is set"))
	}
	return err
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) || parsed.Host == "" {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}
