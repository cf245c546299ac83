// internal/blockchain/solbc/token_metadata.go
package solbc

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

const (
	metadataTTL = 5 * time.Minute
	// смещение поля decimals в аккаунте SPL mint
	mintDecimalsOffset = 44
)

// TokenMetadata хранит информацию о токене
type TokenMetadata struct {
	Decimals  uint8
	Symbol    string
	Source    string // "chain", "known", "default"
	UpdatedAt time.Time
}

// Format переводит количество в минимальных единицах в десятичную строку.
func (m *TokenMetadata) Format(amount uint64) string {
	raw := strconv.FormatUint(amount, 10)
	if m == nil || m.Decimals == 0 {
		return raw
	}
	d := int(m.Decimals)
	if len(raw) <= d {
		raw = strings.Repeat("0", d-len(raw)+1) + raw
	}
	whole, frac := raw[:len(raw)-d], strings.TrimRight(raw[len(raw)-d:], "0")
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}

// MintReader читает десятичность mint из блокчейна.
type MintReader interface {
	GetMintDecimals(ctx context.Context, mint solana.PublicKey) (uint8, error)
}

// GetMintDecimals читает аккаунт mint и возвращает его decimals.
func (c *Client) GetMintDecimals(ctx context.Context, mint solana.PublicKey) (uint8, error) {
	acc, err := c.rpc.GetAccountInfoWithOpts(ctx, mint, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get mint account: %w", err)
	}
	if acc == nil || acc.Value == nil {
		return 0, fmt.Errorf("mint account not found: %s", mint)
	}
	data := acc.Value.Data.GetBinary()
	if len(data) <= mintDecimalsOffset {
		return 0, fmt.Errorf("invalid mint account data length: %d", len(data))
	}
	return data[mintDecimalsOffset], nil
}

// TokenMetadataCache управляет кэшированием метаданных токенов
type TokenMetadataCache struct {
	cache  sync.Map
	reader MintReader
	logger *zap.Logger
}

func NewTokenMetadataCache(reader MintReader, logger *zap.Logger) *TokenMetadataCache {
	return &TokenMetadataCache{
		reader: reader,
		logger: logger.Named("token-metadata"),
	}
}

// GetTokenMetadata получает метаданные токена с кэшированием.
// Если mint не удалось прочитать, возвращаются метаданные с нулевой
// десятичностью, и количества выводятся в минимальных единицах.
func (c *TokenMetadataCache) GetTokenMetadata(ctx context.Context, mint solana.PublicKey) *TokenMetadata {
	if metadata, ok := c.getFromCache(mint.String()); ok {
		return metadata
	}

	metadata := &TokenMetadata{Source: "chain"}
	decimals, err := c.reader.GetMintDecimals(ctx, mint)
	if err != nil {
		c.logger.Debug("failed to get on-chain metadata",
			zap.String("mint", mint.String()),
			zap.Error(err))
		metadata.Source = "default"
	} else {
		metadata.Decimals = decimals
	}
	enrichFromKnownTokens(mint, metadata)
	metadata.UpdatedAt = time.Now()

	if err == nil {
		c.cache.Store(mint.String(), metadata)
	}
	c.logger.Debug("token metadata retrieved",
		zap.String("mint", mint.String()),
		zap.Uint8("decimals", metadata.Decimals),
		zap.String("symbol", metadata.Symbol),
		zap.String("source", metadata.Source))
	return metadata
}

// getFromCache получает метаданные из кэша с проверкой TTL
func (c *TokenMetadataCache) getFromCache(mint string) (*TokenMetadata, bool) {
	if value, ok := c.cache.Load(mint); ok {
		metadata := value.(*TokenMetadata)
		if time.Since(metadata.UpdatedAt) < metadataTTL {
			return metadata, true
		}
		c.cache.Delete(mint)
	}
	return nil, false
}

func enrichFromKnownTokens(mint solana.PublicKey, metadata *TokenMetadata) {
	known := map[string]struct {
		symbol   string
		decimals uint8
	}{
		"So11111111111111111111111111111111111111112":  {"SOL", 9},
		"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v": {"USDC", 6},
		"DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263": {"BONK", 5},
	}
	if k, ok := known[mint.String()]; ok {
		metadata.Symbol = k.symbol
		if metadata.Source == "default" {
			metadata.Decimals = k.decimals
			metadata.Source = "known"
		}
	}
}
