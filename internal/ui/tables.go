// internal/ui/tables.go
package ui

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/rovshanmuradov/solana-swap-bot/internal/dex/jupiter"
	"github.com/rovshanmuradov/solana-swap-bot/internal/logger"
	"github.com/rovshanmuradov/solana-swap-bot/internal/market"
	"github.com/rovshanmuradov/solana-swap-bot/internal/ui/style"
)

var styles = style.NewStyles(style.DefaultPalette())

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styles.Border).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.Header
			}
			return styles.Cell
		})
}

// MarketTable рендерит рынки токена в порядке анализа (по возрастанию цены).
func MarketTable(pairs []market.Pair) string {
	t := newTable("#", "Address", "Type", "Pair", "Price USD", "Liquidity USD")
	for i, p := range pairs {
		t.Row(
			strconv.Itoa(i),
			logger.ShortAddress(p.Address),
			p.Type,
			p.BaseSymbol+"/"+p.QuoteSymbol,
			strconv.FormatFloat(p.PriceUSD, 'g', 8, 64),
			strconv.FormatFloat(p.LiquidityUSD, 'f', 2, 64),
		)
	}
	return t.Render()
}

// PairLine форматирует один рынок для вывода под заголовком.
func PairLine(title string, p market.Pair) string {
	return styles.Title.Render(title) + "\n" + MarketTable([]market.Pair{p})
}

// RouteTable рендерит шаги маршрута Jupiter.
func RouteTable(title string, q *jupiter.QuoteResponse) string {
	header := styles.Title.Render(title)
	if q == nil || len(q.RoutePlan) == 0 {
		return header + "\n" + styles.Muted.Render("no route")
	}
	t := newTable("AMM Key", "Label", "Input Mint", "Output Mint")
	for _, step := range q.RoutePlan {
		t.Row(
			logger.ShortAddress(step.SwapInfo.AmmKey),
			step.SwapInfo.Label,
			logger.ShortAddress(step.SwapInfo.InputMint),
			logger.ShortAddress(step.SwapInfo.OutputMint),
		)
	}
	return header + "\n" + t.Render()
}
