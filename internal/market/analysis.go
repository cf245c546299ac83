// internal/market/analysis.go
package market

import "sort"

// DefaultMinLiquidityUSD is the liquidity floor applied when none is configured.
const DefaultMinLiquidityUSD = 1000

// Analysis is the liquid subset of a token's pairs sorted by price ascending.
type Analysis struct {
	Pairs []Pair
}

// Analyze keeps pairs with liquidity strictly above minLiquidity and sorts them
// by price. Pairs with equal prices keep their input order.
func Analyze(pairs []Pair, minLiquidity float64) Analysis {
	liquid := make([]Pair, 0, len(pairs))
	for _, p := range pairs {
		if p.LiquidityUSD > minLiquidity {
			liquid = append(liquid, p)
		}
	}
	sort.SliceStable(liquid, func(i, j int) bool {
		return liquid[i].PriceUSD < liquid[j].PriceUSD
	})
	return Analysis{Pairs: liquid}
}

// Cheapest returns the lowest-priced pair, or false when nothing passed the filter.
func (a Analysis) Cheapest() (Pair, bool) {
	if len(a.Pairs) == 0 {
		return Pair{}, false
	}
	return a.Pairs[0], true
}

// Priciest returns the highest-priced pair.
func (a Analysis) Priciest() (Pair, bool) {
	if len(a.Pairs) == 0 {
		return Pair{}, false
	}
	return a.Pairs[len(a.Pairs)-1], true
}
