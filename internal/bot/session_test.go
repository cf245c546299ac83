package bot

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/fatih/color"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/solana-swap-bot/internal/blockchain/solbc"
	"github.com/rovshanmuradov/solana-swap-bot/internal/dex"
	"github.com/rovshanmuradov/solana-swap-bot/internal/dex/jupiter"
	"github.com/rovshanmuradov/solana-swap-bot/internal/market"
	"github.com/rovshanmuradov/solana-swap-bot/internal/route"
	"github.com/rovshanmuradov/solana-swap-bot/internal/trade"
	"github.com/rovshanmuradov/solana-swap-bot/internal/ui"
)

var testMint = solana.MustPublicKeyFromBase58("4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R")

type scriptedPrompter struct {
	texts    []string
	confirms []bool
	err      error
	asked    []string
}

func (p *scriptedPrompter) Text(_ context.Context, label, _ string, validate func(string) error) (string, error) {
	p.asked = append(p.asked, label)
	if p.err != nil {
		return "", p.err
	}
	v := p.texts[0]
	p.texts = p.texts[1:]
	if validate != nil {
		if err := validate(v); err != nil {
			return "", err
		}
	}
	return v, nil
}

func (p *scriptedPrompter) Confirm(_ context.Context, question string) (bool, error) {
	p.asked = append(p.asked, question)
	if p.err != nil {
		return false, p.err
	}
	v := p.confirms[0]
	p.confirms = p.confirms[1:]
	return v, nil
}

type mockTrader struct {
	mock.Mock
}

func (m *mockTrader) Buy(ctx context.Context, req trade.BuyRequest) (*trade.BuyReceipt, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*trade.BuyReceipt)
	return res, args.Error(1)
}

func (m *mockTrader) Sell(ctx context.Context, req trade.SellRequest) (*trade.SellReceipt, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*trade.SellReceipt)
	return res, args.Error(1)
}

type stubMarkets struct {
	pairs []market.Pair
	err   error
}

func (s stubMarkets) Name() string { return "stub" }

func (s stubMarkets) Pairs(context.Context, solana.PublicKey) ([]market.Pair, error) {
	return s.pairs, s.err
}

type stubPlanner struct {
	plan *route.Plan
	err  error
}

func (s stubPlanner) Plan(context.Context, solana.PublicKey, uint64) (*route.Plan, error) {
	return s.plan, s.err
}

type queuedBalances struct {
	values []uint64
}

func (b *queuedBalances) ReadBalance(context.Context, solana.PublicKey) (uint64, error) {
	if len(b.values) == 0 {
		return 0, errors.New("no account")
	}
	v := b.values[0]
	b.values = b.values[1:]
	return v, nil
}

func quoteWithLabel(label string) *jupiter.QuoteResponse {
	return &jupiter.QuoteResponse{RoutePlan: []jupiter.RoutePlan{{SwapInfo: jupiter.SwapInfo{Label: label, AmmKey: "amm"}}}}
}

func newTestSession(t *testing.T, prompter Prompter, trader Trader, balances trade.BalanceReader, planner RoutePlanner, opts SessionOptions) (*Session, *bytes.Buffer) {
	color.NoColor = true
	out := &bytes.Buffer{}
	markets := stubMarkets{pairs: []market.Pair{
		{Address: "cheap", Type: "RaydiumV4", PriceUSD: 1.0, LiquidityUSD: 5000},
		{Address: "dear", Type: "Orca", PriceUSD: 1.2, LiquidityUSD: 5000},
	}}
	s := NewSession(markets, planner, trader, balances, prompter, out, opts, zaptest.NewLogger(t))
	s.spinner = func(io.Writer, string) func() { return func() {} }
	return s, out
}

func TestSessionBuyThenSellWithBoughtAmount(t *testing.T) {
	prompter := &scriptedPrompter{texts: []string{testMint.String()}, confirms: []bool{true, true}}
	trader := new(mockTrader)
	trader.On("Buy", mock.Anything, trade.BuyRequest{
		VenueLabel: "Raydium CLMM", Token: testMint, Amount: 1000, SlippageBps: 100,
	}).Return(&trade.BuyReceipt{Venue: dex.VenueRaydium, Executor: "Raydium", Attempts: 1}, nil).Once()
	trader.On("Sell", mock.Anything, trade.SellRequest{
		VenueLabel: "Whirlpool", Token: testMint, Target: 520, SlippageBps: 100,
	}).Return(&trade.SellReceipt{Venue: dex.VenueJupiter, Executor: "Jupiter", Cycles: 1, Executions: 1, Sold: 520}, nil).Once()

	planner := stubPlanner{plan: &route.Plan{Buy: quoteWithLabel("Raydium CLMM"), Sell: quoteWithLabel("Whirlpool")}}
	s, out := newTestSession(t, prompter, trader, &queuedBalances{values: []uint64{30, 550}}, planner,
		SessionOptions{BuyAmount: 1000, SlippageBps: 100, MinLiquidityUSD: 1000})

	require.NoError(t, s.Run(context.Background()))
	trader.AssertExpectations(t)
	assert.Contains(t, out.String(), "Recommended buy route")
	assert.Contains(t, out.String(), "Buy confirmed via Raydium")
	assert.Contains(t, out.String(), "Sell finished via Jupiter: 520 sold")
}

func TestSessionFallsBackToMarketLabels(t *testing.T) {
	prompter := &scriptedPrompter{confirms: []bool{true, true}}
	trader := new(mockTrader)
	trader.On("Buy", mock.Anything, mock.MatchedBy(func(r trade.BuyRequest) bool { return r.VenueLabel == "RaydiumV4" })).
		Return(nil, trade.ErrBuyAttemptsExhausted).Once()
	trader.On("Sell", mock.Anything, mock.MatchedBy(func(r trade.SellRequest) bool {
		return r.VenueLabel == "Orca" && r.Target == 0
	})).Return(&trade.SellReceipt{Venue: dex.VenueJupiter}, nil).Once()

	s, out := newTestSession(t, prompter, trader, &queuedBalances{}, stubPlanner{plan: &route.Plan{}},
		SessionOptions{Mint: testMint.String(), BuyAmount: 1000, SlippageBps: 100, MinLiquidityUSD: 1000})

	require.NoError(t, s.Run(context.Background()))
	trader.AssertExpectations(t)
	assert.Contains(t, out.String(), "Buy failed")
	assert.Len(t, prompter.asked, 2)
}

func TestSessionDeclinedBuyAndSell(t *testing.T) {
	prompter := &scriptedPrompter{confirms: []bool{false, false}}
	trader := new(mockTrader)

	s, out := newTestSession(t, prompter, trader, &queuedBalances{}, stubPlanner{plan: &route.Plan{}},
		SessionOptions{Mint: testMint.String(), BuyAmount: 1000, SlippageBps: 100})

	require.NoError(t, s.Run(context.Background()))
	trader.AssertNotCalled(t, "Buy", mock.Anything, mock.Anything)
	trader.AssertNotCalled(t, "Sell", mock.Anything, mock.Anything)
	assert.Contains(t, out.String(), "Buy cancelled")
	assert.Contains(t, out.String(), "Sell cancelled")
}

func TestSessionAssumeYesSkipsPrompts(t *testing.T) {
	prompter := &scriptedPrompter{}
	trader := new(mockTrader)
	trader.On("Buy", mock.Anything, mock.Anything).Return(&trade.BuyReceipt{Venue: dex.VenueJupiter, Attempts: 2}, nil)
	trader.On("Sell", mock.Anything, mock.MatchedBy(func(r trade.SellRequest) bool { return r.Target == 0 })).
		Return(nil, trade.ErrBalanceUnavailable)

	s, out := newTestSession(t, prompter, trader, &queuedBalances{}, stubPlanner{plan: &route.Plan{}},
		SessionOptions{Mint: testMint.String(), AssumeYes: true, BuyAmount: 1000, SlippageBps: 100})

	require.NoError(t, s.Run(context.Background()))
	assert.Empty(t, prompter.asked)
	assert.Contains(t, out.String(), "Sell stopped")
}

func TestSessionAbortedPrompt(t *testing.T) {
	prompter := &scriptedPrompter{err: ui.ErrAborted}
	s, out := newTestSession(t, prompter, new(mockTrader), &queuedBalances{}, stubPlanner{plan: &route.Plan{}}, SessionOptions{})

	require.NoError(t, s.Run(context.Background()))
	assert.Contains(t, out.String(), "Cancelled")
}

func TestSessionInvalidMintFlag(t *testing.T) {
	s, _ := newTestSession(t, &scriptedPrompter{}, new(mockTrader), &queuedBalances{}, stubPlanner{plan: &route.Plan{}},
		SessionOptions{Mint: "not-a-mint"})
	err := s.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid mint")
}

func TestSessionCancelledDuringSurvey(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s, _ := newTestSession(t, &scriptedPrompter{}, new(mockTrader), &queuedBalances{},
		stubPlanner{err: context.Canceled}, SessionOptions{Mint: testMint.String()})
	assert.ErrorIs(t, s.Run(ctx), context.Canceled)
}

type stubFunds struct {
	lamports uint64
	err      error
}

func (f stubFunds) ReadLamports(context.Context) (uint64, error) {
	return f.lamports, f.err
}

func TestSessionSkipsBuyWithoutEnoughSOL(t *testing.T) {
	prompter := &scriptedPrompter{confirms: []bool{true, true}}
	trader := new(mockTrader)
	trader.On("Sell", mock.Anything, mock.MatchedBy(func(r trade.SellRequest) bool { return r.Target == 0 })).
		Return(&trade.SellReceipt{Venue: dex.VenueJupiter, Executor: "Jupiter"}, nil).Once()

	s, out := newTestSession(t, prompter, trader, &queuedBalances{}, stubPlanner{plan: &route.Plan{}},
		SessionOptions{Mint: testMint.String(), BuyAmount: 1000, SlippageBps: 100})
	s.UseFundsCheck(stubFunds{lamports: 999})

	require.NoError(t, s.Run(context.Background()))
	trader.AssertNotCalled(t, "Buy", mock.Anything, mock.Anything)
	trader.AssertExpectations(t)
	assert.Contains(t, out.String(), "Buy skipped: wallet holds 999 lamports, buy needs 1000")
}

func TestSessionBuysWhenFundsUnreadable(t *testing.T) {
	prompter := &scriptedPrompter{confirms: []bool{true, false}}
	trader := new(mockTrader)
	trader.On("Buy", mock.Anything, mock.Anything).
		Return(&trade.BuyReceipt{Venue: dex.VenueJupiter, Executor: "Jupiter", Attempts: 1}, nil).Once()

	s, out := newTestSession(t, prompter, trader, &queuedBalances{}, stubPlanner{plan: &route.Plan{}},
		SessionOptions{Mint: testMint.String(), BuyAmount: 1000, SlippageBps: 100})
	s.UseFundsCheck(stubFunds{err: errors.New("rpc down")})

	require.NoError(t, s.Run(context.Background()))
	trader.AssertExpectations(t)
	assert.Contains(t, out.String(), "Buy confirmed via Jupiter")
}

type stubMetadata struct{}

func (stubMetadata) GetTokenMetadata(context.Context, solana.PublicKey) *solbc.TokenMetadata {
	return &solbc.TokenMetadata{Decimals: 6, Symbol: "RAY"}
}

func TestSessionFormatsAmountsWithTokenMetadata(t *testing.T) {
	prompter := &scriptedPrompter{confirms: []bool{true, true}}
	trader := new(mockTrader)
	trader.On("Buy", mock.Anything, mock.Anything).Return(&trade.BuyReceipt{Venue: dex.VenueJupiter, Attempts: 1}, nil)
	trader.On("Sell", mock.Anything, mock.MatchedBy(func(r trade.SellRequest) bool { return r.Target == 1_500_000 })).
		Return(&trade.SellReceipt{Venue: dex.VenueJupiter, Cycles: 1, Sold: 1_500_000}, nil)

	s, out := newTestSession(t, prompter, trader, &queuedBalances{values: []uint64{0, 1_500_000}}, stubPlanner{plan: &route.Plan{}},
		SessionOptions{Mint: testMint.String(), BuyAmount: 1000, SlippageBps: 100})
	s.UseTokenMetadata(stubMetadata{})

	require.NoError(t, s.Run(context.Background()))
	assert.Contains(t, out.String(), "Received 1.5 RAY")
	assert.Contains(t, out.String(), "1.5 RAY sold in 1 cycle(s)")
}
