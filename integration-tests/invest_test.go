package integration_tests

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tokenfolio/internal/domain"
	"tokenfolio/internal/repository"
	"tokenfolio/internal/service"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	investWallet = "0x742d35cc6634c0532925a3b844bc454e4438f44e"
	wethAddress  = "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"
	usdcAddress  = "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"
)

// newSwapApiServer serves just enough of the aggregator surface for a full
// calculate-then-execute pass: one quote and one swap build for ETH->USDC.
func newSwapApiServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/swap/v6.0/1/quote", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.Equal(t, domain.NativeTokenAddress, r.URL.Query().Get("src"))
		require.Equal(t, usdcAddress, r.URL.Query().Get("dst"))
		require.Equal(t, "4000000000000000", r.URL.Query().Get("amount"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"dstAmount":   "12000000",
			"priceImpact": 0.08,
			"gas":         180000,
		})
	})

	mux.HandleFunc("/swap/v6.0/1/swap", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, domain.NativeTokenAddress, r.URL.Query().Get("src"))
		require.Equal(t, usdcAddress, r.URL.Query().Get("dst"))
		require.Equal(t, "4000000000000000", r.URL.Query().Get("amount"))
		require.Equal(t, investWallet, r.URL.Query().Get("from"))
		require.Equal(t, "1", r.URL.Query().Get("slippage"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"dstAmount": "12000000",
			"tx": map[string]interface{}{
				"from":     investWallet,
				"to":       "0x1111111254eeb25477b68fb85ed929f73a960582",
				"data":     "0xdeadbeef",
				"value":    "4000000000000000",
				"gas":      210000,
				"gasPrice": "30000000000",
			},
		})
	})

	return httptest.NewServer(mux)
}

// Walks an investment through the whole pipeline: plan a 60/40 WETH/USDC
// split of 0.01 ETH against a stub aggregator, then submit the resulting
// swap legs through a recording wallet.
func Test_investFlow(t *testing.T) {
	server := newSwapApiServer(t)
	defer server.Close()

	swapApi := repository.NewSwapApiRepository(server.URL, "test-key")
	priceFeed := repository.NewStaticPriceFeed(decimal.NewFromInt(3000))
	investmentService := service.NewInvestmentService(swapApi, priceFeed)
	executionService := service.NewExecutionService(swapApi)

	strategy := domain.Strategy{
		ID:            "strat_1_e2e",
		WalletAddress: investWallet,
		Name:          "60/40",
		ChainID:       1,
		IsActive:      true,
		TargetAllocation: []domain.TargetAllocation{
			{
				Token:            domain.Token{Address: wethAddress, Symbol: "WETH", Decimals: 18, ChainID: 1},
				TargetPercentage: 60,
			},
			{
				Token:            domain.Token{Address: usdcAddress, Symbol: "USDC", Decimals: 6, ChainID: 1},
				TargetPercentage: 40,
			},
		},
	}
	require.NoError(t, strategy.Validate())

	calculation, err := investmentService.CalculateInvestment(context.Background(), strategy, decimal.RequireFromString("0.01"), 1, investWallet)
	require.NoError(t, err)

	require.True(t, decimal.RequireFromString("0.01").Equal(calculation.TotalInvestmentNative))
	require.True(t, decimal.RequireFromString("30").Equal(calculation.TotalInvestmentUSD))
	require.Equal(t, 0.08, calculation.PriceImpactPercent)

	expectedSwaps := []domain.SwapAllocation{
		{
			FromToken: domain.TokenAmount{
				Address:   domain.NativeTokenAddress,
				Symbol:    "ETH",
				Decimals:  18,
				Amount:    decimal.RequireFromString("0.006"),
				AmountUSD: decimal.RequireFromString("18"),
			},
			ToToken: domain.TokenAmount{
				Address:   domain.NativeTokenAddress,
				Symbol:    "WETH",
				Decimals:  18,
				Amount:    decimal.RequireFromString("0.006"),
				AmountUSD: decimal.RequireFromString("18"),
			},
			TargetPercentage: 60,
		},
		{
			FromToken: domain.TokenAmount{
				Address:   domain.NativeTokenAddress,
				Symbol:    "ETH",
				Decimals:  18,
				Amount:    decimal.RequireFromString("0.004"),
				AmountUSD: decimal.RequireFromString("12"),
			},
			ToToken: domain.TokenAmount{
				Address:   usdcAddress,
				Symbol:    "USDC",
				Decimals:  6,
				Amount:    decimal.RequireFromString("12"),
				AmountUSD: decimal.RequireFromString("12"),
			},
			TargetPercentage: 40,
		},
	}
	diff := cmp.Diff(expectedSwaps, calculation.Swaps,
		cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) }),
		cmpopts.IgnoreFields(domain.SwapAllocation{}, "Quote"),
	)
	require.Empty(t, diff)

	require.True(t, calculation.Swaps[0].IsPassThrough())
	require.Nil(t, calculation.Swaps[0].Quote)
	require.False(t, calculation.Swaps[1].IsPassThrough())
	require.NotNil(t, calculation.Swaps[1].Quote)

	submitter := &recordingSubmitter{address: investWallet}
	hashes, err := executionService.ExecuteInvestment(context.Background(), *calculation, 1, investWallet, submitter)
	require.NoError(t, err)

	// the WETH leg is a pass-through, only the USDC swap hits the chain
	require.Equal(t, []string{"0xhash1"}, hashes)
	require.Len(t, submitter.submitted, 1)
	require.Equal(t, "0x1111111254eeb25477b68fb85ed929f73a960582", submitter.submitted[0].To)
	require.Equal(t, uint64(210000), submitter.submitted[0].Gas)
	require.Equal(t, "4000000000000000", submitter.submitted[0].Value.String())
}
