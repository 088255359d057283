package service

import (
	"context"
	"fmt"
	"time"

	"tokenfolio/internal/domain"
	"tokenfolio/internal/logger"
	"tokenfolio/internal/repository"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	// rough per-swap gas cost used for the aggregate estimate; upstream
	// estimates arrive later, at execution time
	swapGasUnits        = 150_000
	assumedGasPriceGwei = 30

	// quote fan-out is capped so the upstream rate limit is never burst
	quoteBatchSize  = 5
	quoteBatchDelay = time.Second
)

type InvestmentService interface {
	// CalculateInvestment turns a strategy plus an amount of native currency
	// into a per-token swap plan. Individual quote failures degrade that line
	// to a zero-target fallback instead of failing the whole plan.
	CalculateInvestment(ctx context.Context, strategy domain.Strategy, investmentAmount decimal.Decimal, chainID int64, userAddress string) (*domain.InvestmentCalculation, error)
}

func NewInvestmentService(
	swapApiRepository repository.SwapApiRepository,
	priceFeedRepository repository.PriceFeedRepository,
) InvestmentService {
	return investmentServiceHandler{
		SwapApiRepository:   swapApiRepository,
		PriceFeedRepository: priceFeedRepository,
	}
}

type investmentServiceHandler struct {
	SwapApiRepository   repository.SwapApiRepository
	PriceFeedRepository repository.PriceFeedRepository
}

func (h investmentServiceHandler) CalculateInvestment(ctx context.Context, strategy domain.Strategy, investmentAmount decimal.Decimal, chainID int64, userAddress string) (*domain.InvestmentCalculation, error) {
	log := logger.FromContext(ctx)

	if !domain.IsValidAddress(userAddress) {
		return nil, domain.ValidationError{Reason: fmt.Sprintf("user address %q is malformed", userAddress)}
	}
	if domain.IsTestAddress(userAddress) && domain.IsProductionChain(chainID) {
		return nil, domain.TestAddressError{Address: userAddress, ChainID: chainID}
	}
	if !investmentAmount.IsPositive() {
		return nil, domain.ValidationError{Reason: "investment amount must be positive"}
	}

	nativePriceUSD, err := h.PriceFeedRepository.GetNativePriceUSD(ctx, chainID)
	if err != nil {
		// totals and gas become zero-USD estimates; the swap plan itself does
		// not depend on the oracle
		log.Warnf("price feed unavailable, USD figures will be zero: %v", err)
		nativePriceUSD = decimal.Zero
	}

	swaps := make([]domain.SwapAllocation, len(strategy.TargetAllocation))
	for start := 0; start < len(strategy.TargetAllocation); start += quoteBatchSize {
		if start > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(quoteBatchDelay):
			}
		}

		end := start + quoteBatchSize
		if end > len(strategy.TargetAllocation) {
			end = len(strategy.TargetAllocation)
		}

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			i := i
			allocation := strategy.TargetAllocation[i]
			g.Go(func() error {
				swaps[i] = h.planAllocation(gctx, allocation, investmentAmount, nativePriceUSD, chainID)
				return gctx.Err()
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	maxImpact := 0.0
	swapCount := 0
	for _, s := range swaps {
		if s.Quote != nil && s.Quote.PriceImpactPercent > maxImpact {
			maxImpact = s.Quote.PriceImpactPercent
		}
		if !s.IsPassThrough() {
			swapCount++
		}
	}

	return &domain.InvestmentCalculation{
		TotalInvestmentNative: investmentAmount,
		TotalInvestmentUSD:    investmentAmount.Mul(nativePriceUSD),
		Swaps:                 swaps,
		EstimatedGasUSD:       estimateGasUSD(swapCount, nativePriceUSD),
		PriceImpactPercent:    maxImpact,
	}, nil
}

func (h investmentServiceHandler) planAllocation(ctx context.Context, allocation domain.TargetAllocation, investmentAmount, nativePriceUSD decimal.Decimal, chainID int64) domain.SwapAllocation {
	log := logger.FromContext(ctx)

	targetNative := investmentAmount.Mul(decimal.NewFromFloat(allocation.TargetPercentage)).Div(decimal.NewFromInt(100))
	fromToken := domain.TokenAmount{
		Address:   domain.NativeTokenAddress,
		Symbol:    domain.NativeSymbol(chainID),
		Decimals:  domain.NativeDecimals,
		Amount:    targetNative,
		AmountUSD: targetNative.Mul(nativePriceUSD),
	}

	out := domain.SwapAllocation{
		FromToken:        fromToken,
		TargetPercentage: allocation.TargetPercentage,
	}

	if domain.IsNativeOrWrapped(chainID, allocation.Token.Address) {
		// pass-through, nothing to swap
		out.ToToken = domain.TokenAmount{
			Address:   fromToken.Address,
			Symbol:    allocation.Token.Symbol,
			Decimals:  domain.NativeDecimals,
			Amount:    targetNative,
			AmountUSD: fromToken.AmountUSD,
		}
		return out
	}

	out.ToToken = domain.TokenAmount{
		Address:  domain.NormalizeAddress(allocation.Token.Address),
		Symbol:   allocation.Token.Symbol,
		Decimals: allocation.Token.Decimals,
		Amount:   decimal.Zero,
	}

	amountWei := domain.ToSmallestUnit(targetNative, domain.NativeDecimals)
	quote, err := h.SwapApiRepository.GetQuote(ctx, chainID, domain.NativeTokenAddress, allocation.Token.Address, amountWei)
	if err != nil {
		// degrade this line only; the caller reviews zero-amount lines before
		// approving execution
		log.Warnf("quote failed for %s, continuing without it: %v", allocation.Token.Symbol, err)
		return out
	}

	out.Quote = quote
	out.ToToken.Amount = domain.FromSmallestUnit(quote.DstAmount, allocation.Token.Decimals)
	out.ToToken.AmountUSD = fromToken.AmountUSD
	return out
}

func estimateGasUSD(swapCount int, nativePriceUSD decimal.Decimal) decimal.Decimal {
	if swapCount == 0 {
		return decimal.Zero
	}
	gasWeiPerSwap := decimal.NewFromInt(swapGasUnits).Mul(decimal.NewFromInt(assumedGasPriceGwei)).Shift(9)
	gasNative := gasWeiPerSwap.Mul(decimal.NewFromInt(int64(swapCount))).Shift(-18)
	return gasNative.Mul(nativePriceUSD)
}
