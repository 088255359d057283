package domain

import (
	"encoding/json"
	"math/big"

	"github.com/shopspring/decimal"
)

// Quote is the parsed result of a swap-API quote call. Raw keeps the upstream
// payload for diagnostics and for handing back to the executor untouched.
type Quote struct {
	DstAmount          *big.Int
	PriceImpactPercent float64
	EstimatedGas       uint64
	Raw                json.RawMessage
}

type TokenAmount struct {
	Address   string          `json:"address"`
	Symbol    string          `json:"symbol"`
	Decimals  int             `json:"decimals"`
	Amount    decimal.Decimal `json:"amount"`
	AmountUSD decimal.Decimal `json:"amountUSD"`
}

// SwapAllocation is one leg of an investment plan. Quote is nil both for
// pass-through legs (target token is the native currency) and for legs whose
// quote lookup failed; the two are told apart by comparing token addresses.
type SwapAllocation struct {
	FromToken        TokenAmount `json:"fromToken"`
	ToToken          TokenAmount `json:"toToken"`
	TargetPercentage float64     `json:"targetPercentage"`
	Quote            *Quote      `json:"quote,omitempty"`
}

func (s SwapAllocation) IsPassThrough() bool {
	return NormalizeAddress(s.FromToken.Address) == NormalizeAddress(s.ToToken.Address)
}

type InvestmentCalculation struct {
	TotalInvestmentNative decimal.Decimal  `json:"totalInvestmentETH"`
	TotalInvestmentUSD    decimal.Decimal  `json:"totalInvestmentUSD"`
	Swaps                 []SwapAllocation `json:"swaps"`
	EstimatedGasUSD       decimal.Decimal  `json:"estimatedGasUSD"`
	// PriceImpactPercent is the worst observed impact across all quotes, not
	// an average.
	PriceImpactPercent float64 `json:"priceImpact"`
}

// UnsignedTx is a transaction payload built upstream, ready for an external
// signer. Data is 0x-prefixed hex calldata.
type UnsignedTx struct {
	From     string
	To       string
	Data     string
	Value    *big.Int
	Gas      uint64
	GasPrice *big.Int
}
