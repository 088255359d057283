package api

import (
	"fmt"

	"tokenfolio/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// practical bounds on a single investment, enforced here at the boundary
// rather than inside the calculator
var (
	minInvestmentNative = decimal.RequireFromString("0.001")
	maxInvestmentNative = decimal.RequireFromString("100")
)

type calculateInvestmentRequest struct {
	WalletAddress string `json:"walletAddress"`
	Amount        string `json:"amount"`
	ChainID       *int64 `json:"chainId"`
	// either a stored strategy...
	StrategyID string `json:"strategyId"`
	// ...or an ad hoc allocation list; percentages are used as given
	TargetAllocation []domain.TargetAllocation `json:"targetAllocation"`
}

func (m ApiHandler) calculateInvestment(c *gin.Context) {
	var requestBody calculateInvestmentRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJson(domain.ValidationError{Reason: fmt.Sprintf("malformed request body: %v", err)}, c)
		return
	}

	amount, err := decimal.NewFromString(requestBody.Amount)
	if err != nil {
		returnErrorJson(domain.ValidationError{Reason: fmt.Sprintf("amount %q is not a decimal number", requestBody.Amount)}, c)
		return
	}
	if amount.LessThan(minInvestmentNative) || amount.GreaterThan(maxInvestmentNative) {
		returnErrorJson(domain.ValidationError{Reason: fmt.Sprintf("amount must be between %s and %s", minInvestmentNative, maxInvestmentNative)}, c)
		return
	}

	chainID := domain.DefaultChainID
	if requestBody.ChainID != nil {
		chainID = *requestBody.ChainID
	}

	strategy, err := m.resolveStrategy(c, requestBody, chainID)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	calculation, err := m.InvestmentService.CalculateInvestment(c.Request.Context(), *strategy, amount, chainID, requestBody.WalletAddress)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, gin.H{
		"success": true,
		"data":    calculation,
	})
}

func (m ApiHandler) resolveStrategy(c *gin.Context, requestBody calculateInvestmentRequest, chainID int64) (*domain.Strategy, error) {
	if requestBody.StrategyID != "" {
		strategies, err := m.StrategyRepository.ListByWallet(c.Request.Context(), requestBody.WalletAddress)
		if err != nil {
			return nil, err
		}
		for _, s := range strategies {
			if s.ID == requestBody.StrategyID {
				return &s, nil
			}
		}
		return nil, domain.NotFoundError{Entity: "strategy"}
	}

	if len(requestBody.TargetAllocation) == 0 {
		return nil, domain.ValidationError{Reason: "either strategyId or targetAllocation is required"}
	}
	return &domain.Strategy{
		WalletAddress:    domain.NormalizeAddress(requestBody.WalletAddress),
		TargetAllocation: requestBody.TargetAllocation,
		ChainID:          chainID,
	}, nil
}
