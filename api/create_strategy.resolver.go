package api

import (
	"fmt"
	"time"

	"tokenfolio/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type createStrategyRequest struct {
	WalletAddress    string                    `json:"walletAddress"`
	Name             string                    `json:"name"`
	Description      string                    `json:"description"`
	TargetAllocation []domain.TargetAllocation `json:"targetAllocation"`
	DriftThreshold   *float64                  `json:"driftThreshold"`
	AutoRebalance    *bool                     `json:"autoRebalance"`
	ChainID          *int64                    `json:"chainId"`
}

type strategyResponse struct {
	ID                string                    `json:"id"`
	MongoID           string                    `json:"mongoId"`
	Name              string                    `json:"name"`
	Description       string                    `json:"description"`
	TargetAllocation  []domain.TargetAllocation `json:"targetAllocation"`
	DriftThreshold    float64                   `json:"driftThreshold"`
	AutoRebalance     bool                      `json:"autoRebalance"`
	IsActive          bool                      `json:"isActive"`
	CreatedAt         time.Time                 `json:"createdAt"`
	WalletAddress     string                    `json:"walletAddress"`
	ChainID           int64                     `json:"chainId"`
	TotalPercentage   float64                   `json:"totalPercentage"`
	IsValidAllocation bool                      `json:"isValidAllocation"`
}

func newStrategyResponse(s domain.Strategy) strategyResponse {
	return strategyResponse{
		ID:                s.ID,
		MongoID:           s.MongoID.Hex(),
		Name:              s.Name,
		Description:       s.Description,
		TargetAllocation:  s.TargetAllocation,
		DriftThreshold:    s.DriftThreshold,
		AutoRebalance:     s.AutoRebalance,
		IsActive:          s.IsActive,
		CreatedAt:         s.CreatedAt,
		WalletAddress:     s.WalletAddress,
		ChainID:           s.ChainID,
		TotalPercentage:   s.TotalPercentage(),
		IsValidAllocation: s.IsValidAllocation(),
	}
}

// newStrategyID is time-ordered with a random suffix. Uniqueness is enforced
// by the storage index; a collision surfaces as a conflict, not silent reuse.
func newStrategyID() string {
	return fmt.Sprintf("strat_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

func (m ApiHandler) createStrategy(c *gin.Context) {
	var requestBody createStrategyRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJson(domain.ValidationError{Reason: fmt.Sprintf("malformed request body: %v", err)}, c)
		return
	}

	strategy := domain.Strategy{
		ID:               newStrategyID(),
		WalletAddress:    domain.NormalizeAddress(requestBody.WalletAddress),
		Name:             requestBody.Name,
		Description:      requestBody.Description,
		TargetAllocation: requestBody.TargetAllocation,
		DriftThreshold:   domain.DefaultDriftThreshold,
		ChainID:          domain.DefaultChainID,
		IsActive:         true,
	}
	if requestBody.DriftThreshold != nil {
		strategy.DriftThreshold = *requestBody.DriftThreshold
	}
	if requestBody.AutoRebalance != nil {
		strategy.AutoRebalance = *requestBody.AutoRebalance
	}
	if requestBody.ChainID != nil {
		strategy.ChainID = *requestBody.ChainID
	}

	if err := strategy.Validate(); err != nil {
		returnErrorJson(err, c)
		return
	}

	stored, err := m.StrategyRepository.Add(c.Request.Context(), strategy)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(201, gin.H{
		"success": true,
		"data":    newStrategyResponse(*stored),
	})
}
