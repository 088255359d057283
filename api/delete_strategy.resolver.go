package api

import (
	"tokenfolio/internal/domain"

	"github.com/gin-gonic/gin"
)

type deleteStrategyRequest struct {
	WalletAddress string `json:"walletAddress"`
}

func (m ApiHandler) deleteStrategy(c *gin.Context) {
	strategyID := c.Param("strategyId")

	var requestBody deleteStrategyRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil || requestBody.WalletAddress == "" {
		returnErrorJson(domain.ValidationError{Reason: "walletAddress is required"}, c)
		return
	}
	if strategyID == "" {
		returnErrorJson(domain.ValidationError{Reason: "strategyId is required"}, c)
		return
	}

	deleted, err := m.StrategyRepository.DeleteByIDForWallet(c.Request.Context(), strategyID, requestBody.WalletAddress)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, gin.H{
		"success": true,
		"message": "strategy deleted",
		"data": gin.H{
			"id":      deleted.ID,
			"mongoId": deleted.MongoID.Hex(),
			"name":    deleted.Name,
		},
	})
}
