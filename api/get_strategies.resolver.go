package api

import (
	"tokenfolio/internal/domain"

	"github.com/gin-gonic/gin"
)

func (m ApiHandler) getStrategies(c *gin.Context) {
	walletAddress := c.Query("walletAddress")
	if !domain.IsValidAddress(walletAddress) {
		returnErrorJson(domain.ValidationError{Reason: "walletAddress query param must be a 0x-prefixed 20-byte hex address"}, c)
		return
	}

	strategies, err := m.StrategyRepository.ListByWallet(c.Request.Context(), walletAddress)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	out := []strategyResponse{}
	for _, s := range strategies {
		out = append(out, newStrategyResponse(s))
	}

	c.JSON(200, gin.H{
		"success": true,
		"data":    out,
		"count":   len(out),
	})
}
