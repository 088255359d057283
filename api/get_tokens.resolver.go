package api

import (
	"strconv"
	"strings"

	"tokenfolio/internal/domain"

	"github.com/gin-gonic/gin"
)

func (m ApiHandler) getTokens(c *gin.Context) {
	chainID := domain.DefaultChainID
	if raw := c.Query("chainId"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			returnErrorJson(domain.ValidationError{Reason: "chainId must be an integer"}, c)
			return
		}
		chainID = parsed
	}

	raw := c.Query("addresses")
	if raw == "" {
		returnErrorJson(domain.ValidationError{Reason: "addresses query param is required"}, c)
		return
	}
	addresses := strings.Split(raw, ",")

	tokens, err := m.TokenService.GetTokens(c.Request.Context(), chainID, addresses)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, gin.H{
		"success": true,
		"data":    tokens,
		"count":   len(tokens),
	})
}
