package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"tokenfolio/internal/domain"
	"tokenfolio/internal/logger"
	"tokenfolio/internal/repository"
	"tokenfolio/internal/service"
	"tokenfolio/internal/util"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type ApiHandler struct {
	StrategyRepository   repository.StrategyRepository
	ApiRequestRepository repository.ApiRequestRepository
	InvestmentService    service.InvestmentService
	TokenService         service.TokenService
}

func (m ApiHandler) StartApi(port int) error {
	router := gin.Default()
	router.Use(cors.Default())
	router.Use(m.logRequestMiddleware)

	m.registerRoutes(router)

	return router.Run(fmt.Sprintf(":%d", port))
}

func (m ApiHandler) registerRoutes(router *gin.Engine) {
	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(200, map[string]string{"message": "welcome to tokenfolio"})
	})
	router.POST("/strategies", m.createStrategy)
	router.GET("/strategies", m.getStrategies)
	router.DELETE("/strategies/:strategyId", m.deleteStrategy)
	router.POST("/calculateInvestment", m.calculateInvestment)
	router.GET("/tokens", m.getTokens)
}

// statusForError maps the error taxonomy onto HTTP statuses. Anything
// unrecognized is a 500.
func statusForError(err error) int {
	var (
		validationErr   domain.ValidationError
		notFoundErr     domain.NotFoundError
		duplicateErr    domain.DuplicateKeyError
		rateLimitedErr  domain.RateLimitedError
		invalidReqErr   domain.InvalidRequestError
		noLiquidityErr  domain.NoLiquidityError
		networkErr      domain.NetworkError
		upstreamErr     domain.UpstreamError
		upstreamRespErr domain.UpstreamResponseError
		testAddrErr     domain.TestAddressError
		walletErr       domain.WalletNotConnectedError
	)
	switch {
	case errors.As(err, &validationErr), errors.As(err, &testAddrErr), errors.As(err, &walletErr), errors.As(err, &invalidReqErr):
		return http.StatusBadRequest
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.As(err, &duplicateErr):
		return http.StatusConflict
	case errors.As(err, &noLiquidityErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &rateLimitedErr):
		return http.StatusTooManyRequests
	case errors.As(err, &networkErr), errors.As(err, &upstreamErr), errors.As(err, &upstreamRespErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func returnErrorJson(err error, c *gin.Context) {
	logger.FromContext(c.Request.Context()).Errorw("request failed",
		"route", c.Request.URL.Path,
		"error", err,
	)
	c.AbortWithStatusJSON(statusForError(err), gin.H{
		"success": false,
		"error":   domain.UserMessage(err),
	})
}

type responseBodyWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (r responseBodyWriter) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (m ApiHandler) logRequestMiddleware(ctx *gin.Context) {
	if m.ApiRequestRepository == nil {
		ctx.Next()
		return
	}
	log := logger.FromContext(ctx.Request.Context())

	w := &responseBodyWriter{body: &bytes.Buffer{}, ResponseWriter: ctx.Writer}
	ctx.Writer = w

	body, err := ctx.GetRawData()
	if err != nil {
		log.Warnf("failed to get raw request data: %v", err)
	}
	ctx.Request.Body = io.NopCloser(bytes.NewReader(body))

	start := time.Now().UTC()
	logCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := m.ApiRequestRepository.Add(logCtx, repository.APIRequest{
		IPAddress:   util.StringPointer(ctx.ClientIP()),
		Method:      ctx.Request.Method,
		Route:       ctx.Request.URL.Path,
		RequestBody: util.StringPointer(string(body)),
		StartTs:     start,
	})
	if err != nil {
		log.Warnf("failed to record api request: %v", err)
	}

	ctx.Next()

	if req != nil {
		durationMs := time.Since(start).Milliseconds()
		statusCode := ctx.Writer.Status()
		req.DurationMs = &durationMs
		req.StatusCode = &statusCode
		req.ResponseBody = util.StringPointer(w.body.String())

		if err := m.ApiRequestRepository.Update(logCtx, *req); err != nil {
			log.Warnf("failed to update api request: %v", err)
		}
	}
}
