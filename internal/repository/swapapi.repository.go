package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tokenfolio/internal/domain"

	"golang.org/x/time/rate"
)

// SwapApiRepository wraps the external swap aggregator. Stateless between
// calls; the only shared piece is the outbound rate limiter.
type SwapApiRepository interface {
	GetQuote(ctx context.Context, chainID int64, src, dst string, amount *big.Int) (*domain.Quote, error)
	GetAllowance(ctx context.Context, chainID int64, tokenAddress, walletAddress string) (*big.Int, error)
	BuildApprovalTx(ctx context.Context, chainID int64, tokenAddress string, amount *big.Int) (*domain.UnsignedTx, error)
	BuildSwapTx(ctx context.Context, chainID int64, src, dst string, amount *big.Int, fromAddress string, slippagePercent float64) (*domain.UnsignedTx, error)
	GetTokenInfo(ctx context.Context, chainID int64, address string) (*domain.Token, error)
}

func NewSwapApiRepository(baseURL, apiKey string) SwapApiRepository {
	return &swapApiRepositoryHandler{
		BaseURL: strings.TrimRight(baseURL, "/"),
		ApiKey:  apiKey,
		HttpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		// upstream throttles aggressively; keep outbound calls ~200ms apart
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 1),
	}
}

type swapApiRepositoryHandler struct {
	BaseURL    string
	ApiKey     string
	HttpClient *http.Client
	limiter    *rate.Limiter
}

type quoteResponse struct {
	DstAmount   string  `json:"dstAmount"`
	PriceImpact float64 `json:"priceImpact"`
	Gas         uint64  `json:"gas"`
}

func (h *swapApiRepositoryHandler) GetQuote(ctx context.Context, chainID int64, src, dst string, amount *big.Int) (*domain.Quote, error) {
	params := url.Values{}
	params.Set("src", domain.NormalizeAddress(src))
	params.Set("dst", domain.NormalizeAddress(dst))
	params.Set("amount", amount.String())
	params.Set("includeGas", "true")

	body, err := h.get(ctx, fmt.Sprintf("/swap/v6.0/%d/quote", chainID), params, pair(src, dst))
	if err != nil {
		return nil, err
	}

	parsed := quoteResponse{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, domain.UpstreamResponseError{Reason: fmt.Sprintf("quote payload is not valid JSON: %v", err), Body: string(body)}
	}
	dstAmount, ok := new(big.Int).SetString(parsed.DstAmount, 10)
	if !ok {
		return nil, domain.UpstreamResponseError{Reason: fmt.Sprintf("quote dstAmount %q is not an integer", parsed.DstAmount), Body: string(body)}
	}

	return &domain.Quote{
		DstAmount:          dstAmount,
		PriceImpactPercent: parsed.PriceImpact,
		EstimatedGas:       parsed.Gas,
		Raw:                json.RawMessage(body),
	}, nil
}

type allowanceResponse struct {
	Allowance string `json:"allowance"`
}

func (h *swapApiRepositoryHandler) GetAllowance(ctx context.Context, chainID int64, tokenAddress, walletAddress string) (*big.Int, error) {
	params := url.Values{}
	params.Set("tokenAddress", domain.NormalizeAddress(tokenAddress))
	params.Set("walletAddress", domain.NormalizeAddress(walletAddress))

	body, err := h.get(ctx, fmt.Sprintf("/swap/v6.0/%d/approve/allowance", chainID), params, tokenAddress)
	if err != nil {
		return nil, err
	}

	parsed := allowanceResponse{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, domain.UpstreamResponseError{Reason: fmt.Sprintf("allowance payload is not valid JSON: %v", err), Body: string(body)}
	}
	allowance, ok := new(big.Int).SetString(parsed.Allowance, 10)
	if !ok {
		return nil, domain.UpstreamResponseError{Reason: fmt.Sprintf("allowance %q is not an integer", parsed.Allowance), Body: string(body)}
	}

	return allowance, nil
}

type approveTxResponse struct {
	To       string `json:"to"`
	Data     string `json:"data"`
	Value    string `json:"value"`
	GasPrice string `json:"gasPrice"`
}

func (h *swapApiRepositoryHandler) BuildApprovalTx(ctx context.Context, chainID int64, tokenAddress string, amount *big.Int) (*domain.UnsignedTx, error) {
	params := url.Values{}
	params.Set("tokenAddress", domain.NormalizeAddress(tokenAddress))
	params.Set("amount", amount.String())

	body, err := h.get(ctx, fmt.Sprintf("/swap/v6.0/%d/approve/transaction", chainID), params, tokenAddress)
	if err != nil {
		return nil, err
	}

	parsed := approveTxResponse{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, domain.UpstreamResponseError{Reason: fmt.Sprintf("approval payload is not valid JSON: %v", err), Body: string(body)}
	}
	if parsed.To == "" || parsed.Data == "" {
		return nil, domain.UpstreamResponseError{Reason: "approval payload missing to/data", Body: string(body)}
	}

	return &domain.UnsignedTx{
		To:       parsed.To,
		Data:     parsed.Data,
		Value:    parseBigIntOrZero(parsed.Value),
		GasPrice: parseBigIntOrZero(parsed.GasPrice),
	}, nil
}

type swapTxResponse struct {
	DstAmount string `json:"dstAmount"`
	Tx        struct {
		From     string `json:"from"`
		To       string `json:"to"`
		Data     string `json:"data"`
		Value    string `json:"value"`
		Gas      uint64 `json:"gas"`
		GasPrice string `json:"gasPrice"`
	} `json:"tx"`
}

func (h *swapApiRepositoryHandler) BuildSwapTx(ctx context.Context, chainID int64, src, dst string, amount *big.Int, fromAddress string, slippagePercent float64) (*domain.UnsignedTx, error) {
	params := url.Values{}
	params.Set("src", domain.NormalizeAddress(src))
	params.Set("dst", domain.NormalizeAddress(dst))
	params.Set("amount", amount.String())
	params.Set("from", domain.NormalizeAddress(fromAddress))
	params.Set("slippage", strconv.FormatFloat(slippagePercent, 'f', -1, 64))
	params.Set("disableEstimate", "false")
	params.Set("allowPartialFill", "false")

	body, err := h.get(ctx, fmt.Sprintf("/swap/v6.0/%d/swap", chainID), params, pair(src, dst))
	if err != nil {
		return nil, err
	}

	parsed := swapTxResponse{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, domain.UpstreamResponseError{Reason: fmt.Sprintf("swap payload is not valid JSON: %v", err), Body: string(body)}
	}
	if parsed.Tx.To == "" || parsed.Tx.Data == "" {
		return nil, domain.UpstreamResponseError{Reason: "swap payload missing tx.to/tx.data", Body: string(body)}
	}

	return &domain.UnsignedTx{
		From:     parsed.Tx.From,
		To:       parsed.Tx.To,
		Data:     parsed.Tx.Data,
		Value:    parseBigIntOrZero(parsed.Tx.Value),
		Gas:      parsed.Tx.Gas,
		GasPrice: parseBigIntOrZero(parsed.Tx.GasPrice),
	}, nil
}

type tokenInfoResponse struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals int    `json:"decimals"`
}

func (h *swapApiRepositoryHandler) GetTokenInfo(ctx context.Context, chainID int64, address string) (*domain.Token, error) {
	body, err := h.get(ctx, fmt.Sprintf("/token/v1.2/%d/custom/%s", chainID, domain.NormalizeAddress(address)), url.Values{}, address)
	if err != nil {
		return nil, err
	}

	parsed := tokenInfoResponse{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, domain.UpstreamResponseError{Reason: fmt.Sprintf("token payload is not valid JSON: %v", err), Body: string(body)}
	}
	if parsed.Symbol == "" {
		return nil, domain.UpstreamResponseError{Reason: fmt.Sprintf("token payload for %s missing symbol", address), Body: string(body)}
	}

	return &domain.Token{
		Address:  domain.NormalizeAddress(parsed.Address),
		Symbol:   parsed.Symbol,
		Name:     parsed.Name,
		Decimals: parsed.Decimals,
		ChainID:  chainID,
	}, nil
}

func (h *swapApiRepositoryHandler) get(ctx context.Context, path string, params url.Values, pairLabel string) ([]byte, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqURL := h.BaseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	if h.ApiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.ApiKey)
	}

	response, err := h.HttpClient.Do(req)
	if err != nil {
		return nil, domain.NetworkError{Err: err}
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, domain.NetworkError{Err: fmt.Errorf("received status code %d and failed to read body: %w", response.StatusCode, err)}
	}

	switch {
	case response.StatusCode == http.StatusTooManyRequests:
		return nil, domain.RateLimitedError{Status: response.StatusCode, Body: string(body)}
	case response.StatusCode == http.StatusBadRequest:
		if strings.Contains(strings.ToLower(string(body)), "insufficient liquidity") {
			return nil, domain.NoLiquidityError{Pair: pairLabel, Status: response.StatusCode, Body: string(body)}
		}
		return nil, domain.InvalidRequestError{Status: response.StatusCode, Body: string(body)}
	case response.StatusCode < 200 || response.StatusCode > 299:
		return nil, domain.UpstreamError{Status: response.StatusCode, Body: string(body)}
	}

	return body, nil
}

func parseBigIntOrZero(s string) *big.Int {
	if s == "" {
		return big.NewInt(0)
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return big.NewInt(0)
	}
	return v
}

func pair(src, dst string) string {
	return fmt.Sprintf("%s->%s", domain.NormalizeAddress(src), domain.NormalizeAddress(dst))
}
