package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tokenfolio/internal/domain"

	"github.com/shopspring/decimal"
)

// PriceFeedRepository supplies the native currency's USD price for converting
// gas and investment totals. Injected so the calculator never hard-codes a
// price.
type PriceFeedRepository interface {
	GetNativePriceUSD(ctx context.Context, chainID int64) (decimal.Decimal, error)
}

var nativeCoinIDs = map[int64]string{
	1:     "coingecko:ethereum",
	10:    "coingecko:ethereum",
	56:    "coingecko:binancecoin",
	137:   "coingecko:matic-network",
	8453:  "coingecko:ethereum",
	42161: "coingecko:ethereum",
}

func NewPriceFeedRepository(baseURL string) PriceFeedRepository {
	return priceFeedRepositoryHandler{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HttpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type priceFeedRepositoryHandler struct {
	BaseURL    string
	HttpClient *http.Client
}

type priceFeedResponse struct {
	Coins map[string]struct {
		Price float64 `json:"price"`
	} `json:"coins"`
}

func (h priceFeedRepositoryHandler) GetNativePriceUSD(ctx context.Context, chainID int64) (decimal.Decimal, error) {
	coinID, ok := nativeCoinIDs[chainID]
	if !ok {
		coinID = nativeCoinIDs[1]
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/prices/current/%s", h.BaseURL, coinID), nil)
	if err != nil {
		return decimal.Zero, err
	}

	response, err := h.HttpClient.Do(req)
	if err != nil {
		return decimal.Zero, domain.NetworkError{Err: err}
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return decimal.Zero, domain.NetworkError{Err: err}
	}
	if response.StatusCode != http.StatusOK {
		return decimal.Zero, domain.UpstreamError{Status: response.StatusCode, Body: string(body)}
	}

	parsed := priceFeedResponse{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return decimal.Zero, domain.UpstreamResponseError{Reason: fmt.Sprintf("price payload is not valid JSON: %v", err), Body: string(body)}
	}
	coin, ok := parsed.Coins[coinID]
	if !ok || coin.Price <= 0 {
		return decimal.Zero, domain.UpstreamResponseError{Reason: fmt.Sprintf("no usable price for %s", coinID), Body: string(body)}
	}

	return decimal.NewFromFloat(coin.Price), nil
}

// NewStaticPriceFeed returns a feed pinned to one price. Dev/test only.
func NewStaticPriceFeed(priceUSD decimal.Decimal) PriceFeedRepository {
	return staticPriceFeedHandler{Price: priceUSD}
}

type staticPriceFeedHandler struct {
	Price decimal.Decimal
}

func (h staticPriceFeedHandler) GetNativePriceUSD(ctx context.Context, chainID int64) (decimal.Decimal, error) {
	return h.Price, nil
}
