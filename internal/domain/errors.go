package domain

import (
	"errors"
	"fmt"
)

// Typed errors for every failure class the API and services surface. Handlers
// pick HTTP statuses and user-facing messages off these with errors.As.

type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

type NotFoundError struct {
	Entity string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Entity)
}

type DuplicateKeyError struct {
	Key string
}

func (e DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key: %s", e.Key)
}

type RateLimitedError struct {
	Status int
	Body   string
}

func (e RateLimitedError) Error() string {
	return fmt.Sprintf("upstream rate limit hit (status %d): %s", e.Status, e.Body)
}

type InvalidRequestError struct {
	Status int
	Body   string
}

func (e InvalidRequestError) Error() string {
	return fmt.Sprintf("upstream rejected request (status %d): %s", e.Status, e.Body)
}

type NoLiquidityError struct {
	Pair   string
	Status int
	Body   string
}

func (e NoLiquidityError) Error() string {
	return fmt.Sprintf("no liquidity for %s (status %d): %s", e.Pair, e.Status, e.Body)
}

type NetworkError struct {
	Err error
}

func (e NetworkError) Error() string {
	return fmt.Sprintf("network failure calling upstream: %v", e.Err)
}

func (e NetworkError) Unwrap() error {
	return e.Err
}

type UpstreamError struct {
	Status int
	Body   string
}

func (e UpstreamError) Error() string {
	return fmt.Sprintf("upstream error (status %d): %s", e.Status, e.Body)
}

type UpstreamResponseError struct {
	Reason string
	Body   string
}

func (e UpstreamResponseError) Error() string {
	return fmt.Sprintf("malformed upstream response: %s", e.Reason)
}

type TestAddressError struct {
	Address string
	ChainID int64
}

func (e TestAddressError) Error() string {
	return fmt.Sprintf("address %s is a known test address and cannot be used on chain %d", e.Address, e.ChainID)
}

type WalletNotConnectedError struct{}

func (e WalletNotConnectedError) Error() string {
	return "no wallet connected"
}

type InternalError struct {
	Err error
}

func (e InternalError) Error() string {
	return fmt.Sprintf("internal error: %v", e.Err)
}

func (e InternalError) Unwrap() error {
	return e.Err
}

// UserMessage translates an error into a short message safe to show end users.
// Upstream status codes and bodies stay in logs only.
func UserMessage(err error) string {
	var (
		validationErr   ValidationError
		notFoundErr     NotFoundError
		duplicateErr    DuplicateKeyError
		rateLimitedErr  RateLimitedError
		invalidReqErr   InvalidRequestError
		noLiquidityErr  NoLiquidityError
		networkErr      NetworkError
		upstreamErr     UpstreamError
		upstreamRespErr UpstreamResponseError
		testAddrErr     TestAddressError
		walletErr       WalletNotConnectedError
	)
	switch {
	case errors.As(err, &validationErr):
		return validationErr.Reason
	case errors.As(err, &notFoundErr):
		return notFoundErr.Error()
	case errors.As(err, &duplicateErr):
		return "a strategy with this id already exists, please retry"
	case errors.As(err, &rateLimitedErr):
		return "rate limited by the swap service, wait a moment and retry"
	case errors.As(err, &invalidReqErr):
		return "the swap service rejected the request, check wallet address and network"
	case errors.As(err, &noLiquidityErr):
		return fmt.Sprintf("no liquidity available for %s", noLiquidityErr.Pair)
	case errors.As(err, &networkErr):
		return "could not reach the swap service, check your connection and retry"
	case errors.As(err, &upstreamErr), errors.As(err, &upstreamRespErr):
		return "the swap service returned an unexpected response, try again later"
	case errors.As(err, &testAddrErr):
		return "this wallet is a known test address and cannot invest on a production network"
	case errors.As(err, &walletErr):
		return "connect a wallet first"
	default:
		return "something went wrong, please try again"
	}
}
