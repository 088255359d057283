package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"sync"

	"tokenfolio/internal/domain"
)

// fakeSwapApi scripts quote gateway responses per destination token address.
type fakeSwapApi struct {
	mu sync.Mutex

	quotes     map[string]*domain.Quote
	quoteErrs  map[string]error
	allowances map[string]*big.Int
	swapTxs    map[string]*domain.UnsignedTx
	swapErrs   map[string]error
	tokens     map[string]*domain.Token
	tokenErrs  map[string]error

	quoteCalls    []string
	approvalCalls []string
	swapCalls     []string
}

func (f *fakeSwapApi) GetQuote(ctx context.Context, chainID int64, src, dst string, amount *big.Int) (*domain.Quote, error) {
	f.mu.Lock()
	f.quoteCalls = append(f.quoteCalls, domain.NormalizeAddress(dst))
	f.mu.Unlock()
	if err, ok := f.quoteErrs[domain.NormalizeAddress(dst)]; ok {
		return nil, err
	}
	if q, ok := f.quotes[domain.NormalizeAddress(dst)]; ok {
		return q, nil
	}
	return nil, domain.UpstreamError{Status: 500, Body: "no scripted quote"}
}

func (f *fakeSwapApi) GetAllowance(ctx context.Context, chainID int64, tokenAddress, walletAddress string) (*big.Int, error) {
	if a, ok := f.allowances[domain.NormalizeAddress(tokenAddress)]; ok {
		return a, nil
	}
	return big.NewInt(0), nil
}

func (f *fakeSwapApi) BuildApprovalTx(ctx context.Context, chainID int64, tokenAddress string, amount *big.Int) (*domain.UnsignedTx, error) {
	f.mu.Lock()
	f.approvalCalls = append(f.approvalCalls, domain.NormalizeAddress(tokenAddress))
	f.mu.Unlock()
	return &domain.UnsignedTx{To: tokenAddress, Data: "0x095ea7b3", Value: big.NewInt(0)}, nil
}

func (f *fakeSwapApi) BuildSwapTx(ctx context.Context, chainID int64, src, dst string, amount *big.Int, fromAddress string, slippagePercent float64) (*domain.UnsignedTx, error) {
	f.mu.Lock()
	f.swapCalls = append(f.swapCalls, domain.NormalizeAddress(dst))
	f.mu.Unlock()
	if err, ok := f.swapErrs[domain.NormalizeAddress(dst)]; ok {
		return nil, err
	}
	if tx, ok := f.swapTxs[domain.NormalizeAddress(dst)]; ok {
		return tx, nil
	}
	return &domain.UnsignedTx{
		To:    "0x7777777777777777777777777777777777777777",
		Data:  "0xdeadbeef",
		Value: amount,
		Gas:   180000,
	}, nil
}

func (f *fakeSwapApi) GetTokenInfo(ctx context.Context, chainID int64, address string) (*domain.Token, error) {
	if err, ok := f.tokenErrs[domain.NormalizeAddress(address)]; ok {
		return nil, err
	}
	if t, ok := f.tokens[domain.NormalizeAddress(address)]; ok {
		return t, nil
	}
	return nil, domain.UpstreamError{Status: 500, Body: "no scripted token"}
}

func newQuote(dstAmount string, priceImpact float64) *domain.Quote {
	amount, ok := new(big.Int).SetString(dstAmount, 10)
	if !ok {
		panic(fmt.Sprintf("bad dstAmount %q", dstAmount))
	}
	return &domain.Quote{
		DstAmount:          amount,
		PriceImpactPercent: priceImpact,
		Raw:                json.RawMessage(`{}`),
	}
}

// fakeSubmitter records every submitted transaction and can be scripted to
// fail on the nth call.
type fakeSubmitter struct {
	addr      string
	failOn    int // 1-based call index, 0 means never fail
	calls     int
	submitted []domain.UnsignedTx
}

func (f *fakeSubmitter) Address() string {
	return f.addr
}

func (f *fakeSubmitter) SubmitTransaction(ctx context.Context, tx domain.UnsignedTx) (string, error) {
	f.calls++
	if f.failOn != 0 && f.calls == f.failOn {
		return "", domain.NetworkError{Err: fmt.Errorf("connection reset")}
	}
	f.submitted = append(f.submitted, tx)
	return fmt.Sprintf("0xhash%d", f.calls), nil
}
