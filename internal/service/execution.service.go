package service

import (
	"context"
	"fmt"
	"time"

	"tokenfolio/internal/domain"
	"tokenfolio/internal/logger"
	"tokenfolio/internal/repository"
)

const (
	executionSlippagePercent = 1.0

	// upstream gas estimates are unreliable for multi-hop routes, never go
	// below this
	minSwapGasLimit = 150_000

	defaultSettleDelay = 3 * time.Second
)

// TxSubmitter is the injected signing capability. Submitting is terminal: a
// sent transaction cannot be cancelled, only left unconfirmed.
type TxSubmitter interface {
	Address() string
	SubmitTransaction(ctx context.Context, tx domain.UnsignedTx) (string, error)
}

type ExecutionService interface {
	// ExecuteInvestment submits one transaction sequence per swap leg, in
	// plan order. On failure it returns the hashes already submitted along
	// with the error; completed legs are never rolled back.
	ExecuteInvestment(ctx context.Context, calculation domain.InvestmentCalculation, chainID int64, userAddress string, submitter TxSubmitter) ([]string, error)
}

func NewExecutionService(swapApiRepository repository.SwapApiRepository) ExecutionService {
	return executionServiceHandler{
		SwapApiRepository: swapApiRepository,
		SettleDelay:       defaultSettleDelay,
	}
}

type executionServiceHandler struct {
	SwapApiRepository repository.SwapApiRepository
	SettleDelay       time.Duration
}

func (h executionServiceHandler) ExecuteInvestment(ctx context.Context, calculation domain.InvestmentCalculation, chainID int64, userAddress string, submitter TxSubmitter) ([]string, error) {
	log := logger.FromContext(ctx)

	if submitter == nil || submitter.Address() == "" {
		return nil, domain.WalletNotConnectedError{}
	}
	if !domain.IsValidAddress(userAddress) {
		return nil, domain.ValidationError{Reason: fmt.Sprintf("user address %q is malformed", userAddress)}
	}
	if domain.IsTestAddress(userAddress) && domain.IsProductionChain(chainID) {
		return nil, domain.TestAddressError{Address: userAddress, ChainID: chainID}
	}

	txHashes := []string{}
	for i, swap := range calculation.Swaps {
		if swap.IsPassThrough() {
			continue
		}

		hash, err := h.executeLeg(ctx, swap, chainID, userAddress, submitter)
		if err != nil {
			// keep what already went through; the caller reconciles
			return txHashes, fmt.Errorf("allocation %d (%s->%s): %w", i, swap.FromToken.Symbol, swap.ToToken.Symbol, err)
		}
		txHashes = append(txHashes, hash)
		log.Infow("submitted swap",
			"allocation", i,
			"pair", fmt.Sprintf("%s->%s", swap.FromToken.Symbol, swap.ToToken.Symbol),
			"txHash", hash,
		)

		if i < len(calculation.Swaps)-1 {
			select {
			case <-ctx.Done():
				return txHashes, ctx.Err()
			case <-time.After(h.SettleDelay):
			}
		}
	}

	return txHashes, nil
}

func (h executionServiceHandler) executeLeg(ctx context.Context, swap domain.SwapAllocation, chainID int64, userAddress string, submitter TxSubmitter) (string, error) {
	decimals := swap.FromToken.Decimals
	if decimals == 0 {
		decimals = domain.NativeDecimals
	}
	amount := domain.ToSmallestUnit(swap.FromToken.Amount, decimals)

	// contract-token sources need an allowance before the router may spend
	// them; native currency does not
	if domain.NormalizeAddress(swap.FromToken.Address) != domain.NativeTokenAddress {
		allowance, err := h.SwapApiRepository.GetAllowance(ctx, chainID, swap.FromToken.Address, userAddress)
		if err != nil {
			return "", fmt.Errorf("allowance check: %w", err)
		}
		if allowance.Cmp(amount) < 0 {
			approvalTx, err := h.SwapApiRepository.BuildApprovalTx(ctx, chainID, swap.FromToken.Address, amount)
			if err != nil {
				return "", fmt.Errorf("approval build: %w", err)
			}
			approvalTx.From = userAddress
			if _, err := submitter.SubmitTransaction(ctx, *approvalTx); err != nil {
				return "", fmt.Errorf("approval submit: %w", err)
			}
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(h.SettleDelay):
			}
		}
	}

	swapTx, err := h.SwapApiRepository.BuildSwapTx(ctx, chainID, swap.FromToken.Address, swap.ToToken.Address, amount, userAddress, executionSlippagePercent)
	if err != nil {
		return "", fmt.Errorf("swap build: %w", err)
	}
	if swapTx.Gas < minSwapGasLimit {
		swapTx.Gas = minSwapGasLimit
	}
	swapTx.From = userAddress

	hash, err := submitter.SubmitTransaction(ctx, *swapTx)
	if err != nil {
		return "", fmt.Errorf("swap submit: %w", err)
	}
	return hash, nil
}

// NewRpcTxSubmitter submits through a JSON-RPC node that holds the account's
// key (dev nodes, wallet bridges).
func NewRpcTxSubmitter(rpc repository.EthRpcRepository, address string) TxSubmitter {
	return rpcTxSubmitterHandler{Rpc: rpc, Addr: domain.NormalizeAddress(address)}
}

type rpcTxSubmitterHandler struct {
	Rpc  repository.EthRpcRepository
	Addr string
}

func (h rpcTxSubmitterHandler) Address() string {
	return h.Addr
}

func (h rpcTxSubmitterHandler) SubmitTransaction(ctx context.Context, tx domain.UnsignedTx) (string, error) {
	if tx.From == "" {
		tx.From = h.Addr
	}
	return h.Rpc.SendTransaction(ctx, tx)
}
