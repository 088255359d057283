package service

import (
	"context"
	"time"

	"tokenfolio/internal/domain"
	"tokenfolio/internal/logger"
	"tokenfolio/internal/repository"

	"golang.org/x/sync/errgroup"
)

const (
	metadataBatchSize  = 5
	metadataBatchDelay = time.Second
)

type TokenService interface {
	// GetTokens resolves token metadata for a set of contract addresses,
	// batched to stay inside the upstream rate limit. Addresses that fail to
	// resolve are skipped, not fatal.
	GetTokens(ctx context.Context, chainID int64, addresses []string) ([]domain.Token, error)
}

func NewTokenService(swapApiRepository repository.SwapApiRepository) TokenService {
	return tokenServiceHandler{
		SwapApiRepository: swapApiRepository,
	}
}

type tokenServiceHandler struct {
	SwapApiRepository repository.SwapApiRepository
}

func (h tokenServiceHandler) GetTokens(ctx context.Context, chainID int64, addresses []string) ([]domain.Token, error) {
	log := logger.FromContext(ctx)

	for _, address := range addresses {
		if !domain.IsValidAddress(address) {
			return nil, domain.ValidationError{Reason: "token address " + address + " is malformed"}
		}
	}

	results := make([]*domain.Token, len(addresses))

	for start := 0; start < len(addresses); start += metadataBatchSize {
		if start > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(metadataBatchDelay):
			}
		}

		end := start + metadataBatchSize
		if end > len(addresses) {
			end = len(addresses)
		}

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			i := i
			address := addresses[i]
			g.Go(func() error {
				token, err := h.SwapApiRepository.GetTokenInfo(gctx, chainID, address)
				if err != nil {
					log.Warnf("token metadata lookup failed for %s: %v", address, err)
					return gctx.Err()
				}
				results[i] = token
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	out := []domain.Token{}
	for _, t := range results {
		if t != nil {
			out = append(out, *t)
		}
	}
	return out, nil
}
