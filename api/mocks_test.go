package api

import (
	"context"

	"tokenfolio/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeStrategyRepository keeps strategies in memory with the same matching
// rules the mongo repository applies.
type fakeStrategyRepository struct {
	strategies []domain.Strategy
	addErr     error
}

func (f *fakeStrategyRepository) Add(ctx context.Context, s domain.Strategy) (*domain.Strategy, error) {
	if f.addErr != nil {
		return nil, f.addErr
	}
	for _, existing := range f.strategies {
		if existing.ID == s.ID {
			return nil, domain.DuplicateKeyError{Key: s.ID}
		}
	}
	s.MongoID = primitive.NewObjectID()
	f.strategies = append(f.strategies, s)
	return &s, nil
}

func (f *fakeStrategyRepository) ListByWallet(ctx context.Context, walletAddress string) ([]domain.Strategy, error) {
	out := []domain.Strategy{}
	// newest first
	for i := len(f.strategies) - 1; i >= 0; i-- {
		s := f.strategies[i]
		if s.WalletAddress == domain.NormalizeAddress(walletAddress) && s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStrategyRepository) DeleteByIDForWallet(ctx context.Context, strategyID, walletAddress string) (*domain.Strategy, error) {
	for i, s := range f.strategies {
		if s.ID == strategyID && s.WalletAddress == domain.NormalizeAddress(walletAddress) {
			f.strategies = append(f.strategies[:i], f.strategies[i+1:]...)
			return &s, nil
		}
	}
	return nil, domain.NotFoundError{Entity: "strategy"}
}

func (f *fakeStrategyRepository) EnsureIndexes(ctx context.Context) error {
	return nil
}
