package domain

import (
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AllocationTolerance is how far the sum of target percentages may drift from
// 100 before a strategy is rejected. Covers float noise from UI sliders; a sum
// of 99.98 is accepted, 95 is not.
const AllocationTolerance = 0.05

const (
	MaxNameLength        = 100
	MaxDescriptionLength = 500

	DefaultDriftThreshold = 5.0
	MinDriftThreshold     = 1.0
	MaxDriftThreshold     = 50.0

	DefaultChainID = int64(1)
)

type Token struct {
	Address  string `json:"address" bson:"address"`
	Symbol   string `json:"symbol" bson:"symbol"`
	Name     string `json:"name" bson:"name"`
	Decimals int    `json:"decimals" bson:"decimals"`
	ChainID  int64  `json:"chainId" bson:"chainId"`
}

type TargetAllocation struct {
	Token            Token   `json:"token" bson:"token"`
	TargetPercentage float64 `json:"targetPercentage" bson:"targetPercentage"`
}

type Strategy struct {
	MongoID          primitive.ObjectID `json:"mongoId" bson:"_id,omitempty"`
	ID               string             `json:"id" bson:"id"`
	WalletAddress    string             `json:"walletAddress" bson:"walletAddress"`
	Name             string             `json:"name" bson:"name"`
	Description      string             `json:"description" bson:"description"`
	TargetAllocation []TargetAllocation `json:"targetAllocation" bson:"targetAllocation"`
	DriftThreshold   float64            `json:"driftThreshold" bson:"driftThreshold"`
	AutoRebalance    bool               `json:"autoRebalance" bson:"autoRebalance"`
	ChainID          int64              `json:"chainId" bson:"chainId"`
	IsActive         bool               `json:"isActive" bson:"isActive"`
	CreatedAt        time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt" bson:"updatedAt"`
}

func (s Strategy) TotalPercentage() float64 {
	total := 0.0
	for _, a := range s.TargetAllocation {
		total += a.TargetPercentage
	}
	return total
}

func (s Strategy) IsValidAllocation() bool {
	return math.Abs(s.TotalPercentage()-100) <= AllocationTolerance
}

// Validate checks everything that can be checked before touching storage.
func (s Strategy) Validate() error {
	if !IsValidAddress(s.WalletAddress) {
		return ValidationError{Reason: "walletAddress must be a 0x-prefixed 20-byte hex address"}
	}
	if s.Name == "" {
		return ValidationError{Reason: "name is required"}
	}
	if len(s.Name) > MaxNameLength {
		return ValidationError{Reason: fmt.Sprintf("name must be at most %d characters", MaxNameLength)}
	}
	if len(s.Description) > MaxDescriptionLength {
		return ValidationError{Reason: fmt.Sprintf("description must be at most %d characters", MaxDescriptionLength)}
	}
	if len(s.TargetAllocation) == 0 {
		return ValidationError{Reason: "targetAllocation must contain at least one entry"}
	}
	for i, a := range s.TargetAllocation {
		if a.TargetPercentage < 0 {
			return ValidationError{Reason: fmt.Sprintf("targetAllocation[%d]: targetPercentage must be non-negative", i)}
		}
		if !IsValidAddress(a.Token.Address) {
			return ValidationError{Reason: fmt.Sprintf("targetAllocation[%d]: token address %q is malformed", i, a.Token.Address)}
		}
	}
	if !s.IsValidAllocation() {
		return ValidationError{Reason: fmt.Sprintf("target percentages must sum to 100, got %.2f", s.TotalPercentage())}
	}
	if s.DriftThreshold < MinDriftThreshold || s.DriftThreshold > MaxDriftThreshold {
		return ValidationError{Reason: fmt.Sprintf("driftThreshold must be between %.0f and %.0f", MinDriftThreshold, MaxDriftThreshold)}
	}
	return nil
}
