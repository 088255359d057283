// ad hoc runner: calculates and executes a small investment against a dev
// node. not wired into any deploy.
package main

import (
	"context"
	"log"
	"os"

	"tokenfolio/cmd"
	"tokenfolio/internal/domain"
	"tokenfolio/internal/service"

	"github.com/shopspring/decimal"
)

func main() {
	deps, err := cmd.InitializeDependencies()
	if err != nil {
		log.Fatal(err)
	}
	defer cmd.CloseDependencies(deps)

	ctx := context.Background()

	userAddress := os.Getenv("FOLIO_WALLET")
	if userAddress == "" {
		log.Fatal("FOLIO_WALLET must be set")
	}
	chainID := int64(31337)

	strategy := domain.Strategy{
		WalletAddress: domain.NormalizeAddress(userAddress),
		ChainID:       chainID,
		TargetAllocation: []domain.TargetAllocation{
			{
				Token:            domain.Token{Address: "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", Symbol: "USDC", Decimals: 6, ChainID: chainID},
				TargetPercentage: 60,
			},
			{
				Token:            domain.Token{Address: domain.NativeTokenAddress, Symbol: "ETH", Decimals: 18, ChainID: chainID},
				TargetPercentage: 40,
			},
		},
	}

	calculation, err := deps.Investment.CalculateInvestment(ctx, strategy, decimal.RequireFromString("0.01"), chainID, userAddress)
	if err != nil {
		log.Fatal(err)
	}

	submitter := service.NewRpcTxSubmitter(deps.EthRpc, userAddress)
	txHashes, err := deps.Execution.ExecuteInvestment(ctx, *calculation, chainID, userAddress, submitter)
	if err != nil {
		log.Printf("execution stopped after %d tx(s): %v", len(txHashes), err)
	}
	for _, hash := range txHashes {
		log.Printf("submitted %s", hash)
	}
}
