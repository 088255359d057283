package cmd

import (
	"context"
	"fmt"
	"time"

	"tokenfolio/api"
	"tokenfolio/internal"
	"tokenfolio/internal/repository"
	"tokenfolio/internal/service"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Dependencies struct {
	Handler     *api.ApiHandler
	SwapApi     repository.SwapApiRepository
	EthRpc      repository.EthRpcRepository
	Investment  service.InvestmentService
	Execution   service.ExecutionService
	mongoClient *mongo.Client
}

func InitializeDependencies() (*Dependencies, error) {
	secrets, err := internal.LoadSecrets()
	if err != nil {
		return nil, fmt.Errorf("failed to load secrets: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(secrets.Mongo.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := mongoClient.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	db := mongoClient.Database(secrets.Mongo.Database)

	strategyRepository := repository.NewStrategyRepository(db)
	if err := strategyRepository.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	apiRequestRepository := repository.NewApiRequestRepository(db)
	swapApiRepository := repository.NewSwapApiRepository(secrets.SwapApi.BaseURL, secrets.SwapApi.ApiKey)

	var priceFeedRepository repository.PriceFeedRepository
	if secrets.PriceFeedURL != "" {
		priceFeedRepository = repository.NewPriceFeedRepository(secrets.PriceFeedURL)
	} else {
		priceFeedRepository = repository.NewStaticPriceFeed(decimal.NewFromInt(3000))
	}

	ethRpcRepository := repository.NewEthRpcRepository(secrets.EthRpcURL)

	investmentService := service.NewInvestmentService(swapApiRepository, priceFeedRepository)
	executionService := service.NewExecutionService(swapApiRepository)
	tokenService := service.NewTokenService(swapApiRepository)

	return &Dependencies{
		Handler: &api.ApiHandler{
			StrategyRepository:   strategyRepository,
			ApiRequestRepository: apiRequestRepository,
			InvestmentService:    investmentService,
			TokenService:         tokenService,
		},
		SwapApi:     swapApiRepository,
		EthRpc:      ethRpcRepository,
		Investment:  investmentService,
		Execution:   executionService,
		mongoClient: mongoClient,
	}, nil
}

func CloseDependencies(deps *Dependencies) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return deps.mongoClient.Disconnect(ctx)
}
