package internal

import (
	"encoding/json"
	"fmt"
	"os"
)

func Pprint(i interface{}) {
	bytes, err := json.MarshalIndent(i, "", "    ")
	if err != nil {
		panic(err)
	}
	fmt.Println(string(bytes))
}

type Secrets struct {
	Mongo     MongoSecrets   `json:"mongo"`
	SwapApi   SwapApiSecrets `json:"swapApi"`
	EthRpcURL string         `json:"ethRpcUrl"`
	// PriceFeedURL is a DefiLlama-style price endpoint. Empty means the static
	// dev fallback price is used.
	PriceFeedURL string `json:"priceFeedUrl"`
}

type MongoSecrets struct {
	URI      string `json:"uri"`
	Database string `json:"database"`
}

type SwapApiSecrets struct {
	BaseURL string `json:"baseUrl"`
	ApiKey  string `json:"apiKey"`
}

func LoadSecrets() (*Secrets, error) {
	secretsFile := "/go/src/app/secrets.json"
	if os.Getenv("FOLIO_ENV") == "dev" {
		secretsFile = "secrets-dev.json"
	} else if os.Getenv("FOLIO_ENV") == "test" {
		secretsFile = "secrets-test.json"
	}
	f, err := os.ReadFile(secretsFile)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", secretsFile, err)
	}

	secrets := Secrets{}
	err = json.Unmarshal(f, &secrets)
	if err != nil {
		return nil, err
	}

	return &secrets, nil
}
