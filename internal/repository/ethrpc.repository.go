package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"tokenfolio/internal/domain"
)

// EthRpcRepository is a minimal Ethereum JSON-RPC client. Transaction signing
// happens node-side (the node holds the key), which keeps key material out of
// this service entirely.
type EthRpcRepository interface {
	SendTransaction(ctx context.Context, tx domain.UnsignedTx) (string, error)
	GetTransactionReceipt(ctx context.Context, txHash string) (*TxReceipt, error)
	ChainID(ctx context.Context) (int64, error)
}

type TxReceipt struct {
	TxHash      string
	BlockNumber int64
	Success     bool
}

func NewEthRpcRepository(rpcURL string) EthRpcRepository {
	return &ethRpcRepositoryHandler{
		URL: rpcURL,
		HttpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

type ethRpcRepositoryHandler struct {
	URL        string
	HttpClient *http.Client
	requestID  atomic.Int64
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int64         `json:"id"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (h *ethRpcRepositoryHandler) SendTransaction(ctx context.Context, tx domain.UnsignedTx) (string, error) {
	param := map[string]string{
		"from": tx.From,
		"to":   tx.To,
		"data": tx.Data,
	}
	if tx.Value != nil && tx.Value.Sign() > 0 {
		param["value"] = encodeBig(tx.Value)
	}
	if tx.Gas > 0 {
		param["gas"] = "0x" + strconv.FormatUint(tx.Gas, 16)
	}
	if tx.GasPrice != nil && tx.GasPrice.Sign() > 0 {
		param["gasPrice"] = encodeBig(tx.GasPrice)
	}

	result, err := h.call(ctx, "eth_sendTransaction", []interface{}{param})
	if err != nil {
		return "", err
	}

	var txHash string
	if err := json.Unmarshal(result, &txHash); err != nil {
		return "", domain.UpstreamResponseError{Reason: fmt.Sprintf("eth_sendTransaction result is not a string: %v", err), Body: string(result)}
	}
	return txHash, nil
}

func (h *ethRpcRepositoryHandler) GetTransactionReceipt(ctx context.Context, txHash string) (*TxReceipt, error) {
	result, err := h.call(ctx, "eth_getTransactionReceipt", []interface{}{txHash})
	if err != nil {
		return nil, err
	}
	if string(result) == "null" {
		return nil, nil
	}

	parsed := struct {
		TransactionHash string `json:"transactionHash"`
		BlockNumber     string `json:"blockNumber"`
		Status          string `json:"status"`
	}{}
	if err := json.Unmarshal(result, &parsed); err != nil {
		return nil, domain.UpstreamResponseError{Reason: fmt.Sprintf("receipt payload is not valid JSON: %v", err), Body: string(result)}
	}

	blockNumber, _ := strconv.ParseInt(trimHexPrefix(parsed.BlockNumber), 16, 64)
	return &TxReceipt{
		TxHash:      parsed.TransactionHash,
		BlockNumber: blockNumber,
		Success:     parsed.Status == "0x1",
	}, nil
}

func (h *ethRpcRepositoryHandler) ChainID(ctx context.Context) (int64, error) {
	result, err := h.call(ctx, "eth_chainId", []interface{}{})
	if err != nil {
		return 0, err
	}
	var hexID string
	if err := json.Unmarshal(result, &hexID); err != nil {
		return 0, domain.UpstreamResponseError{Reason: fmt.Sprintf("eth_chainId result is not a string: %v", err), Body: string(result)}
	}
	return strconv.ParseInt(trimHexPrefix(hexID), 16, 64)
}

func (h *ethRpcRepositoryHandler) call(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      h.requestID.Add(1),
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	response, err := h.HttpClient.Do(req)
	if err != nil {
		return nil, domain.NetworkError{Err: err}
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, domain.NetworkError{Err: err}
	}

	parsed := rpcResponse{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, domain.UpstreamResponseError{Reason: fmt.Sprintf("rpc payload is not valid JSON: %v", err), Body: string(body)}
	}
	if parsed.Error != nil {
		return nil, domain.UpstreamError{Status: parsed.Error.Code, Body: parsed.Error.Message}
	}

	return parsed.Result, nil
}

func encodeBig(v *big.Int) string {
	return "0x" + v.Text(16)
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0:2] == "0x" {
		return s[2:]
	}
	return s
}
