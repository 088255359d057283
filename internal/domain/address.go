package domain

import (
	"regexp"
	"strings"
)

// NativeTokenAddress is the sentinel the swap API uses for the chain's native
// currency (ETH, BNB, MATIC, ...) in place of a contract address.
const NativeTokenAddress = "0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee"

const NativeDecimals = 18

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

func IsValidAddress(address string) bool {
	return addressPattern.MatchString(address)
}

func NormalizeAddress(address string) string {
	return strings.ToLower(address)
}

// wrappedNativeByChain maps chain id to the canonical wrapped-native contract.
// Swapping into one of these is a pass-through for allocation purposes.
var wrappedNativeByChain = map[int64]string{
	1:     "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2", // WETH
	10:    "0x4200000000000000000000000000000000000006", // WETH (OP stack)
	56:    "0xbb4cdb9cbd36b01bd1cbaebf2de08d9173bc095c", // WBNB
	137:   "0x0d500b1d8e8ef31e21c99d1db9a6444d3adf1270", // WMATIC
	8453:  "0x4200000000000000000000000000000000000006", // WETH (Base)
	42161: "0x82af49447d8a07e3bd95bd0d56f35241523fbab1", // WETH (Arbitrum)
}

func WrappedNativeAddress(chainID int64) string {
	return wrappedNativeByChain[chainID]
}

var nativeSymbolByChain = map[int64]string{
	56:  "BNB",
	137: "MATIC",
}

func NativeSymbol(chainID int64) string {
	if s, ok := nativeSymbolByChain[chainID]; ok {
		return s
	}
	return "ETH"
}

// IsNativeOrWrapped reports whether an allocation into this token needs no swap
// when investing the chain's native currency.
func IsNativeOrWrapped(chainID int64, address string) bool {
	addr := NormalizeAddress(address)
	return addr == NativeTokenAddress || addr == wrappedNativeByChain[chainID]
}

// Well-known development addresses (local node defaults, burn addresses). These
// hold no real funds, so a transaction built for one on a production chain is
// meaningless and gets rejected up front.
var testAddresses = map[string]bool{
	"0x0000000000000000000000000000000000000000": true,
	"0x000000000000000000000000000000000000dead": true,
	"0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266": true, // hardhat/anvil account 0
	"0x70997970c51812dc3a010c7d01b50e0d17dc79c8": true, // hardhat/anvil account 1
	"0x3c44cdddb6a900fa2b585dd299e03d12fa4293bc": true, // hardhat/anvil account 2
}

func IsTestAddress(address string) bool {
	return testAddresses[NormalizeAddress(address)]
}

var testChainIDs = map[int64]bool{
	5:        true, // goerli
	1337:     true,
	17000:    true, // holesky
	31337:    true, // hardhat/anvil
	11155111: true, // sepolia
}

// IsProductionChain treats every chain id outside the known test networks as
// production.
func IsProductionChain(chainID int64) bool {
	return !testChainIDs[chainID]
}
