package entities

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

var (
	token0 = MustToken(1, "0x0000000000000000000000000000000000000001", 18, "t0", "token0")
	token1 = MustToken(1, "0x0000000000000000000000000000000000000002", 18, "t1", "token1")
	token2 = MustToken(1, "0x0000000000000000000000000000000000000003", 18, "t2", "token2")
	token3 = MustToken(1, "0x0000000000000000000000000000000000000004", 18, "t3", "token3")

	usdc = MustToken(1, "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", 6, "USDC", "USD Coin")
	dai  = MustToken(1, "0x6B175474E89094C44Da98b954EedeAC495271d0F", 18, "DAI", "Dai Stablecoin")
	weth = MustToken(1, "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", 18, "WETH", "Wrapped Ether")
)

func amount(t testing.TB, token *Token, raw int64) CurrencyAmount {
	t.Helper()
	a, err := FromRawInt64(token, raw)
	require.NoError(t, err)
	return a
}

func bigAmount(t testing.TB, token *Token, raw string) CurrencyAmount {
	t.Helper()
	v, ok := new(big.Int).SetString(raw, 10)
	require.True(t, ok)
	a, err := FromRawAmount(token, v)
	require.NoError(t, err)
	return a
}

func pair(t testing.TB, a, b CurrencyAmount, opts ...PairOption) *Pair {
	t.Helper()
	p, err := NewPair(a, b, opts...)
	require.NoError(t, err)
	return p
}

// testPairs is the classic four-token graph used by the route search tests.
func testPairs(t testing.TB) (p01, p02, p03, p12, p13 *Pair) {
	p01 = pair(t, amount(t, token0, 1000), amount(t, token1, 1000))
	p02 = pair(t, amount(t, token0, 1000), amount(t, token2, 1100))
	p03 = pair(t, amount(t, token0, 1000), amount(t, token3, 900))
	p12 = pair(t, amount(t, token1, 1200), amount(t, token2, 1000))
	p13 = pair(t, amount(t, token1, 1200), amount(t, token3, 1300))
	return
}

func addr(hex string) common.Address { return common.HexToAddress(hex) }
