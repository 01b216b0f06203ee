package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const staticConfig = `
chain_id: 1
search:
  max_hops: 2
tokens:
  - address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
    symbol: USDC
    name: USD Coin
    decimals: 6
  - address: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
    symbol: WETH
    name: Wrapped Ether
    decimals: 18
pools:
  - address: "0xB4e16d0168e52d35CaCD2c6185b44281Ec28C9Dc"
    token0: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
    token1: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
    reserve0: "3000000000000"
    reserve1: "1000000000000000000000"
`

func TestParseStatic(t *testing.T) {
	cfg, err := Parse([]byte(staticConfig))
	require.NoError(t, err)

	assert.Equal(t, uint64(1), cfg.ChainID)
	assert.Equal(t, DefaultRefreshInterval, cfg.RefreshInterval)
	assert.Equal(t, DefaultConcurrency, cfg.Concurrency)
	assert.Equal(t, 2, cfg.Search.MaxHops)

	tokens := cfg.RegistryTokens()
	require.Len(t, tokens, 2)
	assert.Equal(t, uint8(6), tokens[0].Decimals)
	assert.Equal(t, uint64(1), tokens[1].ChainID)

	pools, err := cfg.StaticPools()
	require.NoError(t, err)
	require.Len(t, pools, 1)
	assert.Equal(t, "3000000000000", pools[0].Reserve0.String())
	assert.Equal(t, "1000000000000000000000", pools[0].Reserve1.String())
}

func TestParseRPC(t *testing.T) {
	doc := `
chain_id: 1
rpc_url: http://localhost:8545
refresh_interval: 3s
tokens:
  - address: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
    symbol: WETH
    decimals: 18
pools:
  - address: "0xB4e16d0168e52d35CaCD2c6185b44281Ec28C9Dc"
`
	cfg, err := Parse([]byte(doc))
	require.NoError(t, err, "reserves are read from chain when rpc_url is set")
	assert.Equal(t, 3*time.Second, cfg.RefreshInterval)
	assert.Equal(t, []common.Address{common.HexToAddress("0xB4e16d0168e52d35CaCD2c6185b44281Ec28C9Dc")}, cfg.PoolAddresses())
}

func TestParseErrors(t *testing.T) {
	testCases := []struct {
		name        string
		doc         string
		expectedErr error
	}{
		{name: "missing chain", doc: "tokens: []", expectedErr: ErrMissingChainID},
		{name: "no tokens", doc: "chain_id: 1", expectedErr: ErrNoTokens},
		{
			name:        "no pools",
			doc:         "chain_id: 1\ntokens:\n  - {address: \"0x0000000000000000000000000000000000000001\", symbol: A}",
			expectedErr: ErrNoPools,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}

	t.Run("static pool without reserves", func(t *testing.T) {
		doc := `
chain_id: 1
tokens:
  - {address: "0x0000000000000000000000000000000000000001", symbol: A}
pools:
  - {address: "0x00000000000000000000000000000000000000ab", token0: "0x0000000000000000000000000000000000000001", token1: "0x0000000000000000000000000000000000000002"}
`
		_, err := Parse([]byte(doc))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reserve0")
	})

	t.Run("reserve above uint112", func(t *testing.T) {
		doc := `
chain_id: 1
tokens:
  - {address: "0x0000000000000000000000000000000000000001", symbol: A}
pools:
  - address: "0x00000000000000000000000000000000000000ab"
    token0: "0x0000000000000000000000000000000000000001"
    token1: "0x0000000000000000000000000000000000000002"
    reserve0: "5192296858534827628530496329220096"
    reserve1: "1"
`
		_, err := Parse([]byte(doc))
		assert.Error(t, err)
	})

	t.Run("bad yaml", func(t *testing.T) {
		_, err := Parse([]byte("chain_id: ["))
		assert.Error(t, err)
	})
}

func TestResolveToken(t *testing.T) {
	cfg, err := Parse([]byte(staticConfig))
	require.NoError(t, err)

	usdc := common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")

	got, err := cfg.ResolveToken("usdc")
	require.NoError(t, err)
	assert.Equal(t, usdc, got)

	got, err = cfg.ResolveToken("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48")
	require.NoError(t, err)
	assert.Equal(t, usdc, got)

	_, err = cfg.ResolveToken("DOGE")
	assert.ErrorIs(t, err, ErrUnknownToken)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(staticConfig), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Pools, 1)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
