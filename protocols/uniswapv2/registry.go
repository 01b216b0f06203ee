package uniswapv2

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Pool is a raw reserve snapshot of a constant-product pair as read from chain.
// Token0/Token1 follow the contract's own ordering (token0 < token1 by address).
type Pool struct {
	Address            common.Address `json:"address" yaml:"address"`
	Token0             common.Address `json:"token0" yaml:"token0"`
	Token1             common.Address `json:"token1" yaml:"token1"`
	Reserve0           *big.Int       `json:"reserve0" yaml:"reserve0"`
	Reserve1           *big.Int       `json:"reserve1" yaml:"reserve1"`
	BlockTimestampLast uint32         `json:"blockTimestampLast" yaml:"blockTimestampLast"`
	TotalSupply        *big.Int       `json:"totalSupply,omitempty" yaml:"totalSupply,omitempty"` // LP token supply, nil if unknown
}
