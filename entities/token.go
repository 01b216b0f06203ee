// Package entities implements the constant-product AMM model: tokens, amounts,
// prices, pairs, routes and trades. Every value is immutable; operations return
// new values and never modify their receivers or arguments.
package entities

import (
	"fmt"
	"math"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Token identifies an ERC20 token on a given chain.
type Token struct {
	chainID  uint64
	address  common.Address
	decimals uint8
	symbol   string
	name     string
}

// NewToken validates and builds a token. The address may be given in any case,
// with or without the 0x prefix.
func NewToken(chainID uint64, address string, decimals int, symbol, name string) (*Token, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	if decimals < 0 || decimals > math.MaxUint8 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDecimals, decimals)
	}
	return &Token{
		chainID:  chainID,
		address:  common.HexToAddress(address),
		decimals: uint8(decimals),
		symbol:   symbol,
		name:     name,
	}, nil
}

// MustToken is NewToken for well-known constants; it panics on invalid input.
func MustToken(chainID uint64, address string, decimals int, symbol, name string) *Token {
	t, err := NewToken(chainID, address, decimals, symbol, name)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Token) ChainID() uint64 { return t.chainID }

// Address returns the token address; its Hex form is EIP-55 checksummed.
func (t *Token) Address() common.Address { return t.address }

func (t *Token) Decimals() uint8 { return t.decimals }
func (t *Token) Symbol() string  { return t.symbol }
func (t *Token) Name() string    { return t.name }

// Key returns the lowercased address, the token's identity within a chain.
func (t *Token) Key() string {
	return strings.ToLower(t.address.Hex())
}

// Equals reports whether both tokens share chain id and address.
func (t *Token) Equals(o *Token) bool {
	if t == nil || o == nil {
		return t == o
	}
	return t.chainID == o.chainID && t.address == o.address
}

// SortsBefore reports whether t's address orders before o's. Comparing
// the raw bytes is the same as comparing lowercased hex strings.
func (t *Token) SortsBefore(o *Token) (bool, error) {
	if t.chainID != o.chainID {
		return false, fmt.Errorf("%w: %d != %d", ErrChainMismatch, t.chainID, o.chainID)
	}
	if t.address == o.address {
		return false, fmt.Errorf("%w: %s", ErrIdenticalAddress, t.address.Hex())
	}
	return t.address.Cmp(o.address) < 0, nil
}

// SortTokens returns a and b in canonical pair order.
func SortTokens(a, b *Token) (token0, token1 *Token, err error) {
	before, err := a.SortsBefore(b)
	if err != nil {
		return nil, nil, err
	}
	if before {
		return a, b, nil
	}
	return b, a, nil
}

func (t *Token) String() string {
	if t.symbol != "" {
		return t.symbol
	}
	return t.address.Hex()
}
