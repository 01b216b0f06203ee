package uniswapv2

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// Storage layout of the pair contract (UniswapV2ERC20 slots first).
const (
	TotalSupplySlot = 0
	Token0Slot      = 6
	Token1Slot      = 7
	ReservesSlot    = 8
)

var (
	// MaxReserve is the largest value a reserve can hold on chain (2^112 - 1).
	MaxReserve = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 112), big.NewInt(1))

	mask112 = new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 112), uint256.NewInt(1))

	// ErrInvalidReservesWord is returned when a storage word is not 32 bytes.
	ErrInvalidReservesWord = errors.New("reserves word must be 32 bytes")
	// ErrReserveOverflow is returned when a reserve does not fit in 112 bits.
	ErrReserveOverflow = errors.New("reserve exceeds uint112")
)

// DecodeReserves unpacks the getReserves storage word. The layout, from the most
// significant end, is:
//
//	[ 32 bits blockTimestampLast | 112 bits reserve1 | 112 bits reserve0 ]
func DecodeReserves(word []byte) (reserve0, reserve1 *big.Int, blockTimestampLast uint32, err error) {
	if len(word) != 32 {
		return nil, nil, 0, fmt.Errorf("%w: got %d", ErrInvalidReservesWord, len(word))
	}
	v := new(uint256.Int).SetBytes(word)

	r0 := new(uint256.Int).And(v, mask112)
	r1 := new(uint256.Int).Rsh(v, 112)
	r1.And(r1, mask112)
	ts := new(uint256.Int).Rsh(v, 224)

	return r0.ToBig(), r1.ToBig(), uint32(ts.Uint64()), nil
}

// EncodeReserves packs reserves into the 32-byte storage word layout used by DecodeReserves.
func EncodeReserves(reserve0, reserve1 *big.Int, blockTimestampLast uint32) ([32]byte, error) {
	var out [32]byte
	if err := checkReserve(reserve0); err != nil {
		return out, fmt.Errorf("reserve0: %w", err)
	}
	if err := checkReserve(reserve1); err != nil {
		return out, fmt.Errorf("reserve1: %w", err)
	}

	v := uint256.NewInt(uint64(blockTimestampLast))
	v.Lsh(v, 112)
	v.Or(v, uint256.MustFromBig(reserve1))
	v.Lsh(v, 112)
	v.Or(v, uint256.MustFromBig(reserve0))
	return v.Bytes32(), nil
}

func checkReserve(r *big.Int) error {
	if r == nil || r.Sign() < 0 || r.Cmp(MaxReserve) > 0 {
		return ErrReserveOverflow
	}
	return nil
}

// Validate checks that a snapshot is usable as a pair: distinct tokens and
// reserves within the on-chain uint112 range.
func (p Pool) Validate() error {
	if p.Token0 == p.Token1 {
		return fmt.Errorf("pool %s: token0 and token1 are identical", p.Address.Hex())
	}
	if err := checkReserve(p.Reserve0); err != nil {
		return fmt.Errorf("pool %s reserve0: %w", p.Address.Hex(), err)
	}
	if err := checkReserve(p.Reserve1); err != nil {
		return fmt.Errorf("pool %s reserve1: %w", p.Address.Hex(), err)
	}
	if p.TotalSupply != nil && p.TotalSupply.Sign() < 0 {
		return fmt.Errorf("pool %s: negative total supply", p.Address.Hex())
	}
	return nil
}
