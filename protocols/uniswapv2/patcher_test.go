package uniswapv2

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// findPool locates a pool by address in a slice, for testing assertions.
func findPool(pools []Pool, address common.Address) *Pool {
	for i := range pools {
		if pools[i].Address == address {
			return &pools[i]
		}
	}
	return nil
}

func TestPatcher(t *testing.T) {
	initialState := []Pool{
		newTestPool(1, 1000, 5000),
		newTestPool(2, 2000, 6000),
		newTestPool(3, 3000, 7000),
	}

	t.Run("should handle only additions", func(t *testing.T) {
		diff := UniswapV2SystemDiff{Additions: []Pool{newTestPool(4, 4000, 1)}}

		newState, err := Patcher(initialState, diff)
		require.NoError(t, err)

		assert.Len(t, newState, 4)
		added := findPool(newState, poolAt(4))
		require.NotNil(t, added)
		assert.Equal(t, int64(4000), added.Reserve0.Int64())
	})

	t.Run("should handle only deletions", func(t *testing.T) {
		diff := UniswapV2SystemDiff{Deletions: []common.Address{poolAt(2)}}

		newState, err := Patcher(initialState, diff)
		require.NoError(t, err)

		assert.Len(t, newState, 2)
		assert.Nil(t, findPool(newState, poolAt(2)))
		assert.NotNil(t, findPool(newState, poolAt(1)))
	})

	t.Run("should handle only updates", func(t *testing.T) {
		diff := UniswapV2SystemDiff{Updates: []Pool{newTestPool(1, 1001, 5005)}}

		newState, err := Patcher(initialState, diff)
		require.NoError(t, err)

		assert.Len(t, newState, 3)
		updated := findPool(newState, poolAt(1))
		require.NotNil(t, updated)
		assert.Equal(t, int64(1001), updated.Reserve0.Int64())
		assert.Equal(t, int64(5005), updated.Reserve1.Int64())
	})

	t.Run("should reject updates for unknown pools", func(t *testing.T) {
		diff := UniswapV2SystemDiff{Updates: []Pool{newTestPool(9, 1, 1)}}

		_, err := Patcher(initialState, diff)
		assert.Error(t, err)
	})

	t.Run("should deep copy reserves", func(t *testing.T) {
		local := []Pool{newTestPool(1, 1000, 5000)}

		newState, err := Patcher(local, UniswapV2SystemDiff{})
		require.NoError(t, err)
		require.Len(t, newState, 1)

		local[0].Reserve0.SetInt64(9999)
		assert.Equal(t, int64(1000), newState[0].Reserve0.Int64(), "New state should be isolated from changes to the old state")
	})

	t.Run("should keep ordering stable", func(t *testing.T) {
		diff := UniswapV2SystemDiff{
			Additions: []Pool{newTestPool(4, 4000, 1)},
			Updates:   []Pool{newTestPool(2, 2002, 6000)},
			Deletions: []common.Address{poolAt(3)},
		}

		newState, err := Patcher(initialState, diff)
		require.NoError(t, err)

		require.Len(t, newState, 3)
		assert.Equal(t, poolAt(1), newState[0].Address)
		assert.Equal(t, poolAt(2), newState[1].Address)
		assert.Equal(t, poolAt(4), newState[2].Address)
		assert.Equal(t, int64(2002), newState[1].Reserve0.Int64())
	})

	t.Run("differ and patcher round trip", func(t *testing.T) {
		next := []Pool{newTestPool(1, 1, 2), newTestPool(3, 3000, 7000), newTestPool(5, 5, 5)}

		patched, err := Patcher(initialState, Differ(initialState, next))
		require.NoError(t, err)
		assert.True(t, Differ(next, patched).IsEmpty())
		assert.Equal(t, int64(1000), initialState[0].Reserve0.Int64(), "prevState must not be mutated")
	})
}

func TestCmpReserve(t *testing.T) {
	assert.Equal(t, 0, cmpReserve(nil, nil))
	assert.Equal(t, -1, cmpReserve(nil, big.NewInt(0)))
	assert.Equal(t, 1, cmpReserve(big.NewInt(0), nil))
	assert.Equal(t, 1, cmpReserve(big.NewInt(2), big.NewInt(1)))
}
