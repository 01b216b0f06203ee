package uniswapv2

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// cmpReserve compares two optional big integers; nil sorts before any value.
func cmpReserve(a, b *big.Int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return a.Cmp(b)
}

func copyBig(b *big.Int) *big.Int {
	if b == nil {
		return nil
	}
	return new(big.Int).Set(b)
}

// deepCopyPool creates a new Pool with its own memory for the *big.Int fields,
// so that the new state never shares memory with the old one.
func deepCopyPool(p Pool) Pool {
	newPool := p
	newPool.Reserve0 = copyBig(p.Reserve0)
	newPool.Reserve1 = copyBig(p.Reserve1)
	newPool.TotalSupply = copyBig(p.TotalSupply)
	return newPool
}

// Patcher constructs a new reserve book by applying a diff to a previous one.
// prevState is never mutated. Updating a pool that is not in prevState is an error,
// as it means the diff was computed against a different base.
func Patcher(prevState []Pool, diff UniswapV2SystemDiff) ([]Pool, error) {
	newStateMap := make(map[common.Address]Pool, len(prevState))
	order := make([]common.Address, 0, len(prevState)+len(diff.Additions))
	for _, pool := range prevState {
		if _, seen := newStateMap[pool.Address]; !seen {
			order = append(order, pool.Address)
		}
		newStateMap[pool.Address] = deepCopyPool(pool)
	}

	for _, address := range diff.Deletions {
		delete(newStateMap, address)
	}

	for _, updatedPool := range diff.Updates {
		if _, exists := newStateMap[updatedPool.Address]; !exists {
			return nil, fmt.Errorf("patcher: update for unknown pool %s", updatedPool.Address.Hex())
		}
		newStateMap[updatedPool.Address] = deepCopyPool(updatedPool)
	}

	for _, addedPool := range diff.Additions {
		if _, exists := newStateMap[addedPool.Address]; !exists {
			order = append(order, addedPool.Address)
		}
		newStateMap[addedPool.Address] = deepCopyPool(addedPool)
	}

	// keep the previous ordering stable so that callers iterating the book
	// see deterministic results
	finalState := make([]Pool, 0, len(newStateMap))
	for _, address := range order {
		if pool, ok := newStateMap[address]; ok {
			finalState = append(finalState, pool)
			delete(newStateMap, address)
		}
	}

	return finalState, nil
}
