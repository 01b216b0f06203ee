package uniswapv2

import (
	"github.com/ethereum/go-ethereum/common"
)

// --- Diff Structures with Helper Methods ---

type UniswapV2SystemDiff struct {
	Additions []Pool           `json:"additions,omitempty"`
	Updates   []Pool           `json:"updates,omitempty"`
	Deletions []common.Address `json:"deletions,omitempty"`
}

// IsEmpty returns true if the diff contains no changes.
func (d UniswapV2SystemDiff) IsEmpty() bool {
	return len(d.Additions) == 0 && len(d.Updates) == 0 && len(d.Deletions) == 0
}

// Differ calculates the difference between two reserve books, keyed by pool address.
// Pools present only in new are additions, pools present only in old are deletions,
// and pools whose reserves, timestamp or LP supply changed are updates.
func Differ(old, new []Pool) UniswapV2SystemDiff {
	oldPoolsMap := make(map[common.Address]Pool, len(old))
	for _, pool := range old {
		oldPoolsMap[pool.Address] = pool
	}

	newPoolsMap := make(map[common.Address]Pool, len(new))
	for _, pool := range new {
		newPoolsMap[pool.Address] = pool
	}

	var additions []Pool
	var updates []Pool
	var deletions []common.Address

	for address, newPool := range newPoolsMap {
		oldPool, exists := oldPoolsMap[address]
		if !exists {
			additions = append(additions, newPool)
			continue
		}
		// Only the fields a Sync event can move are compared; this is
		// significantly faster than reflect.DeepEqual.
		if cmpReserve(oldPool.Reserve0, newPool.Reserve0) != 0 ||
			cmpReserve(oldPool.Reserve1, newPool.Reserve1) != 0 ||
			cmpReserve(oldPool.TotalSupply, newPool.TotalSupply) != 0 ||
			oldPool.BlockTimestampLast != newPool.BlockTimestampLast {
			updates = append(updates, newPool)
		}
	}

	for address := range oldPoolsMap {
		if _, exists := newPoolsMap[address]; !exists {
			deletions = append(deletions, address)
		}
	}

	return UniswapV2SystemDiff{
		Additions: additions,
		Updates:   updates,
		Deletions: deletions,
	}
}
