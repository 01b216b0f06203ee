// Package tokenpoolregistry indexes which pools touch which tokens, so a route
// search can be limited to the pools reachable from its starting token.
package tokenpoolregistry

import (
	"github.com/defistate/uniswapv2-sdk-go/bitset"
	"github.com/defistate/uniswapv2-sdk-go/protocols/uniswapv2"
	"github.com/ethereum/go-ethereum/common"
)

// TokenPoolRegistry is an immutable token/pool adjacency graph. Pools are
// identified by their index in the slice it was built from.
type TokenPoolRegistry struct {
	pools     []uniswapv2.Pool
	adjacency map[common.Address][]int
}

// New builds the graph over pools.
func New(pools []uniswapv2.Pool) *TokenPoolRegistry {
	adjacency := make(map[common.Address][]int)
	for i, p := range pools {
		adjacency[p.Token0] = append(adjacency[p.Token0], i)
		adjacency[p.Token1] = append(adjacency[p.Token1], i)
	}
	return &TokenPoolRegistry{
		pools:     pools,
		adjacency: adjacency,
	}
}

// Reachable returns, in ascending order, the indexes of every pool that a
// route of at most maxHops pools starting at token could use.
func (r *TokenPoolRegistry) Reachable(token common.Address, maxHops int) []int {
	visited := bitset.New(len(r.pools))
	seen := map[common.Address]bool{token: true}
	frontier := []common.Address{token}

	for hop := 0; hop < maxHops && len(frontier) > 0; hop++ {
		var next []common.Address
		for _, t := range frontier {
			for _, i := range r.adjacency[t] {
				if visited.IsSet(i) {
					continue
				}
				visited.Set(i)
				for _, other := range [2]common.Address{r.pools[i].Token0, r.pools[i].Token1} {
					if !seen[other] {
						seen[other] = true
						next = append(next, other)
					}
				}
			}
		}
		frontier = next
	}

	out := make([]int, 0, visited.Count())
	for i := range r.pools {
		if visited.IsSet(i) {
			out = append(out, i)
		}
	}
	return out
}
