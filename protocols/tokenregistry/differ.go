package tokenregistry

import "github.com/ethereum/go-ethereum/common"

type TokenSystemDiff struct {
	Additions []Token          `json:"additions,omitempty"`
	Updates   []Token          `json:"updates,omitempty"`
	Deletions []common.Address `json:"deletions,omitempty"`
}

// IsEmpty returns true if the diff contains no changes.
func (d TokenSystemDiff) IsEmpty() bool {
	return len(d.Additions) == 0 && len(d.Updates) == 0 && len(d.Deletions) == 0
}

// Differ calculates the difference between two token lists of the same chain,
// keyed by token address. Maps keep lookups O(1) on average.
func Differ(old, new []Token) TokenSystemDiff {
	oldTokensMap := make(map[common.Address]Token, len(old))
	for _, token := range old {
		oldTokensMap[token.Address] = token
	}

	newTokensMap := make(map[common.Address]Token, len(new))
	for _, token := range new {
		newTokensMap[token.Address] = token
	}

	var additions []Token
	var updates []Token
	var deletions []common.Address

	for address, newToken := range newTokensMap {
		oldToken, exists := oldTokensMap[address]
		if !exists {
			additions = append(additions, newToken)
			continue
		}
		// Token has no pointer fields, so plain comparison is exact.
		if oldToken != newToken {
			updates = append(updates, newToken)
		}
	}

	for address := range oldTokensMap {
		if _, exists := newTokensMap[address]; !exists {
			deletions = append(deletions, address)
		}
	}

	return TokenSystemDiff{
		Additions: additions,
		Updates:   updates,
		Deletions: deletions,
	}
}
