package tokenregistry

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Patcher constructs a new token list by applying a diff to a previous one.
// Surviving tokens keep their previous order; additions are appended.
func Patcher(prevState []Token, diff TokenSystemDiff) ([]Token, error) {
	// Since Token contains no pointer fields, a direct copy is safe.
	newStateMap := make(map[common.Address]Token, len(prevState))
	order := make([]common.Address, 0, len(prevState)+len(diff.Additions))
	for _, token := range prevState {
		if _, seen := newStateMap[token.Address]; !seen {
			order = append(order, token.Address)
		}
		newStateMap[token.Address] = token
	}

	for _, address := range diff.Deletions {
		delete(newStateMap, address)
	}

	for _, updatedToken := range diff.Updates {
		if _, exists := newStateMap[updatedToken.Address]; !exists {
			return nil, fmt.Errorf("patcher: update for unknown token %s", updatedToken.Address.Hex())
		}
		newStateMap[updatedToken.Address] = updatedToken
	}

	for _, addedToken := range diff.Additions {
		if _, exists := newStateMap[addedToken.Address]; !exists {
			order = append(order, addedToken.Address)
		}
		newStateMap[addedToken.Address] = addedToken
	}

	finalState := make([]Token, 0, len(newStateMap))
	for _, address := range order {
		if token, ok := newStateMap[address]; ok {
			finalState = append(finalState, token)
			delete(newStateMap, address)
		}
	}

	return finalState, nil
}
