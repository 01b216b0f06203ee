package indexer

import (
	"fmt"

	"github.com/defistate/uniswapv2-sdk-go/entities"
	tokenregistry "github.com/defistate/uniswapv2-sdk-go/protocols/tokenregistry"
	"github.com/ethereum/go-ethereum/common"
)

// Indexer builds IndexedTokenSystems.
type Indexer struct{}

// New creates a new Indexer.
func New() *Indexer {
	return &Indexer{}
}

// Index creates an indexed token system from a raw slice of tokens.
func (i *Indexer) Index(tokens []tokenregistry.Token) (IndexedTokenSystem, error) {
	return NewIndexableTokenSystem(tokens)
}

// IndexableTokenSystem provides fast, indexed access to token descriptors and
// their validated entities. Entities are built once, so every lookup of an
// address returns the same *entities.Token.
type IndexableTokenSystem struct {
	byAddress map[common.Address]tokenregistry.Token
	entities  map[common.Address]*entities.Token
	all       []tokenregistry.Token
}

// NewIndexableTokenSystem indexes tokens. It fails on the first descriptor
// that does not form a valid token, or on a duplicate address.
func NewIndexableTokenSystem(tokens []tokenregistry.Token) (*IndexableTokenSystem, error) {
	byAddress := make(map[common.Address]tokenregistry.Token, len(tokens))
	ents := make(map[common.Address]*entities.Token, len(tokens))

	for _, t := range tokens {
		if _, dup := byAddress[t.Address]; dup {
			return nil, fmt.Errorf("duplicate token %s", t.Address.Hex())
		}
		e, err := t.Entity()
		if err != nil {
			return nil, fmt.Errorf("token %s: %w", t.Address.Hex(), err)
		}
		byAddress[t.Address] = t
		ents[t.Address] = e
	}

	return &IndexableTokenSystem{
		byAddress: byAddress,
		entities:  ents,
		all:       append([]tokenregistry.Token(nil), tokens...),
	}, nil
}

// GetByAddress retrieves a token descriptor by its contract address.
func (its *IndexableTokenSystem) GetByAddress(address common.Address) (tokenregistry.Token, bool) {
	t, ok := its.byAddress[address]
	return t, ok
}

// Entity retrieves the validated token for address.
func (its *IndexableTokenSystem) Entity(address common.Address) (*entities.Token, bool) {
	e, ok := its.entities[address]
	return e, ok
}

// All returns a defensive copy of the slice of all tokens in the system.
func (its *IndexableTokenSystem) All() []tokenregistry.Token {
	allCopy := make([]tokenregistry.Token, len(its.all))
	copy(allCopy, its.all)
	return allCopy
}
