package indexer

import (
	"github.com/defistate/uniswapv2-sdk-go/entities"
	tokenregistry "github.com/defistate/uniswapv2-sdk-go/protocols/tokenregistry"
	"github.com/ethereum/go-ethereum/common"
)

// IndexedTokenSystem defines the methods for accessing indexed token data.
type IndexedTokenSystem interface {
	GetByAddress(address common.Address) (tokenregistry.Token, bool)
	Entity(address common.Address) (*entities.Token, bool)
	All() []tokenregistry.Token
}
