package tokenregistry

import (
	"github.com/defistate/uniswapv2-sdk-go/entities"
	"github.com/ethereum/go-ethereum/common"
)

// Token is the descriptor a collaborator (token list, registry contract, config
// file) supplies for one ERC20 token.
type Token struct {
	ChainID  uint64         `json:"chainId"`
	Address  common.Address `json:"address"`
	Name     string         `json:"name"`
	Symbol   string         `json:"symbol"`
	Decimals uint8          `json:"decimals"`
}

// Entity converts the descriptor into the validated entities form.
func (t Token) Entity() (*entities.Token, error) {
	return entities.NewToken(t.ChainID, t.Address.Hex(), int(t.Decimals), t.Symbol, t.Name)
}
