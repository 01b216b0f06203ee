package entities

import (
	"fmt"
	"math/big"

	"github.com/defistate/uniswapv2-sdk-go/numeric"
	"github.com/defistate/uniswapv2-sdk-go/protocols/uniswapv2/calculator"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	// MinimumLiquidity is burned on the first mint of every pair.
	MinimumLiquidity = 1000

	liquidityDecimals = 18
	liquiditySymbol   = "UNI-V2"
	liquidityName     = "Uniswap V2"
)

var (
	// FactoryAddress is the Uniswap V2 factory on Ethereum mainnet.
	FactoryAddress = common.HexToAddress("0x5C69bEe701ef814a2B6a3EDD4B1652CB9cc5aA6f")
	// InitCodeHash is keccak256 of the pair contract creation code.
	InitCodeHash = common.HexToHash("0x96e8ac4277198ff8b6f785478aa9a39f403cb768dd02cbee326c3e7da348845f")

	minimumLiquidity = big.NewInt(MinimumLiquidity)
	five             = big.NewInt(5)
)

// ComputePairAddress derives the CREATE2 address of the pair for tokenA and tokenB.
func ComputePairAddress(factory common.Address, initCodeHash common.Hash, tokenA, tokenB *Token) (common.Address, error) {
	token0, token1, err := SortTokens(tokenA, tokenB)
	if err != nil {
		return common.Address{}, err
	}
	salt := crypto.Keccak256Hash(token0.address.Bytes(), token1.address.Bytes())
	return crypto.CreateAddress2(factory, salt, initCodeHash.Bytes()), nil
}

type pairConfig struct {
	address      *common.Address
	factory      common.Address
	initCodeHash common.Hash
	totalSupply  *big.Int
}

// PairOption configures NewPair.
type PairOption interface {
	apply(*pairConfig)
}

type funcOption func(*pairConfig)

func (f funcOption) apply(c *pairConfig) {
	f(c)
}

func newOption(f func(*pairConfig)) PairOption {
	return funcOption(f)
}

// WithAddress pins the pool address instead of deriving it.
func WithAddress(address common.Address) PairOption {
	return newOption(func(c *pairConfig) {
		c.address = &address
	})
}

// WithFactory derives the pool address from a non-default factory deployment.
func WithFactory(factory common.Address, initCodeHash common.Hash) PairOption {
	return newOption(func(c *pairConfig) {
		c.factory = factory
		c.initCodeHash = initCodeHash
	})
}

// WithTotalSupply records the outstanding liquidity token supply.
func WithTotalSupply(totalSupply *big.Int) PairOption {
	return newOption(func(c *pairConfig) {
		if totalSupply != nil {
			c.totalSupply = new(big.Int).Set(totalSupply)
		}
	})
}

// Pair is an immutable snapshot of a constant-product pool. Swaps return a new
// Pair carrying the post-trade reserves.
type Pair struct {
	address        common.Address
	liquidityToken *Token
	reserve0       CurrencyAmount
	reserve1       CurrencyAmount
	totalSupply    *big.Int
}

// NewPair builds a pair from the reserves of its two tokens, in either order.
func NewPair(amountA, amountB CurrencyAmount, opts ...PairOption) (*Pair, error) {
	if amountA.token == nil || amountB.token == nil {
		return nil, fmt.Errorf("%w: reserve without token", ErrInvalidAmount)
	}
	before, err := amountA.token.SortsBefore(amountB.token)
	if err != nil {
		return nil, err
	}
	if !before {
		amountA, amountB = amountB, amountA
	}

	cfg := pairConfig{factory: FactoryAddress, initCodeHash: InitCodeHash}
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	var address common.Address
	if cfg.address != nil {
		address = *cfg.address
	} else {
		address, err = ComputePairAddress(cfg.factory, cfg.initCodeHash, amountA.token, amountB.token)
		if err != nil {
			return nil, err
		}
	}

	return &Pair{
		address: address,
		liquidityToken: &Token{
			chainID:  amountA.token.chainID,
			address:  address,
			decimals: liquidityDecimals,
			symbol:   liquiditySymbol,
			name:     liquidityName,
		},
		reserve0:    CurrencyAmount{token: amountA.token, raw: amountA.Raw()},
		reserve1:    CurrencyAmount{token: amountB.token, raw: amountB.Raw()},
		totalSupply: cfg.totalSupply,
	}, nil
}

func (p *Pair) Address() common.Address  { return p.address }
func (p *Pair) LiquidityToken() *Token   { return p.liquidityToken }
func (p *Pair) ChainID() uint64          { return p.reserve0.token.chainID }
func (p *Pair) Token0() *Token           { return p.reserve0.token }
func (p *Pair) Token1() *Token           { return p.reserve1.token }
func (p *Pair) Reserve0() CurrencyAmount { return p.reserve0 }
func (p *Pair) Reserve1() CurrencyAmount { return p.reserve1 }

// TotalSupply returns a copy of the liquidity token supply, or nil if unknown.
func (p *Pair) TotalSupply() *big.Int {
	if p.totalSupply == nil {
		return nil
	}
	return new(big.Int).Set(p.totalSupply)
}

// InvolvesToken reports whether t is token0 or token1.
func (p *Pair) InvolvesToken(t *Token) bool {
	return t.Equals(p.reserve0.token) || t.Equals(p.reserve1.token)
}

// ReserveOf returns the reserve held of t.
func (p *Pair) ReserveOf(t *Token) (CurrencyAmount, error) {
	switch {
	case t.Equals(p.reserve0.token):
		return p.reserve0, nil
	case t.Equals(p.reserve1.token):
		return p.reserve1, nil
	}
	return CurrencyAmount{}, fmt.Errorf("%w: %s in %s", ErrTokenNotInPair, t, p.address.Hex())
}

// Token0Price is the mid price of token0 in terms of token1.
func (p *Pair) Token0Price() (Price, error) {
	return p.midPrice(p.reserve0, p.reserve1)
}

// Token1Price is the mid price of token1 in terms of token0.
func (p *Pair) Token1Price() (Price, error) {
	return p.midPrice(p.reserve1, p.reserve0)
}

// PriceOf returns the mid price of t in terms of the other token.
func (p *Pair) PriceOf(t *Token) (Price, error) {
	switch {
	case t.Equals(p.reserve0.token):
		return p.Token0Price()
	case t.Equals(p.reserve1.token):
		return p.Token1Price()
	}
	return Price{}, fmt.Errorf("%w: %s in %s", ErrTokenNotInPair, t, p.address.Hex())
}

func (p *Pair) midPrice(base, quote CurrencyAmount) (Price, error) {
	if base.IsZero() {
		return Price{}, fmt.Errorf("%w: pair %s", ErrInsufficientReserves, p.address.Hex())
	}
	return PriceFromAmounts(base, quote)
}

// orient returns (input reserve, output reserve) for a swap selling t.
func (p *Pair) orient(t *Token) (in, out CurrencyAmount, err error) {
	switch {
	case t.Equals(p.reserve0.token):
		return p.reserve0, p.reserve1, nil
	case t.Equals(p.reserve1.token):
		return p.reserve1, p.reserve0, nil
	}
	return CurrencyAmount{}, CurrencyAmount{}, fmt.Errorf("%w: %s in %s", ErrTokenNotInPair, t, p.address.Hex())
}

// withReserves returns a copy of p holding the given reserves, in any order.
func (p *Pair) withReserves(a, b *big.Int, aToken *Token) *Pair {
	next := *p
	if aToken.Equals(p.reserve0.token) {
		next.reserve0 = CurrencyAmount{token: p.reserve0.token, raw: a}
		next.reserve1 = CurrencyAmount{token: p.reserve1.token, raw: b}
	} else {
		next.reserve0 = CurrencyAmount{token: p.reserve0.token, raw: b}
		next.reserve1 = CurrencyAmount{token: p.reserve1.token, raw: a}
	}
	return &next
}

// GetOutputAmount swaps an exact input through the pair and returns the
// output along with the post-swap pair.
func (p *Pair) GetOutputAmount(inputAmount CurrencyAmount) (CurrencyAmount, *Pair, error) {
	inReserve, outReserve, err := p.orient(inputAmount.token)
	if err != nil {
		return CurrencyAmount{}, nil, err
	}
	if inReserve.IsZero() || outReserve.IsZero() {
		return CurrencyAmount{}, nil, fmt.Errorf("%w: pair %s", ErrInsufficientReserves, p.address.Hex())
	}

	out, err := calculator.GetAmountOut(inputAmount.value(), inReserve.value(), outReserve.value())
	if err != nil {
		return CurrencyAmount{}, nil, fmt.Errorf("pair %s: %w", p.address.Hex(), err)
	}

	next := p.withReserves(
		new(big.Int).Add(inReserve.value(), inputAmount.value()),
		new(big.Int).Sub(outReserve.value(), out),
		inputAmount.token,
	)
	return CurrencyAmount{token: outReserve.token, raw: out}, next, nil
}

// GetInputAmount returns the input needed to receive exactly outputAmount,
// along with the post-swap pair.
func (p *Pair) GetInputAmount(outputAmount CurrencyAmount) (CurrencyAmount, *Pair, error) {
	outReserve, inReserve, err := p.orient(outputAmount.token)
	if err != nil {
		return CurrencyAmount{}, nil, err
	}
	if inReserve.IsZero() || outReserve.IsZero() {
		return CurrencyAmount{}, nil, fmt.Errorf("%w: pair %s", ErrInsufficientReserves, p.address.Hex())
	}

	in, err := calculator.GetAmountIn(outputAmount.value(), inReserve.value(), outReserve.value())
	if err != nil {
		return CurrencyAmount{}, nil, fmt.Errorf("pair %s: %w", p.address.Hex(), err)
	}

	next := p.withReserves(
		new(big.Int).Add(inReserve.value(), in),
		new(big.Int).Sub(outReserve.value(), outputAmount.value()),
		inReserve.token,
	)
	return CurrencyAmount{token: inReserve.token, raw: in}, next, nil
}

func (p *Pair) checkLiquidityToken(amounts ...CurrencyAmount) error {
	for _, a := range amounts {
		if !a.token.Equals(p.liquidityToken) {
			return fmt.Errorf("%w: %s is not the liquidity token of %s", ErrTokenMismatch, a.token, p.address.Hex())
		}
	}
	return nil
}

// LiquidityMinted returns the liquidity tokens minted for depositing amountA
// and amountB, given the current liquidity token supply. The first deposit
// permanently locks MinimumLiquidity.
func (p *Pair) LiquidityMinted(totalSupply, amountA, amountB CurrencyAmount) (CurrencyAmount, error) {
	if err := p.checkLiquidityToken(totalSupply); err != nil {
		return CurrencyAmount{}, err
	}
	if amountB.token.Equals(p.reserve0.token) {
		amountA, amountB = amountB, amountA
	}
	if !amountA.token.Equals(p.reserve0.token) || !amountB.token.Equals(p.reserve1.token) {
		return CurrencyAmount{}, fmt.Errorf("%w: deposit %s/%s into %s", ErrTokenNotInPair, amountA.token, amountB.token, p.address.Hex())
	}

	var liquidity *big.Int
	if totalSupply.IsZero() {
		liquidity = new(big.Int).Mul(amountA.value(), amountB.value())
		liquidity.Sqrt(liquidity)
		liquidity.Sub(liquidity, minimumLiquidity)
	} else {
		if p.reserve0.IsZero() || p.reserve1.IsZero() {
			return CurrencyAmount{}, fmt.Errorf("%w: pair %s", ErrInsufficientReserves, p.address.Hex())
		}
		a := new(big.Int).Mul(amountA.value(), totalSupply.value())
		a.Quo(a, p.reserve0.value())
		b := new(big.Int).Mul(amountB.value(), totalSupply.value())
		b.Quo(b, p.reserve1.value())
		liquidity = a
		if b.Cmp(a) < 0 {
			liquidity = b
		}
	}

	if liquidity.Sign() <= 0 {
		return CurrencyAmount{}, ErrInsufficientInputAmount
	}
	return CurrencyAmount{token: p.liquidityToken, raw: liquidity}, nil
}

// LiquidityValue returns the amount of token redeemable for liquidity out of
// totalSupply. With feeOn, the protocol's share of fee growth since kLast is
// minted first, diluting the supply exactly as the pair contract does.
func (p *Pair) LiquidityValue(token *Token, totalSupply, liquidity CurrencyAmount, feeOn bool, kLast *big.Int) (CurrencyAmount, error) {
	reserve, err := p.ReserveOf(token)
	if err != nil {
		return CurrencyAmount{}, err
	}
	if err := p.checkLiquidityToken(totalSupply, liquidity); err != nil {
		return CurrencyAmount{}, err
	}
	if liquidity.value().Cmp(totalSupply.value()) > 0 {
		return CurrencyAmount{}, fmt.Errorf("%w: liquidity %s exceeds supply %s", ErrInvalidAmount, liquidity.value(), totalSupply.value())
	}

	supply := totalSupply.value()
	if feeOn {
		if kLast == nil {
			return CurrencyAmount{}, fmt.Errorf("%w: kLast is required when feeOn is set", ErrInvalidAmount)
		}
		if kLast.Sign() != 0 {
			rootK := new(big.Int).Mul(p.reserve0.value(), p.reserve1.value())
			rootK.Sqrt(rootK)
			rootKLast := new(big.Int).Sqrt(kLast)
			if rootK.Cmp(rootKLast) > 0 {
				numerator := new(big.Int).Sub(rootK, rootKLast)
				numerator.Mul(numerator, supply)
				denominator := new(big.Int).Mul(rootK, five)
				denominator.Add(denominator, rootKLast)
				feeLiquidity := numerator.Quo(numerator, denominator)
				supply = new(big.Int).Add(supply, feeLiquidity)
			}
		}
	}

	if supply.Sign() == 0 {
		return CurrencyAmount{}, fmt.Errorf("%w: zero liquidity supply", ErrInsufficientLiquidity)
	}
	value := numeric.FromInt(liquidity.value()).Multiply(numeric.FromInt(reserve.value()))
	share, err := value.Divide(numeric.FromInt(supply))
	if err != nil {
		return CurrencyAmount{}, err
	}
	return CurrencyAmount{token: token, raw: share.Quotient()}, nil
}
