// Package calculator holds the constant-product swap formulas over raw
// reserves. Scratch space is pooled so hot quoting loops do not allocate
// intermediate big integers.
package calculator

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/defistate/uniswapv2-sdk-go/protocols/uniswapv2"
	"github.com/ethereum/go-ethereum/common"
)

var (
	// FeeNumerator and FeeDenominator encode the 0.3% swap fee.
	FeeNumerator   = big.NewInt(997)
	FeeDenominator = big.NewInt(1000)

	one     = big.NewInt(1)
	hundred = big.NewInt(100)

	bigIntPool = sync.Pool{
		New: func() any {
			return new(big.Int)
		},
	}

	// ErrInvalidAmount is returned when an input/output amount is negative.
	ErrInvalidAmount = errors.New("amount must be non-negative")
	// ErrNilAmount is returned when a nil pointer is passed for an amount or reserve.
	ErrNilAmount = errors.New("nil pointer passed as amount")
	// ErrTokenMismatch is returned when the specified input/output tokens do not match the pool's tokens.
	ErrTokenMismatch = errors.New("token mismatch")
	// ErrInsufficientReserves is returned when either reserve is zero.
	ErrInsufficientReserves = errors.New("insufficient reserves")
	// ErrInsufficientOutputAmount is returned when an input is too small to produce any output after the fee.
	ErrInsufficientOutputAmount = errors.New("insufficient output amount")
	// ErrInsufficientLiquidity is returned when an amountOut is requested that is greater than or equal to the available reserve.
	ErrInsufficientLiquidity = errors.New("insufficient liquidity for swap")
)

// getBig grabs a *big.Int from the pool and zeros it.
func getBig() *big.Int {
	b := bigIntPool.Get().(*big.Int)
	b.SetUint64(0)
	return b
}

// putBig returns a *big.Int to the pool.
func putBig(b *big.Int) {
	if b != nil {
		bigIntPool.Put(b)
	}
}

// Calculator holds reusable big.Int objects to avoid memory allocations during calculations.
// Instances of this struct are NOT safe for concurrent use by themselves.
// They are intended to be managed by the sync.Pool below.
type Calculator struct {
	// GetAmountOut
	amountInWithFee *big.Int
	numerator       *big.Int
	denominator     *big.Int

	// GetAmountIn
	numeratorIn   *big.Int
	denominatorIn *big.Int
}

var calculatorPool = sync.Pool{
	New: func() any {
		return &Calculator{
			amountInWithFee: new(big.Int),
			numerator:       new(big.Int),
			denominator:     new(big.Int),
			numeratorIn:     new(big.Int),
			denominatorIn:   new(big.Int),
		}
	},
}

// GetAmountOut returns the output of an exact-input swap against (reserveIn, reserveOut).
// The result is floored, so the pool's constant product never decreases.
func GetAmountOut(amountIn, reserveIn, reserveOut *big.Int) (*big.Int, error) {
	calc := calculatorPool.Get().(*Calculator)
	defer calculatorPool.Put(calc)
	return calc.getAmountOut(amountIn, reserveIn, reserveOut)
}

// GetAmountIn returns the input an exact-output swap must pay. The result is
// rounded up (floor + 1) so the caller never under-pays.
func GetAmountIn(amountOut, reserveIn, reserveOut *big.Int) (*big.Int, error) {
	calc := calculatorPool.Get().(*Calculator)
	defer calculatorPool.Put(calc)
	return calc.getAmountIn(amountOut, reserveIn, reserveOut)
}

// SimulateSwap runs an exact-input swap against a raw pool snapshot and returns
// the output together with the post-swap snapshot. The input pool is not modified.
func SimulateSwap(amountIn *big.Int, tokenIn, tokenOut common.Address, pool uniswapv2.Pool) (*big.Int, uniswapv2.Pool, error) {
	reserveIn, reserveOut, err := GetReserves(tokenIn, tokenOut, pool)
	if err != nil {
		return nil, uniswapv2.Pool{}, err
	}
	amountOut, err := GetAmountOut(amountIn, reserveIn, reserveOut)
	if err != nil {
		return nil, uniswapv2.Pool{}, err
	}

	next := pool
	newIn := new(big.Int).Add(reserveIn, amountIn)
	newOut := new(big.Int).Sub(reserveOut, amountOut)
	if tokenIn == pool.Token0 {
		next.Reserve0, next.Reserve1 = newIn, newOut
	} else {
		next.Reserve0, next.Reserve1 = newOut, newIn
	}
	return amountOut, next, nil
}

func checkInputs(amount, reserveIn, reserveOut *big.Int) error {
	if amount == nil || reserveIn == nil || reserveOut == nil {
		return ErrNilAmount
	}
	if amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if reserveIn.Sign() <= 0 || reserveOut.Sign() <= 0 {
		return fmt.Errorf("%w: reserveIn=%s reserveOut=%s", ErrInsufficientReserves, reserveIn, reserveOut)
	}
	return nil
}

// getAmountOut is the internal calculation method that uses the pre-allocated fields.
func (c *Calculator) getAmountOut(amountIn, reserveIn, reserveOut *big.Int) (*big.Int, error) {
	if err := checkInputs(amountIn, reserveIn, reserveOut); err != nil {
		return nil, err
	}

	c.amountInWithFee.Mul(amountIn, FeeNumerator)
	c.numerator.Mul(c.amountInWithFee, reserveOut)
	c.denominator.Mul(reserveIn, FeeDenominator)
	c.denominator.Add(c.denominator, c.amountInWithFee)

	amountOut := new(big.Int).Quo(c.numerator, c.denominator)
	if amountOut.Sign() == 0 {
		return nil, fmt.Errorf("%w: amountIn %s", ErrInsufficientOutputAmount, amountIn)
	}
	return amountOut, nil
}

// getAmountIn is the internal calculation method for finding the required input for a desired output.
func (c *Calculator) getAmountIn(amountOut, reserveIn, reserveOut *big.Int) (*big.Int, error) {
	if err := checkInputs(amountOut, reserveIn, reserveOut); err != nil {
		return nil, err
	}
	if amountOut.Cmp(reserveOut) >= 0 {
		return nil, fmt.Errorf("%w: requested amountOut (%s) is >= reserveOut (%s)", ErrInsufficientLiquidity, amountOut, reserveOut)
	}

	c.numeratorIn.Mul(reserveIn, amountOut)
	c.numeratorIn.Mul(c.numeratorIn, FeeDenominator)
	c.denominatorIn.Sub(reserveOut, amountOut)
	c.denominatorIn.Mul(c.denominatorIn, FeeNumerator)

	// amountIn = (reserveIn * amountOut * 1000) / ((reserveOut - amountOut) * 997) + 1
	amountIn := new(big.Int).Quo(c.numeratorIn, c.denominatorIn)
	return amountIn.Add(amountIn, one), nil
}

// GetReserves orients the pool's reserves for a tokenIn -> tokenOut swap.
func GetReserves(tokenIn, tokenOut common.Address, pool uniswapv2.Pool) (reserveIn, reserveOut *big.Int, err error) {
	if tokenIn == pool.Token0 && tokenOut == pool.Token1 {
		return pool.Reserve0, pool.Reserve1, nil
	} else if tokenIn == pool.Token1 && tokenOut == pool.Token0 {
		return pool.Reserve1, pool.Reserve0, nil
	}
	return nil, nil, fmt.Errorf("%w: pool %s does not contain the pair %s -> %s", ErrTokenMismatch, pool.Address.Hex(), tokenIn.Hex(), tokenOut.Hex())
}

// GetExchangeRate quotes 1% of the input reserve through the pool and returns
// the resulting output per whole input token, scaled by 10^decimalsIn.
func GetExchangeRate(tokenIn, tokenOut common.Address, scaleIn *big.Int, pool uniswapv2.Pool) (*big.Int, error) {
	reserveIn, reserveOut, err := GetReserves(tokenIn, tokenOut, pool)
	if err != nil {
		return nil, err
	}

	amountIn := getBig()
	temp := getBig()
	defer func() {
		putBig(amountIn)
		putBig(temp)
	}()

	if reserveIn == nil || reserveIn.Sign() == 0 {
		return nil, fmt.Errorf("%w: zero reserve for %s", ErrInsufficientReserves, tokenIn.Hex())
	}
	amountIn.Quo(reserveIn, hundred)
	if amountIn.Sign() == 0 {
		return nil, fmt.Errorf("%w: reserve %s too small to sample", ErrInsufficientReserves, reserveIn)
	}

	amountOut, err := GetAmountOut(amountIn, reserveIn, reserveOut)
	if err != nil {
		return nil, err
	}

	temp.Mul(scaleIn, amountOut)
	// the result must not alias pooled scratch space
	return new(big.Int).Quo(temp, amountIn), nil
}
