package entities

import (
	"errors"

	"github.com/defistate/uniswapv2-sdk-go/protocols/uniswapv2/calculator"
)

var (
	// ErrInvalidAddress is returned when a token address is not 20 bytes of hex.
	ErrInvalidAddress = errors.New("invalid address")
	// ErrInvalidDecimals is returned when token decimals fall outside [0, 255].
	ErrInvalidDecimals = errors.New("invalid decimals")
	// ErrChainMismatch is returned when two tokens or pairs live on different chains.
	ErrChainMismatch = errors.New("chain id mismatch")
	// ErrIdenticalAddress is returned when a token is ordered against, or paired with, itself.
	ErrIdenticalAddress = errors.New("identical addresses")

	// ErrInvalidAmount is returned for nil, negative, or larger than uint256 raw amounts.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrTooManyDecimals is returned when a decimal string is finer than the token's decimals.
	ErrTooManyDecimals = errors.New("too many decimal places")
	// ErrTokenMismatch is returned when two amounts or an amount and a price disagree on the token.
	ErrTokenMismatch = errors.New("token mismatch")
	// ErrNegativeResult is returned when a subtraction would go below zero.
	ErrNegativeResult = errors.New("negative result")
	// ErrTokenChainMismatch is returned when two prices cannot be chained.
	ErrTokenChainMismatch = errors.New("price token chain mismatch")

	// ErrTokenNotInPair is returned when an amount's token is neither side of a pair.
	ErrTokenNotInPair = errors.New("token not in pair")
	// ErrInsufficientInputAmount is returned when minting would create no liquidity.
	ErrInsufficientInputAmount = errors.New("insufficient input amount")

	// ErrEmptyRoute is returned when a route has no pairs.
	ErrEmptyRoute = errors.New("route has no pairs")
	// ErrPairDoesNotInvolveToken is returned when consecutive route pairs are not connected.
	ErrPairDoesNotInvolveToken = errors.New("pair does not involve token")
	// ErrOutputTokenMismatch is returned when an explicit route output differs from the derived one.
	ErrOutputTokenMismatch = errors.New("route output token mismatch")

	// ErrWrongTradeType is returned when a slippage helper is used on the other trade type.
	ErrWrongTradeType = errors.New("wrong trade type")
	// ErrInvalidSlippage is returned for a negative slippage tolerance.
	ErrInvalidSlippage = errors.New("invalid slippage tolerance")
)

// Swap failures come straight from the calculator so errors.Is matches either name.
var (
	ErrInsufficientReserves     = calculator.ErrInsufficientReserves
	ErrInsufficientOutputAmount = calculator.ErrInsufficientOutputAmount
	ErrInsufficientLiquidity    = calculator.ErrInsufficientLiquidity
)
