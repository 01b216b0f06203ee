package entities

import (
	"fmt"
	"math/big"

	"github.com/defistate/uniswapv2-sdk-go/numeric"
)

// TradeType says which side of a trade the caller fixed.
type TradeType int

const (
	ExactInput TradeType = iota
	ExactOutput
)

func (t TradeType) String() string {
	switch t {
	case ExactInput:
		return "EXACT_INPUT"
	case ExactOutput:
		return "EXACT_OUTPUT"
	}
	return fmt.Sprintf("TradeType(%d)", int(t))
}

// Trade is a swap quoted along a route. It is built only by ExactIn or ExactOut.
type Trade struct {
	route          *Route
	tradeType      TradeType
	inputAmount    CurrencyAmount
	outputAmount   CurrencyAmount
	executionPrice Price
	nextMidPrice   Price
	priceImpact    numeric.Percent
}

// ExactIn quotes selling exactly amountIn along route.
func ExactIn(route *Route, amountIn CurrencyAmount) (*Trade, error) {
	if !amountIn.token.Equals(route.input) {
		return nil, fmt.Errorf("%w: amount in %s, route starts at %s", ErrTokenMismatch, amountIn.token, route.input)
	}

	nextPairs := make([]*Pair, len(route.pairs))
	current := amountIn
	for i, pair := range route.pairs {
		out, next, err := pair.GetOutputAmount(current)
		if err != nil {
			return nil, fmt.Errorf("hop %d: %w", i, err)
		}
		current = out
		nextPairs[i] = next
	}
	return newTrade(route, ExactInput, amountIn, current, nextPairs)
}

// ExactOut quotes buying exactly amountOut along route. The route is walked
// backwards, each hop pricing the input its successor needs.
func ExactOut(route *Route, amountOut CurrencyAmount) (*Trade, error) {
	if !amountOut.token.Equals(route.output) {
		return nil, fmt.Errorf("%w: amount out %s, route ends at %s", ErrTokenMismatch, amountOut.token, route.output)
	}

	nextPairs := make([]*Pair, len(route.pairs))
	current := amountOut
	for i := len(route.pairs) - 1; i >= 0; i-- {
		in, next, err := route.pairs[i].GetInputAmount(current)
		if err != nil {
			return nil, fmt.Errorf("hop %d: %w", i, err)
		}
		current = in
		nextPairs[i] = next
	}
	return newTrade(route, ExactOutput, current, amountOut, nextPairs)
}

func newTrade(route *Route, tradeType TradeType, in, out CurrencyAmount, nextPairs []*Pair) (*Trade, error) {
	executionPrice, err := PriceFromAmounts(in, out)
	if err != nil {
		return nil, err
	}
	nextRoute, err := NewRoute(nextPairs, route.input, route.output)
	if err != nil {
		return nil, err
	}
	nextMidPrice, err := nextRoute.MidPrice()
	if err != nil {
		return nil, err
	}
	midPrice, err := route.MidPrice()
	if err != nil {
		return nil, err
	}
	impact, err := computePriceImpact(midPrice, in, out)
	if err != nil {
		return nil, err
	}
	return &Trade{
		route:          route,
		tradeType:      tradeType,
		inputAmount:    in,
		outputAmount:   out,
		executionPrice: executionPrice,
		nextMidPrice:   nextMidPrice,
		priceImpact:    impact,
	}, nil
}

// computePriceImpact returns (quote - out) / quote where quote is the output
// the mid price promises for in. It is positive when the trader gets less.
func computePriceImpact(midPrice Price, in, out CurrencyAmount) (numeric.Percent, error) {
	quote := midPrice.value.Multiply(numeric.FromInt(in.value()))
	impact, err := quote.Subtract(numeric.FromInt(out.value())).Divide(quote)
	if err != nil {
		return numeric.Percent{}, fmt.Errorf("price impact: %w", err)
	}
	return numeric.PercentOf(impact), nil
}

func (t *Trade) Route() *Route                { return t.route }
func (t *Trade) TradeType() TradeType         { return t.tradeType }
func (t *Trade) InputAmount() CurrencyAmount  { return t.inputAmount }
func (t *Trade) OutputAmount() CurrencyAmount { return t.outputAmount }
func (t *Trade) ExecutionPrice() Price        { return t.executionPrice }
func (t *Trade) NextMidPrice() Price          { return t.nextMidPrice }
func (t *Trade) PriceImpact() numeric.Percent { return t.priceImpact }

func checkSlippage(s numeric.Percent) error {
	if s.Sign() < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidSlippage, s)
	}
	return nil
}

var hundredPercent = numeric.PercentOf(numeric.FromInt64(1))

func minimumOut(out CurrencyAmount, slippage numeric.Percent) *big.Int {
	return hundredPercent.Subtract(slippage).Fraction().Multiply(numeric.FromInt(out.value())).Quotient()
}

func maximumIn(in CurrencyAmount, slippage numeric.Percent) *big.Int {
	return hundredPercent.Add(slippage).Fraction().Multiply(numeric.FromInt(in.value())).Quotient()
}

// MinimumAmountOut is the least output an exact-input trade accepts under
// slippage: output * (1 - slippage), truncated.
func (t *Trade) MinimumAmountOut(slippage numeric.Percent) (CurrencyAmount, error) {
	if t.tradeType != ExactInput {
		return CurrencyAmount{}, fmt.Errorf("%w: minimum amount out of %s trade", ErrWrongTradeType, t.tradeType)
	}
	if err := checkSlippage(slippage); err != nil {
		return CurrencyAmount{}, err
	}
	raw := minimumOut(t.outputAmount, slippage)
	if raw.Sign() < 0 {
		raw.SetInt64(0)
	}
	return CurrencyAmount{token: t.outputAmount.token, raw: raw}, nil
}

// MaximumAmountIn is the most input an exact-output trade pays under
// slippage: input * (1 + slippage), truncated.
func (t *Trade) MaximumAmountIn(slippage numeric.Percent) (CurrencyAmount, error) {
	if t.tradeType != ExactOutput {
		return CurrencyAmount{}, fmt.Errorf("%w: maximum amount in of %s trade", ErrWrongTradeType, t.tradeType)
	}
	if err := checkSlippage(slippage); err != nil {
		return CurrencyAmount{}, err
	}
	return CurrencyAmount{token: t.inputAmount.token, raw: maximumIn(t.inputAmount, slippage)}, nil
}

// WorstExecutionPrice is the execution price at the slippage bound of the fixed side.
func (t *Trade) WorstExecutionPrice(slippage numeric.Percent) (Price, error) {
	if err := checkSlippage(slippage); err != nil {
		return Price{}, err
	}
	if t.tradeType == ExactInput {
		minOut := minimumOut(t.outputAmount, slippage)
		if minOut.Sign() < 0 {
			minOut.SetInt64(0)
		}
		return NewPrice(t.inputAmount.token, t.outputAmount.token, minOut, t.inputAmount.value())
	}
	maxIn := maximumIn(t.inputAmount, slippage)
	return NewPrice(t.inputAmount.token, t.outputAmount.token, t.outputAmount.value(), maxIn)
}

func (t *Trade) String() string {
	return fmt.Sprintf("%s %s -> %s via %s (impact %s)", t.tradeType, t.inputAmount, t.outputAmount, t.route, t.priceImpact)
}
