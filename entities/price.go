package entities

import (
	"fmt"
	"math/big"

	"github.com/defistate/uniswapv2-sdk-go/numeric"
)

// Price is the amount of quote token per unit of base token, in raw units.
// Decimal scaling is only applied by Adjusted and the display methods.
type Price struct {
	base  *Token
	quote *Token
	value numeric.Fraction
}

// NewPrice returns numerator/denominator quote raw units per base raw unit.
func NewPrice(base, quote *Token, numerator, denominator *big.Int) (Price, error) {
	f, err := numeric.NewFraction(numerator, denominator)
	if err != nil {
		return Price{}, err
	}
	return Price{base: base, quote: quote, value: f}, nil
}

// PriceFromAmounts is the price implied by exchanging baseAmount for quoteAmount.
func PriceFromAmounts(baseAmount, quoteAmount CurrencyAmount) (Price, error) {
	return NewPrice(baseAmount.token, quoteAmount.token, quoteAmount.value(), baseAmount.value())
}

func (p Price) BaseToken() *Token          { return p.base }
func (p Price) QuoteToken() *Token         { return p.quote }
func (p Price) Fraction() numeric.Fraction { return p.value }
func (p Price) Numerator() *big.Int        { return p.value.Numerator() }
func (p Price) Denominator() *big.Int      { return p.value.Denominator() }
func (p Price) EqualTo(o Price) bool       { return p.value.EqualTo(o.value) }
func (p Price) LessThan(o Price) bool      { return p.value.LessThan(o.value) }
func (p Price) GreaterThan(o Price) bool   { return p.value.GreaterThan(o.value) }
func (p Price) String() string {
	return p.base.String() + "/" + p.quote.String() + " " + p.value.String()
}

// Invert swaps base and quote.
func (p Price) Invert() (Price, error) {
	inv, err := p.value.Invert()
	if err != nil {
		return Price{}, err
	}
	return Price{base: p.quote, quote: p.base, value: inv}, nil
}

// Multiply chains p (A->B) with o (B->C) into A->C.
func (p Price) Multiply(o Price) (Price, error) {
	if !p.quote.Equals(o.base) {
		return Price{}, fmt.Errorf("%w: %s quote vs %s base", ErrTokenChainMismatch, p.quote, o.base)
	}
	return Price{base: p.base, quote: o.quote, value: p.value.Multiply(o.value)}, nil
}

// Quote converts an amount of the base token into the quote token, truncating.
func (p Price) Quote(amount CurrencyAmount) (CurrencyAmount, error) {
	if !amount.token.Equals(p.base) {
		return CurrencyAmount{}, fmt.Errorf("%w: %s is not %s", ErrTokenMismatch, amount.token, p.base)
	}
	return FromRawAmount(p.quote, p.value.Multiply(numeric.FromInt(amount.value())).Quotient())
}

// Adjusted returns the price in whole-token units:
// value * 10^base.decimals / 10^quote.decimals.
func (p Price) Adjusted() numeric.Fraction {
	scalar, _ := numeric.NewFraction(numeric.Pow10(uint(p.base.decimals)), numeric.Pow10(uint(p.quote.decimals)))
	return p.value.Multiply(scalar)
}

func (p Price) ToFixed(decimals uint) string {
	return p.Adjusted().ToFixed(decimals)
}

func (p Price) ToSignificant(digits int) (string, error) {
	return p.Adjusted().ToSignificant(digits)
}
