package numeric

import "math/big"

var oneHundred = big.NewInt(100)

// Percent is a Fraction read as a ratio: 1/2 is 50%. It carries the same
// arithmetic as Fraction; only construction and display differ.
type Percent struct {
	value Fraction
}

// NewPercent returns numerator/100, i.e. `numerator` percent.
func NewPercent(numerator int64) Percent {
	return Percent{value: Fraction{numerator: big.NewInt(numerator), denominator: big.NewInt(100)}}
}

// NewPercentFraction returns numerator/denominator as a percent, e.g. (50, 10000) is 0.5%.
func NewPercentFraction(numerator, denominator *big.Int) (Percent, error) {
	f, err := NewFraction(numerator, denominator)
	if err != nil {
		return Percent{}, err
	}
	return Percent{value: f}, nil
}

// PercentOf wraps an existing fraction.
func PercentOf(f Fraction) Percent {
	return Percent{value: f}
}

// Fraction returns the underlying ratio.
func (p Percent) Fraction() Fraction { return p.value }

func (p Percent) Add(o Percent) Percent      { return Percent{value: p.value.Add(o.value)} }
func (p Percent) Subtract(o Percent) Percent { return Percent{value: p.value.Subtract(o.value)} }
func (p Percent) Multiply(o Percent) Percent { return Percent{value: p.value.Multiply(o.value)} }

func (p Percent) Divide(o Percent) (Percent, error) {
	f, err := p.value.Divide(o.value)
	if err != nil {
		return Percent{}, err
	}
	return Percent{value: f}, nil
}

func (p Percent) Sign() int                    { return p.value.Sign() }
func (p Percent) Cmp(o Percent) int            { return p.value.Cmp(o.value) }
func (p Percent) LessThan(o Percent) bool      { return p.value.LessThan(o.value) }
func (p Percent) GreaterThan(o Percent) bool   { return p.value.GreaterThan(o.value) }
func (p Percent) EqualTo(o Percent) bool       { return p.value.EqualTo(o.value) }
func (p Percent) Numerator() *big.Int          { return p.value.Numerator() }
func (p Percent) Denominator() *big.Int        { return p.value.Denominator() }
func (p Percent) scaled() Fraction             { return p.value.Multiply(FromInt(oneHundred)) }
func (p Percent) ToFixed(decimals uint) string { return p.scaled().ToFixed(decimals) }

// ToSignificant renders the value in percent units; see Fraction.ToSignificant
// for its approximation caveat.
func (p Percent) ToSignificant(digits int) (string, error) {
	return p.scaled().ToSignificant(digits)
}

// String renders the percentage with two truncated decimals, e.g. "0.30%".
func (p Percent) String() string {
	return p.ToFixed(2) + "%"
}
