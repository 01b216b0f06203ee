// Package numeric implements exact rational arithmetic over arbitrary-precision
// integers. Values are immutable: every operation allocates its result and never
// touches its operands.
package numeric

import (
	"fmt"
	"math/big"
)

var (
	zero = big.NewInt(0)
	one  = big.NewInt(1)
	ten  = big.NewInt(10)

	// precomputed 10^n for typical ERC20 decimals (0..18)
	precomputedScales [19]*big.Int
)

func init() {
	precomputedScales[0] = big.NewInt(1)
	for i := 1; i < len(precomputedScales); i++ {
		precomputedScales[i] = new(big.Int).Mul(precomputedScales[i-1], ten)
	}
}

// Pow10 returns 10^n. The returned *big.Int MUST NOT be modified.
func Pow10(n uint) *big.Int {
	if n < uint(len(precomputedScales)) {
		return precomputedScales[n]
	}
	return new(big.Int).Exp(ten, new(big.Int).SetUint64(uint64(n)), nil)
}

// Fraction is a signed rational number. The denominator is always positive;
// the sign lives in the numerator. Fractions are never reduced to lowest terms.
//
// The zero value is 0/1.
type Fraction struct {
	numerator   *big.Int
	denominator *big.Int
}

// NewFraction builds numerator/denominator, normalizing the sign into the numerator.
func NewFraction(numerator, denominator *big.Int) (Fraction, error) {
	if numerator == nil || denominator == nil {
		return Fraction{}, ErrNilOperand
	}
	if denominator.Sign() == 0 {
		return Fraction{}, ErrInvalidDenominator
	}
	n := new(big.Int).Set(numerator)
	d := new(big.Int).Set(denominator)
	if d.Sign() < 0 {
		n.Neg(n)
		d.Neg(d)
	}
	return Fraction{numerator: n, denominator: d}, nil
}

// NewFractionFromInt64 is NewFraction for small literals.
func NewFractionFromInt64(numerator, denominator int64) (Fraction, error) {
	return NewFraction(big.NewInt(numerator), big.NewInt(denominator))
}

// MustFraction is like NewFractionFromInt64 but panics on a zero denominator.
// It is meant for package-level constants.
func MustFraction(numerator, denominator int64) Fraction {
	f, err := NewFractionFromInt64(numerator, denominator)
	if err != nil {
		panic(err)
	}
	return f
}

// FromInt wraps a bare integer as n/1.
func FromInt(n *big.Int) Fraction {
	if n == nil {
		return Fraction{}
	}
	return Fraction{numerator: new(big.Int).Set(n), denominator: big.NewInt(1)}
}

// FromInt64 wraps a bare integer as n/1.
func FromInt64(n int64) Fraction {
	return Fraction{numerator: big.NewInt(n), denominator: big.NewInt(1)}
}

// num and den give the zero value its 0/1 meaning. The results are read-only.
func (f Fraction) num() *big.Int {
	if f.numerator == nil {
		return zero
	}
	return f.numerator
}

func (f Fraction) den() *big.Int {
	if f.denominator == nil {
		return one
	}
	return f.denominator
}

// Numerator returns a copy of the numerator.
func (f Fraction) Numerator() *big.Int {
	return new(big.Int).Set(f.num())
}

// Denominator returns a copy of the (always positive) denominator.
func (f Fraction) Denominator() *big.Int {
	return new(big.Int).Set(f.den())
}

// Add returns f + o computed as (a*d + c*b) / (b*d).
func (f Fraction) Add(o Fraction) Fraction {
	if f.den().Cmp(o.den()) == 0 {
		return Fraction{
			numerator:   new(big.Int).Add(f.num(), o.num()),
			denominator: new(big.Int).Set(f.den()),
		}
	}
	n := new(big.Int).Mul(f.num(), o.den())
	n.Add(n, new(big.Int).Mul(o.num(), f.den()))
	return Fraction{numerator: n, denominator: new(big.Int).Mul(f.den(), o.den())}
}

// Subtract returns f - o.
func (f Fraction) Subtract(o Fraction) Fraction {
	if f.den().Cmp(o.den()) == 0 {
		return Fraction{
			numerator:   new(big.Int).Sub(f.num(), o.num()),
			denominator: new(big.Int).Set(f.den()),
		}
	}
	n := new(big.Int).Mul(f.num(), o.den())
	n.Sub(n, new(big.Int).Mul(o.num(), f.den()))
	return Fraction{numerator: n, denominator: new(big.Int).Mul(f.den(), o.den())}
}

// Multiply returns f * o.
func (f Fraction) Multiply(o Fraction) Fraction {
	return Fraction{
		numerator:   new(big.Int).Mul(f.num(), o.num()),
		denominator: new(big.Int).Mul(f.den(), o.den()),
	}
}

// Divide returns f / o. It fails with ErrDivisionByZero when o is zero.
func (f Fraction) Divide(o Fraction) (Fraction, error) {
	if o.num().Sign() == 0 {
		return Fraction{}, ErrDivisionByZero
	}
	n := new(big.Int).Mul(f.num(), o.den())
	d := new(big.Int).Mul(f.den(), o.num())
	if d.Sign() < 0 {
		n.Neg(n)
		d.Neg(d)
	}
	return Fraction{numerator: n, denominator: d}, nil
}

// Invert returns 1/f. It fails with ErrInvertZero when f is zero.
func (f Fraction) Invert() (Fraction, error) {
	if f.num().Sign() == 0 {
		return Fraction{}, ErrInvertZero
	}
	n := new(big.Int).Set(f.den())
	d := new(big.Int).Set(f.num())
	if d.Sign() < 0 {
		n.Neg(n)
		d.Neg(d)
	}
	return Fraction{numerator: n, denominator: d}, nil
}

// Quotient returns the whole-number part, truncated toward zero.
func (f Fraction) Quotient() *big.Int {
	return new(big.Int).Quo(f.num(), f.den())
}

// Remainder returns (numerator rem denominator) / denominator, so that
// Quotient() + Remainder() == f.
func (f Fraction) Remainder() Fraction {
	return Fraction{
		numerator:   new(big.Int).Rem(f.num(), f.den()),
		denominator: new(big.Int).Set(f.den()),
	}
}

// Sign returns -1, 0 or +1.
func (f Fraction) Sign() int {
	return f.num().Sign()
}

// IsZero reports whether f == 0.
func (f Fraction) IsZero() bool {
	return f.num().Sign() == 0
}

// Cmp compares f and o by value and returns -1, 0 or +1.
func (f Fraction) Cmp(o Fraction) int {
	l := new(big.Int).Mul(f.num(), o.den())
	r := new(big.Int).Mul(o.num(), f.den())
	return l.Cmp(r)
}

// LessThan reports whether f < o.
func (f Fraction) LessThan(o Fraction) bool { return f.Cmp(o) < 0 }

// EqualTo reports whether f and o have the same value, regardless of representation.
func (f Fraction) EqualTo(o Fraction) bool { return f.Cmp(o) == 0 }

// GreaterThan reports whether f > o.
func (f Fraction) GreaterThan(o Fraction) bool { return f.Cmp(o) > 0 }

// Reduce returns the same value in lowest terms. Arithmetic never calls it;
// it exists for callers that chain many operations and want smaller operands.
func (f Fraction) Reduce() Fraction {
	g := new(big.Int).GCD(nil, nil, new(big.Int).Abs(f.num()), f.den())
	if g.Sign() == 0 || g.Cmp(one) == 0 {
		return Fraction{numerator: new(big.Int).Set(f.num()), denominator: new(big.Int).Set(f.den())}
	}
	return Fraction{
		numerator:   new(big.Int).Quo(f.num(), g),
		denominator: new(big.Int).Quo(f.den(), g),
	}
}

// String renders the raw representation, e.g. "-1/3".
func (f Fraction) String() string {
	return fmt.Sprintf("%s/%s", f.num().String(), f.den().String())
}
