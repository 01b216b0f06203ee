package numeric

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// ToFixed renders f with exactly `decimals` fractional digits. Extra precision is
// truncated toward zero, never rounded. A value that truncates to zero renders
// as "0" without a sign.
func (f Fraction) ToFixed(decimals uint) string {
	abs := new(big.Int).Abs(f.num())
	scaled := abs.Mul(abs, Pow10(decimals))
	scaled.Quo(scaled, f.den())
	if scaled.Sign() == 0 {
		return "0"
	}

	digits := scaled.String()
	var b strings.Builder
	if f.num().Sign() < 0 {
		b.WriteByte('-')
	}
	if decimals == 0 {
		b.WriteString(digits)
		return b.String()
	}

	d := int(decimals)
	if len(digits) <= d {
		digits = strings.Repeat("0", d-len(digits)+1) + digits
	}
	b.WriteString(digits[:len(digits)-d])
	b.WriteByte('.')
	b.WriteString(digits[len(digits)-d:])
	return b.String()
}

// ToSignificant renders f rounded (half away from zero) to the given number of
// significant digits, with trailing zeros trimmed.
//
// This is an approximation: the quotient is first computed to a fixed number of
// decimal places derived from the operands' digit counts and then rounded again
// to significant digits, so results are not guaranteed to match conventional
// single-step significant-digit rounding bit-for-bit. Use ToFixed when exact,
// truncating output is required.
func (f Fraction) ToSignificant(digits int) (string, error) {
	if digits < 1 {
		return "", ErrInvalidSignificantDigits
	}
	if f.num().Sign() == 0 {
		return "0", nil
	}

	// magnitude estimate: order of |num| minus order of den, off by at most one
	magnitude := len(new(big.Int).Abs(f.num()).String()) - len(f.den().String())
	precision := digits - magnitude + 2
	if precision < 0 {
		precision = 0
	}

	n := decimal.NewFromBigInt(f.num(), 0)
	d := decimal.NewFromBigInt(f.den(), 0)
	q := n.DivRound(d, int32(precision))
	if q.IsZero() {
		return "0", nil
	}

	intDigits := q.NumDigits() + int(q.Exponent())
	q = q.Round(int32(digits - intDigits))
	return q.String(), nil
}
