package entities

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/defistate/uniswapv2-sdk-go/numeric"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// DefaultExactPrecision is the number of fractional digits String shows.
const DefaultExactPrecision = 6

// MaxUint256 is the largest raw amount a token contract can hold.
// maxUint256Digits is the number of decimal digits in MaxUint256.
const maxUint256Digits = 78

var MaxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// CurrencyAmount is a raw amount, in the token's smallest unit, of a token.
type CurrencyAmount struct {
	token *Token
	raw   *big.Int
}

// FromRawAmount wraps raw, which must be in [0, 2^256).
func FromRawAmount(token *Token, raw *big.Int) (CurrencyAmount, error) {
	if raw == nil || raw.Sign() < 0 || raw.Cmp(MaxUint256) > 0 {
		return CurrencyAmount{}, fmt.Errorf("%w: %v", ErrInvalidAmount, raw)
	}
	return CurrencyAmount{token: token, raw: new(big.Int).Set(raw)}, nil
}

// FromRawInt64 is FromRawAmount for small literals.
func FromRawInt64(token *Token, raw int64) (CurrencyAmount, error) {
	return FromRawAmount(token, big.NewInt(raw))
}

// FromDecimal parses a human-readable amount such as "1.5" and scales it by
// 10^decimals. The parse is exact; a value with more fractional digits than the
// token supports fails with ErrTooManyDecimals rather than being truncated.
func FromDecimal(token *Token, value string) (CurrencyAmount, error) {
	value = strings.TrimSpace(value)
	if strings.ContainsAny(value, "eE") {
		return CurrencyAmount{}, fmt.Errorf("%w: %q uses exponent notation", ErrInvalidAmount, value)
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return CurrencyAmount{}, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, value, err)
	}
	if d.IsNegative() {
		return CurrencyAmount{}, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, value)
	}
	if intDigits := d.NumDigits() + int(d.Exponent()); intDigits > maxUint256Digits {
		return CurrencyAmount{}, fmt.Errorf("%w: %q exceeds uint256", ErrInvalidAmount, value)
	}
	scaled := d.Shift(int32(token.decimals))
	if !scaled.Equal(scaled.Truncate(0)) {
		return CurrencyAmount{}, fmt.Errorf("%w: %q has more than %d", ErrTooManyDecimals, value, token.decimals)
	}
	return FromRawAmount(token, scaled.BigInt())
}

func (c CurrencyAmount) Token() *Token { return c.token }

// Raw returns a copy of the raw amount.
func (c CurrencyAmount) Raw() *big.Int {
	if c.raw == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(c.raw)
}

func (c CurrencyAmount) value() *big.Int {
	if c.raw == nil {
		return new(big.Int)
	}
	return c.raw
}

func (c CurrencyAmount) IsZero() bool { return c.value().Sign() == 0 }

// Fraction returns the amount in whole-token units: raw / 10^decimals.
func (c CurrencyAmount) Fraction() numeric.Fraction {
	f, _ := numeric.NewFraction(c.value(), numeric.Pow10(uint(c.token.decimals)))
	return f
}

// Add returns c + o. Both amounts must be of the same token.
func (c CurrencyAmount) Add(o CurrencyAmount) (CurrencyAmount, error) {
	if !c.token.Equals(o.token) {
		return CurrencyAmount{}, fmt.Errorf("%w: %s + %s", ErrTokenMismatch, c.token, o.token)
	}
	return CurrencyAmount{token: c.token, raw: new(big.Int).Add(c.value(), o.value())}, nil
}

// Subtract returns c - o. It fails with ErrNegativeResult when o > c.
func (c CurrencyAmount) Subtract(o CurrencyAmount) (CurrencyAmount, error) {
	if !c.token.Equals(o.token) {
		return CurrencyAmount{}, fmt.Errorf("%w: %s - %s", ErrTokenMismatch, c.token, o.token)
	}
	if c.value().Cmp(o.value()) < 0 {
		return CurrencyAmount{}, fmt.Errorf("%w: %s - %s", ErrNegativeResult, c.value(), o.value())
	}
	return CurrencyAmount{token: c.token, raw: new(big.Int).Sub(c.value(), o.value())}, nil
}

// Cmp compares two amounts of the same token.
func (c CurrencyAmount) Cmp(o CurrencyAmount) (int, error) {
	if !c.token.Equals(o.token) {
		return 0, fmt.Errorf("%w: %s vs %s", ErrTokenMismatch, c.token, o.token)
	}
	return c.value().Cmp(o.value()), nil
}

// EqualTo reports whether both amounts have the same token and raw value.
func (c CurrencyAmount) EqualTo(o CurrencyAmount) bool {
	return c.token.Equals(o.token) && c.value().Cmp(o.value()) == 0
}

// ToExact renders the amount in whole-token units, truncated to precision
// fractional digits, with trailing zeros removed.
func (c CurrencyAmount) ToExact(precision uint) string {
	if precision > uint(c.token.decimals) {
		precision = uint(c.token.decimals)
	}
	s := c.Fraction().ToFixed(precision)
	if strings.IndexByte(s, '.') >= 0 {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}

// ToFixed renders the amount in whole-token units with exactly decimals
// fractional digits, truncated.
func (c CurrencyAmount) ToFixed(decimals uint) string {
	return c.Fraction().ToFixed(decimals)
}

func (c CurrencyAmount) ToSignificant(digits int) (string, error) {
	return c.Fraction().ToSignificant(digits)
}

// ToUint256 exports the raw amount as a contract call parameter.
func (c CurrencyAmount) ToUint256() (*uint256.Int, error) {
	v, overflow := uint256.FromBig(c.value())
	if overflow {
		return nil, fmt.Errorf("%w: %s overflows uint256", ErrInvalidAmount, c.value())
	}
	return v, nil
}

func (c CurrencyAmount) String() string {
	return c.ToExact(DefaultExactPrecision) + " " + c.token.String()
}
