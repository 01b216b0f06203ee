package numeric

import "errors"

var (
	// ErrInvalidDenominator is returned when a fraction is built with a zero denominator.
	ErrInvalidDenominator = errors.New("denominator must be non-zero")
	// ErrDivisionByZero is returned when dividing by a fraction whose numerator is zero.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrInvertZero is returned when inverting a zero-valued fraction.
	ErrInvertZero = errors.New("cannot invert zero")
	// ErrNilOperand is returned when a nil *big.Int is passed where a value is required.
	ErrNilOperand = errors.New("nil operand")
	// ErrInvalidSignificantDigits is returned when ToSignificant is asked for fewer than one digit.
	ErrInvalidSignificantDigits = errors.New("significant digits must be at least 1")
)
