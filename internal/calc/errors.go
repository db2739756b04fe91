package calc

import (
	"errors"
	"fmt"
)

var (
	// ErrNonFinite is returned when any operation yields ±Inf or NaN.
	ErrNonFinite = errors.New("result is not finite")

	// ErrFactorialDomain is returned for factorials of negative or
	// non-integer arguments. It matches ErrNonFinite as well.
	ErrFactorialDomain = fmt.Errorf("factorial undefined for negative or non-integer argument: %w", ErrNonFinite)

	// ErrFactorialOverflow is returned for factorial arguments above 1000.
	ErrFactorialOverflow = errors.New("number too large for factorial")

	// ErrMalformedExpression is returned when the rewritten expression
	// cannot be parsed.
	ErrMalformedExpression = errors.New("malformed expression")

	// ErrEmptyExpression is returned when there is nothing to calculate.
	ErrEmptyExpression = errors.New("empty expression")
)
