package convert

import "errors"

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrUnknownUnit     = errors.New("unknown unit")
	ErrNonFinite       = errors.New("conversion result is not finite")
)
