package common

import (
	"github.com/cockroachdb/errors"
)

var (
	// input data can't be used, like an empty sample or mismatched lengths
	ErrorInvalidValue = errors.New("invalid value")

	// configuration out of domain: N < 1, non-finite exponent, non-positive bandwidth or coefficient
	ErrorInvalidParameter = errors.New("invalid parameter")

	// numeric collapse found while fitting, e.g. every pilot density is zero
	ErrorDegenerateInput = errors.New("degenerate input")
)

func InvalidValuef(format string, args ...interface{}) error {
	return errors.Wrapf(ErrorInvalidValue, format, args...)
}

func InvalidParameterf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrorInvalidParameter, format, args...)
}

func DegenerateInputf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrorDegenerateInput, format, args...)
}
