package wire

import "github.com/pkg/errors"

var (
	ErrMalformedField = errors.New("malformed payload field")
	ErrFractionalUnit = errors.New("amount does not divide into whole chain units")
)
