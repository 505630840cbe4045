package signing

import "github.com/pkg/errors"

var (
	ErrKey       = errors.New("malformed private key")
	ErrSignature = errors.New("signature operation failed")
)
