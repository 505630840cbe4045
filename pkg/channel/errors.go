package channel

import "github.com/pkg/errors"

var (
	ErrConnClosed = errors.New("channel connection closed")
	ErrProtocol   = errors.New("malformed inbound frame")
)
