package withdraw

import "github.com/pkg/errors"

var (
	ErrUnknownWithdrawal = errors.New("no aggregate for withdrawal")
	ErrQuorumNotReached  = errors.New("validator quorum not reached")
	ErrUnknownValidator  = errors.New("validator outside contract signature slots")
)
