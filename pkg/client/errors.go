package client

import "github.com/pkg/errors"

var (
	ErrQuorumTimeout    = errors.New("validator quorum not reached in time")
	ErrRejected         = errors.New("request rejected by node")
	ErrAlreadySubmitted = errors.New("withdrawal already settled on-chain")
	ErrNoSettler        = errors.New("no settlement adapter configured")
)
