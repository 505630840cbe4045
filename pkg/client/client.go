package client

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/tcfw/bbnode/pkg/chain"
	"github.com/tcfw/bbnode/pkg/channel"
	"github.com/tcfw/bbnode/pkg/signing"
	"github.com/tcfw/bbnode/pkg/wire"
	"github.com/tcfw/bbnode/pkg/withdraw"
)

// Settler releases completed withdrawal aggregates on-chain.
type Settler interface {
	Withdraw(ctx context.Context, cur chain.Currency, p *withdraw.Params) (*types.Receipt, error)
}

// SubmissionLog guards against double-submitting the same withdrawal.
type SubmissionLog interface {
	Submitted(k withdraw.Key) (bool, error)
	Record(k withdraw.Key, txHash string) error
}

// Session binds one account to one node channel. All state a request
// needs travels through the session; there is no process-wide state.
type Session struct {
	signer *signing.Signer
	ch     *channel.Channel
	agg    *withdraw.Aggregator

	settler Settler
	log     SubmissionLog

	userID   int64
	nodeID   int64
	minerFee string

	currencies   map[int64]chain.Currency
	pollInterval time.Duration

	now   func() time.Time
	newID func() string
}

type Option func(*Session) error

func WithSettler(s Settler) Option {
	return func(c *Session) error {
		c.settler = s
		return nil
	}
}

func WithSubmissionLog(l SubmissionLog) Option {
	return func(c *Session) error {
		c.log = l
		return nil
	}
}

func WithIdentity(userID, nodeID int64) Option {
	return func(c *Session) error {
		c.userID = userID
		c.nodeID = nodeID
		return nil
	}
}

func WithMinerFee(fee string) Option {
	return func(c *Session) error {
		c.minerFee = fee
		return nil
	}
}

func WithCurrencies(table map[int64]chain.Currency) Option {
	return func(c *Session) error {
		c.currencies = table
		return nil
	}
}

func WithPollInterval(d time.Duration) Option {
	return func(c *Session) error {
		c.pollInterval = d
		return nil
	}
}

// WithClock overrides the timestamp source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Session) error {
		c.now = now
		return nil
	}
}

func NewSession(signer *signing.Signer, ch *channel.Channel, opts ...Option) (*Session, error) {
	if signer == nil {
		return nil, errors.New("session requires a signer")
	}

	s := &Session{
		signer:       signer,
		ch:           ch,
		minerFee:     "0.00001",
		pollInterval: 2 * time.Second,
		currencies:   map[int64]chain.Currency{},
		now:          time.Now,
		newID:        func() string { return uuid.NewString() },
	}

	for _, c := range chain.DefaultCurrencies() {
		s.currencies[c.ID] = c
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	s.agg = withdraw.NewAggregator(func(cur int64) int {
		if c, ok := s.currencies[cur]; ok && c.Quorum > 0 {
			return c.Quorum
		}
		return 1
	})

	return s, nil
}

// Address returns the account address requests authenticate as.
func (s *Session) Address() string {
	return s.signer.Address().Hex()
}

// Notifications exposes push messages (balances, market data) that no
// request claimed.
func (s *Session) Notifications() <-chan *wire.Envelope {
	return s.ch.Notifications()
}

func (s *Session) Close() error {
	return s.ch.Close()
}

func (s *Session) currency(id int64) (chain.Currency, error) {
	c, ok := s.currencies[id]
	if !ok {
		return chain.Currency{}, errors.Errorf("unknown currency %d", id)
	}

	return c, nil
}

// signedEnvelope canonicalizes the payload, signs it and wraps both in
// a request frame.
func (s *Session) signedEnvelope(typ string, p *wire.Payload) (*wire.Envelope, error) {
	env, err := wire.NewEnvelope(typ, p)
	if err != nil {
		return nil, err
	}

	env.SignatureUser, err = s.signer.SignPayload(p)
	if err != nil {
		return nil, err
	}

	return env, nil
}
