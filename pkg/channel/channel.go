package channel

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jpillora/backoff"
	"github.com/pkg/errors"

	"github.com/tcfw/bbnode/internal/utils/logging"
	"github.com/tcfw/bbnode/pkg/wire"
)

// MatchFunc decides whether an inbound envelope answers a pending
// request. The first match wins.
type MatchFunc func(*wire.Envelope) bool

type correlation struct {
	match MatchFunc
	resp  chan *wire.Envelope
}

// Channel owns one full-duplex connection to the node. A single read
// loop decodes inbound frames and hands each to the first pending
// correlation whose predicate matches; everything else fans out to the
// notification stream.
//
// The wire protocol has no per-request correlation identifier, so two
// outstanding requests expecting the same response Type cannot be told
// apart. Request therefore serializes in-flight requests per expected
// Type; callers needing concurrency must use distinct types.
type Channel struct {
	conn *websocket.Conn

	writeMu sync.Mutex

	mu       sync.Mutex
	pending  map[string]*correlation
	turnover chan struct{}
	err      error

	notify chan *wire.Envelope
	closed chan struct{}
	once   sync.Once
}

const notifyBuffer = 64

// Dial opens a channel to the node at address (a ws:// or wss:// URL).
func Dial(ctx context.Context, address string) (*Channel, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, address, nil)
	if err != nil {
		return nil, errors.Wrap(err, "dialing node")
	}

	c := &Channel{
		conn:     conn,
		pending:  map[string]*correlation{},
		turnover: make(chan struct{}),
		notify:   make(chan *wire.Envelope, notifyBuffer),
		closed:   make(chan struct{}),
	}

	go c.readLoop()

	return c, nil
}

// DialRetry redials with jittered exponential backoff until the
// context expires.
func DialRetry(ctx context.Context, address string) (*Channel, error) {
	b := &backoff.Backoff{Min: 250 * time.Millisecond, Max: 15 * time.Second, Jitter: true}

	for {
		c, err := Dial(ctx, address)
		if err == nil {
			return c, nil
		}

		d := b.Duration()
		logging.WithError(err).WithField("retry_in", d).Warn("node unreachable")

		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, errors.Wrap(err, "dialing node")
		}
	}
}

// Send writes a single envelope without awaiting any response.
func (c *Channel) Send(env *wire.Envelope) error {
	b, err := json.Marshal(env)
	if err != nil {
		return errors.Wrap(err, "encoding envelope")
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	select {
	case <-c.closed:
		return c.closeErr()
	default:
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
		return errors.Wrap(ErrConnClosed, err.Error())
	}

	return nil
}

// Request sends env and blocks until an inbound envelope matches. A nil
// match waits for the first frame whose Type equals the request's.
// Cancellation or a connection drop releases the caller.
func (c *Channel) Request(ctx context.Context, env *wire.Envelope, match MatchFunc) (*wire.Envelope, error) {
	if match == nil {
		want := env.Type
		match = func(e *wire.Envelope) bool { return e.Type == want }
	}

	corr, err := c.enqueue(ctx, env.Type, match)
	if err != nil {
		return nil, err
	}

	if err := c.Send(env); err != nil {
		c.dequeue(env.Type)
		return nil, err
	}

	select {
	case resp := <-corr.resp:
		return resp, nil
	case <-ctx.Done():
		c.dequeue(env.Type)
		return nil, errors.Wrapf(ctx.Err(), "awaiting %s response", env.Type)
	case <-c.closed:
		return nil, c.closeErr()
	}
}

// Notifications streams push-style envelopes that no pending request
// claimed, e.g. balance updates and market data.
func (c *Channel) Notifications() <-chan *wire.Envelope {
	return c.notify
}

// Close tears down the connection; every pending correlation receives
// ErrConnClosed.
func (c *Channel) Close() error {
	c.fail(ErrConnClosed)
	return nil
}

// enqueue claims the correlation slot for typ, waiting while an
// earlier request of the same type is still outstanding. The match
// predicate is fixed before the slot becomes visible to the read loop.
func (c *Channel) enqueue(ctx context.Context, typ string, match MatchFunc) (*correlation, error) {
	for {
		c.mu.Lock()

		if c.err != nil {
			c.mu.Unlock()
			return nil, c.err
		}

		if _, busy := c.pending[typ]; !busy {
			corr := &correlation{match: match, resp: make(chan *wire.Envelope, 1)}
			c.pending[typ] = corr
			c.mu.Unlock()
			return corr, nil
		}

		turnover := c.turnover
		c.mu.Unlock()

		select {
		case <-turnover:
		case <-ctx.Done():
			return nil, errors.Wrapf(ctx.Err(), "awaiting %s request slot", typ)
		case <-c.closed:
			return nil, c.closeErr()
		}
	}
}

func (c *Channel) dequeue(typ string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.pending, typ)
	c.rotateLocked()
}

func (c *Channel) rotateLocked() {
	close(c.turnover)
	c.turnover = make(chan struct{})
}

func (c *Channel) readLoop() {
	// the read loop is the sole sender into notify, so the stream is
	// closed here rather than in fail
	defer close(c.notify)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.fail(errors.Wrap(ErrConnClosed, err.Error()))
			return
		}

		env := &wire.Envelope{}
		if err := json.Unmarshal(data, env); err != nil {
			// a bad frame aborts nothing; the loop keeps serving the
			// remaining correlations
			logging.WithError(errors.Wrap(ErrProtocol, err.Error())).Warn("dropping frame")
			continue
		}

		c.dispatch(env)
	}
}

func (c *Channel) dispatch(env *wire.Envelope) {
	c.mu.Lock()

	if corr, ok := c.pending[env.Type]; ok && corr.match(env) {
		delete(c.pending, env.Type)
		c.rotateLocked()
		c.mu.Unlock()

		corr.resp <- env
		return
	}

	c.mu.Unlock()

	select {
	case c.notify <- env:
	default:
		logging.Entry().WithField("type", env.Type).Debug("notification buffer full, dropping")
	}
}

func (c *Channel) fail(err error) {
	c.once.Do(func() {
		c.mu.Lock()
		c.err = err
		c.pending = map[string]*correlation{}
		c.rotateLocked()
		c.mu.Unlock()

		close(c.closed)
		c.conn.Close()
	})
}

func (c *Channel) closeErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return c.err
	}

	return ErrConnClosed
}
