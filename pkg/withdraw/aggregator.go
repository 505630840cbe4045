package withdraw

import (
	"encoding/base64"
	"encoding/hex"
	"math/big"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/apd/v3"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/tcfw/bbnode/pkg/wire"
)

// OffchainScale is the factor the node pre-scales withdrawal amounts
// by, relative to the on-chain display unit.
const OffchainScale = 1000

// Key identifies one outstanding withdrawal. Aggregation is keyed
// strictly on all three parts: mixing signatures between unrelated
// withdrawals could authorize the wrong payout.
type Key struct {
	Currency int64
	Nonce    uint64
	TXID     string
}

func NewKey(currency int64, nonce uint64, txid string) Key {
	return Key{
		Currency: currency,
		Nonce:    nonce,
		TXID:     strings.TrimPrefix(strings.ToLower(txid), "0x"),
	}
}

// Params holds everything the settlement adapter needs to release the
// funds on-chain.
type Params struct {
	Amount   *big.Int
	Nonce    uint64
	Receiver common.Address
	TXID     string

	// Signatures is ordered by validator ID and padded with empty
	// placeholders up to the contract's fixed arity.
	Signatures [][]byte
}

type aggregate struct {
	amount *wire.Decimal
	sigs   map[int64]string
}

// Aggregator accumulates validator attestations until a withdrawal
// reaches its per-currency quorum. A repeated attestation from the
// same validator overwrites rather than duplicates.
type Aggregator struct {
	mu      sync.Mutex
	quorum  func(currency int64) int
	pending map[Key]*aggregate
}

func NewAggregator(quorum func(currency int64) int) *Aggregator {
	return &Aggregator{
		quorum:  quorum,
		pending: map[Key]*aggregate{},
	}
}

// Observe records one burn validation, returning the aggregate key and
// whether the quorum has now been reached.
func (a *Aggregator) Observe(v *wire.BurnValidation) (Key, bool) {
	k := NewKey(v.Cur.Int64(), uint64(v.Nonce.Int64()), v.TXID)

	a.mu.Lock()
	defer a.mu.Unlock()

	agg, ok := a.pending[k]
	if !ok {
		agg = &aggregate{sigs: map[int64]string{}}
		a.pending[k] = agg
	}

	if v.Amount != nil {
		agg.amount = v.Amount
	}
	agg.sigs[v.ValidatorID.Int64()] = v.SignatureValidator

	return k, len(agg.sigs) >= a.quorum(k.Currency)
}

// IsComplete reports whether the aggregate for k holds signatures from
// enough distinct validators.
func (a *Aggregator) IsComplete(k Key) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	agg, ok := a.pending[k]

	return ok && len(agg.sigs) >= a.quorum(k.Currency)
}

// Discard drops a pending aggregate, e.g. after a quorum timeout.
func (a *Aggregator) Discard(k Key) {
	a.mu.Lock()
	defer a.mu.Unlock()

	delete(a.pending, k)
}

// DiscardCurrency drops every pending aggregate for a currency.
func (a *Aggregator) DiscardCurrency(currency int64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for k := range a.pending {
		if k.Currency == currency {
			delete(a.pending, k)
		}
	}
}

// SettlementParams converts a completed aggregate into on-chain call
// parameters: the amount in the token's smallest unit, the 0x-prefixed
// transaction id and the validator signatures in argument order. The
// aggregate is removed on success.
func (a *Aggregator) SettlementParams(k Key, receiver common.Address, decimals, arity int) (*Params, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	agg, ok := a.pending[k]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownWithdrawal, "currency=%d nonce=%d txid=%s", k.Currency, k.Nonce, k.TXID)
	}

	if len(agg.sigs) < a.quorum(k.Currency) {
		return nil, errors.Wrapf(ErrQuorumNotReached, "have %d of %d", len(agg.sigs), a.quorum(k.Currency))
	}

	if agg.amount == nil {
		return nil, errors.Wrap(ErrUnknownWithdrawal, "no amount observed")
	}

	amount, err := ToChainUnits(&agg.amount.Decimal, decimals)
	if err != nil {
		return nil, err
	}

	sigs, err := orderedSignatures(agg.sigs, arity)
	if err != nil {
		return nil, err
	}

	delete(a.pending, k)

	return &Params{
		Amount:     amount,
		Nonce:      k.Nonce,
		Receiver:   receiver,
		TXID:       "0x" + k.TXID,
		Signatures: sigs,
	}, nil
}

// ToChainUnits converts an off-chain protocol amount to the token's
// smallest unit: divide out the node's display-scale factor, then
// multiply by 10^decimals. The result must be a whole number of units.
func ToChainUnits(amount *apd.Decimal, decimals int) (*big.Int, error) {
	ctx := apd.BaseContext.WithPrecision(64)

	unscaled := &apd.Decimal{}
	if _, err := ctx.Quo(unscaled, amount, apd.New(OffchainScale, 0)); err != nil {
		return nil, errors.Wrap(err, "unscaling amount")
	}

	return DisplayToUnits(unscaled, decimals)
}

// DisplayToUnits converts a display-unit amount (e.g. whole ETH) to
// the token's smallest unit.
func DisplayToUnits(amount *apd.Decimal, decimals int) (*big.Int, error) {
	ctx := apd.BaseContext.WithPrecision(64)

	scaled := &apd.Decimal{}
	if _, err := ctx.Mul(scaled, amount, apd.New(1, int32(decimals))); err != nil {
		return nil, errors.Wrap(err, "scaling to chain units")
	}

	reduced := &apd.Decimal{}
	reduced.Reduce(scaled)

	if reduced.Negative {
		return nil, errors.Wrap(wire.ErrFractionalUnit, "negative amount")
	}
	if reduced.Exponent < 0 {
		return nil, errors.Wrapf(wire.ErrFractionalUnit, "amount %s at %d decimals", amount.Text('f'), decimals)
	}

	units := new(big.Int).Set(reduced.Coeff.MathBigInt())
	units.Mul(units, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(reduced.Exponent)), nil))

	return units, nil
}

// orderedSignatures lays attestations out in the contract's fixed
// argument order, slot i belonging to validator i+1. Validators that
// never reported leave an empty placeholder.
func orderedSignatures(sigs map[int64]string, arity int) ([][]byte, error) {
	ids := make([]int64, 0, len(sigs))
	for id := range sigs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([][]byte, arity)
	for i := range out {
		out[i] = []byte{}
	}

	for _, id := range ids {
		if id < 1 || int(id) > arity {
			return nil, errors.Wrapf(ErrUnknownValidator, "validator %d beyond contract arity %d", id, arity)
		}

		raw, err := decodeSignature(sigs[id])
		if err != nil {
			return nil, errors.Wrapf(err, "validator %d", id)
		}

		out[id-1] = raw
	}

	return out, nil
}

// decodeSignature accepts either hex or base64 validator signature
// encodings.
func decodeSignature(s string) ([]byte, error) {
	trimmed := strings.TrimPrefix(s, "0x")

	if raw, err := hex.DecodeString(trimmed); err == nil && len(trimmed)%2 == 0 && trimmed != "" {
		return raw, nil
	}

	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(err, "decoding validator signature")
	}

	return raw, nil
}
