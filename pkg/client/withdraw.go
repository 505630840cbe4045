package client

import (
	"context"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/jpillora/backoff"
	"github.com/pkg/errors"

	"github.com/tcfw/bbnode/internal/utils/logging"
	"github.com/tcfw/bbnode/pkg/chain"
	"github.com/tcfw/bbnode/pkg/wire"
	"github.com/tcfw/bbnode/pkg/withdraw"
)

// RequestWithdraw asks the node to burn off-chain funds, returning the
// request id and the node's decision state.
func (s *Session) RequestWithdraw(ctx context.Context, currencyID int64, amount *wire.Decimal) (string, string, error) {
	id := s.newID()

	fields := map[string]interface{}{
		"Amount":        amount,
		"CreatedByUser": wire.Ticks(s.now()),
		"From":          s.userID,
		"ID":            id,
		"MinerFeeStr":   s.minerFee,
		"NodeID":        s.nodeID,
		"Reference":     strings.ToLower(s.signer.Address().Hex()),
		"TType":         TTypeWithdrawal,
		"UserID":        s.userID,
	}
	if currencyID != 0 {
		fields["Cur"] = currencyID
	}

	p, err := wire.BuildPayload(fields)
	if err != nil {
		return "", "", err
	}

	env, err := s.signedEnvelope(wire.TypeTransfer, p)
	if err != nil {
		return "", "", err
	}
	env.UserID = s.userID

	resp, err := s.ch.Request(ctx, env, nil)
	if err != nil {
		return "", "", err
	}

	logging.WithOp("request-withdraw", logging.Fields{
		"id":    id,
		"cur":   currencyID,
		"state": resp.State,
	}).Info("withdraw request answered")

	return id, resp.State, nil
}

// PollBurnValidations fetches outstanding validator attestations and
// feeds them to the aggregator. It returns any aggregate key that
// reached quorum for the given currency.
func (s *Session) PollBurnValidations(ctx context.Context, currencyID int64, maxResults int) (*withdraw.Key, error) {
	p, err := wire.BuildPayload(map[string]interface{}{
		"MaxResults": maxResults,
		"NodeID":     s.nodeID,
		"UserID":     s.userID,
	})
	if err != nil {
		return nil, err
	}

	env, err := wire.NewEnvelope(wire.TypeGetBurnValidations, p)
	if err != nil {
		return nil, err
	}

	resp, err := s.ch.Request(ctx, env, nil)
	if err != nil {
		return nil, err
	}

	vs, err := wire.DecodeBurnValidations(resp.Data)
	if err != nil {
		return nil, err
	}

	var complete *withdraw.Key

	for i := range vs {
		v := &vs[i]
		if v.Cur.Int64() != currencyID {
			continue
		}

		k, done := s.agg.Observe(v)
		if done && complete == nil {
			complete = &k
		}
	}

	return complete, nil
}

// Withdraw runs the full settlement flow: request the burn, poll for
// validator attestations until the currency's quorum is reached, then
// release the funds on-chain. The context bounds the whole wait; on
// expiry the pending aggregate is discarded and ErrQuorumTimeout
// surfaced.
func (s *Session) Withdraw(ctx context.Context, currencyID int64, amount *wire.Decimal) (*types.Receipt, error) {
	if s.settler == nil {
		return nil, ErrNoSettler
	}

	cur, err := s.currency(currencyID)
	if err != nil {
		return nil, err
	}

	_, state, err := s.RequestWithdraw(ctx, currencyID, amount)
	if err != nil {
		return nil, err
	}

	if state != "" && state != "Approved" {
		return nil, errors.Wrapf(ErrRejected, "state %q", state)
	}

	b := &backoff.Backoff{Min: s.pollInterval, Max: 30 * time.Second, Jitter: true}

	for {
		k, err := s.PollBurnValidations(ctx, currencyID, 10)
		if err != nil {
			if ctx.Err() != nil {
				return nil, s.abortQuorumWait(ctx, currencyID)
			}
			return nil, err
		}

		if k != nil {
			return s.settle(ctx, cur, *k)
		}

		select {
		case <-time.After(b.Duration()):
		case <-ctx.Done():
			return nil, s.abortQuorumWait(ctx, currencyID)
		}
	}
}

// abortQuorumWait discards the currency's pending aggregates and maps
// the context outcome: deadline expiry means the quorum never arrived,
// while an operator cancellation propagates as-is.
func (s *Session) abortQuorumWait(ctx context.Context, currencyID int64) error {
	s.agg.DiscardCurrency(currencyID)

	if errors.Is(ctx.Err(), context.Canceled) {
		return errors.Wrapf(ctx.Err(), "awaiting quorum for currency %d", currencyID)
	}

	return errors.Wrapf(ErrQuorumTimeout, "currency %d", currencyID)
}

// settle converts a completed aggregate into on-chain parameters and
// submits, recording the submission so a retry cannot pay out twice.
func (s *Session) settle(ctx context.Context, cur chain.Currency, k withdraw.Key) (*types.Receipt, error) {
	if s.log != nil {
		done, err := s.log.Submitted(k)
		if err != nil {
			return nil, err
		}
		if done {
			return nil, errors.Wrapf(ErrAlreadySubmitted, "nonce %d txid %s", k.Nonce, k.TXID)
		}
	}

	params, err := s.agg.SettlementParams(k, s.signer.Address(), cur.Decimals, cur.SignatureArity())
	if err != nil {
		return nil, err
	}

	receipt, err := s.settler.Withdraw(ctx, cur, params)
	if err != nil {
		return nil, errors.Wrap(err, "settling withdrawal")
	}

	if s.log != nil {
		if err := s.log.Record(k, receipt.TxHash.Hex()); err != nil {
			logging.WithError(err).Error("recording settled withdrawal")
		}
	}

	return receipt, nil
}
