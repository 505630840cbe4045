package client

import (
	"context"
	"strings"

	"github.com/cockroachdb/apd/v3"
	"github.com/pkg/errors"

	"github.com/tcfw/bbnode/internal/utils/logging"
	"github.com/tcfw/bbnode/pkg/wire"
	"github.com/tcfw/bbnode/pkg/withdraw"
)

// ClaimDeposit notifies the node of a mined on-chain deposit so the
// off-chain balance can be issued. Amount is in the chain display unit
// (e.g. ETH); the node expects it pre-scaled by the off-chain factor.
func (s *Session) ClaimDeposit(ctx context.Context, currencyID int64, amount *wire.Decimal, txHash string) (*wire.Envelope, error) {
	scaled := &apd.Decimal{}
	ctx2 := apd.BaseContext.WithPrecision(64)
	if _, err := ctx2.Mul(scaled, &amount.Decimal, apd.New(withdraw.OffchainScale, 0)); err != nil {
		return nil, errors.Wrap(err, "scaling deposit amount")
	}

	p, err := wire.BuildPayload(map[string]interface{}{
		"Currency": map[string]interface{}{"ID": currencyID},
		"Deposit": map[string]interface{}{
			"Amount": scaled,
			"TXID":   strings.ToLower(txHash),
			"UserID": s.userID,
		},
		"MinerFeeStr": s.minerFee,
		"NodeID":      s.nodeID,
		"UserID":      s.userID,
	})
	if err != nil {
		return nil, err
	}

	env, err := s.signedEnvelope(wire.TypeCurrencyIssuance, p)
	if err != nil {
		return nil, err
	}
	env.Nonce = wire.Ticks(s.now()) / 10

	logging.WithOp("claim-deposit", logging.Fields{
		"cur":  currencyID,
		"txid": txHash,
	}).Info("claiming deposit")

	return s.ch.Request(ctx, env, nil)
}
