package client

import (
	"context"

	"github.com/tcfw/bbnode/internal/utils/logging"
	"github.com/tcfw/bbnode/pkg/wire"
)

// TTypeWithdrawal marks a Transfer as an off-chain → on-chain
// withdrawal request.
const TTypeWithdrawal = 10

type TransferParams struct {
	To        int64
	Currency  int64
	Amount    *wire.Decimal
	Reference string
	TType     int
}

// Transfer moves funds to another account on the node. The node
// rejects signed payloads carrying zeroed or empty fields, so optional
// fields are only set when present.
func (s *Session) Transfer(ctx context.Context, tp TransferParams) (*wire.Envelope, error) {
	id := s.newID()

	fields := map[string]interface{}{
		"Amount":        tp.Amount,
		"CreatedByUser": wire.Ticks(s.now()),
		"From":          s.userID,
		"ID":            id,
		"MinerFeeStr":   s.minerFee,
		"NodeID":        s.nodeID,
		"UserID":        s.userID,
	}

	if tp.To != 0 {
		fields["To"] = tp.To
	}
	if tp.Currency != 0 {
		fields["Cur"] = tp.Currency
	}
	if tp.Reference != "" {
		fields["Reference"] = tp.Reference
	}
	if tp.TType != 0 {
		fields["TType"] = tp.TType
	}

	p, err := wire.BuildPayload(fields)
	if err != nil {
		return nil, err
	}

	env, err := s.signedEnvelope(wire.TypeTransfer, p)
	if err != nil {
		return nil, err
	}
	env.UserID = s.userID

	logging.WithOp("transfer", logging.Fields{
		"id": id,
		"to": tp.To,
	}).Info("requesting transfer")

	return s.ch.Request(ctx, env, nil)
}
