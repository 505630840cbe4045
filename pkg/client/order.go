package client

import (
	"context"

	"github.com/tcfw/bbnode/internal/utils/logging"
	"github.com/tcfw/bbnode/pkg/wire"
)

// Order sides and types understood by the matching engine.
const (
	SideBuy  = 1
	SideSell = 2

	OrderTypeLimit = 2
)

type OrderParams struct {
	MarketID string
	OrderID  string
	Amount   *wire.Decimal
	Price    *wire.Decimal
	Side     int
	Type     int
}

// PlaceOrder submits a signed order alteration against a market.
func (s *Session) PlaceOrder(ctx context.Context, o OrderParams) (*wire.Envelope, error) {
	typ := o.Type
	if typ == 0 {
		typ = OrderTypeLimit
	}

	if o.OrderID == "" {
		o.OrderID = s.newID()
	}

	p, err := wire.BuildPayload(map[string]interface{}{
		"CreatedByUser": wire.Ticks(s.now()),
		"MinerFeeStr":   s.minerFee,
		"UnmatchedOrder": map[string]interface{}{
			"Amount":    o.Amount,
			"ID":        o.OrderID,
			"Price":     o.Price,
			"RemAmount": o.Amount,
			"Side":      o.Side,
			"Type":      typ,
		},
		"UserID": s.userID,
		"UserOrder": map[string]interface{}{
			"MarketID": o.MarketID,
		},
	})
	if err != nil {
		return nil, err
	}

	env, err := s.signedEnvelope(wire.TypeOrderAlteration, p)
	if err != nil {
		return nil, err
	}

	logging.WithOp("place-order", logging.Fields{
		"market": o.MarketID,
		"order":  o.OrderID,
	}).Info("placing order")

	return s.ch.Request(ctx, env, nil)
}
