package client

import (
	"context"

	"github.com/tcfw/bbnode/pkg/wire"
)

// MarketFilter narrows a market subscription.
type MarketFilter struct {
	Category   int
	OnlyActive bool
	Status     int
	PageSize   int
}

// SubscribeBalance requests the balance stream, returning the first
// snapshot. Subsequent updates arrive on Notifications.
func (s *Session) SubscribeBalance(ctx context.Context) (*wire.Envelope, error) {
	env := &wire.Envelope{
		Type:   wire.TypeSubscribeBalance,
		UserID: s.userID,
		NodeID: s.nodeID,
	}

	return s.ch.Request(ctx, env, nil)
}

// SubscribeMarkets opens a market-data push subscription. There is no
// single correlated response; all frames arrive on Notifications.
func (s *Session) SubscribeMarkets(f MarketFilter) error {
	p, err := wire.BuildPayload(map[string]interface{}{
		"MarketFilter": map[string]interface{}{
			"Cat":        f.Category,
			"OnlyActive": f.OnlyActive,
			"Status":     f.Status,
			"PageSize":   f.PageSize,
		},
		"SubscribeOrderbooks": true,
		"UserID":              -1,
		"NodeID":              s.nodeID,
	})
	if err != nil {
		return err
	}

	env, err := wire.NewEnvelope(wire.TypeSubscribeMarketsByFilter, p)
	if err != nil {
		return err
	}

	return s.ch.Send(env)
}
