package cli

import (
	"context"

	"github.com/pkg/errors"

	"github.com/tcfw/bbnode/internal/config"
	"github.com/tcfw/bbnode/internal/journal"
	"github.com/tcfw/bbnode/pkg/chain"
	"github.com/tcfw/bbnode/pkg/channel"
	"github.com/tcfw/bbnode/pkg/client"
	"github.com/tcfw/bbnode/pkg/signing"
)

// deps bundles the connected session with the resources the command
// needs to release on exit.
type deps struct {
	cfg     *config.Config
	session *client.Session
	settler *chain.Settler
	journal *journal.Journal
}

func (d *deps) Close() {
	if d.session != nil {
		d.session.Close()
	}
	if d.journal != nil {
		d.journal.Close()
	}
}

// newSession connects to the node from config. withChain additionally
// dials the RPC endpoint and opens the submission journal for commands
// that settle on-chain.
func newSession(ctx context.Context, withChain bool) (*deps, error) {
	cfg, err := config.GetConfig()
	if err != nil {
		return nil, err
	}

	signer, err := signing.NewSigner(cfg.PrivateKey())
	if err != nil {
		return nil, err
	}

	ch, err := channel.DialRetry(ctx, cfg.NodeURL())
	if err != nil {
		return nil, errors.Wrap(err, "connecting to node")
	}

	opts := []client.Option{
		client.WithIdentity(cfg.UserID(), cfg.NodeID()),
		client.WithMinerFee(cfg.MinerFee()),
		client.WithCurrencies(cfg.Currencies()),
		client.WithPollInterval(cfg.PollInterval()),
	}

	d := &deps{cfg: cfg}

	if withChain {
		d.settler, err = chain.NewSettler(ctx, cfg.RPCEndpoint(), cfg.Contract(), signer.Key())
		if err != nil {
			ch.Close()
			return nil, err
		}
		opts = append(opts, client.WithSettler(d.settler))

		if cfg.JournalPath() != "" {
			d.journal, err = journal.Open(cfg.JournalPath())
			if err != nil {
				ch.Close()
				return nil, err
			}
			opts = append(opts, client.WithSubmissionLog(d.journal))
		}
	}

	d.session, err = client.NewSession(signer, ch, opts...)
	if err != nil {
		ch.Close()
		d.Close()
		return nil, err
	}

	return d, nil
}
