package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tcfw/bbnode/internal/utils/logging"
	"github.com/tcfw/bbnode/pkg/wire"
)

var (
	balanceCmd = &cobra.Command{
		Use:   "balance",
		Short: "Show account balances",
		Run:   runBalance,
	}
)

func init() {
	balanceCmd.Flags().BoolP("watch", "w", false, "keep streaming balance updates")
}

func runBalance(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watch, _ := cmd.Flags().GetBool("watch")

	d, err := newSession(ctx, false)
	if err != nil {
		logging.WithError(err).Error("connecting")
		return
	}
	defer d.Close()

	resp, err := d.session.SubscribeBalance(ctx)
	if err != nil {
		logging.WithError(err).Error("subscribing to balances")
		return
	}

	fmt.Println(string(resp.Data))

	if !watch {
		return
	}

	exit := waitExit(ctx)

	for {
		select {
		case env, ok := <-d.session.Notifications():
			if !ok {
				return
			}
			if env.Type == wire.TypeSubscribeBalance {
				fmt.Println(string(env.Data))
			}
		case <-exit:
			return
		}
	}
}
