package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tcfw/bbnode/internal/utils/logging"
	"github.com/tcfw/bbnode/pkg/client"
)

var (
	marketsCmd = &cobra.Command{
		Use:   "markets",
		Short: "Stream market and orderbook data",
		Run:   runMarkets,
	}
)

func init() {
	marketsCmd.Flags().Int("category", 0, "market category filter")
	marketsCmd.Flags().Int("status", 0, "market status filter")
	marketsCmd.Flags().Bool("active", true, "only active markets")
	marketsCmd.Flags().Int("page-size", 100, "markets per page")
}

func runMarkets(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	category, _ := cmd.Flags().GetInt("category")
	status, _ := cmd.Flags().GetInt("status")
	active, _ := cmd.Flags().GetBool("active")
	pageSize, _ := cmd.Flags().GetInt("page-size")

	d, err := newSession(ctx, false)
	if err != nil {
		logging.WithError(err).Error("connecting")
		return
	}
	defer d.Close()

	if err := d.session.SubscribeMarkets(client.MarketFilter{
		Category:   category,
		OnlyActive: active,
		Status:     status,
		PageSize:   pageSize,
	}); err != nil {
		logging.WithError(err).Error("subscribing to markets")
		return
	}

	exit := waitExit(ctx)

	for {
		select {
		case env, ok := <-d.session.Notifications():
			if !ok {
				return
			}
			fmt.Printf("%s %s\n", env.Type, string(env.Data))
		case <-exit:
			return
		}
	}
}
