package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tcfw/bbnode/internal/utils/logging"
	"github.com/tcfw/bbnode/pkg/client"
	"github.com/tcfw/bbnode/pkg/wire"
)

var (
	orderCmd = &cobra.Command{
		Use:   "order <market-id>",
		Short: "Place a limit order on a market",
		Args:  cobra.ExactArgs(1),
		Run:   runOrder,
	}
)

func init() {
	orderCmd.Flags().StringP("amount", "a", "", "order amount")
	orderCmd.Flags().StringP("price", "p", "", "order price")
	orderCmd.Flags().String("side", "buy", "order side: buy or sell")
	orderCmd.Flags().String("order-id", "", "client-side order id, defaults to a random uuid")

	orderCmd.MarkFlagRequired("amount")
	orderCmd.MarkFlagRequired("price")
}

func runOrder(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	amountStr, _ := cmd.Flags().GetString("amount")
	priceStr, _ := cmd.Flags().GetString("price")
	sideStr, _ := cmd.Flags().GetString("side")
	orderID, _ := cmd.Flags().GetString("order-id")

	amount, err := wire.NewDecimal(amountStr)
	if err != nil {
		logging.WithError(err).Error("parsing amount")
		return
	}

	price, err := wire.NewDecimal(priceStr)
	if err != nil {
		logging.WithError(err).Error("parsing price")
		return
	}

	side := client.SideBuy
	switch sideStr {
	case "buy":
	case "sell":
		side = client.SideSell
	default:
		logging.Entry().Errorf("unknown side %q", sideStr)
		return
	}

	d, err := newSession(ctx, false)
	if err != nil {
		logging.WithError(err).Error("connecting")
		return
	}
	defer d.Close()

	resp, err := d.session.PlaceOrder(ctx, client.OrderParams{
		MarketID: args[0],
		OrderID:  orderID,
		Amount:   amount,
		Price:    price,
		Side:     side,
	})
	if err != nil {
		logging.WithError(err).Error("placing order")
		return
	}

	fmt.Printf("order state: %s\n", resp.State)
}
