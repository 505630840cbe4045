package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/tcfw/bbnode/internal/utils/logging"
	"github.com/tcfw/bbnode/pkg/client"
	"github.com/tcfw/bbnode/pkg/wire"
)

var (
	transferCmd = &cobra.Command{
		Use:   "transfer <to-user-id> <amount>",
		Short: "Transfer funds to another account on the node",
		Args:  cobra.ExactArgs(2),
		Run:   runTransfer,
	}
)

func init() {
	transferCmd.Flags().Int64P("currency", "c", 0, "currency id to transfer")
	transferCmd.Flags().String("reference", "", "free-form reference attached to the transfer")
}

func runTransfer(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	to, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		logging.WithError(err).Error("parsing recipient")
		return
	}

	amount, err := wire.NewDecimal(args[1])
	if err != nil {
		logging.WithError(err).Error("parsing amount")
		return
	}

	currencyID, _ := cmd.Flags().GetInt64("currency")
	reference, _ := cmd.Flags().GetString("reference")

	d, err := newSession(ctx, false)
	if err != nil {
		logging.WithError(err).Error("connecting")
		return
	}
	defer d.Close()

	resp, err := d.session.Transfer(ctx, client.TransferParams{
		To:        to,
		Currency:  currencyID,
		Amount:    amount,
		Reference: reference,
	})
	if err != nil {
		logging.WithError(err).Error("transferring")
		return
	}

	fmt.Printf("transfer state: %s\n", resp.State)
}
