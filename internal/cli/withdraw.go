package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tcfw/bbnode/internal/utils/logging"
	"github.com/tcfw/bbnode/pkg/wire"
)

var (
	withdrawCmd = &cobra.Command{
		Use:   "withdraw <amount>",
		Short: "Withdraw off-chain funds back on-chain",
		Args:  cobra.ExactArgs(1),
		Run:   runWithdraw,
	}

	withdraw_resetLimitCmd = &cobra.Command{
		Use:   "reset-limit",
		Short: "Reset the contract's rolling withdrawal limit",
		Run:   runWithdrawResetLimit,
	}
)

func init() {
	withdrawCmd.Flags().Int64P("currency", "c", 0, "currency id to withdraw")
}

func runWithdraw(cmd *cobra.Command, args []string) {
	amount, err := wire.NewDecimal(args[0])
	if err != nil {
		logging.WithError(err).Error("parsing amount")
		return
	}

	currencyID, _ := cmd.Flags().GetInt64("currency")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d, err := newSession(ctx, true)
	if err != nil {
		logging.WithError(err).Error("connecting")
		return
	}
	defer d.Close()

	// bound the validator quorum wait plus the on-chain settlement
	ctx, cancel = context.WithTimeout(ctx, d.cfg.QuorumTimeout()+5*time.Minute)
	defer cancel()

	receipt, err := d.session.Withdraw(ctx, currencyID, amount)
	if err != nil {
		logging.WithError(err).Error("withdrawing")
		return
	}

	fmt.Printf("withdrawal settled: %s\n", receipt.TxHash.Hex())
}

func runWithdrawResetLimit(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	d, err := newSession(ctx, true)
	if err != nil {
		logging.WithError(err).Error("connecting")
		return
	}
	defer d.Close()

	receipt, err := d.settler.ResetWithdrawalLimit(ctx)
	if err != nil {
		logging.WithError(err).Error("resetting withdrawal limit")
		return
	}

	fmt.Printf("limit reset: %s\n", receipt.TxHash.Hex())
}
