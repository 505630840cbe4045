package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tcfw/bbnode/internal/utils/logging"
	"github.com/tcfw/bbnode/pkg/chain"
	"github.com/tcfw/bbnode/pkg/wire"
	"github.com/tcfw/bbnode/pkg/withdraw"
)

var (
	depositCmd = &cobra.Command{
		Use:   "deposit <amount>",
		Short: "Deposit funds into the exchange contract and claim the off-chain balance",
		Args:  cobra.ExactArgs(1),
		Run:   runDeposit,
	}
)

func init() {
	depositCmd.Flags().Int64P("currency", "c", 0, "currency id to deposit")
	depositCmd.Flags().String("txid", "", "claim an already-mined deposit transaction instead of sending a new one")
}

func runDeposit(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	amount, err := wire.NewDecimal(args[0])
	if err != nil {
		logging.WithError(err).Error("parsing amount")
		return
	}

	currencyID, _ := cmd.Flags().GetInt64("currency")
	txid, _ := cmd.Flags().GetString("txid")

	d, err := newSession(ctx, txid == "")
	if err != nil {
		logging.WithError(err).Error("connecting")
		return
	}
	defer d.Close()

	if txid == "" {
		cur, ok := d.cfg.Currencies()[currencyID]
		if !ok {
			logging.Entry().Errorf("unknown currency %d", currencyID)
			return
		}

		units, err := withdraw.DisplayToUnits(&amount.Decimal, cur.Decimals)
		if err != nil {
			logging.WithError(err).Error("converting amount")
			return
		}

		switch cur.Kind {
		case chain.KindNative:
			r, err := d.settler.DepositNative(ctx, d.cfg.UserID(), units)
			if err != nil {
				logging.WithError(err).Error("depositing")
				return
			}
			txid = r.TxHash.Hex()
		case chain.KindERC20:
			r, err := d.settler.DepositERC(ctx, cur, d.cfg.UserID(), units)
			if err != nil {
				logging.WithError(err).Error("depositing token")
				return
			}
			txid = r.TxHash.Hex()
		default:
			logging.Entry().Errorf("deposit not supported for currency kind of %s", cur.Symbol)
			return
		}

		fmt.Printf("deposit mined: %s\n", txid)
	}

	resp, err := d.session.ClaimDeposit(ctx, currencyID, amount, txid)
	if err != nil {
		logging.WithError(err).Error("claiming deposit")
		return
	}

	fmt.Printf("claim state: %s\n", resp.State)
}
