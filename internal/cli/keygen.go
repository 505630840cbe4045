package cli

import (
	"encoding/hex"
	"fmt"
	"time"

	ethCrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"

	"github.com/tcfw/bbnode/internal/utils/logging"
	"github.com/tcfw/bbnode/pkg/signing"
)

var (
	keygenCmd = &cobra.Command{
		Use:   "keygen",
		Short: "Generate an account key and the proof-of-key signature for registration",
		Run:   runKeygen,
	}
)

func init() {
	keygenCmd.Flags().String("key", "", "sign the proof with an existing hex private key instead of generating one")
	keygenCmd.Flags().Int64("nonce", 0, "registration nonce, defaults to the current unix time")
}

func runKeygen(cmd *cobra.Command, args []string) {
	hexKey, _ := cmd.Flags().GetString("key")
	nonce, _ := cmd.Flags().GetInt64("nonce")

	now := time.Now()
	if nonce == 0 {
		nonce = now.Unix()
	}

	var (
		signer *signing.Signer
		err    error
	)

	if hexKey != "" {
		signer, err = signing.NewSigner(hexKey)
	} else {
		key, genErr := ethCrypto.GenerateKey()
		if genErr != nil {
			logging.WithError(genErr).Error("generating key")
			return
		}
		fmt.Printf("private key: %s\n", hex.EncodeToString(ethCrypto.FromECDSA(key)))
		signer, err = signing.NewSignerFromKey(key)
	}
	if err != nil {
		logging.WithError(err).Error("loading key")
		return
	}

	msg := signing.LoginMessage(nonce, now)

	sig, err := signer.Sign([]byte(msg))
	if err != nil {
		logging.WithError(err).Error("signing proof")
		return
	}

	fmt.Printf("address:     %s\n", signer.Address().Hex())
	fmt.Printf("nonce:       %d\n", nonce)
	fmt.Printf("timestamp:   %s\n", now.UTC().Format("2006-01-02T15:04:05.999999"))
	fmt.Printf("signature:   %s\n", signing.EncodeForWire(sig))
}
