package signing

import (
	"fmt"
	"time"
)

// LoginMessage builds the human-readable proof-of-key message users
// sign when registering their public key with the node.
func LoginMessage(nonce int64, ts time.Time) string {
	return fmt.Sprintf(
		"Please, make sure that you are signing this message on Bitcoin Betting domain:\nNonce: %d\nTimestamp: %s",
		nonce, ts.UTC().Format("2006-01-02T15:04:05.999999"),
	)
}
