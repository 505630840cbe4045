package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tcfw/bbnode/internal/utils/logging"
)

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Configuration commands",
	}

	config_initCmd = &cobra.Command{
		Use:   "init",
		Short: "Write a starter bbnode.yaml in the current directory",
		Run:   runConfigInit,
	}
)

func runConfigInit(cmd *cobra.Command, args []string) {
	const path = "bbnode.yaml"

	if _, err := os.Stat(path); err == nil {
		logging.Entry().Errorf("%s already exists", path)
		return
	}

	scaffold := map[string]interface{}{
		"private_key":      "<hex account private key>",
		"node_url":         "wss://node.example.com:82/sapi",
		"rpc_endpoint":     "https://mainnet.infura.io/v3/<project>",
		"user_id":          0,
		"node_id":          1,
		"contract_address": "0x5978C6153A06B141cD0935569F600a83Eb44AeAa",
		"miner_fee":        "0.00001",
		"quorum_timeout":   "2m",
		"poll_interval":    "2s",
		"journal_path":     "",
	}

	b, err := yaml.Marshal(scaffold)
	if err != nil {
		logging.WithError(err).Error("encoding config")
		return
	}

	if err := os.WriteFile(path, b, 0o600); err != nil {
		logging.WithError(err).Error("writing config")
		return
	}

	fmt.Printf("wrote %s\n", path)
}
