package config

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/tcfw/bbnode/pkg/chain"
)

var (
	defaults = map[string]interface{}{
		"verbose":          false,
		"contract_address": "0x5978C6153A06B141cD0935569F600a83Eb44AeAa",
		"miner_fee":        "0.00001",
		"quorum_timeout":   2 * time.Minute,
		"poll_interval":    2 * time.Second,
		"journal_path":     "",
	}

	required = []string{
		"private_key",
		"node_url",
		"rpc_endpoint",
		"user_id",
		"node_id",
	}
)

func init() {
	for k, v := range defaults {
		viper.SetDefault(k, v)
	}
}

func GetConfig() (*Config, error) {
	viper.SetConfigType("yaml")
	viper.SetConfigName("bbnode")
	viper.AddConfigPath("/etc/bbnode/")
	viper.AddConfigPath("$HOME/.bbnode")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("BBNODE")
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// env vars may still satisfy the required set
			logrus.New().Warnf("no config found")
		} else {
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	for _, k := range required {
		if !viper.IsSet(k) || viper.GetString(k) == "" {
			return nil, errors.Errorf("required setting %q not found", k)
		}
	}

	c := &Config{
		privateKey:    viper.GetString("private_key"),
		nodeURL:       viper.GetString("node_url"),
		rpcEndpoint:   viper.GetString("rpc_endpoint"),
		userID:        viper.GetInt64("user_id"),
		nodeID:        viper.GetInt64("node_id"),
		contract:      common.HexToAddress(viper.GetString("contract_address")),
		minerFee:      viper.GetString("miner_fee"),
		quorumTimeout: viper.GetDuration("quorum_timeout"),
		pollInterval:  viper.GetDuration("poll_interval"),
		journalPath:   viper.GetString("journal_path"),
	}

	c.currencies, err = buildCurrencyTable()
	if err != nil {
		return nil, errors.Wrap(err, "currency table")
	}

	if viper.GetBool("verbose") {
		logrus.SetLevel(logrus.DebugLevel)
		logrus.WithField("level", "debug").Debug("setting log level")
	}

	return c, nil
}

type Config struct {
	privateKey    string
	nodeURL       string
	rpcEndpoint   string
	userID        int64
	nodeID        int64
	contract      common.Address
	minerFee      string
	quorumTimeout time.Duration
	pollInterval  time.Duration
	journalPath   string
	currencies    map[int64]chain.Currency
}

func (c *Config) PrivateKey() string           { return c.privateKey }
func (c *Config) NodeURL() string              { return c.nodeURL }
func (c *Config) RPCEndpoint() string          { return c.rpcEndpoint }
func (c *Config) UserID() int64                { return c.userID }
func (c *Config) NodeID() int64                { return c.nodeID }
func (c *Config) Contract() common.Address     { return c.contract }
func (c *Config) MinerFee() string             { return c.minerFee }
func (c *Config) QuorumTimeout() time.Duration { return c.quorumTimeout }
func (c *Config) PollInterval() time.Duration  { return c.pollInterval }
func (c *Config) JournalPath() string          { return c.journalPath }

func (c *Config) Currencies() map[int64]chain.Currency {
	return c.currencies
}
