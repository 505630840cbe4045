package config

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/tcfw/bbnode/pkg/chain"
)

// currencyEntry is the yaml shape of one currency override.
type currencyEntry struct {
	ID       int64  `mapstructure:"id"`
	Symbol   string `mapstructure:"symbol"`
	Kind     string `mapstructure:"kind"`
	Decimals int    `mapstructure:"decimals"`
	Token    string `mapstructure:"token"`
	Quorum   int    `mapstructure:"quorum"`
}

var kinds = map[string]chain.CurrencyKind{
	"native":          chain.KindNative,
	"erc20":           chain.KindERC20,
	"multi-validator": chain.KindMultiValidator,
}

// buildCurrencyTable starts from the built-in asset table and applies
// any `currencies` entries from the config file on top.
func buildCurrencyTable() (map[int64]chain.Currency, error) {
	table := map[int64]chain.Currency{}
	for _, c := range chain.DefaultCurrencies() {
		table[c.ID] = c
	}

	var overrides []currencyEntry
	if err := viper.UnmarshalKey("currencies", &overrides); err != nil {
		return nil, errors.Wrap(err, "decoding currencies")
	}

	for _, o := range overrides {
		kind, ok := kinds[o.Kind]
		if !ok {
			return nil, errors.Errorf("currency %d: unknown kind %q", o.ID, o.Kind)
		}

		if o.Quorum < 1 {
			return nil, errors.Errorf("currency %d: quorum must be at least 1", o.ID)
		}

		table[o.ID] = chain.Currency{
			ID:       o.ID,
			Symbol:   o.Symbol,
			Kind:     kind,
			Decimals: o.Decimals,
			Token:    common.HexToAddress(o.Token),
			Quorum:   o.Quorum,
		}
	}

	return table, nil
}
