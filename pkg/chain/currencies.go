package chain

import "github.com/ethereum/go-ethereum/common"

// CurrencyKind selects the settlement strategy for a currency. The
// variant is chosen once from configuration instead of branching on
// currency IDs at every call site.
type CurrencyKind uint8

const (
	// KindNative settles through the payable single-signature
	// withdraw/deposit calls.
	KindNative CurrencyKind = iota + 1

	// KindERC20 settles through depositERC/withdrawERC against the
	// token contract.
	KindERC20

	// KindMultiValidator settles through the fixed three-signature
	// withdraw variant and requires a validator quorum.
	KindMultiValidator
)

// Currency describes one asset bridged by the node.
type Currency struct {
	ID       int64
	Symbol   string
	Kind     CurrencyKind
	Decimals int
	Token    common.Address

	// Quorum is the number of distinct validator attestations needed
	// before a withdrawal may settle.
	Quorum int
}

// SignatureArity is the number of signature arguments the withdraw
// call takes for this currency's contract variant.
func (c Currency) SignatureArity() int {
	if c.Kind == KindMultiValidator {
		return 3
	}

	return 1
}

// DefaultCurrencies mirrors the assets the node ships with. Deployments
// override this table via configuration.
func DefaultCurrencies() []Currency {
	return []Currency{
		{ID: 0, Symbol: "mBTC", Kind: KindNative, Decimals: 18, Quorum: 1},
		{ID: 1, Symbol: "mETH", Kind: KindNative, Decimals: 18, Quorum: 1},
		{ID: 2, Symbol: "WBTC", Kind: KindERC20, Decimals: 8,
			Token: common.HexToAddress("0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599"), Quorum: 1},
		{ID: 5, Symbol: "RBTC", Kind: KindMultiValidator, Decimals: 18, Quorum: 2},
	}
}
