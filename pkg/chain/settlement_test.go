package chain

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcfw/bbnode/pkg/withdraw"
)

func testParams(sigs int) *withdraw.Params {
	p := &withdraw.Params{
		Amount:   big.NewInt(20000000000000000),
		Nonce:    42,
		Receiver: common.HexToAddress("0x5978C6153A06B141cD0935569F600a83Eb44AeAa"),
		TXID:     "0xabc123",
	}

	for i := 0; i < sigs; i++ {
		p.Signatures = append(p.Signatures, []byte{byte(i + 1)})
	}

	return p
}

func TestPackWithdrawNative(t *testing.T) {
	cur := Currency{ID: 1, Symbol: "mETH", Kind: KindNative, Decimals: 18}

	data, err := packWithdraw(cur, testParams(1))
	require.NoError(t, err)

	assert.Equal(t, exchangeABI.Methods["withdraw"].ID, data[:4])

	args, err := exchangeABI.Methods["withdraw"].Inputs.Unpack(data[4:])
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(20000000000000000), args[0])
	assert.Equal(t, big.NewInt(42), args[1])
	assert.Equal(t, uint8(1), args[3])
	assert.Equal(t, []byte{0x01}, args[5])
}

func TestPackWithdrawERC(t *testing.T) {
	cur := Currency{ID: 2, Symbol: "WBTC", Kind: KindERC20, Decimals: 8,
		Token: common.HexToAddress("0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599")}

	data, err := packWithdraw(cur, testParams(1))
	require.NoError(t, err)

	assert.Equal(t, exchangeABI.Methods["withdrawERC"].ID, data[:4])
}

func TestPackWithdrawMultiValidator(t *testing.T) {
	cur := Currency{ID: 5, Symbol: "RBTC", Kind: KindMultiValidator, Decimals: 18, Quorum: 2}

	p := testParams(2)
	p.Signatures = append(p.Signatures, []byte{}) // absent third validator

	data, err := packWithdraw(cur, p)
	require.NoError(t, err)

	assert.Equal(t, multiValidatorABI.Methods["withdraw"].ID, data[:4])

	args, err := multiValidatorABI.Methods["withdraw"].Inputs.Unpack(data[4:])
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, args[4])
	assert.Equal(t, []byte{0x02}, args[5])
	assert.Empty(t, args[6])
}

func TestPackWithdrawArityMismatch(t *testing.T) {
	cur := Currency{ID: 5, Symbol: "RBTC", Kind: KindMultiValidator}

	_, err := packWithdraw(cur, testParams(1))
	assert.Error(t, err)
}

func TestSignatureArity(t *testing.T) {
	assert.Equal(t, 1, Currency{Kind: KindNative}.SignatureArity())
	assert.Equal(t, 1, Currency{Kind: KindERC20}.SignatureArity())
	assert.Equal(t, 3, Currency{Kind: KindMultiValidator}.SignatureArity())
}
