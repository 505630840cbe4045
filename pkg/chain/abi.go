package chain

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Contract surfaces consumed by the settlement adapter. Only the
// methods the adapter calls are declared.

const exchangeABIJSON = `[
	{"name":"deposit","type":"function","stateMutability":"payable","inputs":[
		{"name":"userId","type":"uint256"}],"outputs":[]},
	{"name":"depositERC","type":"function","stateMutability":"nonpayable","inputs":[
		{"name":"amount","type":"uint256"},
		{"name":"tokenAddress","type":"address"},
		{"name":"currency","type":"uint8"},
		{"name":"userid","type":"uint256"}],"outputs":[]},
	{"name":"withdraw","type":"function","stateMutability":"payable","inputs":[
		{"name":"amount","type":"uint256"},
		{"name":"nonce","type":"uint256"},
		{"name":"receiver","type":"address"},
		{"name":"currency","type":"uint8"},
		{"name":"txid","type":"bytes32"},
		{"name":"signature","type":"bytes"}],"outputs":[]},
	{"name":"withdrawERC","type":"function","stateMutability":"nonpayable","inputs":[
		{"name":"amount","type":"uint256"},
		{"name":"nonce","type":"uint256"},
		{"name":"tokenAddress","type":"address"},
		{"name":"currency","type":"uint8"},
		{"name":"receiver","type":"address"},
		{"name":"txid","type":"bytes32"},
		{"name":"signature","type":"bytes"}],"outputs":[]},
	{"name":"resetWithdrawalLimit","type":"function","stateMutability":"nonpayable","inputs":[],"outputs":[]}
]`

const multiValidatorABIJSON = `[
	{"name":"deposit","type":"function","stateMutability":"payable","inputs":[
		{"name":"userId","type":"uint256"},
		{"name":"input","type":"string"}],"outputs":[]},
	{"name":"withdraw","type":"function","stateMutability":"payable","inputs":[
		{"name":"amount","type":"uint256"},
		{"name":"nonce","type":"uint256"},
		{"name":"receiver","type":"address"},
		{"name":"txid","type":"bytes32"},
		{"name":"signature","type":"bytes"},
		{"name":"signature2","type":"bytes"},
		{"name":"signature3","type":"bytes"}],"outputs":[]},
	{"name":"resetWithdrawalLimit","type":"function","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"name":"pause","type":"function","stateMutability":"nonpayable","inputs":[
		{"name":"amountSeconds","type":"uint256"}],"outputs":[]},
	{"name":"resume","type":"function","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"name":"changePubKey","type":"function","stateMutability":"nonpayable","inputs":[
		{"name":"pubKey","type":"bytes"}],"outputs":[]},
	{"name":"getBalance","type":"function","stateMutability":"view","inputs":[],"outputs":[
		{"name":"","type":"uint256"}]},
	{"name":"getPubKey","type":"function","stateMutability":"view","inputs":[],"outputs":[
		{"name":"","type":"address"}]}
]`

const erc20ABIJSON = `[
	{"name":"balanceOf","type":"function","stateMutability":"view","inputs":[
		{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"name":"approve","type":"function","stateMutability":"nonpayable","inputs":[
		{"name":"spender","type":"address"},
		{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"name":"allowance","type":"function","stateMutability":"view","inputs":[
		{"name":"owner","type":"address"},
		{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}
]`

var (
	exchangeABI       abi.ABI
	multiValidatorABI abi.ABI
	erc20ABI          abi.ABI
)

func init() {
	var err error

	if exchangeABI, err = abi.JSON(strings.NewReader(exchangeABIJSON)); err != nil {
		panic(err)
	}
	if multiValidatorABI, err = abi.JSON(strings.NewReader(multiValidatorABIJSON)); err != nil {
		panic(err)
	}
	if erc20ABI, err = abi.JSON(strings.NewReader(erc20ABIJSON)); err != nil {
		panic(err)
	}
}
