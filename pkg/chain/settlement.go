package chain

import (
	"context"
	"crypto/ecdsa"
	"math/big"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	ethCrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"

	"github.com/tcfw/bbnode/internal/utils/logging"
	"github.com/tcfw/bbnode/pkg/withdraw"
)

const defaultGasLimit = 300_000

// Settler turns finalized deposit and withdrawal parameters into
// submitted, confirmed on-chain transactions against the exchange
// contract.
type Settler struct {
	eth      *ethclient.Client
	key      *ecdsa.PrivateKey
	from     common.Address
	contract common.Address
	chainID  *big.Int
	gasLimit uint64
}

func NewSettler(ctx context.Context, rpcURL string, contract common.Address, key *ecdsa.PrivateKey) (*Settler, error) {
	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, errors.Wrap(err, "dialing rpc endpoint")
	}

	chainID, err := eth.ChainID(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetching chain id")
	}

	return &Settler{
		eth:      eth,
		key:      key,
		from:     ethCrypto.PubkeyToAddress(key.PublicKey),
		contract: contract,
		chainID:  chainID,
		gasLimit: defaultGasLimit,
	}, nil
}

func (s *Settler) From() common.Address {
	return s.from
}

// DepositNative sends amountWei into the contract's payable deposit.
func (s *Settler) DepositNative(ctx context.Context, userID int64, amountWei *big.Int) (*types.Receipt, error) {
	data, err := exchangeABI.Pack("deposit", big.NewInt(userID))
	if err != nil {
		return nil, errors.Wrap(err, "packing deposit")
	}

	return s.submit(ctx, s.contract, amountWei, data)
}

// DepositERC approves the exchange contract for amount if the current
// allowance is short, then deposits the token.
func (s *Settler) DepositERC(ctx context.Context, cur Currency, userID int64, amount *big.Int) (*types.Receipt, error) {
	if cur.Kind != KindERC20 {
		return nil, errors.Errorf("currency %s is not an ERC-20 asset", cur.Symbol)
	}

	allowance, err := s.allowance(ctx, cur.Token)
	if err != nil {
		return nil, err
	}

	if allowance.Cmp(amount) < 0 {
		data, err := erc20ABI.Pack("approve", s.contract, amount)
		if err != nil {
			return nil, errors.Wrap(err, "packing approve")
		}

		if _, err := s.submit(ctx, cur.Token, nil, data); err != nil {
			return nil, errors.Wrap(err, "approving token spend")
		}
	}

	data, err := exchangeABI.Pack("depositERC", amount, cur.Token, uint8(cur.ID), big.NewInt(userID))
	if err != nil {
		return nil, errors.Wrap(err, "packing depositERC")
	}

	return s.submit(ctx, s.contract, nil, data)
}

// Withdraw releases funds for a completed withdrawal aggregate,
// selecting the contract call variant from the currency kind.
func (s *Settler) Withdraw(ctx context.Context, cur Currency, p *withdraw.Params) (*types.Receipt, error) {
	data, err := packWithdraw(cur, p)
	if err != nil {
		return nil, err
	}

	logging.WithOp("withdraw", logging.Fields{
		"cur":   cur.Symbol,
		"nonce": p.Nonce,
		"txid":  p.TXID,
	}).Info("submitting settlement")

	return s.submit(ctx, s.contract, nil, data)
}

func (s *Settler) ResetWithdrawalLimit(ctx context.Context) (*types.Receipt, error) {
	data, err := exchangeABI.Pack("resetWithdrawalLimit")
	if err != nil {
		return nil, errors.Wrap(err, "packing resetWithdrawalLimit")
	}

	return s.submit(ctx, s.contract, nil, data)
}

// packWithdraw builds calldata for the withdraw variant matching the
// currency kind. Signature count must already match the contract's
// fixed arity.
func packWithdraw(cur Currency, p *withdraw.Params) ([]byte, error) {
	if len(p.Signatures) != cur.SignatureArity() {
		return nil, errors.Errorf("expected %d signatures for %s, got %d",
			cur.SignatureArity(), cur.Symbol, len(p.Signatures))
	}

	nonce := new(big.Int).SetUint64(p.Nonce)
	txid := common.HexToHash(p.TXID)

	switch cur.Kind {
	case KindNative:
		return exchangeABI.Pack("withdraw",
			p.Amount, nonce, p.Receiver, uint8(cur.ID), txid, p.Signatures[0])
	case KindERC20:
		return exchangeABI.Pack("withdrawERC",
			p.Amount, nonce, cur.Token, uint8(cur.ID), p.Receiver, txid, p.Signatures[0])
	case KindMultiValidator:
		return multiValidatorABI.Pack("withdraw",
			p.Amount, nonce, p.Receiver, txid,
			p.Signatures[0], p.Signatures[1], p.Signatures[2])
	default:
		return nil, errors.Errorf("unknown currency kind %d", cur.Kind)
	}
}

func (s *Settler) allowance(ctx context.Context, token common.Address) (*big.Int, error) {
	data, err := erc20ABI.Pack("allowance", s.from, s.contract)
	if err != nil {
		return nil, errors.Wrap(err, "packing allowance")
	}

	out, err := s.eth.CallContract(ctx, callMsg(s.from, token, data), nil)
	if err != nil {
		return nil, errors.Wrap(err, "reading allowance")
	}

	vals, err := erc20ABI.Unpack("allowance", out)
	if err != nil {
		return nil, errors.Wrap(err, "unpacking allowance")
	}

	return vals[0].(*big.Int), nil
}

func callMsg(from, to common.Address, data []byte) ethereum.CallMsg {
	return ethereum.CallMsg{From: from, To: &to, Data: data}
}

// submit signs and sends a transaction, waiting for it to mine. The
// account nonce is fetched fresh per submission so concurrent
// transactions never race for the same slot.
func (s *Settler) submit(ctx context.Context, to common.Address, value *big.Int, data []byte) (*types.Receipt, error) {
	nonce, err := s.eth.PendingNonceAt(ctx, s.from)
	if err != nil {
		return nil, errors.Wrap(err, "fetching account nonce")
	}

	gasPrice, err := s.eth.SuggestGasPrice(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetching gas price")
	}

	// 20% headroom over the suggested price
	gasPrice.Div(gasPrice.Mul(gasPrice, big.NewInt(12)), big.NewInt(10))

	if value == nil {
		value = new(big.Int)
	}

	tx := types.NewTransaction(nonce, to, value, s.gasLimit, gasPrice, data)

	signed, err := types.SignTx(tx, types.NewEIP155Signer(s.chainID), s.key)
	if err != nil {
		return nil, errors.Wrap(err, "signing transaction")
	}

	if err := s.eth.SendTransaction(ctx, signed); err != nil {
		return nil, errors.Wrap(err, "sending transaction")
	}

	logging.WithField("tx", signed.Hash().Hex()).Info("transaction submitted")

	receipt, err := bind.WaitMined(ctx, s.eth, signed)
	if err != nil {
		return nil, errors.Wrap(err, "awaiting receipt")
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, errors.Errorf("transaction %s reverted", signed.Hash().Hex())
	}

	return receipt, nil
}
