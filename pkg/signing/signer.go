package signing

import (
	"crypto/ecdsa"
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	ethCrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/tcfw/bbnode/pkg/wire"
)

// Signer authenticates canonical payloads with the account's secp256k1
// key using the Ethereum personal-sign convention. The node recovers
// the signer address from (payload, signature) and checks it against
// the account's registered address.
type Signer struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

func NewSigner(hexKey string) (*Signer, error) {
	k := strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")

	key, err := ethCrypto.HexToECDSA(k)
	if err != nil {
		return nil, errors.Wrap(ErrKey, err.Error())
	}

	return &Signer{
		key:     key,
		address: ethCrypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

func NewSignerFromKey(key *ecdsa.PrivateKey) (*Signer, error) {
	if key == nil {
		return nil, errors.Wrap(ErrKey, "nil private key")
	}

	return &Signer{
		key:     key,
		address: ethCrypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// Address returns the on-chain address the node expects signatures to
// recover to.
func (s *Signer) Address() common.Address {
	return s.address
}

// Key exposes the underlying private key for callers that also sign
// on-chain transactions with the same account.
func (s *Signer) Key() *ecdsa.PrivateKey {
	return s.key
}

// Sign produces a 65-byte [R||S||V] signature over the personal-sign
// hash of msg, with V normalized to {27,28}. go-ethereum signs with a
// deterministic nonce, so identical payloads sign identically.
func (s *Signer) Sign(msg []byte) ([]byte, error) {
	sig, err := ethCrypto.Sign(accounts.TextHash(msg), s.key)
	if err != nil {
		return nil, errors.Wrap(ErrSignature, err.Error())
	}

	if sig[64] < 27 {
		sig[64] += 27
	}

	return sig, nil
}

// SignPayload signs a canonical payload and returns the signature
// already re-encoded for the SignatureUser wire field.
func (s *Signer) SignPayload(p *wire.Payload) (string, error) {
	b, err := p.Bytes()
	if err != nil {
		return "", errors.Wrap(err, "serializing payload")
	}

	sig, err := s.Sign(b)
	if err != nil {
		return "", err
	}

	return EncodeForWire(sig), nil
}

// EncodeForWire re-encodes raw signature bytes into the base64 form
// the node expects as SignatureUser.
func EncodeForWire(sig []byte) string {
	return base64.StdEncoding.EncodeToString(sig)
}

// HexToBase64 converts a lowercase-hex signature into its transport
// encoding.
func HexToBase64(h string) (string, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(h, "0x"))
	if err != nil {
		return "", errors.Wrap(err, "decoding hex")
	}

	return base64.StdEncoding.EncodeToString(b), nil
}

// RecoverAddress returns the address that produced sig over the
// personal-sign hash of msg.
func RecoverAddress(msg, sig []byte) (common.Address, error) {
	if len(sig) != ethCrypto.SignatureLength {
		return common.Address{}, errors.Wrapf(ErrSignature, "signature length %d", len(sig))
	}

	norm := make([]byte, len(sig))
	copy(norm, sig)

	if norm[64] >= 27 {
		norm[64] -= 27
	}

	pub, err := ethCrypto.SigToPub(accounts.TextHash(msg), norm)
	if err != nil {
		return common.Address{}, errors.Wrap(ErrSignature, err.Error())
	}

	return ethCrypto.PubkeyToAddress(*pub), nil
}
