package signing

import (
	"encoding/base64"
	"encoding/hex"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcfw/bbnode/pkg/wire"
)

const testKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func TestSignatureRoundTrip(t *testing.T) {
	s, err := NewSigner(testKey)
	require.NoError(t, err)

	p, err := wire.BuildPayload(map[string]interface{}{
		"Amount": wire.MustDecimal("20"),
		"Cur":    1,
		"UserID": 9,
	})
	require.NoError(t, err)

	b, err := p.Bytes()
	require.NoError(t, err)

	sig, err := s.Sign(b)
	require.NoError(t, err)
	require.Len(t, sig, 65)
	assert.Contains(t, []byte{27, 28}, sig[64])

	addr, err := RecoverAddress(b, sig)
	require.NoError(t, err)
	assert.Equal(t, s.Address(), addr)
}

func TestSignDeterministic(t *testing.T) {
	s, err := NewSigner("0x" + testKey)
	require.NoError(t, err)

	msg := []byte(`{"Amount":20,"Cur":1}`)

	sig1, err := s.Sign(msg)
	require.NoError(t, err)
	sig2, err := s.Sign(msg)
	require.NoError(t, err)

	assert.Equal(t, sig1, sig2)
}

func TestSignPayloadWireEncoding(t *testing.T) {
	s, err := NewSigner(testKey)
	require.NoError(t, err)

	p, err := wire.BuildPayload(map[string]interface{}{"Cur": 1})
	require.NoError(t, err)

	enc, err := s.SignPayload(p)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(enc)
	require.NoError(t, err)
	require.Len(t, raw, 65)

	b, _ := p.Bytes()
	addr, err := RecoverAddress(b, raw)
	require.NoError(t, err)
	assert.Equal(t, s.Address(), addr)
}

func TestBadKey(t *testing.T) {
	_, err := NewSigner("not-a-key")
	assert.True(t, errors.Is(err, ErrKey))
}

func TestHexToBase64RoundTrip(t *testing.T) {
	cases := []string{"00", "deadbeef", "0a0b0c0d0e0f", "ff"}

	for _, h := range cases {
		enc, err := HexToBase64(h)
		require.NoError(t, err)

		raw, err := base64.StdEncoding.DecodeString(enc)
		require.NoError(t, err)

		expected, _ := hex.DecodeString(h)
		assert.Equal(t, expected, raw)
	}

	_, err := HexToBase64("zz")
	assert.Error(t, err)
}
