package wire

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalOrdering(t *testing.T) {
	p := NewPayload()
	require.NoError(t, p.Set("UserID", 9))
	require.NoError(t, p.Set("Amount", MustDecimal("20")))
	require.NoError(t, p.Set("Cur", 1))
	require.NoError(t, p.Set("Reference", "0xabc"))

	b, err := p.Bytes()
	require.NoError(t, err)

	assert.Equal(t, `{"Amount":20,"Cur":1,"Reference":"0xabc","UserID":9}`, string(b))
}

func TestCanonicalDeterminism(t *testing.T) {
	fields := map[string]interface{}{
		"TType":        10,
		"Amount":       MustDecimal("0.05"),
		"MinerFeeStr":  "0.00001",
		"NodeID":       102,
		"From":         9,
		"UserID":       9,
		"Reference":    "0x5978c6153a06b141cd0935569f600a83eb44aeaa",
		"ID":           "9099a901-9180-4869-afb7-e1cc88c2c169",
		"Cur":          5,
		"CreatedByUser": int64(638000000000000000),
	}

	p1, err := BuildPayload(fields)
	require.NoError(t, err)
	p2, err := BuildPayload(fields)
	require.NoError(t, err)

	b1, err := p1.Bytes()
	require.NoError(t, err)
	b2, err := p2.Bytes()
	require.NoError(t, err)

	assert.Equal(t, b1, b2)

	// insertion order must not leak into the serialization
	p3 := NewPayload()
	require.NoError(t, p3.Set("Cur", 5))
	require.NoError(t, p3.Set("Amount", MustDecimal("0.05")))
	p4 := NewPayload()
	require.NoError(t, p4.Set("Amount", MustDecimal("0.05")))
	require.NoError(t, p4.Set("Cur", 5))

	b3, _ := p3.Bytes()
	b4, _ := p4.Bytes()
	assert.Equal(t, b3, b4)
	assert.Equal(t, `{"Amount":0.05,"Cur":5}`, string(b3))
}

func TestCanonicalNested(t *testing.T) {
	p, err := BuildPayload(map[string]interface{}{
		"UserOrder": map[string]interface{}{
			"MarketID": "6904d2c0-72c1-4f6b-987f-6843f4b19663",
		},
		"UnmatchedOrder": map[string]interface{}{
			"Type":   2,
			"Side":   1,
			"Amount": MustDecimal("1.392"),
		},
	})
	require.NoError(t, err)

	b, err := p.Bytes()
	require.NoError(t, err)

	assert.Equal(t,
		`{"UnmatchedOrder":{"Amount":1.392,"Side":1,"Type":2},`+
			`"UserOrder":{"MarketID":"6904d2c0-72c1-4f6b-987f-6843f4b19663"}}`,
		string(b))
}

func TestCanonicalList(t *testing.T) {
	p, err := BuildPayload(map[string]interface{}{
		"IDs": []interface{}{1, 2, 3},
	})
	require.NoError(t, err)

	b, err := p.Bytes()
	require.NoError(t, err)
	assert.Equal(t, `{"IDs":[1,2,3]}`, string(b))
}

func TestCanonicalRejectsFloats(t *testing.T) {
	_, err := BuildPayload(map[string]interface{}{"Amount": 0.05})
	assert.True(t, errors.Is(err, ErrMalformedField))
}

func TestCanonicalRejectsKeyCollision(t *testing.T) {
	p := NewPayload()
	require.NoError(t, p.Set("Amount", 1))

	err := p.Set(" Amount ", 2)
	assert.True(t, errors.Is(err, ErrMalformedField))
}

func TestCanonicalRejectsUnsupportedType(t *testing.T) {
	_, err := BuildPayload(map[string]interface{}{"X": struct{}{}})
	assert.True(t, errors.Is(err, ErrMalformedField))
}

func TestPayloadThroughEncodingJSON(t *testing.T) {
	p, err := BuildPayload(map[string]interface{}{
		"Amount": MustDecimal("20"),
		"Cur":    1,
	})
	require.NoError(t, err)

	env, err := NewEnvelope(TypeTransfer, p)
	require.NoError(t, err)

	b, err := json.Marshal(env)
	require.NoError(t, err)

	// the Data bytes must survive envelope marshalling untouched
	assert.Contains(t, string(b), `"Data":{"Amount":20,"Cur":1}`)
}
