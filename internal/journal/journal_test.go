package journal

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcfw/bbnode/pkg/withdraw"
)

func TestRecordAndLookup(t *testing.T) {
	j, err := OpenMem()
	require.NoError(t, err)
	defer j.Close()

	k := withdraw.NewKey(1, 42, "abc123")

	s, err := j.Submission(k)
	require.NoError(t, err)
	assert.Nil(t, s)

	require.NoError(t, j.Record(k, "0xf00d"))

	s, err = j.Submission(k)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "0xf00d", s.TxHash)
	assert.False(t, s.SubmittedAt.IsZero())
}

func TestDoubleRecordRejected(t *testing.T) {
	j, err := OpenMem()
	require.NoError(t, err)
	defer j.Close()

	k := withdraw.NewKey(1, 42, "abc123")
	require.NoError(t, j.Record(k, "0xf00d"))

	err = j.Record(k, "0xbeef")
	assert.True(t, errors.Is(err, ErrAlreadySubmitted))
}

func TestKeysIsolated(t *testing.T) {
	j, err := OpenMem()
	require.NoError(t, err)
	defer j.Close()

	require.NoError(t, j.Record(withdraw.NewKey(1, 42, "abc123"), "0xf00d"))

	s, err := j.Submission(withdraw.NewKey(1, 43, "abc123"))
	require.NoError(t, err)
	assert.Nil(t, s)
}
