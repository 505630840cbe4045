package wire

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTicksEpoch(t *testing.T) {
	assert.Equal(t, int64(621355968000000000), TicksAt(0))
}

func TestTicksMonotonic(t *testing.T) {
	t1 := int64(1700000000000)
	t2 := int64(1700000000500)

	assert.Greater(t, TicksAt(t2), TicksAt(t1))
	assert.Equal(t, (t2-t1)*10, TicksAt(t2)-TicksAt(t1))
}

func TestTicksOfTime(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	assert.Equal(t, TicksAt(1700000000000), Ticks(now))
}
