package wire

import "time"

// TickEpochOffset anchors tick 0 to 0001-01-01T00:00:00Z, the
// 100-nanosecond-tick epoch convention the node uses for CreatedByUser
// fields. The conversion must be bit-exact or signatures fail to
// validate.
const TickEpochOffset int64 = 621355968000000000

// TicksAt converts a unix-millisecond timestamp to node ticks.
func TicksAt(unixMilli int64) int64 {
	return unixMilli*10 + TickEpochOffset
}

// Ticks returns the node tick value for t.
func Ticks(t time.Time) int64 {
	return TicksAt(t.UnixMilli())
}
