package engine

import (
	"context"
	"fmt"
	"sync/atomic"
)

// SeqSource reports the highest run sequence number already recorded.
// *store.Store implements it.
type SeqSource interface {
	MaxSeq(ctx context.Context) (int64, error)
}

// Clock hands out run sequence numbers.
//
// Stored runs are listed by seq, so history order follows the order batches
// were started, not wall time or which concurrent batch finished first.
//
// Thread-safety: Clock is safe for concurrent use.
type Clock struct {
	last atomic.Int64
}

// NewClock creates a clock whose first seq is 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock whose first seq is last+1.
func NewClockAt(last int64) *Clock {
	c := &Clock{}
	c.last.Store(last)
	return c
}

// ResumeClock creates a clock that continues after the runs in src.
func ResumeClock(ctx context.Context, src SeqSource) (*Clock, error) {
	last, err := src.MaxSeq(ctx)
	if err != nil {
		return nil, fmt.Errorf("resume run sequence: %w", err)
	}
	return NewClockAt(last), nil
}

// Next returns a new seq, greater than every seq returned before.
func (c *Clock) Next() int64 {
	return c.last.Add(1)
}

// Last returns the most recent seq handed out, or the starting point.
func (c *Clock) Last() int64 {
	return c.last.Load()
}
