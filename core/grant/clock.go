package grant

import (
	"sync"
	"time"

	tmtime "github.com/tendermint/tendermint/types/time"
)

// Clock supplies the current time to the time gates.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return tmtime.Now()
}

// BlockClock reports the time of the block being executed.
type BlockClock struct {
	mx  sync.RWMutex
	now time.Time
}

func NewBlockClock(now time.Time) *BlockClock {
	return &BlockClock{now: now}
}

func (c *BlockClock) Set(now time.Time) {
	c.mx.Lock()
	defer c.mx.Unlock()

	c.now = now
}

func (c *BlockClock) Now() time.Time {
	c.mx.RLock()
	defer c.mx.RUnlock()

	return c.now
}
