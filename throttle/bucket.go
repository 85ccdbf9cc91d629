package throttle

import (
	"sync"
	"time"
)

// Bucket is one client's token bucket inside a group
type Bucket[K comparable] struct {
	mu          sync.Mutex
	tokens      int
	refilledAt  time.Time // start of the current, not yet credited, period
	parentGroup *BucketGroup[K]
}

// refill credits every whole period elapsed since refilledAt. Caller holds mu.
func (b *Bucket[K]) refill(now time.Time) {
	conf := b.parentGroup.conf
	elapsed := now.Sub(b.refilledAt)
	if elapsed < conf.Period {
		return
	}
	periods := int(elapsed / conf.Period)
	b.tokens = min(b.tokens+periods*conf.Increment, conf.Burst)
	b.refilledAt = b.refilledAt.Add(time.Duration(periods) * conf.Period)
}

// Take spends a token. When none is left it reports how long until the next refill.
func (b *Bucket[K]) Take(now time.Time) (bool, time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill(now)
	if b.tokens > 0 {
		b.tokens--
		return true, 0
	}
	return false, b.refilledAt.Add(b.parentGroup.conf.Period).Sub(now)
}

func (b *Bucket[K]) Allow(now time.Time) bool {
	ok, _ := b.Take(now)
	return ok
}

func (b *Bucket[K]) lastActive() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.refilledAt
}
