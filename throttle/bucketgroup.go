package throttle

import (
	"sync"
	"time"
)

type BucketGroup[K comparable] struct {
	conf    *BucketConf
	buckets *sync.Map // K -> *Bucket[K]
}

func (g *BucketGroup[K]) GetBucket(id K) (*Bucket[K], bool) {
	bAny, ok := g.buckets.Load(id)
	if !ok {
		return nil, false
	}
	return bAny.(*Bucket[K]), true
}

// LoadOrNewBucket returns the existing bucket or stores a full one.
// Two first requests racing for the same id end up sharing one bucket.
func (g *BucketGroup[K]) LoadOrNewBucket(id K, now time.Time) *Bucket[K] {
	bAny, _ := g.buckets.LoadOrStore(id, &Bucket[K]{
		tokens:      g.conf.Burst,
		refilledAt:  now,
		parentGroup: g,
	})
	return bAny.(*Bucket[K])
}

func (g *BucketGroup[K]) Conf() BucketConf {
	return *g.conf
}
