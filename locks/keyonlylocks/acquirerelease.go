// Package keyonlylocks implements non-blocking named locks on a *sync.Map.
// A key present in the map is held. There is no waiting: callers that lose get false.
package keyonlylocks

import (
	"sort"
	"sync"
)

// TryAcquire takes every key or none of them
func TryAcquire(lockStore *sync.Map, keys ...string) ([]string, bool) {
	keys = append([]string(nil), keys...)
	sort.Strings(keys)
	acquired := make([]string, 0, len(keys))
	for _, key := range keys {
		if _, loaded := lockStore.LoadOrStore(key, struct{}{}); loaded {
			// rollback previously acquired locks
			Release(lockStore, acquired)
			return nil, false
		}
		acquired = append(acquired, key)
	}
	return acquired, true
}

// Release deletes locks from the lockStore.
// Wrap this in deferred calls to guarantee to be called even if panic occurs.
func Release(lockStore *sync.Map, keys []string) {
	for _, key := range keys {
		lockStore.Delete(key)
	}
}

func Held(lockStore *sync.Map, key string) bool {
	_, ok := lockStore.Load(key)
	return ok
}
