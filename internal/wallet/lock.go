package wallet

import (
	"hash/fnv"
	"sync"
)

const lockStripes = 64

// stripedLock serializes operations per owner by hashing the owner id onto a
// fixed set of mutexes. Operations on different owners proceed in parallel
// unless their stripes collide; there is never a global lock.
type stripedLock struct {
	stripes [lockStripes]sync.Mutex
}

func (l *stripedLock) lock(ownerID string) func() {
	h := fnv.New32a()
	h.Write([]byte(ownerID))
	stripe := &l.stripes[h.Sum32()%lockStripes]
	stripe.Lock()
	return stripe.Unlock
}
