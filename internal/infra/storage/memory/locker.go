package memory

import (
	"context"
	"sync"

	domainlistings "staywise/internal/domain/listings"
)

// ListingLocker serializes admissions per listing with keyed mutexes.
// Two concurrent requests for the same listing run their availability
// check and insert one after the other, so overlapping stays cannot both
// be admitted.
type ListingLocker struct {
	mu    sync.Mutex
	locks map[domainlistings.ListingID]*listingLock
}

type listingLock struct {
	mu   sync.Mutex
	refs int
}

func NewListingLocker() *ListingLocker {
	return &ListingLocker{locks: make(map[domainlistings.ListingID]*listingLock)}
}

func (l *ListingLocker) Acquire(ctx context.Context, id domainlistings.ListingID) (func(), error) {
	l.mu.Lock()
	lock, ok := l.locks[id]
	if !ok {
		lock = &listingLock{}
		l.locks[id] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.mu.Lock()

	var once sync.Once
	release := func() {
		once.Do(func() {
			lock.mu.Unlock()
			l.mu.Lock()
			lock.refs--
			if lock.refs == 0 {
				delete(l.locks, id)
			}
			l.mu.Unlock()
		})
	}
	return release, nil
}
