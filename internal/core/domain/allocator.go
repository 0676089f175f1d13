package domain

import "sync"

// IDAllocator hands out mapping ids for one allocation scope,
// typically one mapping document. Ids start at 1 and only grow
// until Reset is called.
type IDAllocator struct {
	mu   sync.Mutex
	next int
}

// NewIDAllocator creates an allocator whose first id is 1.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{next: 1}
}

// Next returns a fresh id, greater than any id issued since the last reset.
func (a *IDAllocator) Next() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.next < 1 {
		a.next = 1
	}
	id := a.next
	a.next++
	return id
}

// Peek returns the id the next call to Next will return.
func (a *IDAllocator) Peek() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.next < 1 {
		return 1
	}
	return a.next
}

// Reset rewinds the counter so that Next returns startAt.
// Values below 1 are treated as 1.
func (a *IDAllocator) Reset(startAt int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if startAt < 1 {
		startAt = 1
	}
	a.next = startAt
}

// Advance makes sure the next id is greater than id. It never rewinds.
func (a *IDAllocator) Advance(id int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if id >= a.next {
		a.next = id + 1
	}
}
