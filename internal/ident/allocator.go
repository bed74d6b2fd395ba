// Package ident produces provisional identities for records created
// locally before the server has issued a permanent one.
package ident

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Allocator hands out session-unique provisional primary keys and
// correlation tokens. The two are deliberately independent: the
// provisional key is replaced wholesale on server confirmation, while
// the token only marks "this row has no server counterpart yet".
type Allocator struct {
	mu   sync.Mutex
	last int64
}

// NewAllocator creates an allocator.
func NewAllocator() *Allocator {
	return &Allocator{}
}

// ProvisionalID returns a millisecond-clock-derived key that will not
// collide with any key previously returned in this session. If the
// clock has not advanced since the last call, the value is bumped past
// it, so burst creates stay unique.
func (a *Allocator) ProvisionalID() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := time.Now().UnixMilli()
	if id <= a.last {
		id = a.last + 1
	}
	a.last = id
	return id
}

// CorrelationToken returns an opaque token for marking a locally
// created record that has never reached the server.
func (a *Allocator) CorrelationToken() string {
	return uuid.NewString()
}
