package desk

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// caseLocks serializes state-changing operations per case. Entries are
// reference counted and dropped once no caller holds or waits on them.
type caseLocks struct {
	mu    sync.Mutex
	slots map[uuid.UUID]*slot
}

type slot struct {
	sem  chan struct{}
	refs int
}

func newCaseLocks() *caseLocks {
	return &caseLocks{slots: make(map[uuid.UUID]*slot)}
}

// acquire blocks until the case is free or ctx is done. The returned func
// releases the lock and must be called exactly once.
func (l *caseLocks) acquire(ctx context.Context, id uuid.UUID) (func(), error) {
	l.mu.Lock()
	s, ok := l.slots[id]
	if !ok {
		s = &slot{sem: make(chan struct{}, 1)}
		l.slots[id] = s
	}
	s.refs++
	l.mu.Unlock()

	select {
	case s.sem <- struct{}{}:
		return func() {
			<-s.sem
			l.drop(id, s)
		}, nil
	case <-ctx.Done():
		l.drop(id, s)
		return nil, ctx.Err()
	}
}

func (l *caseLocks) drop(id uuid.UUID, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s.refs--
	if s.refs == 0 {
		delete(l.slots, id)
	}
}
