package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry[T any] struct {
	v       T
	expires time.Time // zero means never
}

// MemoryStore keeps sessions in process. Entries idle for longer than ttl
// are dropped on the next Get; a zero ttl keeps them forever.
type MemoryStore[T any] struct {
	mu  sync.Mutex
	m   map[string]memoryEntry[T]
	ttl time.Duration
	now func() time.Time
}

func NewMemoryStore[T any](ttl time.Duration) *MemoryStore[T] {
	return &MemoryStore[T]{m: map[string]memoryEntry[T]{}, ttl: ttl, now: time.Now}
}

func (s *MemoryStore[T]) Get(_ context.Context, id string) (T, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[id]
	if ok && !e.expires.IsZero() && s.now().After(e.expires) {
		delete(s.m, id)
		ok = false
	}
	if !ok {
		var zero T
		return zero, false, nil
	}
	return e.v, true, nil
}

// Put stores v and restarts its expiry.
func (s *MemoryStore[T]) Put(_ context.Context, id string, v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := memoryEntry[T]{v: v}
	if s.ttl > 0 {
		e.expires = s.now().Add(s.ttl)
	}
	s.m[id] = e
	return nil
}

// Sweep drops every expired entry and returns how many it dropped.
func (s *MemoryStore[T]) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for id, e := range s.m {
		if !e.expires.IsZero() && now.After(e.expires) {
			delete(s.m, id)
			n++
		}
	}
	return n
}

func (s *MemoryStore[T]) NewID() string {
	return NewID()
}
