// SPDX-License-Identifier: Apache-2.0
package surface

import (
	"sort"
	"sync"
)

// Stream fans layout-change notifications out to subscribers.
type Stream struct {
	mu   sync.Mutex
	next int
	subs map[int]func()
}

// NewStream returns an empty Stream.
func NewStream() *Stream {
	return &Stream{subs: map[int]func(){}}
}

// Subscribe registers fn and returns the func that removes it. The returned
// func is safe to call more than once.
func (s *Stream) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Publish calls every subscriber in subscription order on the caller's goroutine.
func (s *Stream) Publish() {
	s.mu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Len is the number of live subscribers.
func (s *Stream) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
