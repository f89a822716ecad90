// Package selection tracks the ordered set of image ids chosen for generation.
package selection

import (
	"errors"
	"sync"
)

// ErrDuplicate is returned when an id is already selected.
var ErrDuplicate = errors.New("image already selected")

// Selection is an ordered, duplicate-free list of ids. Order is insertion order.
type Selection struct {
	mu  sync.RWMutex
	ids []string
}

func New() *Selection {
	return &Selection{}
}

// Add appends id to the end of the selection.
func (s *Selection) Add(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.ids {
		if existing == id {
			return ErrDuplicate
		}
	}
	s.ids = append(s.ids, id)
	return nil
}

// Remove drops id and reports whether it was present.
func (s *Selection) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.ids {
		if existing == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return true
		}
	}
	return false
}

// IDs returns a copy of the selected ids in order.
func (s *Selection) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

func (s *Selection) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, existing := range s.ids {
		if existing == id {
			return true
		}
	}
	return false
}

func (s *Selection) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

func (s *Selection) Clear() {
	s.mu.Lock()
	s.ids = nil
	s.mu.Unlock()
}
