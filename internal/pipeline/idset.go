package pipeline

import (
	"fmt"

	"github.com/pfrederiksen/gsack/internal/scraper"
)

// IDSet tracks the record ids of one run.
type IDSet struct {
	seen map[string]struct{}
}

// NewIDSet creates an empty IDSet.
func NewIDSet() *IDSet {
	return &IDSet{seen: make(map[string]struct{})}
}

// Add records id. Adding an id twice is a data integrity error.
func (s *IDSet) Add(id string) error {
	if _, ok := s.seen[id]; ok {
		return scraper.IntegrityError("checking record ids", fmt.Errorf("duplicate id %q", id))
	}
	s.seen[id] = struct{}{}
	return nil
}

// Len returns the number of ids.
func (s *IDSet) Len() int {
	return len(s.seen)
}

// Reset forgets every id.
func (s *IDSet) Reset() {
	s.seen = make(map[string]struct{})
}
