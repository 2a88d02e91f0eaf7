package scraper

import (
	"fmt"

	"github.com/pfrederiksen/gsack/internal/pickup"
)

// memCollector is an in-memory Collector with the same duplicate rules as the pipeline.
type memCollector struct {
	claimed map[string]bool
	seen    map[string]bool
	records []pickup.Record
}

func newMemCollector() *memCollector {
	return &memCollector{
		claimed: make(map[string]bool),
		seen:    make(map[string]bool),
	}
}

func (c *memCollector) Claim(id string) error {
	if c.seen[id] || c.claimed[id] {
		return IntegrityError("claim", fmt.Errorf("duplicate id %q", id))
	}
	c.claimed[id] = true
	return nil
}

func (c *memCollector) Collect(rec pickup.Record) error {
	if c.claimed[rec.ID] {
		delete(c.claimed, rec.ID)
	} else if c.seen[rec.ID] {
		return IntegrityError("collect", fmt.Errorf("duplicate id %q", rec.ID))
	}
	c.seen[rec.ID] = true
	c.records = append(c.records, rec)
	return nil
}

func (c *memCollector) ids() []string {
	ids := make([]string, 0, len(c.records))
	for _, rec := range c.records {
		ids = append(ids, rec.ID)
	}
	return ids
}
