package pipeline

import (
	"github.com/pfrederiksen/gsack/internal/logger"
	"github.com/pfrederiksen/gsack/internal/pickup"
)

// buffer collects the records of one source attempt.
type buffer struct {
	ids      *IDSet
	claimed  map[string]bool
	records  []pickup.Record
	warnings int
}

func newBuffer(ids *IDSet) *buffer {
	return &buffer{
		ids:     ids,
		claimed: make(map[string]bool),
	}
}

// Claim implements scraper.Collector.
func (b *buffer) Claim(id string) error {
	if err := b.ids.Add(id); err != nil {
		return err
	}
	b.claimed[id] = true
	return nil
}

// Collect implements scraper.Collector.
func (b *buffer) Collect(rec pickup.Record) error {
	if b.claimed[rec.ID] {
		delete(b.claimed, rec.ID)
	} else if err := b.ids.Add(rec.ID); err != nil {
		return err
	}

	if rec.LowConfidence() {
		b.warnings++
		dates := make([]string, 0, len(rec.Dates))
		for _, d := range rec.Dates {
			dates = append(dates, pickup.FormatDate(d))
		}
		logger.Warn("few pickup dates found", logger.Fields{
			"id":          rec.ID,
			"description": rec.Description,
			"count":       len(rec.Dates),
			"dates":       dates,
			"source":      rec.Source,
		})
		logger.IncrCounter("records.low_confidence")
	}

	b.records = append(b.records, rec)
	logger.IncrCounter("records.collected")
	return nil
}
