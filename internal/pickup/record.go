package pickup

import "time"

// MinExpectedDates is the lowest number of pickups a healthy schedule has. Real
// schedules carry about 15 pickups per year; fewer than this usually means the page
// changed underneath the scraper.
const MinExpectedDates = 4

// Record is one district's pickup calendar.
type Record struct {
	ID          string      `json:"id"`
	Description string      `json:"description"`
	Dates       []time.Time `json:"dates"`
	Source      string      `json:"source"`
	SourceURL   string      `json:"source_url,omitempty"`
}

// NewRecord creates a Record with a normalized description.
func NewRecord(id, description string, dates []time.Time, source, sourceURL string) Record {
	return Record{
		ID:          id,
		Description: Normalize(description),
		Dates:       dates,
		Source:      source,
		SourceURL:   sourceURL,
	}
}

// LowConfidence reports whether the record has fewer dates than a real schedule would.
func (r Record) LowConfidence() bool {
	return len(r.Dates) < MinExpectedDates
}
