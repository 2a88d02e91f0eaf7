package scraper

import (
	"context"

	"github.com/pfrederiksen/gsack/internal/pickup"
)

// Source names, also used as pickup.Record.Source.
const (
	SourceListing  = "listing"
	SourcePostback = "postback"
	SourcePDF      = "pdf"
)

// DefaultDescription is the calendar description template; {area} is replaced with the
// area label.
const DefaultDescription = "Gelber Sack Abholtermine für {area}"

// Collector receives the records of a run.
type Collector interface {
	// Claim reserves id before the record is fetched. It fails with KindDataIntegrity
	// if id was already seen in this run.
	Claim(id string) error
	// Collect adds a record. Its id must not have been collected before.
	Collect(rec pickup.Record) error
}

// Source produces pickup records for every area it knows about.
type Source interface {
	Name() string
	Scrape(ctx context.Context, collect Collector) error
}
