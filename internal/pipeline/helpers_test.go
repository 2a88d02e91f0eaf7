package pipeline

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pfrederiksen/gsack/internal/logger"
	"github.com/pfrederiksen/gsack/internal/pickup"
	"github.com/pfrederiksen/gsack/internal/scraper"
)

// captureLog routes the default logger into a buffer for the duration of the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := logger.Default()
	logger.SetDefault(logger.New(logger.LevelInfo, &buf))
	t.Cleanup(func() { logger.SetDefault(prev) })
	return &buf
}

func record(id string, dates int) pickup.Record {
	ds := make([]time.Time, 0, dates)
	for i := 0; i < dates; i++ {
		ds = append(ds, time.Date(2025, time.January, 6+14*i, 0, 0, 0, 0, time.UTC))
	}
	return pickup.NewRecord(id, "Gelber Sack Abholtermine für Bezirk "+id, ds, "fake", "")
}

// fakeSource collects its records and then returns err.
type fakeSource struct {
	name    string
	claims  []string
	records []pickup.Record
	err     error
	runs    int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Scrape(ctx context.Context, collect scraper.Collector) error {
	f.runs++
	for _, id := range f.claims {
		if err := collect.Claim(id); err != nil {
			return err
		}
	}
	for _, rec := range f.records {
		if err := collect.Collect(rec); err != nil {
			return err
		}
	}
	return f.err
}

type recordingEmitter struct {
	records []pickup.Record
	failOn  string
}

func (e *recordingEmitter) Emit(rec pickup.Record) error {
	if rec.ID == e.failOn {
		return errors.New("disk full")
	}
	e.records = append(e.records, rec)
	return nil
}

func (e *recordingEmitter) ids() []string {
	ids := make([]string, 0, len(e.records))
	for _, rec := range e.records {
		ids = append(ids, rec.ID)
	}
	return ids
}

func structural(msg string) error {
	return &scraper.Error{Kind: scraper.KindStructural, Op: "parsing", Err: errors.New(msg)}
}

func transient(msg string) error {
	return &scraper.Error{Kind: scraper.KindTransientFetch, Op: "GET", URL: "https://x.test", Err: errors.New(msg)}
}
