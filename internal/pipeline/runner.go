package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pfrederiksen/gsack/internal/logger"
	"github.com/pfrederiksen/gsack/internal/pickup"
	"github.com/pfrederiksen/gsack/internal/scraper"
)

// Summary describes a finished run.
type Summary struct {
	Source   string        `json:"source"`
	Records  int           `json:"records"`
	Emitted  int           `json:"emitted"`
	Warnings int           `json:"warnings"`
	FellBack bool          `json:"fell_back"`
	Duration time.Duration `json:"duration"`
}

// Runner scrapes Primary, or Fallback if Primary turns out to be structurally broken,
// and emits the records.
type Runner struct {
	Primary scraper.Source
	// Fallback is optional.
	Fallback scraper.Source
	Emitter  Emitter
}

// Run executes one complete scrape. Records are emitted only after the chosen source
// finished without error.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	if r.Primary == nil {
		return nil, errors.New("no primary source configured")
	}
	if r.Emitter == nil {
		return nil, errors.New("no emitter configured")
	}

	start := time.Now()
	ids := NewIDSet()
	summary := &Summary{Source: r.Primary.Name()}

	buf, err := r.scrape(ctx, r.Primary, ids)
	if err != nil {
		if !scraper.IsStructural(err) || r.Fallback == nil {
			return nil, fmt.Errorf("%s source: %w", r.Primary.Name(), err)
		}

		logger.Error("primary source unusable, switching to fallback", logger.Fields{
			"primary":   r.Primary.Name(),
			"fallback":  r.Fallback.Name(),
			"discarded": len(buf.records),
			"ids":       ids.Len(),
		}, err)
		logger.IncrCounter("fallback.used")

		ids.Reset()
		summary.Source = r.Fallback.Name()
		summary.FellBack = true

		buf, err = r.scrape(ctx, r.Fallback, ids)
		if err != nil {
			return nil, fmt.Errorf("%s source: %w", r.Fallback.Name(), err)
		}
	}

	summary.Records = len(buf.records)
	summary.Warnings = buf.warnings

	emitted, err := r.emit(ctx, buf.records)
	if err != nil {
		return nil, fmt.Errorf("emitted %d of %d records: %w", emitted, len(buf.records), err)
	}
	summary.Emitted = emitted

	summary.Duration = time.Since(start)
	logger.RecordTiming("run.duration", summary.Duration)
	logger.Info("run complete", logger.Fields{
		"source":    summary.Source,
		"records":   summary.Records,
		"emitted":   summary.Emitted,
		"warnings":  summary.Warnings,
		"fell_back": summary.FellBack,
	})

	return summary, nil
}

func (r *Runner) scrape(ctx context.Context, src scraper.Source, ids *IDSet) (*buffer, error) {
	logger.Info("scraping", logger.Fields{"source": src.Name()})

	buf := newBuffer(ids)
	if err := src.Scrape(ctx, buf); err != nil {
		return buf, err
	}
	return buf, nil
}

func (r *Runner) emit(ctx context.Context, records []pickup.Record) (int, error) {
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return i, fmt.Errorf("emitting records: %w", err)
		}
		if err := r.Emitter.Emit(rec); err != nil {
			return i, err
		}
		logger.IncrCounter("records.emitted")
	}
	return len(records), nil
}
