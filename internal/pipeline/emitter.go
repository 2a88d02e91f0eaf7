package pipeline

import (
	"fmt"

	"github.com/pfrederiksen/gsack/internal/calendar"
	"github.com/pfrederiksen/gsack/internal/logger"
	"github.com/pfrederiksen/gsack/internal/pickup"
)

// Emitter receives the records of a successful run, one at a time.
type Emitter interface {
	Emit(rec pickup.Record) error
}

// CalendarWriter stores an encoded calendar under the record id.
type CalendarWriter interface {
	WriteCalendar(id string, data []byte) error
}

// CalendarEmitter writes every record as an iCalendar file.
type CalendarEmitter struct {
	Writer CalendarWriter
}

// Emit implements Emitter.
func (e *CalendarEmitter) Emit(rec pickup.Record) error {
	ics := calendar.GenerateICS(&rec)
	if err := e.Writer.WriteCalendar(rec.ID, []byte(ics)); err != nil {
		return fmt.Errorf("emitting %s: %w", rec.ID, err)
	}
	logger.Debug("calendar written", logger.Fields{"id": rec.ID, "dates": len(rec.Dates)})
	return nil
}

// CountingEmitter discards records and only counts them. It backs dry runs.
type CountingEmitter struct {
	Count int
}

// Emit implements Emitter.
func (e *CountingEmitter) Emit(rec pickup.Record) error {
	e.Count++
	logger.Info("dry run: calendar not written", logger.Fields{"id": rec.ID, "dates": len(rec.Dates)})
	return nil
}
