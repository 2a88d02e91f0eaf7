// Package calendar renders pickup records as iCalendar (RFC 5545) files.
package calendar

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pfrederiksen/gsack/internal/pickup"
)

const (
	ProdID       = "-//GSack Calendar Generator - github.com/kopf/gsack //NONSGML//DE"
	CalendarName = "Gelber Sack Abholtermine"
	EventSummary = "Gelber Sack Abholtermin"
	uidDomain    = "gsack"

	maxLineOctets = 75
)

// GenerateICS renders one calendar for rec with an all-day event per pickup date.
func GenerateICS(rec *pickup.Record) string {
	return generateICS(rec, time.Now().UTC())
}

func generateICS(rec *pickup.Record, stamp time.Time) string {
	var ics strings.Builder

	writeLine(&ics, "BEGIN:VCALENDAR")
	writeLine(&ics, "VERSION:2.0")
	writeLine(&ics, "PRODID:"+ProdID)
	writeLine(&ics, "CALSCALE:GREGORIAN")
	writeLine(&ics, "METHOD:PUBLISH")
	writeLine(&ics, "X-WR-CALNAME:"+CalendarName)
	if rec.SourceURL != "" {
		writeLine(&ics, "X-ORIGINAL-URL:"+rec.SourceURL)
	}
	writeLine(&ics, "X-WR-CALDESC:"+escapeICS(rec.Description))

	for _, d := range rec.Dates {
		writeLine(&ics, "BEGIN:VEVENT")
		writeLine(&ics, fmt.Sprintf("UID:%s-%s@%s", rec.ID, formatICSDate(d), uidDomain))
		writeLine(&ics, "DTSTAMP:"+formatICSTime(stamp))
		// All-day event: DTEND is exclusive, so the event covers exactly one day.
		writeLine(&ics, "DTSTART;VALUE=DATE:"+formatICSDate(d))
		writeLine(&ics, "DTEND;VALUE=DATE:"+formatICSDate(d.AddDate(0, 0, 1)))
		writeLine(&ics, "SUMMARY:"+EventSummary)
		writeLine(&ics, "TRANSP:TRANSPARENT")
		writeLine(&ics, "END:VEVENT")
	}

	writeLine(&ics, "END:VCALENDAR")

	return ics.String()
}

// writeLine folds content lines longer than 75 octets, never splitting a UTF-8
// sequence, and terminates them with CRLF.
func writeLine(b *strings.Builder, line string) {
	limit := maxLineOctets
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		b.WriteString(line[:cut])
		b.WriteString("\r\n ")
		line = line[cut:]
		// Continuation lines start with a space, which counts toward the limit.
		limit = maxLineOctets - 1
	}
	b.WriteString(line)
	b.WriteString("\r\n")
}

// formatICSTime formats a time.Time as an iCalendar datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// formatICSDate formats the calendar day of t as an iCalendar DATE value
func formatICSDate(t time.Time) string {
	return t.Format("20060102")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// Fold CRLF and bare CR into LF so no raw line break reaches the output
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	// Replace special characters according to RFC 5545
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
