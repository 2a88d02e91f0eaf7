package pickup

import (
	"regexp"
	"strconv"
	"time"

	"github.com/pfrederiksen/gsack/internal/logger"
)

// dateToken matches "28.12.", "4.1." and "01.12.2024".
var dateToken = regexp.MustCompile(`\b(\d{1,2})\.(\d{1,2})\.(\d{4})?`)

// DateContext carries what a source knows about the dates it extracts.
type DateContext struct {
	// CurrentYear is used for tokens without a year. Zero means such tokens are dropped.
	CurrentYear int
}

type dayMonth struct {
	raw   string
	day   int
	month int
	year  int // 0 when the token has none
}

func scanTokens(text string) []dayMonth {
	matches := dateToken.FindAllStringSubmatch(text, -1)
	tokens := make([]dayMonth, 0, len(matches))
	for _, m := range matches {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year := 0
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
		}
		tokens = append(tokens, dayMonth{raw: m[0], day: day, month: month, year: year})
	}
	return tokens
}

// CountDateTokens returns the number of day.month tokens in text.
func CountDateTokens(text string) int {
	return len(dateToken.FindAllStringIndex(text, -1))
}

// FirstDateTokenIndex returns the byte offset of the first date token in text, or -1.
func FirstDateTokenIndex(text string) int {
	loc := dateToken.FindStringIndex(text)
	if loc == nil {
		return -1
	}
	return loc[0]
}

// ExtractDates returns every valid date in text in the order found. Tokens that do not
// form a real calendar date are skipped.
func ExtractDates(text string, ctx DateContext) []time.Time {
	tokens := scanTokens(text)
	dates := make([]time.Time, 0, len(tokens))
	for _, tok := range tokens {
		year := tok.year
		if year == 0 {
			year = ctx.CurrentYear
		}
		if d, ok := makeDate(tok, year); ok {
			dates = append(dates, d)
		}
	}
	return dates
}

// ExtractLineDates extracts the dates of one schedule line that has no explicit years.
// A line lists one area's pickups for the schedule period, so a December date in the
// first half of the line belongs to the previous year and a January date in the second
// half belongs to the next one.
func ExtractLineDates(line string, currentYear int) []time.Time {
	tokens := scanTokens(line)
	half := len(tokens) / 2
	dates := make([]time.Time, 0, len(tokens))
	for i, tok := range tokens {
		year := tok.year
		if year == 0 {
			year = currentYear
			switch {
			case i < half && tok.month == 12:
				year = currentYear - 1
			case i >= half && tok.month == 1:
				year = currentYear + 1
			}
		}
		if d, ok := makeDate(tok, year); ok {
			dates = append(dates, d)
		}
	}
	return dates
}

// makeDate rejects tokens that time.Date would silently roll over, like 31.13. or 30.02.
func makeDate(tok dayMonth, year int) (time.Time, bool) {
	if year == 0 {
		logger.Debug("dropping date token without year", logger.Fields{"token": tok.raw})
		return time.Time{}, false
	}
	if tok.month < 1 || tok.month > 12 || tok.day < 1 {
		logger.Debug("dropping invalid date token", logger.Fields{"token": tok.raw})
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(tok.month), tok.day, 0, 0, 0, 0, time.UTC)
	if d.Day() != tok.day || int(d.Month()) != tok.month {
		logger.Debug("dropping invalid date token", logger.Fields{"token": tok.raw})
		return time.Time{}, false
	}
	return d, true
}

// FormatDate renders a date the way the upstream pages print it.
func FormatDate(t time.Time) string {
	return t.Format("02.01.2006")
}
