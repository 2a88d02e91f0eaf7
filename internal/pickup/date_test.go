package pickup

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExtractDates(t *testing.T) {
	tests := []struct {
		name string
		text string
		ctx  DateContext
		want []time.Time
	}{
		{
			name: "order preserved",
			text: "01.12.2024 and 15.06.2024",
			ctx:  DateContext{CurrentYear: 2024},
			want: []time.Time{day(2024, time.December, 1), day(2024, time.June, 15)},
		},
		{
			name: "invalid month dropped",
			text: "31.13.2024 02.01.2025",
			want: []time.Time{day(2025, time.January, 2)},
		},
		{
			name: "day rolled over dropped",
			text: "30.02.2024 29.02.2024",
			want: []time.Time{day(2024, time.February, 29)},
		},
		{
			name: "missing year uses context",
			text: "Mo 06.01. Di 20.1.",
			ctx:  DateContext{CurrentYear: 2026},
			want: []time.Time{day(2026, time.January, 6), day(2026, time.January, 20)},
		},
		{
			name: "missing year without context dropped",
			text: "06.01.",
			want: []time.Time{},
		},
		{
			name: "explicit year wins over context",
			text: "28.12.2023",
			ctx:  DateContext{CurrentYear: 2024},
			want: []time.Time{day(2023, time.December, 28)},
		},
		{
			name: "no tokens",
			text: "Keine Termine",
			ctx:  DateContext{CurrentYear: 2024},
			want: []time.Time{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractDates(tt.text, tt.ctx)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ExtractDates(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestExtractLineDates(t *testing.T) {
	tests := []struct {
		name string
		line string
		year int
		want []time.Time
	}{
		{
			name: "boundary on both ends",
			line: "28.12.   04.01.",
			year: 2025,
			want: []time.Time{day(2024, time.December, 28), day(2026, time.January, 4)},
		},
		{
			name: "full line",
			line: "Gebiet 3   30.12.  13.01.  27.01.  10.02.  22.12.  05.01.",
			year: 2025,
			want: []time.Time{
				day(2024, time.December, 30),
				day(2025, time.January, 13),
				day(2025, time.January, 27),
				day(2025, time.February, 10),
				day(2025, time.December, 22),
				day(2026, time.January, 5),
			},
		},
		{
			name: "december in second half stays",
			line: "03.02. 17.02. 08.12. 22.12.",
			year: 2025,
			want: []time.Time{
				day(2025, time.February, 3),
				day(2025, time.February, 17),
				day(2025, time.December, 8),
				day(2025, time.December, 22),
			},
		},
		{
			name: "odd count middle entry is second half",
			line: "29.12. 12.01. 02.01.",
			year: 2025,
			want: []time.Time{
				day(2024, time.December, 29),
				day(2026, time.January, 12),
				day(2026, time.January, 2),
			},
		},
		{
			name: "invalid token dropped",
			line: "07.01. 32.01. 04.02.",
			year: 2025,
			want: []time.Time{day(2025, time.January, 7), day(2025, time.February, 4)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractLineDates(tt.line, tt.year)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ExtractLineDates(%q) mismatch (-want +got):\n%s", tt.line, diff)
			}
		})
	}
}

func TestCountDateTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"07.01. 21.01. 04.02.", 3},
		{"Abfuhrtermine 2025", 0},
		{"Stand: 01.10.2024", 1},
	}

	for _, tt := range tests {
		if got := CountDateTokens(tt.text); got != tt.want {
			t.Errorf("CountDateTokens(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestFirstDateTokenIndex(t *testing.T) {
	if got := FirstDateTokenIndex("Gebiet 1  07.01."); got != 10 {
		t.Errorf("FirstDateTokenIndex() = %d, want 10", got)
	}
	if got := FirstDateTokenIndex("no dates"); got != -1 {
		t.Errorf("FirstDateTokenIndex() = %d, want -1", got)
	}
}

func TestRecord(t *testing.T) {
	rec := NewRecord("7", "Abholtermine für  Süd ()", []time.Time{day(2025, time.May, 2)}, "pdf", "")

	if rec.Description != "Abholtermine fuer Sued" {
		t.Errorf("Description = %q", rec.Description)
	}
	if !rec.LowConfidence() {
		t.Error("record with one date should be low confidence")
	}

	rec.Dates = append(rec.Dates, day(2025, time.May, 16), day(2025, time.May, 30), day(2025, time.June, 13))
	if rec.LowConfidence() {
		t.Error("record with four dates should not be low confidence")
	}
}

func TestFormatDate(t *testing.T) {
	if got := FormatDate(day(2025, time.March, 4)); got != "04.03.2025" {
		t.Errorf("FormatDate() = %q, want 04.03.2025", got)
	}
}
