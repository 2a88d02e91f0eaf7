package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pfrederiksen/gsack/internal/calendar"
	"github.com/pfrederiksen/gsack/internal/pickup"
)

func main() {
	// Fortnightly pickups over the turn of the year
	start := time.Date(2025, time.December, 15, 0, 0, 0, 0, time.UTC)
	dates := make([]time.Time, 0, 6)
	for i := 0; i < 6; i++ {
		dates = append(dates, start.AddDate(0, 0, 14*i))
	}

	rec := pickup.NewRecord(
		"test-701731",
		"Gelber Sack Abholtermine für Königstraße 1-20",
		dates,
		"sample",
		"https://www.sita-deutschland.de/loesungen/privathaushalte/abfuhrkalender/stuttgart.html",
	)

	// Generate .ics file
	icsContent := calendar.GenerateICS(&rec)

	// Write to file (owner read/write only for security)
	filename := "test-gsack.ics"
	if err := os.WriteFile(filename, []byte(icsContent), 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated calendar file with %d pickups: %s\n\n", len(rec.Dates), filename)
	fmt.Println("Test it by:")
	fmt.Println("1. Open the .ics file with your calendar app (double-click)")
	fmt.Println("2. Or subscribe to it from a web server in Google Calendar, Apple Calendar, or Outlook")
	fmt.Println("\nFile contents preview:")
	fmt.Println("---")
	fmt.Println(icsContent)
}
