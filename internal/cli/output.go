package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/pfrederiksen/gsack/internal/pipeline"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// OutputResult contains data to be output
type OutputResult struct {
	FinishedAt time.Time              `json:"finished_at"`
	OutputDir  string                 `json:"output_dir"`
	DryRun     bool                   `json:"dry_run"`
	Summary    *pipeline.Summary      `json:"summary"`
	Metrics    map[string]interface{} `json:"metrics,omitempty"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	s := result.Summary

	if s.FellBack {
		fmt.Fprintf(w, "Primary source failed, used %s schedule instead.\n", s.Source)
	}

	if s.Records == 0 {
		fmt.Fprintln(w, "No calendars found.")
		return nil
	}

	if result.DryRun {
		fmt.Fprintf(w, "Dry run: %d calendars from %s source (nothing written)\n", s.Emitted, s.Source)
	} else {
		fmt.Fprintf(w, "Wrote %d calendars from %s source to %s\n", s.Emitted, s.Source, result.OutputDir)
	}

	if s.Warnings > 0 {
		fmt.Fprintf(w, "Warning: %d calendars have fewer pickup dates than expected\n", s.Warnings)
	}

	if verbose {
		fmt.Fprintf(w, "Duration: %s\n", s.Duration.Round(time.Millisecond))
		writeMetrics(w, result.Metrics)
	}

	return nil
}

func writeMetrics(w io.Writer, metrics map[string]interface{}) {
	counters, _ := metrics["counters"].(map[string]int64)
	if len(counters) == 0 {
		return
	}

	names := make([]string, 0, len(counters))
	for name := range counters {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "\nCounters:")
	for _, name := range names {
		fmt.Fprintf(w, "  %-24s %d\n", name, counters[name])
	}
}
