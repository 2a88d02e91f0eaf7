package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pfrederiksen/gsack/internal/scraper"
)

// Storage writes calendars and street catalogs into an output directory
type Storage struct {
	dataDir string
}

// New creates a new Storage instance
func New(dataDir string) (*Storage, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("output directory is empty")
	}

	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
	}, nil
}

// Dir returns the resolved output directory
func (s *Storage) Dir() string {
	return s.dataDir
}

// CalendarPath returns the path of the calendar file for id
func (s *Storage) CalendarPath(id string) string {
	return filepath.Join(s.dataDir, id+".ics")
}

// CatalogPath returns the path of the catalog file for postcode
func (s *Storage) CatalogPath(postcode string) string {
	return filepath.Join(s.dataDir, postcode+".json")
}

// WriteCalendar writes data to <dir>/<id>.ics, replacing any previous file
func (s *Storage) WriteCalendar(id string, data []byte) error {
	if err := checkName(id); err != nil {
		return fmt.Errorf("writing calendar: %w", err)
	}

	if err := os.WriteFile(s.CalendarPath(id), data, 0644); err != nil {
		return fmt.Errorf("writing calendar %s: %w", id, err)
	}

	return nil
}

// SaveCatalog writes the street catalog of a postcode as indented JSON
func (s *Storage) SaveCatalog(postcode string, entries []scraper.CatalogEntry) error {
	if err := checkName(postcode); err != nil {
		return fmt.Errorf("saving catalog: %w", err)
	}

	// Write [] rather than null for a postcode without streets
	if entries == nil {
		entries = []scraper.CatalogEntry{}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}

	if err := os.WriteFile(s.CatalogPath(postcode), data, 0644); err != nil {
		return fmt.Errorf("writing catalog %s: %w", postcode, err)
	}

	return nil
}

// LoadCatalog reads a catalog previously written by SaveCatalog
func (s *Storage) LoadCatalog(postcode string) ([]scraper.CatalogEntry, error) {
	if err := checkName(postcode); err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	data, err := os.ReadFile(s.CatalogPath(postcode))
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	var entries []scraper.CatalogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	return entries, nil
}

// checkName rejects names that would escape the output directory
func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid file name %q", name)
	}
	return nil
}
