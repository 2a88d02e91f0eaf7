package scraper

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pfrederiksen/gsack/internal/logger"
	"github.com/pfrederiksen/gsack/internal/pickup"
)

const (
	DefaultPDFURLTemplate = "http://www.schaal-mueller.de/Portals/0/GelberSack_Stuttgart_{year}.pdf"
	// DefaultExpectedAreas is the number of collection areas in the yearly schedule.
	DefaultExpectedAreas = 16
)

// scheduleLine matches three or more day.month tokens separated only by whitespace.
var scheduleLine = regexp.MustCompile(`\b\d{1,2}\.\d{1,2}\.(?:\d{4})?(?:\s+\d{1,2}\.\d{1,2}\.(?:\d{4})?){2,}`)

// PDFConfig describes the yearly schedule document.
type PDFConfig struct {
	// URLTemplate is the document URL; {year} is replaced with the current year.
	URLTemplate string
	// ExpectedAreas is the exact number of schedule lines the document must contain.
	ExpectedAreas int
	Description   string
}

// PDFSource reads the yearly schedule document. The document has no area names the
// scraper could check against, so area n is simply the n-th schedule line.
type PDFSource struct {
	client    Client
	extractor TextExtractor
	cfg       PDFConfig
	now       func() time.Time
}

// NewPDFSource creates a PDFSource, filling unset fields with defaults.
func NewPDFSource(client Client, extractor TextExtractor, cfg PDFConfig) *PDFSource {
	if cfg.URLTemplate == "" {
		cfg.URLTemplate = DefaultPDFURLTemplate
	}
	if cfg.ExpectedAreas <= 0 {
		cfg.ExpectedAreas = DefaultExpectedAreas
	}
	if cfg.Description == "" {
		cfg.Description = DefaultDescription
	}
	return &PDFSource{
		client:    client,
		extractor: extractor,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Name implements Source.
func (s *PDFSource) Name() string { return SourcePDF }

// Scrape fetches this year's document. Nothing is collected unless the document has
// exactly the expected number of schedule lines.
func (s *PDFSource) Scrape(ctx context.Context, collect Collector) error {
	year := s.now().Year()
	docURL := strings.ReplaceAll(s.cfg.URLTemplate, "{year}", strconv.Itoa(year))

	logger.Info("fetching schedule document", logger.Fields{"url": docURL, "year": year})

	body, err := fetchOK(s.client.Get(ctx, docURL))
	if err != nil {
		return err
	}

	text, err := s.extractor.Extract(ctx, body)
	if err != nil {
		return structuralError("extracting text", docURL, err)
	}

	records := s.parseSchedule(text, year, docURL)
	if len(records) != s.cfg.ExpectedAreas {
		return IntegrityError("parsing schedule document",
			fmt.Errorf("expected %d area lines, found %d", s.cfg.ExpectedAreas, len(records)))
	}

	for _, rec := range records {
		if err := collect.Collect(rec); err != nil {
			return err
		}
	}
	return nil
}

func (s *PDFSource) parseSchedule(text string, year int, docURL string) []pickup.Record {
	var records []pickup.Record
	for _, line := range strings.Split(text, "\n") {
		if !scheduleLine.MatchString(line) {
			if n := pickup.CountDateTokens(line); n > 0 {
				logger.Debug("ignoring line with dates", logger.Fields{"line": strings.TrimSpace(line), "dates": n})
			}
			continue
		}

		id := strconv.Itoa(len(records) + 1)
		label := strings.TrimSpace(line[:pickup.FirstDateTokenIndex(line)])
		if label == "" {
			label = "Gebiet " + id
		}

		description := strings.ReplaceAll(s.cfg.Description, "{area}", label)
		records = append(records, pickup.NewRecord(id, description, pickup.ExtractLineDates(line, year), SourcePDF, docURL))
	}
	return records
}
