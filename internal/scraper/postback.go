package scraper

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/gsack/internal/logger"
	"github.com/pfrederiksen/gsack/internal/pickup"
)

const (
	DefaultPostbackURL   = "http://www.schaal-mueller.de/GelberSackinStuttgart.aspx"
	DefaultEventTarget   = "ThatStreet"
	DefaultAreas         = 16
	DefaultPanelSelector = "div#dnn_ctr491_View_panResults"
	DefaultLabelSelector = "span#dnn_ctr491_View_lblResults"
)

// PostbackConfig describes the ASP.NET results page.
type PostbackConfig struct {
	URL         string
	EventTarget string
	// Areas is the number of areas; indexes 1..Areas are posted.
	Areas int
	// Description is the calendar description template, see DefaultDescription.
	Description   string
	PanelSelector string
	LabelSelector string
}

// PostbackSource selects one area after the other by re-posting the results form.
type PostbackSource struct {
	client Client
	cfg    PostbackConfig
}

// NewPostbackSource creates a PostbackSource, filling unset fields with defaults.
func NewPostbackSource(client Client, cfg PostbackConfig) *PostbackSource {
	if cfg.URL == "" {
		cfg.URL = DefaultPostbackURL
	}
	if cfg.EventTarget == "" {
		cfg.EventTarget = DefaultEventTarget
	}
	if cfg.Areas <= 0 {
		cfg.Areas = DefaultAreas
	}
	if cfg.Description == "" {
		cfg.Description = DefaultDescription
	}
	if cfg.PanelSelector == "" {
		cfg.PanelSelector = DefaultPanelSelector
	}
	if cfg.LabelSelector == "" {
		cfg.LabelSelector = DefaultLabelSelector
	}
	return &PostbackSource{client: client, cfg: cfg}
}

// Name implements Source.
func (s *PostbackSource) Name() string { return SourcePostback }

// Scrape posts every area index in turn. Unlike the listing source any fetch failure
// ends the scrape: a gap in the index sequence can't be filled from anywhere else.
func (s *PostbackSource) Scrape(ctx context.Context, collect Collector) error {
	for index := 1; index <= s.cfg.Areas; index++ {
		logger.Info("processing area", logger.Fields{"index": index})

		form := map[string]string{
			"__EVENTTARGET":   s.cfg.EventTarget,
			"__EVENTARGUMENT": strconv.Itoa(index),
		}
		body, err := fetchOK(s.client.PostForm(ctx, s.cfg.URL, form))
		if err != nil {
			return err
		}

		label, dates, err := s.parseResults(body)
		if err != nil {
			return err
		}

		description := strings.ReplaceAll(s.cfg.Description, "{area}", label)
		rec := pickup.NewRecord(strconv.Itoa(index), description, dates, SourcePostback, s.cfg.URL)
		if err := collect.Collect(rec); err != nil {
			return err
		}
	}
	return nil
}

// parseResults reads the area label and the pickup dates from the results panel.
func (s *PostbackSource) parseResults(body []byte) (string, []time.Time, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", nil, structuralError("parsing results", s.cfg.URL, err)
	}

	panel := doc.Find(s.cfg.PanelSelector).First()
	if panel.Length() == 0 {
		return "", nil, structuralError("parsing results", s.cfg.URL,
			fmt.Errorf("results panel %q not found", s.cfg.PanelSelector))
	}

	label := panel.Find(s.cfg.LabelSelector).First()
	if label.Length() == 0 {
		return "", nil, structuralError("parsing results", s.cfg.URL,
			fmt.Errorf("area label %q not found", s.cfg.LabelSelector))
	}

	table := panel.Find("table").First()
	if table.Length() == 0 {
		return "", nil, structuralError("parsing results", s.cfg.URL,
			fmt.Errorf("date table not found"))
	}

	dates := make([]time.Time, 0)
	table.Find("span").Each(func(i int, span *goquery.Selection) {
		dates = append(dates, pickup.ExtractDates(span.Text(), pickup.DateContext{})...)
	})

	return cleanText(label.Text()), dates, nil
}
