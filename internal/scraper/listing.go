package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/pfrederiksen/gsack/internal/logger"
	"github.com/pfrederiksen/gsack/internal/pickup"
)

const (
	DefaultSearchURL = "https://www.sita-deutschland.de/loesungen/privathaushalte/abfuhrkalender/stuttgart.html?plz={postcode}"
	DefaultBaseURL   = "https://www.sita-deutschland.de/"

	progressEvery = 100
)

// ListingConfig describes the postcode search form.
type ListingConfig struct {
	// SearchURL is the result page URL; {postcode} is replaced per postcode.
	SearchURL string
	// BaseURL resolves the relative detail links of the result table.
	BaseURL   string
	Postcodes []string
}

// CatalogEntry is one row of a postcode's search result.
type CatalogEntry struct {
	ID              string `json:"id"`
	Link            string `json:"link"`
	Street          string `json:"street"`
	Info            string `json:"info"`
	ReferenceNumber string `json:"reference_number"`
}

// CatalogSink stores the street catalog of a postcode.
type CatalogSink interface {
	SaveCatalog(postcode string, entries []CatalogEntry) error
}

// ListingSource scrapes the postcode search form and its detail pages.
type ListingSource struct {
	client  Client
	cfg     ListingConfig
	catalog CatalogSink
}

// NewListingSource creates a ListingSource. catalog may be nil.
func NewListingSource(client Client, cfg ListingConfig, catalog CatalogSink) *ListingSource {
	if cfg.SearchURL == "" {
		cfg.SearchURL = DefaultSearchURL
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &ListingSource{
		client:  client,
		cfg:     cfg,
		catalog: catalog,
	}
}

// Name implements Source.
func (s *ListingSource) Name() string { return SourceListing }

// Scrape collects the links of all postcodes first and then visits each detail page.
// A postcode or detail page that can't be fetched is skipped.
func (s *ListingSource) Scrape(ctx context.Context, collect Collector) error {
	var links []CatalogEntry
	for _, postcode := range s.cfg.Postcodes {
		logger.Info("scraping links for postcode", logger.Fields{"postcode": postcode})

		entries, err := s.searchPostcode(ctx, postcode)
		if err != nil {
			if IsTransient(err) {
				logger.Error("skipping postcode", logger.Fields{"postcode": postcode}, err)
				logger.IncrCounter("fetch.skipped")
				continue
			}
			return err
		}

		if s.catalog != nil {
			if err := s.catalog.SaveCatalog(postcode, entries); err != nil {
				return fmt.Errorf("saving catalog for %s: %w", postcode, err)
			}
		}
		links = append(links, entries...)
	}

	for i, entry := range links {
		if (i+1)%progressEvery == 0 {
			logger.Info("calendar pages scraped", logger.Fields{"done": i + 1, "total": len(links)})
		}

		if err := collect.Claim(entry.ID); err != nil {
			return err
		}

		rec, err := s.scrapeDetail(ctx, entry)
		if err != nil {
			if IsTransient(err) {
				logger.Error("skipping calendar page", logger.Fields{"id": entry.ID}, err)
				logger.IncrCounter("fetch.skipped")
				continue
			}
			return err
		}

		if err := collect.Collect(rec); err != nil {
			return err
		}
	}

	return nil
}

func (s *ListingSource) searchPostcode(ctx context.Context, postcode string) ([]CatalogEntry, error) {
	searchURL := strings.ReplaceAll(s.cfg.SearchURL, "{postcode}", url.QueryEscape(postcode))

	body, err := fetchOK(s.client.Get(ctx, searchURL))
	if err != nil {
		return nil, err
	}

	return parseSearchResults(body, searchURL)
}

// parseSearchResults reads the result table. A page without a table body means the
// search form changed.
func parseSearchResults(body []byte, pageURL string) ([]CatalogEntry, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, structuralError("parsing search results", pageURL, err)
	}

	tbody := doc.Find("tbody").First()
	if tbody.Length() == 0 {
		return nil, structuralError("parsing search results", pageURL, fmt.Errorf("result table body not found"))
	}

	entries := make([]CatalogEntry, 0)
	tbody.Find("tr").Each(func(i int, row *goquery.Selection) {
		streetCell := row.Find("td.cols2").First()
		href, ok := streetCell.Find("a").First().Attr("href")
		if !ok {
			return
		}

		uid := uidFromLink(href)
		if uid == "" {
			logger.Warn("result link without uid", logger.Fields{"link": href, "page": pageURL})
			return
		}

		entries = append(entries, CatalogEntry{
			ID:              uid,
			Link:            href,
			Street:          cleanText(streetCell.Text()),
			Info:            strings.Join(ownText(row.Find("td.cols4").First()), ", "),
			ReferenceNumber: cleanText(row.Find("td.cols5").First().Text()),
		})
	})

	return entries, nil
}

func (s *ListingSource) scrapeDetail(ctx context.Context, entry CatalogEntry) (pickup.Record, error) {
	detailURL, err := resolveLink(s.cfg.BaseURL, entry.Link)
	if err != nil {
		return pickup.Record{}, transientError("resolving link", entry.Link, err)
	}

	body, err := fetchOK(s.client.Get(ctx, detailURL))
	if err != nil {
		return pickup.Record{}, err
	}

	description, dates, err := parseDetailPage(body)
	if err != nil {
		return pickup.Record{}, structuralError("parsing calendar page", detailURL, err)
	}

	return pickup.NewRecord(entry.ID, description, dates, SourceListing, detailURL), nil
}

// parseDetailPage returns the raw description and every date found in the listing
// table cells. A page without the table yields no dates.
func parseDetailPage(body []byte) (string, []time.Time, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", nil, err
	}

	var desc []string
	doc.Find("div.table p").Each(func(i int, p *goquery.Selection) {
		if text := cleanText(p.Text()); text != "" {
			desc = append(desc, text)
		}
	})

	dates := make([]time.Time, 0)
	doc.Find("table.listing td").Each(func(i int, cell *goquery.Selection) {
		dates = append(dates, pickup.ExtractDates(cell.Text(), pickup.DateContext{})...)
	})

	return strings.Join(desc, " "), dates, nil
}

func uidFromLink(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return u.Query().Get("uid")
}

func resolveLink(base, href string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(ref).String(), nil
}

// ownText returns the non-empty text nodes that are direct children of sel, skipping
// text inside nested elements.
func ownText(sel *goquery.Selection) []string {
	var parts []string
	sel.Contents().Each(func(i int, c *goquery.Selection) {
		for _, n := range c.Nodes {
			if n.Type != html.TextNode {
				continue
			}
			if text := cleanText(n.Data); text != "" {
				parts = append(parts, text)
			}
		}
	})
	return parts
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
