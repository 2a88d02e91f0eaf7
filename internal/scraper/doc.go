// Package scraper fetches Gelber Sack pickup schedules from the upstream sources and
// turns them into pickup records.
//
// Three sources implement the Source interface:
//
//   - ListingSource searches the waste collector's calendar by postcode and follows the
//     per-street detail links of the result table. It also writes a catalog of the
//     streets found for each postcode.
//   - PostbackSource drives an ASP.NET results panel by re-posting the same form with an
//     increasing area index.
//   - PDFSource reads the yearly schedule document, one area per text line.
//
// All network access goes through Client, which rate-limits requests so that the run
// never hammers the upstream servers. Failures are reported as *Error values whose Kind
// tells the caller whether to skip an item, switch sources, or stop.
package scraper
