// Package cli implements the gsack command.
//
// The root command loads the configuration, lets flags override it, scrapes the
// configured source (falling back to the PDF schedule where configured) and writes one
// calendar per record. A summary is printed as text or JSON; logs go to stderr.
package cli
