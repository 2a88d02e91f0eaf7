package scraper

import (
	"errors"
	"fmt"
)

// Kind classifies scrape failures by how the caller should react.
type Kind int

const (
	// KindUnknown is any error that did not come from this package.
	KindUnknown Kind = iota
	// KindTransientFetch is a network, TLS or HTTP status failure on a single fetch.
	KindTransientFetch
	// KindStructural means expected markup is missing: the upstream page changed shape.
	KindStructural
	// KindDataIntegrity means the extracted data can't be mapped to areas reliably.
	KindDataIntegrity
)

func (k Kind) String() string {
	switch k {
	case KindTransientFetch:
		return "transient fetch"
	case KindStructural:
		return "structural"
	case KindDataIntegrity:
		return "data integrity"
	default:
		return "unknown"
	}
}

// Error is a classified scrape failure.
type Error struct {
	Kind Kind
	Op   string
	URL  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Op
	if e.URL != "" {
		msg = fmt.Sprintf("%s %s", msg, e.URL)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func transientError(op, url string, err error) *Error {
	return &Error{Kind: KindTransientFetch, Op: op, URL: url, Err: err}
}

func structuralError(op, url string, err error) *Error {
	return &Error{Kind: KindStructural, Op: op, URL: url, Err: err}
}

// IntegrityError reports extracted data that can't be trusted.
func IntegrityError(op string, err error) *Error {
	return &Error{Kind: KindDataIntegrity, Op: op, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}

// IsTransient reports whether err is a single-fetch failure.
func IsTransient(err error) bool { return KindOf(err) == KindTransientFetch }

// IsStructural reports whether err signals a changed upstream layout.
func IsStructural(err error) bool { return KindOf(err) == KindStructural }

// IsIntegrity reports whether err signals untrustworthy data.
func IsIntegrity(err error) bool { return KindOf(err) == KindDataIntegrity }
