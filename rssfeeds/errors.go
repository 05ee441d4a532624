package rssfeeds

import (
	"errors"
	"fmt"
)

// ErrNoFeedFound is returned by the discoverer when a URL serves plain HTML
// with no RSS or Atom link tags.
var ErrNoFeedFound = errors.New("no RSS or Atom feed found at this URL")

// FetchError reports a network or HTTP failure reaching a URL. StatusCode is
// zero when the request never produced a response.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// InvalidFeedError reports a body that could not be parsed as RSS or Atom.
type InvalidFeedError struct {
	Err error
}

func (e *InvalidFeedError) Error() string {
	return fmt.Sprintf("not a valid RSS or Atom feed: %v", e.Err)
}

func (e *InvalidFeedError) Unwrap() error { return e.Err }
