package types

import (
	"time"

	"rreader/health"
)

// Feed represents a single subscription owned by one user. Many users may
// subscribe to the same logical feed; each gets an independent row with its
// own fetch and health state.
type Feed struct {
	ID            int64          `json:"id"`
	UserID        int64          `json:"user_id"`
	Title         string         `json:"title"`
	FeedURL       string         `json:"feed_url"`
	SiteURL       string         `json:"site_url,omitempty"`
	Description   string         `json:"description,omitempty"`
	FaviconURL    string         `json:"favicon_url,omitempty"`
	LastFetchedAt *time.Time     `json:"last_fetched_at"`
	Health        health.Status  `json:"health"`
}

// ParsedFeed is the normalized result of parsing one RSS/Atom document.
// Entries keep the document order of the source.
type ParsedFeed struct {
	FeedURL     string         `json:"feed_url"`
	SiteURL     string         `json:"site_url,omitempty"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	FaviconURL  string         `json:"favicon_url,omitempty"`
	Entries     []*ParsedEntry `json:"entries"`
}

// ParsedEntry is one normalized feed entry. GUID is always non-empty: the
// parser falls back to the entry link, then to a hash of title+date.
// PublishedAt is nil when the source provides neither a created nor a
// modified date; reconciliation substitutes the ingestion time.
type ParsedEntry struct {
	GUID        string     `json:"guid"`
	Title       string     `json:"title"`
	Author      string     `json:"author,omitempty"`
	Content     string     `json:"content,omitempty"`
	Summary     string     `json:"summary,omitempty"`
	URL         string     `json:"url,omitempty"`
	ImageURL    string     `json:"image_url,omitempty"`
	PublishedAt *time.Time `json:"published_at"`
}

// FetchCommand is the payload consumed from the fetch-command topic.
type FetchCommand struct {
	FeedID int64 `json:"feed_id"`
	Forced bool  `json:"forced"`
}
