package types

import "time"

// Article represents one entry ingested from a feed, deduplicated by GUID
// within that feed. Content stays empty until the content extractor fills it
// in. GUID and PublishedAt are fixed at creation; re-ingestion of the same
// GUID only updates the fetched fields.
type Article struct {
	ID          int64     `json:"id"`
	FeedID      int64     `json:"feed_id"`
	GUID        string    `json:"guid"`
	Title       string    `json:"title"`
	Author      string    `json:"author,omitempty"`
	Content     string    `json:"content,omitempty"`
	Excerpt     string    `json:"excerpt,omitempty"`
	Summary     string    `json:"summary,omitempty"`
	URL         string    `json:"url,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// HasContent reports whether the full body has been extracted yet.
func (a *Article) HasContent() bool {
	return a.Content != ""
}
