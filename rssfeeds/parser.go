package rssfeeds

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"rreader/types"
)

var imgSrcRe = regexp.MustCompile(`(?i)<img[^>]+src=["']([^"']+)["']`)

// Parser normalizes RSS/Atom documents into ParsedFeed records.
type Parser struct {
	fp *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{fp: gofeed.NewParser()}
}

// Parse converts a fetched feed body into normalized entries in document
// order. siteURLHint is the page the feed was discovered from; it fills in
// the site URL when the feed document has no <link> of its own. Returns
// *InvalidFeedError for anything gofeed cannot recognize as RSS or Atom.
func (p *Parser) Parse(body, feedURL, siteURLHint string) (*types.ParsedFeed, error) {
	feed, err := p.fp.ParseString(body)
	if err != nil {
		return nil, &InvalidFeedError{Err: err}
	}

	siteURL := feed.Link
	if siteURL == "" {
		siteURL = siteURLHint
	}

	parsed := &types.ParsedFeed{
		FeedURL:     feedURL,
		SiteURL:     siteURL,
		Title:       feed.Title,
		Description: feed.Description,
		FaviconURL:  deriveFaviconURL(siteURL, feedURL),
		Entries:     make([]*types.ParsedEntry, 0, len(feed.Items)),
	}

	for _, item := range feed.Items {
		parsed.Entries = append(parsed.Entries, normalizeEntry(item))
	}

	return parsed, nil
}

func normalizeEntry(item *gofeed.Item) *types.ParsedEntry {
	var published *time.Time
	if item.PublishedParsed != nil {
		published = item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		published = item.UpdatedParsed
	}

	return &types.ParsedEntry{
		GUID:        entryGUID(item),
		Title:       item.Title,
		Author:      entryAuthor(item),
		Content:     item.Content,
		Summary:     StripHTML(item.Description),
		URL:         item.Link,
		ImageURL:    entryImageURL(item),
		PublishedAt: published,
	}
}

// entryGUID prefers the entry's own id/guid, falls back to its link, and as
// a last resort hashes title+published date so that guid-less entries still
// dedupe deterministically across fetches.
func entryGUID(item *gofeed.Item) string {
	if item.GUID != "" {
		return item.GUID
	}
	if item.Link != "" {
		return item.Link
	}

	published := ""
	if item.PublishedParsed != nil {
		published = item.PublishedParsed.UTC().Format(time.RFC3339)
	}
	return GenerateID(item.Title + "|" + published)
}

func entryAuthor(item *gofeed.Item) string {
	if len(item.Authors) > 0 && item.Authors[0] != nil {
		return item.Authors[0].Name
	}
	if item.Author != nil {
		return item.Author.Name
	}
	return ""
}

// entryImageURL extracts an image in fallback order: first <img> inside the
// entry HTML, then an image enclosure, then media-RSS content/thumbnail.
func entryImageURL(item *gofeed.Item) string {
	html := item.Content
	if html == "" {
		html = item.Description
	}
	if m := imgSrcRe.FindStringSubmatch(html); m != nil {
		return m[1]
	}

	for _, enc := range item.Enclosures {
		if enc != nil && enc.URL != "" && strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}

	return mediaImageURL(item)
}

func mediaImageURL(item *gofeed.Item) string {
	media, ok := item.Extensions["media"]
	if !ok {
		return ""
	}

	for _, content := range media["content"] {
		u := content.Attrs["url"]
		if u == "" {
			continue
		}
		if content.Attrs["medium"] == "image" || strings.HasPrefix(content.Attrs["type"], "image/") {
			return u
		}
	}

	for _, thumb := range media["thumbnail"] {
		if u := thumb.Attrs["url"]; u != "" {
			return u
		}
	}

	return ""
}

// deriveFaviconURL builds scheme://host/favicon.ico from the site link,
// falling back to the feed URL. This is a cheap placeholder; the favicon
// resolver owns the final value.
func deriveFaviconURL(siteURL, feedURL string) string {
	source := siteURL
	if source == "" {
		source = feedURL
	}

	u, err := url.Parse(source)
	if err != nil || u.Host == "" {
		return ""
	}

	scheme := u.Scheme
	if scheme == "" {
		scheme = "https"
	}
	return scheme + "://" + u.Host + "/favicon.ico"
}
