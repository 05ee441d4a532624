package rssfeeds

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// UserAgent is sent on every outbound request.
const UserAgent = "RReader/1.0"

// DiscoverTimeout bounds each discovery GET, including the second request
// against a discovered feed link.
const DiscoverTimeout = 15 * time.Second

var schemeRe = regexp.MustCompile(`(?i)^https?://`)

// Feed MIME types recognized in <link type="..."> during auto-discovery.
var feedLinkTypes = []string{
	"application/rss+xml",
	"application/atom+xml",
	"application/xml",
	"text/xml",
}

// ResolvedFeed is the outcome of discovery: the machine-readable feed URL,
// its raw body, and (when the input was an HTML page) the page URL as a
// site-URL hint for the parser.
type ResolvedFeed struct {
	FeedURL string
	SiteURL string
	Body    string
}

// Discoverer resolves an arbitrary URL to an actual feed. Direct feed URLs
// are detected by content type or body sniffing; HTML pages are scanned for
// feed link tags.
type Discoverer struct {
	client *http.Client
}

func NewDiscoverer() *Discoverer {
	return &Discoverer{
		client: &http.Client{Timeout: DiscoverTimeout},
	}
}

// Discover fetches url and returns the feed it leads to. Errors are
// *FetchError for network/HTTP failures and ErrNoFeedFound when the page
// carries no feed link. No writes, no retries.
func (d *Discoverer) Discover(ctx context.Context, rawURL string) (*ResolvedFeed, error) {
	pageURL := NormalizeURL(rawURL)

	body, contentType, err := d.get(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	if isFeedContentType(contentType) || looksLikeFeed(body) {
		return &ResolvedFeed{FeedURL: pageURL, Body: body}, nil
	}

	feedURL := discoverFeedLink(body, pageURL)
	if feedURL == "" {
		return nil, ErrNoFeedFound
	}

	feedBody, _, err := d.get(ctx, feedURL)
	if err != nil {
		return nil, err
	}

	return &ResolvedFeed{FeedURL: feedURL, SiteURL: pageURL, Body: feedBody}, nil
}

// NormalizeURL trims whitespace and defaults the scheme to https.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if !schemeRe.MatchString(raw) {
		raw = "https://" + raw
	}
	return raw
}

func (d *Discoverer) get(ctx context.Context, target string) (body, contentType string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", "", &FetchError{URL: target, Err: err}
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return "", "", &FetchError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", "", &FetchError{URL: target, StatusCode: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", &FetchError{URL: target, Err: fmt.Errorf("read body: %w", err)}
	}

	return string(raw), resp.Header.Get("Content-Type"), nil
}

func isFeedContentType(contentType string) bool {
	return strings.Contains(contentType, "xml") ||
		strings.Contains(contentType, "rss") ||
		strings.Contains(contentType, "atom")
}

func looksLikeFeed(body string) bool {
	trimmed := strings.TrimLeft(body, " \t\r\n")
	return strings.HasPrefix(trimmed, "<?xml") ||
		strings.HasPrefix(trimmed, "<rss") ||
		strings.HasPrefix(trimmed, "<feed")
}

// discoverFeedLink scans an HTML page for the first <link> tag carrying a
// feed MIME type and resolves its href against the page URL.
func discoverFeedLink(htmlBody, pageURL string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return ""
	}

	var found string
	doc.Find("link[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		linkType := strings.ToLower(strings.TrimSpace(sel.AttrOr("type", "")))
		for _, t := range feedLinkTypes {
			if linkType == t {
				found = resolveHref(sel.AttrOr("href", ""), pageURL)
				return found == ""
			}
		}
		return true
	})

	return found
}

// resolveHref makes href absolute against base: absolute URLs pass through,
// protocol-relative hrefs inherit the base scheme, absolute paths replace
// the base path, relative paths resolve against its directory.
func resolveHref(href, base string) string {
	if href == "" {
		return ""
	}
	if schemeRe.MatchString(href) {
		return href
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}

	return baseURL.ResolveReference(ref).String()
}
