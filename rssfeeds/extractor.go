package rssfeeds

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

const (
	extractTimeout = 10 * time.Second
	waybackTimeout = 15 * time.Second

	// WaybackAvailabilityURL is the archive.org closest-snapshot endpoint.
	WaybackAvailabilityURL = "https://archive.org/wayback/available"
)

// Snapshot replay URLs embed the capture timestamp as /web/<ts>/; adding the
// id_ modifier requests the raw capture without the Wayback toolbar.
var waybackReplayRe = regexp.MustCompile(`/web/(\d+)/`)

// Extraction is the readable body pulled out of a page.
type Extraction struct {
	Content string `json:"content"`
	Excerpt string `json:"excerpt,omitempty"`
}

// Extractor fetches an article URL and isolates its readable content,
// falling back to the closest Wayback Machine snapshot when the live page
// is unreachable. Extraction failure is an expected outcome, not an error:
// Extract returns nil and callers proceed without content.
type Extractor struct {
	client          *http.Client
	availabilityURL string
}

func NewExtractor() *Extractor {
	return &Extractor{
		client:          &http.Client{},
		availabilityURL: WaybackAvailabilityURL,
	}
}

// Extract returns the readable content and excerpt of the page at rawURL,
// or nil when neither the live page nor an archived snapshot yields usable
// text.
func (e *Extractor) Extract(ctx context.Context, rawURL string) *Extraction {
	body := e.get(ctx, rawURL, extractTimeout)

	if body == "" {
		body = e.fetchFromWayback(ctx, rawURL)
	}

	if body == "" {
		return nil
	}

	return extractReadable(body, rawURL)
}

// get returns the response body, or "" on any transport error, non-2xx
// status, or empty body. The distinction does not matter here: every
// failure mode means "try the archive instead".
func (e *Extractor) get(ctx context.Context, target string, timeout time.Duration) string {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ""
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return ""
	}
	return string(raw)
}

func (e *Extractor) fetchFromWayback(ctx context.Context, rawURL string) string {
	availURL := e.availabilityURL + "?url=" + url.QueryEscape(rawURL)

	body := e.get(ctx, availURL, waybackTimeout)
	if body == "" {
		return ""
	}

	var avail struct {
		ArchivedSnapshots struct {
			Closest *struct {
				Available bool   `json:"available"`
				URL       string `json:"url"`
			} `json:"closest"`
		} `json:"archived_snapshots"`
	}
	if err := json.Unmarshal([]byte(body), &avail); err != nil {
		return ""
	}

	closest := avail.ArchivedSnapshots.Closest
	if closest == nil || !closest.Available || closest.URL == "" {
		return ""
	}

	snapshotURL := waybackReplayRe.ReplaceAllString(closest.URL, "/web/${1}id_/")
	log.Printf("Falling back to Wayback snapshot for %s", rawURL)

	return e.get(ctx, snapshotURL, waybackTimeout)
}

// extractReadable runs readability over the HTML and rejects results whose
// stripped text is empty, which filters out paywall stubs and empty shells.
func extractReadable(html, pageURL string) *Extraction {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	article, err := readability.FromReader(strings.NewReader(html), u)
	if err != nil {
		return nil
	}

	if StripHTML(article.Content) == "" {
		return nil
	}

	return &Extraction{Content: article.Content, Excerpt: article.Excerpt}
}
