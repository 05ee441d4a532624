package rssfeeds

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const minimalFeed = `<?xml version="1.0"?>
<rss version="2.0"><channel><title>T</title></channel></rss>`

func TestDiscoverDirectFeedByContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(minimalFeed))
	}))
	defer srv.Close()

	resolved, err := NewDiscoverer().Discover(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Discover error: %v", err)
	}
	if resolved.FeedURL != srv.URL {
		t.Errorf("feed url = %q; want %q", resolved.FeedURL, srv.URL)
	}
	if resolved.SiteURL != "" {
		t.Errorf("site url = %q; want empty for a direct feed", resolved.SiteURL)
	}
	if resolved.Body != minimalFeed {
		t.Errorf("body = %q", resolved.Body)
	}
}

func TestDiscoverDirectFeedByBodySniff(t *testing.T) {
	// Misconfigured server: XML served as text/html. The body prefix still
	// classifies it as a feed.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("\n  " + minimalFeed))
	}))
	defer srv.Close()

	resolved, err := NewDiscoverer().Discover(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Discover error: %v", err)
	}
	if resolved.FeedURL != srv.URL {
		t.Errorf("feed url = %q", resolved.FeedURL)
	}
}

func TestDiscoverFromHTMLPage(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/blog/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head>
			<link rel="stylesheet" type="text/css" href="/style.css">
			<link rel="alternate" type="application/rss+xml" href="feed.xml">
		</head><body>blog</body></html>`))
	})
	mux.HandleFunc("/blog/feed.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(minimalFeed))
	})

	pageURL := srv.URL + "/blog/"
	resolved, err := NewDiscoverer().Discover(context.Background(), pageURL)
	if err != nil {
		t.Fatalf("Discover error: %v", err)
	}

	if want := srv.URL + "/blog/feed.xml"; resolved.FeedURL != want {
		t.Errorf("feed url = %q; want %q", resolved.FeedURL, want)
	}
	if resolved.SiteURL != pageURL {
		t.Errorf("site url = %q; want the original page %q", resolved.SiteURL, pageURL)
	}
	if resolved.Body != minimalFeed {
		t.Errorf("body = %q", resolved.Body)
	}
}

func TestDiscoverNoFeedFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><head><title>no feeds here</title></head></html>"))
	}))
	defer srv.Close()

	_, err := NewDiscoverer().Discover(context.Background(), srv.URL)
	if !errors.Is(err, ErrNoFeedFound) {
		t.Fatalf("error = %v; want ErrNoFeedFound", err)
	}
}

func TestDiscoverHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewDiscoverer().Discover(context.Background(), srv.URL)

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error = %v; want *FetchError", err)
	}
	if fetchErr.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d; want 404", fetchErr.StatusCode)
	}
}

func TestNormalizeURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"example.com/feed", "https://example.com/feed"},
		{"  example.com  ", "https://example.com"},
		{"http://example.com", "http://example.com"},
		{"HTTPS://example.com", "HTTPS://example.com"},
	}

	for _, c := range cases {
		if got := NormalizeURL(c.in); got != c.want {
			t.Errorf("NormalizeURL(%q) = %q; want %q", c.in, got, c.want)
		}
	}
}

func TestResolveHref(t *testing.T) {
	base := "https://example.com/blog/index.html"

	cases := []struct {
		name string
		href string
		want string
	}{
		{"absolute", "https://other.com/feed.xml", "https://other.com/feed.xml"},
		{"protocol relative", "//cdn.example.com/feed.xml", "https://cdn.example.com/feed.xml"},
		{"absolute path", "/feed.xml", "https://example.com/feed.xml"},
		{"relative path", "feed.xml", "https://example.com/blog/feed.xml"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := resolveHref(c.href, base); got != c.want {
				t.Fatalf("resolveHref(%q, %q) = %q; want %q", c.href, base, got, c.want)
			}
		})
	}
}

func TestLooksLikeFeed(t *testing.T) {
	if !looksLikeFeed("\n\t <?xml version=\"1.0\"?><rss/>") {
		t.Error("left-trimmed xml prolog should classify as feed")
	}
	if !looksLikeFeed("<feed xmlns=\"http://www.w3.org/2005/Atom\">") {
		t.Error("atom root should classify as feed")
	}
	if looksLikeFeed("<html><body>" + strings.Repeat("x", 10) + "</body></html>") {
		t.Error("html should not classify as feed")
	}
}
