package rssfeeds

import (
	"errors"
	"testing"
	"time"
)

const rssSample = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"
     xmlns:content="http://purl.org/rss/1.0/modules/content/"
     xmlns:dc="http://purl.org/dc/elements/1.1/"
     xmlns:media="http://search.yahoo.com/mrss/">
<channel>
  <title>Example News</title>
  <link>https://news.example.com</link>
  <description>All the example news</description>
  <item>
    <guid>tag:news.example.com,2026:1</guid>
    <title>First story</title>
    <link>https://news.example.com/stories/1</link>
    <dc:creator>Alice</dc:creator>
    <description><![CDATA[<p>Breaking <b>news</b> &amp; analysis</p>]]></description>
    <content:encoded><![CDATA[<p>Full body with <img src="https://img.example.com/a.jpg"> inline</p>]]></content:encoded>
    <pubDate>Mon, 02 Mar 2026 10:00:00 GMT</pubDate>
  </item>
  <item>
    <title>Second story</title>
    <link>https://news.example.com/stories/2</link>
    <description>Plain summary</description>
    <enclosure url="https://img.example.com/b.png" length="1234" type="image/png"/>
  </item>
  <item>
    <title>Orphan story</title>
    <description>No id and no link</description>
    <media:thumbnail url="https://img.example.com/c.jpg"/>
  </item>
</channel>
</rss>`

const atomSample = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Example Blog</title>
  <entry>
    <id>urn:uuid:1225c695-cfb8-4ebb-aaaa-80da344efa6a</id>
    <title>Atom entry</title>
    <link href="https://blog.example.com/posts/atom-entry"/>
    <updated>2026-03-02T10:00:00Z</updated>
    <summary>Short summary</summary>
  </entry>
</feed>`

func TestParseRSS(t *testing.T) {
	p := NewParser()

	parsed, err := p.Parse(rssSample, "https://news.example.com/rss.xml", "")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if parsed.Title != "Example News" {
		t.Errorf("feed title = %q", parsed.Title)
	}
	if parsed.SiteURL != "https://news.example.com" {
		t.Errorf("site url = %q", parsed.SiteURL)
	}
	if parsed.FaviconURL != "https://news.example.com/favicon.ico" {
		t.Errorf("favicon url = %q", parsed.FaviconURL)
	}
	if len(parsed.Entries) != 3 {
		t.Fatalf("entries = %d; want 3", len(parsed.Entries))
	}

	first := parsed.Entries[0]
	if first.GUID != "tag:news.example.com,2026:1" {
		t.Errorf("first guid = %q; want the explicit guid", first.GUID)
	}
	if first.Author != "Alice" {
		t.Errorf("first author = %q", first.Author)
	}
	if first.Summary != "Breaking news & analysis" {
		t.Errorf("first summary = %q; want stripped plain text", first.Summary)
	}
	if first.ImageURL != "https://img.example.com/a.jpg" {
		t.Errorf("first image = %q; want the inline img src", first.ImageURL)
	}
	want := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	if first.PublishedAt == nil || !first.PublishedAt.Equal(want) {
		t.Errorf("first published = %v; want %v", first.PublishedAt, want)
	}

	second := parsed.Entries[1]
	if second.GUID != "https://news.example.com/stories/2" {
		t.Errorf("second guid = %q; want fallback to the entry link", second.GUID)
	}
	if second.ImageURL != "https://img.example.com/b.png" {
		t.Errorf("second image = %q; want the image enclosure", second.ImageURL)
	}
	if second.PublishedAt != nil {
		t.Errorf("second published = %v; want nil", second.PublishedAt)
	}

	third := parsed.Entries[2]
	if third.GUID == "" {
		t.Error("third guid is empty; guid-less entries must still get one")
	}
	if third.ImageURL != "https://img.example.com/c.jpg" {
		t.Errorf("third image = %q; want the media thumbnail", third.ImageURL)
	}
}

// An entry with neither id nor link must hash to the same guid on every
// parse, otherwise dedupe breaks for guid-less feeds.
func TestParseGUIDFallbackIsDeterministic(t *testing.T) {
	p := NewParser()

	a, err := p.Parse(rssSample, "https://news.example.com/rss.xml", "")
	if err != nil {
		t.Fatalf("first parse: %v", err)
	}
	b, err := p.Parse(rssSample, "https://news.example.com/rss.xml", "")
	if err != nil {
		t.Fatalf("second parse: %v", err)
	}

	g1, g2 := a.Entries[2].GUID, b.Entries[2].GUID
	if g1 == "" || g1 != g2 {
		t.Fatalf("fallback guid not stable: %q vs %q", g1, g2)
	}
}

func TestParseAtomUsesHintAndUpdatedDate(t *testing.T) {
	p := NewParser()

	parsed, err := p.Parse(atomSample, "https://blog.example.com/atom.xml", "https://blog.example.com")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	// Feed document has no link; the discovery hint fills in the site URL.
	if parsed.SiteURL != "https://blog.example.com" {
		t.Errorf("site url = %q; want the hint", parsed.SiteURL)
	}
	if parsed.FaviconURL != "https://blog.example.com/favicon.ico" {
		t.Errorf("favicon url = %q", parsed.FaviconURL)
	}

	entry := parsed.Entries[0]
	if entry.GUID != "urn:uuid:1225c695-cfb8-4ebb-aaaa-80da344efa6a" {
		t.Errorf("guid = %q", entry.GUID)
	}
	want := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	if entry.PublishedAt == nil || !entry.PublishedAt.Equal(want) {
		t.Errorf("published = %v; want the modified date %v", entry.PublishedAt, want)
	}
}

func TestParseInvalidBody(t *testing.T) {
	p := NewParser()

	for _, body := range []string{"<not-xml>", "", "<html><body>nope</body></html>"} {
		_, err := p.Parse(body, "https://example.com/feed", "")

		var invalid *InvalidFeedError
		if !errors.As(err, &invalid) {
			t.Errorf("Parse(%q) error = %v; want *InvalidFeedError", body, err)
		}
	}
}

func TestStripHTML(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"<p>Hello <b>world</b></p>", "Hello world"},
		{"plain", "plain"},
		{"  <div>\n</div>  ", ""},
		{"a &amp; b", "a & b"},
		{"", ""},
	}

	for _, c := range cases {
		if got := StripHTML(c.in); got != c.want {
			t.Errorf("StripHTML(%q) = %q; want %q", c.in, got, c.want)
		}
	}
}
