package archive

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"rreader/types"
)

type fakeObjectStore struct {
	objects map[string]string
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string]string)}
}

func (f *fakeObjectStore) Put(ctx context.Context, bucket, key string, body io.Reader, contentType, cacheControl string, acl s3types.ObjectCannedACL) error {
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.objects[bucket+"/"+key] = string(b)
	return nil
}

func (f *fakeObjectStore) Exists(ctx context.Context, bucket, key string) (bool, error) {
	_, ok := f.objects[bucket+"/"+key]
	return ok, nil
}

func TestArchiveArticleStripsImagesFromPayload(t *testing.T) {
	objects := newFakeObjectStore()
	a := NewArchiver(objects, "bucket", "rreader")

	article := &types.Article{
		ID:      42,
		FeedID:  7,
		GUID:    "guid-a",
		Title:   "First story",
		Content: `<p>before</p><img src="hero.png"><p>after</p>`,
	}
	if err := a.ArchiveArticle(context.Background(), article); err != nil {
		t.Fatalf("ArchiveArticle returned error: %v", err)
	}

	raw, ok := objects.objects["bucket/rreader/articles/42.json"]
	if !ok {
		t.Fatalf("object not written; store holds %v", objects.objects)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("archived object is not JSON: %v", err)
	}
	content, _ := payload["content"].(string)
	if strings.Contains(content, "<img") {
		t.Errorf("archived content still carries images: %q", content)
	}
	if !strings.Contains(content, "<p>before</p>") || !strings.Contains(content, "<p>after</p>") {
		t.Errorf("archived content lost text around the image: %q", content)
	}
}

func TestArchiveArticleSkipsExistingObjects(t *testing.T) {
	objects := newFakeObjectStore()
	objects.objects["bucket/articles/42.json"] = `{"content":"original"}`
	a := NewArchiver(objects, "bucket", "")

	article := &types.Article{ID: 42, Content: "<p>re-extracted</p>"}
	if err := a.ArchiveArticle(context.Background(), article); err != nil {
		t.Fatalf("ArchiveArticle returned error: %v", err)
	}

	if got := objects.objects["bucket/articles/42.json"]; got != `{"content":"original"}` {
		t.Errorf("existing archive object was rewritten: %q", got)
	}
}

func TestStripImagesFromHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no images", "<p>hello</p>", "<p>hello</p>"},
		{"self closing", `<p>a</p><img src="x.png"/><p>b</p>`, "<p>a</p><p>b</p>"},
		{"with attributes", `<IMG class="hero" src="x.png" alt="x"><p>b</p>`, "<p>b</p>"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripImagesFromHTML(tt.in); got != tt.want {
				t.Errorf("stripImagesFromHTML(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewArchiverNormalizesPrefix(t *testing.T) {
	a := NewArchiver(nil, "bucket", "rreader")
	if a.prefix != "rreader/" {
		t.Errorf("prefix = %q, want trailing slash", a.prefix)
	}

	b := NewArchiver(nil, "bucket", "")
	if b.prefix != "" {
		t.Errorf("empty prefix became %q", b.prefix)
	}
}
