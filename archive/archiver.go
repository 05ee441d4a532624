package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"

	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"rreader/types"
)

var imgTagRe = regexp.MustCompile(`(?i)<img\b[^>]*>`)

// objectStore is the slice of the S3 wrapper the archiver needs.
type objectStore interface {
	Put(ctx context.Context, bucket, key string, body io.Reader, contentType string, cacheControl string, acl s3types.ObjectCannedACL) error
	Exists(ctx context.Context, bucket, key string) (bool, error)
}

// Archiver writes one JSON object per archived article under
// <prefix>articles/<id>.json.
type Archiver struct {
	objects objectStore
	bucket  string
	prefix  string
}

func NewArchiver(objects objectStore, bucket, prefix string) *Archiver {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Archiver{objects: objects, bucket: bucket, prefix: prefix}
}

// ArchiveArticle uploads a sanitized record of the article. Inline images
// are stripped: the archive is a text-preservation copy, not a mirror.
// Articles already present in the bucket are left alone, so a re-extraction
// pass does not rewrite existing archive objects.
func (a *Archiver) ArchiveArticle(ctx context.Context, article *types.Article) error {
	if article == nil {
		return nil
	}

	key := fmt.Sprintf("%sarticles/%d.json", a.prefix, article.ID)
	if exists, err := a.objects.Exists(ctx, a.bucket, key); err == nil && exists {
		return nil
	}

	payload := map[string]interface{}{
		"id":           article.ID,
		"feed_id":      article.FeedID,
		"guid":         article.GUID,
		"title":        article.Title,
		"author":       article.Author,
		"url":          article.URL,
		"published_at": article.PublishedAt,
		"summary":      article.Summary,
		"excerpt":      article.Excerpt,
		"content":      stripImagesFromHTML(article.Content),
	}

	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}

	return a.objects.Put(ctx, a.bucket, key, bytes.NewReader(b), "application/json", "", "")
}

func stripImagesFromHTML(html string) string {
	if strings.TrimSpace(html) == "" {
		return html
	}
	return imgTagRe.ReplaceAllString(html, "")
}
