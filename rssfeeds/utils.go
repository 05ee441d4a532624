package rssfeeds

import (
	"crypto/sha256"
	"encoding/hex"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var stripPolicy = bluemonday.StrictPolicy()

// GenerateID creates a short, stable ID by hashing the provided string input
func GenerateID(input string) string {
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])[:16]
}

// StripHTML removes all markup from an HTML fragment and returns trimmed
// plain text with entities decoded.
func StripHTML(fragment string) string {
	if fragment == "" {
		return ""
	}
	text := stripPolicy.Sanitize(fragment)
	return strings.TrimSpace(html.UnescapeString(text))
}
