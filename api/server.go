// Package api exposes the HTTP surface: subscription management, manual
// refreshes, on-demand content extraction, and health reporting.
package api

import (
	"context"

	"github.com/gin-gonic/gin"

	"rreader/health"
	"rreader/rssfeeds"
	"rreader/types"
)

// FeedStore is the persistence surface the controllers need.
type FeedStore interface {
	CreateFeed(ctx context.Context, userID int64, feedURL string) (*types.Feed, error)
	GetFeedByID(ctx context.Context, id int64) (*types.Feed, error)
	ListFeeds(ctx context.Context) ([]*types.Feed, error)
	SaveFeedHealth(ctx context.Context, feedID int64, status health.Status) error
	GetArticleByID(ctx context.Context, id int64) (*types.Article, error)
	SaveArticleContent(ctx context.Context, articleID int64, content, excerpt string) error
}

// FetchScheduler queues fetch cycles.
type FetchScheduler interface {
	EnqueueFetch(feedID int64, forced bool)
}

// FeedDiscoverer validates and resolves a subscription URL.
type FeedDiscoverer interface {
	Discover(ctx context.Context, rawURL string) (*rssfeeds.ResolvedFeed, error)
}

// ContentExtractor pulls readable content for a single article URL.
type ContentExtractor interface {
	Extract(ctx context.Context, rawURL string) *rssfeeds.Extraction
}

// Dependencies wires the controllers to the rest of the process.
type Dependencies struct {
	Store      FeedStore
	Scheduler  FetchScheduler
	Discoverer FeedDiscoverer
	Extractor  ContentExtractor
}

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	// Minimal middleware: recovery; logger optional to reduce verbosity
	r.Use(gin.Recovery())

	RegisterFeedRoutes(r, deps)
	RegisterArticleRoutes(r, deps)
	RegisterHealthRoutes(r)
	return r
}
