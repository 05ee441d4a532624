package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rreader/health"
	"rreader/rssfeeds"
	"rreader/store"
	"rreader/types"
)

// RegisterFeedRoutes registers subscription and feed-health endpoints.
func RegisterFeedRoutes(r *gin.Engine, deps Dependencies) {
	g := r.Group("/api/feeds")
	g.POST("", func(c *gin.Context) { handleSubscribe(c, deps) })
	g.GET("", func(c *gin.Context) { handleListFeeds(c, deps) })
	g.GET("/:id/health", func(c *gin.Context) { handleFeedHealth(c, deps) })
	g.POST("/:id/refresh", func(c *gin.Context) { handleRefreshFeed(c, deps) })
	g.POST("/:id/enable", func(c *gin.Context) { handleEnableFeed(c, deps) })
}

type subscribeRequest struct {
	URL    string `json:"url" binding:"required"`
	UserID int64  `json:"user_id"`
}

// handleSubscribe validates the URL by running discovery synchronously, so
// the caller learns immediately whether the site has a feed. The first
// content fetch happens asynchronously afterwards.
func handleSubscribe(c *gin.Context, deps Dependencies) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.UserID == 0 {
		req.UserID = 1
	}

	resolved, err := deps.Discoverer.Discover(c.Request.Context(), rssfeeds.NormalizeURL(req.URL))
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, rssfeeds.ErrNoFeedFound) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	feed, err := deps.Store.CreateFeed(c.Request.Context(), req.UserID, resolved.FeedURL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	deps.Scheduler.EnqueueFetch(feed.ID, true)
	c.JSON(http.StatusCreated, feed)
}

func handleListFeeds(c *gin.Context, deps Dependencies) {
	feeds, err := deps.Store.ListFeeds(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"feeds": feeds})
}

func handleFeedHealth(c *gin.Context, deps Dependencies) {
	feed, ok := loadFeed(c, deps)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"feed_id":  feed.ID,
		"disabled": feed.Health.Disabled(),
		"health":   feed.Health,
	})
}

// handleRefreshFeed queues a forced fetch and returns 202 immediately.
func handleRefreshFeed(c *gin.Context, deps Dependencies) {
	feed, ok := loadFeed(c, deps)
	if !ok {
		return
	}

	deps.Scheduler.EnqueueFetch(feed.ID, true)
	c.JSON(http.StatusAccepted, gin.H{"status": "refresh started"})
}

// handleEnableFeed clears failure state on a disabled feed and queues a
// forced fetch to confirm the feed is alive again.
func handleEnableFeed(c *gin.Context, deps Dependencies) {
	feed, ok := loadFeed(c, deps)
	if !ok {
		return
	}

	if err := deps.Store.SaveFeedHealth(c.Request.Context(), feed.ID, health.RecordSuccess(feed.Health)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	deps.Scheduler.EnqueueFetch(feed.ID, true)
	c.JSON(http.StatusOK, gin.H{"status": "enabled"})
}

func loadFeed(c *gin.Context, deps Dependencies) (feed *types.Feed, ok bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid feed id"})
		return nil, false
	}

	feed, err = deps.Store.GetFeedByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "feed not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return nil, false
	}

	return feed, true
}
