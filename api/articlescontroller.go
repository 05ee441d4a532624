package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rreader/store"
)

// RegisterArticleRoutes registers article-related routes.
func RegisterArticleRoutes(r *gin.Engine, deps Dependencies) {
	r.POST("/api/articles/:id/extract", func(c *gin.Context) { handleExtractArticle(c, deps) })
}

// handleExtractArticle runs content extraction for one article on demand.
// Extraction runs synchronously: the reader is waiting for the text.
func handleExtractArticle(c *gin.Context, deps Dependencies) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid article id"})
		return
	}

	article, err := deps.Store.GetArticleByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	if article.HasContent() {
		c.JSON(http.StatusOK, gin.H{
			"article_id": article.ID,
			"content":    article.Content,
			"excerpt":    article.Excerpt,
			"cached":     true,
		})
		return
	}

	result := deps.Extractor.Extract(c.Request.Context(), article.URL)
	if result == nil {
		// The page yielded nothing readable; the feed summary is all there is.
		c.JSON(http.StatusOK, gin.H{
			"article_id": article.ID,
			"content":    nil,
			"summary":    article.Summary,
		})
		return
	}

	if err := deps.Store.SaveArticleContent(c.Request.Context(), article.ID, result.Content, result.Excerpt); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"article_id": article.ID,
		"content":    result.Content,
		"excerpt":    result.Excerpt,
	})
}
