package ingest

import (
	"context"
	"log"
	"sync"

	"rreader/rssfeeds"
	"rreader/types"
)

const extractBatchSize = 50

// ContentStore is the persistence surface of the extraction pool.
type ContentStore interface {
	ListArticlesMissingContent(ctx context.Context, limit int) ([]*types.Article, error)
	SaveArticleContent(ctx context.Context, articleID int64, content, excerpt string) error
}

// Extractor pulls readable content for an article URL. A nil result means
// the page yielded nothing usable; that is not an error.
type Extractor interface {
	Extract(ctx context.Context, rawURL string) *rssfeeds.Extraction
}

// Archiver stores a copy of extracted content outside the database.
type Archiver interface {
	ArchiveArticle(ctx context.Context, a *types.Article) error
}

// ExtractPool backfills full content for articles that were ingested with
// only feed-provided summaries.
type ExtractPool struct {
	store     ContentStore
	extractor Extractor
	archiver  Archiver // optional
	workers   int
}

func NewExtractPool(store ContentStore, extractor Extractor, archiver Archiver, workers int) *ExtractPool {
	if workers <= 0 {
		workers = DefaultWorkerCount
	}
	return &ExtractPool{store: store, extractor: extractor, archiver: archiver, workers: workers}
}

// RunBatch extracts content for up to extractBatchSize pending articles
// using a worker pool. Returns how many articles gained content.
func (p *ExtractPool) RunBatch(ctx context.Context) (int, error) {
	articles, err := p.store.ListArticlesMissingContent(ctx, extractBatchSize)
	if err != nil {
		return 0, err
	}
	if len(articles) == 0 {
		return 0, nil
	}

	var wg sync.WaitGroup
	articleChan := make(chan *types.Article, len(articles))

	var mu sync.Mutex
	extracted := 0

	for i := 0; i < p.workers; i++ {
		go func(workerID int) {
			for article := range articleChan {
				if p.processArticle(ctx, article) {
					mu.Lock()
					extracted++
					mu.Unlock()
				} else {
					log.Printf("[Worker %d] No content extracted for %s", workerID, article.URL)
				}
				wg.Done()
			}
		}(i)
	}

	for _, article := range articles {
		wg.Add(1)
		articleChan <- article
	}

	wg.Wait()
	close(articleChan)

	log.Printf("Content extraction: %d/%d articles populated", extracted, len(articles))
	return extracted, nil
}

func (p *ExtractPool) processArticle(ctx context.Context, article *types.Article) bool {
	if article.URL == "" {
		return false
	}

	result := p.extractor.Extract(ctx, article.URL)
	if result == nil {
		return false
	}

	if err := p.store.SaveArticleContent(ctx, article.ID, result.Content, result.Excerpt); err != nil {
		log.Printf("Article %d: saving content failed: %v", article.ID, err)
		return false
	}
	article.Content = result.Content
	article.Excerpt = result.Excerpt

	if p.archiver != nil {
		if err := p.archiver.ArchiveArticle(ctx, article); err != nil {
			log.Printf("Article %d: archive upload failed: %v", article.ID, err)
		}
	}

	return true
}
