// Package ingest orchestrates per-feed fetch cycles: discovery, parsing,
// reconciliation into the article store, and health bookkeeping.
package ingest

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"rreader/health"
	"rreader/rssfeeds"
	"rreader/store"
	"rreader/types"
)

const (
	// DefaultWorkerCount bounds concurrent fetch cycles.
	DefaultWorkerCount = 5

	// FirstFetchLimit caps how many entries a brand-new subscription ingests
	// on its first successful cycle, in document order.
	FirstFetchLimit = 10

	queueSize = 256
)

// Store is the persistence surface a fetch cycle consumes.
type Store interface {
	GetFeedByID(ctx context.Context, id int64) (*types.Feed, error)
	ListActiveFeedIDs(ctx context.Context) ([]int64, error)
	UpdateFeedAfterFetch(ctx context.Context, feedID int64, meta store.FeedMetadata, fetchedAt time.Time) error
	SaveFeedHealth(ctx context.Context, feedID int64, status health.Status) error
	ArticleGUIDIndex(ctx context.Context, feedID int64) (map[string]int64, error)
	InsertArticle(ctx context.Context, a *types.Article) error
	UpdateArticle(ctx context.Context, articleID int64, entry *types.ParsedEntry) error
}

// Discoverer resolves a subscription URL to a feed document.
type Discoverer interface {
	Discover(ctx context.Context, rawURL string) (*rssfeeds.ResolvedFeed, error)
}

// Parser normalizes a feed document into entries.
type Parser interface {
	Parse(body, feedURL, siteURLHint string) (*types.ParsedFeed, error)
}

type job struct {
	feedID int64
	forced bool
}

// Scheduler runs fetch cycles over a bounded worker pool. Cycles for
// different feeds run concurrently; a per-feed lease keeps two cycles for
// the same feed from interleaving (the loser is dropped, the next interval
// retries).
type Scheduler struct {
	store      Store
	discoverer Discoverer
	parser     Parser
	locks      Locker

	jobs    chan job
	workers int
	wg      sync.WaitGroup

	now func() time.Time
}

func NewScheduler(st Store, d Discoverer, p Parser, locks Locker, workers int) *Scheduler {
	if workers <= 0 {
		workers = DefaultWorkerCount
	}
	return &Scheduler{
		store:      st,
		discoverer: d,
		parser:     p,
		locks:      locks,
		jobs:       make(chan job, queueSize),
		workers:    workers,
		now:        time.Now,
	}
}

// Start launches the worker pool. Workers drain until ctx is canceled.
func (s *Scheduler) Start(ctx context.Context) {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go func(workerID int) {
			defer s.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case j := <-s.jobs:
					s.RunCycle(ctx, j.feedID, j.forced)
				}
			}
		}(i)
	}
	log.Printf("Ingestion scheduler started with %d workers", s.workers)
}

// Wait blocks until all workers have exited.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// EnqueueFetch queues a fetch cycle for one feed. forced marks manual
// refreshes, which bypass backoff. Non-blocking: when the queue is
// saturated the job is dropped and the next scheduled dispatch retries.
func (s *Scheduler) EnqueueFetch(feedID int64, forced bool) {
	select {
	case s.jobs <- job{feedID: feedID, forced: forced}:
	default:
		log.Printf("Fetch queue full, dropping feed %d (forced=%v)", feedID, forced)
	}
}

// RunDispatcher enqueues every non-disabled feed once per interval until
// ctx is canceled.
func (s *Scheduler) RunDispatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ids, err := s.store.ListActiveFeedIDs(ctx)
			if err != nil {
				log.Printf("Dispatcher: listing feeds failed: %v", err)
				continue
			}
			for _, id := range ids {
				s.EnqueueFetch(id, false)
			}
		}
	}
}

// RunCycle executes one fetch cycle for a feed. Every discovery, parse, or
// persistence error is converted into health-tracker state here; nothing
// propagates to the caller.
func (s *Scheduler) RunCycle(ctx context.Context, feedID int64, forced bool) {
	release, ok := s.locks.Acquire(ctx, feedID)
	if !ok {
		log.Printf("Feed %d: cycle already in flight, dropping", feedID)
		return
	}
	defer release()

	feed, err := s.store.GetFeedByID(ctx, feedID)
	if err != nil {
		log.Printf("Feed %d: load failed: %v", feedID, err)
		return
	}

	now := s.now()
	if !forced && (feed.Health.Disabled() || feed.Health.ShouldSkip(now)) {
		return
	}

	parsed, err := s.fetchAndParse(ctx, feed.FeedURL)
	if err != nil {
		s.recordFailure(ctx, feed, err)
		return
	}

	if err := s.reconcile(ctx, feed, parsed, now); err != nil {
		// Persistence did not complete; the cycle counts as failed.
		s.recordFailure(ctx, feed, err)
		return
	}

	if err := s.store.SaveFeedHealth(ctx, feed.ID, health.RecordSuccess(feed.Health)); err != nil {
		log.Printf("Feed %d: recording success failed: %v", feed.ID, err)
	}
}

// fetchAndParse re-runs discovery every cycle: the subscription URL is an
// anchor, the canonical feed URL behind it may move over time.
func (s *Scheduler) fetchAndParse(ctx context.Context, feedURL string) (*types.ParsedFeed, error) {
	resolved, err := s.discoverer.Discover(ctx, feedURL)
	if err != nil {
		return nil, err
	}

	parsed, err := s.parser.Parse(resolved.Body, resolved.FeedURL, resolved.SiteURL)
	if err != nil {
		return nil, err
	}

	return parsed, nil
}

func (s *Scheduler) reconcile(ctx context.Context, feed *types.Feed, parsed *types.ParsedFeed, now time.Time) error {
	meta := metadataDiff(feed, parsed)

	entries := parsed.Entries
	if feed.LastFetchedAt == nil && len(entries) > FirstFetchLimit {
		entries = entries[:FirstFetchLimit]
	}

	index, err := s.store.ArticleGUIDIndex(ctx, feed.ID)
	if err != nil {
		return err
	}

	inserted, updated := 0, 0
	for _, entry := range entries {
		if articleID, exists := index[entry.GUID]; exists {
			if err := s.store.UpdateArticle(ctx, articleID, entry); err != nil {
				return err
			}
			updated++
			continue
		}

		published := now
		if entry.PublishedAt != nil {
			published = *entry.PublishedAt
		}

		article := &types.Article{
			FeedID:      feed.ID,
			GUID:        entry.GUID,
			Title:       entry.Title,
			Author:      entry.Author,
			Content:     entry.Content,
			Summary:     entry.Summary,
			URL:         entry.URL,
			ImageURL:    entry.ImageURL,
			PublishedAt: published,
		}
		if err := s.store.InsertArticle(ctx, article); err != nil {
			return err
		}
		inserted++
	}

	if err := s.store.UpdateFeedAfterFetch(ctx, feed.ID, meta, now); err != nil {
		return err
	}

	log.Printf("Feed %d: %d new, %d updated of %d entries", feed.ID, inserted, updated, len(entries))
	return nil
}

// metadataDiff keeps only parsed values that are non-empty and differ from
// the stored ones. Stored metadata is never clobbered by an empty parse.
func metadataDiff(feed *types.Feed, parsed *types.ParsedFeed) store.FeedMetadata {
	var meta store.FeedMetadata

	if parsed.Title != "" && parsed.Title != feed.Title {
		meta.Title = parsed.Title
	}
	if parsed.FaviconURL != "" && parsed.FaviconURL != feed.FaviconURL {
		meta.FaviconURL = parsed.FaviconURL
	}
	if parsed.SiteURL != "" && feed.SiteURL == "" {
		meta.SiteURL = parsed.SiteURL
	}
	if parsed.Description != "" && feed.Description == "" {
		meta.Description = parsed.Description
	}

	return meta
}

func (s *Scheduler) recordFailure(ctx context.Context, feed *types.Feed, cause error) {
	status := health.RecordFailure(feed.Health, cause.Error(), s.now())

	if err := s.store.SaveFeedHealth(ctx, feed.ID, status); err != nil {
		log.Printf("Feed %d: recording failure failed: %v", feed.ID, err)
		return
	}

	msg := fmt.Sprintf("Feed %d: fetch failed (%d consecutive): %v", feed.ID, status.ConsecutiveFailures, cause)
	if status.Disabled() {
		msg += " - feed disabled"
	}
	log.Print(msg)
}
