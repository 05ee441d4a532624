// Package store persists feeds and articles in Postgres. All operations are
// single-row; the (feed_id, guid) unique constraint is the one invariant the
// database enforces for concurrent ingestion (same-feed re-entry upserts,
// it never duplicates).
package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"rreader/health"
	"rreader/types"
)

//go:embed schema.sql
var schemaSQL string

// ErrNotFound is returned when a feed or article id does not exist.
var ErrNotFound = errors.New("not found")

// Querier is the subset of pgxpool.Pool the store needs; pgxmock satisfies
// it in tests.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store wraps a Postgres connection with the feed/article operations the
// ingestion pipeline consumes.
type Store struct {
	db Querier
}

func New(db Querier) *Store {
	return &Store{db: db}
}

// Connect opens a pgx pool and verifies connectivity.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// EnsureSchema applies schema.sql. Idempotent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

const feedColumns = `id, user_id, title, feed_url, site_url, description, favicon_url,
	last_fetched_at, consecutive_failures, COALESCE(last_error, ''), last_failed_at, disabled_at`

// CreateFeed inserts a new subscription row for a user. The feed starts
// never-fetched (last_fetched_at NULL) so the first cycle applies the
// first-fetch truncation.
func (s *Store) CreateFeed(ctx context.Context, userID int64, feedURL string) (*types.Feed, error) {
	feed := &types.Feed{UserID: userID, FeedURL: feedURL}

	err := s.db.QueryRow(ctx,
		`INSERT INTO feeds (user_id, feed_url) VALUES ($1, $2) RETURNING id`,
		userID, feedURL,
	).Scan(&feed.ID)
	if err != nil {
		return nil, fmt.Errorf("insert feed: %w", err)
	}

	return feed, nil
}

func (s *Store) GetFeedByID(ctx context.Context, id int64) (*types.Feed, error) {
	row := s.db.QueryRow(ctx, `SELECT `+feedColumns+` FROM feeds WHERE id = $1`, id)

	feed, err := scanFeed(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get feed %d: %w", id, err)
	}
	return feed, nil
}

// ListFeeds returns all feeds with their health fields, newest first.
func (s *Store) ListFeeds(ctx context.Context) ([]*types.Feed, error) {
	rows, err := s.db.Query(ctx, `SELECT `+feedColumns+` FROM feeds ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}
	defer rows.Close()

	var feeds []*types.Feed
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, err
		}
		feeds = append(feeds, feed)
	}
	return feeds, rows.Err()
}

// ListActiveFeedIDs returns ids of all feeds not permanently disabled;
// the dispatcher enqueues these each interval.
func (s *Store) ListActiveFeedIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.Query(ctx, `SELECT id FROM feeds WHERE disabled_at IS NULL ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list active feeds: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// FeedMetadata carries the per-cycle metadata diff. Empty fields mean "no
// change"; a stored value is never overwritten with an empty parsed one.
type FeedMetadata struct {
	Title       string
	SiteURL     string
	Description string
	FaviconURL  string
}

// UpdateFeedAfterFetch applies the metadata diff and stamps
// last_fetched_at in one statement.
func (s *Store) UpdateFeedAfterFetch(ctx context.Context, feedID int64, meta FeedMetadata, fetchedAt time.Time) error {
	_, err := s.db.Exec(ctx, `
		UPDATE feeds SET
			title           = COALESCE(NULLIF($2, ''), title),
			site_url        = COALESCE(NULLIF($3, ''), site_url),
			description     = COALESCE(NULLIF($4, ''), description),
			favicon_url     = COALESCE(NULLIF($5, ''), favicon_url),
			last_fetched_at = $6,
			updated_at      = now()
		WHERE id = $1`,
		feedID, meta.Title, meta.SiteURL, meta.Description, meta.FaviconURL, fetchedAt)
	if err != nil {
		return fmt.Errorf("update feed %d after fetch: %w", feedID, err)
	}
	return nil
}

// SaveFeedHealth persists the health state produced by a transition. This is
// the only place failure fields are written.
func (s *Store) SaveFeedHealth(ctx context.Context, feedID int64, status health.Status) error {
	var lastError *string
	if status.LastError != "" {
		lastError = &status.LastError
	}

	_, err := s.db.Exec(ctx, `
		UPDATE feeds SET
			consecutive_failures = $2,
			last_error           = $3,
			last_failed_at       = $4,
			disabled_at          = $5,
			updated_at           = now()
		WHERE id = $1`,
		feedID, status.ConsecutiveFailures, lastError, status.LastFailedAt, status.DisabledAt)
	if err != nil {
		return fmt.Errorf("save feed %d health: %w", feedID, err)
	}
	return nil
}

// ArticleGUIDIndex loads the guid -> article id map for one feed, the input
// to reconciliation.
func (s *Store) ArticleGUIDIndex(ctx context.Context, feedID int64) (map[string]int64, error) {
	rows, err := s.db.Query(ctx, `SELECT guid, id FROM articles WHERE feed_id = $1`, feedID)
	if err != nil {
		return nil, fmt.Errorf("load guid index for feed %d: %w", feedID, err)
	}
	defer rows.Close()

	index := make(map[string]int64)
	for rows.Next() {
		var guid string
		var id int64
		if err := rows.Scan(&guid, &id); err != nil {
			return nil, err
		}
		index[guid] = id
	}
	return index, rows.Err()
}

// InsertArticle creates an article on first sighting of a guid. A concurrent
// cycle racing on the same (feed_id, guid) falls into the conflict branch,
// which updates the fetched fields and leaves guid and published_at alone.
func (s *Store) InsertArticle(ctx context.Context, a *types.Article) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO articles (feed_id, guid, title, author, content, summary, url, image_url, published_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9)
		ON CONFLICT (feed_id, guid) DO UPDATE SET
			title      = EXCLUDED.title,
			author     = EXCLUDED.author,
			content    = COALESCE(EXCLUDED.content, articles.content),
			summary    = EXCLUDED.summary,
			url        = EXCLUDED.url,
			image_url  = EXCLUDED.image_url,
			updated_at = now()
		RETURNING id`,
		a.FeedID, a.GUID, a.Title, a.Author, a.Content, a.Summary, a.URL, a.ImageURL, a.PublishedAt,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("insert article %q for feed %d: %w", a.GUID, a.FeedID, err)
	}
	return nil
}

// UpdateArticle rewrites the fetched fields of an existing article in
// place. published_at and guid are never altered here. Feed-provided
// content replaces the stored body only when non-empty, so an extracted
// body survives feeds that stop inlining full content.
func (s *Store) UpdateArticle(ctx context.Context, articleID int64, entry *types.ParsedEntry) error {
	_, err := s.db.Exec(ctx, `
		UPDATE articles SET
			title      = $2,
			author     = $3,
			content    = COALESCE(NULLIF($4, ''), content),
			summary    = $5,
			url        = $6,
			image_url  = $7,
			updated_at = now()
		WHERE id = $1`,
		articleID, entry.Title, entry.Author, entry.Content, entry.Summary, entry.URL, entry.ImageURL)
	if err != nil {
		return fmt.Errorf("update article %d: %w", articleID, err)
	}
	return nil
}

const articleColumns = `id, feed_id, guid, title, author, COALESCE(content, ''),
	COALESCE(excerpt, ''), summary, url, image_url, published_at`

func (s *Store) GetArticleByID(ctx context.Context, id int64) (*types.Article, error) {
	row := s.db.QueryRow(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = $1`, id)

	article, err := scanArticle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get article %d: %w", id, err)
	}
	return article, nil
}

// ListArticlesMissingContent returns articles with a URL but no extracted
// body yet, oldest first, for the batch extraction pool.
func (s *Store) ListArticlesMissingContent(ctx context.Context, limit int) ([]*types.Article, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+articleColumns+`
		FROM articles
		WHERE content IS NULL AND url <> ''
		ORDER BY id
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list articles missing content: %w", err)
	}
	defer rows.Close()

	var articles []*types.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}

// SaveArticleContent stores an extraction result.
func (s *Store) SaveArticleContent(ctx context.Context, articleID int64, content, excerpt string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE articles SET content = $2, excerpt = NULLIF($3, ''), updated_at = now()
		WHERE id = $1`,
		articleID, content, excerpt)
	if err != nil {
		return fmt.Errorf("save article %d content: %w", articleID, err)
	}
	return nil
}

func scanFeed(row pgx.Row) (*types.Feed, error) {
	var feed types.Feed
	err := row.Scan(
		&feed.ID, &feed.UserID, &feed.Title, &feed.FeedURL, &feed.SiteURL,
		&feed.Description, &feed.FaviconURL, &feed.LastFetchedAt,
		&feed.Health.ConsecutiveFailures, &feed.Health.LastError,
		&feed.Health.LastFailedAt, &feed.Health.DisabledAt,
	)
	if err != nil {
		return nil, err
	}
	return &feed, nil
}

func scanArticle(row pgx.Row) (*types.Article, error) {
	var a types.Article
	err := row.Scan(
		&a.ID, &a.FeedID, &a.GUID, &a.Title, &a.Author, &a.Content,
		&a.Excerpt, &a.Summary, &a.URL, &a.ImageURL, &a.PublishedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
