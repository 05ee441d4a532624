package store

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rreader/health"
	"rreader/types"
)

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return New(mock), mock
}

func TestArticleGUIDIndex(t *testing.T) {
	s, mock := newMockStore(t)

	rows := pgxmock.NewRows([]string{"guid", "id"}).
		AddRow("guid-a", int64(10)).
		AddRow("guid-b", int64(11))
	mock.ExpectQuery(`SELECT guid, id FROM articles WHERE feed_id`).
		WithArgs(int64(7)).
		WillReturnRows(rows)

	index, err := s.ArticleGUIDIndex(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, map[string]int64{"guid-a": 10, "guid-b": 11}, index)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertArticleUpsertsOnGUIDConflict(t *testing.T) {
	s, mock := newMockStore(t)

	published := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	article := &types.Article{
		FeedID:      7,
		GUID:        "guid-a",
		Title:       "First story",
		Author:      "Alice",
		Summary:     "Summary",
		URL:         "https://news.example.com/1",
		PublishedAt: published,
	}

	mock.ExpectQuery(`INSERT INTO articles .+ ON CONFLICT \(feed_id, guid\) DO UPDATE`).
		WithArgs(int64(7), "guid-a", "First story", "Alice", "", "Summary",
			"https://news.example.com/1", "", published).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))

	require.NoError(t, s.InsertArticle(context.Background(), article))
	assert.Equal(t, int64(42), article.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateArticleLeavesPublishedAtAlone(t *testing.T) {
	s, mock := newMockStore(t)

	entry := &types.ParsedEntry{
		Title:   "Renamed story",
		Author:  "Alice",
		Summary: "New summary",
		URL:     "https://news.example.com/1",
	}

	// The fetched-fields update must not mention published_at or guid.
	mock.ExpectExec(`UPDATE articles SET\s+title[^;]+WHERE id`).
		WithArgs(int64(42), "Renamed story", "Alice", "", "New summary",
			"https://news.example.com/1", "").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, s.UpdateArticle(context.Background(), 42, entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveFeedHealth(t *testing.T) {
	s, mock := newMockStore(t)

	now := time.Now()
	status := health.Status{
		ConsecutiveFailures: 5,
		LastError:           "connection refused",
		LastFailedAt:        &now,
	}

	mock.ExpectExec(`UPDATE feeds SET\s+consecutive_failures`).
		WithArgs(int64(7), 5, &status.LastError, &now, (*time.Time)(nil)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, s.SaveFeedHealth(context.Background(), 7, status))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetFeedByIDNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT .+ FROM feeds WHERE id`).
		WithArgs(int64(999)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	_, err := s.GetFeedByID(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateFeedAfterFetchKeepsStoredValuesOnEmptyDiff(t *testing.T) {
	s, mock := newMockStore(t)

	fetchedAt := time.Now()

	// Empty diff fields travel as '' and the statement's NULLIF guards keep
	// the stored values.
	mock.ExpectExec(`UPDATE feeds SET\s+title\s+= COALESCE\(NULLIF`).
		WithArgs(int64(7), "", "", "", "", fetchedAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.UpdateFeedAfterFetch(context.Background(), 7, FeedMetadata{}, fetchedAt)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
