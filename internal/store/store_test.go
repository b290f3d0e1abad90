package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/raynirmalya/mokshiri-scraper/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

// anyUpsertArgs matches the 16 upsert arguments without asserting values;
// pgxmock requires the expected argument count to match the call.
func anyUpsertArgs() []interface{} {
	args := make([]interface{}, 16)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func testArticle() *types.Article {
	a := types.NewArticle("kpop", "https://testsite.com/news/story/")
	a.Title = "A Story"
	a.Summary = "Body text long enough to be plausible."
	a.Published = time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	return a
}

func TestUpsertInsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO articles").
		WithArgs(anyUpsertArgs()...).
		WillReturnRows(pgxmock.NewRows([]string{"id", "inserted"}).AddRow(int64(7), true))

	repo := NewArticleRepo(mock, testLogger)
	out, err := repo.Upsert(context.Background(), testArticle())
	require.NoError(t, err)
	require.True(t, out.Inserted)
	require.Equal(t, int64(7), out.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertUpdateOutcome(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO articles").
		WithArgs(anyUpsertArgs()...).
		WillReturnRows(pgxmock.NewRows([]string{"id", "inserted"}).AddRow(int64(7), false))

	repo := NewArticleRepo(mock, testLogger)
	a := testArticle()
	out, err := repo.Upsert(context.Background(), a)
	require.NoError(t, err)
	require.False(t, out.Inserted, "existing (link, lang) row must report an update")
	require.Equal(t, int64(7), a.ID, "article ID backfilled from the row")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertClampsColumns(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO articles").
		WithArgs(anyUpsertArgs()...).
		WillReturnRows(pgxmock.NewRows([]string{"id", "inserted"}).AddRow(int64(1), true))

	a := testArticle()
	a.Title = strings.Repeat("x", types.MaxTitleLen+100)

	repo := NewArticleRepo(mock, testLogger)
	_, err = repo.Upsert(context.Background(), a)
	require.NoError(t, err)
	require.Len(t, a.Title, types.MaxTitleLen)
}

func TestMarkPublished(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("UPDATE articles SET is_published").
		WithArgs(int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := NewArticleRepo(mock, testLogger)
	require.NoError(t, repo.MarkPublished(context.Background(), 3))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetImageNameByLink(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("UPDATE articles SET image_name").
		WithArgs("img.jpg", "https://testsite.com/news/story/").
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	repo := NewArticleRepo(mock, testLogger)
	err = repo.SetImageName(context.Background(), "https://testsite.com/news/story/", "img.jpg")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotMergeByLink(t *testing.T) {
	dir := t.TempDir()
	snap := NewSnapshot(dir, testLogger)

	first := *testArticle()
	require.NoError(t, snap.Merge("testsite", []types.Article{first}))

	// Second run: same link again (refreshed title) plus a new article.
	refreshed := first
	refreshed.Title = "A Story, Retitled"
	second := *testArticle()
	second.Link = "https://testsite.com/news/other/"
	require.NoError(t, snap.Merge("testsite", []types.Article{refreshed, second}))

	data, err := os.ReadFile(filepath.Join(dir, "testsite.json"))
	require.NoError(t, err)

	var got []types.Article
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 2, "same (link, lang) must merge, not duplicate")
	require.Equal(t, "A Story, Retitled", got[0].Title)
}

func TestSnapshotCorruptedFileMovedAside(t *testing.T) {
	dir := t.TempDir()
	snap := NewSnapshot(dir, testLogger)

	path := filepath.Join(dir, "testsite.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	require.NoError(t, snap.Merge("testsite", []types.Article{*testArticle()}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var backups int
	for _, e := range entries {
		if strings.Contains(e.Name(), ".broken.") {
			backups++
		}
	}
	require.Equal(t, 1, backups, "corrupted snapshot must be moved aside")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []types.Article
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 1)
}
