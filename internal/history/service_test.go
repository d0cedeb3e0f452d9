package history

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recomarr/recomarr/internal/testutil"
)

func TestServiceCreateAndList(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	service := NewService(tdb.Conn, tdb.Logger)
	ctx := context.Background()

	entry, err := service.Create(ctx, CreateInput{
		EventType: EventTypeRecommendation,
		Query:     "something like Severance",
		Results:   7,
		Data:      map[string]any{"mediaType": "tv"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, EventTypeRecommendation, entry.EventType)

	_, err = service.Create(ctx, CreateInput{
		EventType: EventTypeCredits,
		Query:     "Bryan Cranston",
		Results:   12,
	})
	require.NoError(t, err)

	resp, err := service.List(ctx, ListOptions{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, resp.TotalCount)
	require.Len(t, resp.Items, 2)
	// Newest first.
	assert.Equal(t, EventTypeCredits, resp.Items[0].EventType)
	assert.Equal(t, "tv", resp.Items[1].Data["mediaType"])
}

func TestServiceListFiltersByEventType(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	service := NewService(tdb.Conn, tdb.Logger)
	ctx := context.Background()

	service.RecordRecommendation(ctx, "space westerns", "movie", 4)
	service.RecordCreditSearch(ctx, "Gillian Anderson", 9)
	service.RecordAddition(ctx, "The Expanse", "sonarr", false)

	resp, err := service.List(ctx, ListOptions{EventType: string(EventTypeCredits)})
	require.NoError(t, err)
	assert.EqualValues(t, 1, resp.TotalCount)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Gillian Anderson", resp.Items[0].Query)
}

func TestServiceListClampsPageSize(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	service := NewService(tdb.Conn, tdb.Logger)

	resp, err := service.List(context.Background(), ListOptions{Page: -3, PageSize: 100000})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, maxPageSize, resp.PageSize)
}

func TestServiceDeleteAll(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	service := NewService(tdb.Conn, tdb.Logger)
	ctx := context.Background()

	service.RecordRecommendation(ctx, "anything", "both", 3)
	require.NoError(t, service.DeleteAll(ctx))

	resp, err := service.List(ctx, ListOptions{})
	require.NoError(t, err)
	assert.EqualValues(t, 0, resp.TotalCount)
}

func TestServiceCleanupRespectsRetention(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	service := NewService(tdb.Conn, tdb.Logger)
	ctx := context.Background()

	service.RecordRecommendation(ctx, "fresh entry", "movie", 2)

	// Backdate one entry past the retention window.
	_, err := tdb.Conn.ExecContext(ctx,
		`INSERT INTO history (id, event_type, query, results, created_at) VALUES (?, ?, ?, ?, ?)`,
		"old-entry", string(EventTypeRecommendation), "stale entry", 1, "2001-01-01 00:00:00.000")
	require.NoError(t, err)

	removed, err := service.Cleanup(ctx, 30)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	removed, err = service.Cleanup(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, removed, "non-positive retention must disable cleanup")

	resp, err := service.List(ctx, ListOptions{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, resp.TotalCount)
}
