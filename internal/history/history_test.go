package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRecordAndRecent(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, outcome := range []string{"success", "failed", "success"} {
		rec := Record{
			BuildID:       "b" + string(rune('1'+i)),
			SiteRoot:      "content",
			BuildRoot:     "build",
			StartedAt:     base.Add(time.Duration(i) * time.Hour),
			FinishedAt:    base.Add(time.Duration(i)*time.Hour + 2*time.Second),
			Outcome:       outcome,
			RenderedPages: i + 1,
		}
		if outcome == "failed" {
			rec.Error = "template error"
		}
		require.NoError(t, store.Record(ctx, rec))
	}

	recent, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, "b3", recent[0].BuildID)
	require.Equal(t, "b2", recent[1].BuildID)
	require.Equal(t, "template error", recent[1].Error)
	require.Equal(t, 2*time.Second, recent[0].Duration())
	require.Equal(t, base.Add(2*time.Hour), recent[0].StartedAt)

	all, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Empty(t, all[2].Error)
}

func TestDuplicateBuildIDRejected(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	rec := Record{BuildID: "same", StartedAt: time.Now(), FinishedAt: time.Now(), Outcome: "success"}
	require.NoError(t, store.Record(context.Background(), rec))
	require.Error(t, store.Record(context.Background(), rec))
}

func TestPersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Record(context.Background(), Record{BuildID: "x", StartedAt: time.Now(), FinishedAt: time.Now(), Outcome: "success"}))
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	recs, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
}
