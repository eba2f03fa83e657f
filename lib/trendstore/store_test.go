package trendstore

import (
	"context"
	"testing"
	"time"

	"trendwatch-backend/lib/testutil"
	"trendwatch-backend/lib/trendstore/db"

	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	result, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "trendstore",
		DbSchema: db.Schema,
	})
	defer cleanup()
	store := NewStore(result.DB)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	now := time.Now().Truncate(time.Second)

	{
		_, err := store.Get(ctx, "nope")
		require.ErrorIs(t, err, ErrNotFound)

		_, err = store.Latest(ctx)
		require.ErrorIs(t, err, ErrNotFound)

		list, err := store.List(ctx, 10)
		require.NoError(t, err)
		require.Len(t, list, 0)
	}
	{
		err := store.Push(ctx, Snapshot{
			RunID:     "run-one",
			SourceUrl: "https://github.com/trending",
			TakenAt:   now.Add(-time.Hour * 48),
			Repos: []Repo{
				{Position: 1, Name: "golang/go", Link: "https://github.com/golang/go"},
				{Position: 2, Name: "rust-lang/rust", Link: "https://github.com/rust-lang/rust"},
			},
		})
		require.NoError(t, err)

		err = store.Push(ctx, Snapshot{
			RunID:     "run-two",
			SourceUrl: "https://github.com/trending",
			TakenAt:   now,
			Repos: []Repo{
				{Position: 1, Name: "golang/go", Link: "https://github.com/golang/go"},
				{Position: 2, Name: "OpenAI/gpt", Link: "https://github.com/openai/gpt"},
			},
		})
		require.NoError(t, err)
	}
	{
		list, err := store.List(ctx, 10)
		require.NoError(t, err)
		require.Len(t, list, 2)
		require.Equal(t, "run-two", list[0].RunID)
		require.Equal(t, 2, list[0].RepoCount)
		require.Equal(t, "run-one", list[1].RunID)

		snapshot, err := store.Get(ctx, "run-one")
		require.NoError(t, err)
		require.Len(t, snapshot.Repos, 2)
		require.Equal(t, "golang/go", snapshot.Repos[0].Name)
		require.Equal(t, now.Add(-time.Hour*48).Unix(), snapshot.TakenAt.Unix())

		latest, err := store.Latest(ctx)
		require.NoError(t, err)
		require.Equal(t, "run-two", latest.RunID)
	}
	{
		known, err := store.KnownRepos(ctx)
		require.NoError(t, err)
		require.Len(t, known, 3)

		var golang KnownRepo
		for _, k := range known {
			if k.Name == "golang/go" {
				golang = k
			}
		}
		require.Equal(t, 2, golang.Appearances)
		require.Equal(t, now.Unix(), golang.LastSeen.Unix())
	}
	{
		removed, err := store.Prune(ctx, now.Add(-time.Hour*24))
		require.NoError(t, err)
		require.EqualValues(t, 1, removed)

		_, err = store.Get(ctx, "run-one")
		require.ErrorIs(t, err, ErrNotFound)

		list, err := store.List(ctx, 10)
		require.NoError(t, err)
		require.Len(t, list, 1)
	}
}

func TestStoreEmptySnapshot(t *testing.T) {
	result, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "trendstore",
		DbSchema: db.Schema,
	})
	defer cleanup()
	store := NewStore(result.DB)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	err := store.Push(ctx, Snapshot{
		RunID:     "empty-run",
		SourceUrl: "https://github.com/trending",
		TakenAt:   time.Now(),
	})
	require.NoError(t, err)

	snapshot, err := store.Get(ctx, "empty-run")
	require.NoError(t, err)
	require.Len(t, snapshot.Repos, 0)

	list, err := store.List(ctx, 5)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, 0, list[0].RepoCount)
}
