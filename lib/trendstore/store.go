package trendstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"trendwatch-backend/lib/trendstore/db"
)

var ErrNotFound = errors.New("snapshot not found")

// Store keeps one snapshot per scrape run, newest first.
type Store struct {
	db  *sql.DB
	qry *db.Queries
}

func NewStore(database *sql.DB) Store {
	return Store{
		db:  database,
		qry: db.New(database),
	}
}

type Repo struct {
	Position int
	Name     string
	Link     string
}

type Snapshot struct {
	RunID     string
	SourceUrl string
	TakenAt   time.Time
	Repos     []Repo
}

func (s Store) Push(ctx context.Context, snapshot Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	snapshotId, err := txqry.CreateSnapshot(ctx, db.CreateSnapshotParams{
		RunID:     snapshot.RunID,
		SourceUrl: snapshot.SourceUrl,
		TakenAt:   snapshot.TakenAt.Unix(),
	})
	if err != nil {
		return err
	}

	for _, repo := range snapshot.Repos {
		err := txqry.CreateSnapshotRepo(ctx, db.CreateSnapshotRepoParams{
			SnapshotID: snapshotId,
			Position:   int64(repo.Position),
			Name:       repo.Name,
			Link:       repo.Link,
		})
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

type SnapshotInfo struct {
	RunID     string
	SourceUrl string
	TakenAt   time.Time
	RepoCount int
}

func (s Store) List(ctx context.Context, limit int) ([]SnapshotInfo, error) {
	if limit < 1 {
		limit = 20
	}
	rows, err := s.qry.ListSnapshots(ctx, int64(limit))
	if err != nil {
		return nil, err
	}

	var out []SnapshotInfo
	for _, r := range rows {
		out = append(out, SnapshotInfo{
			RunID:     r.RunID,
			SourceUrl: r.SourceUrl,
			TakenAt:   time.Unix(r.TakenAt, 0),
			RepoCount: int(r.RepoCount),
		})
	}
	return out, nil
}

func (s Store) Get(ctx context.Context, runId string) (Snapshot, error) {
	row, err := s.qry.GetSnapshotByRunId(ctx, runId)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, err
	}
	return s.hydrate(ctx, row)
}

// Latest returns the most recent snapshot, ErrNotFound when the store is
// empty.
func (s Store) Latest(ctx context.Context) (Snapshot, error) {
	row, err := s.qry.GetLatestSnapshot(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, err
	}
	return s.hydrate(ctx, row)
}

func (s Store) hydrate(ctx context.Context, row db.Snapshot) (Snapshot, error) {
	repoRows, err := s.qry.GetSnapshotRepos(ctx, row.ID)
	if err != nil {
		return Snapshot{}, err
	}

	var repos []Repo
	for _, r := range repoRows {
		repos = append(repos, Repo{
			Position: int(r.Position),
			Name:     r.Name,
			Link:     r.Link,
		})
	}
	return Snapshot{
		RunID:     row.RunID,
		SourceUrl: row.SourceUrl,
		TakenAt:   time.Unix(row.TakenAt, 0),
		Repos:     repos,
	}, nil
}

type KnownRepo struct {
	Name        string
	Link        string
	LastSeen    time.Time
	Appearances int
}

// KnownRepos returns every distinct name+link pair the store has ever
// seen, most recently seen first.
func (s Store) KnownRepos(ctx context.Context) ([]KnownRepo, error) {
	rows, err := s.qry.GetKnownRepos(ctx)
	if err != nil {
		return nil, err
	}

	var out []KnownRepo
	for _, r := range rows {
		out = append(out, KnownRepo{
			Name:        r.Name,
			Link:        r.Link,
			LastSeen:    time.Unix(r.LastSeen, 0),
			Appearances: int(r.Appearances),
		})
	}
	return out, nil
}

// Prune drops snapshots taken before the cutoff and reports how many were
// removed.
func (s Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	err = txqry.DeleteSnapshotReposBefore(ctx, before.Unix())
	if err != nil {
		return 0, err
	}
	removed, err := txqry.DeleteSnapshotsBefore(ctx, before.Unix())
	if err != nil {
		return 0, err
	}

	return removed, tx.Commit()
}
