package db

import (
	"context"
)

type Snapshot struct {
	ID        int64
	RunID     string
	SourceUrl string
	TakenAt   int64
}

type SnapshotRepo struct {
	SnapshotID int64
	Position   int64
	Name       string
	Link       string
}

const createSnapshot = `
INSERT INTO snapshot (run_id, source_url, taken_at)
VALUES (?, ?, ?)
RETURNING id
`

type CreateSnapshotParams struct {
	RunID     string
	SourceUrl string
	TakenAt   int64
}

func (q *Queries) CreateSnapshot(ctx context.Context, arg CreateSnapshotParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createSnapshot, arg.RunID, arg.SourceUrl, arg.TakenAt)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const createSnapshotRepo = `
INSERT INTO snapshot_repo (snapshot_id, position, name, link)
VALUES (?, ?, ?, ?)
`

type CreateSnapshotRepoParams struct {
	SnapshotID int64
	Position   int64
	Name       string
	Link       string
}

func (q *Queries) CreateSnapshotRepo(ctx context.Context, arg CreateSnapshotRepoParams) error {
	_, err := q.db.ExecContext(ctx, createSnapshotRepo, arg.SnapshotID, arg.Position, arg.Name, arg.Link)
	return err
}

const listSnapshots = `
SELECT s.id, s.run_id, s.source_url, s.taken_at, COUNT(r.snapshot_id) AS repo_count
FROM snapshot s
LEFT JOIN snapshot_repo r ON r.snapshot_id = s.id
GROUP BY s.id
ORDER BY s.taken_at DESC, s.id DESC
LIMIT ?
`

type ListSnapshotsRow struct {
	ID        int64
	RunID     string
	SourceUrl string
	TakenAt   int64
	RepoCount int64
}

func (q *Queries) ListSnapshots(ctx context.Context, limit int64) ([]ListSnapshotsRow, error) {
	rows, err := q.db.QueryContext(ctx, listSnapshots, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ListSnapshotsRow
	for rows.Next() {
		var r ListSnapshotsRow
		err := rows.Scan(&r.ID, &r.RunID, &r.SourceUrl, &r.TakenAt, &r.RepoCount)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const getSnapshotByRunId = `
SELECT id, run_id, source_url, taken_at
FROM snapshot
WHERE run_id = ?
`

func (q *Queries) GetSnapshotByRunId(ctx context.Context, runId string) (Snapshot, error) {
	row := q.db.QueryRowContext(ctx, getSnapshotByRunId, runId)
	var s Snapshot
	err := row.Scan(&s.ID, &s.RunID, &s.SourceUrl, &s.TakenAt)
	return s, err
}

const getLatestSnapshot = `
SELECT id, run_id, source_url, taken_at
FROM snapshot
ORDER BY taken_at DESC, id DESC
LIMIT 1
`

func (q *Queries) GetLatestSnapshot(ctx context.Context) (Snapshot, error) {
	row := q.db.QueryRowContext(ctx, getLatestSnapshot)
	var s Snapshot
	err := row.Scan(&s.ID, &s.RunID, &s.SourceUrl, &s.TakenAt)
	return s, err
}

const getSnapshotRepos = `
SELECT snapshot_id, position, name, link
FROM snapshot_repo
WHERE snapshot_id = ?
ORDER BY position
`

func (q *Queries) GetSnapshotRepos(ctx context.Context, snapshotId int64) ([]SnapshotRepo, error) {
	rows, err := q.db.QueryContext(ctx, getSnapshotRepos, snapshotId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SnapshotRepo
	for rows.Next() {
		var r SnapshotRepo
		err := rows.Scan(&r.SnapshotID, &r.Position, &r.Name, &r.Link)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const getKnownRepos = `
SELECT r.name, r.link, MAX(s.taken_at) AS last_seen, COUNT(*) AS appearances
FROM snapshot_repo r
JOIN snapshot s ON s.id = r.snapshot_id
GROUP BY r.name, r.link
ORDER BY last_seen DESC
`

type GetKnownReposRow struct {
	Name        string
	Link        string
	LastSeen    int64
	Appearances int64
}

func (q *Queries) GetKnownRepos(ctx context.Context) ([]GetKnownReposRow, error) {
	rows, err := q.db.QueryContext(ctx, getKnownRepos)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GetKnownReposRow
	for rows.Next() {
		var r GetKnownReposRow
		err := rows.Scan(&r.Name, &r.Link, &r.LastSeen, &r.Appearances)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const deleteSnapshotReposBefore = `
DELETE FROM snapshot_repo
WHERE snapshot_id IN (SELECT id FROM snapshot WHERE taken_at < ?)
`

func (q *Queries) DeleteSnapshotReposBefore(ctx context.Context, takenAt int64) error {
	_, err := q.db.ExecContext(ctx, deleteSnapshotReposBefore, takenAt)
	return err
}

const deleteSnapshotsBefore = `
DELETE FROM snapshot
WHERE taken_at < ?
`

func (q *Queries) DeleteSnapshotsBefore(ctx context.Context, takenAt int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteSnapshotsBefore, takenAt)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
