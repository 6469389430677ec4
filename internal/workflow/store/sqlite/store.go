// Package sqlite keeps workflow snapshots in a local SQLite file for
// single-node deployments.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"willgate/internal/workflow/models"
	"willgate/pkg/domain"
	"willgate/pkg/platform/sentinel"
)

type Store struct {
	db *sql.DB
}

// New expects a database opened by internal/platform/sqlite.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Save upserts snap unless a row with an equal or newer version exists.
func (s *Store) Save(ctx context.Context, snap models.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO workflow_snapshots (account, version, state, epoch, payload, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (account) DO UPDATE SET
			version = excluded.version,
			state = excluded.state,
			epoch = excluded.epoch,
			payload = excluded.payload,
			updated_at = excluded.updated_at
		WHERE workflow_snapshots.version < excluded.version`,
		snap.Account.String(),
		int64(snap.Version),
		string(snap.State),
		int64(snap.Epoch),
		payload,
		snap.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, account domain.Address) (models.Snapshot, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM workflow_snapshots WHERE account = ?`,
		account.String(),
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Snapshot{}, fmt.Errorf("snapshot %s: %w", account, sentinel.ErrNotFound)
	}
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	var snap models.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return models.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

func (s *Store) List(ctx context.Context) ([]models.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM workflow_snapshots ORDER BY account`)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var out []models.Snapshot
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		var snap models.Snapshot
		if err := json.Unmarshal(payload, &snap); err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return out, nil
}
