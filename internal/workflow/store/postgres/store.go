// Package postgres keeps workflow snapshots in the workflow_snapshots table.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"willgate/internal/workflow/models"
	"willgate/pkg/domain"
	"willgate/pkg/platform/sentinel"
	txcontext "willgate/pkg/platform/tx"
)

// Store implements the workflow snapshot store. Save joins a transaction
// carried in the context, or opens its own.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) querier(ctx context.Context) dbQuerier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// Save upserts snap unless a row with an equal or newer version exists.
func (s *Store) Save(ctx context.Context, snap models.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	query := `
		INSERT INTO workflow_snapshots (account, version, state, epoch, payload, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (account) DO UPDATE SET
			version = EXCLUDED.version,
			state = EXCLUDED.state,
			epoch = EXCLUDED.epoch,
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at
		WHERE workflow_snapshots.version < EXCLUDED.version
	`
	return txcontext.Run(ctx, s.db, func(ctx context.Context) error {
		_, err := s.querier(ctx).ExecContext(ctx, query,
			snap.Account.String(),
			int64(snap.Version),
			string(snap.State),
			int64(snap.Epoch),
			payload,
			snap.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("upsert snapshot: %w", err)
		}
		return nil
	})
}

func (s *Store) Load(ctx context.Context, account domain.Address) (models.Snapshot, error) {
	var payload []byte
	err := s.querier(ctx).QueryRowContext(ctx,
		`SELECT payload FROM workflow_snapshots WHERE account = $1`,
		account.String(),
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Snapshot{}, fmt.Errorf("snapshot %s: %w", account, sentinel.ErrNotFound)
	}
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	return decode(payload)
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
		snap, err := decode(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return out, nil
}

func decode(payload []byte) (models.Snapshot, error) {
	var snap models.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return models.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}
