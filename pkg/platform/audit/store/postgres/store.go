// Package postgres persists audit events in the audit_events table.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"willgate/pkg/domain"
	"willgate/pkg/platform/audit"
	txcontext "willgate/pkg/platform/tx"
)

// Store implements audit.Store. When the context carries a transaction the
// insert joins it, so a snapshot save and its audit rows commit together.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// Append inserts the event. Duplicate IDs are ignored so redelivery is safe.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	id := event.ID
	if id == "" {
		id = uuid.NewString()
	}
	category := event.Category
	if category == "" {
		category = event.Action.Category()
	}

	query := `
		INSERT INTO audit_events (
			id, category, timestamp, account, actor, action,
			state, epoch, detail, request_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		id,
		string(category),
		event.Timestamp,
		event.Account.String(),
		event.Actor.String(),
		string(event.Action),
		event.State,
		int64(event.Epoch),
		event.Detail,
		event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByAccount returns an account's events oldest first.
func (s *Store) ListByAccount(ctx context.Context, account domain.Address) ([]audit.Event, error) {
	query := `
		SELECT id, category, timestamp, account, actor, action,
			   state, epoch, detail, request_id
		FROM audit_events
		WHERE account = $1
		ORDER BY timestamp ASC, seq ASC
	`
	rows, err := s.db.QueryContext(ctx, query, account.String())
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			event            audit.Event
			category, action string
			acct, actor      string
			epoch            int64
		)
		if err := rows.Scan(
			&event.ID,
			&category,
			&event.Timestamp,
			&acct,
			&actor,
			&action,
			&event.State,
			&epoch,
			&event.Detail,
			&event.RequestID,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = audit.Category(category)
		event.Action = audit.Action(action)
		event.Account = domain.Address(acct)
		event.Actor = domain.Address(actor)
		event.Epoch = uint64(epoch)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
