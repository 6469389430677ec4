//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"willgate/internal/platform/postgres"
	"willgate/internal/workflow/models"
	"willgate/pkg/domain"
	"willgate/pkg/platform/audit"
	auditpg "willgate/pkg/platform/audit/store/postgres"
	"willgate/pkg/platform/sentinel"
	txcontext "willgate/pkg/platform/tx"
	"willgate/pkg/testutil/containers"
)

type PostgresSnapshotStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *Store
	ctx   context.Context
}

func TestPostgresSnapshotStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresSnapshotStoreSuite))
}

func (s *PostgresSnapshotStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.NewPostgresContainer(s.T())
	s.Require().NoError(postgres.Migrate(s.ctx, s.pg.DB))
	s.store = New(s.pg.DB)
}

func (s *PostgresSnapshotStoreSuite) SetupTest() {
	_, err := s.pg.DB.ExecContext(s.ctx, `TRUNCATE workflow_snapshots, audit_events`)
	s.Require().NoError(err)
}

var acct = domain.MustParseAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")

func (s *PostgresSnapshotStoreSuite) TestNeverRegresses() {
	s.Require().NoError(s.store.Save(s.ctx, models.Snapshot{Account: acct, Version: 2, State: models.StateAwaitingQuorum, UpdatedAt: time.Now()}))
	s.Require().NoError(s.store.Save(s.ctx, models.Snapshot{Account: acct, Version: 1, State: models.StateAwaitingLiveness, UpdatedAt: time.Now()}))

	got, err := s.store.Load(s.ctx, acct)
	s.Require().NoError(err)
	s.Equal(uint64(2), got.Version)

	list, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Len(list, 1)
}

func (s *PostgresSnapshotStoreSuite) TestLoadMissing() {
	_, err := s.store.Load(s.ctx, acct)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresSnapshotStoreSuite) TestSnapshotAndAuditShareTransaction() {
	events := auditpg.New(s.pg.DB)
	err := txcontext.Run(s.ctx, s.pg.DB, func(ctx context.Context) error {
		if err := s.store.Save(ctx, models.Snapshot{Account: acct, Version: 1, State: models.StateAwaitingLiveness, UpdatedAt: time.Now()}); err != nil {
			return err
		}
		if err := events.Append(ctx, audit.Event{Account: acct, Action: audit.ActionSessionStarted, Timestamp: time.Now()}); err != nil {
			return err
		}
		return sentinel.ErrConflict
	})
	s.ErrorIs(err, sentinel.ErrConflict)

	_, err = s.store.Load(s.ctx, acct)
	s.ErrorIs(err, sentinel.ErrNotFound, "rolled back with the audit row")
	list, err := events.ListByAccount(s.ctx, acct)
	s.Require().NoError(err)
	s.Empty(list)
}
