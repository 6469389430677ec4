//go:build integration

package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"willgate/internal/workflow/models"
	"willgate/pkg/domain"
	"willgate/pkg/platform/sentinel"
	"willgate/pkg/testutil/containers"
)

type RedisSnapshotStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *Store
	ctx   context.Context
}

func TestRedisSnapshotStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisSnapshotStoreSuite))
}

func (s *RedisSnapshotStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = New(s.redis.Client, "willgate-test:")
	s.ctx = context.Background()
}

func (s *RedisSnapshotStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(s.ctx))
}

var (
	acctA = domain.MustParseAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	acctB = domain.MustParseAddress("0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359")
)

func (s *RedisSnapshotStoreSuite) TestSaveLoadList() {
	s.Require().NoError(s.store.Save(s.ctx, models.Snapshot{Account: acctA, Version: 1, State: models.StateAwaitingLiveness}))
	s.Require().NoError(s.store.Save(s.ctx, models.Snapshot{Account: acctB, Version: 1, State: models.StateAwaitingQuorum}))

	got, err := s.store.Load(s.ctx, acctB)
	s.Require().NoError(err)
	s.Equal(models.StateAwaitingQuorum, got.State)

	list, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Len(list, 2)
}

func (s *RedisSnapshotStoreSuite) TestNeverRegresses() {
	s.Require().NoError(s.store.Save(s.ctx, models.Snapshot{Account: acctA, Version: 9, State: models.StateCertificateVerified}))
	s.Require().NoError(s.store.Save(s.ctx, models.Snapshot{Account: acctA, Version: 8, State: models.StateAwaitingCertificate}))

	got, err := s.store.Load(s.ctx, acctA)
	s.Require().NoError(err)
	s.Equal(uint64(9), got.Version)
	s.Equal(models.StateCertificateVerified, got.State)
}

func (s *RedisSnapshotStoreSuite) TestLoadMissing() {
	_, err := s.store.Load(s.ctx, acctA)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
