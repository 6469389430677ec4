package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"willgate/pkg/domain"
	"willgate/pkg/platform/audit"
)

var (
	accountA = domain.MustParseAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	accountB = domain.MustParseAddress("0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359")
)

func TestInMemoryStore_ListByAccountIsolatesAccounts(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	require.NoError(t, s.Append(ctx, audit.Event{Account: accountA, Action: audit.ActionVoteCast}))
	require.NoError(t, s.Append(ctx, audit.Event{Account: accountB, Action: audit.ActionHardReset}))
	require.NoError(t, s.Append(ctx, audit.Event{Account: accountA, Action: audit.ActionSoftReset}))

	events, err := s.ListByAccount(ctx, accountA)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, audit.ActionVoteCast, events[0].Action)
	assert.Equal(t, audit.ActionSoftReset, events[1].Action)
}

func TestInMemoryStore_ListRecent(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	for _, a := range []audit.Action{audit.ActionSessionStarted, audit.ActionVoteCast, audit.ActionHardReset} {
		require.NoError(t, s.Append(ctx, audit.Event{Account: accountA, Action: a}))
	}

	events, err := s.ListRecent(ctx, accountA, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, audit.ActionVoteCast, events[0].Action)

	events, err = s.ListRecent(ctx, accountA, 10)
	require.NoError(t, err)
	assert.Len(t, events, 3)
}

func TestInMemoryStore_Clear(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	require.NoError(t, s.Append(ctx, audit.Event{Account: accountA}))
	s.Clear()
	events, err := s.ListByAccount(ctx, accountA)
	require.NoError(t, err)
	assert.Empty(t, events)
}
