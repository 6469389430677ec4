package adapters

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"willgate/internal/workflow/ports/mocks"
	"willgate/pkg/domain"
	dErrors "willgate/pkg/domain-errors"
	"willgate/pkg/platform/sentinel"
)

var (
	account  = domain.MustParseAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	owner    = domain.MustParseAddress("0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359")
	stranger = domain.MustParseAddress("0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB")
)

func TestIdentityAdapter_IsOwner(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledger := mocks.NewMockLedger(ctrl)
	adapter := NewIdentityAdapter(ledger)
	ctx := context.Background()

	ledger.EXPECT().GetOwner(gomock.Any(), account).Return(owner, nil).Times(2)

	ok, err := adapter.IsOwner(ctx, account, owner)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = adapter.IsOwner(ctx, account, stranger)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIdentityAdapter_EmptyIdentitySkipsLedger(t *testing.T) {
	ctrl := gomock.NewController(t)
	adapter := NewIdentityAdapter(mocks.NewMockLedger(ctrl))

	ok, err := adapter.IsOwner(context.Background(), account, "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIdentityAdapter_LedgerErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledger := mocks.NewMockLedger(ctrl)
	adapter := NewIdentityAdapter(ledger)
	ctx := context.Background()

	ledger.EXPECT().GetOwner(gomock.Any(), account).Return(domain.Address(""), fmt.Errorf("lookup: %w", sentinel.ErrNotFound))
	ok, err := adapter.IsOwner(ctx, account, owner)
	require.NoError(t, err)
	assert.False(t, ok)

	ledger.EXPECT().GetOwner(gomock.Any(), account).Return(domain.Address(""), errors.New("connection reset"))
	_, err = adapter.IsOwner(ctx, account, owner)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}
