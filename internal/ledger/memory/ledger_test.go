package memory

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"willgate/internal/allocation"
	"willgate/pkg/domain"
	"willgate/pkg/platform/sentinel"
)

var (
	acct  = domain.MustParseAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	owner = domain.MustParseAddress("0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359")
	benA  = domain.MustParseAddress("0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB")
	benB  = domain.MustParseAddress("0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb")
)

func newFunded(t *testing.T, amount int64) *Ledger {
	t.Helper()
	l := New()
	l.Open(acct, owner)
	require.NoError(t, l.Deposit(acct, big.NewInt(amount)))
	return l
}

func TestLedger_UnknownAccount(t *testing.T) {
	l := New()
	_, err := l.GetOwner(context.Background(), acct)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	_, err = l.ExecuteDistribution(context.Background(), acct)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestLedger_OwnerAndBalance(t *testing.T) {
	l := newFunded(t, 1000)
	ctx := context.Background()

	got, err := l.GetOwner(ctx, acct)
	require.NoError(t, err)
	assert.Equal(t, owner, got)

	bal, err := l.GetBalance(ctx, acct)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), bal.Int64())

	bal.SetInt64(0)
	bal, _ = l.GetBalance(ctx, acct)
	assert.Equal(t, int64(1000), bal.Int64(), "returned balance is a copy")

	assert.Error(t, l.Deposit(acct, big.NewInt(0)))
}

func TestLedger_ExecuteDistributionPaysByPercentage(t *testing.T) {
	l := newFunded(t, 1001)
	ctx := context.Background()
	require.NoError(t, l.SyncBeneficiaries(ctx, acct, []allocation.Beneficiary{
		{Address: benA, Percentage: 60},
		{Address: benB, Percentage: 30},
	}))

	receipt, err := l.ExecuteDistribution(ctx, acct)
	require.NoError(t, err)
	require.Len(t, receipt.Payouts, 2)
	assert.Equal(t, int64(600), receipt.Payouts[0].Amount.Int64())
	assert.Equal(t, int64(300), receipt.Payouts[1].Amount.Int64())
	assert.Equal(t, int64(900), receipt.Total.Int64())
	assert.NotEmpty(t, receipt.ID)

	bal, _ := l.GetBalance(ctx, acct)
	assert.Equal(t, int64(101), bal.Int64(), "unallocated remainder stays pooled")

	again, err := l.ExecuteDistribution(ctx, acct)
	require.NoError(t, err)
	assert.Equal(t, receipt.ID, again.ID, "second call returns the same receipt")

	require.NoError(t, l.SyncBeneficiaries(ctx, acct, nil))
	roster, _ := l.GetBeneficiaries(ctx, acct)
	assert.Len(t, roster, 2, "roster frozen after payout")
}

func TestLedger_ExecuteDistributionFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("no beneficiaries", func(t *testing.T) {
		l := newFunded(t, 10)
		_, err := l.ExecuteDistribution(ctx, acct)
		assert.ErrorIs(t, err, ErrNoBeneficiaries)
	})

	t.Run("injected failure applies once", func(t *testing.T) {
		l := newFunded(t, 10)
		require.NoError(t, l.SyncBeneficiaries(ctx, acct, []allocation.Beneficiary{{Address: benA, Percentage: 100}}))
		boom := errors.New("gas estimation failed")
		require.NoError(t, l.FailNextDistribution(acct, boom))

		_, err := l.ExecuteDistribution(ctx, acct)
		assert.ErrorIs(t, err, boom)

		receipt, err := l.ExecuteDistribution(ctx, acct)
		require.NoError(t, err)
		assert.Equal(t, int64(10), receipt.Total.Int64())
	})
}
