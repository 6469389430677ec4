// Package memory is an in-process ledger that holds balances, owners and
// beneficiary rosters and pays out by percentage.
package memory

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"

	"willgate/internal/allocation"
	"willgate/internal/workflow/ports"
	"willgate/pkg/domain"
	"willgate/pkg/platform/sentinel"
)

// ErrNoBeneficiaries is returned when a distribution has nobody to pay.
var ErrNoBeneficiaries = errors.New("no beneficiaries")

type account struct {
	owner         domain.Address
	balance       *big.Int
	beneficiaries []allocation.Beneficiary
	receipt       *ports.Receipt
	failNext      error
}

// Ledger is safe for concurrent use.
type Ledger struct {
	mu       sync.Mutex
	accounts map[domain.Address]*account
	now      func() time.Time
}

func New() *Ledger {
	return &Ledger{accounts: make(map[domain.Address]*account), now: time.Now}
}

// Open registers an account with its owner. Reopening keeps the balance.
func (l *Ledger) Open(acct, owner domain.Address) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if a, ok := l.accounts[acct]; ok {
		a.owner = owner
		return
	}
	l.accounts[acct] = &account{owner: owner, balance: new(big.Int)}
}

// Deposit adds amount (in the smallest unit) to the pooled balance.
func (l *Ledger) Deposit(acct domain.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("deposit must be positive")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	a, err := l.get(acct)
	if err != nil {
		return err
	}
	a.balance.Add(a.balance, amount)
	return nil
}

// FailNextDistribution makes the next ExecuteDistribution for acct return err.
func (l *Ledger) FailNextDistribution(acct domain.Address, err error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, getErr := l.get(acct)
	if getErr != nil {
		return getErr
	}
	a.failNext = err
	return nil
}

func (l *Ledger) GetOwner(_ context.Context, acct domain.Address) (domain.Address, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, err := l.get(acct)
	if err != nil {
		return "", err
	}
	return a.owner, nil
}

func (l *Ledger) GetBalance(_ context.Context, acct domain.Address) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, err := l.get(acct)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(a.balance), nil
}

func (l *Ledger) GetBeneficiaries(_ context.Context, acct domain.Address) ([]allocation.Beneficiary, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, err := l.get(acct)
	if err != nil {
		return nil, err
	}
	return append([]allocation.Beneficiary{}, a.beneficiaries...), nil
}

func (l *Ledger) SyncBeneficiaries(_ context.Context, acct domain.Address, roster []allocation.Beneficiary) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, err := l.get(acct)
	if err != nil {
		return err
	}
	if a.receipt != nil {
		// roster is frozen once paid out
		return nil
	}
	a.beneficiaries = append([]allocation.Beneficiary{}, roster...)
	return nil
}

// ExecuteDistribution pays each beneficiary floor(balance*pct/100). The
// remainder stays in the pool. A second call returns the first receipt.
func (l *Ledger) ExecuteDistribution(_ context.Context, acct domain.Address) (*ports.Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, err := l.get(acct)
	if err != nil {
		return nil, err
	}
	if a.receipt != nil {
		return a.receipt, nil
	}
	if err := a.failNext; err != nil {
		a.failNext = nil
		return nil, err
	}
	if len(a.beneficiaries) == 0 {
		return nil, ErrNoBeneficiaries
	}

	hundred := big.NewInt(100)
	total := new(big.Int)
	payouts := make([]ports.Payout, 0, len(a.beneficiaries))
	for _, b := range a.beneficiaries {
		amt := new(big.Int).Mul(a.balance, big.NewInt(int64(b.Percentage)))
		amt.Quo(amt, hundred)
		total.Add(total, amt)
		payouts = append(payouts, ports.Payout{Beneficiary: b.Address, Percentage: b.Percentage, Amount: amt})
	}
	a.balance.Sub(a.balance, total)

	a.receipt = &ports.Receipt{
		ID:         uuid.NewString(),
		Account:    acct,
		Total:      total,
		Payouts:    payouts,
		ExecutedAt: l.now(),
	}
	return a.receipt, nil
}

func (l *Ledger) get(acct domain.Address) (*account, error) {
	a, ok := l.accounts[acct]
	if !ok {
		return nil, fmt.Errorf("ledger account %s: %w", acct, sentinel.ErrNotFound)
	}
	return a, nil
}
