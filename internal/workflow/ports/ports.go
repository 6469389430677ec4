// Package ports defines the collaborators the workflow service depends on.
package ports

import (
	"context"
	"math/big"
	"time"

	"willgate/internal/allocation"
	"willgate/pkg/domain"
	"willgate/pkg/platform/audit"
)

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

// Payout is one beneficiary's share of a distribution.
type Payout struct {
	Beneficiary domain.Address `json:"beneficiary"`
	Percentage  int            `json:"percentage"`
	Amount      *big.Int       `json:"amount"`
}

// Receipt is the ledger's record of an executed distribution.
type Receipt struct {
	ID         string         `json:"id"`
	Account    domain.Address `json:"account"`
	Total      *big.Int       `json:"total"`
	Payouts    []Payout       `json:"payouts"`
	ExecutedAt time.Time      `json:"executed_at"`
}

// Ledger is the funds-holding collaborator. GetBeneficiaries returns a bounded
// slice; it never signals end-of-list with an error.
type Ledger interface {
	GetBeneficiaries(ctx context.Context, account domain.Address) ([]allocation.Beneficiary, error)
	GetBalance(ctx context.Context, account domain.Address) (*big.Int, error)
	ExecuteDistribution(ctx context.Context, account domain.Address) (*Receipt, error)
	GetOwner(ctx context.Context, account domain.Address) (domain.Address, error)
}

// RosterSyncer is implemented by ledgers that accept the local roster before
// distribution. Ledgers that keep their own bookkeeping omit it.
type RosterSyncer interface {
	SyncBeneficiaries(ctx context.Context, account domain.Address, roster []allocation.Beneficiary) error
}

// Identity answers whether a caller owns an account.
type Identity interface {
	IsOwner(ctx context.Context, account, identity domain.Address) (bool, error)
}

// AuditPublisher records workflow events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
