package adapters

import (
	"context"
	"errors"

	"willgate/internal/workflow/ports"
	"willgate/pkg/domain"
	dErrors "willgate/pkg/domain-errors"
	"willgate/pkg/platform/sentinel"
)

// IdentityAdapter implements ports.Identity by comparing the caller against
// the owner the ledger reports for the account.
type IdentityAdapter struct {
	ledger ports.Ledger
}

// NewIdentityAdapter creates an identity adapter backed by ledger.
func NewIdentityAdapter(ledger ports.Ledger) ports.Identity {
	return &IdentityAdapter{ledger: ledger}
}

// IsOwner reports false for unknown accounts instead of failing.
func (a *IdentityAdapter) IsOwner(ctx context.Context, account, identity domain.Address) (bool, error) {
	if identity.IsNil() {
		return false, nil
	}
	owner, err := a.ledger.GetOwner(ctx, account)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve account owner")
	}
	return owner == identity, nil
}
