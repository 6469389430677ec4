package service

import (
	"context"
	"fmt"

	"willgate/internal/allocation"
	"willgate/internal/workflow/models"
	"willgate/pkg/domain"
	dErrors "willgate/pkg/domain-errors"
)

// AddBeneficiary adds a share to the roster. Edits never change an epoch's
// nominee snapshot; they are audited when a vote is open.
func (s *Service) AddBeneficiary(ctx context.Context, account, caller domain.Address, address, displayName string, percentage int) (*allocation.Allocation, error) {
	ctx, span := s.startSpan(ctx, "workflow.AddBeneficiary", account)
	defer span.End()

	sess, err := s.require(account)
	if err != nil {
		return nil, s.fail(span, err)
	}
	if err := s.requireOwner(ctx, account, caller, "add beneficiary"); err != nil {
		return nil, s.fail(span, err)
	}

	var out allocation.Allocation
	err = s.mutate(ctx, sess, func(sess *session) error {
		if err := sess.rosterEditable(); err != nil {
			return err
		}
		if _, err := sess.registry.Add(address, displayName, percentage); err != nil {
			return err
		}
		sess.applyRosterChanges(ctx, caller)
		out = sess.registry.List()
		return nil
	})
	if err != nil {
		return nil, s.fail(span, err)
	}
	return &out, nil
}

// RemoveBeneficiary drops address from the roster. Removing an absent address
// succeeds without change.
func (s *Service) RemoveBeneficiary(ctx context.Context, account, caller domain.Address, address string) (*allocation.Allocation, error) {
	ctx, span := s.startSpan(ctx, "workflow.RemoveBeneficiary", account)
	defer span.End()

	sess, err := s.require(account)
	if err != nil {
		return nil, s.fail(span, err)
	}
	if err := s.requireOwner(ctx, account, caller, "remove beneficiary"); err != nil {
		return nil, s.fail(span, err)
	}

	var out allocation.Allocation
	err = s.mutate(ctx, sess, func(sess *session) error {
		if err := sess.rosterEditable(); err != nil {
			return err
		}
		if _, err := sess.registry.Remove(address); err != nil {
			return err
		}
		sess.applyRosterChanges(ctx, caller)
		out = sess.registry.List()
		return nil
	})
	if err != nil {
		return nil, s.fail(span, err)
	}
	return &out, nil
}

func (s *Service) ListBeneficiaries(ctx context.Context, account domain.Address) (*allocation.Allocation, error) {
	sess, err := s.require(account)
	if err != nil {
		return nil, err
	}
	out := sess.registry.List()
	return &out, nil
}

// ReconcileBeneficiaries replaces the roster with the ledger's copy. The
// ledger is read before the session lock is taken.
func (s *Service) ReconcileBeneficiaries(ctx context.Context, account, caller domain.Address) (*allocation.Allocation, error) {
	ctx, span := s.startSpan(ctx, "workflow.ReconcileBeneficiaries", account)
	defer span.End()

	sess, err := s.require(account)
	if err != nil {
		return nil, s.fail(span, err)
	}
	if err := s.requireOwner(ctx, account, caller, "reconcile beneficiaries"); err != nil {
		return nil, s.fail(span, err)
	}
	roster, err := s.ledger.GetBeneficiaries(ctx, account)
	if err != nil {
		return nil, s.fail(span, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load beneficiaries from ledger"))
	}

	var out allocation.Allocation
	err = s.mutate(ctx, sess, func(sess *session) error {
		if err := sess.rosterEditable(); err != nil {
			return err
		}
		out = sess.registry.Reconcile(roster)
		sess.applyRosterChanges(ctx, caller)
		return nil
	})
	if err != nil {
		return nil, s.fail(span, err)
	}
	return &out, nil
}

func (sess *session) rosterEditable() error {
	switch sess.distribution.Status {
	case models.DistributionInFlight:
		return fmt.Errorf("%w: roster is locked", models.ErrDistributionInFlight)
	case models.DistributionSucceeded:
		return dErrors.New(dErrors.CodeInvalidState, "funds already distributed")
	}
	return nil
}
