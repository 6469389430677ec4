package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"willgate/internal/allocation"
	"willgate/internal/workflow/models"
	"willgate/internal/workflow/ports"
	"willgate/pkg/domain"
	dErrors "willgate/pkg/domain-errors"
	"willgate/pkg/platform/audit"
	"willgate/pkg/requestcontext"
)

// Distribute executes the payout for an authorized session. The ledger is
// called outside the session lock with a timeout; the session is marked in
// flight meanwhile. A succeeded distribution returns its receipt again.
func (s *Service) Distribute(ctx context.Context, account, caller domain.Address) (*ports.Receipt, error) {
	ctx, span := s.startSpan(ctx, "workflow.Distribute", account)
	defer span.End()

	sess, err := s.require(account)
	if err != nil {
		return nil, s.fail(span, err)
	}
	receipt, err := s.distribute(ctx, sess, caller)
	if err != nil {
		return nil, s.fail(span, err)
	}
	return receipt, nil
}

// Distribution returns the distribution record for account.
func (s *Service) Distribution(ctx context.Context, account domain.Address) (*models.Distribution, error) {
	sess, err := s.require(account)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	d := sess.distribution
	return &d, nil
}

// SweepDistributions pays out authorized sessions whose distribution has not
// started or previously failed. It does nothing unless auto distribution is on.
func (s *Service) SweepDistributions(ctx context.Context) int {
	if !s.autoDistribute {
		return 0
	}
	done := 0
	for _, sess := range s.snapshotSessions() {
		if ctx.Err() != nil {
			break
		}
		sess.mu.Lock()
		due := sess.authorizedLocked() &&
			(sess.distribution.Status == models.DistributionNotStarted || sess.distribution.Status == models.DistributionFailed) &&
			sess.distribution.Attempts < maxSweepAttempts
		sess.mu.Unlock()
		if !due {
			continue
		}
		if _, err := s.distribute(ctx, sess, ""); err != nil {
			s.logger.WarnContext(ctx, "automatic distribution failed",
				"account", sess.account.String(),
				"error", err,
			)
			continue
		}
		done++
	}
	return done
}

func (s *Service) distribute(ctx context.Context, sess *session, caller domain.Address) (*ports.Receipt, error) {
	var (
		existing *ports.Receipt
		roster   []allocation.Beneficiary
	)
	err := s.mutate(ctx, sess, func(sess *session) error {
		if sess.distribution.Status == models.DistributionSucceeded {
			existing = sess.distribution.Receipt
			return nil
		}
		if sess.state != models.StateDistributionAuthorized {
			return fmt.Errorf("%w: session is in %s", models.ErrNotAuthorized, sess.state)
		}
		if sess.distribution.Status == models.DistributionInFlight {
			return models.ErrDistributionInFlight
		}
		if sess.registry.Len() == 0 {
			return models.ErrNoBeneficiaries
		}
		roster = sess.registry.List().Beneficiaries
		now := requestcontext.Now(ctx)
		sess.distribution.Status = models.DistributionInFlight
		sess.distribution.Attempts++
		sess.distribution.LastError = ""
		sess.distribution.StartedAt = &now
		sess.distribution.FinishedAt = nil
		sess.record(ctx, audit.ActionDistributionStarted, caller, fmt.Sprintf("attempt=%d", sess.distribution.Attempts))
		sess.touch()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	start := time.Now()
	receipt, callErr := s.callLedger(ctx, sess, roster)
	result := "succeeded"
	if callErr != nil {
		result = "failed"
	}
	s.metrics.ObserveDistribution(result, time.Since(start))

	// the outcome is recorded even if the caller has gone away
	ctx = context.WithoutCancel(ctx)
	var outErr error
	_ = s.mutate(ctx, sess, func(sess *session) error {
		now := requestcontext.Now(ctx)
		sess.distribution.FinishedAt = &now
		sess.touch()
		if callErr != nil {
			sess.distribution.Status = models.DistributionFailed
			sess.distribution.LastError = callErr.Error()
			sess.record(ctx, audit.ActionDistributionFailed, caller, callErr.Error())
			outErr = distributionError(callErr)
			return nil
		}
		sess.distribution.Status = models.DistributionSucceeded
		sess.distribution.Receipt = receipt
		sess.record(ctx, audit.ActionDistributionSucceed, caller, fmt.Sprintf("receipt=%s total=%s", receipt.ID, receipt.Total))
		return nil
	})
	if outErr != nil {
		s.logger.ErrorContext(ctx, "distribution failed",
			"account", sess.account.String(),
			"error", callErr,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, outErr
	}
	s.logger.InfoContext(ctx, "distribution succeeded",
		"account", sess.account.String(),
		"receipt", receipt.ID,
		"payouts", len(receipt.Payouts),
		"request_id", requestcontext.RequestID(ctx),
	)
	return receipt, nil
}

func (s *Service) callLedger(ctx context.Context, sess *session, roster []allocation.Beneficiary) (*ports.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, s.distributionTimeout)
	defer cancel()

	if syncer, ok := s.ledger.(ports.RosterSyncer); ok {
		if err := syncer.SyncBeneficiaries(ctx, sess.account, roster); err != nil {
			return nil, fmt.Errorf("syncing beneficiaries: %w", err)
		}
	}
	receipt, err := s.ledger.ExecuteDistribution(ctx, sess.account)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, errors.New("ledger returned no receipt")
	}
	return receipt, nil
}

func distributionError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "distribution timed out")
	}
	return dErrors.Wrap(err, dErrors.CodeDistributionFailed, models.ErrDistributionFailed.Message)
}
