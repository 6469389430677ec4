package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"willgate/internal/certificate"
	"willgate/internal/quorum"
	"willgate/internal/workflow/models"
	"willgate/pkg/domain"
	dErrors "willgate/pkg/domain-errors"
	"willgate/pkg/platform/audit"
	"willgate/pkg/platform/device"
	"willgate/pkg/requestcontext"
)

// Connect registers a nominee's presence and tells them whether they are on
// the current roster and whether they already voted this epoch.
func (s *Service) Connect(ctx context.Context, account, caller domain.Address) (*models.Presence, error) {
	ctx, span := s.startSpan(ctx, "workflow.Connect", account)
	defer span.End()

	sess, err := s.require(account)
	if err != nil {
		return nil, s.fail(span, err)
	}

	var p models.Presence
	_ = s.mutate(ctx, sess, func(sess *session) error {
		p = models.Presence{
			Address:     caller,
			IsNominee:   sess.isNominee(caller),
			HasVoted:    sess.votes.HasVoted(caller),
			Epoch:       sess.votes.Epoch(),
			Device:      device.Label(requestcontext.UserAgent(ctx)),
			ConnectedAt: requestcontext.Now(ctx),
		}
		sess.presence[caller] = p
		sess.record(ctx, audit.ActionNomineeConnected, caller, p.Device)
		return nil
	})
	return &p, nil
}

// Presence lists nominees connected since the last hard reset.
func (s *Service) Presence(ctx context.Context, account domain.Address) ([]models.Presence, error) {
	sess, err := s.require(account)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	out := make([]models.Presence, 0, len(sess.presence))
	for _, addr := range sess.nominees() {
		if p, ok := sess.presence[addr]; ok {
			p.IsNominee = true
			p.HasVoted = sess.votes.HasVoted(addr)
			out = append(out, p)
		}
	}
	return out, nil
}

// nominees is the roster snapshot once the vote has opened, and the current
// beneficiaries before that.
func (sess *session) nominees() []domain.Address {
	switch sess.state {
	case models.StateAwaitingLiveness, models.StateLivenessExpired:
		return sess.registry.Addresses()
	}
	return sess.votes.Roster()
}

func (sess *session) isNominee(addr domain.Address) bool {
	return slices.Contains(sess.nominees(), addr)
}

// CastVote records a nominee's choice. An epoch of 0 means the current one.
func (s *Service) CastVote(ctx context.Context, account, caller domain.Address, choice string, epoch uint64) (*models.VoteResult, error) {
	ctx, span := s.startSpan(ctx, "workflow.CastVote", account)
	defer span.End()

	c, err := quorum.ParseChoice(choice)
	if err != nil {
		return nil, s.fail(span, err)
	}
	sess, err := s.require(account)
	if err != nil {
		return nil, s.fail(span, err)
	}

	var res *models.VoteResult
	err = s.mutate(ctx, sess, func(sess *session) error {
		if !sess.state.AcceptsVotes() {
			return fmt.Errorf("%w: votes are not accepted in %s", models.ErrInvalidState, sess.state)
		}
		if epoch == 0 {
			epoch = sess.votes.Epoch()
		}
		if _, err := sess.votes.CastVote(caller, c, epoch, requestcontext.Now(ctx)); err != nil {
			sess.metrics.IncrementVote(string(c), voteResult(err))
			sess.record(ctx, audit.ActionVoteRejected, caller, err.Error())
			return err
		}
		sess.metrics.IncrementVote(string(c), "accepted")
		sess.record(ctx, audit.ActionVoteCast, caller, string(c))
		sess.touch()
		sess.advance(ctx)
		res = &models.VoteResult{
			Epoch:    sess.votes.Epoch(),
			State:    sess.state,
			Decision: sess.decisionLocked(),
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(span, err)
	}
	return res, nil
}

func voteResult(err error) string {
	switch {
	case errors.Is(err, quorum.ErrNotANominee):
		return "not_a_nominee"
	case errors.Is(err, quorum.ErrAlreadyVoted):
		return "already_voted"
	case errors.Is(err, quorum.ErrStaleEpoch):
		return "stale_epoch"
	}
	return "rejected"
}

// Reset dispatches to SoftReset or HardReset.
func (s *Service) Reset(ctx context.Context, account, caller domain.Address, mode models.ResetMode) (*models.ResetResult, error) {
	if mode == models.ResetHard {
		return s.HardReset(ctx, account, caller)
	}
	return s.SoftReset(ctx, account, caller)
}

// SoftReset discards the current epoch's votes and reopens the vote with a
// fresh roster snapshot. It is only allowed while voting or after an ALIVE
// decision.
func (s *Service) SoftReset(ctx context.Context, account, caller domain.Address) (*models.ResetResult, error) {
	ctx, span := s.startSpan(ctx, "workflow.SoftReset", account)
	defer span.End()

	sess, err := s.require(account)
	if err != nil {
		return nil, s.fail(span, err)
	}
	if err := s.requireOwner(ctx, account, caller, "soft reset"); err != nil {
		return nil, s.fail(span, err)
	}

	var res *models.ResetResult
	err = s.mutate(ctx, sess, func(sess *session) error {
		if sess.state != models.StateAwaitingQuorum && sess.state != models.StateQuorumAliveDecided {
			return fmt.Errorf("%w: soft reset not allowed in %s", models.ErrInvalidState, sess.state)
		}
		epoch := sess.votes.SoftReset()
		sess.votes.Open(sess.registry.Addresses())
		sess.record(ctx, audit.ActionSoftReset, caller, fmt.Sprintf("epoch=%d", epoch))
		if err := sess.transition(ctx, models.StateAwaitingQuorum, "soft reset"); err != nil {
			return err
		}
		sess.advance(ctx)
		res = &models.ResetResult{Mode: models.ResetSoft, Epoch: epoch, State: sess.state}
		return nil
	})
	if err != nil {
		return nil, s.fail(span, err)
	}
	return res, nil
}

// HardReset returns the session to AwaitingLiveness: new epoch, re-armed timer,
// cleared certificate and presence. It is refused while a distribution is in
// flight and after one has succeeded.
func (s *Service) HardReset(ctx context.Context, account, caller domain.Address) (*models.ResetResult, error) {
	ctx, span := s.startSpan(ctx, "workflow.HardReset", account)
	defer span.End()

	sess, err := s.require(account)
	if err != nil {
		return nil, s.fail(span, err)
	}
	if err := s.requireOwner(ctx, account, caller, "hard reset"); err != nil {
		return nil, s.fail(span, err)
	}

	var res *models.ResetResult
	err = s.mutate(ctx, sess, func(sess *session) error {
		switch sess.distribution.Status {
		case models.DistributionInFlight:
			return fmt.Errorf("%w: cannot hard reset", models.ErrDistributionInFlight)
		case models.DistributionSucceeded:
			return dErrors.New(dErrors.CodeInvalidState, "funds already distributed")
		}
		epoch := sess.votes.HardReset()
		sess.timer.Restart()
		sess.gate.Restore(certificate.OutcomeNone)
		sess.distribution = models.Distribution{Status: models.DistributionNotStarted}
		sess.record(ctx, audit.ActionHardReset, caller, fmt.Sprintf("epoch=%d", epoch))
		if err := sess.transition(ctx, models.StateAwaitingLiveness, "hard reset"); err != nil {
			return err
		}
		res = &models.ResetResult{Mode: models.ResetHard, Epoch: epoch, State: sess.state}
		return nil
	})
	if err != nil {
		return nil, s.fail(span, err)
	}
	s.logger.InfoContext(ctx, "workflow hard reset",
		"account", account.String(),
		"epoch", res.Epoch,
		"request_id", requestcontext.RequestID(ctx),
	)
	return res, nil
}
