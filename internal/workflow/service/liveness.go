package service

import (
	"context"
	"fmt"

	"willgate/internal/workflow/models"
	"willgate/pkg/domain"
	"willgate/pkg/platform/audit"
)

// Acknowledge resets the owner's liveness countdown. It fails once the window
// has elapsed; only a hard reset re-arms the timer.
func (s *Service) Acknowledge(ctx context.Context, account, caller domain.Address) (*models.Status, error) {
	ctx, span := s.startSpan(ctx, "workflow.Acknowledge", account)
	defer span.End()

	sess, err := s.require(account)
	if err != nil {
		return nil, s.fail(span, err)
	}
	if err := s.requireOwner(ctx, account, caller, "acknowledge"); err != nil {
		return nil, s.fail(span, err)
	}

	st, err := s.mutateStatus(ctx, sess, func(sess *session) error {
		if sess.state != models.StateAwaitingLiveness {
			return fmt.Errorf("%w: cannot acknowledge in %s", models.ErrInvalidState, sess.state)
		}
		if !sess.timer.Acknowledge() {
			return fmt.Errorf("%w: liveness window already elapsed", models.ErrInvalidState)
		}
		sess.record(ctx, audit.ActionLivenessAcknowledged, caller, "")
		sess.touch()
		return nil
	})
	if err != nil {
		return nil, s.fail(span, err)
	}
	return st, nil
}

// Tick advances account's countdown by one step. Expiry moves the session on
// to the nominee vote in the same critical section.
func (s *Service) Tick(ctx context.Context, account domain.Address) error {
	sess, err := s.require(account)
	if err != nil {
		return err
	}
	s.tick(ctx, sess)
	return nil
}

// TickAll ticks every session. It satisfies liveness.Target.
func (s *Service) TickAll(ctx context.Context) {
	for _, sess := range s.snapshotSessions() {
		if ctx.Err() != nil {
			return
		}
		s.tick(ctx, sess)
	}
}

func (s *Service) tick(ctx context.Context, sess *session) {
	var expired bool
	_ = s.mutate(ctx, sess, func(sess *session) error {
		if sess.state != models.StateAwaitingLiveness {
			return nil
		}
		if !sess.timer.Tick() {
			// countdown progress is saved by Checkpoint
			sess.pendingTimer = true
			return nil
		}
		expired = true
		sess.metrics.IncrementLivenessExpired()
		sess.record(ctx, audit.ActionLivenessExpired, "", "")
		_ = sess.transition(ctx, models.StateLivenessExpired, "liveness window elapsed")
		sess.advance(ctx)
		return nil
	})
	if expired {
		s.logger.InfoContext(ctx, "liveness window elapsed", "account", sess.account.String())
	}
}

// Checkpoint saves sessions whose countdown moved since their last snapshot.
func (s *Service) Checkpoint(ctx context.Context) int {
	saved := 0
	for _, sess := range s.snapshotSessions() {
		if ctx.Err() != nil {
			break
		}
		_ = s.mutate(ctx, sess, func(sess *session) error {
			if sess.pendingTimer {
				sess.touch()
				saved++
			}
			return nil
		})
	}
	return saved
}
