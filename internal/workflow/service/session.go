package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"willgate/internal/allocation"
	"willgate/internal/certificate"
	"willgate/internal/liveness"
	"willgate/internal/quorum"
	"willgate/internal/workflow/metrics"
	"willgate/internal/workflow/models"
	"willgate/pkg/domain"
	"willgate/pkg/platform/audit"
	"willgate/pkg/requestcontext"
)

// session is one account's workflow. mu guards every field below it; the
// leaf components keep their own locks and are always taken after mu.
type session struct {
	account domain.Address
	owner   domain.Address
	metrics *metrics.Metrics

	mu           sync.Mutex
	state        models.State
	timer        *liveness.Timer
	votes        *quorum.Ledger
	gate         *certificate.Gate
	registry     *allocation.Registry
	distribution models.Distribution
	history      []models.Transition
	presence     map[domain.Address]models.Presence

	// changes collects registry notifications raised while mu is held.
	changes []allocation.Change
	events  []audit.Event

	version uint64
	dirty   bool
	// pendingTimer marks countdown progress not yet in a snapshot.
	pendingTimer bool

	saveMu       sync.Mutex
	savedVersion uint64
}

func (s *Service) newSession(account, owner domain.Address, window int) *session {
	sess := &session{
		account:      account,
		owner:        owner,
		metrics:      s.metrics,
		state:        models.StateAwaitingLiveness,
		timer:        liveness.NewTimer(window),
		votes:        quorum.NewLedger(),
		gate:         certificate.NewGate(s.decoder),
		registry:     allocation.NewRegistry(allocation.WithLogger(s.logger.With("account", account.String()))),
		distribution: models.Distribution{Status: models.DistributionNotStarted},
		presence:     make(map[domain.Address]models.Presence),
	}
	// Registry mutations only happen under sess.mu, so the callback appends
	// without further locking.
	sess.registry.Subscribe(func(c allocation.Change) {
		sess.changes = append(sess.changes, c)
	})
	// A hard reset logs every nominee out.
	sess.votes.OnHardReset(func(uint64) {
		clear(sess.presence)
	})
	return sess
}

func (sess *session) touch() {
	sess.dirty = true
}

// record queues an audit event for emission after the lock is released.
func (sess *session) record(ctx context.Context, action audit.Action, actor domain.Address, detail string) {
	sess.events = append(sess.events, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Account:   sess.account,
		Actor:     actor,
		Action:    action,
		State:     string(sess.state),
		Epoch:     sess.votes.Epoch(),
		Detail:    detail,
		RequestID: requestcontext.RequestID(ctx),
	})
}

func (sess *session) drainEvents() []audit.Event {
	events := sess.events
	sess.events = nil
	return events
}

// transition moves the session to next and records it.
func (sess *session) transition(ctx context.Context, next models.State, reason string) error {
	from := sess.state
	if !from.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", models.ErrInvalidState, from, next)
	}
	sess.state = next
	sess.history = append(sess.history, models.Transition{
		From:   from,
		To:     next,
		Reason: reason,
		Epoch:  sess.votes.Epoch(),
		At:     requestcontext.Now(ctx),
	})
	if over := len(sess.history) - models.MaxHistory; over > 0 {
		sess.history = append([]models.Transition(nil), sess.history[over:]...)
	}
	sess.metrics.IncrementTransition(string(from), string(next))
	sess.record(ctx, audit.ActionStateTransition, "", fmt.Sprintf("%s -> %s: %s", from, next, reason))
	sess.touch()
	return nil
}

// advance applies every orchestrator-driven transition that is currently due.
func (sess *session) advance(ctx context.Context) {
	for {
		switch sess.state {
		case models.StateLivenessExpired:
			sess.votes.Open(sess.registry.Addresses())
			_ = sess.transition(ctx, models.StateAwaitingQuorum, "quorum opened")

		case models.StateAwaitingQuorum:
			decision, _, _ := sess.votes.Decision()
			switch decision {
			case quorum.DecisionDead:
				_ = sess.transition(ctx, models.StateQuorumDeadDecided, "nominees decided DEAD")
			case quorum.DecisionAlive:
				_ = sess.transition(ctx, models.StateQuorumAliveDecided, "nominees decided ALIVE")
			default:
				return
			}

		case models.StateQuorumDeadDecided:
			_ = sess.transition(ctx, models.StateAwaitingCertificate, "awaiting death certificate")

		case models.StateCertificateVerified:
			if sess.registry.Len() == 0 {
				return
			}
			_ = sess.transition(ctx, models.StateDistributionAuthorized, "all layers cleared")

		default:
			return
		}
	}
}

// applyRosterChanges audits registry notifications and retries advancing a
// session that was waiting for a beneficiary.
func (sess *session) applyRosterChanges(ctx context.Context, actor domain.Address) {
	changes := sess.changes
	sess.changes = nil
	for _, c := range changes {
		var action audit.Action
		var detail string
		switch c.Kind {
		case allocation.ChangeAdded:
			action = audit.ActionBeneficiaryAdded
			detail = fmt.Sprintf("%s %d%% total=%d", c.Beneficiary.Address, c.Beneficiary.Percentage, c.Total)
		case allocation.ChangeRemoved:
			action = audit.ActionBeneficiaryRemoved
			detail = fmt.Sprintf("%s total=%d", c.Beneficiary.Address, c.Total)
		case allocation.ChangeReconciled:
			action = audit.ActionRosterReconciled
			detail = fmt.Sprintf("count=%d total=%d", c.Count, c.Total)
		}
		sess.record(ctx, action, actor, detail)
		if sess.state == models.StateAwaitingQuorum {
			sess.record(ctx, audit.ActionRosterChangedInVote, actor, "nominee roster for this epoch is unchanged")
		}
		sess.touch()
	}
	if len(changes) > 0 {
		sess.advance(ctx)
	}
}

func (sess *session) authorizedLocked() bool {
	return sess.state == models.StateDistributionAuthorized && sess.registry.Len() > 0
}

func (sess *session) decisionLocked() models.Decision {
	outcome, tally, n := sess.votes.Decision()
	return models.Decision{
		Outcome:     outcome,
		Tally:       tally,
		Nominees:    n,
		Leading:     quorum.Leading(tally),
		Explanation: quorum.Explain(tally, n),
	}
}

func (sess *session) statusLocked() *models.Status {
	return &models.Status{
		Account:      sess.account,
		Owner:        sess.owner,
		State:        sess.state,
		Epoch:        sess.votes.Epoch(),
		Liveness:     sess.timer.State(),
		Decision:     sess.decisionLocked(),
		Certificate:  sess.gate.Last(),
		Allocation:   sess.registry.List(),
		Distribution: sess.distribution,
		Authorized:   sess.authorizedLocked(),
		History:      append([]models.Transition(nil), sess.history...),
		Version:      sess.version,
	}
}

// takeSnapshot bumps the version when anything changed since the last one.
func (sess *session) takeSnapshot(now time.Time) (models.Snapshot, bool) {
	if !sess.dirty {
		return models.Snapshot{}, false
	}
	sess.dirty = false
	sess.pendingTimer = false
	sess.version++

	timer := sess.timer.State()
	return models.Snapshot{
		Account:        sess.account,
		Owner:          sess.owner,
		State:          sess.state,
		Epoch:          sess.votes.Epoch(),
		TimerRemaining: timer.Remaining,
		TimerRunning:   timer.Running,
		TimerWindow:    timer.Window,
		Votes:          sess.votes.Votes(),
		Beneficiaries:  sess.registry.List().Beneficiaries,
		RosterSnapshot: sess.votes.Roster(),
		Certificate:    sess.gate.Last(),
		Distribution:   sess.distribution,
		History:        append([]models.Transition(nil), sess.history...),
		Version:        sess.version,
		UpdatedAt:      now,
	}, true
}

func (sess *session) restore(snap models.Snapshot) {
	sess.state = snap.State
	sess.timer.Restore(snap.TimerRemaining, snap.TimerRunning)
	sess.votes.Restore(snap.Epoch, snap.RosterSnapshot, snap.Votes)
	sess.gate.Restore(snap.Certificate)
	sess.registry.Restore(snap.Beneficiaries)
	sess.distribution = snap.Distribution
	if sess.distribution.Status == "" {
		sess.distribution.Status = models.DistributionNotStarted
	}
	sess.history = append([]models.Transition(nil), snap.History...)
	sess.version = snap.Version
	sess.savedVersion = snap.Version
}
