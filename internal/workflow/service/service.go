// Package service orchestrates the release workflow for every account: the
// liveness countdown, the nominee vote, the certificate gate and the payout.
//
// Each account has one session guarded by its own mutex. Snapshots are written
// after the session lock is released; a per-session save mutex and the
// snapshot version keep stores from regressing.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"willgate/internal/certificate"
	"willgate/internal/liveness"
	"willgate/internal/workflow/metrics"
	"willgate/internal/workflow/models"
	"willgate/internal/workflow/ports"
	"willgate/pkg/domain"
	dErrors "willgate/pkg/domain-errors"
	"willgate/pkg/platform/audit"
	"willgate/pkg/platform/sentinel"
	"willgate/pkg/requestcontext"
)

const (
	defaultDistributionTimeout = 30 * time.Second
	// maxSweepAttempts stops the sweep from retrying a distribution forever.
	maxSweepAttempts = 5
)

// Store persists session snapshots. Save must ignore a snapshot whose version
// is not newer than the stored one. Load returns sentinel.ErrNotFound.
type Store interface {
	Save(ctx context.Context, snap models.Snapshot) error
	Load(ctx context.Context, account domain.Address) (models.Snapshot, error)
	List(ctx context.Context) ([]models.Snapshot, error)
}

// Service is the sole authority on whether an account's funds may be released.
type Service struct {
	ledger   ports.Ledger
	identity ports.Identity
	auditor  ports.AuditPublisher
	store    Store
	decoder  certificate.Decoder

	metrics *metrics.Metrics
	logger  *slog.Logger
	tracer  trace.Tracer

	window              int
	distributionTimeout time.Duration
	autoDistribute      bool

	mu       sync.RWMutex
	sessions map[domain.Address]*session
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(p ports.AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = p
	}
}

func WithStore(store Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithLivenessWindow sets the countdown length, in ticks, for new sessions.
func WithLivenessWindow(ticks int) Option {
	return func(s *Service) {
		if ticks > 0 {
			s.window = ticks
		}
	}
}

func WithDistributionTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.distributionTimeout = d
		}
	}
}

// WithAutoDistribute lets SweepDistributions pay out authorized sessions
// without a caller asking for it.
func WithAutoDistribute(enabled bool) Option {
	return func(s *Service) {
		s.autoDistribute = enabled
	}
}

// New wires the service. The decoder backs every session's certificate gate.
func New(ledger ports.Ledger, identity ports.Identity, decoder certificate.Decoder, opts ...Option) *Service {
	s := &Service{
		ledger:              ledger,
		identity:            identity,
		decoder:             decoder,
		logger:              slog.Default(),
		tracer:              otel.Tracer("willgate/workflow"),
		window:              liveness.DefaultWindow,
		distributionTimeout: defaultDistributionTimeout,
		sessions:            make(map[domain.Address]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartSession begins watching account. Only the owner reported by the ledger
// may start it; starting an existing session returns its status unchanged.
func (s *Service) StartSession(ctx context.Context, account, caller domain.Address) (*models.Status, error) {
	ctx, span := s.startSpan(ctx, "workflow.StartSession", account)
	defer span.End()

	owner, err := s.ledger.GetOwner(ctx, account)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, s.fail(span, fmt.Errorf("%w: %s", models.ErrAccountNotFound, account))
		}
		return nil, s.fail(span, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve account owner"))
	}
	if owner != caller {
		s.emit(ctx, s.denied(ctx, account, caller, "start session"))
		return nil, s.fail(span, models.ErrNotOwner)
	}

	if existing := s.lookup(account); existing != nil {
		return s.status(existing), nil
	}

	roster, err := s.ledger.GetBeneficiaries(ctx, account)
	if err != nil {
		return nil, s.fail(span, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load beneficiaries"))
	}

	s.mu.Lock()
	sess, ok := s.sessions[account]
	if !ok {
		sess = s.newSession(account, owner, s.window)
		sess.registry.Seed(roster)
		s.sessions[account] = sess
	}
	count := len(s.sessions)
	s.mu.Unlock()
	s.metrics.SetActiveSessions(count)

	if ok {
		return s.status(sess), nil
	}

	st, _ := s.mutateStatus(ctx, sess, func(sess *session) error {
		sess.record(ctx, audit.ActionSessionStarted, caller, "")
		sess.touch()
		return nil
	})
	s.logger.InfoContext(ctx, "workflow session started",
		"account", account.String(),
		"window", s.window,
		"request_id", requestcontext.RequestID(ctx),
	)
	return st, nil
}

// Status returns the current view of account's workflow.
func (s *Service) Status(ctx context.Context, account domain.Address) (*models.Status, error) {
	_, span := s.startSpan(ctx, "workflow.Status", account)
	defer span.End()

	sess := s.lookup(account)
	if sess == nil {
		return nil, s.fail(span, models.ErrSessionNotFound)
	}
	return s.status(sess), nil
}

// IsDistributionAuthorized reports whether account has cleared every layer and
// still has at least one beneficiary.
func (s *Service) IsDistributionAuthorized(ctx context.Context, account domain.Address) (bool, error) {
	sess := s.lookup(account)
	if sess == nil {
		return false, models.ErrSessionNotFound
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.authorizedLocked(), nil
}

// Restore rebuilds sessions from the store. A distribution that was in flight
// when the process stopped is marked failed so it can be retried.
func (s *Service) Restore(ctx context.Context) (int, error) {
	if s.store == nil {
		return 0, nil
	}
	snaps, err := s.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing workflow snapshots: %w", err)
	}

	restored := make([]*session, 0, len(snaps))
	s.mu.Lock()
	for _, snap := range snaps {
		if !snap.State.IsValid() {
			s.logger.WarnContext(ctx, "skipping snapshot with unknown state",
				"account", snap.Account.String(),
				"state", string(snap.State),
			)
			continue
		}
		sess := s.newSession(snap.Account, snap.Owner, snap.TimerWindow)
		sess.restore(snap)
		s.sessions[snap.Account] = sess
		restored = append(restored, sess)
	}
	count := len(s.sessions)
	s.mu.Unlock()
	s.metrics.SetActiveSessions(count)

	for _, sess := range restored {
		s.mutate(ctx, sess, func(sess *session) error {
			if sess.distribution.Status == models.DistributionInFlight {
				sess.distribution.Status = models.DistributionFailed
				sess.distribution.LastError = "interrupted by restart"
				sess.touch()
			}
			sess.record(ctx, audit.ActionSessionRestored, "", fmt.Sprintf("version=%d", sess.version))
			return nil
		})
	}
	s.logger.InfoContext(ctx, "workflow sessions restored", "count", len(restored))
	return len(restored), nil
}

// Accounts lists accounts with a live session.
func (s *Service) Accounts() []domain.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Address, 0, len(s.sessions))
	for a := range s.sessions {
		out = append(out, a)
	}
	return out
}

func (s *Service) lookup(account domain.Address) *session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[account]
}

func (s *Service) require(account domain.Address) (*session, error) {
	if sess := s.lookup(account); sess != nil {
		return sess, nil
	}
	return nil, fmt.Errorf("%w: %s", models.ErrSessionNotFound, account)
}

func (s *Service) snapshotSessions() []*session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	return out
}

func (s *Service) status(sess *session) *models.Status {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.statusLocked()
}

// requireOwner runs outside the session lock since it may call the ledger.
func (s *Service) requireOwner(ctx context.Context, account, caller domain.Address, op string) error {
	ok, err := s.identity.IsOwner(ctx, account, caller)
	if err != nil {
		return err
	}
	if !ok {
		s.emit(ctx, s.denied(ctx, account, caller, op))
		return models.ErrNotOwner
	}
	return nil
}

// mutate runs fn under the session lock, then persists and emits audit events
// once the lock is released.
func (s *Service) mutate(ctx context.Context, sess *session, fn func(*session) error) error {
	return s.commit(ctx, sess, fn, nil)
}

// mutateStatus is mutate for operations that answer with the session status.
// The status is read after the snapshot so its version matches the store.
func (s *Service) mutateStatus(ctx context.Context, sess *session, fn func(*session) error) (*models.Status, error) {
	var st *models.Status
	err := s.commit(ctx, sess, fn, func(sess *session) {
		st = sess.statusLocked()
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Service) commit(ctx context.Context, sess *session, fn func(*session) error, after func(*session)) error {
	sess.mu.Lock()
	err := fn(sess)
	snap, dirty := sess.takeSnapshot(requestcontext.Now(ctx))
	if err == nil && after != nil {
		after(sess)
	}
	events := sess.drainEvents()
	sess.mu.Unlock()

	if dirty {
		s.persist(ctx, sess, snap)
	}
	for _, e := range events {
		s.emit(ctx, e)
	}
	return err
}

func (s *Service) persist(ctx context.Context, sess *session, snap models.Snapshot) {
	if s.store == nil {
		return
	}
	sess.saveMu.Lock()
	defer sess.saveMu.Unlock()
	if snap.Version <= sess.savedVersion {
		return
	}
	if err := s.store.Save(ctx, snap); err != nil {
		s.metrics.IncrementSnapshotSaveError()
		s.logger.ErrorContext(ctx, "failed to save workflow snapshot",
			"account", snap.Account.String(),
			"version", snap.Version,
			"error", err,
		)
		return
	}
	sess.savedVersion = snap.Version
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", string(event.Action),
			"account", event.Account.String(),
			"error", err,
		)
	}
}

func (s *Service) denied(ctx context.Context, account, caller domain.Address, op string) audit.Event {
	return audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Account:   account,
		Actor:     caller,
		Action:    audit.ActionAccessDenied,
		Detail:    op,
		RequestID: requestcontext.RequestID(ctx),
	}
}

func (s *Service) startSpan(ctx context.Context, name string, account domain.Address) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attribute.String("willgate.account", account.String())))
}

func (s *Service) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	return err
}
