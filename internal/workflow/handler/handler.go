package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"willgate/internal/allocation"
	"willgate/internal/workflow/models"
	"willgate/internal/workflow/ports"
	"willgate/pkg/domain"
	dErrors "willgate/pkg/domain-errors"
	"willgate/pkg/platform/audit"
	"willgate/pkg/platform/httputil"
	"willgate/pkg/platform/middleware/admin"
	"willgate/pkg/platform/middleware/auth"
	request "willgate/pkg/platform/middleware/request"
	"willgate/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

// Service is the workflow surface exposed over HTTP.
type Service interface {
	StartSession(ctx context.Context, account, caller domain.Address) (*models.Status, error)
	Status(ctx context.Context, account domain.Address) (*models.Status, error)
	Acknowledge(ctx context.Context, account, caller domain.Address) (*models.Status, error)
	Connect(ctx context.Context, account, caller domain.Address) (*models.Presence, error)
	Presence(ctx context.Context, account domain.Address) ([]models.Presence, error)
	CastVote(ctx context.Context, account, caller domain.Address, choice string, epoch uint64) (*models.VoteResult, error)
	SubmitCertificate(ctx context.Context, account domain.Address, token string) (*models.CertificateResult, error)
	Reset(ctx context.Context, account, caller domain.Address, mode models.ResetMode) (*models.ResetResult, error)
	ListBeneficiaries(ctx context.Context, account domain.Address) (*allocation.Allocation, error)
	AddBeneficiary(ctx context.Context, account, caller domain.Address, address, displayName string, percentage int) (*allocation.Allocation, error)
	RemoveBeneficiary(ctx context.Context, account, caller domain.Address, address string) (*allocation.Allocation, error)
	ReconcileBeneficiaries(ctx context.Context, account, caller domain.Address) (*allocation.Allocation, error)
	Distribute(ctx context.Context, account, caller domain.Address) (*ports.Receipt, error)
	Distribution(ctx context.Context, account domain.Address) (*models.Distribution, error)
}

// AuditLister reads an account's audit trail for operators.
type AuditLister interface {
	List(ctx context.Context, account domain.Address) ([]audit.Event, error)
}

// Handler serves the account workflow routes.
type Handler struct {
	logger     *slog.Logger
	workflow   Service
	auditLog   AuditLister
	validator  auth.JWTValidator
	adminToken string
}

// New creates a workflow Handler. auditLog may be nil, in which case the
// operator audit route is not registered.
func New(workflow Service, auditLog AuditLister, validator auth.JWTValidator, adminToken string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:     logger,
		workflow:   workflow,
		auditLog:   auditLog,
		validator:  validator,
		adminToken: adminToken,
	}
}

// Register registers the workflow routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/v1/accounts/{account}", func(r chi.Router) {
		r.Use(auth.RequireAuth(h.validator, h.logger))

		r.Post("/session", h.handleStartSession)
		r.Get("/status", h.handleStatus)
		r.Post("/liveness/ack", h.handleAcknowledge)
		r.Post("/nominees/connect", h.handleConnect)
		r.Get("/nominees", h.handlePresence)
		r.Post("/votes", h.handleCastVote)
		r.Post("/certificate", h.handleSubmitCertificate)
		r.Post("/reset", h.handleReset)

		r.Get("/beneficiaries", h.handleListBeneficiaries)
		r.Post("/beneficiaries", h.handleAddBeneficiary)
		r.Delete("/beneficiaries/{address}", h.handleRemoveBeneficiary)
		r.Post("/beneficiaries/reconcile", h.handleReconcile)

		r.Post("/distribution", h.handleDistribute)
		r.Get("/distribution", h.handleDistribution)
	})

	if h.auditLog != nil {
		r.With(admin.RequireAdminToken(h.adminToken, h.logger)).
			Get("/v1/admin/accounts/{account}/audit", h.handleListAudit)
	}
}

func (h *Handler) handleStartSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account, caller, ok := h.target(w, r)
	if !ok {
		return
	}
	st, err := h.workflow.StartSession(ctx, account, caller)
	if err != nil {
		h.fail(ctx, w, "start session", account, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toStatusResponse(st))
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account, ok := h.account(w, r)
	if !ok {
		return
	}
	st, err := h.workflow.Status(ctx, account)
	if err != nil {
		h.fail(ctx, w, "status", account, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toStatusResponse(st))
}

func (h *Handler) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account, caller, ok := h.target(w, r)
	if !ok {
		return
	}
	st, err := h.workflow.Acknowledge(ctx, account, caller)
	if err != nil {
		h.fail(ctx, w, "acknowledge", account, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toStatusResponse(st))
}

func (h *Handler) handleConnect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account, caller, ok := h.target(w, r)
	if !ok {
		return
	}
	p, err := h.workflow.Connect(ctx, account, caller)
	if err != nil {
		h.fail(ctx, w, "connect", account, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handlePresence(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account, ok := h.account(w, r)
	if !ok {
		return
	}
	nominees, err := h.workflow.Presence(ctx, account)
	if err != nil {
		h.fail(ctx, w, "presence", account, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, PresenceResponse{Nominees: nominees})
}

func (h *Handler) handleCastVote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account, caller, ok := h.target(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[VoteRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	res, err := h.workflow.CastVote(ctx, account, caller, req.Choice, req.Epoch)
	if err != nil {
		h.fail(ctx, w, "cast vote", account, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleSubmitCertificate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account, ok := h.account(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[CertificateRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	res, err := h.workflow.SubmitCertificate(ctx, account, req.Proof())
	if err != nil {
		h.fail(ctx, w, "submit certificate", account, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account, caller, ok := h.target(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ResetRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	res, err := h.workflow.Reset(ctx, account, caller, req.mode)
	if err != nil {
		h.fail(ctx, w, "reset", account, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleListBeneficiaries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account, ok := h.account(w, r)
	if !ok {
		return
	}
	alloc, err := h.workflow.ListBeneficiaries(ctx, account)
	if err != nil {
		h.fail(ctx, w, "list beneficiaries", account, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, alloc)
}

func (h *Handler) handleAddBeneficiary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account, caller, ok := h.target(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[AddBeneficiaryRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	alloc, err := h.workflow.AddBeneficiary(ctx, account, caller, req.Address, req.DisplayName, req.Percentage)
	if err != nil {
		h.fail(ctx, w, "add beneficiary", account, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, alloc)
}

func (h *Handler) handleRemoveBeneficiary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account, caller, ok := h.target(w, r)
	if !ok {
		return
	}
	alloc, err := h.workflow.RemoveBeneficiary(ctx, account, caller, chi.URLParam(r, "address"))
	if err != nil {
		h.fail(ctx, w, "remove beneficiary", account, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, alloc)
}

func (h *Handler) handleReconcile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account, caller, ok := h.target(w, r)
	if !ok {
		return
	}
	alloc, err := h.workflow.ReconcileBeneficiaries(ctx, account, caller)
	if err != nil {
		h.fail(ctx, w, "reconcile beneficiaries", account, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, alloc)
}

func (h *Handler) handleDistribute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account, caller, ok := h.target(w, r)
	if !ok {
		return
	}
	receipt, err := h.workflow.Distribute(ctx, account, caller)
	if err != nil {
		h.fail(ctx, w, "distribute", account, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toReceiptResponse(receipt))
}

func (h *Handler) handleDistribution(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account, ok := h.account(w, r)
	if !ok {
		return
	}
	d, err := h.workflow.Distribution(ctx, account)
	if err != nil {
		h.fail(ctx, w, "distribution status", account, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDistributionResponse(d))
}

func (h *Handler) handleListAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account, err := domain.ParseAddress(chi.URLParam(r, "account"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	events, err := h.auditLog.List(ctx, account)
	if err != nil {
		h.fail(ctx, w, "list audit", account, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit events"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, AuditResponse{Account: account, Events: events})
}

// account parses the {account} path parameter. The auth middleware has
// already rejected anonymous callers.
func (h *Handler) account(w http.ResponseWriter, r *http.Request) (domain.Address, bool) {
	account, err := domain.ParseAddress(chi.URLParam(r, "account"))
	if err != nil {
		h.logger.WarnContext(r.Context(), "invalid account in path",
			"request_id", request.GetRequestID(r.Context()),
			"error", err,
		)
		httputil.WriteError(w, err)
		return "", false
	}
	return account, true
}

// target resolves the account and the authenticated caller.
func (h *Handler) target(w http.ResponseWriter, r *http.Request) (domain.Address, domain.Address, bool) {
	account, ok := h.account(w, r)
	if !ok {
		return "", "", false
	}
	caller := requestcontext.Identity(r.Context())
	if caller.IsNil() {
		h.logger.ErrorContext(r.Context(), "caller missing from context despite auth middleware",
			"request_id", request.GetRequestID(r.Context()),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return "", "", false
	}
	return account, caller, true
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, op string, account domain.Address, err error) {
	attrs := []any{
		"request_id", request.GetRequestID(ctx),
		"account", account,
		"error", err,
	}
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, op+" failed", attrs...)
	} else {
		h.logger.WarnContext(ctx, op+" rejected", attrs...)
	}
	httputil.WriteError(w, err)
}
