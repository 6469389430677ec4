package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"willgate/internal/allocation"
	"willgate/internal/certificate"
	"willgate/internal/quorum"
	"willgate/internal/workflow/handler/mocks"
	"willgate/internal/workflow/models"
	"willgate/internal/workflow/ports"
	"willgate/pkg/domain"
	dErrors "willgate/pkg/domain-errors"
	"willgate/pkg/platform/audit"
	"willgate/pkg/platform/middleware/admin"
	"willgate/pkg/platform/middleware/auth"
	"willgate/pkg/testutil"
)

const (
	ownerToken   = "owner-token"
	nomineeToken = "nominee-token"
	testAdmin    = "admin-secret"
)

var (
	account = domain.MustParseAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	owner   = domain.MustParseAddress("0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359")
	nominee = domain.MustParseAddress("0x1111111111111111111111111111111111111111")
)

// tokenValidator resolves fixed bearer tokens to wallets.
type tokenValidator map[string]domain.Address

func (v tokenValidator) ValidateToken(token string) (*auth.JWTClaims, error) {
	wallet, ok := v[token]
	if !ok {
		return nil, errors.New("unknown token")
	}
	return &auth.JWTClaims{Wallet: wallet}, nil
}

type HandlerSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	workflow *mocks.MockService
	auditLog *mocks.MockAuditLister
	router   http.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.workflow = mocks.NewMockService(s.ctrl)
	s.auditLog = mocks.NewMockAuditLister(s.ctrl)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	validator := tokenValidator{ownerToken: owner, nomineeToken: nominee}
	h := New(s.workflow, s.auditLog, validator, testAdmin, logger)
	r := chi.NewRouter()
	h.Register(r)
	s.router = r
}

func (s *HandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *HandlerSuite) do(method, path, token string, body any) *httptest.ResponseRecorder {
	req := testutil.NewJSONRequest(s.T(), method, path, body)
	return testutil.DoRequest(s.router, testutil.WithBearer(req, token))
}

func (s *HandlerSuite) decode(rec *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(v))
}

func (s *HandlerSuite) errorCode(rec *httptest.ResponseRecorder) string {
	body := testutil.UnmarshalResponse[map[string]string](s.T(), rec)
	return (*body)["error"]
}

func path(suffix string) string {
	return "/v1/accounts/" + account.String() + suffix
}

func (s *HandlerSuite) TestAuthentication() {
	s.Run("missing bearer token", func() {
		rec := s.do(http.MethodGet, path("/status"), "", nil)
		s.Equal(http.StatusUnauthorized, rec.Code)
		s.Equal("unauthorized", s.errorCode(rec))
	})
	s.Run("unknown token", func() {
		rec := s.do(http.MethodGet, path("/status"), "forged", nil)
		s.Equal(http.StatusUnauthorized, rec.Code)
	})
}

func (s *HandlerSuite) TestInvalidAccountPath() {
	rec := s.do(http.MethodGet, "/v1/accounts/not-an-address/status", ownerToken, nil)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("validation", s.errorCode(rec))
}

func (s *HandlerSuite) TestStartSession() {
	s.workflow.EXPECT().StartSession(gomock.Any(), account, owner).Return(&models.Status{
		Account: account,
		Owner:   owner,
		State:   models.StateAwaitingLiveness,
		Distribution: models.Distribution{
			Status: models.DistributionNotStarted,
		},
	}, nil)

	rec := s.do(http.MethodPost, path("/session"), ownerToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	var body struct {
		State        models.State `json:"state"`
		Distribution struct {
			Status string `json:"status"`
		} `json:"distribution"`
	}
	s.decode(rec, &body)
	s.Equal(models.StateAwaitingLiveness, body.State)
	s.Equal("not_started", body.Distribution.Status)
}

func (s *HandlerSuite) TestAcknowledgeForbidden() {
	s.workflow.EXPECT().Acknowledge(gomock.Any(), account, nominee).Return(nil, models.ErrNotOwner)

	rec := s.do(http.MethodPost, path("/liveness/ack"), nomineeToken, nil)
	s.Equal(http.StatusForbidden, rec.Code)
	s.Equal("forbidden", s.errorCode(rec))
}

func (s *HandlerSuite) TestCastVote() {
	s.Run("normalizes choice and forwards epoch", func() {
		s.workflow.EXPECT().CastVote(gomock.Any(), account, nominee, "DEAD", uint64(2)).Return(&models.VoteResult{
			Epoch: 2,
			State: models.StateAwaitingQuorum,
		}, nil)

		rec := s.do(http.MethodPost, path("/votes"), nomineeToken, map[string]any{"choice": " dead ", "epoch": 2})
		s.Require().Equal(http.StatusOK, rec.Code)
		var res models.VoteResult
		s.decode(rec, &res)
		s.Equal(uint64(2), res.Epoch)
	})

	s.Run("rejects unknown choice without calling the service", func() {
		rec := s.do(http.MethodPost, path("/votes"), nomineeToken, map[string]any{"choice": "maybe"})
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("validation", s.errorCode(rec))
	})

	s.Run("rejects missing choice", func() {
		rec := s.do(http.MethodPost, path("/votes"), nomineeToken, map[string]any{})
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("maps stale epoch to conflict", func() {
		s.workflow.EXPECT().CastVote(gomock.Any(), account, nominee, "ALIVE", uint64(1)).
			Return(nil, quorum.ErrStaleEpoch)
		rec := s.do(http.MethodPost, path("/votes"), nomineeToken, map[string]any{"choice": "ALIVE", "epoch": 1})
		testutil.AssertStatusAndError(s.T(), rec, http.StatusConflict, "conflict")
	})

	s.Run("malformed JSON", func() {
		req := httptest.NewRequest(http.MethodPost, path("/votes"), bytes.NewBufferString("{"))
		req.Header.Set("Authorization", "Bearer "+nomineeToken)
		rec := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rec, http.StatusBadRequest, "bad_request")
	})
}

func (s *HandlerSuite) TestSubmitCertificate() {
	s.Run("file name is used when no token is given", func() {
		s.workflow.EXPECT().SubmitCertificate(gomock.Any(), account, "zk-proof-1.jpg").Return(&models.CertificateResult{
			Outcome: certificate.OutcomeVerified,
			State:   models.StateDistributionAuthorized,
		}, nil)

		rec := s.do(http.MethodPost, path("/certificate"), nomineeToken, map[string]string{"file_name": "zk-proof-1.jpg"})
		s.Require().Equal(http.StatusOK, rec.Code)
		var res models.CertificateResult
		s.decode(rec, &res)
		s.Equal(certificate.OutcomeVerified, res.Outcome)
	})

	s.Run("unrecognized proof is unprocessable", func() {
		s.workflow.EXPECT().SubmitCertificate(gomock.Any(), account, "holiday.jpg").Return(nil, certificate.ErrUnrecognized)
		rec := s.do(http.MethodPost, path("/certificate"), nomineeToken, map[string]string{"token": "holiday.jpg"})
		s.Equal(http.StatusUnprocessableEntity, rec.Code)
		s.Equal("gate_ambiguous", s.errorCode(rec))
	})

	s.Run("empty proof", func() {
		rec := s.do(http.MethodPost, path("/certificate"), nomineeToken, map[string]string{})
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestReset() {
	tests := []struct {
		name string
		body any
		mode models.ResetMode
	}{
		{name: "empty body defaults to soft", body: nil, mode: models.ResetSoft},
		{name: "explicit hard", body: map[string]string{"mode": "hard"}, mode: models.ResetHard},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.workflow.EXPECT().Reset(gomock.Any(), account, owner, tt.mode).Return(&models.ResetResult{
				Mode:  tt.mode,
				Epoch: 1,
				State: models.StateAwaitingQuorum,
			}, nil)
			rec := s.do(http.MethodPost, path("/reset"), ownerToken, tt.body)
			s.Require().Equal(http.StatusOK, rec.Code)
			var res models.ResetResult
			s.decode(rec, &res)
			s.Equal(tt.mode, res.Mode)
		})
	}

	s.Run("unknown mode", func() {
		rec := s.do(http.MethodPost, path("/reset"), ownerToken, map[string]string{"mode": "partial"})
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestBeneficiaries() {
	alloc := &allocation.Allocation{
		Beneficiaries: []allocation.Beneficiary{{Address: nominee, DisplayName: "Alice", Percentage: 60}},
		Total:         60,
		Unallocated:   40,
	}

	s.Run("add", func() {
		s.workflow.EXPECT().AddBeneficiary(gomock.Any(), account, owner, nominee.String(), "Alice", 60).Return(alloc, nil)
		rec := s.do(http.MethodPost, path("/beneficiaries"), ownerToken, map[string]any{
			"address":      nominee.String(),
			"display_name": "Alice",
			"percentage":   60,
		})
		s.Require().Equal(http.StatusCreated, rec.Code)
		var got allocation.Allocation
		s.decode(rec, &got)
		s.Equal(40, got.Unallocated)
	})

	s.Run("add over the limit", func() {
		s.workflow.EXPECT().AddBeneficiary(gomock.Any(), account, owner, nominee.String(), "", 50).
			Return(nil, allocation.ErrAllocationExceeded)
		rec := s.do(http.MethodPost, path("/beneficiaries"), ownerToken, map[string]any{
			"address":    nominee.String(),
			"percentage": 50,
		})
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("list", func() {
		s.workflow.EXPECT().ListBeneficiaries(gomock.Any(), account).Return(alloc, nil)
		rec := s.do(http.MethodGet, path("/beneficiaries"), nomineeToken, nil)
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("remove uses the path address", func() {
		s.workflow.EXPECT().RemoveBeneficiary(gomock.Any(), account, owner, nominee.String()).
			Return(&allocation.Allocation{Unallocated: 100}, nil)
		rec := s.do(http.MethodDelete, path("/beneficiaries/"+nominee.String()), ownerToken, nil)
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("reconcile", func() {
		s.workflow.EXPECT().ReconcileBeneficiaries(gomock.Any(), account, owner).Return(alloc, nil)
		rec := s.do(http.MethodPost, path("/beneficiaries/reconcile"), ownerToken, nil)
		s.Equal(http.StatusOK, rec.Code)
	})
}

func (s *HandlerSuite) TestNominees() {
	connectedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.workflow.EXPECT().Connect(gomock.Any(), account, nominee).Return(&models.Presence{
		Address:     nominee,
		IsNominee:   true,
		ConnectedAt: connectedAt,
	}, nil)
	rec := s.do(http.MethodPost, path("/nominees/connect"), nomineeToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	s.workflow.EXPECT().Presence(gomock.Any(), account).Return([]models.Presence{{Address: nominee, IsNominee: true}}, nil)
	rec = s.do(http.MethodGet, path("/nominees"), ownerToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var body PresenceResponse
	s.decode(rec, &body)
	s.Len(body.Nominees, 1)
}

func (s *HandlerSuite) TestDistribute() {
	s.Run("receipt amounts are decimal strings", func() {
		total, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
		s.workflow.EXPECT().Distribute(gomock.Any(), account, nominee).Return(&ports.Receipt{
			ID:      "r-1",
			Account: account,
			Total:   total,
			Payouts: []ports.Payout{{Beneficiary: nominee, Percentage: 100, Amount: total}},
		}, nil)

		rec := s.do(http.MethodPost, path("/distribution"), nomineeToken, nil)
		s.Require().Equal(http.StatusOK, rec.Code)
		var got ReceiptResponse
		s.decode(rec, &got)
		s.Equal("123456789012345678901234567890", got.Total)
		s.Require().Len(got.Payouts, 1)
		s.Equal(got.Total, got.Payouts[0].Amount)
	})

	s.Run("ledger failure is a bad gateway", func() {
		s.workflow.EXPECT().Distribute(gomock.Any(), account, nominee).
			Return(nil, dErrors.Wrap(errors.New("boom"), dErrors.CodeDistributionFailed, "distribution failed"))
		rec := s.do(http.MethodPost, path("/distribution"), nomineeToken, nil)
		s.Equal(http.StatusBadGateway, rec.Code)
	})

	s.Run("internal errors hide their description", func() {
		s.workflow.EXPECT().Distribute(gomock.Any(), account, nominee).
			Return(nil, dErrors.Wrap(errors.New("dsn=postgres://secret"), dErrors.CodeInternal, "store failed"))
		rec := s.do(http.MethodPost, path("/distribution"), nomineeToken, nil)
		s.Equal(http.StatusInternalServerError, rec.Code)
		s.NotContains(rec.Body.String(), "secret")
	})

	s.Run("status", func() {
		s.workflow.EXPECT().Distribution(gomock.Any(), account).Return(&models.Distribution{
			Status:    models.DistributionFailed,
			Attempts:  2,
			LastError: "ledger unavailable",
		}, nil)
		rec := s.do(http.MethodGet, path("/distribution"), ownerToken, nil)
		s.Require().Equal(http.StatusOK, rec.Code)
		var got DistributionResponse
		s.decode(rec, &got)
		s.Equal(models.DistributionFailed, got.Status)
		s.Equal(2, got.Attempts)
		s.Nil(got.Receipt)
	})
}

func (s *HandlerSuite) TestAuditRequiresAdminToken() {
	req := httptest.NewRequest(http.MethodGet, "/v1/admin/accounts/"+account.String()+"/audit", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusUnauthorized, rec.Code)

	s.auditLog.EXPECT().List(gomock.Any(), account).Return([]audit.Event{
		{ID: "e-1", Account: account, Action: audit.ActionSessionStarted},
	}, nil)
	req = httptest.NewRequest(http.MethodGet, "/v1/admin/accounts/"+account.String()+"/audit", nil)
	req.Header.Set(admin.HeaderAdminToken, testAdmin)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Require().Equal(http.StatusOK, rec.Code)
	var got AuditResponse
	s.decode(rec, &got)
	s.Require().Len(got.Events, 1)
	s.Equal(audit.ActionSessionStarted, got.Events[0].Action)
}

func TestAuditRouteOmittedWithoutLister(t *testing.T) {
	h := New(nil, nil, tokenValidator{}, testAdmin, nil)
	r := chi.NewRouter()
	h.Register(r)

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/accounts/"+account.String()+"/audit", nil)
	req.Header.Set(admin.HeaderAdminToken, testAdmin)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req.WithContext(context.Background()))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without an audit lister, got %d", rec.Code)
	}
}

func (s *HandlerSuite) TestHandlersRequireIdentityInContext() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(s.workflow, nil, tokenValidator{}, testAdmin, logger)
	r := chi.NewRouter()
	r.Post("/v1/accounts/{account}/liveness/ack", h.handleAcknowledge)

	s.Run("no identity is unauthorized", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, path("/liveness/ack"), nil)
		rec := testutil.DoRequest(r, testutil.WithRequestID(req, "req-1"))
		testutil.AssertStatusAndError(s.T(), rec, http.StatusUnauthorized, "unauthorized")
	})

	s.Run("identity set upstream reaches the service", func() {
		s.workflow.EXPECT().Acknowledge(gomock.Any(), account, owner).
			Return(&models.Status{Account: account, Owner: owner, State: models.StateAwaitingLiveness}, nil)
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, path("/liveness/ack"), nil)
		req = testutil.WithIdentity(testutil.WithRequestID(req, "req-2"), owner.String())
		rec := testutil.DoRequest(r, req)
		s.Equal(http.StatusOK, rec.Code)
	})
}
