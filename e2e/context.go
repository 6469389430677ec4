// Package e2e drives the HTTP API end to end with Gherkin scenarios.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"willgate/internal/certificate"
	httpapi "willgate/internal/http"
	jwttoken "willgate/internal/jwt_token"
	ledgermem "willgate/internal/ledger/memory"
	"willgate/internal/workflow/adapters"
	"willgate/internal/workflow/handler"
	"willgate/internal/workflow/service"
	storemem "willgate/internal/workflow/store/memory"
	"willgate/pkg/domain"
	"willgate/pkg/platform/audit/publisher"
	auditmem "willgate/pkg/platform/audit/store/memory"
)

const (
	livenessWindow = 3
	signingKey     = "e2e-signing-key"
	adminToken     = "e2e-admin"
)

// scenarioAccount is the pooled-funds account every scenario works on.
var scenarioAccount = domain.MustParseAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")

// TestContext runs one in-process server per scenario and remembers the last
// response for assertions.
type TestContext struct {
	server  *httptest.Server
	svc     *service.Service
	ledger  *ledgermem.Ledger
	tokens  *jwttoken.JWTService
	wallets map[string]domain.Address

	lastStatus int
	lastBody   []byte
}

func NewTestContext() *TestContext {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ledger := ledgermem.New()
	decoder, err := certificate.NewStaticDecoder(nil)
	if err != nil {
		panic(err)
	}
	auditLog := publisher.NewPublisher(auditmem.NewInMemoryStore())
	svc := service.New(ledger, adapters.NewIdentityAdapter(ledger), decoder,
		service.WithLogger(logger),
		service.WithStore(storemem.NewInMemoryStore()),
		service.WithAuditPublisher(auditLog),
		service.WithLivenessWindow(livenessWindow),
	)
	tokens := jwttoken.NewJWTService(signingKey, "willgate", "willgate-api")
	router := httpapi.NewRouter(logger, nil, nil, nil,
		handler.New(svc, auditLog, jwttoken.NewJWTServiceAdapter(tokens), adminToken, logger),
	)
	return &TestContext{
		server:  httptest.NewServer(router),
		svc:     svc,
		ledger:  ledger,
		tokens:  tokens,
		wallets: make(map[string]domain.Address),
	}
}

func (tc *TestContext) Close() {
	tc.server.Close()
}

// Wallet maps a scenario name to a stable address.
func (tc *TestContext) Wallet(name string) string {
	if addr, ok := tc.wallets[name]; ok {
		return addr.String()
	}
	addr := domain.MustParseAddress(fmt.Sprintf("0x%040x", len(tc.wallets)+1))
	tc.wallets[name] = addr
	return addr.String()
}

func (tc *TestContext) Account() string {
	return scenarioAccount.String()
}

// OpenAccount registers the scenario account on the ledger.
func (tc *TestContext) OpenAccount(owner string, balance int64) error {
	tc.ledger.Open(scenarioAccount, domain.MustParseAddress(tc.Wallet(owner)))
	if balance == 0 {
		return nil
	}
	return tc.ledger.Deposit(scenarioAccount, big.NewInt(balance))
}

// ElapseLiveness ticks the countdown until the window runs out.
func (tc *TestContext) ElapseLiveness() error {
	for range livenessWindow {
		if err := tc.svc.Tick(context.Background(), scenarioAccount); err != nil {
			return err
		}
	}
	return nil
}

// Do sends a request on behalf of the named wallet. An empty name sends it
// without credentials.
func (tc *TestContext) Do(method, path, as string, body any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, tc.server.URL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if as != "" {
		token, err := tc.tokens.GenerateSessionToken(domain.MustParseAddress(tc.Wallet(as)), time.Hour)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := tc.server.Client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	tc.lastStatus = resp.StatusCode
	tc.lastBody, err = io.ReadAll(resp.Body)
	return err
}

func (tc *TestContext) StatusCode() int {
	return tc.lastStatus
}

// ResponseField resolves a dotted path such as "decision.outcome" in the last
// JSON response.
func (tc *TestContext) ResponseField(path string) (any, error) {
	var doc any
	if err := json.Unmarshal(tc.lastBody, &doc); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	for _, key := range strings.Split(path, ".") {
		obj, ok := doc.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %q: not an object", key)
		}
		if doc, ok = obj[key]; !ok {
			return nil, fmt.Errorf("field %q missing in %s", key, tc.lastBody)
		}
	}
	return doc, nil
}
