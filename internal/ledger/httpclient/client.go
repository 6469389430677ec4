// Package httpclient talks to a ledger gateway over JSON/HTTP.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"willgate/internal/allocation"
	"willgate/internal/workflow/ports"
	"willgate/pkg/domain"
	"willgate/pkg/platform/circuit"
	"willgate/pkg/platform/sentinel"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	maxResponseBytes   = 1 << 20
	// probeEvery lets one call through to the gateway while the circuit is open.
	probeEvery = 5
)

// ErrCircuitOpen is returned without contacting the gateway while it is considered down.
var ErrCircuitOpen = fmt.Errorf("ledger gateway circuit open: %w", sentinel.ErrUnavailable)

// Client implements ports.Ledger and ports.RosterSyncer.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *circuit.Breaker
	logger     *slog.Logger
	skipped    atomic.Int64
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Client) {
		if b != nil {
			c.breaker = b
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New builds a client for the gateway rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("ledger gateway url %q is not absolute", baseURL)
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		breaker:    circuit.New("ledger-gateway", circuit.WithFailureThreshold(3), circuit.WithSuccessThreshold(1)),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Breaker exposes the circuit state for health reporting.
func (c *Client) Breaker() *circuit.Breaker {
	return c.breaker
}

type httpStatusError struct {
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("ledger gateway: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

type beneficiaryJSON struct {
	Address     string `json:"address"`
	DisplayName string `json:"display_name"`
	Percentage  int    `json:"percentage"`
}

type payoutJSON struct {
	Beneficiary string `json:"beneficiary"`
	Percentage  int    `json:"percentage"`
	Amount      string `json:"amount"`
}

type receiptJSON struct {
	ID         string       `json:"id"`
	Account    string       `json:"account"`
	Total      string       `json:"total"`
	Payouts    []payoutJSON `json:"payouts"`
	ExecutedAt time.Time    `json:"executed_at"`
}

func (c *Client) GetBeneficiaries(ctx context.Context, account domain.Address) ([]allocation.Beneficiary, error) {
	var body struct {
		Beneficiaries []beneficiaryJSON `json:"beneficiaries"`
	}
	if err := c.do(ctx, http.MethodGet, accountPath(account, "beneficiaries"), nil, &body); err != nil {
		return nil, err
	}
	if len(body.Beneficiaries) > allocation.MaxTotal {
		return nil, fmt.Errorf("ledger gateway returned %d beneficiaries, limit is %d", len(body.Beneficiaries), allocation.MaxTotal)
	}
	out := make([]allocation.Beneficiary, 0, len(body.Beneficiaries))
	for _, b := range body.Beneficiaries {
		addr, err := domain.ParseAddress(b.Address)
		if err != nil {
			return nil, fmt.Errorf("ledger gateway beneficiary: %w", err)
		}
		out = append(out, allocation.Beneficiary{Address: addr, DisplayName: b.DisplayName, Percentage: b.Percentage})
	}
	return out, nil
}

func (c *Client) GetBalance(ctx context.Context, account domain.Address) (*big.Int, error) {
	var body struct {
		Balance string `json:"balance"`
	}
	if err := c.do(ctx, http.MethodGet, accountPath(account, "balance"), nil, &body); err != nil {
		return nil, err
	}
	return parseAmount(body.Balance)
}

func (c *Client) GetOwner(ctx context.Context, account domain.Address) (domain.Address, error) {
	var body struct {
		Owner string `json:"owner"`
	}
	if err := c.do(ctx, http.MethodGet, accountPath(account, "owner"), nil, &body); err != nil {
		return "", err
	}
	return domain.ParseAddress(body.Owner)
}

func (c *Client) SyncBeneficiaries(ctx context.Context, account domain.Address, roster []allocation.Beneficiary) error {
	payload := struct {
		Beneficiaries []beneficiaryJSON `json:"beneficiaries"`
	}{Beneficiaries: make([]beneficiaryJSON, 0, len(roster))}
	for _, b := range roster {
		payload.Beneficiaries = append(payload.Beneficiaries, beneficiaryJSON{
			Address:     b.Address.String(),
			DisplayName: b.DisplayName,
			Percentage:  b.Percentage,
		})
	}
	return c.do(ctx, http.MethodPut, accountPath(account, "beneficiaries"), payload, nil)
}

// ExecuteDistribution asks the gateway to pay out. The gateway is expected to
// answer a repeated request with the original receipt.
func (c *Client) ExecuteDistribution(ctx context.Context, account domain.Address) (*ports.Receipt, error) {
	var body receiptJSON
	if err := c.do(ctx, http.MethodPost, accountPath(account, "distributions"), struct{}{}, &body); err != nil {
		return nil, err
	}
	total, err := parseAmount(body.Total)
	if err != nil {
		return nil, err
	}
	receipt := &ports.Receipt{
		ID:         body.ID,
		Account:    account,
		Total:      total,
		ExecutedAt: body.ExecutedAt,
		Payouts:    make([]ports.Payout, 0, len(body.Payouts)),
	}
	for _, p := range body.Payouts {
		addr, err := domain.ParseAddress(p.Beneficiary)
		if err != nil {
			return nil, fmt.Errorf("ledger gateway payout: %w", err)
		}
		amt, err := parseAmount(p.Amount)
		if err != nil {
			return nil, err
		}
		receipt.Payouts = append(receipt.Payouts, ports.Payout{Beneficiary: addr, Percentage: p.Percentage, Amount: amt})
	}
	if receipt.ID == "" {
		return nil, errors.New("ledger gateway receipt has no id")
	}
	return receipt, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if c.breaker.IsOpen() && c.skipped.Add(1)%probeEvery != 0 {
		return ErrCircuitOpen
	}

	var reqBody io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("ledger gateway: encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("ledger gateway: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordFailure(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("ledger gateway %s %s: %w", method, path, ctxErr)
		}
		return fmt.Errorf("ledger gateway %s %s: %v: %w", method, path, err, sentinel.ErrUnavailable)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.recordFailure(ctx)
		return fmt.Errorf("ledger gateway: read response: %w", err)
	}

	switch {
	case resp.StatusCode >= 500:
		c.recordFailure(ctx)
		return fmt.Errorf("%w: %w", &httpStatusError{StatusCode: resp.StatusCode, Body: string(raw)}, sentinel.ErrUnavailable)
	case resp.StatusCode == http.StatusNotFound:
		c.recordSuccess(ctx)
		return fmt.Errorf("ledger gateway %s: %w", path, sentinel.ErrNotFound)
	case resp.StatusCode == http.StatusConflict:
		c.recordSuccess(ctx)
		return fmt.Errorf("%w: %w", &httpStatusError{StatusCode: resp.StatusCode, Body: string(raw)}, sentinel.ErrConflict)
	case resp.StatusCode >= 300:
		c.recordSuccess(ctx)
		return &httpStatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	c.recordSuccess(ctx)

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("ledger gateway: decode response: %w", err)
	}
	return nil
}

func (c *Client) recordFailure(ctx context.Context) {
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.WarnContext(ctx, "ledger gateway circuit opened", "breaker", c.breaker.Name())
	}
}

func (c *Client) recordSuccess(ctx context.Context) {
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "ledger gateway circuit closed", "breaker", c.breaker.Name())
	}
}

func accountPath(account domain.Address, resource string) string {
	return "/accounts/" + url.PathEscape(account.String()) + "/" + resource
}

func parseAmount(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("ledger gateway: invalid amount %q", s)
	}
	return v, nil
}
