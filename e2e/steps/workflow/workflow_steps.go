package workflow

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext is what the workflow steps need from the scenario harness.
type TestContext interface {
	Do(method, path, as string, body any) error
	StatusCode() int
	ResponseField(path string) (any, error)
	Wallet(name string) string
	Account() string
	OpenAccount(owner string, balance int64) error
	ElapseLiveness() error
}

// RegisterSteps registers release-workflow step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &workflowSteps{tc: tc}

	ctx.Step(`^an account funded with (\d+) owned by "([^"]*)"$`, steps.accountFunded)
	ctx.Step(`^"([^"]*)" starts a session$`, steps.startSession)
	ctx.Step(`^"([^"]*)" adds beneficiary "([^"]*)" with (\d+) percent$`, steps.addBeneficiary)
	ctx.Step(`^the liveness window elapses$`, steps.livenessElapses)
	ctx.Step(`^"([^"]*)" acknowledges liveness$`, steps.acknowledge)
	ctx.Step(`^"([^"]*)" votes "([^"]*)"$`, steps.vote)
	ctx.Step(`^"([^"]*)" submits certificate "([^"]*)"$`, steps.submitCertificate)
	ctx.Step(`^"([^"]*)" requests a (soft|hard) reset$`, steps.reset)
	ctx.Step(`^"([^"]*)" requests distribution$`, steps.distribute)
	ctx.Step(`^an anonymous caller requests the status$`, steps.anonymousStatus)

	ctx.Step(`^the response status should be (\d+)$`, steps.responseStatusShouldBe)
	ctx.Step(`^the response error should be "([^"]*)"$`, steps.responseErrorShouldBe)
	ctx.Step(`^the workflow state should be "([^"]*)"$`, steps.stateShouldBe)
	ctx.Step(`^the current epoch should be (\d+)$`, steps.epochShouldBe)
	ctx.Step(`^"([^"]*)" should receive "([^"]*)"$`, steps.payoutShouldBe)
}

type workflowSteps struct {
	tc TestContext
}

func (s *workflowSteps) path(suffix string) string {
	return "/v1/accounts/" + s.tc.Account() + suffix
}

func (s *workflowSteps) accountFunded(_ context.Context, balance int64, owner string) error {
	return s.tc.OpenAccount(owner, balance)
}

func (s *workflowSteps) startSession(_ context.Context, who string) error {
	return s.tc.Do(http.MethodPost, s.path("/session"), who, nil)
}

func (s *workflowSteps) addBeneficiary(_ context.Context, who, beneficiary string, percentage int) error {
	return s.tc.Do(http.MethodPost, s.path("/beneficiaries"), who, map[string]any{
		"address":      s.tc.Wallet(beneficiary),
		"display_name": beneficiary,
		"percentage":   percentage,
	})
}

func (s *workflowSteps) livenessElapses(context.Context) error {
	return s.tc.ElapseLiveness()
}

func (s *workflowSteps) acknowledge(_ context.Context, who string) error {
	return s.tc.Do(http.MethodPost, s.path("/liveness/ack"), who, nil)
}

func (s *workflowSteps) vote(_ context.Context, who, choice string) error {
	return s.tc.Do(http.MethodPost, s.path("/votes"), who, map[string]any{"choice": choice})
}

func (s *workflowSteps) submitCertificate(_ context.Context, who, fileName string) error {
	return s.tc.Do(http.MethodPost, s.path("/certificate"), who, map[string]any{"file_name": fileName})
}

func (s *workflowSteps) reset(_ context.Context, who, mode string) error {
	return s.tc.Do(http.MethodPost, s.path("/reset"), who, map[string]any{"mode": mode})
}

func (s *workflowSteps) distribute(_ context.Context, who string) error {
	return s.tc.Do(http.MethodPost, s.path("/distribution"), who, nil)
}

func (s *workflowSteps) anonymousStatus(context.Context) error {
	return s.tc.Do(http.MethodGet, s.path("/status"), "", nil)
}

func (s *workflowSteps) responseStatusShouldBe(_ context.Context, want int) error {
	if got := s.tc.StatusCode(); got != want {
		return fmt.Errorf("expected status %d, got %d", want, got)
	}
	return nil
}

func (s *workflowSteps) responseErrorShouldBe(_ context.Context, want string) error {
	got, err := s.tc.ResponseField("error")
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("expected error %q, got %v", want, got)
	}
	return nil
}

// status re-reads the workflow status; the previous response is replaced.
func (s *workflowSteps) status(field string) (any, error) {
	if err := s.tc.Do(http.MethodGet, s.path("/status"), "observer", nil); err != nil {
		return nil, err
	}
	if s.tc.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("status request failed with %d", s.tc.StatusCode())
	}
	return s.tc.ResponseField(field)
}

func (s *workflowSteps) stateShouldBe(_ context.Context, want string) error {
	got, err := s.status("state")
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("expected state %s, got %v", want, got)
	}
	return nil
}

func (s *workflowSteps) epochShouldBe(_ context.Context, want int) error {
	got, err := s.status("epoch")
	if err != nil {
		return err
	}
	// JSON numbers decode as float64
	if n, ok := got.(float64); !ok || int(n) != want {
		return fmt.Errorf("expected epoch %d, got %v", want, got)
	}
	return nil
}

func (s *workflowSteps) payoutShouldBe(_ context.Context, who, want string) error {
	raw, err := s.tc.ResponseField("payouts")
	if err != nil {
		return err
	}
	payouts, ok := raw.([]any)
	if !ok {
		return fmt.Errorf("payouts is not a list: %v", raw)
	}
	addr := s.tc.Wallet(who)
	for _, p := range payouts {
		entry, ok := p.(map[string]any)
		if !ok {
			continue
		}
		if beneficiary, _ := entry["beneficiary"].(string); strings.EqualFold(beneficiary, addr) {
			if entry["amount"] != want {
				return fmt.Errorf("expected %s to receive %s, got %v", who, want, entry["amount"])
			}
			return nil
		}
	}
	return fmt.Errorf("no payout for %s", who)
}
