package service

import (
	"context"
	"fmt"

	"willgate/internal/certificate"
	"willgate/internal/workflow/models"
	"willgate/pkg/domain"
	"willgate/pkg/platform/audit"
	"willgate/pkg/requestcontext"
)

// SubmitCertificate runs token through the certificate gate. A rejected
// session accepts a new certificate. An empty, unrecognized or undecodable
// token returns an error and leaves the workflow state where it was.
func (s *Service) SubmitCertificate(ctx context.Context, account domain.Address, token string) (*models.CertificateResult, error) {
	ctx, span := s.startSpan(ctx, "workflow.SubmitCertificate", account)
	defer span.End()

	sess, err := s.require(account)
	if err != nil {
		return nil, s.fail(span, err)
	}
	caller := requestcontext.Identity(ctx)

	var res *models.CertificateResult
	err = s.mutate(ctx, sess, func(sess *session) error {
		if !sess.state.AcceptsCertificate() {
			return fmt.Errorf("%w: certificate not expected in %s", models.ErrInvalidState, sess.state)
		}
		outcome, err := sess.gate.Verify(ctx, token)
		if outcome != certificate.OutcomeNone {
			sess.metrics.IncrementCertificate(string(outcome))
			sess.record(ctx, audit.ActionCertificateSubmitted, caller, string(outcome))
			sess.touch()
		}
		if err != nil {
			return err
		}

		if sess.state == models.StateCertificateRejected {
			if err := sess.transition(ctx, models.StateAwaitingCertificate, "new certificate submitted"); err != nil {
				return err
			}
		}
		switch outcome {
		case certificate.OutcomeVerified:
			_ = sess.transition(ctx, models.StateCertificateVerified, "certificate verified")
			sess.advance(ctx)
		case certificate.OutcomeRejected:
			_ = sess.transition(ctx, models.StateCertificateRejected, "certificate rejected")
		}
		res = &models.CertificateResult{Outcome: outcome, State: sess.state}
		return nil
	})
	if err != nil {
		return nil, s.fail(span, err)
	}
	return res, nil
}
