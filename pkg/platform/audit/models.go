// Package audit defines the audit trail emitted by the release workflow.
//
// Every state transition, vote, reset, roster change and distribution attempt is
// recorded as an Event. Stores persist events per account; sinks (Kafka) fan
// them out to downstream consumers.
package audit

import (
	"context"
	"time"

	"willgate/pkg/domain"
)

// Category classifies audit events by retention and routing needs.
type Category string

const (
	// CategoryCompliance covers actions that move or gate funds. Long retention.
	CategoryCompliance Category = "compliance"
	// CategorySecurity covers rejected or suspicious requests.
	CategorySecurity Category = "security"
	// CategoryOperations covers routine activity. Can be sampled.
	CategoryOperations Category = "operations"
)

// Action names what happened.
type Action string

const (
	ActionSessionStarted       Action = "session_started"
	ActionSessionRestored      Action = "session_restored"
	ActionLivenessAcknowledged Action = "liveness_acknowledged"
	ActionLivenessExpired      Action = "liveness_expired"
	ActionStateTransition      Action = "state_transition"
	ActionNomineeConnected     Action = "nominee_connected"
	ActionVoteCast             Action = "vote_cast"
	ActionVoteRejected         Action = "vote_rejected"
	ActionCertificateSubmitted Action = "certificate_submitted"
	ActionSoftReset            Action = "soft_reset"
	ActionHardReset            Action = "hard_reset"
	ActionBeneficiaryAdded     Action = "beneficiary_added"
	ActionBeneficiaryRemoved   Action = "beneficiary_removed"
	ActionRosterReconciled     Action = "roster_reconciled"
	ActionRosterChangedInVote  Action = "roster_changed_during_vote"
	ActionDistributionStarted  Action = "distribution_started"
	ActionDistributionSucceed  Action = "distribution_succeeded"
	ActionDistributionFailed   Action = "distribution_failed"
	ActionAccessDenied         Action = "access_denied"
)

var actionCategories = map[Action]Category{
	ActionStateTransition:     CategoryCompliance,
	ActionVoteCast:            CategoryCompliance,
	ActionSoftReset:           CategoryCompliance,
	ActionHardReset:           CategoryCompliance,
	ActionBeneficiaryAdded:    CategoryCompliance,
	ActionBeneficiaryRemoved:  CategoryCompliance,
	ActionRosterReconciled:    CategoryCompliance,
	ActionDistributionStarted: CategoryCompliance,
	ActionDistributionSucceed: CategoryCompliance,
	ActionDistributionFailed:  CategoryCompliance,
	ActionLivenessExpired:     CategoryCompliance,

	ActionVoteRejected:        CategorySecurity,
	ActionAccessDenied:        CategorySecurity,
	ActionRosterChangedInVote: CategorySecurity,
}

// Category returns the routing category. Unknown actions are operations.
func (a Action) Category() Category {
	if c, ok := actionCategories[a]; ok {
		return c
	}
	return CategoryOperations
}

// Event is transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string         `json:"id"`
	Category  Category       `json:"category"`
	Timestamp time.Time      `json:"timestamp"`
	Account   domain.Address `json:"account"`
	Actor     domain.Address `json:"actor,omitempty"`
	Action    Action         `json:"action"`
	State     string         `json:"state,omitempty"`
	Epoch     uint64         `json:"epoch"`
	Detail    string         `json:"detail,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

// Appender accepts events. Sinks only need this.
type Appender interface {
	Append(ctx context.Context, event Event) error
}

// Store persists events and lists them per account in append order.
type Store interface {
	Appender
	ListByAccount(ctx context.Context, account domain.Address) ([]Event, error)
}
