// Package models holds the release workflow's states, transitions and the
// persisted per-account snapshot.
package models

import (
	"time"

	"willgate/internal/allocation"
	"willgate/internal/certificate"
	"willgate/internal/liveness"
	"willgate/internal/quorum"
	"willgate/internal/workflow/ports"
	"willgate/pkg/domain"
)

// State is a position in the release workflow.
type State string

const (
	StateAwaitingLiveness       State = "AwaitingLiveness"
	StateLivenessExpired        State = "LivenessExpired"
	StateAwaitingQuorum         State = "AwaitingQuorum"
	StateQuorumAliveDecided     State = "QuorumAliveDecided"
	StateQuorumDeadDecided      State = "QuorumDeadDecided"
	StateAwaitingCertificate    State = "AwaitingCertificate"
	StateCertificateVerified    State = "CertificateVerified"
	StateCertificateRejected    State = "CertificateRejected"
	StateDistributionAuthorized State = "DistributionAuthorized"
)

var transitions = map[State][]State{
	StateAwaitingLiveness:    {StateLivenessExpired},
	StateLivenessExpired:     {StateAwaitingQuorum},
	StateAwaitingQuorum:      {StateQuorumAliveDecided, StateQuorumDeadDecided, StateAwaitingQuorum},
	StateQuorumAliveDecided:  {StateAwaitingQuorum},
	StateQuorumDeadDecided:   {StateAwaitingCertificate},
	StateAwaitingCertificate: {StateCertificateVerified, StateCertificateRejected},
	StateCertificateRejected: {StateAwaitingCertificate},
	StateCertificateVerified: {StateDistributionAuthorized},
}

func (s State) IsValid() bool {
	switch s {
	case StateAwaitingLiveness, StateLivenessExpired, StateAwaitingQuorum,
		StateQuorumAliveDecided, StateQuorumDeadDecided, StateAwaitingCertificate,
		StateCertificateVerified, StateCertificateRejected, StateDistributionAuthorized:
		return true
	}
	return false
}

func (s State) String() string { return string(s) }

// CanTransition reports whether the workflow may move from s to next. A hard
// reset back to AwaitingLiveness is allowed from every state.
func (s State) CanTransition(next State) bool {
	if next == StateAwaitingLiveness {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AcceptsVotes reports whether nominee votes are taken in s.
func (s State) AcceptsVotes() bool { return s == StateAwaitingQuorum }

// AcceptsCertificate reports whether a certificate may be submitted in s.
func (s State) AcceptsCertificate() bool {
	return s == StateAwaitingCertificate || s == StateCertificateRejected
}

// Transition is one entry in a session's history.
type Transition struct {
	From   State     `json:"from"`
	To     State     `json:"to"`
	Reason string    `json:"reason"`
	Epoch  uint64    `json:"epoch"`
	At     time.Time `json:"at"`
}

// MaxHistory bounds the transition history kept per session.
const MaxHistory = 64

// ResetMode selects between vote-only and full resets.
type ResetMode string

const (
	ResetSoft ResetMode = "soft"
	ResetHard ResetMode = "hard"
)

// ParseResetMode defaults to soft when s is empty.
func ParseResetMode(s string) (ResetMode, error) {
	switch ResetMode(s) {
	case "", ResetSoft:
		return ResetSoft, nil
	case ResetHard:
		return ResetHard, nil
	}
	return "", ErrInvalidResetMode
}

type DistributionStatus string

const (
	DistributionNotStarted DistributionStatus = "not_started"
	DistributionInFlight   DistributionStatus = "in_flight"
	DistributionSucceeded  DistributionStatus = "succeeded"
	DistributionFailed     DistributionStatus = "failed"
)

// Distribution tracks the single payout an authorized session may perform.
type Distribution struct {
	Status     DistributionStatus `json:"status"`
	Receipt    *ports.Receipt     `json:"receipt,omitempty"`
	Attempts   int                `json:"attempts"`
	LastError  string             `json:"last_error,omitempty"`
	StartedAt  *time.Time         `json:"started_at,omitempty"`
	FinishedAt *time.Time         `json:"finished_at,omitempty"`
}

// Snapshot is the persisted form of a session. Version increases with every
// saved mutation; stores keep the highest version they have seen.
type Snapshot struct {
	Account        domain.Address           `json:"account"`
	Owner          domain.Address           `json:"owner"`
	State          State                    `json:"state"`
	Epoch          uint64                   `json:"epoch"`
	TimerRemaining int                      `json:"timer_remaining"`
	TimerRunning   bool                     `json:"timer_running"`
	TimerWindow    int                      `json:"timer_window"`
	Votes          []quorum.Vote            `json:"votes"`
	Beneficiaries  []allocation.Beneficiary `json:"beneficiaries"`
	RosterSnapshot []domain.Address         `json:"roster_snapshot"`
	Certificate    certificate.Outcome      `json:"certificate,omitempty"`
	Distribution   Distribution             `json:"distribution"`
	History        []Transition             `json:"history"`
	Version        uint64                   `json:"version"`
	UpdatedAt      time.Time                `json:"updated_at"`
}

// Decision summarizes the current quorum tally.
type Decision struct {
	Outcome     quorum.Decision `json:"outcome"`
	Tally       quorum.Tally    `json:"tally"`
	Nominees    int             `json:"nominees"`
	Leading     string          `json:"leading"`
	Explanation string          `json:"explanation"`
}

// Status is the read model returned by the service.
type Status struct {
	Account      domain.Address        `json:"account"`
	Owner        domain.Address        `json:"owner"`
	State        State                 `json:"state"`
	Epoch        uint64                `json:"epoch"`
	Liveness     liveness.State        `json:"liveness"`
	Decision     Decision              `json:"decision"`
	Certificate  certificate.Outcome   `json:"certificate,omitempty"`
	Allocation   allocation.Allocation `json:"allocation"`
	Distribution Distribution          `json:"distribution"`
	Authorized   bool                  `json:"authorized"`
	History      []Transition          `json:"history"`
	Version      uint64                `json:"version"`
}

// Presence is what a connecting nominee learns about themselves.
type Presence struct {
	Address     domain.Address `json:"address"`
	IsNominee   bool           `json:"is_nominee"`
	HasVoted    bool           `json:"has_voted"`
	Epoch       uint64         `json:"epoch"`
	Device      string         `json:"device,omitempty"`
	ConnectedAt time.Time      `json:"connected_at"`
}

// VoteResult is returned after a vote is recorded.
type VoteResult struct {
	Epoch    uint64   `json:"epoch"`
	State    State    `json:"state"`
	Decision Decision `json:"decision"`
}

// CertificateResult is returned after a certificate is evaluated.
type CertificateResult struct {
	Outcome certificate.Outcome `json:"outcome"`
	State   State               `json:"state"`
}

// ResetResult is returned by both reset modes.
type ResetResult struct {
	Mode  ResetMode `json:"mode"`
	Epoch uint64    `json:"epoch"`
	State State     `json:"state"`
}
