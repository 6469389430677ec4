// Package quorum records nominee votes on whether an account holder is alive
// and decides the outcome by strict majority of the nominee roster.
package quorum

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"willgate/pkg/domain"
	dErrors "willgate/pkg/domain-errors"
)

// Choice is a nominee's vote.
type Choice string

const (
	ChoiceAlive Choice = "ALIVE"
	ChoiceDead  Choice = "DEAD"
)

// ParseChoice accepts ALIVE or DEAD in any case.
func ParseChoice(s string) (Choice, error) {
	switch Choice(strings.ToUpper(strings.TrimSpace(s))) {
	case ChoiceAlive:
		return ChoiceAlive, nil
	case ChoiceDead:
		return ChoiceDead, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidChoice, s)
}

// Decision is the outcome of a tally against the roster size.
type Decision string

const (
	DecisionAlive     Decision = "ALIVE"
	DecisionDead      Decision = "DEAD"
	DecisionUndecided Decision = "UNDECIDED"
)

var (
	ErrInvalidChoice = dErrors.New(dErrors.CodeValidation, "choice must be ALIVE or DEAD")
	ErrNotANominee   = dErrors.New(dErrors.CodeConflict, "voter is not a nominee")
	ErrAlreadyVoted  = dErrors.New(dErrors.CodeConflict, "nominee already voted this epoch")
	ErrStaleEpoch    = dErrors.New(dErrors.CodeConflict, "vote epoch is not the current epoch")
)

type Vote struct {
	Voter  domain.Address `json:"voter"`
	Choice Choice         `json:"choice"`
	CastAt time.Time      `json:"cast_at"`
	Epoch  uint64         `json:"epoch"`
}

type Tally struct {
	Alive int `json:"alive"`
	Dead  int `json:"dead"`
}

// Decide is pure. A side wins when its count is more than half the roster
// (2*count > n, so exactly half is not a majority) and more than the other side.
func Decide(t Tally, totalNominees int) Decision {
	switch {
	case 2*t.Dead > totalNominees && t.Dead > t.Alive:
		return DecisionDead
	case 2*t.Alive > totalNominees && t.Alive > t.Dead:
		return DecisionAlive
	default:
		return DecisionUndecided
	}
}

// Leading describes which side is ahead regardless of turnout.
func Leading(t Tally) string {
	switch {
	case t.Alive > t.Dead:
		return "ALIVE"
	case t.Dead > t.Alive:
		return "DEAD"
	case t.Alive == 0:
		return "WAITING"
	default:
		return "TIE"
	}
}

// Explain renders a human-readable reason for Decide's result.
func Explain(t Tally, totalNominees int) string {
	switch Decide(t, totalNominees) {
	case DecisionAlive:
		return "ALIVE has more than half of possible votes."
	case DecisionDead:
		return "DEAD has more than half of possible votes."
	}
	if totalNominees == 0 {
		return "No nominees on the roster."
	}
	return "Not enough votes to determine outcome."
}

// Ledger owns the votes and the epoch counter. The roster is a snapshot taken
// by Open; later edits to the beneficiary registry do not change it.
type Ledger struct {
	mu        sync.Mutex
	epoch     uint64
	roster    []domain.Address
	rosterSet map[domain.Address]struct{}
	votes     []Vote

	hookMu sync.Mutex
	hooks  map[int]func(prevEpoch uint64)
	nextID int
}

// NewLedger starts at epoch 1 with an empty roster.
func NewLedger() *Ledger {
	return &Ledger{
		epoch:     1,
		rosterSet: map[domain.Address]struct{}{},
		hooks:     map[int]func(uint64){},
	}
}

// Open snapshots the nominee roster for the current epoch. Duplicates collapse.
func (l *Ledger) Open(roster []domain.Address) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.setRoster(roster)
}

func (l *Ledger) setRoster(roster []domain.Address) {
	l.roster = make([]domain.Address, 0, len(roster))
	l.rosterSet = make(map[domain.Address]struct{}, len(roster))
	for _, a := range roster {
		if _, ok := l.rosterSet[a]; ok {
			continue
		}
		l.rosterSet[a] = struct{}{}
		l.roster = append(l.roster, a)
	}
}

// CastVote records voter's choice for epoch and returns the new tally. The
// epoch, roster and duplicate checks and the append form one critical section.
func (l *Ledger) CastVote(voter domain.Address, choice Choice, epoch uint64, at time.Time) (Tally, error) {
	if choice != ChoiceAlive && choice != ChoiceDead {
		return Tally{}, fmt.Errorf("%w: %q", ErrInvalidChoice, choice)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if epoch != l.epoch {
		return Tally{}, fmt.Errorf("%w: got %d, current %d", ErrStaleEpoch, epoch, l.epoch)
	}
	if _, ok := l.rosterSet[voter]; !ok {
		return Tally{}, fmt.Errorf("%w: %s", ErrNotANominee, voter)
	}
	if l.hasVotedLocked(voter) {
		return Tally{}, fmt.Errorf("%w: %s", ErrAlreadyVoted, voter)
	}
	l.votes = append(l.votes, Vote{Voter: voter, Choice: choice, CastAt: at, Epoch: epoch})
	return l.tallyLocked(), nil
}

func (l *Ledger) Tally() Tally {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tallyLocked()
}

// Decision applies Decide to the current tally and roster size.
func (l *Ledger) Decision() (Decision, Tally, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	t := l.tallyLocked()
	return Decide(t, len(l.roster)), t, len(l.roster)
}

func (l *Ledger) tallyLocked() Tally {
	var t Tally
	for _, v := range l.votes {
		if v.Epoch != l.epoch {
			continue
		}
		switch v.Choice {
		case ChoiceAlive:
			t.Alive++
		case ChoiceDead:
			t.Dead++
		}
	}
	return t
}

// SoftReset clears votes and advances the epoch. The roster is untouched.
func (l *Ledger) SoftReset() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.votes = nil
	l.epoch++
	return l.epoch
}

// HardReset is SoftReset followed by the marker-clear hooks, which receive the
// epoch that was just closed.
func (l *Ledger) HardReset() uint64 {
	l.mu.Lock()
	prev := l.epoch
	l.votes = nil
	l.epoch++
	next := l.epoch
	l.mu.Unlock()

	for _, fn := range l.hookSnapshot() {
		fn(prev)
	}
	return next
}

// OnHardReset registers fn to clear per-voter markers kept outside the ledger.
func (l *Ledger) OnHardReset(fn func(prevEpoch uint64)) (cancel func()) {
	l.hookMu.Lock()
	id := l.nextID
	l.nextID++
	l.hooks[id] = fn
	l.hookMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.hookMu.Lock()
			delete(l.hooks, id)
			l.hookMu.Unlock()
		})
	}
}

func (l *Ledger) hookSnapshot() []func(uint64) {
	l.hookMu.Lock()
	defer l.hookMu.Unlock()
	ids := make([]int, 0, len(l.hooks))
	for id := range l.hooks {
		ids = append(ids, id)
	}
	fns := make([]func(uint64), 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, l.hooks[id])
	}
	return fns
}

func (l *Ledger) HasVoted(voter domain.Address) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.hasVotedLocked(voter)
}

func (l *Ledger) hasVotedLocked(voter domain.Address) bool {
	for _, v := range l.votes {
		if v.Epoch == l.epoch && v.Voter == voter {
			return true
		}
	}
	return false
}

func (l *Ledger) IsNominee(addr domain.Address) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.rosterSet[addr]
	return ok
}

// Votes returns the current epoch's votes in cast order.
func (l *Ledger) Votes() []Vote {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Vote{}, l.votes...)
}

func (l *Ledger) Epoch() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.epoch
}

func (l *Ledger) Roster() []domain.Address {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.Address{}, l.roster...)
}

// Restore loads persisted ledger state. Votes from other epochs are dropped.
func (l *Ledger) Restore(epoch uint64, roster []domain.Address, votes []Vote) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if epoch == 0 {
		epoch = 1
	}
	l.epoch = epoch
	l.setRoster(roster)
	l.votes = l.votes[:0]
	for _, v := range votes {
		if v.Epoch == epoch {
			l.votes = append(l.votes, v)
		}
	}
}
