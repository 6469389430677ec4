// Package allocation holds an account's beneficiary roster and enforces that
// shares never sum past 100 percent.
package allocation

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"willgate/pkg/domain"
	dErrors "willgate/pkg/domain-errors"
)

const (
	// MaxTotal is the ceiling for the sum of all shares.
	MaxTotal = 100
	// MaxDisplayNameRunes bounds display names after normalization.
	MaxDisplayNameRunes = 64
)

var (
	ErrInvalidPercentage    = dErrors.New(dErrors.CodeValidation, "percentage must be between 1 and 100")
	ErrAllocationExceeded   = dErrors.New(dErrors.CodeValidation, "allocation exceeds 100 percent")
	ErrDuplicateBeneficiary = dErrors.New(dErrors.CodeConflict, "beneficiary already present")
	ErrInvalidDisplayName   = dErrors.New(dErrors.CodeValidation, "display name too long")
)

// Beneficiary is one roster entry.
type Beneficiary struct {
	Address     domain.Address `json:"address"`
	DisplayName string         `json:"display_name"`
	Percentage  int            `json:"percentage"`
}

// Allocation is a listing of the roster.
type Allocation struct {
	Beneficiaries []Beneficiary `json:"beneficiaries"`
	Total         int           `json:"total"`
	// Unallocated is 100 minus Total, or 0 when nothing remains.
	Unallocated int `json:"unallocated"`
}

type ChangeKind string

const (
	ChangeAdded      ChangeKind = "added"
	ChangeRemoved    ChangeKind = "removed"
	ChangeReconciled ChangeKind = "reconciled"
)

// Change is delivered to subscribers after a mutation is applied.
type Change struct {
	Kind        ChangeKind
	Beneficiary Beneficiary
	Total       int
	Count       int
}

// Registry is safe for concurrent use. Subscribers run synchronously after the
// registry lock is released, in subscription order.
type Registry struct {
	mu      sync.RWMutex
	entries []Beneficiary
	total   int

	subMu  sync.Mutex
	subs   map[int]func(Change)
	nextID int

	logger *slog.Logger
}

type Option func(*Registry)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		subs:   make(map[int]func(Change)),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add validates and appends a beneficiary, returning the new total.
func (r *Registry) Add(address, displayName string, percentage int) (int, error) {
	addr, err := domain.ParseAddress(address)
	if err != nil {
		return 0, err
	}
	if percentage < 1 || percentage > MaxTotal {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidPercentage, percentage)
	}
	name, err := NormalizeDisplayName(displayName, addr)
	if err != nil {
		return 0, err
	}

	b := Beneficiary{Address: addr, DisplayName: name, Percentage: percentage}

	r.mu.Lock()
	if r.indexOf(addr) >= 0 {
		r.mu.Unlock()
		return 0, fmt.Errorf("%w: %s", ErrDuplicateBeneficiary, addr)
	}
	if r.total+percentage > MaxTotal {
		total := r.total
		r.mu.Unlock()
		return 0, fmt.Errorf("%w: %d allocated, %d requested", ErrAllocationExceeded, total, percentage)
	}
	r.entries = append(r.entries, b)
	r.total += percentage
	change := Change{Kind: ChangeAdded, Beneficiary: b, Total: r.total, Count: len(r.entries)}
	r.mu.Unlock()

	r.notify(change)
	return change.Total, nil
}

// Remove deletes a beneficiary. Removing an absent address succeeds without
// notifying subscribers.
func (r *Registry) Remove(address string) (int, error) {
	addr, err := domain.ParseAddress(address)
	if err != nil {
		return 0, err
	}

	r.mu.Lock()
	i := r.indexOf(addr)
	if i < 0 {
		total := r.total
		r.mu.Unlock()
		return total, nil
	}
	removed := r.entries[i]
	r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
	r.total -= removed.Percentage
	change := Change{Kind: ChangeRemoved, Beneficiary: removed, Total: r.total, Count: len(r.entries)}
	r.mu.Unlock()

	r.notify(change)
	return change.Total, nil
}

// List returns the roster in insertion order with the unallocated remainder.
func (r *Registry) List() Allocation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Allocation{
		Beneficiaries: append([]Beneficiary{}, r.entries...),
		Total:         r.total,
		Unallocated:   max(MaxTotal-r.total, 0),
	}
}

// Total returns the allocated percentage.
func (r *Registry) Total() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.total
}

// Len returns the number of beneficiaries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Addresses returns beneficiary addresses in insertion order.
func (r *Registry) Addresses() []domain.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Address, len(r.entries))
	for i, b := range r.entries {
		out[i] = b.Address
	}
	return out
}

// Reconcile replaces the roster with an external one, trusted as ground truth.
// Violations of local rules are logged and kept.
func (r *Registry) Reconcile(roster []Beneficiary) Allocation {
	entries, total := r.checkRoster("reconciled", roster)

	r.mu.Lock()
	r.entries = entries
	r.total = total
	change := Change{Kind: ChangeReconciled, Total: total, Count: len(entries)}
	r.mu.Unlock()

	r.notify(change)
	return r.List()
}

// Seed loads the ledger's roster into a fresh registry. Violations are logged
// like Reconcile's, but subscribers are not notified.
func (r *Registry) Seed(roster []Beneficiary) {
	entries, total := r.checkRoster("seeded", roster)
	r.mu.Lock()
	r.entries = entries
	r.total = total
	r.mu.Unlock()
}

// Restore loads a persisted roster without notifying subscribers.
func (r *Registry) Restore(roster []Beneficiary) {
	entries := append([]Beneficiary{}, roster...)
	total := 0
	for _, b := range entries {
		total += b.Percentage
	}
	r.mu.Lock()
	r.entries = entries
	r.total = total
	r.mu.Unlock()
}

// checkRoster copies an externally supplied roster and warns about every
// rule it breaks. The roster is kept as given.
func (r *Registry) checkRoster(source string, roster []Beneficiary) ([]Beneficiary, int) {
	entries := make([]Beneficiary, len(roster))
	total := 0
	seen := make(map[domain.Address]struct{}, len(roster))
	for i, b := range roster {
		entries[i] = b
		total += b.Percentage
		if b.Percentage < 1 || b.Percentage > MaxTotal {
			r.logger.Warn(source+" beneficiary has out-of-range share",
				"address", b.Address,
				"percentage", b.Percentage,
			)
		}
		if _, dup := seen[b.Address]; dup {
			r.logger.Warn(source+" roster contains duplicate beneficiary",
				"address", b.Address,
			)
		}
		seen[b.Address] = struct{}{}
	}
	if total > MaxTotal {
		r.logger.Warn(source+" roster exceeds allocation ceiling",
			"total", total,
			"ceiling", MaxTotal,
		)
	}
	return entries, total
}

// Subscribe registers fn for future changes. The returned cancel is idempotent.
func (r *Registry) Subscribe(fn func(Change)) (cancel func()) {
	r.subMu.Lock()
	id := r.nextID
	r.nextID++
	r.subs[id] = fn
	r.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.subMu.Lock()
			delete(r.subs, id)
			r.subMu.Unlock()
		})
	}
}

func (r *Registry) notify(change Change) {
	r.subMu.Lock()
	ids := make([]int, 0, len(r.subs))
	for id := range r.subs {
		ids = append(ids, id)
	}
	fns := make([]func(Change), 0, len(ids))
	// map order is random; deliver in subscription order
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, r.subs[id])
	}
	r.subMu.Unlock()

	for _, fn := range fns {
		fn(change)
	}
}

func (r *Registry) indexOf(addr domain.Address) int {
	for i, b := range r.entries {
		if b.Address == addr {
			return i
		}
	}
	return -1
}

// NormalizeDisplayName trims and NFC-normalizes name. Empty names fall back to
// the shortened address.
func NormalizeDisplayName(name string, addr domain.Address) (string, error) {
	name = norm.NFC.String(strings.TrimSpace(name))
	if name == "" {
		return addr.Short(), nil
	}
	if utf8.RuneCountInString(name) > MaxDisplayNameRunes {
		return "", fmt.Errorf("%w: at most %d characters", ErrInvalidDisplayName, MaxDisplayNameRunes)
	}
	return name, nil
}
