// Package certificate maps externally decoded proof signals onto a gate outcome.
package certificate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	dErrors "willgate/pkg/domain-errors"
)

// Signal is what a Decoder extracts from a proof token.
type Signal int

const (
	SignalUnrecognized Signal = -1
	SignalRejected     Signal = 0
	SignalVerified     Signal = 1
)

type Outcome string

const (
	OutcomeNone         Outcome = ""
	OutcomeVerified     Outcome = "VERIFIED"
	OutcomeRejected     Outcome = "REJECTED"
	OutcomeUnrecognized Outcome = "UNRECOGNIZED"
)

var (
	ErrEmptyToken   = dErrors.New(dErrors.CodeValidation, "certificate token is required")
	ErrUnrecognized = dErrors.New(dErrors.CodeGateAmbiguous, "certificate not recognized, submit a different proof")
)

// Decoder turns a raw proof (file name, QR payload, opaque token) into a Signal.
type Decoder interface {
	Decode(ctx context.Context, raw string) (Signal, error)
}

// Gate holds only the last outcome it produced.
type Gate struct {
	decoder Decoder

	mu   sync.Mutex
	last Outcome
}

func NewGate(decoder Decoder) *Gate {
	return &Gate{decoder: decoder}
}

// Verify decodes token. Unrecognized tokens return OutcomeUnrecognized with
// ErrUnrecognized; the caller may retry with another token.
func (g *Gate) Verify(ctx context.Context, token string) (Outcome, error) {
	if strings.TrimSpace(token) == "" {
		return OutcomeNone, ErrEmptyToken
	}

	signal, err := g.decoder.Decode(ctx, token)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return OutcomeNone, dErrors.Wrap(err, dErrors.CodeTimeout, "certificate decoder timed out")
		}
		return OutcomeNone, dErrors.Wrap(err, dErrors.CodeInternal, "certificate decoder failed")
	}

	var outcome Outcome
	switch signal {
	case SignalVerified:
		outcome = OutcomeVerified
	case SignalRejected:
		outcome = OutcomeRejected
	default:
		outcome = OutcomeUnrecognized
	}

	g.mu.Lock()
	g.last = outcome
	g.mu.Unlock()

	if outcome == OutcomeUnrecognized {
		return outcome, ErrUnrecognized
	}
	return outcome, nil
}

// Last returns the most recent outcome, or OutcomeNone.
func (g *Gate) Last() Outcome {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}

// Restore sets the last outcome from persisted state.
func (g *Gate) Restore(o Outcome) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last = o
}

// StaticDecoder recognizes the fixed proof artifacts the wallet app produces:
// file names containing "zk-proof-1" / "zk-proof 1" (verified) or
// "zk-proof-0" / "zk-proof 0" (rejected), and bare QR payloads "1" and "0".
// Extra exact-match tokens can be configured.
type StaticDecoder struct {
	extra map[string]Signal
}

// NewStaticDecoder builds a decoder. extra maps tokens to "1" or "0"; other
// values are rejected.
func NewStaticDecoder(extra map[string]string) (*StaticDecoder, error) {
	d := &StaticDecoder{extra: make(map[string]Signal, len(extra))}
	for token, v := range extra {
		switch strings.TrimSpace(v) {
		case "1":
			d.extra[token] = SignalVerified
		case "0":
			d.extra[token] = SignalRejected
		default:
			return nil, fmt.Errorf("certificate token %q: signal must be 0 or 1, got %q", token, v)
		}
	}
	return d, nil
}

func (d *StaticDecoder) Decode(_ context.Context, raw string) (Signal, error) {
	raw = strings.TrimSpace(raw)
	if s, ok := d.extra[raw]; ok {
		return s, nil
	}
	switch raw {
	case "1":
		return SignalVerified, nil
	case "0":
		return SignalRejected, nil
	}
	// rejection markers are checked first
	lower := strings.ToLower(raw)
	if strings.Contains(lower, "zk-proof-0") || strings.Contains(lower, "zk-proof 0") {
		return SignalRejected, nil
	}
	if strings.Contains(lower, "zk-proof-1") || strings.Contains(lower, "zk-proof 1") {
		return SignalVerified, nil
	}
	return SignalUnrecognized, nil
}
