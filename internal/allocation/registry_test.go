package allocation

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"willgate/pkg/domain"
	dErrors "willgate/pkg/domain-errors"
)

const (
	addrA = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	addrB = "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"
	addrC = "0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB"
)

type RegistrySuite struct {
	suite.Suite
	reg *Registry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.reg = NewRegistry()
}

func (s *RegistrySuite) TestAdd() {
	s.Run("returns running total", func() {
		total, err := s.reg.Add(addrA, "Alice", 60)
		s.Require().NoError(err)
		s.Equal(60, total)
	})

	s.Run("overflow is rejected and total unchanged", func() {
		_, err := s.reg.Add(addrB, "Bob", 50)
		s.Require().ErrorIs(err, ErrAllocationExceeded)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal(60, s.reg.Total())
		s.Equal(1, s.reg.Len())
	})

	s.Run("duplicate address in different case is a conflict", func() {
		_, err := s.reg.Add(strings.ToLower(addrA), "", 10)
		s.Require().ErrorIs(err, ErrDuplicateBeneficiary)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("exactly filling to 100 is allowed", func() {
		total, err := s.reg.Add(addrB, "Bob", 40)
		s.Require().NoError(err)
		s.Equal(100, total)
	})
}

func (s *RegistrySuite) TestAddValidation() {
	tests := []struct {
		name    string
		address string
		display string
		pct     int
		target  error
	}{
		{name: "malformed address", address: "0x1234", pct: 10, target: domain.ErrInvalidAddress},
		{name: "zero percent", address: addrA, pct: 0, target: ErrInvalidPercentage},
		{name: "over 100 percent", address: addrA, pct: 101, target: ErrInvalidPercentage},
		{name: "negative percent", address: addrA, pct: -5, target: ErrInvalidPercentage},
		{name: "display name too long", address: addrA, display: strings.Repeat("é", 65), pct: 10, target: ErrInvalidDisplayName},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.reg.Add(tt.address, tt.display, tt.pct)
			s.Require().ErrorIs(err, tt.target)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation))
			s.Zero(s.reg.Len())
		})
	}
}

func (s *RegistrySuite) TestDisplayNameNormalization() {
	// "e" + combining acute composes to a single rune under NFC
	_, err := s.reg.Add(addrA, "  Jose\u0301  ", 10)
	s.Require().NoError(err)
	_, err = s.reg.Add(addrB, "   ", 10)
	s.Require().NoError(err)

	list := s.reg.List()
	s.Equal("Jos\u00e9", list.Beneficiaries[0].DisplayName)
	s.Equal("0xfB69...d359", list.Beneficiaries[1].DisplayName)
}

func (s *RegistrySuite) TestRemove() {
	_, _ = s.reg.Add(addrA, "Alice", 30)
	_, _ = s.reg.Add(addrB, "Bob", 20)
	_, _ = s.reg.Add(addrC, "Carol", 10)

	s.Run("absent address is a no-op", func() {
		total, err := s.reg.Remove("0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb")
		s.Require().NoError(err)
		s.Equal(60, total)
	})

	s.Run("removes and preserves order of the rest", func() {
		total, err := s.reg.Remove(addrB)
		s.Require().NoError(err)
		s.Equal(40, total)
		list := s.reg.List()
		s.Require().Len(list.Beneficiaries, 2)
		s.Equal(domain.MustParseAddress(addrA), list.Beneficiaries[0].Address)
		s.Equal(domain.MustParseAddress(addrC), list.Beneficiaries[1].Address)
	})

	s.Run("malformed address", func() {
		_, err := s.reg.Remove("nope")
		s.ErrorIs(err, domain.ErrInvalidAddress)
	})
}

func (s *RegistrySuite) TestListUnallocated() {
	s.Equal(100, s.reg.List().Unallocated)

	_, _ = s.reg.Add(addrA, "Alice", 75)
	list := s.reg.List()
	s.Equal(75, list.Total)
	s.Equal(25, list.Unallocated)

	_, _ = s.reg.Add(addrB, "Bob", 25)
	s.Zero(s.reg.List().Unallocated)
}

func (s *RegistrySuite) TestListReturnsCopy() {
	_, _ = s.reg.Add(addrA, "Alice", 10)
	list := s.reg.List()
	list.Beneficiaries[0].Percentage = 99
	s.Equal(10, s.reg.List().Beneficiaries[0].Percentage)
}

func (s *RegistrySuite) TestSubscribe() {
	var got []Change
	cancel := s.reg.Subscribe(func(c Change) { got = append(got, c) })

	_, _ = s.reg.Add(addrA, "Alice", 10)
	_, _ = s.reg.Add(addrA, "Alice", 10) // duplicate: no change
	_, _ = s.reg.Remove(addrB)           // absent: no change
	_, _ = s.reg.Remove(addrA)
	s.reg.Reconcile([]Beneficiary{{Address: domain.MustParseAddress(addrC), Percentage: 5}})

	s.Require().Len(got, 3)
	s.Equal(ChangeAdded, got[0].Kind)
	s.Equal(ChangeRemoved, got[1].Kind)
	s.Equal(ChangeReconciled, got[2].Kind)
	s.Equal(5, got[2].Total)

	cancel()
	cancel()
	_, _ = s.reg.Add(addrA, "Alice", 10)
	s.Len(got, 3)
}

func (s *RegistrySuite) TestSubscriberMayReadRegistry() {
	var seenTotal int
	s.reg.Subscribe(func(Change) { seenTotal = s.reg.Total() })
	_, err := s.reg.Add(addrA, "Alice", 42)
	s.Require().NoError(err)
	s.Equal(42, seenTotal)
}

func TestReconcile_LogsViolationsButKeepsRoster(t *testing.T) {
	var buf bytes.Buffer
	reg := NewRegistry(WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	a := domain.MustParseAddress(addrA)
	list := reg.Reconcile([]Beneficiary{
		{Address: a, DisplayName: "A", Percentage: 70},
		{Address: a, DisplayName: "A again", Percentage: 50},
		{Address: domain.MustParseAddress(addrB), DisplayName: "B", Percentage: 0},
	})

	assert.Equal(t, 120, list.Total)
	assert.Zero(t, list.Unallocated)
	assert.Len(t, list.Beneficiaries, 3)
	logs := buf.String()
	assert.Contains(t, logs, "exceeds allocation ceiling")
	assert.Contains(t, logs, "duplicate beneficiary")
	assert.Contains(t, logs, "out-of-range share")
}

func TestSeed_LogsViolationsWithoutNotifying(t *testing.T) {
	var buf bytes.Buffer
	reg := NewRegistry(WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	called := false
	reg.Subscribe(func(Change) { called = true })

	reg.Seed([]Beneficiary{
		{Address: domain.MustParseAddress(addrA), DisplayName: "A", Percentage: 80},
		{Address: domain.MustParseAddress(addrB), DisplayName: "B", Percentage: 30},
	})

	assert.False(t, called)
	assert.Equal(t, 110, reg.Total())
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "seeded roster exceeds allocation ceiling")
}

func TestSeed_CleanRosterIsQuiet(t *testing.T) {
	var buf bytes.Buffer
	reg := NewRegistry(WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	reg.Seed([]Beneficiary{{Address: domain.MustParseAddress(addrA), Percentage: 60}})
	assert.Equal(t, 60, reg.Total())
	assert.Empty(t, buf.String())
}

func TestRestore_DoesNotNotify(t *testing.T) {
	reg := NewRegistry()
	called := false
	reg.Subscribe(func(Change) { called = true })
	reg.Restore([]Beneficiary{{Address: domain.MustParseAddress(addrA), Percentage: 30}})
	assert.False(t, called)
	assert.Equal(t, 30, reg.Total())
}

// Every interleaving of concurrent adds must keep the sum at or under 100.
func TestAdd_ConcurrentNeverExceedsCeiling(t *testing.T) {
	reg := NewRegistry()
	addrs := make([]string, 0, 40)
	for i := range 40 {
		addrs = append(addrs, addressFor(i))
	}

	var wg sync.WaitGroup
	for i, a := range addrs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = reg.Add(a, "", 7+i%5)
		}()
	}
	wg.Wait()

	list := reg.List()
	sum := 0
	for _, b := range list.Beneficiaries {
		sum += b.Percentage
	}
	require.LessOrEqual(t, sum, MaxTotal)
	assert.Equal(t, sum, list.Total)
}

// addressFor builds a distinct lower-case address, which needs no checksum.
func addressFor(i int) string {
	const hexdigits = "0123456789abcdef"
	b := []byte("0x" + strings.Repeat("0", 40))
	b[len(b)-1] = hexdigits[i%16]
	b[len(b)-2] = hexdigits[(i/16)%16]
	return string(b)
}
