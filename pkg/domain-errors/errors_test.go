package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	t.Run("direct error", func(t *testing.T) {
		err := New(CodeConflict, "already voted")
		assert.True(t, HasCode(err, CodeConflict))
		assert.False(t, HasCode(err, CodeValidation))
	})

	t.Run("wrapped by fmt", func(t *testing.T) {
		err := fmt.Errorf("cast vote: %w", New(CodeConflict, "already voted"))
		assert.True(t, HasCode(err, CodeConflict))
	})

	t.Run("outermost code wins", func(t *testing.T) {
		inner := New(CodeInvariantViolation, "bad share")
		err := Wrap(inner, CodeValidation, "invalid beneficiary")
		assert.True(t, HasCode(err, CodeValidation))
		assert.True(t, Is(err, inner))
	})

	t.Run("nil and plain errors carry no code", func(t *testing.T) {
		assert.False(t, HasCode(nil, CodeInternal))
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	})
}

func TestErrorMessage(t *testing.T) {
	err := Wrap(errors.New("connection refused"), CodeDistributionFailed, "execute distribution")
	assert.Equal(t, "execute distribution: connection refused", err.Error())
	assert.Equal(t, "not found", New(CodeNotFound, "not found").Error())
	assert.Equal(t, "share 101 out of range", Newf(CodeValidation, "share %d out of range", 101).Error())
}
