package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActionCategory(t *testing.T) {
	assert.Equal(t, CategoryCompliance, ActionDistributionSucceed.Category())
	assert.Equal(t, CategorySecurity, ActionVoteRejected.Category())
	assert.Equal(t, CategoryOperations, ActionNomineeConnected.Category())
	assert.Equal(t, CategoryOperations, Action("something_new").Category())
}
