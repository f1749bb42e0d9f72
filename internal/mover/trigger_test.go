package mover

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndicator(t *testing.T) {
	assert.Equal(t, "[A]", Indicator(TriggerAutomatic))
	assert.Equal(t, "[M]", Indicator(TriggerManual))
	assert.Equal(t, "[M]", Indicator(""))
	assert.Equal(t, "[M]", Indicator("automatic"))
}

func TestTriggerValidate(t *testing.T) {
	assert.NoError(t, TriggerAutomatic.Validate())
	assert.NoError(t, TriggerManual.Validate())
	assert.Error(t, Trigger("Sometimes").Validate())
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "moved", Moved.String())
	assert.Equal(t, "failed_name_collision", FailedNameCollision.String())
	assert.False(t, SkippedNoOp.IsFailure())
	assert.False(t, Moved.IsFailure())
	assert.True(t, FailedFolderCollision.IsFailure())
	for _, o := range []Outcome{FailedDestinationMissing, FailedNameCollision, FailedFolderCollision, FailedStoreOperation} {
		assert.Equal(t, o, OutcomeOf(o.Err()))
	}
	assert.Nil(t, Moved.Err())
}

func TestOutcome_Text(t *testing.T) {
	var o Outcome
	assert.NoError(t, o.UnmarshalText([]byte("skipped_noop")))
	assert.Equal(t, SkippedNoOp, o)
	assert.Error(t, o.UnmarshalText([]byte("teleported")))
}
