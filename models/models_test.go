package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	for _, s := range []string{"Admin", "Doctor", "Patient"} {
		r, ok := ParseRole(s)
		assert.True(t, ok, s)
		assert.Equal(t, Role(s), r)
	}
	for _, s := range []string{"", "admin", "Receptionist"} {
		_, ok := ParseRole(s)
		assert.False(t, ok, s)
	}
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to AppointmentStatus
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCompleted, StatusCompleted, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusConfirmed.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusCancelled.Terminal())
}

func TestPriorityValid(t *testing.T) {
	assert.True(t, PriorityUrgent.Valid())
	assert.False(t, Priority("critical").Valid())
}

func TestAccountBeforeCreateAssignsID(t *testing.T) {
	a := &Account{}
	assert.NoError(t, a.BeforeCreate(nil))
	assert.Len(t, a.ID, 36)

	kept := &Account{ID: "fixed"}
	assert.NoError(t, kept.BeforeCreate(nil))
	assert.Equal(t, "fixed", kept.ID)
}
