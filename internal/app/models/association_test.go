package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestCanHoldMembers(t *testing.T) {
	unlimited := &Association{}
	assert.True(t, unlimited.CanHoldMembers(10000))

	capped := &Association{AmountMembersAllowed: intPtr(3)}
	assert.True(t, capped.CanHoldMembers(3))
	assert.False(t, capped.CanHoldMembers(4))
}

func TestNormalizePublicFlag(t *testing.T) {
	tests := []struct {
		name          string
		assoc         Association
		cleared       bool
		publicAfter   bool
	}{
		{"public site stays public", Association{IsPublic: true, IsEnabled: true, IsSite: true}, false, true},
		{"disabled clears public", Association{IsPublic: true, IsEnabled: false, IsSite: true}, true, false},
		{"non site clears public", Association{IsPublic: true, IsEnabled: true, IsSite: false}, true, false},
		{"private untouched", Association{IsPublic: false, IsEnabled: false}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := tt.assoc
			assert.Equal(t, tt.cleared, a.NormalizePublicFlag())
			assert.Equal(t, tt.publicAfter, a.IsPublic)
		})
	}
}

func TestCanTransitionCharter(t *testing.T) {
	tests := []struct {
		from    CharterStatus
		to      CharterStatus
		allowed bool
	}{
		{CharterNone, CharterProcessing, true},
		{CharterDraft, CharterProcessing, true},
		{CharterProcessing, CharterValidated, true},
		{CharterProcessing, CharterRejected, true},
		{CharterValidated, CharterExpired, true},
		{CharterValidated, CharterProcessing, true},
		{CharterRejected, CharterProcessing, true},
		{CharterExpired, CharterProcessing, true},
		{CharterNone, CharterValidated, false},
		{CharterDraft, CharterRejected, false},
		{CharterExpired, CharterValidated, false},
		{CharterValidated, CharterRejected, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			a := &Association{CharterStatus: tt.from}
			assert.Equal(t, tt.allowed, a.CanTransitionCharter(tt.to))
		})
	}
}

func TestIsCharterDecision(t *testing.T) {
	assert.True(t, IsCharterDecision(CharterValidated))
	assert.True(t, IsCharterDecision(CharterRejected))
	assert.False(t, IsCharterDecision(CharterProcessing))
	assert.False(t, IsCharterDecision(CharterExpired))
}
