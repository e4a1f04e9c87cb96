package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionStatus(t *testing.T) {
	tests := []struct {
		name    string
		from    ProjectStatus
		actor   StatusActor
		to      ProjectStatus
		allowed bool
	}{
		{"student submits draft", ProjectDraft, ActorStudent, ProjectProcessing, true},
		{"student cannot validate", ProjectProcessing, ActorStudent, ProjectValidated, false},
		{"manager validates", ProjectProcessing, ActorManager, ProjectValidated, true},
		{"manager rejects", ProjectProcessing, ActorManager, ProjectRejected, true},
		{"manager cancels draft", ProjectDraft, ActorManager, ProjectReviewCancelled, true},
		{"student opens review", ProjectValidated, ActorStudent, ProjectReviewDraft, true},
		{"student submits review", ProjectReviewDraft, ActorStudent, ProjectReviewProcessing, true},
		{"manager closes review", ProjectReviewProcessing, ActorManager, ProjectReviewValidated, true},
		{"manager rejects review", ProjectReviewProcessing, ActorManager, ProjectReviewRejected, true},
		{"no skipping to review", ProjectDraft, ActorStudent, ProjectReviewDraft, false},
		{"no backwards move", ProjectValidated, ActorManager, ProjectProcessing, false},
		{"terminal is terminal", ProjectReviewValidated, ActorManager, ProjectReviewCancelled, false},
		{"rejected is terminal", ProjectRejected, ActorStudent, ProjectDraft, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransitionStatus(tt.from, tt.actor, tt.to))
		})
	}
}

func TestStatusSets(t *testing.T) {
	assert.True(t, ProjectRejected.IsArchived())
	assert.True(t, ProjectReviewCancelled.IsArchived())
	assert.False(t, ProjectDraft.IsArchived())
	assert.True(t, ProjectDraft.IsUnfinished())
	assert.False(t, ProjectReviewValidated.IsUnfinished())

	assert.True(t, ProjectDraft.IsStudentEditable())
	assert.True(t, ProjectReviewDraft.IsStudentEditable())
	assert.False(t, ProjectProcessing.IsStudentEditable())

	assert.True(t, ProjectReviewValidated.IsReviewTerminal())
	assert.False(t, ProjectReviewProcessing.IsReviewTerminal())
}
